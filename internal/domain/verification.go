package domain

import "time"

// InvalidReason explains why a token cannot be redeemed.
type InvalidReason string

// Invalid reasons.
const (
	ReasonNotFound    InvalidReason = "NotFound"
	ReasonAlreadyUsed InvalidReason = "AlreadyUsed"
	ReasonExpired     InvalidReason = "Expired"
)

// Message returns the user-facing text for the reason.
func (r InvalidReason) Message() string {
	switch r {
	case ReasonNotFound:
		return "Token not found or revoked"
	case ReasonAlreadyUsed:
		return "Token already used"
	case ReasonExpired:
		return "Token has expired"
	default:
		return "Token is invalid"
	}
}

// Invitee is the identity a link pre-fills on the submission form.
type Invitee struct {
	Name        string `json:"name"`
	Designation string `json:"designation,omitempty"`
}

// VerificationResult is the outcome of checking a token. Exactly one of
// Invitee (when Valid) or Reason (when not) is set.
type VerificationResult struct {
	Valid   bool
	Invitee *Invitee
	Reason  InvalidReason
}

// ValidResult builds a successful verification outcome.
func ValidResult(inv Invitee) VerificationResult {
	return VerificationResult{Valid: true, Invitee: &inv}
}

// InvalidResult builds a failed verification outcome.
func InvalidResult(reason InvalidReason) VerificationResult {
	return VerificationResult{Reason: reason}
}

// Evaluate classifies link at t. A nil link is NotFound. Used takes
// precedence over Expired.
func Evaluate(link *Link, t time.Time) VerificationResult {
	if link == nil {
		return InvalidResult(ReasonNotFound)
	}
	switch link.State(t) {
	case LinkStateUsed:
		return InvalidResult(ReasonAlreadyUsed)
	case LinkStateExpired:
		return InvalidResult(ReasonExpired)
	default:
		return ValidResult(link.Invitee())
	}
}
