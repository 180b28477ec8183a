// Package domain holds the testimonial link and submission model.
package domain

import "time"

const (
	// LinkValidity is how long an issued link stays redeemable. It is a fixed
	// property of the workflow and is not configurable per link.
	LinkValidity = 24 * time.Hour

	// LinkValidityText is LinkValidity as shown to the administrator.
	LinkValidityText = "24 hours"
)

// LinkState is the evaluated lifecycle state of a link.
type LinkState string

// Link states. Expired is never stored; it is computed from ExpiresAt.
const (
	LinkStateUnused  LinkState = "unused"
	LinkStateUsed    LinkState = "used"
	LinkStateExpired LinkState = "expired"
)

// Link is an issued testimonial token bound to a named invitee.
// Everything except IsUsed and UsedAt is immutable after creation.
type Link struct {
	Token       string     `json:"token"`
	Name        string     `json:"name"`
	Designation string     `json:"designation,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	IsUsed      bool       `json:"is_used"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
}

// NewLink builds an unused link issued at now.
func NewLink(token, name, designation string, now time.Time) *Link {
	return &Link{
		Token:       token,
		Name:        name,
		Designation: designation,
		CreatedAt:   now,
		ExpiresAt:   now.Add(LinkValidity),
	}
}

// IsExpiredAt reports whether the validity window has closed at t.
// The window is half-open: a link is expired exactly at ExpiresAt.
func (l *Link) IsExpiredAt(t time.Time) bool {
	return !t.Before(l.ExpiresAt)
}

// IsRedeemableAt reports whether the link can still be redeemed at t.
func (l *Link) IsRedeemableAt(t time.Time) bool {
	return !l.IsUsed && !l.IsExpiredAt(t)
}

// State returns the lifecycle state at t. Once used, expiry no longer matters.
func (l *Link) State(t time.Time) LinkState {
	switch {
	case l.IsUsed:
		return LinkStateUsed
	case l.IsExpiredAt(t):
		return LinkStateExpired
	default:
		return LinkStateUnused
	}
}

// MarkUsed flips the link to used. It never flips back.
func (l *Link) MarkUsed(at time.Time) {
	if l.IsUsed {
		return
	}
	l.IsUsed = true
	l.UsedAt = &at
}

// Invitee returns the pre-fill data carried by the link.
func (l *Link) Invitee() Invitee {
	return Invitee{Name: l.Name, Designation: l.Designation}
}
