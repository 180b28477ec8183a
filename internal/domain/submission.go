package domain

import "time"

// SubmissionStatus is the moderation state of a submission.
type SubmissionStatus string

// Submission statuses.
const (
	SubmissionPending  SubmissionStatus = "PENDING"
	SubmissionApproved SubmissionStatus = "APPROVED"
	SubmissionRejected SubmissionStatus = "REJECTED"
)

// IsValid reports whether s is a known status.
func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionPending, SubmissionApproved, SubmissionRejected:
		return true
	default:
		return false
	}
}

// Submission is a testimonial produced by redeeming exactly one link.
// Name and Designation are copied from the link so the submission stays
// intact if the link is ever removed.
type Submission struct {
	Record
	Content     string           `json:"testimonial"`
	Name        string           `json:"name"`
	Designation string           `json:"designation,omitempty"`
	Status      SubmissionStatus `json:"status"`
}

// NewSubmission creates a pending submission attributed to the link's invitee.
func NewSubmission(id string, link *Link, content string, now time.Time) *Submission {
	sub := &Submission{
		Record:      Record{ID: id},
		Content:     content,
		Name:        link.Name,
		Designation: link.Designation,
		Status:      SubmissionPending,
	}
	sub.InitTimestamps(now)
	return sub
}
