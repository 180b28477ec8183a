package domain

import "time"

// Record carries the identity and timestamps shared by persisted entities.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to at.
// Call this when creating a new entity.
func (r *Record) InitTimestamps(at time.Time) {
	r.CreatedAt = at
	r.UpdatedAt = at
}

// Touch moves UpdatedAt forward to at.
func (r *Record) Touch(at time.Time) {
	r.UpdatedAt = at
}
