// Package store defines the persistence contract for links and submissions.
// Backends live in the sqlite, postgres, and badger subpackages.
package store

import (
	"context"
	"time"

	"github.com/gbakws/testimonial-server/internal/domain"
)

// SubmissionBuilder creates the submission for a link that is being redeemed.
// It runs inside the redemption unit, after the link passed every check.
type SubmissionBuilder func(link *domain.Link) *domain.Submission

// Store defines every persistence operation the services need.
type Store interface {
	// Lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Links
	CreateLink(ctx context.Context, link *domain.Link) error
	GetLink(ctx context.Context, token string) (*domain.Link, error)
	ListLinks(ctx context.Context) ([]*domain.Link, error)

	// RedeemLink consumes the link and stores the built submission as one
	// atomic unit. The link must exist, be unused, and satisfy at < ExpiresAt,
	// otherwise ErrNotFound, ErrLinkUsed, or ErrLinkExpired is returned and
	// nothing is written. Of any number of concurrent calls for one token at
	// most one succeeds; the rest see ErrLinkUsed.
	RedeemLink(ctx context.Context, token string, at time.Time, build SubmissionBuilder) (*domain.Submission, error)

	// Submissions
	GetSubmission(ctx context.Context, id string) (*domain.Submission, error)
	// ListSubmissions returns submissions newest first. No statuses means all.
	ListSubmissions(ctx context.Context, statuses ...domain.SubmissionStatus) ([]*domain.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, id string, status domain.SubmissionStatus, at time.Time) (*domain.Submission, error)
}
