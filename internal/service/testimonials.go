package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gbakws/testimonial-server/internal/domain"
	domainerrors "github.com/gbakws/testimonial-server/internal/errors"
	"github.com/gbakws/testimonial-server/internal/store"
	"github.com/gbakws/testimonial-server/internal/validation"
)

// TestimonialService lists and moderates submissions.
type TestimonialService struct {
	base
	store     store.Store
	validator *validation.Validator
}

// NewTestimonialService creates a new testimonial service.
func NewTestimonialService(
	st store.Store,
	v *validation.Validator,
	log *slog.Logger,
	timeout time.Duration,
) *TestimonialService {
	return &TestimonialService{
		base:      newBase(log, timeout),
		store:     st,
		validator: v,
	}
}

// UpdateStatusRequest changes a submission's moderation status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,submission_status"`
}

// ListApproved returns approved submissions newest first.
func (s *TestimonialService) ListApproved(ctx context.Context) ([]*domain.Submission, error) {
	return s.list(ctx, domain.SubmissionApproved)
}

// ListAll returns every submission newest first.
func (s *TestimonialService) ListAll(ctx context.Context) ([]*domain.Submission, error) {
	return s.list(ctx)
}

func (s *TestimonialService) list(ctx context.Context, statuses ...domain.SubmissionStatus) ([]*domain.Submission, error) {
	var subs []*domain.Submission
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		subs, err = s.store.ListSubmissions(ctx, statuses...)
		return err
	})
	if err != nil {
		return nil, s.storageFailure("list submissions", err)
	}
	if subs == nil {
		subs = []*domain.Submission{}
	}
	return subs, nil
}

// UpdateStatus sets the moderation status of a submission.
func (s *TestimonialService) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*domain.Submission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var sub *domain.Submission
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		sub, err = s.store.UpdateSubmissionStatus(ctx, id, domain.SubmissionStatus(req.Status), s.now())
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("submission %s not found", id)
	}
	if errors.Is(err, store.ErrConflict) {
		return nil, domainerrors.Conflict("submission was modified concurrently, please retry").WithCause(err)
	}
	if err != nil {
		return nil, s.storageFailure("update submission status", err, "submission_id", id)
	}

	s.info("submission moderated", "submission_id", id, "status", sub.Status)
	return sub, nil
}
