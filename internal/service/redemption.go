package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gbakws/testimonial-server/internal/domain"
	domainerrors "github.com/gbakws/testimonial-server/internal/errors"
	"github.com/gbakws/testimonial-server/internal/id"
	"github.com/gbakws/testimonial-server/internal/logger"
	"github.com/gbakws/testimonial-server/internal/normalize"
	"github.com/gbakws/testimonial-server/internal/store"
	"github.com/gbakws/testimonial-server/internal/validation"
)

// RedemptionService consumes a link and records the testimonial.
type RedemptionService struct {
	base
	store     store.Store
	validator *validation.Validator
	newID     func() string
}

// NewRedemptionService creates a new redemption service.
func NewRedemptionService(
	st store.Store,
	v *validation.Validator,
	log *slog.Logger,
	timeout time.Duration,
) *RedemptionService {
	return &RedemptionService{
		base:      newBase(log, timeout),
		store:     st,
		validator: v,
		newID:     func() string { return id.MustGenerate("sub") },
	}
}

// SubmitTestimonialRequest carries the testimonial and the token it redeems.
type SubmitTestimonialRequest struct {
	Testimonial string `json:"testimonial" validate:"required,max=5000"`
	Token       string `json:"token" validate:"required"`
}

// Redeem validates the request, then consumes the token and stores the
// submission atomically. Token problems come back as TOKEN_NOT_FOUND,
// TOKEN_USED, or TOKEN_EXPIRED; store failures as STORAGE_ERROR with
// nothing written. Redeem is not idempotent.
func (s *RedemptionService) Redeem(ctx context.Context, req SubmitTestimonialRequest) (*domain.Submission, error) {
	req.Testimonial = normalize.Text(req.Testimonial)
	req.Token = strings.TrimSpace(req.Token)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	build := func(link *domain.Link) *domain.Submission {
		return domain.NewSubmission(s.newID(), link, req.Testimonial, now)
	}

	var sub *domain.Submission
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		sub, err = s.store.RedeemLink(ctx, req.Token, now, build)
		return err
	})

	switch {
	case err == nil:
		s.info("link redeemed", logger.Token(req.Token), "submission_id", sub.ID)
		return sub, nil
	case errors.Is(err, store.ErrNotFound):
		return nil, s.rejected(req.Token, domain.ReasonNotFound)
	case errors.Is(err, store.ErrLinkUsed):
		return nil, s.rejected(req.Token, domain.ReasonAlreadyUsed)
	case errors.Is(err, store.ErrLinkExpired):
		return nil, s.rejected(req.Token, domain.ReasonExpired)
	default:
		return nil, s.storageFailure("redeem link", err, logger.Token(req.Token))
	}
}

// rejected maps an expected token outcome to its coded error.
func (s *RedemptionService) rejected(token string, reason domain.InvalidReason) error {
	s.debug("redemption rejected", logger.Token(token), "reason", reason)

	msg := reason.Message()
	switch reason {
	case domain.ReasonAlreadyUsed:
		return domainerrors.TokenUsed(msg)
	case domain.ReasonExpired:
		return domainerrors.TokenExpired(msg)
	default:
		return domainerrors.TokenNotFound(msg)
	}
}
