package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gbakws/testimonial-server/internal/domain"
	"github.com/gbakws/testimonial-server/internal/store"
)

// VerificationService answers whether a token could be redeemed right now.
// It never writes.
type VerificationService struct {
	base
	store store.Store
}

// NewVerificationService creates a new verification service.
func NewVerificationService(st store.Store, log *slog.Logger, timeout time.Duration) *VerificationService {
	return &VerificationService{
		base:  newBase(log, timeout),
		store: st,
	}
}

// Verify reports the token's state. Invalid tokens are an outcome, not an
// error; only storage failures return a non-nil error. A valid result is
// advisory: redemption checks again.
func (s *VerificationService) Verify(ctx context.Context, token string) (domain.VerificationResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.InvalidResult(domain.ReasonNotFound), nil
	}

	var link *domain.Link
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		link, err = s.store.GetLink(ctx, token)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Evaluate(nil, s.now()), nil
	}
	if err != nil {
		return domain.VerificationResult{}, s.storageFailure("get link", err)
	}

	return domain.Evaluate(link, s.now()), nil
}
