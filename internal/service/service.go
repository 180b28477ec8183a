// Package service implements link issuance, verification, redemption, and
// submission moderation on top of a store.Store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainerrors "github.com/gbakws/testimonial-server/internal/errors"
	"github.com/gbakws/testimonial-server/internal/logger"
)

// DefaultStoreTimeout bounds a single store call when none is configured.
const DefaultStoreTimeout = 5 * time.Second

// base holds what every service shares.
type base struct {
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

func newBase(log *slog.Logger, timeout time.Duration) base {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return base{
		logger:  log,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// withTimeout runs fn under the store deadline.
func (b *base) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return fn(ctx)
}

// storageFailure logs err and returns the generic storage error.
func (b *base) storageFailure(op string, err error, attrs ...any) error {
	if b.logger != nil {
		b.logger.Error("store call failed", append([]any{"op", op, logger.Err(err)}, attrs...)...)
	}
	return domainerrors.Storage(fmt.Errorf("%s: %w", op, err))
}

func (b *base) info(msg string, attrs ...any) {
	if b.logger != nil {
		b.logger.Info(msg, attrs...)
	}
}

func (b *base) debug(msg string, attrs ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, attrs...)
	}
}
