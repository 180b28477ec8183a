package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/gbakws/testimonial-server/internal/domain"
	"github.com/gbakws/testimonial-server/internal/store"
)

// GetSubmission retrieves a submission by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var sub domain.Submission
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, submissionKey(id), &sub)
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubmissions returns submissions with any of the given statuses,
// newest first. With no statuses every submission is returned.
func (s *Store) ListSubmissions(ctx context.Context, statuses ...domain.SubmissionStatus) ([]*domain.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var subs []*domain.Submission
	err := scanPrefix(s.db, submissionPrefix, func(val []byte) error {
		var sub domain.Submission
		if err := json.Unmarshal(val, &sub); err != nil {
			return fmt.Errorf("unmarshal submission: %w", err)
		}
		if len(statuses) == 0 || slices.Contains(statuses, sub.Status) {
			subs = append(subs, &sub)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(subs, func(sub *domain.Submission) (int64, string) {
		return sub.CreatedAt.UnixNano(), sub.ID
	})
	return subs, nil
}

// UpdateSubmissionStatus sets the moderation status and returns the updated submission.
// A conflicting concurrent update is retried; once retries run out it
// returns store.ErrConflict. Returns store.ErrNotFound if it does not exist.
func (s *Store) UpdateSubmissionStatus(ctx context.Context, id string, status domain.SubmissionStatus, at time.Time) (*domain.Submission, error) {
	var err error
	for range maxConflictRetries {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		var sub domain.Submission
		err = s.db.Update(func(txn *badger.Txn) error {
			if err := getJSON(txn, submissionKey(id), &sub); err != nil {
				return err
			}
			sub.Status = status
			sub.Touch(at)
			if err := setJSON(txn, submissionKey(id), &sub); err != nil {
				return err
			}
			return ctx.Err()
		})
		if err == nil {
			return &sub, nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			return nil, err
		}
	}
	return nil, store.ErrConflict.WithCause(err)
}
