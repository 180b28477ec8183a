package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/gbakws/testimonial-server/internal/domain"
	"github.com/gbakws/testimonial-server/internal/store"
)

// CreateLink stores a new link.
// Returns store.ErrAlreadyExists if the token is taken.
func (s *Store) CreateLink(ctx context.Context, link *domain.Link) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := setNew(txn, linkKey(link.Token), link); err != nil {
			return err
		}
		return ctx.Err()
	})
	if errors.Is(err, badger.ErrConflict) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetLink retrieves a link by token.
// Returns store.ErrNotFound if the token does not exist.
func (s *Store) GetLink(ctx context.Context, token string) (*domain.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var link domain.Link
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, linkKey(token), &link)
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ListLinks returns all links ordered by created_at descending.
func (s *Store) ListLinks(ctx context.Context) ([]*domain.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var links []*domain.Link
	err := scanPrefix(s.db, linkPrefix, func(val []byte) error {
		var link domain.Link
		if err := json.Unmarshal(val, &link); err != nil {
			return fmt.Errorf("unmarshal link: %w", err)
		}
		links = append(links, &link)
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(links, func(l *domain.Link) (int64, string) {
		return l.CreatedAt.UnixNano(), l.Token
	})
	return links, nil
}

// RedeemLink reads, checks, and rewrites the link and writes the
// submission in one optimistic transaction. When the commit loses a
// conflict to a concurrent redemption the link is read once more and
// reported by its committed state. A context that ends before commit
// discards the transaction.
func (s *Store) RedeemLink(ctx context.Context, token string, at time.Time, build store.SubmissionBuilder) (*domain.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sub *domain.Submission
	err := s.db.Update(func(txn *badger.Txn) error {
		var link domain.Link
		if err := getJSON(txn, linkKey(token), &link); err != nil {
			return err
		}
		if err := store.CheckRedeemable(&link, at); err != nil {
			return err
		}

		link.MarkUsed(at)
		if err := setJSON(txn, linkKey(token), &link); err != nil {
			return err
		}

		sub = build(&link)
		if err := setNew(txn, submissionKey(sub.ID), sub); err != nil {
			return err
		}
		// Past the deadline nothing is committed.
		return ctx.Err()
	})
	if errors.Is(err, badger.ErrConflict) {
		return nil, s.afterConflict(token, at)
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Store) afterConflict(token string, at time.Time) error {
	var link domain.Link
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, linkKey(token), &link)
	})
	if err != nil {
		return err
	}
	if err := store.CheckRedeemable(&link, at); err != nil {
		return err
	}
	return store.ErrLinkUsed
}
