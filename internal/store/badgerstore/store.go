// Package badgerstore implements store.Store on an embedded Badger database.
// Redemption relies on Badger's optimistic transactions: two transactions
// that read and write the same link key cannot both commit.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/gbakws/testimonial-server/internal/store"
)

const (
	linkPrefix       = "link:"
	submissionPrefix = "submission:"

	// maxConflictRetries bounds re-runs of a status update that lost a
	// write conflict.
	maxConflictRetries = 3
)

// ErrClosed is returned by Ping after Close.
var ErrClosed = errors.New("badger db closed")

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a Badger database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("badger store opened", "path", dir)
	}
	return &Store{db: db, logger: logger}, nil
}

// Ping reports whether the database is still open.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func linkKey(token string) []byte { return []byte(linkPrefix + token) }

func submissionKey(id string) []byte { return []byte(submissionPrefix + id) }

// getJSON loads key into dest within txn.
// Returns store.ErrNotFound if the key is absent.
func getJSON(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

func setJSON(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return txn.Set(key, data)
}

// setNew writes value only if key is absent.
func setNew(txn *badger.Txn, key []byte, value any) error {
	_, err := txn.Get(key)
	if err == nil {
		return store.ErrAlreadyExists
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return setJSON(txn, key, value)
}

// scanPrefix decodes every value under prefix with decode.
func scanPrefix(db *badger.DB, prefix string, decode func(val []byte) error) error {
	return db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(decode); err != nil {
				return err
			}
		}
		return nil
	})
}

// newestFirst sorts by created time descending, breaking ties by key descending.
func newestFirst[T any](items []T, key func(T) (int64, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, ki := key(items[i])
		tj, kj := key(items[j])
		if ti != tj {
			return ti > tj
		}
		return ki > kj
	})
}
