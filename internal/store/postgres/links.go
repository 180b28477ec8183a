package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gbakws/testimonial-server/internal/domain"
	"github.com/gbakws/testimonial-server/internal/store"
)

// linkColumns must match the scan order in scanLink.
const linkColumns = `token, name, designation, created_at, expires_at, is_used, used_at`

func scanLink(scanner interface{ Scan(dest ...any) error }) (*domain.Link, error) {
	var (
		link        domain.Link
		designation sql.NullString
		usedAt      sql.NullTime
	)

	err := scanner.Scan(
		&link.Token,
		&link.Name,
		&designation,
		&link.CreatedAt,
		&link.ExpiresAt,
		&link.IsUsed,
		&usedAt,
	)
	if err != nil {
		return nil, err
	}

	link.Designation = designation.String
	link.CreatedAt = link.CreatedAt.UTC()
	link.ExpiresAt = link.ExpiresAt.UTC()
	if usedAt.Valid {
		t := usedAt.Time.UTC()
		link.UsedAt = &t
	}
	return &link, nil
}

// CreateLink inserts a new link.
// Returns store.ErrAlreadyExists if the token is taken.
func (s *Store) CreateLink(ctx context.Context, link *domain.Link) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO links (`+linkColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		link.Token,
		link.Name,
		nullString(link.Designation),
		link.CreatedAt.UTC(),
		link.ExpiresAt.UTC(),
		link.IsUsed,
		nullTime(link.UsedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert link: %w", err)
	}
	return nil
}

// GetLink retrieves a link by token.
// Returns store.ErrNotFound if the token does not exist.
func (s *Store) GetLink(ctx context.Context, token string) (*domain.Link, error) {
	return getLink(ctx, s.db, token)
}

func getLink(ctx context.Context, q queryer, token string) (*domain.Link, error) {
	link, err := scanLink(q.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE token = $1`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

// ListLinks returns all links ordered by created_at descending.
func (s *Store) ListLinks(ctx context.Context) ([]*domain.Link, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+linkColumns+` FROM links ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []*domain.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return links, nil
}

// RedeemLink consumes the link with a conditional UPDATE ... RETURNING and
// inserts the submission in the same transaction. Row locking on the
// UPDATE makes concurrent callers wait; after the winner commits their
// predicate no longer matches and they are classified as used.
func (s *Store) RedeemLink(ctx context.Context, token string, at time.Time, build store.SubmissionBuilder) (*domain.Submission, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin redeem: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	at = at.UTC()
	link, err := scanLink(tx.QueryRowContext(ctx, `
		UPDATE links SET is_used = TRUE, used_at = $2
		WHERE token = $1 AND is_used = FALSE AND expires_at > $2
		RETURNING `+linkColumns,
		token, at,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, classify(ctx, tx, token, at)
	}
	if err != nil {
		return nil, fmt.Errorf("consume link: %w", err)
	}

	sub := build(link)
	if err := insertSubmission(ctx, tx, sub); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit redeem: %w", err)
	}
	return sub, nil
}

// classify explains why the conditional update matched no row.
func classify(ctx context.Context, q queryer, token string, at time.Time) error {
	link, err := getLink(ctx, q, token)
	if err != nil {
		return err
	}
	if err := store.CheckRedeemable(link, at); err != nil {
		return err
	}
	// Matched nothing yet looks redeemable: another redemption got there first.
	return store.ErrLinkUsed
}
