package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
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
		createdAt   string
		expiresAt   string
		usedAt      sql.NullString
	)

	err := scanner.Scan(
		&link.Token,
		&link.Name,
		&designation,
		&createdAt,
		&expiresAt,
		&link.IsUsed,
		&usedAt,
	)
	if err != nil {
		return nil, err
	}

	link.Designation = designation.String
	if link.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if link.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if link.UsedAt, err = parseNullableTime(usedAt); err != nil {
		return nil, err
	}
	return &link, nil
}

// CreateLink inserts a new link.
// Returns store.ErrAlreadyExists if the token is taken.
func (s *Store) CreateLink(ctx context.Context, link *domain.Link) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO links (`+linkColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		link.Token,
		link.Name,
		nullString(link.Designation),
		formatTime(link.CreatedAt),
		formatTime(link.ExpiresAt),
		link.IsUsed,
		nullTimeString(link.UsedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
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
	row := q.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE token = ?`, token)

	link, err := scanLink(row)
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

// RedeemLink marks the link used and inserts the submission in one
// transaction. The conditional UPDATE is the single point that decides
// which of several concurrent redemptions wins.
func (s *Store) RedeemLink(ctx context.Context, token string, at time.Time, build store.SubmissionBuilder) (*domain.Submission, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin redeem: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	link, err := getLink(ctx, tx, token)
	if err != nil {
		return nil, err
	}
	if err := store.CheckRedeemable(link, at); err != nil {
		return nil, err
	}

	stamp := formatTime(at)
	res, err := tx.ExecContext(ctx, `
		UPDATE links SET is_used = 1, used_at = ?
		WHERE token = ? AND is_used = 0 AND expires_at > ?`,
		stamp, token, stamp,
	)
	if err != nil {
		return nil, fmt.Errorf("consume link: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("consume link: %w", err)
	}
	if n == 0 {
		return nil, store.ErrLinkUsed
	}
	link.MarkUsed(at)

	sub := build(link)
	if err := insertSubmission(ctx, tx, sub); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit redeem: %w", err)
	}
	return sub, nil
}
