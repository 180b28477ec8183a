package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/gbakws/testimonial-server/internal/domain"
	"github.com/gbakws/testimonial-server/internal/store"
)

// submissionColumns must match the scan order in scanSubmission.
const submissionColumns = `id, created_at, updated_at, content, name, designation, status`

func scanSubmission(scanner interface{ Scan(dest ...any) error }) (*domain.Submission, error) {
	var (
		sub         domain.Submission
		designation sql.NullString
		status      string
	)

	err := scanner.Scan(
		&sub.ID,
		&sub.CreatedAt,
		&sub.UpdatedAt,
		&sub.Content,
		&sub.Name,
		&designation,
		&status,
	)
	if err != nil {
		return nil, err
	}

	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	sub.Designation = designation.String
	sub.Status = domain.SubmissionStatus(status)
	return &sub, nil
}

func insertSubmission(ctx context.Context, q queryer, sub *domain.Submission) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sub.ID,
		sub.CreatedAt.UTC(),
		sub.UpdatedAt.UTC(),
		sub.Content,
		sub.Name,
		nullString(sub.Designation),
		string(sub.Status),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetSubmission retrieves a submission by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	sub, err := scanSubmission(s.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// ListSubmissions returns submissions with any of the given statuses,
// newest first. With no statuses every submission is returned.
func (s *Store) ListSubmissions(ctx context.Context, statuses ...domain.SubmissionStatus) ([]*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions`
	var args []any
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, st := range statuses {
			names[i] = string(st)
		}
		query += ` WHERE status = ANY($1)`
		args = append(args, pq.Array(names))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

// UpdateSubmissionStatus sets the moderation status and returns the updated row.
// Returns store.ErrNotFound if the submission does not exist.
func (s *Store) UpdateSubmissionStatus(ctx context.Context, id string, status domain.SubmissionStatus, at time.Time) (*domain.Submission, error) {
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, `
		UPDATE submissions SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+submissionColumns,
		id, string(status), at.UTC(),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update submission status: %w", err)
	}
	return sub, nil
}
