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

// submissionColumns must match the scan order in scanSubmission.
const submissionColumns = `id, created_at, updated_at, content, name, designation, status`

func scanSubmission(scanner interface{ Scan(dest ...any) error }) (*domain.Submission, error) {
	var (
		sub         domain.Submission
		createdAt   string
		updatedAt   string
		designation sql.NullString
		status      string
	)

	err := scanner.Scan(
		&sub.ID,
		&createdAt,
		&updatedAt,
		&sub.Content,
		&sub.Name,
		&designation,
		&status,
	)
	if err != nil {
		return nil, err
	}

	if sub.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sub.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	sub.Designation = designation.String
	sub.Status = domain.SubmissionStatus(status)
	return &sub, nil
}

func insertSubmission(ctx context.Context, q queryer, sub *domain.Submission) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.ID,
		formatTime(sub.CreatedAt),
		formatTime(sub.UpdatedAt),
		sub.Content,
		sub.Name,
		nullString(sub.Designation),
		string(sub.Status),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetSubmission retrieves a submission by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)

	sub, err := scanSubmission(row)
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
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, st := range statuses {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
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
	result, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(at), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update submission status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update submission status: %w", err)
	}
	if n == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetSubmission(ctx, id)
}
