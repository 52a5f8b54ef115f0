package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/litbook/litbook-server/internal/domain"
)

const progressColumns = `user_id, book_id, chapter_id, paragraph_index, created_at, updated_at`

func scanProgress(row scanner) (*domain.ReadingProgress, error) {
	var (
		p                    domain.ReadingProgress
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.UserID, &p.BookID, &p.ChapterID, &p.ParagraphIndex, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &p, nil
}

// UpsertProgress inserts or overwrites the single progress row of
// (user, book) in one statement. progress is refreshed from the stored row;
// the bool reports whether the row was newly created.
func (s *Store) UpsertProgress(ctx context.Context, progress *domain.ReadingProgress) (bool, error) {
	if progress.UpdatedAt.IsZero() {
		progress.UpdatedAt = time.Now()
	}
	now := formatTime(progress.UpdatedAt)

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO reading_progress (`+progressColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, book_id) DO UPDATE SET
			chapter_id = excluded.chapter_id,
			paragraph_index = excluded.paragraph_index,
			updated_at = excluded.updated_at
		RETURNING `+progressColumns,
		progress.UserID,
		progress.BookID,
		progress.ChapterID,
		progress.ParagraphIndex,
		now,
		now,
	)

	stored, err := scanProgress(row)
	if err != nil {
		return false, fmt.Errorf("upsert progress: %w", err)
	}
	*progress = *stored

	// On conflict created_at keeps its original value.
	return stored.CreatedAt.Equal(stored.UpdatedAt), nil
}

// GetProgress returns the progress of a user in a book.
func (s *Store) GetProgress(ctx context.Context, userID, bookID string) (*domain.ReadingProgress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM reading_progress WHERE user_id = ? AND book_id = ?`, userID, bookID)
	p, err := scanProgress(row)
	if err != nil {
		return nil, notFound(err, "reading progress")
	}
	return p, nil
}

// ListProgress returns all progress rows of a user, most recently updated first.
func (s *Store) ListProgress(ctx context.Context, userID string) ([]*domain.ReadingProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+progressColumns+` FROM reading_progress WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	out := []*domain.ReadingProgress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
