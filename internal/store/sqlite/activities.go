package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/litbook/litbook-server/internal/domain"
)

const activityColumns = `id, user_id, type, book_id, comment, created_at`

func scanActivity(row scanner) (*domain.Activity, error) {
	var (
		a               domain.Activity
		activityType    string
		bookID, comment sql.NullString
		createdAt       string
	)
	if err := row.Scan(&a.ID, &a.UserID, &activityType, &bookID, &comment, &createdAt); err != nil {
		return nil, err
	}

	a.Type = domain.ActivityType(activityType)
	a.BookID = bookID.String
	a.Comment = comment.String

	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &a, nil
}

// CreateActivity appends an activity. Activities without an id get a UUIDv7,
// which sorts by creation time.
func (s *Store) CreateActivity(ctx context.Context, a *domain.Activity) error {
	if a.ID == "" {
		v7, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate activity id: %w", err)
		}
		a.ID = v7.String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (`+activityColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.UserID,
		string(a.Type),
		nullString(a.BookID),
		nullString(a.Comment),
		formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListActivitiesForUser returns up to limit activities of a user, newest first.
func (s *Store) ListActivitiesForUser(ctx context.Context, userID string, limit int) ([]*domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+activityColumns+` FROM activities
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	out := []*domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
