package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/litbook/litbook-server/internal/domain"
)

// ToggleFollow removes the follow edge if present, otherwise creates it.
// It returns whether followerID follows followingID afterwards.
func (s *Store) ToggleFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	var following bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`, followerID, followingID)
		if err != nil {
			return fmt.Errorf("delete follow: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)`,
			followerID, followingID, formatTime(time.Now())); err != nil {
			return fmt.Errorf("insert follow: %w", err)
		}
		following = true
		return nil
	})
	return following, err
}

// IsFollowing reports whether followerID follows followingID.
func (s *Store) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = ? AND following_id = ?)`,
		followerID, followingID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return exists, nil
}

// ListFollowers returns the users following userID, most recent first.
func (s *Store) ListFollowers(ctx context.Context, userID string) ([]domain.PublicUser, error) {
	return s.listFollowUsers(ctx, `
		SELECT u.id, u.name FROM follows f JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = ? ORDER BY f.created_at DESC`, userID)
}

// ListFollowing returns the users userID follows, most recent first.
func (s *Store) ListFollowing(ctx context.Context, userID string) ([]domain.PublicUser, error) {
	return s.listFollowUsers(ctx, `
		SELECT u.id, u.name FROM follows f JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = ? ORDER BY f.created_at DESC`, userID)
}

func (s *Store) listFollowUsers(ctx context.Context, query, userID string) ([]domain.PublicUser, error) {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	defer rows.Close()

	out := []domain.PublicUser{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out = append(out, domain.NewPublicUser(id, name))
	}
	return out, rows.Err()
}
