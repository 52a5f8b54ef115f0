package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/store"
)

const bookmarkColumns = `id, user_id, book_id, chapter_id, paragraph_index, text, created_at`

func scanBookmark(row scanner) (*domain.Bookmark, error) {
	var (
		b         domain.Bookmark
		createdAt string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.BookID, &b.ChapterID, &b.ParagraphIndex, &b.Text, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &b, nil
}

// CreateBookmark inserts a bookmark. A bookmark already present at the same
// (user, book, chapter, paragraph) yields store.ErrAlreadyExists.
func (s *Store) CreateBookmark(ctx context.Context, b *domain.Bookmark) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (`+bookmarkColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.UserID,
		b.BookID,
		b.ChapterID,
		b.ParagraphIndex,
		b.Text,
		formatTime(b.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("bookmark already exists")
	}
	if err != nil {
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

// GetBookmarkAt returns the bookmark of a user at an exact position.
func (s *Store) GetBookmarkAt(ctx context.Context, userID string, pos domain.Position) (*domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+bookmarkColumns+` FROM bookmarks
		WHERE user_id = ? AND book_id = ? AND chapter_id = ? AND paragraph_index = ?`,
		userID, pos.BookID, pos.ChapterID, pos.ParagraphIndex)
	b, err := scanBookmark(row)
	if err != nil {
		return nil, notFound(err, "bookmark")
	}
	return b, nil
}

// DeleteBookmarkAt deletes and returns the bookmark at an exact position.
func (s *Store) DeleteBookmarkAt(ctx context.Context, userID string, pos domain.Position) (*domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx, `
		DELETE FROM bookmarks
		WHERE user_id = ? AND book_id = ? AND chapter_id = ? AND paragraph_index = ?
		RETURNING `+bookmarkColumns,
		userID, pos.BookID, pos.ChapterID, pos.ParagraphIndex)
	b, err := scanBookmark(row)
	if err != nil {
		return nil, notFound(err, "bookmark")
	}
	return b, nil
}

// ListBookmarks returns a user's bookmarks, newest first.
func (s *Store) ListBookmarks(ctx context.Context, userID string) ([]*domain.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	return collectBookmarks(rows)
}

func collectBookmarks(rows *sql.Rows) ([]*domain.Bookmark, error) {
	out := []*domain.Bookmark{}
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
