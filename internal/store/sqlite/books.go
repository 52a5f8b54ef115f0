package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/id"
	"github.com/litbook/litbook-server/internal/reconcile"
	"github.com/litbook/litbook-server/internal/store"
)

const bookColumns = `id, slug, title, description, preface, cover_url, author_id, author_name, created_at, updated_at`

const chapterColumns = `id, book_id, title, subtitle, raw_text, content, position, created_at, updated_at`

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanBook(row scanner) (*domain.Book, error) {
	var (
		b                             domain.Book
		description, preface, coverURL sql.NullString
		createdAt, updatedAt          string
	)
	err := row.Scan(&b.ID, &b.Slug, &b.Title, &description, &preface, &coverURL,
		&b.AuthorID, &b.AuthorName, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	b.Description = description.String
	b.Preface = preface.String
	b.CoverURL = coverURL.String
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	b.Chapters = []domain.Chapter{}
	return &b, nil
}

func scanChapter(row scanner) (*domain.Chapter, error) {
	var (
		ch                   domain.Chapter
		subtitle             sql.NullString
		content              string
		createdAt, updatedAt string
	)
	err := row.Scan(&ch.ID, &ch.BookID, &ch.Title, &subtitle, &ch.RawText, &content,
		&ch.Order, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	ch.Subtitle = subtitle.String
	if err := json.Unmarshal([]byte(content), &ch.Content); err != nil {
		return nil, fmt.Errorf("decode chapter %s content: %w", ch.ID, err)
	}
	if ch.Content == nil {
		ch.Content = []string{}
	}
	if ch.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if ch.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &ch, nil
}

func encodeContent(content []string) (string, error) {
	if content == nil {
		content = []string{}
	}
	data, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("encode content: %w", err)
	}
	return string(data), nil
}

// CreateBook inserts a book and all of its chapters in one transaction.
// Chapters without an id get one; every chapter's order is its index.
// Returns store.ErrAlreadyExists on a duplicate id or slug.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	for i := range book.Chapters {
		ch := &book.Chapters[i]
		if ch.ID == "" {
			chID, err := id.Generate(id.PrefixChapter)
			if err != nil {
				return err
			}
			ch.ID = chID
		}
		ch.BookID = book.ID
		ch.Order = i
		if ch.CreatedAt.IsZero() {
			ch.CreatedAt = book.CreatedAt
		}
		ch.UpdatedAt = book.UpdatedAt
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO books (`+bookColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			book.ID,
			book.Slug,
			book.Title,
			nullString(book.Description),
			nullString(book.Preface),
			nullString(book.CoverURL),
			book.AuthorID,
			book.AuthorName,
			formatTime(book.CreatedAt),
			formatTime(book.UpdatedAt),
		)
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("book already exists")
		}
		if err != nil {
			return fmt.Errorf("insert book: %w", err)
		}

		for i := range book.Chapters {
			if err := insertChapter(ctx, tx, &book.Chapters[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("book created", "book_id", book.ID, "chapters", len(book.Chapters))
	return nil
}

func insertChapter(ctx context.Context, tx *sql.Tx, ch *domain.Chapter) error {
	content, err := encodeContent(ch.Content)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO chapters (`+chapterColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.ID,
		ch.BookID,
		ch.Title,
		nullString(ch.Subtitle),
		ch.RawText,
		content,
		ch.Order,
		formatTime(ch.CreatedAt),
		formatTime(ch.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert chapter %d: %w", ch.Order, err)
	}
	return nil
}

// GetBook returns a book with its chapters in order.
func (s *Store) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, bookID)
	return s.loadBook(ctx, row)
}

// GetBookBySlug returns a book by its slug.
func (s *Store) GetBookBySlug(ctx context.Context, slug string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE slug = ?`, slug)
	return s.loadBook(ctx, row)
}

func (s *Store) loadBook(ctx context.Context, row *sql.Row) (*domain.Book, error) {
	b, err := scanBook(row)
	if err != nil {
		return nil, notFound(err, "book")
	}

	chapters, err := loadChapters(ctx, s.db, b.ID)
	if err != nil {
		return nil, err
	}
	b.Chapters = chapters
	return b, nil
}

func loadChapters(ctx context.Context, q queryer, bookID string) ([]domain.Chapter, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE book_id = ? ORDER BY position`, bookID)
	if err != nil {
		return nil, fmt.Errorf("query chapters: %w", err)
	}
	defer rows.Close()

	chapters := []domain.Chapter{}
	for rows.Next() {
		ch, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, *ch)
	}
	return chapters, rows.Err()
}

// ListBooks returns book summaries, newest first.
func (s *Store) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[domain.BookSummary], error) {
	params.Validate()

	cursor, err := store.DecodeCursor(params.Cursor, 2)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT b.id, b.slug, b.title, b.description, b.cover_url, b.author_id, b.author_name,
			b.created_at, b.updated_at,
			(SELECT COUNT(*) FROM chapters c WHERE c.book_id = b.id)
		FROM books b`
	args := []any{}
	if cursor != nil {
		query += ` WHERE (b.created_at, b.id) < (?, ?)`
		args = append(args, cursor[0], cursor[1])
	}
	query += ` ORDER BY b.created_at DESC, b.id DESC LIMIT ?`
	args = append(args, params.Limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	result := &store.PaginatedResult[domain.BookSummary]{Items: []domain.BookSummary{}}
	var lastCreated string
	for rows.Next() {
		var (
			b                    domain.BookSummary
			description, cover   sql.NullString
			createdAt, updatedAt string
		)
		if err := rows.Scan(&b.ID, &b.Slug, &b.Title, &description, &cover, &b.AuthorID, &b.AuthorName,
			&createdAt, &updatedAt, &b.ChapterCount); err != nil {
			return nil, err
		}
		if len(result.Items) == params.Limit {
			result.HasMore = true
			break
		}
		b.Description = description.String
		b.CoverURL = cover.String
		if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		lastCreated = createdAt
		result.Items = append(result.Items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if result.HasMore {
		result.NextCursor = store.EncodeCursor(lastCreated, result.Items[len(result.Items)-1].ID)
	}
	return result, nil
}

// UpdateBook overwrites the book fields and reconciles its chapters against
// the submitted list in a single transaction. Chapter content must already
// be segmented. On any error nothing is written.
//
// The returned plan carries the ids assigned to created chapters.
func (s *Store) UpdateBook(ctx context.Context, bookID string, draft domain.BookDraft, chapters []domain.ChapterDraft) (*reconcile.Plan, error) {
	now := time.Now().UTC()
	var plan *reconcile.Plan

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE books SET title = ?, description = ?, preface = ?, cover_url = ?, updated_at = ?
			WHERE id = ?`,
			draft.Title,
			nullString(draft.Description),
			nullString(draft.Preface),
			nullString(draft.CoverURL),
			formatTime(now),
			bookID,
		)
		if err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound.WithMessage("book not found")
		}

		existing, err := chapterIDs(ctx, tx, bookID)
		if err != nil {
			return err
		}
		owners, err := chapterOwners(ctx, tx, reconcile.Foreign(existing, chapters))
		if err != nil {
			return err
		}

		plan, err = reconcile.Compute(reconcile.Input{
			BookID:    bookID,
			Existing:  existing,
			Submitted: chapters,
			Owners:    owners,
		})
		if err != nil {
			return err
		}

		return applyPlan(ctx, tx, plan, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("book chapters reconciled",
		"book_id", bookID,
		"created", len(plan.Creates),
		"updated", len(plan.Updates),
		"deleted", len(plan.Deletes),
	)
	return plan, nil
}

func applyPlan(ctx context.Context, tx *sql.Tx, plan *reconcile.Plan, now time.Time) error {
	if len(plan.Deletes) > 0 {
		args := append([]any{plan.BookID}, stringArgs(plan.Deletes)...)
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM chapters WHERE book_id = ? AND id IN (`+placeholders(len(plan.Deletes))+`)`, args...); err != nil {
			return fmt.Errorf("delete chapters: %w", err)
		}
	}

	// Move surviving rows out of the way of the unique (book_id, position)
	// index before renumbering.
	if _, err := tx.ExecContext(ctx,
		`UPDATE chapters SET position = -position - 1 WHERE book_id = ?`, plan.BookID); err != nil {
		return fmt.Errorf("park chapter positions: %w", err)
	}

	for _, u := range plan.Updates {
		content, err := encodeContent(u.Draft.Content)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE chapters SET title = ?, subtitle = ?, raw_text = ?, content = ?, position = ?, updated_at = ?
			WHERE id = ? AND book_id = ?`,
			u.Draft.Title,
			nullString(u.Draft.Subtitle),
			u.Draft.RawText,
			content,
			u.Order,
			formatTime(now),
			u.Draft.ID,
			plan.BookID,
		); err != nil {
			return fmt.Errorf("update chapter %s: %w", u.Draft.ID, err)
		}
	}

	for i := range plan.Creates {
		c := &plan.Creates[i]
		chID, err := id.Generate(id.PrefixChapter)
		if err != nil {
			return err
		}
		c.Draft.ID = chID

		if err := insertChapter(ctx, tx, &domain.Chapter{
			ID:        chID,
			BookID:    plan.BookID,
			Title:     c.Draft.Title,
			Subtitle:  c.Draft.Subtitle,
			RawText:   c.Draft.RawText,
			Content:   c.Draft.Content,
			Order:     c.Order,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
	}
	return nil
}

func chapterIDs(ctx context.Context, tx *sql.Tx, bookID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM chapters WHERE book_id = ? ORDER BY position`, bookID)
	if err != nil {
		return nil, fmt.Errorf("query chapter ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var chID string
		if err := rows.Scan(&chID); err != nil {
			return nil, err
		}
		ids = append(ids, chID)
	}
	return ids, rows.Err()
}

// chapterOwners maps each of ids that exists to its owning book.
func chapterOwners(ctx context.Context, tx *sql.Tx, ids []string) (map[string]string, error) {
	owners := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, book_id FROM chapters WHERE id IN (`+placeholders(len(ids))+`)`, stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query chapter owners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chID, bookID string
		if err := rows.Scan(&chID, &bookID); err != nil {
			return nil, err
		}
		owners[chID] = bookID
	}
	return owners, rows.Err()
}

// DeleteBook removes a book. Chapters, progress and bookmarks cascade.
func (s *Store) DeleteBook(ctx context.Context, bookID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, bookID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("book not found")
	}
	return nil
}
