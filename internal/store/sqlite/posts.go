package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/store"
)

const postSelect = `
	SELECT p.id, p.author_id, u.name, p.content, p.verses, p.book_id, p.image_url, p.created_at,
		(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)
	FROM posts p JOIN users u ON u.id = p.author_id`

func scanPost(row scanner) (*domain.Post, string, error) {
	var (
		p             domain.Post
		authorName    string
		verses        string
		bookID, image sql.NullString
		createdAt     string
	)
	if err := row.Scan(&p.ID, &p.AuthorID, &authorName, &p.Content, &verses, &bookID, &image, &createdAt, &p.CommentCount); err != nil {
		return nil, "", err
	}

	p.Author = domain.NewPublicUser(p.AuthorID, authorName)
	p.BookID = bookID.String
	p.ImageURL = image.String
	if err := json.Unmarshal([]byte(verses), &p.Verses); err != nil {
		return nil, "", fmt.Errorf("decode verses of post %s: %w", p.ID, err)
	}
	if p.Verses == nil {
		p.Verses = []string{}
	}

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, "", fmt.Errorf("parse created_at: %w", err)
	}
	return &p, createdAt, nil
}

// CreatePost inserts a post. Verses are stored as a JSON array.
func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	verses := post.Verses
	if verses == nil {
		verses = []string{}
	}
	data, err := json.Marshal(verses)
	if err != nil {
		return fmt.Errorf("encode verses: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO posts (id, author_id, content, verses, book_id, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.AuthorID,
		post.Content,
		string(data),
		nullString(post.BookID),
		nullString(post.ImageURL),
		formatTime(post.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("post already exists")
	}
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetPost returns a post with its author and comment count.
func (s *Store) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	p, _, err := scanPost(s.db.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, postID))
	if err != nil {
		return nil, notFound(err, "post")
	}
	return p, nil
}

// ListPosts returns posts newest first. A non-empty authorID restricts the
// feed to that author.
func (s *Store) ListPosts(ctx context.Context, authorID string, params store.PaginationParams) (*store.PaginatedResult[domain.Post], error) {
	params.Validate()

	cursor, err := store.DecodeCursor(params.Cursor, 2)
	if err != nil {
		return nil, err
	}

	query := postSelect + ` WHERE 1 = 1`
	args := []any{}
	if authorID != "" {
		query += ` AND p.author_id = ?`
		args = append(args, authorID)
	}
	if cursor != nil {
		query += ` AND (p.created_at, p.id) < (?, ?)`
		args = append(args, cursor[0], cursor[1])
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC LIMIT ?`
	args = append(args, params.Limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	result := &store.PaginatedResult[domain.Post]{Items: []domain.Post{}}
	var lastCreated string
	for rows.Next() {
		if len(result.Items) == params.Limit {
			result.HasMore = true
			break
		}
		p, createdAt, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		lastCreated = createdAt
		result.Items = append(result.Items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if result.HasMore {
		result.NextCursor = store.EncodeCursor(lastCreated, result.Items[len(result.Items)-1].ID)
	}
	return result, nil
}

// DeletePost deletes a post and, by cascade, its comments.
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("post not found")
	}
	return nil
}

// CreateComment inserts a comment. Returns store.ErrNotFound when the post
// does not exist.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, post_id, author_id, text, created_at)
		SELECT ?, id, ?, ?, ? FROM posts WHERE id = ?`,
		c.ID, c.AuthorID, c.Text, formatTime(c.CreatedAt), c.PostID)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("comment already exists")
	}
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("post not found")
	}
	return nil
}

// ListComments returns the comments of a post, newest first.
func (s *Store) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.post_id, c.author_id, u.name, c.text, c.created_at
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ?
		ORDER BY c.created_at DESC, c.id DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := []domain.Comment{}
	for rows.Next() {
		var (
			c          domain.Comment
			authorName string
			createdAt  string
		)
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &authorName, &c.Text, &createdAt); err != nil {
			return nil, err
		}
		c.Author = domain.NewPublicUser(c.AuthorID, authorName)
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetUserProfile returns a user's public profile: their books, newest first,
// and post and follow counts.
func (s *Store) GetUserProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{
		PublicUser: user.Public(),
		CreatedAt:  user.CreatedAt,
		Books:      []domain.BookSummary{},
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM posts WHERE author_id = ?),
			(SELECT COUNT(*) FROM follows WHERE following_id = ?),
			(SELECT COUNT(*) FROM follows WHERE follower_id = ?)`,
		userID, userID, userID).Scan(&profile.PostCount, &profile.FollowerCount, &profile.FollowingCount)
	if err != nil {
		return nil, fmt.Errorf("count profile: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.slug, b.title, b.description, b.cover_url, b.author_id, b.author_name, b.updated_at,
			(SELECT COUNT(*) FROM chapters c WHERE c.book_id = b.id)
		FROM books b
		WHERE b.author_id = ?
		ORDER BY b.created_at DESC, b.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list author books: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			b                  domain.BookSummary
			description, cover sql.NullString
			updatedAt          string
		)
		if err := rows.Scan(&b.ID, &b.Slug, &b.Title, &description, &cover, &b.AuthorID, &b.AuthorName,
			&updatedAt, &b.ChapterCount); err != nil {
			return nil, err
		}
		b.Description = description.String
		b.CoverURL = cover.String
		if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		profile.Books = append(profile.Books, b)
	}
	return profile, rows.Err()
}
