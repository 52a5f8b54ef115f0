// Package domain contains the core LitBook entities.
package domain

import (
	"time"
)

// Book is a published work made of ordered chapters.
type Book struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Preface     string    `json:"preface,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"` // denormalized from the author's user row
	Chapters    []Chapter `json:"chapters"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Chapter is one ordered section of a book. Content holds the segmented
// paragraphs ("verses"); RawText keeps the unsplit input for re-editing.
// Order is 0-based and contiguous within the book.
type Chapter struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle,omitempty"`
	RawText   string    `json:"raw_text"`
	Content   []string  `json:"content"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAuthoredBy reports whether userID wrote the book.
func (b *Book) IsAuthoredBy(userID string) bool {
	return b.AuthorID != "" && b.AuthorID == userID
}

// Chapter finds a chapter of the book by id.
func (b *Book) Chapter(chapterID string) (*Chapter, bool) {
	for i := range b.Chapters {
		if b.Chapters[i].ID == chapterID {
			return &b.Chapters[i], true
		}
	}
	return nil, false
}

// Paragraph returns the paragraph at a 1-based index.
func (c *Chapter) Paragraph(index int) (string, bool) {
	if index < 1 || index > len(c.Content) {
		return "", false
	}
	return c.Content[index-1], true
}

// ParagraphCount returns the number of paragraphs in the chapter.
func (c *Chapter) ParagraphCount() int {
	return len(c.Content)
}

// ChapterDraft is one chapter of a create or update submission. An empty ID
// means "create"; a non-empty ID must name a chapter of the same book.
type ChapterDraft struct {
	ID       string
	Title    string
	Subtitle string
	RawText  string
	Content  []string
}

// BookDraft is the book-level part of a create or update submission.
type BookDraft struct {
	Title       string
	Description string
	Preface     string
	CoverURL    string
}

// BookSummary is a book without chapter bodies, used by list views.
type BookSummary struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	CoverURL     string    `json:"cover_url,omitempty"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	ChapterCount int       `json:"chapter_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}
