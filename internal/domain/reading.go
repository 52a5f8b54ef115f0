package domain

import "time"

// ReadingProgress is the single last-visited position of a user in a book.
// ParagraphIndex is 1-based into the chapter's Content.
type ReadingProgress struct {
	UserID         string    `json:"user_id"`
	BookID         string    `json:"book_id"`
	ChapterID      string    `json:"chapter_id"`
	ParagraphIndex int       `json:"paragraph_index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Stale is set on read when the chapter was removed from the book or the
	// paragraph index no longer fits the chapter. Not persisted.
	Stale bool `json:"stale,omitempty"`
}

// Bookmark marks one paragraph. Text is copied at bookmark time so the
// excerpt survives later chapter edits.
type Bookmark struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	BookID         string    `json:"book_id"`
	ChapterID      string    `json:"chapter_id"`
	ParagraphIndex int       `json:"paragraph_index"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

// Position addresses one paragraph of one chapter of one book.
type Position struct {
	BookID         string
	ChapterID      string
	ParagraphIndex int
}

// Resolve checks that the position addresses an existing paragraph of book
// and returns that paragraph's text.
func (p Position) Resolve(book *Book) (string, bool) {
	if book == nil || book.ID != p.BookID {
		return "", false
	}
	ch, ok := book.Chapter(p.ChapterID)
	if !ok {
		return "", false
	}
	return ch.Paragraph(p.ParagraphIndex)
}
