// Package search provides full-text search over books using Bleve.
package search

import (
	"github.com/litbook/litbook-server/internal/domain"
)

// BookDocument is the indexed form of a book. Author and chapter titles are
// denormalized so one query covers them.
type BookDocument struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Author        string   `json:"author"`
	AuthorID      string   `json:"author_id"`
	ChapterTitles []string `json:"chapter_titles,omitempty"`
	ChapterCount  int      `json:"chapter_count"`
	UpdatedAt     int64    `json:"updated_at"`
}

// DocumentFromBook builds the index document for b.
func DocumentFromBook(b *domain.Book) *BookDocument {
	titles := make([]string, 0, len(b.Chapters))
	for _, ch := range b.Chapters {
		titles = append(titles, ch.Title)
	}
	return &BookDocument{
		ID:            b.ID,
		Slug:          b.Slug,
		Title:         b.Title,
		Description:   b.Description,
		Author:        b.AuthorName,
		AuthorID:      b.AuthorID,
		ChapterTitles: titles,
		ChapterCount:  len(b.Chapters),
		UpdatedAt:     b.UpdatedAt.UnixMilli(),
	}
}

// toMap keys the document by the mapped field names.
func (d *BookDocument) toMap() map[string]any {
	m := map[string]any{
		"id":            d.ID,
		"slug":          d.Slug,
		"title":         d.Title,
		"author":        d.Author,
		"author_id":     d.AuthorID,
		"chapter_count": float64(d.ChapterCount),
		"updated_at":    float64(d.UpdatedAt),
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.ChapterTitles) > 0 {
		m["chapter_titles"] = d.ChapterTitles
	}
	return m
}
