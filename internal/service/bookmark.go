package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/id"
	"github.com/litbook/litbook-server/internal/store"
	"github.com/litbook/litbook-server/internal/validation"
)

// AddBookmarkRequest marks a paragraph. Text defaults to the paragraph.
type AddBookmarkRequest struct {
	ChapterID      string `json:"chapter_id" validate:"required"`
	ParagraphIndex int    `json:"paragraph_index" validate:"gte=1"`
	Text           string `json:"text,omitempty" validate:"max=5000"`
}

// BookmarkService manages per-paragraph bookmarks. At most one bookmark
// exists per (user, book, chapter, paragraph); the first one wins.
type BookmarkService struct {
	store      store.Store
	activities *ActivityService
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewBookmarkService creates a bookmark service.
func NewBookmarkService(st store.Store, activities *ActivityService, v *validation.Validator, logger *slog.Logger) *BookmarkService {
	return &BookmarkService{store: st, activities: activities, validator: v, logger: logger}
}

// Add bookmarks a paragraph. An existing bookmark at the same position is
// returned unchanged with created=false.
func (s *BookmarkService) Add(ctx context.Context, userID, bookID string, req AddBookmarkRequest) (*domain.Bookmark, bool, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, false, err
	}

	book, err := loadBook(ctx, s.store, bookID)
	if err != nil {
		return nil, false, err
	}
	paragraph, err := resolvePosition(book, req.ChapterID, req.ParagraphIndex)
	if err != nil {
		return nil, false, err
	}

	pos := domain.Position{BookID: bookID, ChapterID: req.ChapterID, ParagraphIndex: req.ParagraphIndex}
	if existing, err := s.store.GetBookmarkAt(ctx, userID, pos); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, false, storeError(err, "bookmark")
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		text = paragraph
	}

	bookmarkID, err := id.Generate(id.PrefixBookmark)
	if err != nil {
		return nil, false, err
	}
	bookmark := &domain.Bookmark{
		ID:             bookmarkID,
		UserID:         userID,
		BookID:         bookID,
		ChapterID:      req.ChapterID,
		ParagraphIndex: req.ParagraphIndex,
		Text:           text,
		CreatedAt:      time.Now(),
	}

	err = s.store.CreateBookmark(ctx, bookmark)
	if errors.Is(err, store.ErrAlreadyExists) {
		// Lost a concurrent insert; the winner is the bookmark.
		winner, getErr := s.store.GetBookmarkAt(ctx, userID, pos)
		if getErr != nil {
			return nil, false, storeError(getErr, "bookmark")
		}
		return winner, false, nil
	}
	if err != nil {
		return nil, false, storeError(err, "bookmark")
	}

	s.activities.recordQuietly(ctx, userID, domain.ActivityAddedBookmark, bookID)
	return bookmark, true, nil
}

// Remove deletes the bookmark at a position. A missing bookmark is
// (nil, false, nil).
func (s *BookmarkService) Remove(ctx context.Context, userID, bookID, chapterID string, paragraphIndex int) (*domain.Bookmark, bool, error) {
	pos := domain.Position{BookID: bookID, ChapterID: chapterID, ParagraphIndex: paragraphIndex}
	removed, err := s.store.DeleteBookmarkAt(ctx, userID, pos)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storeError(err, "bookmark")
	}
	return removed, true, nil
}

// Exists reports whether a bookmark exists at a position.
func (s *BookmarkService) Exists(ctx context.Context, userID, bookID, chapterID string, paragraphIndex int) (bool, error) {
	pos := domain.Position{BookID: bookID, ChapterID: chapterID, ParagraphIndex: paragraphIndex}
	_, err := s.store.GetBookmarkAt(ctx, userID, pos)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeError(err, "bookmark")
	}
	return true, nil
}

// List returns the bookmarks of userID, newest first.
func (s *BookmarkService) List(ctx context.Context, userID string) ([]*domain.Bookmark, error) {
	list, err := s.store.ListBookmarks(ctx, userID)
	if err != nil {
		return nil, storeError(err, "bookmarks")
	}
	return list, nil
}
