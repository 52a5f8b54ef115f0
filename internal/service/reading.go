package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/store"
	"github.com/litbook/litbook-server/internal/validation"
)

// SaveProgressRequest is the position a reader stopped at.
type SaveProgressRequest struct {
	ChapterID      string `json:"chapter_id" validate:"required"`
	ParagraphIndex int    `json:"paragraph_index" validate:"gte=1"`
}

// ReadingService tracks one reading position per user and book.
type ReadingService struct {
	store      store.Store
	activities *ActivityService
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewReadingService creates a reading service.
func NewReadingService(st store.Store, activities *ActivityService, v *validation.Validator, logger *slog.Logger) *ReadingService {
	return &ReadingService{store: st, activities: activities, validator: v, logger: logger}
}

// Save overwrites the reading position of userID in bookID. The chapter must
// belong to the book and the paragraph index must exist in it. The first
// save for a book records STARTED_READING.
func (s *ReadingService) Save(ctx context.Context, userID, bookID string, req SaveProgressRequest) (*domain.ReadingProgress, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := loadBook(ctx, s.store, bookID)
	if err != nil {
		return nil, err
	}
	if _, err := resolvePosition(book, req.ChapterID, req.ParagraphIndex); err != nil {
		return nil, err
	}

	progress := &domain.ReadingProgress{
		UserID:         userID,
		BookID:         bookID,
		ChapterID:      req.ChapterID,
		ParagraphIndex: req.ParagraphIndex,
		UpdatedAt:      time.Now(),
	}
	created, err := s.store.UpsertProgress(ctx, progress)
	if err != nil {
		return nil, storeError(err, "reading progress")
	}

	if created {
		s.logger.Info("reader started book", "user_id", userID, "book_id", bookID)
		s.activities.recordQuietly(ctx, userID, domain.ActivityStartedReading, bookID)
	}
	return progress, nil
}

// Get returns the stored position of userID in bookID. A missing position is
// (nil, false, nil). A position that no longer resolves against the current
// chapters is returned with Stale set.
func (s *ReadingService) Get(ctx context.Context, userID, bookID string) (*domain.ReadingProgress, bool, error) {
	progress, err := s.store.GetProgress(ctx, userID, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storeError(err, "reading progress")
	}

	book, err := loadBook(ctx, s.store, bookID)
	if err != nil {
		return nil, false, err
	}
	pos := domain.Position{BookID: bookID, ChapterID: progress.ChapterID, ParagraphIndex: progress.ParagraphIndex}
	if _, ok := pos.Resolve(book); !ok {
		progress.Stale = true
	}
	return progress, true, nil
}

// List returns every position of userID, most recently updated first.
func (s *ReadingService) List(ctx context.Context, userID string) ([]*domain.ReadingProgress, error) {
	list, err := s.store.ListProgress(ctx, userID)
	if err != nil {
		return nil, storeError(err, "reading progress")
	}
	return list, nil
}
