package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/litbook/litbook-server/internal/domain"
	domainerrors "github.com/litbook/litbook-server/internal/errors"
	"github.com/litbook/litbook-server/internal/id"
	"github.com/litbook/litbook-server/internal/segment"
	"github.com/litbook/litbook-server/internal/slug"
	"github.com/litbook/litbook-server/internal/store"
	"github.com/litbook/litbook-server/internal/validation"
)

// DefaultSegmentConcurrency bounds parallel chapter segmentation per request.
const DefaultSegmentConcurrency = 4

// ChapterInput is a submitted chapter. Content is always derived from
// RawText by the segmenter. With Format "html" RawText is converted to
// Markdown first and the Markdown is stored as the chapter's raw text.
type ChapterInput struct {
	ID       string `json:"id,omitempty" doc:"Existing chapter id; omit to create a chapter"`
	Title    string `json:"title" validate:"notblank,max=300"`
	Subtitle string `json:"subtitle,omitempty" validate:"max=300"`
	RawText  string `json:"raw_text" validate:"max=200000"`
	Format   string `json:"format,omitempty" validate:"omitempty,oneof=text html" enum:"text,html" doc:"Input format of raw_text (default text)"`
}

// BookRequest creates or fully replaces a book.
type BookRequest struct {
	Title       string         `json:"title" validate:"notblank,max=300"`
	Description string         `json:"description,omitempty" validate:"max=5000"`
	Preface     string         `json:"preface,omitempty" validate:"max=20000"`
	CoverURL    string         `json:"cover_url,omitempty" validate:"omitempty,url"`
	Chapters    []ChapterInput `json:"chapters" validate:"max=500,dive"`
}

func (r BookRequest) draft() domain.BookDraft {
	return domain.BookDraft{
		Title:       r.Title,
		Description: r.Description,
		Preface:     r.Preface,
		CoverURL:    r.CoverURL,
	}
}

// BookService manages books and their chapters.
type BookService struct {
	store       store.Store
	segmenter   *segment.Segmenter
	search      *SearchService
	activities  *ActivityService
	validator   *validation.Validator
	logger      *slog.Logger
	concurrency int
}

// NewBookService creates a book service.
func NewBookService(
	st store.Store,
	segmenter *segment.Segmenter,
	searchService *SearchService,
	activities *ActivityService,
	v *validation.Validator,
	logger *slog.Logger,
) *BookService {
	return &BookService{
		store:       st,
		segmenter:   segmenter,
		search:      searchService,
		activities:  activities,
		validator:   v,
		logger:      logger,
		concurrency: DefaultSegmentConcurrency,
	}
}

// Create publishes a new book authored by authorID.
func (s *BookService) Create(ctx context.Context, authorID string, req BookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	for _, ch := range req.Chapters {
		if ch.ID != "" {
			return nil, domainerrors.Validationf("chapter %s does not exist", ch.ID)
		}
	}

	author, err := s.store.GetUser(ctx, authorID)
	if err != nil {
		return nil, storeError(err, "user")
	}

	if req.Chapters, err = plainChapters(req.Chapters); err != nil {
		return nil, err
	}
	contents, err := s.segmentChapters(ctx, req.Chapters)
	if err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	book := &domain.Book{
		ID:          bookID,
		Slug:        slug.WithSuffix(req.Title, bookID),
		Title:       req.Title,
		Description: req.Description,
		Preface:     req.Preface,
		CoverURL:    req.CoverURL,
		AuthorID:    author.ID,
		AuthorName:  author.Name,
		Chapters:    make([]domain.Chapter, len(req.Chapters)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, in := range req.Chapters {
		book.Chapters[i] = domain.Chapter{
			Title:    in.Title,
			Subtitle: in.Subtitle,
			RawText:  in.RawText,
			Content:  contents[i],
		}
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, storeError(err, "book")
	}

	s.logger.Info("book published", "book_id", book.ID, "author_id", authorID, "chapters", len(book.Chapters))
	s.search.Index(book)
	s.activities.recordQuietly(ctx, authorID, domain.ActivityPublishedBook, book.ID)
	return book, nil
}

// Get returns a book with its chapters.
func (s *BookService) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	return loadBook(ctx, s.store, bookID)
}

// GetBySlug returns a book by slug.
func (s *BookService) GetBySlug(ctx context.Context, bookSlug string) (*domain.Book, error) {
	book, err := s.store.GetBookBySlug(ctx, bookSlug)
	if err != nil {
		return nil, storeError(err, "book")
	}
	return book, nil
}

// List returns book summaries, newest first.
func (s *BookService) List(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[domain.BookSummary], error) {
	page, err := s.store.ListBooks(ctx, params)
	if err != nil {
		return nil, storeError(err, "books")
	}
	return page, nil
}

// Update replaces the book fields and reconciles its chapters with
// req.Chapters: chapters keep their identity by id, new drafts are created
// and omitted chapters are deleted. Only the author may update. Either the
// whole update applies or nothing does.
//
// The slug is kept so existing links stay valid.
func (s *BookService) Update(ctx context.Context, userID, bookID string, req BookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := loadBook(ctx, s.store, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsAuthoredBy(userID) {
		return nil, domainerrors.Forbidden("only the author can edit this book")
	}

	if req.Chapters, err = plainChapters(req.Chapters); err != nil {
		return nil, err
	}
	contents, err := s.segmentChapters(ctx, req.Chapters)
	if err != nil {
		return nil, err
	}

	drafts := make([]domain.ChapterDraft, len(req.Chapters))
	for i, in := range req.Chapters {
		drafts[i] = domain.ChapterDraft{
			ID:       in.ID,
			Title:    in.Title,
			Subtitle: in.Subtitle,
			RawText:  in.RawText,
			Content:  contents[i],
		}
	}

	plan, err := s.store.UpdateBook(ctx, bookID, req.draft(), drafts)
	if err != nil {
		return nil, storeError(err, "book")
	}

	updated, err := loadBook(ctx, s.store, bookID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("book updated",
		"book_id", bookID,
		"created", len(plan.Creates),
		"updated", len(plan.Updates),
		"deleted", len(plan.Deletes),
	)
	s.search.Index(updated)
	s.activities.recordQuietly(ctx, userID, domain.ActivityUpdatedBook, bookID)
	return updated, nil
}

// Delete removes a book and everything that belongs to it. Only the author
// may delete.
func (s *BookService) Delete(ctx context.Context, userID, bookID string) error {
	book, err := loadBook(ctx, s.store, bookID)
	if err != nil {
		return err
	}
	if !book.IsAuthoredBy(userID) {
		return domainerrors.Forbidden("only the author can delete this book")
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return storeError(err, "book")
	}

	s.logger.Info("book deleted", "book_id", bookID, "author_id", userID)
	s.search.Remove(bookID)
	return nil
}

// Segment previews how text in the given format would be split into verses.
func (s *BookService) Segment(ctx context.Context, text, format string) (segment.Segmentation, error) {
	plain, err := segment.FromFormat(text, format)
	if err != nil {
		return segment.Segmentation{}, domainerrors.Wrap(err, domainerrors.CodeValidation, "text could not be converted")
	}
	return s.segmenter.Segment(ctx, plain), nil
}

// plainChapters returns a copy of chapters with every RawText in plain
// text, converting explicit HTML input.
func plainChapters(chapters []ChapterInput) ([]ChapterInput, error) {
	out := make([]ChapterInput, len(chapters))
	for i, ch := range chapters {
		text, err := segment.FromFormat(ch.RawText, ch.Format)
		if err != nil {
			return nil, domainerrors.Wrapf(err, domainerrors.CodeValidation, "chapter %d could not be converted", i+1)
		}
		ch.RawText = text
		ch.Format = ""
		out[i] = ch
	}
	return out, nil
}

// segmentChapters segments every chapter concurrently, before any write, so
// no transaction waits on a remote splitter. contents[i] belongs to
// chapters[i].
func (s *BookService) segmentChapters(ctx context.Context, chapters []ChapterInput) ([][]string, error) {
	contents := make([][]string, len(chapters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, ch := range chapters {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result := s.segmenter.Segment(gctx, ch.RawText)
			contents[i] = result.Verses
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("segment chapters: %w", err)
	}
	return contents, nil
}
