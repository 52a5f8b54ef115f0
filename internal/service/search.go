package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/search"
	"github.com/litbook/litbook-server/internal/store"
)

// SearchService keeps the book index in step with the store and queries it.
type SearchService struct {
	store  store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewSearchService creates a search service over index.
func NewSearchService(st store.Store, index *search.Index, logger *slog.Logger) *SearchService {
	return &SearchService{store: st, index: index, logger: logger}
}

// Search queries the book index.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	res, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return res, nil
}

// Index adds or replaces a book. Index failures are logged; the store stays
// the source of truth and Reindex repairs drift.
func (s *SearchService) Index(book *domain.Book) {
	if err := s.index.IndexBook(search.DocumentFromBook(book)); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
}

// Remove drops a book from the index.
func (s *SearchService) Remove(bookID string) {
	if err := s.index.DeleteBook(bookID); err != nil {
		s.logger.Warn("failed to remove book from index", "book_id", bookID, "error", err)
	}
}

// Reindex rebuilds the index from every stored book and returns the count.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	var docs []*search.BookDocument

	params := store.PaginationParams{Limit: store.MaxPageSize}
	for {
		page, err := s.store.ListBooks(ctx, params)
		if err != nil {
			return 0, storeError(err, "books")
		}
		for _, summary := range page.Items {
			book, err := s.store.GetBook(ctx, summary.ID)
			if err != nil {
				return 0, storeError(err, "book")
			}
			docs = append(docs, search.DocumentFromBook(book))
		}
		if !page.HasMore {
			break
		}
		params.Cursor = page.NextCursor
	}

	if err := s.index.Rebuild(docs); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	s.logger.Info("search index rebuilt", "books", len(docs))
	return len(docs), nil
}
