package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/litbook/litbook-server/internal/domain"
	domainerrors "github.com/litbook/litbook-server/internal/errors"
	"github.com/litbook/litbook-server/internal/segment"
	"github.com/litbook/litbook-server/internal/service"
	"github.com/litbook/litbook-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns book summaries, most recently updated first",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Publish a book",
		Description:   "Creates a book authored by the caller. Chapter text is split into verses.",
		Tags:          []string{"Books"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookById",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its chapters. The id may also be the book's slug.",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Replaces the book fields and reconciles its chapters. Chapters keep their identity by id; omitted chapters are deleted.",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Delete book",
		Description:   "Deletes a book with its chapters, progress and bookmarks",
		Tags:          []string{"Books"},
		Security:      bearer,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "segmentText",
		Method:      http.MethodPost,
		Path:        "/api/v1/segment",
		Summary:     "Preview segmentation",
		Description: "Splits text into verses the same way chapter text is split",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleSegment)
}

// === DTOs ===

// ListBooksInput contains pagination parameters.
type ListBooksInput struct {
	Limit  int    `query:"limit" doc:"Page size (default 50, max 200)"`
	Cursor string `query:"cursor" doc:"Cursor from the previous page"`
}

// ListBooksOutput wraps one page of book summaries.
type ListBooksOutput struct {
	Body *store.PaginatedResult[domain.BookSummary]
}

// BookIDInput addresses a single book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// CreateBookInput contains the new book.
type CreateBookInput struct {
	Body service.BookRequest
}

// UpdateBookInput contains the replacement book.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.BookRequest
}

// BookOutput wraps a book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// SegmentInput contains text to segment.
type SegmentInput struct {
	Body struct {
		Text   string `json:"text" maxLength:"200000" doc:"Raw chapter text"`
		Format string `json:"format,omitempty" enum:"text,html" doc:"Input format (default text)"`
	}
}

// SegmentOutput wraps a segmentation.
type SegmentOutput struct {
	Body segment.Segmentation
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	page, err := s.services.Book.List(ctx, store.PaginationParams{Limit: input.Limit, Cursor: input.Cursor})
	if err != nil {
		return nil, err
	}
	return &ListBooksOutput{Body: page}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Create(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Book.Get(ctx, input.ID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		book, err = s.services.Book.GetBySlug(ctx, input.ID)
	}
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Update(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleSegment(ctx context.Context, input *SegmentInput) (*SegmentOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	result, err := s.services.Book.Segment(ctx, input.Body.Text, input.Body.Format)
	if err != nil {
		return nil, err
	}
	return &SegmentOutput{Body: result}, nil
}
