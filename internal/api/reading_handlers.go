package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/service"
)

func (s *Server) registerReadingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getReadingProgress",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/progress",
		Summary:     "Get reading position",
		Description: "Returns where the caller stopped reading the book. found is false when the book was never opened.",
		Tags:        []string{"Reading"},
		Security:    bearer,
	}, s.handleGetProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveReadingProgress",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/progress",
		Summary:     "Save reading position",
		Description: "Overwrites the caller's position in the book",
		Tags:        []string{"Reading"},
		Security:    bearer,
	}, s.handleSaveProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReadingProgress",
		Method:      http.MethodGet,
		Path:        "/api/v1/progress",
		Summary:     "List reading positions",
		Description: "Returns the caller's position in every book, most recent first",
		Tags:        []string{"Reading"},
		Security:    bearer,
	}, s.handleListProgress)
}

// === DTOs ===

// SaveProgressInput contains the new position.
type SaveProgressInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.SaveProgressRequest
}

// ProgressResponse is a possibly absent reading position.
type ProgressResponse struct {
	Found    bool                    `json:"found" doc:"Whether a position is stored"`
	Progress *domain.ReadingProgress `json:"progress,omitempty" doc:"The stored position"`
}

// ProgressOutput wraps a reading position for Huma.
type ProgressOutput struct {
	Body ProgressResponse
}

// ProgressListOutput wraps all reading positions of the caller.
type ProgressListOutput struct {
	Body struct {
		Items []*domain.ReadingProgress `json:"items"`
	}
}

// === Handlers ===

func (s *Server) handleGetProgress(ctx context.Context, input *BookIDInput) (*ProgressOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	progress, found, err := s.services.Reading.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &ProgressOutput{Body: ProgressResponse{Found: found, Progress: progress}}, nil
}

func (s *Server) handleSaveProgress(ctx context.Context, input *SaveProgressInput) (*ProgressOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	progress, err := s.services.Reading.Save(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ProgressOutput{Body: ProgressResponse{Found: true, Progress: progress}}, nil
}

func (s *Server) handleListProgress(ctx context.Context, _ *struct{}) (*ProgressListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.Reading.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &ProgressListOutput{}
	out.Body.Items = list
	return out, nil
}
