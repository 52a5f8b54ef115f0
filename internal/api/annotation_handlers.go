package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/litbook/litbook-server/internal/service"
)

func (s *Server) registerAnnotationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "annotateParagraph",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/annotations",
		Summary:     "Annotate a paragraph",
		Description: "Asks the configured LLM to explain a paragraph in the context of the paragraphs before it. Returns 503 when annotations are disabled.",
		Tags:        []string{"Reading"},
		Security:    bearer,
	}, s.handleAnnotate)
}

// AnnotateInput selects the paragraph to annotate.
type AnnotateInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.AnnotateRequest
}

// AnnotationOutput wraps an annotation.
type AnnotationOutput struct {
	Body *service.Annotation
}

func (s *Server) handleAnnotate(ctx context.Context, input *AnnotateInput) (*AnnotationOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	annotation, err := s.services.Annotation.Annotate(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &AnnotationOutput{Body: annotation}, nil
}
