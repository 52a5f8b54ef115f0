package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/litbook/litbook-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Full-text search over titles, descriptions, authors and chapter titles. An empty query lists recently updated books.",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains search parameters.
type SearchInput struct {
	Query    string `query:"q" maxLength:"500" doc:"Search query"`
	AuthorID string `query:"author_id" doc:"Only books by this author"`
	Limit    int    `query:"limit" minimum:"0" doc:"Max hits (default 20, max 100)"`
	Offset   int    `query:"offset" minimum:"0" doc:"Hits to skip"`
}

// SearchOutput wraps search results.
type SearchOutput struct {
	Body *search.Result
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	res, err := s.services.Search.Search(ctx, search.Params{
		Query:    input.Query,
		AuthorID: input.AuthorID,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: res}, nil
}
