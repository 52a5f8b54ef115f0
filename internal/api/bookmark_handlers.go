package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/service"
)

func (s *Server) registerBookmarkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookmarks",
		Summary:     "List bookmarks",
		Description: "Returns the caller's bookmarks, newest first",
		Tags:        []string{"Bookmarks"},
		Security:    bearer,
	}, s.handleListBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBookmark",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/bookmarks",
		Summary:     "Bookmark a paragraph",
		Description: "Bookmarks a paragraph. Adding an existing bookmark returns it unchanged with created=false.",
		Tags:        []string{"Bookmarks"},
		Security:    bearer,
	}, s.handleAddBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBookmark",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/bookmarks",
		Summary:     "Remove a bookmark",
		Description: "Removes the bookmark at a paragraph. removed is false when there was none.",
		Tags:        []string{"Bookmarks"},
		Security:    bearer,
	}, s.handleRemoveBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "isBookmarked",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/bookmarks/status",
		Summary:     "Check bookmark",
		Description: "Reports whether the caller bookmarked a paragraph",
		Tags:        []string{"Bookmarks"},
		Security:    bearer,
	}, s.handleBookmarkStatus)
}

// === DTOs ===

// AddBookmarkInput contains the paragraph to bookmark.
type AddBookmarkInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.AddBookmarkRequest
}

// BookmarkPositionInput addresses one paragraph of a book.
type BookmarkPositionInput struct {
	ID             string `path:"id" doc:"Book ID"`
	ChapterID      string `query:"chapter_id" required:"true" doc:"Chapter ID"`
	ParagraphIndex int    `query:"paragraph_index" required:"true" minimum:"1" doc:"1-based paragraph index"`
}

// AddBookmarkOutput wraps the bookmark at the position.
type AddBookmarkOutput struct {
	Body struct {
		Created  bool             `json:"created" doc:"False when the bookmark already existed"`
		Bookmark *domain.Bookmark `json:"bookmark"`
	}
}

// RemoveBookmarkOutput wraps the removed bookmark, if any.
type RemoveBookmarkOutput struct {
	Body struct {
		Removed  bool             `json:"removed"`
		Bookmark *domain.Bookmark `json:"bookmark,omitempty"`
	}
}

// BookmarkStatusOutput reports whether a bookmark exists.
type BookmarkStatusOutput struct {
	Body struct {
		Bookmarked bool `json:"bookmarked"`
	}
}

// BookmarkListOutput wraps the caller's bookmarks.
type BookmarkListOutput struct {
	Body struct {
		Items []*domain.Bookmark `json:"items"`
	}
}

// === Handlers ===

func (s *Server) handleListBookmarks(ctx context.Context, _ *struct{}) (*BookmarkListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.Bookmark.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &BookmarkListOutput{}
	out.Body.Items = list
	return out, nil
}

func (s *Server) handleAddBookmark(ctx context.Context, input *AddBookmarkInput) (*AddBookmarkOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	bookmark, created, err := s.services.Bookmark.Add(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	out := &AddBookmarkOutput{}
	out.Body.Created = created
	out.Body.Bookmark = bookmark
	return out, nil
}

func (s *Server) handleRemoveBookmark(ctx context.Context, input *BookmarkPositionInput) (*RemoveBookmarkOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	bookmark, removed, err := s.services.Bookmark.Remove(ctx, userID, input.ID, input.ChapterID, input.ParagraphIndex)
	if err != nil {
		return nil, err
	}
	out := &RemoveBookmarkOutput{}
	out.Body.Removed = removed
	out.Body.Bookmark = bookmark
	return out, nil
}

func (s *Server) handleBookmarkStatus(ctx context.Context, input *BookmarkPositionInput) (*BookmarkStatusOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.services.Bookmark.Exists(ctx, userID, input.ID, input.ChapterID, input.ParagraphIndex)
	if err != nil {
		return nil, err
	}
	out := &BookmarkStatusOutput{}
	out.Body.Bookmarked = ok
	return out, nil
}
