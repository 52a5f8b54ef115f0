package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/service"
	"github.com/litbook/litbook-server/internal/store"
)

func (s *Server) registerCommunityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts",
		Summary:     "List community posts",
		Description: "Returns community posts newest first, optionally for one author",
		Tags:        []string{"Community"},
		Security:    bearer,
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPost",
		Method:        http.MethodPost,
		Path:          "/api/v1/posts",
		Summary:       "Publish a post",
		Description:   "Publishes a reflection, optionally quoting verses of a book",
		Tags:          []string{"Community"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPost",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Get post",
		Tags:        []string{"Community"},
		Security:    bearer,
	}, s.handleGetPost)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deletePost",
		Method:        http.MethodDelete,
		Path:          "/api/v1/posts/{id}",
		Summary:       "Delete post",
		Description:   "Deletes one of the caller's posts with its comments",
		Tags:          []string{"Community"},
		Security:      bearer,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeletePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}/comments",
		Summary:     "List comments",
		Description: "Returns the comments of a post, newest first",
		Tags:        []string{"Community"},
		Security:    bearer,
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addComment",
		Method:        http.MethodPost,
		Path:          "/api/v1/posts/{id}/comments",
		Summary:       "Comment on a post",
		Tags:          []string{"Community"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleAddComment)
}

// === DTOs ===

// ListPostsInput contains feed filters and pagination parameters.
type ListPostsInput struct {
	AuthorID string `query:"author_id" doc:"Only posts by this user"`
	Limit    int    `query:"limit" doc:"Page size (default 50, max 200)"`
	Cursor   string `query:"cursor" doc:"Cursor from the previous page"`
}

// ListPostsOutput wraps one page of posts.
type ListPostsOutput struct {
	Body *store.PaginatedResult[domain.Post]
}

// PostIDInput addresses a single post.
type PostIDInput struct {
	ID string `path:"id" doc:"Post ID"`
}

// CreatePostInput contains the new post.
type CreatePostInput struct {
	Body service.CreatePostRequest
}

// PostOutput wraps a post.
type PostOutput struct {
	Body *domain.Post
}

// AddCommentInput contains a reply to a post.
type AddCommentInput struct {
	ID   string `path:"id" doc:"Post ID"`
	Body service.AddCommentRequest
}

// CommentOutput wraps a comment.
type CommentOutput struct {
	Body *domain.Comment
}

// CommentListOutput wraps the comments of a post.
type CommentListOutput struct {
	Body struct {
		Items []domain.Comment `json:"items"`
	}
}

// === Handlers ===

func (s *Server) handleListPosts(ctx context.Context, input *ListPostsInput) (*ListPostsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	page, err := s.services.Community.ListPosts(ctx, input.AuthorID, store.PaginationParams{Limit: input.Limit, Cursor: input.Cursor})
	if err != nil {
		return nil, err
	}
	return &ListPostsOutput{Body: page}, nil
}

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.services.Community.CreatePost(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: post}, nil
}

func (s *Server) handleGetPost(ctx context.Context, input *PostIDInput) (*PostOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	post, err := s.services.Community.GetPost(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: post}, nil
}

func (s *Server) handleDeletePost(ctx context.Context, input *PostIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Community.DeletePost(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleListComments(ctx context.Context, input *PostIDInput) (*CommentListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	comments, err := s.services.Community.Comments(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	out := &CommentListOutput{}
	out.Body.Items = comments
	return out, nil
}

func (s *Server) handleAddComment(ctx context.Context, input *AddCommentInput) (*CommentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Community.AddComment(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: comment}, nil
}
