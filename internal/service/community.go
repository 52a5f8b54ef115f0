package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/litbook/litbook-server/internal/domain"
	domainerrors "github.com/litbook/litbook-server/internal/errors"
	"github.com/litbook/litbook-server/internal/id"
	"github.com/litbook/litbook-server/internal/store"
	"github.com/litbook/litbook-server/internal/validation"
)

// MaxQuotedVerses bounds the verses a post may quote.
const MaxQuotedVerses = 20

// CreatePostRequest publishes a reflection, optionally quoting verses of a
// book.
type CreatePostRequest struct {
	Content  string   `json:"content" validate:"required,max=5000" maxLength:"5000"`
	Verses   []string `json:"verses,omitempty" validate:"max=20,dive,max=5000" maxItems:"20"`
	BookID   string   `json:"book_id,omitempty"`
	ImageURL string   `json:"image_url,omitempty" validate:"omitempty,url,max=2048"`
}

// AddCommentRequest is a reply to a post.
type AddCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000" maxLength:"2000"`
}

// CommunityService manages community posts and their comments.
type CommunityService struct {
	store      store.Store
	activities *ActivityService
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewCommunityService creates a community service.
func NewCommunityService(st store.Store, activities *ActivityService, v *validation.Validator, logger *slog.Logger) *CommunityService {
	return &CommunityService{store: st, activities: activities, validator: v, logger: logger}
}

// CreatePost publishes a post by userID. Quoted verses are trimmed and
// blank ones dropped. A referenced book must exist.
func (s *CommunityService) CreatePost(ctx context.Context, userID string, req CreatePostRequest) (*domain.Post, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.BookID != "" {
		if _, err := s.store.GetBook(ctx, req.BookID); err != nil {
			return nil, storeError(err, "book")
		}
	}

	verses := make([]string, 0, len(req.Verses))
	for _, v := range req.Verses {
		if v = strings.TrimSpace(v); v != "" {
			verses = append(verses, v)
		}
	}

	postID, err := id.Generate(id.PrefixPost)
	if err != nil {
		return nil, err
	}
	post := &domain.Post{
		ID:        postID,
		AuthorID:  userID,
		Content:   req.Content,
		Verses:    verses,
		BookID:    req.BookID,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, storeError(err, "post")
	}

	s.activities.recordQuietly(ctx, userID, domain.ActivityPostedReflection, req.BookID)
	s.logger.Info("post created", "post_id", postID, "author_id", userID, "verses", len(verses))

	// Re-read for the author view.
	return s.GetPost(ctx, postID)
}

// GetPost returns a post with its author and comment count.
func (s *CommunityService) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, storeError(err, "post")
	}
	return post, nil
}

// ListPosts returns the community feed, newest first. A non-empty authorID
// restricts it to one author.
func (s *CommunityService) ListPosts(ctx context.Context, authorID string, params store.PaginationParams) (*store.PaginatedResult[domain.Post], error) {
	page, err := s.store.ListPosts(ctx, authorID, params)
	if err != nil {
		return nil, storeError(err, "posts")
	}
	return page, nil
}

// DeletePost removes a post with its comments. Only the author may delete.
func (s *CommunityService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if !post.IsAuthoredBy(userID) {
		return domainerrors.Forbidden("only the author can delete this post")
	}

	if err := s.store.DeletePost(ctx, postID); err != nil {
		return storeError(err, "post")
	}
	s.logger.Info("post deleted", "post_id", postID, "author_id", userID)
	return nil
}

// AddComment replies to a post.
func (s *CommunityService) AddComment(ctx context.Context, userID, postID string, req AddCommentRequest) (*domain.Comment, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	author, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}

	commentID, err := id.Generate(id.PrefixComment)
	if err != nil {
		return nil, err
	}
	comment := &domain.Comment{
		ID:        commentID,
		PostID:    postID,
		AuthorID:  userID,
		Author:    author.Public(),
		Text:      req.Text,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, storeError(err, "post")
	}

	s.logger.Debug("comment added", "comment_id", commentID, "post_id", postID, "author_id", userID)
	return comment, nil
}

// Comments lists the comments of a post, newest first.
func (s *CommunityService) Comments(ctx context.Context, postID string) ([]domain.Comment, error) {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, storeError(err, "comments")
	}
	return comments, nil
}
