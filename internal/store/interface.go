// Package store defines the persistence interface for the LitBook server.
package store

import (
	"context"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/reconcile"
)

// Store defines all persistence operations. Lookups of a single missing row
// return ErrNotFound; uniqueness violations return ErrAlreadyExists.
type Store interface {
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Books and chapters. CreateBook and UpdateBook write the book row and
	// every chapter in one transaction.
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBookBySlug(ctx context.Context, slug string) (*domain.Book, error)
	ListBooks(ctx context.Context, params PaginationParams) (*PaginatedResult[domain.BookSummary], error)
	UpdateBook(ctx context.Context, bookID string, draft domain.BookDraft, chapters []domain.ChapterDraft) (*reconcile.Plan, error)
	DeleteBook(ctx context.Context, id string) error

	// Reading progress. UpsertProgress reports whether the row was created.
	UpsertProgress(ctx context.Context, progress *domain.ReadingProgress) (bool, error)
	GetProgress(ctx context.Context, userID, bookID string) (*domain.ReadingProgress, error)
	ListProgress(ctx context.Context, userID string) ([]*domain.ReadingProgress, error)

	// Bookmarks
	CreateBookmark(ctx context.Context, bookmark *domain.Bookmark) error
	GetBookmarkAt(ctx context.Context, userID string, pos domain.Position) (*domain.Bookmark, error)
	DeleteBookmarkAt(ctx context.Context, userID string, pos domain.Position) (*domain.Bookmark, error)
	ListBookmarks(ctx context.Context, userID string) ([]*domain.Bookmark, error)

	// Activities
	CreateActivity(ctx context.Context, activity *domain.Activity) error
	ListActivitiesForUser(ctx context.Context, userID string, limit int) ([]*domain.Activity, error)

	// Follows. ToggleFollow reports whether the follower now follows.
	ToggleFollow(ctx context.Context, followerID, followingID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowers(ctx context.Context, userID string) ([]domain.PublicUser, error)
	ListFollowing(ctx context.Context, userID string) ([]domain.PublicUser, error)

	// Community posts and comments. ListPosts filters by author when
	// authorID is non-empty; CreateComment returns ErrNotFound for a
	// missing post.
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, postID string) (*domain.Post, error)
	ListPosts(ctx context.Context, authorID string, params PaginationParams) (*PaginatedResult[domain.Post], error)
	DeletePost(ctx context.Context, postID string) error
	CreateComment(ctx context.Context, comment *domain.Comment) error
	ListComments(ctx context.Context, postID string) ([]domain.Comment, error)

	// Profiles
	GetUserProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
}
