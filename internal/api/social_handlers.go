package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/litbook/litbook-server/internal/domain"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getUserProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user profile",
		Description: "Returns the user's public profile with their books, post count and follow counts",
		Tags:        []string{"Social"},
		Security:    bearer,
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleFollow",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{id}/follow",
		Summary:     "Follow or unfollow",
		Description: "Follows the user, or unfollows when the caller already follows them",
		Tags:        []string{"Social"},
		Security:    bearer,
	}, s.handleToggleFollow)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFollowStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/follow",
		Summary:     "Check follow",
		Description: "Reports whether the caller follows the user",
		Tags:        []string{"Social"},
		Security:    bearer,
	}, s.handleFollowStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFollowers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/followers",
		Summary:     "List followers",
		Tags:        []string{"Social"},
		Security:    bearer,
	}, s.handleListFollowers)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFollowing",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/following",
		Summary:     "List followed users",
		Tags:        []string{"Social"},
		Security:    bearer,
	}, s.handleListFollowing)
}

// === DTOs ===

// UserIDInput addresses a user.
type UserIDInput struct {
	ID string `path:"id" doc:"User ID"`
}

// FollowOutput reports whether the caller follows a user.
type FollowOutput struct {
	Body struct {
		UserID    string `json:"user_id"`
		Following bool   `json:"following" doc:"Whether the caller now follows the user"`
	}
}

// UserListOutput wraps a list of public user profiles.
type UserListOutput struct {
	Body struct {
		Items []domain.PublicUser `json:"items"`
	}
}

// ProfileOutput wraps a public user profile.
type ProfileOutput struct {
	Body *domain.UserProfile
}

// === Handlers ===

func (s *Server) handleGetProfile(ctx context.Context, input *UserIDInput) (*ProfileOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	profile, err := s.services.Social.Profile(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: profile}, nil
}

func (s *Server) handleToggleFollow(ctx context.Context, input *UserIDInput) (*FollowOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	following, err := s.services.Social.ToggleFollow(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	out := &FollowOutput{}
	out.Body.UserID = input.ID
	out.Body.Following = following
	return out, nil
}

func (s *Server) handleFollowStatus(ctx context.Context, input *UserIDInput) (*FollowOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	following, err := s.services.Social.IsFollowing(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	out := &FollowOutput{}
	out.Body.UserID = input.ID
	out.Body.Following = following
	return out, nil
}

func (s *Server) handleListFollowers(ctx context.Context, input *UserIDInput) (*UserListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	users, err := s.services.Social.Followers(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	out := &UserListOutput{}
	out.Body.Items = users
	return out, nil
}

func (s *Server) handleListFollowing(ctx context.Context, input *UserIDInput) (*UserListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	users, err := s.services.Social.Following(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	out := &UserListOutput{}
	out.Body.Items = users
	return out, nil
}
