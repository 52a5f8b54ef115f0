package service

import (
	"context"
	"log/slog"

	"github.com/litbook/litbook-server/internal/domain"
	domainerrors "github.com/litbook/litbook-server/internal/errors"
	"github.com/litbook/litbook-server/internal/store"
)

// SocialService manages follow relationships between users.
type SocialService struct {
	store      store.Store
	activities *ActivityService
	logger     *slog.Logger
}

// NewSocialService creates a social service.
func NewSocialService(st store.Store, activities *ActivityService, logger *slog.Logger) *SocialService {
	return &SocialService{store: st, activities: activities, logger: logger}
}

// ToggleFollow follows targetID, or unfollows if already following. It
// returns whether followerID follows targetID afterwards.
func (s *SocialService) ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error) {
	if followerID == targetID {
		return false, domainerrors.Validation("you cannot follow yourself")
	}
	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		return false, storeError(err, "user")
	}

	following, err := s.store.ToggleFollow(ctx, followerID, targetID)
	if err != nil {
		return false, storeError(err, "follow")
	}

	if following {
		s.activities.recordQuietly(ctx, followerID, domain.ActivityFollowedUser, "")
	}
	s.logger.Debug("follow toggled", "follower_id", followerID, "following_id", targetID, "following", following)
	return following, nil
}

// IsFollowing reports whether followerID follows targetID.
func (s *SocialService) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	ok, err := s.store.IsFollowing(ctx, followerID, targetID)
	if err != nil {
		return false, storeError(err, "follow")
	}
	return ok, nil
}

// Followers lists who follows userID.
func (s *SocialService) Followers(ctx context.Context, userID string) ([]domain.PublicUser, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, storeError(err, "user")
	}
	users, err := s.store.ListFollowers(ctx, userID)
	if err != nil {
		return nil, storeError(err, "followers")
	}
	return users, nil
}

// Following lists whom userID follows.
func (s *SocialService) Following(ctx context.Context, userID string) ([]domain.PublicUser, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, storeError(err, "user")
	}
	users, err := s.store.ListFollowing(ctx, userID)
	if err != nil {
		return nil, storeError(err, "following")
	}
	return users, nil
}

// Profile returns the public profile of userID: their books, post count and
// follow counts.
func (s *SocialService) Profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.store.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return profile, nil
}
