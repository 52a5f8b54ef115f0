package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/litbook/litbook-server/internal/domain"
	domainerrors "github.com/litbook/litbook-server/internal/errors"
	"github.com/litbook/litbook-server/internal/store"
	"github.com/litbook/litbook-server/internal/validation"
)

// Activity list bounds.
const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 100
)

// RecordActivityRequest is a user-posted activity.
type RecordActivityRequest struct {
	Type    domain.ActivityType `json:"type" validate:"required"`
	BookID  string              `json:"book_id,omitempty"`
	Comment string              `json:"comment,omitempty" validate:"max=2000"`
}

// ActivityService appends to and reads the activity log.
type ActivityService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewActivityService creates an activity service.
func NewActivityService(st store.Store, v *validation.Validator, logger *slog.Logger) *ActivityService {
	return &ActivityService{store: st, validator: v, logger: logger}
}

// Record appends an activity for userID.
func (s *ActivityService) Record(ctx context.Context, userID string, req RecordActivityRequest) (*domain.Activity, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, domainerrors.Validationf("unknown activity type %q", req.Type)
	}
	if req.BookID != "" {
		if _, err := s.store.GetBook(ctx, req.BookID); err != nil {
			return nil, storeError(err, "book")
		}
	}

	activity := &domain.Activity{
		UserID:    userID,
		Type:      req.Type,
		BookID:    req.BookID,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateActivity(ctx, activity); err != nil {
		return nil, storeError(err, "activity")
	}
	return activity, nil
}

// ListForUser returns the newest activities of userID. limit defaults to
// DefaultActivityLimit and is capped at MaxActivityLimit.
func (s *ActivityService) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	limit = min(limit, MaxActivityLimit)

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, storeError(err, "user")
	}

	activities, err := s.store.ListActivitiesForUser(ctx, userID, limit)
	if err != nil {
		return nil, storeError(err, "activities")
	}
	return activities, nil
}

// recordQuietly records a side-effect activity. Failures are logged, never
// returned: the operation that triggered it has already succeeded.
func (s *ActivityService) recordQuietly(ctx context.Context, userID string, typ domain.ActivityType, bookID string) {
	err := s.store.CreateActivity(ctx, &domain.Activity{
		UserID:    userID,
		Type:      typ,
		BookID:    bookID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to record activity",
			"user_id", userID,
			"type", typ,
			"book_id", bookID,
			"error", err,
		)
	}
}
