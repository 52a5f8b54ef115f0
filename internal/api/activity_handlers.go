package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/service"
)

func (s *Server) registerActivityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createActivity",
		Method:        http.MethodPost,
		Path:          "/api/v1/activities",
		Summary:       "Post activity",
		Description:   "Appends an activity, such as a reflection, to the caller's log",
		Tags:          []string{"Activity"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateActivity)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMyActivities",
		Method:      http.MethodGet,
		Path:        "/api/v1/activities",
		Summary:     "Get my activity",
		Description: "Returns the caller's newest activities",
		Tags:        []string{"Activity"},
		Security:    bearer,
	}, s.handleGetMyActivities)

	huma.Register(s.api, huma.Operation{
		OperationID: "getActivitiesForUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/activities",
		Summary:     "Get user activity",
		Description: "Returns a user's newest activities",
		Tags:        []string{"Activity"},
		Security:    bearer,
	}, s.handleGetUserActivities)
}

// === DTOs ===

// CreateActivityInput contains the activity to post.
type CreateActivityInput struct {
	Body service.RecordActivityRequest
}

// ActivityOutput wraps one activity.
type ActivityOutput struct {
	Body *domain.Activity
}

// ActivityLimitInput bounds an activity list.
type ActivityLimitInput struct {
	Limit int `query:"limit" minimum:"0" doc:"Max entries (default 20, max 100)"`
}

// UserActivitiesInput addresses another user's activity list.
type UserActivitiesInput struct {
	ID    string `path:"id" doc:"User ID"`
	Limit int    `query:"limit" minimum:"0" doc:"Max entries (default 20, max 100)"`
}

// ActivityListOutput wraps an activity list, newest first.
type ActivityListOutput struct {
	Body struct {
		Items []*domain.Activity `json:"items"`
	}
}

// === Handlers ===

func (s *Server) handleCreateActivity(ctx context.Context, input *CreateActivityInput) (*ActivityOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	activity, err := s.services.Activity.Record(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ActivityOutput{Body: activity}, nil
}

func (s *Server) handleGetMyActivities(ctx context.Context, input *ActivityLimitInput) (*ActivityListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.listActivities(ctx, userID, input.Limit)
}

func (s *Server) handleGetUserActivities(ctx context.Context, input *UserActivitiesInput) (*ActivityListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	return s.listActivities(ctx, input.ID, input.Limit)
}

func (s *Server) listActivities(ctx context.Context, userID string, limit int) (*ActivityListOutput, error) {
	list, err := s.services.Activity.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := &ActivityListOutput{}
	out.Body.Items = list
	return out, nil
}
