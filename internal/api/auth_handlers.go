package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/litbook/litbook-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/v1/auth/register",
		Summary:       "Register",
		Description:   "Creates an account and returns an access token",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.authRateLimit},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Login",
		Description: "Authenticates with email and password",
		Tags:        []string{"Auth"},
		Middlewares: huma.Middlewares{s.authRateLimit},
	}, s.handleLogin)
}

// RegisterInput contains registration details.
type RegisterInput struct {
	Body service.RegisterRequest
}

// LoginInput contains login credentials.
type LoginInput struct {
	Body service.LoginRequest
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body *service.AuthResponse
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Register(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: resp}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: resp}, nil
}
