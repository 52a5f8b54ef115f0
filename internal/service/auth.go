package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/litbook/litbook-server/internal/auth"
	"github.com/litbook/litbook-server/internal/domain"
	domainerrors "github.com/litbook/litbook-server/internal/errors"
	"github.com/litbook/litbook-server/internal/id"
	"github.com/litbook/litbook-server/internal/store"
	"github.com/litbook/litbook-server/internal/validation"
)

// RegisterRequest creates an account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"notblank,max=100"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// AuthService registers users, logs them in and verifies tokens.
type AuthService struct {
	store     store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates an authentication service.
func NewAuthService(st store.Store, tokens *auth.TokenService, v *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{store: st, tokens: tokens, validator: v, logger: logger}
}

// Register creates a user and logs them in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email is already registered")
		}
		return nil, storeError(err, "user")
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return s.issue(user)
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}
	if err != nil {
		return nil, storeError(err, "user")
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	return s.issue(user)
}

// Verify checks an access token and returns the user it was issued to.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}
	user, err := s.store.GetUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Unauthorized("user no longer exists")
	}
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResponse, error) {
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResponse{User: user, AccessToken: token, TokenType: "Bearer", ExpiresAt: expires}, nil
}
