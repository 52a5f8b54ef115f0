package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/id"
)

const (
	tokenIssuer   = "litbook-server"
	tokenAudience = "litbook-client"
	tokenPrefix   = "tok"
)

// TokenService issues and verifies v4.local access tokens.
type TokenService struct {
	key      paseto.V4SymmetricKey
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, lifetime time.Duration) (*TokenService, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("token key must be %d bytes, got %d", KeySize, len(key))
	}
	sym, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create symmetric key: %w", err)
	}
	return &TokenService{key: sym, lifetime: lifetime, now: time.Now}, nil
}

// Issue creates an access token for user and returns it with its expiry.
func (s *TokenService) Issue(user *domain.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.lifetime)

	jti, err := id.Generate(tokenPrefix)
	if err != nil {
		return "", time.Time{}, err
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.ID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)
	token.SetJti(jti)
	//nolint:errcheck // Set only fails on unmarshalable values
	_ = token.Set("user_id", user.ID)
	//nolint:errcheck
	_ = token.Set("email", user.Email)

	return token.V4Encrypt(s.key, nil), expires, nil
}

// Verify decrypts a token and checks issuer, audience and validity window.
func (s *TokenService) Verify(raw string) (*AccessClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("invalid token: missing user_id")
	}
	return &claims, nil
}

// Lifetime returns the access token lifetime.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}
