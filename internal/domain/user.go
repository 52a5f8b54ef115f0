package domain

import (
	"strings"
	"time"

	"github.com/litbook/litbook-server/internal/color"
)

// User is a LitBook account. Readers and authors are both users.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PublicUser is the subset of a user shown to other users.
type PublicUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AvatarColor string `json:"avatar_color"`
}

// NewPublicUser builds a PublicUser with its avatar color.
func NewPublicUser(id, name string) PublicUser {
	return PublicUser{ID: id, Name: name, AvatarColor: color.ForUser(id)}
}

// Public strips private fields.
func (u *User) Public() PublicUser {
	return NewPublicUser(u.ID, u.Name)
}
