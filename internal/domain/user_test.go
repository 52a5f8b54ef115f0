package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Ada@Example.com", "ada@example.com"},
		{"  bo@example.com \n", "bo@example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in))
	}
}

func TestUser_Public(t *testing.T) {
	user := &User{ID: "u1", Email: "ada@example.com", Name: "Ada", PasswordHash: "secret"}

	pub := user.Public()
	assert.Equal(t, "u1", pub.ID)
	assert.Equal(t, "Ada", pub.Name)
	assert.NotEmpty(t, pub.AvatarColor)
	assert.Equal(t, NewPublicUser("u1", "Ada"), pub)
}
