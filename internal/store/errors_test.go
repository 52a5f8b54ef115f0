package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/litbook/litbook-server/internal/store"
)

func TestError_Message(t *testing.T) {
	err := store.ErrNotFound.WithMessage("bookmark not found")

	assert.Equal(t, "bookmark not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.HTTPCode())
}

func TestError_WithCause(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: bookmarks.user_id")
	err := store.ErrAlreadyExists.WithCause(cause)

	assert.Contains(t, err.Error(), "resource already exists")
	assert.ErrorIs(t, err, cause)
}

func TestError_IsMatchesSentinel(t *testing.T) {
	wrapped := fmt.Errorf("get progress: %w", store.ErrNotFound.WithMessage("no progress"))

	assert.ErrorIs(t, wrapped, store.ErrNotFound)
	assert.NotErrorIs(t, wrapped, store.ErrAlreadyExists)
}
