package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litbook/litbook-server/internal/domain"
	domainerrors "github.com/litbook/litbook-server/internal/errors"
)

func TestActivityService_Record(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "mara")
	ctx := context.Background()
	book := env.publish(t, user, "Hymns", "x")

	a, err := env.activities.Record(ctx, user.ID, RecordActivityRequest{
		Type:    domain.ActivityPostedReflection,
		BookID:  book.ID,
		Comment: "It stayed with me.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)

	list, err := env.activities.ListForUser(ctx, user.ID, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestActivityService_RecordRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "mara")
	ctx := context.Background()

	_, err := env.activities.Record(ctx, user.ID, RecordActivityRequest{Type: "LIKED_POST"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.activities.Record(ctx, user.ID, RecordActivityRequest{})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.activities.Record(ctx, user.ID, RecordActivityRequest{Type: domain.ActivityFinishedBook, BookID: "book-missing"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestActivityService_ListLimits(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "mara")
	ctx := context.Background()

	for range 25 {
		_, err := env.activities.Record(ctx, user.ID, RecordActivityRequest{Type: domain.ActivityFinishedBook})
		require.NoError(t, err)
	}

	list, err := env.activities.ListForUser(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, list, DefaultActivityLimit)

	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt), "not newest first at %d", i)
	}

	_, err = env.activities.ListForUser(ctx, "usr-missing", 10)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
