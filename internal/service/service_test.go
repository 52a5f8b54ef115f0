package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/litbook/litbook-server/internal/auth"
	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/logger"
	"github.com/litbook/litbook-server/internal/search"
	"github.com/litbook/litbook-server/internal/segment"
	"github.com/litbook/litbook-server/internal/store/sqlite"
	"github.com/litbook/litbook-server/internal/validation"
)

type testEnv struct {
	store      *sqlite.Store
	index      *search.Index
	auth       *AuthService
	books      *BookService
	reading    *ReadingService
	bookmarks  *BookmarkService
	activities *ActivityService
	social     *SocialService
	community  *CommunityService
	search     *SearchService
}

// newTestEnv wires every service over a temporary SQLite database, an
// in-memory search index and a local-only segmenter.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.Discard().Logger
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := search.Open(search.Options{Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	key, err := auth.LoadOrGenerateKey(filepath.Join(t.TempDir(), "auth.key"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	v := validation.New()
	activities := NewActivityService(st, v, log)
	searchService := NewSearchService(st, idx, log)

	return &testEnv{
		store:      st,
		index:      idx,
		auth:       NewAuthService(st, tokens, v, log),
		books:      NewBookService(st, segment.New(segment.Options{Logger: log}), searchService, activities, v, log),
		reading:    NewReadingService(st, activities, v, log),
		bookmarks:  NewBookmarkService(st, activities, v, log),
		activities: activities,
		social:     NewSocialService(st, activities, log),
		community:  NewCommunityService(st, activities, v, log),
		search:     searchService,
	}
}

func (e *testEnv) register(t *testing.T, name string) *domain.User {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterRequest{
		Email:    name + "@example.com",
		Password: "password123",
		Name:     name,
	})
	require.NoError(t, err)
	return res.User
}

// publish creates a book whose chapters are the given raw texts.
func (e *testEnv) publish(t *testing.T, author *domain.User, title string, chapters ...string) *domain.Book {
	t.Helper()
	req := BookRequest{Title: title}
	for i, raw := range chapters {
		req.Chapters = append(req.Chapters, ChapterInput{Title: "Chapter " + string(rune('1'+i)), RawText: raw})
	}
	book, err := e.books.Create(context.Background(), author.ID, req)
	require.NoError(t, err)
	return book
}

func (e *testEnv) activityTypes(t *testing.T, userID string) []domain.ActivityType {
	t.Helper()
	list, err := e.activities.ListForUser(context.Background(), userID, MaxActivityLimit)
	require.NoError(t, err)
	types := make([]domain.ActivityType, len(list))
	for i, a := range list {
		types[i] = a.Type
	}
	return types
}
