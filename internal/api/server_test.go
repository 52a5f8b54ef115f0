package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litbook/litbook-server/internal/auth"
	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/logger"
	"github.com/litbook/litbook-server/internal/ratelimit"
	"github.com/litbook/litbook-server/internal/search"
	"github.com/litbook/litbook-server/internal/segment"
	"github.com/litbook/litbook-server/internal/service"
	"github.com/litbook/litbook-server/internal/store/sqlite"
	"github.com/litbook/litbook-server/internal/validation"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type testServer struct {
	*Server
	api humatest.TestAPI
}

// setupTestServer wires a server over a temporary SQLite database, an
// in-memory search index and a local-only segmenter.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithLimiter(t, ratelimit.New(0, 1))
}

func setupTestServerWithLimiter(t *testing.T, limiter *ratelimit.KeyedRateLimiter) *testServer {
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
	activities := service.NewActivityService(st, v, log)
	searchService := service.NewSearchService(st, idx, log)
	services := &Services{
		Auth:       service.NewAuthService(st, tokens, v, log),
		Book:       service.NewBookService(st, segment.New(segment.Options{Logger: log}), searchService, activities, v, log),
		Reading:    service.NewReadingService(st, activities, v, log),
		Bookmark:   service.NewBookmarkService(st, activities, v, log),
		Activity:   activities,
		Annotation: service.NewAnnotationService(st, service.AnnotationOptions{}, v, log),
		Social:     service.NewSocialService(st, activities, log),
		Community:  service.NewCommunityService(st, activities, v, log),
		Search:     searchService,
	}

	s := NewServer(st, idx, services, Options{AuthRateLimiter: limiter}, log)
	t.Cleanup(s.Close)

	return &testServer{Server: s, api: humatest.Wrap(t, s.api)}
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

func bearerHeader(token string) string {
	return "Authorization: Bearer " + token
}

// register creates a user through the API and returns its token and id.
func (ts *testServer) register(t *testing.T, name string) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    name + "@example.com",
		"password": "password123",
		"name":     name,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[service.AuthResponse](t, resp)
	return env.Data.AccessToken, env.Data.User.ID
}

// publish creates a book through the API.
func (ts *testServer) publish(t *testing.T, token, title string, chapters ...string) *domain.Book {
	t.Helper()

	body := map[string]any{"title": title, "chapters": chapterBodies(chapters...)}
	resp := ts.api.Post("/api/v1/books", bearerHeader(token), body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[*domain.Book](t, resp)
	return env.Data
}

func chapterBodies(raws ...string) []map[string]any {
	out := make([]map[string]any, len(raws))
	for i, raw := range raws {
		out[i] = map[string]any{"title": "Chapter " + string(rune('1'+i)), "raw_text": raw}
	}
	return out
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.Equal(t, "healthy", env.Data.Components["search"].Status)
}
