package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/ratelimit"
	"github.com/litbook/litbook-server/internal/search"
	"github.com/litbook/litbook-server/internal/segment"
	"github.com/litbook/litbook-server/internal/service"
	"github.com/litbook/litbook-server/internal/store"
)

func TestAuth_RegisterAndLogin(t *testing.T) {
	ts := setupTestServer(t)
	_, userID := ts.register(t, "ada")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "ADA@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	env := decode[service.AuthResponse](t, resp)
	assert.Equal(t, userID, env.Data.User.ID)
	assert.Equal(t, "Bearer", env.Data.TokenType)
	assert.NotEmpty(t, env.Data.AccessToken)
}

func TestAuth_Errors(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "ada")

	t.Run("duplicate email", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/register", map[string]any{
			"email": "ada@example.com", "password": "password123", "name": "Other",
		})
		assert.Equal(t, http.StatusConflict, resp.Code)
		env := decode[any](t, resp)
		assert.False(t, env.Success)
		assert.Equal(t, "ALREADY_EXISTS", env.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/login", map[string]any{
			"email": "ada@example.com", "password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decode[any](t, resp).Code)
	})

	t.Run("short password", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/register", map[string]any{
			"email": "bob@example.com", "password": "short", "name": "Bob",
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode[any](t, resp).Code)
	})
}

func TestAuth_RateLimited(t *testing.T) {
	ts := setupTestServerWithLimiter(t, ratelimit.New(0.001, 2))

	login := map[string]any{"email": "nobody@example.com", "password": "password123"}
	for range 2 {
		resp := ts.api.Post("/api/v1/auth/login", login)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	}

	resp := ts.api.Post("/api/v1/auth/login", login)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decode[any](t, resp).Code)
	assert.Equal(t, "60", resp.Header().Get("Retry-After"))
}

func TestRequiresAuthentication(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/v1/books", map[string]any{"title": "T", "chapters": []any{}}},
		{http.MethodGet, "/api/v1/progress", nil},
		{http.MethodGet, "/api/v1/bookmarks", nil},
		{http.MethodGet, "/api/v1/activities", nil},
		{http.MethodPost, "/api/v1/segment", map[string]any{"text": "a"}},
		{http.MethodGet, "/api/v1/posts", nil},
		{http.MethodPost, "/api/v1/posts", map[string]any{"content": "hi"}},
		{http.MethodPost, "/api/v1/posts/post-1/comments", map[string]any{"text": "hi"}},
		{http.MethodGet, "/api/v1/users/usr-1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			args := []any{bearerHeader("not-a-token")}
			if tt.body != nil {
				args = append(args, tt.body)
			}
			resp := ts.api.Do(tt.method, tt.path, args...)
			assert.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())
			assert.Equal(t, "UNAUTHORIZED", decode[any](t, resp).Code)
		})
	}
}

func TestBooks_CreateGetList(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.register(t, "ada")

	book := ts.publish(t, token, "The Long Road", "First line.\nSecond line.", "Alpha\n\nBeta\n\nGamma")
	assert.Equal(t, userID, book.AuthorID)
	require.Len(t, book.Chapters, 2)
	assert.Equal(t, []string{"First line.", "Second line."}, book.Chapters[0].Content)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, book.Chapters[1].Content)

	resp := ts.api.Get("/api/v1/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, book.Title, decode[*domain.Book](t, resp).Data.Title)

	resp = ts.api.Get("/api/v1/books/" + book.Slug)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, book.ID, decode[*domain.Book](t, resp).Data.ID)

	resp = ts.api.Get("/api/v1/books?limit=10")
	require.Equal(t, http.StatusOK, resp.Code)
	page := decode[store.PaginatedResult[domain.BookSummary]](t, resp).Data
	require.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Items[0].ChapterCount)
	assert.False(t, page.HasMore)

	resp = ts.api.Get("/api/v1/books/missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[any](t, resp).Code)
}

func TestBooks_UpdateReconcilesChapters(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "ada")
	book := ts.publish(t, token, "Draft", "one", "two", "three")
	c1, c3 := book.Chapters[0], book.Chapters[2]

	resp := ts.api.Put("/api/v1/books/"+book.ID, bearerHeader(token), map[string]any{
		"title": "Final",
		"chapters": []map[string]any{
			{"id": c3.ID, "title": "Three", "raw_text": "three, revised"},
			{"title": "New", "raw_text": "fresh"},
			{"id": c1.ID, "title": "One", "raw_text": "one"},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	updated := decode[*domain.Book](t, resp).Data
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, book.Slug, updated.Slug)
	require.Len(t, updated.Chapters, 3)
	assert.Equal(t, c3.ID, updated.Chapters[0].ID)
	assert.Equal(t, []string{"three, revised"}, updated.Chapters[0].Content)
	assert.NotEmpty(t, updated.Chapters[1].ID)
	assert.Equal(t, c1.ID, updated.Chapters[2].ID)
	for i, ch := range updated.Chapters {
		assert.Equal(t, i, ch.Order)
	}
}

func TestBooks_UpdateRejections(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "ada")
	otherToken, _ := ts.register(t, "bob")
	book := ts.publish(t, token, "Mine", "one")
	other := ts.publish(t, otherToken, "Theirs", "two")

	t.Run("not the author", func(t *testing.T) {
		resp := ts.api.Put("/api/v1/books/"+book.ID, bearerHeader(otherToken), map[string]any{
			"title": "Stolen", "chapters": []any{},
		})
		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.Equal(t, "FORBIDDEN", decode[any](t, resp).Code)
	})

	t.Run("chapter of another book", func(t *testing.T) {
		resp := ts.api.Put("/api/v1/books/"+book.ID, bearerHeader(token), map[string]any{
			"title": "Mine",
			"chapters": []map[string]any{
				{"id": other.Chapters[0].ID, "title": "Taken", "raw_text": "x"},
			},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, "CROSS_BOOK_CHAPTER", decode[any](t, resp).Code)

		resp = ts.api.Get("/api/v1/books/" + other.ID)
		require.Equal(t, http.StatusOK, resp.Code)
		unchanged := decode[*domain.Book](t, resp).Data
		require.Len(t, unchanged.Chapters, 1)
		assert.Equal(t, []string{"two"}, unchanged.Chapters[0].Content)
	})

	t.Run("unknown chapter id", func(t *testing.T) {
		resp := ts.api.Put("/api/v1/books/"+book.ID, bearerHeader(token), map[string]any{
			"title":    "Mine",
			"chapters": []map[string]any{{"id": "chp_missing", "title": "Ghost", "raw_text": "x"}},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestBooks_Delete(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "ada")
	otherToken, _ := ts.register(t, "bob")
	book := ts.publish(t, token, "Short Lived", "one")

	resp := ts.api.Delete("/api/v1/books/"+book.ID, bearerHeader(otherToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/books/"+book.ID, bearerHeader(token))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/books/" + book.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSegmentPreview(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "ada")

	resp := ts.api.Post("/api/v1/segment", bearerHeader(token), map[string]any{"text": " a \n\n b \n\n\n c "})
	require.Equal(t, http.StatusOK, resp.Code)

	seg := decode[segment.Segmentation](t, resp).Data
	assert.Equal(t, []string{"a", "b", "c"}, seg.Verses)
	assert.Equal(t, segment.MethodPresplit, seg.Method)
}

func TestReadingProgress(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "ada")
	book := ts.publish(t, token, "Book", "a\n\nb\n\nc", "d")
	path := "/api/v1/books/" + book.ID + "/progress"

	resp := ts.api.Get(path, bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)
	absent := decode[ProgressResponse](t, resp).Data
	assert.False(t, absent.Found)
	assert.Nil(t, absent.Progress)

	resp = ts.api.Put(path, bearerHeader(token), map[string]any{
		"chapter_id": book.Chapters[0].ID, "paragraph_index": 3,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Put(path, bearerHeader(token), map[string]any{
		"chapter_id": book.Chapters[1].ID, "paragraph_index": 1,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get(path, bearerHeader(token))
	got := decode[ProgressResponse](t, resp).Data
	require.True(t, got.Found)
	assert.Equal(t, book.Chapters[1].ID, got.Progress.ChapterID)
	assert.Equal(t, 1, got.Progress.ParagraphIndex)

	resp = ts.api.Get("/api/v1/progress", bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[struct {
		Items []*domain.ReadingProgress `json:"items"`
	}](t, resp).Data
	assert.Len(t, list.Items, 1)

	t.Run("out of range paragraph", func(t *testing.T) {
		resp := ts.api.Put(path, bearerHeader(token), map[string]any{
			"chapter_id": book.Chapters[1].ID, "paragraph_index": 2,
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("chapter of another book", func(t *testing.T) {
		other := ts.publish(t, token, "Other", "x")
		resp := ts.api.Put(path, bearerHeader(token), map[string]any{
			"chapter_id": other.Chapters[0].ID, "paragraph_index": 1,
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestBookmarks(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "ada")
	book := ts.publish(t, token, "Book", "first\n\nsecond")
	chapterID := book.Chapters[0].ID
	base := "/api/v1/books/" + book.ID + "/bookmarks"
	query := fmt.Sprintf("?chapter_id=%s&paragraph_index=2", chapterID)

	type addResult struct {
		Created  bool             `json:"created"`
		Bookmark *domain.Bookmark `json:"bookmark"`
	}

	resp := ts.api.Post(base, bearerHeader(token), map[string]any{"chapter_id": chapterID, "paragraph_index": 2})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	first := decode[addResult](t, resp).Data
	assert.True(t, first.Created)
	assert.Equal(t, "second", first.Bookmark.Text)

	resp = ts.api.Post(base, bearerHeader(token), map[string]any{"chapter_id": chapterID, "paragraph_index": 2, "text": "later"})
	second := decode[addResult](t, resp).Data
	assert.False(t, second.Created)
	assert.Equal(t, first.Bookmark.ID, second.Bookmark.ID)
	assert.Equal(t, "second", second.Bookmark.Text)

	resp = ts.api.Get(base+"/status"+query, bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, decode[struct {
		Bookmarked bool `json:"bookmarked"`
	}](t, resp).Data.Bookmarked)

	resp = ts.api.Get("/api/v1/bookmarks", bearerHeader(token))
	assert.Len(t, decode[struct {
		Items []*domain.Bookmark `json:"items"`
	}](t, resp).Data.Items, 1)

	type removeResult struct {
		Removed  bool             `json:"removed"`
		Bookmark *domain.Bookmark `json:"bookmark"`
	}
	resp = ts.api.Delete(base+query, bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	removed := decode[removeResult](t, resp).Data
	assert.True(t, removed.Removed)
	assert.Equal(t, first.Bookmark.ID, removed.Bookmark.ID)

	resp = ts.api.Delete(base+query, bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)
	again := decode[removeResult](t, resp).Data
	assert.False(t, again.Removed)
	assert.Nil(t, again.Bookmark)
}

func TestActivities(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.register(t, "ada")
	readerToken, _ := ts.register(t, "bob")
	book := ts.publish(t, token, "Book", "a")

	resp := ts.api.Post("/api/v1/activities", bearerHeader(token), map[string]any{
		"type": "POSTED_REFLECTION", "book_id": book.ID, "comment": "Loved writing this.",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	posted := decode[*domain.Activity](t, resp).Data
	assert.NotEmpty(t, posted.ID)

	resp = ts.api.Get("/api/v1/activities", bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)
	mine := decode[struct {
		Items []*domain.Activity `json:"items"`
	}](t, resp).Data.Items
	require.Len(t, mine, 2)
	assert.Equal(t, domain.ActivityPostedReflection, mine[0].Type)
	assert.Equal(t, domain.ActivityPublishedBook, mine[1].Type)

	resp = ts.api.Get("/api/v1/users/"+userID+"/activities?limit=1", bearerHeader(readerToken))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[struct {
		Items []*domain.Activity `json:"items"`
	}](t, resp).Data.Items, 1)

	resp = ts.api.Post("/api/v1/activities", bearerHeader(token), map[string]any{"type": "LIKED_POST"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Get("/api/v1/users/usr_missing/activities", bearerHeader(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestFollow(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.register(t, "ada")
	_, targetID := ts.register(t, "bob")

	type followResult struct {
		Following bool `json:"following"`
	}
	type users struct {
		Items []domain.PublicUser `json:"items"`
	}

	resp := ts.api.Post("/api/v1/users/"+targetID+"/follow", bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, decode[followResult](t, resp).Data.Following)

	resp = ts.api.Get("/api/v1/users/"+targetID+"/follow", bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, decode[followResult](t, resp).Data.Following)

	resp = ts.api.Get("/api/v1/users/"+targetID+"/followers", bearerHeader(token))
	followers := decode[users](t, resp).Data.Items
	require.Len(t, followers, 1)
	assert.Equal(t, userID, followers[0].ID)
	assert.NotEmpty(t, followers[0].AvatarColor)

	resp = ts.api.Get("/api/v1/users/"+userID+"/following", bearerHeader(token))
	assert.Len(t, decode[users](t, resp).Data.Items, 1)

	resp = ts.api.Post("/api/v1/users/"+targetID+"/follow", bearerHeader(token))
	assert.False(t, decode[followResult](t, resp).Data.Following)

	resp = ts.api.Get("/api/v1/users/"+targetID+"/followers", bearerHeader(token))
	assert.Empty(t, decode[users](t, resp).Data.Items)

	resp = ts.api.Get("/api/v1/users/"+targetID+"/follow", bearerHeader(token))
	assert.False(t, decode[followResult](t, resp).Data.Following)

	resp = ts.api.Post("/api/v1/users/"+userID+"/follow", bearerHeader(token))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSearch(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "ada")
	book := ts.publish(t, token, "Lighthouse Keeper", "waves")
	ts.publish(t, token, "Desert Songs", "sand")

	resp := ts.api.Get("/api/v1/search?q=lighthouse")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	res := decode[search.Result](t, resp).Data
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, book.ID, res.Hits[0].ID)
}

func TestAnnotate_Disabled(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "ada")
	book := ts.publish(t, token, "Book", "a")

	resp := ts.api.Post("/api/v1/books/"+book.ID+"/annotations", bearerHeader(token), map[string]any{
		"chapter_id": book.Chapters[0].ID, "paragraph_index": 1,
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", decode[any](t, resp).Code)
}

func TestCommunityPosts(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.register(t, "ada")
	otherToken, _ := ts.register(t, "bo")
	book := ts.publish(t, token, "Tides", "The sea was calm.\n\nThen it was not.")

	resp := ts.api.Post("/api/v1/posts", bearerHeader(token), map[string]any{
		"content": "The turn in this chapter.",
		"verses":  []string{"The sea was calm.", "Then it was not."},
		"book_id": book.ID,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	post := decode[*domain.Post](t, resp).Data
	assert.Equal(t, userID, post.AuthorID)
	assert.Equal(t, []string{"The sea was calm.", "Then it was not."}, post.Verses)

	resp = ts.api.Post("/api/v1/posts/"+post.ID+"/comments", bearerHeader(otherToken), map[string]any{"text": "Beautiful."})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, "bo", decode[*domain.Comment](t, resp).Data.Author.Name)

	type comments struct {
		Items []domain.Comment `json:"items"`
	}
	resp = ts.api.Get("/api/v1/posts/"+post.ID+"/comments", bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[comments](t, resp).Data.Items, 1)

	resp = ts.api.Get("/api/v1/posts?author_id="+userID, bearerHeader(otherToken))
	require.Equal(t, http.StatusOK, resp.Code)
	feed := decode[store.PaginatedResult[domain.Post]](t, resp).Data
	require.Len(t, feed.Items, 1)
	assert.Equal(t, 1, feed.Items[0].CommentCount)

	resp = ts.api.Post("/api/v1/posts/post-missing/comments", bearerHeader(token), map[string]any{"text": "hi"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/posts/"+post.ID, bearerHeader(otherToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "FORBIDDEN", decode[any](t, resp).Code)

	resp = ts.api.Delete("/api/v1/posts/"+post.ID, bearerHeader(token))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/posts/"+post.ID, bearerHeader(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUserProfile(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.register(t, "ada")
	otherToken, _ := ts.register(t, "bo")
	ts.publish(t, token, "Tides", "One.\n\nTwo.")

	resp := ts.api.Post("/api/v1/users/"+userID+"/follow", bearerHeader(otherToken))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/users/"+userID, bearerHeader(otherToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	profile := decode[domain.UserProfile](t, resp).Data
	assert.Equal(t, "ada", profile.Name)
	assert.NotEmpty(t, profile.AvatarColor)
	require.Len(t, profile.Books, 1)
	assert.Equal(t, "Tides", profile.Books[0].Title)
	assert.Equal(t, 1, profile.FollowerCount)

	resp = ts.api.Get("/api/v1/users/usr-missing", bearerHeader(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[any](t, resp).Code)
}
