package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"verses\":[\"a\"]}"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAI(srv.URL+"/v1/", "secret", srv.Client())
	out, err := p.Complete(context.Background(), Request{
		System: "split", Prompt: "a", Model: "llama", Temperature: 0.2, JSON: true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"verses":["a"]}`, out)
	assert.Equal(t, "llama", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "json_object", got.ResponseFormat["type"])
}

func TestOpenAI_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewOpenAI(srv.URL, "", srv.Client()).Complete(context.Background(), Request{Prompt: "x"})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Status)
	assert.Contains(t, statusErr.Body, "quota exceeded")
}

func TestOpenAI_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI(srv.URL, "", srv.Client()).Complete(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOllama_Complete(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"{\"annotation\":\"a note\"}","done":true}`))
	}))
	defer srv.Close()

	out, err := NewOllama(srv.URL, srv.Client()).Complete(context.Background(), Request{
		Prompt: "p", System: "s", Model: "llama3", JSON: true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"annotation":"a note"}`, out)
	assert.Equal(t, "json", got.Format)
	assert.False(t, got.Stream)
	assert.Equal(t, "s", got.System)
}

func TestOllama_ContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewOllama(srv.URL, srv.Client()).Complete(ctx, Request{Prompt: "p"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_Providers(t *testing.T) {
	p, err := New(context.Background(), Config{Provider: "OpenAI", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, NameOpenAI, p.Name())

	p, err = New(context.Background(), Config{Provider: NameOllama})
	require.NoError(t, err)
	assert.Equal(t, NameOllama, p.Name())

	_, err = New(context.Background(), Config{Provider: NameGemini})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Provider: "mystery"})
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("  {\"a\":1} "))
}
