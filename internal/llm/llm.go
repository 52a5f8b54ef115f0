// Package llm talks to text-generation providers. Every provider answers a
// Request with raw model text; callers that ask for JSON parse it themselves.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider names.
const (
	NameOpenAI = "openai"
	NameOllama = "ollama"
	NameGemini = "gemini"
)

// ErrEmptyResponse is returned when a provider answers with no content.
var ErrEmptyResponse = errors.New("llm: empty response")

// Request is one completion request.
type Request struct {
	System      string
	Prompt      string
	Model       string
	Temperature float64
	// JSON asks the provider to constrain output to a JSON object.
	JSON bool
}

// Provider generates text for a request.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// New builds the provider named by cfg.Provider. Gemini needs a context to
// dial; the others are plain HTTP clients.
func New(ctx context.Context, cfg Config) (Provider, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch strings.ToLower(cfg.Provider) {
	case NameOpenAI:
		return NewOpenAI(cfg.BaseURL, cfg.APIKey, httpClient), nil
	case NameOllama:
		return NewOllama(cfg.BaseURL, httpClient), nil
	case NameGemini:
		return NewGemini(ctx, cfg.APIKey)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

// StatusError reports a non-2xx provider response.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: received status %d: %s", e.Provider, e.Status, e.Body)
}

// StripCodeFence removes a surrounding ```json fence that some models add
// even in JSON mode.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
