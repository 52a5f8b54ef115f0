package segment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/litbook/litbook-server/internal/llm"
)

// ErrNoVerses is the failure reason when a splitter produced nothing usable.
var ErrNoVerses = errors.New("segment: splitter returned no verses")

// Attempt is the outcome of one remote split: either verses, or the reason
// the attempt failed. Splitters report failure through Reason instead of
// returning an error so the caller always has a deterministic next step.
type Attempt struct {
	Verses []string
	Reason error
}

// OK reports whether the attempt produced verses.
func (a Attempt) OK() bool {
	return a.Reason == nil && len(a.Verses) > 0
}

// Succeeded builds a successful attempt from raw verses.
func Succeeded(verses []string) Attempt {
	cleaned := Clean(verses)
	if len(cleaned) == 0 {
		return Failed(ErrNoVerses)
	}
	return Attempt{Verses: cleaned}
}

// Failed builds a failed attempt.
func Failed(reason error) Attempt {
	if reason == nil {
		reason = ErrNoVerses
	}
	return Attempt{Reason: reason}
}

// Splitter segments text remotely.
type Splitter interface {
	// Name identifies the splitter and its model. It is part of cache keys.
	Name() string
	Split(ctx context.Context, text string) Attempt
}

const splitSystemPrompt = `You divide text into verses for a reading app.
Each verse is a full sentence or short paragraph expressing one complete thought.
Never split a sentence in the middle. Do not add, remove, or change any words.
Answer with a single JSON object of the form {"verses": ["...", "..."]}.`

// LLMSplitter asks an LLM provider to segment text.
type LLMSplitter struct {
	provider llm.Provider
	model    string
}

// NewLLMSplitter creates a splitter backed by provider.
func NewLLMSplitter(provider llm.Provider, model string) *LLMSplitter {
	return &LLMSplitter{provider: provider, model: model}
}

func (s *LLMSplitter) Name() string {
	return s.provider.Name() + "/" + s.model
}

// Split calls the provider and validates the JSON shape of its answer.
func (s *LLMSplitter) Split(ctx context.Context, text string) Attempt {
	out, err := s.provider.Complete(ctx, llm.Request{
		System:      splitSystemPrompt,
		Prompt:      "Original text:\n---\n" + text + "\n---",
		Model:       s.model,
		Temperature: 0,
		JSON:        true,
	})
	if err != nil {
		return Failed(fmt.Errorf("%s: %w", s.provider.Name(), err))
	}

	verses, err := ParseVerses(out)
	if err != nil {
		return Failed(err)
	}
	return Succeeded(verses)
}

// ParseVerses validates a splitter answer: a JSON object whose "verses" key
// holds an array of strings.
func ParseVerses(raw string) ([]string, error) {
	var payload struct {
		Verses *[]string `json:"verses"`
	}
	dec := json.NewDecoder(strings.NewReader(llm.StripCodeFence(raw)))
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("segment: malformed splitter output: %w", err)
	}
	if payload.Verses == nil {
		return nil, errors.New(`segment: splitter output has no "verses" array`)
	}
	return *payload.Verses, nil
}
