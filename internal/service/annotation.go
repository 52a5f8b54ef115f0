package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/litbook/litbook-server/internal/cache"
	domainerrors "github.com/litbook/litbook-server/internal/errors"
	"github.com/litbook/litbook-server/internal/llm"
	"github.com/litbook/litbook-server/internal/ratelimit"
	"github.com/litbook/litbook-server/internal/store"
	"github.com/litbook/litbook-server/internal/validation"
)

// annotationContextParagraphs is how many preceding paragraphs are sent
// alongside the selected one.
const annotationContextParagraphs = 5

const annotationSystemPrompt = `You are a literary companion helping a reader understand a passage.
Explain the selected paragraph in two to four sentences: its meaning, notable imagery or
allusions, and how it connects to the preceding text. Do not quote the paragraph back.
Answer with a single JSON object of the form {"annotation": "..."}.`

// AnnotateRequest selects the paragraph to annotate.
type AnnotateRequest struct {
	ChapterID      string `json:"chapter_id" validate:"required"`
	ParagraphIndex int    `json:"paragraph_index" validate:"gte=1"`
}

// Annotation is an LLM commentary on one paragraph.
type Annotation struct {
	BookID         string `json:"book_id"`
	ChapterID      string `json:"chapter_id"`
	ParagraphIndex int    `json:"paragraph_index"`
	Paragraph      string `json:"paragraph"`
	Text           string `json:"annotation"`
	Cached         bool   `json:"cached"`
}

// AnnotationOptions configures an AnnotationService. A nil Provider
// disables annotations.
type AnnotationOptions struct {
	Provider llm.Provider
	Model    string
	Timeout  time.Duration
	Limiter  *ratelimit.KeyedRateLimiter
	Cache    *cache.Cache
	CacheTTL time.Duration
}

// AnnotationService explains paragraphs with an LLM and caches the answers.
type AnnotationService struct {
	store     store.Store
	opts      AnnotationOptions
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAnnotationService creates an annotation service.
func NewAnnotationService(st store.Store, opts AnnotationOptions, v *validation.Validator, logger *slog.Logger) *AnnotationService {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &AnnotationService{store: st, opts: opts, validator: v, logger: logger}
}

// Enabled reports whether a provider is configured.
func (s *AnnotationService) Enabled() bool {
	return s.opts.Provider != nil
}

// Annotate explains one paragraph of a book.
func (s *AnnotationService) Annotate(ctx context.Context, bookID string, req AnnotateRequest) (*Annotation, error) {
	if !s.Enabled() {
		return nil, domainerrors.Unavailable("annotations are not enabled on this server")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := loadBook(ctx, s.store, bookID)
	if err != nil {
		return nil, err
	}
	paragraph, err := resolvePosition(book, req.ChapterID, req.ParagraphIndex)
	if err != nil {
		return nil, err
	}
	ch, _ := book.Chapter(req.ChapterID)
	start := max(0, req.ParagraphIndex-1-annotationContextParagraphs)
	preceding := ch.Content[start : req.ParagraphIndex-1]

	result := &Annotation{
		BookID:         bookID,
		ChapterID:      req.ChapterID,
		ParagraphIndex: req.ParagraphIndex,
		Paragraph:      paragraph,
	}

	key := cache.Key("annotate", s.opts.Provider.Name(), s.opts.Model, book.Title, strings.Join(preceding, "\n"), paragraph)
	if s.opts.Cache != nil {
		var cached string
		found, err := s.opts.Cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("annotation cache read failed", "error", err)
		}
		if found && cached != "" {
			result.Text = cached
			result.Cached = true
			return result, nil
		}
	}

	text, err := s.complete(ctx, buildAnnotationPrompt(book.Title, book.AuthorName, ch.Title, preceding, paragraph))
	if err != nil {
		s.logger.Warn("annotation failed", "book_id", bookID, "chapter_id", req.ChapterID, "error", err)
		return nil, domainerrors.Unavailable("the annotation provider did not answer").WithCause(err)
	}
	result.Text = text

	if s.opts.Cache != nil {
		if err := s.opts.Cache.Set(ctx, key, text, s.opts.CacheTTL); err != nil {
			s.logger.Warn("annotation cache write failed", "error", err)
		}
	}
	return result, nil
}

func (s *AnnotationService) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if s.opts.Limiter != nil {
		if err := s.opts.Limiter.Wait(ctx, s.opts.Provider.Name()); err != nil {
			return "", fmt.Errorf("rate limited: %w", err)
		}
	}

	raw, err := s.opts.Provider.Complete(ctx, llm.Request{
		System:      annotationSystemPrompt,
		Prompt:      prompt,
		Model:       s.opts.Model,
		Temperature: 0.4,
		JSON:        true,
	})
	if err != nil {
		return "", err
	}
	return parseAnnotation(raw)
}

func parseAnnotation(raw string) (string, error) {
	var payload struct {
		Annotation string `json:"annotation"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFence(raw)), &payload); err != nil {
		return "", fmt.Errorf("malformed annotation: %w", err)
	}
	text := strings.TrimSpace(payload.Annotation)
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func buildAnnotationPrompt(bookTitle, author, chapterTitle string, preceding []string, paragraph string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Book: %s\nAuthor: %s\nChapter: %s\n", bookTitle, author, chapterTitle)
	if len(preceding) > 0 {
		b.WriteString("\nPreceding paragraphs:\n")
		for _, p := range preceding {
			b.WriteString("> ")
			b.WriteString(p)
			b.WriteString("\n")
		}
	}
	b.WriteString("\nSelected paragraph:\n")
	b.WriteString(paragraph)
	return b.String()
}
