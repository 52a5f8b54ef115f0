// Package segment turns raw chapter text into an ordered list of verses.
//
// Text the client already split on blank lines is used as is. Otherwise a
// remote Splitter is asked, under a timeout and a rate limit, and its answer
// is cached. Any remote failure falls back to one verse per non-blank line;
// segmentation itself never fails.
package segment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/litbook/litbook-server/internal/cache"
	"github.com/litbook/litbook-server/internal/ratelimit"
)

// Method records which path produced a segmentation.
type Method string

const (
	MethodEmpty    Method = "empty"
	MethodPresplit Method = "presplit"
	MethodRemote   Method = "remote"
	MethodCache    Method = "cache"
	MethodFallback Method = "fallback"
)

// DefaultTimeout bounds one remote split.
const DefaultTimeout = 20 * time.Second

// Segmentation is the result of Segment.
type Segmentation struct {
	Verses         []string `json:"verses"`
	Method         Method   `json:"method"`
	FallbackReason string   `json:"fallback_reason,omitempty"`
}

// Options configures a Segmenter. Every field is optional; a zero Options
// gives a purely local segmenter.
type Options struct {
	Splitter Splitter
	Timeout  time.Duration
	Limiter  *ratelimit.KeyedRateLimiter
	Cache    *cache.Cache
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// Segmenter splits chapter text into verses.
type Segmenter struct {
	splitter Splitter
	timeout  time.Duration
	limiter  *ratelimit.KeyedRateLimiter
	cache    *cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// New creates a segmenter.
func New(opts Options) *Segmenter {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Segmenter{
		splitter: opts.Splitter,
		timeout:  opts.Timeout,
		limiter:  opts.Limiter,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   opts.Logger,
	}
}

// Remote reports whether a remote splitter is configured.
func (s *Segmenter) Remote() bool {
	return s.splitter != nil
}

// Segment splits raw into trimmed, non-empty verses.
func (s *Segmenter) Segment(ctx context.Context, raw string) Segmentation {
	text := NormalizeNewlines(raw)
	if strings.TrimSpace(text) == "" {
		return Segmentation{Verses: []string{}, Method: MethodEmpty}
	}

	// Pre-split parts are returned exactly as written, only trimmed.
	if verses, ok := Presplit(text); ok {
		return Segmentation{Verses: verses, Method: MethodPresplit}
	}
	text = Normalize(text)

	if s.splitter == nil {
		return Segmentation{Verses: SplitLines(text), Method: MethodFallback}
	}

	key := cache.Key("segment", s.splitter.Name(), text)
	if verses, ok := s.cached(ctx, key); ok {
		return Segmentation{Verses: verses, Method: MethodCache}
	}

	attempt := s.attempt(ctx, text)
	if !attempt.OK() {
		verses := SplitLines(text)
		s.logger.Warn("segmentation fell back to line splitting",
			"splitter", s.splitter.Name(),
			"reason", attempt.Reason,
			"verses", len(verses),
		)
		return Segmentation{Verses: verses, Method: MethodFallback, FallbackReason: attempt.Reason.Error()}
	}

	s.store(ctx, key, attempt.Verses)
	return Segmentation{Verses: attempt.Verses, Method: MethodRemote}
}

// attempt runs the splitter under the timeout and rate limit. Panics in a
// splitter are converted into a failed attempt.
func (s *Segmenter) attempt(ctx context.Context, text string) (result Attempt) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			result = Failed(fmt.Errorf("segment: splitter panic: %v", r))
		}
	}()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, s.splitter.Name()); err != nil {
			return Failed(fmt.Errorf("segment: rate limited: %w", err))
		}
	}

	result = s.splitter.Split(ctx, text)
	switch {
	case ctx.Err() != nil && !errors.Is(result.Reason, ctx.Err()):
		// Answers arriving after the deadline are discarded.
		return Failed(fmt.Errorf("segment: %w", ctx.Err()))
	case !result.OK() && result.Reason == nil:
		return Failed(ErrNoVerses)
	}
	return result
}

func (s *Segmenter) cached(ctx context.Context, key string) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}
	var verses []string
	found, err := s.cache.Get(ctx, key, &verses)
	if err != nil {
		s.logger.Warn("segment cache read failed", "error", err)
		return nil, false
	}
	if !found || len(verses) == 0 {
		return nil, false
	}
	return verses, true
}

func (s *Segmenter) store(ctx context.Context, key string, verses []string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, verses, s.cacheTTL); err != nil {
		s.logger.Warn("segment cache write failed", "error", err)
	}
}
