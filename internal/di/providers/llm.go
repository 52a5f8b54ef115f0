package providers

import (
	"context"
	"io"

	"github.com/samber/do/v2"

	"github.com/litbook/litbook-server/internal/config"
	"github.com/litbook/litbook-server/internal/llm"
	"github.com/litbook/litbook-server/internal/logger"
	"github.com/litbook/litbook-server/internal/ratelimit"
	"github.com/litbook/litbook-server/internal/segment"
	"github.com/litbook/litbook-server/internal/service"
)

// LLMHandle holds the remote providers used by the segmenter and annotator.
// Either may be nil when its feature runs without a provider.
type LLMHandle struct {
	Segmenter llm.Provider
	Annotator llm.Provider

	segmenterLimiter *ratelimit.KeyedRateLimiter
	annotatorLimiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *LLMHandle) Shutdown() error {
	for _, limiter := range []*ratelimit.KeyedRateLimiter{h.segmenterLimiter, h.annotatorLimiter} {
		if limiter != nil {
			limiter.Stop()
		}
	}
	for _, p := range []llm.Provider{h.Segmenter, h.Annotator} {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProvideLLM builds the configured LLM providers.
func ProvideLLM(i do.Injector) (*LLMHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	h := &LLMHandle{}
	var err error

	if h.Segmenter, err = newProvider(cfg.Segmenter); err != nil {
		return nil, err
	}
	if h.Annotator, err = newProvider(cfg.Annotator); err != nil {
		return nil, err
	}
	if h.Segmenter != nil {
		h.segmenterLimiter = ratelimit.New(cfg.Segmenter.RatePerSec, 1)
	}
	if h.Annotator != nil {
		h.annotatorLimiter = ratelimit.New(cfg.Annotator.RatePerSec, 1)
	}

	log.Info("LLM providers configured",
		"segmenter", cfg.Segmenter.Provider,
		"segmenter_model", cfg.Segmenter.Model,
		"annotator", cfg.Annotator.Provider,
		"annotator_model", cfg.Annotator.Model,
	)

	return h, nil
}

func newProvider(c config.LLMConfig) (llm.Provider, error) {
	if !c.Enabled() {
		return nil, nil
	}
	return llm.New(context.Background(), llm.Config{
		Provider: c.Provider,
		Model:    c.Model,
		BaseURL:  c.BaseURL,
		APIKey:   c.APIKey,
		Timeout:  c.Timeout,
	})
}

// ProvideSegmenter provides the verse segmenter. Without a remote provider
// it segments with the local heuristic only.
func ProvideSegmenter(i do.Injector) (*segment.Segmenter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	llmHandle := do.MustInvoke[*LLMHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)

	opts := segment.Options{
		Timeout:  cfg.Segmenter.Timeout,
		Cache:    cacheHandle.Cache,
		CacheTTL: cfg.Segmenter.CacheTTL,
		Logger:   log.Logger,
	}
	if llmHandle.Segmenter != nil {
		opts.Splitter = segment.NewLLMSplitter(llmHandle.Segmenter, cfg.Segmenter.Model)
		opts.Limiter = llmHandle.segmenterLimiter
	}

	return segment.New(opts), nil
}

// ProvideAnnotationOptions provides the annotator configuration.
func ProvideAnnotationOptions(i do.Injector) (service.AnnotationOptions, error) {
	cfg := do.MustInvoke[*config.Config](i)
	llmHandle := do.MustInvoke[*LLMHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)

	return service.AnnotationOptions{
		Provider: llmHandle.Annotator,
		Model:    cfg.Annotator.Model,
		Timeout:  cfg.Annotator.Timeout,
		Limiter:  llmHandle.annotatorLimiter,
		Cache:    cacheHandle.Cache,
		CacheTTL: cfg.Annotator.CacheTTL,
	}, nil
}
