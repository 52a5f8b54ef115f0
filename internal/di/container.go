// Package di provides dependency injection configuration for the LitBook server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/litbook/litbook-server/internal/auth"
	"github.com/litbook/litbook-server/internal/config"
	"github.com/litbook/litbook-server/internal/di/providers"
	"github.com/litbook/litbook-server/internal/logger"
	"github.com/litbook/litbook-server/internal/segment"
	"github.com/litbook/litbook-server/internal/service"
	"github.com/litbook/litbook-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCache)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// LLM layer
	do.Provide(injector, providers.ProvideLLM)
	do.Provide(injector, providers.ProvideSegmenter)
	do.Provide(injector, providers.ProvideAnnotationOptions)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideActivityService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideReadingService)
	do.Provide(injector, providers.ProvideBookmarkService)
	do.Provide(injector, providers.ProvideAnnotationService)
	do.Provide(injector, providers.ProvideSocialService)
	do.Provide(injector, providers.ProvideCommunityService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap eagerly resolves every service so configuration errors surface
// at startup instead of on first request.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*validation.Validator](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CacheHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*segment.Segmenter](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.AnnotationService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.SearchService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	providers.TriggerSearchReindexIfNeeded(injector)
	return nil
}
