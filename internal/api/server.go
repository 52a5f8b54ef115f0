// Package api provides the HTTP API server and handlers for LitBook.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/litbook/litbook-server/internal/ratelimit"
	"github.com/litbook/litbook-server/internal/search"
	"github.com/litbook/litbook-server/internal/service"
	"github.com/litbook/litbook-server/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Services groups the business services used by the API server.
type Services struct {
	Auth       *service.AuthService
	Book       *service.BookService
	Reading    *service.ReadingService
	Bookmark   *service.BookmarkService
	Activity   *service.ActivityService
	Annotation *service.AnnotationService
	Social     *service.SocialService
	Community  *service.CommunityService
	Search     *service.SearchService
}

// Options configures the HTTP layer.
type Options struct {
	CORSOrigins []string
	// AuthRateLimiter throttles register and login per client IP. Nil uses
	// 20 requests per minute with a burst of 10.
	AuthRateLimiter *ratelimit.KeyedRateLimiter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	index           *search.Index
	services        *Services
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, index *search.Index, services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.AuthRateLimiter == nil {
		opts.AuthRateLimiter = ratelimit.PerInterval(20, time.Minute, 10)
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(authMiddleware(services.Auth))

	s := &Server{
		store:           st,
		index:           index,
		services:        services,
		router:          router,
		api:             humachi.New(router, newHumaConfig("LitBook API")),
		logger:          logger,
		authRateLimiter: opts.AuthRateLimiter,
	}
	RegisterErrorHandler()

	s.registerRoutes()
	return s
}

// newHumaConfig builds the huma config shared by the server and tests.
func newHumaConfig(title string) huma.Config {
	cfg := huma.DefaultConfig(title, Version)
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	// The envelope must see *APIError values before any other transformer
	// rewrites them.
	cfg.Transformers = []huma.Transformer{EnvelopeTransformer}
	return cfg
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerReadingRoutes()
	s.registerBookmarkRoutes()
	s.registerActivityRoutes()
	s.registerAnnotationRoutes()
	s.registerSocialRoutes()
	s.registerCommunityRoutes()
	s.registerSearchRoutes()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

// bearer marks an operation as requiring a bearer token in the OpenAPI doc.
var bearer = []map[string][]string{{"bearer": {}}}
