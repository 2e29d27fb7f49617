// Package api provides the HTTP API server and handlers for field codecs and contacts.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/fieldcodec/internal/http/response"
	"github.com/listenupapp/fieldcodec/internal/ratelimit"
	"github.com/listenupapp/fieldcodec/internal/service"
	"github.com/listenupapp/fieldcodec/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Services groups the business logic services used by the API server.
type Services struct {
	Contacts *service.ContactService
	Fields   *service.FieldService
}

// Options configures the HTTP surface.
type Options struct {
	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string
	// RateLimiter limits requests per client IP. Nil disables limiting.
	RateLimiter *ratelimit.KeyedRateLimiter
	// TrustProxy takes the client IP from X-Forwarded-For and X-Real-IP.
	// Leave it off unless a reverse proxy sets those headers, or any client
	// can pick its own rate limit key.
	TrustProxy bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	router   *chi.Mux
	api      huma.API
	limiter  *ratelimit.KeyedRateLimiter
	origins  []string
	trust    bool
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		store:    st,
		services: services,
		router:   chi.NewRouter(),
		limiter:  opts.RateLimiter,
		origins:  opts.AllowedOrigins,
		trust:    opts.TrustProxy,
		logger:   logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("fieldcodec API", Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerFieldRoutes()
	s.registerContactRoutes()

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware() {
	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	if s.trust {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}
}
