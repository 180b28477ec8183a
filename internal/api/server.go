// Package api serves the testimonial link HTTP API with huma on chi.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/gbakws/testimonial-server/internal/http/response"
	"github.com/gbakws/testimonial-server/internal/service"
	"github.com/gbakws/testimonial-server/internal/store"
)

// Services groups the services the handlers call.
type Services struct {
	Issuance     *service.IssuanceService
	Verification *service.VerificationService
	Redemption   *service.RedemptionService
	Testimonials *service.TestimonialService
}

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	Version        string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	router   chi.Router
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a server with middleware and all routes registered.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	setupMiddleware(router, opts)
	router.NotFound(response.NotFound(logger))
	router.MethodNotAllowed(response.MethodNotAllowed(logger))

	version := opts.Version
	if version == "" {
		version = "1.0.0"
	}
	humaConfig := huma.DefaultConfig("Testimonial API", version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:    st,
		services: services,
		router:   router,
		api:      api,
		logger:   logger,
	}

	s.registerHealthRoutes()
	s.registerLinkRoutes()
	s.registerTestimonialRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}
