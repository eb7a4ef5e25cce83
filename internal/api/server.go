// Package api is the HTTP surface over campaigns, recipients, sender
// profiles, and contacts.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bioedge/outreach/internal/config"
	"github.com/bioedge/outreach/internal/generator"
	"github.com/bioedge/outreach/internal/metrics"
	"github.com/bioedge/outreach/internal/repository"
)

// Server is the HTTP API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	cfg        *config.ServerConfig
	logger     *slog.Logger
	metrics    *metrics.Metrics
	startTime  time.Time

	campaigns  *repository.CampaignRepository
	recipients *repository.RecipientRepository
	senders    *repository.SenderProfileRepository
	contacts   *repository.ContactRepository
	gen        *generator.Service
}

// NewServer creates a new API server.
func NewServer(
	cfg *config.ServerConfig,
	campaigns *repository.CampaignRepository,
	recipients *repository.RecipientRepository,
	senders *repository.SenderProfileRepository,
	contacts *repository.ContactRepository,
	gen *generator.Service,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		cfg:        cfg,
		logger:     logger.With("component", "api"),
		metrics:    m,
		startTime:  time.Now(),
		campaigns:  campaigns,
		recipients: recipients,
		senders:    senders,
		contacts:   contacts,
		gen:        gen,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)

	// No auth on operational endpoints
	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", s.handleCreateCampaign)
			r.Get("/", s.handleListCampaigns)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetCampaign)
				r.Put("/", s.handleUpdateCampaign)
				r.Delete("/", s.handleDeleteCampaign)

				r.Post("/generate", s.handleGenerateCampaign)
				r.Post("/send", s.handleSendCampaign)
				r.Post("/pause", s.handlePauseCampaign)
				r.Post("/resume", s.handleResumeCampaign)
				r.Post("/complete", s.handleCompleteCampaign)

				r.Post("/recipients", s.handleAddRecipients)
				r.Get("/recipients", s.handleListRecipients)
				r.Patch("/recipients", s.handleBulkRecipients)
			})
		})

		r.Patch("/recipients/{id}", s.handleRecipientAction)

		r.Route("/senders", func(r chi.Router) {
			r.Post("/", s.handleCreateSender)
			r.Get("/", s.handleListSenders)
			r.Get("/{id}", s.handleGetSender)
			r.Put("/{id}", s.handleUpdateSender)
			r.Delete("/{id}", s.handleDeleteSender)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Post("/", s.handleUpsertContact)
			r.Get("/", s.handleListContacts)
		})
	})
}

// Router exposes the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP API server", "addr", s.cfg.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP API server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
