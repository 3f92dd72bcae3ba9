// Package api exposes segmentation over HTTP for callers that want chunks
// back synchronously instead of CSV files on disk.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gradient/internal/config"
	"gradient/internal/embedder"
	"gradient/internal/pagetext"
	"gradient/internal/segmenter"
)

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	seg        *segmenter.Segmenter
	opts       pagetext.Options
	embedStats *embedder.Stats
	embedInfo  embedder.Embedder
	log        *slog.Logger
	cfg        config.Config
}

// NewServer creates and configures the HTTP server. embedInfo and
// embedStats may be nil when no embedding provider is configured.
func NewServer(seg *segmenter.Segmenter, opts pagetext.Options, embedInfo embedder.Embedder, embedStats *embedder.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		seg:        seg,
		opts:       opts,
		embedStats: embedStats,
		embedInfo:  embedInfo,
		log:        log,
		cfg:        cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/segment", s.handleSegment)
		r.Get("/api/stats/embed", s.handleEmbedStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
