// Package server exposes rendering over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/satindergrewal/lofistudio/internal/media"
	"github.com/satindergrewal/lofistudio/internal/studio"
)

// Config holds server configuration
type Config struct {
	Port            int
	DefaultStyle    string
	DefaultDuration float64
	MaxDuration     float64
	RenderRate      float64 // renders per second, 0 for unlimited
}

// Server is the HTTP server
type Server struct {
	config   Config
	router   *chi.Mux
	logger   *slog.Logger
	encoders *media.Encoders
	studio   *studio.Studio
	limiter  *rate.Limiter

	mu       sync.RWMutex
	jobs     map[string]*jobRecord
	jobOrder []string // insertion order, oldest first
	maxJobs  int
}

// defaultMaxJobs bounds how many finished jobs the server remembers.
const defaultMaxJobs = 256

// New creates a new server. logger may be nil.
func New(cfg Config, encoders *media.Encoders, st *studio.Studio, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	if encoders == nil {
		encoders = &media.Encoders{}
	}
	limit := rate.Inf
	if cfg.RenderRate > 0 {
		limit = rate.Limit(cfg.RenderRate)
	}
	burst := max(1, int(cfg.RenderRate))

	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		logger:   logger,
		encoders: encoders,
		studio:   st,
		limiter:  rate.NewLimiter(limit, burst),
		jobs:     map[string]*jobRecord{},
		maxJobs:  defaultMaxJobs,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/styles", s.handleStyles)
		r.Get("/status", s.handleStatus)
		r.With(s.rateLimit).Post("/render", s.handleRender)

		if s.studio != nil {
			r.With(s.rateLimit).Post("/jobs", s.handleCreateJob)
			r.Get("/jobs/{id}", s.handleJob)
			r.Get("/jobs/{id}/files/{kind}", s.handleJobFile)
		}
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// rateLimit rejects requests beyond the configured render rate.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "too many renders, slow down"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run starts the server and shuts it down when ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // long renders
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	s.logger.Info("server starting", slog.Int("port", s.config.Port))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	<-done
	return nil
}
