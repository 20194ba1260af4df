// Package server provides the HTTP API for the matching service: match
// listings, skill search, and the dispatch triggers.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kajiplatform/matching-service/internal/dispatch"
	"github.com/kajiplatform/matching-service/internal/proximity"
	"github.com/kajiplatform/matching-service/internal/selection"
	"github.com/kajiplatform/matching-service/internal/store"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Repo       store.Repository
	Selector   *selection.Selector
	Dispatcher *dispatch.Dispatcher
	Notifier   *proximity.Notifier
	Log        *zap.Logger
}

// Config holds server configuration
type Config struct {
	Addr         string
	CandidateCap int
	PostingCap   int
}

// New creates a new server instance
func New(cfg Config, deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	h := &handlers{deps: deps, cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleHealth)

	// Match listings
	mux.HandleFunc("GET /postings/{id}/matches", h.handlePostingMatches)
	mux.HandleFunc("GET /users/{id}/matches", h.handleUserMatches)
	mux.HandleFunc("GET /search/skills", h.handleSkillSearch)

	// Dispatch triggers
	mux.HandleFunc("POST /postings/{id}/recommendations", h.handleNewPostingRound)
	mux.HandleFunc("POST /users/{id}/applied/{posting_id}/similar", h.handleSimilarRound)
	mux.HandleFunc("POST /users/{id}/rejected/{posting_id}/skill-gap", h.handleSkillGapRound)
	mux.HandleFunc("POST /postings/{id}/urgent-alert", h.handleUrgentAlertRound)

	s := &Server{log: deps.Log}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening for requests and blocks until SIGINT/SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}
