// Package api provides the HTTP REST API for the course chatbot.
//
// Endpoints:
//
//	POST /api/query     →  answer a question (optionally within a session)
//	GET  /api/courses   →  corpus analytics (course count and titles)
//	POST /api/sessions  →  create a conversation session
//	GET  /health        →  liveness probe
//	GET  /ready         →  readiness probe
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (logging, recovery)
//   - query.go: query and session endpoints
//   - courses.go: course analytics endpoint
//   - health.go: health check endpoints (/health, /ready)
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/log"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/rag"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/tools"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8000"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Answer generation makes multiple model calls, so this is generous.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on
	// keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// ChatService is the slice of the RAG pipeline the API exposes.
type ChatService interface {
	Query(ctx context.Context, query, sessionID string) (string, []tools.Source, error)
	CreateSession() string
	CourseAnalytics() rag.Analytics
}

// Server is the HTTP server for the chatbot's REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	health  *HealthHandler
	query   *QueryHandler
	courses *CourseHandler
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(svc ChatService, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:     mux,
		logger:  logger,
		health:  NewHealthHandler(svc, logger),
		query:   NewQueryHandler(svc, logger),
		courses: NewCourseHandler(svc, logger),
	}

	s.health.RegisterRoutes(mux)
	s.query.RegisterRoutes(mux)
	s.courses.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → handler
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger))
}

// Run starts the HTTP server and blocks until the context is
// cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
