// Package server provides the HTTP API over one long-lived pipeline session.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/ragpipe/internal/config"
	"github.com/hyperjump/ragpipe/internal/rag"
	"go.uber.org/zap"
)

// WatchService reports the directories being watched for new documents.
type WatchService interface {
	Directories() []string
}

// Server is the HTTP server for the ragpipe API.
type Server struct {
	pipeline *rag.Pipeline
	config   *config.Config
	watch    WatchService // nil when watching is disabled
	logger   *zap.Logger
	server   *http.Server
	started  time.Time
}

// NewServer creates a server. watch may be nil.
func NewServer(pipeline *rag.Pipeline, cfg *config.Config, watch WatchService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		pipeline: pipeline,
		config:   cfg,
		watch:    watch,
		logger:   logger,
		started:  time.Now(),
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/documents", s.handleListDocuments)
		r.Post("/documents", s.handleAddDocument)
		r.Post("/documents/pdf", s.handleAddPDF)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Post("/retrieve", s.handleRetrieve)
		r.Post("/ask", s.handleAsk)
		r.Post("/query", s.handleRemoteQuery)
	})
	return r
}

// requestLogger logs each request through zap instead of chi's stdlib logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
