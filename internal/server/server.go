// Package server provides the HTTP API for Michibiki.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/michibiki/internal/advisor"
	"github.com/hyperjump/michibiki/internal/config"
	"github.com/hyperjump/michibiki/internal/index"
	coursesync "github.com/hyperjump/michibiki/internal/sync"
)

// Server is the HTTP server for the Michibiki API.
type Server struct {
	engine *advisor.Engine
	syncer *coursesync.Syncer
	client *index.Client
	cfg    *config.Config
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *advisor.Engine,
	syncer *coursesync.Syncer,
	client *index.Client,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine: engine,
		syncer: syncer,
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/advise", s.handleAdvise)
	r.Post("/api/v1/recommend", s.handleRecommend)
	r.Post("/api/v1/sync", s.handleSync)
	r.Get("/api/v1/courses/{id}", s.handleGetCourse)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
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
