// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes article generation and the library over HTTP.
// Implements: prd005-service (R1-R5);
//
//	docs/ARCHITECTURE § HTTP Service.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pdiddy/article-engine/internal/generate"
	"github.com/pdiddy/article-engine/internal/library"
	"github.com/pdiddy/article-engine/internal/log"
	"github.com/pdiddy/article-engine/internal/ollama"
	"github.com/pdiddy/article-engine/pkg/types"
)

// ModelLister is the subset of the Ollama client the server needs for
// model endpoints. Tests supply a stub.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)
	Version(ctx context.Context) (string, error)
}

// Server wires the generation pipeline and the library behind a chi
// router.
type Server struct {
	gen     *generate.Generator
	store   *library.Store
	models  ModelLister
	cfg     types.ServerConfig
	version string
	logger  zerolog.Logger
}

// New builds a Server. Zero-valued config fields fall back to the
// documented defaults.
func New(gen *generate.Generator, store *library.Store, models ModelLister, cfg types.ServerConfig, version string) *Server {
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 30
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		gen:     gen,
		store:   store,
		models:  models,
		cfg:     cfg,
		version: version,
		logger:  log.WithComponent("server"),
	}
}

// Router assembles the middleware stack and routes (R1.1, R1.2).
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(metricsMiddleware)
	r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/articles", s.handleGenerate)
		r.Get("/articles", s.handleList)
		r.Get("/articles/{id}", s.handleGet)
		r.Delete("/articles/{id}", s.handleDelete)
		r.Get("/models", s.handleModels)
		r.Get("/version", s.handleVersion)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// the configured timeout (R5.1, R5.2).
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("listen", s.cfg.Listen).Msg("serving")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
