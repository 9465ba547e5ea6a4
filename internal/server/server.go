package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cinesearch/internal/api"
	"cinesearch/internal/config"
	"cinesearch/internal/logging"
)

const defaultShutdownTimeout = 10 * time.Second

// Options configures the HTTP transport.
type Options struct {
	Bind               string
	Token              string
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	ShutdownTimeout    time.Duration
}

// OptionsFromConfig maps the [server] section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Bind:               cfg.Server.Bind,
		Token:              cfg.Server.Token,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RateLimitRequests:  cfg.Server.RateLimitRequests,
		RateLimitWindow:    cfg.RateLimitWindow(),
		ShutdownTimeout:    cfg.ShutdownTimeout(),
	}
}

// Server serves the API facade over HTTP.
type Server struct {
	svc     *api.Service
	opts    Options
	logger  *slog.Logger
	handler http.Handler
}

// New builds a Server and its routes.
func New(svc *api.Service, opts Options, logger *slog.Logger) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	s := &Server{
		svc:    svc,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "http"),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.recoverer)
	r.Use(corsHandler(s.opts.CORSAllowedOrigins))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimit(s.opts.RateLimitRequests, s.opts.RateLimitWindow))
		r.Use(recordMetrics)
		r.Use(authMiddleware(s.opts.Token))

		r.Post("/search", s.handleSearch)
		r.Post("/recommendations", s.handleRecommendations)
		r.Get("/stats", s.handleStats)
		r.Post("/trailers/fill", s.handleFillTrailers)
		r.Get("/titles/{id}", s.handleTitle)
		r.Get("/titles/{id}/analysis", s.handleAnalysis)
		r.Get("/titles/{id}/related", s.handleRelated)
	})
	return r
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.opts.Bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve runs the server on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	if err := s.svc.Flush(); err != nil {
		logging.WarnWithContext(s.logger, "final catalog flush failed", "catalog_flush_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "enrichment written since the last flush is lost"),
		)
	}
	s.logger.Info("api server stopped")
	return nil
}
