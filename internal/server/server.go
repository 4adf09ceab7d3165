package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/api"
	"github.com/pageza/recipebox/backend/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *slog.Logger
}

// New builds the engine with the shared middleware chain and every route.
// deps.Config must be set.
func New(deps api.Dependencies) *Server {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
		deps.Logger = logger
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigins),
	)
	router.NoRoute(middleware.NotFound())

	router.GET("/health", api.HealthCheck(deps.DB, deps.Redis, logger))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if mediaURL, ok := localMediaPath(cfg); ok {
		router.Static(mediaURL, cfg.MediaRoot)
	}

	api.SetupAPI(router, deps)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting server", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down server")
		return s.Stop(shutdownCtx)
	})

	return g.Wait()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}

// localMediaPath returns the URL prefix uploaded files are served under when
// they live on local disk
func localMediaPath(cfg *config.Config) (string, bool) {
	prefix := strings.TrimRight(cfg.MediaURL, "/")
	if cfg.StorageBackend != "local" || !strings.HasPrefix(prefix, "/") {
		return "", false
	}
	return prefix, true
}
