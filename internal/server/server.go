package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bonzainsights/WorldInsights/internal/aggregator"
	"github.com/bonzainsights/WorldInsights/internal/cache"
	"github.com/bonzainsights/WorldInsights/internal/config"
	"github.com/bonzainsights/WorldInsights/internal/logger"
	"github.com/bonzainsights/WorldInsights/internal/reports"
	"github.com/bonzainsights/WorldInsights/internal/storage"
)

// Server wires the HTTP API to the aggregation pipeline.
type Server struct {
	cfg        *config.Config
	aggregator *aggregator.Aggregator
	reports    *reports.Service
	storage    storage.Client
	cache      *cache.Cache
	log        *logger.Logger

	// Single-flight guard for snapshot generation.
	generateMutex sync.Mutex

	httpServer *http.Server
}

// New creates a server instance.
func New(cfg *config.Config, agg *aggregator.Aggregator, reportSvc *reports.Service, store storage.Client) *Server {
	return &Server{
		cfg:        cfg,
		aggregator: agg,
		reports:    reportSvc,
		storage:    store,
		cache:      cache.New(cfg.CacheTTL),
		log:        logger.WithComponent("server"),
	}
}

// Routes configures the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(s.metricsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/indicators", s.handleIndicators)
		r.Get("/countries", s.handleCountries)
		r.Get("/data", s.handleData)
		r.Get("/correlations", s.handleCorrelations)
	})

	r.Post("/generate", s.handleGenerate)
	r.Get("/snapshots", s.handleListSnapshots)
	r.Get("/files/*", s.handleFileProxy)
	r.Get("/", s.handleRoot)

	return r
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", map[string]interface{}{"port": s.cfg.Port})
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
