// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pensionworks/pensync/internal/config"
	"github.com/pensionworks/pensync/internal/metrics"
	syncHTTP "github.com/pensionworks/pensync/internal/sync/http"
)

// Server represents the API HTTP server.
type Server struct {
	config *config.Config
	db     *sql.DB
	router *gin.Engine
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the API server and assembles its router. The metrics
// provider is optional; pass nil when metrics are disabled.
func NewServer(
	cfg *config.Config,
	db *sql.DB,
	syncHandler *syncHTTP.SyncHandler,
	metricsProvider *metrics.Provider,
	logger *slog.Logger,
) *Server {
	s := &Server{
		config: cfg,
		db:     db,
		logger: logger,
	}
	s.router = s.setupRouter(syncHandler, metricsProvider)
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupRouter assembles the middleware chain and the route table.
func (s *Server) setupRouter(
	syncHandler *syncHTTP.SyncHandler,
	metricsProvider *metrics.Provider,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(
		s.config.CORSEnabled,
		s.config.CORSAllowOrigins,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(
			metricsProvider.MeterProvider(),
			s.config.MetricsNamespace,
		))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	{
		trigger := v1.Group("/sync")
		if s.config.RateLimitEnabled {
			trigger.Use(syncHTTP.RateLimitMiddleware(
				s.config.RateLimitRequestsPerSec,
				s.config.RateLimitBurst,
				s.logger,
			))
		}
		trigger.POST("", syncHandler.TriggerHandler)

		v1.GET("/sync/preview", syncHandler.PreviewHandler)
		v1.GET("/sync/jobs", syncHandler.ListJobsHandler)
		v1.GET("/sync/jobs/:id", syncHandler.GetJobHandler)
		v1.GET("/sync/circuits", syncHandler.CircuitsHandler)
	}

	return router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic. Readiness
// requires a reachable operational database; the warehouse is intentionally
// excluded since the breaker handles its outages at request time.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else if err := s.db.PingContext(c.Request.Context()); err != nil {
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
