// Package http provides the terminal-facing HTTP server and its middleware.
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
)

// RouteRegistrar registers a domain module's routes under the versioned API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Option configures optional server behavior.
type Option func(*Server)

// WithCORS enables CORS for the given comma-separated origin list.
// The terminal UI runs in a webview with a custom origin, so this is
// typically enabled with a single origin.
func WithCORS(enabled bool, allowOrigins string) Option {
	return func(s *Server) {
		s.corsEnabled = enabled
		s.corsAllowOrigins = allowOrigins
	}
}

// WithMetricsMiddleware records request counts and durations for every route.
func WithMetricsMiddleware(middleware gin.HandlerFunc) Option {
	return func(s *Server) {
		s.metricsMiddleware = middleware
	}
}

// WithRoutes adds domain route registrars mounted under /v1.
func WithRoutes(registrars ...RouteRegistrar) Option {
	return func(s *Server) {
		s.registrars = append(s.registrars, registrars...)
	}
}

// Server represents the HTTP server the terminal UI talks to.
type Server struct {
	server *http.Server
	db     *sql.DB
	logger *slog.Logger

	corsEnabled       bool
	corsAllowOrigins  string
	metricsMiddleware gin.HandlerFunc
	registrars        []RouteRegistrar
}

// NewServer creates a new HTTP server. The db handle is used only by the
// readiness endpoint; nil is allowed in tests.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.server.Handler = s.buildRouter()

	return s
}

// buildRouter assembles the Gin engine with middleware and all registered routes.
func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(s.corsEnabled, s.corsAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if s.metricsMiddleware != nil {
		router.Use(s.metricsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	for _, registrar := range s.registrars {
		registrar.RegisterRoutes(v1)
	}

	return router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
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

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the local store is reachable. A terminal
// whose local store is broken must not accept sales (the Enqueue guarantee
// depends on it).
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	status := "ready"
	code := http.StatusOK

	if s.db == nil {
		components["database"] = "error"
		status = "not_ready"
		code = http.StatusServiceUnavailable
	} else if err := s.db.PingContext(c.Request.Context()); err != nil {
		components["database"] = "error"
		status = "not_ready"
		code = http.StatusServiceUnavailable
	} else {
		components["database"] = "ok"
	}

	c.JSON(code, gin.H{"status": status, "components": components})
}
