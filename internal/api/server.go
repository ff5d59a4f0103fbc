package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/acme/autocert"

	mw "github.com/tphakala/irrigo/internal/api/middleware"
	v1 "github.com/tphakala/irrigo/internal/api/v1"
	"github.com/tphakala/irrigo/internal/buildinfo"
	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/datastore"
	"github.com/tphakala/irrigo/internal/logger"
	"github.com/tphakala/irrigo/internal/observability"
)

// Server is the irrigo HTTP server.
// It manages the Echo framework instance, middleware, and all HTTP routes.
type Server struct {
	// Core components
	echo   *echo.Echo
	config *Config
	logger logger.Logger

	// Dependencies
	planner   v1.Planner
	dataStore datastore.Interface
	metrics   *observability.Metrics
	buildInfo buildinfo.BuildInfo

	forecastProvider string
	advisorProvider  string

	// API controller
	apiController *v1.Controller

	// Lifecycle management
	errCh        chan error
	shutdownOnce sync.Once
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithDataStore sets the datastore for the server.
func WithDataStore(ds datastore.Interface) ServerOption {
	return func(s *Server) {
		s.dataStore = ds
	}
}

// WithMetrics sets the observability metrics for the server and exposes /metrics.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithBuildInfo sets the version reported by the health endpoint.
func WithBuildInfo(info buildinfo.BuildInfo) ServerOption {
	return func(s *Server) {
		s.buildInfo = info
	}
}

// WithProviders sets the upstream provider names reported by the health endpoint.
func WithProviders(forecast, advisor string) ServerOption {
	return func(s *Server) {
		s.forecastProvider = forecast
		s.advisorProvider = advisor
	}
}

// WithConfig replaces the configuration derived from settings.
func WithConfig(cfg *Config) ServerOption {
	return func(s *Server) {
		s.config = cfg
	}
}

// New creates a new HTTP server serving planner p.
func New(settings *conf.Settings, p v1.Planner, opts ...ServerOption) (*Server, error) {
	s := &Server{
		config:  ConfigFromSettings(settings),
		logger:  GetLogger(),
		planner: p,
		errCh:   make(chan error, 1),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	// Initialize Echo
	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Debug = s.config.Debug

	// Configure Echo server timeouts
	s.echo.Server.ReadTimeout = s.config.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.WriteTimeout
	s.echo.Server.IdleTimeout = s.config.IdleTimeout

	if s.config.AutoTLS {
		s.echo.AutoTLSManager.Prompt = autocert.AcceptTOS
		s.echo.AutoTLSManager.Cache = autocert.DirCache(s.config.CertCacheDir)
		s.echo.AutoTLSManager.HostPolicy = autocert.HostWhitelist(s.config.TLSHost)
	}

	s.setupMiddleware()

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}

	s.logger.Info("HTTP server initialized",
		logger.String("address", s.config.Address()),
		logger.Bool("autotls", s.config.AutoTLS),
		logger.Bool("debug", s.config.Debug))

	return s, nil
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware() {
	// Recovery middleware - should be first
	s.echo.Use(echomw.Recover())

	// Request ID before logging so log lines carry the trace ID
	s.echo.Use(mw.NewRequestID())

	s.echo.Use(mw.NewRequestLoggerWithSkipper(s.logger, func(c echo.Context) bool {
		return c.Path() == "/metrics"
	}))

	if s.metrics != nil {
		s.echo.Use(mw.NewHTTPMetrics(s.metrics.HTTP))
	}

	securityConfig := mw.DefaultSecurityConfig()
	securityConfig.AllowedOrigins = s.config.AllowedOrigins

	s.echo.Use(mw.NewCORS(securityConfig))
	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
	s.echo.Use(mw.NewSecureHeaders(securityConfig))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	opts := []v1.Option{
		v1.WithBuildInfo(s.buildInfo),
		v1.WithProviders(s.forecastProvider, s.advisorProvider),
	}
	if s.dataStore != nil {
		opts = append(opts, v1.WithDataStore(s.dataStore))
	}

	apiController, err := v1.New(s.echo, s.planner, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize API v1: %w", err)
	}
	s.apiController = apiController

	s.logger.Info("Routes initialized",
		logger.String("api_version", "v1"),
		logger.Bool("history", s.dataStore != nil),
		logger.Bool("metrics", s.metrics != nil))

	return nil
}

// Start begins serving HTTP requests in a background goroutine and returns
// immediately. Serve errors are delivered through Errors.
func (s *Server) Start() {
	addr := s.config.Address()
	if s.config.AutoTLS {
		s.logger.Info("HTTPS server starting with AutoTLS", logger.String("address", addr))
	} else {
		s.logger.Info("HTTP server starting", logger.String("address", addr))
	}

	go func() {
		if err := s.startBlocking(); err != nil {
			s.logger.Error("server error", logger.Error(err))
			s.errCh <- err
		}
		close(s.errCh)
	}()
}

// Errors returns a channel that receives a fatal serve error and is closed
// when the server stops.
func (s *Server) Errors() <-chan error {
	return s.errCh
}

// startBlocking serves requests until the server is shut down.
func (s *Server) startBlocking() error {
	addr := s.config.Address()

	var err error
	if s.config.AutoTLS {
		err = s.echo.StartAutoTLS(addr)
	} else {
		err = s.echo.Start(addr)
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Run starts the server and blocks until ctx is done or serving fails, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.Start()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, initiating graceful shutdown")
		return s.Shutdown()
	case err, ok := <-s.errCh:
		if !ok {
			return nil
		}
		return err
	}
}

// Shutdown gracefully stops the server. It is safe to call more than once.
func (s *Server) Shutdown() error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := s.echo.Shutdown(ctx); err != nil {
			s.logger.Error("error during server shutdown", logger.Error(err))
			shutdownErr = fmt.Errorf("shutdown error: %w", err)
			return
		}
		s.logger.Info("server shutdown complete")
	})
	return shutdownErr
}

// Echo returns the underlying Echo instance.
// This is useful for testing or advanced configuration.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// APIController returns the v1 API controller.
func (s *Server) APIController() *v1.Controller {
	return s.apiController
}
