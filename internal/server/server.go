// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/auth"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/config"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/controller"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/handler"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/middleware"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/service"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     *config.Config
	logger     *zap.Logger
	wsHandler  *handler.WebSocketHandler
}

// New creates a new Server instance. The returned server broadcasts
// catalog mutations over its websocket handler; callers wire it into
// the catalog with Notifier.
func New(cfg *config.Config, logger *zap.Logger, ctrl *controller.FunkoController) (*Server, error) {
	router := mux.NewRouter()

	s := &Server{
		router: router,
		config: cfg,
		logger: logger,
	}

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes(ctrl)
	s.setupHTTPServer()

	return s, nil
}

// setupMiddleware configures the middleware chain.
func (s *Server) setupMiddleware() error {
	allowedOrigins := []string{"*"}
	allowedMethods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowedHeaders := []string{
		"Content-Type",
		"Authorization",
		middleware.RequestIDHeader,
	}

	// Apply middleware in order (first applied = outermost)
	s.router.Use(mux.MiddlewareFunc(middleware.Recovery(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.RequestID()))

	// Add metrics middleware if enabled
	if s.config.MetricsEnabled {
		s.router.Use(mux.MiddlewareFunc(middleware.Metrics()))
	}

	s.router.Use(mux.MiddlewareFunc(middleware.Logging(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.CORS(allowedOrigins, allowedMethods, allowedHeaders)))

	// Basic auth guards mutating endpoints when users are configured.
	if s.config.BasicAuthUsers != "" {
		authenticator, err := auth.NewBasicAuthenticator(s.config.BasicAuthUsers)
		if err != nil {
			return fmt.Errorf("configuring basic auth: %w", err)
		}
		s.router.Use(mux.MiddlewareFunc(middleware.BasicAuth(authenticator, s.logger)))
	}

	return nil
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes(ctrl *controller.FunkoController) {
	importPolicy, err := service.ParseImportPolicy(s.config.ImportPolicy)
	if err != nil {
		// Config validation rejects unknown policies before the server
		// is built; fall back to the safe default anyway.
		importPolicy = service.ImportPolicySkip
	}

	restHandler := handler.NewRESTHandler(ctrl, s.logger, importPolicy, s.config.BackupDir)
	restHandler.RegisterRoutes(s.router)

	s.wsHandler = handler.NewWebSocketHandler(s.logger)
	s.wsHandler.RegisterRoutes(s.router)

	// Metrics endpoint
	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
}

// setupHTTPServer configures the HTTP server.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
}

// Notifier returns the websocket change broadcaster so the catalog can
// publish mutation events through it.
func (s *Server) Notifier() service.Notifier {
	return s.wsHandler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	// Close all WebSocket connections first
	if s.wsHandler != nil {
		s.wsHandler.CloseAllConnections()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Router returns the server's router for testing purposes.
func (s *Server) Router() *mux.Router {
	return s.router
}
