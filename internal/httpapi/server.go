// Package httpapi provides the HTTP API for docchat.
package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/aktuarialabs/docchat/internal/ingest"
	"github.com/aktuarialabs/docchat/internal/orchestrator"
)

// Server provides HTTP endpoints for docchat.
type Server struct {
	echo         *echo.Echo
	orchestrator *orchestrator.Orchestrator
	ingestor     *ingest.Service
	logger       *zap.Logger
	config       *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// UploadDir is the spool directory for uploaded files.
	UploadDir string
}

// Response is the envelope every endpoint returns.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// NewServer creates a new HTTP server.
func NewServer(orch *orchestrator.Orchestrator, ingestor *ingest.Service, logger *zap.Logger, cfg *Config) (*Server, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator cannot be nil")
	}
	if ingestor == nil {
		return nil, fmt.Errorf("ingest service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:      "localhost",
			Port:      8080,
			UploadDir: "./data/uploads",
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(NewHTTPMetrics(logger).MetricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:         e,
		orchestrator: orch,
		ingestor:     ingestor,
		logger:       logger,
		config:       cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.POST("/upload", s.handleUpload)
	api.POST("/ask", s.handleAsk)
	api.GET("/search", s.handleSearch)
	api.GET("/conversation/history", s.handleHistory)
	api.POST("/conversation/clear", s.handleClearConversation)
	api.GET("/stats", s.handleStats)
	api.POST("/reset", s.handleReset)
}

// respond writes the standard response envelope.
func respond(c echo.Context, status int, success bool, message string, data interface{}) error {
	return c.JSON(status, Response{
		Success:   success,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
