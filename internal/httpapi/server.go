// Package httpapi exposes the conversational event API over HTTP.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/volunteerd/internal/bot"
)

// Server provides HTTP endpoints for volunteerd.
type Server struct {
	echo   *echo.Echo
	router *bot.Router
	logger *zap.Logger
	config *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(router *bot.Router, logger *zap.Logger, cfg *Config) (*Server, error) {
	if router == nil {
		return nil, fmt.Errorf("router cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8080,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
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
		echo:   e,
		router: router,
		logger: logger,
		config: cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check
	s.echo.GET("/health", s.handleHealth)

	// Prometheus metrics
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.POST("/events", s.handleEvent)
}

// EventRequest is the request body for POST /api/v1/events.
type EventRequest struct {
	Principal int64  `json:"principal"`
	Kind      string `json:"kind"`
	Token     string `json:"token,omitempty"`
	Text      string `json:"text,omitempty"`
}

// EventResponse is the response body for POST /api/v1/events.
type EventResponse struct {
	Renders []bot.Render `json:"renders"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleEvent dispatches one conversational event and returns the renders
// produced for the principal.
func (s *Server) handleEvent(c echo.Context) error {
	var req EventRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid event request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Principal == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "principal field is required")
	}

	var kind bot.Kind
	switch req.Kind {
	case string(bot.KindCallback):
		kind = bot.KindCallback
	case string(bot.KindText):
		kind = bot.KindText
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "kind must be callback or text")
	}

	renders := s.router.HandleEvent(c.Request().Context(), bot.Event{
		Principal: req.Principal,
		Kind:      kind,
		Token:     req.Token,
		Text:      req.Text,
	})

	return c.JSON(http.StatusOK, EventResponse{Renders: renders})
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
