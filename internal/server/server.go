// Package server exposes the options service over HTTP using gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"options-lab/internal/config"
	"options-lab/internal/health"
	"options-lab/internal/logging"
	"options-lab/internal/service"
)

// Server is the HTTP API.
type Server struct {
	cfg        config.ServerConfig
	engine     *gin.Engine
	httpServer *http.Server
	logger     zerolog.Logger
}

// New creates a server with all routes registered.
func New(cfg config.ServerConfig, svc *service.OptionsService, logger zerolog.Logger) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	logger = logger.With().Str("component", "server").Logger()

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		cfg:    cfg,
		engine: engine,
		logger: logger,
	}
	monitor := health.NewMonitor(health.DefaultConfig())
	svc.RegisterHealthChecks(monitor)
	s.routes(NewOptionsController(svc, monitor))

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes(oc *OptionsController) {
	s.engine.GET("/health", oc.HandleHealth)

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/strategies", oc.HandleListStrategies)
		v1.POST("/options/price", oc.HandlePrice)
		v1.POST("/strategies/analyze", oc.HandleAnalyze)
		v1.POST("/strategies/compare", oc.HandleCompare)

		v1.GET("/analyses", oc.HandleListAnalyses)
		v1.GET("/analyses/:id", oc.HandleGetAnalysis)
		v1.DELETE("/analyses/:id", oc.HandleDeleteAnalysis)
	}
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("HTTP API listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info().Msg("Shutting down HTTP API")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// requestLogger logs every request through the application logger.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))
		c.Next()

		logging.LogRequest(logger, c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
