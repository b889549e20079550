// Package server exposes the chat router over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pk-market-chat/internal/common/logger"
	"pk-market-chat/internal/models"
)

// ChatRouter answers one chat turn.
type ChatRouter interface {
	Route(ctx context.Context, req *models.ChatRequest) (models.Reply, error)
}

// ReadyCheck reports whether a dependency can take traffic.
type ReadyCheck func(ctx context.Context) error

type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type Server struct {
	cfg        Config
	router     ChatRouter
	engine     *gin.Engine
	httpServer *http.Server
	checks     map[string]ReadyCheck
	logger     logger.Logger
}

// New builds the gin engine. Checks are consulted by /ready; a nil map
// means the process is ready once it is serving.
func New(cfg Config, router ChatRouter, checks map[string]ReadyCheck, log logger.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		router: router,
		checks: checks,
		logger: logger.ForComponent(log, "http"),
	}
	s.engine = s.buildEngine()
	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) buildEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", requestIDHeader},
	}
	if len(s.cfg.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/", s.index)
	r.POST("/chat", s.chat)
	r.GET("/health", s.health)
	r.GET("/ready", s.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{"address": s.cfg.Address})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	return s.httpServer.Shutdown(ctx)
}
