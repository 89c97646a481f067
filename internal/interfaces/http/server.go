package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Per-client rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
}

// DefaultServerConfig returns local-only defaults
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:           "127.0.0.1",
		Port:           8080,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		RateLimitRPS:   10,
		RateLimitBurst: 20,
	}
}

// Server exposes the evaluation and parlay endpoints
type Server struct {
	router   *mux.Router
	server   *http.Server
	handlers *Handlers
	config   ServerConfig
}

// NewServer creates the HTTP surface over the engine
func NewServer(config ServerConfig, handlers *Handlers) *Server {
	router := mux.NewRouter()

	s := &Server{
		router:   router,
		handlers: handlers,
		config:   config,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	limiter := newClientLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(requestIDMiddleware, limiter.middleware)
	api.HandleFunc("/evaluate", s.handlers.Evaluate).Methods(http.MethodPost)
	api.HandleFunc("/parlay", s.handlers.Parlay).Methods(http.MethodPost)

	s.router.HandleFunc("/health", s.handlers.Health).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if s.handlers.edgeFeed != nil {
		s.router.HandleFunc("/ws/edges", s.handlers.edgeFeed.ServeWS)
	}
}

// Router exposes the configured router (testing)
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until the listener fails or Shutdown is called
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("http server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("http server shutting down")
	return s.server.Shutdown(ctx)
}
