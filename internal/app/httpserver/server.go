// Package httpserver owns the HTTP listener lifecycle.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/ai-quizzer/quizzer/internal/config"
	"github.com/ai-quizzer/quizzer/pkg/logger"
)

// Server wraps http.Server with configured timeouts.
type Server struct {
	srv *http.Server
	log *logger.Logger
}

// New constructs a server bound to the configured address.
func New(cfg config.ServerConfig, log *logger.Logger, handler http.Handler) *Server {
	if log == nil {
		log = logger.NewDefault("httpserver")
	}
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		},
		log: log,
	}
}

// Addr returns the configured bind address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start blocks serving requests until Shutdown is called or the listener
// fails.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
