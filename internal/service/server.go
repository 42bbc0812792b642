package service

import (
	"context"
	"net/http"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/config"

	"go.uber.org/zap"
)

// Server wraps http.Server with the timeouts that matter for this API:
// Excel import/export moves whole workbooks through request bodies, so the
// read and write timeouts stay configurable instead of hardcoded.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, handler http.Handler, logger *zap.Logger) *Server {
	s := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	return &Server{httpServer: s, logger: logger}
}

func (s *Server) Start() error {
	s.logger.Info("Starting pharmsmart HTTP server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping pharmsmart HTTP server")
	return s.httpServer.Shutdown(ctx)
}
