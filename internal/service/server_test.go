package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewServer_AppliesConfiguredTimeouts(t *testing.T) {
	cfg := &config.Config{}
	cfg.HTTP.Addr = ":9090"
	cfg.HTTP.ReadTimeout = 20 * time.Second
	cfg.HTTP.WriteTimeout = 45 * time.Second
	cfg.HTTP.IdleTimeout = 90 * time.Second

	srv := NewServer(cfg, http.NewServeMux(), zap.NewNop())

	assert.Equal(t, ":9090", srv.httpServer.Addr)
	assert.Equal(t, 20*time.Second, srv.httpServer.ReadTimeout)
	assert.Equal(t, 45*time.Second, srv.httpServer.WriteTimeout)
	assert.Equal(t, 90*time.Second, srv.httpServer.IdleTimeout)
	assert.Equal(t, 5*time.Second, srv.httpServer.ReadHeaderTimeout)
}
