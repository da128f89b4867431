package server

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lab1702/starbattle/config"
	"github.com/lab1702/starbattle/game"
)

// testServerConfig mirrors the configured defaults
func testServerConfig() config.ServerConfig {
	cfg := config.Default()
	return cfg.Server
}

// quietBattle disables auto-fire so only explicit commands shoot
func quietBattle() game.BattleConfig {
	return game.BattleConfig{FireRate: 1e12}
}

func newTestServer(t *testing.T, cfg config.ServerConfig) *Server {
	t.Helper()
	return NewServer(cfg, quietBattle(), zerolog.Nop(), game.WithSeed(1))
}

// addTestClient registers a connectionless client without going through the hub
func addTestClient(s *Server, id string, hidden, reduced bool) *Client {
	c := &Client{
		ID:          id,
		send:        make(chan ServerMessage, 16),
		server:      s,
		logger:      zerolog.Nop(),
		fireLimiter: rate.NewLimiter(rate.Limit(s.cfg.FireRateLimit), s.cfg.FireBurst),
	}
	c.hidden.Store(hidden)
	c.reduced.Store(reduced)

	s.mu.Lock()
	s.clients[id] = c
	s.mu.Unlock()
	return c
}

// nextDirect returns the next message queued for a single client
func nextDirect(t *testing.T, s *Server) directMessage {
	t.Helper()
	select {
	case dm := <-s.direct:
		return dm
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a direct message")
		return directMessage{}
	}
}

func engineTime(s *Server) float64 {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	return s.engine.Time()
}

func engineStats(s *Server) game.Stats {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	return s.engine.Stats()
}
