package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/lab1702/starbattle/game"
)

// handleFire forwards a manual fire command to the engine
func (c *Client) handleFire(data json.RawMessage) {
	var fire FireData
	if !c.decode(data, &fire) {
		return
	}

	if !c.fireLimiter.Allow() {
		c.server.sendTo(c, errorMessage("fire rate limit exceeded"))
		return
	}

	s := c.server
	s.engineMu.Lock()
	s.engine.FireAtTarget(fire.ShipID, fire.TargetID)
	s.engineMu.Unlock()
}

// handleReset restarts the battle for everyone
func (c *Client) handleReset() {
	s := c.server
	s.engineMu.Lock()
	s.engine.Reset()
	s.frame = 0
	s.engineMu.Unlock()

	c.logger.Info().Msg("battle reset")
}

func (c *Client) handleVisibility(data json.RawMessage) {
	var vis VisibilityData
	if !c.decode(data, &vis) {
		return
	}
	c.hidden.Store(vis.Hidden)
	c.logger.Debug().Bool("hidden", vis.Hidden).Msg("visibility changed")
}

// handleMotion toggles reduced motion. Entering the mode sends one static
// frame; no per-frame updates follow until the client leaves it.
func (c *Client) handleMotion(data json.RawMessage) {
	var motion MotionData
	if !c.decode(data, &motion) {
		return
	}
	was := c.reduced.Swap(motion.Reduced)
	c.logger.Debug().Bool("reduced", motion.Reduced).Msg("motion preference changed")

	if motion.Reduced && !was {
		c.handleSnapshot()
	}
}

func (c *Client) handleSnapshot() {
	c.server.sendTo(c, ServerMessage{Type: MsgTypeSnapshot, Data: c.server.snapshot()})
}

// HandleWebSocket handles WebSocket connections
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := s.newClient(conn)

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// HandleBattleStats returns faction counts and cumulative battle statistics
func (s *Server) HandleBattleStats(w http.ResponseWriter, r *http.Request) {
	// Enable CORS for cross-origin requests
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	response := s.battleStats()
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode battle stats")
	}
}

func (s *Server) battleStats() BattleStats {
	clients := s.Clients()

	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	state := s.engine.GetState()
	factions := make(map[game.Faction]FactionCount, len(game.Factions))
	for _, f := range game.Factions {
		factions[f] = FactionCount{}
	}
	for _, ship := range state.Ships {
		count := factions[ship.Faction]
		if ship.Alive() {
			count.Alive++
		} else {
			count.Destroyed++
		}
		factions[ship.Faction] = count
	}

	return BattleStats{
		Frame:           s.frame,
		Time:            s.engine.Time(),
		Factions:        factions,
		Projectiles:     len(state.Projectiles),
		Explosions:      len(state.Explosions),
		PendingRespawns: s.engine.PendingRespawns(),
		Clients:         clients,
		Stats:           s.engine.Stats(),
	}
}

// HandleHealth answers liveness probes
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// isValidOrigin checks if the origin is allowed to connect
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No origin header - could be a non-browser client
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil || originURL.Host == "" {
		s.logger.Warn().Str("origin", origin).Msg("invalid origin URL")
		return false
	}

	// Allow same-origin connections
	if r.Host == originURL.Host {
		return true
	}

	// Allow localhost connections for development
	if strings.HasPrefix(originURL.Host, "localhost:") ||
		strings.HasPrefix(originURL.Host, "127.0.0.1:") ||
		originURL.Host == "localhost" ||
		originURL.Host == "127.0.0.1" {
		return true
	}

	if slices.Contains(s.cfg.AllowedOrigins, origin) {
		return true
	}

	s.logger.Warn().Str("origin", origin).Msg("rejected websocket connection")
	return false
}
