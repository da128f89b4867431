package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lab1702/starbattle/config"
	"github.com/lab1702/starbattle/game"
	"github.com/lab1702/starbattle/logging"
)

// directMessage is a message for a single client, routed through the hub
// so it can never race with the client's send channel being closed.
type directMessage struct {
	client *Client
	msg    ServerMessage
}

// Server owns one battle and the clients watching it
type Server struct {
	cfg    config.ServerConfig
	logger zerolog.Logger

	mu         sync.RWMutex
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan ServerMessage
	direct     chan directMessage

	engineMu sync.Mutex
	engine   *game.BattleEngine
	frame    int64

	// lastFrame is the wall-clock time of the previous advanced frame.
	// Zero while paused. Only the frame loop touches it.
	lastFrame time.Time

	upgrader websocket.Upgrader

	done     chan struct{}
	stopOnce sync.Once
}

// NewServer creates a server driving a fresh battle
func NewServer(cfg config.ServerConfig, battle game.BattleConfig, logger zerolog.Logger, opts ...game.Option) *Server {
	s := &Server{
		cfg:        cfg,
		logger:     logger,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan ServerMessage, 256),
		direct:     make(chan directMessage, 256),
		done:       make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:       s.isValidOrigin,
		EnableCompression: true, // Enable per-message deflate compression
	}

	engineOpts := append([]game.Option{game.WithLogger(logging.Component(logger, "engine"))}, opts...)
	s.engine = game.New(battle, engineOpts...)
	return s
}

// Routes returns the HTTP handlers served by this server
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.HandleFunc("/api/battle", s.HandleBattleStats)
	mux.HandleFunc("/health", HandleHealth)
	return mux
}

// Run starts the frame loop and handles client events until ctx is done
// or Shutdown is called
func (s *Server) Run(ctx context.Context) {
	go s.frameLoop(ctx)

	defer s.Shutdown()
	defer s.closeClients()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return

		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.ID] = client
			s.mu.Unlock()
			s.logger.Info().Str("client", client.ID).Msg("client connected")
			s.deliver(client, ServerMessage{
				Type: MsgTypeWelcome,
				Data: WelcomeData{ClientID: client.ID, Config: s.battleConfig()},
			})

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.ID]; ok {
				delete(s.clients, client.ID)
				close(client.send)
			}
			s.mu.Unlock()
			s.logger.Info().Str("client", client.ID).Msg("client disconnected")

		case dm := <-s.direct:
			s.mu.RLock()
			if _, ok := s.clients[dm.client.ID]; ok {
				s.deliver(dm.client, dm.msg)
			}
			s.mu.RUnlock()

		case message := <-s.broadcast:
			s.mu.RLock()
			for _, client := range s.clients {
				if client.wantsFrames() {
					s.deliver(client, message)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// deliver queues msg without blocking the hub
func (s *Server) deliver(c *Client, msg ServerMessage) {
	select {
	case c.send <- msg:
	default:
		// Client send channel is full, skip this message
		s.logger.Warn().Str("client", c.ID).Str("type", msg.Type).Msg("send buffer full, dropping message")
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		delete(s.clients, id)
		close(c.send)
	}
}

// Shutdown stops the frame loop and disconnects every client
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// Clients reports the number of connected clients
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// frameLoop advances the battle at the configured tick rate
func (s *Server) frameLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

// tick advances one frame if anyone is watching. The first frame after a
// pause only records the resume point, so the battle never jumps forward
// by the time spent paused.
func (s *Server) tick(now time.Time) bool {
	if !s.shouldAdvance() {
		if !s.lastFrame.IsZero() {
			s.logger.Debug().Msg("no active viewers, pausing battle")
		}
		s.lastFrame = time.Time{}
		return false
	}
	if s.lastFrame.IsZero() {
		s.lastFrame = now
		return false
	}

	dt := min(now.Sub(s.lastFrame).Seconds(), s.cfg.MaxDelta)
	s.lastFrame = now
	if dt < 0 {
		dt = 0
	}

	s.engineMu.Lock()
	s.engine.Update(dt)
	s.frame++
	update := s.frameUpdateLocked()
	s.engineMu.Unlock()

	select {
	case s.broadcast <- ServerMessage{Type: MsgTypeUpdate, Data: update}:
	case <-s.done:
	default:
		s.logger.Warn().Int64("frame", update.Frame).Msg("broadcast queue full, dropping frame")
	}
	return true
}

// shouldAdvance reports whether at least one client is watching with motion
func (s *Server) shouldAdvance() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if c.wantsFrames() {
			return true
		}
	}
	return false
}

// frameUpdateLocked captures the current state. engineMu must be held.
func (s *Server) frameUpdateLocked() FrameUpdate {
	return FrameUpdate{
		Frame: s.frame,
		Time:  s.engine.Time(),
		State: s.engine.GetState(),
	}
}

func (s *Server) snapshot() FrameUpdate {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	return s.frameUpdateLocked()
}

func (s *Server) battleConfig() game.BattleConfig {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	return s.engine.Config()
}

// sendTo queues a message for one client via the hub
func (s *Server) sendTo(c *Client, msg ServerMessage) {
	select {
	case s.direct <- directMessage{client: c, msg: msg}:
	case <-s.done:
	}
}
