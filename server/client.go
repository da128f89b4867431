package server

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client represents one connected viewer
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan ServerMessage
	server *Server
	logger zerolog.Logger

	// fireLimiter throttles fire commands from this client
	fireLimiter *rate.Limiter

	hidden  atomic.Bool
	reduced atomic.Bool
}

func (s *Server) newClient(conn *websocket.Conn) *Client {
	id := uuid.NewString()
	return &Client{
		ID:          id,
		conn:        conn,
		send:        make(chan ServerMessage, s.cfg.SendBuffer),
		server:      s,
		logger:      s.logger.With().Str("client", id).Logger(),
		fireLimiter: rate.NewLimiter(rate.Limit(s.cfg.FireRateLimit), s.cfg.FireBurst),
	}
}

// wantsFrames reports whether the client is visible and wants animation
func (c *Client) wantsFrames() bool {
	return !c.hidden.Load() && !c.reduced.Load()
}

// readPump handles incoming messages from the client
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg ClientMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("websocket error")
			}
			break
		}

		c.handleMessage(msg)
	}
}

// writePump sends messages to the client
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes a message from the client
func (c *Client) handleMessage(msg ClientMessage) {
	// Recover from any panic to prevent disconnection
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Str("type", msg.Type).Interface("panic", r).Msg("panic in handleMessage")
		}
	}()

	switch msg.Type {
	case MsgTypeFire:
		c.handleFire(msg.Data)
	case MsgTypeReset:
		c.handleReset()
	case MsgTypeVisibility:
		c.handleVisibility(msg.Data)
	case MsgTypeMotion:
		c.handleMotion(msg.Data)
	case MsgTypeSnapshot:
		c.handleSnapshot()
	default:
		c.logger.Debug().Str("type", msg.Type).Msg("unknown message type")
		c.server.sendTo(c, errorMessage("unknown message type: "+msg.Type))
	}
}

// decode unmarshals data into v, answering the client on failure
func (c *Client) decode(data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		c.server.sendTo(c, errorMessage("malformed message data"))
		return false
	}
	return true
}
