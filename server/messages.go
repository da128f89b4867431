package server

import (
	"encoding/json"

	"github.com/lab1702/starbattle/game"
)

// Message types
const (
	MsgTypeFire       = "fire"
	MsgTypeReset      = "reset"
	MsgTypeVisibility = "visibility"
	MsgTypeMotion     = "motion"
	MsgTypeSnapshot   = "snapshot"
	MsgTypeWelcome    = "welcome"
	MsgTypeUpdate     = "update"
	MsgTypeError      = "error"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// FireData asks shipId to shoot at targetId
type FireData struct {
	ShipID   string `json:"shipId"`
	TargetID string `json:"targetId"`
}

// VisibilityData reports whether the client's page is hidden
type VisibilityData struct {
	Hidden bool `json:"hidden"`
}

// MotionData reports the client's reduced-motion preference
type MotionData struct {
	Reduced bool `json:"reduced"`
}

// WelcomeData is sent once after the connection is registered
type WelcomeData struct {
	ClientID string            `json:"clientId"`
	Config   game.BattleConfig `json:"config"`
}

// ErrorData carries a human readable rejection
type ErrorData struct {
	Message string `json:"message"`
}

// FrameUpdate is the per-frame snapshot broadcast to clients
type FrameUpdate struct {
	Frame int64   `json:"frame"`
	Time  float64 `json:"time"`
	game.State
}

// FactionCount reports how many ships of a faction are alive or wrecked
type FactionCount struct {
	Alive     int `json:"alive"`
	Destroyed int `json:"destroyed"`
}

// BattleStats is the /api/battle response body
type BattleStats struct {
	Frame           int64                         `json:"frame"`
	Time            float64                       `json:"time"`
	Factions        map[game.Faction]FactionCount `json:"factions"`
	Projectiles     int                           `json:"projectiles"`
	Explosions      int                           `json:"explosions"`
	PendingRespawns int                           `json:"pendingRespawns"`
	Clients         int                           `json:"clients"`
	Stats           game.Stats                    `json:"stats"`
}

func errorMessage(text string) ServerMessage {
	return ServerMessage{Type: MsgTypeError, Data: ErrorData{Message: text}}
}
