package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lab1702/starbattle/game"
)

func TestTickPausesWithoutViewers(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	t0 := time.Unix(1000, 0)

	assert.False(t, s.tick(t0))
	assert.False(t, s.tick(t0.Add(time.Second)))
	assert.Zero(t, engineTime(s))
	assert.Zero(t, s.frame)
}

func TestTickOnlyCountsActiveViewers(t *testing.T) {
	tests := []struct {
		name    string
		hidden  bool
		reduced bool
		advance bool
	}{
		{"visible", false, false, true},
		{"hidden", true, false, false},
		{"reduced motion", false, true, false},
		{"hidden and reduced", true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testServerConfig())
			addTestClient(s, "c1", tt.hidden, tt.reduced)
			t0 := time.Unix(1000, 0)

			s.tick(t0)
			advanced := s.tick(t0.Add(16 * time.Millisecond))

			assert.Equal(t, tt.advance, advanced)
			if tt.advance {
				assert.InDelta(t, 16.0, engineTime(s), 1e-6)
			} else {
				assert.Zero(t, engineTime(s))
			}
		})
	}
}

func TestTickClampsDelta(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	addTestClient(s, "c1", false, false)
	t0 := time.Unix(1000, 0)

	s.tick(t0)
	require.True(t, s.tick(t0.Add(5*time.Second)))

	// max_delta defaults to 0.1s
	assert.InDelta(t, 100.0, engineTime(s), 1e-6)
	assert.Equal(t, int64(1), s.frame)
}

func TestTickResumesFromResumePoint(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	c := addTestClient(s, "c1", false, false)
	t0 := time.Unix(1000, 0)

	s.tick(t0)
	s.tick(t0.Add(16 * time.Millisecond))
	require.InDelta(t, 16.0, engineTime(s), 1e-6)

	c.hidden.Store(true)
	assert.False(t, s.tick(t0.Add(32*time.Millisecond)))

	// Ten seconds later the page is visible again
	c.hidden.Store(false)
	resume := t0.Add(10 * time.Second)
	assert.False(t, s.tick(resume), "first tick after a pause only marks the resume point")
	assert.InDelta(t, 16.0, engineTime(s), 1e-6)

	require.True(t, s.tick(resume.Add(20*time.Millisecond)))
	assert.InDelta(t, 36.0, engineTime(s), 1e-6)
}

func TestTickBroadcastsFrameUpdate(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	addTestClient(s, "c1", false, false)
	t0 := time.Unix(1000, 0)

	s.tick(t0)
	s.tick(t0.Add(16 * time.Millisecond))

	select {
	case msg := <-s.broadcast:
		assert.Equal(t, MsgTypeUpdate, msg.Type)
		update, ok := msg.Data.(FrameUpdate)
		require.True(t, ok)
		assert.Equal(t, int64(1), update.Frame)
		assert.InDelta(t, 16.0, update.Time, 1e-6)
		assert.Len(t, update.Ships, 10)
	default:
		t.Fatal("expected a queued broadcast")
	}
}

func TestFrameUpdateJSON(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	raw, err := json.Marshal(ServerMessage{Type: MsgTypeUpdate, Data: s.snapshot()})
	require.NoError(t, err)

	var decoded struct {
		Type string `json:"type"`
		Data struct {
			Frame       int64             `json:"frame"`
			Time        float64           `json:"time"`
			Ships       []json.RawMessage `json:"ships"`
			Projectiles []json.RawMessage `json:"projectiles"`
			Explosions  []json.RawMessage `json:"explosions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "update", decoded.Type)
	assert.Len(t, decoded.Data.Ships, 10)
	assert.NotNil(t, decoded.Data.Projectiles)
	assert.NotNil(t, decoded.Data.Explosions)
}

func TestHandleFireRateLimited(t *testing.T) {
	cfg := testServerConfig()
	cfg.FireRateLimit = 0.001
	cfg.FireBurst = 2
	s := newTestServer(t, cfg)
	c := addTestClient(s, "c1", false, false)

	data, err := json.Marshal(FireData{ShipID: "ship-1", TargetID: "ship-6"})
	require.NoError(t, err)
	for range 4 {
		c.handleMessage(ClientMessage{Type: MsgTypeFire, Data: data})
	}

	assert.Equal(t, 2, engineStats(s).ShotsFired)
	for range 2 {
		dm := nextDirect(t, s)
		assert.Equal(t, c, dm.client)
		assert.Equal(t, MsgTypeError, dm.msg.Type)
		assert.Equal(t, "fire rate limit exceeded", dm.msg.Data.(ErrorData).Message)
	}
}

func TestHandleFireUnknownShipIsIgnored(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	c := addTestClient(s, "c1", false, false)

	data, _ := json.Marshal(FireData{ShipID: "nope", TargetID: "ship-6"})
	c.handleMessage(ClientMessage{Type: MsgTypeFire, Data: data})

	assert.Zero(t, engineStats(s).ShotsFired)
	assert.Empty(t, s.direct)
}

func TestHandleMalformedAndUnknownMessages(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	c := addTestClient(s, "c1", false, false)

	c.handleMessage(ClientMessage{Type: MsgTypeFire, Data: json.RawMessage(`{"shipId":`)})
	assert.Equal(t, "malformed message data", nextDirect(t, s).msg.Data.(ErrorData).Message)

	c.handleMessage(ClientMessage{Type: "warp"})
	assert.Equal(t, MsgTypeError, nextDirect(t, s).msg.Type)
}

func TestHandleReset(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	c := addTestClient(s, "c1", false, false)
	t0 := time.Unix(1000, 0)
	s.tick(t0)
	s.tick(t0.Add(50 * time.Millisecond))
	require.NotZero(t, engineTime(s))

	c.handleMessage(ClientMessage{Type: MsgTypeReset})

	assert.Zero(t, engineTime(s))
	assert.Zero(t, s.frame)
}

func TestHandleVisibility(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	c := addTestClient(s, "c1", false, false)

	c.handleMessage(ClientMessage{Type: MsgTypeVisibility, Data: json.RawMessage(`{"hidden":true}`)})
	assert.False(t, c.wantsFrames())

	c.handleMessage(ClientMessage{Type: MsgTypeVisibility, Data: json.RawMessage(`{"hidden":false}`)})
	assert.True(t, c.wantsFrames())
}

func TestHandleMotionSendsSingleSnapshot(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	c := addTestClient(s, "c1", false, false)

	c.handleMessage(ClientMessage{Type: MsgTypeMotion, Data: json.RawMessage(`{"reduced":true}`)})
	dm := nextDirect(t, s)
	assert.Equal(t, MsgTypeSnapshot, dm.msg.Type)
	assert.False(t, c.wantsFrames())

	// Repeating the preference does not send another frame
	c.handleMessage(ClientMessage{Type: MsgTypeMotion, Data: json.RawMessage(`{"reduced":true}`)})
	assert.Empty(t, s.direct)

	c.handleMessage(ClientMessage{Type: MsgTypeMotion, Data: json.RawMessage(`{"reduced":false}`)})
	assert.True(t, c.wantsFrames())
	assert.Empty(t, s.direct)
}

func TestHandleSnapshot(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	c := addTestClient(s, "c1", true, false)

	c.handleMessage(ClientMessage{Type: MsgTypeSnapshot})

	dm := nextDirect(t, s)
	require.Equal(t, MsgTypeSnapshot, dm.msg.Type)
	update := dm.msg.Data.(FrameUpdate)
	assert.Len(t, update.Ships, 10)
}

func TestIsValidOrigin(t *testing.T) {
	cfg := testServerConfig()
	cfg.AllowedOrigins = []string{"https://battle.example.org"}
	s := newTestServer(t, cfg)

	tests := []struct {
		name     string
		host     string
		origin   string
		expected bool
	}{
		{"no origin", "game.example.com", "", true},
		{"same host", "game.example.com", "https://game.example.com", true},
		{"localhost with port", "game.example.com", "http://localhost:3000", true},
		{"loopback", "game.example.com", "http://127.0.0.1", true},
		{"allowed origin", "game.example.com", "https://battle.example.org", true},
		{"foreign origin", "game.example.com", "https://evil.example.net", false},
		{"not a url", "game.example.com", "not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://"+tt.host+"/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.expected, s.isValidOrigin(r))
		})
	}
}

func TestHandleBattleStats(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	addTestClient(s, "c1", false, false)

	rec := httptest.NewRecorder()
	s.HandleBattleStats(rec, httptest.NewRequest(http.MethodGet, "/api/battle", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var stats BattleStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, FactionCount{Alive: 5}, stats.Factions[game.FactionRebel])
	assert.Equal(t, FactionCount{Alive: 5}, stats.Factions[game.FactionImperial])
	assert.Equal(t, 1, stats.Clients)
	assert.Zero(t, stats.Stats.ShotsFired)
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
