package signal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Mahjong/internal/app"
	"github.com/dkeye/Mahjong/internal/app/orch"
)

func newTestServer(t *testing.T, limiter *IntentLimiter, origins ...string) (*orch.Orchestrator, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(),
		Policy:   app.SimplePolicy{},
	}
	ctl := NewSignalWSController(o, limiter, Options{PingPeriod: time.Second, AllowedOrigins: origins})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("client_token", "token")
		ctl.HandleSignal(ctx, c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return o, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func roundTrip(t *testing.T, ws *websocket.Conn, raw string) map[string]any {
	t.Helper()
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(raw)))
	return next(t, ws)
}

func next(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func TestSignal_IntentsAndErrors(t *testing.T) {
	o, url := newTestServer(t, nil)
	ws := dial(t, url)

	assert.Equal(t, "pong", roundTrip(t, ws, `{"type":"ping"}`)["type"])

	bad := roundTrip(t, ws, `{not json`)
	assert.Equal(t, "error", bad["type"])
	assert.Equal(t, "bad_payload", bad["code"])

	unknown := roundTrip(t, ws, `{"type":"fly"}`)
	assert.Equal(t, "unknown_intent", unknown["code"])

	anon := roundTrip(t, ws, `{"type":"create_room"}`)
	assert.Equal(t, "not_authenticated", anon["code"])

	login := roundTrip(t, ws, `{"type":"login","userId":"u1","userName":"Ann"}`)
	assert.Equal(t, "login_success", login["type"])
	assert.Equal(t, "u1", login["userId"])

	badJoin := roundTrip(t, ws, `{"type":"join_room"}`)
	assert.Equal(t, "bad_payload", badJoin["code"])

	created := roundTrip(t, ws, `{"type":"create_room"}`)
	assert.Equal(t, "room_created", created["type"])
	assert.Equal(t, "room_update", next(t, ws)["type"])
	assert.Equal(t, 1, o.Rooms.Count())

	who := roundTrip(t, ws, `{"type":"whoami"}`)
	assert.Equal(t, created["roomId"], who["roomId"])
	assert.Equal(t, "player", who["role"])

	// closing the socket runs the leave flow and the empty room goes away
	require.NoError(t, ws.Close())
	assert.Eventually(t, func() bool { return o.Rooms.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSignal_RateLimited(t *testing.T) {
	_, url := newTestServer(t, NewIntentLimiter(2, time.Hour))
	ws := dial(t, url)

	assert.Equal(t, "pong", roundTrip(t, ws, `{"type":"ping"}`)["type"])
	assert.Equal(t, "pong", roundTrip(t, ws, `{"type":"ping"}`)["type"])
	limited := roundTrip(t, ws, `{"type":"ping"}`)
	assert.Equal(t, "rate_limited", limited["code"])
}

func TestSignal_CheckOrigin(t *testing.T) {
	_, url := newTestServer(t, nil, "http://table.local")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.local"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	ws, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://table.local"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	assert.Equal(t, "pong", roundTrip(t, ws, `{"type":"ping"}`)["type"])

	// non-browser clients send no Origin
	dial(t, url)
}

func TestIntentLimiter(t *testing.T) {
	rl := NewIntentLimiter(3, time.Hour)
	for range 3 {
		assert.True(t, rl.Allow("a"))
	}
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "buckets are per key")

	rl.Forget("a")
	assert.True(t, rl.Allow("a"))

	var none *IntentLimiter
	assert.True(t, none.Allow("a"))
	assert.True(t, NewIntentLimiter(0, time.Second).Allow("a"))
}
