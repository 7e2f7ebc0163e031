package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Mahjong/internal/app/orch"
	"github.com/dkeye/Mahjong/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

// readPump owns the connection lifetime: when it returns the leave flow runs
// and the connection is forgotten.
func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.Orch.OnDisconnect(sid)
		ctl.Limiter.Forget(string(sid))
	}()

	pongWait := ctl.opts.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
			ctl.handleSignal(sid, c, data)
		}
	}
}

type envelope struct {
	Type string `json:"type"`
}

// handleSignal decodes one intent and reports any failure to the sender only.
func (ctl *SignalWSController) handleSignal(sid core.SessionID, c core.SignalConnection, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		ctl.sendError(c, core.ErrBadPayload)
		return
	}
	if !ctl.Limiter.Allow(string(sid)) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("type", env.Type).Msg("rate limited")
		ctl.sendError(c, core.ErrRateLimited)
		return
	}

	var err error
	switch env.Type {
	case "ping":
		ctl.handlePing(c)
	case "login":
		err = ctl.handleLogin(sid, data)
	case "whoami":
		ctl.Orch.WhoAmI(sid)
	case "create_room":
		_, err = ctl.Orch.CreateRoom(sid)
	case "join_room":
		err = ctl.handleJoin(sid, data)
	case "leave_room":
		err = ctl.Orch.LeaveRoom(sid)
	case "get_rooms":
		ctl.Orch.ListRooms(sid)
	case "take_seat":
		err = ctl.handleTakeSeat(sid, data)
	case "start_game":
		err = ctl.Orch.StartGame(sid)
	case "discard_tile":
		err = ctl.handleDiscard(sid, data)
	case "draw_tile":
		err = ctl.Orch.DrawTile(sid)
	case "peng", "gang", "chi", "hu":
		err = ctl.handleClaim(sid, env.Type, data)
	case "pass":
		err = ctl.Orch.Pass(sid)
	case "declare_win":
		err = ctl.Orch.DeclareWin(sid)
	case "request_spectate":
		err = ctl.handleRequestSpectate(sid, data)
	case "approve_spectate":
		err = ctl.handleResolveSpectate(sid, data, ctl.Orch.ApproveSpectate)
	case "reject_spectate":
		err = ctl.handleResolveSpectate(sid, data, ctl.Orch.RejectSpectate)
	case "get_pending_requests":
		err = ctl.Orch.PendingRequests(sid)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		err = core.ErrUnknownIntent
	}
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("type", env.Type).Msg("intent rejected")
		ctl.sendError(c, err)
	}
}

// decode fills p from the frame, mapping any decoding failure to bad_payload.
func decode(data []byte, p any) error {
	if err := json.Unmarshal(data, p); err != nil {
		return core.ErrBadPayload
	}
	return nil
}

func (ctl *SignalWSController) sendJSON(c core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SignalWSController) sendError(c core.SignalConnection, err error) {
	ctl.sendJSON(c, orch.ErrorMessage(err))
}
