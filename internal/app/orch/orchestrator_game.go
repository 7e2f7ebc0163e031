package orch

import (
	"github.com/dkeye/Mahjong/internal/core"
	"github.com/dkeye/Mahjong/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) StartGame(sid core.SessionID) error {
	room, user, err := o.roomFor(sid)
	if err != nil {
		return err
	}
	if err := room.StartGame(user.ID); err != nil {
		return err
	}
	snap := room.Snapshot()
	o.broadcast(room, Message{"type": "game_started", "roomId": room.ID(), "currentPlayerIndex": snap.CurrentPlayerIndex})
	o.pushHands(room)
	o.roomUpdate(room)
	return nil
}

func (o *Orchestrator) DiscardTile(sid core.SessionID, tile domain.TileID) error {
	room, user, err := o.roomFor(sid)
	if err != nil {
		return err
	}
	res, err := room.DiscardTile(user.ID, tile)
	if err != nil {
		return err
	}
	o.broadcast(room, Message{"type": "tile_discarded", "playerId": user.ID, "seatIndex": res.Seat, "tile": res.Tile})
	o.pushHands(room, res.Seat)
	for _, m := range res.Menus {
		o.notify(room, m.UserID, Message{"type": "available_actions", "seatIndex": m.Seat, "actions": m.Actions, "tile": res.Tile})
	}
	o.roomUpdate(room)
	return nil
}

func (o *Orchestrator) DrawTile(sid core.SessionID) error {
	room, user, err := o.roomFor(sid)
	if err != nil {
		return err
	}
	d, err := room.DrawTile(user.ID)
	if err != nil {
		return err
	}
	o.notify(room, user.ID, Message{"type": "tile_drawn", "seatIndex": d.Seat, "tile": d.Tile})
	o.pushHands(room, d.Seat)
	o.roomUpdate(room)
	return nil
}

// Claim bids on the pending discard. A bid that must wait for higher
// priority seats is acknowledged with claim_queued.
func (o *Orchestrator) Claim(sid core.SessionID, action domain.Action, tiles ...domain.TileID) error {
	room, user, err := o.roomFor(sid)
	if err != nil {
		return err
	}
	res, err := room.Claim(user.ID, action, tiles...)
	if err != nil {
		return err
	}
	if res.Queued {
		o.Reply(sid, Message{"type": "claim_queued", "action": action})
		return nil
	}
	log.Debug().Str("module", "app.orch").Str("room", string(room.ID())).Str("user", string(user.ID)).Str("action", string(action)).Msg("claim settled")
	o.publishResolution(room, res.Resolution)
	return nil
}

func (o *Orchestrator) Pass(sid core.SessionID) error {
	room, user, err := o.roomFor(sid)
	if err != nil {
		return err
	}
	res, err := room.Pass(user.ID)
	if err != nil {
		return err
	}
	if res == nil {
		o.Reply(sid, Message{"type": "passed"})
		return nil
	}
	o.publishResolution(room, res)
	return nil
}

func (o *Orchestrator) DeclareWin(sid core.SessionID) error {
	room, user, err := o.roomFor(sid)
	if err != nil {
		return err
	}
	out, err := room.DeclareWin(user.ID)
	if err != nil {
		return err
	}
	o.broadcast(room, Message{"type": "hand_ended", "outcome": out})
	o.roomUpdate(room)
	return nil
}
