package orch

import (
	"encoding/json"

	"github.com/dkeye/Mahjong/internal/app"
	"github.com/dkeye/Mahjong/internal/core"
	"github.com/dkeye/Mahjong/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator turns transport intents into room transitions and fans the
// results out as notifications. Failures are returned to the caller, which
// reports them to the requester only.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomFactory
	Policy   app.Policy
}

// Message is one outgoing JSON notification.
type Message map[string]any

// ErrorMessage is the error frame sent to a requester.
func ErrorMessage(err error) Message {
	return Message{"type": "error", "code": core.Code(err), "error": err.Error()}
}

func encode(v any) (core.Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Msg("marshal notification")
		return nil, false
	}
	return b, true
}

// Reply sends v to one connection regardless of its room.
func (o *Orchestrator) Reply(sid core.SessionID, v any) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	if f, ok := encode(v); ok {
		if err := sess.Signal().TrySend(f); err != nil {
			log.Warn().Err(err).Str("module", "app.orch").Str("sid", string(sid)).Msg("reply dropped")
		}
	}
}

// sendTo delivers to uid only while its connection is attached to room.
func (o *Orchestrator) sendTo(room domain.RoomID, uid domain.UserID, f core.Frame) (attached, sent bool) {
	sess, at, ok := o.Registry.SessionOf(uid)
	if !ok || at != room {
		return false, false
	}
	return true, sess.Signal().TrySend(f) == nil
}

func (o *Orchestrator) notify(room *core.Room, uid domain.UserID, v any) {
	f, ok := encode(v)
	if !ok {
		return
	}
	if attached, sent := o.sendTo(room.ID(), uid, f); attached && !sent {
		o.onBackPressure(room.ID(), []domain.UserID{uid})
	}
}

func (o *Orchestrator) broadcast(room *core.Room, v any) core.PublishResult {
	var res core.PublishResult
	f, ok := encode(v)
	if !ok {
		return res
	}
	for _, uid := range room.Occupants() {
		attached, sent := o.sendTo(room.ID(), uid, f)
		switch {
		case !attached:
		case sent:
			res.SendTo++
		default:
			res.Dropped = append(res.Dropped, uid)
		}
	}
	o.onBackPressure(room.ID(), res.Dropped)
	log.Debug().Str("module", "app.orch").Str("room", string(room.ID())).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (o *Orchestrator) onBackPressure(room domain.RoomID, slow []domain.UserID) {
	if o.Policy == nil {
		return
	}
	for _, uid := range slow {
		switch o.Policy.OnBackPressure(room, uid) {
		case app.KickMember:
			if sid, ok := o.Registry.SIDOf(uid); ok {
				log.Warn().Str("module", "app.orch").Str("room", string(room)).Str("user", string(uid)).Msg("kicking slow member")
				o.Registry.Cancel(sid)
			}
		case app.DropFrame, app.NoAction:
		}
	}
}

func (o *Orchestrator) roomUpdate(room *core.Room) {
	o.broadcast(room, Message{"type": "room_update", "room": room.Snapshot()})
}

// pushHands sends each hand to its owner and to the spectators allowed to
// see it. With no seats named every hand is pushed.
func (o *Orchestrator) pushHands(room *core.Room, seats ...int) {
	for _, hv := range room.Hands(seats...) {
		o.notify(room, hv.OwnerID, Message{"type": "hand_tiles", "seatIndex": hv.Seat, "tiles": hv.Tiles})
		for _, viewer := range hv.Spectators {
			o.notify(room, viewer, Message{
				"type":       "spectator_hand_tiles",
				"playerId":   hv.OwnerID,
				"playerName": hv.OwnerName,
				"seatIndex":  hv.Seat,
				"tiles":      hv.Tiles,
			})
		}
	}
}

// publishResolution announces how a reaction window closed.
func (o *Orchestrator) publishResolution(room *core.Room, res *core.Resolution) {
	if res == nil {
		return
	}
	if w := res.Winner; w != nil {
		o.broadcast(room, Message{
			"type":      "player_claimed",
			"playerId":  w.UserID,
			"seatIndex": w.Seat,
			"action":    w.Action,
			"tile":      res.Tile,
			"fromSeat":  res.FromSeat,
			"meld":      w.Meld,
		})
		for _, l := range res.Losers {
			o.notify(room, l.UserID, ErrorMessage(core.ErrClaimResolved))
		}
		o.pushHands(room, w.Seat)
	}
	if d := res.Drawn; d != nil {
		o.notify(room, d.UserID, Message{"type": "tile_drawn", "seatIndex": d.Seat, "tile": d.Tile})
		o.pushHands(room, d.Seat)
	}
	if res.Outcome != nil {
		o.broadcast(room, Message{"type": "hand_ended", "outcome": res.Outcome})
	}
	o.roomUpdate(room)
}

// roomFor resolves the caller's identity and current room.
func (o *Orchestrator) roomFor(sid core.SessionID) (*core.Room, domain.User, error) {
	user, ok := o.Registry.UserOf(sid)
	if !ok {
		return nil, domain.User{}, core.ErrNotAuthenticated
	}
	id, ok := o.Registry.RoomOf(sid)
	if !ok {
		return nil, user, core.ErrNotInRoom
	}
	room, ok := o.Rooms.GetRoom(id)
	if !ok {
		o.Registry.RemoveRoom(sid)
		return nil, user, core.ErrRoomNotFound
	}
	return room, user, nil
}
