package orch

import (
	"errors"

	"github.com/dkeye/Mahjong/internal/core"
	"github.com/dkeye/Mahjong/internal/domain"
	"github.com/rs/zerolog/log"
)

// Login binds an identity to the connection. A connection previously bound to
// the same identity is told and closed.
func (o *Orchestrator) Login(sid core.SessionID, userID, name string) (domain.User, error) {
	u, err := domain.NewUser(userID, name)
	if err != nil {
		return domain.User{}, core.ErrInvalidUsername
	}
	replaced, err := o.Registry.Login(sid, *u)
	if err != nil {
		return domain.User{}, err
	}
	if replaced != "" {
		o.Reply(replaced, Message{"type": "session_replaced"})
		o.Registry.Cancel(replaced)
	}
	o.Reply(sid, Message{"type": "login_success", "userId": u.ID, "userName": u.Username})
	return *u, nil
}

func (o *Orchestrator) CreateRoom(sid core.SessionID) (*core.Room, error) {
	user, ok := o.Registry.UserOf(sid)
	if !ok {
		return nil, core.ErrNotAuthenticated
	}
	if id, ok := o.Registry.RoomOf(sid); ok {
		if _, live := o.Rooms.GetRoom(id); live {
			return nil, core.ErrAlreadyInRoom
		}
	}
	room := o.Rooms.CreateRoom(user)
	o.Registry.UpdateRoom(sid, room.ID())
	o.Reply(sid, Message{"type": "room_created", "roomId": room.ID()})
	o.roomUpdate(room)
	return room, nil
}

// JoinRoom leaves the caller's previous room first, like a move.
func (o *Orchestrator) JoinRoom(sid core.SessionID, id domain.RoomID) (core.JoinResult, error) {
	user, ok := o.Registry.UserOf(sid)
	if !ok {
		return core.JoinResult{}, core.ErrNotAuthenticated
	}
	room, ok := o.Rooms.GetRoom(id)
	if !ok {
		return core.JoinResult{}, core.ErrRoomNotFound
	}
	if cur, ok := o.Registry.RoomOf(sid); ok {
		if cur == id {
			return core.JoinResult{}, core.ErrAlreadyInRoom
		}
		if err := o.LeaveRoom(sid); err != nil && !errors.Is(err, core.ErrNotInRoom) && !errors.Is(err, core.ErrRoomNotFound) {
			return core.JoinResult{}, err
		}
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("from_room", string(cur)).Msg("left previous room")
	}

	res, err := room.AddOccupant(user)
	if err != nil {
		return core.JoinResult{}, err
	}
	o.Registry.UpdateRoom(sid, id)
	member := domain.NewMember(user, res.Role, res.Seat)
	o.Reply(sid, Message{
		"type":      "joined_room",
		"roomId":    id,
		"role":      member.Role,
		"seatIndex": member.Seat,
		"rejoined":  res.Rejoined,
	})
	o.roomUpdate(room)
	if res.Rejoined {
		o.pushHands(room, res.Seat)
	}
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(id)).Str("role", string(res.Role)).Msg("joined room")
	return res, nil
}

// LeaveRoom runs the leave flow for the caller's room. The room is destroyed
// once nobody is left in it.
func (o *Orchestrator) LeaveRoom(sid core.SessionID) error {
	room, user, err := o.roomFor(sid)
	if err != nil {
		return err
	}
	res, err := room.RemoveOccupant(user.ID)
	if err != nil {
		return err
	}
	o.Registry.RemoveRoom(sid)
	o.Reply(sid, Message{"type": "left_room", "roomId": room.ID()})

	if res.Empty {
		o.Rooms.DeleteRoom(room.ID())
		return nil
	}
	if res.Offline {
		o.broadcast(room, Message{"type": "player_offline", "playerId": user.ID, "seatIndex": res.Seat})
	}
	if p := res.Promoted; p != nil {
		_, seat, _ := room.RoleOf(p.ID)
		o.broadcast(room, Message{
			"type":       "player_took_seat",
			"seatIndex":  seat,
			"playerId":   p.ID,
			"playerName": p.Username,
			"previousId": user.ID,
		})
	}
	if res.Resolution != nil {
		o.publishResolution(room, res.Resolution)
		return nil
	}
	o.roomUpdate(room)
	return nil
}

// OnDisconnect runs the leave flow for a closed connection and forgets it.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	if _, ok := o.Registry.RoomOf(sid); ok {
		if err := o.LeaveRoom(sid); err != nil {
			log.Warn().Err(err).Str("module", "app.orch").Str("sid", string(sid)).Msg("leave on disconnect")
		}
	}
	o.Registry.Unbind(sid)
}

func (o *Orchestrator) TakeSeat(sid core.SessionID, seat int) error {
	room, user, err := o.roomFor(sid)
	if err != nil {
		return err
	}
	res, err := room.TakeSeat(user.ID, seat)
	if err != nil {
		return err
	}
	o.broadcast(room, Message{
		"type":       "player_took_seat",
		"seatIndex":  res.Seat,
		"playerId":   user.ID,
		"playerName": user.Username,
		"previousId": res.PreviousID,
	})
	o.pushHands(room, res.Seat)
	o.roomUpdate(room)
	return nil
}

func (o *Orchestrator) ListRooms(sid core.SessionID) {
	o.Reply(sid, Message{"type": "rooms_list", "rooms": o.Rooms.List()})
}

func (o *Orchestrator) WhoAmI(sid core.SessionID) {
	msg := Message{"type": "whoami"}
	if u, ok := o.Registry.UserOf(sid); ok {
		msg["userId"], msg["userName"] = u.ID, u.Username
	}
	if room, user, err := o.roomFor(sid); err == nil {
		msg["roomId"] = room.ID()
		if role, seat, ok := room.RoleOf(user.ID); ok {
			msg["role"], msg["seatIndex"] = role, seat
		}
	}
	o.Reply(sid, msg)
}
