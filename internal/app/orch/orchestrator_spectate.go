package orch

import (
	"github.com/dkeye/Mahjong/internal/core"
	"github.com/dkeye/Mahjong/internal/domain"
)

func (o *Orchestrator) RequestSpectate(sid core.SessionID, target domain.UserID) error {
	room, user, err := o.roomFor(sid)
	if err != nil {
		return err
	}
	req, err := room.RequestSpectate(user.ID, target)
	if err != nil {
		return err
	}
	o.Reply(sid, Message{"type": "spectate_request_sent", "request": req})
	o.notify(room, req.TargetID, Message{"type": "spectate_request_received", "request": req})
	return nil
}

// ApproveSpectate also sends the owner's current hand to the new viewer.
func (o *Orchestrator) ApproveSpectate(sid core.SessionID, id domain.RequestID) error {
	room, user, err := o.roomFor(sid)
	if err != nil {
		return err
	}
	req, err := room.ApproveSpectate(user.ID, id)
	if err != nil {
		return err
	}
	msg := Message{"type": "spectate_approved", "request": req}
	o.Reply(sid, msg)
	o.notify(room, req.SpectatorID, msg)
	if hv, ok := room.HandOf(user.ID); ok {
		o.notify(room, req.SpectatorID, Message{
			"type":       "spectator_hand_tiles",
			"playerId":   hv.OwnerID,
			"playerName": hv.OwnerName,
			"seatIndex":  hv.Seat,
			"tiles":      hv.Tiles,
		})
	}
	o.roomUpdate(room)
	return nil
}

func (o *Orchestrator) RejectSpectate(sid core.SessionID, id domain.RequestID) error {
	room, user, err := o.roomFor(sid)
	if err != nil {
		return err
	}
	req, err := room.RejectSpectate(user.ID, id)
	if err != nil {
		return err
	}
	msg := Message{"type": "spectate_rejected", "request": req}
	o.Reply(sid, msg)
	o.notify(room, req.SpectatorID, msg)
	return nil
}

func (o *Orchestrator) PendingRequests(sid core.SessionID) error {
	room, user, err := o.roomFor(sid)
	if err != nil {
		return err
	}
	reqs := room.PendingRequestsFor(user.ID)
	if reqs == nil {
		reqs = []domain.SpectateRequest{}
	}
	o.Reply(sid, Message{"type": "pending_requests", "requests": reqs})
	return nil
}
