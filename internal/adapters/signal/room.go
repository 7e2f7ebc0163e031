package signal

import (
	"github.com/dkeye/Mahjong/internal/core"
	"github.com/dkeye/Mahjong/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(sid core.SessionID, data []byte) error {
	var p struct {
		RoomID string `json:"roomId"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}
	if p.RoomID == "" {
		return core.ErrBadPayload
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room_id", p.RoomID).Msg("join")
	_, err := ctl.Orch.JoinRoom(sid, domain.RoomID(p.RoomID))
	return err
}

func (ctl *SignalWSController) handleTakeSeat(sid core.SessionID, data []byte) error {
	var p struct {
		SeatIndex *int `json:"seatIndex"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}
	if p.SeatIndex == nil {
		return core.ErrBadPayload
	}
	return ctl.Orch.TakeSeat(sid, *p.SeatIndex)
}

func (ctl *SignalWSController) handleRequestSpectate(sid core.SessionID, data []byte) error {
	var p struct {
		TargetID string `json:"targetId"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}
	if p.TargetID == "" {
		return core.ErrBadPayload
	}
	return ctl.Orch.RequestSpectate(sid, domain.UserID(p.TargetID))
}

func (ctl *SignalWSController) handleResolveSpectate(
	sid core.SessionID,
	data []byte,
	resolve func(core.SessionID, domain.RequestID) error,
) error {
	var p struct {
		RequestID string `json:"requestId"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}
	if p.RequestID == "" {
		return core.ErrBadPayload
	}
	return resolve(sid, domain.RequestID(p.RequestID))
}
