package signal

import (
	"github.com/dkeye/Mahjong/internal/core"
	"github.com/dkeye/Mahjong/internal/domain"
)

func (ctl *SignalWSController) handleDiscard(sid core.SessionID, data []byte) error {
	var p struct {
		TileID *domain.TileID `json:"tileId"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}
	if p.TileID == nil {
		return core.ErrBadPayload
	}
	return ctl.Orch.DiscardTile(sid, *p.TileID)
}

// handleClaim covers peng, gang, chi and hu. Only chi reads tileIds, to pick
// between several runs.
func (ctl *SignalWSController) handleClaim(sid core.SessionID, action string, data []byte) error {
	var p struct {
		TileIDs []domain.TileID `json:"tileIds"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}
	a := domain.Action(action)
	if a != domain.ActionChi {
		p.TileIDs = nil
	}
	return ctl.Orch.Claim(sid, a, p.TileIDs...)
}
