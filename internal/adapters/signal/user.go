package signal

import (
	"github.com/dkeye/Mahjong/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleLogin(sid core.SessionID, data []byte) error {
	var p struct {
		UserID   string `json:"userId"`
		UserName string `json:"userName"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}
	u, err := ctl.Orch.Login(sid, p.UserID, p.UserName)
	if err != nil {
		return err
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("user", string(u.ID)).Msg("login")
	return nil
}
