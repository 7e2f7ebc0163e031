package signal

import (
	"time"

	"github.com/dkeye/Mahjong/internal/app/orch"
	"github.com/dkeye/Mahjong/internal/core"
)

// handlePing answers an application-level keepalive. ts is the server clock in
// milliseconds so the client can estimate latency.
func (ctl *SignalWSController) handlePing(conn core.SignalConnection) {
	ctl.sendJSON(conn, orch.Message{"type": "pong", "ts": time.Now().UnixMilli()})
}
