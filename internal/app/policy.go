package app

import "github.com/dkeye/Mahjong/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to an occupant whose send buffer is full.
type Policy interface {
	OnBackPressure(room domain.RoomID, member domain.UserID) BackpressureAction
}

// SimplePolicy drops the connection; the disconnect then runs the leave flow.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomID, domain.UserID) BackpressureAction {
	return KickMember
}
