package core

import "github.com/dkeye/Mahjong/internal/domain"

// MemberSession binds a logged-in identity and its transport endpoint.
// Rooms store identities only; notifications reach them through sessions.
type MemberSession interface {
	User() domain.User
	SetUser(domain.User)
	Signal() SignalConnection
}
