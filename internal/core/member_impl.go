package core

import (
	"sync"

	"github.com/dkeye/Mahjong/internal/domain"
)

// memberSession implements MemberSession by pairing meta + transport.
type memberSession struct {
	mu     sync.RWMutex
	user   domain.User
	signal SignalConnection
}

func NewMemberSession(user domain.User, conn SignalConnection) MemberSession {
	return &memberSession{user: user, signal: conn}
}

func (m *memberSession) User() domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

func (m *memberSession) SetUser(u domain.User) {
	m.mu.Lock()
	m.user = u
	m.mu.Unlock()
}

func (m *memberSession) Signal() SignalConnection { return m.signal }
