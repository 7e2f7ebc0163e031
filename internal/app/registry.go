package app

import (
	"context"
	"sync"

	"github.com/dkeye/Mahjong/internal/core"
	"github.com/dkeye/Mahjong/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	RoomID   domain.RoomID
	Session  core.MemberSession
	Cancel   context.CancelFunc
	LoggedIn bool
}

// Registry maps live connections to identities and rooms. One identity is
// bound to at most one connection at a time.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	users    map[domain.UserID]core.SessionID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		users:    make(map[domain.UserID]core.SessionID),
	}
}

func (r *Registry) BindSignal(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

// Login attaches u to the connection. If u was bound to another connection,
// that connection is detached (it keeps no identity and no room) and its id is
// returned so the caller can close it; the room association moves over.
func (r *Registry) Login(sid core.SessionID, u domain.User) (core.SessionID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[sid]
	if !ok {
		return "", core.ErrNotAuthenticated
	}
	if e.LoggedIn {
		prev := e.Session.User().ID
		if prev != u.ID && e.RoomID != "" {
			return "", core.ErrAlreadyInRoom
		}
		delete(r.users, prev)
	}

	var replaced core.SessionID
	if old, ok := r.users[u.ID]; ok && old != sid {
		if oe, ok := r.sessions[old]; ok {
			if e.RoomID == "" {
				e.RoomID = oe.RoomID
			}
			oe.RoomID = ""
			oe.LoggedIn = false
		}
		replaced = old
	}

	e.Session.SetUser(u)
	e.LoggedIn = true
	r.users[u.ID] = sid
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(u.ID)).Str("username", u.Username).Msg("logged in")
	return replaced, nil
}

func (r *Registry) GetSession(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

// UserOf returns the identity of a logged-in connection.
func (r *Registry) UserOf(sid core.SessionID) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || !e.LoggedIn {
		return domain.User{}, false
	}
	return e.Session.User(), true
}

// SessionOf finds the connection currently bound to an identity.
func (r *Registry) SessionOf(uid domain.UserID) (core.MemberSession, domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.users[uid]
	if !ok {
		return nil, "", false
	}
	e, ok := r.sessions[sid]
	if !ok {
		return nil, "", false
	}
	return e.Session, e.RoomID, true
}

// SIDOf returns the connection id bound to an identity.
func (r *Registry) SIDOf(uid domain.UserID) (core.SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.users[uid]
	return sid, ok
}

func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok && e.LoggedIn {
		uid := e.Session.User().ID
		if r.users[uid] == sid {
			delete(r.users, uid)
		}
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.RoomID == "" {
		return "", false
	}
	return entry.RoomID, true
}

func (r *Registry) UpdateRoom(sid core.SessionID, roomID domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return false
	}
	entry.RoomID = roomID
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(roomID)).Msg("updated room")
	return true
}

func (r *Registry) RemoveRoom(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.sessions[sid]; ok {
		entry.RoomID = ""
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed room association")
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
