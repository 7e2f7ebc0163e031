package app

import (
	"cmp"
	"slices"
	"sync"

	"github.com/dkeye/Mahjong/internal/core"
	"github.com/dkeye/Mahjong/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type RoomManagerImpl struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*core.Room
	newID func() domain.RoomID
	opts  []core.Option
}

type ManagerOption func(*RoomManagerImpl)

// WithIDGenerator replaces the room_<uuid> generator.
func WithIDGenerator(gen func() domain.RoomID) ManagerOption {
	return func(m *RoomManagerImpl) { m.newID = gen }
}

// WithRoomOptions is applied to every room created by the manager.
func WithRoomOptions(opts ...core.Option) ManagerOption {
	return func(m *RoomManagerImpl) { m.opts = append(m.opts, opts...) }
}

func NewRoomManager(opts ...ManagerOption) core.RoomFactory {
	m := &RoomManagerImpl{
		rooms: make(map[domain.RoomID]*core.Room),
		newID: func() domain.RoomID { return domain.RoomID("room_" + uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *RoomManagerImpl) CreateRoom(creator domain.User) *core.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.newID()
	for _, taken := m.rooms[id]; taken; _, taken = m.rooms[id] {
		id = m.newID()
	}
	room := core.NewRoom(id, creator, m.opts...)
	m.rooms[id] = room
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("creator", string(creator.ID)).Msg("room created")
	return room
}

func (m *RoomManagerImpl) GetRoom(id domain.RoomID) (*core.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

func (m *RoomManagerImpl) DeleteRoom(id domain.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; ok {
		delete(m.rooms, id)
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room deleted")
	}
}

func (m *RoomManagerImpl) List() []core.Snapshot {
	m.mu.RLock()
	rooms := make([]*core.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	slices.SortFunc(rooms, func(a, b *core.Room) int {
		if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})
	out := make([]core.Snapshot, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Snapshot())
	}
	return out
}

func (m *RoomManagerImpl) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
