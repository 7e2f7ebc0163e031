package core

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dkeye/Mahjong/internal/domain"
	"github.com/rs/zerolog/log"
)

// seat is the persistent game data bound to one table position.
// The identity sitting on it may change; index never does.
type seat struct {
	index    int
	user     domain.User
	online   bool
	hand     []domain.Tile
	discards []domain.Tile
	melds    []domain.Meld
}

// total counts concealed tiles plus three per meld, so a seat that must
// discard holds 14 and a seat waiting to draw holds 13.
func (s *seat) total() int { return len(s.hand) + 3*len(s.melds) }

type spectator struct {
	user     domain.User
	joinedAt time.Time
}

// Room is the authoritative state of one table. Every exported method is a
// single validated transition under mu; validation runs before mutation.
type Room struct {
	mu sync.Mutex

	id        domain.RoomID
	creator   domain.UserID
	createdAt time.Time
	state     domain.RoomState

	seats      [domain.SeatCount]*seat
	spectators []*spectator
	requests   []*domain.SpectateRequest
	authorized [domain.SeatCount]map[domain.UserID]struct{}

	wall        []domain.Tile
	current     int
	lastDiscard *domain.Tile
	history     []domain.Tile
	pending     *reaction
	outcome     *domain.HandOutcome

	rng *rand.Rand
}

type Option func(*Room)

// WithRand makes shuffling reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(r *Room) { r.rng = rng }
}

// NewRoom creates a waiting room with creator on seat 0.
func NewRoom(id domain.RoomID, creator domain.User, opts ...Option) *Room {
	r := &Room{
		id:        id,
		creator:   creator.ID,
		createdAt: time.Now(),
		state:     domain.RoomWaiting,
	}
	for i := range r.authorized {
		r.authorized[i] = make(map[domain.UserID]struct{})
	}
	for _, opt := range opts {
		opt(r)
	}
	r.seats[0] = &seat{index: 0, user: creator, online: true}
	return r
}

func (r *Room) ID() domain.RoomID { return r.id }

func (r *Room) CreatedAt() time.Time { return r.createdAt }

func (r *Room) State() domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Room) Creator() domain.UserID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creator
}

// JoinResult reports the role assigned by AddOccupant.
type JoinResult struct {
	Role     domain.Role
	Seat     int
	Rejoined bool
}

// AddOccupant seats a new identity on the lowest open seat while waiting,
// otherwise adds it as a spectator. An identity owning an offline seat is
// brought back online.
func (r *Room) AddOccupant(u domain.User) (JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == domain.RoomFinished {
		return JoinResult{}, ErrRoomNotFound
	}
	if s := r.seatOf(u.ID); s != nil {
		if s.online {
			return JoinResult{}, ErrAlreadyInRoom
		}
		s.online = true
		s.user.Username = u.Username
		log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("user", string(u.ID)).Int("seat", s.index).Msg("player back online")
		return JoinResult{Role: domain.RolePlayer, Seat: s.index, Rejoined: true}, nil
	}
	if r.spectatorIndex(u.ID) >= 0 {
		return JoinResult{}, ErrAlreadyInRoom
	}

	if r.state == domain.RoomWaiting {
		if idx := r.lowestOpenSeat(); idx >= 0 {
			r.seats[idx] = &seat{index: idx, user: u, online: true}
			log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("user", string(u.ID)).Int("seat", idx).Msg("player seated")
			return JoinResult{Role: domain.RolePlayer, Seat: idx}, nil
		}
	}

	r.spectators = append(r.spectators, &spectator{user: u, joinedAt: time.Now()})
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("user", string(u.ID)).Msg("spectator added")
	return JoinResult{Role: domain.RoleSpectator, Seat: -1}, nil
}

// LeaveResult reports what RemoveOccupant did. Empty means the room has no
// online player and no spectator left and is now finished. Promoted is the
// spectator moved onto the freed seat while waiting.
type LeaveResult struct {
	Role       domain.Role
	Seat       int
	Removed    bool
	Offline    bool
	Empty      bool
	Promoted   *domain.User
	Resolution *Resolution
}

// RemoveOccupant deletes the identity while waiting. While playing a seated
// occupant is only marked offline and auto-passes any open reaction window.
func (r *Room) RemoveOccupant(id domain.UserID) (LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res LeaveResult
	switch s := r.seatOf(id); {
	case s != nil:
		res.Role, res.Seat = domain.RolePlayer, s.index
		if r.state == domain.RoomPlaying {
			s.online = false
			res.Offline = true
			res.Resolution = r.autoPass(s.index)
			log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("user", string(id)).Int("seat", s.index).Msg("player offline")
		} else {
			r.seats[s.index] = nil
			r.resetSeatConsent(s.index)
			res.Removed = true
			res.Promoted = r.promoteSpectator()
			if r.creator == id {
				r.reassignCreator()
			}
			log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("user", string(id)).Int("seat", s.index).Msg("player removed")
		}
	case r.spectatorIndex(id) >= 0:
		r.removeSpectator(id)
		res.Role, res.Seat, res.Removed = domain.RoleSpectator, -1, true
		if r.creator == id {
			r.reassignCreator()
		}
		log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("user", string(id)).Msg("spectator removed")
	default:
		return LeaveResult{}, ErrNotInRoom
	}

	if r.emptyLocked() {
		r.state = domain.RoomFinished
		res.Empty = true
		log.Info().Str("module", "core.room").Str("room", string(r.id)).Msg("room finished")
	}
	return res, nil
}

// TakeSeatResult names the identity that was replaced.
type TakeSeatResult struct {
	Seat       int
	PreviousID domain.UserID
}

// TakeSeat moves a spectator onto an offline seat. Hand, discards and melds
// stay with the seat; consent given to the previous occupant does not.
func (r *Room) TakeSeat(spectatorID domain.UserID, seatIndex int) (TakeSeatResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	si := r.spectatorIndex(spectatorID)
	if si < 0 || seatIndex < 0 || seatIndex >= domain.SeatCount || r.seats[seatIndex] == nil {
		return TakeSeatResult{}, ErrSeatNotFound
	}
	s := r.seats[seatIndex]
	if s.online {
		return TakeSeatResult{}, ErrSeatOccupied
	}

	spec := r.spectators[si]
	prev := s.user.ID
	r.removeSpectator(spectatorID)
	s.user = spec.user
	s.online = true
	r.resetSeatConsent(seatIndex)

	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("user", string(spectatorID)).Str("previous", string(prev)).Int("seat", seatIndex).Msg("spectator took seat")
	return TakeSeatResult{Seat: seatIndex, PreviousID: prev}, nil
}

// RoleOf reports the occupant variant of id, if present.
func (r *Room) RoleOf(id domain.UserID) (domain.Role, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.seatOf(id); s != nil {
		return domain.RolePlayer, s.index, true
	}
	if r.spectatorIndex(id) >= 0 {
		return domain.RoleSpectator, -1, true
	}
	return "", -1, false
}

// Occupants lists every identity that should receive room broadcasts.
func (r *Room) Occupants() []domain.UserID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.UserID, 0, domain.SeatCount+len(r.spectators))
	for _, s := range r.seats {
		if s != nil {
			out = append(out, s.user.ID)
		}
	}
	for _, sp := range r.spectators {
		out = append(out, sp.user.ID)
	}
	return out
}

func (r *Room) seatOf(id domain.UserID) *seat {
	for _, s := range r.seats {
		if s != nil && s.user.ID == id {
			return s
		}
	}
	return nil
}

func (r *Room) spectatorIndex(id domain.UserID) int {
	for i, sp := range r.spectators {
		if sp.user.ID == id {
			return i
		}
	}
	return -1
}

func (r *Room) lowestOpenSeat() int {
	for i, s := range r.seats {
		if s == nil {
			return i
		}
	}
	return -1
}

// removeSpectator also drops the spectator's authorizations and rejects its
// pending requests.
func (r *Room) removeSpectator(id domain.UserID) {
	i := r.spectatorIndex(id)
	if i < 0 {
		return
	}
	r.spectators = append(r.spectators[:i], r.spectators[i+1:]...)
	for _, set := range r.authorized {
		delete(set, id)
	}
	for _, req := range r.requests {
		if req.SpectatorID == id && req.Status == domain.RequestPending {
			req.Status = domain.RequestRejected
		}
	}
}

// promoteSpectator moves the oldest spectator onto the lowest open seat while
// waiting, so seats keep filling before the gallery.
func (r *Room) promoteSpectator() *domain.User {
	if r.state != domain.RoomWaiting || len(r.spectators) == 0 {
		return nil
	}
	idx := r.lowestOpenSeat()
	if idx < 0 {
		return nil
	}
	u := r.spectators[0].user
	r.removeSpectator(u.ID)
	r.seats[idx] = &seat{index: idx, user: u, online: true}
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("user", string(u.ID)).Int("seat", idx).Msg("spectator promoted")
	return &u
}

// reassignCreator hands the creator role to the lowest occupied seat, or to
// the oldest spectator when no seat is taken.
func (r *Room) reassignCreator() {
	for _, s := range r.seats {
		if s != nil {
			r.creator = s.user.ID
			return
		}
	}
	if len(r.spectators) > 0 {
		r.creator = r.spectators[0].user.ID
	}
}

func (r *Room) emptyLocked() bool {
	if len(r.spectators) > 0 {
		return false
	}
	for _, s := range r.seats {
		if s != nil && s.online {
			return false
		}
	}
	return true
}

func (r *Room) seatCount() int {
	n := 0
	for _, s := range r.seats {
		if s != nil {
			n++
		}
	}
	return n
}

// nextSeat returns the next occupied seat after from, wrapping around.
func (r *Room) nextSeat(from int) int {
	for step := 1; step <= domain.SeatCount; step++ {
		i := (from + step) % domain.SeatCount
		if r.seats[i] != nil {
			return i
		}
	}
	return from
}
