package core

import (
	"slices"
	"time"

	"github.com/dkeye/Mahjong/internal/domain"
)

// SeatView is the public part of a seat: the hand is reduced to its size.
type SeatView struct {
	ID             domain.UserID `json:"id"`
	Name           string        `json:"name"`
	HandCount      int           `json:"handCount"`
	Discards       []domain.Tile `json:"discardedTiles"`
	Melds          []domain.Meld `json:"melds"`
	Online         bool          `json:"online"`
	SeatIndex      int           `json:"seatIndex"`
	SpectatorCount int           `json:"spectatorCount"`
}

type SpectatorView struct {
	ID       domain.UserID `json:"id"`
	Name     string        `json:"name"`
	JoinedAt time.Time     `json:"joinTime"`
}

// Snapshot is the redacted room view broadcast to every occupant. It shares
// no memory with the room.
type Snapshot struct {
	ID                 domain.RoomID       `json:"id"`
	State              domain.RoomState    `json:"state"`
	Creator            domain.UserID       `json:"creator"`
	Players            []SeatView          `json:"players"`
	Spectators         []SpectatorView     `json:"spectators"`
	CurrentPlayerIndex int                 `json:"currentPlayerIndex"`
	DeckCount          int                 `json:"deckCount"`
	LastDiscardedTile  *domain.Tile        `json:"lastDiscardedTile"`
	Reacting           bool                `json:"reacting"`
	Outcome            *domain.HandOutcome `json:"outcome,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
}

func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		ID:                 r.id,
		State:              r.state,
		Creator:            r.creator,
		Players:            make([]SeatView, 0, domain.SeatCount),
		Spectators:         make([]SpectatorView, 0, len(r.spectators)),
		CurrentPlayerIndex: r.current,
		DeckCount:          len(r.wall),
		Reacting:           r.pending != nil,
		CreatedAt:          r.createdAt,
	}
	for _, s := range r.seats {
		if s == nil {
			continue
		}
		snap.Players = append(snap.Players, SeatView{
			ID:             s.user.ID,
			Name:           s.user.Username,
			HandCount:      len(s.hand),
			Discards:       slices.Clone(s.discards),
			Melds:          cloneMelds(s.melds),
			Online:         s.online,
			SeatIndex:      s.index,
			SpectatorCount: len(r.authorized[s.index]),
		})
	}
	for _, sp := range r.spectators {
		snap.Spectators = append(snap.Spectators, SpectatorView{ID: sp.user.ID, Name: sp.user.Username, JoinedAt: sp.joinedAt})
	}
	if r.lastDiscard != nil {
		t := *r.lastDiscard
		snap.LastDiscardedTile = &t
	}
	if r.outcome != nil {
		o := *r.outcome
		if o.Tile != nil {
			t := *o.Tile
			o.Tile = &t
		}
		snap.Outcome = &o
	}
	return snap
}

func cloneMelds(ms []domain.Meld) []domain.Meld {
	out := make([]domain.Meld, len(ms))
	for i, m := range ms {
		out[i] = m
		out[i].Tiles = slices.Clone(m.Tiles)
	}
	return out
}

// HandView is a full hand together with everyone allowed to receive it.
type HandView struct {
	Seat       int
	OwnerID    domain.UserID
	OwnerName  string
	Online     bool
	Tiles      []domain.Tile
	Spectators []domain.UserID
}

// Hands returns the hands of the given seats, or of every occupied seat when
// none are named. Spectators are listed in join order.
func (r *Room) Hands(seats ...int) []HandView {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(seats) == 0 {
		for _, s := range r.seats {
			if s != nil {
				seats = append(seats, s.index)
			}
		}
	}
	out := make([]HandView, 0, len(seats))
	for _, idx := range seats {
		if idx < 0 || idx >= domain.SeatCount || r.seats[idx] == nil {
			continue
		}
		out = append(out, r.handView(r.seats[idx]))
	}
	return out
}

// HandOf returns the hand of the seat owned by id.
func (r *Room) HandOf(id domain.UserID) (HandView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.seatOf(id)
	if s == nil {
		return HandView{}, false
	}
	return r.handView(s), true
}

func (r *Room) handView(s *seat) HandView {
	hv := HandView{
		Seat:      s.index,
		OwnerID:   s.user.ID,
		OwnerName: s.user.Username,
		Online:    s.online,
		Tiles:     slices.Clone(s.hand),
	}
	for _, sp := range r.spectators {
		if _, ok := r.authorized[s.index][sp.user.ID]; ok {
			hv.Spectators = append(hv.Spectators, sp.user.ID)
		}
	}
	return hv
}
