package core

import (
	"slices"

	"github.com/dkeye/Mahjong/internal/domain"
	"github.com/dkeye/Mahjong/internal/rules"
	"github.com/rs/zerolog/log"
)

// StartGame deals a fresh shuffled wall: 13 tiles per occupied seat and a
// 14th to the dealer, the lowest occupied seat.
func (r *Room) StartGame(caller domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != domain.RoomWaiting {
		return ErrInvalidState
	}
	if r.creator != caller {
		return ErrNotCreator
	}
	if r.seatCount() == 0 {
		return ErrNoPlayers
	}

	r.wall = rules.Shuffle(rules.NewDeck(), r.rng)
	r.history = nil
	r.lastDiscard = nil
	r.pending = nil
	r.outcome = nil

	dealer := -1
	for _, s := range r.seats {
		if s == nil {
			continue
		}
		if dealer < 0 {
			dealer = s.index
		}
		s.hand = r.takeFront(rules.HandSize)
		s.discards = nil
		s.melds = nil
	}
	r.seats[dealer].hand = append(r.seats[dealer].hand, r.takeFront(1)...)
	r.current = dealer
	r.state = domain.RoomPlaying

	log.Info().Str("module", "core.turn").Str("room", string(r.id)).Int("dealer", dealer).Int("wall", len(r.wall)).Msg("game started")
	return nil
}

// takeFront pops n tiles off the wall into a freshly allocated slice.
func (r *Room) takeFront(n int) []domain.Tile {
	n = min(n, len(r.wall))
	out := make([]domain.Tile, n)
	copy(out, r.wall[:n])
	r.wall = r.wall[n:]
	return out
}

// turnSeat validates that id owns the current seat and may act on it.
func (r *Room) turnSeat(id domain.UserID) (*seat, error) {
	if r.state != domain.RoomPlaying {
		return nil, ErrInvalidState
	}
	s := r.seatOf(id)
	if s == nil || !s.online {
		return nil, ErrNotInRoom
	}
	if r.outcome != nil {
		return nil, ErrHandOver
	}
	if s.index != r.current {
		return nil, ErrNotYourTurn
	}
	if r.pending != nil {
		return nil, ErrReactionPending
	}
	return s, nil
}

// DiscardResult carries the discarded tile and every seat's reaction menu.
type DiscardResult struct {
	Seat  int
	Tile  domain.Tile
	Menus []Eligibility
}

// Eligibility is the reaction menu offered to one seat, in priority order.
type Eligibility struct {
	Seat    int
	UserID  domain.UserID
	Actions []domain.Action
}

// DiscardTile moves tileID from the current seat's hand to its discard pile
// and opens a reaction window. The turn does not advance here.
func (r *Room) DiscardTile(id domain.UserID, tileID domain.TileID) (DiscardResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.turnSeat(id)
	if err != nil {
		return DiscardResult{}, err
	}
	if s.total() != rules.WinningSize {
		return DiscardResult{}, ErrMustDraw
	}
	i := slices.IndexFunc(s.hand, func(t domain.Tile) bool { return t.ID == tileID })
	if i < 0 {
		return DiscardResult{}, ErrTileNotHeld
	}

	tile := s.hand[i]
	s.hand = slices.Delete(s.hand, i, i+1)
	s.discards = append(s.discards, tile)
	r.history = append(r.history, tile)
	last := tile
	r.lastDiscard = &last
	r.pending = r.openReaction(s.index, tile)

	log.Debug().Str("module", "core.turn").Str("room", string(r.id)).Int("seat", s.index).Str("tile", tile.String()).Int("eligible", len(r.pending.menus)).Msg("tile discarded")
	return DiscardResult{Seat: s.index, Tile: tile, Menus: r.pending.eligibility(r)}, nil
}

// Draw is one tile moved from the wall into a seat's hand.
type Draw struct {
	Seat   int
	UserID domain.UserID
	Tile   domain.Tile
}

// DrawTile moves the wall front into the current seat's hand.
func (r *Room) DrawTile(id domain.UserID) (Draw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.turnSeat(id)
	if err != nil {
		return Draw{}, err
	}
	if s.total() >= rules.WinningSize {
		return Draw{}, ErrMustDiscard
	}
	if len(r.wall) == 0 {
		return Draw{}, ErrDeckEmpty
	}
	return r.drawFor(s), nil
}

func (r *Room) drawFor(s *seat) Draw {
	t := r.wall[0]
	r.wall = r.wall[1:]
	s.hand = append(s.hand, t)
	return Draw{Seat: s.index, UserID: s.user.ID, Tile: t}
}

// drawOrExhaust draws for s, or ends the hand as an exhaustive draw when the
// wall is empty.
func (r *Room) drawOrExhaust(s *seat) *Draw {
	if len(r.wall) == 0 {
		r.outcome = &domain.HandOutcome{Kind: domain.OutcomeDraw, WinnerSeat: -1}
		log.Info().Str("module", "core.turn").Str("room", string(r.id)).Msg("wall exhausted, hand drawn")
		return nil
	}
	d := r.drawFor(s)
	return &d
}

// DeclareWin ends the hand with a self-drawn win for the current seat.
func (r *Room) DeclareWin(id domain.UserID) (domain.HandOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.turnSeat(id)
	if err != nil {
		return domain.HandOutcome{}, err
	}
	if !rules.CanHuWithMelds(s.hand, nil, len(s.melds)) {
		return domain.HandOutcome{}, ErrNotAWinningHand
	}
	r.outcome = &domain.HandOutcome{Kind: domain.OutcomeWin, WinnerSeat: s.index, WinnerID: s.user.ID, SelfDrawn: true}
	log.Info().Str("module", "core.turn").Str("room", string(r.id)).Int("seat", s.index).Msg("self-drawn win")
	return *r.outcome, nil
}
