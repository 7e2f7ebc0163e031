package core

import (
	"slices"

	"github.com/dkeye/Mahjong/internal/domain"
	"github.com/dkeye/Mahjong/internal/rules"
	"github.com/rs/zerolog/log"
)

// bid is a validated claim waiting for the window to settle.
type bid struct {
	seat   int
	action domain.Action
	tiles  []domain.TileID // hand tiles the claim will consume
	seq    int
}

// reaction is the window opened by a discard. Every online seat other than
// the discarder gets its own menu; the window settles once no undecided seat
// could outbid the best bid.
type reaction struct {
	tile     domain.Tile
	fromSeat int
	menus    map[int][]domain.Action
	decided  map[int]bool
	bids     []bid
	seq      int
}

func (r *Room) openReaction(from int, tile domain.Tile) *reaction {
	p := &reaction{
		tile:     tile,
		fromSeat: from,
		menus:    make(map[int][]domain.Action),
		decided:  make(map[int]bool),
	}
	chiSeat := r.nextSeat(from)
	for _, s := range r.seats {
		if s == nil || s.index == from || !s.online {
			continue
		}
		menu := rules.Available(s.hand, tile, len(s.melds), s.index == chiSeat)
		if len(menu) > 0 {
			p.menus[s.index] = menu
		}
	}
	return p
}

func (p *reaction) eligibility(r *Room) []Eligibility {
	out := make([]Eligibility, 0, len(p.menus))
	for _, s := range r.seats {
		if s == nil {
			continue
		}
		if menu, ok := p.menus[s.index]; ok {
			out = append(out, Eligibility{Seat: s.index, UserID: s.user.ID, Actions: slices.Clone(menu)})
		}
	}
	return out
}

// best picks the winning bid: highest priority, then earliest arrival.
func (p *reaction) best() *bid {
	var w *bid
	for i := range p.bids {
		b := &p.bids[i]
		if w == nil || b.action.Priority() > w.action.Priority() ||
			(b.action.Priority() == w.action.Priority() && b.seq < w.seq) {
			w = b
		}
	}
	return w
}

func (p *reaction) hasBid(seatIndex int) bool {
	return slices.ContainsFunc(p.bids, func(b bid) bool { return b.seat == seatIndex })
}

func (p *reaction) withdraw(seatIndex int) {
	p.bids = slices.DeleteFunc(p.bids, func(b bid) bool { return b.seat == seatIndex })
}

// Claimed describes the winning claim of a settled window.
type Claimed struct {
	Seat   int
	UserID domain.UserID
	Action domain.Action
	Meld   *domain.Meld
}

// Loser is a queued bid that lost to a higher priority or earlier claim.
type Loser struct {
	Seat   int
	UserID domain.UserID
	Action domain.Action
}

// Resolution describes how a reaction window closed: either a claim won or
// everybody passed and the turn advanced.
type Resolution struct {
	Tile     domain.Tile
	FromSeat int
	Winner   *Claimed
	Losers   []Loser
	Advanced bool
	Current  int
	Drawn    *Draw
	Outcome  *domain.HandOutcome
}

// ClaimResult is either queued (a higher priority seat has not answered
// yet) or carries the resolution it triggered.
type ClaimResult struct {
	Queued     bool
	Resolution *Resolution
}

func (r *Room) ClaimHu(id domain.UserID) (ClaimResult, error) {
	return r.Claim(id, domain.ActionHu)
}

func (r *Room) ClaimGang(id domain.UserID) (ClaimResult, error) {
	return r.Claim(id, domain.ActionGang)
}

func (r *Room) ClaimPeng(id domain.UserID) (ClaimResult, error) {
	return r.Claim(id, domain.ActionPeng)
}

// ClaimChi optionally names the two hand tiles to use; otherwise the first
// available run window is taken.
func (r *Room) ClaimChi(id domain.UserID, tiles ...domain.TileID) (ClaimResult, error) {
	return r.Claim(id, domain.ActionChi, tiles...)
}

// Claim records a bid on the pending discard and settles the window when
// possible. Claims on a settled window fail with ErrClaimResolved.
func (r *Room) Claim(id domain.UserID, action domain.Action, tiles ...domain.TileID) (ClaimResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !action.Valid() {
		return ClaimResult{}, ErrUnknownAction
	}
	s, err := r.reactingSeat(id)
	if err != nil {
		return ClaimResult{}, err
	}
	p := r.pending
	if p.decided[s.index] {
		return ClaimResult{}, ErrAlreadyResponded
	}
	if !slices.Contains(p.menus[s.index], action) {
		return ClaimResult{}, ErrInsufficientTiles
	}
	consume, err := claimTiles(s.hand, p.tile, action, tiles)
	if err != nil {
		return ClaimResult{}, err
	}

	p.seq++
	p.bids = append(p.bids, bid{seat: s.index, action: action, tiles: consume, seq: p.seq})
	p.decided[s.index] = true

	res := r.settle()
	if res == nil {
		log.Debug().Str("module", "core.claim").Str("room", string(r.id)).Int("seat", s.index).Str("action", string(action)).Msg("claim queued")
		return ClaimResult{Queued: true}, nil
	}
	return ClaimResult{Resolution: res}, nil
}

// Pass declines the pending discard. Once every eligible seat has answered
// without a bid the turn moves to the next seat, which draws automatically.
// With no eligible seat any seated player's pass advances the turn. A queued
// bid is final: its seat cannot pass afterwards.
func (r *Room) Pass(id domain.UserID) (*Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.reactingSeat(id)
	if err != nil {
		return nil, err
	}
	p := r.pending
	if p.hasBid(s.index) {
		return nil, ErrAlreadyResponded
	}
	if _, eligible := p.menus[s.index]; eligible {
		p.decided[s.index] = true
	}
	return r.settle(), nil
}

// autoPass answers for a seat that went offline.
func (r *Room) autoPass(seatIndex int) *Resolution {
	if r.pending == nil || r.outcome != nil {
		return nil
	}
	if _, eligible := r.pending.menus[seatIndex]; !eligible {
		return nil
	}
	r.pending.decided[seatIndex] = true
	r.pending.withdraw(seatIndex)
	return r.settle()
}

func (r *Room) reactingSeat(id domain.UserID) (*seat, error) {
	if r.state != domain.RoomPlaying {
		return nil, ErrInvalidState
	}
	s := r.seatOf(id)
	if s == nil || !s.online {
		return nil, ErrNotInRoom
	}
	if r.pending == nil {
		return nil, ErrClaimResolved
	}
	if r.outcome != nil {
		return nil, ErrHandOver
	}
	return s, nil
}

// claimTiles picks the hand tiles an action consumes.
func claimTiles(hand []domain.Tile, tile domain.Tile, action domain.Action, chosen []domain.TileID) ([]domain.TileID, error) {
	ids := func(ts []domain.Tile) []domain.TileID {
		out := make([]domain.TileID, len(ts))
		for i, t := range ts {
			out[i] = t.ID
		}
		return out
	}
	switch action {
	case domain.ActionHu:
		return nil, nil
	case domain.ActionGang, domain.ActionPeng:
		need := 2
		if action == domain.ActionGang {
			need = 3
		}
		same := rules.Matching(hand, tile)
		if len(same) < need {
			return nil, ErrInsufficientTiles
		}
		return ids(same[:need]), nil
	case domain.ActionChi:
		if len(chosen) == 0 {
			opts := rules.ChiOptions(hand, tile)
			if len(opts) == 0 {
				return nil, ErrInsufficientTiles
			}
			return ids(opts[0][:]), nil
		}
		return chiPair(hand, tile, chosen)
	}
	return nil, ErrUnknownAction
}

// chiPair checks that the two named hand tiles complete a run with tile.
func chiPair(hand []domain.Tile, tile domain.Tile, chosen []domain.TileID) ([]domain.TileID, error) {
	if len(chosen) != 2 || chosen[0] == chosen[1] {
		return nil, ErrInsufficientTiles
	}
	ranks := []int{tile.Rank}
	for _, id := range chosen {
		i := slices.IndexFunc(hand, func(t domain.Tile) bool { return t.ID == id })
		if i < 0 {
			return nil, ErrTileNotHeld
		}
		if hand[i].Suit != tile.Suit {
			return nil, ErrInsufficientTiles
		}
		ranks = append(ranks, hand[i].Rank)
	}
	slices.Sort(ranks)
	if ranks[1] != ranks[0]+1 || ranks[2] != ranks[1]+1 {
		return nil, ErrInsufficientTiles
	}
	return slices.Clone(chosen), nil
}

// settle closes the window when its result can no longer change.
func (r *Room) settle() *Resolution {
	p := r.pending
	w := p.best()
	for seatIndex, menu := range p.menus {
		if p.decided[seatIndex] {
			continue
		}
		if w == nil || menu[0].Priority() > w.action.Priority() {
			return nil
		}
	}
	if w == nil {
		return r.advance()
	}
	return r.execute(*w)
}

// advance moves the turn past the discarder and draws for the new seat.
func (r *Room) advance() *Resolution {
	p := r.pending
	r.pending = nil
	r.current = r.nextSeat(p.fromSeat)
	res := &Resolution{Tile: p.tile, FromSeat: p.fromSeat, Advanced: true, Current: r.current}
	res.Drawn = r.drawOrExhaust(r.seats[r.current])
	res.Outcome = r.outcome
	log.Debug().Str("module", "core.claim").Str("room", string(r.id)).Int("current", r.current).Msg("turn advanced")
	return res
}

// execute applies the winning bid: the claimed tile leaves the discarder's
// pile and the history, the claimant's tiles form a meld and the turn moves
// to the claimant.
func (r *Room) execute(w bid) *Resolution {
	p := r.pending
	s := r.seats[w.seat]
	from := r.seats[p.fromSeat]

	from.discards = slices.DeleteFunc(from.discards, func(t domain.Tile) bool { return t.ID == p.tile.ID })
	r.history = slices.DeleteFunc(r.history, func(t domain.Tile) bool { return t.ID == p.tile.ID })
	r.pending = nil
	r.lastDiscard = nil
	r.current = s.index

	res := &Resolution{
		Tile:     p.tile,
		FromSeat: p.fromSeat,
		Current:  s.index,
		Winner:   &Claimed{Seat: s.index, UserID: s.user.ID, Action: w.action},
	}
	for _, b := range p.bids {
		if b.seat != w.seat {
			res.Losers = append(res.Losers, Loser{Seat: b.seat, UserID: r.seats[b.seat].user.ID, Action: b.action})
		}
	}

	if w.action == domain.ActionHu {
		s.hand = append(s.hand, p.tile)
		tile := p.tile
		r.outcome = &domain.HandOutcome{Kind: domain.OutcomeWin, WinnerSeat: s.index, WinnerID: s.user.ID, Tile: &tile}
		res.Outcome = r.outcome
		log.Info().Str("module", "core.claim").Str("room", string(r.id)).Int("seat", s.index).Msg("won on discard")
		return res
	}

	kind, _ := w.action.MeldKind()
	meldTiles := make([]domain.Tile, 0, len(w.tiles)+1)
	for _, id := range w.tiles {
		i := slices.IndexFunc(s.hand, func(t domain.Tile) bool { return t.ID == id })
		meldTiles = append(meldTiles, s.hand[i])
		s.hand = slices.Delete(s.hand, i, i+1)
	}
	meldTiles = append(meldTiles, p.tile)
	slices.SortFunc(meldTiles, func(a, b domain.Tile) int { return a.Rank - b.Rank })
	meld := domain.Meld{Kind: kind, Tiles: meldTiles, Claimed: p.tile.ID, FromSeat: p.fromSeat}
	s.melds = append(s.melds, meld)
	res.Winner.Meld = &meld

	if w.action == domain.ActionGang {
		res.Drawn = r.drawOrExhaust(s)
		res.Outcome = r.outcome
	}
	log.Info().Str("module", "core.claim").Str("room", string(r.id)).Int("seat", s.index).Str("action", string(w.action)).Msg("claim resolved")
	return res
}
