package core

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Mahjong/internal/domain"
	"github.com/dkeye/Mahjong/internal/rules"
)

var (
	alice = domain.User{ID: "alice", Username: "Alice"}
	bob   = domain.User{ID: "bob", Username: "Bob"}
	carol = domain.User{ID: "carol", Username: "Carol"}
	dave  = domain.User{ID: "dave", Username: "Dave"}
	eve   = domain.User{ID: "eve", Username: "Eve"}
	frank = domain.User{ID: "frank", Username: "Frank"}
)

// kinds parses "1w 2t 3b E Rd" notation into suit/rank pairs without ids.
func kinds(t *testing.T, s string) []domain.Tile {
	t.Helper()
	honors := map[string]domain.Tile{
		"E": {Suit: domain.SuitFeng, Rank: 1}, "S": {Suit: domain.SuitFeng, Rank: 2},
		"W": {Suit: domain.SuitFeng, Rank: 3}, "N": {Suit: domain.SuitFeng, Rank: 4},
		"Rd": {Suit: domain.SuitJian, Rank: 1}, "Gr": {Suit: domain.SuitJian, Rank: 2},
		"Wh": {Suit: domain.SuitJian, Rank: 3},
	}
	suits := map[byte]domain.Suit{'w': domain.SuitWan, 't': domain.SuitTiao, 'b': domain.SuitTong}
	var out []domain.Tile
	for _, f := range strings.Fields(s) {
		if h, ok := honors[f]; ok {
			out = append(out, h)
			continue
		}
		rank, err := strconv.Atoi(f[:len(f)-1])
		require.NoError(t, err, f)
		suit, ok := suits[f[len(f)-1]]
		require.True(t, ok, f)
		out = append(out, domain.Tile{Suit: suit, Rank: rank})
	}
	return out
}

func newTestRoom(t *testing.T, creator domain.User, others ...domain.User) *Room {
	t.Helper()
	r := NewRoom("room_test", creator, WithRand(rand.New(rand.NewPCG(1, 2))))
	for _, u := range others {
		_, err := r.AddOccupant(u)
		require.NoError(t, err)
	}
	return r
}

// deal rebuilds every hand of a started room from notation. Tiles are taken
// from the whole set so the table still holds all 136; front is placed at the
// head of the wall in order.
func deal(t *testing.T, r *Room, hands map[int]string, front string) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()

	require.Equal(t, domain.RoomPlaying, r.state)
	pool := slices.Clone(r.wall)
	for _, s := range r.seats {
		if s != nil {
			pool = append(pool, s.hand...)
			s.hand = nil
		}
	}
	take := func(want domain.Tile) domain.Tile {
		i := slices.IndexFunc(pool, want.Same)
		require.GreaterOrEqual(t, i, 0, "no copy of %s left", want)
		got := pool[i]
		pool = slices.Delete(pool, i, i+1)
		return got
	}
	for idx, spec := range hands {
		require.NotNil(t, r.seats[idx], "seat %d", idx)
		for _, k := range kinds(t, spec) {
			r.seats[idx].hand = append(r.seats[idx].hand, take(k))
		}
	}
	var head []domain.Tile
	for _, k := range kinds(t, front) {
		head = append(head, take(k))
	}
	r.wall = append(head, pool...)
}

// idOf returns the id of the first tile of kind k in seat idx's hand.
func idOf(t *testing.T, r *Room, idx int, k string) domain.TileID {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	want := kinds(t, k)[0]
	i := slices.IndexFunc(r.seats[idx].hand, want.Same)
	require.GreaterOrEqual(t, i, 0, "seat %d holds no %s", idx, k)
	return r.seats[idx].hand[i].ID
}

// requireConserved checks that every tile id sits in exactly one zone.
func requireConserved(t *testing.T, r *Room) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[domain.TileID]int, rules.DeckSize)
	count := func(ts []domain.Tile) {
		for _, tile := range ts {
			seen[tile.ID]++
		}
	}
	count(r.wall)
	for _, s := range r.seats {
		if s == nil {
			continue
		}
		count(s.hand)
		count(s.discards)
		for _, m := range s.melds {
			count(m.Tiles)
		}
	}
	require.Len(t, seen, rules.DeckSize)
	for id, n := range seen {
		require.Equal(t, 1, n, "tile %d in %d zones", id, n)
	}
}

// claimTable seats four players and rigs the hands so that after alice
// discards 5t: bob may chi (3t 4t), carol may peng (5t 5t) and dave wins on it.
func claimTable(t *testing.T) *Room {
	t.Helper()
	r := newTestRoom(t, alice, bob, carol, dave)
	require.NoError(t, r.StartGame(alice.ID))
	deal(t, r, map[int]string{
		0: "5t 1b 1b 1b 2b 2b 2b 3b 3b 3b 4b 4b 4b 9w",
		1: "3t 4t 5b 5b 5b 6b 6b 6b 7b 7b 7b 8b 8b",
		2: "5t 5t E E E S S S W W W N N",
		3: "1w 1w 1w 2w 2w 2w 3w 3w 3w 4w 4w 4w 5t",
	}, "Rd Gr Wh")
	return r
}
