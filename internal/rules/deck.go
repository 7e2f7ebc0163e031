// Package rules holds the pure tile-rule engine: deck composition, shuffling
// and claim/winning-hand eligibility. Nothing here keeps state.
package rules

import (
	"math/rand/v2"

	"github.com/dkeye/Mahjong/internal/domain"
)

const (
	DeckSize      = 136
	CopiesPerTile = 4
	HandSize      = 13
	WinningSize   = 14
)

// NewDeck generates all 136 tiles in a fixed order: numeric suits by rank,
// then winds, then dragons. Ids run 0..135 in that order.
func NewDeck() []domain.Tile {
	tiles := make([]domain.Tile, 0, DeckSize)
	id := domain.TileID(0)
	add := func(s domain.Suit) {
		for rank := 1; rank <= s.MaxRank(); rank++ {
			for i := 0; i < CopiesPerTile; i++ {
				tiles = append(tiles, domain.Tile{ID: id, Suit: s, Rank: rank})
				id++
			}
		}
	}
	for _, s := range domain.NumericSuits {
		add(s)
	}
	add(domain.SuitFeng)
	add(domain.SuitJian)
	return tiles
}

// Shuffle returns a Fisher-Yates permutation of deck; deck itself is not touched.
// A nil rng uses the process-wide source.
func Shuffle(deck []domain.Tile, rng *rand.Rand) []domain.Tile {
	out := make([]domain.Tile, len(deck))
	copy(out, deck)
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
