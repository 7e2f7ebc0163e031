package rules

import "github.com/dkeye/Mahjong/internal/domain"

// Matching returns the hand tiles identical in suit and rank to tile.
func Matching(hand []domain.Tile, tile domain.Tile) []domain.Tile {
	var out []domain.Tile
	for _, t := range hand {
		if t.Same(tile) {
			out = append(out, t)
		}
	}
	return out
}

func countSame(hand []domain.Tile, tile domain.Tile) int {
	n := 0
	for _, t := range hand {
		if t.Same(tile) {
			n++
		}
	}
	return n
}

// CanPeng needs two identical tiles in hand.
func CanPeng(hand []domain.Tile, tile domain.Tile) bool {
	return countSame(hand, tile) >= 2
}

// CanGang needs three identical tiles in hand. Only the discard-claim gang is covered.
func CanGang(hand []domain.Tile, tile domain.Tile) bool {
	return countSame(hand, tile) >= 3
}

// chiWindows are the rank offsets completing a run with the claimed tile.
var chiWindows = [3][2]int{{-2, -1}, {-1, 1}, {1, 2}}

// ChiOptions lists, per run window in order, a pair of hand tiles that
// completes a run with tile. Honors never qualify.
func ChiOptions(hand []domain.Tile, tile domain.Tile) [][2]domain.Tile {
	if !tile.Suit.IsNumeric() {
		return nil
	}
	find := func(rank int) (domain.Tile, bool) {
		if rank < 1 || rank > tile.Suit.MaxRank() {
			return domain.Tile{}, false
		}
		for _, t := range hand {
			if t.Suit == tile.Suit && t.Rank == rank {
				return t, true
			}
		}
		return domain.Tile{}, false
	}
	var out [][2]domain.Tile
	for _, w := range chiWindows {
		a, okA := find(tile.Rank + w[0])
		b, okB := find(tile.Rank + w[1])
		if okA && okB {
			out = append(out, [2]domain.Tile{a, b})
		}
	}
	return out
}

func CanChi(hand []domain.Tile, tile domain.Tile) bool {
	return len(ChiOptions(hand, tile)) > 0
}

// Available computes one seat's reaction menu for a discard, in priority order.
// mayChi is true only for the seat right after the discarder.
func Available(hand []domain.Tile, tile domain.Tile, fixedMelds int, mayChi bool) []domain.Action {
	var actions []domain.Action
	if CanHuWithMelds(hand, &tile, fixedMelds) {
		actions = append(actions, domain.ActionHu)
	}
	if CanGang(hand, tile) {
		actions = append(actions, domain.ActionGang)
	}
	if CanPeng(hand, tile) {
		actions = append(actions, domain.ActionPeng)
	}
	if mayChi && CanChi(hand, tile) {
		actions = append(actions, domain.ActionChi)
	}
	return actions
}
