package rules

import "github.com/dkeye/Mahjong/internal/domain"

// hand34 counts tiles per kind: wan 0-8, tiao 9-17, tong 18-26, winds 27-30, dragons 31-33.
type hand34 [34]uint8

func kindIndex(t domain.Tile) int {
	if t.Rank < 1 || t.Rank > t.Suit.MaxRank() {
		return -1
	}
	switch t.Suit {
	case domain.SuitWan:
		return t.Rank - 1
	case domain.SuitTiao:
		return 9 + t.Rank - 1
	case domain.SuitTong:
		return 18 + t.Rank - 1
	case domain.SuitFeng:
		return 27 + t.Rank - 1
	case domain.SuitJian:
		return 31 + t.Rank - 1
	default:
		return -1
	}
}

// runStart reports whether a run i, i+1, i+2 stays inside one numeric suit.
func runStart(i int) bool {
	return i < 27 && i%9 <= 6
}

func toHand34(tiles []domain.Tile) (hand34, bool) {
	var h hand34
	for _, t := range tiles {
		idx := kindIndex(t)
		if idx < 0 {
			return h, false
		}
		h[idx]++
	}
	return h, true
}

// CanHu reports whether hand (plus newTile, if given) is a complete 14-tile
// winning hand: one pair of eyes and four melds.
func CanHu(hand []domain.Tile, newTile *domain.Tile) bool {
	return CanHuWithMelds(hand, newTile, 0)
}

// CanHuWithMelds is CanHu for a seat that already exposed fixedMelds melds;
// the concealed part must hold exactly 14 - 3*fixedMelds tiles.
func CanHuWithMelds(hand []domain.Tile, newTile *domain.Tile, fixedMelds int) bool {
	if fixedMelds < 0 || fixedMelds > 4 {
		return false
	}
	tiles := hand
	if newTile != nil {
		tiles = make([]domain.Tile, 0, len(hand)+1)
		tiles = append(tiles, hand...)
		tiles = append(tiles, *newTile)
	}
	if len(tiles) != WinningSize-3*fixedMelds {
		return false
	}
	h, ok := toHand34(tiles)
	if !ok {
		return false
	}
	for i := range h {
		if h[i] < 2 {
			continue
		}
		h[i] -= 2
		if formsMelds(&h) {
			return true
		}
		h[i] += 2
	}
	return false
}

// formsMelds decomposes the counts into triplets and runs, trying a triplet
// on the first remaining kind before a run. h is restored before returning.
func formsMelds(h *hand34) bool {
	i := 0
	for i < len(h) && h[i] == 0 {
		i++
	}
	if i == len(h) {
		return true
	}
	if h[i] >= 3 {
		h[i] -= 3
		ok := formsMelds(h)
		h[i] += 3
		if ok {
			return true
		}
	}
	if runStart(i) && h[i+1] > 0 && h[i+2] > 0 {
		h[i]--
		h[i+1]--
		h[i+2]--
		ok := formsMelds(h)
		h[i]++
		h[i+1]++
		h[i+2]++
		if ok {
			return true
		}
	}
	return false
}
