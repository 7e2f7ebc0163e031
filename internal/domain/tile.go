package domain

import "fmt"

type Suit string

const (
	SuitWan  Suit = "wan"  // characters
	SuitTiao Suit = "tiao" // bamboo
	SuitTong Suit = "tong" // dots
	SuitFeng Suit = "feng" // winds, ranks 1-4 (E S W N)
	SuitJian Suit = "jian" // dragons, ranks 1-3 (red green white)
)

// NumericSuits are the suits that can form runs.
var NumericSuits = []Suit{SuitWan, SuitTiao, SuitTong}

// MaxRank reports the highest rank of a suit.
func (s Suit) MaxRank() int {
	switch s {
	case SuitWan, SuitTiao, SuitTong:
		return 9
	case SuitFeng:
		return 4
	case SuitJian:
		return 3
	default:
		return 0
	}
}

func (s Suit) IsNumeric() bool {
	return s == SuitWan || s == SuitTiao || s == SuitTong
}

func (s Suit) IsHonor() bool {
	return s == SuitFeng || s == SuitJian
}

type TileID int

// Tile is immutable; ID is unique across the 136-tile set.
type Tile struct {
	ID   TileID `json:"id"`
	Suit Suit   `json:"type"`
	Rank int    `json:"value"`
}

// Same reports whether two tiles are identical in suit and rank.
func (t Tile) Same(o Tile) bool {
	return t.Suit == o.Suit && t.Rank == o.Rank
}

var (
	windNames   = [...]string{"", "east", "south", "west", "north"}
	dragonNames = [...]string{"", "red", "green", "white"}
)

func (t Tile) String() string {
	switch t.Suit {
	case SuitFeng:
		if t.Rank > 0 && t.Rank < len(windNames) {
			return windNames[t.Rank]
		}
	case SuitJian:
		if t.Rank > 0 && t.Rank < len(dragonNames) {
			return dragonNames[t.Rank]
		}
	}
	return fmt.Sprintf("%d%s", t.Rank, t.Suit)
}

// MeldKind is also the claim action name on the wire.
type MeldKind string

const (
	MeldChi  MeldKind = "chi"
	MeldPeng MeldKind = "peng"
	MeldGang MeldKind = "gang"
)

// Meld is one claimed discard plus the tiles moved out of the claimant's hand.
type Meld struct {
	Kind     MeldKind `json:"type"`
	Tiles    []Tile   `json:"tiles"`
	Claimed  TileID   `json:"claimedTileId"`
	FromSeat int      `json:"fromSeat"`
}
