package domain

type RoomID string

// RoomState only moves forward: waiting -> playing -> finished.
type RoomState string

const (
	RoomWaiting  RoomState = "waiting"
	RoomPlaying  RoomState = "playing"
	RoomFinished RoomState = "finished"
)

const SeatCount = 4

// OutcomeKind tells how a hand ended.
type OutcomeKind string

const (
	OutcomeWin  OutcomeKind = "win"
	OutcomeDraw OutcomeKind = "exhaustive_draw"
)

// HandOutcome is set once the current hand can no longer continue.
type HandOutcome struct {
	Kind       OutcomeKind `json:"kind"`
	WinnerSeat int         `json:"winnerSeat"`
	WinnerID   UserID      `json:"winnerId,omitempty"`
	Tile       *Tile       `json:"tile,omitempty"`
	SelfDrawn  bool        `json:"selfDrawn"`
}
