package core

import "github.com/dkeye/Mahjong/internal/domain"

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []domain.UserID
}

// RoomFactory owns the set of live rooms.
type RoomFactory interface {
	CreateRoom(creator domain.User) *Room
	GetRoom(id domain.RoomID) (*Room, bool)
	DeleteRoom(id domain.RoomID)
	// List returns snapshots of live rooms, oldest first.
	List() []Snapshot
	Count() int
}
