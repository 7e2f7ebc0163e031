package domain

import "time"

// Role is the explicit occupant variant inside a room.
type Role string

const (
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// Member represents user's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	User     User      `json:"user"`
	Role     Role      `json:"role"`
	Seat     int       `json:"seatIndex"` // -1 for spectators
	JoinedAt time.Time `json:"joinTime"`
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(user User, role Role, seat int) Member {
	if role == RoleSpectator {
		seat = -1
	}
	return Member{User: user, Role: role, Seat: seat, JoinedAt: time.Now()}
}
