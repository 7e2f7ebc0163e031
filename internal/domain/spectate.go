package domain

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type RequestID string

// SpectateRequest asks a seated player for consent to watch their hand.
type SpectateRequest struct {
	ID            RequestID     `json:"id"`
	SpectatorID   UserID        `json:"spectatorId"`
	SpectatorName string        `json:"spectatorName"`
	TargetSeat    int           `json:"targetSeat"`
	TargetID      UserID        `json:"targetPlayerId"`
	TargetName    string        `json:"targetPlayerName"`
	Status        RequestStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}
