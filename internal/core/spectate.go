package core

import (
	"slices"
	"time"

	"github.com/dkeye/Mahjong/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestSpectate asks the player seated as targetID for permission to watch
// their hand.
func (r *Room) RequestSpectate(spectatorID domain.UserID, targetID domain.UserID) (domain.SpectateRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	si := r.spectatorIndex(spectatorID)
	if si < 0 {
		return domain.SpectateRequest{}, ErrNotSpectator
	}
	target := r.seatOf(targetID)
	if target == nil {
		return domain.SpectateRequest{}, ErrTargetPlayerNotSeated
	}
	if _, ok := r.authorized[target.index][spectatorID]; ok {
		return domain.SpectateRequest{}, ErrAlreadyAuthorized
	}
	for _, req := range r.requests {
		if req.SpectatorID == spectatorID && req.TargetSeat == target.index && req.Status == domain.RequestPending {
			return domain.SpectateRequest{}, ErrAlreadyRequested
		}
	}

	req := &domain.SpectateRequest{
		ID:            domain.RequestID(uuid.NewString()),
		SpectatorID:   spectatorID,
		SpectatorName: r.spectators[si].user.Username,
		TargetSeat:    target.index,
		TargetID:      target.user.ID,
		TargetName:    target.user.Username,
		Status:        domain.RequestPending,
		CreatedAt:     time.Now(),
	}
	r.requests = append(r.requests, req)
	log.Info().Str("module", "core.spectate").Str("room", string(r.id)).Str("spectator", string(spectatorID)).Int("seat", target.index).Msg("spectate requested")
	return *req, nil
}

// ApproveSpectate grants the requesting spectator a view of the owner's hand.
func (r *Room) ApproveSpectate(ownerID domain.UserID, reqID domain.RequestID) (domain.SpectateRequest, error) {
	return r.resolveRequest(ownerID, reqID, domain.RequestApproved)
}

func (r *Room) RejectSpectate(ownerID domain.UserID, reqID domain.RequestID) (domain.SpectateRequest, error) {
	return r.resolveRequest(ownerID, reqID, domain.RequestRejected)
}

func (r *Room) resolveRequest(ownerID domain.UserID, reqID domain.RequestID, status domain.RequestStatus) (domain.SpectateRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.requests, func(req *domain.SpectateRequest) bool { return req.ID == reqID })
	if i < 0 {
		return domain.SpectateRequest{}, ErrRequestNotFound
	}
	req := r.requests[i]
	s := r.seats[req.TargetSeat]
	if s == nil || s.user.ID != ownerID {
		return domain.SpectateRequest{}, ErrUnauthorized
	}
	if req.Status != domain.RequestPending {
		return domain.SpectateRequest{}, ErrRequestResolved
	}

	req.Status = status
	if status == domain.RequestApproved {
		r.authorized[req.TargetSeat][req.SpectatorID] = struct{}{}
	}
	log.Info().Str("module", "core.spectate").Str("room", string(r.id)).Str("request", string(reqID)).Str("status", string(status)).Msg("spectate request resolved")
	return *req, nil
}

// PendingRequestsFor lists the open requests aimed at ownerID's seat, oldest
// first.
func (r *Room) PendingRequestsFor(ownerID domain.UserID) []domain.SpectateRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.seatOf(ownerID)
	if s == nil {
		return nil
	}
	var out []domain.SpectateRequest
	for _, req := range r.requests {
		if req.TargetSeat == s.index && req.Status == domain.RequestPending {
			out = append(out, *req)
		}
	}
	return out
}

// CanView reports whether viewerID may see targetID's hand: the owner always,
// a spectator only after approval.
func (r *Room) CanView(viewerID, targetID domain.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.seatOf(targetID)
	if s == nil {
		return false
	}
	if viewerID == targetID {
		return true
	}
	_, ok := r.authorized[s.index][viewerID]
	return ok
}

// resetSeatConsent drops every authorization granted for the seat and rejects
// requests still waiting on it. Consent belongs to the identity, not the seat.
func (r *Room) resetSeatConsent(idx int) {
	clear(r.authorized[idx])
	for _, req := range r.requests {
		if req.TargetSeat == idx && req.Status == domain.RequestPending {
			req.Status = domain.RequestRejected
		}
	}
}
