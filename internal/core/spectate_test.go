package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Mahjong/internal/domain"
)

func spectatedTable(t *testing.T) *Room {
	t.Helper()
	r := newTestRoom(t, alice, bob, carol, dave, eve, frank)
	require.NoError(t, r.StartGame(alice.ID))
	return r
}

func TestSpectateAuthorizationScenario(t *testing.T) {
	r := spectatedTable(t)

	req, err := r.RequestSpectate(eve.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, req.Status)
	assert.Equal(t, 0, req.TargetSeat)
	assert.Equal(t, "Eve", req.SpectatorName)
	assert.Equal(t, "Alice", req.TargetName)

	pending := r.PendingRequestsFor(alice.ID)
	require.Len(t, pending, 1)
	assert.Equal(t, req.ID, pending[0].ID)
	assert.Empty(t, r.PendingRequestsFor(bob.ID))

	assert.False(t, r.CanView(eve.ID, alice.ID))
	approved, err := r.ApproveSpectate(alice.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestApproved, approved.Status)
	assert.True(t, r.CanView(eve.ID, alice.ID))
	assert.False(t, r.CanView(eve.ID, bob.ID))
	assert.Empty(t, r.PendingRequestsFor(alice.ID))

	hands := r.Hands(0)
	require.Len(t, hands, 1)
	assert.Equal(t, []domain.UserID{eve.ID}, hands[0].Spectators)
	assert.Len(t, hands[0].Tiles, 14)
	assert.Equal(t, 1, r.Snapshot().Players[0].SpectatorCount)

	_, err = r.ApproveSpectate(alice.ID, req.ID)
	assert.ErrorIs(t, err, ErrRequestResolved)
	_, err = r.RejectSpectate(alice.ID, req.ID)
	assert.ErrorIs(t, err, ErrRequestResolved)
	_, err = r.RequestSpectate(eve.ID, alice.ID)
	assert.ErrorIs(t, err, ErrAlreadyAuthorized)
}

func TestRequestSpectate_Errors(t *testing.T) {
	r := spectatedTable(t)

	_, err := r.RequestSpectate(bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotSpectator)
	_, err = r.RequestSpectate(eve.ID, frank.ID)
	assert.ErrorIs(t, err, ErrTargetPlayerNotSeated)

	_, err = r.RequestSpectate(eve.ID, bob.ID)
	require.NoError(t, err)
	_, err = r.RequestSpectate(eve.ID, bob.ID)
	assert.ErrorIs(t, err, ErrAlreadyRequested)
}

func TestResolveSpectate_Errors(t *testing.T) {
	r := spectatedTable(t)
	req, err := r.RequestSpectate(eve.ID, alice.ID)
	require.NoError(t, err)

	_, err = r.ApproveSpectate(alice.ID, "missing")
	assert.ErrorIs(t, err, ErrRequestNotFound)
	_, err = r.ApproveSpectate(bob.ID, req.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	rejected, err := r.RejectSpectate(alice.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestRejected, rejected.Status)
	assert.False(t, r.CanView(eve.ID, alice.ID))

	// a rejected spectator may ask again
	_, err = r.RequestSpectate(eve.ID, alice.ID)
	require.NoError(t, err)
}

func TestSpectatorLeaving_DropsConsent(t *testing.T) {
	r := spectatedTable(t)
	granted, err := r.RequestSpectate(eve.ID, alice.ID)
	require.NoError(t, err)
	_, err = r.ApproveSpectate(alice.ID, granted.ID)
	require.NoError(t, err)
	open, err := r.RequestSpectate(eve.ID, bob.ID)
	require.NoError(t, err)

	_, err = r.RemoveOccupant(eve.ID)
	require.NoError(t, err)
	assert.False(t, r.CanView(eve.ID, alice.ID))
	assert.Empty(t, r.PendingRequestsFor(bob.ID))

	_, err = r.ApproveSpectate(bob.ID, open.ID)
	assert.ErrorIs(t, err, ErrRequestResolved)
}

func TestCanView_OwnerAlways(t *testing.T) {
	r := spectatedTable(t)
	assert.True(t, r.CanView(alice.ID, alice.ID))
	assert.False(t, r.CanView(bob.ID, alice.ID))
	assert.False(t, r.CanView(eve.ID, frank.ID))
}
