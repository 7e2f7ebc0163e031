package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Mahjong/internal/domain"
	"github.com/dkeye/Mahjong/internal/rules"
)

func TestAddOccupant_SeatsThenSpectators(t *testing.T) {
	r := NewRoom("r1", alice)

	for i, u := range []domain.User{bob, carol, dave} {
		res, err := r.AddOccupant(u)
		require.NoError(t, err)
		assert.Equal(t, domain.RolePlayer, res.Role)
		assert.Equal(t, i+1, res.Seat)
	}

	res, err := r.AddOccupant(eve)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSpectator, res.Role)
	assert.Equal(t, -1, res.Seat)

	_, err = r.AddOccupant(bob)
	assert.ErrorIs(t, err, ErrAlreadyInRoom)
	_, err = r.AddOccupant(eve)
	assert.ErrorIs(t, err, ErrAlreadyInRoom)

	role, seat, ok := r.RoleOf(eve.ID)
	require.True(t, ok)
	assert.Equal(t, domain.RoleSpectator, role)
	assert.Equal(t, -1, seat)
	assert.ElementsMatch(t, []domain.UserID{"alice", "bob", "carol", "dave", "eve"}, r.Occupants())
}

func TestRemoveOccupant_WaitingFreesSeat(t *testing.T) {
	r := newTestRoom(t, alice, bob, carol)

	res, err := r.RemoveOccupant(alice.ID)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Equal(t, 0, res.Seat)
	assert.Equal(t, bob.ID, r.Creator())

	// seat indices of the others are untouched
	_, seat, _ := r.RoleOf(carol.ID)
	assert.Equal(t, 2, seat)

	join, err := r.AddOccupant(dave)
	require.NoError(t, err)
	assert.Equal(t, 0, join.Seat)

	_, err = r.RemoveOccupant(alice.ID)
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestRemoveOccupant_EmptyRoomFinishes(t *testing.T) {
	r := newTestRoom(t, alice, bob, carol, dave, eve)
	var res LeaveResult
	var err error
	for _, u := range []domain.User{bob, carol, dave, alice} {
		res, err = r.RemoveOccupant(u.ID)
		require.NoError(t, err)
	}
	assert.False(t, res.Empty, "eve was promoted and is still seated")

	res, err = r.RemoveOccupant(eve.ID)
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, domain.RoomFinished, r.State())

	_, err = r.AddOccupant(frank)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRemoveOccupant_WaitingPromotesSpectator(t *testing.T) {
	r := newTestRoom(t, alice, bob, carol, dave, eve, frank)

	res, err := r.RemoveOccupant(bob.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Promoted)
	assert.Equal(t, eve.ID, res.Promoted.ID)
	role, seat, _ := r.RoleOf(eve.ID)
	assert.Equal(t, domain.RolePlayer, role)
	assert.Equal(t, 1, seat)

	// alice's seat goes to frank, who inherits the creator role
	for _, u := range []domain.User{alice, carol, dave, eve} {
		_, err = r.RemoveOccupant(u.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, domain.RoomWaiting, r.State())
	assert.Equal(t, frank.ID, r.Creator())
	role, seat, _ = r.RoleOf(frank.ID)
	assert.Equal(t, domain.RolePlayer, role)
	assert.Equal(t, 0, seat)
	require.NoError(t, r.StartGame(frank.ID))
}

func TestStartGame(t *testing.T) {
	r := newTestRoom(t, alice, bob)

	assert.ErrorIs(t, r.StartGame(bob.ID), ErrNotCreator)
	require.NoError(t, r.StartGame(alice.ID))
	assert.ErrorIs(t, r.StartGame(alice.ID), ErrInvalidState)

	snap := r.Snapshot()
	assert.Equal(t, domain.RoomPlaying, snap.State)
	assert.Equal(t, 0, snap.CurrentPlayerIndex)
	assert.Equal(t, rules.DeckSize-2*rules.HandSize-1, snap.DeckCount)
	requireConserved(t, r)
}

func TestStartGame_DealerIsLowestOccupiedSeat(t *testing.T) {
	r := newTestRoom(t, alice, bob, carol)
	_, err := r.RemoveOccupant(alice.ID)
	require.NoError(t, err)

	require.NoError(t, r.StartGame(bob.ID))
	snap := r.Snapshot()
	assert.Equal(t, 1, snap.CurrentPlayerIndex)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, rules.WinningSize, snap.Players[0].HandCount)
	assert.Equal(t, rules.HandSize, snap.Players[1].HandCount)
}

func TestLifecycleScenario(t *testing.T) {
	r := newTestRoom(t, alice, bob, carol, dave)
	join, err := r.AddOccupant(eve)
	require.NoError(t, err)
	require.Equal(t, domain.RoleSpectator, join.Role)

	require.NoError(t, r.StartGame(alice.ID))
	snap := r.Snapshot()
	require.Len(t, snap.Players, 4)
	assert.Equal(t, 14, snap.Players[0].HandCount)
	for _, p := range snap.Players[1:] {
		assert.Equal(t, 13, p.HandCount)
	}
	requireConserved(t, r)

	deal(t, r, map[int]string{
		0: "5t 1b 1b 1b 2b 2b 2b 3b 3b 3b 4b 4b 4b 9w",
		1: "3t 4t 5b 5b 5b 6b 6b 6b 7b 7b 7b 8b 8b",
		2: "5t 5t E E E S S S W W W N N",
		3: "1w 1w 1w 2w 2w 2w 3w 3w 3w 4w 4w 4w 5t",
	}, "")
	res, err := r.DiscardTile(alice.ID, idOf(t, r, 0, "5t"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Seat)
	assert.Equal(t, []Eligibility{
		{Seat: 1, UserID: bob.ID, Actions: []domain.Action{domain.ActionChi}},
		{Seat: 2, UserID: carol.ID, Actions: []domain.Action{domain.ActionPeng}},
		{Seat: 3, UserID: dave.ID, Actions: []domain.Action{domain.ActionHu}},
	}, res.Menus)
	requireConserved(t, r)
}

func TestDiscardTile_TurnExclusivity(t *testing.T) {
	r := newTestRoom(t, alice, bob, carol, dave)
	require.NoError(t, r.StartGame(alice.ID))

	for i, u := range []domain.User{bob, carol, dave} {
		hand, ok := r.HandOf(u.ID)
		require.True(t, ok)
		assert.Equal(t, i+1, hand.Seat)
		_, err := r.DiscardTile(u.ID, hand.Tiles[0].ID)
		assert.ErrorIs(t, err, ErrNotYourTurn)
	}
	_, err := r.DiscardTile(eve.ID, 0)
	assert.ErrorIs(t, err, ErrNotInRoom)

	hand, _ := r.HandOf(alice.ID)
	_, err = r.DiscardTile(alice.ID, hand.Tiles[0].ID)
	require.NoError(t, err)

	_, err = r.DiscardTile(alice.ID, hand.Tiles[1].ID)
	assert.ErrorIs(t, err, ErrReactionPending)
	requireConserved(t, r)
}

func TestDiscardTile_Errors(t *testing.T) {
	r := newTestRoom(t, alice, bob)
	_, err := r.DiscardTile(alice.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, r.StartGame(alice.ID))
	bobHand, _ := r.HandOf(bob.ID)
	_, err = r.DiscardTile(alice.ID, bobHand.Tiles[0].ID)
	assert.ErrorIs(t, err, ErrTileNotHeld)

	_, err = r.DrawTile(alice.ID)
	assert.ErrorIs(t, err, ErrMustDiscard)
}

func TestDrawTile_EmptyWallChangesNothing(t *testing.T) {
	r := newTestRoom(t, alice)
	require.NoError(t, r.StartGame(alice.ID))

	r.mu.Lock()
	s := r.seats[0]
	s.discards = append(s.discards, s.hand[0])
	s.hand = s.hand[1:]
	r.wall = nil
	r.mu.Unlock()

	_, err := r.DrawTile(alice.ID)
	assert.ErrorIs(t, err, ErrDeckEmpty)
	snap := r.Snapshot()
	assert.Nil(t, snap.Outcome)
	assert.Equal(t, 13, snap.Players[0].HandCount)
}

func TestOfflineTakeoverScenario(t *testing.T) {
	r := newTestRoom(t, alice, bob)
	require.NoError(t, r.StartGame(alice.ID))
	for _, u := range []domain.User{eve, frank} {
		join, err := r.AddOccupant(u)
		require.NoError(t, err)
		require.Equal(t, domain.RoleSpectator, join.Role)
	}

	// frank watches alice's seat before the takeover
	req, err := r.RequestSpectate(frank.ID, alice.ID)
	require.NoError(t, err)
	_, err = r.ApproveSpectate(alice.ID, req.ID)
	require.NoError(t, err)

	before, _ := r.HandOf(alice.ID)
	leave, err := r.RemoveOccupant(alice.ID)
	require.NoError(t, err)
	assert.True(t, leave.Offline)
	assert.False(t, leave.Empty)

	snap := r.Snapshot()
	assert.False(t, snap.Players[0].Online)
	assert.Equal(t, 14, snap.Players[0].HandCount)

	_, err = r.DiscardTile(alice.ID, before.Tiles[0].ID)
	assert.ErrorIs(t, err, ErrNotInRoom)

	_, err = r.TakeSeat(eve.ID, 1)
	assert.ErrorIs(t, err, ErrSeatOccupied)
	_, err = r.TakeSeat(eve.ID, 3)
	assert.ErrorIs(t, err, ErrSeatNotFound)
	_, err = r.TakeSeat(bob.ID, 0)
	assert.ErrorIs(t, err, ErrSeatNotFound)

	took, err := r.TakeSeat(eve.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, took.PreviousID)

	after, ok := r.HandOf(eve.ID)
	require.True(t, ok)
	assert.Equal(t, before.Tiles, after.Tiles)
	assert.Empty(t, after.Spectators)
	assert.False(t, r.CanView(frank.ID, eve.ID))

	_, err = r.DiscardTile(alice.ID, after.Tiles[0].ID)
	assert.ErrorIs(t, err, ErrNotInRoom)
	_, err = r.DiscardTile(eve.ID, after.Tiles[0].ID)
	require.NoError(t, err)

	role, seat, _ := r.RoleOf(eve.ID)
	assert.Equal(t, domain.RolePlayer, role)
	assert.Equal(t, 0, seat)
	_, _, ok = r.RoleOf(alice.ID)
	assert.False(t, ok)
	requireConserved(t, r)
}

func TestAddOccupant_RejoinOfflineSeat(t *testing.T) {
	r := newTestRoom(t, alice, bob)
	require.NoError(t, r.StartGame(alice.ID))

	_, err := r.RemoveOccupant(bob.ID)
	require.NoError(t, err)

	res, err := r.AddOccupant(bob)
	require.NoError(t, err)
	assert.True(t, res.Rejoined)
	assert.Equal(t, 1, res.Seat)
	assert.True(t, r.Snapshot().Players[1].Online)

	// newcomers during play only watch
	res, err = r.AddOccupant(carol)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSpectator, res.Role)
}

func TestRemoveOccupant_AllPlayersOfflineFinishes(t *testing.T) {
	r := newTestRoom(t, alice, bob)
	require.NoError(t, r.StartGame(alice.ID))

	_, err := r.RemoveOccupant(alice.ID)
	require.NoError(t, err)
	res, err := r.RemoveOccupant(bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, domain.RoomFinished, r.State())
}

func TestSnapshot_StableAndRedacted(t *testing.T) {
	r := claimTable(t)
	_, err := r.DiscardTile(alice.ID, idOf(t, r, 0, "5t"))
	require.NoError(t, err)

	a, b := r.Snapshot(), r.Snapshot()
	assert.Equal(t, a, b)
	assert.True(t, a.Reacting)
	require.NotNil(t, a.LastDiscardedTile)

	// snapshots share no memory with the room
	a.Players[0].Discards[0].Rank = 9
	a.LastDiscardedTile.Rank = 9
	c := r.Snapshot()
	assert.Equal(t, 5, c.Players[0].Discards[0].Rank)
	assert.Equal(t, 5, c.LastDiscardedTile.Rank)

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, p := range decoded["players"].([]any) {
		player := p.(map[string]any)
		assert.NotContains(t, player, "hand")
		assert.Contains(t, player, "handCount")
	}
}
