package core

import "errors"

// Error is a validation failure with a stable wire code.
// Failures are reported to the requester only.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(code, msg string) *Error { return &Error{Code: code, Message: msg} }

var (
	ErrNotAuthenticated = newError("not_authenticated", "login required")
	ErrInvalidUsername  = newError("invalid_username", "username must be 1-36 characters")
	ErrRoomNotFound     = newError("room_not_found", "room does not exist")
	ErrNotInRoom        = newError("not_in_room", "not in a room")
	ErrAlreadyInRoom    = newError("already_in_room", "already in this room")
	ErrInvalidState     = newError("invalid_state", "operation not allowed in current room state")
	ErrNotCreator       = newError("not_creator", "only the room creator can start the game")
	ErrNoPlayers        = newError("no_players", "at least one seated player is required")

	ErrNotYourTurn       = newError("not_your_turn", "not your turn")
	ErrTileNotHeld       = newError("tile_not_held", "tile is not in your hand")
	ErrDeckEmpty         = newError("deck_empty", "the wall is empty")
	ErrMustDraw          = newError("must_draw", "draw before discarding")
	ErrMustDiscard       = newError("must_discard", "discard before drawing")
	ErrReactionPending   = newError("reaction_pending", "waiting for reactions to the last discard")
	ErrHandOver          = newError("hand_over", "the hand has ended")
	ErrNotAWinningHand   = newError("not_winning_hand", "hand is not complete")
	ErrInsufficientTiles = newError("insufficient_tiles", "not enough matching tiles for this claim")
	ErrClaimResolved     = newError("claim_already_resolved", "the discard has already been resolved")
	ErrAlreadyResponded  = newError("already_responded", "already responded to this discard")
	ErrUnknownAction     = newError("unknown_action", "unknown claim action")

	ErrRequestNotFound       = newError("request_not_found", "spectate request not found")
	ErrRequestResolved       = newError("request_already_resolved", "spectate request already resolved")
	ErrUnauthorized          = newError("unauthorized", "not allowed to resolve this request")
	ErrAlreadyRequested      = newError("already_requested", "a pending request already exists")
	ErrAlreadyAuthorized     = newError("already_authorized", "already authorized to view this player")
	ErrNotSpectator          = newError("not_spectator", "only spectators can do this")
	ErrSeatOccupied          = newError("seat_occupied", "seat occupant is online")
	ErrSeatNotFound          = newError("seat_not_found", "seat or spectator not found")
	ErrTargetPlayerNotSeated = newError("target_not_found", "target player not found")

	ErrRateLimited   = newError("rate_limited", "too many requests")
	ErrBadPayload    = newError("bad_payload", "malformed message")
	ErrUnknownIntent = newError("unknown_intent", "unknown message type")
)

// Code returns the wire code of err, "internal" for foreign errors.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}
