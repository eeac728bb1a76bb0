package room

import "errors"

// Request-local failures. Every operation validates before mutating, so a
// returned error guarantees zero state change. The gateway reports these
// only to the requesting connection.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomAlreadyExists  = errors.New("room already exists")
	ErrRoomFull           = errors.New("room is full")
	ErrNotPlaying         = errors.New("game is not in progress")
	ErrWrongTurn          = errors.New("not your turn")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrNoHistory          = errors.New("no moves to undo")
	ErrNotAPlayer         = errors.New("you are not a player in this room")
	ErrNotInRoom          = errors.New("you are not in this room")
	ErrForbidden          = errors.New("you are not allowed to choose a color")
	ErrColorChoicePending = errors.New("waiting for the loser to choose a color")
	ErrNotEnoughPlayers   = errors.New("not enough players to restart")
	ErrInvalidMessage     = errors.New("message is empty or too long")
	ErrAlreadyPlayer      = errors.New("you are already a player in this room")
	ErrNoMatchingRecord   = errors.New("no matching player or spectator record")
)
