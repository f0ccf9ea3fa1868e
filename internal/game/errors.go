package game

import "errors"

// Rejections. Every error returned by this package wraps one of these, so
// callers classify with errors.Is and the wire layer maps them to codes.
var (
	ErrInvalidSeat      = errors.New("invalid seat")
	ErrSeatOccupied     = errors.New("seat occupied")
	ErrInvalidBuyIn     = errors.New("invalid buy-in")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrNoActiveHand     = errors.New("no active hand")
	ErrOutOfTurn        = errors.New("out of turn")
	ErrIllegalAction    = errors.New("illegal action")

	ErrHandInProgress = errors.New("hand in progress")
	ErrNotSeated      = errors.New("not seated")
	ErrAlreadySeated  = errors.New("already seated")
	ErrNotInRoom      = errors.New("not in room")
)
