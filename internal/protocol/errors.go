package protocol

import (
	"errors"
	"time"

	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/poker"
)

// Error codes sent in error messages.
const (
	CodeInvalidSeat      = "invalid_seat"
	CodeSeatOccupied     = "seat_occupied"
	CodeInvalidBuyIn     = "invalid_buy_in"
	CodeNotEnoughPlayers = "not_enough_players"
	CodeNoActiveHand     = "no_active_hand"
	CodeOutOfTurn        = "out_of_turn"
	CodeIllegalAction    = "illegal_action"
	CodeDeckExhausted    = "deck_exhausted"
	CodeNotSeated        = "not_seated"
	CodeAlreadySeated    = "already_seated"
	CodeHandInProgress   = "hand_in_progress"
	CodeNotInRoom        = "not_in_room"
	CodeInvalidRoom      = "invalid_room"
	CodeInvalidMessage   = "invalid_message"
	CodeInternal         = "internal_error"
)

var codes = []struct {
	err  error
	code string
}{
	{game.ErrInvalidSeat, CodeInvalidSeat},
	{game.ErrSeatOccupied, CodeSeatOccupied},
	{game.ErrInvalidBuyIn, CodeInvalidBuyIn},
	{game.ErrNotEnoughPlayers, CodeNotEnoughPlayers},
	{game.ErrNoActiveHand, CodeNoActiveHand},
	{game.ErrOutOfTurn, CodeOutOfTurn},
	{game.ErrIllegalAction, CodeIllegalAction},
	{poker.ErrDeckExhausted, CodeDeckExhausted},
	{game.ErrNotSeated, CodeNotSeated},
	{game.ErrAlreadySeated, CodeAlreadySeated},
	{game.ErrHandInProgress, CodeHandInProgress},
	{game.ErrNotInRoom, CodeNotInRoom},
	{ErrInvalidMessage, CodeInvalidMessage},
}

// CodeFor maps an error to its wire code.
func CodeFor(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// NewError builds an error message for err. Internal errors are not
// described to clients.
func NewError(err error, now time.Time) *Message {
	code := CodeFor(err)
	text := err.Error()
	if code == CodeInternal {
		text = "internal error"
	}
	msg, _ := New(TypeError, Error{Code: code, Message: text}, now)
	return msg
}
