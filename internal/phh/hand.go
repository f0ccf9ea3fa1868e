package phh

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/poker"
)

// FromHand converts a finished hand into PHH form. Aborted hands have no
// meaningful history and are rejected.
func FromHand(table string, seatCount int, h *game.Hand, now time.Time) (*HandHistory, error) {
	res := h.Result()
	if res == nil {
		return nil, fmt.Errorf("phh: hand %s is still running", h.ID())
	}
	if res.Aborted {
		return nil, fmt.Errorf("phh: hand %s was aborted", h.ID())
	}

	players := positions(h)
	pos := make(map[int]int, len(players))
	for i, p := range players {
		pos[p.Seat] = i
	}

	cfg := h.Config()
	now = now.UTC()
	hh := &HandHistory{
		Variant:           "NT",
		Table:             table,
		SeatCount:         seatCount,
		Antes:             make([]int, len(players)),
		BlindsOrStraddles: make([]int, len(players)),
		MinBet:            cfg.BigBlind,
		HandID:            h.ID(),
		Time:              now.Format(time.TimeOnly),
		TimeZone:          "UTC",
		Day:               now.Day(),
		Month:             int(now.Month()),
		Year:              now.Year(),
	}
	for i, p := range players {
		hh.Seats = append(hh.Seats, p.Seat+1)
		hh.Players = append(hh.Players, p.Name)
		hh.StartingStacks = append(hh.StartingStacks, p.StartStack())
		hh.FinishingStacks = append(hh.FinishingStacks, res.Stacks[p.Seat])
		hh.Winnings = append(hh.Winnings, res.Won(p.Seat))
		hh.Actions = append(hh.Actions, fmt.Sprintf("d dh p%d %s", i+1, cardRun(p.Hole)))
	}

	board := res.Board
	street := game.Preflop
	current := cfg.BigBlind
	dealTo := func(target game.Street) {
		for street < target && street < game.River {
			street++
			lo, hi := boardRange(street)
			if hi > len(board) {
				return
			}
			hh.Actions = append(hh.Actions, "d db "+cardRun(board[lo:hi]))
			current = 0
		}
	}

	for _, ev := range h.History() {
		if ev.Blind {
			hh.BlindsOrStraddles[pos[ev.Seat]] = ev.Added
			continue
		}
		dealTo(ev.Street)
		hh.Actions = append(hh.Actions, FormatAction(pos[ev.Seat], ev, &current))
	}
	dealTo(streetForBoard(len(board)))

	for _, r := range res.Showdown {
		hh.Actions = append(hh.Actions, fmt.Sprintf("p%d sm %s", pos[r.Seat]+1, cardRun(r.Hole)))
	}
	return hh, nil
}

// FormatAction renders a logged action for the player at position pos.
// current tracks the street bet so that all-ins are written as a call or a
// raise as appropriate.
func FormatAction(pos int, ev game.Event, current *int) string {
	player := fmt.Sprintf("p%d", pos+1)
	switch ev.Action {
	case game.Fold:
		return player + " f"
	case game.Check, game.Call:
		return player + " cc"
	case game.AllIn:
		if ev.BetTo <= *current {
			return player + " cc"
		}
	}
	*current = ev.BetTo
	return fmt.Sprintf("%s cbr %d", player, ev.BetTo)
}

// positions orders the players clockwise from the small blind.
func positions(h *game.Hand) []game.Player {
	players := h.Players()
	start := 0
	for i, p := range players {
		if p.Seat == h.SmallBlindSeat() {
			start = i
		}
	}
	return slices.Concat(players[start:], players[:start])
}

func boardRange(s game.Street) (int, int) {
	switch s {
	case game.Flop:
		return 0, 3
	case game.Turn:
		return 3, 4
	default:
		return 4, 5
	}
}

func streetForBoard(n int) game.Street {
	switch {
	case n >= 5:
		return game.River
	case n == 4:
		return game.Turn
	case n >= 3:
		return game.Flop
	default:
		return game.Preflop
	}
}

// cardRun writes cards back to back, e.g. "AsKd".
func cardRun(cards []poker.Card) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(c.String())
	}
	return b.String()
}
