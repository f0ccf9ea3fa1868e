// Package game implements the rules of a single table of no-limit Texas
// Hold'em: the seat registry, betting rounds, pot construction and the hand
// state machine.
//
// # Basic Usage
//
//	h, err := game.NewHand(game.HandConfig{ID: id, Button: 0, SmallBlind: 5, BigBlind: 10},
//	    []game.Entrant{{Seat: 0, Stack: 1000}, {Seat: 1, Stack: 1000}})
//	tr, err := h.Act(h.ActingSeat(), game.Call, 0)
//	if tr.Complete {
//	    result := h.Result()
//	}
//
// # Deterministic Testing
//
// Pass a seeded generator or a stacked deck:
//
//	h, _ := game.NewHand(cfg, entrants, game.WithRand(randutil.New(42)))
//	deck, _ := poker.NewStackedDeck(poker.MustParseCards("As Ad Kc Kd")...)
//	h, _ := game.NewHand(cfg, entrants, game.WithDeck(deck))
//
// Hole cards are dealt one at a time starting left of the button, then the
// board in street order, with no burn cards.
//
// Nothing in this package is safe for concurrent use. The room that owns a
// hand serialises access to it.
package game
