package game

import (
	"math/rand/v2"

	"github.com/lox/pokerrooms/internal/randutil"
	"github.com/lox/pokerrooms/poker"
)

// Evaluator scores a player's hole cards plus the board and reports the five
// cards that make the hand.
type Evaluator func(cards []poker.Card) (poker.HandStrength, []poker.Card, error)

// HandOption configures a Hand during creation.
type HandOption func(*handOptions)

type handOptions struct {
	deck      *poker.Deck
	rng       *rand.Rand
	evaluator Evaluator
}

// WithDeck deals from the given deck. It is shuffled (or restacked) before
// the deal. Overrides WithRand.
func WithDeck(deck *poker.Deck) HandOption {
	return func(o *handOptions) {
		o.deck = deck
	}
}

// WithRand shuffles a fresh deck with rng. Without it a crypto-seeded
// generator is used.
func WithRand(rng *rand.Rand) HandOption {
	return func(o *handOptions) {
		o.rng = rng
	}
}

// WithEvaluator replaces poker.BestHand at showdown.
func WithEvaluator(eval Evaluator) HandOption {
	return func(o *handOptions) {
		o.evaluator = eval
	}
}

func buildHandOptions(opts []HandOption) handOptions {
	o := handOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.evaluator == nil {
		o.evaluator = poker.BestHand
	}
	if o.deck == nil {
		rng := o.rng
		if rng == nil {
			rng = randutil.NewSecure()
		}
		o.deck = poker.NewDeck(rng)
	}
	return o
}
