package room

import (
	"math/rand/v2"

	"github.com/coder/quartz"
	"github.com/lox/pokerrooms/internal/phh"
	"github.com/lox/pokerrooms/poker"
)

// DeckSource supplies the deck for the next hand.
type DeckSource func() (*poker.Deck, error)

// Recorder persists the history of finished hands.
type Recorder interface {
	Record(hand *phh.HandHistory) error
}

// DirRecorder writes each hand to <Dir>/<room>/<hand>.phh.
type DirRecorder struct {
	Dir string
}

// Record implements Recorder.
func (d DirRecorder) Record(hand *phh.HandHistory) error {
	_, err := phh.WriteFile(d.Dir, hand)
	return err
}

// Option configures rooms created by a Manager.
type Option func(*options)

type options struct {
	clock    quartz.Clock
	rng      func(code string) *rand.Rand
	decks    func(code string) DeckSource
	recorder Recorder
	validate func(code string) error
}

// WithClock drives turn and next-hand timers from clock.
func WithClock(clock quartz.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithRand supplies the shuffle generator for each new room.
func WithRand(fn func(code string) *rand.Rand) Option {
	return func(o *options) {
		o.rng = fn
	}
}

// WithDecks supplies a deck source per room, overriding WithRand.
func WithDecks(fn func(code string) DeckSource) Option {
	return func(o *options) {
		o.decks = fn
	}
}

// WithRecorder stores finished hands.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithCodeValidator rejects room codes before a room is created.
func WithCodeValidator(fn func(code string) error) Option {
	return func(o *options) {
		o.validate = fn
	}
}
