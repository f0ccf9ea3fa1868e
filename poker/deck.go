package poker

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrDeckExhausted is returned when more cards are requested than remain.
var ErrDeckExhausted = errors.New("poker: deck exhausted")

// Deck represents a standard 52-card deck
type Deck struct {
	cards   [52]Card
	next    int
	rng     *rand.Rand
	stacked []Card
}

// NewDeck creates a new shuffled deck with explicit RNG
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("poker: deck requires an rng")
	}
	d := &Deck{rng: rng}
	d.Shuffle()
	return d
}

// NewStackedDeck creates a deck that deals the given cards first, followed by
// the remaining cards in canonical order. Shuffle restores the stacked order.
// It exists for deterministic tests and replays.
func NewStackedDeck(cards ...Card) (*Deck, error) {
	var seen uint64
	for _, c := range cards {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrInvalidCard, uint8(c))
		}
		if seen&(1<<c) != 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen |= 1 << c
	}
	d := &Deck{stacked: append([]Card(nil), cards...)}
	d.Shuffle()
	return d, nil
}

// Shuffle resets the deck to all 52 cards and permutes them with Fisher-Yates.
func (d *Deck) Shuffle() {
	d.next = 0
	if d.stacked != nil {
		d.restack()
		return
	}
	for i := range d.cards {
		d.cards[i] = Card(i)
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

func (d *Deck) restack() {
	var used uint64
	i := 0
	for _, c := range d.stacked {
		d.cards[i] = c
		used |= 1 << c
		i++
	}
	for c := Card(0); c < 52; c++ {
		if used&(1<<c) == 0 {
			d.cards[i] = c
			i++
		}
	}
}

// Deal removes and returns the next n cards.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 {
		return nil, fmt.Errorf("poker: cannot deal %d cards", n)
	}
	if n > d.Remaining() {
		return nil, fmt.Errorf("%w: want %d, %d remaining", ErrDeckExhausted, n, d.Remaining())
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
