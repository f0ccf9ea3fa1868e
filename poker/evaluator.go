package poker

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
)

// ErrInvalidCardCount is returned when evaluating fewer than 5 or more than 7 cards.
var ErrInvalidCardCount = errors.New("poker: evaluate needs 5 to 7 cards")

// Category enumerates the categories of poker hands ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandStrength is a totally ordered hand value. Higher values are stronger and
// equal values split the pot.
//
// Layout: the category occupies bits 20-23 and up to five ranks follow in
// 4-bit nibbles (most significant first), e.g. trips rank then two kickers.
type HandStrength uint32

const categoryShift = 20

// Category returns the hand category.
func (hs HandStrength) Category() Category {
	return Category(hs >> categoryShift)
}

// Ranks returns the significant ranks in comparison order.
func (hs HandStrength) Ranks() []Rank {
	n := rankCount[hs.Category()]
	ranks := make([]Rank, n)
	for i := 0; i < n; i++ {
		ranks[i] = Rank(hs >> (16 - 4*uint(i)) & 0xF)
	}
	return ranks
}

var rankCount = [...]int{
	HighCard:      5,
	Pair:          4,
	TwoPair:       3,
	ThreeOfAKind:  3,
	Straight:      1,
	Flush:         5,
	FullHouse:     2,
	FourOfAKind:   2,
	StraightFlush: 1,
}

// String returns a human-readable hand description.
func (hs HandStrength) String() string {
	r := hs.Ranks()
	switch hs.Category() {
	case StraightFlush:
		if r[0] == Ace {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", rankName(r[0]))
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", rankPlural(r[0]))
	case FullHouse:
		return fmt.Sprintf("Full House, %s full of %s", rankPlural(r[0]), rankPlural(r[1]))
	case Flush:
		return fmt.Sprintf("Flush, %s high", rankName(r[0]))
	case Straight:
		return fmt.Sprintf("Straight, %s high", rankName(r[0]))
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", rankPlural(r[0]))
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", rankPlural(r[0]), rankPlural(r[1]))
	case Pair:
		return fmt.Sprintf("Pair of %s", rankPlural(r[0]))
	default:
		return fmt.Sprintf("High Card, %s", rankName(r[0]))
	}
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 on a tie.
func Compare(a, b HandStrength) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// Evaluate ranks the best five card hand that can be made from 5 to 7 cards.
func Evaluate(cards []Card) (HandStrength, error) {
	masks, err := suitMasks(cards)
	if err != nil {
		return 0, err
	}
	return rankFromMasks(masks), nil
}

// BestHand evaluates cards and also returns the five cards forming the best
// hand, ordered from highest to lowest rank.
func BestHand(cards []Card) (HandStrength, []Card, error) {
	best, err := Evaluate(cards)
	if err != nil {
		return 0, nil, err
	}

	five := make([]Card, 5)
	var idx [5]int
	var found bool
	// Enumerate the (at most 21) five card subsets and keep the first that
	// reaches the overall strength.
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if found {
			return
		}
		if depth == 5 {
			var masks [4]uint16
			for i, j := range idx {
				five[i] = cards[j]
				masks[cards[j].Suit()] |= 1 << cards[j].Rank()
			}
			if rankFromMasks(masks) == best {
				found = true
			}
			return
		}
		for i := start; i <= len(cards)-(5-depth); i++ {
			idx[depth] = i
			walk(i+1, depth+1)
			if found {
				return
			}
		}
	}
	walk(0, 0)

	sort.SliceStable(five, func(i, j int) bool { return five[i].Rank() > five[j].Rank() })
	return best, five, nil
}

func suitMasks(cards []Card) ([4]uint16, error) {
	var masks [4]uint16
	if len(cards) < 5 || len(cards) > 7 {
		return masks, fmt.Errorf("%w: got %d", ErrInvalidCardCount, len(cards))
	}
	var seen uint64
	for _, c := range cards {
		if !c.Valid() {
			return masks, fmt.Errorf("%w: %d", ErrInvalidCard, uint8(c))
		}
		if seen&(1<<c) != 0 {
			return masks, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen |= 1 << c
		masks[c.Suit()] |= 1 << c.Rank()
	}
	return masks, nil
}

func rankFromMasks(suitMasks [4]uint16) HandStrength {
	var best HandStrength

	// Flushes are scored separately and compared against the best non-flush
	// hand so category precedence falls out of the encoding.
	for _, suitMask := range suitMasks {
		if bits.OnesCount16(suitMask) < 5 {
			continue
		}
		var strength HandStrength
		if high, ok := straightHigh(suitMask); ok {
			strength = pack(StraightFlush, high)
		} else {
			strength = pack(Flush, topRanks(suitMask, 5)...)
		}
		if strength > best {
			best = strength
		}
	}

	if other := rankWithoutFlush(suitMasks); other > best {
		best = other
	}
	return best
}

func rankWithoutFlush(suitMasks [4]uint16) HandStrength {
	s0, s1, s2, s3 := suitMasks[0], suitMasks[1], suitMasks[2], suitMasks[3]
	rankMask := s0 | s1 | s2 | s3

	quadsMask := s0 & s1 & s2 & s3
	tripCandidates := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	tripsMask := tripCandidates &^ quadsMask
	pairsMask := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ tripCandidates

	if quadsMask != 0 {
		quad := highestRank(quadsMask)
		kicker := highestRank(rankMask &^ rankBit(quad))
		return pack(FourOfAKind, quad, kicker)
	}

	if tripsMask != 0 {
		trip := highestRank(tripsMask)
		if rest := (tripsMask &^ rankBit(trip)) | pairsMask; rest != 0 {
			return pack(FullHouse, trip, highestRank(rest))
		}
	}

	if high, ok := straightHigh(rankMask); ok {
		return pack(Straight, high)
	}

	if tripsMask != 0 {
		trip := highestRank(tripsMask)
		return pack(ThreeOfAKind, append([]Rank{trip}, topRanks(rankMask&^rankBit(trip), 2)...)...)
	}

	switch bits.OnesCount16(pairsMask) {
	case 0:
		return pack(HighCard, topRanks(rankMask, 5)...)
	case 1:
		pair := highestRank(pairsMask)
		return pack(Pair, append([]Rank{pair}, topRanks(rankMask&^rankBit(pair), 3)...)...)
	default:
		high := highestRank(pairsMask)
		low := highestRank(pairsMask &^ rankBit(high))
		kicker := highestRank(rankMask &^ rankBit(high) &^ rankBit(low))
		return pack(TwoPair, high, low, kicker)
	}
}

func pack(category Category, ranks ...Rank) HandStrength {
	hs := HandStrength(category) << categoryShift
	for i, r := range ranks {
		if i == 5 {
			break
		}
		hs |= HandStrength(r) << (16 - 4*uint(i))
	}
	return hs
}

const wheelMask = uint16(1)<<Ace | 0xF

// straightHigh returns the top rank of the best straight in mask.
func straightHigh(mask uint16) (Rank, bool) {
	for high := int(Ace); high >= int(Six); high-- {
		window := uint16(0x1F) << uint(high-4)
		if mask&window == window {
			return Rank(high), true
		}
	}
	if mask&wheelMask == wheelMask {
		return Five, true
	}
	return 0, false
}

func highestRank(mask uint16) Rank {
	return Rank(15 - bits.LeadingZeros16(mask))
}

func rankBit(r Rank) uint16 {
	return 1 << r
}

func topRanks(mask uint16, n int) []Rank {
	ranks := make([]Rank, 0, n)
	for mask != 0 && len(ranks) < n {
		r := highestRank(mask)
		ranks = append(ranks, r)
		mask &^= rankBit(r)
	}
	return ranks
}

var rankNames = [...]string{"Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine", "Ten", "Jack", "Queen", "King", "Ace"}

func rankName(r Rank) string {
	if int(r) >= len(rankNames) {
		return "?"
	}
	return rankNames[r]
}

func rankPlural(r Rank) string {
	if r == Six {
		return "Sixes"
	}
	return rankName(r) + "s"
}
