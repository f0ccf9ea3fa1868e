package game

import (
	"fmt"
	"strings"
)

// Street represents the betting round
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
	Complete
)

var streetNames = [...]string{"preflop", "flop", "turn", "river", "showdown", "complete"}

func (s Street) String() string {
	if s < 0 || int(s) >= len(streetNames) {
		return "unknown"
	}
	return streetNames[s]
}

// ParseStreet parses a street name as sent on the wire.
func ParseStreet(s string) (Street, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range streetNames {
		if s == name {
			return Street(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown street %q", ErrIllegalAction, s)
}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

var actionNames = [...]string{"fold", "check", "call", "bet", "raise", "allin"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// ParseAction parses an action name. "all-in" and "all_in" are accepted
// spellings of allin.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "", "_", "").Replace(s)
	for i, name := range actionNames {
		if s == name {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrIllegalAction, s)
}

// RoundState tracks a betting round's lifecycle.
type RoundState int

const (
	Awaiting RoundState = iota
	InProgress
	Settled
)

func (s RoundState) String() string {
	switch s {
	case Awaiting:
		return "awaiting"
	case InProgress:
		return "in_progress"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// BettingRound runs the betting on one street. It operates on the hand's
// players (ordered by seat) and moves chips from stacks into street bets.
type BettingRound struct {
	street     Street
	players    []*Player
	currentBet int
	minRaise   int
	lastRaiser int
	acted      map[int]bool
	acting     int // index into players, -1 once settled
	state      RoundState
}

// NewBettingRound opens a round. firstSeat is the seat that acts first if it
// is able to; otherwise action starts at the next able seat clockwise.
// currentBet is the amount to match (the big blind preflop, zero after) and
// minRaise the minimum raise increment.
func NewBettingRound(street Street, players []*Player, firstSeat, currentBet, minRaise int) *BettingRound {
	br := &BettingRound{
		street:     street,
		players:    players,
		currentBet: currentBet,
		minRaise:   minRaise,
		lastRaiser: -1,
		acted:      make(map[int]bool, len(players)),
		acting:     -1,
	}
	if br.settled() {
		br.state = Settled
		return br
	}
	start := 0
	for i, p := range players {
		if p.Seat >= firstSeat {
			start = i
			break
		}
	}
	for step := 0; step < len(players); step++ {
		i := (start + step) % len(players)
		if br.pending(players[i]) {
			br.acting = i
			break
		}
	}
	if br.acting < 0 {
		br.state = Settled
	}
	return br
}

// Street returns the street this round belongs to.
func (br *BettingRound) Street() Street { return br.street }

// State returns the round's lifecycle state.
func (br *BettingRound) State() RoundState { return br.state }

// CurrentBet is the street bet every seat must match.
func (br *BettingRound) CurrentBet() int { return br.currentBet }

// MinRaise is the minimum raise increment.
func (br *BettingRound) MinRaise() int { return br.minRaise }

// LastRaiser is the seat that last increased the bet, or -1.
func (br *BettingRound) LastRaiser() int { return br.lastRaiser }

// ActingSeat returns the seat whose turn it is, or -1 once settled.
func (br *BettingRound) ActingSeat() int {
	if br.state == Settled || br.acting < 0 {
		return -1
	}
	return br.players[br.acting].Seat
}

// AmountToCall returns what seat must add to stay in, capped at its stack.
func (br *BettingRound) AmountToCall(seat int) int {
	p := br.player(seat)
	if p == nil || !p.CanAct() {
		return 0
	}
	return min(max(br.currentBet-p.Bet, 0), p.Stack)
}

// MinRaiseTo is the street bet level of the smallest legal raise.
func (br *BettingRound) MinRaiseTo() int {
	return br.currentBet + br.minRaise
}

// Act applies an action by seat. amount is the number of chips the seat adds;
// it is ignored for fold, check, call and allin. The action is normalised
// (e.g. a call with nothing owed becomes a check) and returned with the chips
// actually added.
func (br *BettingRound) Act(seat int, action Action, amount int) (Action, int, error) {
	if br.state == Settled || br.acting < 0 || br.players[br.acting].Seat != seat {
		return 0, 0, fmt.Errorf("%w: seat %d acted, acting seat is %d", ErrOutOfTurn, seat, br.ActingSeat())
	}
	p := br.players[br.acting]
	toCall := max(br.currentBet-p.Bet, 0)
	added := 0

	switch action {
	case Fold:
		p.Folded = true
	case Check:
		if toCall > 0 {
			return 0, 0, fmt.Errorf("%w: cannot check facing %d", ErrIllegalAction, toCall)
		}
	case Call:
		if toCall == 0 {
			action = Check
			break
		}
		pay := min(toCall, p.Stack)
		if amount > 0 && amount < pay {
			return 0, 0, fmt.Errorf("%w: call of %d is short of %d", ErrIllegalAction, amount, pay)
		}
		added = pay
		if pay == p.Stack {
			action = AllIn
		}
	case Bet, Raise:
		switch {
		case amount <= 0:
			return 0, 0, fmt.Errorf("%w: %s of %d", ErrIllegalAction, action, amount)
		case amount > p.Stack:
			return 0, 0, fmt.Errorf("%w: %s of %d exceeds stack %d", ErrIllegalAction, action, amount, p.Stack)
		case amount == p.Stack:
			action = AllIn
		case amount == toCall:
			action = Call
		case amount < toCall+br.minRaise:
			return 0, 0, fmt.Errorf("%w: %s of %d below minimum %d", ErrIllegalAction, action, amount, toCall+br.minRaise)
		case br.currentBet == 0:
			action = Bet
		default:
			action = Raise
		}
		added = amount
	case AllIn:
		added = p.Stack
	default:
		return 0, 0, fmt.Errorf("%w: unknown action %d", ErrIllegalAction, action)
	}

	if added > 0 {
		p.commit(added)
	}
	if p.Bet > br.currentBet {
		if raise := p.Bet - br.currentBet; raise >= br.minRaise {
			br.minRaise = raise
		}
		br.currentBet = p.Bet
		br.lastRaiser = seat
		clear(br.acted)
	}
	br.acted[seat] = true
	br.state = InProgress
	br.advance()
	return action, added, nil
}

// ForceFold folds seat regardless of whose turn it is.
func (br *BettingRound) ForceFold(seat int) error {
	p := br.player(seat)
	if p == nil {
		return fmt.Errorf("%w: seat %d is not in the hand", ErrInvalidSeat, seat)
	}
	if p.Folded {
		return nil
	}
	p.Folded = true
	if br.state == Settled {
		return nil
	}
	if br.settled() {
		br.state = Settled
		br.acting = -1
		return nil
	}
	if br.acting >= 0 && br.players[br.acting] == p {
		br.advance()
	}
	return nil
}

// advance moves the acting pointer clockwise to the next seat that still
// owes a decision, or settles the round.
func (br *BettingRound) advance() {
	if br.settled() {
		br.state = Settled
		br.acting = -1
		return
	}
	n := len(br.players)
	for step := 1; step <= n; step++ {
		i := (br.acting + step) % n
		if br.pending(br.players[i]) {
			br.acting = i
			return
		}
	}
	br.state = Settled
	br.acting = -1
}

func (br *BettingRound) pending(p *Player) bool {
	return p.CanAct() && (!br.acted[p.Seat] || p.Bet < br.currentBet)
}

func (br *BettingRound) settled() bool {
	inHand, able := 0, 0
	var lone *Player
	for _, p := range br.players {
		if p.Folded {
			continue
		}
		inHand++
		if p.CanAct() {
			able++
			lone = p
		}
	}
	if inHand <= 1 || able == 0 {
		return true
	}
	if able == 1 && lone.Bet >= br.currentBet {
		return true
	}
	for _, p := range br.players {
		if br.pending(p) {
			return false
		}
	}
	return true
}

func (br *BettingRound) player(seat int) *Player {
	for _, p := range br.players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}
