package game

import (
	"fmt"
	"slices"
	"sort"

	"github.com/lox/pokerrooms/poker"
)

// HandConfig holds the fixed parameters of one hand.
type HandConfig struct {
	ID         string
	Button     int // seat index; must be one of the entrants
	SmallBlind int
	BigBlind   int
}

// Entrant is a seat taking part in a hand.
type Entrant struct {
	Seat     int
	Identity string
	Name     string
	Stack    int
}

// Event is one entry of the hand's action log.
type Event struct {
	Street Street
	Seat   int
	Action Action
	Added  int  // chips added by this action
	BetTo  int  // seat's street bet afterwards
	Blind  bool // blind post
	Forced bool // applied by the server on timeout or leave
}

// Transition describes the effect of one action.
type Transition struct {
	Seat          int
	Action        Action
	Added         int
	NewCards      []poker.Card // board cards dealt as a consequence
	StreetChanged bool
	Complete      bool
}

// Award is a payout from one pot.
type Award struct {
	Pot    int
	Seat   int
	Amount int
}

// Reveal is a hand shown down.
type Reveal struct {
	Seat     int
	Hole     []poker.Card
	Strength poker.HandStrength
	BestFive []poker.Card
}

// Result is the outcome of a finished hand.
type Result struct {
	HandID      string
	Board       []poker.Card
	Pots        []Pot
	Awards      []Award
	Showdown    []Reveal
	Uncontested bool
	Aborted     bool
	Stacks      map[int]int // final stack per seat
}

// Won returns the total seat collected.
func (r *Result) Won(seat int) int {
	total := 0
	for _, a := range r.Awards {
		if a.Seat == seat {
			total += a.Amount
		}
	}
	return total
}

// Hand is the state machine for a single hand of Texas Hold'em. It is not
// safe for concurrent use.
type Hand struct {
	cfg     HandConfig
	players []*Player // ordered by seat
	button  int       // index into players
	sb, bb  int       // indices into players
	deck    *poker.Deck
	eval    Evaluator
	board   []poker.Card
	street  Street
	round   *BettingRound
	log     []Event
	result  *Result
}

// NewHand shuffles, deals two hole cards to every entrant with chips, posts
// the blinds and opens preflop betting. Heads-up the button posts the small
// blind and acts first preflop.
func NewHand(cfg HandConfig, entrants []Entrant, opts ...HandOption) (*Hand, error) {
	if cfg.SmallBlind <= 0 || cfg.BigBlind < cfg.SmallBlind {
		return nil, fmt.Errorf("game: invalid blinds %d/%d", cfg.SmallBlind, cfg.BigBlind)
	}

	seen := make(map[int]bool, len(entrants))
	players := make([]*Player, 0, len(entrants))
	for _, e := range entrants {
		if e.Seat < 0 || seen[e.Seat] {
			return nil, fmt.Errorf("%w: entrant seat %d", ErrInvalidSeat, e.Seat)
		}
		seen[e.Seat] = true
		if e.Stack <= 0 {
			continue
		}
		players = append(players, &Player{
			Seat:       e.Seat,
			Identity:   e.Identity,
			Name:       e.Name,
			Stack:      e.Stack,
			startStack: e.Stack,
		})
	}
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: %d with chips", ErrNotEnoughPlayers, len(players))
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Seat < players[j].Seat })

	o := buildHandOptions(opts)
	h := &Hand{
		cfg:     cfg,
		players: players,
		button:  -1,
		deck:    o.deck,
		eval:    o.evaluator,
		street:  Preflop,
	}
	for i, p := range players {
		if p.Seat == cfg.Button {
			h.button = i
		}
	}
	if h.button < 0 {
		return nil, fmt.Errorf("%w: button seat %d has no entrant", ErrInvalidSeat, cfg.Button)
	}

	n := len(players)
	h.deck.Shuffle()
	for range 2 {
		for step := 1; step <= n; step++ {
			p := players[(h.button+step)%n]
			cards, err := h.deck.Deal(1)
			if err != nil {
				return nil, fmt.Errorf("dealing hole cards: %w", err)
			}
			p.Hole = append(p.Hole, cards[0])
		}
	}

	h.sb, h.bb = h.button, (h.button+1)%n
	if n > 2 {
		h.sb, h.bb = (h.button+1)%n, (h.button+2)%n
	}
	h.post(h.sb, cfg.SmallBlind)
	h.post(h.bb, cfg.BigBlind)

	// Left of the big blind; heads-up that is the button.
	first := players[(h.bb+1)%n].Seat
	h.round = NewBettingRound(Preflop, players, first, cfg.BigBlind, cfg.BigBlind)

	var tr Transition
	if err := h.progress(&tr); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Hand) post(idx, blind int) {
	p := h.players[idx]
	pay := min(blind, p.Stack)
	p.commit(pay)
	h.log = append(h.log, Event{Street: Preflop, Seat: p.Seat, Action: Bet, Added: pay, BetTo: p.Bet, Blind: true})
}

// Act applies a player's decision. Only the acting seat may act.
func (h *Hand) Act(seat int, action Action, amount int) (Transition, error) {
	if h.Complete() {
		return Transition{}, ErrNoActiveHand
	}
	act, added, err := h.round.Act(seat, action, amount)
	if err != nil {
		return Transition{}, err
	}
	p := h.player(seat)
	h.log = append(h.log, Event{Street: h.street, Seat: seat, Action: act, Added: added, BetTo: p.Bet})

	tr := Transition{Seat: seat, Action: act, Added: added}
	return tr, h.progress(&tr)
}

// Fold folds seat out of turn, e.g. when its occupant leaves. Seats that are
// all-in have nothing left to decide and stay in the hand.
func (h *Hand) Fold(seat int) (Transition, error) {
	if h.Complete() {
		return Transition{}, ErrNoActiveHand
	}
	p := h.player(seat)
	if p == nil {
		return Transition{}, fmt.Errorf("%w: seat %d is not in the hand", ErrInvalidSeat, seat)
	}
	tr := Transition{Seat: seat, Action: Fold}
	if p.Folded || p.AllIn {
		return tr, nil
	}
	if err := h.round.ForceFold(seat); err != nil {
		return Transition{}, err
	}
	h.log = append(h.log, Event{Street: h.street, Seat: seat, Action: Fold, BetTo: p.Bet, Forced: true})
	return tr, h.progress(&tr)
}

// TimeoutAction acts for the acting seat when its clock runs out: check when
// nothing is owed, fold otherwise.
func (h *Hand) TimeoutAction(seat int) (Transition, error) {
	if h.Complete() {
		return Transition{}, ErrNoActiveHand
	}
	if h.ActingSeat() != seat {
		return Transition{}, fmt.Errorf("%w: seat %d timed out but seat %d is acting", ErrOutOfTurn, seat, h.ActingSeat())
	}
	action := Check
	if h.round.AmountToCall(seat) > 0 {
		action = Fold
	}
	idx := len(h.log)
	tr, err := h.Act(seat, action, 0)
	if idx < len(h.log) {
		h.log[idx].Forced = true
	}
	return tr, err
}

// Abort ends the hand without a showdown and restores every stack to its
// value at the start of the hand.
func (h *Hand) Abort() *Result {
	if h.Complete() {
		return h.result
	}
	for _, p := range h.players {
		p.Stack = p.startStack
		p.Bet = 0
		p.Total = 0
	}
	h.finish(Result{Aborted: true})
	return h.result
}

// progress closes settled rounds: uncalled chips go back, the next street is
// dealt, and the hand ends when one seat is left or the river closes. When no
// seat can act any more the remaining board is run out.
func (h *Hand) progress(tr *Transition) error {
	for h.round.State() == Settled {
		h.returnUncalled()
		if h.live() <= 1 {
			h.finishUncontested()
			tr.Complete = true
			return nil
		}
		for _, p := range h.players {
			p.Bet = 0
		}
		if h.street == River {
			if err := h.showdown(); err != nil {
				return err
			}
			tr.Complete = true
			return nil
		}

		n := 1
		if h.street == Preflop {
			n = 3
		}
		cards, err := h.deck.Deal(n)
		if err != nil {
			return fmt.Errorf("dealing %s: %w", h.street+1, err)
		}
		h.board = append(h.board, cards...)
		h.street++
		tr.NewCards = append(tr.NewCards, cards...)
		tr.StreetChanged = true

		first := h.players[(h.button+1)%len(h.players)].Seat
		h.round = NewBettingRound(h.street, h.players, first, 0, h.cfg.BigBlind)
	}
	return nil
}

// returnUncalled gives back the part of the top street bet nobody matched.
// Chips of a seat that was folded by force stay in the pot.
func (h *Hand) returnUncalled() {
	var top *Player
	second := 0
	for _, p := range h.players {
		switch {
		case top == nil || p.Bet > top.Bet:
			if top != nil {
				second = max(second, top.Bet)
			}
			top = p
		default:
			second = max(second, p.Bet)
		}
	}
	if top != nil && !top.Folded && top.Bet > second {
		top.refund(top.Bet - second)
	}
}

func (h *Hand) live() int {
	n := 0
	for _, p := range h.players {
		if !p.Folded {
			n++
		}
	}
	return n
}

func (h *Hand) finishUncontested() {
	var winner *Player
	total := 0
	for _, p := range h.players {
		total += p.Total
		if !p.Folded {
			winner = p
		}
	}
	winner.Stack += total
	h.finish(Result{
		Uncontested: true,
		Pots:        []Pot{{Amount: total, Eligible: []int{winner.Seat}}},
		Awards:      []Award{{Pot: 0, Seat: winner.Seat, Amount: total}},
	})
}

func (h *Hand) showdown() error {
	h.street = Showdown
	order := h.clockwiseFromButton()

	strengths := make(map[int]poker.HandStrength)
	var reveals []Reveal
	var live []int
	for _, p := range order {
		if p.Folded {
			continue
		}
		cards := append(slices.Clone(p.Hole), h.board...)
		hs, five, err := h.eval(cards)
		if err != nil {
			return fmt.Errorf("evaluating seat %d: %w", p.Seat, err)
		}
		strengths[p.Seat] = hs
		live = append(live, p.Seat)
		reveals = append(reveals, Reveal{Seat: p.Seat, Hole: slices.Clone(p.Hole), Strength: hs, BestFive: five})
	}

	pots := h.Pots()
	var awards []Award
	for i, pot := range pots {
		eligible := pot.Eligible
		if len(eligible) == 0 {
			eligible = live
		}
		var best poker.HandStrength
		var winners []int
		for _, seat := range live {
			if !slices.Contains(eligible, seat) {
				continue
			}
			switch hs := strengths[seat]; {
			case len(winners) == 0 || hs > best:
				best, winners = hs, []int{seat}
			case hs == best:
				winners = append(winners, seat)
			}
		}
		for j, share := range splitPot(pot.Amount, winners) {
			h.player(winners[j]).Stack += share
			awards = append(awards, Award{Pot: i, Seat: winners[j], Amount: share})
		}
	}

	h.finish(Result{Pots: pots, Awards: awards, Showdown: reveals})
	return nil
}

func (h *Hand) finish(r Result) {
	r.HandID = h.cfg.ID
	r.Board = slices.Clone(h.board)
	r.Stacks = make(map[int]int, len(h.players))
	for _, p := range h.players {
		r.Stacks[p.Seat] = p.Stack
	}
	h.street = Complete
	h.result = &r
}

// clockwiseFromButton lists players starting left of the button and ending
// on it.
func (h *Hand) clockwiseFromButton() []*Player {
	n := len(h.players)
	out := make([]*Player, 0, n)
	for step := 1; step <= n; step++ {
		out = append(out, h.players[(h.button+step)%n])
	}
	return out
}

func (h *Hand) player(seat int) *Player {
	for _, p := range h.players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// ID returns the hand id.
func (h *Hand) ID() string { return h.cfg.ID }

// Config returns the parameters the hand was created with.
func (h *Hand) Config() HandConfig { return h.cfg }

// Button returns the button seat.
func (h *Hand) Button() int { return h.players[h.button].Seat }

// SmallBlindSeat returns the seat that posted the small blind.
func (h *Hand) SmallBlindSeat() int { return h.players[h.sb].Seat }

// BigBlindSeat returns the seat that posted the big blind.
func (h *Hand) BigBlindSeat() int { return h.players[h.bb].Seat }

// Street returns the current street; Complete once the hand has ended.
func (h *Hand) Street() Street { return h.street }

// Complete reports whether the hand has ended.
func (h *Hand) Complete() bool { return h.street == Complete }

// Board returns a copy of the community cards.
func (h *Hand) Board() []poker.Card { return slices.Clone(h.board) }

// Result returns the outcome, or nil while the hand is running.
func (h *Hand) Result() *Result { return h.result }

// History returns the action log, blinds included.
func (h *Hand) History() []Event { return slices.Clone(h.log) }

// PotTotal is every chip committed this hand, street bets included. It is
// zero once the hand is complete.
func (h *Hand) PotTotal() int {
	if h.Complete() {
		return 0
	}
	total := 0
	for _, p := range h.players {
		total += p.Total
	}
	return total
}

// Pots returns the main and side pots implied by current contributions.
func (h *Hand) Pots() []Pot {
	if h.Complete() {
		return nil
	}
	contribs := make([]Contribution, len(h.players))
	for i, p := range h.players {
		contribs[i] = Contribution{Seat: p.Seat, Amount: p.Total, Folded: p.Folded, AllIn: p.AllIn}
	}
	return BuildPots(contribs)
}

// ActingSeat returns the seat to act, or -1.
func (h *Hand) ActingSeat() int {
	if h.Complete() {
		return -1
	}
	return h.round.ActingSeat()
}

// AmountToCall returns the chips seat must add to call.
func (h *Hand) AmountToCall(seat int) int {
	if h.Complete() {
		return 0
	}
	return h.round.AmountToCall(seat)
}

// CurrentBet is the street bet to match.
func (h *Hand) CurrentBet() int {
	if h.Complete() {
		return 0
	}
	return h.round.CurrentBet()
}

// MinRaiseTo is the street bet level of the smallest legal raise.
func (h *Hand) MinRaiseTo() int {
	if h.Complete() {
		return 0
	}
	return h.round.MinRaiseTo()
}

// MinRaiseBy is the number of chips seat must add to make the smallest legal
// raise, capped at its stack.
func (h *Hand) MinRaiseBy(seat int) int {
	p := h.player(seat)
	if p == nil || h.Complete() {
		return 0
	}
	return min(h.round.MinRaiseTo()-p.Bet, p.Stack)
}

// Player returns a copy of seat's hand state.
func (h *Hand) Player(seat int) (Player, bool) {
	p := h.player(seat)
	if p == nil {
		return Player{}, false
	}
	cp := *p
	cp.Hole = slices.Clone(p.Hole)
	return cp, true
}

// Players returns copies of every player in seat order.
func (h *Hand) Players() []Player {
	out := make([]Player, len(h.players))
	for i, p := range h.players {
		out[i] = *p
		out[i].Hole = slices.Clone(p.Hole)
	}
	return out
}
