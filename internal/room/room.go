// Package room coordinates a poker table shared by many connections. A Room
// owns the seats and the running hand, validates every intent against the
// sender's identity and broadcasts the resulting state to its subscribers.
package room

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/internal/gameid"
	"github.com/lox/pokerrooms/internal/phh"
	"github.com/lox/pokerrooms/internal/protocol"
	"github.com/lox/pokerrooms/poker"
)

// ErrClosed is returned by rooms that have been shut down.
var ErrClosed = errors.New("room closed")

// Subscriber receives room messages. Send must not block; a subscriber that
// cannot keep up should drop the message or disconnect itself.
type Subscriber interface {
	ID() string
	Send(msg *protocol.Message) error
}

type member struct {
	sub      Subscriber
	identity string
}

// Info summarises a room for listings.
type Info struct {
	Code        string `json:"code"`
	Seated      int    `json:"seated"`
	Subscribers int    `json:"subscribers"`
	HandActive  bool   `json:"handActive"`
	HandsPlayed int    `json:"handsPlayed"`
}

// Room is one table. All state is guarded by mu; timers re-enter through the
// same lock and discard themselves when superseded.
type Room struct {
	code     string
	cfg      Config
	logger   *log.Logger
	clock    quartz.Clock
	deck     DeckSource
	recorder Recorder

	mu           sync.Mutex
	seats        *game.Seats
	hand         *game.Hand
	button       int
	handCount    int
	members      map[string]*member // by connection id
	leaving      map[int]bool       // seats to vacate when the hand ends
	shown        map[int][]poker.Card
	turnTimer    *quartz.Timer
	turnSeq      uint64
	turnDeadline time.Time
	nextTimer    *quartz.Timer
	nextSeq      uint64
	closed       bool
}

func newRoom(code string, cfg Config, logger *log.Logger, clock quartz.Clock, deck DeckSource, recorder Recorder) *Room {
	return &Room{
		code:     code,
		cfg:      cfg,
		logger:   logger.WithPrefix("room").With("room", code),
		clock:    clock,
		deck:     deck,
		recorder: recorder,
		seats:    game.NewSeats(cfg.Seats),
		button:   -1,
		members:  make(map[string]*member),
		leaving:  make(map[int]bool),
		shown:    make(map[int][]poker.Card),
	}
}

// Code returns the room code.
func (r *Room) Code() string { return r.code }

// Join subscribes sub to the room under identity, generating one when empty.
// Joining with the identity of a seated player reclaims that seat. The
// subscriber receives roomJoined followed by a snapshot.
func (r *Room) Join(sub Subscriber, identity string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", ErrClosed
	}
	if identity == "" {
		identity = uuid.NewString()
	}
	m := &member{sub: sub, identity: identity}
	r.members[sub.ID()] = m

	seat, seated := r.seats.SeatOf(identity)
	r.send(m, protocol.TypeRoomJoined, protocol.RoomJoined{
		RoomCode:   r.code,
		PlayerID:   identity,
		SeatIndex:  seat,
		SeatCount:  r.seats.Len(),
		SmallBlind: r.cfg.SmallBlind,
		BigBlind:   r.cfg.BigBlind,
	})
	r.send(m, protocol.TypeTableSnapshot, r.snapshot(identity))
	if seated {
		r.broadcastPlayers()
	}

	r.logger.Info("Subscriber joined", "conn", sub.ID(), "player", identity, "seat", seat)
	return identity, nil
}

// Leave unsubscribes a connection. Its seat stays; if it was the acting seat
// and no other connection holds the identity, its clock is cut to the
// disconnect grace period.
func (r *Room) Leave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[connID]
	if !ok {
		return
	}
	delete(r.members, connID)
	r.logger.Info("Subscriber left", "conn", connID, "player", m.identity)

	seat, seated := r.seats.SeatOf(m.identity)
	if !seated || r.connected(m.identity) {
		return
	}
	r.broadcastPlayers()
	if r.hand != nil && r.hand.ActingSeat() == seat {
		r.announceTurn(min(r.cfg.DisconnectGrace, r.remaining()))
	}
}

// JoinSeat seats the connection's player.
func (r *Room) JoinSeat(connID string, req protocol.JoinSeat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[connID]
	if !ok {
		return game.ErrNotInRoom
	}
	buyIn := r.cfg.DefaultBuyIn
	if req.BuyIn != nil {
		buyIn = *req.BuyIn
	}
	if r.cfg.MaxBuyIn > 0 && buyIn > r.cfg.MaxBuyIn {
		return fmt.Errorf("%w: %d exceeds the maximum of %d", game.ErrInvalidBuyIn, buyIn, r.cfg.MaxBuyIn)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fmt.Sprintf("Player %d", req.SeatIndex+1)
	}
	if _, err := r.seats.Join(req.SeatIndex, m.identity, name, buyIn); err != nil {
		return err
	}

	r.logger.Info("Player took seat", "player", m.identity, "name", name, "seat", req.SeatIndex, "buyIn", buyIn)
	r.broadcastPlayers()
	r.maybeScheduleNext()
	return nil
}

// LeaveSeat gives up the connection's seat. During a hand the seat is folded
// and vacated once the hand ends.
func (r *Room) LeaveSeat(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[connID]
	if !ok {
		return game.ErrNotInRoom
	}
	seat, seated := r.seats.SeatOf(m.identity)
	if !seated {
		return game.ErrNotSeated
	}

	if r.hand != nil {
		if p, in := r.hand.Player(seat); in {
			r.leaving[seat] = true
			r.logger.Info("Player leaving after hand", "player", m.identity, "seat", seat)
			if p.Folded || p.AllIn {
				return nil
			}
			prev := r.hand.ActingSeat()
			tr, err := r.hand.Fold(seat)
			if err != nil {
				return r.failHand(err)
			}
			r.afterAction(tr, prev)
			return nil
		}
	}

	if _, err := r.seats.Leave(seat); err != nil {
		return err
	}
	r.logger.Info("Player left seat", "player", m.identity, "seat", seat)
	r.broadcastPlayers()
	return nil
}

// StartHand deals a new hand on behalf of a seated player.
func (r *Room) StartHand(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[connID]
	if !ok {
		return game.ErrNotInRoom
	}
	if _, seated := r.seats.SeatOf(m.identity); !seated {
		return game.ErrNotSeated
	}
	return r.startHand()
}

// SubmitAction applies a betting decision from the connection's seat. The
// seat and street in turn must match the acting seat and current street.
func (r *Room) SubmitAction(connID string, turn protocol.TableTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[connID]
	if !ok {
		return game.ErrNotInRoom
	}
	seat, seated := r.seats.SeatOf(m.identity)
	if !seated {
		return game.ErrNotSeated
	}
	if r.hand == nil {
		return game.ErrNoActiveHand
	}
	if turn.SeatIndex != seat {
		return fmt.Errorf("%w: seat %d is not yours", game.ErrOutOfTurn, turn.SeatIndex)
	}
	if turn.Street != "" {
		street, err := game.ParseStreet(turn.Street)
		if err != nil {
			return err
		}
		if street != r.hand.Street() {
			return fmt.Errorf("%w: action for %s during %s", game.ErrOutOfTurn, street, r.hand.Street())
		}
	}
	action, err := game.ParseAction(turn.Action)
	if err != nil {
		return err
	}

	prev := r.hand.ActingSeat()
	tr, err := r.hand.Act(seat, action, turn.Amount)
	if err != nil {
		if errors.Is(err, poker.ErrDeckExhausted) {
			return r.failHand(err)
		}
		return err
	}
	r.logger.Debug("Action applied", "seat", seat, "action", tr.Action, "added", tr.Added)
	r.afterAction(tr, prev)
	return nil
}

// SendState sends the connection a fresh snapshot.
func (r *Room) SendState(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[connID]
	if !ok {
		return game.ErrNotInRoom
	}
	r.send(m, protocol.TypeTableSnapshot, r.snapshot(m.identity))
	return nil
}

// Snapshot returns the table as seen by identity; an empty identity gets the
// spectator view.
func (r *Room) Snapshot(identity string) protocol.TableSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(identity)
}

// Info summarises the room.
func (r *Room) Info() Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Info{
		Code:        r.code,
		Seated:      len(r.seats.Occupied()),
		Subscribers: len(r.members),
		HandActive:  r.hand != nil,
		HandsPlayed: r.handCount,
	}
}

// Close stops the room's timers. A running hand is aborted and its chips
// returned.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.stopTurnTimer()
	r.stopNextTimer()
	if r.hand != nil {
		r.seats.Settle(r.hand.Abort())
		r.hand = nil
	}
	r.closed = true
	r.logger.Info("Room closed", "hands", r.handCount)
}

func (r *Room) idle() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members) == 0 && len(r.seats.Occupied()) == 0
}

func (r *Room) startHand() error {
	if r.closed {
		return ErrClosed
	}
	if r.hand != nil {
		return game.ErrHandInProgress
	}
	playable := r.seats.Playable()
	if len(playable) < 2 {
		return fmt.Errorf("%w: %d seated with chips", game.ErrNotEnoughPlayers, len(playable))
	}
	r.stopNextTimer()

	button, _ := r.seats.NextPlayable(r.button)
	deck, err := r.deck()
	if err != nil {
		return fmt.Errorf("preparing deck: %w", err)
	}
	entrants := make([]game.Entrant, len(playable))
	for i, s := range playable {
		entrants[i] = game.Entrant{Seat: s.Index, Identity: s.Identity, Name: s.Name, Stack: s.Stack}
	}
	cfg := game.HandConfig{
		ID:         gameid.Generate(),
		Button:     button,
		SmallBlind: r.cfg.SmallBlind,
		BigBlind:   r.cfg.BigBlind,
	}
	hand, err := game.NewHand(cfg, entrants, game.WithDeck(deck))
	if err != nil {
		return err
	}

	r.button = button
	r.hand = hand
	r.handCount++
	clear(r.shown)
	r.logger.Info("Hand started", "hand", hand.ID(), "number", r.handCount, "button", button, "players", len(entrants))

	r.broadcast(protocol.TypeStartRound, protocol.StartRound{
		HandID:         hand.ID(),
		HandNumber:     r.handCount,
		Button:         button,
		SmallBlindSeat: hand.SmallBlindSeat(),
		BigBlindSeat:   hand.BigBlindSeat(),
		SmallBlind:     r.cfg.SmallBlind,
		BigBlind:       r.cfg.BigBlind,
	})
	r.broadcastPlayers()
	r.broadcast(protocol.TypeUpdatePotSize, r.potView())

	// Blinds can put everyone all-in before anyone acts.
	if hand.Complete() {
		if board := hand.Board(); len(board) > 0 {
			r.broadcastCards(board)
		}
		r.finishHand()
		return nil
	}
	r.announceTurn(r.turnTimeout(hand.ActingSeat()))
	return nil
}

// afterAction broadcasts the effect of an applied action. prev is the seat
// that was acting before it; the turn clock only restarts when the acting
// seat or the street changes.
func (r *Room) afterAction(tr game.Transition, prev int) {
	if tr.Complete {
		if len(tr.NewCards) > 0 {
			r.broadcastCards(tr.NewCards)
		}
		r.finishHand()
		return
	}

	r.broadcastPlayers()
	r.broadcast(protocol.TypeUpdatePotSize, r.potView())
	if len(tr.NewCards) > 0 {
		r.broadcastCards(tr.NewCards)
	}
	if acting := r.hand.ActingSeat(); acting != prev || tr.StreetChanged {
		r.announceTurn(r.turnTimeout(acting))
	}
}

// failHand aborts the running hand after an internal failure such as an
// exhausted deck. Stacks return to their values at the start of the hand.
func (r *Room) failHand(cause error) error {
	r.logger.Error("Aborting hand", "hand", r.hand.ID(), "error", cause)
	r.hand.Abort()
	r.finishHand()
	return cause
}

func (r *Room) finishHand() {
	h := r.hand
	res := h.Result()
	r.stopTurnTimer()
	r.seats.Settle(res)
	r.hand = nil

	for _, rv := range res.Showdown {
		r.shown[rv.Seat] = rv.Hole
	}
	for seat := range r.leaving {
		if prev, err := r.seats.Leave(seat); err == nil {
			r.logger.Info("Vacated seat", "player", prev.Identity, "seat", seat, "stack", prev.Stack)
		}
	}
	clear(r.leaving)

	r.broadcast(protocol.TypeHandResult, resultView(h, res))
	r.broadcastPlayers()
	r.broadcast(protocol.TypeUpdatePotSize, r.potView())
	r.broadcast(protocol.TypeRestartGame, protocol.RestartGame{HandID: h.ID()})

	r.logger.Info("Hand complete", "hand", h.ID(), "pot", game.TotalOf(res.Pots), "uncontested", res.Uncontested, "aborted", res.Aborted)
	if !res.Aborted {
		r.record(h)
	}
	r.maybeScheduleNext()
}

func (r *Room) record(h *game.Hand) {
	if r.recorder == nil {
		return
	}
	hh, err := phh.FromHand(r.code, r.seats.Len(), h, r.clock.Now())
	if err != nil {
		r.logger.Error("Failed to build hand history", "hand", h.ID(), "error", err)
		return
	}
	rec, logger := r.recorder, r.logger
	go func() {
		if err := rec.Record(hh); err != nil {
			logger.Error("Failed to write hand history", "hand", hh.HandID, "error", err)
		}
	}()
}

func (r *Room) announceTurn(timeout time.Duration) {
	seat := r.hand.ActingSeat()
	if seat < 0 {
		return
	}
	p, _ := r.hand.Player(seat)
	r.armTurnTimer(seat, timeout)
	r.broadcast(protocol.TypePlayerTurn, protocol.PlayerTurn{
		SeatIndex:      seat,
		Street:         r.hand.Street().String(),
		AmountToCall:   r.hand.AmountToCall(seat),
		MinRaise:       r.hand.MinRaiseBy(seat),
		MinRaiseTo:     r.hand.MinRaiseTo(),
		Stack:          p.Stack,
		TimeoutSeconds: seconds(timeout),
	})
}

func (r *Room) turnTimeout(seat int) time.Duration {
	if p, ok := r.hand.Player(seat); ok && !r.connected(p.Identity) {
		return r.cfg.DisconnectGrace
	}
	return r.cfg.ActionTimeout
}

func (r *Room) armTurnTimer(seat int, d time.Duration) {
	r.stopTurnTimer()
	seq := r.turnSeq
	r.turnDeadline = r.clock.Now().Add(d)
	r.turnTimer = r.clock.AfterFunc(d, func() { r.turnExpired(seq, seat) }, "room", "turn")
}

func (r *Room) stopTurnTimer() {
	r.turnSeq++
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
	r.turnDeadline = time.Time{}
}

func (r *Room) remaining() time.Duration {
	if r.turnDeadline.IsZero() {
		return 0
	}
	return max(r.turnDeadline.Sub(r.clock.Now()), 0)
}

func (r *Room) turnExpired(seq uint64, seat int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || seq != r.turnSeq || r.hand == nil || r.hand.ActingSeat() != seat {
		return
	}
	r.turnTimer = nil

	tr, err := r.hand.TimeoutAction(seat)
	if err != nil {
		if errors.Is(err, poker.ErrDeckExhausted) {
			_ = r.failHand(err)
			return
		}
		r.logger.Error("Timeout action failed", "seat", seat, "error", err)
		return
	}
	r.logger.Info("Turn timed out", "seat", seat, "action", tr.Action)
	r.broadcast(protocol.TypePlayerTimeout, protocol.PlayerTimeout{SeatIndex: seat, Action: tr.Action.String()})
	r.afterAction(tr, seat)
}

func (r *Room) maybeScheduleNext() {
	if !r.cfg.AutoStart || r.closed || r.hand != nil || r.nextTimer != nil || len(r.seats.Playable()) < 2 {
		return
	}
	r.nextSeq++
	seq := r.nextSeq
	r.nextTimer = r.clock.AfterFunc(r.cfg.NextHandDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed || seq != r.nextSeq {
			return
		}
		r.nextTimer = nil
		if err := r.startHand(); err != nil {
			r.logger.Warn("Automatic start failed", "error", err)
		}
	}, "room", "next-hand")
}

func (r *Room) stopNextTimer() {
	r.nextSeq++
	if r.nextTimer != nil {
		r.nextTimer.Stop()
		r.nextTimer = nil
	}
}

func (r *Room) connected(identity string) bool {
	for _, m := range r.members {
		if m.identity == identity {
			return true
		}
	}
	return false
}

func (r *Room) send(m *member, t protocol.Type, data any) {
	msg, err := protocol.New(t, data, r.clock.Now())
	if err != nil {
		r.logger.Error("Failed to encode message", "type", t, "error", err)
		return
	}
	r.deliver(m, msg)
}

func (r *Room) deliver(m *member, msg *protocol.Message) {
	if err := m.sub.Send(msg); err != nil {
		r.logger.Warn("Message not delivered", "conn", m.sub.ID(), "type", msg.Type, "error", err)
	}
}

func (r *Room) broadcast(t protocol.Type, data any) {
	msg, err := protocol.New(t, data, r.clock.Now())
	if err != nil {
		r.logger.Error("Failed to encode message", "type", t, "error", err)
		return
	}
	for _, m := range r.members {
		r.deliver(m, msg)
	}
}

// broadcastPlayers sends each subscriber its own view of the seats.
func (r *Room) broadcastPlayers() {
	for _, m := range r.members {
		r.send(m, protocol.TypeUpdatePlayers, protocol.UpdatePlayers{Seats: r.seatViews(m.identity)})
	}
}

func (r *Room) broadcastCards(cards []poker.Card) {
	street := boardStreet(len(r.hand.Board()))
	r.broadcast(protocol.TypeUpdateTableCards, protocol.UpdateTableCards{Street: street.String(), Cards: cards})
}
