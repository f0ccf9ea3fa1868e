package room

import (
	"time"

	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/internal/protocol"
	"github.com/lox/pokerrooms/poker"
)

// seatViews renders every seat for identity. Hole cards are only included
// for identity's own seat, or for hands shown down in the last hand.
func (r *Room) seatViews(identity string) []*protocol.SeatView {
	views := make([]*protocol.SeatView, r.seats.Len())
	for i := range views {
		seat, _ := r.seats.Seat(i)
		if !seat.Occupied() {
			continue
		}
		v := &protocol.SeatView{
			SeatIndex: i,
			Name:      seat.Name,
			Chips:     seat.Stack,
			Connected: r.connected(seat.Identity),
		}
		if r.hand != nil {
			if p, ok := r.hand.Player(i); ok && p.Identity == seat.Identity {
				v.Chips = p.Stack
				v.Bet = p.Bet
				v.InHand = true
				v.Folded = p.Folded
				v.AllIn = p.AllIn
				if identity != "" && p.Identity == identity {
					v.Cards = p.Hole
				}
			}
		}
		if cards, ok := r.shown[i]; ok && v.Cards == nil {
			v.Cards = cards
		}
		views[i] = v
	}
	return views
}

func (r *Room) potView() protocol.UpdatePotSize {
	out := protocol.UpdatePotSize{Pots: []protocol.PotView{}}
	if r.hand == nil {
		return out
	}
	out.Total = r.hand.PotTotal()
	for _, p := range r.hand.Pots() {
		out.Pots = append(out.Pots, protocol.PotView{Amount: p.Amount, Eligible: append([]int{}, p.Eligible...)})
	}
	return out
}

func (r *Room) snapshot(identity string) protocol.TableSnapshot {
	seat, ok := r.seats.SeatOf(identity)
	if !ok {
		seat = -1
	}
	s := protocol.TableSnapshot{
		RoomCode:   r.code,
		YourSeat:   seat,
		Button:     r.button,
		Board:      []poker.Card{},
		Seats:      r.seatViews(identity),
		Pot:        r.potView(),
		ActingSeat: -1,
	}
	h := r.hand
	if h == nil {
		return s
	}
	s.HandActive = true
	s.HandID = h.ID()
	s.Street = h.Street().String()
	s.Button = h.Button()
	s.Board = h.Board()
	if acting := h.ActingSeat(); acting >= 0 {
		s.ActingSeat = acting
		s.AmountToCall = h.AmountToCall(acting)
		s.MinRaiseTo = h.MinRaiseTo()
		s.TimeoutSeconds = seconds(r.remaining())
	}
	return s
}

func resultView(h *game.Hand, res *game.Result) protocol.HandResult {
	names := make(map[int]string)
	for _, p := range h.Players() {
		names[p.Seat] = p.Name
	}
	reveals := make(map[int]game.Reveal, len(res.Showdown))
	for _, rv := range res.Showdown {
		reveals[rv.Seat] = rv
	}

	out := protocol.HandResult{
		HandID:      res.HandID,
		Winners:     []protocol.Winner{},
		Board:       res.Board,
		Uncontested: res.Uncontested,
		Aborted:     res.Aborted,
	}
	if out.Board == nil {
		out.Board = []poker.Card{}
	}
	for _, a := range res.Awards {
		w := protocol.Winner{SeatIndex: a.Seat, Name: names[a.Seat], Amount: a.Amount, PotIndex: a.Pot}
		if rv, ok := reveals[a.Seat]; ok {
			w.Hand = rv.Strength.String()
			w.Cards = rv.Hole
			w.BestFive = rv.BestFive
		}
		out.Winners = append(out.Winners, w)
	}
	for _, rv := range res.Showdown {
		out.Showdown = append(out.Showdown, protocol.ShownHand{SeatIndex: rv.Seat, Cards: rv.Hole, Hand: rv.Strength.String()})
	}
	return out
}

// boardStreet names the street a board of n cards belongs to.
func boardStreet(n int) game.Street {
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

// seconds rounds d up to whole seconds.
func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
