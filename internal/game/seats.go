package game

import "fmt"

// Seat is one chair at the table. An empty Identity means the seat is vacant.
type Seat struct {
	Index    int
	Identity string
	Name     string
	Stack    int
}

// Occupied reports whether someone sits in the seat.
func (s Seat) Occupied() bool {
	return s.Identity != ""
}

// Seats is the fixed-size seat registry of a room. It is not safe for
// concurrent use; the owning room serialises access.
type Seats struct {
	seats []Seat
}

// NewSeats creates n vacant seats.
func NewSeats(n int) *Seats {
	s := &Seats{seats: make([]Seat, n)}
	for i := range s.seats {
		s.seats[i].Index = i
	}
	return s
}

// Len returns the number of seats, occupied or not.
func (s *Seats) Len() int {
	return len(s.seats)
}

// Seat returns a copy of seat i.
func (s *Seats) Seat(i int) (Seat, error) {
	if i < 0 || i >= len(s.seats) {
		return Seat{}, fmt.Errorf("%w: %d", ErrInvalidSeat, i)
	}
	return s.seats[i], nil
}

// Join seats identity at index with a buy-in.
func (s *Seats) Join(index int, identity, name string, buyIn int) (Seat, error) {
	if index < 0 || index >= len(s.seats) {
		return Seat{}, fmt.Errorf("%w: %d", ErrInvalidSeat, index)
	}
	if identity == "" {
		return Seat{}, fmt.Errorf("%w: missing identity", ErrNotInRoom)
	}
	if buyIn <= 0 {
		return Seat{}, fmt.Errorf("%w: %d", ErrInvalidBuyIn, buyIn)
	}
	if cur, ok := s.SeatOf(identity); ok {
		return Seat{}, fmt.Errorf("%w: seat %d", ErrAlreadySeated, cur)
	}
	if s.seats[index].Occupied() {
		return Seat{}, fmt.Errorf("%w: %d", ErrSeatOccupied, index)
	}
	s.seats[index] = Seat{Index: index, Identity: identity, Name: name, Stack: buyIn}
	return s.seats[index], nil
}

// Leave vacates seat index and returns what was there.
func (s *Seats) Leave(index int) (Seat, error) {
	if index < 0 || index >= len(s.seats) {
		return Seat{}, fmt.Errorf("%w: %d", ErrInvalidSeat, index)
	}
	prev := s.seats[index]
	if !prev.Occupied() {
		return Seat{}, fmt.Errorf("%w: seat %d is empty", ErrNotSeated, index)
	}
	s.seats[index] = Seat{Index: index}
	return prev, nil
}

// SeatOf returns the seat held by identity.
func (s *Seats) SeatOf(identity string) (int, bool) {
	if identity == "" {
		return -1, false
	}
	for _, seat := range s.seats {
		if seat.Identity == identity {
			return seat.Index, true
		}
	}
	return -1, false
}

// Occupied returns copies of all occupied seats in index order.
func (s *Seats) Occupied() []Seat {
	var out []Seat
	for _, seat := range s.seats {
		if seat.Occupied() {
			out = append(out, seat)
		}
	}
	return out
}

// Playable returns occupied seats that have chips, in index order.
func (s *Seats) Playable() []Seat {
	var out []Seat
	for _, seat := range s.seats {
		if seat.Occupied() && seat.Stack > 0 {
			out = append(out, seat)
		}
	}
	return out
}

// NextPlayable returns the first playable seat strictly clockwise of from,
// wrapping around. from may be -1 to start at seat 0.
func (s *Seats) NextPlayable(from int) (int, bool) {
	n := len(s.seats)
	for step := 1; step <= n; step++ {
		i := ((from+step)%n + n) % n
		if seat := s.seats[i]; seat.Occupied() && seat.Stack > 0 {
			return i, true
		}
	}
	return -1, false
}

// Settle writes the final stacks of a finished hand back to the seats. It is
// the only way stacks change after a buy-in.
func (s *Seats) Settle(r *Result) {
	if r == nil {
		return
	}
	for seat, stack := range r.Stacks {
		if seat >= 0 && seat < len(s.seats) && s.seats[seat].Occupied() {
			s.seats[seat].Stack = stack
		}
	}
}
