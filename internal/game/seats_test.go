package game

import (
	"errors"
	"testing"
)

func TestSeatsJoin(t *testing.T) {
	t.Parallel()
	seats := NewSeats(2)

	tests := []struct {
		name     string
		index    int
		identity string
		buyIn    int
		wantErr  error
	}{
		{name: "first seat", index: 0, identity: "alice", buyIn: 1000},
		{name: "occupied", index: 0, identity: "bob", buyIn: 1000, wantErr: ErrSeatOccupied},
		{name: "out of range", index: 2, identity: "bob", buyIn: 1000, wantErr: ErrInvalidSeat},
		{name: "negative", index: -1, identity: "bob", buyIn: 1000, wantErr: ErrInvalidSeat},
		{name: "zero buy-in", index: 1, identity: "bob", buyIn: 0, wantErr: ErrInvalidBuyIn},
		{name: "already seated", index: 1, identity: "alice", buyIn: 500, wantErr: ErrAlreadySeated},
		{name: "second seat", index: 1, identity: "bob", buyIn: 500},
	}
	// Cases depend on each other, run in order.
	for _, tt := range tests {
		_, err := seats.Join(tt.index, tt.identity, tt.identity, tt.buyIn)
		if tt.wantErr == nil && err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Fatalf("%s: got %v, want %v", tt.name, err, tt.wantErr)
		}
	}

	if got := len(seats.Occupied()); got != 2 {
		t.Errorf("occupied = %d", got)
	}
	if idx, ok := seats.SeatOf("bob"); !ok || idx != 1 {
		t.Errorf("SeatOf(bob) = %d, %v", idx, ok)
	}
	s, _ := seats.Seat(1)
	if s.Stack != 500 || s.Name != "bob" {
		t.Errorf("seat 1 = %+v", s)
	}
}

func TestSeatsLeave(t *testing.T) {
	t.Parallel()
	seats := NewSeats(3)
	if _, err := seats.Leave(1); !errors.Is(err, ErrNotSeated) {
		t.Errorf("leave empty seat: got %v", err)
	}
	if _, err := seats.Leave(5); !errors.Is(err, ErrInvalidSeat) {
		t.Errorf("leave invalid seat: got %v", err)
	}
	if _, err := seats.Join(1, "carol", "Carol", 300); err != nil {
		t.Fatal(err)
	}
	prev, err := seats.Leave(1)
	if err != nil {
		t.Fatal(err)
	}
	if prev.Identity != "carol" || prev.Stack != 300 {
		t.Errorf("left seat = %+v", prev)
	}
	if _, ok := seats.SeatOf("carol"); ok {
		t.Error("carol should no longer be seated")
	}
	if _, err := seats.Join(1, "dave", "Dave", 100); err != nil {
		t.Errorf("vacated seat should be joinable: %v", err)
	}
}

func TestSeatsPlayableAndRotation(t *testing.T) {
	t.Parallel()
	seats := NewSeats(6)
	for _, i := range []int{1, 3, 4} {
		if _, err := seats.Join(i, string(rune('a'+i)), "", 100); err != nil {
			t.Fatal(err)
		}
	}
	seats.Settle(&Result{Stacks: map[int]int{3: 0, 4: 200}})

	playable := seats.Playable()
	if len(playable) != 2 || playable[0].Index != 1 || playable[1].Index != 4 {
		t.Fatalf("playable = %+v", playable)
	}

	tests := []struct {
		from, want int
	}{
		{-1, 1},
		{1, 4},
		{2, 4},
		{4, 1},
		{5, 1},
	}
	for _, tt := range tests {
		if got, ok := seats.NextPlayable(tt.from); !ok || got != tt.want {
			t.Errorf("NextPlayable(%d) = %d, %v, want %d", tt.from, got, ok, tt.want)
		}
	}

	empty := NewSeats(2)
	if _, ok := empty.NextPlayable(0); ok {
		t.Error("no playable seat expected")
	}
}

func TestSeatsSettleIgnoresVacantSeats(t *testing.T) {
	t.Parallel()
	seats := NewSeats(2)
	if _, err := seats.Join(0, "a", "A", 100); err != nil {
		t.Fatal(err)
	}
	seats.Settle(&Result{Stacks: map[int]int{0: 150, 1: 50, 7: 10}})
	s0, _ := seats.Seat(0)
	s1, _ := seats.Seat(1)
	if s0.Stack != 150 || s1.Stack != 0 || s1.Occupied() {
		t.Errorf("after settle: %+v %+v", s0, s1)
	}
	seats.Settle(nil)
}
