// Package phh reads and writes hand histories in the Poker Hand History
// (PHH) TOML format.
package phh

// HandHistory is one hand in PHH form. Per-player arrays are ordered by
// position, starting with the small blind; Seats maps each position back to
// its one-based table seat.
type HandHistory struct {
	Variant           string   `toml:"variant"`
	Table             string   `toml:"table,omitempty"`
	SeatCount         int      `toml:"seat_count,omitempty"`
	Seats             []int    `toml:"seats,omitempty"`
	Antes             []int    `toml:"antes"`
	BlindsOrStraddles []int    `toml:"blinds_or_straddles"`
	MinBet            int      `toml:"min_bet"`
	StartingStacks    []int    `toml:"starting_stacks"`
	FinishingStacks   []int    `toml:"finishing_stacks,omitempty"`
	Winnings          []int    `toml:"winnings,omitempty"`
	Actions           []string `toml:"actions"`
	Players           []string `toml:"players,omitempty"`
	HandID            string   `toml:"hand"`
	Time              string   `toml:"time,omitempty"`
	TimeZone          string   `toml:"time_zone,omitempty"`
	Day               int      `toml:"day,omitempty"`
	Month             int      `toml:"month,omitempty"`
	Year              int      `toml:"year,omitempty"`
}

// Seat returns the zero-based table seat at position pos, or -1.
func (h *HandHistory) Seat(pos int) int {
	if pos < 0 || pos >= len(h.Seats) {
		return -1
	}
	return h.Seats[pos] - 1
}

// Net returns each position's chip result for the hand.
func (h *HandHistory) Net() []int {
	n := min(len(h.StartingStacks), len(h.FinishingStacks))
	out := make([]int, n)
	for i := range n {
		out[i] = h.FinishingStacks[i] - h.StartingStacks[i]
	}
	return out
}
