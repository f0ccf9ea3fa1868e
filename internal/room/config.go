package room

import (
	"fmt"
	"time"
)

// Config holds the table rules shared by every room a Manager creates.
type Config struct {
	Seats           int
	SmallBlind      int
	BigBlind        int
	DefaultBuyIn    int
	MaxBuyIn        int // 0 means unlimited
	ActionTimeout   time.Duration
	DisconnectGrace time.Duration // turn timeout while the acting seat has no connection
	AutoStart       bool
	NextHandDelay   time.Duration
	Seed            int64 // non-zero makes shuffles reproducible
}

// DefaultConfig returns heads-up 5/10 with 1000 chip buy-ins.
func DefaultConfig() Config {
	return Config{
		Seats:           2,
		SmallBlind:      5,
		BigBlind:        10,
		DefaultBuyIn:    1000,
		ActionTimeout:   30 * time.Second,
		DisconnectGrace: 15 * time.Second,
		NextHandDelay:   3 * time.Second,
	}
}

// Validate checks the table rules.
func (c Config) Validate() error {
	if c.Seats < 2 || c.Seats > 10 {
		return fmt.Errorf("seats must be between 2 and 10, got %d", c.Seats)
	}
	if c.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive, got %d", c.SmallBlind)
	}
	if c.BigBlind < c.SmallBlind {
		return fmt.Errorf("big blind %d is smaller than small blind %d", c.BigBlind, c.SmallBlind)
	}
	if c.DefaultBuyIn <= 0 {
		return fmt.Errorf("default buy-in must be positive, got %d", c.DefaultBuyIn)
	}
	if c.MaxBuyIn < 0 || (c.MaxBuyIn > 0 && c.MaxBuyIn < c.DefaultBuyIn) {
		return fmt.Errorf("max buy-in %d is below the default buy-in %d", c.MaxBuyIn, c.DefaultBuyIn)
	}
	if c.ActionTimeout <= 0 {
		return fmt.Errorf("action timeout must be positive, got %s", c.ActionTimeout)
	}
	if c.DisconnectGrace <= 0 {
		return fmt.Errorf("disconnect grace must be positive, got %s", c.DisconnectGrace)
	}
	if c.AutoStart && c.NextHandDelay <= 0 {
		return fmt.Errorf("next hand delay must be positive with auto start, got %s", c.NextHandDelay)
	}
	return nil
}
