package game

import (
	"slices"
	"sort"
)

// Pot represents a pot (main or side)
type Pot struct {
	Amount   int
	Eligible []int // seats that can win it
}

// Contribution is what a seat has put in over the whole hand.
type Contribution struct {
	Seat   int
	Amount int
	Folded bool
	AllIn  bool
}

// BuildPots splits contributions into a main pot and side pots.
//
// Each distinct all-in total of a live seat caps a tier. A tier takes
// min(amount, cap) - min(amount, previous cap) from every contributor, so
// folded chips stay in the tiers they reached. Live seats whose total reaches
// the cap are eligible. Chips above the highest cap form the last pot. A tier
// with no eligible seat is merged into the pot below it.
func BuildPots(contribs []Contribution) []Pot {
	var caps []int
	for _, c := range contribs {
		if c.AllIn && !c.Folded && c.Amount > 0 && !slices.Contains(caps, c.Amount) {
			caps = append(caps, c.Amount)
		}
	}
	sort.Ints(caps)

	top := 0
	for _, c := range contribs {
		top = max(top, c.Amount)
	}
	if len(caps) == 0 || caps[len(caps)-1] < top {
		caps = append(caps, top)
	}

	var pots []Pot
	prev := 0
	for _, limit := range caps {
		pot := Pot{}
		for _, c := range contribs {
			pot.Amount += min(c.Amount, limit) - min(c.Amount, prev)
			if !c.Folded && c.Amount >= limit {
				pot.Eligible = append(pot.Eligible, c.Seat)
			}
		}
		prev = limit
		if pot.Amount == 0 {
			continue
		}
		if len(pot.Eligible) == 0 && len(pots) > 0 {
			pots[len(pots)-1].Amount += pot.Amount
			continue
		}
		pots = append(pots, pot)
	}
	return pots
}

// TotalOf sums pot amounts.
func TotalOf(pots []Pot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}

// splitPot divides amount between winners. Winners must be ordered clockwise
// starting left of the button; odd chips go one at a time in that order.
func splitPot(amount int, winners []int) []int {
	shares := make([]int, len(winners))
	if len(winners) == 0 || amount <= 0 {
		return shares
	}
	each := amount / len(winners)
	rem := amount % len(winners)
	for i := range winners {
		shares[i] = each
		if i < rem {
			shares[i]++
		}
	}
	return shares
}
