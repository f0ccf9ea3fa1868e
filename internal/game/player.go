package game

import "github.com/lox/pokerrooms/poker"

// Player is a seat's state for the duration of one hand.
type Player struct {
	Seat     int
	Identity string
	Name     string
	Stack    int // chips behind
	Bet      int // committed on the current street
	Total    int // committed over the whole hand
	Hole     []poker.Card
	Folded   bool
	AllIn    bool

	startStack int
}

// CanAct reports whether the player still makes betting decisions.
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn
}

// StartStack is the stack the player brought into the hand.
func (p *Player) StartStack() int {
	return p.startStack
}

func (p *Player) commit(n int) {
	p.Stack -= n
	p.Bet += n
	p.Total += n
	if p.Stack == 0 {
		p.AllIn = true
	}
}

func (p *Player) refund(n int) {
	p.Stack += n
	p.Bet -= n
	p.Total -= n
	p.AllIn = p.Stack == 0
}
