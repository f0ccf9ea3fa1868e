package room

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerrooms/internal/randutil"
	"github.com/lox/pokerrooms/poker"
)

// ErrInvalidCode is returned for room codes the manager will not create.
var ErrInvalidCode = errors.New("invalid room code")

// Manager creates rooms on first join and removes them once nobody is
// subscribed or seated.
type Manager struct {
	cfg    Config
	logger *log.Logger
	opts   options

	mu     sync.RWMutex
	rooms  map[string]*Room
	closed bool
}

// NewManager returns a manager whose rooms share cfg.
func NewManager(cfg Config, logger *log.Logger, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{clock: quartz.NewReal()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = func(code string) *rand.Rand {
			if cfg.Seed == 0 {
				return randutil.NewSecure()
			}
			h := fnv.New64a()
			h.Write([]byte(code))
			return randutil.New(cfg.Seed ^ int64(h.Sum64()))
		}
	}
	return &Manager{
		cfg:    cfg,
		logger: logger.WithPrefix("rooms"),
		opts:   o,
		rooms:  make(map[string]*Room),
	}, nil
}

// Join subscribes sub to the room code, creating the room if needed, and
// returns the room with the subscriber's identity.
func (m *Manager) Join(code string, sub Subscriber, identity string) (*Room, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, "", ErrClosed
	}
	r, ok := m.rooms[code]
	if !ok {
		if err := m.validCode(code); err != nil {
			return nil, "", err
		}
		r = newRoom(code, m.cfg, m.logger, m.opts.clock, m.deckSource(code), m.opts.recorder)
		m.rooms[code] = r
		m.logger.Info("Room created", "room", code)
	}
	identity, err := r.Join(sub, identity)
	if err != nil {
		return nil, "", err
	}
	return r, identity, nil
}

// Leave unsubscribes a connection from code and closes the room when it is
// left empty.
func (m *Manager) Leave(code, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[code]
	if !ok {
		return
	}
	r.Leave(connID)
	if r.idle() {
		r.Close()
		delete(m.rooms, code)
		m.logger.Info("Room removed", "room", code)
	}
}

// Get returns an existing room.
func (m *Manager) Get(code string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	return r, ok
}

// List summarises every room, ordered by code.
func (m *Manager) List() []Info {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	out := make([]Info, len(rooms))
	for i, r := range rooms {
		out[i] = r.Info()
	}
	slices.SortFunc(out, func(a, b Info) int { return strings.Compare(a.Code, b.Code) })
	return out
}

// Close shuts down every room.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for code, r := range m.rooms {
		r.Close()
		delete(m.rooms, code)
	}
}

func (m *Manager) validCode(code string) error {
	if code == "" || len(code) > 64 {
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	if m.opts.validate != nil {
		if err := m.opts.validate(code); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCode, err)
		}
	}
	return nil
}

func (m *Manager) deckSource(code string) DeckSource {
	if m.opts.decks != nil {
		return m.opts.decks(code)
	}
	deck := poker.NewDeck(m.opts.rng(code))
	return func() (*poker.Deck, error) { return deck, nil }
}
