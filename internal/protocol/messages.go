// Package protocol defines the JSON messages exchanged with table clients.
package protocol

import "github.com/lox/pokerrooms/poker"

// Type identifies the type of message
type Type string

const (
	// Client -> Server
	TypeJoinRoom  Type = "joinRoom"
	TypeJoinSeat  Type = "joinSeat"
	TypeLeaveSeat Type = "leaveSeat"
	TypeStartGame Type = "startGame"
	TypeTableTurn Type = "tableTurn"
	TypeGetState  Type = "getState"

	// Server -> Client
	TypeRoomJoined       Type = "roomJoined"
	TypeUpdatePlayers    Type = "updatePlayers"
	TypeUpdateTableCards Type = "updateTableCards"
	TypeUpdatePotSize    Type = "updatePotSize"
	TypePlayerTurn       Type = "playerTurn"
	TypeStartRound       Type = "startRound"
	TypeRestartGame      Type = "restartGame"
	TypeHandResult       Type = "handResult"
	TypePlayerTimeout    Type = "playerTimeout"
	TypeTableSnapshot    Type = "tableSnapshot"
	TypeError            Type = "error"
)

// Client -> Server Messages

// JoinRoom subscribes the connection to a room. PlayerID is the identity
// returned by an earlier roomJoined and reclaims that player's seat.
type JoinRoom struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId,omitempty"`
}

// JoinSeat takes a seat. BuyIn defaults to the table's default buy-in.
type JoinSeat struct {
	SeatIndex int    `json:"seatIndex"`
	Name      string `json:"name"`
	BuyIn     *int   `json:"buyIn,omitempty"`
}

// TableTurn is a betting decision. Amount is the number of chips added and
// only matters for bet and raise.
type TableTurn struct {
	SeatIndex int    `json:"seatIndex"`
	Street    string `json:"street"`
	Action    string `json:"action"` // fold, check, call, bet, raise, allin
	Amount    int    `json:"amount"`
}

// Server -> Client Messages

// RoomJoined acknowledges joinRoom. SeatIndex is -1 for spectators.
type RoomJoined struct {
	RoomCode   string `json:"roomCode"`
	PlayerID   string `json:"playerId"`
	SeatIndex  int    `json:"seatIndex"`
	SeatCount  int    `json:"seatCount"`
	SmallBlind int    `json:"smallBlind"`
	BigBlind   int    `json:"bigBlind"`
}

// SeatView is the public state of an occupied seat. Cards are only present
// on the recipient's own seat, or for everyone after a showdown.
type SeatView struct {
	SeatIndex int          `json:"seatIndex"`
	Name      string       `json:"name"`
	Chips     int          `json:"chips"`
	Bet       int          `json:"bet"`
	InHand    bool         `json:"inHand"`
	Folded    bool         `json:"folded"`
	AllIn     bool         `json:"allIn"`
	Connected bool         `json:"connected"`
	Cards     []poker.Card `json:"cards,omitempty"`
}

// UpdatePlayers lists every seat; vacant seats are null.
type UpdatePlayers struct {
	Seats []*SeatView `json:"seats"`
}

// UpdateTableCards carries newly revealed board cards only.
type UpdateTableCards struct {
	Street string       `json:"street"`
	Cards  []poker.Card `json:"cards"`
}

// PotView is one main or side pot.
type PotView struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
}

// UpdatePotSize carries the pot total including current street bets.
type UpdatePotSize struct {
	Total int       `json:"total"`
	Pots  []PotView `json:"pots"`
}

// PlayerTurn announces the acting seat. MinRaise is the number of chips the
// seat must add for the smallest legal raise; MinRaiseTo is the street bet it
// reaches.
type PlayerTurn struct {
	SeatIndex      int    `json:"seatIndex"`
	Street         string `json:"street"`
	AmountToCall   int    `json:"amountToCall"`
	MinRaise       int    `json:"minRaise"`
	MinRaiseTo     int    `json:"minRaiseTo"`
	Stack          int    `json:"stack"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// StartRound is sent when a new hand begins
type StartRound struct {
	HandID         string `json:"handId"`
	HandNumber     int    `json:"handNumber"`
	Button         int    `json:"button"`
	SmallBlindSeat int    `json:"smallBlindSeat"`
	BigBlindSeat   int    `json:"bigBlindSeat"`
	SmallBlind     int    `json:"smallBlind"`
	BigBlind       int    `json:"bigBlind"`
}

// RestartGame tells clients to clear per-hand state.
type RestartGame struct {
	HandID string `json:"handId"`
}

// Winner is a payout from one pot.
type Winner struct {
	SeatIndex int          `json:"seatIndex"`
	Name      string       `json:"name"`
	Amount    int          `json:"amount"`
	PotIndex  int          `json:"potIndex"`
	Hand      string       `json:"hand,omitempty"` // e.g. "Two Pair, Aces and Kings"
	Cards     []poker.Card `json:"cards,omitempty"`
	BestFive  []poker.Card `json:"bestFive,omitempty"`
}

// ShownHand is a hand revealed at showdown, winning or not.
type ShownHand struct {
	SeatIndex int          `json:"seatIndex"`
	Cards     []poker.Card `json:"cards"`
	Hand      string       `json:"hand"`
}

// HandResult is sent at hand completion
type HandResult struct {
	HandID      string       `json:"handId"`
	Winners     []Winner     `json:"winners"`
	Board       []poker.Card `json:"board"`
	Showdown    []ShownHand  `json:"showdown,omitempty"`
	Uncontested bool         `json:"uncontested,omitempty"`
	Aborted     bool         `json:"aborted,omitempty"`
}

// PlayerTimeout reports the action taken for a seat whose clock ran out.
type PlayerTimeout struct {
	SeatIndex int    `json:"seatIndex"`
	Action    string `json:"action"`
}

// TableSnapshot is the full state as seen by one recipient.
type TableSnapshot struct {
	RoomCode       string        `json:"roomCode"`
	YourSeat       int           `json:"yourSeat"`
	HandActive     bool          `json:"handActive"`
	HandID         string        `json:"handId,omitempty"`
	Street         string        `json:"street,omitempty"`
	Button         int           `json:"button"`
	Board          []poker.Card  `json:"board"`
	Seats          []*SeatView   `json:"seats"`
	Pot            UpdatePotSize `json:"pot"`
	ActingSeat     int           `json:"actingSeat"`
	AmountToCall   int           `json:"amountToCall"`
	MinRaiseTo     int           `json:"minRaiseTo"`
	TimeoutSeconds int           `json:"timeoutSeconds"`
}

// Error message
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
