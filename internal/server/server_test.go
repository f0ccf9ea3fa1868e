package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerrooms/internal/protocol"
	"github.com/lox/pokerrooms/internal/room"
	"github.com/lox/pokerrooms/poker"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// newTestServer serves a manager whose rooms deal from a deck that gives
// seat 1 aces and seat 0 kings heads-up.
func newTestServer(t *testing.T, opts ...room.Option) (*httptest.Server, *room.Manager) {
	t.Helper()
	decks := room.WithDecks(func(string) room.DeckSource {
		return func() (*poker.Deck, error) {
			return poker.NewStackedDeck(poker.MustParseCards("As Kc Ad Kd 2h 7s 9c 3d 4h")...)
		}
	})
	opts = append([]room.Option{room.WithClock(quartz.NewMock(t)), decks}, opts...)
	manager, err := room.NewManager(room.DefaultConfig(), testLogger(), opts...)
	require.NoError(t, err)

	cfg := DefaultConfig()
	srv := New(*cfg.Server, manager, testLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.closeAll()
		manager.Close()
	})
	return ts, manager
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, ts *httptest.Server) *client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &client{t: t, conn: conn}
}

func (c *client) send(typ protocol.Type, data any) {
	c.t.Helper()
	msg, err := protocol.New(typ, data, time.Now())
	require.NoError(c.t, err)
	b, err := protocol.Marshal(msg)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, b))
}

func (c *client) next() *protocol.Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := c.conn.ReadMessage()
	require.NoError(c.t, err)
	msg, err := protocol.Unmarshal(data)
	require.NoError(c.t, err)
	return msg
}

// expect reads until a message of type typ arrives and decodes it into v.
// Everything read on the way is returned.
func (c *client) expect(typ protocol.Type, v any) []protocol.Type {
	c.t.Helper()
	var seen []protocol.Type
	for {
		msg := c.next()
		seen = append(seen, msg.Type)
		if msg.Type == typ {
			if v != nil {
				require.NoError(c.t, msg.Decode(v))
			}
			return seen
		}
	}
}

// waitSeated reads player updates until n seats are taken.
func (c *client) waitSeated(n int) {
	c.t.Helper()
	for {
		var up protocol.UpdatePlayers
		c.expect(protocol.TypeUpdatePlayers, &up)
		taken := 0
		for _, s := range up.Seats {
			if s != nil {
				taken++
			}
		}
		if taken == n {
			return
		}
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestRoomsListsActiveRooms(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)

	alice := dial(t, ts)
	alice.send(protocol.TypeJoinRoom, protocol.JoinRoom{RoomCode: "lobby"})
	alice.expect(protocol.TypeTableSnapshot, nil)

	resp, err := http.Get(ts.URL + "/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var rooms []room.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "lobby", rooms[0].Code)
	assert.Equal(t, 1, rooms[0].Subscribers)
}

func TestPlayHandOverWebSocket(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)
	alice, bob := dial(t, ts), dial(t, ts)

	alice.send(protocol.TypeJoinRoom, protocol.JoinRoom{RoomCode: "table", PlayerID: "alice-id"})
	var joined protocol.RoomJoined
	alice.expect(protocol.TypeRoomJoined, &joined)
	assert.Equal(t, "alice-id", joined.PlayerID)
	assert.Equal(t, -1, joined.SeatIndex)
	alice.expect(protocol.TypeTableSnapshot, nil)

	bob.send(protocol.TypeJoinRoom, protocol.JoinRoom{RoomCode: "table"})
	bob.expect(protocol.TypeRoomJoined, &joined)
	assert.NotEmpty(t, joined.PlayerID, "identity is generated when none is given")

	alice.send(protocol.TypeJoinSeat, protocol.JoinSeat{SeatIndex: 0, Name: "alice"})
	bob.send(protocol.TypeJoinSeat, protocol.JoinSeat{SeatIndex: 1, Name: "bob"})
	alice.waitSeated(2)

	alice.send(protocol.TypeStartGame, nil)

	var start protocol.StartRound
	bob.expect(protocol.TypeStartRound, &start)
	assert.Equal(t, 0, start.Button)

	var turn protocol.PlayerTurn
	bob.expect(protocol.TypePlayerTurn, &turn)
	assert.Equal(t, 0, turn.SeatIndex)

	// bob acting out of turn is told so, and only bob
	bob.send(protocol.TypeTableTurn, protocol.TableTurn{SeatIndex: 1, Action: "check"})
	var rejected protocol.Error
	bob.expect(protocol.TypeError, &rejected)
	assert.Equal(t, protocol.CodeOutOfTurn, rejected.Code)

	alice.send(protocol.TypeTableTurn, protocol.TableTurn{SeatIndex: 0, Action: "fold"})

	var result protocol.HandResult
	seen := alice.expect(protocol.TypeHandResult, &result)
	assert.NotContains(t, seen, protocol.TypeError)
	require.Len(t, result.Winners, 1)
	assert.Equal(t, 1, result.Winners[0].SeatIndex)
	assert.Equal(t, "bob", result.Winners[0].Name)
	assert.True(t, result.Uncontested)

	bob.expect(protocol.TypeHandResult, nil)
	bob.expect(protocol.TypeRestartGame, nil)
}

func TestErrorsGoToSender(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, room.WithCodeValidator(func(code string) error {
		if code == "nope" {
			return assert.AnError
		}
		return nil
	}))
	c := dial(t, ts)

	tests := []struct {
		name string
		send func()
		code string
	}{
		{
			name: "malformed json",
			send: func() { require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("{not json"))) },
			code: protocol.CodeInvalidMessage,
		},
		{
			name: "action before joining a room",
			send: func() { c.send(protocol.TypeStartGame, nil) },
			code: protocol.CodeNotInRoom,
		},
		{
			name: "rejected room code",
			send: func() { c.send(protocol.TypeJoinRoom, protocol.JoinRoom{RoomCode: "nope"}) },
			code: protocol.CodeInvalidRoom,
		},
		{
			name: "unknown type",
			send: func() { c.send(protocol.Type("dance"), nil) },
			code: protocol.CodeInvalidMessage,
		},
	}

	// One connection, so the cases run in order.
	for _, tt := range tests {
		tt.send()
		var e protocol.Error
		c.expect(protocol.TypeError, &e)
		assert.Equal(t, tt.code, e.Code, tt.name)
		assert.NotEmpty(t, e.Message, tt.name)
	}
}

func TestSpectatorCannotStart(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)
	c := dial(t, ts)

	c.send(protocol.TypeJoinRoom, protocol.JoinRoom{RoomCode: "table"})
	c.expect(protocol.TypeTableSnapshot, nil)
	c.send(protocol.TypeStartGame, nil)

	var e protocol.Error
	c.expect(protocol.TypeError, &e)
	assert.Equal(t, protocol.CodeNotSeated, e.Code)
}

func TestGetStateReturnsSnapshot(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)
	c := dial(t, ts)

	c.send(protocol.TypeJoinRoom, protocol.JoinRoom{RoomCode: "table", PlayerID: "p1"})
	c.expect(protocol.TypeTableSnapshot, nil)
	c.send(protocol.TypeJoinSeat, protocol.JoinSeat{SeatIndex: 1, Name: "carol"})
	c.expect(protocol.TypeUpdatePlayers, nil)

	c.send(protocol.TypeGetState, nil)
	var snap protocol.TableSnapshot
	c.expect(protocol.TypeTableSnapshot, &snap)
	assert.Equal(t, "table", snap.RoomCode)
	assert.Equal(t, 1, snap.YourSeat)
	assert.False(t, snap.HandActive)
	require.Len(t, snap.Seats, 2)
	assert.Nil(t, snap.Seats[0])
	require.NotNil(t, snap.Seats[1])
	assert.Equal(t, "carol", snap.Seats[1].Name)
	assert.Equal(t, 1000, snap.Seats[1].Chips)
}

func TestDisconnectRemovesEmptyRoom(t *testing.T) {
	t.Parallel()
	ts, manager := newTestServer(t)
	c := dial(t, ts)

	c.send(protocol.TypeJoinRoom, protocol.JoinRoom{RoomCode: "brief"})
	c.expect(protocol.TypeTableSnapshot, nil)
	_, ok := manager.Get("brief")
	require.True(t, ok)

	require.NoError(t, c.conn.Close())
	assert.Eventually(t, func() bool {
		_, ok := manager.Get("brief")
		return !ok
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCheckOrigin(t *testing.T) {
	t.Parallel()
	tests := []struct {
		allowed []string
		origin  string
		want    bool
	}{
		{nil, "http://evil.example", true},
		{[]string{"http://app.example"}, "", true},
		{[]string{"http://app.example"}, "http://app.example", true},
		{[]string{"http://app.example"}, "http://evil.example", false},
		{[]string{"*"}, "http://evil.example", true},
	}
	for _, tt := range tests {
		s := &Server{settings: ServerSettings{AllowedOrigins: tt.allowed}}
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, s.checkOrigin(r), "allowed=%v origin=%q", tt.allowed, tt.origin)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	t.Parallel()
	manager, err := room.NewManager(room.DefaultConfig(), testLogger())
	require.NoError(t, err)
	defer manager.Close()

	settings := DefaultConfig().Server
	settings.Address = "127.0.0.1:0"
	srv := New(*settings, manager, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
