package server

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/internal/protocol"
	"github.com/lox/pokerrooms/internal/room"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Requests that need a room.
var roomRequests = []protocol.Type{
	protocol.TypeJoinSeat,
	protocol.TypeLeaveSeat,
	protocol.TypeStartGame,
	protocol.TypeTableTurn,
	protocol.TypeGetState,
}

// ErrConnectionClosed is returned when sending to a closed connection.
var ErrConnectionClosed = errors.New("connection closed")

// Connection is one WebSocket client. It subscribes to at most one room at a
// time and implements room.Subscriber.
type Connection struct {
	id        string
	conn      *websocket.Conn
	send      chan *protocol.Message
	server    *Server
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu       sync.Mutex
	roomCode string
}

func newConnection(ws *websocket.Conn, s *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	return &Connection{
		id:     id,
		conn:   ws,
		send:   make(chan *protocol.Message, s.settings.SendBuffer),
		server: s,
		logger: s.logger.WithPrefix("conn").With("conn", id),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the connection id.
func (c *Connection) ID() string { return c.id }

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// Send queues msg without blocking. A client that lets its buffer fill up is
// disconnected.
func (c *Connection) Send(msg *protocol.Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

func (c *Connection) currentRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode
}

func (c *Connection) setRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		_ = c.Close() // Ignore close errors during cleanup
		if code := c.currentRoom(); code != "" {
			c.server.manager.Leave(code, c.id)
		}
		c.server.unregister(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		msg, err := protocol.Unmarshal(data)
		if err != nil {
			c.sendError(err)
			continue
		}
		if err := c.handleMessage(msg); err != nil {
			c.logger.Debug("Request rejected", "type", msg.Type, "error", err)
			c.sendError(err)
		}
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case msg := <-c.send:
			data, err := protocol.Marshal(msg)
			if err != nil {
				c.logger.Error("Failed to encode message", "type", msg.Type, "error", err)
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

// handleMessage routes a client request to its room. The returned error is
// reported to this client only.
func (c *Connection) handleMessage(msg *protocol.Message) error {
	c.logger.Debug("Received message", "type", msg.Type)

	if msg.Type == protocol.TypeJoinRoom {
		var data protocol.JoinRoom
		if err := msg.Decode(&data); err != nil {
			return err
		}
		return c.joinRoom(data)
	}

	if !slices.Contains(roomRequests, msg.Type) {
		return fmt.Errorf("%w: unknown message type %q", protocol.ErrInvalidMessage, msg.Type)
	}
	code := c.currentRoom()
	if code == "" {
		return game.ErrNotInRoom
	}
	r, ok := c.server.manager.Get(code)
	if !ok {
		return game.ErrNotInRoom
	}

	switch msg.Type {
	case protocol.TypeJoinSeat:
		var data protocol.JoinSeat
		if err := msg.Decode(&data); err != nil {
			return err
		}
		return r.JoinSeat(c.id, data)

	case protocol.TypeLeaveSeat:
		return r.LeaveSeat(c.id)

	case protocol.TypeStartGame:
		return r.StartHand(c.id)

	case protocol.TypeTableTurn:
		var data protocol.TableTurn
		if err := msg.Decode(&data); err != nil {
			return err
		}
		return r.SubmitAction(c.id, data)

	default: // protocol.TypeGetState
		return r.SendState(c.id)
	}
}

func (c *Connection) joinRoom(data protocol.JoinRoom) error {
	if prev := c.currentRoom(); prev != "" {
		c.server.manager.Leave(prev, c.id)
		c.setRoom("")
	}
	_, identity, err := c.server.manager.Join(data.RoomCode, c, data.PlayerID)
	if err != nil {
		return err
	}
	c.setRoom(data.RoomCode)
	c.logger.Info("Joined room", "room", data.RoomCode, "player", identity)
	return nil
}

func (c *Connection) sendError(err error) {
	msg := protocol.NewError(err, time.Now())
	if errors.Is(err, room.ErrInvalidCode) {
		msg, _ = protocol.New(protocol.TypeError, protocol.Error{Code: protocol.CodeInvalidRoom, Message: err.Error()}, time.Now())
	}
	_ = c.Send(msg) // The client may already be gone
}
