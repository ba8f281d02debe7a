package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub manages WebSocket connections and broadcasts messages to room members.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]Sender   // player_id -> connection
	rooms       map[string][]uuid.UUID // room_code -> []player_id
	logger      zerolog.Logger
}

// Sender is a queue-backed outbound connection.
type Sender interface {
	Send(msg Message) error
	Close()
}

// NewHub creates a new WebSocket hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]Sender),
		rooms:       make(map[string][]uuid.UUID),
		logger:      logger.With().Str("component", "ws_hub").Logger(),
	}
}

// Register adds a player's connection and joins it to the room. A second
// connection for the same player replaces the first.
func (h *Hub) Register(roomCode string, playerID uuid.UUID, conn Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, exists := h.connections[playerID]; exists && old != conn {
		old.Close()
	}
	h.connections[playerID] = conn

	members := h.rooms[roomCode]
	for _, id := range members {
		if id == playerID {
			return
		}
	}
	h.rooms[roomCode] = append(members, playerID)
	h.logger.Info().Str("room_code", roomCode).Str("player_id", playerID.String()).Msg("connection registered")
}

// Unregister removes the player's connection if it is still conn.
func (h *Hub) Unregister(roomCode string, playerID uuid.UUID, conn Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, exists := h.connections[playerID]
	if !exists || current != conn {
		return
	}
	current.Close()
	delete(h.connections, playerID)

	members := h.rooms[roomCode]
	for i, id := range members {
		if id == playerID {
			h.rooms[roomCode] = append(members[:i:i], members[i+1:]...)
			break
		}
	}
	if len(h.rooms[roomCode]) == 0 {
		delete(h.rooms, roomCode)
	}
	h.logger.Info().Str("room_code", roomCode).Str("player_id", playerID.String()).Msg("connection unregistered")
}

// Members returns the players connected to a room.
func (h *Hub) Members(roomCode string) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]uuid.UUID(nil), h.rooms[roomCode]...)
}

// BroadcastToRoom sends a message to every connected player of a room.
func (h *Hub) BroadcastToRoom(roomCode string, msg Message) error {
	var firstErr error
	for _, playerID := range h.Members(roomCode) {
		if err := h.SendToPlayer(playerID, msg); err != nil && firstErr == nil {
			firstErr = err
			h.logger.Warn().Err(err).Str("player_id", playerID.String()).Msg("broadcast_send_failed")
		}
	}
	return firstErr
}

// SendToPlayer delivers a message to a specific player.
func (h *Hub) SendToPlayer(playerID uuid.UUID, msg Message) error {
	h.mu.RLock()
	conn, exists := h.connections[playerID]
	h.mu.RUnlock()

	if !exists {
		return ErrConnectionNotFound
	}
	return conn.Send(msg)
}

// Connection represents a WebSocket connection with send queue.
type Connection struct {
	conn   *websocket.Conn
	sendCh chan Message
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	writeWait  = 10 * time.Second
)

// NewConnection wraps a WebSocket connection.
func NewConnection(conn *websocket.Conn, logger zerolog.Logger) *Connection {
	return &Connection{
		conn:   conn,
		sendCh: make(chan Message, 256),
		logger: logger,
	}
}

// Send queues a message for delivery.
func (c *Connection) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.sendCh <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close shuts down the connection.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.sendCh)
	c.conn.Close()
}

// WritePump sends messages from the send queue and keeps the peer alive
// with pings.
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Warn().Err(err).Msg("write error")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump receives messages and calls the handler.
func (c *Connection) ReadPump(handler func(Message) error) {
	defer c.conn.Close()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("read error")
			}
			break
		}

		if err := handler(msg); err != nil {
			c.logger.Warn().Err(err).Msg("message handler error")
		}
	}
}

var (
	ErrConnectionNotFound = &Error{Code: "connection_not_found", Message: "Player connection not found"}
	ErrConnectionClosed   = &Error{Code: "connection_closed", Message: "Connection is closed"}
	ErrSendQueueFull      = &Error{Code: "send_queue_full", Message: "Send queue is full"}
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
