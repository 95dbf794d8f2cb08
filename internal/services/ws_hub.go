package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const wsWriteTimeout = 10 * time.Second

// WebSocket message types
const (
	WSTypeBalanceUpdated = "balance_updated"
	WSTypeError          = "error"
	WSTypePong           = "pong"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Balance   *int64 `json:"balance,omitempty"`
	Message   string `json:"message,omitempty"`
}

// wsConn serializes writes to one connection
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections, one per user
type WSHub struct {
	mu          sync.RWMutex
	connections map[int64]*wsConn
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[int64]*wsConn),
	}
}

// Register registers a new WebSocket connection for a user, closing any previous one
func (h *WSHub) Register(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.connections[userID]; exists {
		existing.conn.Close()
	}
	h.connections[userID] = &wsConn{conn: conn}

	log.Info().Int64("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes the connection of a user if it is still the given one
func (h *WSHub) Unregister(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, exists := h.connections[userID]; exists && c.conn == conn {
		c.conn.Close()
		delete(h.connections, userID)
		log.Info().Int64("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID int64, message WSMessage) error {
	h.mu.RLock()
	c, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %d is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := c.write(data); err != nil {
		h.Unregister(userID, c.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// BalanceChanged sends the new balance to the user when connected
func (h *WSHub) BalanceChanged(_ context.Context, userID, balance int64) {
	if !h.IsOnline(userID) {
		return
	}
	message := WSMessage{
		Type:      WSTypeBalanceUpdated,
		Timestamp: time.Now().UnixMilli(),
		Balance:   &balance,
	}
	if err := h.SendToUser(userID, message); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to send balance update")
	}
}

// CloseAll closes every connection; used on shutdown
func (h *WSHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, c := range h.connections {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.conn.Close()
		delete(h.connections, userID)
	}
}
