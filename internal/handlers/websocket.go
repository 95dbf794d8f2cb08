package handlers

import (
	"encoding/json"
	"net/http"

	"recycle-backend/internal/middleware"
	"recycle-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const wsTypePing = "ping"

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub       *services.WSHub
	validator middleware.TokenValidator
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, validator middleware.TokenValidator) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		validator: validator,
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.validator.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	log.Info().Int64("user_id", userID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Int64("user_id", userID).Msg("WebSocket error")
			}
			return
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.reply(userID, services.WSMessage{Type: services.WSTypeError, Message: "Invalid message format"})
			continue
		}

		switch msg.Type {
		case wsTypePing:
			h.reply(userID, services.WSMessage{Type: services.WSTypePong, Timestamp: msg.Timestamp})
		default:
			h.reply(userID, services.WSMessage{Type: services.WSTypeError, Message: "Unknown message type"})
		}
	}
}

// reply goes through the hub so writes stay serialized with balance pushes
func (h *WebSocketHandler) reply(userID int64, msg services.WSMessage) {
	if err := h.hub.SendToUser(userID, msg); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Str("type", msg.Type).Msg("Failed to send WebSocket message")
	}
}
