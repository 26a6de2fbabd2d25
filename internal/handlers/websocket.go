package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tripshare-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketHandler handles trip channel connections
type WebSocketHandler struct {
	hub          *services.Hub
	userService  *services.UserService
	tripService  *services.TripService
	photoService *services.PhotoService
	upgrader     websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler. allowedOrigin "*" accepts
// any origin.
func NewWebSocketHandler(
	hub *services.Hub,
	userService *services.UserService,
	tripService *services.TripService,
	photoService *services.PhotoService,
	allowedOrigin string,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		userService:  userService,
		tripService:  tripService,
		photoService: photoService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// HandleWebSocket handles GET /ws?token=...&trip_id=...
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}
	tripID := r.URL.Query().Get("trip_id")
	if tripID == "" {
		respondError(w, "trip_id required", http.StatusBadRequest)
		return
	}

	profile, err := h.userService.Authenticate(r.Context(), token)
	if err != nil {
		respondServiceError(w, r, err, "WebSocket authentication failed")
		return
	}
	if _, err := h.tripService.Authorize(r.Context(), profile.ID, tripID, services.AccessRead); err != nil {
		respondServiceError(w, r, err, "WebSocket trip access denied")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := h.hub.Join(tripID, profile.ID)
	log.Info().Str("user_id", profile.ID).Str("trip_id", tripID).Msg("WebSocket connection established")

	go h.writePump(conn, client)
	h.readPump(context.WithoutCancel(r.Context()), conn, client)
}

// readPump dispatches client messages until the connection fails, then leaves
// the room, which stops the write pump.
func (h *WebSocketHandler) readPump(ctx context.Context, conn *websocket.Conn, client *services.Client) {
	defer h.hub.Leave(client)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", client.UserID).Msg("WebSocket error")
			}
			return
		}

		var msg services.WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Str("user_id", client.UserID).Msg("Failed to parse WebSocket message")
			h.hub.SendError(client, "Invalid message format")
			continue
		}
		h.handleMessage(ctx, client, msg)
	}
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(ctx context.Context, client *services.Client, msg services.WSMessage) {
	switch msg.Type {
	case services.MsgCursor:
		if msg.X == nil || msg.Y == nil {
			h.hub.SendError(client, "x and y are required")
			return
		}
		h.hub.UpdateCursor(client, *msg.X, *msg.Y)
	case services.MsgPhotoUploaded:
		h.handlePhotoUploaded(ctx, client, msg)
	default:
		h.hub.SendError(client, "Unknown message type")
	}
}

// handlePhotoUploaded handles photo_uploaded message
func (h *WebSocketHandler) handlePhotoUploaded(ctx context.Context, client *services.Client, msg services.WSMessage) {
	if msg.PhotoID == "" {
		h.hub.SendError(client, "photo_id is required")
		return
	}

	if _, err := h.photoService.ConfirmUpload(ctx, client.UserID, client.TripID, msg.PhotoID); err != nil {
		log.Warn().
			Err(err).
			Str("user_id", client.UserID).
			Str("trip_id", client.TripID).
			Str("photo_id", msg.PhotoID).
			Msg("Failed to confirm photo upload")
		h.hub.SendError(client, "Failed to confirm photo")
		return
	}

	log.Info().
		Str("user_id", client.UserID).
		Str("photo_id", msg.PhotoID).
		Msg("Photo uploaded")
}

// writePump forwards queued messages and keeps the connection alive with pings
func (h *WebSocketHandler) writePump(conn *websocket.Conn, client *services.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.Send():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("user_id", client.UserID).Msg("WebSocket write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
