package services

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// WebSocket message types
const (
	MsgPresence      = "presence"
	MsgCursor        = "cursor"
	MsgCursorRemoved = "cursor_removed"
	MsgChange        = "change"
	MsgError         = "error"
	MsgPhotoUploaded = "photo_uploaded"
)

// WSMessage represents a WebSocket message in either direction
type WSMessage struct {
	Type    string   `json:"type"`
	UserID  string   `json:"user_id,omitempty"`
	Online  *bool    `json:"online,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Table   string   `json:"table,omitempty"`
	Action  string   `json:"action,omitempty"`
	ID      string   `json:"id,omitempty"`
	PhotoID string   `json:"photo_id,omitempty"`
	Message string   `json:"message,omitempty"`
}

// HubConfig tunes the trip channels
type HubConfig struct {
	CursorThrottle time.Duration
	CursorStale    time.Duration
	SweepInterval  time.Duration
	SendBuffer     int
}

// DefaultHubConfig is a 50ms cursor throttle, 3s stale timeout and 1s sweep
var DefaultHubConfig = HubConfig{
	CursorThrottle: 50 * time.Millisecond,
	CursorStale:    3 * time.Second,
	SweepInterval:  time.Second,
	SendBuffer:     64,
}

// Client is one connection joined to a trip room
type Client struct {
	UserID string
	TripID string
	send   chan []byte
}

// Send returns the outbound message queue. It is closed when the client leaves.
func (c *Client) Send() <-chan []byte {
	return c.send
}

type cursor struct {
	x, y     float64
	lastSeen time.Time
}

// Hub manages trip rooms: presence, shared cursors and change events
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	cursors map[string]map[string]*cursor
	cfg     HubConfig
	now     func() time.Time
}

// NewHub creates a new hub; zero config fields take defaults
func NewHub(cfg HubConfig) *Hub {
	if cfg.CursorThrottle <= 0 {
		cfg.CursorThrottle = DefaultHubConfig.CursorThrottle
	}
	if cfg.CursorStale <= 0 {
		cfg.CursorStale = DefaultHubConfig.CursorStale
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultHubConfig.SweepInterval
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultHubConfig.SendBuffer
	}
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		cursors: make(map[string]map[string]*cursor),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Join adds a connection to a trip room. The newcomer receives the presence of
// users already in the room; the others are told the newcomer is online.
func (h *Hub) Join(tripID, userID string) *Client {
	c := &Client{UserID: userID, TripID: tripID, send: make(chan []byte, h.cfg.SendBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[tripID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[tripID] = room
	}
	alreadyOnline := userOnline(room, userID)
	room[c] = struct{}{}

	online := true
	for _, other := range onlineUsers(room) {
		if other != userID {
			h.deliver(c, WSMessage{Type: MsgPresence, UserID: other, Online: &online})
		}
	}
	for other, cur := range h.cursors[tripID] {
		x, y := cur.x, cur.y
		h.deliver(c, WSMessage{Type: MsgCursor, UserID: other, X: &x, Y: &y})
	}
	if !alreadyOnline {
		h.broadcastLocked(tripID, WSMessage{Type: MsgPresence, UserID: userID, Online: &online}, c)
	}

	log.Info().Str("trip_id", tripID).Str("user_id", userID).Msg("WebSocket client joined")
	return c
}

// Leave removes a connection and closes its queue. When it was the user's last
// connection in the room their cursor is removed and they go offline.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.leaveLocked(c) {
		log.Info().Str("trip_id", c.TripID).Str("user_id", c.UserID).Msg("WebSocket client left")
	}
}

// Evict disconnects every connection userID holds in a trip room and returns
// how many were closed. Each connection is told why before its queue closes.
func (h *Hub) Evict(tripID, userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.evictLocked(tripID, userID)
}

// EvictUser disconnects userID from every trip room
func (h *Hub) EvictUser(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for tripID := range h.rooms {
		n += h.evictLocked(tripID, userID)
	}
	return n
}

func (h *Hub) evictLocked(tripID, userID string) int {
	n := 0
	for c := range h.rooms[tripID] {
		if c.UserID != userID {
			continue
		}
		h.deliver(c, WSMessage{Type: MsgError, Message: "Access to this trip was revoked"})
		h.leaveLocked(c)
		n++
	}
	if n > 0 {
		log.Info().
			Str("trip_id", tripID).
			Str("user_id", userID).
			Int("connections", n).
			Msg("WebSocket clients evicted")
	}
	return n
}

// leaveLocked requires h.mu to be held; it reports whether c was still joined
func (h *Hub) leaveLocked(c *Client) bool {
	room, ok := h.rooms[c.TripID]
	if !ok {
		return false
	}
	if _, ok := room[c]; !ok {
		return false
	}
	delete(room, c)
	close(c.send)

	if !userOnline(room, c.UserID) {
		if h.removeCursorLocked(c.TripID, c.UserID) {
			h.broadcastLocked(c.TripID, WSMessage{Type: MsgCursorRemoved, UserID: c.UserID}, nil)
		}
		offline := false
		h.broadcastLocked(c.TripID, WSMessage{Type: MsgPresence, UserID: c.UserID, Online: &offline}, nil)
	}
	if len(room) == 0 {
		delete(h.rooms, c.TripID)
		delete(h.cursors, c.TripID)
	}
	return true
}

// Broadcast sends msg to every connection in a trip room except skip
func (h *Hub) Broadcast(tripID string, msg WSMessage, skip *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.broadcastLocked(tripID, msg, skip)
}

// PublishChange announces a row change to a trip room
func (h *Hub) PublishChange(tripID, table, action, id string) {
	h.Broadcast(tripID, WSMessage{Type: MsgChange, Table: table, Action: action, ID: id}, nil)
}

// SendError queues an error message for one connection
func (h *Hub) SendError(c *Client, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[c.TripID]; ok {
		if _, ok := room[c]; ok {
			h.deliver(c, WSMessage{Type: MsgError, Message: message})
		}
	}
}

// UpdateCursor records a cursor position and relays it to the rest of the
// room. Updates faster than the throttle are dropped and report false.
func (h *Hub) UpdateCursor(c *Client, x, y float64) bool {
	x, y = NormalizeCursor(x, y)
	now := h.now()

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[c.TripID][c]; !ok {
		return false
	}
	trip, ok := h.cursors[c.TripID]
	if !ok {
		trip = make(map[string]*cursor)
		h.cursors[c.TripID] = trip
	}
	if cur, ok := trip[c.UserID]; ok && now.Sub(cur.lastSeen) < h.cfg.CursorThrottle {
		return false
	}
	trip[c.UserID] = &cursor{x: x, y: y, lastSeen: now}

	h.broadcastLocked(c.TripID, WSMessage{Type: MsgCursor, UserID: c.UserID, X: &x, Y: &y}, c)
	return true
}

// SweepStale removes cursors idle longer than the stale timeout and returns
// how many were removed
func (h *Hub) SweepStale() int {
	cutoff := h.now().Add(-h.cfg.CursorStale)

	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for tripID, trip := range h.cursors {
		for userID, cur := range trip {
			if cur.lastSeen.Before(cutoff) {
				delete(trip, userID)
				removed++
				h.broadcastLocked(tripID, WSMessage{Type: MsgCursorRemoved, UserID: userID}, nil)
			}
		}
		if len(trip) == 0 {
			delete(h.cursors, tripID)
		}
	}
	return removed
}

// Run sweeps stale cursors until ctx is done
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.SweepStale()
		}
	}
}

// Online returns the users connected to a trip room, sorted
func (h *Hub) Online(tripID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return onlineUsers(h.rooms[tripID])
}

// NormalizeCursor clamps coordinates into [0,1]; non-finite values become 0
func NormalizeCursor(x, y float64) (float64, float64) {
	return clamp01(x), clamp01(y)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func (h *Hub) removeCursorLocked(tripID, userID string) bool {
	trip, ok := h.cursors[tripID]
	if !ok {
		return false
	}
	if _, ok := trip[userID]; !ok {
		return false
	}
	delete(trip, userID)
	return true
}

// broadcastLocked requires h.mu to be held
func (h *Hub) broadcastLocked(tripID string, msg WSMessage, skip *Client) {
	for c := range h.rooms[tripID] {
		if c != skip {
			h.deliver(c, msg)
		}
	}
}

// deliver queues msg without blocking; a full queue drops it
func (h *Hub) deliver(c *Client, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal WebSocket message")
		return
	}
	select {
	case c.send <- data:
	default:
		log.Debug().
			Str("trip_id", c.TripID).
			Str("user_id", c.UserID).
			Str("type", msg.Type).
			Msg("WebSocket send queue full, message dropped")
	}
}

func userOnline(room map[*Client]struct{}, userID string) bool {
	for c := range room {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

func onlineUsers(room map[*Client]struct{}) []string {
	seen := make(map[string]struct{}, len(room))
	out := []string{}
	for c := range room {
		if _, ok := seen[c.UserID]; ok {
			continue
		}
		seen[c.UserID] = struct{}{}
		out = append(out, c.UserID)
	}
	sort.Strings(out)
	return out
}
