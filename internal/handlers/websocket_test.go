package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tripshare-backend/internal/models"
	"tripshare-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWS(t *testing.T, e *env) string {
	t.Helper()
	h := NewWebSocketHandler(e.hub, e.users, e.tripSvc, e.photoSvc, "*")
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, base, token, tripID string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(base+"?token="+token+"&trip_id="+tripID, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readType reads until a message of type typ arrives
func readType(t *testing.T, conn *websocket.Conn, typ string) services.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg services.WSMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == typ {
			return msg
		}
	}
}

func TestWebSocketRejectsBadHandshake(t *testing.T) {
	e := newEnv(t)
	base := startWS(t, e)

	_, resp, err := websocket.DefaultDialer.Dial(base+"?trip_id=trip-1", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"?token=garbage&trip_id=trip-1", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"?token="+e.token(t, "outsider")+"&trip_id=trip-1", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebSocketPresenceAndCursors(t *testing.T) {
	e := newEnv(t)
	base := startWS(t, e)

	owner := dial(t, base, e.token(t, "owner"), "trip-1")
	collab := dial(t, base, e.token(t, "collab"), "trip-1")

	presence := readType(t, owner, services.MsgPresence)
	assert.Equal(t, "collab", presence.UserID)
	require.NotNil(t, presence.Online)
	assert.True(t, *presence.Online)

	presence = readType(t, collab, services.MsgPresence)
	assert.Equal(t, "owner", presence.UserID)

	require.NoError(t, collab.WriteJSON(map[string]interface{}{"type": "cursor", "x": 1.7, "y": 0.25}))
	cur := readType(t, owner, services.MsgCursor)
	assert.Equal(t, "collab", cur.UserID)
	assert.Equal(t, 1.0, *cur.X)
	assert.Equal(t, 0.25, *cur.Y)

	require.NoError(t, owner.WriteJSON(map[string]string{"type": "dance"}))
	errMsg := readType(t, owner, services.MsgError)
	assert.Equal(t, "Unknown message type", errMsg.Message)

	collab.Close()
	removed := readType(t, owner, services.MsgCursorRemoved)
	assert.Equal(t, "collab", removed.UserID)
}

func TestWebSocketPhotoUploaded(t *testing.T) {
	e := newEnv(t)
	base := startWS(t, e)
	e.photos.byID["photo-1"] = &models.Photo{ID: "photo-1", TripID: "trip-1", UserID: "owner", StorageKey: "trips/trip-1/photo-1.jpg"}

	owner := dial(t, base, e.token(t, "owner"), "trip-1")
	require.NoError(t, owner.WriteJSON(services.WSMessage{Type: services.MsgPhotoUploaded, PhotoID: "photo-1"}))

	change := readType(t, owner, services.MsgChange)
	assert.Equal(t, "photos", change.Table)
	assert.Equal(t, "photo-1", change.ID)

	photo, err := e.photos.GetByID(t.Context(), "photo-1")
	require.NoError(t, err)
	assert.True(t, photo.Uploaded)

	require.NoError(t, owner.WriteJSON(services.WSMessage{Type: services.MsgPhotoUploaded, PhotoID: "missing"}))
	errMsg := readType(t, owner, services.MsgError)
	assert.Equal(t, "Failed to confirm photo", errMsg.Message)
}

func TestWebSocketPhotoUploadedRejectsOtherTrip(t *testing.T) {
	e := newEnv(t)
	base := startWS(t, e)
	require.NoError(t, e.trips.Create(t.Context(), &models.Trip{ID: "trip-2", OwnerID: "owner", Title: "Porto", Destination: "Porto"}))
	e.photos.byID["photo-2"] = &models.Photo{ID: "photo-2", TripID: "trip-2", UserID: "owner", StorageKey: "trips/trip-2/photo-2.jpg"}

	owner := dial(t, base, e.token(t, "owner"), "trip-1")
	require.NoError(t, owner.WriteJSON(services.WSMessage{Type: services.MsgPhotoUploaded, PhotoID: "photo-2"}))

	errMsg := readType(t, owner, services.MsgError)
	assert.Equal(t, "Failed to confirm photo", errMsg.Message)

	photo, err := e.photos.GetByID(t.Context(), "photo-2")
	require.NoError(t, err)
	assert.False(t, photo.Uploaded)
}
