package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"nutricionista-backend/internal/middleware"
	"nutricionista-backend/internal/models"
)

func TestHandleWebSocket_RejectsBadTokens(t *testing.T) {
	hub := NewHub(nil, middleware.NewJWTAuth("test-secret"))
	other := middleware.NewJWTAuth("other-secret")
	forged, _ := other.GenerateSessionToken(uuid.New(), time.Hour)

	tests := []struct {
		name  string
		query string
	}{
		{"missing token", ""},
		{"garbage token", "?token=not-a-jwt"},
		{"wrong secret", "?token=" + forged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			hub.HandleWebSocket(rr, httptest.NewRequest(http.MethodGet, "/api/v1/ws"+tt.query, nil))
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func readMessage(t *testing.T, conn *websocket.Conn, payload interface{}) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("bad message: %v", err)
	}
	if err := json.Unmarshal(msg.Payload, payload); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	return msg.Type
}

func TestHub_GreetsThenBroadcasts(t *testing.T) {
	jwt := middleware.NewJWTAuth("test-secret")
	hub := NewHub(nil, jwt)
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	id := uuid.New()
	token, err := jwt.GenerateSessionToken(id, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	var hello models.ConnectedEvent
	if typ := readMessage(t, conn, &hello); typ != "connected" || hello.SessionID != id {
		t.Fatalf("unexpected greeting: %s %+v", typ, hello)
	}

	data, _ := json.Marshal(models.WSMessage{
		Type:    "slot_update",
		Payload: models.SlotUpdate{SessionID: id, Slot: models.SlotChat, Status: models.StatusPending},
	})
	hub.broadcast(uuid.New(), []byte(`{"type":"slot_update","payload":{}}`))
	hub.broadcast(id, data)

	var update models.SlotUpdate
	if typ := readMessage(t, conn, &update); typ != "slot_update" || update.Slot != models.SlotChat || update.Status != models.StatusPending {
		t.Fatalf("unexpected message: %s %+v", typ, update)
	}
	if update.SessionID != id {
		t.Fatalf("received another session's update: %+v", update)
	}
}
