package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/m8keys/internal/animation"
	"github.com/abrezinsky/m8keys/internal/dataset"
	"github.com/abrezinsky/m8keys/internal/errors"
	"github.com/abrezinsky/m8keys/internal/logger"
	"github.com/abrezinsky/m8keys/internal/models"
	"github.com/abrezinsky/m8keys/internal/services"
	"github.com/abrezinsky/m8keys/internal/store"
	"github.com/abrezinsky/m8keys/internal/testutil"
	"github.com/abrezinsky/m8keys/pkg/datasetclient"
)

func newTestHub(t *testing.T, opts ...datasetclient.MockOption) *Hub {
	t.Helper()
	opts = append([]datasetclient.MockOption{datasetclient.WithDataset(testutil.Compact(t))}, opts...)
	st := store.New(logger.Discard(), datasetclient.NewMockClient(opts...), dataset.NewResolver(logger.Discard(), dataset.Options{}))
	viewer := services.NewViewerService(logger.Discard(), st, animation.DefaultConfig(), "")
	hub := New(logger.Discard(), viewer)
	hub.Start()
	return hub
}

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(server.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:], nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { ws.Close() })

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	return ws
}

// readMessage decodes the next message with its payload as a raw object
func readMessage(t *testing.T, ws *websocket.Conn) (string, map[string]any) {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		ID      string         `json:"id"`
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	if msg.ID == "" {
		t.Error("expected message id")
	}
	return msg.Type, msg.Payload
}

func TestNew_CreatesHubWithDependencies(t *testing.T) {
	hub := New(logger.Discard(), nil)

	if hub.clients == nil {
		t.Error("expected clients map to be initialized")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("expected channels to be initialized")
	}
}

func TestHub_BroadcastMessage_NoClients(t *testing.T) {
	hub := newTestHub(t)

	done := make(chan bool)
	go func() {
		hub.BroadcastMessage("test", map[string]string{"key": "value"})
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("BroadcastMessage blocked with no clients")
	}
}

func TestServeWs_PublishView(t *testing.T) {
	hub := newTestHub(t)
	ws := dial(t, hub)

	if err := hub.Publish(context.Background(), models.FeedEvent{Type: models.FeedView, View: "PHR"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	typ, payload := readMessage(t, ws)
	if typ != TypeScreen {
		t.Errorf("expected screen message, got %s", typ)
	}
	if payload["screen_id"] != "phrase" || payload["found"] != true {
		t.Errorf("unexpected payload %v", payload)
	}
}

func TestServeWs_PublishUnknownView(t *testing.T) {
	hub := newTestHub(t)
	ws := dial(t, hub)

	if err := hub.Publish(context.Background(), models.FeedEvent{Type: models.FeedView, View: "mixer"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	_, payload := readMessage(t, ws)
	if payload["found"] != false || payload["view"] != "mixer" {
		t.Errorf("expected unresolved view, got %v", payload)
	}
}

func TestServeWs_PublishKeysLatchesHighlight(t *testing.T) {
	hub := newTestHub(t)
	ws := dial(t, hub)
	ctx := context.Background()

	// shift then opt held together: shift was first, it stays latched
	hub.Publish(ctx, models.FeedEvent{Type: models.FeedKeys, Mask: 0x10})
	_, first := readMessage(t, ws)
	hub.Publish(ctx, models.FeedEvent{Type: models.FeedKeys, Mask: 0x12})
	_, second := readMessage(t, ws)

	if first["highlight"] != "shift" {
		t.Errorf("expected shift highlight, got %v", first["highlight"])
	}
	if second["highlight"] != "shift" {
		t.Errorf("expected shift to stay latched, got %v", second["highlight"])
	}
	pressed, _ := second["pressed"].([]any)
	if len(pressed) != 2 {
		t.Errorf("expected two pressed keys, got %v", second["pressed"])
	}

	hub.Publish(ctx, models.FeedEvent{Type: models.FeedKeys, Mask: 0})
	_, released := readMessage(t, ws)
	if _, ok := released["highlight"]; ok {
		t.Errorf("expected highlight cleared on release, got %v", released["highlight"])
	}
}

func TestServeWs_NewClientGetsLastState(t *testing.T) {
	hub := newTestHub(t)
	ctx := context.Background()

	if err := hub.Publish(ctx, models.FeedEvent{Type: models.FeedView, View: "song"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := hub.Publish(ctx, models.FeedEvent{Type: models.FeedKeys, Mask: 0x08}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	ws := dial(t, hub)
	typ, screen := readMessage(t, ws)
	if typ != TypeScreen || screen["screen_id"] != "song" {
		t.Errorf("expected replayed screen, got %s %v", typ, screen)
	}
	typ, keys := readMessage(t, ws)
	if typ != TypeKeys || keys["highlight"] != "play" {
		t.Errorf("expected replayed keys, got %s %v", typ, keys)
	}
}

func TestHub_Publish_Errors(t *testing.T) {
	hub := newTestHub(t)
	err := hub.Publish(context.Background(), models.FeedEvent{Type: "reboot"})
	if !errors.IsKind(err, errors.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}

	broken := newTestHub(t, datasetclient.WithLoadError(fmt.Errorf("offline")))
	err = broken.Publish(context.Background(), models.FeedEvent{Type: models.FeedView, View: "song"})
	if !errors.IsKind(err, errors.ErrUnavailable) {
		t.Errorf("expected unavailable, got %v", err)
	}
}

func TestServeWs_MultipleClients(t *testing.T) {
	hub := newTestHub(t)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	var conns []*websocket.Conn
	for i := 0; i < 3; i++ {
		ws, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:], nil)
		if err != nil {
			t.Fatalf("failed to connect client %d: %v", i, err)
		}
		defer ws.Close()
		conns = append(conns, ws)
	}

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount() != 3 {
		t.Fatalf("expected 3 clients, got %d", hub.ClientCount())
	}

	hub.BroadcastMessage("ping", map[string]string{"k": "v"})
	for i, ws := range conns {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("client %d: %v", i, err)
		}
		var msg models.WSMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "ping" {
			t.Errorf("client %d: unexpected message %s", i, data)
		}
	}
}

func TestServeWs_ClientDisconnect(t *testing.T) {
	hub := newTestHub(t)
	ws := dial(t, hub)

	ws.Close()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected client to be unregistered, got %d", hub.ClientCount())
	}
}

func TestServeWs_UpgradeError(t *testing.T) {
	hub := newTestHub(t)
	req := httptest.NewRequest("GET", "/ws", nil)
	w := httptest.NewRecorder()

	hub.ServeWs(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-websocket request, got %d", w.Code)
	}
}
