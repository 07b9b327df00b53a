package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/abrezinsky/m8keys/internal/errors"
	"github.com/abrezinsky/m8keys/internal/keypress"
	"github.com/abrezinsky/m8keys/internal/logger"
	"github.com/abrezinsky/m8keys/internal/models"
	"github.com/abrezinsky/m8keys/internal/services"
)

// Message types sent to viewers
const (
	TypeScreen = "screen"
	TypeKeys   = "keys"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // viewers are embedded in arbitrary host pages
	},
}

// Hub relays device feed events to every connected viewer
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan models.WSMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	viewer     services.ViewerServicer

	stateMu     sync.Mutex
	highlighter keypress.Highlighter
	lastScreen  *models.WSMessage
	lastKeys    *models.WSMessage
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan models.WSMessage
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, viewer services.ViewerServicer) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.WSMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		viewer:     viewer,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration/unregistration and message broadcasting
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Viewer connected", "client", client.id, "total_clients", total)

			// replay the last known device state
			for _, msg := range h.snapshot() {
				select {
				case client.send <- msg:
				default:
				}
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Viewer disconnected", "client", client.id, "total_clients", total)

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

func (h *Hub) snapshot() []models.WSMessage {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	var out []models.WSMessage
	if h.lastScreen != nil {
		out = append(out, *h.lastScreen)
	}
	if h.lastKeys != nil {
		out = append(out, *h.lastKeys)
	}
	return out
}

// ClientCount returns the number of connected viewers
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// BroadcastMessage sends a message to all connected clients
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	h.broadcast <- models.WSMessage{
		ID:      uuid.NewString(),
		Type:    msgType,
		Payload: payload,
	}
}

// Publish turns a device event into a viewer message, records it as the
// latest state and broadcasts it.
func (h *Hub) Publish(ctx context.Context, ev models.FeedEvent) error {
	var msg models.WSMessage
	switch ev.Type {
	case models.FeedView:
		payload := models.ScreenPayload{View: ev.View}
		screen, err := h.viewer.Screen(ctx, ev.View)
		switch {
		case err == nil:
			payload.ScreenID = screen.ID
			payload.Name = screen.Name
			payload.Found = true
		case errors.IsKind(err, errors.ErrNotFound):
			h.log.Debug("Device view has no screen", "view", ev.View)
		default:
			return err
		}
		msg = models.WSMessage{ID: uuid.NewString(), Type: TypeScreen, Payload: payload}

	case models.FeedKeys:
		h.stateMu.Lock()
		hl, ok := h.highlighter.Update(ev.Mask)
		h.stateMu.Unlock()

		payload := models.KeysPayload{Mask: ev.Mask, Pressed: []string{}}
		for _, k := range keypress.FromMask(ev.Mask) {
			payload.Pressed = append(payload.Pressed, k.String())
		}
		if ok {
			payload.Highlight = hl.String()
		}
		msg = models.WSMessage{ID: uuid.NewString(), Type: TypeKeys, Payload: payload}

	default:
		return errors.InvalidInputf("unknown feed event type %q", ev.Type)
	}

	h.stateMu.Lock()
	if msg.Type == TypeScreen {
		h.lastScreen = &msg
	} else {
		h.lastKeys = &msg
	}
	h.stateMu.Unlock()

	h.broadcast <- msg
	return nil
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "client", c.id, "error", err)
			}
			break
		}

		// viewers are read-only; anything they send is logged and dropped
		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Ignoring viewer message", "client", c.id, "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.hub.log.Debug("WebSocket write failed", "client", c.id, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from viewers
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan models.WSMessage, 256),
	}
	h.register <- client

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}
