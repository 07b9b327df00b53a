package models

// WSMessage represents a WebSocket message
type WSMessage struct {
	ID      string      `json:"id,omitempty"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Feed event types posted by the host application
const (
	FeedView = "view"
	FeedKeys = "keys"
)

// FeedEvent is one device event published to /api/feed
type FeedEvent struct {
	Type string `json:"type"`
	View string `json:"view,omitempty"`
	Mask int    `json:"mask,omitempty"`
}

// ScreenPayload is broadcast when the device view changes
type ScreenPayload struct {
	View     string `json:"view"`
	ScreenID string `json:"screen_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Found    bool   `json:"found"`
}

// KeysPayload is broadcast when the device key state changes
type KeysPayload struct {
	Mask      int      `json:"mask"`
	Pressed   []string `json:"pressed"`
	Highlight string   `json:"highlight,omitempty"`
}
