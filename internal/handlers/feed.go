package handlers

import (
	"net/http"

	"github.com/abrezinsky/m8keys/internal/models"
)

// handlePublishFeed accepts one device event from the host application and
// relays it to websocket viewers.
func (h *Handlers) handlePublishFeed(w http.ResponseWriter, r *http.Request) {
	var ev models.FeedEvent
	if err := decodeJSON(r, &ev); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Hub.Publish(r.Context(), ev); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, FeedResponse{Type: ev.Type, Clients: h.Hub.ClientCount()})
}
