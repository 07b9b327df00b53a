package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/m8keys/internal/lookup"
	"github.com/abrezinsky/m8keys/internal/services"
	"github.com/abrezinsky/m8keys/internal/timeline"
)

// handleHealth reports liveness and whether the dataset could be loaded
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Dataset: "loaded"}
	if _, err := h.Viewer.Dataset(r.Context()); err != nil {
		resp.Dataset = "unavailable"
	}
	if h.Hub != nil {
		resp.Clients = h.Hub.ClientCount()
	}
	respondOK(w, resp)
}

func (h *Handlers) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Viewer.Dataset(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ds)
}

// handleGetCategories lists categories, optionally narrowed with ?kind=screen|activity
func (h *Handlers) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Viewer.Categories(r.Context(), r.URL.Query().Get("kind"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, CategoriesResponse{Categories: cats})
}

func (h *Handlers) handleGetScreens(w http.ResponseWriter, r *http.Request) {
	screens, err := h.Viewer.Screens(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ScreensResponse{Screens: screens})
}

func (h *Handlers) handleGetScreen(w http.ResponseWriter, r *http.Request) {
	screen, err := h.Viewer.Screen(r.Context(), chi.URLParam(r, "screen"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, screen)
}

func (h *Handlers) handleGetScreenCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Viewer.ScreenCategories(r.Context(), chi.URLParam(r, "screen"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, CategoriesResponse{Categories: cats})
}

// handleGetScreenActivities returns the grouped activity panel of a screen.
// Query: levels=13 keeps levels 1 and 3, key=opt marks activities using opt,
// activity=<id> keeps the routed activity regardless of level.
func (h *Handlers) handleGetScreenActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	panel, err := h.Viewer.ScreenActivities(r.Context(), chi.URLParam(r, "screen"), services.ActivityQuery{
		Levels: lookup.ParseLevels(q.Get("levels")),
		Key:    q.Get("key"),
		Routed: q.Get("activity"),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, panel)
}

func (h *Handlers) handleGetScreenActivity(w http.ResponseWriter, r *http.Request) {
	a, err := h.Viewer.Activity(r.Context(), chi.URLParam(r, "screen"), chi.URLParam(r, "activity"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, a)
}

func (h *Handlers) handleGetActivityLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := h.Viewer.ActivityLayout(r.Context(), chi.URLParam(r, "screen"), chi.URLParam(r, "activity"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, layout)
}

// handleGetActivityQR returns the share link QR code as PNG (?mode=full|min)
func (h *Handlers) handleGetActivityQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Viewer.ShareQR(r.Context(), chi.URLParam(r, "screen"), chi.URLParam(r, "activity"), r.URL.Query().Get("mode"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondBytes(w, "image/png", png)
}

func (h *Handlers) handleFindActivity(w http.ResponseWriter, r *http.Request) {
	a, err := h.Viewer.FindActivity(r.Context(), chi.URLParam(r, "activity"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, a)
}

// handleGetTimeline renders ?keys=opt,edit-hold as JSON, or SVG with format=svg
func (h *Handlers) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	tl, err := h.Viewer.Timeline(r.URL.Query().Get("keys"))
	if err != nil {
		respondError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "svg" {
		respondBytes(w, "image/svg+xml", []byte(timeline.SVG(*tl)))
		return
	}
	respondOK(w, tl)
}
