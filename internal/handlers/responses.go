package handlers

import "github.com/abrezinsky/m8keys/internal/dataset"

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status  string `json:"status"`
	Dataset string `json:"dataset"`
	Clients int    `json:"clients"`
}

// ScreensResponse lists screens in source order
type ScreensResponse struct {
	Screens []dataset.Screen `json:"screens"`
}

// CategoriesResponse lists categories
type CategoriesResponse struct {
	Categories []dataset.Category `json:"categories"`
}

// FeedResponse acknowledges a published feed event
type FeedResponse struct {
	Type    string `json:"type"`
	Clients int    `json:"clients"`
}
