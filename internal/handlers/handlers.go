package handlers

import (
	"io/fs"
	"net/http"

	"github.com/abrezinsky/m8keys/internal/auth"
	"github.com/abrezinsky/m8keys/internal/services"
	"github.com/abrezinsky/m8keys/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Viewer         services.ViewerServicer
	Auth           *auth.Auth
	Hub            *websocket.Hub
	Log            HTTPLogger
	AllowedOrigins []string
	assetServer    http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies.
// A nil assets file system disables /assets.
func New(
	viewer services.ViewerServicer,
	feedAuth *auth.Auth,
	hub *websocket.Hub,
	assets fs.FS,
	allowedOrigins []string,
	log HTTPLogger,
) *Handlers {
	h := &Handlers{
		Viewer:         viewer,
		Auth:           feedAuth,
		Hub:            hub,
		Log:            log,
		AllowedOrigins: allowedOrigins,
	}
	if assets != nil {
		h.assetServer = NewStaticServer(assets)
	}
	return h
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }
