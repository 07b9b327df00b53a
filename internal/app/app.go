package app

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/m8keys/internal/animation"
	"github.com/abrezinsky/m8keys/internal/auth"
	"github.com/abrezinsky/m8keys/internal/config"
	"github.com/abrezinsky/m8keys/internal/dataset"
	"github.com/abrezinsky/m8keys/internal/handlers"
	"github.com/abrezinsky/m8keys/internal/logger"
	"github.com/abrezinsky/m8keys/internal/repository"
	"github.com/abrezinsky/m8keys/internal/services"
	"github.com/abrezinsky/m8keys/internal/store"
	"github.com/abrezinsky/m8keys/internal/websocket"
	"github.com/abrezinsky/m8keys/pkg/datasetclient"
)

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      *config.Config
	store    *store.Store
	viewer   *services.ViewerService
	hub      *websocket.Hub
	feedAuth *auth.Auth
	handlers *handlers.Handlers
}

// NewSource picks the dataset source: the URL when set, the file otherwise
func NewSource(cfg *config.Config, log logger.Logger) store.Source {
	if cfg.Dataset.URL != "" {
		return datasetclient.NewHTTPSource(cfg.Dataset.URL, log)
	}
	return store.FileSource{Path: cfg.Dataset.Path}
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg *config.Config, source store.Source) (*App, error) {
	anim := animation.Config{Cycle: cfg.Animation.Cycle, Beats: animation.Beats}
	if err := anim.Validate(); err != nil {
		return nil, err
	}

	resolver := dataset.NewResolver(log, dataset.Options{InferLevels: cfg.Dataset.InferLevels})
	st := store.New(log, source, resolver)

	shareBase := shareBaseURL(cfg.ShareBaseURL(), realNetworkProvider{})
	viewer := services.NewViewerService(log, st, anim, shareBase)

	token := cfg.Feed.Token
	if token == "" {
		token = auth.GenerateToken()
		log.Info("Feed token generated", "token", token)
	}
	feedAuth := auth.New(token)

	hub := websocket.New(log, viewer)
	hub.Start()

	var assets fs.FS
	if info, err := os.Stat(cfg.Assets.Dir); err == nil && info.IsDir() {
		assets = os.DirFS(cfg.Assets.Dir)
	} else {
		log.Warn("Assets directory not found, /assets disabled", "dir", cfg.Assets.Dir)
	}

	h := handlers.New(viewer, feedAuth, hub, assets, cfg.Server.AllowedOrigins, log)

	return &App{
		log:      log,
		cfg:      cfg,
		store:    st,
		viewer:   viewer,
		hub:      hub,
		feedAuth: feedAuth,
		handlers: h,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Viewer returns the query service
func (a *App) Viewer() services.ViewerServicer {
	return a.viewer
}

// Store returns the dataset cache
func (a *App) Store() *store.Store {
	return a.store
}

// FeedToken returns the token publishers must present on /api/feed
func (a *App) FeedToken() string {
	return a.feedAuth.Token()
}

// Warm loads the dataset ahead of the first request and reports stale references
func (a *App) Warm(ctx context.Context) error {
	ds, err := a.viewer.Dataset(ctx)
	if err != nil {
		a.log.Error("Dataset unavailable", "error", err)
		return err
	}
	stale, _ := a.viewer.StaleRefs(ctx)
	a.log.Info("Dataset loaded",
		"screens", len(ds.Screens),
		"activities", len(ds.Activities),
		"stale", len(stale))
	return nil
}

// Lint resolves the dataset and returns every stale reference
func (a *App) Lint(ctx context.Context) ([]dataset.StaleRef, error) {
	return a.viewer.StaleRefs(ctx)
}

// Export writes the resolved dataset to repo and returns the stored activity count
func (a *App) Export(ctx context.Context, repo repository.DatasetRepository) (int, error) {
	ds, err := a.viewer.Dataset(ctx)
	if err != nil {
		return 0, err
	}
	if err := repo.Export(ctx, ds); err != nil {
		return 0, fmt.Errorf("export dataset: %w", err)
	}
	n, err := repo.CountActivities(ctx)
	if err != nil {
		return 0, err
	}
	a.log.Info("Dataset exported", "activities", n)
	return n, nil
}

// Run starts the HTTP server and shuts it down when ctx ends
func (a *App) Run(ctx context.Context) error {
	addr := a.cfg.Addr()
	srv := &http.Server{Addr: addr, Handler: a.Router()}

	a.log.Info("Server starting", "addr", addr)
	a.log.Info("Viewer URL", "url", a.ViewerURL())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.log.Info("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// ViewerURL is the address a browser on this machine should open
func (a *App) ViewerURL() string {
	host := a.cfg.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, a.cfg.Server.Port)
}

// shareBaseURL swaps a localhost share host for the LAN address, since share
// links are scanned from other devices.
func shareBaseURL(base string, provider networkProvider) string {
	if base == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil || (u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1") {
		return base
	}
	ip := getPreferredIP(provider)
	if ip == "localhost" {
		return base
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(ip, port)
	} else {
		u.Host = ip
	}
	return u.String()
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		if ip.IsPrivate() {
			return ip.String()
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}
