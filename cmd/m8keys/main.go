package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/abrezinsky/m8keys/internal/animation"
	"github.com/abrezinsky/m8keys/internal/app"
	"github.com/abrezinsky/m8keys/internal/browser"
	"github.com/abrezinsky/m8keys/internal/config"
	"github.com/abrezinsky/m8keys/internal/logger"
	"github.com/abrezinsky/m8keys/internal/repository"
	"github.com/abrezinsky/m8keys/internal/tui"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

const usage = `m8keys - M8 keyboard shortcut viewer

Usage:
  m8keys [options] [command]

Commands:
  serve          Run the HTTP viewer (default)
  resolve        Print the resolved dataset as JSON
  export         Write the resolved dataset to SQLite (-db file)
  tui            Browse shortcuts in the terminal
  lint           Report stale activity references, exit 1 if any

Options:
  -config str    YAML config file (or M8KEYS_CONFIG)
  -host str      Listen host
  -port int      HTTP server port (default 8090)
  -dataset str   Compact dataset file
  -dataset-url   Compact dataset URL, wins over -dataset
  -loglevel str  Log level: debug, info, warn, error (default "info")
  -nologo        Skip the startup logo
  -nokeyboard    Disable keyboard shortcuts
  -version       Show version and exit
  -help          Show this help message

Keyboard Shortcuts (serve):
  o              Open viewer in browser
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  t              Show feed token
  q              Quit server
  ?              Show keyboard help

Examples:
  m8keys                                  # Serve m8-shortcuts.dataset.json on :8090
  m8keys -port 8080 -dataset shortcuts.yaml
  m8keys export -db shortcuts.db
  m8keys lint

`

// options are the global command line flags
type options struct {
	configPath  string
	host        string
	port        int
	dataset     string
	datasetURL  string
	logLevel    string
	noLogo      bool
	noKeyboard  bool
	showVersion bool

	// set records which flags were given explicitly
	set map[string]bool
}

func parseOptions(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{set: map[string]bool{}}

	fs := flag.NewFlagSet("m8keys", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.StringVar(&opts.host, "host", "", "Listen host")
	fs.IntVar(&opts.port, "port", 0, "HTTP server port")
	fs.StringVar(&opts.dataset, "dataset", "", "Compact dataset file")
	fs.StringVar(&opts.datasetURL, "dataset-url", "", "Compact dataset URL")
	fs.StringVar(&opts.logLevel, "loglevel", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.noLogo, "nologo", false, "Skip the startup logo")
	fs.BoolVar(&opts.noKeyboard, "nokeyboard", false, "Disable keyboard shortcuts")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, fs.Args(), nil
}

// loadConfig layers defaults, the YAML file, M8KEYS_* env vars, then flags
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()

	path := opts.configPath
	if path == "" {
		path = os.Getenv("M8KEYS_CONFIG")
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()

	if opts.set["host"] {
		cfg.Server.Host = opts.host
	}
	if opts.set["port"] {
		cfg.Server.Port = opts.port
	}
	if opts.set["dataset"] {
		cfg.Dataset.Path = opts.dataset
	}
	if opts.set["dataset-url"] {
		cfg.Dataset.URL = opts.datasetURL
	}
	if opts.set["loglevel"] {
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// errStale makes lint exit non-zero without printing an extra error line
var errStale = errors.New("stale references found")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, stop, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, stop context.CancelFunc, args []string, stdout, stderr io.Writer) int {
	opts, rest, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "m8keys %s\n", version)
		return 0
	}

	command := "serve"
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "%s%v%s\n", red, err, reset)
		return 1
	}

	appLog := logger.NewWithWriter(stderr, logger.ParseLevel(cfg.Log.Level))

	switch command {
	case "serve":
		err = runServe(ctx, stop, cfg, opts, appLog, stdout)
	case "resolve":
		err = runResolve(ctx, cfg, appLog, stdout)
	case "export":
		err = runExport(ctx, cfg, appLog, rest, stdout, stderr)
	case "tui":
		err = runTUI(ctx, cfg)
	case "lint":
		err = runLint(ctx, cfg, appLog, stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		fmt.Fprint(stderr, usage)
		return 2
	}

	if err != nil {
		if !errors.Is(err, errStale) {
			fmt.Fprintf(stderr, "%s%v%s\n", red, err, reset)
		}
		return 1
	}
	return 0
}

func newApp(cfg *config.Config, log logger.Logger) (*app.App, error) {
	a, err := app.New(log, cfg, app.NewSource(cfg, log))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return a, nil
}

func runServe(ctx context.Context, stop context.CancelFunc, cfg *config.Config, opts *options, appLog *logger.SlogLogger, stdout io.Writer) error {
	if !opts.noLogo {
		showLogo(stdout)
	}

	a, err := newApp(cfg, appLog)
	if err != nil {
		return err
	}
	// A failed load is logged and the API answers 503 for it
	_ = a.Warm(ctx)
	appLog.Info("Feed token", "token", a.FeedToken())

	if !opts.noKeyboard {
		printKeyboardHelp(stdout)
		c := &console{
			out:       stdout,
			log:       appLog,
			viewerURL: a.ViewerURL(),
			feedToken: a.FeedToken(),
			open:      browser.Open,
		}
		go listenForKeyboard(c, stop)
	} else {
		fmt.Fprintf(stdout, "\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	return a.Run(ctx)
}

func runResolve(ctx context.Context, cfg *config.Config, appLog logger.Logger, stdout io.Writer) error {
	a, err := newApp(cfg, appLog)
	if err != nil {
		return err
	}
	ds, err := a.Viewer().Dataset(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(ds)
}

func runExport(ctx context.Context, cfg *config.Config, appLog logger.Logger, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "m8keys.db", "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(cfg, appLog)
	if err != nil {
		return err
	}
	repo, err := repository.New(*dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	n, err := a.Export(ctx, repo)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%sExported %d activities to %s%s\n", green, n, *dbPath, reset)
	return nil
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	// Log lines would tear the terminal UI
	a, err := newApp(cfg, logger.Discard())
	if err != nil {
		return err
	}
	helper, err := a.Store().Helper(ctx)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	anim := animation.Config{Cycle: cfg.Animation.Cycle, Beats: animation.Beats}
	return tui.New(screen, helper, anim).Run(ctx)
}

func runLint(ctx context.Context, cfg *config.Config, appLog logger.Logger, stdout io.Writer) error {
	a, err := newApp(cfg, appLog)
	if err != nil {
		return err
	}
	stale, err := a.Lint(ctx)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		fmt.Fprintf(stdout, "%sNo stale references%s\n", green, reset)
		return nil
	}
	for _, ref := range stale {
		fmt.Fprintf(stdout, "%s%s%s: unknown activity %q\n", yellow, ref.ScreenID, reset, ref.ActivityID)
	}
	fmt.Fprintf(stdout, "%d stale reference(s)\n", len(stale))
	return errStale
}

// showLogo prints the banner
func showLogo(out io.Writer) {
	const width = 44
	border := strings.Repeat("═", width)
	logo := []string{
		"     __  __  ___   _  __                 ",
		"    |  \\/  |( _ ) | |/ /___ _  _ ___     ",
		"    | |\\/| |/ _ \\ | ' </ -_) || (_-<     ",
		"    |_|  |_|\\___/ |_|\\_\\___|\\_, /__/     ",
		"                            |__/         ",
	}

	fmt.Fprintf(out, "\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		if n := width - len(line); n > 0 {
			line += strings.Repeat(" ", n)
		}
		fmt.Fprintf(out, "  %s║%s%s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Fprintf(out, "  %s╚%s╝%s\n", cyan, border, reset)
	fmt.Fprintf(out, "  %s%s%s\n\n", bold, version, reset)
}
