package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/abrezinsky/m8keys/internal/logger"
)

// consoleLogger is the part of *logger.SlogLogger the keyboard shortcuts drive
type consoleLogger interface {
	GetLevel() slog.Level
	SetLevel(slog.Level)
	IsHTTPLoggingEnabled() bool
	EnableHTTPLogging()
	DisableHTTPLogging()
}

var _ consoleLogger = (*logger.SlogLogger)(nil)

// console handles single-key shortcuts while the server runs
type console struct {
	out       io.Writer
	log       consoleLogger
	viewerURL string
	feedToken string
	open      func(url string) error
}

// handleKey runs the shortcut bound to b and reports whether the server should stop
func (c *console) handleKey(b byte) bool {
	if b == 0x03 { // Ctrl+C
		fmt.Fprintf(c.out, "%sShutting down server...%s\n", yellow, reset)
		return true
	}

	switch strings.ToLower(string(b)) {
	case "o":
		fmt.Fprintf(c.out, "%sOpening viewer in browser...%s\n", cyan, reset)
		if err := c.open(c.viewerURL); err != nil {
			fmt.Fprintf(c.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case "h":
		if c.log.IsHTTPLoggingEnabled() {
			c.log.DisableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			c.log.EnableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		cycleLogLevel(c.out, c.log)
	case "t":
		fmt.Fprintf(c.out, "%sFeed token: %s%s%s\n", green, yellow, c.feedToken, reset)
	case "q":
		fmt.Fprintf(c.out, "%sShutting down server...%s\n", yellow, reset)
		return true
	case "?":
		printKeyboardHelp(c.out)
	}
	return false
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(out io.Writer, log consoleLogger) {
	var next string
	switch log.GetLevel() {
	case slog.LevelDebug:
		next = "info"
	case slog.LevelInfo:
		next = "warn"
	case slog.LevelWarn:
		next = "error"
	case slog.LevelError:
		next = "debug"
	default:
		next = "info"
	}

	log.SetLevel(logger.ParseLevel(next))
	fmt.Fprintf(out, "%sLog level: %s%s%s\n", green, yellow, next, reset)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp(out io.Writer) {
	fmt.Fprintf(out, "\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Fprintf(out, "    %so%s      - Open viewer in browser\n", cyan, reset)
	fmt.Fprintf(out, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(out, "    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Fprintf(out, "    %st%s      - Show feed token\n", cyan, reset)
	fmt.Fprintf(out, "    %sq%s      - Quit server\n", cyan, reset)
	fmt.Fprintf(out, "    %s?%s      - Show this help\n\n", cyan, reset)
}

// readKeys feeds bytes from r to c until a quit key or a read error
func readKeys(r io.Reader, c *console, stop func()) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if c.handleKey(buf[0]) {
			stop()
			return
		}
	}
}
