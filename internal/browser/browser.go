package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Commander starts an external program without waiting for it
type Commander interface {
	Start(name string, args ...string) error
}

// RealCommander executes actual commands
type RealCommander struct{}

// Start executes a command and starts it
func (RealCommander) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Launcher opens viewer links with the platform's default URL handler
type Launcher struct {
	cmd  Commander
	goos string
}

// NewLauncher returns a launcher for goos that runs commands through cmd
func NewLauncher(cmd Commander, goos string) *Launcher {
	return &Launcher{cmd: cmd, goos: goos}
}

var defaultLauncher = NewLauncher(RealCommander{}, runtime.GOOS)

// Open opens target in the default browser
func Open(target string) error {
	return defaultLauncher.Open(target)
}

// Command returns the program and arguments that open target on this platform.
// Only absolute http and https URLs are accepted.
func (l *Launcher) Command(target string) (string, []string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", nil, fmt.Errorf("invalid url %q: %w", target, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", nil, fmt.Errorf("refusing to open %q: not an http(s) url", target)
	}

	switch l.goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	case "darwin":
		return "open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", l.goos)
	}
}

// Open starts the platform command for target
func (l *Launcher) Open(target string) error {
	name, args, err := l.Command(target)
	if err != nil {
		return err
	}
	return l.cmd.Start(name, args...)
}
