//go:build darwin

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// listenForKeyboard reads single keys from stdin until a quit key, then calls stop
func listenForKeyboard(c *console, stop func()) {
	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if err != nil {
		// not a terminal
		return
	}

	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TIOCSETA, &newState); err != nil {
		return
	}
	defer unix.IoctlSetTermios(fd, unix.TIOCSETA, oldState)

	readKeys(os.Stdin, c, stop)
}
