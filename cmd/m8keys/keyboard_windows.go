//go:build windows

package main

import "os"

// listenForKeyboard reads keys from stdin until a quit key, then calls stop.
// The console stays in line mode, so keys arrive after Enter.
func listenForKeyboard(c *console, stop func()) {
	readKeys(os.Stdin, c, stop)
}
