//go:build !linux && !darwin && !windows

package main

import "os"

// listenForKeyboard reads keys from stdin in line mode
func listenForKeyboard(c *console, stop func()) {
	readKeys(os.Stdin, c, stop)
}
