// Windows signal handling. Windows has no SIGTERM; the Go runtime maps
// CTRL_BREAK_EVENT and console-close events to os.Interrupt.

//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// signalContext returns a context cancelled by os.Interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
