// Package signal wires process signals into streaming: interrupts cancel the
// stream and terminal resizes trigger a redraw.
package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// NotifyContext returns a context derived from parent that is cancelled when
// SIGINT or SIGTERM is received. The returned stop function should be called
// to release resources.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// WatchResize calls onResize with the new terminal width each time the
// terminal is resized, until ctx is done. size reports the current width;
// resizes that leave the width unchanged or report zero are dropped.
func WatchResize(ctx context.Context, size func() int, onResize func(width int)) {
	ch := make(chan os.Signal, 1)
	notifyResize(ch)
	last := size()
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				if w := size(); w > 0 && w != last {
					last = w
					onResize(w)
				}
			}
		}
	}()
}
