//go:build !windows

package signal

import (
	"context"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func TestWatchResize(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var width atomic.Int64
	width.Store(80)
	got := make(chan int, 4)
	WatchResize(ctx, func() int { return int(width.Load()) }, func(w int) { got <- w })

	// Same width is ignored
	syscall.Kill(syscall.Getpid(), syscall.SIGWINCH)
	select {
	case w := <-got:
		t.Fatalf("unexpected resize to %d", w)
	case <-time.After(50 * time.Millisecond):
	}

	width.Store(120)
	syscall.Kill(syscall.Getpid(), syscall.SIGWINCH)
	select {
	case w := <-got:
		if w != 120 {
			t.Errorf("resized to %d, want 120", w)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("resize not delivered")
	}
}

func TestNotifyContextFollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := NotifyContext(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with parent")
	}
}
