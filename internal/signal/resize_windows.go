//go:build windows

package signal

import "os"

// Windows has no resize signal; widths are picked up on the next run.
func notifyResize(chan<- os.Signal) {}
