package streamdown

import "github.com/samsaffron/streamdown/internal/debuglog"

// Option configures a Document.
type Option func(*Document)

// WithoutCompletion hands blocks to the renderer exactly as they appear in
// the buffer.
func WithoutCompletion() Option {
	return func(d *Document) {
		d.complete = false
	}
}

// WithCompleteAll completes every block rather than only the last one.
// Balanced blocks are unaffected, so this only matters for earlier blocks
// that never closed their emphasis.
func WithCompleteAll() Option {
	return func(d *Document) {
		d.completeAll = true
	}
}

// WithLogger records every update to l.
func WithLogger(l *debuglog.Logger) Option {
	return func(d *Document) {
		d.logger = l
	}
}
