package streaming

import (
	"github.com/samsaffron/streamdown/internal/debuglog"
	"github.com/samsaffron/streamdown/internal/streamdown"
)

// StreamRendererOption configures a StreamRenderer.
type StreamRendererOption func(*StreamRenderer)

// WithPartialRendering shows the growing block as well, redrawing it in
// place as it changes. It only takes effect together with WithTerminalWidth.
func WithPartialRendering() StreamRendererOption {
	return func(sr *StreamRenderer) {
		sr.partialEnabled = true
	}
}

// WithTerminalWidth sets the terminal width for accurate line counting
// during partial rendering. This is used to calculate how many lines
// the rendered output occupies for cursor repositioning.
func WithTerminalWidth(width int) StreamRendererOption {
	return func(sr *StreamRenderer) {
		sr.termWidth = width
	}
}

// WithoutCompletion renders the growing block without closing its markers.
func WithoutCompletion() StreamRendererOption {
	return func(sr *StreamRenderer) {
		sr.docOpts = append(sr.docOpts, streamdown.WithoutCompletion())
	}
}

// WithCompleteAll closes open markers in every block, not just the last.
func WithCompleteAll() StreamRendererOption {
	return func(sr *StreamRenderer) {
		sr.docOpts = append(sr.docOpts, streamdown.WithCompleteAll())
	}
}

// WithDebugLogger records every document update.
func WithDebugLogger(l *debuglog.Logger) StreamRendererOption {
	return func(sr *StreamRenderer) {
		sr.docOpts = append(sr.docOpts, streamdown.WithLogger(l))
	}
}
