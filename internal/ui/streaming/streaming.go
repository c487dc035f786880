// Package streaming writes a Markdown stream to a terminal as it arrives.
// Blocks that can no longer change are rendered once and left alone; the
// growing block at the end is optionally shown as well and redrawn in place
// on every write.
package streaming

import (
	"io"
	"strings"

	"github.com/samsaffron/streamdown/internal/render"
	"github.com/samsaffron/streamdown/internal/streamdown"
)

// StreamRenderer is an io.Writer that renders Markdown chunks block by block.
type StreamRenderer struct {
	doc    *streamdown.Document
	output io.Writer

	// All markdown received so far
	buffer strings.Builder

	// Blocks written permanently
	committed int
	wroteAny  bool
	// An extra newline was written after the last committed block so the
	// cursor sits at the start of a line
	pendingNL bool

	// Partial rendering configuration
	partialEnabled bool        // Show the growing block
	termWidth      int         // Terminal width for line counting
	live           *liveRegion // Where the growing block is drawn
	tail           string      // Growing block as last drawn

	docOpts []streamdown.Option
	closed  bool
}

// NewRenderer creates a streaming renderer writing to w. Blocks are rendered
// with r; a nil r writes the normalized Markdown itself.
func NewRenderer(w io.Writer, r render.BlockRenderer, opts ...StreamRendererOption) *StreamRenderer {
	sr := &StreamRenderer{output: w}
	for _, opt := range opts {
		opt(sr)
	}

	// Partial rendering needs cursor control to clear and re-render; in
	// flowing mode only settled blocks are written.
	if sr.partialEnabled && sr.termWidth > 0 {
		sr.live = newLiveRegion(w, sr.termWidth)
	}
	sr.doc = streamdown.New(r, sr.docOpts...)
	return sr
}

// Write accepts markdown chunks and renders settled blocks immediately.
// It implements io.Writer.
func (sr *StreamRenderer) Write(p []byte) (n int, err error) {
	if sr.closed {
		return 0, io.ErrClosedPipe
	}
	sr.buffer.Write(p)

	rendered, err := sr.doc.Render(sr.buffer.String())
	if err != nil {
		return len(p), err
	}
	if err := sr.draw(rendered, false); err != nil {
		return len(p), err
	}
	return len(p), nil
}

// Markdown returns everything written so far.
func (sr *StreamRenderer) Markdown() string {
	return sr.buffer.String()
}

// draw brings the screen up to date with rendered. Every block but the last
// is committed; when final is set the last block is committed too.
func (sr *StreamRenderer) draw(rendered []string, final bool) error {
	settled := len(rendered) - 1
	if final {
		settled = len(rendered)
	}
	settled = max(settled, 0)

	if !final && settled <= sr.committed {
		if sr.live == nil {
			return nil
		}
		if len(rendered) > 0 && rendered[settled] == sr.tail {
			return nil
		}
	}

	if err := sr.clearTail(); err != nil {
		return err
	}

	sep := sr.doc.Separator()
	for ; sr.committed < settled; sr.committed++ {
		block := rendered[sr.committed]
		if block == "" {
			continue
		}
		chunk := block
		if sr.wroteAny {
			chunk = sep + block
		}
		if err := sr.emit(chunk); err != nil {
			return err
		}
		sr.wroteAny = true
	}

	if final || sr.live == nil || settled >= len(rendered) || settled < sr.committed || rendered[settled] == "" {
		return nil
	}
	return sr.drawTail(rendered[settled], sep)
}

// drawTail shows the growing block below the committed output.
func (sr *StreamRenderer) drawTail(block, sep string) error {
	out := block
	if sr.wroteAny {
		out = sep + block
	}
	out = sr.physical(out)
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if err := sr.live.Draw(out); err != nil {
		return err
	}
	sr.tail = block
	return nil
}

// physical adjusts a chunk for the newline already written after the last
// committed block.
func (sr *StreamRenderer) physical(chunk string) string {
	if sr.pendingNL {
		return strings.TrimPrefix(chunk, "\n")
	}
	return chunk
}

// emit writes a committed chunk, keeping the cursor at the start of a line.
func (sr *StreamRenderer) emit(chunk string) error {
	out := sr.physical(chunk)
	sr.pendingNL = false
	if out == "" {
		return nil
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
		sr.pendingNL = true
	}
	_, err := io.WriteString(sr.output, out)
	return err
}

func (sr *StreamRenderer) clearTail() error {
	if sr.live == nil {
		return nil
	}
	sr.tail = ""
	return sr.live.Erase()
}

// Flush renders the remaining content as the end of the stream. Markers the
// author left open stay open.
func (sr *StreamRenderer) Flush() error {
	rendered, err := sr.doc.Finish(sr.buffer.String())
	if err != nil {
		return err
	}
	return sr.draw(rendered, true)
}

// Close flushes any remaining content. Further writes fail.
func (sr *StreamRenderer) Close() error {
	if sr.closed {
		return nil
	}
	sr.closed = true
	return sr.Flush()
}

// Resize re-renders all accumulated content at the new width.
// The caller should clear the screen before calling this method.
func (sr *StreamRenderer) Resize(newWidth int) error {
	if newWidth <= 0 {
		return nil
	}

	sr.termWidth = newWidth
	if sr.live != nil {
		sr.live.width = newWidth
		sr.live.rows = 0
	}
	sr.doc.Resize(newWidth)

	// Everything is drawn again from the top
	sr.committed = 0
	sr.wroteAny = false
	sr.pendingNL = false
	sr.tail = ""

	if sr.buffer.Len() == 0 {
		return nil
	}
	if sr.closed {
		rendered, err := sr.doc.Finish(sr.buffer.String())
		if err != nil {
			return err
		}
		return sr.draw(rendered, true)
	}
	rendered, err := sr.doc.Render(sr.buffer.String())
	if err != nil {
		return err
	}
	return sr.draw(rendered, false)
}
