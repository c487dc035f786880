// Package streamdown ties the block segmenter, the incomplete-token completer
// and a block renderer together for one growing Markdown buffer.
//
// Each update re-segments the whole buffer. Blocks keep their identity by
// index, so a renderer is only asked for blocks whose text changed since the
// previous update; in practice that is the last one or two.
package streamdown

import (
	"strings"
	"unicode"

	"github.com/samsaffron/streamdown/internal/blocks"
	"github.com/samsaffron/streamdown/internal/debuglog"
	"github.com/samsaffron/streamdown/internal/incomplete"
	"github.com/samsaffron/streamdown/internal/render"
)

// Frame is one block of a document update.
type Frame struct {
	Index  int
	Kind   blocks.Kind
	Source string // block text exactly as it appears in the buffer
	Text   string // Source with closers appended, handed to the renderer

	// Changed is false when the block is identical to the block at the same
	// index in the previous update.
	Changed bool

	// Open is set for fenced code and math blocks still waiting for their
	// closing fence.
	Open bool
}

// Document processes successive snapshots of a single stream.
// A Document is not safe for concurrent use.
type Document struct {
	renderer    render.BlockRenderer
	complete    bool
	completeAll bool
	logger      *debuglog.Logger

	src  []string
	text []string

	memo []memoEntry
}

type memoEntry struct {
	text string
	out  string
	ok   bool
}

// New creates a Document that renders blocks with r.
// A nil renderer passes completed Markdown through unchanged.
func New(r render.BlockRenderer, opts ...Option) *Document {
	if r == nil {
		r = render.Raw{}
	}
	d := &Document{
		renderer: r,
		complete: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Update segments buffer and completes the growing block.
func (d *Document) Update(buffer string) []Frame {
	return d.update(buffer, d.complete, false)
}

// Render updates the document and returns the rendered text of every block.
// Blocks whose text is unchanged since they were last rendered are reused.
func (d *Document) Render(buffer string) ([]string, error) {
	return d.renderFrames(d.Update(buffer))
}

// Finish renders buffer as the final state of the stream. No closers are
// added: anything still open was left open by the author.
func (d *Document) Finish(buffer string) ([]string, error) {
	return d.renderFrames(d.update(buffer, false, true))
}

// Reset forgets all previous updates so the document can take a new stream.
func (d *Document) Reset() {
	d.src = nil
	d.text = nil
	d.memo = nil
}

// Resize forwards width to the renderer, when it supports resizing, and
// drops every memoized block.
func (d *Document) Resize(width int) {
	if r, ok := d.renderer.(render.Resizer); ok {
		r.Resize(width)
	}
	d.memo = nil
}

// Separator is the string placed between rendered blocks.
func (d *Document) Separator() string {
	return render.SeparatorFor(d.renderer)
}

// String renders buffer and joins the blocks.
func (d *Document) String(buffer string) (string, error) {
	out, err := d.Render(buffer)
	if err != nil {
		return "", err
	}
	return render.Join(out, d.Separator()), nil
}

func (d *Document) update(buffer string, complete, final bool) []Frame {
	split := blocks.Split(buffer)
	frames := make([]Frame, len(split))
	src := make([]string, len(split))
	text := make([]string, len(split))

	var closers string
	var changed []int
	for i, b := range split {
		t := b.Text
		if complete && (d.completeAll || i == len(split)-1) {
			var added string
			t, added = completeBlock(b.Text)
			if i == len(split)-1 {
				closers = added
			}
		}

		same := i < len(d.src) && d.src[i] == b.Text && d.text[i] == t
		if !same {
			changed = append(changed, i)
		}
		frames[i] = Frame{
			Index:   i,
			Kind:    b.Kind,
			Source:  b.Text,
			Text:    t,
			Changed: !same,
			Open:    b.Open,
		}
		src[i] = b.Text
		text[i] = t
	}

	if d.logger != nil {
		kinds := make([]string, len(split))
		for i, b := range split {
			kinds[i] = b.Kind.String()
		}
		d.logger.LogFrame(debuglog.Frame{
			BufferLen: len(buffer),
			Blocks:    len(split),
			Stable:    blocks.Stable(d.src, src),
			Changed:   changed,
			Closers:   closers,
			OpenFence: len(split) > 0 && split[len(split)-1].Open,
			Kinds:     kinds,
			Final:     final,
		})
	}

	d.src = src
	d.text = text
	return frames
}

// completeBlock closes the markers left open in a block. Closers go before
// any trailing whitespace so they stay on the block's last line.
func completeBlock(block string) (string, string) {
	body := strings.TrimRightFunc(block, unicode.IsSpace)
	done := incomplete.Complete(body)
	if len(done) == len(body) {
		return block, ""
	}
	return done + block[len(body):], done[len(body):]
}

func (d *Document) renderFrames(frames []Frame) ([]string, error) {
	if len(d.memo) > len(frames) {
		d.memo = d.memo[:len(frames)]
	}
	for len(d.memo) < len(frames) {
		d.memo = append(d.memo, memoEntry{})
	}

	out := make([]string, len(frames))
	for i, f := range frames {
		m := &d.memo[i]
		if !m.ok || m.text != f.Text {
			rendered, err := d.renderer.RenderBlock(i, f.Text)
			if err != nil {
				*m = memoEntry{}
				return nil, err
			}
			*m = memoEntry{text: f.Text, out: rendered, ok: true}
		}
		out[i] = m.out
	}
	return out, nil
}
