package streaming

import (
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// liveRegion is the part of the screen below the committed output that is
// redrawn on every write. It remembers how many rows it covers so the next
// draw can erase them first.
type liveRegion struct {
	out   io.Writer
	width int // columns; 0 means lines never wrap
	rows  int // rows covered by the last draw
}

func newLiveRegion(out io.Writer, width int) *liveRegion {
	return &liveRegion{out: out, width: width}
}

// Draw writes s, which must end at the start of a line, and records the rows
// it covers.
func (lr *liveRegion) Draw(s string) error {
	if _, err := io.WriteString(lr.out, s); err != nil {
		return err
	}
	lr.rows = lr.Rows(s)
	return nil
}

// Erase removes whatever the last Draw left on screen and leaves the cursor
// where that draw began.
func (lr *liveRegion) Erase() error {
	n := lr.rows
	lr.rows = 0
	return lr.eraseRows(n)
}

func (lr *liveRegion) eraseRows(n int) error {
	if n <= 0 {
		return nil
	}
	seq := ansi.CursorUp(n) + ansi.CursorHorizontalAbsolute(1) + ansi.EraseDisplay(0)
	_, err := io.WriteString(lr.out, seq)
	return err
}

// Rows reports how many screen rows s occupies once soft-wrapped at the
// region width. Escape sequences take no space; a trailing newline does not
// open a new row.
func (lr *liveRegion) Rows(s string) int {
	if s == "" {
		return 0
	}
	s = strings.TrimSuffix(s, "\n")
	rows := 0
	for line := range strings.SplitSeq(s, "\n") {
		w := ansi.StringWidth(line)
		if w == 0 || lr.width <= 0 {
			rows++
			continue
		}
		rows += (w + lr.width - 1) / lr.width
	}
	return rows
}
