package streaming

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestLiveRegionRows(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		width    int
		expected int
	}{
		{
			name:     "single line",
			content:  "hello world",
			width:    80,
			expected: 1,
		},
		{
			name:     "multiple lines",
			content:  "line1\nline2\nline3",
			width:    80,
			expected: 3,
		},
		{
			name:     "wrapped line",
			content:  "this is a very long line that should wrap",
			width:    20,
			expected: 3, // 41 chars at width 20 = 3 lines
		},
		{
			name:     "empty content",
			content:  "",
			width:    80,
			expected: 0,
		},
		{
			name:     "trailing newline",
			content:  "hello\n",
			width:    80,
			expected: 1,
		},
		{
			name:     "only newlines",
			content:  "\n\n\n",
			width:    80,
			expected: 3,
		},
		{
			name:     "with ANSI codes",
			content:  "\x1b[1mhello\x1b[0m",
			width:    80,
			expected: 1, // ANSI codes should not count toward width
		},
		{
			name:     "wide runes",
			content:  "日本語日本語",
			width:    4,
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			lr := newLiveRegion(&buf, tt.width)
			result := lr.Rows(tt.content)
			if result != tt.expected {
				t.Errorf("Rows(%q, width=%d) = %d, want %d",
					tt.content, tt.width, result, tt.expected)
			}
		})
	}
}

func TestLiveRegionErase(t *testing.T) {
	var buf bytes.Buffer
	lr := newLiveRegion(&buf, 80)
	if err := lr.Draw("one\ntwo\nthree\n"); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	buf.Reset()

	if err := lr.Erase(); err != nil {
		t.Fatalf("Erase failed: %v", err)
	}

	output := buf.String()

	// Should contain cursor up sequence
	if !strings.Contains(output, "\x1b[3A") {
		t.Errorf("Expected cursor up sequence, got: %q", output)
	}

	// Should contain cursor to column 1
	if !strings.Contains(output, "\x1b[1G") {
		t.Errorf("Expected cursor to column 1 sequence, got: %q", output)
	}

	// Should contain erase display from cursor (\x1b[J or \x1b[0J - both are valid)
	if !strings.Contains(output, "\x1b[J") && !strings.Contains(output, "\x1b[0J") {
		t.Errorf("Expected erase display sequence, got: %q", output)
	}
}

func TestLiveRegionEraseNothing(t *testing.T) {
	var buf bytes.Buffer
	lr := newLiveRegion(&buf, 80)

	if err := lr.Erase(); err != nil {
		t.Fatalf("Erase failed: %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("erasing an empty region should not output anything, got: %q", buf.String())
	}
}

func TestNewRendererWithPartialRendering(t *testing.T) {
	var buf bytes.Buffer

	sr := NewRenderer(&buf, nil, WithPartialRendering(), WithTerminalWidth(120))

	if !sr.partialEnabled {
		t.Error("partialEnabled should be true")
	}
	if sr.termWidth != 120 {
		t.Errorf("termWidth = %d, want 120", sr.termWidth)
	}
	if sr.live == nil {
		t.Error("live region should be initialized")
	}
}

func TestNewRendererFlowingMode(t *testing.T) {
	// When partial rendering is enabled without terminal width,
	// it uses flowing mode (no terminal control)
	var buf bytes.Buffer

	sr := NewRenderer(&buf, nil, WithPartialRendering())

	if sr.termWidth != 0 {
		t.Errorf("termWidth = %d, want 0 (flowing mode)", sr.termWidth)
	}
	if sr.live != nil {
		t.Error("live region should be nil in flowing mode")
	}
}

func TestPartialRenderingRedrawsGrowingBlock(t *testing.T) {
	var buf bytes.Buffer
	sr := NewRenderer(&buf, nil, WithPartialRendering(), WithTerminalWidth(80))

	sr.Write([]byte("**bo"))
	if got := buf.String(); got != "**bo**\n" {
		t.Fatalf("first frame = %q", got)
	}
	if sr.live.rows != 1 {
		t.Errorf("rows = %d, want 1", sr.live.rows)
	}

	buf.Reset()
	sr.Write([]byte("ld"))
	out := buf.String()
	if !strings.HasPrefix(out, ansi.CursorUp(1)) {
		t.Errorf("expected cursor up before redraw, got %q", out)
	}
	if !strings.HasSuffix(out, "**bold**\n") {
		t.Errorf("expected completed block, got %q", out)
	}

	// Unchanged tail is not redrawn
	buf.Reset()
	sr.Write([]byte(""))
	if buf.Len() != 0 {
		t.Errorf("identical frame redrew %q", buf.String())
	}

	buf.Reset()
	sr.Close()
	out = buf.String()
	if !strings.HasSuffix(out, "**bold\n") || strings.Contains(out, "**bold**") {
		t.Errorf("final frame should drop synthetic closers, got %q", out)
	}
	if sr.live.rows != 0 {
		t.Errorf("rows = %d after close", sr.live.rows)
	}
}

func TestPartialRenderingCommitsAboveTail(t *testing.T) {
	var buf bytes.Buffer
	sr := NewRenderer(&buf, nil, WithPartialRendering(), WithTerminalWidth(80))

	sr.Write([]byte("one"))
	buf.Reset()

	sr.Write([]byte("\n\n*two"))
	out := buf.String()
	// The tail "one" is cleared, committed, and the new tail drawn below it
	want := "one\n\n*two*\n"
	if !strings.HasSuffix(out, want) {
		t.Errorf("output = %q, want suffix %q", out, want)
	}
	if sr.committed != 1 {
		t.Errorf("committed = %d, want 1", sr.committed)
	}
	if sr.live.rows != 1 {
		t.Errorf("rows = %d, want 1", sr.live.rows)
	}
}

func TestPartialRenderingWithoutCompletion(t *testing.T) {
	var buf bytes.Buffer
	sr := NewRenderer(&buf, nil, WithPartialRendering(), WithTerminalWidth(80), WithoutCompletion())

	sr.Write([]byte("`code"))
	if got := buf.String(); got != "`code\n" {
		t.Errorf("output = %q", got)
	}
}
