package streaming

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/samsaffron/streamdown/internal/render"
)

func glamourRenderer() render.BlockRenderer {
	return render.NewGlamour(80, "dark", nil)
}

// renderFull renders markdown in one pass.
func renderFull(t *testing.T, input string) string {
	t.Helper()
	var buf bytes.Buffer
	sr := NewRenderer(&buf, glamourRenderer())
	if _, err := sr.Write([]byte(input)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := sr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return buf.String()
}

// renderChunked renders markdown byte-by-byte.
func renderChunked(t *testing.T, input string) string {
	t.Helper()
	var buf bytes.Buffer
	sr := NewRenderer(&buf, glamourRenderer())
	for i := 0; i < len(input); i++ {
		if _, err := sr.Write([]byte{input[i]}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := sr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return buf.String()
}

// renderRandomChunks renders markdown with random chunk sizes.
func renderRandomChunks(t *testing.T, rng *rand.Rand, input string, maxChunkSize int) string {
	t.Helper()
	var buf bytes.Buffer
	sr := NewRenderer(&buf, glamourRenderer())
	pos := 0
	for pos < len(input) {
		chunkSize := rng.Intn(maxChunkSize) + 1
		if pos+chunkSize > len(input) {
			chunkSize = len(input) - pos
		}
		sr.Write([]byte(input[pos : pos+chunkSize]))
		pos += chunkSize
	}
	sr.Close()
	return buf.String()
}

// assertChunkingInvariant verifies that chunked output matches full output.
func assertChunkingInvariant(t *testing.T, name, input string) {
	t.Helper()

	full := renderFull(t, input)
	chunked := renderChunked(t, input)

	if full != chunked {
		t.Errorf("%s: chunking invariant FAILED\nInput:\n%s\n\nFull output (%d bytes):\n%q\n\nChunked output (%d bytes):\n%q",
			name, input, len(full), full, len(chunked), chunked)
	}
}

//
// ============================================================================
// CHUNKING INVARIANT TESTS
// These tests verify that output is identical regardless of how input is chunked
// ============================================================================
//

func TestChunkingInvariant_Heading(t *testing.T) {
	assertChunkingInvariant(t, "ATX Heading", "# Hello World\n")
	assertChunkingInvariant(t, "ATX Heading H2", "## Subheading\n")
	assertChunkingInvariant(t, "ATX Heading H6", "###### Deep heading\n")
}

func TestChunkingInvariant_SetextHeading(t *testing.T) {
	assertChunkingInvariant(t, "Setext H1", "Heading\n=======\n")
	assertChunkingInvariant(t, "Setext H2", "Heading\n-------\n")
}

func TestChunkingInvariant_Paragraph(t *testing.T) {
	assertChunkingInvariant(t, "Simple paragraph", "This is a paragraph.\n\n")
	assertChunkingInvariant(t, "Multi-line paragraph", "Line one.\nLine two.\nLine three.\n\n")
	assertChunkingInvariant(t, "Emphasis", "Some **bold** and *italic* and `code`.\n\nNext.\n")
}

func TestChunkingInvariant_FencedCode(t *testing.T) {
	assertChunkingInvariant(t, "Fenced code backticks", "```\ncode here\n```\n")
	assertChunkingInvariant(t, "Fenced code with lang", "```go\nfmt.Println(\"hello\")\n```\n")
	assertChunkingInvariant(t, "Fenced code tildes", "~~~\ncode here\n~~~\n")
	assertChunkingInvariant(t, "Fenced code 4 backticks", "````\n```\nnested\n```\n````\n")
}

func TestChunkingInvariant_List(t *testing.T) {
	assertChunkingInvariant(t, "Unordered list dash", "- Item 1\n- Item 2\n- Item 3\n\nAfter list.\n")
	assertChunkingInvariant(t, "Unordered list asterisk", "* Item 1\n* Item 2\n\nAfter.\n")
	assertChunkingInvariant(t, "Ordered list", "1. First\n2. Second\n3. Third\n\nAfter.\n")
}

func TestChunkingInvariant_NestedList(t *testing.T) {
	input := `- Item 1
  - Nested A
  - Nested B
- Item 2

After.
`
	assertChunkingInvariant(t, "Nested list", input)
}

func TestChunkingInvariant_Blockquote(t *testing.T) {
	assertChunkingInvariant(t, "Simple blockquote", "> This is a quote\n\nAfter.\n")
	assertChunkingInvariant(t, "Multi-line blockquote", "> Line 1\n> Line 2\n\nAfter.\n")
}

func TestChunkingInvariant_ThematicBreak(t *testing.T) {
	assertChunkingInvariant(t, "HR dashes", "---\n")
	assertChunkingInvariant(t, "HR asterisks", "***\n")
	assertChunkingInvariant(t, "HR underscores", "___\n")
}

func TestChunkingInvariant_Table(t *testing.T) {
	input := `| A | B |
|---|---|
| 1 | 2 |

After.
`
	assertChunkingInvariant(t, "Simple table", input)
}

func TestChunkingInvariant_Math(t *testing.T) {
	assertChunkingInvariant(t, "Display math", "$$\nE = mc^2\n$$\n\nCosts $5.\n")
}

func TestChunkingInvariant_ComplexDocument(t *testing.T) {
	input := `# Welcome

This document tests the streaming markdown renderer.

## Features

The renderer supports:

- **Headings** (ATX and Setext)
- *Paragraphs* with inline formatting
- Lists (ordered and unordered)
- Code blocks

### Code Example

` + "```go\npackage main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"Hello, World!\")\n}\n```\n" + `

## Tables

| Feature | Supported |
|---------|-----------|
| Headers | Yes |
| Lists | Yes |

> Note: This is a blockquote to test that feature.

---

*The end.*
`
	assertChunkingInvariant(t, "Complex document", input)
}

func TestChunkingInvariant_RandomChunks(t *testing.T) {
	input := `# Test

Paragraph here with **bold**.

- Item 1
- Item 2

` + "```\ncode\n```\n"

	full := renderFull(t, input)
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 20; trial++ {
		chunked := renderRandomChunks(t, rng, input, 10)
		if full != chunked {
			t.Errorf("Random chunk trial %d failed:\nFull:\n%q\nChunked:\n%q", trial, full, chunked)
		}
	}
}

func TestChunkingInvariant_SingleByteChunks(t *testing.T) {
	testCases := []string{
		"# H\n",
		"Para\n\n",
		"- A\n- B\n\nX\n",
		"```\nx\n```\n",
		"> Q\n\nX\n",
		"---\n",
	}

	for i, input := range testCases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			full := renderFull(t, input)
			chunked := renderChunked(t, input)
			if full != chunked {
				t.Errorf("Byte-by-byte chunking failed for input %q\nFull: %q\nChunked: %q",
					input, full, chunked)
			}
		})
	}
}

//
// ============================================================================
// FLOWING MODE
// ============================================================================
//

func TestFlowingModeCommitsSettledBlocks(t *testing.T) {
	var buf bytes.Buffer
	sr := NewRenderer(&buf, nil)

	sr.Write([]byte("para one\n\npara"))
	if got := buf.String(); got != "para one\n\n" {
		t.Fatalf("after first block settled: %q", got)
	}

	sr.Write([]byte(" two"))
	if got := buf.String(); got != "para one\n\n" {
		t.Errorf("growing block should not be written in flowing mode: %q", got)
	}

	if err := sr.Close(); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "para one\n\npara two\n" {
		t.Errorf("final output = %q", got)
	}
}

func TestFlush(t *testing.T) {
	var buf bytes.Buffer
	sr := NewRenderer(&buf, glamourRenderer())

	sr.Write([]byte("Incomplete **paragraph"))

	if buf.Len() > 0 {
		t.Error("should not emit the growing block")
	}

	sr.Flush()

	if !strings.Contains(ansi.Strip(buf.String()), "paragraph") {
		t.Errorf("Flush should emit buffered content, got %q", buf.String())
	}
}

func TestFinalOutputKeepsOpenMarkers(t *testing.T) {
	var buf bytes.Buffer
	sr := NewRenderer(&buf, nil)
	sr.Write([]byte("**never closed"))
	sr.Close()
	if got := buf.String(); got != "**never closed\n" {
		t.Errorf("output = %q", got)
	}
}

func TestClose(t *testing.T) {
	var buf bytes.Buffer
	sr := NewRenderer(&buf, glamourRenderer())

	sr.Write([]byte("Some content"))
	if err := sr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if buf.Len() == 0 {
		t.Error("Close should flush remaining content")
	}

	n := buf.Len()
	if err := sr.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if buf.Len() != n {
		t.Error("second Close wrote output")
	}

	if _, err := sr.Write([]byte("more")); err == nil {
		t.Error("Write after Close should fail")
	}
}

func TestWriteImplementsWriter(t *testing.T) {
	var buf bytes.Buffer
	sr := NewRenderer(&buf, glamourRenderer())

	var _ io.Writer = sr

	n, err := sr.Write([]byte("test\n"))
	if err != nil {
		t.Errorf("Write returned error: %v", err)
	}
	if n != 5 {
		t.Errorf("Write returned %d, want 5", n)
	}
	if sr.Markdown() != "test\n" {
		t.Errorf("Markdown() = %q", sr.Markdown())
	}

	sr.Close()
}

func TestEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	sr := NewRenderer(&buf, glamourRenderer())

	sr.Write([]byte(""))
	sr.Close()

	if buf.Len() != 0 {
		t.Errorf("empty input produced %q", buf.String())
	}
}

func TestOnlyWhitespace(t *testing.T) {
	var buf bytes.Buffer
	sr := NewRenderer(&buf, glamourRenderer())

	sr.Write([]byte("\n\n   \n"))
	sr.Close()

	if strings.TrimSpace(buf.String()) != "" {
		t.Errorf("whitespace input produced %q", buf.String())
	}
}

func TestResizeRedrawsEverything(t *testing.T) {
	var buf bytes.Buffer
	sr := NewRenderer(&buf, nil)
	sr.Write([]byte("a\n\nb"))
	sr.Close()

	buf.Reset()
	if err := sr.Resize(40); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if got := buf.String(); got != "a\n\nb\n" {
		t.Errorf("redraw = %q", got)
	}

	buf.Reset()
	if err := sr.Resize(0); err != nil || buf.Len() != 0 {
		t.Errorf("Resize(0) = %v, wrote %q", err, buf.String())
	}
}

type failingRenderer struct{}

func (failingRenderer) RenderBlock(index int, _ string) (string, error) {
	return "", fmt.Errorf("render block %d: broken", index)
}

func TestWritePropagatesRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	sr := NewRenderer(&buf, failingRenderer{})
	n, err := sr.Write([]byte("text"))
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 4 {
		t.Errorf("n = %d, want 4", n)
	}
}
