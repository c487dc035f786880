// Package blocks partitions a growing markdown buffer into top-level blocks.
//
// The split is lossless: concatenating the Text of every block reproduces
// the buffer byte for byte. Every block except the last is final, meaning
// that appending more text to the buffer never changes it; only the last
// block is still growing. Callers rely on this to cache rendered blocks by
// index.
package blocks

import "strings"

// Kind is the type of markdown block a Block holds.
type Kind int

const (
	Blank Kind = iota
	Paragraph
	Heading
	FencedCode
	IndentedCode
	MathBlock
	Table
	List
	Blockquote
	ThematicBreak
)

var kindNames = [...]string{
	Blank:         "blank",
	Paragraph:     "paragraph",
	Heading:       "heading",
	FencedCode:    "fenced_code",
	IndentedCode:  "indented_code",
	MathBlock:     "math",
	Table:         "table",
	List:          "list",
	Blockquote:    "blockquote",
	ThematicBreak: "thematic_break",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Block is one top-level block of the buffer.
type Block struct {
	Index  int    `json:"index" yaml:"index"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Offset int    `json:"offset" yaml:"offset"` // byte offset in the buffer
	Text   string `json:"text" yaml:"text"`

	// Open is set when the block is a fenced code or math block whose
	// closing fence has not arrived yet.
	Open bool `json:"open,omitempty" yaml:"open,omitempty"`
}

// MarshalText lets Kind serialize as its name in JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// state represents what the splitter is accumulating.
type state int

const (
	stateReady          state = iota // Ready for new block
	stateInParagraph                 // Accumulating paragraph
	stateInFencedCode                // Inside ``` ... ```
	stateInMath                      // Inside $$ ... $$
	stateInTable                     // Inside table rows
	stateInList                      // Inside list
	stateInBlockquote                // Inside > block
	stateInIndentedCode              // Inside 4-space indented code
)

type splitter struct {
	buf    string
	blocks []Block

	start      int  // offset of the block being accumulated
	kind       Kind // kind of the block being accumulated
	hasContent bool // block has seen a non-blank line

	state state

	fence      fence // open fence of a fenced code block
	nested     fence // open fence inside a list item or blockquote
	listIndent int   // base indent level of current list
	lazy       bool  // container's last line was paragraph text
	mathOpen   bool  // paragraph holds an unmatched $$
}

// Segment splits buffer into the text of its top-level blocks.
// strings.Join(Segment(b), "") == b for every b.
func Segment(buffer string) []string {
	split := Split(buffer)
	if len(split) == 0 {
		return nil
	}
	out := make([]string, len(split))
	for i, b := range split {
		out[i] = b.Text
	}
	return out
}

// Split splits buffer into typed top-level blocks. Blank lines belong to the
// block they follow; blank lines at the start of the buffer lead the first
// block. An empty buffer yields no blocks.
func Split(buffer string) []Block {
	if buffer == "" {
		return nil
	}

	s := &splitter{buf: buffer}
	for offset := 0; offset < len(buffer); {
		end := strings.IndexByte(buffer[offset:], '\n')
		complete := end >= 0
		if complete {
			end += offset + 1
		} else {
			end = len(buffer)
		}
		s.line(offset, end, complete)
		offset = end
	}
	s.cut(len(buffer))
	return s.blocks
}

// Stable returns the number of leading blocks that are identical in prev and
// next.
func Stable(prev, next []string) int {
	n := min(len(prev), len(next))
	for i := 0; i < n; i++ {
		if prev[i] != next[i] {
			return i
		}
	}
	return n
}

// cut ends the current block at offset at.
func (s *splitter) cut(at int) {
	if at <= s.start {
		return
	}
	kind := s.kind
	if !s.hasContent {
		kind = Blank
	}
	open := s.state == stateInFencedCode || s.state == stateInMath || s.nested.open() ||
		(s.state == stateInParagraph && s.mathOpen)
	s.blocks = append(s.blocks, Block{
		Index:  len(s.blocks),
		Kind:   kind,
		Offset: s.start,
		Text:   s.buf[s.start:at],
		Open:   open,
	})
	s.start = at
}

// line handles the line buf[start:end]. A line that is not complete is the
// trailing partial line of the buffer; it may still turn into something else
// once the rest of it arrives, so it never ends a block on its own.
func (s *splitter) line(start, end int, complete bool) {
	content := strings.TrimSuffix(s.buf[start:end], "\n")
	content = strings.TrimSuffix(content, "\r")
	blank := isBlankLine(content)

	switch s.state {
	case stateReady:
		s.handleReady(start, content, blank)

	case stateInParagraph:
		if s.mathOpen {
			if strings.Count(content, "$$")%2 == 1 {
				s.mathOpen = false
			}
			return
		}
		if blank {
			s.state = stateReady
			return
		}
		if strings.Count(content, "$$")%2 == 1 {
			s.mathOpen = true
			return
		}
		if !complete {
			return
		}
		// Setext underline must be checked before thematic break because
		// --- is ambiguous.
		if isSetextUnderline(content) {
			s.kind = Heading
			s.state = stateReady
			return
		}
		if interrupts(content) {
			s.cut(start)
			s.handleReady(start, content, blank)
		}

	case stateInFencedCode:
		if isClosingFence(content, s.fence) {
			s.fence = fence{}
			s.state = stateReady
		}

	case stateInMath:
		if strings.Count(content, "$$")%2 == 1 {
			s.state = stateReady
		}

	case stateInTable:
		if blank {
			s.state = stateReady
			return
		}
		if !complete {
			return
		}
		if interrupts(content) || isListMarker(strings.TrimLeft(content, " \t")) {
			s.cut(start)
			s.handleReady(start, content, blank)
		}

	case stateInList:
		s.handleList(start, content, blank, complete)

	case stateInBlockquote:
		if s.nested.open() {
			if isClosingFence(stripQuote(content), s.nested) {
				s.nested = fence{}
				s.lazy = false
			}
			return
		}
		if blank {
			s.state = stateReady
			return
		}
		if !complete {
			return
		}
		if strings.HasPrefix(strings.TrimLeft(content, " \t"), ">") {
			s.openContainerLine(stripQuote(content))
			return
		}
		if s.lazy && !interrupts(content) {
			return
		}
		s.cut(start)
		s.handleReady(start, content, blank)

	case stateInIndentedCode:
		if blank || !complete || indentColumns(content) >= 4 {
			return
		}
		s.cut(start)
		s.handleReady(start, content, blank)
	}
}

// handleReady processes a line when no block is being accumulated.
func (s *splitter) handleReady(start int, content string, blank bool) {
	// Blank lines stay with the block before them.
	if blank {
		return
	}
	if s.hasContent {
		s.cut(start)
	}
	s.hasContent = true
	s.kind = detectBlock(content)

	switch s.kind {
	case FencedCode:
		trimmed := strings.TrimLeft(content, " \t")
		s.fence, _ = parseFence(trimmed)
		s.fence.indent = countLeadingSpaces(content)
		s.state = stateInFencedCode
	case MathBlock:
		s.state = stateInMath
	case Heading, ThematicBreak:
		// Single-line blocks are complete immediately
		s.state = stateReady
	case Table:
		s.state = stateInTable
	case List:
		s.state = stateInList
		s.listIndent = countLeadingSpaces(content)
		s.openContainerLine(listItemBody(content))
	case Blockquote:
		s.state = stateInBlockquote
		s.openContainerLine(stripQuote(content))
	case IndentedCode:
		s.state = stateInIndentedCode
	default:
		s.state = stateInParagraph
		s.mathOpen = false
		if strings.Count(content, "$$")%2 == 1 {
			s.mathOpen = true
		}
	}
}

// handleList processes a line while inside a list.
func (s *splitter) handleList(start int, content string, blank, complete bool) {
	if s.nested.open() {
		if isClosingFence(listItemBody(content), s.nested) {
			s.nested = fence{}
			s.lazy = false
		}
		return
	}

	// Blank line might end list or be between items
	if blank {
		s.lazy = false
		return
	}
	if !complete {
		return
	}

	trimmed := strings.TrimLeft(content, " \t")
	if isThematicBreak(trimmed) {
		s.cut(start)
		s.handleReady(start, content, false)
		return
	}

	// A list marker always continues the list, and so does content indented
	// past the list's own marker.
	if isListMarker(trimmed) || countLeadingSpaces(content) > s.listIndent {
		s.openContainerLine(listItemBody(content))
		return
	}

	// Lazy continuation of the item's paragraph.
	if s.lazy && !interrupts(content) {
		return
	}

	s.cut(start)
	s.handleReady(start, content, false)
}

// openContainerLine handles the body of a list item or blockquote line. A
// fence opened there absorbs the lines after it until it closes; any other
// text allows lazy continuation lines to follow.
func (s *splitter) openContainerLine(body string) {
	trimmed := strings.TrimLeft(body, " \t")
	if f, ok := parseFence(trimmed); ok {
		f.indent = countLeadingSpaces(body)
		s.nested = f
		s.lazy = false
		return
	}
	s.lazy = trimmed != ""
}

// listItemBody strips indentation and a leading list marker from line.
func listItemBody(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	return trimmed[listMarkerWidth(trimmed):]
}
