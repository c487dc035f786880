// Package incomplete closes markdown delimiters that a text stream has opened
// but not yet closed, so a half-received block renders the way it will once
// the rest arrives.
//
// Completion only ever appends closing markers. Fenced code blocks are left
// open, and single dollar signs are always literal text because prose uses
// them for currency far more often than for inline math.
package incomplete

import "strings"

// Class is a kind of inline delimiter that the completer tracks.
type Class int

const (
	Bold Class = iota
	Italic
	Strikethrough
	InlineCode
	BlockMath
)

var classNames = [...]string{
	Bold:          "bold",
	Italic:        "italic",
	Strikethrough: "strikethrough",
	InlineCode:    "inline_code",
	BlockMath:     "block_math",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// Marker is an opening delimiter with no matching closer.
type Marker struct {
	Class  Class
	Offset int // byte offset of the opening run
	Len    int // length of the opening delimiter
}

// Closer returns the text that closes the marker.
func (m Marker) Closer() string {
	switch m.Class {
	case Bold:
		return "**"
	case Italic:
		return "*"
	case Strikethrough:
		return "~~"
	case InlineCode:
		return strings.Repeat("`", m.Len)
	case BlockMath:
		return "$$"
	}
	return ""
}

// Fence is an open fenced code block.
type Fence struct {
	Marker string // the opening run, e.g. "```" or "~~~~"
	Info   string // info string after the run, usually a language
	Offset int    // byte offset of the opening run
}

// State is the result of scanning a text.
type State struct {
	Open  []Marker // unmatched markers in the order they were opened
	Fence *Fence   // non-nil while a code fence is open
}

// Closers returns the suffix that closes every open marker, innermost first.
// Open fences are never closed.
func (s State) Closers() string {
	if len(s.Open) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(s.Open) - 1; i >= 0; i-- {
		sb.WriteString(s.Open[i].Closer())
	}
	return sb.String()
}

// Scan tokenizes text left to right and reports what is left open.
func Scan(text string) State {
	sc := scanner{text: text}
	sc.run()
	return State{Open: sc.open, Fence: sc.fence}
}

// Complete returns text with closing markers appended for every delimiter
// that is still open. Text that needs nothing is returned unchanged.
//
// The result is checked by scanning it again: if the appended closers would
// merge with trailing marker characters into something that does not
// balance, text is returned as is. This keeps Complete idempotent.
func Complete(text string) string {
	st := Scan(text)
	closers := st.Closers()
	if closers == "" {
		return text
	}

	out := text + closers
	check := Scan(out)
	if len(check.Open) > 0 || (check.Fence == nil) != (st.Fence == nil) {
		return text
	}
	return out
}

// CompleteLast returns a copy of blocks with only the final, still growing,
// block completed.
func CompleteLast(blocks []string) []string {
	if len(blocks) == 0 {
		return blocks
	}
	out := make([]string, len(blocks))
	copy(out, blocks)
	out[len(out)-1] = Complete(out[len(out)-1])
	return out
}
