package incomplete

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type scanner struct {
	text  string
	open  []Marker
	fence *Fence
}

func (sc *scanner) run() {
	text := sc.text
	n := len(text)
	lineStart := 0
	lineBlank := true

	for i := 0; i < n; {
		c := text[i]

		if c == '\n' {
			// A blank line ends the paragraph, and inline markers never
			// span paragraphs. Display math may.
			if lineBlank && sc.fence == nil {
				sc.resetInline()
			}
			i++
			lineStart = i
			lineBlank = true
			continue
		}

		if i == lineStart {
			end := lineEnd(text, i)
			if sc.fence != nil {
				if closesFence(text[i:end], sc.fence) {
					sc.fence = nil
				}
				lineBlank = false
				i = end
				continue
			}
			if !sc.inMath() {
				if f, ok := openingFence(text[i:end]); ok {
					f.Offset += i
					sc.fence = &f
					sc.open = sc.open[:0]
					lineBlank = false
					i = end
					continue
				}
			}
		}

		if c != ' ' && c != '\t' && c != '\r' {
			lineBlank = false
		}

		if top := sc.top(); top != nil && top.Class == InlineCode {
			i = sc.inCode(i, top)
			continue
		}
		if sc.inMath() {
			i = sc.inMathSpan(i)
			continue
		}

		switch c {
		case '\\':
			if i+1 < n && isPunct(text[i+1]) {
				i += 2
			} else {
				i++
			}
		case '`':
			m := runLength(text, i)
			sc.open = append(sc.open, Marker{Class: InlineCode, Offset: i, Len: m})
			i += m
		case '*':
			m := runLength(text, i)
			canOpen, canClose := flanking(text, i, m)
			opened := false
			for t := 0; t < m/2; t++ {
				opened = sc.delim(Bold, i, 2, canOpen, canClose || opened) || opened
			}
			if m%2 == 1 {
				sc.delim(Italic, i+m-1, 1, canOpen, canClose)
			}
			i += m
		case '~':
			m := runLength(text, i)
			if m == 2 {
				canOpen, canClose := flanking(text, i, m)
				sc.delim(Strikethrough, i, 2, canOpen, canClose)
			}
			i += m
		case '$':
			m := runLength(text, i)
			sc.toggleMath(i, m)
			i += m
		default:
			i++
		}
	}
}

// delim applies one delimiter token of class c. It closes an open marker of
// the same class when the run can close, opens a new one when it can open,
// and is literal text otherwise. It reports whether it opened a marker.
func (sc *scanner) delim(c Class, offset, length int, canOpen, canClose bool) bool {
	if idx := sc.index(c); idx >= 0 {
		if canClose {
			sc.open = append(sc.open[:idx], sc.open[idx+1:]...)
		}
		return false
	}
	if canOpen {
		sc.open = append(sc.open, Marker{Class: c, Offset: offset, Len: length})
		return true
	}
	return false
}

// toggleMath consumes a run of m dollar signs as m/2 block math toggles.
// An odd leftover dollar is literal.
func (sc *scanner) toggleMath(offset, m int) {
	for t := 0; t < m/2; t++ {
		if idx := sc.index(BlockMath); idx >= 0 {
			sc.open = append(sc.open[:idx], sc.open[idx+1:]...)
		} else {
			sc.open = append(sc.open, Marker{Class: BlockMath, Offset: offset + 2*t, Len: 2})
		}
	}
}

// inCode scans inside a code span, where only a backtick run of the opening
// length means anything.
func (sc *scanner) inCode(i int, top *Marker) int {
	if sc.text[i] != '`' {
		return i + 1
	}
	m := runLength(sc.text, i)
	if m == top.Len {
		sc.open = sc.open[:len(sc.open)-1]
	}
	return i + m
}

// inMathSpan scans inside block math, where only dollar runs mean anything.
func (sc *scanner) inMathSpan(i int) int {
	switch sc.text[i] {
	case '\\':
		if i+1 < len(sc.text) && sc.text[i+1] == '$' {
			return i + 2
		}
	case '$':
		m := runLength(sc.text, i)
		sc.toggleMath(i, m)
		return i + m
	}
	return i + 1
}

// resetInline drops every open marker except block math.
func (sc *scanner) resetInline() {
	kept := sc.open[:0]
	for _, m := range sc.open {
		if m.Class == BlockMath {
			kept = append(kept, m)
		}
	}
	sc.open = kept
}

func (sc *scanner) index(c Class) int {
	for i := len(sc.open) - 1; i >= 0; i-- {
		if sc.open[i].Class == c {
			return i
		}
	}
	return -1
}

func (sc *scanner) top() *Marker {
	if len(sc.open) == 0 {
		return nil
	}
	return &sc.open[len(sc.open)-1]
}

func (sc *scanner) inMath() bool {
	top := sc.top()
	return top != nil && top.Class == BlockMath
}

// openingFence reports whether line opens a fenced code block. Blockquote
// and list markers in front of the fence are allowed.
func openingFence(line string) (Fence, bool) {
	start := fenceStart(line)
	if start < 0 {
		return Fence{}, false
	}
	char := line[start]
	m := runLength(line, start)
	if m < 3 {
		return Fence{}, false
	}
	info := strings.TrimSpace(line[start+m:])
	if char == '`' && strings.IndexByte(info, '`') >= 0 {
		return Fence{}, false
	}
	return Fence{Marker: line[start : start+m], Info: info, Offset: start}, true
}

// closesFence reports whether line closes f: the same character, at least
// as many of them, and nothing but whitespace after.
func closesFence(line string, f *Fence) bool {
	start := fenceStart(line)
	if start < 0 || line[start] != f.Marker[0] {
		return false
	}
	m := runLength(line, start)
	return m >= len(f.Marker) && strings.TrimSpace(line[start+m:]) == ""
}

// fenceStart skips indentation and container markers and returns the index
// of a backtick or tilde that could start a fence, or -1.
func fenceStart(line string) int {
	i := 0
	for i < len(line) {
		switch c := line[i]; {
		case c == ' ' || c == '\t':
			i++
		case c == '>':
			i++
		case (c == '-' || c == '*' || c == '+') && i+1 < len(line) && line[i+1] == ' ':
			i += 2
		case c >= '0' && c <= '9':
			j := i
			for j < len(line) && line[j] >= '0' && line[j] <= '9' {
				j++
			}
			if j+1 < len(line) && (line[j] == '.' || line[j] == ')') && line[j+1] == ' ' {
				i = j + 2
				continue
			}
			return -1
		case c == '`' || c == '~':
			return i
		default:
			return -1
		}
	}
	return -1
}

// flanking reports whether the run text[i:i+m] can open emphasis (it is
// followed by a non-space character) and whether it can close emphasis (it
// follows a non-space character).
func flanking(text string, i, m int) (canOpen, canClose bool) {
	if i+m < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i+m:])
		canOpen = !unicode.IsSpace(r)
	}
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		canClose = !unicode.IsSpace(r)
	}
	return canOpen, canClose
}

func runLength(text string, i int) int {
	c := text[i]
	j := i
	for j < len(text) && text[j] == c {
		j++
	}
	return j - i
}

func lineEnd(text string, i int) int {
	if j := strings.IndexByte(text[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(text)
}

func isPunct(c byte) bool {
	return c < utf8.RuneSelf && unicode.IsPunct(rune(c)) || strings.IndexByte("$+<=>^`|~", c) >= 0
}
