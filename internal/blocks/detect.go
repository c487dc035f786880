package blocks

import "strings"

// fence describes an open fenced code block.
type fence struct {
	char   byte // '`' or '~'
	length int  // number of fence characters
	indent int  // leading spaces before the fence
}

func (f fence) open() bool {
	return f.char != 0
}

// detectBlock determines the type of block a line starts.
func detectBlock(line string) Kind {
	if isBlankLine(line) {
		return Blank
	}
	if indentColumns(line) >= 4 {
		return IndentedCode
	}

	trimmed := strings.TrimLeft(line, " \t")

	if _, ok := parseFence(trimmed); ok {
		return FencedCode
	}
	if strings.HasPrefix(trimmed, "$$") && strings.Count(trimmed, "$$")%2 == 1 {
		return MathBlock
	}
	if isATXHeading(trimmed) {
		return Heading
	}
	// Thematic breaks win over list markers: "* * *" is a rule, not an item.
	if isThematicBreak(trimmed) {
		return ThematicBreak
	}
	if trimmed[0] == '>' {
		return Blockquote
	}
	if isListMarker(trimmed) {
		return List
	}
	if isTableLine(trimmed) {
		return Table
	}
	return Paragraph
}

// interrupts reports whether line starts a block that can end a paragraph
// without a blank line in between.
func interrupts(line string) bool {
	switch detectBlock(line) {
	case FencedCode, Heading, ThematicBreak, Blockquote:
		return true
	}
	return false
}

// isBlankLine returns true if the line contains only whitespace.
func isBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}

// isATXHeading reports whether trimmed is a "#" heading: one to six hashes
// followed by whitespace or the end of the line.
func isATXHeading(trimmed string) bool {
	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return false
	}
	return n == len(trimmed) || trimmed[n] == ' ' || trimmed[n] == '\t'
}

// isListMarker returns true if the line starts with a list marker.
func isListMarker(trimmed string) bool {
	return listMarkerWidth(trimmed) > 0
}

// listMarkerWidth returns the byte length of the list marker at the start of
// trimmed, including the whitespace after it, or 0 if there is none.
func listMarkerWidth(trimmed string) int {
	if len(trimmed) == 0 {
		return 0
	}

	// Unordered list markers: -, *, +
	if trimmed[0] == '-' || trimmed[0] == '*' || trimmed[0] == '+' {
		if len(trimmed) == 1 {
			return 1
		}
		if trimmed[1] == ' ' || trimmed[1] == '\t' {
			return 2
		}
		return 0
	}

	// Ordered list markers: up to nine digits followed by . or )
	i := 0
	for i < len(trimmed) && i < 9 && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(trimmed) || (trimmed[i] != '.' && trimmed[i] != ')') {
		return 0
	}
	if i+1 == len(trimmed) {
		return i + 1
	}
	if trimmed[i+1] == ' ' || trimmed[i+1] == '\t' {
		return i + 2
	}
	return 0
}

// isThematicBreak returns true if the line is a thematic break (---, ***, ___).
func isThematicBreak(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}

	char := trimmed[0]
	if char != '-' && char != '*' && char != '_' {
		return false
	}

	count := 0
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c == char {
			count++
		} else if c != ' ' && c != '\t' {
			return false
		}
	}
	return count >= 3
}

// isTableLine returns true if the line appears to be part of a table.
func isTableLine(line string) bool {
	return strings.Contains(line, "|")
}

// isSetextUnderline returns true if the line is a setext heading underline.
func isSetextUnderline(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) == 0 || indentColumns(line) >= 4 {
		return false
	}

	char := trimmed[0]
	if char != '=' && char != '-' {
		return false
	}
	for i := 1; i < len(trimmed); i++ {
		if trimmed[i] != char {
			return false
		}
	}
	return true
}

// parseFence extracts fence info from a fence opening line. The line must
// already have its indentation removed.
func parseFence(trimmed string) (fence, bool) {
	if len(trimmed) < 3 || (trimmed[0] != '`' && trimmed[0] != '~') {
		return fence{}, false
	}

	char := trimmed[0]
	n := 0
	for n < len(trimmed) && trimmed[n] == char {
		n++
	}
	if n < 3 {
		return fence{}, false
	}
	// A backtick fence's info string may not contain backticks; "```x```"
	// is an inline code span.
	if char == '`' && strings.IndexByte(trimmed[n:], '`') >= 0 {
		return fence{}, false
	}
	return fence{char: char, length: n}, true
}

// isClosingFence returns true if the line is a valid closing fence for f.
func isClosingFence(line string, f fence) bool {
	indent := countLeadingSpaces(line)
	// Closing fence can have up to 3 spaces of indentation
	if indent > 3 && indent > f.indent+3 {
		return false
	}

	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) == 0 || trimmed[0] != f.char {
		return false
	}

	n := 0
	for n < len(trimmed) && trimmed[n] == f.char {
		n++
	}
	if strings.TrimSpace(trimmed[n:]) != "" {
		return false
	}
	return n >= f.length
}

// stripQuote removes every leading blockquote marker from line.
func stripQuote(line string) string {
	for {
		trimmed := strings.TrimLeft(line, " ")
		if len(line)-len(trimmed) > 3 || !strings.HasPrefix(trimmed, ">") {
			return line
		}
		line = strings.TrimPrefix(trimmed[1:], " ")
	}
}

// countLeadingSpaces returns the number of leading space characters.
// Tabs are counted as 1 for simplicity.
func countLeadingSpaces(line string) int {
	count := 0
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			break
		}
		count++
	}
	return count
}

// indentColumns returns the indentation width with tabs expanded to the
// next multiple of four, as the indented code block rule measures it.
func indentColumns(line string) int {
	col := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			col++
		case '\t':
			col += 4 - col%4
		default:
			return col
		}
	}
	return col
}
