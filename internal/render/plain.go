package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
)

// Plain renders blocks as unstyled text for pipes and dumb terminals.
type Plain struct {
	md    goldmark.Markdown
	width int
}

// NewPlain creates a plain text renderer wrapping at width (0 disables
// wrapping).
func NewPlain(width int) *Plain {
	return &Plain{
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		width: width,
	}
}

// Resize changes the wrap width.
func (p *Plain) Resize(width int) { p.width = width }

func (p *Plain) RenderBlock(index int, markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	var htmlBuf bytes.Buffer
	if err := p.md.Convert([]byte(markdown), &htmlBuf); err != nil {
		return "", fmt.Errorf("render block %d: %w", index, err)
	}

	text, hasPre := htmlToPlain(htmlBuf.String())
	if p.width > 0 && !hasPre {
		text = wordwrap.String(text, p.width)
	}
	return text, nil
}

// htmlToPlain walks goldmark's HTML output and produces plain text. It also
// reports whether the HTML held preformatted text, which must not be wrapped.
func htmlToPlain(src string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(src))

	var sb strings.Builder
	type listState struct {
		ordered bool
		counter int
	}
	var listStack []listState

	inPre := false
	hasPre := false
	inline := 0 // depth of elements holding inline text
	cell := 0   // cells written in the current table row

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		tok := z.Token()

		switch tt {
		case html.TextToken:
			text := tok.Data
			if !inPre && strings.TrimSpace(text) == "" && strings.Contains(text, "\n") {
				// Formatting whitespace between block tags.
				if s := sb.String(); inline > 0 && s != "" && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
					sb.WriteString(" ")
				}
				continue
			}
			sb.WriteString(text)

		case html.StartTagToken, html.SelfClosingTagToken:
			switch tok.Data {
			case "p", "h1", "h2", "h3", "h4", "h5", "h6":
				inline++
			case "pre":
				inPre = true
				hasPre = true
			case "br":
				sb.WriteString("\n")
			case "ul":
				listStack = append(listStack, listState{ordered: false})
			case "ol":
				start := 1
				if n, err := strconv.Atoi(attrVal(tok.Attr, "start")); err == nil {
					start = n
				}
				listStack = append(listStack, listState{ordered: true, counter: start - 1})
			case "li":
				inline++
				newline(&sb)
				depth := len(listStack) - 1
				if depth > 0 {
					sb.WriteString(strings.Repeat("  ", depth))
				}
				if len(listStack) > 0 && listStack[len(listStack)-1].ordered {
					top := &listStack[len(listStack)-1]
					top.counter++
					fmt.Fprintf(&sb, "%d. ", top.counter)
				} else {
					sb.WriteString("• ")
				}
			case "input":
				if _, checked := attrLookup(tok.Attr, "checked"); checked {
					sb.WriteString("[x]")
				} else {
					sb.WriteString("[ ]")
				}
			case "tr":
				cell = 0
				newline(&sb)
			case "td", "th":
				inline++
				if cell > 0 {
					sb.WriteString(" | ")
				}
				cell++
			case "blockquote":
				sb.WriteString("> ")
			case "img":
				fmt.Fprintf(&sb, "[image: %s]", attrVal(tok.Attr, "alt"))
			case "hr":
				sb.WriteString("──────────")
			}

		case html.EndTagToken:
			switch tok.Data {
			case "p":
				inline--
				sb.WriteString("\n\n")
			case "h1", "h2", "h3", "h4", "h5", "h6":
				inline--
				sb.WriteString("\n\n")
			case "pre":
				inPre = false
				sb.WriteString("\n")
			case "ul", "ol":
				if len(listStack) > 0 {
					listStack = listStack[:len(listStack)-1]
				}
				if len(listStack) == 0 {
					sb.WriteString("\n")
				}
			case "li", "td", "th":
				inline--
			case "table":
				sb.WriteString("\n")
			}
		}
	}

	result := strings.TrimSpace(sb.String())
	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}
	return result, hasPre
}

// newline starts a new line unless sb is empty or already at one. Trailing
// spaces on the current line are dropped.
func newline(sb *strings.Builder) {
	s := strings.TrimRight(sb.String(), " ")
	if s == "" {
		return
	}
	sb.Reset()
	sb.WriteString(s)
	if !strings.HasSuffix(s, "\n") {
		sb.WriteString("\n")
	}
}

// attrVal returns the value of a named HTML attribute, or "".
func attrVal(attrs []html.Attribute, name string) string {
	v, _ := attrLookup(attrs, name)
	return v
}

func attrLookup(attrs []html.Attribute, name string) (string, bool) {
	for _, a := range attrs {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
