package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	"github.com/samsaffron/streamdown/internal/theme"
)

const defaultRuleWidth = 40

// Styled is the Presenter for ANSI terminals. Its colours come from a
// theme.Theme.
type Styled struct {
	width int

	heading   lipgloss.Style
	strong    lipgloss.Style
	emphasis  lipgloss.Style
	strike    lipgloss.Style
	link      lipgloss.Style
	code      lipgloss.Style
	codeBlock lipgloss.Style
	quoteBar  lipgloss.Style
	quoteText lipgloss.Style
	marker    lipgloss.Style
	muted     lipgloss.Style
}

// NewStyled creates a presenter that wraps paragraphs at width (0 disables
// wrapping) and emits colours for the given terminal profile. termenv.Ascii
// produces plain text.
func NewStyled(th *theme.Theme, width int, profile termenv.Profile) *Styled {
	if th == nil {
		th = theme.Dark()
	}
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)

	return &Styled{
		width:     width,
		heading:   r.NewStyle().Foreground(th.Secondary).Bold(true),
		strong:    r.NewStyle().Foreground(th.Primary).Bold(true),
		emphasis:  r.NewStyle().Foreground(th.Emphasis).Italic(true),
		strike:    r.NewStyle().Strikethrough(true),
		link:      r.NewStyle().Foreground(th.LinkText).Underline(true),
		code:      r.NewStyle().Foreground(th.CodeText).Background(th.CodeBackground),
		codeBlock: r.NewStyle().Foreground(th.CodeText),
		quoteBar:  r.NewStyle().Foreground(th.QuoteBorder),
		quoteText: r.NewStyle().Foreground(th.QuoteText).Italic(true),
		marker:    r.NewStyle().Foreground(th.Secondary),
		muted:     r.NewStyle().Foreground(th.Muted),
	}
}

// Resize changes the wrap width.
func (s *Styled) Resize(width int) { s.width = width }

func (s *Styled) Heading(level int, text string) string {
	return s.heading.Render(strings.Repeat("#", level) + " " + text)
}

func (s *Styled) Paragraph(text string) string {
	if s.width > 0 {
		return wordwrap.String(text, s.width)
	}
	return text
}

func (s *Styled) Strong(text string) string        { return s.strong.Render(text) }
func (s *Styled) Emphasis(text string) string      { return s.emphasis.Render(text) }
func (s *Styled) Strikethrough(text string) string { return s.strike.Render(text) }
func (s *Styled) CodeSpan(code string) string      { return s.code.Render(code) }
func (s *Styled) Text(text string) string          { return text }

func (s *Styled) Link(text, url string) string {
	label := s.link.Render(text)
	if url == "" || url == ansi.Strip(text) {
		return label
	}
	return label + " " + s.muted.Render("("+url+")")
}

func (s *Styled) Image(alt, url string) string {
	return s.muted.Render("Image: " + alt + " → " + url)
}

func (s *Styled) CodeBlock(code, language string, open bool) string {
	var sb strings.Builder
	if language != "" {
		sb.WriteString(s.muted.Render(language))
		sb.WriteString("\n")
	}
	for i, line := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("  ")
		sb.WriteString(s.codeBlock.Render(line))
	}
	if open {
		sb.WriteString("\n")
		sb.WriteString(s.muted.Render("  ▍ streaming…"))
	}
	return sb.String()
}

func (s *Styled) Blockquote(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = s.quoteBar.Render("│") + " " + s.quoteText.Render(line)
	}
	return strings.Join(lines, "\n")
}

func (s *Styled) List(items []string) string {
	return strings.Join(items, "\n")
}

// ListItem hangs continuation lines under the first character after the
// marker.
func (s *Styled) ListItem(marker, body string) string {
	indent := strings.Repeat(" ", runewidth.StringWidth(marker)+1)
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = s.marker.Render(marker) + " " + line
		case line != "":
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

func (s *Styled) ThematicBreak() string {
	w := s.width
	if w <= 0 {
		w = defaultRuleWidth
	}
	return s.muted.Render(strings.Repeat("─", w))
}

func (s *Styled) Table(header []string, rows [][]string, align []Alignment) string {
	cols := len(header)
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	measure := func(cells []string) {
		for i, c := range cells {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	measure(header)
	for _, row := range rows {
		measure(row)
	}

	format := func(cells []string, style *lipgloss.Style) string {
		out := make([]string, cols)
		for i := range out {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			var a Alignment
			if i < len(align) {
				a = align[i]
			}
			cell = pad(cell, widths[i], a)
			if style != nil {
				cell = style.Render(cell)
			}
			out[i] = cell
		}
		return strings.Join(out, s.muted.Render(" │ "))
	}

	var lines []string
	if len(header) > 0 {
		lines = append(lines, format(header, &s.heading))
		rule := make([]string, cols)
		for i, w := range widths {
			rule[i] = strings.Repeat("─", w)
		}
		lines = append(lines, s.muted.Render(strings.Join(rule, "─┼─")))
	}
	for _, row := range rows {
		lines = append(lines, format(row, nil))
	}
	return strings.Join(lines, "\n")
}

// pad fills cell to width display columns.
func pad(cell string, width int, a Alignment) string {
	switch a {
	case AlignRight:
		return runewidth.FillLeft(cell, width)
	case AlignCenter:
		gap := width - runewidth.StringWidth(cell)
		if gap <= 0 {
			return cell
		}
		left := gap / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", gap-left)
	}
	return runewidth.FillRight(cell, width)
}
