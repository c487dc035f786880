package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"github.com/samsaffron/streamdown/internal/theme"
)

// Glamour renders blocks for the terminal with glamour.
type Glamour struct {
	style string
	theme *theme.Theme

	mu    sync.Mutex
	width int

	// renderers provides width-keyed caching of glamour renderers.
	// Creating a renderer is expensive; caching by width avoids recreation
	// when the terminal is resized back and forth.
	renderers sync.Map // map[int]*glamour.TermRenderer
}

// NewGlamour creates a glamour renderer. style names one of glamour's
// standard styles ("dark", "light", "notty", ...); an empty style derives
// one from th.
func NewGlamour(width int, style string, th *theme.Theme) *Glamour {
	if th == nil {
		th = theme.Dark()
	}
	return &Glamour{style: style, theme: th, width: width}
}

// Resize changes the wrap width used for later blocks.
func (g *Glamour) Resize(width int) {
	g.mu.Lock()
	g.width = width
	g.mu.Unlock()
}

func (g *Glamour) currentWidth() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.width
}

// getRenderer returns a cached renderer for the given width, creating one if needed.
func (g *Glamour) getRenderer(width int) (*glamour.TermRenderer, error) {
	if cached, ok := g.renderers.Load(width); ok {
		return cached.(*glamour.TermRenderer), nil
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if g.style != "" {
		opts = append(opts, glamour.WithStandardStyle(g.style))
	} else {
		opts = append(opts, glamour.WithStyles(g.theme.GlamourStyle()))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}

	// Race-safe: if another goroutine stored first, use theirs.
	actual, _ := g.renderers.LoadOrStore(width, renderer)
	return actual.(*glamour.TermRenderer), nil
}

// RenderBlock renders markdown with glamour. Leading and trailing blank lines
// are dropped so blocks can be joined with a fixed separator; the style's
// left margin is kept.
func (g *Glamour) RenderBlock(index int, markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	renderer, err := g.getRenderer(g.currentWidth())
	if err != nil {
		return "", fmt.Errorf("render block %d: %w", index, err)
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render block %d: %w", index, err)
	}
	return trimBlankLines(rendered), nil
}

func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	blank := func(line string) bool {
		return strings.TrimSpace(ansi.Strip(line)) == ""
	}
	for len(lines) > 0 && blank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && blank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}
