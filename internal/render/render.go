// Package render turns single markdown blocks into output text. Renderers
// are driven block by block, so each implementation must render a block the
// same way regardless of the blocks around it.
package render

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
	"github.com/samsaffron/streamdown/internal/theme"
)

// BlockRenderer renders one markdown block. index is the block's position in
// its document; implementations may use it for keyed caching but must not
// change their output based on it.
type BlockRenderer interface {
	RenderBlock(index int, markdown string) (string, error)
}

// Func adapts a plain function to the BlockRenderer interface.
type Func func(index int, markdown string) (string, error)

// RenderBlock calls f.
func (f Func) RenderBlock(index int, markdown string) (string, error) {
	return f(index, markdown)
}

// Separated is implemented by renderers whose blocks need a separator other
// than a blank line when concatenated.
type Separated interface {
	Separator() string
}

// SeparatorFor returns the text placed between two rendered blocks.
func SeparatorFor(r BlockRenderer) string {
	if s, ok := r.(Separated); ok {
		return s.Separator()
	}
	return "\n\n"
}

// Join concatenates rendered blocks with sep, skipping blocks that rendered
// to nothing (blank lines).
func Join(rendered []string, sep string) string {
	var sb strings.Builder
	first := true
	for _, r := range rendered {
		if r == "" {
			continue
		}
		if !first {
			sb.WriteString(sep)
		}
		sb.WriteString(r)
		first = false
	}
	return sb.String()
}

// Raw passes markdown through untouched.
type Raw struct{}

func (Raw) RenderBlock(_ int, markdown string) (string, error) { return markdown, nil }

// Separator is empty: raw blocks carry their own blank lines.
func (Raw) Separator() string { return "" }

// Names of the built-in renderers.
const (
	NameGlamour  = "glamour"
	NameTerminal = "terminal"
	NameHTML     = "html"
	NamePlain    = "plain"
	NameRaw      = "raw"
)

// Names returns every renderer name accepted by New.
func Names() []string {
	return []string{NameGlamour, NameTerminal, NameHTML, NamePlain, NameRaw}
}

// Options configures New.
type Options struct {
	Width   int             // wrap width, 0 for no wrapping
	Style   string          // glamour style name, or "" to derive one from Theme
	Theme   *theme.Theme    // colours for glamour and terminal output
	Profile termenv.Profile // colour profile for the terminal renderer
}

// New builds the named renderer.
func New(name string, opts Options) (BlockRenderer, error) {
	th := opts.Theme
	if th == nil {
		th = theme.Dark()
	}
	switch name {
	case NameGlamour, "":
		return NewGlamour(opts.Width, opts.Style, th), nil
	case NameTerminal:
		return NewTerminal(NewStyled(th, opts.Width, opts.Profile)), nil
	case NameHTML:
		return NewHTML(), nil
	case NamePlain:
		return NewPlain(opts.Width), nil
	case NameRaw:
		return Raw{}, nil
	}
	return nil, fmt.Errorf("unknown renderer %q (valid: %s)", name, strings.Join(Names(), ", "))
}
