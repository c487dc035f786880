// Package theme holds the colour palette used by the terminal renderers.
// A Theme is plain configuration: callers build one and pass it to the
// renderer that needs it.
package theme

import (
	"sort"

	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colours used to present markdown.
type Theme struct {
	Text       lipgloss.Color // body text
	Background lipgloss.Color // background (empty for terminal default)
	Primary    lipgloss.Color // strong text and accents
	Secondary  lipgloss.Color // headings and enumerations
	Muted      lipgloss.Color // rules, footers and other dimmed text

	Border         lipgloss.Color // table and code block borders
	CodeBackground lipgloss.Color // background behind code
	CodeText       lipgloss.Color // inline code and code blocks
	LinkText       lipgloss.Color // link labels
	QuoteBorder    lipgloss.Color // bar in front of block quotes
	QuoteText      lipgloss.Color // block quote text
	Emphasis       lipgloss.Color // italic text
}

// Dark returns the default dark theme (gruvbox).
func Dark() *Theme {
	return &Theme{
		Text:           lipgloss.Color("#ebdbb2"), // gruvbox foreground
		Background:     lipgloss.Color(""),
		Primary:        lipgloss.Color("#b8bb26"), // gruvbox green
		Secondary:      lipgloss.Color("#83a598"), // gruvbox aqua
		Muted:          lipgloss.Color("#928374"), // gruvbox gray
		Border:         lipgloss.Color("#83a598"),
		CodeBackground: lipgloss.Color("#3c3836"),
		CodeText:       lipgloss.Color("#fe8019"), // gruvbox orange
		LinkText:       lipgloss.Color("#83a598"),
		QuoteBorder:    lipgloss.Color("#928374"),
		QuoteText:      lipgloss.Color("#d5c4a1"),
		Emphasis:       lipgloss.Color("#fabd2f"), // gruvbox yellow
	}
}

// Light returns a theme for light terminal backgrounds.
func Light() *Theme {
	return &Theme{
		Text:           lipgloss.Color("#000000"),
		Background:     lipgloss.Color(""),
		Primary:        lipgloss.Color("#007AFF"),
		Secondary:      lipgloss.Color("#5856D6"),
		Muted:          lipgloss.Color("#6E6E73"),
		Border:         lipgloss.Color("#D1D1D6"),
		CodeBackground: lipgloss.Color("#F5F5F5"),
		CodeText:       lipgloss.Color("#FF3B30"),
		LinkText:       lipgloss.Color("#007AFF"),
		QuoteBorder:    lipgloss.Color("#D1D1D6"),
		QuoteText:      lipgloss.Color("#6E6E73"),
		Emphasis:       lipgloss.Color("#000000"),
	}
}

var presets = map[string]func() *Theme{
	"dark":    Dark,
	"gruvbox": Dark,
	"light":   Light,
}

// Preset returns the named built-in theme.
func Preset(name string) (*Theme, bool) {
	fn, ok := presets[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// PresetNames returns the names of the built-in themes, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config mirrors the theme section of the config file. Empty fields keep the
// colour of the base preset.
type Config struct {
	Preset         string `mapstructure:"preset" yaml:"preset,omitempty"`
	Text           string `mapstructure:"text" yaml:"text,omitempty"`
	Background     string `mapstructure:"background" yaml:"background,omitempty"`
	Primary        string `mapstructure:"primary" yaml:"primary,omitempty"`
	Secondary      string `mapstructure:"secondary" yaml:"secondary,omitempty"`
	Muted          string `mapstructure:"muted" yaml:"muted,omitempty"`
	Border         string `mapstructure:"border" yaml:"border,omitempty"`
	CodeBackground string `mapstructure:"code_background" yaml:"code_background,omitempty"`
	CodeText       string `mapstructure:"code_text" yaml:"code_text,omitempty"`
	LinkText       string `mapstructure:"link_text" yaml:"link_text,omitempty"`
	QuoteBorder    string `mapstructure:"quote_border" yaml:"quote_border,omitempty"`
	QuoteText      string `mapstructure:"quote_text" yaml:"quote_text,omitempty"`
	Emphasis       string `mapstructure:"emphasis" yaml:"emphasis,omitempty"`
}

// FromConfig creates a theme with config overrides applied on top of the
// configured preset, or the dark theme when the preset is unknown.
func FromConfig(cfg Config) *Theme {
	t, ok := Preset(cfg.Preset)
	if !ok {
		t = Dark()
	}

	override := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	override(&t.Text, cfg.Text)
	override(&t.Background, cfg.Background)
	override(&t.Primary, cfg.Primary)
	if cfg.Secondary != "" {
		t.Secondary = lipgloss.Color(cfg.Secondary)
		t.Border = lipgloss.Color(cfg.Secondary) // border follows secondary
	}
	override(&t.Muted, cfg.Muted)
	override(&t.Border, cfg.Border)
	override(&t.CodeBackground, cfg.CodeBackground)
	override(&t.CodeText, cfg.CodeText)
	override(&t.LinkText, cfg.LinkText)
	override(&t.QuoteBorder, cfg.QuoteBorder)
	override(&t.QuoteText, cfg.QuoteText)
	override(&t.Emphasis, cfg.Emphasis)
	return t
}

// GlamourStyle converts the theme into a glamour style. Document and code
// block margins are zero so separately rendered blocks line up.
func (t *Theme) GlamourStyle() ansi.StyleConfig {
	text := string(t.Text)
	primary := string(t.Primary)
	secondary := string(t.Secondary)
	muted := string(t.Muted)
	code := string(t.CodeText)
	link := string(t.LinkText)
	quote := string(t.QuoteText)
	emph := string(t.Emphasis)

	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: &text,
			},
			Margin: uintPtr(0),
		},
		BlockQuote: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color:  &quote,
				Italic: boolPtr(true),
			},
			Indent:      uintPtr(1),
			IndentToken: stringPtr("│ "),
		},
		List: ansi.StyleList{
			LevelIndent: 2,
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{
					Color: &text,
				},
			},
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: &secondary,
				Bold:  boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "# "}},
		H2: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "## "}},
		H3: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "### "}},
		H4: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "#### "}},
		H5: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "##### "}},
		H6: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "###### "}},
		Strikethrough: ansi.StylePrimitive{
			CrossedOut: boolPtr(true),
		},
		Emph: ansi.StylePrimitive{
			Color:  &emph,
			Italic: boolPtr(true),
		},
		Strong: ansi.StylePrimitive{
			Bold:  boolPtr(true),
			Color: &primary,
		},
		HorizontalRule: ansi.StylePrimitive{
			Color:  &muted,
			Format: "--------",
		},
		Item: ansi.StylePrimitive{
			BlockPrefix: "• ",
		},
		Enumeration: ansi.StylePrimitive{
			BlockPrefix: ". ",
			Color:       &secondary,
		},
		Task: ansi.StyleTask{
			Ticked:   "[✓] ",
			Unticked: "[ ] ",
		},
		Link: ansi.StylePrimitive{
			Color:     &secondary,
			Underline: boolPtr(true),
		},
		LinkText: ansi.StylePrimitive{
			Color: &link,
		},
		Image: ansi.StylePrimitive{
			Color:     &secondary,
			Underline: boolPtr(true),
		},
		ImageText: ansi.StylePrimitive{
			Color:  &muted,
			Format: "Image: {{.text}} →",
		},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: &code,
			},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{
					Color: &code,
				},
				Margin: uintPtr(0),
			},
		},
		Table: ansi.StyleTable{
			CenterSeparator: stringPtr("┼"),
			ColumnSeparator: stringPtr("│"),
			RowSeparator:    stringPtr("─"),
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func uintPtr(u uint) *uint {
	return &u
}

func stringPtr(s string) *string {
	return &s
}
