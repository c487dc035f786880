package theme

import (
	"reflect"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		check func(t *testing.T, th *Theme)
	}{
		{
			name: "empty config is the dark theme",
			cfg:  Config{},
			check: func(t *testing.T, th *Theme) {
				if !reflect.DeepEqual(th, Dark()) {
					t.Errorf("got %+v, want Dark()", th)
				}
			},
		},
		{
			name: "light preset",
			cfg:  Config{Preset: "light"},
			check: func(t *testing.T, th *Theme) {
				if th.Text != lipgloss.Color("#000000") {
					t.Errorf("Text = %q", th.Text)
				}
			},
		},
		{
			name: "unknown preset falls back to dark",
			cfg:  Config{Preset: "neon"},
			check: func(t *testing.T, th *Theme) {
				if th.Primary != Dark().Primary {
					t.Errorf("Primary = %q", th.Primary)
				}
			},
		},
		{
			name: "overrides win over preset",
			cfg:  Config{Preset: "light", CodeText: "#123456", Muted: "8"},
			check: func(t *testing.T, th *Theme) {
				if th.CodeText != "#123456" || th.Muted != "8" {
					t.Errorf("CodeText = %q, Muted = %q", th.CodeText, th.Muted)
				}
			},
		},
		{
			name: "border follows secondary",
			cfg:  Config{Secondary: "#abcdef"},
			check: func(t *testing.T, th *Theme) {
				if th.Border != "#abcdef" {
					t.Errorf("Border = %q", th.Border)
				}
			},
		},
		{
			name: "explicit border beats secondary",
			cfg:  Config{Secondary: "#abcdef", Border: "#111111"},
			check: func(t *testing.T, th *Theme) {
				if th.Border != "#111111" {
					t.Errorf("Border = %q", th.Border)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, FromConfig(tt.cfg))
		})
	}
}

func TestPresetNames(t *testing.T) {
	want := []string{"dark", "gruvbox", "light"}
	if got := PresetNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("PresetNames() = %v, want %v", got, want)
	}
}

func TestGlamourStyleUsesThemeColours(t *testing.T) {
	th := Dark()
	style := th.GlamourStyle()
	if style.Strong.Color == nil || *style.Strong.Color != string(th.Primary) {
		t.Errorf("Strong colour = %v, want %q", style.Strong.Color, th.Primary)
	}
	if style.Document.Margin == nil || *style.Document.Margin != 0 {
		t.Error("document margin should be zero")
	}
	if style.CodeBlock.Margin == nil || *style.CodeBlock.Margin != 0 {
		t.Error("code block margin should be zero")
	}
}
