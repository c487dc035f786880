package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestNew(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			r, err := New(name, Options{Width: 40, Style: "notty"})
			if err != nil {
				t.Fatalf("New(%q) error: %v", name, err)
			}
			out, err := r.RenderBlock(0, "Hello **world**\n")
			if err != nil {
				t.Fatalf("RenderBlock error: %v", err)
			}
			if !strings.Contains(ansi.Strip(out), "world") {
				t.Errorf("output %q does not contain the text", out)
			}
		})
	}

	if _, err := New("pdf", Options{}); err == nil {
		t.Error("expected error for unknown renderer")
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name     string
		rendered []string
		sep      string
		want     string
	}{
		{"empty", nil, "\n\n", ""},
		{"skips blank blocks", []string{"a", "", "b"}, "\n\n", "a\n\nb"},
		{"leading blank", []string{"", "a"}, "\n", "a"},
		{"raw", []string{"a\n\n", "b"}, "", "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Join(tt.rendered, tt.sep); got != tt.want {
				t.Errorf("Join() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeparatorFor(t *testing.T) {
	if got := SeparatorFor(Raw{}); got != "" {
		t.Errorf("Raw separator = %q", got)
	}
	if got := SeparatorFor(NewHTML()); got != "\n" {
		t.Errorf("HTML separator = %q", got)
	}
	if got := SeparatorFor(NewPlain(0)); got != "\n\n" {
		t.Errorf("Plain separator = %q", got)
	}
}

func TestFunc(t *testing.T) {
	boom := errors.New("boom")
	f := Func(func(index int, markdown string) (string, error) {
		if index > 0 {
			return "", boom
		}
		return strings.ToUpper(markdown), nil
	})
	if out, _ := f.RenderBlock(0, "abc"); out != "ABC" {
		t.Errorf("RenderBlock = %q", out)
	}
	if _, err := f.RenderBlock(1, "abc"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestHTML(t *testing.T) {
	h := NewHTML()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"blank", "\n\n", ""},
		{"strong", "**bold**\n\n", "<p><strong>bold</strong></p>"},
		{"strikethrough", "~~old~~", "<p><del>old</del></p>"},
		{"heading", "## Two", "<h2>Two</h2>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.RenderBlock(0, tt.in)
			if err != nil {
				t.Fatalf("RenderBlock error: %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderBlock(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	got, _ := h.RenderBlock(0, "| a |\n|---|\n| 1 |\n")
	if !strings.Contains(got, "<table>") {
		t.Errorf("table not rendered: %q", got)
	}
}

func TestGlamour(t *testing.T) {
	g := NewGlamour(40, "notty", nil)

	out, err := g.RenderBlock(0, "# Hello\n")
	if err != nil {
		t.Fatalf("RenderBlock error: %v", err)
	}
	if !strings.Contains(ansi.Strip(out), "Hello") {
		t.Errorf("output %q missing heading text", out)
	}
	if out != strings.Trim(out, "\n") {
		t.Errorf("output %q has surrounding blank lines", out)
	}

	if out, _ := g.RenderBlock(1, "  \n"); out != "" {
		t.Errorf("blank block rendered as %q", out)
	}

	g.Resize(60)
	if _, err := g.RenderBlock(2, "text"); err != nil {
		t.Fatalf("RenderBlock after resize: %v", err)
	}
	count := 0
	g.renderers.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count != 2 {
		t.Errorf("cached %d renderers, want 2", count)
	}
}

func TestGlamourThemeStyle(t *testing.T) {
	g := NewGlamour(0, "", nil)
	out, err := g.RenderBlock(0, "- one\n- two\n")
	if err != nil {
		t.Fatalf("RenderBlock error: %v", err)
	}
	plain := ansi.Strip(out)
	if !strings.Contains(plain, "one") || !strings.Contains(plain, "two") {
		t.Errorf("list items missing from %q", plain)
	}
}

func TestTrimBlankLines(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"\n  \n", ""},
		{"\n  Hello   \n\n", "  Hello"},
		{"\x1b[0m  \x1b[0m\n  a\n\n  b\n", "  a\n\n  b"},
	}
	for _, tt := range tests {
		if got := trimBlankLines(tt.in); got != tt.want {
			t.Errorf("trimBlankLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
