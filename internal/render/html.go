package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// HTML renders blocks to HTML fragments with goldmark.
type HTML struct {
	md goldmark.Markdown
}

// NewHTML creates an HTML renderer with GitHub flavoured markdown enabled.
func NewHTML() *HTML {
	return &HTML{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

func (h *HTML) RenderBlock(index int, markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render block %d: %w", index, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Separator puts each block's HTML on its own line.
func (h *HTML) Separator() string { return "\n" }
