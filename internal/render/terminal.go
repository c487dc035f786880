package render

import (
	"fmt"
	"strings"

	"github.com/samsaffron/streamdown/internal/incomplete"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Alignment is the alignment of a table column.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Presenter is the set of capabilities a terminal presentation provides.
// Inline methods receive already presented inner text; block methods receive
// already presented content and return the finished block.
type Presenter interface {
	Heading(level int, text string) string
	Paragraph(text string) string
	Strong(text string) string
	Emphasis(text string) string
	Strikethrough(text string) string
	Link(text, url string) string
	Image(alt, url string) string
	CodeSpan(code string) string
	// CodeBlock presents code. open is set while the closing fence has not
	// arrived yet.
	CodeBlock(code, language string, open bool) string
	Blockquote(body string) string
	List(items []string) string
	ListItem(marker, body string) string
	ThematicBreak() string
	Table(header []string, rows [][]string, align []Alignment) string
	Text(text string) string
}

// Terminal renders blocks by walking goldmark's syntax tree and handing each
// node to a Presenter.
type Terminal struct {
	p  Presenter
	md goldmark.Markdown
}

// NewTerminal creates a terminal renderer for p.
func NewTerminal(p Presenter) *Terminal {
	return &Terminal{
		p:  p,
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Resize forwards a new width to the presenter when it wraps text.
func (t *Terminal) Resize(width int) {
	if r, ok := t.p.(Resizer); ok {
		r.Resize(width)
	}
}

func (t *Terminal) RenderBlock(index int, markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	// goldmark has no display math; present it as a code block.
	if trimmed := strings.TrimSpace(markdown); isMathBlock(trimmed) {
		tex, open := mathBody(trimmed)
		return t.p.CodeBlock(tex, "math", open), nil
	}

	src := []byte(markdown)
	doc := t.md.Parser().Parse(text.NewReader(src))
	w := walker{p: t.p, src: src}
	if incomplete.Scan(markdown).Fence != nil {
		w.openFence = lastFence(doc)
	}

	out, err := w.blocks(doc)
	if err != nil {
		return "", fmt.Errorf("render block %d: %w", index, err)
	}
	return out, nil
}

func isMathBlock(trimmed string) bool {
	if !strings.HasPrefix(trimmed, "$$") {
		return false
	}
	return strings.HasSuffix(trimmed, "$$") || strings.Count(trimmed, "$$")%2 == 1
}

// mathBody strips the $$ delimiters from a display math block.
func mathBody(block string) (string, bool) {
	body := strings.TrimPrefix(block, "$$")
	end := strings.LastIndex(body, "$$")
	if end < 0 {
		return strings.TrimSpace(body), true
	}
	return strings.TrimSpace(body[:end]), false
}

type walker struct {
	p         Presenter
	src       []byte
	openFence ast.Node // fenced code block still waiting for its closing fence
}

// lastFence returns the last fenced code block in document order. An open
// fence runs to the end of the text, so it is always the last one.
func lastFence(doc ast.Node) ast.Node {
	var last ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if _, ok := n.(*ast.FencedCodeBlock); ok && entering {
			last = n
		}
		return ast.WalkContinue, nil
	})
	return last
}

// blocks presents the block children of n separated by blank lines.
func (w *walker) blocks(n ast.Node) (string, error) {
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		s, err := w.block(c)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func (w *walker) block(n ast.Node) (string, error) {
	switch n := n.(type) {
	case *ast.Heading:
		return w.p.Heading(n.Level, w.inlines(n)), nil

	case *ast.Paragraph:
		return w.p.Paragraph(w.inlines(n)), nil

	case *ast.TextBlock:
		return w.p.Paragraph(w.inlines(n)), nil

	case *ast.FencedCodeBlock:
		lang := string(n.Language(w.src))
		return w.p.CodeBlock(w.lines(n), lang, ast.Node(n) == w.openFence), nil

	case *ast.CodeBlock:
		return w.p.CodeBlock(w.lines(n), "", false), nil

	case *ast.Blockquote:
		body, err := w.blocks(n)
		if err != nil {
			return "", err
		}
		return w.p.Blockquote(body), nil

	case *ast.List:
		return w.list(n)

	case *ast.ThematicBreak:
		return w.p.ThematicBreak(), nil

	case *ast.HTMLBlock:
		return w.p.Text(strings.TrimRight(w.lines(n), "\n")), nil

	case *east.Table:
		return w.table(n), nil
	}

	// Unknown block: fall back to its text.
	return w.p.Text(plainText(n, w.src)), nil
}

func (w *walker) list(n *ast.List) (string, error) {
	items := make([]string, 0, n.ChildCount())
	number := n.Start
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		marker := "•"
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d.", number)
			number++
		}

		var parts []string
		for b := c.FirstChild(); b != nil; b = b.NextSibling() {
			s, err := w.block(b)
			if err != nil {
				return "", err
			}
			if s != "" {
				parts = append(parts, s)
			}
		}
		sep := "\n"
		if !n.IsTight {
			sep = "\n\n"
		}
		items = append(items, w.p.ListItem(marker, strings.Join(parts, sep)))
	}
	return w.p.List(items), nil
}

func (w *walker) table(n *east.Table) string {
	var header []string
	var rows [][]string
	align := make([]Alignment, len(n.Alignments))
	for i, a := range n.Alignments {
		switch a {
		case east.AlignLeft:
			align[i] = AlignLeft
		case east.AlignCenter:
			align[i] = AlignCenter
		case east.AlignRight:
			align[i] = AlignRight
		}
	}

	for r := n.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, plainText(c, w.src))
		}
		if _, ok := r.(*east.TableHeader); ok {
			header = cells
		} else {
			rows = append(rows, cells)
		}
	}
	return w.p.Table(header, rows, align)
}

// inlines presents the inline children of n.
func (w *walker) inlines(n ast.Node) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		sb.WriteString(w.inline(c))
	}
	return sb.String()
}

func (w *walker) inline(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Text:
		s := w.p.Text(string(n.Segment.Value(w.src)))
		switch {
		case n.HardLineBreak():
			s += "\n"
		case n.SoftLineBreak():
			s += " "
		}
		return s

	case *ast.String:
		return w.p.Text(string(n.Value))

	case *ast.Emphasis:
		if n.Level >= 2 {
			return w.p.Strong(w.inlines(n))
		}
		return w.p.Emphasis(w.inlines(n))

	case *east.Strikethrough:
		return w.p.Strikethrough(w.inlines(n))

	case *ast.CodeSpan:
		return w.p.CodeSpan(plainText(n, w.src))

	case *ast.Link:
		return w.p.Link(w.inlines(n), string(n.Destination))

	case *ast.AutoLink:
		url := string(n.URL(w.src))
		return w.p.Link(string(n.Label(w.src)), url)

	case *ast.Image:
		return w.p.Image(plainText(n, w.src), string(n.Destination))

	case *east.TaskCheckBox:
		if n.IsChecked {
			return "[✓] "
		}
		return "[ ] "

	case *ast.RawHTML:
		var sb strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(w.src))
		}
		return w.p.Text(sb.String())
	}
	return w.inlines(n)
}

// lines returns the raw lines of a code or HTML block.
func (w *walker) lines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(w.src))
	}
	return sb.String()
}

// plainText collects the text under n without any presentation.
func plainText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			sb.Write(c.Segment.Value(src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
