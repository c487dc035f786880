// Package view is a full-screen viewer that renders a Markdown stream as it
// arrives, releasing it word by word and keeping the view pinned to the
// bottom while the user has not scrolled away.
package view

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samsaffron/streamdown/internal/render"
	"github.com/samsaffron/streamdown/internal/streamdown"
	"github.com/samsaffron/streamdown/internal/theme"
	"github.com/samsaffron/streamdown/internal/ui"
)

// footerHeight is the number of rows below the viewport.
const footerHeight = 1

// Model is the bubbletea model of the viewer.
type Model struct {
	width  int
	height int

	doc      *streamdown.Document
	buffer   *ui.SmoothBuffer
	markdown string // text released by the buffer so far
	rendered string // what the viewport shows
	blocks   int

	chunks <-chan string // input as it is read
	errc   <-chan error

	spinner  spinner.Model
	viewport viewport.Model
	styles   styles

	streaming bool // input still arriving or buffered
	ticking   bool // a smooth tick is scheduled
	follow    bool // keep the view scrolled to the bottom
	title     string
	err       error
	quitting  bool
}

type styles struct {
	footer lipgloss.Style
	title  lipgloss.Style
	err    lipgloss.Style
	spin   lipgloss.Style
}

func newStyles(th *theme.Theme) styles {
	return styles{
		footer: lipgloss.NewStyle().Foreground(th.Muted),
		title:  lipgloss.NewStyle().Foreground(th.Secondary).Bold(true),
		err:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		spin:   lipgloss.NewStyle().Foreground(th.Primary),
	}
}

// New creates a viewer that reads chunks until the channel is closed. An
// error on errc is shown in the footer once input ends.
func New(title string, doc *streamdown.Document, pacing ui.Pacing, th *theme.Theme, width, height int, chunks <-chan string, errc <-chan error) *Model {
	if th == nil {
		th = theme.Dark()
	}
	st := newStyles(th)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = st.spin

	vp := viewport.New(width, max(height-footerHeight, 1))
	vp.Style = lipgloss.NewStyle()

	if doc == nil {
		doc = streamdown.New(render.Raw{})
	}

	return &Model{
		width:     width,
		height:    height,
		doc:       doc,
		buffer:    ui.NewSmoothBuffer(pacing),
		chunks:    chunks,
		errc:      errc,
		spinner:   s,
		viewport:  vp,
		styles:    st,
		streaming: true,
		follow:    true,
		title:     title,
	}
}

// Init starts reading input.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.listen(),
	)
}

// Markdown returns the text shown so far.
func (m *Model) Markdown() string {
	return m.markdown
}

// Err returns the input or render error, if any.
func (m *Model) Err() error {
	return m.err
}

// chunkMsg carries a piece of input.
type chunkMsg string

// inputDoneMsg is sent when the input channel closes.
type inputDoneMsg struct {
	err error
}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		if m.chunks == nil {
			return inputDoneMsg{}
		}
		chunk, ok := <-m.chunks
		if !ok {
			var err error
			select {
			case err = <-m.errc:
			default:
			}
			return inputDoneMsg{err: err}
		}
		return chunkMsg(chunk)
	}
}

// startTicking schedules a smooth tick unless one is pending.
func (m *Model) startTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return m.buffer.Tick()
}
