package view

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samsaffron/streamdown/internal/render"
	"github.com/samsaffron/streamdown/internal/ui"
)

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-footerHeight, 1)
		m.doc.Resize(msg.Width)
		m.refresh()
		return m, nil

	case chunkMsg:
		m.buffer.Write(string(msg))
		return m, tea.Batch(m.listen(), m.startTicking())

	case inputDoneMsg:
		if msg.err != nil && m.err == nil {
			m.err = msg.err
		}
		m.buffer.MarkDone()
		return m, m.startTicking()

	case ui.SmoothTickMsg:
		m.ticking = false
		if words := m.buffer.NextWords(); words != "" {
			m.markdown += words
			m.refresh()
		}
		if m.buffer.IsDrained() {
			m.finish()
			return m, nil
		}
		if m.buffer.IsEmpty() {
			// Wait for the next chunk to restart ticking
			return m, nil
		}
		return m, m.startTicking()

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "s":
		// Skip the pacing and show everything received so far
		if rest := m.buffer.FlushAll(); rest != "" {
			m.markdown += rest
			m.refresh()
		}
		if m.buffer.IsDrained() {
			m.finish()
		}
		return m, nil

	case "f":
		m.follow = !m.follow
		if m.follow {
			m.viewport.GotoBottom()
		}
		return m, nil

	case "g", "home":
		m.follow = false
		m.viewport.GotoTop()
		return m, nil

	case "G", "end":
		m.follow = true
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	if !m.viewport.AtBottom() {
		m.follow = false
	}
	return m, cmd
}

// refresh renders the text released so far as a stream in progress.
func (m *Model) refresh() {
	var rendered []string
	var err error
	if m.streaming {
		rendered, err = m.doc.Render(m.markdown)
	} else {
		rendered, err = m.doc.Finish(m.markdown)
	}
	if err != nil {
		m.err = err
		return
	}
	m.show(rendered)
}

// finish renders the final state, with markers the author left open kept
// open.
func (m *Model) finish() {
	if !m.streaming {
		return
	}
	m.streaming = false
	m.refresh()
}

func (m *Model) show(rendered []string) {
	m.blocks = len(rendered)
	m.rendered = render.Join(rendered, m.doc.Separator())
	m.viewport.SetContent(m.rendered)
	if m.follow {
		m.viewport.GotoBottom()
	}
}
