package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// View renders the viewport and the status footer.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m *Model) footer() string {
	var status string
	switch {
	case m.err != nil:
		status = m.styles.err.Render("error: " + m.err.Error())
	case m.streaming:
		status = m.spinner.View() + " streaming"
	default:
		status = "done"
	}

	parts := []string{status, fmt.Sprintf("%d blocks", m.blocks)}
	if !m.follow {
		parts = append(parts, "follow off")
	}
	parts = append(parts, fmt.Sprintf("%3.0f%%", m.viewport.ScrollPercent()*100))

	left := m.styles.title.Render(m.title)
	right := m.styles.footer.Render(strings.Join(parts, " · "))
	gap := m.width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
