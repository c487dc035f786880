package debuglog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/samsaffron/streamdown/internal/theme"
)

// FormatOptions controls how session output is formatted
type FormatOptions struct {
	NoColor       bool // Disable colors
	ShowTimestamp bool // Show timestamp for each frame
	ChangedOnly   bool // Skip frames that re-rendered nothing
}

type styles struct {
	Muted       lipgloss.Style
	Highlighted lipgloss.Style
	Bold        lipgloss.Style
	Success     lipgloss.Style
}

func newStyles(w io.Writer, noColor bool) *styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	th := theme.Dark()
	return &styles{
		Muted:       r.NewStyle().Foreground(th.Muted),
		Highlighted: r.NewStyle().Foreground(th.Primary).Bold(true),
		Bold:        r.NewStyle().Bold(true),
		Success:     r.NewStyle().Foreground(th.Secondary),
	}
}

// FormatSessionList formats a list of sessions as a table
func FormatSessionList(w io.Writer, sessions []SessionSummary, noColor bool) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No debug logs found.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Record one with: streamdown render --debug-log FILE")
		return
	}

	st := newStyles(w, noColor)
	for i, s := range sessions {
		timeStr := s.StartTime.Local().Format("Jan 02 15:04")
		fmt.Fprintf(w, "%2d. %s  %-32s  %s frames  %s renders\n",
			i+1,
			st.Muted.Render(timeStr),
			s.ID,
			formatNumber(s.Frames),
			formatNumber(s.Renders),
		)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.Muted.Render("Use `streamdown log show 1` to view a log"))
}

// FormatSession formats a full session for display
func FormatSession(w io.Writer, session *Session, opts FormatOptions) {
	st := newStyles(w, opts.NoColor)

	fmt.Fprintf(w, "%s %s\n", st.Highlighted.Render("Session:"), session.ID)

	// CLI invocation
	if session.Command != "" {
		cmdLine := session.Command
		if len(session.Args) > 0 {
			cmdLine += " " + strings.Join(session.Args, " ")
		}
		// Truncate if too long
		if len(cmdLine) > 120 {
			cmdLine = cmdLine[:117] + "..."
		}
		fmt.Fprintf(w, "%s %s\n", st.Muted.Render("Command:"), cmdLine)
	}
	if session.Cwd != "" {
		fmt.Fprintf(w, "%s %s\n", st.Muted.Render("Cwd:"), session.Cwd)
	}
	if !session.StartTime.IsZero() {
		fmt.Fprintf(w, "%s %s\n",
			st.Muted.Render("Started:"),
			session.StartTime.Local().Format("2006-01-02 15:04:05"),
		)
	}
	if !session.EndTime.IsZero() && session.EndTime.After(session.StartTime) {
		duration := session.EndTime.Sub(session.StartTime).Round(time.Millisecond)
		fmt.Fprintf(w, "%s %s\n", st.Muted.Render("Duration:"), duration)
	}
	fmt.Fprintf(w, "%s %s frames, %s renders, %s completed\n",
		st.Muted.Render("Frames:"),
		formatNumber(len(session.Frames)),
		formatNumber(session.Renders()),
		formatNumber(session.Completions()),
	)
	fmt.Fprintln(w, st.Muted.Render(strings.Repeat("─", 78)))

	for _, f := range session.Frames {
		if opts.ChangedOnly && len(f.Changed) == 0 {
			continue
		}
		ts := ""
		if opts.ShowTimestamp {
			ts = f.Timestamp.Local().Format("15:04:05.000") + " "
		}
		fmt.Fprintf(w, "%s%s\n", ts, frameLine(f.Seq, f.Frame, st))
	}
}

// frameLine renders one frame compactly, e.g.
// "#12 len=1,024 blocks=5 stable=4 changed=[4] closers=**".
func frameLine(seq int, f Frame, st *styles) string {
	var sb strings.Builder
	label := fmt.Sprintf("#%d", seq)
	if f.Final {
		label = st.Success.Render(label + " FINAL")
	} else {
		label = st.Bold.Render(label)
	}
	sb.WriteString(label)
	fmt.Fprintf(&sb, " len=%s blocks=%d stable=%d", formatNumber(f.BufferLen), f.Blocks, f.Stable)
	if len(f.Changed) > 0 {
		fmt.Fprintf(&sb, " changed=%v", f.Changed)
	}
	if f.Closers != "" {
		sb.WriteString(" ")
		sb.WriteString(st.Highlighted.Render("closers=" + f.Closers))
	}
	if f.OpenFence {
		sb.WriteString(" ")
		sb.WriteString(st.Muted.Render("open-fence"))
	}
	return sb.String()
}

// FormatTailEntry formats a single entry for tail mode (compact)
func FormatTailEntry(w io.Writer, line []byte, noColor bool) {
	var entry rawEntry
	if err := json.Unmarshal(line, &entry); err != nil {
		return
	}

	ts, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
	if err != nil {
		return
	}

	st := newStyles(w, noColor)
	timeStr := ts.Local().Format("15:04:05")

	switch entry.Type {
	case "session_start":
		fmt.Fprintf(w, "[%s] %s %s %s\n",
			timeStr,
			st.Highlighted.Render("START"),
			entry.Command,
			strings.Join(entry.Args, " "),
		)
	case "frame":
		fmt.Fprintf(w, "[%s] %s\n", timeStr, frameLine(entry.Seq, entry.Frame, st))
	}
}

// formatNumber formats a number with commas
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	s := fmt.Sprintf("%d", n)
	result := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}
