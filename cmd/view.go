package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samsaffron/streamdown/internal/streamdown"
	"github.com/samsaffron/streamdown/internal/theme"
	"github.com/samsaffron/streamdown/internal/tui/view"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	viewFlags     RenderFlags
	viewChunkSize int
	viewDelay     time.Duration
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Stream Markdown into a scrollable viewer",
	Long: `Open a full-screen viewer and stream Markdown into it word by word, the
way a model's answer arrives.

Keys:
  s          skip ahead, show everything received so far
  f          toggle following the end of the stream
  g / G      jump to top / bottom
  q, ctrl+c  quit

Examples:
  streamdown view README.md
  some-llm-cli "write a haiku" | streamdown view --delay 40ms`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	AddRenderFlags(viewCmd, &viewFlags)
	viewCmd.Flags().IntVar(&viewChunkSize, "chunk-size", 0, "Words per frame (default: config)")
	viewCmd.Flags().DurationVar(&viewDelay, "delay", 0, "Time between frames (default: config)")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdout) {
		return fmt.Errorf("view needs a terminal; use 'streamdown render' for pipes")
	}

	in, err := openInput(args)
	if err != nil {
		return err
	}
	defer in.Close()

	p, err := newPipeline(cmd, &viewFlags, os.Stdout)
	if err != nil {
		return err
	}
	defer p.Close()

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width, height = 80, 24
	}

	title := "stdin"
	if len(args) == 1 && args[0] != "-" {
		title = filepath.Base(args[0])
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	chunks, errc := readChunks(ctx, in)

	doc := streamdown.New(p.renderer, p.documentOptions()...)
	th := theme.FromConfig(p.cfg.Theme)
	m := view.New(title, doc, p.pacing(viewChunkSize, viewDelay), th, width, height, chunks, errc)

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	// Piped Markdown occupies stdin; read keys from the terminal instead
	if !isTerminal(os.Stdin) {
		opts = append(opts, tea.WithInputTTY())
	}
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return m.Err()
}
