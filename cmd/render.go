package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/samsaffron/streamdown/internal/clipboard"
	"github.com/samsaffron/streamdown/internal/render"
	"github.com/samsaffron/streamdown/internal/signal"
	"github.com/samsaffron/streamdown/internal/streamdown"
	"github.com/samsaffron/streamdown/internal/ui/streaming"
	"github.com/spf13/cobra"
)

var (
	renderFlags     RenderFlags
	renderSimulate  bool
	renderChunkSize int
	renderDelay     time.Duration
	renderCopy      bool
	renderNoPartial bool
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a Markdown stream as it arrives",
	Long: `Read Markdown from a file or stdin and render it block by block while it
arrives. On a terminal the block still being written is shown too, with its
open markers closed, and redrawn in place as it grows.

Examples:
  some-llm-cli "explain goroutines" | streamdown render
  streamdown render notes.md --simulate --delay 30ms
  streamdown render notes.md -r html > notes.html
  cat draft.md | streamdown render --no-complete`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	AddRenderFlags(renderCmd, &renderFlags)
	renderCmd.Flags().BoolVar(&renderSimulate, "simulate", false, "Replay the input word by word as if it were streaming")
	renderCmd.Flags().IntVar(&renderChunkSize, "chunk-size", 0, "Words per frame when simulating (default: config)")
	renderCmd.Flags().DurationVar(&renderDelay, "delay", 0, "Time between frames when simulating (default: config)")
	renderCmd.Flags().BoolVar(&renderCopy, "copy", false, "Copy the result to the clipboard when done")
	renderCmd.Flags().BoolVar(&renderNoPartial, "no-partial", false, "Only print blocks once they are complete")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	in, err := openInput(args)
	if err != nil {
		return err
	}
	defer in.Close()

	p, err := newPipeline(cmd, &renderFlags, os.Stdout)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(cmd.Context())
	defer stop()

	opts := p.streamOptions()
	partial := !renderNoPartial && isTerminal(os.Stdout)
	if partial {
		opts = append(opts, streaming.WithPartialRendering(), streaming.WithTerminalWidth(terminalWidth(os.Stdout)))
	}
	sr := &syncRenderer{sr: streaming.NewRenderer(os.Stdout, p.renderer, opts...), out: os.Stdout}

	if partial && p.followsTerminal() {
		signal.WatchResize(ctx, func() int { return terminalWidth(os.Stdout) }, func(width int) {
			// A failed redraw leaves the old frame up; the next write repairs it
			_ = sr.Resize(width)
		})
	}

	chunks, errc := readChunks(ctx, in)
	if renderSimulate {
		err = pumpSmooth(ctx, chunks, errc, sr, p.pacing(renderChunkSize, renderDelay))
	} else {
		err = pumpDirect(ctx, chunks, errc, sr)
	}
	// Interrupted: show what arrived and exit quietly
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if closeErr := sr.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	if renderCopy {
		return copyResult(sr.sr.Markdown(), p)
	}
	return nil
}

// copyResult puts the finished stream on the clipboard: rendered HTML for the
// html renderer, the Markdown itself otherwise.
func copyResult(markdown string, p *pipeline) error {
	if p.cfg.Renderer != render.NameHTML {
		return clipboard.CopyText(markdown)
	}
	doc := streamdown.New(p.renderer)
	rendered, err := doc.Finish(markdown)
	if err != nil {
		return err
	}
	if err := clipboard.CopyHTML(render.Join(rendered, doc.Separator())); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}
