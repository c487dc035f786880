package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/samsaffron/streamdown/internal/config"
	"github.com/samsaffron/streamdown/internal/debuglog"
	"github.com/samsaffron/streamdown/internal/render"
	"github.com/samsaffron/streamdown/internal/streamdown"
	"github.com/samsaffron/streamdown/internal/ui"
	"github.com/samsaffron/streamdown/internal/ui/streaming"
	"github.com/spf13/cobra"
)

// readBufferSize is how much input is read per chunk. Pipes usually deliver
// less, so chunks follow the writer's pace.
const readBufferSize = 4096

// pipeline is what a rendering command builds from config and flags.
type pipeline struct {
	cfg      *config.Config
	renderer render.BlockRenderer
	width    int // wrap width handed to the renderer
	logger   *debuglog.Logger
}

func newPipeline(cmd *cobra.Command, f *RenderFlags, out *os.File) (*pipeline, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.ApplyOverrides(f.Renderer, f.Width)
	if f.NoComplete {
		cfg.ParseIncomplete = false
	}
	if f.CompleteAll {
		cfg.CompleteAll = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	width := cfg.Width
	if width == 0 {
		width = terminalWidth(out)
	}
	opts := cfg.RenderOptions()
	opts.Width = width
	opts.Profile = colorProfile(out)

	r, err := render.New(cfg.Renderer, opts)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		cfg:      cfg,
		renderer: render.WithCache(r, render.NewCache(0)),
		width:    width,
	}

	if f.DebugLog || cfg.DebugLog.Enabled {
		dir := cfg.DebugLogDir()
		if cfg.DebugLog.MaxAgeDays > 0 {
			// Best effort; a stale log never stops a render
			_ = debuglog.CleanupOldLogs(dir, time.Duration(cfg.DebugLog.MaxAgeDays)*24*time.Hour)
		}
		logger, err := debuglog.NewSessionLogger(dir)
		if err != nil {
			return nil, fmt.Errorf("debug log: %w", err)
		}
		cwd, _ := os.Getwd()
		logger.LogSessionStart(cmd.CommandPath(), os.Args[1:], cwd)
		p.logger = logger
	}
	return p, nil
}

// followsTerminal reports whether the wrap width tracks the terminal size.
func (p *pipeline) followsTerminal() bool {
	return p.cfg.Width == 0
}

func (p *pipeline) documentOptions() []streamdown.Option {
	var opts []streamdown.Option
	if !p.cfg.ParseIncomplete {
		opts = append(opts, streamdown.WithoutCompletion())
	}
	if p.cfg.CompleteAll {
		opts = append(opts, streamdown.WithCompleteAll())
	}
	if p.logger != nil {
		opts = append(opts, streamdown.WithLogger(p.logger))
	}
	return opts
}

func (p *pipeline) streamOptions() []streaming.StreamRendererOption {
	var opts []streaming.StreamRendererOption
	if !p.cfg.ParseIncomplete {
		opts = append(opts, streaming.WithoutCompletion())
	}
	if p.cfg.CompleteAll {
		opts = append(opts, streaming.WithCompleteAll())
	}
	if p.logger != nil {
		opts = append(opts, streaming.WithDebugLogger(p.logger))
	}
	return opts
}

// pacing returns the simulated stream pacing, with flag values winning over
// the config when set.
func (p *pipeline) pacing(chunkSize int, delay time.Duration) ui.Pacing {
	if chunkSize <= 0 {
		chunkSize = p.cfg.Simulate.ChunkSize
	}
	if delay <= 0 {
		delay = p.cfg.Simulate.Delay
	}
	return ui.Pacing{Interval: delay, MinWords: chunkSize, MaxWords: chunkSize}
}

func (p *pipeline) Close() error {
	return p.logger.Close()
}

// readChunks reads r in the background and delivers what arrives as it
// arrives. The chunk channel is closed at EOF or on the first error, which
// is sent on the error channel first.
func readChunks(ctx context.Context, r io.Reader) (<-chan string, <-chan error) {
	chunks := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(chunks)
		buf := make([]byte, readBufferSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				select {
				case chunks <- string(buf[:n]):
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					errc <- err
				}
				return
			}
		}
	}()
	return chunks, errc
}

// pumpDirect writes chunks to w as they arrive.
func pumpDirect(ctx context.Context, chunks <-chan string, errc <-chan error, w io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-chunks:
			if !ok {
				return readErr(errc)
			}
			if _, err := io.WriteString(w, chunk); err != nil {
				return err
			}
		}
	}
}

// pumpSmooth writes chunks to w through a SmoothBuffer, releasing a few
// words per frame.
func pumpSmooth(ctx context.Context, chunks <-chan string, errc <-chan error, w io.Writer, pacing ui.Pacing) error {
	buf := ui.NewSmoothBuffer(pacing)
	go func() {
		for chunk := range chunks {
			buf.Write(chunk)
		}
		buf.MarkDone()
	}()
	err := buf.Pump(ctx, func(words string) error {
		_, err := io.WriteString(w, words)
		return err
	})
	if err != nil {
		return err
	}
	return readErr(errc)
}

func readErr(errc <-chan error) error {
	select {
	case err := <-errc:
		return fmt.Errorf("read input: %w", err)
	default:
		return nil
	}
}

// syncRenderer serializes access to a StreamRenderer shared between the
// input pump and the resize watcher.
type syncRenderer struct {
	mu  sync.Mutex
	sr  *streaming.StreamRenderer
	out io.Writer
}

func (s *syncRenderer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sr.Write(p)
}

func (s *syncRenderer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sr.Close()
}

// Resize clears the screen and redraws everything at the new width.
func (s *syncRenderer) Resize(width int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.out, ansi.EraseDisplay(2)+ansi.CursorHomePosition); err != nil {
		return err
	}
	return s.sr.Resize(width)
}
