package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/samsaffron/streamdown/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=..."
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "streamdown",
	Short: "Render Markdown while it is still being written",
	Long: `streamdown renders a Markdown stream block by block. Blocks that can no
longer change are rendered once; the block still growing at the end has its
open emphasis, code spans and math closed so it renders correctly mid-stream.

Examples:
  some-llm-cli | streamdown render          # render a live stream
  streamdown render README.md --simulate    # replay a file as a stream
  streamdown view notes.md                  # scrollable streaming viewer
  streamdown blocks README.md --format json # show the block segmentation
  echo '**bold' | streamdown complete       # close open markers

  streamdown config                         # view configuration
  streamdown log show 1                     # inspect the last debug log`,
	Version:           Version,
	SilenceUsage:      true,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

var noColor bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads and validates the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openInput returns the named file, or stdin when no file (or "-") is given.
func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of f, or 0 when it is not a terminal.
func terminalWidth(f *os.File) int {
	if !isTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// colorProfile picks the colour profile for output written to f.
func colorProfile(f *os.File) termenv.Profile {
	if noColor || !isTerminal(f) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}
