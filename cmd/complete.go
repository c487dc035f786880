package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samsaffron/streamdown/internal/blocks"
	"github.com/samsaffron/streamdown/internal/clipboard"
	"github.com/samsaffron/streamdown/internal/incomplete"
	"github.com/samsaffron/streamdown/internal/streamdown"
	"github.com/spf13/cobra"
)

var (
	completeScan  bool
	completePaste bool
	completeAll   bool
)

var completeCmd = &cobra.Command{
	Use:   "complete [text]",
	Short: "Close the markers a partial Markdown text leaves open",
	Long: `Print Markdown with closing markers appended for the emphasis, code spans
and math the last block leaves open, the way a growing block is rendered
mid-stream. Code fences are never closed.

Examples:
  streamdown complete '**bold and *italic'
  echo 'Use ` + "`go vet" + `' | streamdown complete
  streamdown complete --paste --scan`,
	Args: cobra.MaximumNArgs(1),
	RunE: runComplete,
}

func init() {
	completeCmd.Flags().BoolVar(&completeScan, "scan", false, "List the open markers instead of completing")
	completeCmd.Flags().BoolVar(&completePaste, "paste", false, "Read the text from the clipboard")
	completeCmd.Flags().BoolVar(&completeAll, "all", false, "Complete every block, not just the last")
	rootCmd.AddCommand(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	text, err := completeInput(args)
	if err != nil {
		return err
	}
	if completeScan {
		return writeScan(os.Stdout, text)
	}
	out, err := completeText(text, completeAll)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(os.Stdout)
	}
	return nil
}

func completeInput(args []string) (string, error) {
	switch {
	case completePaste:
		return clipboard.ReadText()
	case len(args) == 1 && args[0] != "-":
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

// completeText treats text as the current state of a stream and returns it
// as the growing block would be rendered.
func completeText(text string, all bool) (string, error) {
	var opts []streamdown.Option
	if all {
		opts = append(opts, streamdown.WithCompleteAll())
	}
	return streamdown.New(nil, opts...).String(text)
}

// writeScan lists what the last block leaves open.
func writeScan(w io.Writer, text string) error {
	split := blocks.Split(text)
	if len(split) == 0 {
		fmt.Fprintln(w, "nothing open")
		return nil
	}
	last := split[len(split)-1]
	st := incomplete.Scan(last.Text)
	if len(st.Open) == 0 && st.Fence == nil {
		fmt.Fprintln(w, "nothing open")
		return nil
	}
	for _, m := range st.Open {
		fmt.Fprintf(w, "%-14s at %d: %q\n", m.Class, last.Offset+m.Offset, m.Closer())
	}
	if st.Fence != nil {
		info := ""
		if st.Fence.Info != "" {
			info = " " + st.Fence.Info
		}
		fmt.Fprintf(w, "%-14s at %d: %s%s (left open)\n", "fence", last.Offset+st.Fence.Offset, st.Fence.Marker, info)
	}
	fmt.Fprintf(w, "closers: %q\n", st.Closers())
	return nil
}
