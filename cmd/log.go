package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samsaffron/streamdown/internal/config"
	"github.com/samsaffron/streamdown/internal/debuglog"
	"github.com/samsaffron/streamdown/internal/signal"
	"github.com/spf13/cobra"
)

var (
	logShowTimestamps bool
	logChangedOnly    bool
	logTailInterval   time.Duration
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Inspect stream debug logs",
	Long: `List, show or follow the debug logs written by 'render --debug-log' and
'view --debug-log'. Each log records every update of a stream: its length,
the blocks, how many were stable, which changed and which closers were
appended.

Examples:
  streamdown log                  # list logs, most recent first
  streamdown log show 1           # show the most recent log
  streamdown log show --changed   # only frames that re-rendered something
  streamdown log tail             # follow the most recent log`,
	RunE: logList,
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List debug logs",
	Args:  cobra.NoArgs,
	RunE:  logList,
}

var logShowCmd = &cobra.Command{
	Use:   "show [number|id]",
	Short: "Show a debug log",
	Args:  cobra.MaximumNArgs(1),
	RunE:  logShow,
}

var logTailCmd = &cobra.Command{
	Use:   "tail [number|id]",
	Short: "Follow a debug log as it is written",
	Args:  cobra.MaximumNArgs(1),
	RunE:  logTail,
}

func init() {
	logShowCmd.Flags().BoolVarP(&logShowTimestamps, "timestamps", "t", false, "Show a timestamp for every frame")
	logShowCmd.Flags().BoolVar(&logChangedOnly, "changed", false, "Skip frames that re-rendered nothing")
	logTailCmd.Flags().DurationVar(&logTailInterval, "interval", 250*time.Millisecond, "How often to check for new entries")
	logCmd.AddCommand(logListCmd)
	logCmd.AddCommand(logShowCmd)
	logCmd.AddCommand(logTailCmd)
	rootCmd.AddCommand(logCmd)
}

func logDir() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.DebugLogDir(), nil
}

// resolveLog finds the log named by args, the most recent one by default.
func resolveLog(args []string) (*debuglog.SessionSummary, error) {
	dir, err := logDir()
	if err != nil {
		return nil, err
	}
	id := "1"
	if len(args) == 1 {
		id = args[0]
	}
	s, err := debuglog.ResolveSession(dir, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("no debug log %q in %s", id, dir)
	}
	return s, nil
}

func logList(cmd *cobra.Command, args []string) error {
	dir, err := logDir()
	if err != nil {
		return err
	}
	sessions, err := debuglog.ListSessions(dir)
	if err != nil {
		return err
	}
	debuglog.FormatSessionList(cmd.OutOrStdout(), sessions, noColor)
	return nil
}

func logShow(cmd *cobra.Command, args []string) error {
	summary, err := resolveLog(args)
	if err != nil {
		return err
	}
	session, err := debuglog.ParseSession(summary.FilePath)
	if err != nil {
		return err
	}
	debuglog.FormatSession(cmd.OutOrStdout(), session, debuglog.FormatOptions{
		NoColor:       noColor,
		ShowTimestamp: logShowTimestamps,
		ChangedOnly:   logChangedOnly,
	})
	return nil
}

func logTail(cmd *cobra.Command, args []string) error {
	summary, err := resolveLog(args)
	if err != nil {
		return err
	}
	f, err := os.Open(summary.FilePath)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(cmd.Context())
	defer stop()

	err = followLines(ctx, f, logTailInterval, func(line []byte) {
		debuglog.FormatTailEntry(cmd.OutOrStdout(), line, noColor)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// followLines calls fn for every complete line of r, then keeps polling for
// lines appended later until ctx is done.
func followLines(ctx context.Context, r io.Reader, interval time.Duration, fn func([]byte)) error {
	br := bufio.NewReader(r)
	var partial []byte
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		line, err := br.ReadBytes('\n')
		partial = append(partial, line...)
		if err == nil {
			fn(partial[:len(partial)-1])
			partial = partial[:0]
			continue
		}
		if err != io.EOF {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
