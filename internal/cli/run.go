package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database  string
	Presses   int64
	Label     string
	MaxPulses int

	// RunGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunGenerator engine.RunIDGenerator
}

// RunSummary is the result of a recorded run.
type RunSummary struct {
	RunID    string `json:"run_id"`
	Label    string `json:"label"`
	Presses  int64  `json:"presses"`
	High     uint64 `json:"high"`
	Low      uint64 `json:"low"`
	Recorded int64  `json:"recorded"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <network>",
		Short: "Press the button and record every pulse",
		Long: `Press the button N times and record every delivered pulse to SQLite.

The database is created if it doesn't exist. Each invocation records a new
run under a fresh time-ordered ID; use "pulsesim trace" to read it back and
"pulsesim replay" to check it reproduces.

Example:
  pulsesim run --db ./pulses.db --presses 4 ./network.txt
  pulsesim run --db ./pulses.db --presses 1000 --label nightly ./network.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().Int64VarP(&opts.Presses, "presses", "n", 1, "number of button presses")
	cmd.Flags().StringVar(&opts.Label, "label", "", "run label (defaults to the network file name)")
	cmd.Flags().IntVar(&opts.MaxPulses, "max-pulses", engine.DefaultMaxPulses, "pulse quota per press")

	return cmd
}

func runRecord(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Presses < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--presses must be at least 1, got %d", opts.Presses))
	}

	net, err := LoadNetwork(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	slog.Info("network loaded", "path", path, "modules", net.Len())

	slog.Info("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	runGen := opts.RunGenerator
	if runGen == nil {
		runGen = engine.UUIDv7Generator{}
	}
	label := opts.Label
	if label == "" {
		label = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := recordRun(ctx, st, net, runGen.Generate(), label, opts.Presses, opts.MaxPulses)
	if err != nil {
		if ctx.Err() != nil {
			slog.Info("interrupted", "run", summary.RunID, "presses", summary.Presses)
		}
		if engine.IsQuotaError(err) {
			return analysisFailure(formatter, err)
		}
		_ = formatter.Error(ErrCodeStore, err.Error(), summary)
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}
	slog.Info("run recorded", "run", summary.RunID, "pulses", summary.Recorded)

	if formatter.Format == "json" {
		return formatter.SuccessWithRun(summary.RunID, summary)
	}
	w := formatter.Writer
	fmt.Fprintf(w, "✓ Recorded run %s\n", summary.RunID)
	fmt.Fprintf(w, "  presses: %d\n", summary.Presses)
	fmt.Fprintf(w, "  pulses:  %d (%d high, %d low)\n", summary.Recorded, summary.High, summary.Low)
	return nil
}

// recordRun presses a clone of net n times with a store recorder attached.
// Pulses from a press abandoned by the quota are still recorded.
func recordRun(ctx context.Context, st *store.Store, net *ir.Network, runID, label string, n int64, maxPulses int) (RunSummary, error) {
	summary := RunSummary{RunID: runID, Label: label}

	run, err := store.NewRun(runID, label, net, n)
	if err != nil {
		return summary, err
	}
	run.MaxPulses = maxPulses
	if err := st.WriteRun(ctx, run); err != nil {
		return summary, err
	}

	rec := st.NewRecorder(ctx, runID)
	e := engine.New(net.Clone(), engine.WithObserver(rec.Observe), engine.WithMaxPulses(maxPulses))

	var total engine.Counts
	var pressErr error
	for i := int64(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			pressErr = err
			break
		}
		counts, err := e.Press()
		total = total.Plus(counts)
		summary.Presses = e.Presses()
		if err != nil {
			pressErr = err
			break
		}
	}
	summary.High, summary.Low = total.High, total.Low

	if err := rec.Flush(); err != nil {
		return summary, err
	}
	summary.Recorded = rec.Recorded()
	return summary, pressErr
}
