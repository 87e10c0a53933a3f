package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Press    int64 // optional - filter to a single press
}

// TraceResult holds the complete trace output for one run.
type TraceResult struct {
	Run      store.Run           `json:"run"`
	Timeline []ir.PulseEvent     `json:"timeline"`
	Presses  []store.PressCounts `json:"presses"`
	Stats    TraceStats          `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalPulses int    `json:"total_pulses"`
	High        uint64 `json:"high"`
	Low         uint64 `json:"low"`
	Presses     int    `json:"presses"`
}

// RunListing is the trace output when no run is selected.
type RunListing struct {
	Runs []store.Run `json:"runs"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the recorded pulses of a run",
		Long: `Show the pulse timeline and per-press tallies of a recorded run.

Without --run, lists the runs in the database.

Examples:
  pulsesim trace --db ./pulses.db
  pulsesim trace --db ./pulses.db --run 01920000-0000-7000-8000-000000000000
  pulsesim trace --db ./pulses.db --run <id> --press 2 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to trace")
	cmd.Flags().Int64Var(&opts.Press, "press", 0, "show a single press")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	st, err := openExisting(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.RunID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		return outputRunListing(formatter, runs)
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	var timeline []ir.PulseEvent
	if opts.Press > 0 {
		timeline, err = st.ReadPressPulses(ctx, run.ID, opts.Press)
	} else {
		timeline, err = st.ReadPulses(ctx, run.ID)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read pulses", err)
	}

	presses, err := st.ReadPresses(ctx, run.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read presses", err)
	}
	if opts.Press > 0 {
		presses = filterPress(presses, opts.Press)
	}

	result := TraceResult{
		Run:      run,
		Timeline: timeline,
		Presses:  presses,
		Stats:    traceStats(timeline, presses),
	}

	if formatter.Format == "json" {
		return formatter.SuccessWithRun(run.ID, result)
	}
	return outputTraceText(formatter, result)
}

// openExisting opens a database that must already exist. store.Open would
// otherwise create an empty file.
func openExisting(formatter *OutputFormatter, path string) (*store.Store, error) {
	if path != store.MemoryPath {
		if _, err := os.Stat(path); err != nil {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", path), nil)
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
		}
	}
	st, err := store.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func filterPress(presses []store.PressCounts, press int64) []store.PressCounts {
	out := []store.PressCounts{}
	for _, pc := range presses {
		if pc.Press == press {
			out = append(out, pc)
		}
	}
	return out
}

func traceStats(timeline []ir.PulseEvent, presses []store.PressCounts) TraceStats {
	stats := TraceStats{TotalPulses: len(timeline), Presses: len(presses)}
	for _, ev := range timeline {
		if ev.Pulse == ir.High {
			stats.High++
		} else {
			stats.Low++
		}
	}
	return stats
}

func outputRunListing(formatter *OutputFormatter, runs []store.Run) error {
	if formatter.Format == "json" {
		return formatter.Success(RunListing{Runs: runs})
	}
	w := formatter.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s  %-16s presses=%d  engine=%s\n", run.ID, run.Label, run.MaxPresses, run.EngineVersion)
	}
	return nil
}

func outputTraceText(formatter *OutputFormatter, result TraceResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Run: %s (%s)\n", result.Run.ID, result.Run.Label)
	formatter.VerboseLog("network %s, engine %s", result.Run.NetworkHash, result.Run.EngineVersion)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Timeline:")
	press := int64(0)
	for _, ev := range result.Timeline {
		if ev.Press != press {
			press = ev.Press
			fmt.Fprintf(w, "  press %d\n", press)
		}
		fmt.Fprintf(w, "    [%d] %s\n", ev.Seq, ev)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Presses:")
	for _, pc := range result.Presses {
		fmt.Fprintf(w, "  %d: %d high, %d low\n", pc.Press, pc.High, pc.Low)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Stats: %d pulses (%d high, %d low) over %d press(es)\n",
		result.Stats.TotalPulses, result.Stats.High, result.Stats.Low, result.Stats.Presses)
	return nil
}
