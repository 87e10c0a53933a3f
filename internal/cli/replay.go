package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string `json:"run_id"`
	Label         string `json:"label"`
	Presses       int64  `json:"presses"`
	Pulses        int    `json:"pulses"`
	Deterministic bool   `json:"deterministic"`
	Mismatch      string `json:"mismatch,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-simulate recorded runs and verify determinism",
		Long: `Rebuild each recorded run's network from the database, press the button
the same number of times, and compare every pulse against the recording.

Exit codes:
  0 - All runs reproduce exactly
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  pulsesim replay --db ./pulses.db
  pulsesim replay --db ./pulses.db --run <id>
  pulsesim replay --db ./pulses.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	st, err := openExisting(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		runs = []store.Run{run}
	} else {
		runs, err = st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}
	for _, run := range runs {
		rr, err := replayRun(ctx, st, run)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}
		formatter.VerboseLog("replayed %s: %d presses, %d pulses", run.ID, rr.Presses, rr.Pulses)
		result.Runs = append(result.Runs, rr)
		if !rr.Deterministic {
			result.AllDeterministic = false
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputReplayText(formatter, result)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// replayRun re-simulates a run from its stored structure and compares the
// fresh pulses against the recorded ones, in seq order.
func replayRun(ctx context.Context, st *store.Store, run store.Run) (ReplayRunResult, error) {
	rr := ReplayRunResult{RunID: run.ID, Label: run.Label, Deterministic: true}

	recorded, err := st.ReadPulses(ctx, run.ID)
	if err != nil {
		return rr, err
	}
	rr.Pulses = len(recorded)

	net, err := run.Rebuild()
	if err != nil {
		return rr, err
	}
	if hash, err := net.StructureHash(); err != nil {
		return rr, err
	} else if hash != run.NetworkHash {
		rr.Deterministic = false
		rr.Mismatch = fmt.Sprintf("network hash %s, recorded %s", hash, run.NetworkHash)
		return rr, nil
	}

	var fresh []ir.PulseEvent
	e := engine.New(net,
		engine.WithMaxPulses(run.MaxPulses),
		engine.WithObserver(func(ev ir.PulseEvent, _ *ir.Module) {
			fresh = append(fresh, ev)
		}),
	)

	presses := run.MaxPresses
	if len(recorded) > 0 {
		presses = max(presses, recorded[len(recorded)-1].Press)
	}
	for i := int64(0); i < presses; i++ {
		if err := ctx.Err(); err != nil {
			return rr, err
		}
		// A quota failure during recording is reproduced here too.
		if _, err := e.Press(); err != nil {
			break
		}
	}
	rr.Presses = e.Presses()

	if msg := comparePulses(recorded, fresh); msg != "" {
		rr.Deterministic = false
		rr.Mismatch = msg
	}
	return rr, nil
}

func comparePulses(recorded, fresh []ir.PulseEvent) string {
	for i, n := 0, min(len(recorded), len(fresh)); i < n; i++ {
		if recorded[i] != fresh[i] {
			return fmt.Sprintf("seq %d: recorded %q, replayed %q", recorded[i].Seq, recorded[i].String(), fresh[i].String())
		}
	}
	if len(recorded) != len(fresh) {
		return fmt.Sprintf("recorded %d pulses, replayed %d", len(recorded), len(fresh))
	}
	return ""
}

func outputReplayText(formatter *OutputFormatter, result ReplayResult) {
	w := formatter.Writer
	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return
	}

	for _, rr := range result.Runs {
		if rr.Deterministic {
			fmt.Fprintf(w, "✓ %s (%s): %d presses, %d pulses\n", rr.RunID, rr.Label, rr.Presses, rr.Pulses)
			continue
		}
		fmt.Fprintf(w, "✗ %s (%s): %s\n", rr.RunID, rr.Label, rr.Mismatch)
	}
	fmt.Fprintln(w)

	if result.AllDeterministic {
		fmt.Fprintf(w, "All %d run(s) deterministic\n", result.TotalRuns)
	} else {
		fmt.Fprintln(w, "Determinism verification FAILED")
	}
}
