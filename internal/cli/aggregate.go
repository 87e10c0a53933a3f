package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/analyzer"
)

// AggregateOptions holds flags for the aggregate command.
type AggregateOptions struct {
	*RootOptions
	LimitOptions
	Presses    int64
	BruteForce bool
}

// NewAggregateCommand creates the aggregate command.
func NewAggregateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AggregateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "aggregate <network>",
		Short: "Count high and low pulses over many presses",
		Long: `Press the button N times and report the high and low pulse totals and
their product.

The network state is hashed before every press. Once a state repeats, the
presses between the two occurrences form a cycle and the rest of the N
presses are filled in from it without simulating them.

Exit codes:
  0 - Totals computed
  1 - Pulse quota exceeded, or --brute-force over the press bound
  2 - Command error (file not found, parse error)

Examples:
  pulsesim aggregate ./network.txt
  pulsesim aggregate ./network.txt --presses 1000000000
  pulsesim aggregate ./network.txt --presses 1000 --brute-force --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAggregate(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64VarP(&opts.Presses, "presses", "n", 1000, "number of button presses")
	cmd.Flags().BoolVar(&opts.BruteForce, "brute-force", false, "simulate every press instead of replaying the cycle")
	addLimitFlags(cmd, &opts.LimitOptions)

	return cmd
}

func runAggregate(opts *AggregateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Presses < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--presses must not be negative, got %d", opts.Presses))
	}

	net, err := LoadNetwork(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	ctx := commandContext(cmd)
	a := opts.newAnalyzer()

	var agg *analyzer.Aggregate
	if opts.BruteForce {
		agg, err = a.Simulate(ctx, net, opts.Presses)
	} else {
		agg, err = a.Aggregate(ctx, net, opts.Presses)
	}
	if err != nil {
		return analysisFailure(formatter, err)
	}
	slog.Debug("aggregate complete", "presses", agg.Presses, "simulated", agg.Simulated, "state", agg.State)

	if formatter.Format == "json" {
		return formatter.Success(agg)
	}
	printAggregate(formatter, agg)
	return nil
}

func printAggregate(formatter *OutputFormatter, agg *analyzer.Aggregate) {
	w := formatter.Writer
	fmt.Fprintf(w, "presses: %d\n", agg.Presses)
	fmt.Fprintf(w, "high:    %d\n", agg.High)
	fmt.Fprintf(w, "low:     %d\n", agg.Low)
	fmt.Fprintf(w, "product: %d\n", agg.Product)
	if agg.State == analyzer.StateCycleDetected {
		fmt.Fprintf(w, "cycle:   length %d from press %d (%d presses simulated)\n",
			agg.CycleLength, agg.CycleStart, agg.Simulated)
	} else {
		formatter.VerboseLog("no cycle: %d presses simulated", agg.Simulated)
	}
}

// commandContext returns the command's context, or a background context
// when the command is executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
