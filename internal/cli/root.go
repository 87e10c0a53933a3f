package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/analyzer"
	"github.com/roach88/pulsesim/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pulsesim CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pulsesim",
		Short: "pulsesim - pulse network simulator",
		Long: `Simulate networks of toggle and allhigh modules driven by button presses.

Networks are read from the text grammar ("%name -> a, b") or from CUE.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewAggregateCommand(opts))
	cmd.AddCommand(NewAlignCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// configureLogging installs the default slog handler. Diagnostics always go
// to stderr so they never mix with command output.
func configureLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// LimitOptions holds the safety limits shared by the analysis commands.
type LimitOptions struct {
	MaxPresses int64
	MaxPulses  int
}

func addLimitFlags(cmd *cobra.Command, opts *LimitOptions) {
	cmd.Flags().Int64Var(&opts.MaxPresses, "max-presses", analyzer.DefaultMaxPresses, "press bound for cycle and slot search")
	cmd.Flags().IntVar(&opts.MaxPulses, "max-pulses", engine.DefaultMaxPulses, "pulse quota per press")
}

func (o LimitOptions) newAnalyzer() *analyzer.Analyzer {
	return analyzer.New(
		analyzer.WithMaxPresses(o.MaxPresses),
		analyzer.WithEngineOptions(engine.WithMaxPulses(o.MaxPulses)),
	)
}
