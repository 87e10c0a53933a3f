package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/analyzer"
)

// AlignOptions holds flags for the align command.
type AlignOptions struct {
	*RootOptions
	LimitOptions
	Target string
}

// NewAlignCommand creates the align command.
func NewAlignCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AlignOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "align <network>",
		Short: "Find the first press that sends a low pulse to a sink",
		Long: `Find when every input of the allhigh gate feeding a sink is high at once.

The target sink must be fed by exactly one allhigh module. The button is
pressed until each of the gate's inputs has been recorded high at least
once; the answer is the least common multiple of those first presses.

Exit codes:
  0 - Every gate input was seen high
  1 - Press bound reached, pulse quota exceeded, or LCM overflow
  2 - Command error (file not found, target not fed by a single gate)

Examples:
  pulsesim align ./network.txt
  pulsesim align ./network.txt --target out --max-presses 100000`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlign(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", "rx", "sink to align on")
	addLimitFlags(cmd, &opts.LimitOptions)

	return cmd
}

func runAlign(opts *AlignOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	net, err := LoadNetwork(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	al, err := opts.newAnalyzer().Align(commandContext(cmd), net, opts.Target)
	if err != nil {
		return analysisFailure(formatter, err)
	}
	slog.Debug("alignment complete", "target", al.Target, "gate", al.Gate, "presses", al.Presses)

	if formatter.Format == "json" {
		return formatter.Success(al)
	}
	printAlignment(formatter, al)
	return nil
}

func printAlignment(formatter *OutputFormatter, al *analyzer.Alignment) {
	w := formatter.Writer
	fmt.Fprintf(w, "target: %s (gate %s)\n", al.Target, al.Gate)
	for i, in := range al.Inputs {
		fmt.Fprintf(w, "  %-12s first high at press %d\n", in, al.Slots[i])
	}
	fmt.Fprintf(w, "answer: %d\n", al.Answer)
	formatter.VerboseLog("%d presses simulated; slots %s", al.Presses, joinInts(al.Slots))
}

func joinInts(vals []int64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
