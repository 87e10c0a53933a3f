package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool             `json:"valid"`
	Report *compiler.Report `json:"report"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <network>",
		Short: "Check a network's topology without simulating it",
		Long: `Parse a network and check its topology without pressing the button.

Reports unreachable modules, allhigh modules with no inputs, and feedback
loops. A loop made only of allhigh modules never drains and is an error;
other loops are reported for information.

Exit codes:
  0 - Network is valid (warnings allowed)
  1 - Topology check found an error
  2 - Command error (file not found, parse error)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	net, err := LoadNetwork(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	report := compiler.Check(net)
	formatter.VerboseLog("Checked %d module(s), %d sink(s), %d loop(s)", report.Modules, len(report.Sinks), len(report.Loops))

	if report.HasErrors() {
		return outputValidationErrors(formatter, report)
	}
	return outputValidateSuccess(formatter, report)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, report *compiler.Report) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Report: report})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Network valid (%d modules, %d sinks)\n", report.Modules, len(report.Sinks))
	printFindings(formatter, report, compiler.LevelWarning)
	if formatter.Verbose {
		printFindings(formatter, report, compiler.LevelInfo)
	}
	return nil
}

// outputValidationErrors outputs a failed topology check.
func outputValidationErrors(formatter *OutputFormatter, report *compiler.Report) error {
	var errs []compiler.Finding
	for _, f := range report.Findings {
		if f.Level == compiler.LevelError {
			errs = append(errs, f)
		}
	}

	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Report: report},
			Error: &CLIError{
				Code:    ErrCodeTopo,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}
		// Topology errors are validation failures (exit code 1)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	printFindings(formatter, report, compiler.LevelError)
	printFindings(formatter, report, compiler.LevelWarning)

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

func printFindings(formatter *OutputFormatter, report *compiler.Report, level string) {
	for _, f := range report.Findings {
		if f.Level == level {
			fmt.Fprintf(formatter.Writer, "  %s [%s]: %s\n", level, f.Code, f.Message)
		}
	}
}
