package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult describes a compiled network.
type CompilationResult struct {
	StructureHash string   `json:"structure_hash"`
	Modules       int      `json:"modules"`
	Toggles       int      `json:"toggles"`
	AllHighs      int      `json:"allhighs"`
	Sinks         []string `json:"sinks"`
	Output        string   `json:"output,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <network>",
		Short: "Compile a network to canonical JSON",
		Long: `Compile a text or CUE network definition to canonical JSON.

The canonical form has sorted keys and no insignificant whitespace, so two
definitions of the same network produce identical bytes and the same
structure hash regardless of source format.

Examples:
  pulsesim compile ./network.txt
  pulsesim compile ./network.cue -o network.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	net, err := LoadNetwork(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded %d module(s) from %s", net.Len(), path)

	data, err := ir.MarshalCanonical(net.Structure())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode network", err)
	}
	hash, err := net.StructureHash()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash network", err)
	}

	result := CompilationResult{
		StructureHash: hash,
		Modules:       net.Len(),
		Sinks:         net.Sinks(),
		Output:        opts.Output,
	}
	if result.Sinks == nil {
		result.Sinks = []string{}
	}
	for _, def := range net.Definitions() {
		switch def.Kind {
		case ir.KindToggle:
			result.Toggles++
		case ir.KindAllHigh:
			result.AllHighs++
		}
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if opts.Output == "" {
		fmt.Fprintln(w, string(data))
		return nil
	}
	fmt.Fprintf(w, "✓ Compiled %d module(s) (%d toggle, %d allhigh) to %s\n",
		result.Modules, result.Toggles, result.AllHighs, opts.Output)
	fmt.Fprintf(w, "  structure: %s\n", hash)
	return nil
}
