package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/pulsesim/internal/compiler"
	"github.com/roach88/pulsesim/internal/ir"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStore       = "E008" // Database open/read/write error

	// Network definition errors
	ErrCodeParse   = "E101" // Malformed text grammar line
	ErrCodeCompile = "E102" // Invalid CUE network
	ErrCodeBuild   = "E103" // Network cannot be assembled
	ErrCodeTopo    = "E104" // Topology check found an error

	// Analysis errors
	ErrCodeNoConvergence = "E201" // Press bound reached
	ErrCodeQuota         = "E202" // Pulse quota exceeded
	ErrCodeShape         = "E203" // Target is not fed by a single allhigh gate
	ErrCodeDegenerate    = "E204" // Zero slot or LCM overflow
)

// LoadError represents an error that occurred while loading a network file.
type LoadError struct {
	Code    string
	Message string
	Path    string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadNetwork reads and builds a network from path.
//
// Files ending in ".cue" are compiled as CUE, everything else is parsed as
// the text grammar. Failures are returned as *LoadError carrying the code
// the CLI reports.
func LoadNetwork(path string) (*ir.Network, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("network file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing network file: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("is a directory: %s", path)}
	}

	net, err := compiler.LoadFile(path)
	if err != nil {
		return nil, &LoadError{Code: LoadErrorCode(err), Message: err.Error(), Path: filepath.Base(path)}
	}
	return net, nil
}

// LoadErrorCode maps a compiler or build error to an error code.
func LoadErrorCode(err error) string {
	var parseErr *compiler.ParseError
	var compileErr *compiler.CompileError
	var buildErr *ir.BuildError
	switch {
	case errors.As(err, &parseErr):
		return ErrCodeParse
	case errors.As(err, &compileErr):
		return ErrCodeCompile
	case errors.As(err, &buildErr):
		return ErrCodeBuild
	default:
		return ErrCodeGeneric
	}
}

// loadFailure reports a load error through the formatter and converts it to
// a command error.
func loadFailure(formatter *OutputFormatter, err error) error {
	code, message := ErrCodeGeneric, err.Error()
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code, message = loadErr.Code, loadErr.Message
	}
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
