package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pulsesim/internal/ir"
)

// CompileError reports an invalid CUE network definition.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileCUEBytes compiles CUE source into a network.
// filename is used for error positions only.
func CompileCUEBytes(filename string, data []byte) (*ir.Network, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	return CompileCUE(v)
}

// CompileCUE builds a network from a CUE value of the form:
//
//	broadcaster: ["a", "b"]
//	modules: {
//		a:   {kind: "toggle", outputs: ["b"]}
//		inv: {kind: "allhigh", outputs: ["a"]}
//	}
//
// Module declaration order follows field order in the modules struct.
func CompileCUE(v cue.Value) (*ir.Network, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	bcVal := v.LookupPath(cue.ParsePath("broadcaster"))
	if !bcVal.Exists() {
		return nil, &CompileError{
			Field:   "broadcaster",
			Message: "broadcaster is required",
			Pos:     v.Pos(),
		}
	}
	broadcast, err := decodeNames(bcVal, "broadcaster")
	if err != nil {
		return nil, err
	}

	var defs []ir.Definition
	modsVal := v.LookupPath(cue.ParsePath("modules"))
	if modsVal.Exists() {
		iter, err := modsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			def, err := compileModule(iter.Selector().Unquoted(), iter.Value())
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		}
	}

	n, err := ir.NewNetwork(broadcast, defs)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func compileModule(label string, v cue.Value) (ir.Definition, error) {
	field := "modules." + label
	name, msg := normalizeName(label)
	if msg != "" {
		return ir.Definition{}, &CompileError{Field: field, Message: msg, Pos: v.Pos()}
	}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return ir.Definition{}, &CompileError{Field: field + ".kind", Message: "kind is required", Pos: v.Pos()}
	}
	kindStr, err := kindVal.String()
	if err != nil {
		return ir.Definition{}, formatCUEError(err)
	}
	kind := ir.Kind(kindStr)
	if !kind.Valid() {
		return ir.Definition{}, &CompileError{
			Field:   field + ".kind",
			Message: fmt.Sprintf("unknown kind %q: must be %q or %q", kindStr, ir.KindToggle, ir.KindAllHigh),
			Pos:     kindVal.Pos(),
		}
	}

	outVal := v.LookupPath(cue.ParsePath("outputs"))
	if !outVal.Exists() {
		return ir.Definition{}, &CompileError{Field: field + ".outputs", Message: "outputs is required", Pos: v.Pos()}
	}
	outputs, err := decodeNames(outVal, field+".outputs")
	if err != nil {
		return ir.Definition{}, err
	}

	return ir.Definition{Name: name, Kind: kind, Outputs: outputs}, nil
}

// decodeNames decodes a non-empty list of module names.
func decodeNames(v cue.Value, field string) ([]string, error) {
	var raw []string
	if err := v.Decode(&raw); err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: v.Pos()}
	}
	if len(raw) == 0 {
		return nil, &CompileError{Field: field, Message: "no outputs", Pos: v.Pos()}
	}
	names := make([]string, 0, len(raw))
	for _, r := range raw {
		name, msg := normalizeName(r)
		if msg != "" {
			return nil, &CompileError{Field: field, Message: msg, Pos: v.Pos()}
		}
		names = append(names, name)
	}
	return names, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
