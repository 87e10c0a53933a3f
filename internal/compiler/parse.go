package compiler

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/pulsesim/internal/ir"
)

// ParseError reports a malformed line in the text grammar.
type ParseError struct {
	File    string
	Line    int
	Text    string
	Message string
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.File != "" {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if e.Text != "" {
		return fmt.Sprintf("%s: %s: %q", loc, e.Message, e.Text)
	}
	return fmt.Sprintf("%s: %s", loc, e.Message)
}

// Parse reads the text grammar and builds a network.
//
// Blank lines and lines starting with '#' are ignored. Every other line must
// be "broadcaster -> outputs", "%name -> outputs" or "&name -> outputs" with
// comma-separated outputs. Exactly one broadcaster line is required.
func Parse(src string) (*ir.Network, error) {
	return parse("", src)
}

func parse(file, src string) (*ir.Network, error) {
	var (
		broadcast []string
		haveBC    bool
		bcLine    int
		defs      []ir.Definition
		defLines  = make(map[string]int)
	)

	sc := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		perr := func(msg string) error {
			return &ParseError{File: file, Line: lineNo, Text: raw, Message: msg}
		}

		lhs, rhs, ok := strings.Cut(line, "->")
		if !ok {
			return nil, perr("missing \"->\"")
		}
		lhs = strings.TrimSpace(lhs)
		outputs, msg := parseOutputs(rhs)
		if msg != "" {
			return nil, perr(msg)
		}

		if lhs == ir.BroadcastName {
			if haveBC {
				return nil, perr(fmt.Sprintf("broadcaster already defined on line %d", bcLine))
			}
			haveBC, bcLine, broadcast = true, lineNo, outputs
			continue
		}

		var kind ir.Kind
		switch {
		case strings.HasPrefix(lhs, "%"):
			kind = ir.KindToggle
		case strings.HasPrefix(lhs, "&"):
			kind = ir.KindAllHigh
		default:
			return nil, perr("module must start with '%' or '&'")
		}
		name, msg := normalizeName(lhs[1:])
		if msg != "" {
			return nil, perr(msg)
		}
		if prev, dup := defLines[name]; dup {
			return nil, perr(fmt.Sprintf("module %q already defined on line %d", name, prev))
		}
		defLines[name] = lineNo
		defs = append(defs, ir.Definition{Name: name, Kind: kind, Outputs: outputs})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read network: %w", err)
	}
	if !haveBC {
		return nil, &ParseError{File: file, Line: lineNo, Message: "no broadcaster line"}
	}

	n, err := ir.NewNetwork(broadcast, defs)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// parseOutputs splits a comma-separated output list. A non-empty message
// means the list is malformed.
func parseOutputs(rhs string) ([]string, string) {
	rhs = strings.TrimSpace(rhs)
	if rhs == "" {
		return nil, "no outputs"
	}
	parts := strings.Split(rhs, ",")
	outputs := make([]string, 0, len(parts))
	for _, p := range parts {
		name, msg := normalizeName(p)
		if msg != "" {
			return nil, msg
		}
		outputs = append(outputs, name)
	}
	return outputs, ""
}

// normalizeName trims and NFC-normalizes a module name and checks that it is
// a single opaque token.
func normalizeName(s string) (string, string) {
	name := norm.NFC.String(strings.TrimSpace(s))
	if name == "" {
		return "", "empty module name"
	}
	for _, r := range name {
		if unicode.IsSpace(r) || r == ',' || r == '%' || r == '&' {
			return "", fmt.Sprintf("invalid character %q in module name %q", r, name)
		}
	}
	return name, ""
}

// LoadFile reads a network definition. Files ending in ".cue" are compiled
// as CUE; everything else is parsed as the text grammar.
func LoadFile(path string) (*ir.Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network file: %w", err)
	}
	if filepath.Ext(path) == ".cue" {
		return CompileCUEBytes(path, data)
	}
	return parse(path, string(data))
}
