// Package codegen generates a complete, self-contained Go program from a
// pipeline expression.
//
// The expression text is spliced verbatim into a fixed program template and
// is never parsed or validated here; invalid expressions surface later as
// compiler diagnostics. Generation is a pure function: identical
// (expression, mode) inputs produce byte-identical output, which is what
// makes the downstream content-addressed cache stable across runs.
package codegen

import (
	"fmt"
	"strings"
)

// InputMode selects which input preamble the generated program receives.
type InputMode int

const (
	// ModeStdin streams lines from standard input
	ModeStdin InputMode = iota

	// ModeLiteral expects the expression to supply its own collection
	ModeLiteral

	// ModeRange binds the placeholder to an unbounded sequence of naturals
	ModeRange
)

func (m InputMode) String() string {
	switch m {
	case ModeStdin:
		return "stdin"
	case ModeLiteral:
		return "literal"
	case ModeRange:
		return "range"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name as given on the command line
func ParseMode(s string) (InputMode, error) {
	switch s {
	case "stdin", "":
		return ModeStdin, nil
	case "literal":
		return ModeLiteral, nil
	case "range":
		return ModeRange, nil
	default:
		return ModeStdin, fmt.Errorf("unknown input mode: %s (expected stdin, literal or range)", s)
	}
}

// Expression is an immutable pipeline expression plus its input mode.
type Expression struct {
	Text string
	Mode InputMode
}

// Source is a generated program. ExprLine is the 1-based line in Text where
// the user expression was spliced, used for best-effort diagnostic mapping.
type Source struct {
	Text     string
	ExprLine int
}

// placeholder is the single character replaced by the bound input value
const placeholder = "_"

// terminalOps are suffix operations that collapse a pipe to a single value.
// Detection is by substring, mirroring how the expression is treated as
// opaque text everywhere else.
var terminalOps = []string{
	".Count()",
	".First()",
	".Any(",
	".All(",
	".Reduce(",
	".Sum()",
	".ToSlice()",
}

// Generate produces the complete program for an expression. It is total and
// side-effect-free; the only error case is an empty expression, which is an
// internal invariant violation rather than a user-facing failure mode.
func Generate(expr Expression) (Source, error) {
	text := strings.TrimSpace(expr.Text)
	if text == "" {
		return Source{}, fmt.Errorf("empty expression")
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(prelude)
	b.WriteString("func main() {\n")

	spliced := text
	binding := inputBinding(expr.Mode)
	if binding != "" && strings.Contains(text, placeholder) {
		b.WriteString("\tinput := " + binding + "\n")
		spliced = strings.Replace(text, placeholder, "input", 1)
	}

	exprLine := strings.Count(b.String(), "\n") + 1
	b.WriteString("\tresult := " + spliced + "\n")

	if hasTerminalOp(text) {
		b.WriteString("\temitOne(result)\n")
	} else {
		b.WriteString("\temitEach(result)\n")
	}

	b.WriteString("}\n")

	return Source{Text: b.String(), ExprLine: exprLine}, nil
}

// inputBinding returns the prelude call bound to the placeholder, or ""
// when the mode supplies no implicit input.
func inputBinding(mode InputMode) string {
	switch mode {
	case ModeStdin:
		return "stdinLines()"
	case ModeRange:
		return "naturals()"
	default:
		return ""
	}
}

func hasTerminalOp(expr string) bool {
	for _, op := range terminalOps {
		if strings.Contains(expr, op) {
			return true
		}
	}

	return false
}
