package compiler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Severity classifies a compiler diagnostic
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one structured entry parsed from compiler output.
//
// Line numbers for diagnostics inside the spliced expression are reported
// relative to the expression; diagnostics in the surrounding generated
// scaffolding keep their absolute line. The mapping is best-effort: a
// multi-line expression or a clever compiler message can defeat it, and
// that is acceptable.
type Diagnostic struct {
	Severity Severity
	Message  string
	Line     int
	Col      int

	// InExpression is true when the location falls inside the user
	// expression rather than the generated scaffolding
	InExpression bool
}

// locationRe matches the standard Go diagnostic shape
// "path/main.go:line:col: message" (column optional).
var locationRe = regexp.MustCompile(`^(.*\.go):(\d+)(?::(\d+))?: (.*)$`)

// parseDiagnostics turns raw compiler stderr into structured diagnostics,
// translating generated-source line numbers against the expression splice
// line. Lines that belong to no known shape are folded into the previous
// diagnostic when indented, or kept as location-less entries otherwise.
func parseDiagnostics(stderr string, exprLine int) []Diagnostic {
	var diags []Diagnostic

	for _, raw := range strings.Split(stderr, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// "# pipeline" package headers carry no information
		if strings.HasPrefix(line, "#") {
			continue
		}

		if m := locationRe.FindStringSubmatch(line); m != nil {
			num, _ := strconv.Atoi(m[2])
			col := 0
			if m[3] != "" {
				col, _ = strconv.Atoi(m[3])
			}

			diags = append(diags, newDiagnostic(m[4], num, col, exprLine))
			continue
		}

		// Indented continuations extend the previous message
		if (strings.HasPrefix(raw, "\t") || strings.HasPrefix(raw, " ")) && len(diags) > 0 {
			diags[len(diags)-1].Message += "\n" + strings.TrimSpace(line)
			continue
		}

		diags = append(diags, Diagnostic{Severity: severityOf(line), Message: strings.TrimSpace(line)})
	}

	return diags
}

func newDiagnostic(msg string, line, col, exprLine int) Diagnostic {
	d := Diagnostic{
		Severity: severityOf(msg),
		Message:  strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, "warning:"), "error:")),
	}

	if exprLine > 0 && line >= exprLine {
		d.InExpression = true
		d.Line = line - exprLine + 1
		d.Col = col
	} else {
		d.Line = line
		d.Col = col
	}

	return d
}

func severityOf(msg string) Severity {
	if strings.HasPrefix(strings.TrimSpace(msg), "warning:") {
		return SeverityWarning
	}

	return SeverityError
}

// CompileError carries the structured diagnostics for a rejected
// expression. It is user-visible, reported once and never retried.
type CompileError struct {
	Expression  string
	Diagnostics []Diagnostic
}

func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString("compilation failed\n")
	b.WriteString("  expression: " + e.Expression + "\n")

	for _, d := range e.Diagnostics {
		b.WriteString("  " + formatDiagnostic(d) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatDiagnostic(d Diagnostic) string {
	where := "generated scaffolding"
	if d.InExpression {
		where = "expression"
	}

	switch {
	case d.Line > 0 && d.Col > 0:
		return fmt.Sprintf("%s: %s:%d:%d: %s", d.Severity, where, d.Line, d.Col, d.Message)
	case d.Line > 0:
		return fmt.Sprintf("%s: %s:%d: %s", d.Severity, where, d.Line, d.Message)
	default:
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
}
