package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Deterministic(t *testing.T) {
	exprs := []Expression{
		{Text: `_.Filter(func(s string) bool { return len(s) > 1 })`, Mode: ModeStdin},
		{Text: `pipe(1, 2, 3).Map(func(n int) int { return n * 2 })`, Mode: ModeLiteral},
		{Text: `_.Take(5)`, Mode: ModeRange},
	}

	for _, expr := range exprs {
		first, err := Generate(expr)
		require.NoError(t, err)

		second, err := Generate(expr)
		require.NoError(t, err)

		assert.Equal(t, first.Text, second.Text, "generation must be byte-identical for %q", expr.Text)
		assert.Equal(t, first.ExprLine, second.ExprLine)
	}
}

func TestGenerate_StdinMode(t *testing.T) {
	src, err := Generate(Expression{
		Text: `_.Filter(func(s string) bool { return len(s) > 1 })`,
		Mode: ModeStdin,
	})
	require.NoError(t, err)

	assert.Contains(t, src.Text, "input := stdinLines()")
	assert.Contains(t, src.Text, "result := input.Filter(func(s string) bool { return len(s) > 1 })")
	assert.Contains(t, src.Text, "emitEach(result)")
	assert.NotContains(t, src.Text, "naturals()\n\tresult")
}

func TestGenerate_RangeMode(t *testing.T) {
	src, err := Generate(Expression{Text: `_.Take(5)`, Mode: ModeRange})
	require.NoError(t, err)

	assert.Contains(t, src.Text, "input := naturals()")
	assert.Contains(t, src.Text, "result := input.Take(5)")
}

func TestGenerate_LiteralMode(t *testing.T) {
	src, err := Generate(Expression{
		Text: `pipe(1, 2, 3).Map(func(n int) int { return n * 2 })`,
		Mode: ModeLiteral,
	})
	require.NoError(t, err)

	assert.NotContains(t, src.Text, "input :=")
	assert.Contains(t, src.Text, "result := pipe(1, 2, 3).Map(func(n int) int { return n * 2 })")
}

func TestGenerate_NoPlaceholderSkipsBinding(t *testing.T) {
	// An expression supplying its own source gets no unused input binding
	// even in stdin mode, so the generated program still compiles.
	src, err := Generate(Expression{Text: `pipe("a", "b").Count()`, Mode: ModeStdin})
	require.NoError(t, err)

	assert.NotContains(t, src.Text, "input :=")
}

func TestGenerate_TerminalOperations(t *testing.T) {
	tests := []struct {
		expr     string
		terminal bool
	}{
		{`_.Count()`, true},
		{`_.First()`, true},
		{`_.Any(func(s string) bool { return s == "x" })`, true},
		{`_.All(func(s string) bool { return s != "" })`, true},
		{`_.Reduce(func(a, b string) string { return a + b })`, true},
		{`_.Sum()`, true},
		{`_.Take(3).Sum()`, true},
		{`_.ToSlice()`, true},
		{`_.Filter(func(s string) bool { return true })`, false},
		{`_.Take(5)`, false},
		{`_.Map(func(s string) string { return s })`, false},
	}

	for _, test := range tests {
		src, err := Generate(Expression{Text: test.expr, Mode: ModeStdin})
		require.NoError(t, err)

		if test.terminal {
			assert.Contains(t, src.Text, "emitOne(result)", "expr %q", test.expr)
			assert.NotContains(t, src.Text, "emitEach(result)", "expr %q", test.expr)
		} else {
			assert.Contains(t, src.Text, "emitEach(result)", "expr %q", test.expr)
		}
	}
}

func TestGenerate_ExprLine(t *testing.T) {
	src, err := Generate(Expression{Text: `_.Take(5)`, Mode: ModeStdin})
	require.NoError(t, err)

	lines := strings.Split(src.Text, "\n")
	require.Greater(t, len(lines), src.ExprLine)
	assert.Contains(t, lines[src.ExprLine-1], "result :=")
}

func TestGenerate_ReplacesOnlyFirstPlaceholder(t *testing.T) {
	// Later underscores belong to the expression, not the placeholder.
	src, err := Generate(Expression{
		Text: `_.Map(func(_ string) string { return "x" })`,
		Mode: ModeStdin,
	})
	require.NoError(t, err)

	assert.Contains(t, src.Text, `result := input.Map(func(_ string) string { return "x" })`)
}

func TestGenerate_EmptyExpression(t *testing.T) {
	_, err := Generate(Expression{Text: "   ", Mode: ModeStdin})
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    InputMode
		wantErr bool
	}{
		{"stdin", ModeStdin, false},
		{"", ModeStdin, false},
		{"literal", ModeLiteral, false},
		{"range", ModeRange, false},
		{"csv", ModeStdin, true},
	}

	for _, test := range tests {
		mode, err := ParseMode(test.input)
		if test.wantErr {
			assert.Error(t, err, "input %q", test.input)
			continue
		}

		require.NoError(t, err)
		assert.Equal(t, test.want, mode, "input %q", test.input)
	}
}

func TestInputMode_String(t *testing.T) {
	assert.Equal(t, "stdin", ModeStdin.String())
	assert.Equal(t, "literal", ModeLiteral.String())
	assert.Equal(t, "range", ModeRange.String())
}
