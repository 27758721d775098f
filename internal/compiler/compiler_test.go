package compiler

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipet-dev/pipet/internal/codegen"
	"github.com/pipet-dev/pipet/internal/toolchain"
)

// mockCommander implements Commander for testing
type mockCommander struct {
	dir     string
	env     []string
	stderr  io.Writer
	runFunc func(m *mockCommander) error
}

func (m *mockCommander) Dir(dir string)     { m.dir = dir }
func (m *mockCommander) Env(env []string)   { m.env = env }
func (m *mockCommander) Stderr(w io.Writer) { m.stderr = w }
func (m *mockCommander) Run() error         { return m.runFunc(m) }

func withMockCommand(t *testing.T, runFunc func(m *mockCommander) error) *mockCommander {
	t.Helper()

	mock := &mockCommander{runFunc: runFunc}

	original := execCommand
	execCommand = func(ctx context.Context, name string, args ...string) Commander {
		return mock
	}
	t.Cleanup(func() { execCommand = original })

	return mock
}

func testSource(t *testing.T) codegen.Source {
	t.Helper()

	src, err := codegen.Generate(codegen.Expression{Text: "_.Take(5)", Mode: codegen.ModeRange})
	require.NoError(t, err)

	return src
}

func testToolchain() *toolchain.Descriptor {
	return &toolchain.Descriptor{
		GoBin:       "/usr/local/go/bin/go",
		Fingerprint: "go version go1.25.2 linux/amd64",
		Origin:      toolchain.OriginSystem,
	}
}

func TestCompile_Success(t *testing.T) {
	workDir := t.TempDir()

	mock := withMockCommand(t, func(m *mockCommander) error {
		return os.WriteFile(filepath.Join(m.dir, "pipeline"), []byte("fake binary"), 0o755)
	})

	c := New(t.TempDir())
	result, err := c.Compile(context.Background(), testSource(t), testToolchain(), workDir)
	require.NoError(t, err)

	require.True(t, result.OK())
	assert.Equal(t, filepath.Join(workDir, "pipeline"), result.ArtifactPath)

	// The scratch module must be laid out before the compiler runs
	assert.FileExists(t, filepath.Join(workDir, "main.go"))
	assert.FileExists(t, filepath.Join(workDir, "go.mod"))
	assert.Equal(t, workDir, mock.dir)
}

func TestCompile_Env(t *testing.T) {
	cacheRoot := t.TempDir()

	mock := withMockCommand(t, func(m *mockCommander) error {
		return os.WriteFile(filepath.Join(m.dir, "pipeline"), []byte("x"), 0o755)
	})

	c := New(cacheRoot)
	tc := &toolchain.Descriptor{
		GoBin:       "/opt/toolchain/bin/go",
		Root:        "/opt/toolchain",
		Fingerprint: "embedded:abc",
		Origin:      toolchain.OriginEmbedded,
	}

	_, err := c.Compile(context.Background(), testSource(t), tc, t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, mock.env, "GOCACHE="+filepath.Join(cacheRoot, "gocache"))
	assert.Contains(t, mock.env, "GOROOT=/opt/toolchain")
}

func TestCompile_DiagnosticsOnFailure(t *testing.T) {
	src := testSource(t)

	withMockCommand(t, func(m *mockCommander) error {
		_, _ = io.WriteString(m.stderr, "# pipeline\n./main.go:9999:3: undefined: frobnicate\n")
		return errors.New("exit status 1")
	})

	c := New(t.TempDir())
	result, err := c.Compile(context.Background(), src, testToolchain(), t.TempDir())
	require.NoError(t, err, "a rejected program is a result, not an invocation error")

	require.False(t, result.OK())
	require.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, SeverityError, result.Diagnostics[0].Severity)
	assert.Contains(t, result.Diagnostics[0].Message, "frobnicate")
	assert.True(t, result.Diagnostics[0].InExpression)
}

func TestCompile_EmptyStderrStillReports(t *testing.T) {
	withMockCommand(t, func(m *mockCommander) error {
		return errors.New("exit status 2")
	})

	c := New(t.TempDir())
	result, err := c.Compile(context.Background(), testSource(t), testToolchain(), t.TempDir())
	require.NoError(t, err)

	require.False(t, result.OK())
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0].Message, "compiler failed")
}

func TestCompile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	withMockCommand(t, func(m *mockCommander) error {
		cancel()
		return errors.New("signal: killed")
	})

	c := New(t.TempDir())
	_, err := c.Compile(ctx, testSource(t), testToolchain(), t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompile_MissingArtifactIsError(t *testing.T) {
	withMockCommand(t, func(m *mockCommander) error {
		return nil // claims success, writes nothing
	})

	c := New(t.TempDir())
	_, err := c.Compile(context.Background(), testSource(t), testToolchain(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no artifact")
}
