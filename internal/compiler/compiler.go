// Package compiler invokes the resolved Go toolchain against generated
// source and translates its diagnostics.
package compiler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pipet-dev/pipet/internal/codegen"
	"github.com/pipet-dev/pipet/internal/toolchain"
)

// Profile is the single optimization profile. There is deliberately no
// debug profile: the whole point of compiling is to pay the cost once and
// keep the fastest binary.
const Profile = "release"

// profileFlags are the build flags the profile stands for
var profileFlags = []string{"-trimpath", "-ldflags=-s -w"}

// Result is the outcome of one compile. Exactly one of ArtifactPath or
// Diagnostics is populated: a rejected program is a result, not an
// invocation error.
type Result struct {
	// ArtifactPath is the compiled binary on success, inside the work directory
	ArtifactPath string

	// Diagnostics holds structured compiler output on failure
	Diagnostics []Diagnostic

	// Duration is how long the compiler ran
	Duration time.Duration
}

// OK reports whether compilation succeeded
func (r *Result) OK() bool {
	return len(r.Diagnostics) == 0
}

// Compiler runs the external Go toolchain. GoCache points the toolchain's
// own incremental cache under the pipet cache root so repeated compiles
// stay warm without touching the user's environment.
type Compiler struct {
	goCache string
}

// New creates a compiler that keeps the toolchain build cache under the
// given cache root.
func New(cacheRoot string) *Compiler {
	return &Compiler{goCache: filepath.Join(cacheRoot, "gocache")}
}

// Compile builds the generated source into a binary under workDir. The
// caller owns workDir and removes it after the artifact has been stored.
// A non-zero compiler exit returns a Result carrying diagnostics and a nil
// error; errors are reserved for failures of the invocation itself.
func (c *Compiler) Compile(ctx context.Context, src codegen.Source, tc *toolchain.Descriptor, workDir string) (*Result, error) {
	if err := c.writeModule(src, workDir); err != nil {
		return nil, err
	}

	artifact := filepath.Join(workDir, "pipeline")

	args := append([]string{"build"}, profileFlags...)
	args = append(args, "-o", artifact, ".")

	cmd := execCommand(ctx, tc.GoBin, args...)
	cmd.Dir(workDir)
	cmd.Env(c.buildEnv(tc))

	var stderr bytes.Buffer
	cmd.Stderr(&stderr)

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		diags := parseDiagnostics(stderr.String(), src.ExprLine)
		if len(diags) == 0 {
			diags = []Diagnostic{{Severity: SeverityError, Message: fmt.Sprintf("compiler failed: %v", err)}}
		}

		return &Result{Diagnostics: diags, Duration: duration}, nil
	}

	info, err := os.Stat(artifact)
	if err != nil || info.Size() == 0 {
		return nil, fmt.Errorf("compiler reported success but produced no artifact at %s", artifact)
	}

	return &Result{ArtifactPath: artifact, Duration: duration}, nil
}

// writeModule lays out a minimal scratch module around the generated source
func (c *Compiler) writeModule(src codegen.Source, workDir string) error {
	if err := os.WriteFile(filepath.Join(workDir, "main.go"), []byte(src.Text), 0o644); err != nil {
		return fmt.Errorf("failed to write generated source: %w", err)
	}

	gomod := "module pipeline\n\ngo 1.21\n"
	if err := os.WriteFile(filepath.Join(workDir, "go.mod"), []byte(gomod), 0o644); err != nil {
		return fmt.Errorf("failed to write module file: %w", err)
	}

	return nil
}

func (c *Compiler) buildEnv(tc *toolchain.Descriptor) []string {
	env := append(os.Environ(),
		"GOCACHE="+c.goCache,
		"GO111MODULE=on",
		"GOFLAGS=-mod=mod",
	)

	if tc.Root != "" {
		env = append(env, "GOROOT="+tc.Root)
	}

	return env
}
