// Package runner executes a compiled pipeline binary against a stream.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// Run spawns the artifact and streams stdin through it, returning the
// child's exit code verbatim.
//
// Nothing is buffered beyond the pipe's own window, so memory stays
// constant on unbounded inputs. A child that terminates before consuming
// all of its input (a Take pipeline, for instance) causes the upstream
// copy to fail with a broken pipe; that is the expected shape of early
// termination and is swallowed, never surfaced as a tool failure.
func Run(ctx context.Context, artifactPath string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, artifactPath)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// A real file (the usual case: the invocation's own stdin) is handed to
	// the child directly. The pump path exists for generic readers and so
	// the child's early exit can never leave us blocked on a read the
	// child will not consume.
	if f, ok := stdin.(*os.File); ok {
		cmd.Stdin = f

		if err := cmd.Start(); err != nil {
			return -1, fmt.Errorf("failed to start pipeline binary: %w", err)
		}

		return wait(cmd)
	}

	in, err := cmd.StdinPipe()
	if err != nil {
		return -1, fmt.Errorf("failed to open stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("failed to start pipeline binary: %w", err)
	}

	var g errgroup.Group
	g.Go(func() error {
		defer in.Close()

		if _, err := io.Copy(in, stdin); err != nil && !isEarlyTermination(err) {
			return err
		}

		return nil
	})

	code, waitErr := wait(cmd)

	// Unblock the pump if the child exited without draining its input
	_ = in.Close()

	if pumpErr := g.Wait(); pumpErr != nil && waitErr == nil {
		return code, fmt.Errorf("failed to stream input: %w", pumpErr)
	}

	return code, waitErr
}

// wait reaps the child and extracts its exit status. The exit code of the
// pipeline is the tool's own; a non-zero code is not an error here.
func wait(cmd *exec.Cmd) (int, error) {
	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}

		// Killed by signal: report the conventional 128+signal code
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}

		return -1, fmt.Errorf("pipeline terminated abnormally: %w", err)
	}

	return -1, fmt.Errorf("failed to wait for pipeline: %w", err)
}

// isEarlyTermination reports whether a stream-pump error is the benign
// consequence of the child closing its read end first.
func isEarlyTermination(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe)
}
