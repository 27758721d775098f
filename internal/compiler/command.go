package compiler

import (
	"context"
	"io"
	"os/exec"
)

// Commander abstracts the compiler subprocess for testing
type Commander interface {
	Dir(dir string)
	Env(env []string)
	Stderr(w io.Writer)
	Run() error
}

var execCommand = func(ctx context.Context, name string, args ...string) Commander {
	return &realCommand{cmd: exec.CommandContext(ctx, name, args...)}
}

type realCommand struct {
	cmd *exec.Cmd
}

func (c *realCommand) Dir(dir string) {
	c.cmd.Dir = dir
}

func (c *realCommand) Env(env []string) {
	c.cmd.Env = env
}

func (c *realCommand) Stderr(w io.Writer) {
	c.cmd.Stderr = w
}

func (c *realCommand) Run() error {
	return c.cmd.Run()
}
