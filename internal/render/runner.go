package render

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
)

// RunOptions configures one external process invocation.
type RunOptions struct {
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// RunResult holds the captured output of a finished process.
type RunResult struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes external tools. Tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error)
}

// CmdRunner runs commands with os/exec. Both streams are captured in the
// result and also copied to the writers in RunOptions when set.
type CmdRunner struct{}

func (CmdRunner) Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, opts.Stdout)
	cmd.Stderr = tee(&stderr, opts.Stderr)

	err := cmd.Run()
	return RunResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, err
}

func tee(buf *bytes.Buffer, extra io.Writer) io.Writer {
	if extra == nil {
		return buf
	}
	return io.MultiWriter(buf, extra)
}

var _ Runner = CmdRunner{}
