// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command represents a command to be run by an Executor.
type Command struct {
	Args []string
	Dir  string
	Env  []string // appended to the executor's environment.
}

func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Executor runs commands on behalf of the pipeline. Run returns the
// command's standard output and a non-nil error if it could not be
// started or exited with a non-zero status.
type Executor interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// Exec is an Executor that uses os/exec.
type Exec struct {
	opts execOptions
}

type execOptions struct {
	stdout, stderr io.Writer
	environ        []string
}

// ExecOption represents an option to NewExec.
type ExecOption func(*execOptions)

// WithStdout sets a writer to which the standard output of commands is
// copied in addition to being returned by Run.
func WithStdout(w io.Writer) ExecOption {
	return func(o *execOptions) {
		o.stdout = w
	}
}

// WithStderr sets the writer to which the standard error of commands is
// written, the default is os.Stderr.
func WithStderr(w io.Writer) ExecOption {
	return func(o *execOptions) {
		o.stderr = w
	}
}

// WithEnviron sets the base environment for commands, the default is
// os.Environ().
func WithEnviron(env []string) ExecOption {
	return func(o *execOptions) {
		o.environ = env
	}
}

// NewExec returns a new Exec.
func NewExec(opts ...ExecOption) *Exec {
	e := &Exec{
		opts: execOptions{
			stdout: io.Discard,
			stderr: os.Stderr,
		},
	}
	for _, fn := range opts {
		fn(&e.opts)
	}
	if e.opts.environ == nil {
		e.opts.environ = os.Environ()
	}
	return e
}

// Run implements Executor.
func (e *Exec) Run(ctx context.Context, c Command) ([]byte, error) {
	if len(c.Args) == 0 {
		return nil, fmt.Errorf("no command specified")
	}
	out := &bytes.Buffer{}
	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...) //nolint:gosec // G204: commands come from the pipeline config.
	cmd.Dir = c.Dir
	cmd.Env = append(append([]string{}, e.opts.environ...), c.Env...)
	cmd.Stdout = io.MultiWriter(out, e.opts.stdout)
	cmd.Stderr = e.opts.stderr
	if err := cmd.Run(); err != nil {
		return out.Bytes(), fmt.Errorf("%v: %w", c, err)
	}
	return out.Bytes(), nil
}
