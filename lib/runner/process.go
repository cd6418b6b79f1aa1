// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/constants"
)

// Process is a prepared interpreter invocation.
type Process struct {
	// Path is the interpreter binary.
	Path string
	// Args follow Path on the command line: the script, then the
	// policy's options, then any caller arguments.
	Args []string
	// Dir is the working directory, with runtime tokens resolved.
	Dir string
	// Env is appended to the caller's environment.
	Env []string

	Timeout     time.Duration
	IdleTimeout time.Duration
	Silent      bool
	Tty         bool

	// Policy is the unit's policy, for exit-handler dispatch.
	Policy artifact.ExecutionPolicy
}

// FindInterpreter returns the first of names found on PATH.
func FindInterpreter(names []string) (string, error) {
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %v found on PATH", artifact.ErrFileNotFound, names)
}

func (r interpretedRunner) PrepareProcess(descriptorPath string) (*Process, error) {
	descriptor, err := ReadDescriptor(descriptorPath)
	if err != nil {
		return nil, err
	}
	if descriptor.Runner != r.name {
		return nil, fmt.Errorf("%w: descriptor %s is for runner %q, not %q",
			artifact.ErrUnsupportedRunner, descriptorPath, descriptor.Runner, r.name)
	}
	interpreter, err := FindInterpreter(r.interpreters)
	if err != nil {
		return nil, err
	}
	return newProcess(interpreter, descriptor, constants.CurrentRuntime()), nil
}

// newProcess builds the invocation for descriptor, resolving runtime
// tokens against info.
func newProcess(interpreter string, descriptor *Descriptor, info constants.RuntimeInfo) *Process {
	policy := descriptor.Policy
	execute := policy.Execute

	args := []string{descriptor.Script}
	for _, option := range execute.Options {
		args = append(args, constants.Runtime(option, info))
	}

	workingDirectory := execute.WorkingDirectory
	if workingDirectory == "" {
		workingDirectory = artifact.DefaultWorkingDirectory
	}

	keys := make([]string, 0, len(execute.EnvironmentVariables))
	for key := range execute.EnvironmentVariables {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	environment := make([]string, 0, len(keys))
	for _, key := range keys {
		environment = append(environment, key+"="+constants.Runtime(execute.EnvironmentVariables[key], info))
	}

	return &Process{
		Path:        interpreter,
		Args:        args,
		Dir:         constants.Runtime(workingDirectory, info),
		Env:         environment,
		Timeout:     time.Duration(execute.Timeout) * time.Second,
		IdleTimeout: time.Duration(execute.IdleTimeout) * time.Second,
		Silent:      execute.Silent,
		Tty:         execute.Tty,
		Policy:      policy,
	}
}

// waitDelay bounds how long Execute waits for output pipes to close
// after the process is killed, since grandchildren may hold them open.
const waitDelay = 500 * time.Millisecond

// ErrIdleTimeout is returned when a process produces no output for
// longer than its idle timeout.
var ErrIdleTimeout = errors.New("process idle timeout")

// Execute runs process to completion and returns its exit code. A
// non-zero exit is not an error. Output goes to stdout and stderr
// unless the process is silent. Timeouts kill the process and return
// an error wrapping context.DeadlineExceeded or ErrIdleTimeout.
func Execute(ctx context.Context, process *Process, stdout, stderr io.Writer, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if process.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, process.Timeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if process.Silent || stdout == nil {
		stdout = io.Discard
	}
	if process.Silent || stderr == nil {
		stderr = io.Discard
	}

	var lastActivity atomic.Int64
	lastActivity.Store(time.Now().UnixNano())
	command := exec.CommandContext(ctx, process.Path, process.Args...)
	command.Dir = process.Dir
	command.Env = append(os.Environ(), process.Env...)
	command.WaitDelay = waitDelay
	command.Stdout = &activityWriter{writer: stdout, last: &lastActivity}
	command.Stderr = &activityWriter{writer: stderr, last: &lastActivity}
	if process.Tty {
		command.Stdin = os.Stdin
	}

	if process.IdleTimeout > 0 {
		done := make(chan struct{})
		defer close(done)
		go watchIdle(done, &lastActivity, process.IdleTimeout, cancel)
	}

	logger.Debug("starting process",
		"policy", process.Policy.Name,
		"path", process.Path,
		"args", process.Args,
		"dir", process.Dir,
	)
	err := command.Run()

	if cause := context.Cause(ctx); cause != nil && ctx.Err() != nil {
		return -1, fmt.Errorf("execution policy %q: %w", process.Policy.Name, cause)
	}
	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return exitError.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("%w: running %s: %v", artifact.ErrIO, process.Path, err)
	}
	return 0, nil
}

// watchIdle cancels with ErrIdleTimeout once no output has been seen
// for idle.
func watchIdle(done <-chan struct{}, last *atomic.Int64, idle time.Duration, cancel context.CancelCauseFunc) {
	interval := min(idle/4, time.Second)
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			if now.Sub(time.Unix(0, last.Load())) > idle {
				cancel(ErrIdleTimeout)
				return
			}
		}
	}
}

// activityWriter records the time of every write.
type activityWriter struct {
	writer io.Writer
	last   *atomic.Int64
}

func (w *activityWriter) Write(p []byte) (int, error) {
	w.last.Store(time.Now().UnixNano())
	return w.writer.Write(p)
}
