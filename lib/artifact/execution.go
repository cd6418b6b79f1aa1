// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"fmt"
	"maps"
	"slices"
)

// Runner identifies the interpreter an execution policy runs under.
type Runner string

const (
	RunnerPHP     Runner = "php"
	RunnerBash    Runner = "bash"
	RunnerPython  Runner = "python"
	RunnerPython2 Runner = "python2"
	RunnerPython3 Runner = "python3"
	RunnerPerl    Runner = "perl"
	RunnerLua     Runner = "lua"
)

// Runners lists every supported runner in a stable order.
var Runners = []Runner{RunnerPHP, RunnerBash, RunnerPython, RunnerPython2, RunnerPython3, RunnerPerl, RunnerLua}

// ParseRunner validates a runner tag.
func ParseRunner(value string) (Runner, error) {
	runner := Runner(value)
	if !slices.Contains(Runners, runner) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedRunner, value)
	}
	return runner, nil
}

// DefaultWorkingDirectory is the working directory token used when a
// policy does not name one.
const DefaultWorkingDirectory = "%CWD%"

// Execute describes how an execution unit's process is started.
type Execute struct {
	// Target is the script path relative to the project root. The
	// compiler clears it once the script is packed into the unit.
	Target               string            `json:"target,omitempty" yaml:"target,omitempty"`
	WorkingDirectory     string            `json:"working_directory,omitempty" yaml:"working_directory,omitempty"`
	Options              []string          `json:"options,omitempty" yaml:"options,omitempty"`
	EnvironmentVariables map[string]string `json:"environment_variables,omitempty" yaml:"environment_variables,omitempty"`
	Silent               bool              `json:"silent,omitempty" yaml:"silent,omitempty"`
	Tty                  bool              `json:"tty,omitempty" yaml:"tty,omitempty"`

	// Timeout and IdleTimeout are in seconds; zero means unlimited.
	Timeout     int `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	IdleTimeout int `json:"idle_timeout,omitempty" yaml:"idle_timeout,omitempty"`
}

// ExitHandle is the reaction to one class of process exit.
type ExitHandle struct {
	Message    string `json:"message,omitempty" yaml:"message,omitempty"`
	EndProcess bool   `json:"end_process,omitempty" yaml:"end_process,omitempty"`
	// Run names another execution policy to run next.
	Run      string `json:"run,omitempty" yaml:"run,omitempty"`
	ExitCode int    `json:"exit_code,omitempty" yaml:"exit_code,omitempty"`
}

// ExitHandlers groups the reactions to a successful exit (code 0), a
// warning exit (code 1), and any other exit.
type ExitHandlers struct {
	Success *ExitHandle `json:"success,omitempty" yaml:"success,omitempty"`
	Warning *ExitHandle `json:"warning,omitempty" yaml:"warning,omitempty"`
	Error   *ExitHandle `json:"error,omitempty" yaml:"error,omitempty"`
}

// ForExitCode returns the handler for a process exit code, or nil.
func (h *ExitHandlers) ForExitCode(code int) *ExitHandle {
	if h == nil {
		return nil
	}
	switch code {
	case 0:
		return h.Success
	case 1:
		return h.Warning
	default:
		return h.Error
	}
}

// ExecutionPolicy is the declarative description of an entry point.
type ExecutionPolicy struct {
	Name         string        `json:"name" yaml:"name"`
	Runner       Runner        `json:"runner" yaml:"runner"`
	Message      string        `json:"message,omitempty" yaml:"message,omitempty"`
	Execute      Execute       `json:"execute" yaml:"execute"`
	ExitHandlers *ExitHandlers `json:"exit_handlers,omitempty" yaml:"exit_handlers,omitempty"`
}

// ReferencedPolicies returns the names of the policies this policy's
// exit handlers chain to.
func (p *ExecutionPolicy) ReferencedPolicies() []string {
	if p.ExitHandlers == nil {
		return nil
	}
	var names []string
	for _, handle := range []*ExitHandle{p.ExitHandlers.Success, p.ExitHandlers.Warning, p.ExitHandlers.Error} {
		if handle != nil && handle.Run != "" {
			names = append(names, handle.Run)
		}
	}
	return names
}

// ExecutionUnit is a packed entry point: its policy plus the script
// content, raw or base64 depending on the runner.
type ExecutionUnit struct {
	ID              string          `json:"id" yaml:"id"`
	ExecutionPolicy ExecutionPolicy `json:"execution_policy" yaml:"execution_policy"`
	Data            string          `json:"data" yaml:"data"`
	Checksum        string          `json:"checksum,omitempty" yaml:"checksum,omitempty"`
}

// Clone returns a deep copy of the policy.
func (p ExecutionPolicy) Clone() ExecutionPolicy {
	clone := p
	clone.Execute.Options = slices.Clone(p.Execute.Options)
	if p.Execute.EnvironmentVariables != nil {
		clone.Execute.EnvironmentVariables = maps.Clone(p.Execute.EnvironmentVariables)
	}
	if p.ExitHandlers != nil {
		handlers := ExitHandlers{}
		for _, pair := range []struct {
			source *ExitHandle
			target **ExitHandle
		}{
			{p.ExitHandlers.Success, &handlers.Success},
			{p.ExitHandlers.Warning, &handlers.Warning},
			{p.ExitHandlers.Error, &handlers.Error},
		} {
			if pair.source != nil {
				handle := *pair.source
				*pair.target = &handle
			}
		}
		clone.ExitHandlers = &handlers
	}
	return clone
}
