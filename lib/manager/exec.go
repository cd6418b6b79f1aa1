// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/config"
	"github.com/bureau-foundation/ncc/lib/installer"
	"github.com/bureau-foundation/ncc/lib/runner"
)

// Execute runs an installed package's execution policy and returns
// the exit code of the run. An empty version selects the latest; an
// empty policy selects the package's main policy. args are appended to
// the first process's command line.
//
// After each process exits, the policy's exit handler for the code
// (0 success, 1 warning, anything else error) is applied: its message
// is logged, Run chains to another policy of the same package, and
// EndProcess stops the chain with the handler's ExitCode.
func (m *Manager) Execute(ctx context.Context, name, version, policy string, args []string) (int, error) {
	lock := m.store.LoadOrEmpty()
	entry, found := lock.GetPackage(name)
	if !found {
		return -1, fmt.Errorf("%w: %s", artifact.ErrPackageNotFound, name)
	}
	selected, err := entry.GetVersion(version)
	if err != nil {
		return -1, err
	}
	if policy == "" {
		policy = selected.MainExecutionPolicy
	}
	if policy == "" {
		return -1, artifact.Configurationf("execution_policy", "%s=%s has no main execution policy; name one", name, selected.Version)
	}

	paths := config.NewInstallationPaths(selected.Location)
	installed, err := installer.ReadAssembly(paths)
	if err != nil {
		return -1, err
	}
	if installed.Version != selected.Version {
		return -1, fmt.Errorf("%w: %s=%s is registered but %s is installed at %s",
			artifact.ErrVersionNotFound, name, selected.Version, installed.Version, selected.Location)
	}
	units, err := installer.ReadUnits(paths)
	if err != nil {
		return -1, err
	}

	logger := m.logger.With("package", name, "version", selected.Version)
	visited := make(map[string]bool)
	for {
		if visited[policy] {
			return -1, artifact.Configurationf("execution_policies", "exit handlers of %s loop back to %q", name, policy)
		}
		visited[policy] = true

		descriptorPath, ok := units[policy]
		if !ok {
			return -1, fmt.Errorf("%w: execution policy %q in %s=%s", artifact.ErrFileNotFound, policy, name, selected.Version)
		}
		process, err := m.prepare(descriptorPath)
		if err != nil {
			return -1, err
		}
		process.Args = append(process.Args, args...)
		args = nil

		if process.Policy.Message != "" {
			logger.Info(process.Policy.Message, "policy", policy)
		}
		code, err := runner.Execute(ctx, process, m.stdout, m.stderr, logger)
		if err != nil {
			return code, err
		}
		logger.Debug("process exited", "policy", policy, "exit_code", code)

		handle := process.Policy.ExitHandlers.ForExitCode(code)
		if handle == nil {
			return code, nil
		}
		if handle.Message != "" {
			logger.Log(ctx, exitLevel(code), handle.Message, "policy", policy, "exit_code", code)
		}
		if handle.EndProcess {
			return handle.ExitCode, nil
		}
		if handle.Run == "" {
			return code, nil
		}
		policy = handle.Run
	}
}

func (m *Manager) prepare(descriptorPath string) (*runner.Process, error) {
	descriptor, err := runner.ReadDescriptor(descriptorPath)
	if err != nil {
		return nil, err
	}
	implementation, err := runner.For(descriptor.Runner)
	if err != nil {
		return nil, err
	}
	preparer, ok := implementation.(runner.ProcessPreparer)
	if !ok {
		return nil, fmt.Errorf("%w: %s units are loaded through the autoloader and cannot be executed directly",
			artifact.ErrUnsupportedRunner, descriptor.Runner)
	}
	return preparer.PrepareProcess(descriptorPath)
}

func exitLevel(code int) slog.Level {
	switch code {
	case 0:
		return slog.LevelInfo
	case 1:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
