// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/codec"
	"github.com/bureau-foundation/ncc/lib/config"
	"github.com/bureau-foundation/ncc/lib/fsutil"
)

// UnitsDirectory is the bin subdirectory installed units live in.
const UnitsDirectory = "units"

// DescriptorExtension is the file extension of unit descriptors.
const DescriptorExtension = ".unit"

// Runner packs and installs execution units for one interpreter.
type Runner interface {
	// Name returns the runner identifier.
	Name() artifact.Runner

	// ProcessUnit reads the policy's target script at path and returns
	// a unit carrying it. The unit's policy has its target cleared.
	ProcessUnit(path string, policy artifact.ExecutionPolicy) (artifact.ExecutionUnit, error)

	// InstallUnit writes the unit's script under paths.Bin and returns
	// the path of its descriptor.
	InstallUnit(unit artifact.ExecutionUnit, paths config.InstallationPaths) (string, error)
}

// ProcessPreparer is implemented by runners that execute units
// directly.
type ProcessPreparer interface {
	PrepareProcess(descriptorPath string) (*Process, error)
}

// Descriptor is the installed form of an execution unit.
type Descriptor struct {
	Name   string                   `json:"name"`
	Runner artifact.Runner          `json:"runner"`
	Script string                   `json:"script"`
	Policy artifact.ExecutionPolicy `json:"policy"`
}

// ReadDescriptor loads a unit descriptor written by InstallUnit.
func ReadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: unit descriptor %s", artifact.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", artifact.ErrIO, path, err)
	}
	var descriptor Descriptor
	if err := codec.Unmarshal(data, &descriptor); err != nil {
		return nil, fmt.Errorf("%w: unit descriptor %s: %v", artifact.ErrDecode, path, err)
	}
	return &descriptor, nil
}

// scriptRunner is the shared packing and installation logic. base64
// selects byte-safe storage.
type scriptRunner struct {
	name      artifact.Runner
	extension string
	base64    bool
}

func (r scriptRunner) Name() artifact.Runner { return r.name }

func (r scriptRunner) ProcessUnit(path string, policy artifact.ExecutionPolicy) (artifact.ExecutionUnit, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return artifact.ExecutionUnit{}, fmt.Errorf("%w: execution policy %q target %s", artifact.ErrFileNotFound, policy.Name, path)
		}
		return artifact.ExecutionUnit{}, fmt.Errorf("%w: reading %s: %v", artifact.ErrIO, path, err)
	}

	policy = policy.Clone()
	policy.Runner = r.name
	policy.Execute.Target = ""
	if policy.Execute.WorkingDirectory == "" {
		policy.Execute.WorkingDirectory = artifact.DefaultWorkingDirectory
	}

	var data string
	if r.base64 {
		data = base64.StdEncoding.EncodeToString(content)
	} else {
		if !utf8.Valid(content) {
			return artifact.ExecutionUnit{}, fmt.Errorf("%w: %s is not valid UTF-8 text", artifact.ErrDecode, path)
		}
		data = string(content)
	}

	unit := artifact.ExecutionUnit{
		ID:              policy.Name,
		ExecutionPolicy: policy,
		Data:            data,
	}
	unit.UpdateChecksum()
	return unit, nil
}

func (r scriptRunner) script(unit artifact.ExecutionUnit) ([]byte, error) {
	if !r.base64 {
		return []byte(unit.Data), nil
	}
	content, err := base64.StdEncoding.DecodeString(unit.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: execution unit %q: %v", artifact.ErrDecode, unit.ExecutionPolicy.Name, err)
	}
	return content, nil
}

func (r scriptRunner) InstallUnit(unit artifact.ExecutionUnit, paths config.InstallationPaths) (string, error) {
	name := unit.ExecutionPolicy.Name
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", artifact.Configurationf("execution_policies.name", "%q cannot be used as a file name", name)
	}

	content, err := r.script(unit)
	if err != nil {
		return "", err
	}

	directory := filepath.Join(paths.Bin, UnitsDirectory)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", artifact.ErrIO, directory, err)
	}

	mode := os.FileMode(0644)
	if r.base64 {
		mode = 0755
	}
	scriptPath := filepath.Join(directory, name+"."+r.extension)
	if err := fsutil.WriteFileAtomic(scriptPath, content, mode); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", artifact.ErrIO, scriptPath, err)
	}

	encoded, err := codec.Marshal(Descriptor{
		Name:   name,
		Runner: r.name,
		Script: scriptPath,
		Policy: unit.ExecutionPolicy,
	})
	if err != nil {
		return "", fmt.Errorf("encoding unit descriptor %q: %w", name, err)
	}
	descriptorPath := filepath.Join(directory, name+DescriptorExtension)
	if err := fsutil.WriteFileAtomic(descriptorPath, encoded, 0644); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", artifact.ErrIO, descriptorPath, err)
	}
	return descriptorPath, nil
}

// phpRunner installs php units as text for the autoloader to pick up.
type phpRunner struct {
	scriptRunner
}

// interpretedRunner runs its units through an interpreter binary,
// the first of interpreters found on PATH.
type interpretedRunner struct {
	scriptRunner
	interpreters []string
}

var registry = map[artifact.Runner]Runner{
	artifact.RunnerPHP: phpRunner{scriptRunner{name: artifact.RunnerPHP, extension: "php"}},
	artifact.RunnerBash: interpretedRunner{
		scriptRunner: scriptRunner{name: artifact.RunnerBash, extension: "sh", base64: true},
		interpreters: []string{"bash"},
	},
	artifact.RunnerPython: interpretedRunner{
		scriptRunner: scriptRunner{name: artifact.RunnerPython, extension: "py", base64: true},
		interpreters: []string{"python", "python3"},
	},
	artifact.RunnerPython2: interpretedRunner{
		scriptRunner: scriptRunner{name: artifact.RunnerPython2, extension: "py", base64: true},
		interpreters: []string{"python2"},
	},
	artifact.RunnerPython3: interpretedRunner{
		scriptRunner: scriptRunner{name: artifact.RunnerPython3, extension: "py", base64: true},
		interpreters: []string{"python3"},
	},
	artifact.RunnerPerl: interpretedRunner{
		scriptRunner: scriptRunner{name: artifact.RunnerPerl, extension: "pl", base64: true},
		interpreters: []string{"perl"},
	},
	artifact.RunnerLua: interpretedRunner{
		scriptRunner: scriptRunner{name: artifact.RunnerLua, extension: "lua", base64: true},
		interpreters: []string{"lua", "lua5.4", "lua5.3"},
	},
}

// For returns the runner for name.
func For(name artifact.Runner) (Runner, error) {
	runner, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", artifact.ErrUnsupportedRunner, name)
	}
	return runner, nil
}
