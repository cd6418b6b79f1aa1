// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/codec"
	"github.com/bureau-foundation/ncc/lib/config"
	"github.com/bureau-foundation/ncc/lib/fsutil"
)

// Data file names, relative to the installation's data directory.
const (
	DataAssembly     = "assembly"
	DataExtension    = "ext"
	DataConstants    = "const"
	DataDependencies = "dependencies"
	DataExec         = "exec"
)

func writeDataFiles(paths config.InstallationPaths, pkg *artifact.Package) error {
	constants := pkg.Header.RuntimeConstants
	if constants == nil {
		constants = map[string]string{}
	}
	dependencies := pkg.Dependencies
	if dependencies == nil {
		dependencies = []artifact.Dependency{}
	}
	for _, file := range []struct {
		name  string
		value any
	}{
		{DataAssembly, pkg.Assembly},
		{DataExtension, pkg.Header.CompilerExtension},
		{DataConstants, constants},
		{DataDependencies, dependencies},
	} {
		if err := writeData(paths.DataFile(file.name), file.value); err != nil {
			return err
		}
	}
	return nil
}

func writeData(path string, value any) error {
	encoded, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := fsutil.WriteFileAtomic(path, encoded, 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", artifact.ErrIO, path, err)
	}
	return nil
}

func readData(path string, value any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", artifact.ErrFileNotFound, path)
		}
		return fmt.Errorf("%w: reading %s: %v", artifact.ErrIO, path, err)
	}
	if err := codec.Unmarshal(data, value); err != nil {
		return fmt.Errorf("%w: %s: %v", artifact.ErrDecode, path, err)
	}
	return nil
}

// ReadAssembly reads the assembly data file of an installation.
func ReadAssembly(paths config.InstallationPaths) (*artifact.Assembly, error) {
	var assembly artifact.Assembly
	if err := readData(paths.DataFile(DataAssembly), &assembly); err != nil {
		return nil, err
	}
	return &assembly, nil
}

// ReadConstants reads the install-resolved runtime constants.
func ReadConstants(paths config.InstallationPaths) (map[string]string, error) {
	var constants map[string]string
	if err := readData(paths.DataFile(DataConstants), &constants); err != nil {
		return nil, err
	}
	return constants, nil
}

// ReadUnits reads the policy name → descriptor path map.
func ReadUnits(paths config.InstallationPaths) (map[string]string, error) {
	var units map[string]string
	if err := readData(paths.DataFile(DataExec), &units); err != nil {
		return nil, err
	}
	return units, nil
}
