// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// InstallationPaths is the on-disk layout of one installed package.
type InstallationPaths struct {
	// Installation is the package's root directory.
	Installation string
	// Bin holds generated entry points: the autoload manifest and
	// installed execution units.
	Bin string
	// Source holds reconstructed components and resources.
	Source string
	// Data holds the binary-encoded metadata files.
	Data string
}

// NewInstallationPaths derives the standard layout under root.
func NewInstallationPaths(root string) InstallationPaths {
	return InstallationPaths{
		Installation: root,
		Bin:          filepath.Join(root, "bin"),
		Source:       filepath.Join(root, "src"),
		Data:         filepath.Join(root, "data"),
	}
}

// Create makes every directory in the layout.
func (p InstallationPaths) Create() error {
	for _, directory := range []string{p.Installation, p.Bin, p.Source, p.Data} {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", directory, err)
		}
	}
	return nil
}

// DataFile returns the path of a named data file.
func (p InstallationPaths) DataFile(name string) string {
	return filepath.Join(p.Data, name)
}
