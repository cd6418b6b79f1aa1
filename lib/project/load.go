// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/codec"
	"github.com/bureau-foundation/ncc/lib/fsutil"
)

// Project file names, in lookup order.
const (
	FileYAML = "project.yaml"
	FileJSON = "project.json"
)

// Format is a project file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatOf returns the format implied by a file name's extension.
func FormatOf(path string) Format {
	switch filepath.Ext(path) {
	case ".json", ".jsonc":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Parse decodes project bytes in the given format. JSON input may
// contain // and /* */ comments and trailing commas.
func Parse(data []byte, format Format) (*Project, error) {
	var project Project
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(jsonc.ToJSON(data), &project); err != nil {
			return nil, fmt.Errorf("%w: parsing project: %v", artifact.ErrConfiguration, err)
		}
	default:
		if err := yaml.Unmarshal(data, &project); err != nil {
			return nil, fmt.Errorf("%w: parsing project: %v", artifact.ErrConfiguration, err)
		}
	}
	project.normalizeOptions()
	return &project, nil
}

// normalizeOptions stores integer option values as int64, the form
// they take after a package round trip.
func (p *Project) normalizeOptions() {
	tables := []map[string]any{p.Project.Options, p.Build.Options}
	for _, configuration := range p.Build.Configurations {
		tables = append(tables, configuration.Options)
	}
	for _, table := range tables {
		for key, value := range table {
			table[key] = codec.NormalizeValue(value)
		}
	}
}

// ReadFile reads and parses a single project file.
func ReadFile(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", artifact.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", artifact.ErrIO, path, err)
	}

	project, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return project, nil
}

// Find returns the project file inside directory.
func Find(directory string) (string, error) {
	for _, name := range []string{FileYAML, FileJSON} {
		path := filepath.Join(directory, name)
		if fsutil.Exists(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no %s or %s in %s", artifact.ErrFileNotFound, FileYAML, FileJSON, directory)
}

// Load finds and parses the project file in directory.
func Load(directory string) (*Project, error) {
	path, err := Find(directory)
	if err != nil {
		return nil, err
	}
	return ReadFile(path)
}

// Save writes p to path in the format implied by its extension.
func (p *Project) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch FormatOf(path) {
	case FormatJSON:
		data, err = json.MarshalIndent(p, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	default:
		data, err = yaml.Marshal(p)
	}
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", artifact.ErrIO, path, err)
	}
	return nil
}
