// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"fmt"
	"maps"
	"path"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/ncc/lib/artifact"
)

// DefaultOutputPath is used when a project declares no configurations.
const DefaultOutputPath = "build"

// Resolved is the effective build settings for one configuration.
type Resolved struct {
	// Name is the selected configuration, or empty when the project
	// declares none.
	Name string

	SourcePath   string
	OutputPath   string
	Compression  string
	ExcludeFiles []string

	// Constants is the merged runtime constant table. Project-level
	// constants win over configuration-level ones.
	Constants map[string]string

	// Options is the merged header option table. Configuration-level
	// options win over build-level ones, which win over project-level.
	Options map[string]any

	Dependencies []artifact.Dependency
}

// Configuration resolves the named build configuration. An empty name
// selects build.default_configuration, then the first declared
// configuration.
func (p *Project) Configuration(name string) (*Resolved, error) {
	var selected *Configuration
	if name == "" {
		name = p.Build.DefaultConfiguration
	}
	if name == "" && len(p.Build.Configurations) > 0 {
		name = p.Build.Configurations[0].Name
	}
	if name != "" {
		for i := range p.Build.Configurations {
			if p.Build.Configurations[i].Name == name {
				selected = &p.Build.Configurations[i]
				break
			}
		}
		if selected == nil {
			return nil, artifact.Configurationf("build.configurations", "configuration %q is not defined", name)
		}
	}

	resolved := &Resolved{
		Name:        name,
		SourcePath:  filepath.Clean(p.Build.SourcePath),
		OutputPath:  DefaultOutputPath,
		Compression: p.Build.Compression,
		Constants:   make(map[string]string),
		Options:     make(map[string]any),
	}

	maps.Copy(resolved.Options, p.Project.Options)
	maps.Copy(resolved.Options, p.Build.Options)
	resolved.ExcludeFiles = append(resolved.ExcludeFiles, p.Build.ExcludeFiles...)
	for _, dependency := range p.Build.Dependencies {
		resolved.Dependencies = append(resolved.Dependencies, dependency.Artifact())
	}

	if selected != nil {
		resolved.OutputPath = selected.OutputPath
		maps.Copy(resolved.Constants, selected.DefineConstants)
		maps.Copy(resolved.Options, selected.Options)
		resolved.ExcludeFiles = append(resolved.ExcludeFiles, selected.ExcludeFiles...)
		for _, dependency := range selected.Dependencies {
			resolved.Dependencies = append(resolved.Dependencies, dependency.Artifact())
		}
	}
	maps.Copy(resolved.Constants, p.Build.DefineConstants)

	if p.Build.Main != "" {
		resolved.Options["main"] = p.Build.Main
	}
	return resolved, nil
}

// Excluded reports whether relative (a slash-separated path relative
// to the project root) matches any exclude pattern. A pattern matches
// the whole path, any leading directory of it, or any single path
// element.
func (r *Resolved) Excluded(relative string) bool {
	segments := strings.Split(filepath.ToSlash(relative), "/")
	for _, pattern := range r.ExcludeFiles {
		pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		for i := range segments {
			if matched, _ := path.Match(pattern, segments[i]); matched {
				return true
			}
			if matched, _ := path.Match(pattern, strings.Join(segments[:i+1], "/")); matched {
				return true
			}
		}
	}
	return false
}

// String describes the configuration for log messages.
func (r *Resolved) String() string {
	if r.Name == "" {
		return fmt.Sprintf("default (output %s)", r.OutputPath)
	}
	return fmt.Sprintf("%s (output %s)", r.Name, r.OutputPath)
}
