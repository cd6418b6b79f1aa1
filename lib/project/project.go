// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import "github.com/bureau-foundation/ncc/lib/artifact"

// Project is the root of a project file.
type Project struct {
	Project           Settings                   `json:"project" yaml:"project"`
	Assembly          artifact.Assembly          `json:"assembly" yaml:"assembly"`
	Build             Build                      `json:"build" yaml:"build"`
	ExecutionPolicies []artifact.ExecutionPolicy `json:"execution_policies,omitempty" yaml:"execution_policies,omitempty"`
}

// Settings holds project-wide header values.
type Settings struct {
	Compiler     artifact.CompilerExtension `json:"compiler" yaml:"compiler"`
	Options      map[string]any             `json:"options,omitempty" yaml:"options,omitempty"`
	UpdateSource *artifact.UpdateSource     `json:"update_source,omitempty" yaml:"update_source,omitempty"`
}

// Build holds the build settings shared by every configuration.
type Build struct {
	// SourcePath is the directory, relative to the project root, that
	// is scanned for components and resources.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// DefaultConfiguration names the configuration used when the
	// caller does not select one.
	DefaultConfiguration string `json:"default_configuration,omitempty" yaml:"default_configuration,omitempty"`

	// Main names the execution policy that runs by default.
	Main string `json:"main,omitempty" yaml:"main,omitempty"`

	// Compression overrides the system default: zstd, lz4, or none.
	Compression string `json:"compression,omitempty" yaml:"compression,omitempty"`

	ExcludeFiles    []string          `json:"exclude_files,omitempty" yaml:"exclude_files,omitempty"`
	DefineConstants map[string]string `json:"define_constants,omitempty" yaml:"define_constants,omitempty"`
	Options         map[string]any    `json:"options,omitempty" yaml:"options,omitempty"`
	Dependencies    []Dependency      `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Configurations  []Configuration   `json:"configurations,omitempty" yaml:"configurations,omitempty"`
}

// Configuration is a named variant of the build settings.
type Configuration struct {
	Name            string            `json:"name" yaml:"name"`
	OutputPath      string            `json:"output_path" yaml:"output_path"`
	ExcludeFiles    []string          `json:"exclude_files,omitempty" yaml:"exclude_files,omitempty"`
	DefineConstants map[string]string `json:"define_constants,omitempty" yaml:"define_constants,omitempty"`
	Options         map[string]any    `json:"options,omitempty" yaml:"options,omitempty"`
	Dependencies    []Dependency      `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Dependency is a dependency as written in a project file. SourceType
// is free-form here and normalized by [artifact.ParseSourceType].
type Dependency struct {
	Name       string `json:"name" yaml:"name"`
	SourceType string `json:"source_type,omitempty" yaml:"source_type,omitempty"`
	Source     string `json:"source,omitempty" yaml:"source,omitempty"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Artifact converts d to its package form.
func (d Dependency) Artifact() artifact.Dependency {
	return artifact.Dependency{
		Name:       d.Name,
		SourceType: artifact.ParseSourceType(d.SourceType),
		Source:     d.Source,
		Version:    d.Version,
	}
}

// Policy returns the execution policy named name.
func (p *Project) Policy(name string) (*artifact.ExecutionPolicy, bool) {
	for i := range p.ExecutionPolicies {
		if p.ExecutionPolicies[i].Name == name {
			return &p.ExecutionPolicies[i], true
		}
	}
	return nil, false
}
