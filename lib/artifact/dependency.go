// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

// SourceType says how a dependency is resolved.
type SourceType string

const (
	// SourceNone is a dependency expected to already be installed.
	SourceNone SourceType = "none"
	// SourceStatic is a dependency whose artifact is embedded into the
	// compile output at build time.
	SourceStatic SourceType = "static"
	// SourceRemote is a dependency fetched from a remote source at
	// install time.
	SourceRemote SourceType = "remote"
)

// ParseSourceType maps a configuration value to a SourceType. The
// empty string is SourceNone. Unknown values are treated as
// SourceRemote so newer project files still compile.
func ParseSourceType(value string) SourceType {
	switch SourceType(value) {
	case "", SourceNone:
		return SourceNone
	case SourceStatic, "static_linking":
		return SourceStatic
	default:
		return SourceRemote
	}
}

// Dependency points at another package this package requires.
type Dependency struct {
	Name       string     `json:"name" yaml:"name"`
	SourceType SourceType `json:"source_type" yaml:"source_type"`
	Source     string     `json:"source,omitempty" yaml:"source,omitempty"`
	Version    string     `json:"version,omitempty" yaml:"version,omitempty"`
}
