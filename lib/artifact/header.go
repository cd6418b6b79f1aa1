// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

// ExtensionPHP is the identifier of the reference compiler extension.
const ExtensionPHP = "php"

// CompilerExtension names the language extension that compiled a
// package and the extension versions able to install it.
type CompilerExtension struct {
	Extension      string `json:"extension" yaml:"extension"`
	MinimumVersion string `json:"minimum_version,omitempty" yaml:"minimum_version,omitempty"`
	MaximumVersion string `json:"maximum_version,omitempty" yaml:"maximum_version,omitempty"`
}

// RemoteRepository identifies the repository an update source points
// at.
type RemoteRepository struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Host string `json:"host" yaml:"host"`
	SSL  bool   `json:"ssl" yaml:"ssl"`
}

// UpdateSource describes where newer versions of a package can be
// fetched from. Fetching itself is outside this module.
type UpdateSource struct {
	Source     string            `json:"source" yaml:"source"`
	Repository *RemoteRepository `json:"repository,omitempty" yaml:"repository,omitempty"`
}

// Header carries package-wide compile metadata.
type Header struct {
	CompilerExtension CompilerExtension `json:"compiler_extension" yaml:"compiler_extension"`

	// RuntimeConstants maps constant names to their values. Values are
	// run through constant substitution at compile and install time.
	RuntimeConstants map[string]string `json:"runtime_constants,omitempty" yaml:"runtime_constants,omitempty"`

	// Options holds free-form build options. Values are scalars or
	// maps of scalars.
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`

	UpdateSource *UpdateSource `json:"update_source,omitempty" yaml:"update_source,omitempty"`
}
