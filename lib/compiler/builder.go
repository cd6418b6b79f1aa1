// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/clock"
	"github.com/bureau-foundation/ncc/lib/config"
	"github.com/bureau-foundation/ncc/lib/phpast"
	"github.com/bureau-foundation/ncc/lib/pkglock"
	"github.com/bureau-foundation/ncc/lib/project"
)

// State is a Builder's progress through a compile.
type State int

const (
	StateCreated State = iota
	StatePrepared
	StateExecutionUnitsCompiled
	StateComponentsCompiled
	StateResourcesCompiled
	StateConstantsCompiled
	StateWritten
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePrepared:
		return "prepared"
	case StateExecutionUnitsCompiled:
		return "execution units compiled"
	case StateComponentsCompiled:
		return "components compiled"
	case StateResourcesCompiled:
		return "resources compiled"
	case StateConstantsCompiled:
		return "constants compiled"
	case StateWritten:
		return "written"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Parser turns source bytes into a JSON-compatible tree.
type Parser interface {
	Parse(source []byte) (any, error)
}

// Lookup finds installed packages for static linking. *pkglock.Lock
// implements it.
type Lookup interface {
	GetPackage(name string) (*pkglock.Entry, bool)
}

// Options configures a Builder. The zero value compiles php projects
// with the real clock, no logging, and no static linking.
type Options struct {
	Logger *slog.Logger
	Clock  clock.Clock

	// Parser overrides the extension's default parser.
	Parser Parser

	// Lock resolves statically linked dependencies. Nil makes any
	// static dependency fail with ErrLockUnavailable.
	Lock Lookup

	// SourcePatterns overrides the extension's source file patterns.
	SourcePatterns []string

	// Compression applies when the project does not set
	// build.compression.
	Compression string

	// CompactKeys writes the artifact with bytecode keys.
	CompactKeys bool

	// InstallPaths, when set, resolves where the package would be
	// installed on this machine. Those paths are replaced by install
	// tokens wherever constants are substituted so the artifact does
	// not embed this machine's layout.
	InstallPaths PathResolver
}

// PathResolver maps a compiler extension and package id to an
// installation layout. *config.Config implements it.
type PathResolver interface {
	InstallationPaths(extension, packageID string) config.InstallationPaths
}

// extensionDefaults describes a supported compiler extension.
type extensionDefaults struct {
	sourcePatterns []string
	parser         Parser
}

var extensions = map[string]extensionDefaults{
	artifact.ExtensionPHP: {
		sourcePatterns: []string{"*.php"},
		parser:         phpast.Parser{},
	},
}

// Builder compiles one project. It is not safe for concurrent use.
type Builder struct {
	directory string
	project   *project.Project
	options   Options
	logger    *slog.Logger
	clock     clock.Clock

	state         State
	configuration *project.Resolved
	pkg           *artifact.Package

	// Scanned files, relative to directory with forward slashes.
	componentFiles []string
	resourceFiles  []string
}

// New returns a Builder for the project rooted at directory.
func New(directory string, proj *project.Project, options Options) *Builder {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{
		directory: directory,
		project:   proj,
		options:   options,
		logger:    logger,
		clock:     clock.OrReal(options.Clock),
		state:     StateCreated,
	}
}

// State returns the builder's current state.
func (b *Builder) State() State { return b.state }

// Configuration returns the resolved build configuration, or nil
// before Prepare.
func (b *Builder) Configuration() *project.Resolved { return b.configuration }

// Package returns the package under construction, or nil before
// Prepare.
func (b *Builder) Package() *artifact.Package { return b.pkg }

func (b *Builder) requirePrepared() error {
	if b.state < StatePrepared || b.pkg == nil {
		return artifact.ErrNotPrepared
	}
	return nil
}

func (b *Builder) parser() Parser {
	if b.options.Parser != nil {
		return b.options.Parser
	}
	return extensions[b.pkg.Header.CompilerExtension.Extension].parser
}

func (b *Builder) sourcePatterns() []string {
	if b.options.SourcePatterns != nil {
		return b.options.SourcePatterns
	}
	return extensions[b.pkg.Header.CompilerExtension.Extension].sourcePatterns
}
