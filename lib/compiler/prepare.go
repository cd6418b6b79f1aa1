// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/fsutil"
	"github.com/bureau-foundation/ncc/lib/pkglock"
)

// LibsDirectory is the output subdirectory statically linked
// dependencies are copied into.
const LibsDirectory = "libs"

// Prepare validates the project, selects the named build
// configuration (empty for the default), scans the source tree, and
// resolves statically linked dependencies. It may be called again to
// start over.
func (b *Builder) Prepare(configurationName string) error {
	if err := b.project.Validate(); err != nil {
		return err
	}

	extension := b.project.Project.Compiler.Extension
	if _, supported := extensions[extension]; !supported {
		return fmt.Errorf("%w: %q", artifact.ErrUnsupportedExtension, extension)
	}

	configuration, err := b.project.Configuration(configurationName)
	if err != nil {
		return err
	}

	pkg := &artifact.Package{
		Header: artifact.Header{
			CompilerExtension: b.project.Project.Compiler,
			RuntimeConstants:  configuration.Constants,
			Options:           configuration.Options,
			UpdateSource:      b.project.Project.UpdateSource,
		},
		Assembly:     b.project.Assembly,
		Dependencies: make([]artifact.Dependency, 0, len(configuration.Dependencies)),
	}
	if len(pkg.Header.RuntimeConstants) == 0 {
		pkg.Header.RuntimeConstants = nil
	}
	if len(pkg.Header.Options) == 0 {
		pkg.Header.Options = nil
	}
	if pkg.Header.UpdateSource != nil {
		source := *pkg.Header.UpdateSource
		pkg.Header.UpdateSource = &source
	}

	b.state = StateCreated
	b.configuration = configuration
	b.pkg = pkg
	b.componentFiles = nil
	b.resourceFiles = nil

	b.logger.Info("preparing build",
		"package", pkg.Assembly.Package,
		"version", pkg.Assembly.Version,
		"configuration", configuration.String(),
	)

	if err := b.scan(); err != nil {
		return err
	}
	if err := b.resolveDependencies(configuration.Dependencies); err != nil {
		return err
	}
	if len(pkg.Dependencies) == 0 {
		pkg.Dependencies = nil
	}

	b.state = StatePrepared
	b.logger.Debug("build prepared",
		"components", len(b.componentFiles),
		"resources", len(b.resourceFiles),
		"dependencies", len(pkg.Dependencies),
	)
	return nil
}

// scan walks the source directory without following symlinks, sorting
// files into components (matching a source pattern) and resources.
// Build output inside the source tree is never scanned.
func (b *Builder) scan() error {
	sourceRoot := filepath.Join(b.directory, b.configuration.SourcePath)
	info, err := os.Stat(sourceRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: source directory %s", artifact.ErrFileNotFound, sourceRoot)
		}
		return fmt.Errorf("%w: %v", artifact.ErrIO, err)
	}
	if !info.IsDir() {
		return artifact.Configurationf("build.source_path", "%s is not a directory", sourceRoot)
	}

	outputDirectory := filepath.Clean(b.outputDirectory())
	libsDirectory := filepath.Join(outputDirectory, LibsDirectory)
	outputFile := b.outputFile()

	patterns := b.sourcePatterns()
	return filepath.WalkDir(sourceRoot, func(current string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: scanning %s: %v", artifact.ErrIO, current, err)
		}
		relative, err := filepath.Rel(b.directory, current)
		if err != nil {
			return fmt.Errorf("%w: %v", artifact.ErrIO, err)
		}
		relative = filepath.ToSlash(relative)

		if entry.IsDir() {
			if current != sourceRoot && (current == outputDirectory || current == libsDirectory) {
				b.logger.Debug("skipped build output", "path", relative)
				return filepath.SkipDir
			}
			if current != sourceRoot && b.configuration.Excluded(relative) {
				b.logger.Debug("excluded directory", "path", relative)
				return filepath.SkipDir
			}
			return nil
		}
		if current == outputFile {
			b.logger.Debug("skipped build output", "path", relative)
			return nil
		}
		if !entry.Type().IsRegular() {
			b.logger.Debug("skipped non-regular file", "path", relative, "type", entry.Type().String())
			return nil
		}
		if b.configuration.Excluded(relative) {
			b.logger.Debug("excluded file", "path", relative)
			return nil
		}

		if matchesAny(patterns, path.Base(relative)) {
			b.componentFiles = append(b.componentFiles, relative)
		} else {
			b.resourceFiles = append(b.resourceFiles, relative)
		}
		return nil
	})
}

func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if matched, _ := path.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// resolveDependencies copies statically linked dependencies into the
// output's libs directory and records every dependency in the package.
func (b *Builder) resolveDependencies(dependencies []artifact.Dependency) error {
	for _, dependency := range dependencies {
		if dependency.SourceType != artifact.SourceStatic {
			b.pkg.Dependencies = append(b.pkg.Dependencies, dependency)
			continue
		}
		linked, err := b.linkStatic(dependency)
		if err != nil {
			return err
		}
		b.pkg.Dependencies = append(b.pkg.Dependencies, linked)
	}
	return nil
}

func (b *Builder) linkStatic(dependency artifact.Dependency) (artifact.Dependency, error) {
	if b.options.Lock == nil {
		return dependency, fmt.Errorf("%w: cannot statically link %s", artifact.ErrLockUnavailable, dependency.Name)
	}
	entry, found := b.options.Lock.GetPackage(dependency.Name)
	if !found {
		return dependency, fmt.Errorf("%w: %s is not installed", artifact.ErrVersionNotFound, dependency.Name)
	}
	requested := dependency.Version
	if requested == "" {
		requested = pkglock.Latest
	}
	version, err := entry.GetVersion(requested)
	if err != nil {
		return dependency, err
	}
	if version.Artifact == "" || !fsutil.Exists(version.Artifact) {
		return dependency, fmt.Errorf("%w: archived artifact for %s=%s", artifact.ErrFileNotFound, dependency.Name, version.Version)
	}

	libName := fmt.Sprintf("%s=%s.lib", dependency.Name, version.Version)
	destination := filepath.Join(b.outputDirectory(), LibsDirectory, libName)
	if err := fsutil.CopyFile(version.Artifact, destination); err != nil {
		return dependency, fmt.Errorf("%w: linking %s: %v", artifact.ErrIO, dependency.Name, err)
	}

	b.logger.Debug("statically linked dependency",
		"dependency", dependency.Name,
		"version", version.Version,
		"destination", destination,
	)
	linked := dependency
	linked.Version = version.Version
	linked.Source = path.Join(LibsDirectory, libName)
	return linked, nil
}

func (b *Builder) outputDirectory() string {
	return filepath.Join(b.directory, b.configuration.OutputPath)
}

func (b *Builder) outputFile() string {
	return filepath.Join(b.outputDirectory(), b.pkg.Assembly.Package+artifact.FileExtension)
}
