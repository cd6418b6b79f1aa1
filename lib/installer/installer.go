// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/config"
	"github.com/bureau-foundation/ncc/lib/constants"
	"github.com/bureau-foundation/ncc/lib/fsutil"
	"github.com/bureau-foundation/ncc/lib/pkglock"
	"github.com/bureau-foundation/ncc/lib/runner"
)

// State is an Installer's progress through an install.
type State int

const (
	StateCreated State = iota
	StatePreInstalled
	StateComponentsInstalled
	StateResourcesInstalled
	StateExecutionUnitsInstalled
	StatePostInstalled
	StateRegistered
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePreInstalled:
		return "pre-installed"
	case StateComponentsInstalled:
		return "components installed"
	case StateResourcesInstalled:
		return "resources installed"
	case StateExecutionUnitsInstalled:
		return "execution units installed"
	case StatePostInstalled:
		return "post-installed"
	case StateRegistered:
		return "registered"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Progress receives a callback after every install step. total is
// 3 plus the number of components, resources, and execution units.
type Progress interface {
	Step(done, total int, label string)
}

// PathResolver maps a compiler extension and package id to an
// installation layout. *config.Config implements it.
type PathResolver interface {
	InstallationPaths(extension, packageID string) config.InstallationPaths
}

// Options configures an Installer.
type Options struct {
	Logger *slog.Logger

	// Paths resolves installation layouts. Required.
	Paths PathResolver

	// Extensions overrides the default extension registry.
	Extensions map[string]Extension

	Progress Progress

	// Lock, when set, receives the installed version.
	Lock *pkglock.Lock

	// ArchiveDirectory, when set, receives a copy of the artifact as
	// {id}={version}.ncc, recorded in the lock for static linking.
	// Otherwise the lock records the artifact path as given.
	ArchiveDirectory string
}

// Result describes a completed install.
type Result struct {
	Package *artifact.Package
	Paths   config.InstallationPaths

	// Units maps execution policy names to installed descriptor paths.
	Units map[string]string

	// Artifact is the path recorded in the lock for this version.
	Artifact string
}

// Installer installs package artifacts.
type Installer struct {
	logger     *slog.Logger
	paths      PathResolver
	extensions map[string]Extension
	progress   Progress
	lock       *pkglock.Lock
	archive    string

	state State
	done  int
	total int
}

// New returns an Installer.
func New(options Options) *Installer {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	extensions := options.Extensions
	if extensions == nil {
		extensions = DefaultExtensions()
	}
	return &Installer{
		logger:     logger,
		paths:      options.Paths,
		extensions: extensions,
		progress:   options.Progress,
		lock:       options.Lock,
		archive:    options.ArchiveDirectory,
		state:      StateCreated,
	}
}

// State returns the state reached by the most recent install.
func (i *Installer) State() State { return i.state }

// Install loads the artifact at artifactPath and installs it.
func (i *Installer) Install(ctx context.Context, artifactPath string) (*Result, error) {
	pkg, err := artifact.Load(artifactPath)
	if err != nil {
		return nil, err
	}
	return i.InstallPackage(ctx, pkg, artifactPath)
}

// InstallPackage installs an already-loaded package. artifactPath is
// the file pkg was loaded from; it is archived and recorded in the
// lock.
func (i *Installer) InstallPackage(ctx context.Context, pkg *artifact.Package, artifactPath string) (*Result, error) {
	i.state = StateCreated
	if i.paths == nil {
		return nil, fmt.Errorf("%w: installer has no path resolver", artifact.ErrConfiguration)
	}

	extensionName := pkg.Header.CompilerExtension.Extension
	extension, ok := i.extensions[extensionName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", artifact.ErrUnsupportedExtension, extensionName)
	}

	paths := i.paths.InstallationPaths(extensionName, pkg.Assembly.Package)
	logger := i.logger.With("package", pkg.Assembly.Package, "version", pkg.Assembly.Version)
	logger.Info("installing package", "path", paths.Installation)

	i.done = 0
	i.total = 3 + len(pkg.Components) + len(pkg.Resources) + len(pkg.ExecutionUnits)

	// An existing installation is only cleared once the whole package
	// is known to be intact.
	if err := verifyChecksums(pkg); err != nil {
		return nil, err
	}
	if err := i.prepareLayout(paths); err != nil {
		return nil, err
	}

	substituter := &constants.Substituter{Paths: &paths}
	substituter.ApplyPackage(pkg)

	if err := writeDataFiles(paths, pkg); err != nil {
		return nil, err
	}
	if err := extension.PreInstall(paths); err != nil {
		return nil, fmt.Errorf("pre-install hook: %w", err)
	}
	i.state = StatePreInstalled
	i.step("data files")

	for index := range pkg.Components {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := i.installComponent(extension, paths, &pkg.Components[index]); err != nil {
			return nil, err
		}
		logger.Debug("installed component", "component", pkg.Components[index].Name)
		i.step(pkg.Components[index].Name)
	}
	i.state = StateComponentsInstalled

	for index := range pkg.Resources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := installResource(paths, &pkg.Resources[index]); err != nil {
			return nil, err
		}
		logger.Debug("installed resource", "resource", pkg.Resources[index].Name)
		i.step(pkg.Resources[index].Name)
	}
	i.state = StateResourcesInstalled

	units := make(map[string]string, len(pkg.ExecutionUnits))
	for index := range pkg.ExecutionUnits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		unit := &pkg.ExecutionUnits[index]
		descriptor, err := installUnit(paths, unit)
		if err != nil {
			return nil, err
		}
		units[unit.ExecutionPolicy.Name] = descriptor
		logger.Debug("installed execution unit", "policy", unit.ExecutionPolicy.Name, "descriptor", descriptor)
		i.step(unit.ExecutionPolicy.Name)
	}
	if err := writeData(paths.DataFile(DataExec), units); err != nil {
		return nil, err
	}
	i.state = StateExecutionUnitsInstalled

	if err := extension.PostInstall(paths, logger); err != nil {
		return nil, fmt.Errorf("post-install hook: %w", err)
	}
	i.state = StatePostInstalled
	i.step("post install")

	archived, err := i.archiveArtifact(pkg, artifactPath)
	if err != nil {
		return nil, err
	}
	if i.lock != nil {
		i.lock.AddPackage(pkg, pkglock.Placement{Installation: paths.Installation, Artifact: archived})
	}
	i.state = StateRegistered
	i.step("register")

	logger.Info("package installed",
		"components", len(pkg.Components),
		"resources", len(pkg.Resources),
		"execution_units", len(pkg.ExecutionUnits),
	)
	return &Result{Package: pkg, Paths: paths, Units: units, Artifact: archived}, nil
}

func (i *Installer) step(label string) {
	i.done++
	if i.progress != nil {
		i.progress.Step(i.done, i.total, label)
	}
}

// verifyChecksums checks every entity of pkg without touching the
// disk.
func verifyChecksums(pkg *artifact.Package) error {
	for index := range pkg.Components {
		if !pkg.Components[index].ValidateChecksum() {
			return fmt.Errorf("%w: component %s", artifact.ErrChecksumMismatch, pkg.Components[index].Name)
		}
	}
	for index := range pkg.Resources {
		if !pkg.Resources[index].ValidateChecksum() {
			return fmt.Errorf("%w: resource %s", artifact.ErrChecksumMismatch, pkg.Resources[index].Name)
		}
	}
	for index := range pkg.ExecutionUnits {
		if !pkg.ExecutionUnits[index].ValidateChecksum() {
			return fmt.Errorf("%w: execution unit %s", artifact.ErrChecksumMismatch, pkg.ExecutionUnits[index].ExecutionPolicy.Name)
		}
	}
	return nil
}

// prepareLayout creates the installation directories, clearing the
// source and bin trees of any version installed there before.
func (i *Installer) prepareLayout(paths config.InstallationPaths) error {
	for _, directory := range []string{paths.Source, paths.Bin} {
		if err := os.RemoveAll(directory); err != nil {
			return fmt.Errorf("%w: clearing %s: %v", artifact.ErrIO, directory, err)
		}
	}
	if err := paths.Create(); err != nil {
		return fmt.Errorf("%w: %v", artifact.ErrIO, err)
	}
	return nil
}

func (i *Installer) installComponent(extension Extension, paths config.InstallationPaths, component *artifact.Component) error {
	if !component.ValidateChecksum() {
		return fmt.Errorf("%w: component %s", artifact.ErrChecksumMismatch, component.Name)
	}

	var content []byte
	switch component.DataType {
	case artifact.DataAST:
		source, err := extension.Dump(component.Data)
		if err != nil {
			return fmt.Errorf("%w: component %s: %v", artifact.ErrDecode, component.Name, err)
		}
		content = []byte(source)
	case artifact.DataBase64:
		encoded, ok := component.Data.(string)
		if !ok {
			return fmt.Errorf("%w: component %s: base64 data is %T", artifact.ErrDecode, component.Name, component.Data)
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("%w: component %s: %v", artifact.ErrDecode, component.Name, err)
		}
		content = decoded
	case artifact.DataPlain:
		text, ok := component.Data.(string)
		if !ok {
			return fmt.Errorf("%w: component %s: plain data is %T", artifact.ErrDecode, component.Name, component.Data)
		}
		content = []byte(text)
	default:
		return fmt.Errorf("%w: component %s: unknown data type %q", artifact.ErrDecode, component.Name, component.DataType)
	}

	return writeSource(paths, component.Name, content)
}

func installResource(paths config.InstallationPaths, resource *artifact.Resource) error {
	if !resource.ValidateChecksum() {
		return fmt.Errorf("%w: resource %s", artifact.ErrChecksumMismatch, resource.Name)
	}
	content, err := base64.StdEncoding.DecodeString(resource.Data)
	if err != nil {
		return fmt.Errorf("%w: resource %s: %v", artifact.ErrDecode, resource.Name, err)
	}
	return writeSource(paths, resource.Name, content)
}

func installUnit(paths config.InstallationPaths, unit *artifact.ExecutionUnit) (string, error) {
	if !unit.ValidateChecksum() {
		return "", fmt.Errorf("%w: execution unit %s", artifact.ErrChecksumMismatch, unit.ExecutionPolicy.Name)
	}
	implementation, err := runner.For(unit.ExecutionPolicy.Runner)
	if err != nil {
		return "", fmt.Errorf("execution unit %s: %w", unit.ExecutionPolicy.Name, err)
	}
	return implementation.InstallUnit(*unit, paths)
}

// writeSource writes content to name under the source directory.
// Names that would escape the directory are rejected.
func writeSource(paths config.InstallationPaths, name string, content []byte) error {
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return fmt.Errorf("%w: entity name %q escapes the source directory", artifact.ErrDecode, name)
	}
	target := filepath.Join(paths.Source, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", artifact.ErrIO, filepath.Dir(target), err)
	}
	if err := fsutil.WriteFileAtomic(target, content, 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", artifact.ErrIO, target, err)
	}
	return nil
}

// archiveArtifact copies the artifact into the archive directory and
// returns the path to record in the lock.
func (i *Installer) archiveArtifact(pkg *artifact.Package, artifactPath string) (string, error) {
	if artifactPath == "" {
		return "", nil
	}
	if i.archive == "" {
		absolute, err := filepath.Abs(artifactPath)
		if err != nil {
			return "", fmt.Errorf("%w: %v", artifact.ErrIO, err)
		}
		return absolute, nil
	}
	destination := filepath.Join(i.archive, ArchiveName(pkg.Assembly.Package, pkg.Assembly.Version))
	if err := fsutil.CopyFile(artifactPath, destination); err != nil {
		return "", fmt.Errorf("%w: archiving artifact: %v", artifact.ErrIO, err)
	}
	return destination, nil
}

// ArchiveName is the file name an installed version's artifact is
// archived under.
func ArchiveName(packageID, version string) string {
	return packageID + "=" + version + artifact.FileExtension
}
