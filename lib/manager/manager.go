// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/compiler"
	"github.com/bureau-foundation/ncc/lib/config"
	"github.com/bureau-foundation/ncc/lib/installer"
	"github.com/bureau-foundation/ncc/lib/pkglock"
)

// Options configures a Manager.
type Options struct {
	// Config supplies the packages root, cache, and compiler defaults.
	// Nil uses config.Default().
	Config *config.Config

	// Store is the lock store. Nil opens Config.Paths.Lock with the
	// process's detected scope.
	Store *pkglock.Store

	Logger   *slog.Logger
	Progress installer.Progress

	// Stdout and Stderr receive execution unit output. Nil discards.
	Stdout io.Writer
	Stderr io.Writer
}

// Manager performs package operations against one configuration.
type Manager struct {
	config   *config.Config
	store    *pkglock.Store
	logger   *slog.Logger
	progress installer.Progress
	stdout   io.Writer
	stderr   io.Writer
}

// New returns a Manager.
func New(options Options) *Manager {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg := options.Config
	if cfg == nil {
		cfg = config.Default()
	}
	store := options.Store
	if store == nil {
		store = pkglock.NewStore(cfg.Paths.Lock, logger)
	}
	return &Manager{
		config:   cfg,
		store:    store,
		logger:   logger,
		progress: options.Progress,
		stdout:   options.Stdout,
		stderr:   options.Stderr,
	}
}

// Config returns the manager's configuration.
func (m *Manager) Config() *config.Config { return m.config }

// Lock loads the lock store, returning an empty lock when none exists.
func (m *Manager) Lock() *pkglock.Lock {
	return m.store.LoadOrEmpty()
}

// Build compiles the project in directory with the system compiler
// defaults, linking static dependencies against the installed
// packages. Paths under the package's installation on this system are
// stored as install tokens.
func (m *Manager) Build(directory, configurationName string) (string, *artifact.Package, error) {
	return compiler.Compile(directory, configurationName, compiler.Options{
		Logger:       m.logger,
		Lock:         m.Lock(),
		Compression:  m.config.Compiler.Compression,
		CompactKeys:  m.config.Compiler.CompactKeys,
		InstallPaths: m.config,
	})
}

func (m *Manager) requireWritable() error {
	if m.store.Scope != config.ScopeSystem {
		return fmt.Errorf("%w: modifying installed packages requires %s scope", artifact.ErrAccessDenied, config.ScopeSystem)
	}
	return nil
}

// Install installs the artifact at artifactPath and records it in the
// lock store.
func (m *Manager) Install(ctx context.Context, artifactPath string) (*installer.Result, error) {
	if err := m.requireWritable(); err != nil {
		return nil, err
	}
	if err := m.config.EnsurePaths(); err != nil {
		return nil, fmt.Errorf("%w: %v", artifact.ErrIO, err)
	}

	lock := m.store.LoadOrEmpty()
	install := installer.New(installer.Options{
		Logger:           m.logger,
		Paths:            m.config,
		Progress:         m.progress,
		Lock:             lock,
		ArchiveDirectory: m.config.Paths.Cache,
	})
	result, err := install.Install(ctx, artifactPath)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(lock); err != nil {
		return nil, err
	}
	return result, nil
}

// Uninstall removes one version of a package, or every version when
// version is empty. The installation directory is removed with the
// last version.
func (m *Manager) Uninstall(ctx context.Context, name, version string) error {
	if err := m.requireWritable(); err != nil {
		return err
	}
	lock := m.store.LoadOrEmpty()
	entry, found := lock.GetPackage(name)
	if !found {
		return fmt.Errorf("%w: %s", artifact.ErrPackageNotFound, name)
	}

	var removed []pkglock.VersionEntry
	if version == "" {
		removed = entry.Versions
		lock.RemovePackage(name)
	} else {
		selected, err := entry.GetVersion(version)
		if err != nil {
			return err
		}
		removed = []pkglock.VersionEntry{*selected}
		lock.RemovePackageVersion(name, selected.Version)
	}

	for _, versionEntry := range removed {
		if err := ctx.Err(); err != nil {
			return err
		}
		if versionEntry.Artifact != "" && filepath.Dir(versionEntry.Artifact) == filepath.Clean(m.config.Paths.Cache) {
			if err := os.Remove(versionEntry.Artifact); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("%w: removing %s: %v", artifact.ErrIO, versionEntry.Artifact, err)
			}
		}
		m.logger.Info("uninstalled package version", "package", name, "version", versionEntry.Version)
	}

	if _, remaining := lock.GetPackage(name); !remaining {
		for _, location := range installLocations(removed) {
			if err := os.RemoveAll(location); err != nil {
				return fmt.Errorf("%w: removing %s: %v", artifact.ErrIO, location, err)
			}
			m.logger.Debug("removed installation directory", "path", location)
		}
	}

	return m.store.Save(lock)
}

func installLocations(versions []pkglock.VersionEntry) []string {
	seen := make(map[string]bool)
	var locations []string
	for _, version := range versions {
		if version.Location == "" || seen[version.Location] {
			continue
		}
		seen[version.Location] = true
		locations = append(locations, version.Location)
	}
	return locations
}

// List returns the installed packages sorted by id.
func (m *Manager) List() []*pkglock.Entry {
	lock := m.store.LoadOrEmpty()
	entries := make([]*pkglock.Entry, 0, len(lock.Packages))
	for _, name := range lock.PackageNames() {
		entries = append(entries, lock.Packages[name])
	}
	return entries
}
