// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pkglock

import (
	"fmt"
	"slices"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/bureau-foundation/ncc/lib/artifact"
)

// FormatVersion is written to every saved lock.
const FormatVersion = "2.0.0"

// Latest selects an entry's most recently added version.
const Latest = "latest"

// Lock is the installed-package registry.
type Lock struct {
	PackageLockVersion   string            `json:"package_lock_version"`
	LastUpdatedTimestamp int64             `json:"last_updated_timestamp"`
	Packages             map[string]*Entry `json:"packages"`
}

// Entry records one package and its installed versions.
type Entry struct {
	Name                string                     `json:"name"`
	Compiler            artifact.CompilerExtension `json:"compiler"`
	UpdateSource        *artifact.UpdateSource     `json:"update_source,omitempty"`
	MainExecutionPolicy string                     `json:"main_execution_policy,omitempty"`
	Versions            []VersionEntry             `json:"versions"`
}

// VersionEntry records one installed version.
type VersionEntry struct {
	Version             string                     `json:"version"`
	Compiler            artifact.CompilerExtension `json:"compiler"`
	Dependencies        []DependencyEntry          `json:"dependencies,omitempty"`
	MainExecutionPolicy string                     `json:"main_execution_policy,omitempty"`
	ExecutionPolicies   []string                   `json:"execution_policies,omitempty"`

	// Location is the installation root.
	Location string `json:"location,omitempty"`
	// Artifact is the archived package file this version was installed
	// from. Static linking copies it into dependent builds.
	Artifact string `json:"artifact,omitempty"`
}

// Placement says where an installed version lives on disk.
type Placement struct {
	Installation string
	Artifact     string
}

// DependencyEntry is a resolved dependency of a version.
type DependencyEntry struct {
	PackageName string `json:"package_name"`
	Version     string `json:"version"`
}

// New returns an empty lock.
func New() *Lock {
	return &Lock{
		PackageLockVersion: FormatVersion,
		Packages:           make(map[string]*Entry),
	}
}

// AddPackage registers pkg's version, installed at placement. A new
// package gets a fresh entry; an existing one gains the version, or has
// it replaced when the version is already registered.
func (l *Lock) AddPackage(pkg *artifact.Package, placement Placement) {
	if l.Packages == nil {
		l.Packages = make(map[string]*Entry)
	}

	version := VersionEntry{
		Version:             pkg.Assembly.Version,
		Compiler:            pkg.Header.CompilerExtension,
		MainExecutionPolicy: pkg.MainExecutionPolicy(),
		Location:            placement.Installation,
		Artifact:            placement.Artifact,
	}
	for _, dependency := range pkg.Dependencies {
		dependencyVersion := dependency.Version
		if dependencyVersion == "" {
			dependencyVersion = Latest
		}
		version.Dependencies = append(version.Dependencies, DependencyEntry{
			PackageName: dependency.Name,
			Version:     dependencyVersion,
		})
	}
	for _, unit := range pkg.ExecutionUnits {
		version.ExecutionPolicies = append(version.ExecutionPolicies, unit.ExecutionPolicy.Name)
	}

	entry, exists := l.Packages[pkg.Assembly.Package]
	if !exists {
		entry = &Entry{Name: pkg.Assembly.Package}
		l.Packages[pkg.Assembly.Package] = entry
	}
	entry.Compiler = pkg.Header.CompilerExtension
	entry.UpdateSource = pkg.Header.UpdateSource
	entry.MainExecutionPolicy = version.MainExecutionPolicy

	index := slices.IndexFunc(entry.Versions, func(existing VersionEntry) bool {
		return existing.Version == version.Version
	})
	if index >= 0 {
		entry.Versions = slices.Delete(entry.Versions, index, index+1)
	}
	entry.Versions = append(entry.Versions, version)
}

// RemovePackageVersion removes one version of a package. Removing the
// last version removes the whole entry. Returns whether anything was
// removed.
func (l *Lock) RemovePackageVersion(name, version string) bool {
	entry, exists := l.Packages[name]
	if !exists {
		return false
	}
	index := slices.IndexFunc(entry.Versions, func(existing VersionEntry) bool {
		return existing.Version == version
	})
	if index < 0 {
		return false
	}
	entry.Versions = slices.Delete(entry.Versions, index, index+1)
	if len(entry.Versions) == 0 {
		delete(l.Packages, name)
		return true
	}
	entry.MainExecutionPolicy = entry.Versions[len(entry.Versions)-1].MainExecutionPolicy
	return true
}

// RemovePackage removes a package and every version of it.
func (l *Lock) RemovePackage(name string) bool {
	if _, exists := l.Packages[name]; !exists {
		return false
	}
	delete(l.Packages, name)
	return true
}

// GetPackage returns the entry for name.
func (l *Lock) GetPackage(name string) (*Entry, bool) {
	entry, exists := l.Packages[name]
	return entry, exists
}

// PackageNames returns the registered package ids, sorted.
func (l *Lock) PackageNames() []string {
	names := make([]string, 0, len(l.Packages))
	for name := range l.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetVersion returns the entry for version, or the most recently added
// version when version is "latest" or empty.
func (e *Entry) GetVersion(version string) (*VersionEntry, error) {
	if version == "" || version == Latest {
		latest := e.LatestVersion()
		if latest == nil {
			return nil, fmt.Errorf("%w: %s has no versions", artifact.ErrVersionNotFound, e.Name)
		}
		return latest, nil
	}
	for i := range e.Versions {
		if e.Versions[i].Version == version {
			return &e.Versions[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s=%s", artifact.ErrVersionNotFound, e.Name, version)
}

// LatestVersion returns the most recently added version, or nil.
func (e *Entry) LatestVersion() *VersionEntry {
	if len(e.Versions) == 0 {
		return nil
	}
	return &e.Versions[len(e.Versions)-1]
}

// HighestVersion returns the version with the greatest semantic
// version, or nil. Versions that do not parse as semver are ignored.
func (e *Entry) HighestVersion() *VersionEntry {
	var (
		best       *VersionEntry
		bestParsed *semver.Version
	)
	for i := range e.Versions {
		parsed, err := semver.NewVersion(e.Versions[i].Version)
		if err != nil {
			continue
		}
		if bestParsed == nil || parsed.GreaterThan(bestParsed) {
			best, bestParsed = &e.Versions[i], parsed
		}
	}
	return best
}

// VersionNames returns the installed versions in installation order.
func (e *Entry) VersionNames() []string {
	names := make([]string, len(e.Versions))
	for i, version := range e.Versions {
		names[i] = version.Version
	}
	return names
}
