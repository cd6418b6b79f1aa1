// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"regexp"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
)

// packageNamePattern matches a dotted, lowercase package identifier
// with at least two segments, e.g. "com.vendor.name".
var packageNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z0-9_]+)+$`)

// Field length caps, in characters.
const (
	MaxNameLength        = 126
	MaxDescriptionLength = 512
	MaxCompanyLength     = 126
	MaxProductLength     = 256
	MaxCopyrightLength   = 256
	MaxTrademarkLength   = 256
)

// Assembly is the identity and descriptive metadata of a package.
type Assembly struct {
	Name        string `json:"name" yaml:"name"`
	Package     string `json:"package" yaml:"package"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Company     string `json:"company,omitempty" yaml:"company,omitempty"`
	Product     string `json:"product,omitempty" yaml:"product,omitempty"`
	Copyright   string `json:"copyright,omitempty" yaml:"copyright,omitempty"`
	Trademark   string `json:"trademark,omitempty" yaml:"trademark,omitempty"`
	Version     string `json:"version" yaml:"version"`
	UUID        string `json:"uuid" yaml:"uuid"`
}

// ValidatePackageName reports whether name is a valid package id.
func ValidatePackageName(name string) bool {
	return packageNamePattern.MatchString(name)
}

// ValidateVersion reports whether version is a strict semantic version.
func ValidateVersion(version string) bool {
	_, err := semver.StrictNewVersion(version)
	return err == nil
}

// ValidateUUID reports whether value is a canonical version 4 UUID.
func ValidateUUID(value string) bool {
	parsed, err := uuid.Parse(value)
	if err != nil || len(value) != 36 {
		return false
	}
	return parsed.Version() == 4 && parsed.Variant() == uuid.RFC4122
}

// NewUUID returns a fresh version 4 UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// Validate checks every Assembly invariant. The returned error is a
// *ConfigurationError whose Property is prefixed with prefix (usually
// "assembly").
func (a *Assembly) Validate(prefix string) error {
	property := func(name string) string { return prefix + "." + name }

	if a.Name == "" {
		return Configurationf(property("name"), "must not be empty")
	}
	if !ValidatePackageName(a.Package) {
		return Configurationf(property("package"), "%q is not a valid package name", a.Package)
	}
	if !ValidateVersion(a.Version) {
		return Configurationf(property("version"), "%q is not a valid semantic version", a.Version)
	}
	if !ValidateUUID(a.UUID) {
		return Configurationf(property("uuid"), "%q is not a valid v4 UUID", a.UUID)
	}

	limits := []struct {
		name  string
		value string
		max   int
	}{
		{"name", a.Name, MaxNameLength},
		{"description", a.Description, MaxDescriptionLength},
		{"company", a.Company, MaxCompanyLength},
		{"product", a.Product, MaxProductLength},
		{"copyright", a.Copyright, MaxCopyrightLength},
		{"trademark", a.Trademark, MaxTrademarkLength},
	}
	for _, limit := range limits {
		if utf8.RuneCountInString(limit.value) > limit.max {
			return Configurationf(property(limit.name), "exceeds %d characters", limit.max)
		}
	}
	return nil
}
