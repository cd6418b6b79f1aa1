// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"errors"
	"fmt"
)

// Error kinds. Operations wrap exactly one of these with context via
// fmt.Errorf("...: %w", ...).
var (
	ErrConfiguration        = errors.New("configuration error")
	ErrFileNotFound         = errors.New("file not found")
	ErrChecksumMismatch     = errors.New("checksum mismatch, the package may be corrupted")
	ErrDecode               = errors.New("decode error")
	ErrUnsupportedExtension = errors.New("unsupported compiler extension")
	ErrUnsupportedRunner    = errors.New("unsupported runner")
	ErrAccessDenied         = errors.New("access denied")
	ErrIO                   = errors.New("i/o error")
	ErrNotPrepared          = errors.New("compiler has not been prepared")
	ErrVersionNotFound      = errors.New("version not found")
	ErrLockUnavailable      = errors.New("package lock unavailable")
	ErrPackageNotFound      = errors.New("package not found")
	ErrNoUnitsFound         = errors.New("no loadable units found")
)

// ConfigurationError reports an invalid project or build configuration
// value. Property is the dotted path of the offending field, for
// example "assembly.package" or "build.configurations[1].output_path".
type ConfigurationError struct {
	Property string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Property, e.Reason)
}

// Unwrap lets errors.Is(err, ErrConfiguration) match.
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// Configurationf builds a [ConfigurationError] for property.
func Configurationf(property, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Property: property, Reason: fmt.Sprintf(format, args...)}
}
