// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/ncc/lib/artifact"
)

// ErrorCategory classifies command errors so that scripts can make
// decisions (fix input, install the dependency, rerun as root) from the
// exit status without parsing error text.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// bad flags, a malformed project file, a corrupted artifact.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced resource does not exist:
	// a missing artifact file, an uninstalled package or version.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden indicates the process lacks permission, usually
	// because a system-scope operation ran as an ordinary user.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryTransient indicates the operation was interrupted and may
	// succeed if repeated.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal indicates an unexpected error: bugs and I/O
	// failures.
	CategoryInternal ErrorCategory = "internal"
)

// ExitCode is the process exit status main uses for the category.
func (c ErrorCategory) ExitCode() int {
	switch c {
	case CategoryValidation:
		return 2
	case CategoryNotFound:
		return 3
	case CategoryForbidden:
		return 4
	case CategoryTransient:
		return 5
	default:
		return 1
	}
}

// ToolError is a categorized error returned by CLI commands. It wraps
// an inner error, preserving the full chain for errors.Is, and may
// carry a hint printed after the message.
type ToolError struct {
	// Category classifies the error for programmatic handling.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error

	// Hint is an optional next step for the user.
	Hint string
}

func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns the receiver for chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error: the caller lacks permission.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure, bug, or I/O error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// Categorize returns the category of err. An explicit [ToolError] in
// the chain wins; otherwise the artifact error kinds are mapped.
func Categorize(err error) ErrorCategory {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr.Category
	}

	switch {
	case errors.Is(err, artifact.ErrAccessDenied), errors.Is(err, os.ErrPermission):
		return CategoryForbidden
	case errors.Is(err, artifact.ErrFileNotFound),
		errors.Is(err, artifact.ErrPackageNotFound),
		errors.Is(err, artifact.ErrVersionNotFound),
		errors.Is(err, artifact.ErrLockUnavailable),
		errors.Is(err, os.ErrNotExist):
		return CategoryNotFound
	case errors.Is(err, artifact.ErrConfiguration),
		errors.Is(err, artifact.ErrDecode),
		errors.Is(err, artifact.ErrChecksumMismatch),
		errors.Is(err, artifact.ErrUnsupportedExtension),
		errors.Is(err, artifact.ErrUnsupportedRunner),
		errors.Is(err, artifact.ErrNoUnitsFound):
		return CategoryValidation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CategoryTransient
	default:
		return CategoryInternal
	}
}
