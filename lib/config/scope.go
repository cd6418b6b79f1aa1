// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import "golang.org/x/sys/unix"

// Scope is the permission level the current process runs with.
// Writing the package lock and shared system paths requires
// ScopeSystem.
type Scope string

const (
	ScopeUser   Scope = "user"
	ScopeSystem Scope = "system"
)

// DetectScope returns ScopeSystem when the effective user is root.
func DetectScope() Scope {
	if unix.Geteuid() == 0 {
		return ScopeSystem
	}
	return ScopeUser
}
