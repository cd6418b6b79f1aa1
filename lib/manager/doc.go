// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manager ties the compiler, installer, and package lock
// together into the operations the ncc command exposes: build,
// install, uninstall, list, and exec.
//
// Every mutating operation loads the lock store, applies its change,
// and saves the store before returning. Saving requires system scope
// (see [config.DetectScope]); the manager checks this before touching
// the filesystem so an unprivileged install fails without writing
// anything.
package manager
