// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the ncc command tree: build, install,
// uninstall, list, inspect, exec, project init, and version. Each
// command parses its flags through a tagged params struct, opens a
// [manager.Manager] against the system configuration, and writes
// results to the [IO] streams it was constructed with.
package commands
