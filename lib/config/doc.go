// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides the system configuration for ncc: where
// packages are installed, where the package lock lives, and compiler
// output defaults.
//
// Configuration is loaded from a single YAML file named by:
//   - the NCC_CONFIG environment variable, or
//   - the --config flag passed to the command.
//
// When neither is given the built-in defaults apply. The file may
// contain environment-specific sections (development, staging,
// production) that override base values when the environment matches.
//
// The package also resolves the on-disk layout of an installed package
// ([InstallationPaths]) and the permission scope of the current
// process ([DetectScope]).
package config
