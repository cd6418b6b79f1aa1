// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the ncc tool.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree by cmd/ncc/commands
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// Flags are declared as tagged struct fields and bound with
// [FlagsFromParams]. Unknown subcommands and flags get a "did you mean"
// suggestion based on Levenshtein distance (suggest.go).
//
// Errors returned by commands are classified by [Categorize] into
// [ErrorCategory] values. main uses the category to pick the process
// exit code, so scripts can tell bad input from a missing package.
package cli
