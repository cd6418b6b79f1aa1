// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package runner implements the closed set of execution-unit runners:
// php, bash, python, python2, python3, perl, and lua.
//
// Every runner packs a policy's target script into an
// [artifact.ExecutionUnit] at compile time ([Runner.ProcessUnit]) and
// writes it back to disk at install time ([Runner.InstallUnit]),
// returning the path of a CBOR unit descriptor. Runners that execute
// scripts directly through an interpreter also implement
// [ProcessPreparer], which turns a descriptor into a [Process] that
// [Execute] runs. The php runner only installs: php units are loaded
// through the package's autoload manifest.
//
// Interpreted runners store script bytes base64-encoded so arbitrary
// content survives the package round trip. The php runner stores the
// script as text.
package runner
