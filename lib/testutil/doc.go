// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for ncc packages.
//
// [WriteTree] lays out a directory of files from a path → content map.
// [SampleProject] writes a small compilable project (one php component,
// one binary resource, one excluded file, a php and a bash execution
// policy) and returns its directory.
//
// [UniquePackage] generates distinct package ids for tests that share a
// lock or packages root.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
