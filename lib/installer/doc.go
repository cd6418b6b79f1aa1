// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package installer materializes a package artifact onto disk.
//
// An install loads the artifact, resolves the package's installation
// layout ({packages}/{extension}/{id} with bin/, src/ and data/), and
// then, strictly in order:
//
//   - writes the data files (assembly, ext, const, dependencies)
//   - runs the extension's PreInstall hook
//   - verifies and reconstructs every component into src/
//   - verifies and decodes every resource into src/
//   - installs every execution unit through its runner and records the
//     policy → descriptor map in data/exec
//   - runs the extension's PostInstall hook (for php, the autoload
//     class map in bin/autoload.php)
//   - registers the version in the caller's [pkglock.Lock]
//
// Every checksum is validated before its entity is written; a mismatch
// aborts the install with [artifact.ErrChecksumMismatch] and writes
// nothing for that entity. Files written before a failure are left in
// place: an install is not transactional and must be retried from the
// start.
//
// The [Installer] owns its extension registry and progress reporter.
// It is not safe for concurrent use.
package installer
