// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pkglock is the registry of installed packages and their
// versions.
//
// A [Lock] maps package ids to an [Entry] holding every installed
// version in installation order. Adding a version of a package that is
// already registered appends it; re-adding a registered version
// replaces it. "latest" means the most recently added version.
//
// A [Store] persists a Lock as compact-key CBOR at a fixed path.
// Writing requires system scope and is serialized across processes by
// an advisory flock on a sibling .lock file.
package pkglock
