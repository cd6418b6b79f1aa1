// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package phpast turns PHP source into a lossless token tree and back.
//
// The tree is not a full syntax tree: it is the ordered token stream
// of the file, which is enough to store a component as structured
// data, reproduce the exact source text on install, and find the
// classes, interfaces, traits, and enums a file declares. Dump(Parse(s))
// reproduces s byte for byte.
//
// [Tree.Value] renders a tree as a JSON-compatible value (maps, lists,
// strings only) so it can be stored in a package; [FromValue] reverses
// it. [Parser] bundles both directions behind the method set the
// compiler and installer consume.
package phpast
