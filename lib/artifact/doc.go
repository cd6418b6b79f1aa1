// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact defines the ncc package artifact: the single binary
// file a compile produces and an install consumes.
//
// The package is organized in layers, each usable independently:
//
//   - Model: [Package] and its parts ([Header], [Assembly],
//     [Dependency], [ExecutionUnit], [Component], [Resource]). Tagged
//     string enums ([Runner], [ComponentDataType], [SourceType]) are
//     closed sets; parsing rejects unknown tags except where a default
//     is documented ([ParseSourceType] falls back to remote).
//
//   - Checksums: BLAKE3 keyed hashing in a dedicated domain over an
//     entity's logical name and data. Components, resources, and
//     execution units carry a checksum the installer verifies before
//     trusting their data.
//
//   - File format: a fixed 20-byte frame (magic, compression tag,
//     flags, uncompressed length) followed by the CBOR-encoded package,
//     optionally zstd- or LZ4-compressed and optionally written with
//     compact bytecode keys (see lib/codec). Saves are atomic.
//
//   - Errors: the sentinel error kinds shared by the compiler,
//     installer, and lock store. Every failure surfaced by those
//     layers wraps one of them, so callers classify with errors.Is.
package artifact
