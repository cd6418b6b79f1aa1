// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides BLAKE3 content hashing for files.
//
// "ncc version" reports the digest of the running binary so that two
// installations can be compared without trusting version strings that
// were injected at build time.
//
//   - [HashFile] streams a file through BLAKE3 with constant memory
//   - [FormatDigest] and [ParseDigest] convert between a [Digest] and
//     its canonical hex form
package binhash
