// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the binary encoding used by every ncc file
// format: package artifacts, the package lock store, and the data
// files an installation leaves behind.
//
// The wire format is CBOR with Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which is what lets checksums be computed over encoded trees.
//
// For typed values (structs with json tags):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For the generic value universe (nil, bool, integers, floats,
// strings, byte strings, []any, map[string]any):
//
//	data, err := codec.Encode(value)
//	value, err := codec.Decode(data)
//
// # Compact keys
//
// Package artifacts may be written with "bytecode keys": every map key
// that names a known field is replaced by [KeyHash] of that name, a
// CRC-32 of its UTF-8 bytes. A [KeyTable] maps hashes back to names.
// Decoding through [UnmarshalCompact] accepts literal keys and hashed
// keys interchangeably, so readers handle artifacts written in either
// mode. Hashed keys absent from the table are dropped, leaving the
// field at its zero value.
//
// # Struct tag rules
//
// Model types use `json` tags. fxamacker/cbor v2 reads `json` tags as
// fallback when `cbor` tags are absent, so a single tag controls field
// naming for the artifact file, the lock store, and `ncc inspect
// --json` output. The names in those tags are the names [KeysOf]
// registers in a key table.
package codec
