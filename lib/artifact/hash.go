// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/bureau-foundation/ncc/lib/codec"
	"github.com/zeebo/blake3"
)

// entityDomainKey is the 32-byte BLAKE3 key for entity checksums.
// Changing it invalidates every checksum in every existing artifact.
// The bytes are the ASCII domain name, zero-padded, so the key is
// readable in hex dumps.
var entityDomainKey = [32]byte{
	'n', 'c', 'c', '.', 'a', 'r', 't', 'i', 'f', 'a', 'c', 't', '.',
	'e', 'n', 't', 'i', 't', 'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// ComputeChecksum returns the hex BLAKE3 keyed hash of (name, data).
// The name is length-prefixed so that ("ab", "c") and ("a", "bc")
// hash differently.
func ComputeChecksum(name string, data []byte) string {
	hasher, err := blake3.NewKeyed(entityDomainKey[:])
	if err != nil {
		panic("artifact: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(name)))
	hasher.Write(length[:])
	hasher.Write([]byte(name))
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// componentBytes is the byte form of a component's data that the
// checksum covers. Strings hash as their bytes; trees hash as their
// deterministic CBOR encoding. ok is false when Data is nil.
func componentBytes(data any) ([]byte, bool, error) {
	switch typed := data.(type) {
	case nil:
		return nil, false, nil
	case string:
		return []byte(typed), true, nil
	default:
		encoded, err := codec.Encode(typed)
		if err != nil {
			return nil, false, fmt.Errorf("%w: encoding component tree: %v", ErrDecode, err)
		}
		return encoded, true, nil
	}
}

// UpdateChecksum recomputes and stores the component's checksum.
func (c *Component) UpdateChecksum() error {
	data, ok, err := componentBytes(c.Data)
	if err != nil {
		return err
	}
	if !ok {
		c.Checksum = ""
		return nil
	}
	c.Checksum = ComputeChecksum(c.Name, data)
	return nil
}

// ValidateChecksum reports whether the stored checksum matches the
// current data. A component without data validates trivially.
func (c *Component) ValidateChecksum() bool {
	data, ok, err := componentBytes(c.Data)
	if err != nil {
		return false
	}
	if !ok {
		return true
	}
	return c.Checksum == ComputeChecksum(c.Name, data)
}

// UpdateChecksum recomputes and stores the resource's checksum.
func (r *Resource) UpdateChecksum() {
	r.Checksum = ComputeChecksum(r.Name, []byte(r.Data))
}

// ValidateChecksum reports whether the stored checksum matches the
// current data.
func (r *Resource) ValidateChecksum() bool {
	return r.Checksum == ComputeChecksum(r.Name, []byte(r.Data))
}

// UpdateChecksum recomputes and stores the unit's checksum, keyed by
// its policy name.
func (u *ExecutionUnit) UpdateChecksum() {
	u.Checksum = ComputeChecksum(u.ExecutionPolicy.Name, []byte(u.Data))
}

// ValidateChecksum reports whether the stored checksum matches the
// current data.
func (u *ExecutionUnit) ValidateChecksum() bool {
	return u.Checksum == ComputeChecksum(u.ExecutionPolicy.Name, []byte(u.Data))
}
