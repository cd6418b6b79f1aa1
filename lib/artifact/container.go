// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame format constants.
const (
	frameVersion = 1

	// frameHeaderSize is 8-byte magic + 1-byte compression tag +
	// 1-byte flags + 2 reserved bytes + 8-byte uncompressed length.
	frameHeaderSize = 20

	// maxBodySize bounds the uncompressed length a reader will
	// allocate for, so a corrupt length field cannot exhaust memory.
	maxBodySize = 1 << 32
)

// frameMagic is the 8-byte artifact file signature: "NCCPKG" +
// version byte + reserved byte.
var frameMagic = [8]byte{'N', 'C', 'C', 'P', 'K', 'G', frameVersion, 0}

// Frame flags.
const (
	// flagCompactKeys marks a body written with bytecode keys.
	flagCompactKeys uint8 = 1 << 0
)

// frame is a decoded artifact file header plus its body.
type frame struct {
	Compression CompressionTag
	Flags       uint8
	Body        []byte
}

// encodeFrame compresses body with tag and prepends the header. When
// compression would not shrink the body it is stored uncompressed and
// the header records CompressionNone.
func encodeFrame(body []byte, tag CompressionTag, flags uint8) ([]byte, error) {
	payload, err := compress(body, tag)
	if errors.Is(err, errIncompressible) {
		payload, tag = body, CompressionNone
	} else if err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	buffer.Grow(frameHeaderSize + len(payload))
	buffer.Write(frameMagic[:])
	buffer.WriteByte(byte(tag))
	buffer.WriteByte(flags)
	buffer.Write([]byte{0, 0})
	var length [8]byte
	binary.LittleEndian.PutUint64(length[:], uint64(len(body)))
	buffer.Write(length[:])
	buffer.Write(payload)
	return buffer.Bytes(), nil
}

// hasFrameMagic reports whether data starts with the frame signature,
// ignoring the version byte.
func hasFrameMagic(data []byte) bool {
	return len(data) >= 6 && bytes.Equal(data[:6], frameMagic[:6])
}

// decodeFrame parses the header and returns the decompressed body.
func decodeFrame(data []byte) (frame, error) {
	if len(data) < frameHeaderSize {
		return frame{}, fmt.Errorf("%w: artifact frame truncated (%d bytes)", ErrDecode, len(data))
	}
	if !hasFrameMagic(data) {
		return frame{}, fmt.Errorf("%w: not an ncc package artifact", ErrDecode)
	}
	if data[6] != frameVersion {
		return frame{}, fmt.Errorf("%w: unsupported artifact frame version %d", ErrDecode, data[6])
	}

	tag := CompressionTag(data[8])
	flags := data[9]
	size := binary.LittleEndian.Uint64(data[12:20])
	if size > maxBodySize {
		return frame{}, fmt.Errorf("%w: artifact body length %d exceeds limit", ErrDecode, size)
	}

	body, err := decompress(data[frameHeaderSize:], tag, int(size))
	if err != nil {
		return frame{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return frame{Compression: tag, Flags: flags, Body: body}, nil
}
