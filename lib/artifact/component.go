// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import "fmt"

// ComponentDataType says how a component's Data is represented.
type ComponentDataType string

const (
	// DataAST is a parsed intermediate tree (a JSON-compatible value).
	DataAST ComponentDataType = "ast"
	// DataBase64 is the base64 encoding of the raw source bytes.
	DataBase64 ComponentDataType = "b64encoded"
	// DataPlain is the raw source text.
	DataPlain ComponentDataType = "plain"
)

// ParseComponentDataType validates a data type tag.
func ParseComponentDataType(value string) (ComponentDataType, error) {
	switch ComponentDataType(value) {
	case DataAST, DataBase64, DataPlain:
		return ComponentDataType(value), nil
	default:
		return "", fmt.Errorf("%w: unknown component data type %q", ErrDecode, value)
	}
}

// Component is a compilable source file. Name is relative to the
// project source root.
type Component struct {
	Name     string            `json:"name"`
	DataType ComponentDataType `json:"data_type"`
	Data     any               `json:"data"`
	Checksum string            `json:"checksum,omitempty"`
}

// Resource is an opaque file shipped verbatim. Data is base64.
type Resource struct {
	Name     string `json:"name"`
	Data     string `json:"data"`
	Checksum string `json:"checksum,omitempty"`
}
