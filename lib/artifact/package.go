// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bureau-foundation/ncc/lib/codec"
	"github.com/bureau-foundation/ncc/lib/fsutil"
)

// FileExtension is the file extension of a package artifact.
const FileExtension = ".ncc"

// Package is the root artifact.
type Package struct {
	Header         Header          `json:"header"`
	Assembly       Assembly        `json:"assembly"`
	Dependencies   []Dependency    `json:"dependencies,omitempty"`
	ExecutionUnits []ExecutionUnit `json:"execution_units,omitempty"`
	Components     []Component     `json:"components,omitempty"`
	Resources      []Resource      `json:"resources,omitempty"`
}

// KeyTable maps every field name reachable from Package to its
// bytecode key.
var KeyTable = codec.MustKeysOf(Package{})

// SaveOptions controls how a package is written.
type SaveOptions struct {
	Compression CompressionTag
	CompactKeys bool
}

// Encode serializes the package into the framed artifact format.
func (p *Package) Encode(options SaveOptions) ([]byte, error) {
	var (
		body  []byte
		err   error
		flags uint8
	)
	if options.CompactKeys {
		body, err = codec.MarshalCompact(p, KeyTable)
		flags |= flagCompactKeys
	} else {
		body, err = codec.Marshal(p)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding package %s: %w", p.Assembly.Package, err)
	}
	return encodeFrame(body, options.Compression, flags)
}

// Save writes the package to path atomically.
func (p *Package) Save(path string, options SaveOptions) error {
	data, err := p.Encode(options)
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// DecodePackage parses a framed artifact. Bodies written without a
// frame (bare CBOR) are accepted too. Literal and bytecode keys are
// both understood regardless of the frame flags.
func DecodePackage(data []byte) (*Package, error) {
	body := data
	if hasFrameMagic(data) {
		decoded, err := decodeFrame(data)
		if err != nil {
			return nil, err
		}
		body = decoded.Body
	}

	var pkg Package
	if err := codec.UnmarshalCompact(body, &pkg, KeyTable); err != nil {
		return nil, fmt.Errorf("%w: package body: %v", ErrDecode, err)
	}
	if err := pkg.validateTags(); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// Load reads and decodes the artifact at path.
func Load(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrIO, path, err)
	}
	pkg, err := DecodePackage(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return pkg, nil
}

// validateTags rejects tagged-union values outside their closed sets.
func (p *Package) validateTags() error {
	for i := range p.Components {
		if _, err := ParseComponentDataType(string(p.Components[i].DataType)); err != nil {
			return fmt.Errorf("component %s: %w", p.Components[i].Name, err)
		}
	}
	for i := range p.ExecutionUnits {
		policy := &p.ExecutionUnits[i].ExecutionPolicy
		if _, err := ParseRunner(string(policy.Runner)); err != nil {
			return fmt.Errorf("%w: execution unit %s: %v", ErrDecode, policy.Name, err)
		}
	}
	for i := range p.Dependencies {
		p.Dependencies[i].SourceType = ParseSourceType(string(p.Dependencies[i].SourceType))
	}
	return nil
}

// Component returns the component with the given name, or nil.
func (p *Package) Component(name string) *Component {
	for i := range p.Components {
		if p.Components[i].Name == name {
			return &p.Components[i]
		}
	}
	return nil
}

// ExecutionUnit returns the unit whose policy has the given name, or
// nil.
func (p *Package) ExecutionUnit(name string) *ExecutionUnit {
	for i := range p.ExecutionUnits {
		if p.ExecutionUnits[i].ExecutionPolicy.Name == name {
			return &p.ExecutionUnits[i]
		}
	}
	return nil
}

// MainExecutionPolicy returns the value of the "main" build option when
// it names a packed execution unit.
func (p *Package) MainExecutionPolicy() string {
	main, _ := p.Header.Options["main"].(string)
	if main == "" || p.ExecutionUnit(main) == nil {
		return ""
	}
	return main
}
