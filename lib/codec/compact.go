// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"hash/crc32"
	"reflect"
	"strings"
)

// KeyHash returns the bytecode key for a field name: the IEEE CRC-32
// of its UTF-8 bytes.
func KeyHash(name string) uint32 {
	return crc32.ChecksumIEEE([]byte(name))
}

// KeyTable is a bidirectional mapping between field names and their
// bytecode keys. Build one with [NewKeyTable] or [KeysOf] and share it;
// a KeyTable is immutable after construction and safe for concurrent
// reads.
type KeyTable struct {
	byHash map[uint32]string
	byName map[string]uint32
}

// NewKeyTable builds a table from names. Duplicate names are ignored.
// Two distinct names hashing to the same key is a programming error
// and returns an error, since the table could not decode either of
// them unambiguously.
func NewKeyTable(names ...string) (*KeyTable, error) {
	table := &KeyTable{
		byHash: make(map[uint32]string, len(names)),
		byName: make(map[string]uint32, len(names)),
	}
	for _, name := range names {
		if _, exists := table.byName[name]; exists {
			continue
		}
		hash := KeyHash(name)
		if other, collision := table.byHash[hash]; collision {
			return nil, fmt.Errorf("codec: bytecode key collision between %q and %q (%d)", other, name, hash)
		}
		table.byHash[hash] = name
		table.byName[name] = hash
	}
	return table, nil
}

// KeysOf builds a table from the json tag names of the given struct
// types (pass zero values or pointers). Nested struct, pointer, slice,
// and map element types are walked, so registering a root type
// registers every field name reachable from it.
func KeysOf(samples ...any) (*KeyTable, error) {
	seen := make(map[reflect.Type]bool)
	var names []string
	for _, sample := range samples {
		names = collectFieldNames(reflect.TypeOf(sample), seen, names)
	}
	return NewKeyTable(names...)
}

// MustKeysOf is [KeysOf] for package-level initialization.
func MustKeysOf(samples ...any) *KeyTable {
	table, err := KeysOf(samples...)
	if err != nil {
		panic(err.Error())
	}
	return table
}

// Name returns the field name for a bytecode key.
func (t *KeyTable) Name(hash uint32) (string, bool) {
	name, ok := t.byHash[hash]
	return name, ok
}

// Hash returns the bytecode key for a registered field name.
func (t *KeyTable) Hash(name string) (uint32, bool) {
	hash, ok := t.byName[name]
	return hash, ok
}

// Len returns the number of registered names.
func (t *KeyTable) Len() int {
	return len(t.byName)
}

// MarshalCompact encodes v with every map key registered in table
// replaced by its bytecode key. Keys not in the table (user-supplied
// constant names, environment variables) stay literal.
func MarshalCompact(v any, table *KeyTable) ([]byte, error) {
	literal, err := encMode.Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := anyDecMode.Unmarshal(literal, &tree); err != nil {
		return nil, err
	}
	return encMode.Marshal(hashKeys(tree, table))
}

// UnmarshalCompact decodes data into v, accepting literal and hashed
// map keys. Hashed keys that table does not know are dropped.
func UnmarshalCompact(data []byte, v any, table *KeyTable) error {
	var tree any
	if err := anyDecMode.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	literal, err := encMode.Marshal(resolveKeys(tree, table))
	if err != nil {
		return err
	}
	return decMode.Unmarshal(literal, v)
}

// Lookup reads name from a decoded record, trying the literal key
// first and then its bytecode key. Returns nil when neither is present.
func Lookup(record map[any]any, name string) any {
	if value, ok := record[name]; ok {
		return value
	}
	hash := KeyHash(name)
	if value, ok := record[uint64(hash)]; ok {
		return value
	}
	if value, ok := record[hash]; ok {
		return value
	}
	return nil
}

func hashKeys(value any, table *KeyTable) any {
	switch typed := value.(type) {
	case map[any]any:
		result := make(map[any]any, len(typed))
		for key, element := range typed {
			if name, ok := key.(string); ok {
				if hash, registered := table.Hash(name); registered {
					result[uint64(hash)] = hashKeys(element, table)
					continue
				}
			}
			result[key] = hashKeys(element, table)
		}
		return result
	case []any:
		for i, element := range typed {
			typed[i] = hashKeys(element, table)
		}
		return typed
	default:
		return value
	}
}

func resolveKeys(value any, table *KeyTable) any {
	switch typed := value.(type) {
	case map[any]any:
		result := make(map[string]any, len(typed))
		for key, element := range typed {
			switch k := key.(type) {
			case string:
				result[k] = resolveKeys(element, table)
			case uint64:
				if k > uint64(^uint32(0)) || table == nil {
					continue
				}
				if name, ok := table.Name(uint32(k)); ok {
					result[name] = resolveKeys(element, table)
				}
			}
		}
		return result
	case []any:
		for i, element := range typed {
			typed[i] = resolveKeys(element, table)
		}
		return typed
	default:
		return value
	}
}

func collectFieldNames(typ reflect.Type, seen map[reflect.Type]bool, names []string) []string {
	if typ == nil {
		return names
	}
	for typ.Kind() == reflect.Pointer || typ.Kind() == reflect.Slice || typ.Kind() == reflect.Array {
		typ = typ.Elem()
	}
	if typ.Kind() == reflect.Map {
		return collectFieldNames(typ.Elem(), seen, names)
	}
	if typ.Kind() != reflect.Struct || seen[typ] {
		return names
	}
	seen[typ] = true
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		names = append(names, name)
		names = collectFieldNames(field.Type, seen, names)
	}
	return names
}
