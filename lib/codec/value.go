// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrUnsupportedValue is returned by [Encode] when the value tree
	// contains a kind outside the generic value universe.
	ErrUnsupportedValue = errors.New("codec: unsupported value kind")

	// ErrMalformed is returned when a byte stream is truncated or is
	// not well-formed CBOR.
	ErrMalformed = errors.New("codec: malformed input")
)

// Encode encodes a generic value tree. Accepted kinds are nil, bool,
// signed and unsigned integers up to math.MaxInt64, float32/float64,
// string, []byte, []any, and map[string]any, nested arbitrarily.
func Encode(value any) ([]byte, error) {
	if err := checkValue(value, "$"); err != nil {
		return nil, err
	}
	data, err := encMode.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	return data, nil
}

// Decode decodes a generic value tree. Maps decode as map[string]any;
// a non-string map key is rendered as its decimal form so the result
// stays inside the value universe. Integers decode as int64, so a tree
// built with int64 (see [NormalizeValue]) decodes to an equal tree.
func Decode(data []byte) (any, error) {
	var raw any
	if err := valueDecMode.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return stringifyKeys(raw), nil
}

func checkValue(value any, path string) error {
	switch typed := value.(type) {
	case nil, bool, string, []byte,
		int, int8, int16, int32, int64,
		uint8, uint16, uint32,
		float32, float64:
		return nil
	case uint:
		if uint64(typed) > math.MaxInt64 {
			return fmt.Errorf("%w: %d at %s overflows int64", ErrUnsupportedValue, typed, path)
		}
		return nil
	case uint64:
		if typed > math.MaxInt64 {
			return fmt.Errorf("%w: %d at %s overflows int64", ErrUnsupportedValue, typed, path)
		}
		return nil
	case []any:
		for i, element := range typed {
			if err := checkValue(element, path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for key, element := range typed {
			if err := checkValue(element, path+"."+key); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %T at %s", ErrUnsupportedValue, value, path)
	}
}

// NormalizeValue returns value with every integer scalar converted to
// int64, recursing into []any and map[string]any. Decoders produce
// int (yaml) or uint64 where the codec produces int64; normalizing
// makes such trees compare equal after a round trip. Unsigned values
// above math.MaxInt64 are left alone.
func NormalizeValue(value any) any {
	switch typed := value.(type) {
	case int:
		return int64(typed)
	case int8:
		return int64(typed)
	case int16:
		return int64(typed)
	case int32:
		return int64(typed)
	case uint:
		if uint64(typed) <= math.MaxInt64 {
			return int64(typed)
		}
		return value
	case uint8:
		return int64(typed)
	case uint16:
		return int64(typed)
	case uint32:
		return int64(typed)
	case uint64:
		if typed <= math.MaxInt64 {
			return int64(typed)
		}
		return value
	case []any:
		result := make([]any, len(typed))
		for i, element := range typed {
			result[i] = NormalizeValue(element)
		}
		return result
	case map[string]any:
		result := make(map[string]any, len(typed))
		for key, element := range typed {
			result[key] = NormalizeValue(element)
		}
		return result
	default:
		return value
	}
}

func stringifyKeys(value any) any {
	switch typed := value.(type) {
	case map[any]any:
		result := make(map[string]any, len(typed))
		for key, element := range typed {
			result[keyString(key)] = stringifyKeys(element)
		}
		return result
	case []any:
		for i, element := range typed {
			typed[i] = stringifyKeys(element)
		}
		return typed
	default:
		return value
	}
}

func keyString(key any) string {
	switch typed := key.(type) {
	case string:
		return typed
	case uint64:
		return strconv.FormatUint(typed, 10)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		return fmt.Sprint(typed)
	}
}
