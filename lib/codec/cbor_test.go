// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type sampleRecord struct {
	Name      string            `json:"name"`
	Version   string            `json:"version,omitempty"`
	Count     int               `json:"count"`
	Constants map[string]string `json:"constants,omitempty"`
	Children  []sampleChild     `json:"children,omitempty"`
}

type sampleChild struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
	Payload  []byte `json:"payload,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRecord{
		Name:    "com.example.app",
		Version: "1.0.0",
		Count:   42,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, original) {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	record := sampleRecord{
		Name:      "deterministic",
		Constants: map[string]string{"zeta": "1", "alpha": "2", "mid": "3"},
	}

	first, err := Marshal(record)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(record)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var record sampleRecord
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &record); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestByteStringRoundtrip(t *testing.T) {
	original := sampleChild{Path: "logo.png", Payload: []byte{0x89, 'P', 'N', 'G', 0x00, 0xFF}}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleChild
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !bytes.Equal(decoded.Payload, original.Payload) {
		t.Errorf("byte string roundtrip: got %x, want %x", decoded.Payload, original.Payload)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"runner": "bash"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"runner"`) || !strings.Contains(notation, `"bash"`) {
		t.Errorf("notation %q missing expected strings", notation)
	}
}

func TestEncodeDecodeValueUniverse(t *testing.T) {
	original := map[string]any{
		"null":   nil,
		"bool":   true,
		"int":    int64(7),
		"neg":    int64(-3),
		"float":  1.5,
		"string": "text",
		"bytes":  []byte{1, 2, 3},
		"list":   []any{"a", int64(1), false},
		"nested": map[string]any{"inner": "value"},
	}

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, original) {
		t.Errorf("value roundtrip mismatch:\n got  %#v\n want %#v", decoded, original)
	}
}

func TestEncodeRejectsUnsupportedKinds(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"channel", make(chan int)},
		{"struct", sampleRecord{}},
		{"nested func", map[string]any{"callback": func() {}}},
		{"list of struct", []any{sampleChild{}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Encode(test.value)
			if !errors.Is(err, ErrUnsupportedValue) {
				t.Errorf("Encode(%T) error = %v, want ErrUnsupportedValue", test.value, err)
			}
		})
	}
}

func TestDecodeTruncated(t *testing.T) {
	data, err := Encode(map[string]any{"name": "truncated"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, err = Decode(data[:len(data)-3])
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("Decode(truncated) error = %v, want ErrMalformed", err)
	}
}
