// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestEmitJSON(t *testing.T) {
	var out bytes.Buffer
	output := JSONOutput{}
	done, err := output.EmitJSON(&out, []string{"a"})
	if done || err != nil || out.Len() != 0 {
		t.Fatalf("EmitJSON without --json = (%v, %v), wrote %q", done, err, out.String())
	}

	output.OutputJSON = true
	var nilSlice []string
	done, err = output.EmitJSON(&out, nilSlice)
	if !done || err != nil {
		t.Fatalf("EmitJSON = (%v, %v), want (true, nil)", done, err)
	}
	if got := strings.TrimSpace(out.String()); got != "[]" {
		t.Errorf("nil slice rendered as %q, want []", got)
	}
}

func TestNewLoggerHandlerChoice(t *testing.T) {
	var out bytes.Buffer
	newLogger(&out, false, 0).Info("installed", "package", "com.example.app")
	if !strings.HasPrefix(out.String(), "{") {
		t.Errorf("non-terminal output = %q, want JSON", out.String())
	}

	out.Reset()
	newLogger(&out, true, 0).Info("installed", "package", "com.example.app")
	if !strings.Contains(out.String(), "package=com.example.app") {
		t.Errorf("terminal output = %q, want text handler", out.String())
	}

	if IsTerminal(&out) {
		t.Error("IsTerminal(buffer) = true")
	}
}
