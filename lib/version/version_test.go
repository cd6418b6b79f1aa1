// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildFlags(t *testing.T) {
	saved := Flags
	t.Cleanup(func() { Flags = saved })

	Flags = "  -trimpath   -race "
	if got, want := BuildFlags(), []string{"-trimpath", "-race"}; !reflect.DeepEqual(got, want) {
		t.Errorf("BuildFlags() = %q, want %q", got, want)
	}

	Flags = ""
	if got := BuildFlags(); len(got) != 0 {
		t.Errorf("BuildFlags() = %q, want empty", got)
	}
}

func TestInfoIncludesVersion(t *testing.T) {
	if !strings.Contains(Info(), Version) {
		t.Errorf("Info() = %q does not contain %q", Info(), Version)
	}
	if !strings.Contains(Full(), "Go: ") {
		t.Errorf("Full() = %q missing Go version line", Full())
	}
}
