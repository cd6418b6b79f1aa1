// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"strings"
)

// These variables are set via -ldflags at build time.
var (
	// Version is the semantic version of the toolchain.
	Version = "2.0.0-dev"

	// Branch is the source branch the binary was built from.
	Branch = "unknown"

	// Flags is a space-separated list of build flags.
	Flags = ""

	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"
)

// Info returns a formatted version string suitable for --version output.
func Info() string {
	return fmt.Sprintf("%s (%s, %s)", Version, GitCommit, Branch)
}

// Full returns detailed version information including Go version.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// BuildFlags returns Flags split into its individual flags.
func BuildFlags() []string {
	return strings.Fields(Flags)
}
