// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build information for the ncc binary.
//
// Values are injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/ncc/lib/version.Branch=$(git branch --show-current)"
//
// The same values feed the %NCC_BUILD_VERSION%, %NCC_BUILD_FLAGS%, and
// %NCC_BUILD_BRANCH% constants stamped into compiled packages.
package version
