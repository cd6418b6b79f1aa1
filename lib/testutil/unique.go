// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// UniquePackage returns a valid package id of the form
// "com.test.prefix_N" where N increases monotonically.
//
//	id := testutil.UniquePackage("app") // "com.test.app_1", "com.test.app_2", ...
func UniquePackage(prefix string) string {
	return fmt.Sprintf("com.test.%s_%d", prefix, uniqueCounter.Add(1))
}
