// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the current time. Every production function that
// would call time.Now accepts a Clock (or is a method on a struct with
// a Clock field) instead.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// OrReal returns c, or Real() when c is nil. Constructors use it so
// that zero-value options work.
func OrReal(c Clock) Clock {
	if c == nil {
		return Real()
	}
	return c
}
