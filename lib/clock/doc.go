// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The compiler stamps %COMPILE_TIMESTAMP% and the date tokens from the
// clock, and the lock store records LastUpdatedTimestamp from it.
// Production code injects Real(); tests inject Fake() so those values
// are deterministic:
//
//	c := clock.Fake(time.Date(2023, 1, 15, 9, 30, 0, 0, time.UTC))
//	builder := compiler.New(dir, project, compiler.Options{Clock: c})
package clock
