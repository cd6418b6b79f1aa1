// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Ncc compiles projects into package artifacts, installs them into the
// system package root, and runs their execution policies. See
// cmd/ncc/commands for the command tree.
//
// Exit status is 0 on success, the policy's own code for "ncc exec",
// and otherwise a code per error category: 1 internal, 2 invalid
// input, 3 not found, 4 permission denied, 5 interrupted.
package main
