// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compiler turns a project directory into a package artifact.
//
// A [Builder] owns every piece of state for one compile and moves
// through a fixed sequence of states:
//
//	Created → Prepared → ExecutionUnitsCompiled → ComponentsCompiled →
//	ResourcesCompiled → ConstantsCompiled → Written
//
// [Builder.Prepare] validates the project, selects a build
// configuration, scans the source tree into component and resource
// candidates, and resolves statically linked dependencies.
// [Builder.Build] runs the compile passes and returns the finished
// package; [Builder.WritePackage] serializes it into the configured
// output directory. [Compile] runs the whole pipeline.
//
// Source files that the parser rejects are never fatal: they are
// stored base64-encoded instead of as a token tree.
package compiler
