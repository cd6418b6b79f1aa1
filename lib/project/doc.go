// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package project models the project configuration that drives a
// compile: package metadata, build settings, named build
// configurations, and execution policies.
//
// Projects are authored as project.yaml or as project.json (JSON
// extended with comments and trailing commas). [Load] finds whichever
// file exists in a project directory; [Parse] decodes bytes in either
// format.
//
// The typical flow:
//
//  1. Load: project directory → *Project
//  2. Validate: property-path errors for the first invalid field
//  3. Configuration: select a named build configuration, producing a
//     [Resolved] view with merged constants, excludes, and output path
package project
