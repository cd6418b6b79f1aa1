// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"strings"
	"testing"
)

// SampleUUID is a valid v4 UUID for test assemblies.
const SampleUUID = "9b2e8f4c-3c1d-4b7a-9e2f-5d6c7b8a9f01"

// SampleIndex is the php component written by SampleProject.
const SampleIndex = `<?php

namespace Example\App;

final class Greeter
{
    public function greet(string $name): string
    {
        return "Hello, {$name}";
    }
}
`

// SampleLogo is the binary resource written by SampleProject.
const SampleLogo = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\xff\xfe"

// SampleProjectYAML is the project file written by SampleProject, with
// PACKAGE standing in for the package id.
const SampleProjectYAML = `project:
  compiler:
    extension: php
    minimum_version: "8.0"
assembly:
  name: Example App
  package: PACKAGE
  description: "%ASSEMBLY.NAME% built in %Y%"
  version: 1.0.0
  uuid: ` + SampleUUID + `
build:
  source_path: src
  default_configuration: release
  main: main
  exclude_files: ["*.bak"]
  define_constants:
    APP_HOME: "%INSTALL_PATH%"
  configurations:
    - name: release
      output_path: build/release
execution_policies:
  - name: main
    runner: php
    message: "Running %ASSEMBLY.NAME%"
    execute:
      target: bin/main.php
  - name: setup
    runner: bash
    execute:
      target: bin/setup.sh
      silent: true
`

// SampleProject writes a project for packageName into a fresh
// temporary directory and returns the directory. The source tree is:
//
//	src/index.php      component (valid php)
//	src/logo.png       resource (binary)
//	src/notes.txt.bak  excluded
//	bin/main.php       php execution policy target
//	bin/setup.sh       bash execution policy target
func SampleProject(t *testing.T, packageName string) string {
	t.Helper()
	directory := t.TempDir()
	WriteTree(t, directory, map[string]string{
		"project.yaml":      strings.ReplaceAll(SampleProjectYAML, "PACKAGE", packageName),
		"src/index.php":     SampleIndex,
		"src/logo.png":      SampleLogo,
		"src/notes.txt.bak": "scratch",
		"bin/main.php":      "<?php\necho \"main\\n\";\n",
		"bin/setup.sh":      "#!/bin/sh\necho setup\n",
	})
	return directory
}
