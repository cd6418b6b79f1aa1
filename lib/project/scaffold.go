// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/fsutil"
)

// Scaffold returns a minimal project for a new package: a php
// compiler, a src/ source directory, release and debug
// configurations, and a "main" policy running src/main.php.
func Scaffold(name, packageName string) *Project {
	return &Project{
		Project: Settings{
			Compiler: artifact.CompilerExtension{
				Extension:      artifact.ExtensionPHP,
				MinimumVersion: "8.0",
				MaximumVersion: "8.3",
			},
		},
		Assembly: artifact.Assembly{
			Name:    name,
			Package: packageName,
			Version: "1.0.0",
			UUID:    artifact.NewUUID(),
		},
		Build: Build{
			SourcePath:           "src",
			DefaultConfiguration: "release",
			Main:                 "main",
			ExcludeFiles:         []string{".git", "*.bak"},
			Configurations: []Configuration{
				{Name: "release", OutputPath: "build/release"},
				{Name: "debug", OutputPath: "build/debug", DefineConstants: map[string]string{"DEBUG": "1"}},
			},
		},
		ExecutionPolicies: []artifact.ExecutionPolicy{{
			Name:   "main",
			Runner: artifact.RunnerPHP,
			Execute: artifact.Execute{
				Target:           "src/main.php",
				WorkingDirectory: artifact.DefaultWorkingDirectory,
			},
		}},
	}
}

const scaffoldMain = `<?php

namespace App;

final class Main
{
    public static function run(): void
    {
        echo "Hello from %ASSEMBLY.NAME%\n";
    }
}

Main::run();
`

// Init writes a scaffolded project into directory: the project file
// (YAML unless useJSON) and src/main.php. It refuses to overwrite an
// existing project file.
func Init(directory, name, packageName string, useJSON bool) (*Project, string, error) {
	project := Scaffold(name, packageName)
	if err := project.Validate(); err != nil {
		return nil, "", err
	}

	if existing, err := Find(directory); err == nil {
		return nil, "", fmt.Errorf("%w: %s already exists", artifact.ErrConfiguration, existing)
	}

	fileName := FileYAML
	if useJSON {
		fileName = FileJSON
	}
	projectPath := filepath.Join(directory, fileName)
	if err := project.Save(projectPath); err != nil {
		return nil, "", err
	}

	mainPath := filepath.Join(directory, "src", "main.php")
	if !fsutil.Exists(mainPath) {
		if err := os.MkdirAll(filepath.Dir(mainPath), 0755); err != nil {
			return nil, "", fmt.Errorf("%w: %v", artifact.ErrIO, err)
		}
		if err := fsutil.WriteFileAtomic(mainPath, []byte(scaffoldMain), 0644); err != nil {
			return nil, "", fmt.Errorf("%w: %v", artifact.ErrIO, err)
		}
	}
	return project, projectPath, nil
}
