// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bureau-foundation/ncc/lib/artifact"
)

const sampleYAML = `
project:
  compiler:
    extension: php
    minimum_version: "8.0"
  options:
    vendor: example
assembly:
  name: Example
  package: com.example.app
  version: 1.0.0
  uuid: 9b2e8f4c-3c1d-4b7a-9e2f-5d6c7b8a9f01
build:
  source_path: src
  default_configuration: release
  main: main
  exclude_files: ["*.bak"]
  define_constants:
    MODE: project
    SHARED: project
  dependencies:
    - name: com.example.lib
      source_type: static
      version: 2.0.0
  configurations:
    - name: release
      output_path: build/release
      define_constants:
        SHARED: configuration
        LEVEL: release
    - name: debug
      output_path: build/debug
      exclude_files: ["tests"]
execution_policies:
  - name: main
    runner: php
    execute:
      target: src/main.php
      working_directory: "%CWD%"
    exit_handlers:
      error:
        message: failed
        run: cleanup
  - name: cleanup
    runner: bash
    execute:
      target: scripts/cleanup.sh
`

const sampleJSON = `{
  // JSONC: comments and trailing commas are allowed.
  "project": {"compiler": {"extension": "php", "minimum_version": "8.0"}, "options": {"vendor": "example"}},
  "assembly": {
    "name": "Example",
    "package": "com.example.app",
    "version": "1.0.0",
    "uuid": "9b2e8f4c-3c1d-4b7a-9e2f-5d6c7b8a9f01",
  },
  "build": {
    "source_path": "src",
    "default_configuration": "release",
    "main": "main",
    "exclude_files": ["*.bak"],
    "define_constants": {"MODE": "project", "SHARED": "project"},
    "dependencies": [{"name": "com.example.lib", "source_type": "static", "version": "2.0.0"}],
    "configurations": [
      {"name": "release", "output_path": "build/release", "define_constants": {"SHARED": "configuration", "LEVEL": "release"}},
      {"name": "debug", "output_path": "build/debug", "exclude_files": ["tests"]},
    ],
  },
  "execution_policies": [
    {"name": "main", "runner": "php", "execute": {"target": "src/main.php", "working_directory": "%CWD%"},
     "exit_handlers": {"error": {"message": "failed", "run": "cleanup"}}},
    {"name": "cleanup", "runner": "bash", "execute": {"target": "scripts/cleanup.sh"}},
  ],
}`

func TestParse_YAMLAndJSONAgree(t *testing.T) {
	fromYAML, err := Parse([]byte(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatalf("Parse YAML: %v", err)
	}
	fromJSON, err := Parse([]byte(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatalf("Parse JSON: %v", err)
	}

	if err := fromYAML.Validate(); err != nil {
		t.Fatalf("YAML project invalid: %v", err)
	}
	if err := fromJSON.Validate(); err != nil {
		t.Fatalf("JSON project invalid: %v", err)
	}

	if fromYAML.Assembly != fromJSON.Assembly {
		t.Errorf("assemblies differ:\n yaml %+v\n json %+v", fromYAML.Assembly, fromJSON.Assembly)
	}
	if !reflect.DeepEqual(fromYAML.Build, fromJSON.Build) {
		t.Errorf("build sections differ:\n yaml %+v\n json %+v", fromYAML.Build, fromJSON.Build)
	}
	if !reflect.DeepEqual(fromYAML.ExecutionPolicies, fromJSON.ExecutionPolicies) {
		t.Errorf("policies differ:\n yaml %+v\n json %+v", fromYAML.ExecutionPolicies, fromJSON.ExecutionPolicies)
	}
	if fromYAML.ExecutionPolicies[0].ExitHandlers.Error.Run != "cleanup" {
		t.Errorf("exit handler not decoded: %+v", fromYAML.ExecutionPolicies[0].ExitHandlers)
	}
}

func TestParse_IntegerOptionsAreInt64(t *testing.T) {
	source := strings.Replace(sampleYAML, "    vendor: example\n",
		"    vendor: example\n    retries: 3\n    limits: {depth: -2, ports: [8080]}\n", 1)
	project, err := Parse([]byte(source), FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := map[string]any{
		"vendor":  "example",
		"retries": int64(3),
		"limits":  map[string]any{"depth": int64(-2), "ports": []any{int64(8080)}},
	}
	if !reflect.DeepEqual(project.Project.Options, want) {
		t.Errorf("options = %#v, want %#v", project.Project.Options, want)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte("build: [\n"), FormatYAML); !errors.Is(err, artifact.ErrConfiguration) {
		t.Errorf("malformed YAML: expected ErrConfiguration, got %v", err)
	}
	if _, err := Parse([]byte("{"), FormatJSON); !errors.Is(err, artifact.ErrConfiguration) {
		t.Errorf("malformed JSON: expected ErrConfiguration, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	directory := t.TempDir()

	if _, err := Load(directory); !errors.Is(err, artifact.ErrFileNotFound) {
		t.Fatalf("empty directory: expected ErrFileNotFound, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(directory, FileJSON), []byte(sampleJSON), 0644); err != nil {
		t.Fatal(err)
	}
	project, err := Load(directory)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if project.Assembly.Package != "com.example.app" {
		t.Errorf("package = %q", project.Assembly.Package)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Project)
		property string
	}{
		{"missing extension", func(p *Project) { p.Project.Compiler.Extension = "" }, "project.compiler.extension"},
		{"bad package", func(p *Project) { p.Assembly.Package = "Example" }, "assembly.package"},
		{"bad version", func(p *Project) { p.Assembly.Version = "one" }, "assembly.version"},
		{"bad uuid", func(p *Project) { p.Assembly.UUID = "not-a-uuid" }, "assembly.uuid"},
		{"absolute source", func(p *Project) { p.Build.SourcePath = "/src" }, "build.source_path"},
		{"escaping source", func(p *Project) { p.Build.SourcePath = "../src" }, "build.source_path"},
		{"bad compression", func(p *Project) { p.Build.Compression = "gzip" }, "build.compression"},
		{"bad pattern", func(p *Project) { p.Build.ExcludeFiles = []string{"["} }, "build.exclude_files[0]"},
		{"duplicate configuration", func(p *Project) { p.Build.Configurations[1].Name = "release" }, "build.configurations[1].name"},
		{"missing output", func(p *Project) { p.Build.Configurations[0].OutputPath = "" }, "build.configurations[0].output_path"},
		{"unknown default", func(p *Project) { p.Build.DefaultConfiguration = "nightly" }, "build.default_configuration"},
		{"unnamed dependency", func(p *Project) { p.Build.Dependencies[0].Name = "" }, "build.dependencies[0].name"},
		{"unknown runner", func(p *Project) { p.ExecutionPolicies[1].Runner = "ruby" }, "execution_policies[1].runner"},
		{"missing target", func(p *Project) { p.ExecutionPolicies[0].Execute.Target = "" }, "execution_policies[0].execute.target"},
		{"policy name with slash", func(p *Project) { p.ExecutionPolicies[1].Name = "tools/cleanup" }, "execution_policies[1].name"},
		{"policy name with backslash", func(p *Project) { p.ExecutionPolicies[1].Name = `tools\cleanup` }, "execution_policies[1].name"},
		{"policy name dot-dot", func(p *Project) { p.ExecutionPolicies[1].Name = ".." }, "execution_policies[1].name"},
		{"unknown main", func(p *Project) { p.Build.Main = "serve" }, "build.main"},
		{"undefined handler policy", func(p *Project) { p.ExecutionPolicies[0].ExitHandlers.Error.Run = "missing" }, "execution_policies[0].exit_handlers.error.run"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			project, err := Parse([]byte(sampleYAML), FormatYAML)
			if err != nil {
				t.Fatal(err)
			}
			test.mutate(project)

			err = project.Validate()
			var configurationError *artifact.ConfigurationError
			if !errors.As(err, &configurationError) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if configurationError.Property != test.property {
				t.Errorf("property = %q, want %q", configurationError.Property, test.property)
			}
			if !errors.Is(err, artifact.ErrConfiguration) {
				t.Error("error does not match ErrConfiguration")
			}
		})
	}
}

func TestConfiguration(t *testing.T) {
	project, err := Parse([]byte(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}

	release, err := project.Configuration("")
	if err != nil {
		t.Fatalf("Configuration default: %v", err)
	}
	if release.Name != "release" || release.OutputPath != "build/release" {
		t.Errorf("default selection = %+v", release)
	}
	wantConstants := map[string]string{"MODE": "project", "SHARED": "project", "LEVEL": "release"}
	if !reflect.DeepEqual(release.Constants, wantConstants) {
		t.Errorf("constants = %v, want %v", release.Constants, wantConstants)
	}
	if release.Options["main"] != "main" || release.Options["vendor"] != "example" {
		t.Errorf("options = %v", release.Options)
	}
	if len(release.Dependencies) != 1 || release.Dependencies[0].SourceType != artifact.SourceStatic {
		t.Errorf("dependencies = %+v", release.Dependencies)
	}

	debug, err := project.Configuration("debug")
	if err != nil {
		t.Fatalf("Configuration debug: %v", err)
	}
	if !reflect.DeepEqual(debug.ExcludeFiles, []string{"*.bak", "tests"}) {
		t.Errorf("debug excludes = %v", debug.ExcludeFiles)
	}

	if _, err := project.Configuration("nightly"); !errors.Is(err, artifact.ErrConfiguration) {
		t.Errorf("unknown configuration: expected ErrConfiguration, got %v", err)
	}
}

func TestConfiguration_NoneDeclared(t *testing.T) {
	project := &Project{Build: Build{SourcePath: "src"}}
	resolved, err := project.Configuration("")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.OutputPath != DefaultOutputPath {
		t.Errorf("output path = %q, want %q", resolved.OutputPath, DefaultOutputPath)
	}
}

func TestExcluded(t *testing.T) {
	resolved := &Resolved{ExcludeFiles: []string{"*.bak", "tests", "src/vendor/*", "cache/"}}

	tests := []struct {
		path string
		want bool
	}{
		{"src/main.php", false},
		{"src/main.php.bak", true},
		{"tests/unit.php", true},
		{"src/tests/unit.php", true},
		{"src/vendor/lib.php", true},
		{"src/vendor/lib/deep.php", true},
		{"cache/item", true},
		{"src/cachefile", false},
	}
	for _, test := range tests {
		if got := resolved.Excluded(test.path); got != test.want {
			t.Errorf("Excluded(%q) = %v, want %v", test.path, got, test.want)
		}
	}
}

func TestInitAndScaffoldRoundTrip(t *testing.T) {
	for _, useJSON := range []bool{false, true} {
		directory := t.TempDir()
		created, path, err := Init(directory, "Example", "com.example.app", useJSON)
		if err != nil {
			t.Fatalf("Init(json=%v): %v", useJSON, err)
		}
		if _, err := os.Stat(filepath.Join(directory, "src", "main.php")); err != nil {
			t.Errorf("main.php not written: %v", err)
		}

		loaded, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if !reflect.DeepEqual(created, loaded) {
			t.Errorf("json=%v round trip mismatch:\n got %+v\nwant %+v", useJSON, loaded, created)
		}

		if _, _, err := Init(directory, "Example", "com.example.app", useJSON); !errors.Is(err, artifact.ErrConfiguration) {
			t.Errorf("second Init: expected ErrConfiguration, got %v", err)
		}
	}
}
