// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected development environment, got %s", cfg.Environment)
	}
	if cfg.Paths.Root != DefaultRoot {
		t.Errorf("expected root %s, got %s", DefaultRoot, cfg.Paths.Root)
	}
	if cfg.Paths.Lock != "/var/ncc/package.lck" {
		t.Errorf("unexpected lock path %s", cfg.Paths.Lock)
	}
	if cfg.Compiler.Compression != "zstd" {
		t.Errorf("expected zstd compression, got %s", cfg.Compiler.Compression)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_WithoutNccConfig(t *testing.T) {
	t.Setenv("NCC_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.Root != DefaultRoot {
		t.Errorf("expected default root, got %s", cfg.Paths.Root)
	}
}

func TestLoad_WithNccConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "ncc.yaml")

	content := `
environment: production
paths:
  root: /srv/ncc
  packages: ${NCC_ROOT}/pkg
  lock: ${NCC_ROOT}/package.lck
  cache: ${NCC_ROOT}/cache
compiler:
  compression: lz4
  compact_keys: false
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NCC_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != Production {
		t.Errorf("expected production, got %s", cfg.Environment)
	}
	if cfg.Paths.Packages != "/srv/ncc/pkg" {
		t.Errorf("expected expanded packages path, got %s", cfg.Paths.Packages)
	}
	if cfg.Paths.Lock != "/srv/ncc/package.lck" {
		t.Errorf("expected expanded lock path, got %s", cfg.Paths.Lock)
	}
	if cfg.Compiler.Compression != "lz4" || cfg.Compiler.CompactKeys {
		t.Errorf("unexpected compiler config %+v", cfg.Compiler)
	}
}

func TestLoadFile_EnvironmentOverrides(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "ncc.yaml")

	content := `
environment: staging
paths:
  root: /base
  packages: /base/packages
  lock: /base/package.lck
staging:
  paths:
    packages: /staging/packages
  compiler:
    compression: none
production:
  paths:
    packages: /production/packages
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Paths.Packages != "/staging/packages" {
		t.Errorf("staging override not applied: %s", cfg.Paths.Packages)
	}
	if cfg.Paths.Lock != "/base/package.lck" {
		t.Errorf("base lock path lost: %s", cfg.Paths.Lock)
	}
	if cfg.Compiler.Compression != "none" {
		t.Errorf("compiler override not applied: %s", cfg.Compiler.Compression)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bad environment",
			content: "environment: moon\n",
			want:    "invalid environment",
		},
		{
			name:    "bad compression",
			content: "compiler:\n  compression: gzip\n",
			want:    "compiler.compression",
		},
		{
			name:    "malformed yaml",
			content: "paths: [\n",
			want:    "parsing",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(tempDir, strings.ReplaceAll(test.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(test.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q does not mention %q", err, test.want)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("NCC_TEST_VAR", "from-env")
	vars := map[string]string{"NCC_ROOT": "/root/ncc"}

	tests := []struct {
		input string
		want  string
	}{
		{"${NCC_ROOT}/packages", "/root/ncc/packages"},
		{"${NCC_TEST_VAR}", "from-env"},
		{"${NCC_UNSET_VAR:-fallback}", "fallback"},
		{"plain", "plain"},
	}
	for _, test := range tests {
		if got := expandVars(test.input, vars); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestInstallationPaths(t *testing.T) {
	cfg := WithRoot("/tmp/ncc")
	paths := cfg.InstallationPaths("php", "com.example.app")

	want := InstallationPaths{
		Installation: "/tmp/ncc/packages/php/com.example.app",
		Bin:          "/tmp/ncc/packages/php/com.example.app/bin",
		Source:       "/tmp/ncc/packages/php/com.example.app/src",
		Data:         "/tmp/ncc/packages/php/com.example.app/data",
	}
	if paths != want {
		t.Errorf("InstallationPaths = %+v, want %+v", paths, want)
	}
	if got := paths.DataFile("assembly"); got != want.Data+"/assembly" {
		t.Errorf("DataFile = %s", got)
	}
}

func TestInstallationPathsCreate(t *testing.T) {
	paths := NewInstallationPaths(filepath.Join(t.TempDir(), "pkg"))
	if err := paths.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, directory := range []string{paths.Installation, paths.Bin, paths.Source, paths.Data} {
		info, err := os.Stat(directory)
		if err != nil {
			t.Fatalf("stat %s: %v", directory, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", directory)
		}
	}
}

func TestEnsurePaths(t *testing.T) {
	cfg := WithRoot(filepath.Join(t.TempDir(), "root"))
	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.Packages); err != nil {
		t.Errorf("packages directory missing: %v", err)
	}
}

func TestDetectScope(t *testing.T) {
	scope := DetectScope()
	want := ScopeUser
	if os.Geteuid() == 0 {
		want = ScopeSystem
	}
	if scope != want {
		t.Errorf("DetectScope = %s, want %s", scope, want)
	}
}
