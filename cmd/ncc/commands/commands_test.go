// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/ncc/cmd/ncc/cli"
	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/config"
	"github.com/bureau-foundation/ncc/lib/pkglock"
)

// harness runs commands against a system configuration rooted in a
// temporary directory.
type harness struct {
	t          *testing.T
	root       string
	configPath string
	stdout     bytes.Buffer
	stderr     bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()
	configPath := filepath.Join(root, "ncc.yaml")
	content := fmt.Sprintf(`paths:
  root: %[1]s
  packages: %[1]s/packages
  lock: %[1]s/package.lck
  cache: %[1]s/cache
`, root)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return &harness{t: t, root: root, configPath: configPath}
}

// run executes one command line. --system-config is appended for
// commands that accept it.
func (h *harness) run(args ...string) error {
	h.t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	switch args[0] {
	case "build", "install", "uninstall", "list", "exec":
		args = append(args, "--system-config", h.configPath)
	}
	return NewRoot(IO{Stdout: &h.stdout, Stderr: &h.stderr}).Execute(args)
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	if err := h.run(args...); err != nil {
		h.t.Fatalf("ncc %s: %v\nstderr:\n%s", strings.Join(args, " "), err, h.stderr.String())
	}
	return h.stdout.String()
}

// scaffold creates and builds a project, returning the artifact path.
func (h *harness) scaffold(packageName string) string {
	h.t.Helper()
	projectDir := filepath.Join(h.root, "project")
	h.mustRun("project", "init", "--name", "Demo App", "--package", packageName, "--path", projectDir)

	h.mustRun("build", "--path", projectDir, "--json")
	var result buildResult
	if err := json.Unmarshal(h.stdout.Bytes(), &result); err != nil {
		h.t.Fatalf("decoding build output %q: %v", h.stdout.String(), err)
	}
	return result.Artifact
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	output := h.mustRun("version")
	if !strings.HasPrefix(output, "ncc ") {
		t.Errorf("version output = %q, want ncc prefix", output)
	}
	if !strings.Contains(output, "BLAKE3: ") {
		t.Errorf("version output = %q, want binary digest", output)
	}
}

func TestProjectInitAndBuild(t *testing.T) {
	h := newHarness(t)
	projectDir := filepath.Join(h.root, "project")

	output := h.mustRun("project", "init", "--name", "Demo App", "--package", "com.test.demo", "--path", projectDir)
	if !strings.Contains(output, "com.test.demo") {
		t.Errorf("init output = %q", output)
	}
	if _, err := os.Stat(filepath.Join(projectDir, "src", "main.php")); err != nil {
		t.Errorf("scaffolded main.php: %v", err)
	}

	err := h.run("project", "init", "--name", "Demo App", "--package", "com.test.demo", "--path", projectDir)
	if cli.Categorize(err) != cli.CategoryValidation {
		t.Errorf("second init error = %v, want validation error", err)
	}

	output = h.mustRun("build", "--path", projectDir)
	want := filepath.Join(projectDir, "build", "release", "com.test.demo.ncc")
	if output != fmt.Sprintf("built com.test.demo 1.0.0: %s\n", want) {
		t.Errorf("build output = %q, want artifact %s", output, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("artifact not written: %v", err)
	}
}

func TestProjectInitRequiresNameAndPackage(t *testing.T) {
	h := newHarness(t)
	err := h.run("project", "init", "--package", "com.test.demo", "--path", h.root)
	if cli.Categorize(err) != cli.CategoryValidation {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestBuildUnknownConfiguration(t *testing.T) {
	h := newHarness(t)
	h.scaffold("com.test.demo")

	err := h.run("build", "--path", filepath.Join(h.root, "project"), "--configuration", "nightly")
	if cli.Categorize(err) != cli.CategoryValidation {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestInspectSummary(t *testing.T) {
	h := newHarness(t)
	artifactPath := h.scaffold("com.test.demo")

	output := h.mustRun("inspect", artifactPath)
	for _, want := range []string{"com.test.demo", "Demo App", "1.0.0", "Main policy:", "main.php", "Execution units:"} {
		if !strings.Contains(output, want) {
			t.Errorf("inspect output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "MISMATCH") {
		t.Errorf("freshly built artifact reports a checksum mismatch:\n%s", output)
	}

	h.mustRun("inspect", artifactPath, "--json")
	var summary inspectSummary
	if err := json.Unmarshal(h.stdout.Bytes(), &summary); err != nil {
		t.Fatalf("decoding inspect --json: %v", err)
	}
	if summary.Assembly.Package != "com.test.demo" {
		t.Errorf("package = %q", summary.Assembly.Package)
	}
	if len(summary.Components) != 1 || summary.Components[0].Name != "main.php" || !summary.Components[0].ChecksumOK {
		t.Errorf("components = %+v, want one verified main.php", summary.Components)
	}
	if len(summary.ExecutionUnits) != 1 || summary.ExecutionUnits[0].Kind != string(artifact.RunnerPHP) {
		t.Errorf("execution units = %+v, want one php unit", summary.ExecutionUnits)
	}
}

func TestInspectSource(t *testing.T) {
	h := newHarness(t)
	artifactPath := h.scaffold("com.test.demo")

	plain := h.mustRun("inspect", artifactPath, "--source", "main.php", "--color", "never")
	if !strings.Contains(plain, "echo") || strings.Contains(plain, "\x1b[") {
		t.Errorf("plain source = %q", plain)
	}

	highlighted := h.mustRun("inspect", artifactPath, "--source", "main.php", "--color", "always")
	if !strings.Contains(highlighted, "\x1b[") {
		t.Errorf("highlighted source has no escape sequences: %q", highlighted)
	}

	err := h.run("inspect", artifactPath, "--source", "missing.php")
	if cli.Categorize(err) != cli.CategoryNotFound {
		t.Errorf("missing component error = %v, want not found", err)
	}
	err = h.run("inspect", artifactPath, "--source", "main.php", "--color", "sometimes")
	if cli.Categorize(err) != cli.CategoryValidation {
		t.Errorf("bad --color error = %v, want validation", err)
	}
}

func TestInspectMissingFile(t *testing.T) {
	h := newHarness(t)
	err := h.run("inspect", filepath.Join(h.root, "absent.ncc"))
	if cli.Categorize(err) != cli.CategoryNotFound {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestComponentSourceDataTypes(t *testing.T) {
	pkg := &artifact.Package{
		Assembly: artifact.Assembly{Package: "com.test.types"},
		Components: []artifact.Component{
			{Name: "plain.txt", DataType: artifact.DataPlain, Data: "plain text"},
			{Name: "encoded.bin", DataType: artifact.DataBase64, Data: "aGVsbG8="},
			{Name: "broken.bin", DataType: artifact.DataBase64, Data: "!!!"},
		},
	}

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"plain.txt", "plain text", false},
		{"encoded.bin", "hello", false},
		{"broken.bin", "", true},
	}
	for _, test := range tests {
		got, err := componentSource(pkg, test.name)
		if test.wantErr {
			if err == nil {
				t.Errorf("componentSource(%s) succeeded, want error", test.name)
			}
			continue
		}
		if err != nil || got != test.want {
			t.Errorf("componentSource(%s) = (%q, %v), want %q", test.name, got, err, test.want)
		}
	}
}

func TestListEmpty(t *testing.T) {
	h := newHarness(t)
	if output := h.mustRun("list"); output != "no packages installed\n" {
		t.Errorf("list output = %q", output)
	}
	if output := h.mustRun("list", "--json"); strings.TrimSpace(output) != "[]" {
		t.Errorf("list --json output = %q, want []", output)
	}
}

func TestRenderPackageTable(t *testing.T) {
	entries := []*pkglock.Entry{
		{
			Name:                "com.test.alpha",
			Compiler:            artifact.CompilerExtension{Extension: "php", MinimumVersion: "8.0"},
			MainExecutionPolicy: "main",
			Versions:            []pkglock.VersionEntry{{Version: "1.0.0"}, {Version: "1.1.0"}},
		},
		{
			Name:     "com.test.beta",
			Compiler: artifact.CompilerExtension{Extension: "php"},
			Versions: []pkglock.VersionEntry{{Version: "2.0.0"}},
		},
	}

	var out bytes.Buffer
	rendered := renderPackageTable(lipgloss.NewRenderer(&out), entries)
	for _, want := range []string{"PACKAGE", "com.test.alpha", "1.0.0, 1.1.0", "php >=8.0", "com.test.beta", "2.0.0"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("table missing %q:\n%s", want, rendered)
		}
	}
}

func TestCompilerLabel(t *testing.T) {
	tests := []struct {
		compiler artifact.CompilerExtension
		want     string
	}{
		{artifact.CompilerExtension{Extension: "php"}, "php"},
		{artifact.CompilerExtension{Extension: "php", MinimumVersion: "8.0"}, "php >=8.0"},
		{artifact.CompilerExtension{Extension: "php", MaximumVersion: "8.3"}, "php <=8.3"},
		{artifact.CompilerExtension{Extension: "php", MinimumVersion: "8.0", MaximumVersion: "8.3"}, "php 8.0-8.3"},
	}
	for _, test := range tests {
		if got := compilerLabel(test.compiler); got != test.want {
			t.Errorf("compilerLabel(%+v) = %q, want %q", test.compiler, got, test.want)
		}
	}
}

func TestInstallListUninstall(t *testing.T) {
	h := newHarness(t)
	artifactPath := h.scaffold("com.test.demo")

	err := h.run("install", artifactPath, "--quiet")
	if config.DetectScope() != config.ScopeSystem {
		if cli.Categorize(err) != cli.CategoryForbidden {
			t.Fatalf("install as %s = %v, want forbidden", config.DetectScope(), err)
		}
		return
	}
	if err != nil {
		t.Fatalf("install: %v\nstderr:\n%s", err, h.stderr.String())
	}
	wantLocation := filepath.Join(h.root, "packages", "php", "com.test.demo")
	if output := h.stdout.String(); !strings.Contains(output, wantLocation) {
		t.Errorf("install output = %q, want location %s", output, wantLocation)
	}

	listed := h.mustRun("list")
	if !strings.Contains(listed, "com.test.demo") || !strings.Contains(listed, "1.0.0") {
		t.Errorf("list output = %q", listed)
	}

	// The scaffolded policy runs under php, which exec does not start.
	err = h.run("exec", "com.test.demo")
	if cli.Categorize(err) != cli.CategoryValidation {
		t.Errorf("exec php policy = %v, want validation error", err)
	}

	h.mustRun("uninstall", "com.test.demo", "--version", "1.0.0")
	if _, err := os.Stat(wantLocation); !os.IsNotExist(err) {
		t.Errorf("installation directory still present after uninstall: %v", err)
	}
	if output := h.mustRun("list"); output != "no packages installed\n" {
		t.Errorf("list after uninstall = %q", output)
	}
}

func TestExecUnknownPackage(t *testing.T) {
	h := newHarness(t)
	err := h.run("exec", "com.test.absent")
	if cli.Categorize(err) != cli.CategoryNotFound {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestArgumentValidation(t *testing.T) {
	h := newHarness(t)
	tests := [][]string{
		{"install"},
		{"uninstall"},
		{"exec"},
		{"inspect"},
		{"list", "extra"},
		{"instal"},
	}
	for _, args := range tests {
		err := h.run(args...)
		if cli.Categorize(err) != cli.CategoryValidation {
			t.Errorf("ncc %s: error = %v, want validation", strings.Join(args, " "), err)
		}
	}
}

func TestProgressBar(t *testing.T) {
	var out bytes.Buffer
	bar := newProgressBar(&out)

	bar.Step(1, 4, "data files")
	if !strings.HasPrefix(out.String(), "\r") || strings.HasSuffix(out.String(), "\n") {
		t.Errorf("intermediate step = %q, want carriage-return redraw", out.String())
	}
	bar.Step(4, 4, "registered")
	if !strings.HasSuffix(out.String(), "\n") {
		t.Errorf("final step = %q, want trailing newline", out.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("components/very/long/name.php", 10); got != "component…" {
		t.Errorf("truncate(long) = %q, want %q", got, "component…")
	}
}
