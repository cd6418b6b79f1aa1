// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/config"
	"github.com/bureau-foundation/ncc/lib/fsutil"
	"github.com/bureau-foundation/ncc/lib/installer"
	"github.com/bureau-foundation/ncc/lib/pkglock"
	"github.com/bureau-foundation/ncc/lib/runner"
	"github.com/bureau-foundation/ncc/lib/testutil"
)

type testManager struct {
	*Manager
	config *config.Config
	store  *pkglock.Store
	stdout *bytes.Buffer
}

func newTestManager(t *testing.T, scope config.Scope) *testManager {
	t.Helper()
	cfg := config.WithRoot(t.TempDir())
	store := &pkglock.Store{Path: cfg.Paths.Lock, Scope: scope}
	stdout := &bytes.Buffer{}
	manager := New(Options{Config: cfg, Store: store, Stdout: stdout})
	return &testManager{Manager: manager, config: cfg, store: store, stdout: stdout}
}

// script is a bash execution unit to pack.
type script struct {
	policy artifact.ExecutionPolicy
	body   string
}

// writePackage saves a php package with one class component and the
// given bash units to a temporary artifact file.
func writePackage(t *testing.T, id, version, main string, scripts ...script) string {
	t.Helper()
	directory := t.TempDir()
	bash, err := runner.For(artifact.RunnerBash)
	if err != nil {
		t.Fatalf("runner.For: %v", err)
	}

	pkg := &artifact.Package{
		Header: artifact.Header{
			CompilerExtension: artifact.CompilerExtension{Extension: artifact.ExtensionPHP},
		},
		Assembly: artifact.Assembly{
			Name:    "Exec Test",
			Package: id,
			Version: version,
			UUID:    testutil.SampleUUID,
		},
		Components: []artifact.Component{
			{Name: "Marker.php", DataType: artifact.DataPlain, Data: "<?php\nclass Marker {}\n"},
		},
	}
	if main != "" {
		pkg.Header.Options = map[string]any{"main": main}
	}
	if err := pkg.Components[0].UpdateChecksum(); err != nil {
		t.Fatalf("UpdateChecksum: %v", err)
	}

	for _, entry := range scripts {
		path := filepath.Join(directory, entry.policy.Name+".sh")
		testutil.WriteTree(t, directory, map[string]string{entry.policy.Name + ".sh": entry.body})
		entry.policy.Runner = artifact.RunnerBash
		unit, err := bash.ProcessUnit(path, entry.policy)
		if err != nil {
			t.Fatalf("ProcessUnit(%s): %v", entry.policy.Name, err)
		}
		pkg.ExecutionUnits = append(pkg.ExecutionUnits, unit)
	}

	artifactPath := filepath.Join(directory, id+artifact.FileExtension)
	if err := pkg.Save(artifactPath, artifact.SaveOptions{Compression: artifact.CompressionZstd, CompactKeys: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return artifactPath
}

func requireBash(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
}

func TestInstallRecordsLock(t *testing.T) {
	manager := newTestManager(t, config.ScopeSystem)
	directory := testutil.SampleProject(t, "com.example.app")
	artifactPath, pkg, err := manager.Build(directory, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(pkg.Components) != 1 || len(pkg.Resources) != 1 || pkg.Assembly.Package != "com.example.app" {
		t.Fatalf("built package has %d components, %d resources, package %q",
			len(pkg.Components), len(pkg.Resources), pkg.Assembly.Package)
	}

	result, err := manager.Install(context.Background(), artifactPath)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	for _, name := range []string{"index.php", "logo.png"} {
		if !fsutil.Exists(filepath.Join(result.Paths.Source, name)) {
			t.Errorf("%s not installed", name)
		}
	}

	// The store on disk, not just the in-memory lock, has the version.
	lock, err := manager.store.Load()
	if err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	entry, found := lock.GetPackage("com.example.app")
	if !found {
		t.Fatal("package missing from saved lock")
	}
	if got := entry.LatestVersion().Version; got != "1.0.0" {
		t.Errorf("latest version = %q, want 1.0.0", got)
	}

	entries := manager.List()
	if len(entries) != 1 || entries[0].Name != "com.example.app" {
		t.Errorf("List = %+v, want one com.example.app entry", entries)
	}
}

func TestInstallRequiresSystemScope(t *testing.T) {
	manager := newTestManager(t, config.ScopeUser)
	artifactPath := writePackage(t, "com.example.user", "1.0.0", "")

	_, err := manager.Install(context.Background(), artifactPath)
	if !errors.Is(err, artifact.ErrAccessDenied) {
		t.Fatalf("Install error = %v, want ErrAccessDenied", err)
	}
	if fsutil.Exists(manager.config.Paths.Packages) {
		t.Error("install wrote files without permission to commit")
	}
}

func TestBuildTokenizesInstallPaths(t *testing.T) {
	manager := newTestManager(t, config.ScopeSystem)
	directory := testutil.SampleProject(t, "com.example.portable")
	paths := manager.config.InstallationPaths(artifact.ExtensionPHP, "com.example.portable")

	project := testutil.ReadFile(t, filepath.Join(directory, "project.yaml"))
	portable := strings.Replace(project, `APP_HOME: "%INSTALL_PATH%"`,
		`APP_HOME: "`+paths.Data+`/cache"`, 1)
	if portable == project {
		t.Fatal("sample project has no APP_HOME constant to rewrite")
	}
	testutil.WriteTree(t, directory, map[string]string{"project.yaml": portable})

	artifactPath, _, err := manager.Build(directory, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	pkg, err := artifact.Load(artifactPath)
	if err != nil {
		t.Fatalf("artifact.Load: %v", err)
	}
	if got, want := pkg.Header.RuntimeConstants["APP_HOME"], "%INSTALL_PATH.DATA%/cache"; got != want {
		t.Errorf("APP_HOME = %q, want %q", got, want)
	}

	result, err := manager.Install(context.Background(), artifactPath)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	constants, err := installer.ReadConstants(result.Paths)
	if err != nil {
		t.Fatalf("ReadConstants: %v", err)
	}
	if got, want := constants["APP_HOME"], paths.Data+"/cache"; got != want {
		t.Errorf("installed APP_HOME = %q, want %q", got, want)
	}
}

func TestStaticLinkAgainstInstalledPackage(t *testing.T) {
	manager := newTestManager(t, config.ScopeSystem)
	libraryPath, _, err := manager.Build(testutil.SampleProject(t, "com.example.lib"), "")
	if err != nil {
		t.Fatalf("building library: %v", err)
	}
	if _, err := manager.Install(context.Background(), libraryPath); err != nil {
		t.Fatalf("installing library: %v", err)
	}

	directory := testutil.SampleProject(t, "com.example.consumer")
	project := testutil.ReadFile(t, filepath.Join(directory, "project.yaml"))
	linked := strings.Replace(project, "  configurations:\n",
		"  dependencies:\n    - name: com.example.lib\n      source_type: static\n  configurations:\n", 1)
	if linked == project {
		t.Fatal("sample project has no configurations block to extend")
	}
	testutil.WriteTree(t, directory, map[string]string{"project.yaml": linked})

	_, pkg, err := manager.Build(directory, "")
	if err != nil {
		t.Fatalf("building consumer: %v", err)
	}
	if len(pkg.Dependencies) != 1 || pkg.Dependencies[0].Source != "libs/com.example.lib=1.0.0.lib" {
		t.Fatalf("dependencies = %+v, want linked library", pkg.Dependencies)
	}
}

func TestUninstallVersions(t *testing.T) {
	manager := newTestManager(t, config.ScopeSystem)
	ctx := context.Background()
	id := testutil.UniquePackage("multi")

	first, err := manager.Install(ctx, writePackage(t, id, "1.0.0", ""))
	if err != nil {
		t.Fatalf("installing 1.0.0: %v", err)
	}
	if _, err := manager.Install(ctx, writePackage(t, id, "2.0.0", "")); err != nil {
		t.Fatalf("installing 2.0.0: %v", err)
	}

	entry, _ := manager.Lock().GetPackage(id)
	if got := entry.VersionNames(); len(got) != 2 || got[0] != "1.0.0" || got[1] != "2.0.0" {
		t.Fatalf("versions = %v, want [1.0.0 2.0.0]", got)
	}

	if err := manager.Uninstall(ctx, id, "1.0.0"); err != nil {
		t.Fatalf("Uninstall 1.0.0: %v", err)
	}
	if !fsutil.Exists(first.Paths.Installation) {
		t.Error("installation directory removed while a version remains")
	}
	if fsutil.Exists(first.Artifact) {
		t.Error("archived artifact of removed version survived")
	}
	entry, _ = manager.Lock().GetPackage(id)
	if got := entry.VersionNames(); len(got) != 1 || got[0] != "2.0.0" {
		t.Fatalf("versions after uninstall = %v, want [2.0.0]", got)
	}

	if err := manager.Uninstall(ctx, id, ""); err != nil {
		t.Fatalf("Uninstall all: %v", err)
	}
	if fsutil.Exists(first.Paths.Installation) {
		t.Error("installation directory survived removal of the last version")
	}
	if _, found := manager.Lock().GetPackage(id); found {
		t.Error("package still registered")
	}

	if err := manager.Uninstall(ctx, id, ""); !errors.Is(err, artifact.ErrPackageNotFound) {
		t.Errorf("second Uninstall error = %v, want ErrPackageNotFound", err)
	}
}

func TestUninstallUnknownVersion(t *testing.T) {
	manager := newTestManager(t, config.ScopeSystem)
	id := testutil.UniquePackage("unknown")
	if _, err := manager.Install(context.Background(), writePackage(t, id, "1.0.0", "")); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if err := manager.Uninstall(context.Background(), id, "3.0.0"); !errors.Is(err, artifact.ErrVersionNotFound) {
		t.Errorf("Uninstall error = %v, want ErrVersionNotFound", err)
	}
}

func TestExecuteMainPolicy(t *testing.T) {
	requireBash(t)
	manager := newTestManager(t, config.ScopeSystem)
	id := testutil.UniquePackage("exec")
	artifactPath := writePackage(t, id, "1.0.0", "greet", script{
		policy: artifact.ExecutionPolicy{Name: "greet", Execute: artifact.Execute{Options: []string{"--from-policy"}}},
		body:   "#!/bin/bash\necho \"greet $*\"\n",
	})
	if _, err := manager.Install(context.Background(), artifactPath); err != nil {
		t.Fatalf("Install: %v", err)
	}

	code, err := manager.Execute(context.Background(), id, "", "", []string{"extra"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if got := manager.stdout.String(); got != "greet --from-policy extra\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestExecuteExitHandlers(t *testing.T) {
	requireBash(t)
	manager := newTestManager(t, config.ScopeSystem)
	id := testutil.UniquePackage("handlers")
	artifactPath := writePackage(t, id, "1.0.0", "first",
		script{
			policy: artifact.ExecutionPolicy{
				Name: "first",
				ExitHandlers: &artifact.ExitHandlers{
					Warning: &artifact.ExitHandle{Message: "first warned", Run: "second"},
				},
			},
			body: "#!/bin/bash\necho first\nexit 1\n",
		},
		script{
			policy: artifact.ExecutionPolicy{
				Name: "second",
				ExitHandlers: &artifact.ExitHandlers{
					Error: &artifact.ExitHandle{EndProcess: true, ExitCode: 7},
				},
			},
			body: "#!/bin/bash\necho second\nexit 3\n",
		},
	)
	if _, err := manager.Install(context.Background(), artifactPath); err != nil {
		t.Fatalf("Install: %v", err)
	}

	code, err := manager.Execute(context.Background(), id, "1.0.0", "", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if code != 7 {
		t.Errorf("exit code = %d, want 7 from the end-process handler", code)
	}
	if got := manager.stdout.String(); got != "first\nsecond\n" {
		t.Errorf("stdout = %q, want both policies' output", got)
	}
}

func TestExecuteHandlerLoop(t *testing.T) {
	requireBash(t)
	manager := newTestManager(t, config.ScopeSystem)
	id := testutil.UniquePackage("loop")
	artifactPath := writePackage(t, id, "1.0.0", "ping", script{
		policy: artifact.ExecutionPolicy{
			Name:         "ping",
			ExitHandlers: &artifact.ExitHandlers{Success: &artifact.ExitHandle{Run: "ping"}},
		},
		body: "#!/bin/bash\nexit 0\n",
	})
	if _, err := manager.Install(context.Background(), artifactPath); err != nil {
		t.Fatalf("Install: %v", err)
	}

	if _, err := manager.Execute(context.Background(), id, "", "", nil); !errors.Is(err, artifact.ErrConfiguration) {
		t.Fatalf("Execute error = %v, want ErrConfiguration for the loop", err)
	}
}

func TestExecutePHPUnitUnsupported(t *testing.T) {
	manager := newTestManager(t, config.ScopeSystem)
	artifactPath, _, err := manager.Build(testutil.SampleProject(t, "com.example.php"), "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := manager.Install(context.Background(), artifactPath); err != nil {
		t.Fatalf("Install: %v", err)
	}

	_, err = manager.Execute(context.Background(), "com.example.php", "", "main", nil)
	if !errors.Is(err, artifact.ErrUnsupportedRunner) {
		t.Fatalf("Execute error = %v, want ErrUnsupportedRunner", err)
	}
}

func TestExecuteLookupErrors(t *testing.T) {
	manager := newTestManager(t, config.ScopeSystem)
	id := testutil.UniquePackage("lookup")
	if _, err := manager.Install(context.Background(), writePackage(t, id, "1.0.0", "")); err != nil {
		t.Fatalf("Install: %v", err)
	}

	tests := []struct {
		name    string
		pkg     string
		version string
		policy  string
		want    error
	}{
		{"unknown package", "com.example.absent", "", "main", artifact.ErrPackageNotFound},
		{"unknown version", id, "9.0.0", "main", artifact.ErrVersionNotFound},
		{"no main policy", id, "", "", artifact.ErrConfiguration},
		{"unknown policy", id, "", "missing", artifact.ErrFileNotFound},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := manager.Execute(context.Background(), test.pkg, test.version, test.policy, nil)
			if !errors.Is(err, test.want) {
				t.Errorf("Execute error = %v, want %v", err, test.want)
			}
		})
	}
}

func TestExecuteStaleVersion(t *testing.T) {
	manager := newTestManager(t, config.ScopeSystem)
	ctx := context.Background()
	id := testutil.UniquePackage("stale")
	for _, version := range []string{"1.0.0", "2.0.0"} {
		if _, err := manager.Install(ctx, writePackage(t, id, version, "")); err != nil {
			t.Fatalf("installing %s: %v", version, err)
		}
	}

	// Both versions share one installation directory, which now holds
	// 2.0.0.
	_, err := manager.Execute(ctx, id, "1.0.0", "anything", nil)
	if !errors.Is(err, artifact.ErrVersionNotFound) {
		t.Fatalf("Execute error = %v, want ErrVersionNotFound", err)
	}
}

var _ installer.Progress = (*countingProgress)(nil)

type countingProgress struct{ steps int }

func (p *countingProgress) Step(int, int, string) { p.steps++ }

func TestInstallReportsProgress(t *testing.T) {
	cfg := config.WithRoot(t.TempDir())
	progress := &countingProgress{}
	manager := New(Options{
		Config:   cfg,
		Store:    &pkglock.Store{Path: cfg.Paths.Lock, Scope: config.ScopeSystem},
		Progress: progress,
	})
	if _, err := manager.Install(context.Background(), writePackage(t, testutil.UniquePackage("progress"), "1.0.0", "")); err != nil {
		t.Fatalf("Install: %v", err)
	}
	// data files, one component, post install, register
	if progress.steps != 4 {
		t.Errorf("progress steps = %d, want 4", progress.steps)
	}
}
