// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/codec"
	"github.com/bureau-foundation/ncc/lib/constants"
	"github.com/bureau-foundation/ncc/lib/project"
	"github.com/bureau-foundation/ncc/lib/runner"
)

// Build runs the compile passes in order (execution policies,
// components, resources, constants) and returns the finished package.
func (b *Builder) Build() (*artifact.Package, error) {
	if err := b.requirePrepared(); err != nil {
		return nil, err
	}
	if err := b.CompileExecutionPolicies(); err != nil {
		return nil, err
	}
	if err := b.CompileComponents(); err != nil {
		return nil, err
	}
	if err := b.CompileResources(); err != nil {
		return nil, err
	}
	if err := b.CompileConstants(); err != nil {
		return nil, err
	}
	b.logger.Info("build complete",
		"package", b.pkg.Assembly.Package,
		"components", len(b.pkg.Components),
		"resources", len(b.pkg.Resources),
		"execution_units", len(b.pkg.ExecutionUnits),
	)
	return b.pkg, nil
}

// CompileExecutionPolicies packs every declared execution policy, in
// declaration order, through its runner.
func (b *Builder) CompileExecutionPolicies() error {
	if err := b.requirePrepared(); err != nil {
		return err
	}
	units := make([]artifact.ExecutionUnit, 0, len(b.project.ExecutionPolicies))
	for _, policy := range b.project.ExecutionPolicies {
		implementation, err := runner.For(policy.Runner)
		if err != nil {
			return fmt.Errorf("execution policy %q: %w", policy.Name, err)
		}
		target := filepath.Join(b.directory, filepath.FromSlash(policy.Execute.Target))
		unit, err := implementation.ProcessUnit(target, policy)
		if err != nil {
			return err
		}
		b.logger.Debug("compiled execution policy", "policy", policy.Name, "runner", policy.Runner)
		units = append(units, unit)
	}
	if len(units) > 0 {
		b.pkg.ExecutionUnits = units
	}
	b.state = StateExecutionUnitsCompiled
	return nil
}

// CompileComponents parses every scanned source file into a token tree,
// falling back to base64 storage when parsing fails.
func (b *Builder) CompileComponents() error {
	if err := b.requirePrepared(); err != nil {
		return err
	}
	if len(b.componentFiles) == 0 {
		b.state = StateComponentsCompiled
		return nil
	}

	parser := b.parser()
	components := make([]artifact.Component, 0, len(b.componentFiles))
	for _, relative := range b.componentFiles {
		content, err := b.readProjectFile(relative)
		if err != nil {
			return err
		}

		component := artifact.Component{Name: b.stripSourcePath(relative)}
		if tree, ok := b.parseTree(parser, relative, content); ok {
			component.DataType = artifact.DataAST
			component.Data = tree
		} else {
			component.DataType = artifact.DataBase64
			component.Data = base64.StdEncoding.EncodeToString(content)
		}
		if err := component.UpdateChecksum(); err != nil {
			return fmt.Errorf("component %s: %w", component.Name, err)
		}
		components = append(components, component)
	}
	b.pkg.Components = components
	b.state = StateComponentsCompiled
	return nil
}

// parseTree returns the parsed tree for content when the parser accepts
// it and the tree encodes as a plain value.
func (b *Builder) parseTree(parser Parser, relative string, content []byte) (any, bool) {
	if parser == nil {
		return nil, false
	}
	tree, err := parser.Parse(content)
	if err != nil {
		b.logger.Debug("component stored as base64", "path", relative, "reason", err)
		return nil, false
	}
	if _, err := codec.Encode(tree); err != nil {
		b.logger.Debug("component stored as base64", "path", relative, "reason", err)
		return nil, false
	}
	b.logger.Debug("compiled component", "path", relative)
	return tree, true
}

// CompileResources base64-encodes every scanned non-source file.
func (b *Builder) CompileResources() error {
	if err := b.requirePrepared(); err != nil {
		return err
	}
	if len(b.resourceFiles) == 0 {
		b.state = StateResourcesCompiled
		return nil
	}

	resources := make([]artifact.Resource, 0, len(b.resourceFiles))
	for _, relative := range b.resourceFiles {
		content, err := b.readProjectFile(relative)
		if err != nil {
			return err
		}
		resource := artifact.Resource{
			Name: b.stripSourcePath(relative),
			Data: base64.StdEncoding.EncodeToString(content),
		}
		resource.UpdateChecksum()
		b.logger.Debug("compiled resource", "path", relative)
		resources = append(resources, resource)
	}
	b.pkg.Resources = resources
	b.state = StateResourcesCompiled
	return nil
}

// CompileConstants substitutes assembly, build, and date tokens
// throughout the package. When Options.InstallPaths is set, concrete
// install paths of this package are first replaced by their tokens.
func (b *Builder) CompileConstants() error {
	if err := b.requirePrepared(); err != nil {
		return err
	}

	now := b.clock.Now()
	build := constants.CurrentBuild(b.clock)
	substituter := &constants.Substituter{
		Assembly: &b.pkg.Assembly,
		Build:    &build,
		Time:     &now,
	}
	if b.options.InstallPaths != nil {
		paths := b.options.InstallPaths.InstallationPaths(
			b.pkg.Header.CompilerExtension.Extension, b.pkg.Assembly.Package)
		substituter.Portable = &paths
	}
	substituter.ApplyPackage(b.pkg)

	b.state = StateConstantsCompiled
	return nil
}

// WritePackage writes the built package as {package}.ncc in the
// configuration's output directory, replacing any previous artifact,
// and returns the absolute path written.
func (b *Builder) WritePackage() (string, error) {
	if err := b.requirePrepared(); err != nil {
		return "", err
	}

	outputDirectory := b.outputDirectory()
	if err := os.MkdirAll(outputDirectory, 0755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", artifact.ErrIO, outputDirectory, err)
	}
	outputPath := b.outputFile()
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: removing %s: %v", artifact.ErrIO, outputPath, err)
	}

	compression := b.configuration.Compression
	if compression == "" {
		compression = b.options.Compression
	}
	tag, err := artifact.ParseCompressionTag(compression)
	if err != nil {
		return "", artifact.Configurationf("build.compression", "%v", err)
	}

	if err := b.pkg.Save(outputPath, artifact.SaveOptions{Compression: tag, CompactKeys: b.options.CompactKeys}); err != nil {
		return "", err
	}
	absolute, err := filepath.Abs(outputPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", artifact.ErrIO, err)
	}

	b.state = StateWritten
	b.logger.Info("package written", "path", absolute, "compression", tag.String())
	return absolute, nil
}

func (b *Builder) readProjectFile(relative string) ([]byte, error) {
	full := filepath.Join(b.directory, filepath.FromSlash(relative))
	content, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", artifact.ErrFileNotFound, full)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", artifact.ErrIO, full, err)
	}
	return content, nil
}

// stripSourcePath makes a project-relative path source-relative.
func (b *Builder) stripSourcePath(relative string) string {
	prefix := filepath.ToSlash(b.configuration.SourcePath)
	if prefix == "." || prefix == "" {
		return relative
	}
	return strings.TrimPrefix(relative, path.Clean(prefix)+"/")
}

// Compile loads the project in directory and runs the whole pipeline
// for the named configuration, returning the artifact path and the
// package written to it.
func Compile(directory, configurationName string, options Options) (string, *artifact.Package, error) {
	proj, err := project.Load(directory)
	if err != nil {
		return "", nil, err
	}
	builder := New(directory, proj, options)
	if err := builder.Prepare(configurationName); err != nil {
		return "", nil, err
	}
	pkg, err := builder.Build()
	if err != nil {
		return "", nil, err
	}
	outputPath, err := builder.WritePackage()
	if err != nil {
		return "", nil, err
	}
	return outputPath, pkg, nil
}
