// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/config"
	"github.com/bureau-foundation/ncc/lib/fsutil"
	"github.com/bureau-foundation/ncc/lib/phpast"
)

// Extension is the language-specific part of an install.
type Extension interface {
	// Dump reconstructs source text from a component's parsed tree.
	Dump(tree any) (string, error)

	// PreInstall runs after the data files are written and before any
	// component is installed.
	PreInstall(paths config.InstallationPaths) error

	// PostInstall runs after every entity is installed.
	PostInstall(paths config.InstallationPaths, logger *slog.Logger) error
}

// DefaultExtensions returns a fresh registry of the supported
// extensions.
func DefaultExtensions() map[string]Extension {
	return map[string]Extension{
		artifact.ExtensionPHP: PHPExtension{},
	}
}

// AutoloadFile is the autoload manifest written to the bin directory
// by the php extension.
const AutoloadFile = "autoload.php"

// PHPExtension installs php packages.
type PHPExtension struct{}

func (PHPExtension) Dump(tree any) (string, error) {
	return phpast.Parser{}.Dump(tree)
}

func (PHPExtension) PreInstall(config.InstallationPaths) error { return nil }

// PostInstall writes bin/autoload.php, a class map of every class,
// interface, trait, and enum declared under the source directory.
func (PHPExtension) PostInstall(paths config.InstallationPaths, logger *slog.Logger) error {
	classes, err := ScanClassMap(paths.Source, logger)
	if err != nil {
		return err
	}
	if len(classes) == 0 {
		return fmt.Errorf("%w: no php declarations under %s", artifact.ErrNoUnitsFound, paths.Source)
	}

	manifest := RenderAutoload(classes, relativeTo(paths.Bin, paths.Source))
	target := filepath.Join(paths.Bin, AutoloadFile)
	if err := fsutil.WriteFileAtomic(target, []byte(manifest), 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", artifact.ErrIO, target, err)
	}
	logger.Debug("wrote autoload manifest", "path", target, "classes", len(classes))
	return nil
}

// ClassEntry maps a declared name to the file declaring it, relative
// to the source directory with forward slashes.
type ClassEntry struct {
	Name string
	File string
}

// ScanClassMap parses every .php file under root and returns its
// declarations sorted by name. Files that do not parse are skipped.
// The first declaration of a name wins.
func ScanClassMap(root string, logger *slog.Logger) ([]ClassEntry, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	seen := make(map[string]bool)
	var classes []ClassEntry
	err := filepath.WalkDir(root, func(current string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() || !strings.EqualFold(filepath.Ext(current), ".php") {
			return nil
		}
		source, err := os.ReadFile(current)
		if err != nil {
			return err
		}
		tree, err := phpast.Parse(source)
		if err != nil {
			logger.Debug("autoload skipped file", "path", current, "reason", err)
			return nil
		}
		relative, err := filepath.Rel(root, current)
		if err != nil {
			return err
		}
		for _, name := range tree.Declarations() {
			key := strings.ToLower(name)
			if seen[key] {
				logger.Debug("duplicate declaration", "name", name, "path", current)
				continue
			}
			seen[key] = true
			classes = append(classes, ClassEntry{Name: name, File: filepath.ToSlash(relative)})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", artifact.ErrFileNotFound, root)
		}
		return nil, fmt.Errorf("%w: scanning %s: %v", artifact.ErrIO, root, err)
	}
	slices.SortFunc(classes, func(a, b ClassEntry) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return classes, nil
}

// RenderAutoload renders the autoload manifest. sourcePrefix is the
// source directory relative to the manifest's directory.
func RenderAutoload(classes []ClassEntry, sourcePrefix string) string {
	var builder strings.Builder
	builder.WriteString("<?php\n\n// Generated by ncc at install time. Do not edit.\n\n")
	builder.WriteString("spl_autoload_register(static function (string $class): void {\n")
	builder.WriteString("    static $classmap = [\n")
	for _, class := range classes {
		fmt.Fprintf(&builder, "        %s => %s,\n",
			phpQuote(strings.ToLower(class.Name)),
			phpQuote("/"+sourcePrefix+"/"+class.File))
	}
	builder.WriteString("    ];\n")
	builder.WriteString("    $key = strtolower(ltrim($class, '\\\\'));\n")
	builder.WriteString("    if (isset($classmap[$key])) {\n")
	builder.WriteString("        require_once __DIR__ . $classmap[$key];\n")
	builder.WriteString("    }\n")
	builder.WriteString("});\n")
	return builder.String()
}

// phpQuote renders s as a single-quoted php string literal.
func phpQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

func relativeTo(base, target string) string {
	relative, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(relative)
}
