// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package constants

import (
	"os"
	"strconv"
	"strings"

	"github.com/bureau-foundation/ncc/lib/artifact"
	"github.com/bureau-foundation/ncc/lib/clock"
	"github.com/bureau-foundation/ncc/lib/config"
	"github.com/bureau-foundation/ncc/lib/version"
)

// Assembly tokens.
const (
	AssemblyName        = "%ASSEMBLY.NAME%"
	AssemblyPackage     = "%ASSEMBLY.PACKAGE%"
	AssemblyDescription = "%ASSEMBLY.DESCRIPTION%"
	AssemblyCompany     = "%ASSEMBLY.COMPANY%"
	AssemblyProduct     = "%ASSEMBLY.PRODUCT%"
	AssemblyCopyright   = "%ASSEMBLY.COPYRIGHT%"
	AssemblyTrademark   = "%ASSEMBLY.TRADEMARK%"
	AssemblyVersion     = "%ASSEMBLY.VERSION%"
	AssemblyUID         = "%ASSEMBLY.UID%"
)

// Build tokens.
const (
	CompileTimestamp = "%COMPILE_TIMESTAMP%"
	BuildVersion     = "%NCC_BUILD_VERSION%"
	BuildFlags       = "%NCC_BUILD_FLAGS%"
	BuildBranch      = "%NCC_BUILD_BRANCH%"
)

// Install tokens.
const (
	InstallPath     = "%INSTALL_PATH%"
	InstallPathBin  = "%INSTALL_PATH.BIN%"
	InstallPathSrc  = "%INSTALL_PATH.SRC%"
	InstallPathData = "%INSTALL_PATH.DATA%"
)

// Runtime tokens.
const (
	WorkingDirectory = "%CWD%"
	ProcessID        = "%PID%"
	UserID           = "%UID%"
	GroupID          = "%GID%"
	UserHomePath     = "%USER_HOME_PATH%"
)

// Assembly replaces assembly tokens with fields of a. A nil assembly
// leaves s unchanged.
func Assembly(s string, a *artifact.Assembly) string {
	if a == nil || !strings.Contains(s, "%") {
		return s
	}
	return strings.NewReplacer(
		AssemblyName, a.Name,
		AssemblyPackage, a.Package,
		AssemblyDescription, a.Description,
		AssemblyCompany, a.Company,
		AssemblyProduct, a.Product,
		AssemblyCopyright, a.Copyright,
		AssemblyTrademark, a.Trademark,
		AssemblyVersion, a.Version,
		AssemblyUID, a.UUID,
	).Replace(s)
}

// BuildInfo is the toolchain metadata exposed through build tokens.
type BuildInfo struct {
	// Timestamp is the compile time in Unix seconds.
	Timestamp int64
	Version   string
	// Flags is the space-joined flag list.
	Flags  string
	Branch string
}

// CurrentBuild describes the running toolchain, stamped with the
// current time from c.
func CurrentBuild(c clock.Clock) BuildInfo {
	return BuildInfo{
		Timestamp: clock.OrReal(c).Now().Unix(),
		Version:   version.Version,
		Flags:     strings.Join(version.BuildFlags(), " "),
		Branch:    version.Branch,
	}
}

// Build replaces build tokens from info.
func Build(s string, info BuildInfo) string {
	if !strings.Contains(s, "%") {
		return s
	}
	return strings.NewReplacer(
		CompileTimestamp, strconv.FormatInt(info.Timestamp, 10),
		BuildVersion, info.Version,
		BuildFlags, info.Flags,
		BuildBranch, info.Branch,
	).Replace(s)
}

// InstallTokens resolves install tokens to the concrete paths of an
// installation.
func InstallTokens(s string, paths config.InstallationPaths) string {
	if !strings.Contains(s, "%") {
		return s
	}
	return strings.NewReplacer(
		InstallPathBin, paths.Bin,
		InstallPathSrc, paths.Source,
		InstallPathData, paths.Data,
		InstallPath, paths.Installation,
	).Replace(s)
}

// InstallPathsToTokens replaces concrete installation paths in s with
// their tokens. Child directories are matched before the installation
// root so "/x/bin" becomes %INSTALL_PATH.BIN% rather than
// %INSTALL_PATH%/bin.
func InstallPathsToTokens(s string, paths config.InstallationPaths) string {
	var pairs []string
	for _, pair := range [][2]string{
		{paths.Bin, InstallPathBin},
		{paths.Source, InstallPathSrc},
		{paths.Data, InstallPathData},
		{paths.Installation, InstallPath},
	} {
		if pair[0] != "" {
			pairs = append(pairs, pair[0], pair[1])
		}
	}
	if len(pairs) == 0 {
		return s
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// RuntimeInfo is the process context exposed through runtime tokens.
type RuntimeInfo struct {
	WorkingDirectory string
	PID              int
	UID              int
	GID              int
	Home             string
}

// CurrentRuntime describes the calling process.
func CurrentRuntime() RuntimeInfo {
	workingDirectory, _ := os.Getwd()
	home, _ := os.UserHomeDir()
	return RuntimeInfo{
		WorkingDirectory: workingDirectory,
		PID:              os.Getpid(),
		UID:              os.Getuid(),
		GID:              os.Getgid(),
		Home:             home,
	}
}

// Runtime replaces runtime tokens from info.
func Runtime(s string, info RuntimeInfo) string {
	if !strings.Contains(s, "%") {
		return s
	}
	return strings.NewReplacer(
		WorkingDirectory, info.WorkingDirectory,
		ProcessID, strconv.Itoa(info.PID),
		UserID, strconv.Itoa(info.UID),
		GroupID, strconv.Itoa(info.GID),
		UserHomePath, info.Home,
	).Replace(s)
}
