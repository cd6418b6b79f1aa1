// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package constants replaces %TOKEN% placeholders in package strings.
//
// Five token families exist, each a pure function over a string and a
// context value:
//
//   - [Assembly]: %ASSEMBLY.NAME%, %ASSEMBLY.PACKAGE%, ... from an
//     [artifact.Assembly].
//   - [Build]: %COMPILE_TIMESTAMP% and %NCC_BUILD_*% from [BuildInfo].
//   - [DateTime]: one token per PHP-style date letter (%Y%, %m%, %d%,
//     ...) rendered from a timestamp.
//   - [InstallTokens]: %INSTALL_PATH% and its .BIN, .SRC, .DATA
//     children resolved to concrete paths. [InstallPathsToTokens] is
//     the inverse, used when compiling so artifacts stay portable.
//   - [Runtime]: %CWD%, %PID%, %UID%, %GID%, %USER_HOME_PATH% from
//     [RuntimeInfo].
//
// A [Substituter] applies whichever families it has context for, always
// in the order Assembly, Build, DateTime, Install, Runtime. Tokens that
// no active family recognizes are left untouched.
package constants
