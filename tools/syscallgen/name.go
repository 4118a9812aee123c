// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package syscallgen

import (
	"strings"

	"go.merlin.dev/merlin/kernel/syscalls"
)

const (
	entryPrefix      = "syscallEntry_"
	descriptorPrefix = "syscallDescriptor_"
)

// NameToken derives the fixed-width name token of a syscall from its
// declared identifier: the first syscalls.NameTokenSize bytes, zero padded.
func NameToken(ident string) syscalls.NameToken {
	return syscalls.MakeNameToken(ident)
}

// EntryName gives the identifier of the generated entry point for the
// function named ident.
func EntryName(ident string) string {
	return entryPrefix + ident
}

// DescriptorName gives the identifier of the generated descriptor for the
// function named ident.
func DescriptorName(ident string) string {
	return descriptorPrefix + ident
}

// LinkerSymbol gives the symbol under which the Go linker records ident,
// declared in the package with the given import path.
func LinkerSymbol(importPath, ident string) string {
	// The linker escapes dots in the last path element.
	if i := strings.LastIndex(importPath, "/"); i >= 0 {
		importPath = importPath[:i+1] + strings.ReplaceAll(importPath[i+1:], ".", "%2e")
	} else {
		importPath = strings.ReplaceAll(importPath, ".", "%2e")
	}
	return importPath + "." + ident
}
