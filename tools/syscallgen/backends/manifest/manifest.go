// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package manifest writes and reads the YAML table of every syscall
// descriptor in a build, for tools that work on linked binaries rather than
// on Go sources.
package manifest

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v2"

	"go.merlin.dev/merlin/tools/lib/osmisc"
	"go.merlin.dev/merlin/tools/syscallgen"
)

const header = "# Code generated by syscallgen. DO NOT EDIT.\n"

// Entry describes one syscall descriptor.
type Entry struct {
	ID uint32 `yaml:"id"`

	// Name is the name token, as registered.
	Name string `yaml:"name"`

	// Package is the import path of the declaring package.
	Package string `yaml:"package"`

	// Function is the untruncated identifier of the annotated function.
	Function string `yaml:"function"`

	EntrySymbol      string `yaml:"entry_symbol"`
	DescriptorSymbol string `yaml:"descriptor_symbol"`

	// Source is the declaration's position, relative to the manifest.
	Source string `yaml:"source"`
}

// Entries lists the syscalls of the given packages by id. Source paths are
// made relative to baseDir when possible.
func Entries(summaries []*syscallgen.PackageSummary, baseDir string) []Entry {
	var entries []Entry
	for _, summary := range summaries {
		for _, syscall := range summary.Syscalls() {
			entries = append(entries, Entry{
				ID:               syscall.ID,
				Name:             syscall.Token.String(),
				Package:          summary.Path,
				Function:         syscall.Name,
				EntrySymbol:      syscall.EntrySymbol,
				DescriptorSymbol: syscall.DescriptorSymbol,
				Source:           source(syscall, baseDir),
			})
		}
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(a.ID, b.ID); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Package, b.Package); c != 0 {
			return c
		}
		return cmp.Compare(a.Function, b.Function)
	})
	return entries
}

func source(syscall syscallgen.Syscall, baseDir string) string {
	filename := syscall.Position.Filename
	if baseDir != "" && filepath.IsAbs(filename) {
		if rel, err := filepath.Rel(baseDir, filename); err == nil {
			filename = rel
		}
	}
	return filepath.ToSlash(filename) + ":" + strconv.Itoa(syscall.Position.Line)
}

// Marshal encodes entries as a manifest.
func Marshal(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	body, err := yaml.Marshal(entries)
	if err != nil {
		return nil, err
	}
	return append([]byte(header), body...), nil
}

// Generate writes the manifest of the given packages to output, leaving it
// untouched if its content would not change. It reports whether output was
// written.
func Generate(summaries []*syscallgen.PackageSummary, output string) (bool, error) {
	abs, err := filepath.Abs(output)
	if err != nil {
		return false, err
	}
	content, err := Marshal(Entries(summaries, filepath.Dir(abs)))
	if err != nil {
		return false, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return osmisc.WriteFileIfChanged(output, content)
}

// Read decodes the manifest at path. Unknown fields are an error.
func Read(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := yaml.UnmarshalStrict(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	if !slices.IsSortedFunc(entries, func(a, b Entry) int { return cmp.Compare(a.ID, b.ID) }) {
		return nil, fmt.Errorf("manifest %s is not sorted by id", path)
	}
	return entries, nil
}
