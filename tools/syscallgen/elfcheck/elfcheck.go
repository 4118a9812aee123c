// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package elfcheck verifies that the syscall entry points and descriptors
// listed in a manifest survived linking into an ELF binary.
package elfcheck

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.merlin.dev/merlin/tools/syscallgen/backends/manifest"
)

var (
	ErrNotELF        = errors.New("elfcheck: not an ELF file")
	ErrNoSymbols     = errors.New("elfcheck: binary has no symbol table")
	ErrMissingSymbol = errors.New("elfcheck: symbol not found")
)

// File is an opened ELF binary and its symbol table.
type File struct {
	ELF *elf.File

	closer  io.Closer
	symbols map[string]elf.Symbol
}

// Open opens an ELF binary and reads its static symbol table.
func Open(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("elfcheck: open: %w", err)
	}
	ef, err := elf.NewFile(r)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrNotELF, path, err)
	}
	f, err := newFile(ef)
	if err != nil {
		r.Close()
		return nil, err
	}
	f.closer = r
	return f, nil
}

func newFile(ef *elf.File) (*File, error) {
	syms, err := ef.Symbols()
	if errors.Is(err, elf.ErrNoSymbols) {
		return nil, ErrNoSymbols
	} else if err != nil {
		return nil, fmt.Errorf("elfcheck: symtab: %w", err)
	}
	symbols := make(map[string]elf.Symbol, len(syms))
	for _, s := range syms {
		symbols[s.Name] = s
	}
	return &File{ELF: ef, symbols: symbols}, nil
}

// Close releases resources.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// Symbol looks up a symbol by exact name.
func (f *File) Symbol(name string) (elf.Symbol, error) {
	s, ok := f.symbols[name]
	if !ok {
		return elf.Symbol{}, fmt.Errorf("%w: %s", ErrMissingSymbol, name)
	}
	return s, nil
}

// MissingSymbolsError lists the manifest symbols absent from a binary.
type MissingSymbolsError struct {
	Symbols []string
}

func (e *MissingSymbolsError) Error() string {
	return fmt.Sprintf("%d syscall symbols missing from the binary:\n\t%s", len(e.Symbols), strings.Join(e.Symbols, "\n\t"))
}

func (e *MissingSymbolsError) Is(target error) bool {
	return target == ErrMissingSymbol
}

// Verify checks that every entry point and descriptor listed in entries is
// defined in the binary, and that entry points are functions.
func (f *File) Verify(entries []manifest.Entry) error {
	var missing []string
	for _, entry := range entries {
		for _, name := range []string{entry.EntrySymbol, entry.DescriptorSymbol} {
			s, err := f.Symbol(name)
			if err != nil || s.Section == elf.SHN_UNDEF {
				missing = append(missing, name)
				continue
			}
			if name == entry.EntrySymbol && elf.ST_TYPE(s.Info) != elf.STT_FUNC {
				return fmt.Errorf("elfcheck: entry point %s of syscall %s is a %v, not a function", name, entry.Name, elf.ST_TYPE(s.Info))
			}
		}
	}
	if len(missing) > 0 {
		return &MissingSymbolsError{Symbols: missing}
	}
	return nil
}
