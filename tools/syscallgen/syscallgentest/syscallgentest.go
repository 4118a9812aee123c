// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package syscallgentest builds type-checked syscallgen packages from
// in-memory sources for tests.
package syscallgentest

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"sort"
	"testing"

	"go.merlin.dev/merlin/tools/syscallgen"
)

// File is a named Go source file.
type File struct {
	Name    string
	Content string
}

// Builder type-checks packages that may import each other. Packages must be
// added after the packages they import.
type Builder struct {
	T *testing.T

	fset     *token.FileSet
	packages map[string]*types.Package
}

func NewBuilder(t *testing.T) *Builder {
	return &Builder{
		T:        t,
		fset:     token.NewFileSet(),
		packages: make(map[string]*types.Package),
	}
}

// Import implements types.Importer over the packages added so far, the
// unsafe package, and the standard library.
func (b *Builder) Import(path string) (*types.Package, error) {
	if path == "unsafe" {
		return types.Unsafe, nil
	}
	if pkg, ok := b.packages[path]; ok {
		return pkg, nil
	}
	return importer.Default().Import(path)
}

// Package parses and type-checks the given files as the package with the
// given import path.
func (b *Builder) Package(path string, files ...File) *syscallgen.Package {
	b.T.Helper()
	pkg, err := b.TryPackage(path, files...)
	if err != nil {
		b.T.Fatal(err)
	}
	return pkg
}

// TryPackage is like Package but returns parse and type errors.
func (b *Builder) TryPackage(path string, files ...File) (*syscallgen.Package, error) {
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	var syntax []*ast.File
	for _, f := range files {
		file, err := parser.ParseFile(b.fset, f.Name, f.Content, parser.ParseComments)
		if err != nil {
			return nil, err
		}
		syntax = append(syntax, file)
	}
	if len(syntax) == 0 {
		return nil, fmt.Errorf("package %s has no files", path)
	}

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{Importer: b}
	typesPkg, err := conf.Check(path, b.fset, syntax, info)
	if err != nil {
		return nil, err
	}
	b.packages[path] = typesPkg
	return &syscallgen.Package{
		Path:  path,
		Name:  typesPkg.Name(),
		Fset:  b.fset,
		Files: syntax,
		Types: typesPkg,
		Info:  info,
	}, nil
}

// Single is shorthand for building a one-file package.
func Single(t *testing.T, path, content string) *syscallgen.Package {
	t.Helper()
	return NewBuilder(t).Package(path, File{Name: "syscalls.go", Content: content})
}
