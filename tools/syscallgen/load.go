// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package syscallgen

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

// loadMode type-checks every package from source. Without NeedDeps, go list
// compiles the packages itself and never sees the files as ParseFile returns
// them.
const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

// LoadOptions configures Load.
type LoadOptions struct {
	// Dir is the directory in which patterns are resolved.
	Dir string

	BuildTags []string

	// OutputPrefix identifies previously generated files; see
	// DefaultOutputPrefix.
	OutputPrefix string
}

// Load parses and type-checks the packages matching patterns.
//
// Files previously generated by syscallgen are reduced to their package
// clause while loading: their content is derived from the sources being
// loaded, and a stale copy must neither break type checking nor feed back
// into generation.
func Load(ctx context.Context, opts LoadOptions, patterns ...string) ([]*Package, error) {
	prefix := opts.OutputPrefix
	if prefix == "" {
		prefix = DefaultOutputPrefix
	}
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     opts.Dir,
		ParseFile: func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
			f, err := parser.ParseFile(fset, filename, src, parser.AllErrors|parser.ParseComments)
			if f != nil && IsGeneratedOutput(filename, f, prefix) {
				return stripFile(f), nil
			}
			return f, err
		},
	}
	if len(opts.BuildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.BuildTags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", strings.Join(patterns, " "), err)
	}

	var errs []string
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, e.Error())
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load packages:\n%s", strings.Join(errs, "\n"))
	}

	var out []*Package
	for _, p := range pkgs {
		out = append(out, &Package{
			Path:  p.PkgPath,
			Name:  p.Name,
			Fset:  p.Fset,
			Files: p.Syntax,
			Types: p.Types,
			Info:  p.TypesInfo,
		})
	}
	return out, nil
}

// IsGeneratedOutput reports whether f, parsed from filename, is a file
// written by syscallgen.
func IsGeneratedOutput(filename string, f *ast.File, prefix string) bool {
	return strings.HasPrefix(filepath.Base(filename), prefix) && ast.IsGenerated(f)
}

// stripFile drops every declaration of f, keeping the package clause and the
// comments that precede it.
func stripFile(f *ast.File) *ast.File {
	stripped := &ast.File{
		Doc:       f.Doc,
		Package:   f.Package,
		Name:      f.Name,
		FileStart: f.FileStart,
		FileEnd:   f.FileEnd,
		GoVersion: f.GoVersion,
	}
	for _, group := range f.Comments {
		if group.Pos() < f.Package {
			stripped.Comments = append(stripped.Comments, group)
		}
	}
	return stripped
}
