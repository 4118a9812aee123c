// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package syscallgen summarizes syscall declarations in Go packages into the
// form consumed by the generator backends.
//
// A syscall is declared by annotating a top-level function:
//
//	//merlin:syscall id = 42
//	func open_file(path *byte, flags int32) int32 { ... }
//
// Each annotated function is summarized on its own: its directive argument is
// validated, its name token is derived, and its signature is checked against
// the fixed calling convention of kernel/syscalls.Entry.
package syscallgen

import (
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"go.merlin.dev/merlin/kernel/syscalls"
)

// RuntimeImportPath is the import path of the runtime registry package.
const RuntimeImportPath = "go.merlin.dev/merlin/kernel/syscalls"

// runtimePackageName is the name under which generated code refers to the
// runtime registry package.
const runtimePackageName = "syscalls"

// EntryArgsName names the register frame parameter of generated entry points.
const EntryArgsName = "args"

// Package is a parsed and type-checked Go package.
type Package struct {
	// Path is the package's import path.
	Path string

	// Name is the package's name.
	Name string

	Fset  *token.FileSet
	Files []*ast.File
	Types *types.Package
	Info  *types.Info
}

// TypeKind gives the register class of a parameter or result type.
type TypeKind string

const (
	TypeKindInteger       TypeKind = "integer"
	TypeKindBool          TypeKind = "bool"
	TypeKindUnsafePointer TypeKind = "unsafe_pointer"
	TypeKindPointer       TypeKind = "pointer"
)

// TypeDescriptor describes a register-passable type.
type TypeDescriptor struct {
	// Type is the Go spelling of the type within the declaring package.
	Type string

	// Kind gives how the type is moved in and out of a register.
	Kind TypeKind
}

// NeedsUnsafe gives whether converting the type from or to a register
// requires package unsafe.
func (desc TypeDescriptor) NeedsUnsafe() bool {
	return desc.Kind == TypeKindPointer || desc.Kind == TypeKindUnsafePointer
}

// Parameter is a parameter of a syscall function, passed in register Index.
type Parameter struct {
	Name  string
	Index int
	Type  TypeDescriptor
}

// Syscall corresponds to an individual annotated function.
type Syscall struct {
	// ID is the numeric identifier given by the directive.
	ID uint32

	// Name is the function's declared identifier.
	Name string

	// Token is the fixed-width name token derived from Name.
	Token syscalls.NameToken

	// Comments gives the function's doc comment, directives excluded.
	Comments []string

	Parameters []Parameter

	// Result is nil for functions without a result.
	Result *TypeDescriptor

	// EntryName and DescriptorName are the identifiers of the generated entry
	// point and descriptor.
	EntryName      string
	DescriptorName string

	// EntrySymbol and DescriptorSymbol are their linker symbols.
	EntrySymbol      string
	DescriptorSymbol string

	// Position locates the function declaration.
	Position token.Position
}

// Import is a package referenced by generated entry points.
type Import struct {
	Name string
	Path string
}

// FileSummary is the summary of a Go source file declaring syscalls.
type FileSummary struct {
	// Package is the package name and PackagePath its import path.
	Package     string
	PackagePath string

	// Source gives the associated source file.
	Source string

	// BuildConstraint is the file's //go:build line, if any.
	BuildConstraint string

	Syscalls []Syscall

	// Imports are the packages other than unsafe and the runtime package
	// that the generated code refers to, sorted by path.
	Imports []Import

	usesUnsafe bool
}

// Name is the extension-less basename of the file.
func (summary FileSummary) Name() string {
	return strings.TrimSuffix(filepath.Base(summary.Source), ".go")
}

// UsesUnsafe gives whether the generated code needs to import unsafe.
func (summary FileSummary) UsesUnsafe() bool {
	return summary.usesUnsafe
}

// PackageSummary is the summary of a Go package.
type PackageSummary struct {
	Path string
	Name string

	// Dir is the package directory.
	Dir string

	// Files holds the files declaring syscalls, in source order.
	Files []FileSummary

	// Sources lists every summarized source file, including those that
	// declare no syscalls.
	Sources []string
}

// Syscalls returns all syscalls of the package in source order.
func (summary PackageSummary) Syscalls() []Syscall {
	var out []Syscall
	for _, f := range summary.Files {
		out = append(out, f.Syscalls...)
	}
	return out
}

// SummarizeOptions configures Summarize.
type SummarizeOptions struct {
	// Directive marks syscall declarations; see DefaultDirective.
	Directive string

	// OutputPrefix identifies the files syscallgen generated, which are not
	// summarized; see DefaultOutputPrefix.
	OutputPrefix string
}

// Summarize creates the summary of a type-checked package. Declarations are
// summarized independently of each other; every malformed one is reported in
// the returned ErrorList, and no summary is returned if there is any.
func Summarize(pkg *Package, opts SummarizeOptions) (*PackageSummary, error) {
	directiveName := opts.Directive
	if directiveName == "" {
		directiveName = DefaultDirective
	}
	prefix := opts.OutputPrefix
	if prefix == "" {
		prefix = DefaultOutputPrefix
	}
	if pkg.Info == nil || pkg.Types == nil {
		return nil, fmt.Errorf("package %s has no type information", pkg.Path)
	}

	summary := &PackageSummary{Path: pkg.Path, Name: pkg.Name}
	if len(pkg.Files) > 0 {
		summary.Dir = filepath.Dir(pkg.Fset.Position(pkg.Files[0].Pos()).Filename)
	}
	// Files from other generators are summarized like any other source.
	generated := make(map[string]bool)
	for _, file := range pkg.Files {
		filename := pkg.Fset.Position(file.Pos()).Filename
		if IsGeneratedOutput(filename, file, prefix) {
			generated[filename] = true
		}
	}

	var errs ErrorList
	for _, file := range pkg.Files {
		src := pkg.Fset.Position(file.Pos()).Filename
		if generated[src] {
			continue
		}
		summary.Sources = append(summary.Sources, src)
		s := summarizer{pkg: pkg, generated: generated, directive: directiveName}
		fileSummary, fileErrs := s.summarizeFile(file, src)
		if len(fileErrs) > 0 {
			errs = append(errs, fileErrs...)
			continue
		}
		if len(fileSummary.Syscalls) > 0 {
			summary.Files = append(summary.Files, *fileSummary)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	sort.Strings(summary.Sources)
	sort.Slice(summary.Files, func(i, j int) bool {
		return summary.Files[i].Source < summary.Files[j].Source
	})
	return summary, nil
}

type summarizer struct {
	pkg       *Package
	generated map[string]bool
	directive string

	imports    map[string]string // path -> name
	usesUnsafe bool
	errs       ErrorList

	// refs holds the package-level names that the entry point of the
	// syscall being summarized refers to.
	refs map[string]bool
}

func (s *summarizer) position(pos token.Pos) token.Position {
	return s.pkg.Fset.Position(pos)
}

func (s *summarizer) errorf(cat Category, pos token.Pos, format string, a ...interface{}) {
	s.errs = append(s.errs, newDiagnostic(cat, s.position(pos), format, a...))
}

func (s *summarizer) summarizeFile(file *ast.File, src string) (*FileSummary, ErrorList) {
	s.imports = make(map[string]string)
	summary := &FileSummary{
		Package:         s.pkg.Name,
		PackagePath:     s.pkg.Path,
		Source:          src,
		BuildConstraint: buildConstraint(file),
	}

	annotated := make(map[*ast.Comment]bool)
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		ds := findDirectives(fn.Doc, s.directive)
		for _, d := range ds {
			annotated[d.comment] = true
		}
		if len(ds) == 0 {
			continue
		}
		if len(ds) > 1 {
			s.errorf(CategoryMalformedAttribute, ds[1].comment.Pos(), "function %s has more than one //%s directive", fn.Name.Name, s.directive)
			continue
		}
		if syscall, ok := s.summarizeFunc(fn, ds[0]); ok {
			summary.Syscalls = append(summary.Syscalls, syscall)
		}
	}

	// A directive anywhere else does not annotate a function declaration.
	for _, group := range file.Comments {
		for _, d := range findDirectives(group, s.directive) {
			if !annotated[d.comment] {
				s.errorf(CategoryMalformedDeclaration, d.comment.Pos(), "//%s must annotate a top-level function declaration", s.directive)
			}
		}
	}

	if len(s.errs) > 0 {
		return nil, s.errs
	}
	summary.usesUnsafe = s.usesUnsafe
	for path, name := range s.imports {
		summary.Imports = append(summary.Imports, Import{Name: name, Path: path})
	}
	sort.Slice(summary.Imports, func(i, j int) bool {
		return summary.Imports[i].Path < summary.Imports[j].Path
	})
	return summary, nil
}

func (s *summarizer) summarizeFunc(fn *ast.FuncDecl, d directive) (Syscall, bool) {
	attr, err := ParseAttribute(d.args)
	if err != nil {
		diag := err.(*Diagnostic)
		diag.Pos = s.position(d.comment.Pos())
		diag.Message = fmt.Sprintf("syscall %s: %s", fn.Name.Name, diag.Message)
		s.errs = append(s.errs, diag)
		return Syscall{}, false
	}

	name := fn.Name.Name
	fail := func(format string, a ...interface{}) (Syscall, bool) {
		s.errorf(CategoryMalformedDeclaration, fn.Name.Pos(), "syscall %s: "+format, append([]interface{}{name}, a...)...)
		return Syscall{}, false
	}

	switch {
	case fn.Recv != nil:
		return fail("must be a top-level function, not a method")
	case fn.Type.TypeParams != nil && len(fn.Type.TypeParams.List) > 0:
		return fail("must not have type parameters")
	case name == "init" || name == "_":
		return fail("%q cannot be referenced and cannot be a syscall", name)
	case name == EntryArgsName:
		return fail("%q is shadowed by the parameter of the generated entry point", name)
	}

	obj, ok := s.pkg.Info.Defs[fn.Name].(*types.Func)
	if !ok {
		return fail("has no type information")
	}
	sig := obj.Type().(*types.Signature)
	if sig.Variadic() {
		return fail("must not be variadic")
	}
	if n := sig.Params().Len(); n > syscalls.NumArgs {
		return fail("has %d parameters; at most %d fit in the syscall register frame", n, syscalls.NumArgs)
	}
	if n := sig.Results().Len(); n > 1 {
		return fail("has %d results; at most one fits in the return register", n)
	}

	for _, generatedName := range []string{EntryName(name), DescriptorName(name)} {
		if other := s.pkg.Types.Scope().Lookup(generatedName); other != nil && !s.generated[s.position(other.Pos()).Filename] {
			return fail("generated identifier %s is already declared at %s", generatedName, s.position(other.Pos()))
		}
	}

	s.refs = map[string]bool{runtimePackageName: true, "uintptr": true}
	syscall := Syscall{
		ID:               attr.ID,
		Name:             name,
		Token:            NameToken(name),
		Comments:         docLines(fn.Doc),
		EntryName:        EntryName(name),
		DescriptorName:   DescriptorName(name),
		EntrySymbol:      LinkerSymbol(s.pkg.Path, EntryName(name)),
		DescriptorSymbol: LinkerSymbol(s.pkg.Path, DescriptorName(name)),
		Position:         s.position(fn.Pos()),
	}
	for i := 0; i < sig.Params().Len(); i++ {
		param := sig.Params().At(i)
		desc, err := s.describeType(param.Type())
		if err != nil {
			return fail("parameter %d (%s): %s", i, paramName(param), err)
		}
		syscall.Parameters = append(syscall.Parameters, Parameter{
			Name:  param.Name(),
			Index: i,
			Type:  desc,
		})
	}
	if sig.Results().Len() == 1 {
		desc, err := s.describeType(sig.Results().At(0).Type())
		if err != nil {
			return fail("result: %s", err)
		}
		syscall.Result = &desc
	}

	// The generated file declares these names at file scope or relies on
	// the predeclared ones.
	refs := make([]string, 0, len(s.refs))
	for ref := range s.refs {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	for _, ref := range refs {
		if other := s.pkg.Types.Scope().Lookup(ref); other != nil && !s.generated[s.position(other.Pos()).Filename] {
			return fail("generated code refers to %s, which the package redeclares at %s", ref, s.position(other.Pos()))
		}
	}
	return syscall, true
}

// describeType classifies a type by how it passes through a register and
// records the packages its spelling refers to.
func (s *summarizer) describeType(typ types.Type) (TypeDescriptor, error) {
	var kind TypeKind
	switch u := typ.Underlying().(type) {
	case *types.Basic:
		switch {
		case u.Kind() == types.UnsafePointer:
			kind = TypeKindUnsafePointer
		case u.Info()&types.IsInteger != 0:
			kind = TypeKindInteger
		case u.Info()&types.IsBoolean != 0:
			kind = TypeKindBool
		}
	case *types.Pointer:
		kind = TypeKindPointer
	}
	if kind == "" {
		return TypeDescriptor{}, fmt.Errorf("type %s cannot be passed in a register", types.TypeString(typ, nil))
	}
	if s.refersTo(typ, EntryArgsName) {
		return TypeDescriptor{}, fmt.Errorf("type %s refers to %s, which is shadowed by the parameter of the generated entry point", types.TypeString(typ, nil), EntryArgsName)
	}

	var qualErr error
	spelling := types.TypeString(typ, func(p *types.Package) string {
		switch {
		case p == s.pkg.Types:
			return ""
		case p.Path() == "unsafe":
			return "unsafe"
		case p.Path() == RuntimeImportPath:
			return runtimePackageName
		}
		if p.Name() == runtimePackageName || p.Name() == "unsafe" {
			qualErr = fmt.Errorf("package %s is named like a package the generated code imports", p.Path())
		}
		for path, name := range s.imports {
			if name == p.Name() && path != p.Path() {
				qualErr = fmt.Errorf("packages %s and %s share the name %s", path, p.Path(), name)
			}
		}
		s.imports[p.Path()] = p.Name()
		s.refs[p.Name()] = true
		return p.Name()
	})
	if qualErr != nil {
		return TypeDescriptor{}, qualErr
	}
	desc := TypeDescriptor{Type: spelling, Kind: kind}
	if desc.NeedsUnsafe() {
		s.usesUnsafe = true
		s.refs["unsafe"] = true
	}
	return desc, nil
}

// refersTo reports whether the spelling of typ within the package mentions a
// type of the package declared as name.
func (s *summarizer) refersTo(typ types.Type, name string) bool {
	switch t := typ.(type) {
	case *types.Named:
		if obj := t.Obj(); obj.Pkg() == s.pkg.Types && obj.Name() == name {
			return true
		}
		if args := t.TypeArgs(); args != nil {
			for i := 0; i < args.Len(); i++ {
				if s.refersTo(args.At(i), name) {
					return true
				}
			}
		}
	case *types.Pointer:
		return s.refersTo(t.Elem(), name)
	case *types.Array:
		return s.refersTo(t.Elem(), name)
	case *types.Slice:
		return s.refersTo(t.Elem(), name)
	case *types.Chan:
		return s.refersTo(t.Elem(), name)
	case *types.Map:
		return s.refersTo(t.Key(), name) || s.refersTo(t.Elem(), name)
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			if s.refersTo(t.Field(i).Type(), name) {
				return true
			}
		}
	case *types.Tuple:
		for i := 0; i < t.Len(); i++ {
			if s.refersTo(t.At(i).Type(), name) {
				return true
			}
		}
	case *types.Signature:
		return s.refersTo(t.Params(), name) || s.refersTo(t.Results(), name)
	case *types.Interface:
		for i := 0; i < t.NumExplicitMethods(); i++ {
			if s.refersTo(t.ExplicitMethod(i).Type(), name) {
				return true
			}
		}
		for i := 0; i < t.NumEmbeddeds(); i++ {
			if s.refersTo(t.EmbeddedType(i), name) {
				return true
			}
		}
	}
	return false
}

func paramName(v *types.Var) string {
	if v.Name() == "" {
		return "unnamed"
	}
	return v.Name()
}

// docLines returns the lines of a doc comment without directives.
func docLines(doc *ast.CommentGroup) []string {
	if doc == nil {
		return nil
	}
	text := strings.TrimRight(doc.Text(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// buildConstraint returns the //go:build line of a file, if any.
func buildConstraint(file *ast.File) string {
	for _, group := range file.Comments {
		if group.Pos() >= file.Package {
			break
		}
		for _, c := range group.List {
			if constraint.IsGoBuild(c.Text) {
				return c.Text
			}
		}
	}
	return ""
}
