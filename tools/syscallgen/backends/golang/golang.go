// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package golang generates the Go sources that register syscall descriptors
// with kernel/syscalls.
package golang

import (
	"bytes"
	"embed"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"go.merlin.dev/merlin/kernel/syscalls"
	"go.merlin.dev/merlin/tools/lib/osmisc"
	"go.merlin.dev/merlin/tools/syscallgen"
)

//go:embed templates/*
var templates embed.FS

// Generator emits one registry file per source file declaring syscalls.
type Generator struct {
	gen *syscallgen.Generator

	// OutputPrefix names generated files; see syscallgen.DefaultOutputPrefix.
	OutputPrefix string

	// RuntimeImportPath is the import path of the registry package.
	RuntimeImportPath string
}

func NewGenerator(formatter syscallgen.Formatter) *Generator {
	gen := syscallgen.NewGenerator("GoTemplates", templates, formatter, template.FuncMap{
		"ArgsName":         func() string { return syscallgen.EntryArgsName },
		"Call":             call,
		"DocComment":       docComment,
		"ImportBlock":      importBlock,
		"IsBool":           func(desc *syscallgen.TypeDescriptor) bool { return desc.Kind == syscallgen.TypeKindBool },
		"NameTokenLiteral": nameTokenLiteral,
		"ResultExpr":       resultExpr,
	})
	return &Generator{
		gen:               gen,
		OutputPrefix:      syscallgen.DefaultOutputPrefix,
		RuntimeImportPath: syscallgen.RuntimeImportPath,
	}
}

type templateData struct {
	Summary           syscallgen.FileSummary
	RuntimeImportPath string
}

// OutputPath gives the path of the file generated for source.
func (gen *Generator) OutputPath(source string) string {
	return filepath.Join(filepath.Dir(source), gen.OutputPrefix+filepath.Base(source))
}

// Render returns the generated source for a file summary.
func (gen *Generator) Render(summary syscallgen.FileSummary) ([]byte, error) {
	return gen.gen.ExecuteTemplate("GenerateGoFile", templateData{
		Summary:           summary,
		RuntimeImportPath: gen.RuntimeImportPath,
	})
}

// change is a generated file to write, or to remove if content is nil.
type change struct {
	path    string
	content []byte
}

// changes computes how the generated files of summary differ from what is
// on disk.
func (gen *Generator) changes(summary syscallgen.PackageSummary) ([]change, error) {
	var changes []change
	known := make(map[string]bool)
	for _, source := range summary.Sources {
		known[source] = true
	}
	declaring := make(map[string]bool)
	for _, file := range summary.Files {
		declaring[file.Source] = true
		content, err := gen.Render(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Source, err)
		}
		output := gen.OutputPath(file.Source)
		existing, err := os.ReadFile(output)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil && bytes.Equal(existing, content) {
			continue
		}
		changes = append(changes, change{path: output, content: content})
	}
	for _, source := range summary.Sources {
		if declaring[source] {
			continue
		}
		output := gen.OutputPath(source)
		stale, err := gen.isGeneratedOutput(output)
		if err != nil {
			return nil, err
		}
		if stale {
			changes = append(changes, change{path: output})
		}
	}

	// Outputs left behind by a source file that was renamed or removed.
	if summary.Dir == "" {
		return changes, nil
	}
	entries, err := os.ReadDir(summary.Dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, gen.OutputPrefix) || filepath.Ext(name) != ".go" {
			continue
		}
		source := filepath.Join(summary.Dir, strings.TrimPrefix(name, gen.OutputPrefix))
		if known[source] {
			continue
		}
		// Sources excluded by build constraints are not summarized.
		if _, err := os.Stat(source); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return nil, err
		}
		output := filepath.Join(summary.Dir, name)
		orphaned, err := gen.isGeneratedOutput(output)
		if err != nil {
			return nil, err
		}
		if orphaned {
			changes = append(changes, change{path: output})
		}
	}
	return changes, nil
}

// Generate writes the registry file of every source file declaring syscalls,
// next to that source file. It removes the previously generated file of every
// source that no longer declares any or no longer exists. It returns the
// paths of the files it wrote or removed.
func (gen *Generator) Generate(summary syscallgen.PackageSummary) ([]string, error) {
	changes, err := gen.changes(summary)
	if err != nil {
		return nil, err
	}
	var outputs []string
	for _, c := range changes {
		if c.content == nil {
			err = osmisc.RemoveIfExists(c.path)
		} else {
			_, err = osmisc.WriteFileIfChanged(c.path, c.content)
		}
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, c.path)
	}
	return outputs, nil
}

// OutOfDate returns the paths that Generate would write or remove.
func (gen *Generator) OutOfDate(summary syscallgen.PackageSummary) ([]string, error) {
	changes, err := gen.changes(summary)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, c := range changes {
		paths = append(paths, c.path)
	}
	return paths, nil
}

// isGeneratedOutput reports whether output exists and was generated by
// syscallgen.
func (gen *Generator) isGeneratedOutput(output string) (bool, error) {
	src, err := os.ReadFile(output)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	f, err := parser.ParseFile(token.NewFileSet(), output, src, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil {
		return false, nil
	}
	return syscallgen.IsGeneratedOutput(output, f, gen.OutputPrefix), nil
}

//
// Template functions.
//

func importBlock(data templateData) string {
	var std, other []string
	if data.Summary.UsesUnsafe() {
		std = append(std, strconv.Quote("unsafe"))
	}
	for _, imp := range data.Summary.Imports {
		other = append(other, importSpec(imp.Name, imp.Path))
	}
	other = append(other, importSpec("syscalls", data.RuntimeImportPath))

	var b strings.Builder
	b.WriteString("import (\n")
	for _, spec := range std {
		fmt.Fprintf(&b, "\t%s\n", spec)
	}
	if len(std) > 0 {
		b.WriteString("\n")
	}
	for _, spec := range other {
		fmt.Fprintf(&b, "\t%s\n", spec)
	}
	b.WriteString(")")
	return b.String()
}

func importSpec(name, importPath string) string {
	if path.Base(importPath) == name {
		return strconv.Quote(importPath)
	}
	return name + " " + strconv.Quote(importPath)
}

func docComment(syscall syscallgen.Syscall) string {
	lines := []string{
		fmt.Sprintf("// %s is the entry point of syscall %s (id %d).", syscall.EntryName, syscall.Name, syscall.ID),
	}
	if len(syscall.Comments) > 0 {
		lines = append(lines, "//")
		for _, line := range syscall.Comments {
			if line == "" {
				lines = append(lines, "//")
			} else {
				lines = append(lines, "// "+line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func nameTokenLiteral(tok syscalls.NameToken) string {
	elems := make([]string, len(tok))
	for i, b := range tok {
		elems[i] = fmt.Sprintf("0x%02x", b)
	}
	return "{" + strings.Join(elems, ", ") + "}"
}

func argExpr(param syscallgen.Parameter) string {
	reg := fmt.Sprintf("%s[%d]", syscallgen.EntryArgsName, param.Index)
	typ := param.Type.Type
	switch param.Type.Kind {
	case syscallgen.TypeKindBool:
		if typ == "bool" {
			return reg + " != 0"
		}
		return fmt.Sprintf("%s(%s != 0)", typ, reg)
	case syscallgen.TypeKindUnsafePointer:
		if typ == "unsafe.Pointer" {
			return fmt.Sprintf("unsafe.Pointer(%s)", reg)
		}
		return fmt.Sprintf("%s(unsafe.Pointer(%s))", typ, reg)
	case syscallgen.TypeKindPointer:
		return fmt.Sprintf("(%s)(unsafe.Pointer(%s))", typ, reg)
	case syscallgen.TypeKindInteger:
		return fmt.Sprintf("%s(%s)", typ, reg)
	default:
		panic(fmt.Sprintf("unknown kind %q: %#v", param.Type.Kind, param))
	}
}

func call(syscall syscallgen.Syscall) string {
	args := make([]string, 0, len(syscall.Parameters))
	for _, param := range syscall.Parameters {
		args = append(args, argExpr(param))
	}
	return fmt.Sprintf("%s(%s)", syscall.Name, strings.Join(args, ", "))
}

func resultExpr(desc *syscallgen.TypeDescriptor, value string) string {
	switch desc.Kind {
	case syscallgen.TypeKindInteger:
		if desc.Type == "uintptr" {
			return value
		}
		return fmt.Sprintf("uintptr(%s)", value)
	case syscallgen.TypeKindUnsafePointer:
		return fmt.Sprintf("uintptr(%s)", value)
	case syscallgen.TypeKindPointer:
		return fmt.Sprintf("uintptr(unsafe.Pointer(%s))", value)
	default:
		panic(fmt.Sprintf("kind %q has no uintptr conversion", desc.Kind))
	}
}
