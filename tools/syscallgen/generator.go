// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package syscallgen

import (
	"bytes"
	"fmt"
	"io/fs"
	"text/template"

	"golang.org/x/tools/imports"
)

// Formatter formats generated source.
type Formatter interface {
	Format(source []byte) ([]byte, error)
}

type goFormatter struct{}

// NewGoFormatter returns a Formatter producing gofmt-ed Go source with
// sorted imports.
func NewGoFormatter() Formatter {
	return goFormatter{}
}

func (goFormatter) Format(source []byte) ([]byte, error) {
	return imports.Process("", source, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
}

type identityFormatter struct{}

func (identityFormatter) Format(source []byte) ([]byte, error) { return source, nil }

// Generator renders a set of templates through a formatter.
type Generator struct {
	tmpls     *template.Template
	formatter Formatter
}

// NewGenerator parses every file under templates/ in fsys. A nil formatter
// leaves output untouched.
func NewGenerator(name string, fsys fs.FS, formatter Formatter, funcs template.FuncMap) *Generator {
	if formatter == nil {
		formatter = identityFormatter{}
	}
	tmpls := template.Must(template.New(name).Funcs(funcs).ParseFS(fsys, "templates/*"))
	return &Generator{tmpls: tmpls, formatter: formatter}
}

// ExecuteTemplate renders the named template and formats the result.
func (gen *Generator) ExecuteTemplate(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gen.tmpls.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	formatted, err := gen.formatter.Format(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format the output of template %s: %w\n%s", name, err, buf.Bytes())
	}
	return formatted, nil
}
