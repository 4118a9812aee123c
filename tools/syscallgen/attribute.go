// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package syscallgen

import (
	"errors"
	"go/ast"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"
)

// DefaultDirective is the comment directive marking a syscall declaration.
const DefaultDirective = "merlin:syscall"

const expectedSyntax = "expected syntax: id = <int>"

// Attribute is the validated argument of a syscall directive.
type Attribute struct {
	ID uint32
}

func attributeError(format string, a ...interface{}) *Diagnostic {
	d := newDiagnostic(CategoryMalformedAttribute, token.Position{}, format, a...)
	d.Message += "; " + expectedSyntax
	return d
}

// ParseAttribute parses the argument text of a syscall directive, which must
// be exactly `id = <int>` with an integer literal that fits in 32 bits.
// Prefixed hexadecimal, octal and binary literals are accepted; a decimal
// literal with a leading zero is rejected as ambiguous. The returned error is
// a *Diagnostic without a position.
func ParseAttribute(text string) (Attribute, error) {
	src := []byte(text)
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var scanErr error
	var s scanner.Scanner
	s.Init(file, src, func(_ token.Position, msg string) {
		if scanErr == nil {
			scanErr = errors.New(msg)
		}
	}, 0)

	next := func() (int, token.Token, string) {
		pos, tok, lit := s.Scan()
		// The scanner terminates the final line with an implicit semicolon.
		if tok == token.SEMICOLON && lit == "\n" {
			tok = token.EOF
		}
		return file.Offset(pos), tok, lit
	}
	rest := func(offset int) string {
		if offset >= len(text) {
			return ""
		}
		return strings.TrimSpace(text[offset:])
	}

	_, tok, lit := next()
	switch {
	case tok == token.EOF:
		return Attribute{}, attributeError("missing argument")
	case tok != token.IDENT:
		return Attribute{}, attributeError("expected argument name, found %q", strings.TrimSpace(text))
	case lit != "id":
		return Attribute{}, attributeError("unknown argument %q", lit)
	}

	if _, tok, _ = next(); tok != token.ASSIGN {
		return Attribute{}, attributeError("expected '=' after id")
	}

	offset, tok, lit := next()
	if tok == token.EOF {
		return Attribute{}, attributeError("missing value for id")
	}
	if tok != token.INT || scanErr != nil {
		return Attribute{}, attributeError("value %s is not an integer literal", rest(offset))
	}
	if isLegacyOctal(lit) {
		return Attribute{}, attributeError("value %s has a leading zero; write it in decimal or with an 0o prefix", lit)
	}
	id, err := strconv.ParseUint(lit, 0, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return Attribute{}, attributeError("value %s does not fit in 32 bits", lit)
		}
		return Attribute{}, attributeError("value %s is not an integer literal", lit)
	}

	if offset, tok, _ = next(); tok != token.EOF {
		return Attribute{}, attributeError("unexpected %s after value", rest(offset))
	}
	return Attribute{ID: uint32(id)}, nil
}

// isLegacyOctal reports whether lit is an integer literal like 042.
func isLegacyOctal(lit string) bool {
	if len(lit) < 2 || lit[0] != '0' {
		return false
	}
	switch lit[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return false
	}
	return true
}

// directive is an occurrence of a syscall directive in a doc comment.
type directive struct {
	comment *ast.Comment
	args    string
}

// findDirectives returns the syscall directives in doc. A directive is a
// line comment that starts with "//" + name, followed by a space or the end
// of the comment.
func findDirectives(doc *ast.CommentGroup, name string) []directive {
	if doc == nil {
		return nil
	}
	prefix := "//" + name
	var ds []directive
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, prefix) {
			continue
		}
		args := c.Text[len(prefix):]
		if args != "" && args[0] != ' ' && args[0] != '\t' {
			continue
		}
		ds = append(ds, directive{comment: c, args: strings.TrimSpace(args)})
	}
	return ds
}
