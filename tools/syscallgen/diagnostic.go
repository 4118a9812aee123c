// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package syscallgen

import (
	"errors"
	"fmt"
	"go/token"
	"sort"
	"strings"
)

var (
	// ErrMalformedAttribute matches diagnostics about the directive's
	// argument.
	ErrMalformedAttribute = errors.New("malformed syscall attribute")

	// ErrMalformedDeclaration matches diagnostics about the annotated
	// declaration itself.
	ErrMalformedDeclaration = errors.New("malformed syscall declaration")

	// ErrDuplicateID matches diagnostics about ids shared by several
	// syscalls.
	ErrDuplicateID = errors.New("duplicate syscall id")
)

// Category classifies a Diagnostic.
type Category string

const (
	CategoryMalformedAttribute   Category = "MalformedAttribute"
	CategoryMalformedDeclaration Category = "MalformedDeclaration"
	CategoryDuplicateID          Category = "DuplicateID"
)

func (c Category) sentinel() error {
	switch c {
	case CategoryMalformedAttribute:
		return ErrMalformedAttribute
	case CategoryMalformedDeclaration:
		return ErrMalformedDeclaration
	case CategoryDuplicateID:
		return ErrDuplicateID
	}
	return nil
}

// Diagnostic is a build-time failure pinned to a source position.
type Diagnostic struct {
	Category Category
	Pos      token.Position
	Message  string
}

func (d *Diagnostic) Error() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", d.Pos, d.Message)
	}
	return d.Message
}

// Is matches the sentinel error of the diagnostic's category.
func (d *Diagnostic) Is(target error) bool {
	return target != nil && target == d.Category.sentinel()
}

func newDiagnostic(cat Category, pos token.Position, format string, a ...interface{}) *Diagnostic {
	return &Diagnostic{
		Category: cat,
		Pos:      pos,
		Message:  fmt.Sprintf(format, a...),
	}
}

// ErrorList is a list of diagnostics, reported together.
type ErrorList []*Diagnostic

func (list ErrorList) Error() string {
	switch len(list) {
	case 0:
		return "no errors"
	case 1:
		return list[0].Error()
	}
	msgs := make([]string, 0, len(list))
	for _, d := range list {
		msgs = append(msgs, d.Error())
	}
	return strings.Join(msgs, "\n")
}

// Is reports whether any diagnostic in the list matches target.
func (list ErrorList) Is(target error) bool {
	for _, d := range list {
		if d.Is(target) {
			return true
		}
	}
	return false
}

// Sort orders the list by file, line and column.
func (list ErrorList) Sort() {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].Pos, list[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// Err returns nil for an empty list and the sorted list otherwise.
func (list ErrorList) Err() error {
	if len(list) == 0 {
		return nil
	}
	list.Sort()
	return list
}
