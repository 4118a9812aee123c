// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package syscalls

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMakeNameToken(t *testing.T) {
	long := strings.Repeat("abcdefghij", 4)
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "short", input: "open_file", expected: "open_file"},
		{name: "exact", input: long[:NameTokenSize], expected: long[:NameTokenSize]},
		{name: "truncated", input: long, expected: long[:NameTokenSize]},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tok := MakeNameToken(test.input)
			if got := tok.String(); got != test.expected {
				t.Errorf("String() = %q, want %q", got, test.expected)
			}
			for i := len(test.expected); i < NameTokenSize; i++ {
				if tok[i] != 0 {
					t.Fatalf("byte %d of %q is %#x, want zero padding", i, test.input, tok[i])
				}
			}
		})
	}
}

func TestNameTokenEqualityUsesAllBytes(t *testing.T) {
	a := MakeNameToken("read")
	b := MakeNameToken("read")
	if a != b {
		t.Errorf("tokens of equal names differ: %v != %v", a, b)
	}
	b[NameTokenSize-1] = 'x'
	if a == b {
		t.Errorf("tokens differing in the last byte compare equal")
	}
}

func newDescriptor(id uint32, name string) *Descriptor {
	return &Descriptor{
		ID:   id,
		Name: MakeNameToken(name),
		Handler: func(args *Args) uintptr {
			return uintptr(id) + args[0]
		},
	}
}

func names(ds []*Descriptor) []string {
	var out []string
	for _, d := range ds {
		out = append(out, d.Name.String())
	}
	return out
}

func TestTableOrdering(t *testing.T) {
	var tab table
	tab.register(newDescriptor(3, "close"))
	tab.register(newDescriptor(1, "write"))
	tab.register(newDescriptor(1, "read"))
	tab.register(newDescriptor(2, "open"))

	expected := []string{"read", "write", "open", "close"}
	if diff := cmp.Diff(expected, names(tab.list())); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestTableLookup(t *testing.T) {
	var tab table
	tab.register(newDescriptor(42, "open_file"))
	tab.register(newDescriptor(7, strings.Repeat("x", 40)))

	d, ok := tab.lookup(42)
	if !ok {
		t.Fatal("id 42 not found")
	}
	if got := d.Call(&Args{1}); got != 43 {
		t.Errorf("Call() = %d, want 43", got)
	}
	if _, ok := tab.lookup(8); ok {
		t.Error("found unregistered id 8")
	}

	d, ok = tab.lookupName(MakeNameToken(strings.Repeat("x", 50)))
	if !ok || d.ID != 7 {
		t.Errorf("lookup of truncated name = %v, %t; want id 7", d, ok)
	}
}

func TestTableLookupFindsFirstInOrder(t *testing.T) {
	var tab table
	first := newDescriptor(4, "dup")
	second := newDescriptor(4, "dup")
	tab.register(newDescriptor(9, "last"))
	tab.register(newDescriptor(4, "zeta"))
	tab.register(first)
	tab.register(newDescriptor(1, "first"))
	tab.register(second)
	tab.register(newDescriptor(4, "alpha"))

	d, ok := tab.lookup(4)
	if !ok || d.Name.String() != "alpha" {
		t.Errorf("lookup(4) = %v, %t; want alpha", d, ok)
	}
	d, ok = tab.lookupName(MakeNameToken("dup"))
	if !ok || d != first {
		t.Errorf("lookupName(dup) = %p, want the first registered %p", d, first)
	}
	for _, id := range []uint32{0, 2, 5, 10} {
		if _, ok := tab.lookup(id); ok {
			t.Errorf("found unregistered id %d", id)
		}
	}

	ds := tab.list()
	expected := []string{"first", "alpha", "dup", "dup", "zeta", "last"}
	if diff := cmp.Diff(expected, names(ds)); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
	if ds[2] != first || ds[3] != second {
		t.Error("descriptors with equal keys are not in registration order")
	}
}

func TestTableCheck(t *testing.T) {
	var tab table
	tab.register(newDescriptor(1, "a"))
	tab.register(newDescriptor(2, "b"))
	if err := tab.check(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tab.register(newDescriptor(1, "c"))
	tab.register(newDescriptor(2, "d"))
	err := tab.check()
	var dups DuplicateIDErrors
	if !errors.As(err, &dups) {
		t.Fatalf("expected DuplicateIDErrors; got %v", err)
	}
	expected := DuplicateIDErrors{
		{ID: 1, Names: []string{"a", "c"}},
		{ID: 2, Names: []string{"b", "d"}},
	}
	if diff := cmp.Diff(expected, dups); diff != "" {
		t.Errorf("unexpected duplicates (-want +got):\n%s", diff)
	}
}

func TestRegisterRejectsNilHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	var tab table
	tab.register(&Descriptor{ID: 1, Name: MakeNameToken("nil")})
}
