// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package syscallgen

import (
	"errors"
	"go/token"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func syscallAt(id uint32, name, file string, offset int) Syscall {
	return Syscall{
		ID:       id,
		Name:     name,
		Position: token.Position{Filename: file, Offset: offset, Line: offset + 1, Column: 1},
	}
}

func TestCheckUnique(t *testing.T) {
	t.Run("distinct ids", func(t *testing.T) {
		summaries := []*PackageSummary{
			{Path: "example.com/a", Files: []FileSummary{{Syscalls: []Syscall{syscallAt(1, "a", "a.go", 0), syscallAt(2, "b", "a.go", 1)}}}},
			{Path: "example.com/b", Files: []FileSummary{{Syscalls: []Syscall{syscallAt(3, "c", "b.go", 0)}}}},
		}
		if err := CheckUnique(summaries); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("no syscalls", func(t *testing.T) {
		if err := CheckUnique(nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("duplicates across packages", func(t *testing.T) {
		summaries := []*PackageSummary{
			{Path: "example.com/b", Files: []FileSummary{{Syscalls: []Syscall{syscallAt(7, "late", "b.go", 4)}}}},
			{Path: "example.com/a", Files: []FileSummary{{Syscalls: []Syscall{
				syscallAt(7, "second", "a.go", 9),
				syscallAt(7, "first", "a.go", 2),
				syscallAt(8, "other", "a.go", 20),
			}}}},
		}
		err := CheckUnique(summaries)
		if !errors.Is(err, ErrDuplicateID) {
			t.Fatalf("expected ErrDuplicateID; got %v", err)
		}
		var list ErrorList
		if !errors.As(err, &list) {
			t.Fatalf("expected an ErrorList; got %T", err)
		}
		var got []string
		for _, d := range list {
			got = append(got, d.Message)
		}
		expected := []string{
			"syscall id 7 of example.com/a.second is already used by example.com/a.first at a.go:3:1",
			"syscall id 7 of example.com/b.late is already used by example.com/a.first at a.go:3:1",
		}
		if diff := cmp.Diff(expected, got); diff != "" {
			t.Errorf("unexpected diagnostics (-want +got):\n%s", diff)
		}
	})
}
