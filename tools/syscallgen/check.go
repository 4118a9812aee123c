// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package syscallgen

import (
	"cmp"

	"golang.org/x/exp/slices"
)

// qualifiedSyscall is a syscall together with its package path.
type qualifiedSyscall struct {
	pkg     string
	syscall Syscall
}

func (q qualifiedSyscall) String() string {
	return q.pkg + "." + q.syscall.Name
}

// CheckUnique reports every syscall whose id is already used by another
// syscall in the given packages. Summarize accepts duplicate ids, since each
// declaration is summarized on its own; this check is the build-time guard
// over the whole set.
func CheckUnique(summaries []*PackageSummary) error {
	var all []qualifiedSyscall
	for _, summary := range summaries {
		for _, syscall := range summary.Syscalls() {
			all = append(all, qualifiedSyscall{pkg: summary.Path, syscall: syscall})
		}
	}
	slices.SortStableFunc(all, func(a, b qualifiedSyscall) int {
		if c := cmp.Compare(a.syscall.ID, b.syscall.ID); c != 0 {
			return c
		}
		if c := cmp.Compare(a.pkg, b.pkg); c != 0 {
			return c
		}
		if c := cmp.Compare(a.syscall.Position.Filename, b.syscall.Position.Filename); c != 0 {
			return c
		}
		return cmp.Compare(a.syscall.Position.Offset, b.syscall.Position.Offset)
	})

	var errs ErrorList
	for i := 1; i < len(all); i++ {
		first := all[i-1]
		for j := i - 1; j >= 0 && all[j].syscall.ID == all[i].syscall.ID; j-- {
			first = all[j]
		}
		if first.syscall.ID != all[i].syscall.ID {
			continue
		}
		errs = append(errs, newDiagnostic(CategoryDuplicateID, all[i].syscall.Position,
			"syscall id %d of %s is already used by %s at %s",
			all[i].syscall.ID, all[i], first, first.syscall.Position))
	}
	return errs.Err()
}
