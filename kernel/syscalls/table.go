// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package syscalls

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

// DuplicateIDError reports descriptors that share an id.
type DuplicateIDError struct {
	ID    uint32
	Names []string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("syscall id %d registered by %s", e.ID, strings.Join(e.Names, ", "))
}

// DuplicateIDErrors collects every id collision found by a check.
type DuplicateIDErrors []*DuplicateIDError

func (errs DuplicateIDErrors) Error() string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// table holds registered descriptors sorted by id, then by name token, with
// equal keys in registration order.
type table struct {
	mu          sync.Mutex
	descriptors []*Descriptor
}

func compareDescriptors(a, b *Descriptor) int {
	if c := cmp.Compare(a.ID, b.ID); c != 0 {
		return c
	}
	return bytes.Compare(a.Name[:], b.Name[:])
}

var defaultTable table

// Register adds d to the process-wide table. It is called from generated
// init functions and accepts duplicate ids; see Check.
func Register(d *Descriptor) {
	defaultTable.register(d)
}

// Descriptors returns every registered descriptor ordered by id, then by name
// token.
func Descriptors() []*Descriptor {
	return defaultTable.list()
}

// Lookup returns the first descriptor, in Descriptors order, registered under
// id.
func Lookup(id uint32) (*Descriptor, bool) {
	return defaultTable.lookup(id)
}

// LookupName returns the descriptor whose name token equals the token derived
// from name.
func LookupName(name string) (*Descriptor, bool) {
	return defaultTable.lookupName(MakeNameToken(name))
}

// Check reports ids registered more than once. A dispatcher should call it
// before building its routing table.
func Check() error {
	return defaultTable.check()
}

func (t *table) register(d *Descriptor) {
	if d == nil {
		panic("syscalls: Register of nil descriptor")
	}
	if d.Handler == nil {
		panic(fmt.Sprintf("syscalls: Register of %q (id %d) with nil handler", d.Name, d.ID))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	// Equal keys compare as less so that d lands after them.
	i, _ := slices.BinarySearchFunc(t.descriptors, d, func(e, target *Descriptor) int {
		if c := compareDescriptors(e, target); c != 0 {
			return c
		}
		return -1
	})
	t.descriptors = slices.Insert(t.descriptors, i, d)
}

func (t *table) list() []*Descriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.descriptors)
}

func (t *table) lookup(id uint32) (*Descriptor, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := slices.BinarySearchFunc(t.descriptors, id, func(d *Descriptor, id uint32) int {
		return cmp.Compare(d.ID, id)
	})
	if !ok {
		return nil, false
	}
	return t.descriptors[i], true
}

func (t *table) lookupName(tok NameToken) (*Descriptor, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, d := range t.descriptors {
		if d.Name == tok {
			return d, true
		}
	}
	return nil, false
}

func (t *table) check() error {
	var errs DuplicateIDErrors
	ds := t.list()
	for i := 0; i < len(ds); {
		j := i + 1
		for j < len(ds) && ds[j].ID == ds[i].ID {
			j++
		}
		if j-i > 1 {
			dup := &DuplicateIDError{ID: ds[i].ID}
			for _, d := range ds[i:j] {
				dup.Names = append(dup.Names, d.Name.String())
			}
			errs = append(errs, dup)
		}
		i = j
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
