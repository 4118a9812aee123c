// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package syscalls holds the process-wide table of syscall descriptors.
//
// Descriptors are never written by hand. Functions annotated with
//
//	//merlin:syscall id = <int>
//
// are picked up by syscallgen, which emits a fixed-convention entry point and
// a Descriptor for each of them, and registers the descriptors from package
// init functions. By the time main runs the table is complete and can be
// enumerated by the dispatcher.
package syscalls

// NameTokenSize is the fixed width of a syscall name token.
const NameTokenSize = 32

// NumArgs is the number of argument registers carried in Args.
const NumArgs = 6

// Args is the register frame handed to an entry point.
type Args [NumArgs]uintptr

// Entry is the fixed calling convention of every generated entry point.
type Entry func(args *Args) uintptr

// NameToken is the zero-padded, fixed-width encoding of a syscall's declared
// name. Tokens are compared on all NameTokenSize bytes.
type NameToken [NameTokenSize]byte

// MakeNameToken encodes name as a token. Names longer than NameTokenSize
// bytes are truncated.
func MakeNameToken(name string) NameToken {
	var tok NameToken
	copy(tok[:], name)
	return tok
}

// String returns the token's bytes up to the first zero byte.
func (tok NameToken) String() string {
	for i, b := range tok {
		if b == 0 {
			return string(tok[:i])
		}
	}
	return string(tok[:])
}

// Descriptor identifies one registered syscall. The field order is part of
// the ABI and must not change.
type Descriptor struct {
	ID      uint32
	Name    NameToken
	Handler Entry
}

// Call invokes the descriptor's entry point.
func (d *Descriptor) Call(args *Args) uintptr {
	return d.Handler(args)
}
