// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package sys implements the process syscalls of the Merlin kernel.
package sys

import (
	"sync"
	"unsafe"
)

//go:generate go run go.merlin.dev/merlin/tools/syscallgen/cmd generate .

const errBadFD = -9

var (
	mu         sync.Mutex
	console    []byte
	pid        int32 = 1
	exited     bool
	exitStatus int32
)

// write appends n bytes at buf to the console. Only the standard output
// and error descriptors are supported.
//
//merlin:syscall id = 1
func write(fd int32, buf *byte, n uintptr) int64 {
	if fd != 1 && fd != 2 {
		return errBadFD
	}
	mu.Lock()
	defer mu.Unlock()
	console = append(console, unsafe.Slice(buf, n)...)
	return int64(n)
}

// getpid returns the id of the calling process.
//
//merlin:syscall id = 39
func getpid() int32 {
	mu.Lock()
	defer mu.Unlock()
	return pid
}

// exit terminates the calling process with the given status.
//
//merlin:syscall id = 60
func exit(status int32) {
	mu.Lock()
	defer mu.Unlock()
	exited = true
	exitStatus = status
}

// Console returns a copy of everything written to the console.
func Console() []byte {
	mu.Lock()
	defer mu.Unlock()
	return append([]byte(nil), console...)
}

// ExitStatus returns the status passed to exit, if it was called.
func ExitStatus() (int32, bool) {
	mu.Lock()
	defer mu.Unlock()
	return exitStatus, exited
}
