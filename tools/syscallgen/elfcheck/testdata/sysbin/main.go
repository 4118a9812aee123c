// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// sysbin links the kernel syscalls without referencing any of them.
package main

import (
	_ "go.merlin.dev/merlin/kernel/sys"
)

func main() {}
