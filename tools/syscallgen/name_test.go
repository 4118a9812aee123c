// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package syscallgen

import (
	"testing"
)

func TestGeneratedNames(t *testing.T) {
	if got := EntryName("open_file"); got != "syscallEntry_open_file" {
		t.Errorf("EntryName = %q", got)
	}
	if got := DescriptorName("open_file"); got != "syscallDescriptor_open_file" {
		t.Errorf("DescriptorName = %q", got)
	}
}

func TestNameToken(t *testing.T) {
	tok := NameToken("open_file")
	if got := tok.String(); got != "open_file" {
		t.Errorf("String() = %q", got)
	}
	for i := len("open_file"); i < len(tok); i++ {
		if tok[i] != 0 {
			t.Fatalf("byte %d of the token is %#x, want zero padding", i, tok[i])
		}
	}
	if NameToken("abc") == NameToken("abd") {
		t.Error("distinct names produced the same token")
	}
}

func TestLinkerSymbol(t *testing.T) {
	tests := []struct {
		importPath string
		ident      string
		expected   string
	}{
		{"main", "syscallEntry_exit", "main.syscallEntry_exit"},
		{"example.com/fs", "syscallEntry_open", "example.com/fs.syscallEntry_open"},
		{"example.com/fs.v2", "x", "example.com/fs%2ev2.x"},
		{"gopkg.in/yaml.v2/sub", "x", "gopkg.in/yaml.v2/sub.x"},
		{"go.merlin.dev", "x", "go%2emerlin%2edev.x"},
	}
	for _, test := range tests {
		if got := LinkerSymbol(test.importPath, test.ident); got != test.expected {
			t.Errorf("LinkerSymbol(%q, %q) = %q, want %q", test.importPath, test.ident, got, test.expected)
		}
	}
}
