// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package syscallgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), ConfigFileName))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
			t.Errorf("unexpected config (-want +got):\n%s", diff)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		path := writeConfig(t, `
directive = "kernel:entry"
manifest = "out/syscalls.yaml"
build_tags = ["merlin", "debug"]
jobs = 8
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatal(err)
		}
		expected := Config{
			Directive:    "kernel:entry",
			OutputPrefix: DefaultOutputPrefix,
			Manifest:     "out/syscalls.yaml",
			BuildTags:    []string{"merlin", "debug"},
			Jobs:         8,
		}
		if diff := cmp.Diff(expected, cfg); diff != "" {
			t.Errorf("unexpected config (-want +got):\n%s", diff)
		}
	})

	tests := []struct {
		name    string
		content string
		message string
	}{
		{name: "unknown key", content: "directive = \"a:b\"\nid_base = 3\n", message: "unknown keys: id_base"},
		{name: "bad syntax", content: "directive = \n", message: "failed to read config"},
		{name: "bad directive", content: "directive = \"//merlin:syscall\"\n", message: "invalid directive"},
		{name: "bad prefix", content: "output_prefix = \"gen/\"\n", message: "invalid output prefix"},
		{name: "bad jobs", content: "jobs = 0\n", message: "jobs must be positive"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, test.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), test.message) {
				t.Errorf("error %q does not contain %q", err, test.message)
			}
		})
	}
}
