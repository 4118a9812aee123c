// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package staticanalysis defines the schema in which build-time checks report
// findings to code review tooling.
package staticanalysis

import (
	"encoding/json"
	"fmt"

	"go.merlin.dev/merlin/tools/lib/osmisc"
)

// Finding is a problem found by a check, pinned to a source location.
type Finding struct {
	// Category names the check and the kind of problem, e.g.
	// "syscallgen/DuplicateID".
	Category string `json:"category"`

	// Message is a human-readable description of the finding.
	Message string `json:"message"`

	// Path is the path of the file relative to the root of the checkout,
	// using forward slashes as delimiters.
	Path string `json:"path"`

	// Line and Col locate the start of the finding (1-indexed). If omitted,
	// the finding applies to the entire file or line.
	Line int `json:"line,omitempty"`
	Col  int `json:"col,omitempty"`
}

// WriteFindings writes findings to path as a JSON list. No findings are
// written as an empty list, so that readers can tell a clean run from a
// missing one.
func WriteFindings(path string, findings []Finding) error {
	if findings == nil {
		findings = []Finding{}
	}
	data, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return err
	}
	if _, err := osmisc.WriteFileIfChanged(path, append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write findings: %w", err)
	}
	return nil
}
