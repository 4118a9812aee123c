// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"go.merlin.dev/merlin/tools/lib/logger"
	"go.merlin.dev/merlin/tools/syscallgen"
	"go.merlin.dev/merlin/tools/syscallgen/backends/manifest"
	"go.merlin.dev/merlin/tools/syscallgen/elfcheck"
)

type verifyCmd struct {
	configPath string
	manifest   string
}

func init() {
	subcommandList = append(subcommandList,
		&verifyCmd{},
	)
}

func (*verifyCmd) Name() string { return "verify" }

func (*verifyCmd) Synopsis() string {
	return "Checks that every syscall in the manifest survived linking into the given ELF binaries."
}

func (*verifyCmd) Usage() string {
	return "syscallgen verify [-manifest <path>] <binary>...\n"
}

func (cmd *verifyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.configPath, "config", syscallgen.ConfigFileName, "Path to the optional TOML configuration file.")
	f.StringVar(&cmd.manifest, "manifest", "", "Path of the YAML manifest; overrides the configuration file.")
}

func (cmd *verifyCmd) parseFlags(binaries []string) (string, error) {
	path := cmd.manifest
	if path == "" {
		cfg, err := syscallgen.LoadConfig(cmd.configPath)
		if err != nil {
			return "", err
		}
		path = cfg.Manifest
	}
	if path == "" {
		return "", fmt.Errorf("-manifest is required")
	}
	if len(binaries) == 0 {
		return "", fmt.Errorf("at least one binary is required")
	}
	return path, nil
}

func (cmd *verifyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := cmd.execute(ctx, f.Args()); err != nil {
		logger.Errorf(ctx, "%s", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (cmd *verifyCmd) execute(ctx context.Context, binaries []string) error {
	path, err := cmd.parseFlags(binaries)
	if err != nil {
		return err
	}
	entries, err := manifest.Read(path)
	if err != nil {
		return err
	}
	for _, binary := range binaries {
		if err := verifyBinary(binary, entries); err != nil {
			return fmt.Errorf("%s: %w", binary, err)
		}
		logger.Infof(ctx, "%s: all %d syscalls present", binary, len(entries))
	}
	return nil
}

func verifyBinary(path string, entries []manifest.Entry) error {
	f, err := elfcheck.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Verify(entries)
}
