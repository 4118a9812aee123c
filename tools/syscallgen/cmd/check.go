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
	"go.merlin.dev/merlin/tools/syscallgen/backends/golang"
)

type checkCmd struct {
	loadFlags
}

func init() {
	subcommandList = append(subcommandList,
		&checkCmd{},
	)
}

func (*checkCmd) Name() string { return "check" }

func (*checkCmd) Synopsis() string {
	return "Checks that syscall ids are unique and that generated files are up to date."
}

func (*checkCmd) Usage() string {
	return "syscallgen check [packages]\n"
}

func (cmd *checkCmd) SetFlags(f *flag.FlagSet) {
	cmd.loadFlags.setFlags(f)
}

func (cmd *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := cmd.execute(ctx, f.Args()); err != nil {
		logger.Errorf(ctx, "%s", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (cmd *checkCmd) execute(ctx context.Context, patterns []string) error {
	cfg, err := cmd.config()
	if err != nil {
		return err
	}
	summaries, err := cmd.summarize(ctx, cfg, patterns)
	if err != nil {
		return err
	}
	if err := cmd.checkUnique(ctx, summaries); err != nil {
		return err
	}

	gen := golang.NewGenerator(syscallgen.NewGoFormatter())
	gen.OutputPrefix = cfg.OutputPrefix
	var stale []string
	for _, summary := range summaries {
		paths, err := gen.OutOfDate(*summary)
		if err != nil {
			return err
		}
		stale = append(stale, paths...)
	}
	for _, path := range stale {
		logger.Errorf(ctx, "%s is out of date", path)
	}
	if len(stale) > 0 {
		return fmt.Errorf("%d generated files are out of date; run syscallgen generate", len(stale))
	}

	var n int
	for _, summary := range summaries {
		n += len(summary.Syscalls())
	}
	logger.Infof(ctx, "%d syscalls in %d packages", n, len(summaries))
	return nil
}
