// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"go.merlin.dev/merlin/tools/lib/logger"
	"go.merlin.dev/merlin/tools/syscallgen"
	"go.merlin.dev/merlin/tools/syscallgen/backends/golang"
	"go.merlin.dev/merlin/tools/syscallgen/backends/manifest"
)

type generateCmd struct {
	loadFlags
	manifest          string
	allowDuplicateIDs bool
}

func init() {
	subcommandList = append(subcommandList,
		&generateCmd{},
	)
}

func (*generateCmd) Name() string { return "generate" }

func (*generateCmd) Synopsis() string {
	return "Writes the registry file of every Go source file declaring syscalls."
}

func (*generateCmd) Usage() string {
	return "syscallgen generate [-manifest <path>] [packages]\n"
}

func (cmd *generateCmd) SetFlags(f *flag.FlagSet) {
	cmd.loadFlags.setFlags(f)
	f.StringVar(&cmd.manifest, "manifest", "", "Path of the YAML manifest to write; overrides the configuration file.")
	f.BoolVar(&cmd.allowDuplicateIDs, "allow_duplicate_ids", false, "Generate even if several syscalls share an id.")
}

func (cmd *generateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := cmd.execute(ctx, f.Args()); err != nil {
		logger.Errorf(ctx, "%s", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (cmd *generateCmd) execute(ctx context.Context, patterns []string) error {
	cfg, err := cmd.config()
	if err != nil {
		return err
	}
	if cmd.manifest != "" {
		cfg.Manifest = cmd.manifest
	}

	summaries, err := cmd.summarize(ctx, cfg, patterns)
	if err != nil {
		return err
	}
	if err := cmd.checkUnique(ctx, summaries); err != nil {
		if !cmd.allowDuplicateIDs {
			return err
		}
		logger.Warningf(ctx, "%s", err)
	}

	gen := golang.NewGenerator(syscallgen.NewGoFormatter())
	gen.OutputPrefix = cfg.OutputPrefix
	var g errgroup.Group
	g.SetLimit(cfg.Jobs)
	for _, summary := range summaries {
		summary := summary
		g.Go(func() error {
			outputs, err := gen.Generate(*summary)
			if err != nil {
				return err
			}
			for _, output := range outputs {
				logger.Infof(ctx, "updated %s", output)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.Manifest != "" {
		written, err := manifest.Generate(summaries, cfg.Manifest)
		if err != nil {
			return err
		}
		if written {
			logger.Infof(ctx, "updated %s", cfg.Manifest)
		}
	}
	return nil
}
