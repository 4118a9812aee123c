// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"go.merlin.dev/merlin/tools/lib/logger"
	"go.merlin.dev/merlin/tools/lib/osmisc"
	"go.merlin.dev/merlin/tools/staticanalysis"
	"go.merlin.dev/merlin/tools/syscallgen"
)

// loadFlags are the flags shared by subcommands that load Go packages.
// Flags that are set override the configuration file.
type loadFlags struct {
	configPath string
	dir        string
	directive  string
	tags       string
	jobs       int
	findings   string
}

func (l *loadFlags) setFlags(f *flag.FlagSet) {
	f.StringVar(&l.configPath, "config", syscallgen.ConfigFileName, "Path to the optional TOML configuration file.")
	f.StringVar(&l.dir, "dir", "", "Directory in which package patterns are resolved; defaults to the working directory.")
	f.StringVar(&l.directive, "directive", "", "Comment directive marking syscalls, without the leading //.")
	f.StringVar(&l.tags, "tags", "", "Comma separated list of build tags.")
	f.IntVar(&l.jobs, "j", 0, "Number of packages to process in parallel.")
	f.StringVar(&l.findings, "findings", "", "If set, path of a JSON file to write the diagnostics to as static analysis findings.")
}

func (l *loadFlags) config() (syscallgen.Config, error) {
	if l.dir != "" {
		ok, err := osmisc.IsDir(l.dir)
		if err != nil {
			return syscallgen.Config{}, err
		}
		if !ok {
			return syscallgen.Config{}, fmt.Errorf("directory %s does not exist", l.dir)
		}
	}
	cfg, err := syscallgen.LoadConfig(l.configPath)
	if err != nil {
		return syscallgen.Config{}, err
	}
	if l.directive != "" {
		cfg.Directive = l.directive
	}
	if l.tags != "" {
		cfg.BuildTags = strings.Split(l.tags, ",")
	}
	if l.jobs != 0 {
		cfg.Jobs = l.jobs
	}
	if err := cfg.Validate(); err != nil {
		return syscallgen.Config{}, err
	}
	return cfg, nil
}

// summarize loads the packages matching patterns and summarizes each of them.
// The diagnostics of every failing package are reported before returning.
func (l *loadFlags) summarize(ctx context.Context, cfg syscallgen.Config, patterns []string) ([]*syscallgen.PackageSummary, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	pkgs, err := syscallgen.Load(ctx, syscallgen.LoadOptions{
		Dir:          l.dir,
		BuildTags:    cfg.BuildTags,
		OutputPrefix: cfg.OutputPrefix,
	}, patterns...)
	if err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "loaded %d packages", len(pkgs))

	summaries := make([]*syscallgen.PackageSummary, len(pkgs))
	diags := make([]syscallgen.ErrorList, len(pkgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)
	for i, pkg := range pkgs {
		i, pkg := i, pkg
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summary, err := syscallgen.Summarize(pkg, syscallgen.SummarizeOptions{
				Directive:    cfg.Directive,
				OutputPrefix: cfg.OutputPrefix,
			})
			if err != nil {
				if !errors.As(err, &diags[i]) {
					return fmt.Errorf("%s: %w", pkg.Path, err)
				}
				return nil
			}
			logger.Debugf(ctx, "%s: %d syscalls", pkg.Path, len(summary.Syscalls()))
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all syscallgen.ErrorList
	var failed int
	for _, list := range diags {
		if len(list) > 0 {
			failed++
			all = append(all, list...)
		}
	}
	if failed > 0 {
		if err := l.report(ctx, all); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%d of %d packages have malformed syscall declarations", failed, len(pkgs))
	}
	return summaries, nil
}

// checkUnique reports every duplicate id among summaries.
func (l *loadFlags) checkUnique(ctx context.Context, summaries []*syscallgen.PackageSummary) error {
	err := syscallgen.CheckUnique(summaries)
	var list syscallgen.ErrorList
	if err != nil && !errors.As(err, &list) {
		return err
	}
	if err := l.report(ctx, list); err != nil {
		return err
	}
	if len(list) > 0 {
		return fmt.Errorf("found %d syscalls reusing an id: %w", len(list), syscallgen.ErrDuplicateID)
	}
	return nil
}

// report logs diagnostics and writes them to the findings file, if any.
func (l *loadFlags) report(ctx context.Context, diags syscallgen.ErrorList) error {
	for _, d := range diags {
		logger.Errorf(ctx, "%s", d)
	}
	if l.findings == "" {
		return nil
	}
	root := l.dir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = wd
	}
	var findings []staticanalysis.Finding
	for _, d := range diags {
		findings = append(findings, toFinding(root, d))
	}
	return staticanalysis.WriteFindings(l.findings, findings)
}

func toFinding(root string, d *syscallgen.Diagnostic) staticanalysis.Finding {
	path := d.Pos.Filename
	if abs, err := filepath.Abs(root); err == nil && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(abs, path); err == nil {
			path = rel
		}
	}
	return staticanalysis.Finding{
		Category: "syscallgen/" + string(d.Category),
		Message:  d.Message,
		Path:     filepath.ToSlash(path),
		Line:     d.Pos.Line,
		Col:      d.Pos.Column,
	}
}
