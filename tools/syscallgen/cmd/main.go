// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// syscallgen generates the registry code of functions annotated with
// //merlin:syscall and checks the result.
//
// It is meant to be invoked from a go:generate directive:
//
//	//go:generate go run go.merlin.dev/merlin/tools/syscallgen/cmd generate .
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"go.merlin.dev/merlin/tools/lib/logger"
)

var (
	level          logger.LogLevel
	subcommandList []subcommands.Command
)

func init() {
	level = logger.InfoLevel

	flag.Var(&level, "level", "output verbosity, can be fatal, error, warning, info, debug or trace")

	subcommandList = append(subcommandList,
		subcommands.HelpCommand(),
		subcommands.FlagsCommand(),
	)
}

func main() {
	for _, cmd := range subcommandList {
		subcommands.Register(cmd, "")
	}

	flag.Parse()
	log := logger.NewLogger(level, os.Stdout, os.Stderr, "syscallgen ")
	ctx := logger.WithLogger(context.Background(), log)
	os.Exit(int(subcommands.Execute(ctx)))
}
