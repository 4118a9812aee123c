// Copyright 2025 The Merlin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package syscallgen

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultOutputPrefix is prepended to the basename of a source file to name
// the file generated for it. A prefix, rather than a suffix, keeps any
// _GOOS/_GOARCH filename constraint of the source in effect.
const DefaultOutputPrefix = "zz_syscalls_"

// ConfigFileName is the name of the optional configuration file looked up in
// the working directory.
const ConfigFileName = "syscallgen.toml"

// Config holds the settings shared by the syscallgen subcommands.
type Config struct {
	// Directive is the comment directive marking syscall declarations,
	// without the leading "//".
	Directive string `toml:"directive"`

	// OutputPrefix names generated files; see DefaultOutputPrefix.
	OutputPrefix string `toml:"output_prefix"`

	// Manifest, if set, is the path of the YAML descriptor manifest.
	Manifest string `toml:"manifest"`

	// BuildTags are passed to the build system when loading packages.
	BuildTags []string `toml:"build_tags"`

	// Jobs bounds the number of packages processed in parallel.
	Jobs int `toml:"jobs"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Directive:    DefaultDirective,
		OutputPrefix: DefaultOutputPrefix,
		Jobs:         4,
	}
}

// LoadConfig reads a TOML configuration file over the defaults. A missing
// file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var keys []string
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (cfg Config) Validate() error {
	if cfg.Directive == "" || strings.ContainsAny(cfg.Directive, " \t\n") || strings.HasPrefix(cfg.Directive, "/") {
		return fmt.Errorf("invalid directive %q", cfg.Directive)
	}
	if cfg.OutputPrefix == "" || strings.ContainsAny(cfg.OutputPrefix, `/\`) {
		return fmt.Errorf("invalid output prefix %q", cfg.OutputPrefix)
	}
	if cfg.Jobs < 1 {
		return fmt.Errorf("jobs must be positive, got %d", cfg.Jobs)
	}
	return nil
}
