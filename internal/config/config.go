// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the pyscope configuration file.
//
// The file is TOML:
//
//	format = "tree"
//	jobs = 8
//	include = ["**/*.py"]
//	exclude = ["**/testdata/**"]
//	inline_comprehensions = false
//	max_depth = 1000
//	color = "auto"
//	metrics_file = ""
//
// Every key is optional. Command-line flags override the file.
package config // import "go.pyscope.net/internal/config"

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"

	"go.pyscope.net/export"
	"go.pyscope.net/symtable"
)

// DefaultFile is the configuration file read when none is named.
const DefaultFile = "pyscope.toml"

// Config holds the settings of the pyscope command.
type Config struct {
	Format               string   `toml:"format"`
	Jobs                 int      `toml:"jobs"`
	Include              []string `toml:"include"`
	Exclude              []string `toml:"exclude"`
	InlineComprehensions bool     `toml:"inline_comprehensions"`
	MaxDepth             int      `toml:"max_depth"`
	Color                string   `toml:"color"` // "auto", "always" or "never"
	MetricsFile          string   `toml:"metrics_file"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := new(Config)
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at path.
// A missing file is not an error if optional is set.
func Load(path string, optional bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Format) == "" {
		cfg.Format = export.Tree.String()
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = runtime.GOMAXPROCS(0)
	}
	if len(cfg.Include) == 0 {
		cfg.Include = []string{"**.py"}
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = symtable.DefaultMaxDepth
	}
	if strings.TrimSpace(cfg.Color) == "" {
		cfg.Color = "auto"
	}
}

// Validate reports the first invalid setting.
func (cfg *Config) Validate() error {
	if _, err := export.ParseFormat(cfg.Format); err != nil {
		return err
	}
	switch cfg.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q (want auto, always or never)", cfg.Color)
	}
	if _, err := cfg.Matcher(); err != nil {
		return err
	}
	return nil
}

// Options returns the analysis options selected by cfg.
func (cfg *Config) Options() *symtable.Options {
	return &symtable.Options{
		InlineComprehensions: cfg.InlineComprehensions,
		MaxDepth:             cfg.MaxDepth,
	}
}

// A Matcher selects the files that the check command analyzes.
type Matcher struct {
	include, exclude []glob.Glob
}

// Matcher compiles the include and exclude patterns.
// Patterns use '/' as the separator; "**" matches across directories.
func (cfg *Config) Matcher() (*Matcher, error) {
	compile := func(patterns []string) ([]glob.Glob, error) {
		var globs []glob.Glob
		for _, p := range patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
			}
			globs = append(globs, g)
		}
		return globs, nil
	}
	include, err := compile(cfg.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compile(cfg.Exclude)
	if err != nil {
		return nil, err
	}
	return &Matcher{include: include, exclude: exclude}, nil
}

// Match reports whether the slash-separated path is selected.
func (m *Matcher) Match(path string) bool {
	for _, g := range m.exclude {
		if g.Match(path) {
			return false
		}
	}
	for _, g := range m.include {
		if g.Match(path) {
			return true
		}
	}
	return false
}
