// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The pyscope command reports the lexical scope of the names in
// Python source files.
//
//	pyscope dump [-c prog] [file]   print the symbol table of one program
//	pyscope check path...           report scoping errors in many files
//	pyscope repl                    analyze statements interactively
//	pyscope version                 print version information
//
// Settings are read from pyscope.toml in the current directory,
// or from the file named by --config; flags override the file.
package main // import "go.pyscope.net/cmd/pyscope"

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"go.pyscope.net/export"
	"go.pyscope.net/internal/config"
	"go.pyscope.net/symtable"
)

// errFailed is returned by a command that has already
// reported its failure.
var errFailed = errors.New("failed")

func main() {
	os.Exit(doMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func doMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(stderr, "pyscope: %v\n", err)
		}
		return 1
	}
	return 0
}

// An app holds the state shared by the subcommands.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	configFile string
	verbose    bool
	color      string
	inline     bool
	maxDepth   int
	format     export.Format

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "pyscope",
		Short:         "Report the lexical scope of Python names",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "read settings from `file` (default "+config.DefaultFile+" if present)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log progress to stderr")
	flags.StringVar(&a.color, "color", "", "colorize diagnostics (auto|always|never)")
	flags.BoolVar(&a.inline, "inline-comprehensions", false, "bind comprehension variables in the enclosing block")
	flags.IntVar(&a.maxDepth, "max-depth", 0, "maximum statement and expression nesting")
	flags.VarP(&a.format, "format", "f", "output format (tree|json|yaml|msgpack|prototext|protojson)")

	root.AddCommand(
		a.dumpCmd(),
		a.checkCmd(),
		a.replCmd(),
		versionCmd(),
	)
	return root
}

// setup loads the configuration and applies flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	path, optional := a.configFile, false
	if path == "" {
		path, optional = config.DefaultFile, true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("color") {
		cfg.Color = a.color
	}
	if flags.Changed("inline-comprehensions") {
		cfg.InlineComprehensions = a.inline
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = a.maxDepth
	}
	if flags.Changed("format") {
		cfg.Format = a.format.String()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.format, _ = export.ParseFormat(cfg.Format)
	a.cfg = cfg

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	a.logger.Debug("configuration loaded", "file", path, "format", cfg.Format, "jobs", cfg.Jobs)
	return nil
}

func (a *app) options() *symtable.Options { return a.cfg.Options() }

// colors returns the colors for error and warning labels.
func (a *app) colors() (errColor, warnColor *color.Color) {
	errColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	on := false
	switch a.cfg.Color {
	case "always":
		on = true
	case "auto":
		on = isTerminal(a.stdout)
	}
	for _, c := range []*color.Color{errColor, warnColor} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return errColor, warnColor
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
