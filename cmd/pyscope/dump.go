// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go.pyscope.net/export"
	"go.pyscope.net/pyparse"
	"go.pyscope.net/symtable"
	"go.pyscope.net/syntax"
)

func (a *app) dumpCmd() *cobra.Command {
	var (
		prog string
		mode string
	)
	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "Print the symbol table of a program",
		Long: `Dump analyzes one program and prints its symbol table.
The program is read from the named file, from the -c flag, or from
standard input if the file is "-" or omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := syntax.ParseMode(mode)
			if err != nil {
				return err
			}

			var (
				filename string
				src      []byte
			)
			switch {
			case prog != "" && len(args) > 0:
				return fmt.Errorf("dump: -c and a file name are mutually exclusive")
			case prog != "":
				filename, src = "cmdline", []byte(prog)
			case len(args) == 0 || args[0] == "-":
				filename = "<stdin>"
				src, err = io.ReadAll(a.stdin)
			default:
				filename = args[0]
				src, err = os.ReadFile(filename)
			}
			if err != nil {
				return err
			}

			table, err := a.analyze(filename, src, m)
			if err != nil {
				fmt.Fprintln(a.stderr, err)
				return errFailed
			}
			if err := export.Write(a.stdout, table, a.format); err != nil {
				return err
			}
			if a.format == export.Tree {
				fmt.Fprintln(a.stdout)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&prog, "command", "c", "", "analyze program `prog`")
	cmd.Flags().StringVar(&mode, "mode", "exec", "compilation mode (exec|eval|single)")
	return cmd
}

// analyze parses and analyzes one program, printing warnings to stderr.
func (a *app) analyze(filename string, src []byte, mode syntax.Mode) (*symtable.SymbolTable, error) {
	n, err := pyparse.Parse(filename, src, mode)
	if err != nil {
		return nil, err
	}
	opts := a.options()
	opts.Warn = func(pos syntax.Position, msg string) {
		fmt.Fprintf(a.stderr, "%s: warning: %s\n", pos, msg)
	}
	return symtable.Build(n, mode, opts)
}
