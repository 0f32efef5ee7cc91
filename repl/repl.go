// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package repl provides a read/analyze/print loop for Python scoping.
//
// It supports readline-style command editing.
//
// Each input is analyzed as one interactive statement. A decorator,
// or a line that opens a compound statement (it ends with a colon),
// is followed by further lines until a blank line. A line with
// unclosed brackets or a trailing backslash is followed by lines
// until the brackets close.
// The symbol table of the statement is printed in the chosen format.
package repl // import "go.pyscope.net/repl"

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"go.pyscope.net/export"
	"go.pyscope.net/pyparse"
	"go.pyscope.net/symtable"
	"go.pyscope.net/syntax"
)

// A LineReader reads input lines. *readline.Instance implements it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// REPL executes a read, analyze, print loop on the terminal.
func REPL(opts *symtable.Options, format export.Format) {
	rl, err := readline.New(">>> ")
	if err != nil {
		PrintError(err)
		return
	}
	defer rl.Close()
	Loop(rl, os.Stdout, opts, format)
	fmt.Println()
}

// Loop analyzes statements read from rl until end of input,
// printing tables to out and errors to stderr.
func Loop(rl LineReader, out io.Writer, opts *symtable.Options, format export.Format) {
	for {
		if err := rep(rl, out, opts, format); err != nil {
			if err == readline.ErrInterrupt {
				fmt.Fprintln(out, err)
				continue
			}
			break
		}
	}
}

// rep reads, analyzes, and prints one statement.
//
// It returns an error (possibly readline.ErrInterrupt)
// only if reading failed. Syntax and scoping errors are printed.
func rep(rl LineReader, out io.Writer, opts *symtable.Options, format export.Format) error {
	src, err := readChunk(rl)
	if err != nil {
		return err
	}
	if strings.TrimSpace(src) == "" {
		return nil
	}

	table, err := analyze(src, opts)
	if err != nil {
		PrintError(err)
		return nil
	}
	if err := export.Write(out, table, format); err != nil {
		PrintError(err)
	}
	if !format.Binary() {
		fmt.Fprintln(out)
	}
	return nil
}

func analyze(src string, opts *symtable.Options) (*symtable.SymbolTable, error) {
	n, err := pyparse.Parse("<stdin>", []byte(src), syntax.ModeSingle)
	if err != nil {
		return nil, err
	}
	return symtable.REPLChunk(n.(*syntax.File), opts)
}

// readChunk reads the lines of one statement.
// A partial statement at end of input is returned with no error.
func readChunk(rl LineReader) (string, error) {
	var buf strings.Builder
	var compound bool
	depth := 0

	rl.SetPrompt(">>> ")
	for first := true; ; first = false {
		line, err := rl.Readline()
		rl.SetPrompt("... ")
		if err != nil {
			if errors.Is(err, io.EOF) && !first {
				return buf.String(), nil
			}
			return "", err
		}
		buf.WriteString(line)
		buf.WriteByte('\n')

		if compound && strings.TrimSpace(line) == "" {
			return buf.String(), nil
		}
		code, continued := scanLine(line, &depth)
		if (depth <= 0 && strings.HasSuffix(code, ":")) || (first && strings.HasPrefix(code, "@")) {
			compound = true
		}
		if !compound && !continued && depth <= 0 {
			return buf.String(), nil
		}
	}
}

// scanLine updates the bracket depth for line and returns the line's
// code with comments and trailing space removed, and whether it ends
// in a backslash. Brackets inside single-line string literals are
// ignored.
func scanLine(line string, depth *int) (code string, continued bool) {
	var quote byte
	end := len(line)
scan:
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '#':
			end = i
			break scan
		case c == '(' || c == '[' || c == '{':
			*depth++
		case c == ')' || c == ']' || c == '}':
			*depth--
		}
	}
	code = strings.TrimRight(line[:end], " \t")
	if strings.HasSuffix(code, "\\") {
		return strings.TrimSuffix(code, "\\"), true
	}
	return code, false
}

// PrintError prints the error to stderr.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, err)
}
