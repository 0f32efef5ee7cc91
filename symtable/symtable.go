// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symtable computes the lexical scope of every identifier
// in a syntax tree.
//
// The pass builds one raw block per module, function, class, lambda
// and comprehension, classifies each name of each block as local,
// global (explicit or implicit), free or cell, and returns the
// result as a tree of immutable SymbolTables.
//
// A name is local to the block that binds it, unless the block
// declares it global or nonlocal. A name used but not bound is
// free if an enclosing function binds it, and global otherwise.
// Class bodies are skipped when resolving the free names of the
// functions they contain. A function's local that a nested block
// needs becomes a cell.
//
// The first error found (see Error) aborts the pass.
package symtable // import "go.pyscope.net/symtable"

import (
	"fmt"
	"sort"

	"go.pyscope.net/syntax"
)

// DefaultMaxDepth is the default limit on statement and
// expression nesting.
const DefaultMaxDepth = 1000

// Options controls the pass. A nil *Options selects the defaults.
type Options struct {
	// InlineComprehensions selects the older scoping of comprehensions,
	// in which no block is created and the loop variables are bound
	// in the enclosing block.
	InlineComprehensions bool

	// MaxDepth limits statement and expression nesting.
	// Zero means DefaultMaxDepth.
	MaxDepth int

	// Warn, if non-nil, is called for constructs that are legal
	// but suspect, such as assignment before a global declaration.
	Warn func(pos syntax.Position, msg string)
}

// A SymbolTable describes the names of one block.
// Tables are immutable once returned and may be shared
// by concurrent readers.
type SymbolTable struct {
	Type   BlockType
	Name   string // "top" for the module, "lambda", "listcomp", etc
	Lineno int    // line of the block's first token; 0 for the module

	Unoptimized bool // namespace is a dictionary: module level, or wildcard import
	Nested      bool // some enclosing block is a function

	// Varnames lists the local slots of a function block:
	// parameters in declaration order, then other locals
	// in order of first binding.
	Varnames []string
	Symbols  Symbols

	// Children maps the name each def or class binds in this block
	// to its table. When a name is defined twice, the last wins.
	// Lambdas and comprehensions are reachable only through Blocks.
	Children map[string]*SymbolTable

	// Blocks lists every nested block in textual order.
	Blocks []*SymbolTable

	// NeedsClassClosure reports whether a method of this class
	// uses super or __class__.
	NeedsClassClosure bool
}

// Lookup returns the symbol for name.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	sym, ok := t.Symbols[name]
	return sym, ok
}

// Identifiers returns the names of the block in sorted order.
func (t *SymbolTable) Identifiers() []string {
	names := make([]string, 0, len(t.Symbols))
	for name := range t.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Child returns the table of the def or class bound to name, or nil.
func (t *SymbolTable) Child(name string) *SymbolTable {
	return t.Children[name]
}

// File computes the symbol table of a module.
func File(f *syntax.File, opts *Options) (*SymbolTable, error) {
	return Build(f, syntax.ModeExec, opts)
}

// Expr computes the symbol table of a single expression.
func Expr(e syntax.Expr, opts *Options) (*SymbolTable, error) {
	return Build(e, syntax.ModeEval, opts)
}

// REPLChunk computes the symbol table of one interactive statement.
func REPLChunk(f *syntax.File, opts *Options) (*SymbolTable, error) {
	return Build(f, syntax.ModeSingle, opts)
}

// Build computes the symbol table of n, which must be a *syntax.File
// for ModeExec and ModeSingle, and a syntax.Expr (or a file consisting
// of one expression statement) for ModeEval.
//
// Scoping errors are reported as an Error.
func Build(n syntax.Node, mode syntax.Mode, opts *Options) (*SymbolTable, error) {
	if opts == nil {
		opts = new(Options)
	}

	var root syntax.Node
	switch mode {
	case syntax.ModeExec, syntax.ModeSingle:
		f, ok := n.(*syntax.File)
		if !ok {
			return nil, fmt.Errorf("symtable: %s mode requires a *syntax.File, got %T", mode, n)
		}
		root = f
	case syntax.ModeEval:
		e, ok := soleExpr(n)
		if !ok {
			return nil, fmt.Errorf("symtable: eval mode requires an expression, got %T", n)
		}
		root = e
	default:
		return nil, fmt.Errorf("symtable: invalid mode %d", mode)
	}

	module, err := build(root, opts)
	if err != nil {
		return nil, err
	}
	if err := classify(module); err != nil {
		return nil, err
	}
	return assemble(module), nil
}

func soleExpr(n syntax.Node) (syntax.Expr, bool) {
	switch n := n.(type) {
	case syntax.Expr:
		return n, true
	case *syntax.File:
		if len(n.Stmts) == 1 {
			if stmt, ok := n.Stmts[0].(*syntax.ExprStmt); ok {
				return stmt.X, true
			}
		}
	}
	return nil, false
}

// assemble converts a classified block tree to SymbolTables.
func assemble(b *block) *SymbolTable {
	t := &SymbolTable{
		Type:              b.typ,
		Name:              b.name,
		Lineno:            int(b.pos.Line),
		Unoptimized:       b.starImport || b.typ == ModuleBlock,
		Nested:            b.nested,
		Varnames:          b.varnames(),
		Symbols:           make(Symbols, len(b.symbols)),
		Children:          make(map[string]*SymbolTable),
		NeedsClassClosure: b.needsClassClosure,
	}
	for name, flags := range b.symbols {
		t.Symbols[name] = Symbol{Flags: flags, Scope: b.scopes[name]}
	}
	for _, child := range b.children {
		ct := assemble(child)
		t.Blocks = append(t.Blocks, ct)
		if child.defName != "" {
			t.Children[child.defName] = ct
		}
	}
	return t
}
