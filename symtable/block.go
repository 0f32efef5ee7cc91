// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable

import "go.pyscope.net/syntax"

// A block is the mutable record of one lexical block,
// populated by the builder and then classified in place.
// Blocks own their children; there are no parent pointers.
type block struct {
	typ     BlockType
	name    string
	pos     syntax.Position // first token of the block's defining construct
	defName string          // name bound in the enclosing block; "" for lambdas and comprehensions
	nested  bool            // some enclosing block is a function

	symbols    map[string]Flags
	names      []string // in order of first occurrence
	bindOrder  []string // in order of first binding
	params     []string // in declaration order
	directives map[string]syntax.Position // first global or nonlocal declaration of each name
	starImport bool

	children []*block

	// Results of classification.
	scopes            map[string]Scope
	needsClassClosure bool
}

func newBlock(typ BlockType, name, defName string, pos syntax.Position) *block {
	return &block{
		typ:        typ,
		name:       name,
		pos:        pos,
		defName:    defName,
		symbols:    make(map[string]Flags),
		directives: make(map[string]syntax.Position),
	}
}

// add records flag for name, maintaining the occurrence orders.
func (b *block) add(name string, flag Flags) {
	old, ok := b.symbols[name]
	if !ok {
		b.names = append(b.names, name)
	}
	if old&defBound == 0 && flag&defBound != 0 {
		b.bindOrder = append(b.bindOrder, name)
	}
	b.symbols[name] = old | flag
}

// declare records the position of a global or nonlocal declaration.
func (b *block) declare(name string, pos syntax.Position) {
	if _, ok := b.directives[name]; !ok {
		b.directives[name] = pos
	}
}

// varnames returns the parameters followed by the other
// local names in binding order. Only function blocks have
// local slots; module and class namespaces are dictionaries.
func (b *block) varnames() []string {
	varnames := []string{}
	if b.typ != FunctionBlock {
		return varnames
	}
	varnames = append(varnames, b.params...)
	for _, name := range b.bindOrder {
		if b.symbols[name]&DefParam == 0 && b.scopes[name] == ScopeLocal {
			varnames = append(varnames, name)
		}
	}
	return varnames
}
