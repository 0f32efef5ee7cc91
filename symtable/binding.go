// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable

import "strings"

// This file defines the per-identifier data recorded in a SymbolTable.

// Flags records how a name is defined and used within one block.
type Flags uint16

const (
	DefGlobal    Flags = 1 << iota // global statement
	DefLocal                       // assignment in code block
	DefParam                       // formal parameter
	DefNonlocal                    // nonlocal statement
	DefUse                         // name is used
	DefFree                        // name used but not defined in nested block
	DefFreeClass                   // free variable from class's method
	DefImport                      // assignment occurred via import

	defBound = DefLocal | DefParam | DefImport
)

var flagNames = [...]struct {
	flag Flags
	name string
}{
	{DefGlobal, "global"},
	{DefLocal, "local"},
	{DefParam, "param"},
	{DefNonlocal, "nonlocal"},
	{DefUse, "use"},
	{DefFree, "free"},
	{DefFreeClass, "free_class"},
	{DefImport, "import"},
}

// Has reports whether all the flags in mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// String returns the names of the set flags joined by "|", or "0".
func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	if names == nil {
		return "0"
	}
	return strings.Join(names, "|")
}

// ParseFlags is the inverse of Flags.String.
func ParseFlags(s string) (Flags, bool) {
	if s == "0" {
		return 0, true
	}
	var f Flags
outer:
	for _, name := range strings.Split(s, "|") {
		for _, fn := range flagNames {
			if fn.name == name {
				f |= fn.flag
				continue outer
			}
		}
		return 0, false
	}
	return f, true
}

// The Scope of a Symbol indicates where the name's value lives at run time.
type Scope uint8

const (
	ScopeUnknown        Scope = iota // not yet classified
	ScopeLocal                       // name is local to its block
	ScopeGlobalExplicit              // name is declared global
	ScopeGlobalImplicit              // name is global because nothing binds it
	ScopeFree                        // name is a cell of some enclosing function
	ScopeCell                        // name is local but shared with a nested block
)

var scopeNames = [...]string{
	ScopeUnknown:        "unknown",
	ScopeLocal:          "local",
	ScopeGlobalExplicit: "global_explicit",
	ScopeGlobalImplicit: "global_implicit",
	ScopeFree:           "free",
	ScopeCell:           "cell",
}

func (scope Scope) String() string { return scopeNames[scope] }

// ParseScope is the inverse of Scope.String.
func ParseScope(s string) (Scope, bool) {
	for scope, name := range scopeNames {
		if name == s {
			return Scope(scope), true
		}
	}
	return ScopeUnknown, false
}

// A Symbol is the classification of one name within one block.
type Symbol struct {
	Flags Flags
	Scope Scope
}

// Symbols maps each name of a block to its Symbol.
type Symbols map[string]Symbol

// A BlockType distinguishes modules, functions and classes.
// Lambdas and comprehensions are function blocks.
type BlockType uint8

const (
	ModuleBlock BlockType = iota
	FunctionBlock
	ClassBlock
)

var blockTypeNames = [...]string{
	ModuleBlock:   "module",
	FunctionBlock: "function",
	ClassBlock:    "class",
}

func (t BlockType) String() string { return blockTypeNames[t] }

// ParseBlockType is the inverse of BlockType.String.
func ParseBlockType(s string) (BlockType, bool) {
	for t, name := range blockTypeNames {
		if name == s {
			return BlockType(t), true
		}
	}
	return 0, false
}
