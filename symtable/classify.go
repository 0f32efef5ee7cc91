// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable

// This file defines the scope classifier.
//
// Classification is a single recursive sweep over the block tree.
// Each block first classifies its own names from its flags and the
// sets of names bound by enclosing functions and known to be global.
// It then analyzes its children, which report back the names they
// need from enclosing blocks. A function block turns its own locals
// among those names into cells; the remaining names propagate upward.
// Because children are finalized before the parent's cells are
// computed, no further iteration is needed.

import "sort"

type nameSet map[string]bool

func (s nameSet) copy() nameSet {
	t := make(nameSet, len(s))
	for name := range s {
		t[name] = true
	}
	return t
}

func (s nameSet) update(t nameSet) {
	for name := range t {
		s[name] = true
	}
}

func (s nameSet) sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// classify computes the scope of every name in the module tree.
func classify(module *block) error {
	return analyzeBlock(module, nil, make(nameSet), make(nameSet))
}

// analyzeBlock classifies the names of b and its children.
//
// bound holds the names bound in enclosing function blocks;
// it is nil for the module block. global holds the names known
// to be global. On return, free holds the names that b or its
// children need from an enclosing function.
// The callee may modify bound and global.
func analyzeBlock(b *block, bound, free, global nameSet) error {
	b.scopes = make(map[string]Scope, len(b.names))
	local := make(nameSet)
	newBound := make(nameSet)
	newFree := make(nameSet)
	newGlobal := make(nameSet)

	// A class body does not contribute its bindings to nested
	// blocks, so they see only what encloses the class.
	if b.typ == ClassBlock {
		newGlobal.update(global)
		if bound != nil {
			newBound.update(bound)
		}
	}

	for _, name := range b.names {
		if err := b.analyzeName(name, bound, local, free, global); err != nil {
			return err
		}
	}

	if b.typ != ClassBlock {
		if b.typ == FunctionBlock {
			newBound.update(local)
		}
		if bound != nil {
			newBound.update(bound)
		}
		newGlobal.update(global)
	} else {
		newBound["__class__"] = true
	}

	allFree := make(nameSet)
	for _, child := range b.children {
		childFree := newFree.copy()
		if err := analyzeBlock(child, newBound.copy(), childFree, newGlobal.copy()); err != nil {
			return err
		}
		allFree.update(childFree)
	}
	newFree.update(allFree)

	switch b.typ {
	case FunctionBlock:
		b.analyzeCells(newFree)
	case ClassBlock:
		if newFree["__class__"] {
			delete(newFree, "__class__")
			b.needsClassClosure = true
		}
	}

	b.updateSymbols(bound, newFree)
	free.update(newFree)
	return nil
}

// analyzeName decides the scope of one name from its own flags.
func (b *block) analyzeName(name string, bound, local, free, global nameSet) error {
	flags := b.symbols[name]
	pos := b.directives[name]
	switch {
	case flags&DefGlobal != 0:
		b.scopes[name] = ScopeGlobalExplicit
		global[name] = true
		if bound != nil {
			delete(bound, name)
		}

	case flags&DefNonlocal != 0:
		// Conflicting declarations were rejected while building;
		// only the binding search remains.
		if !bound[name] {
			return noBindingForNonlocal(pos, name)
		}
		b.scopes[name] = ScopeFree
		free[name] = true

	case flags&defBound != 0:
		b.scopes[name] = ScopeLocal
		local[name] = true
		delete(global, name)

	case bound != nil && bound[name]:
		b.scopes[name] = ScopeFree
		free[name] = true
		if b.typ == ClassBlock {
			b.symbols[name] = flags | DefFreeClass
		}

	default:
		b.scopes[name] = ScopeGlobalImplicit
	}
	return nil
}

// analyzeCells converts the locals of a function that are needed
// free by some nested block into cells. Cells are satisfied here
// and do not propagate further.
func (b *block) analyzeCells(free nameSet) {
	for name, scope := range b.scopes {
		if scope == ScopeLocal && free[name] {
			b.scopes[name] = ScopeCell
			delete(free, name)
		}
	}
}

// updateSymbols records the free names of nested blocks in b.
// A name b does not mention but must pass through to a nested
// block becomes a free symbol of b, unless it is global.
func (b *block) updateSymbols(bound, free nameSet) {
	for _, name := range free.sorted() {
		if flags, ok := b.symbols[name]; ok {
			// A method needs a name that its class body also mentions.
			if b.typ == ClassBlock {
				b.symbols[name] = flags | DefFreeClass
			}
			continue
		}
		if bound != nil && !bound[name] {
			continue
		}
		b.names = append(b.names, name)
		b.symbols[name] = DefFree
		b.scopes[name] = ScopeFree
	}
}
