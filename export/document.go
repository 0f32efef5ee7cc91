// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package export renders symbol tables in machine- and human-readable
// forms.
//
// Every format except the tree is produced from a Document, a plain
// mirror of a SymbolTable whose maps have been flattened into sorted
// lists so that output is deterministic.
package export // import "go.pyscope.net/export"

import (
	"fmt"

	"go.pyscope.net/symtable"
)

// A Document is the serializable form of a SymbolTable.
type Document struct {
	Type              string      `json:"type" yaml:"type" msgpack:"type"`
	Name              string      `json:"name" yaml:"name" msgpack:"name"`
	Binds             string      `json:"binds,omitempty" yaml:"binds,omitempty" msgpack:"binds,omitempty"` // key in the parent's Children
	Lineno            int         `json:"lineno" yaml:"lineno" msgpack:"lineno"`
	Unoptimized       bool        `json:"unoptimized,omitempty" yaml:"unoptimized,omitempty" msgpack:"unoptimized,omitempty"`
	Nested            bool        `json:"nested,omitempty" yaml:"nested,omitempty" msgpack:"nested,omitempty"`
	NeedsClassClosure bool        `json:"needs_class_closure,omitempty" yaml:"needs_class_closure,omitempty" msgpack:"needs_class_closure,omitempty"`
	Varnames          []string    `json:"varnames,omitempty" yaml:"varnames,omitempty" msgpack:"varnames,omitempty"`
	Symbols           []SymbolDoc `json:"symbols,omitempty" yaml:"symbols,omitempty" msgpack:"symbols,omitempty"`
	Blocks            []*Document `json:"blocks,omitempty" yaml:"blocks,omitempty" msgpack:"blocks,omitempty"`
}

// A SymbolDoc is the serializable form of one Symbol.
type SymbolDoc struct {
	Name  string `json:"name" yaml:"name" msgpack:"name"`
	Flags string `json:"flags" yaml:"flags" msgpack:"flags"`
	Scope string `json:"scope" yaml:"scope" msgpack:"scope"`
}

// NewDocument returns the Document for t.
func NewDocument(t *symtable.SymbolTable) *Document {
	return newDocument(t, "")
}

func newDocument(t *symtable.SymbolTable, binds string) *Document {
	doc := &Document{
		Type:              t.Type.String(),
		Name:              t.Name,
		Binds:             binds,
		Lineno:            t.Lineno,
		Unoptimized:       t.Unoptimized,
		Nested:            t.Nested,
		NeedsClassClosure: t.NeedsClassClosure,
		Varnames:          t.Varnames,
	}
	for _, name := range t.Identifiers() {
		sym := t.Symbols[name]
		doc.Symbols = append(doc.Symbols, SymbolDoc{
			Name:  name,
			Flags: sym.Flags.String(),
			Scope: sym.Scope.String(),
		})
	}

	// Invert Children so each block can record the name it binds.
	binders := make(map[*symtable.SymbolTable]string, len(t.Children))
	for name, child := range t.Children {
		binders[child] = name
	}
	for _, child := range t.Blocks {
		doc.Blocks = append(doc.Blocks, newDocument(child, binders[child]))
	}
	return doc
}

// Table reconstructs the SymbolTable described by doc.
func (doc *Document) Table() (*symtable.SymbolTable, error) {
	typ, ok := symtable.ParseBlockType(doc.Type)
	if !ok {
		return nil, fmt.Errorf("block %s: invalid type %q", doc.Name, doc.Type)
	}
	t := &symtable.SymbolTable{
		Type:              typ,
		Name:              doc.Name,
		Lineno:            doc.Lineno,
		Unoptimized:       doc.Unoptimized,
		Nested:            doc.Nested,
		NeedsClassClosure: doc.NeedsClassClosure,
		Varnames:          doc.Varnames,
		Symbols:           make(symtable.Symbols, len(doc.Symbols)),
		Children:          make(map[string]*symtable.SymbolTable),
	}
	if typ == symtable.FunctionBlock && t.Varnames == nil {
		t.Varnames = []string{}
	}
	for _, sd := range doc.Symbols {
		flags, ok := symtable.ParseFlags(sd.Flags)
		if !ok {
			return nil, fmt.Errorf("block %s: symbol %s: invalid flags %q", doc.Name, sd.Name, sd.Flags)
		}
		scope, ok := symtable.ParseScope(sd.Scope)
		if !ok {
			return nil, fmt.Errorf("block %s: symbol %s: invalid scope %q", doc.Name, sd.Name, sd.Scope)
		}
		t.Symbols[sd.Name] = symtable.Symbol{Flags: flags, Scope: scope}
	}
	for _, cd := range doc.Blocks {
		child, err := cd.Table()
		if err != nil {
			return nil, err
		}
		t.Blocks = append(t.Blocks, child)
		if cd.Binds != "" {
			t.Children[cd.Binds] = child
		}
	}
	return t, nil
}

// value returns doc as a tree of maps, slices and scalars,
// the form accepted by structpb.
func (doc *Document) value() map[string]interface{} {
	m := map[string]interface{}{
		"type":   doc.Type,
		"name":   doc.Name,
		"lineno": doc.Lineno,
	}
	if doc.Binds != "" {
		m["binds"] = doc.Binds
	}
	for _, b := range []struct {
		key string
		val bool
	}{
		{"unoptimized", doc.Unoptimized},
		{"nested", doc.Nested},
		{"needs_class_closure", doc.NeedsClassClosure},
	} {
		if b.val {
			m[b.key] = true
		}
	}
	if len(doc.Varnames) > 0 {
		varnames := make([]interface{}, len(doc.Varnames))
		for i, name := range doc.Varnames {
			varnames[i] = name
		}
		m["varnames"] = varnames
	}
	if len(doc.Symbols) > 0 {
		symbols := make([]interface{}, len(doc.Symbols))
		for i, sd := range doc.Symbols {
			symbols[i] = map[string]interface{}{
				"name":  sd.Name,
				"flags": sd.Flags,
				"scope": sd.Scope,
			}
		}
		m["symbols"] = symbols
	}
	if len(doc.Blocks) > 0 {
		blocks := make([]interface{}, len(doc.Blocks))
		for i, cd := range doc.Blocks {
			blocks[i] = cd.value()
		}
		m["blocks"] = blocks
	}
	return m
}

// Count returns the number of blocks and symbols in the tree rooted at doc.
func (doc *Document) Count() (blocks, symbols int) {
	blocks, symbols = 1, len(doc.Symbols)
	for _, cd := range doc.Blocks {
		b, s := cd.Count()
		blocks += b
		symbols += s
	}
	return blocks, symbols
}
