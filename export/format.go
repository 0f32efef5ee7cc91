// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	asciitree "github.com/thediveo/go-asciitree"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"go.pyscope.net/symtable"
)

// A Format selects an output encoding.
// It implements pflag.Value so that it may be used as a flag.
type Format uint8

const (
	Tree Format = iota
	JSON
	YAML
	Msgpack
	Prototext
	Protojson
)

var formatNames = [...]string{
	Tree:      "tree",
	JSON:      "json",
	YAML:      "yaml",
	Msgpack:   "msgpack",
	Prototext: "prototext",
	Protojson: "protojson",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", f)
}

// ParseFormat returns the format with the given name.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if name == s {
			return Format(f), nil
		}
	}
	return 0, fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(formatNames[:], ", "))
}

func (f *Format) Set(s string) error {
	g, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = g
	return nil
}

func (f *Format) Type() string { return "format" }

// Binary reports whether the format is not text.
func (f Format) Binary() bool { return f == Msgpack }

// Write writes t to w in the given format.
func Write(w io.Writer, t *symtable.SymbolTable, format Format) error {
	if format == Tree {
		_, err := fmt.Fprint(w, asciitree.RenderFancy(treeOf(t, "")))
		return err
	}

	doc := NewDocument(t)
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)

	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()

	case Msgpack:
		return msgpack.NewEncoder(w).Encode(doc)

	case Prototext, Protojson:
		s, err := structpb.NewStruct(doc.value())
		if err != nil {
			return err
		}
		var data []byte
		if format == Prototext {
			data, err = prototext.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
		} else {
			data, err = protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
		}
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unsupported format %s", format)
}

// ReadMsgpack decodes a Document written by Write in Msgpack format.
func ReadMsgpack(r io.Reader) (*Document, error) {
	doc := new(Document)
	if err := msgpack.NewDecoder(r).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

type treeNode struct {
	Label    string     `asciitree:"label"`
	Props    []string   `asciitree:"properties"`
	Children []treeNode `asciitree:"children"`
}

// treeOf converts t to a tree whose properties are the
// table's attributes and symbols, and whose children are its blocks.
func treeOf(t *symtable.SymbolTable, binds string) treeNode {
	label := fmt.Sprintf("%s %s", t.Type, t.Name)
	if t.Type != symtable.ModuleBlock {
		label += fmt.Sprintf(" (line %d)", t.Lineno)
	}
	if binds != "" && binds != t.Name {
		label += " as " + binds
	}

	var props []string
	for _, attr := range []struct {
		name string
		on   bool
	}{
		{"unoptimized", t.Unoptimized},
		{"nested", t.Nested},
		{"needs class closure", t.NeedsClassClosure},
	} {
		if attr.on {
			props = append(props, attr.name)
		}
	}
	if len(t.Varnames) > 0 {
		props = append(props, "varnames: "+strings.Join(t.Varnames, ", "))
	}
	for _, name := range t.Identifiers() {
		sym := t.Symbols[name]
		props = append(props, fmt.Sprintf("%s: %s [%s]", name, sym.Scope, sym.Flags))
	}

	binders := make(map[*symtable.SymbolTable]string, len(t.Children))
	for name, child := range t.Children {
		binders[child] = name
	}
	var children []treeNode
	for _, child := range t.Blocks {
		children = append(children, treeOf(child, binders[child]))
	}
	return treeNode{Label: label, Props: props, Children: children}
}
