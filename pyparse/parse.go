// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pyparse parses Python source into the syntax tree
// consumed by package symtable.
//
// Parsing is delegated to the tree-sitter Python grammar; this
// package converts the concrete tree into syntax nodes. Constructs
// that the scope pass does not model, such as assignment expressions
// and match statements, are reported as errors.
package pyparse // import "go.pyscope.net/pyparse"

import (
	"fmt"
	"strings"
	"sync"

	"fortio.org/safecast"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"go.pyscope.net/syntax"
)

var language = sitter.NewLanguage(tree_sitter_python.Language())

// Parsers are not safe for concurrent use, so each call borrows one.
var parsers = sync.Pool{
	New: func() any {
		p := sitter.NewParser()
		if err := p.SetLanguage(language); err != nil {
			panic(err)
		}
		return p
	},
}

// Parse parses src in the given mode. For ModeExec and ModeSingle
// the result is a *syntax.File; for ModeEval it is a syntax.Expr.
// Syntax errors are reported as a syntax.Error.
func Parse(filename string, src []byte, mode syntax.Mode) (_ syntax.Node, err error) {
	p := parsers.Get().(*sitter.Parser)
	defer func() {
		p.Reset()
		parsers.Put(p)
	}()

	tree := p.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s: parse failed", filename)
	}
	defer tree.Close()

	c := &converter{src: src, file: &filename}
	defer func() {
		switch e := recover().(type) {
		case nil:
		case syntax.Error:
			err = e
		default:
			panic(e)
		}
	}()

	root := tree.RootNode()
	if root.HasError() {
		c.syntaxError(root)
	}
	f := c.module(root)

	switch mode {
	case syntax.ModeExec, syntax.ModeSingle:
		return f, nil
	case syntax.ModeEval:
		if len(f.Stmts) == 1 {
			if stmt, ok := f.Stmts[0].(*syntax.ExprStmt); ok {
				return stmt.X, nil
			}
		}
		pos := syntax.MakePosition(&filename, 1, 1)
		if len(f.Stmts) > 0 {
			pos = syntax.Start(f.Stmts[0])
		}
		return nil, syntax.Error{Pos: pos, Msg: "expected a single expression"}
	}
	return nil, fmt.Errorf("pyparse: invalid mode %d", mode)
}

// ParseFile parses a module.
func ParseFile(filename string, src []byte) (*syntax.File, error) {
	n, err := Parse(filename, src, syntax.ModeExec)
	if err != nil {
		return nil, err
	}
	return n.(*syntax.File), nil
}

// ParseExpr parses a single expression.
func ParseExpr(filename string, src []byte) (syntax.Expr, error) {
	n, err := Parse(filename, src, syntax.ModeEval)
	if err != nil {
		return nil, err
	}
	return n.(syntax.Expr), nil
}

// A converter turns tree-sitter nodes into syntax nodes.
// Errors are reported by panicking with a syntax.Error.
type converter struct {
	src  []byte
	file *string
}

func (c *converter) pos(n *sitter.Node) syntax.Position {
	pt := n.StartPosition()
	line, err := safecast.Conv[int32](pt.Row + 1)
	if err != nil {
		line = 0
	}
	col, err := safecast.Conv[int32](pt.Column + 1)
	if err != nil {
		col = 0
	}
	return syntax.MakePosition(c.file, line, col)
}

func (c *converter) text(n *sitter.Node) string { return n.Utf8Text(c.src) }

func (c *converter) errorf(n *sitter.Node, format string, args ...interface{}) {
	panic(syntax.Error{Pos: c.pos(n), Msg: fmt.Sprintf(format, args...)})
}

// syntaxError reports the first erroneous node beneath n.
func (c *converter) syntaxError(n *sitter.Node) {
	bad := firstError(n)
	if bad == nil {
		bad = n
	}
	if bad.IsMissing() {
		c.errorf(bad, "invalid syntax: missing %s", bad.Kind())
	}
	c.errorf(bad, "invalid syntax")
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child.IsError() || child.IsMissing() || child.HasError() {
			if bad := firstError(child); bad != nil {
				return bad
			}
		}
	}
	return nil
}

// named returns the named children of n, skipping comments.
func named(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var kids []*sitter.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "comment", "line_continuation":
			continue
		}
		kids = append(kids, child)
	}
	return kids
}

// token returns the first anonymous child of n spelled tok, or nil.
func token(n *sitter.Node, tok string) *sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if !child.IsNamed() && child.Kind() == tok {
			return child
		}
	}
	return nil
}

// tokenPos returns the position of token tok within n,
// or the start of n if there is none.
func (c *converter) tokenPos(n *sitter.Node, tok string) syntax.Position {
	if t := token(n, tok); t != nil {
		return c.pos(t)
	}
	return c.pos(n)
}

// last returns the position of the final token of n.
func (c *converter) last(n *sitter.Node) syntax.Position {
	if count := n.ChildCount(); count > 0 {
		return c.pos(n.Child(count - 1))
	}
	return c.pos(n)
}

func (c *converter) field(n *sitter.Node, name string) *sitter.Node {
	child := n.ChildByFieldName(name)
	if child == nil {
		c.errorf(n, "invalid syntax: %s without %s", n.Kind(), name)
	}
	return child
}

func (c *converter) unsupported(n *sitter.Node) {
	c.errorf(n, "unsupported syntax: %s", strings.ReplaceAll(n.Kind(), "_", " "))
}

func (c *converter) ident(n *sitter.Node) *syntax.Ident {
	switch n.Kind() {
	case "identifier", "keyword_identifier":
		return &syntax.Ident{NamePos: c.pos(n), Name: c.text(n)}
	}
	c.errorf(n, "invalid syntax: got %s, want identifier", n.Kind())
	panic("unreachable")
}
