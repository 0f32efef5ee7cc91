// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pyparse

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"go.pyscope.net/syntax"
)

// exprs converts an expression or an unparenthesized
// expression list, which becomes a TupleExpr.
func (c *converter) exprs(n *sitter.Node) syntax.Expr {
	switch n.Kind() {
	case "expression_list", "pattern_list":
		tuple := &syntax.TupleExpr{}
		for _, kid := range named(n) {
			tuple.List = append(tuple.List, c.expr(kid))
		}
		return tuple
	}
	return c.expr(n)
}

// target converts an assignment target.
func (c *converter) target(n *sitter.Node) syntax.Expr {
	switch n.Kind() {
	case "identifier", "keyword_identifier":
		return c.ident(n)
	case "pattern_list", "expression_list":
		return &syntax.TupleExpr{List: c.targets(n)}
	case "tuple_pattern", "tuple":
		return &syntax.TupleExpr{Lparen: c.pos(n), List: c.targets(n), Rparen: c.last(n)}
	case "list_pattern", "list":
		return &syntax.ListExpr{Lbrack: c.pos(n), List: c.targets(n), Rbrack: c.last(n)}
	case "list_splat_pattern", "list_splat":
		return &syntax.UnaryExpr{OpPos: c.pos(n), Op: syntax.STAR, X: c.target(named(n)[0])}
	case "parenthesized_expression":
		return &syntax.ParenExpr{Lparen: c.pos(n), X: c.target(named(n)[0]), Rparen: c.last(n)}
	case "as_pattern_target":
		if kids := named(n); len(kids) == 1 {
			return c.target(kids[0])
		}
		return c.ident(n)
	}
	return c.expr(n)
}

func (c *converter) targets(n *sitter.Node) []syntax.Expr {
	var list []syntax.Expr
	for _, kid := range named(n) {
		list = append(list, c.target(kid))
	}
	return list
}

func (c *converter) elements(n *sitter.Node) []syntax.Expr {
	var list []syntax.Expr
	for _, kid := range named(n) {
		list = append(list, c.expr(kid))
	}
	return list
}

func (c *converter) expr(n *sitter.Node) syntax.Expr {
	switch n.Kind() {
	case "identifier", "keyword_identifier":
		return c.ident(n)

	case "integer":
		return c.literal(n, syntax.INT)
	case "float":
		return c.literal(n, syntax.FLOAT)
	case "true":
		return c.literal(n, syntax.TRUE)
	case "false":
		return c.literal(n, syntax.FALSE)
	case "none":
		return c.literal(n, syntax.NONE)
	case "ellipsis":
		return c.literal(n, syntax.ELLIPSIS)

	case "string", "concatenated_string":
		return c.str(n)

	case "parenthesized_expression":
		return &syntax.ParenExpr{Lparen: c.pos(n), X: c.exprs(named(n)[0]), Rparen: c.last(n)}

	case "tuple":
		return &syntax.TupleExpr{Lparen: c.pos(n), List: c.elements(n), Rparen: c.last(n)}

	case "expression_list", "pattern_list":
		return c.exprs(n)

	case "list":
		return &syntax.ListExpr{Lbrack: c.pos(n), List: c.elements(n), Rbrack: c.last(n)}

	case "set":
		return &syntax.SetExpr{Lbrace: c.pos(n), List: c.elements(n), Rbrace: c.last(n)}

	case "dictionary":
		return &syntax.DictExpr{Lbrace: c.pos(n), List: c.elements(n), Rbrace: c.last(n)}

	case "pair":
		return &syntax.DictEntry{
			Key:   c.expr(c.field(n, "key")),
			Colon: c.tokenPos(n, ":"),
			Value: c.expr(c.field(n, "value")),
		}

	case "list_splat":
		return &syntax.UnaryExpr{OpPos: c.pos(n), Op: syntax.STAR, X: c.expr(named(n)[0])}

	case "dictionary_splat":
		return &syntax.UnaryExpr{OpPos: c.pos(n), Op: syntax.STARSTAR, X: c.expr(named(n)[0])}

	case "parenthesized_list_splat":
		return &syntax.ParenExpr{Lparen: c.pos(n), X: c.expr(named(n)[0]), Rparen: c.last(n)}

	case "attribute":
		name := c.field(n, "attribute")
		return &syntax.DotExpr{
			X:       c.expr(c.field(n, "object")),
			Dot:     c.tokenPos(n, "."),
			NamePos: c.pos(name),
			Name:    c.ident(name),
		}

	case "subscript":
		return c.subscript(n)

	case "call":
		call := &syntax.CallExpr{Fn: c.expr(c.field(n, "function"))}
		args := c.field(n, "arguments")
		call.Lparen = c.pos(args)
		call.Rparen = c.last(args)
		if args.Kind() == "generator_expression" {
			call.Args = []syntax.Expr{c.expr(args)}
		} else {
			call.Args = c.arguments(args)
		}
		return call

	case "binary_operator", "boolean_operator":
		op := c.field(n, "operator")
		return &syntax.BinaryExpr{
			X:     c.expr(c.field(n, "left")),
			OpPos: c.pos(op),
			Op:    c.operator(op),
			Y:     c.expr(c.field(n, "right")),
		}

	case "comparison_operator":
		return c.comparison(n)

	case "not_operator":
		return &syntax.UnaryExpr{OpPos: c.pos(n), Op: syntax.NOT, X: c.expr(c.field(n, "argument"))}

	case "unary_operator":
		op := c.field(n, "operator")
		return &syntax.UnaryExpr{OpPos: c.pos(op), Op: c.operator(op), X: c.expr(c.field(n, "argument"))}

	case "await":
		return &syntax.UnaryExpr{OpPos: c.pos(n), Op: syntax.AWAIT, X: c.expr(named(n)[0])}

	case "conditional_expression":
		kids := named(n)
		if len(kids) != 3 {
			c.errorf(n, "invalid syntax")
		}
		return &syntax.CondExpr{
			If:      c.tokenPos(n, "if"),
			Cond:    c.expr(kids[1]),
			True:    c.expr(kids[0]),
			ElsePos: c.tokenPos(n, "else"),
			False:   c.expr(kids[2]),
		}

	case "lambda":
		lambda := c.pos(n)
		body := c.field(n, "body")
		return &syntax.LambdaExpr{
			Lambda: lambda,
			Function: syntax.Function{
				StartPos: lambda,
				Params:   c.params(n.ChildByFieldName("parameters")),
				Body:     []syntax.Stmt{&syntax.ReturnStmt{Return: c.pos(body), Result: c.expr(body)}},
			},
		}

	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		return c.comprehension(n)

	case "yield":
		y := &syntax.YieldExpr{Yield: c.pos(n), From: token(n, "from") != nil}
		if kids := named(n); len(kids) > 0 {
			y.X = c.exprs(kids[0])
		}
		return y

	case "type":
		return c.typeExpr(n)
	}

	c.unsupported(n)
	panic("unreachable")
}

func (c *converter) literal(n *sitter.Node, tok syntax.Token) *syntax.Literal {
	return &syntax.Literal{Token: tok, TokenPos: c.pos(n), Raw: c.text(n)}
}

func (c *converter) operator(n *sitter.Node) syntax.Token {
	tok := syntax.LookupOperator(n.Kind())
	if tok == syntax.ILLEGAL {
		c.errorf(n, "invalid syntax: unknown operator %s", n.Kind())
	}
	return tok
}

// comparison converts a chain of comparisons, a < b < c,
// into left-nested BinaryExprs.
func (c *converter) comparison(n *sitter.Node) syntax.Expr {
	var x syntax.Expr
	var op *sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch {
		case !child.IsNamed():
			op = child
		case child.Kind() == "comment":
		case x == nil:
			x = c.expr(child)
		default:
			x = &syntax.BinaryExpr{X: x, OpPos: c.pos(op), Op: c.operator(op), Y: c.expr(child)}
		}
	}
	return x
}

// arguments converts an argument_list. Keyword arguments
// become BinaryExprs with Op EQ.
func (c *converter) arguments(n *sitter.Node) []syntax.Expr {
	var args []syntax.Expr
	for _, kid := range named(n) {
		if kid.Kind() == "keyword_argument" {
			args = append(args, &syntax.BinaryExpr{
				X:     c.ident(c.field(kid, "name")),
				OpPos: c.tokenPos(kid, "="),
				Op:    syntax.EQ,
				Y:     c.expr(c.field(kid, "value")),
			})
			continue
		}
		args = append(args, c.expr(kid))
	}
	return args
}

func (c *converter) subscript(n *sitter.Node) syntax.Expr {
	value := c.expr(c.field(n, "value"))
	lbrack, rbrack := c.tokenPos(n, "["), c.last(n)

	cursor := n.Walk()
	defer cursor.Close()
	subs := n.ChildrenByFieldName("subscript", cursor)
	if len(subs) == 1 && token(n, ",") == nil {
		if subs[0].Kind() == "slice" {
			return c.slice(value, lbrack, rbrack, &subs[0])
		}
		return &syntax.IndexExpr{X: value, Lbrack: lbrack, Y: c.expr(&subs[0]), Rbrack: rbrack}
	}
	tuple := &syntax.TupleExpr{}
	for i := range subs {
		if subs[i].Kind() == "slice" {
			tuple.List = append(tuple.List, c.slice(nil, c.pos(&subs[i]), c.last(&subs[i]), &subs[i]))
		} else {
			tuple.List = append(tuple.List, c.expr(&subs[i]))
		}
	}
	return &syntax.IndexExpr{X: value, Lbrack: lbrack, Y: tuple, Rbrack: rbrack}
}

// slice converts lo:hi:step; the grammar labels none of its parts,
// so they are told apart by the colons that precede them.
func (c *converter) slice(x syntax.Expr, lbrack, rbrack syntax.Position, n *sitter.Node) *syntax.SliceExpr {
	var parts [3]syntax.Expr
	i := 0
	for j := uint(0); j < n.ChildCount(); j++ {
		child := n.Child(j)
		switch {
		case !child.IsNamed():
			if child.Kind() == ":" && i < 2 {
				i++
			}
		case child.Kind() == "comment":
		default:
			parts[i] = c.expr(child)
		}
	}
	return &syntax.SliceExpr{X: x, Lbrack: lbrack, Lo: parts[0], Hi: parts[1], Step: parts[2], Rbrack: rbrack}
}

func (c *converter) comprehension(n *sitter.Node) *syntax.Comprehension {
	comp := &syntax.Comprehension{
		Curly:  n.Kind() == "set_comprehension" || n.Kind() == "dictionary_comprehension",
		Paren:  n.Kind() == "generator_expression",
		Lbrack: c.pos(n),
		Body:   c.expr(c.field(n, "body")),
		Rbrack: c.last(n),
	}
	for _, kid := range named(n)[1:] {
		switch kid.Kind() {
		case "for_in_clause":
			comp.Clauses = append(comp.Clauses, c.forClause(kid))
		case "if_clause":
			comp.Clauses = append(comp.Clauses, &syntax.IfClause{If: c.pos(kid), Cond: c.expr(named(kid)[0])})
		default:
			c.unsupported(kid)
		}
	}
	if len(comp.Clauses) == 0 {
		c.errorf(n, "invalid syntax: comprehension without for clause")
	}
	return comp
}

func (c *converter) forClause(n *sitter.Node) *syntax.ForClause {
	clause := &syntax.ForClause{
		For:   c.tokenPos(n, "for"),
		Async: token(n, "async") != nil,
		Vars:  c.target(c.field(n, "left")),
		In:    c.tokenPos(n, "in"),
	}
	cursor := n.Walk()
	defer cursor.Close()
	rights := n.ChildrenByFieldName("right", cursor)
	switch len(rights) {
	case 0:
		c.errorf(n, "invalid syntax: for clause without iterable")
	case 1:
		clause.X = c.exprs(&rights[0])
	default:
		tuple := &syntax.TupleExpr{}
		for i := range rights {
			tuple.List = append(tuple.List, c.expr(&rights[i]))
		}
		clause.X = tuple
	}
	return clause
}

// str converts a string literal, or a formatted string whose
// interpolated expressions become FStringExpr values.
func (c *converter) str(n *sitter.Node) syntax.Expr {
	var values []syntax.Expr
	c.interpolations(n, &values)
	raw := c.text(n)
	if values != nil {
		return &syntax.FStringExpr{StartPos: c.pos(n), Raw: raw, Values: values}
	}
	tok := syntax.STRING
	if prefix := strings.ToLower(raw[:strings.IndexAny(raw, `"'`)+1]); strings.Contains(prefix, "b") {
		tok = syntax.BYTES
	}
	return c.literal(n, tok)
}

func (c *converter) interpolations(n *sitter.Node, values *[]syntax.Expr) {
	for _, kid := range named(n) {
		switch kid.Kind() {
		case "interpolation", "format_expression":
			// A format specifier may nest replacement fields,
			// which the grammar names format_expression.
			*values = append(*values, c.exprs(c.field(kid, "expression")))
			for _, spec := range named(kid) {
				if spec.Kind() == "format_specifier" {
					c.interpolations(spec, values)
				}
			}
		case "string", "format_specifier":
			c.interpolations(kid, values)
		}
	}
}

// typeExpr converts an annotation. Type-only forms such as
// generic and union types become tuples of their operands.
func (c *converter) typeExpr(n *sitter.Node) syntax.Expr {
	switch n.Kind() {
	case "type":
		if kids := named(n); len(kids) == 1 {
			return c.typeExpr(kids[0])
		}
		return c.typeTuple(n)
	case "generic_type", "union_type", "constrained_type", "type_parameter":
		return c.typeTuple(n)
	case "member_type":
		kids := named(n)
		name := kids[len(kids)-1]
		return &syntax.DotExpr{
			X:       c.typeExpr(kids[0]),
			Dot:     c.tokenPos(n, "."),
			NamePos: c.pos(name),
			Name:    c.ident(name),
		}
	case "splat_type":
		return c.ident(named(n)[0])
	}
	return c.expr(n)
}

func (c *converter) typeTuple(n *sitter.Node) syntax.Expr {
	tuple := &syntax.TupleExpr{}
	for _, kid := range named(n) {
		tuple.List = append(tuple.List, c.typeExpr(kid))
	}
	if len(tuple.List) == 0 {
		c.errorf(n, "invalid syntax: empty type")
	}
	return tuple
}
