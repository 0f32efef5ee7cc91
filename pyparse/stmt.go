// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pyparse

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"go.pyscope.net/syntax"
)

func (c *converter) module(n *sitter.Node) *syntax.File {
	return &syntax.File{Path: *c.file, Stmts: c.stmts(n)}
}

// stmts converts the statements of a module or block.
func (c *converter) stmts(n *sitter.Node) []syntax.Stmt {
	var stmts []syntax.Stmt
	for _, child := range named(n) {
		stmts = append(stmts, c.stmt(child))
	}
	return stmts
}

// body converts the block in field name of n; a missing
// optional clause yields nil.
func (c *converter) body(n *sitter.Node, name string) []syntax.Stmt {
	if block := n.ChildByFieldName(name); block != nil {
		return c.stmts(block)
	}
	return nil
}

// clauseBody converts the block of a clause such as else_clause,
// whether or not the grammar labels it with a field.
func (c *converter) clauseBody(n *sitter.Node) []syntax.Stmt {
	if block := n.ChildByFieldName("body"); block != nil {
		return c.stmts(block)
	}
	for _, child := range named(n) {
		if child.Kind() == "block" {
			return c.stmts(child)
		}
	}
	return nil
}

func (c *converter) stmt(n *sitter.Node) syntax.Stmt {
	switch n.Kind() {
	case "expression_statement":
		kids := named(n)
		if len(kids) == 1 {
			switch kids[0].Kind() {
			case "assignment":
				return c.assignment(kids[0])
			case "augmented_assignment":
				return c.augmentedAssignment(kids[0])
			}
			return &syntax.ExprStmt{X: c.expr(kids[0])}
		}
		tuple := &syntax.TupleExpr{}
		for _, kid := range kids {
			tuple.List = append(tuple.List, c.expr(kid))
		}
		return &syntax.ExprStmt{X: tuple}

	case "pass_statement":
		return &syntax.BranchStmt{Token: syntax.PASS, TokenPos: c.pos(n)}
	case "break_statement":
		return &syntax.BranchStmt{Token: syntax.BREAK, TokenPos: c.pos(n)}
	case "continue_statement":
		return &syntax.BranchStmt{Token: syntax.CONTINUE, TokenPos: c.pos(n)}

	case "return_statement":
		stmt := &syntax.ReturnStmt{Return: c.pos(n)}
		if kids := named(n); len(kids) > 0 {
			stmt.Result = c.exprs(kids[0])
		}
		return stmt

	case "delete_statement":
		stmt := &syntax.DelStmt{Del: c.pos(n)}
		for _, kid := range named(n) {
			if kid.Kind() == "expression_list" {
				for _, elem := range named(kid) {
					stmt.Targets = append(stmt.Targets, c.target(elem))
				}
			} else {
				stmt.Targets = append(stmt.Targets, c.target(kid))
			}
		}
		return stmt

	case "raise_statement":
		stmt := &syntax.RaiseStmt{Raise: c.pos(n)}
		afterFrom := false
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			switch {
			case !child.IsNamed():
				if child.Kind() == "from" {
					afterFrom = true
				}
			case child.Kind() == "comment":
			case afterFrom:
				stmt.Cause = c.expr(child)
			default:
				stmt.X = c.exprs(child)
			}
		}
		return stmt

	case "assert_statement":
		kids := named(n)
		stmt := &syntax.AssertStmt{Assert: c.pos(n), Cond: c.expr(kids[0])}
		if len(kids) > 1 {
			stmt.Msg = c.expr(kids[1])
		}
		return stmt

	case "global_statement":
		stmt := &syntax.GlobalStmt{Global: c.pos(n)}
		for _, kid := range named(n) {
			stmt.Names = append(stmt.Names, c.ident(kid))
		}
		return stmt

	case "nonlocal_statement":
		stmt := &syntax.NonlocalStmt{Nonlocal: c.pos(n)}
		for _, kid := range named(n) {
			stmt.Names = append(stmt.Names, c.ident(kid))
		}
		return stmt

	case "import_statement":
		stmt := &syntax.ImportStmt{Import: c.pos(n)}
		for _, kid := range named(n) {
			stmt.Names = append(stmt.Names, c.importName(kid))
		}
		return stmt

	case "future_import_statement":
		stmt := &syntax.ImportStmt{Import: c.pos(n), From: true, Module: "__future__"}
		for _, kid := range named(n) {
			stmt.Names = append(stmt.Names, c.importName(kid))
		}
		return stmt

	case "import_from_statement":
		module := c.field(n, "module_name")
		stmt := &syntax.ImportStmt{Import: c.pos(n), From: true, Module: c.text(module)}
		for _, kid := range named(n)[1:] {
			stmt.Names = append(stmt.Names, c.importName(kid))
		}
		return stmt

	case "if_statement":
		return c.ifStmt(n)

	case "for_statement":
		stmt := &syntax.ForStmt{
			For:   c.tokenPos(n, "for"),
			Async: token(n, "async") != nil,
			Vars:  c.target(c.field(n, "left")),
			X:     c.exprs(c.field(n, "right")),
			Body:  c.body(n, "body"),
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			stmt.Else = c.clauseBody(alt)
		}
		return stmt

	case "while_statement":
		stmt := &syntax.WhileStmt{
			While: c.pos(n),
			Cond:  c.expr(c.field(n, "condition")),
			Body:  c.body(n, "body"),
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			stmt.Else = c.clauseBody(alt)
		}
		return stmt

	case "try_statement":
		return c.tryStmt(n)

	case "with_statement":
		return c.withStmt(n)

	case "function_definition":
		return c.def(n, nil)

	case "class_definition":
		return c.class(n, nil)

	case "decorated_definition":
		var decorators []syntax.Expr
		for _, kid := range named(n) {
			if kid.Kind() == "decorator" {
				decorators = append(decorators, c.expr(named(kid)[0]))
			}
		}
		def := c.field(n, "definition")
		if def.Kind() == "class_definition" {
			return c.class(def, decorators)
		}
		return c.def(def, decorators)
	}

	c.unsupported(n)
	panic("unreachable")
}

func (c *converter) importName(n *sitter.Node) *syntax.ImportName {
	switch n.Kind() {
	case "dotted_name", "identifier":
		return &syntax.ImportName{NamePos: c.pos(n), Name: c.text(n)}
	case "aliased_import":
		name := c.field(n, "name")
		return &syntax.ImportName{
			NamePos: c.pos(name),
			Name:    c.text(name),
			As:      c.ident(c.field(n, "alias")),
		}
	case "wildcard_import":
		return &syntax.ImportName{NamePos: c.pos(n), Name: "*"}
	}
	c.errorf(n, "invalid syntax: unexpected %s in import", n.Kind())
	panic("unreachable")
}

// ifStmt desugars elif clauses into nested IfStmts.
func (c *converter) ifStmt(n *sitter.Node) *syntax.IfStmt {
	stmt := &syntax.IfStmt{
		If:   c.pos(n),
		Cond: c.expr(c.field(n, "condition")),
		True: c.body(n, "consequence"),
	}
	tail := stmt
	cursor := n.Walk()
	defer cursor.Close()
	for _, alt := range n.ChildrenByFieldName("alternative", cursor) {
		switch alt.Kind() {
		case "elif_clause":
			elif := &syntax.IfStmt{
				If:   c.pos(&alt),
				Cond: c.expr(c.field(&alt, "condition")),
				True: c.body(&alt, "consequence"),
			}
			tail.ElsePos = elif.If
			tail.False = []syntax.Stmt{elif}
			tail = elif
		case "else_clause":
			tail.ElsePos = c.pos(&alt)
			tail.False = c.clauseBody(&alt)
		}
	}
	return stmt
}

func (c *converter) tryStmt(n *sitter.Node) *syntax.TryStmt {
	stmt := &syntax.TryStmt{Try: c.pos(n), Body: c.body(n, "body")}
	for _, kid := range named(n) {
		switch kid.Kind() {
		case "except_clause", "except_group_clause":
			stmt.Handlers = append(stmt.Handlers, c.exceptClause(kid))
		case "else_clause":
			stmt.Else = c.clauseBody(kid)
		case "finally_clause":
			stmt.Finally = c.clauseBody(kid)
		}
	}
	return stmt
}

// exceptClause converts "except Type as name: body".
func (c *converter) exceptClause(n *sitter.Node) *syntax.ExceptClause {
	clause := &syntax.ExceptClause{Except: c.pos(n)}
	var operands []*sitter.Node
	for _, kid := range named(n) {
		switch kid.Kind() {
		case "block":
			clause.Body = c.stmts(kid)
		case "as_pattern":
			parts := named(kid)
			operands = append(operands, parts[0])
			if alias := kid.ChildByFieldName("alias"); alias != nil {
				operands = append(operands, alias)
			}
		default:
			operands = append(operands, kid)
		}
	}
	if len(operands) > 0 {
		clause.Type = c.expr(operands[0])
	}
	if len(operands) > 1 {
		clause.Name = c.ident(unwrapTarget(operands[1]))
	}
	return clause
}

// unwrapTarget returns the expression inside an as_pattern_target.
func unwrapTarget(n *sitter.Node) *sitter.Node {
	if n.Kind() == "as_pattern_target" {
		if kids := named(n); len(kids) == 1 {
			return kids[0]
		}
	}
	return n
}

func (c *converter) withStmt(n *sitter.Node) *syntax.WithStmt {
	stmt := &syntax.WithStmt{
		With:  c.tokenPos(n, "with"),
		Async: token(n, "async") != nil,
		Body:  c.body(n, "body"),
	}
	for _, kid := range named(n) {
		if kid.Kind() != "with_clause" {
			continue
		}
		for _, item := range named(kid) {
			stmt.Items = append(stmt.Items, c.withItem(item))
		}
	}
	return stmt
}

func (c *converter) withItem(n *sitter.Node) *syntax.WithItem {
	value := c.field(n, "value")
	if value.Kind() != "as_pattern" {
		return &syntax.WithItem{X: c.expr(value)}
	}
	return &syntax.WithItem{
		X:    c.expr(named(value)[0]),
		Vars: c.target(c.field(value, "alias")),
	}
}

func (c *converter) def(n *sitter.Node, decorators []syntax.Expr) *syntax.DefStmt {
	def := c.tokenPos(n, "def")
	stmt := &syntax.DefStmt{
		Def:        def,
		Async:      token(n, "async") != nil,
		Decorators: decorators,
		Name:       c.ident(c.field(n, "name")),
	}
	stmt.Function = syntax.Function{
		StartPos: def,
		Params:   c.params(n.ChildByFieldName("parameters")),
		Body:     c.body(n, "body"),
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		stmt.Returns = c.typeExpr(ret)
	}
	return stmt
}

func (c *converter) class(n *sitter.Node, decorators []syntax.Expr) *syntax.ClassStmt {
	stmt := &syntax.ClassStmt{
		Class:      c.pos(n),
		Decorators: decorators,
		Name:       c.ident(c.field(n, "name")),
		Body:       c.body(n, "body"),
	}
	if bases := n.ChildByFieldName("superclasses"); bases != nil {
		stmt.Bases = c.arguments(bases)
	}
	return stmt
}

// params converts a parameters or lambda_parameters node.
// The node may be nil for a lambda without parameters.
func (c *converter) params(n *sitter.Node) []*syntax.Param {
	var params []*syntax.Param
	kind := syntax.PositionalParam
	add := func(k syntax.ParamKind, name *sitter.Node, annotation, dflt *sitter.Node) {
		p := &syntax.Param{Kind: k, Name: c.ident(name)}
		if annotation != nil {
			p.Annotation = c.typeExpr(annotation)
		}
		if dflt != nil {
			p.Default = c.expr(dflt)
		}
		params = append(params, p)
	}
	for _, kid := range named(n) {
		switch kid.Kind() {
		case "identifier":
			add(kind, kid, nil, nil)
		case "default_parameter":
			add(kind, c.field(kid, "name"), nil, c.field(kid, "value"))
		case "typed_default_parameter":
			add(kind, c.field(kid, "name"), c.field(kid, "type"), c.field(kid, "value"))
		case "typed_parameter":
			inner := named(kid)[0]
			annotation := c.field(kid, "type")
			switch inner.Kind() {
			case "list_splat_pattern":
				add(syntax.VarargsParam, named(inner)[0], annotation, nil)
				kind = syntax.KeywordOnlyParam
			case "dictionary_splat_pattern":
				add(syntax.KwargsParam, named(inner)[0], annotation, nil)
			default:
				add(kind, inner, annotation, nil)
			}
		case "list_splat_pattern":
			add(syntax.VarargsParam, named(kid)[0], nil, nil)
			kind = syntax.KeywordOnlyParam
		case "dictionary_splat_pattern":
			add(syntax.KwargsParam, named(kid)[0], nil, nil)
		case "keyword_separator":
			kind = syntax.KeywordOnlyParam
		case "positional_separator":
			// positional-only parameters bind like positional ones
		default:
			c.unsupported(kid)
		}
	}
	return params
}

// assignment converts a possibly chained or annotated assignment.
func (c *converter) assignment(n *sitter.Node) *syntax.AssignStmt {
	stmt := &syntax.AssignStmt{Op: syntax.EQ, OpPos: c.tokenPos(n, "=")}
	for {
		stmt.LHS = append(stmt.LHS, c.target(c.field(n, "left")))
		if typ := n.ChildByFieldName("type"); typ != nil {
			stmt.Annotation = c.typeExpr(typ)
		}
		right := n.ChildByFieldName("right")
		if right == nil {
			stmt.Op = syntax.COLON
			stmt.OpPos = c.tokenPos(n, ":")
			return stmt
		}
		if right.Kind() == "assignment" && stmt.Annotation == nil {
			n = right
			continue
		}
		stmt.RHS = c.rhs(right)
		return stmt
	}
}

func (c *converter) augmentedAssignment(n *sitter.Node) *syntax.AssignStmt {
	op := c.field(n, "operator")
	tok := syntax.LookupOperator(op.Kind())
	if tok == syntax.ILLEGAL {
		c.errorf(op, "invalid syntax: unknown operator %s", op.Kind())
	}
	return &syntax.AssignStmt{
		OpPos: c.pos(op),
		Op:    tok,
		LHS:   []syntax.Expr{c.target(c.field(n, "left"))},
		RHS:   c.rhs(c.field(n, "right")),
	}
}

// rhs converts the right-hand side of an assignment.
func (c *converter) rhs(n *sitter.Node) syntax.Expr {
	switch n.Kind() {
	case "assignment", "augmented_assignment":
		c.errorf(n, "invalid syntax")
	}
	return c.exprs(n)
}
