// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// Walk traverses a syntax tree in depth-first order.
// It starts by calling f(n); n must not be nil.
// If f returns true, Walk calls itself
// recursively for each non-nil child of n.
// Walk then calls f(nil).
func Walk(n Node, f func(Node) bool) {
	if n == nil {
		panic("nil")
	}
	walk(n, f)
}

func walk(n Node, f func(Node) bool) {
	if !f(n) {
		return
	}

	switch n := n.(type) {
	case *File:
		walkStmts(n.Stmts, f)

	case *ExprStmt:
		walk(n.X, f)

	case *BranchStmt:
		// no-op

	case *IfStmt:
		walk(n.Cond, f)
		walkStmts(n.True, f)
		walkStmts(n.False, f)

	case *AssignStmt:
		for _, lhs := range n.LHS {
			walk(lhs, f)
		}
		walkOpt(n.Annotation, f)
		walkOpt(n.RHS, f)

	case *AssertStmt:
		walk(n.Cond, f)
		walkOpt(n.Msg, f)

	case *DefStmt:
		walkExprs(n.Decorators, f)
		walk(n.Name, f)
		walkFunction(&n.Function, f)

	case *ClassStmt:
		walkExprs(n.Decorators, f)
		walk(n.Name, f)
		walkExprs(n.Bases, f)
		walkStmts(n.Body, f)

	case *DelStmt:
		walkExprs(n.Targets, f)

	case *ForStmt:
		walk(n.Vars, f)
		walk(n.X, f)
		walkStmts(n.Body, f)
		walkStmts(n.Else, f)

	case *WhileStmt:
		walk(n.Cond, f)
		walkStmts(n.Body, f)
		walkStmts(n.Else, f)

	case *WithStmt:
		for _, item := range n.Items {
			walk(item, f)
		}
		walkStmts(n.Body, f)

	case *WithItem:
		walk(n.X, f)
		walkOpt(n.Vars, f)

	case *TryStmt:
		walkStmts(n.Body, f)
		for _, h := range n.Handlers {
			walk(h, f)
		}
		walkStmts(n.Else, f)
		walkStmts(n.Finally, f)

	case *ExceptClause:
		walkOpt(n.Type, f)
		if n.Name != nil {
			walk(n.Name, f)
		}
		walkStmts(n.Body, f)

	case *GlobalStmt:
		for _, id := range n.Names {
			walk(id, f)
		}

	case *NonlocalStmt:
		for _, id := range n.Names {
			walk(id, f)
		}

	case *ImportStmt:
		for _, name := range n.Names {
			walk(name, f)
		}

	case *ImportName:
		if n.As != nil {
			walk(n.As, f)
		}

	case *RaiseStmt:
		walkOpt(n.X, f)
		walkOpt(n.Cause, f)

	case *ReturnStmt:
		walkOpt(n.Result, f)

	case *Param:
		walk(n.Name, f)
		walkOpt(n.Annotation, f)
		walkOpt(n.Default, f)

	case *Ident, *Literal:
		// no-op

	case *FStringExpr:
		walkExprs(n.Values, f)

	case *ListExpr:
		walkExprs(n.List, f)

	case *SetExpr:
		walkExprs(n.List, f)

	case *ParenExpr:
		walk(n.X, f)

	case *CondExpr:
		walk(n.Cond, f)
		walk(n.True, f)
		walk(n.False, f)

	case *IndexExpr:
		walk(n.X, f)
		walk(n.Y, f)

	case *DictEntry:
		walk(n.Key, f)
		walk(n.Value, f)

	case *SliceExpr:
		walkOpt(n.X, f)
		walkOpt(n.Lo, f)
		walkOpt(n.Hi, f)
		walkOpt(n.Step, f)

	case *Comprehension:
		walk(n.Body, f)
		for _, clause := range n.Clauses {
			walk(clause, f)
		}

	case *IfClause:
		walk(n.Cond, f)

	case *ForClause:
		walk(n.Vars, f)
		walk(n.X, f)

	case *TupleExpr:
		walkExprs(n.List, f)

	case *DictExpr:
		walkExprs(n.List, f)

	case *UnaryExpr:
		walk(n.X, f)

	case *BinaryExpr:
		walk(n.X, f)
		walk(n.Y, f)

	case *DotExpr:
		walk(n.X, f)
		walk(n.Name, f)

	case *CallExpr:
		walk(n.Fn, f)
		walkExprs(n.Args, f)

	case *LambdaExpr:
		walkFunction(&n.Function, f)

	case *YieldExpr:
		walkOpt(n.X, f)

	default:
		panic(n)
	}

	f(nil)
}

func walkFunction(fn *Function, f func(Node) bool) {
	for _, param := range fn.Params {
		walk(param, f)
	}
	walkOpt(fn.Returns, f)
	walkStmts(fn.Body, f)
}

func walkOpt(x Expr, f func(Node) bool) {
	if x != nil {
		walk(x, f)
	}
}

func walkExprs(list []Expr, f func(Node) bool) {
	for _, x := range list {
		walk(x, f)
	}
}

func walkStmts(stmts []Stmt, f func(Node) bool) {
	for _, stmt := range stmts {
		walk(stmt, f)
	}
}
