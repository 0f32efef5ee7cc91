// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable

// This file defines the builder, which makes one forward pass over
// the syntax tree recording, for every block, the definitions and
// uses of each name.

import (
	"fmt"
	"strings"

	"go.pyscope.net/syntax"
)

type builder struct {
	opts     *Options
	maxDepth int

	module  *block
	stack   []*block // enclosing blocks, innermost last
	private string   // name of the innermost enclosing class, for mangling
	depth   int
}

// build constructs the raw block tree for root, which is a
// *syntax.File or a syntax.Expr. The first error aborts the walk.
func build(root syntax.Node, opts *Options) (module *block, err error) {
	b := &builder{
		opts:     opts,
		maxDepth: opts.MaxDepth,
	}
	if b.maxDepth <= 0 {
		b.maxDepth = DefaultMaxDepth
	}
	b.module = newBlock(ModuleBlock, "top", "", syntax.Position{})
	b.stack = []*block{b.module}

	defer func() {
		switch e := recover().(type) {
		case nil:
		case Error:
			module, err = nil, e
		default:
			panic(e)
		}
	}()

	switch root := root.(type) {
	case *syntax.File:
		b.stmts(root.Stmts)
	case syntax.Expr:
		b.expr(root)
	default:
		panic(fmt.Sprintf("unexpected root %T", root))
	}
	return b.module, nil
}

func (b *builder) cur() *block { return b.stack[len(b.stack)-1] }

func (b *builder) enter(typ BlockType, name, defName string, pos syntax.Position) {
	parent := b.cur()
	blk := newBlock(typ, name, defName, pos)
	blk.nested = parent.typ == FunctionBlock || parent.nested
	parent.children = append(parent.children, blk)
	b.stack = append(b.stack, blk)
}

func (b *builder) leave() { b.stack = b.stack[:len(b.stack)-1] }

// push guards against pathologically deep trees.
func (b *builder) push(n syntax.Node) {
	b.depth++
	if b.depth > b.maxDepth {
		panic(tooDeeplyNested(syntax.Start(n)))
	}
}

func (b *builder) pop() { b.depth-- }

func (b *builder) warnf(pos syntax.Position, format string, args ...interface{}) {
	if b.opts.Warn != nil {
		b.opts.Warn(pos, fmt.Sprintf(format, args...))
	}
}

// mangle applies private name mangling: within a class C,
// an identifier __x becomes _C__x.
func mangle(private, name string) string {
	if private == "" || !strings.HasPrefix(name, "__") {
		return name
	}
	if strings.HasSuffix(name, "__") || strings.Contains(name, ".") {
		return name
	}
	class := strings.TrimLeft(private, "_")
	if class == "" {
		return name
	}
	return "_" + class + name
}

// addDef records a definition or use of name in the current block.
func (b *builder) addDef(name string, pos syntax.Position, flag Flags) {
	mangled := mangle(b.private, name)
	cur := b.cur()
	if flag&DefParam != 0 {
		if cur.symbols[mangled]&DefParam != 0 {
			panic(duplicateParam(pos, name))
		}
		cur.params = append(cur.params, mangled)
	}
	cur.add(mangled, flag)
	if flag&DefGlobal != 0 && cur != b.module {
		b.module.add(mangled, DefGlobal)
	}
}

func (b *builder) stmts(stmts []syntax.Stmt) {
	for _, stmt := range stmts {
		b.stmt(stmt)
	}
}

func (b *builder) stmt(stmt syntax.Stmt) {
	b.push(stmt)
	switch stmt := stmt.(type) {
	case *syntax.ExprStmt:
		b.expr(stmt.X)

	case *syntax.BranchStmt:
		// no-op

	case *syntax.IfStmt:
		b.expr(stmt.Cond)
		b.stmts(stmt.True)
		b.stmts(stmt.False)

	case *syntax.AssignStmt:
		for _, lhs := range stmt.LHS {
			b.bind(lhs, DefLocal)
		}
		b.exprOpt(stmt.Annotation)
		b.exprOpt(stmt.RHS)

	case *syntax.AssertStmt:
		b.expr(stmt.Cond)
		b.exprOpt(stmt.Msg)

	case *syntax.DefStmt:
		b.addDef(stmt.Name.Name, stmt.Name.NamePos, DefLocal)
		b.defaults(&stmt.Function)
		b.annotations(&stmt.Function)
		b.exprs(stmt.Decorators)
		b.function(stmt.Name.Name, mangle(b.private, stmt.Name.Name), stmt.Def, &stmt.Function)

	case *syntax.ClassStmt:
		b.addDef(stmt.Name.Name, stmt.Name.NamePos, DefLocal)
		b.args(stmt.Bases)
		b.exprs(stmt.Decorators)
		b.enter(ClassBlock, stmt.Name.Name, mangle(b.private, stmt.Name.Name), stmt.Class)
		saved := b.private
		b.private = stmt.Name.Name
		b.stmts(stmt.Body)
		b.private = saved
		b.leave()

	case *syntax.DelStmt:
		for _, target := range stmt.Targets {
			b.bind(target, DefLocal)
		}

	case *syntax.ForStmt:
		b.bind(stmt.Vars, DefLocal)
		b.expr(stmt.X)
		b.stmts(stmt.Body)
		b.stmts(stmt.Else)

	case *syntax.WhileStmt:
		b.expr(stmt.Cond)
		b.stmts(stmt.Body)
		b.stmts(stmt.Else)

	case *syntax.WithStmt:
		for _, item := range stmt.Items {
			b.expr(item.X)
			if item.Vars != nil {
				b.bind(item.Vars, DefLocal)
			}
		}
		b.stmts(stmt.Body)

	case *syntax.TryStmt:
		b.stmts(stmt.Body)
		for _, h := range stmt.Handlers {
			b.exprOpt(h.Type)
			if h.Name != nil {
				b.addDef(h.Name.Name, h.Name.NamePos, DefLocal)
			}
			b.stmts(h.Body)
		}
		b.stmts(stmt.Else)
		b.stmts(stmt.Finally)

	case *syntax.GlobalStmt:
		for _, id := range stmt.Names {
			b.declare(id, DefGlobal, "global")
		}

	case *syntax.NonlocalStmt:
		for _, id := range stmt.Names {
			b.declare(id, DefNonlocal, "nonlocal")
		}

	case *syntax.ImportStmt:
		for _, name := range stmt.Names {
			if name.Name == "*" {
				b.cur().starImport = true
				continue
			}
			pos := name.NamePos
			if name.As != nil {
				pos = name.As.NamePos
			}
			b.addDef(name.BoundName(), pos, DefImport)
		}

	case *syntax.RaiseStmt:
		b.exprOpt(stmt.X)
		b.exprOpt(stmt.Cause)

	case *syntax.ReturnStmt:
		b.exprOpt(stmt.Result)

	default:
		panic(fmt.Sprintf("unexpected stmt %T", stmt))
	}
	b.pop()
}

// declare handles one name of a global or nonlocal statement.
// Conflicting declarations are errors, reported at the first
// directive for the name. Earlier assignments or uses in the same
// block are tolerated with a warning.
func (b *builder) declare(id *syntax.Ident, flag Flags, keyword string) {
	cur := b.cur()
	mangled := mangle(b.private, id.Name)
	prev := cur.symbols[mangled]
	cur.declare(mangled, id.NamePos)
	pos := cur.directives[mangled]
	switch {
	case flag == DefNonlocal && cur == b.module:
		panic(nonlocalAtModuleLevel(id.NamePos))
	case prev&DefParam != 0 && flag == DefGlobal:
		panic(globalParamConflict(pos, id.Name))
	case prev&DefParam != 0:
		panic(nonlocalParamConflict(pos, id.Name))
	case prev&(DefGlobal|DefNonlocal) != 0 && prev&flag == 0:
		panic(nonlocalGlobalConflict(pos, id.Name))
	}
	switch {
	case prev&DefLocal != 0:
		b.warnf(id.NamePos, "name '%s' is assigned to before %s declaration", id.Name, keyword)
	case prev&DefUse != 0:
		b.warnf(id.NamePos, "name '%s' is used prior to %s declaration", id.Name, keyword)
	}
	b.addDef(id.Name, id.NamePos, flag)
}

// function visits the parameters and body of a def or lambda
// in a new function block. Defaults, annotations and decorators
// belong to the enclosing block and are visited by the caller.
func (b *builder) function(name, defName string, pos syntax.Position, fn *syntax.Function) {
	b.enter(FunctionBlock, name, defName, pos)
	for _, param := range fn.Params {
		b.addDef(param.Name.Name, param.Name.NamePos, DefParam)
	}
	b.stmts(fn.Body)
	b.leave()
}

func (b *builder) defaults(fn *syntax.Function) {
	for _, param := range fn.Params {
		b.exprOpt(param.Default)
	}
}

func (b *builder) annotations(fn *syntax.Function) {
	for _, param := range fn.Params {
		b.exprOpt(param.Annotation)
	}
	b.exprOpt(fn.Returns)
}

// bind visits an assignment target. Names are recorded with flag;
// attribute and subscript targets are loads of their operands.
func (b *builder) bind(target syntax.Expr, flag Flags) {
	b.push(target)
	switch target := target.(type) {
	case *syntax.Ident:
		b.addDef(target.Name, target.NamePos, flag)
	case *syntax.TupleExpr:
		for _, elem := range target.List {
			b.bind(elem, flag)
		}
	case *syntax.ListExpr:
		for _, elem := range target.List {
			b.bind(elem, flag)
		}
	case *syntax.ParenExpr:
		b.bind(target.X, flag)
	case *syntax.UnaryExpr:
		if target.Op == syntax.STAR {
			b.bind(target.X, flag)
		} else {
			b.expr(target)
		}
	default:
		b.expr(target)
	}
	b.pop()
}

func (b *builder) exprOpt(x syntax.Expr) {
	if x != nil {
		b.expr(x)
	}
}

func (b *builder) exprs(list []syntax.Expr) {
	for _, x := range list {
		b.expr(x)
	}
}

// args visits call or class-base arguments; for keyword
// arguments only the value is an expression.
func (b *builder) args(list []syntax.Expr) {
	for _, arg := range list {
		if binop, ok := arg.(*syntax.BinaryExpr); ok && binop.Op == syntax.EQ {
			b.expr(binop.Y)
		} else {
			b.expr(arg)
		}
	}
}

func (b *builder) expr(e syntax.Expr) {
	b.push(e)
	switch e := e.(type) {
	case *syntax.Ident:
		b.addDef(e.Name, e.NamePos, DefUse)
		if e.Name == "super" && b.cur().typ == FunctionBlock {
			b.addDef("__class__", e.NamePos, DefUse)
		}

	case *syntax.Literal:
		// no-op

	case *syntax.FStringExpr:
		b.exprs(e.Values)

	case *syntax.ListExpr:
		b.exprs(e.List)

	case *syntax.SetExpr:
		b.exprs(e.List)

	case *syntax.TupleExpr:
		b.exprs(e.List)

	case *syntax.DictExpr:
		b.exprs(e.List)

	case *syntax.DictEntry:
		b.expr(e.Key)
		b.expr(e.Value)

	case *syntax.ParenExpr:
		b.expr(e.X)

	case *syntax.CondExpr:
		b.expr(e.Cond)
		b.expr(e.True)
		b.expr(e.False)

	case *syntax.IndexExpr:
		b.expr(e.X)
		b.expr(e.Y)

	case *syntax.SliceExpr:
		b.exprOpt(e.X)
		b.exprOpt(e.Lo)
		b.exprOpt(e.Hi)
		b.exprOpt(e.Step)

	case *syntax.UnaryExpr:
		b.expr(e.X)

	case *syntax.BinaryExpr:
		// Walk the left spine of a chain such as a+b+c iteratively,
		// so that long flat chains do not count as nesting.
		var rights []syntax.Expr
		var x syntax.Expr = e
		for {
			bin, ok := x.(*syntax.BinaryExpr)
			if !ok {
				break
			}
			rights = append(rights, bin.Y)
			x = bin.X
		}
		b.expr(x)
		for i := len(rights) - 1; i >= 0; i-- {
			b.expr(rights[i])
		}

	case *syntax.DotExpr:
		b.expr(e.X)

	case *syntax.CallExpr:
		b.expr(e.Fn)
		b.args(e.Args)

	case *syntax.LambdaExpr:
		b.defaults(&e.Function)
		b.function("lambda", "", e.Lambda, &e.Function)

	case *syntax.Comprehension:
		b.comprehension(e)

	case *syntax.YieldExpr:
		b.exprOpt(e.X)

	default:
		panic(fmt.Sprintf("unexpected expr %T", e))
	}
	b.pop()
}

// comprehension visits a comprehension or generator expression.
// The outermost iterable is evaluated in the enclosing block and
// passed to the comprehension's own function block as the implicit
// parameter ".0". With Options.InlineComprehensions, no block is
// created and the loop variables bind in the enclosing block.
func (b *builder) comprehension(c *syntax.Comprehension) {
	first := c.Clauses[0].(*syntax.ForClause)
	b.expr(first.X)

	inline := b.opts.InlineComprehensions
	if !inline {
		b.enter(FunctionBlock, comprehensionName(c), "", c.Lbrack)
		b.addDef(".0", first.For, DefParam)
	}

	b.bind(first.Vars, DefLocal)
	for _, clause := range c.Clauses[1:] {
		switch clause := clause.(type) {
		case *syntax.IfClause:
			b.expr(clause.Cond)
		case *syntax.ForClause:
			b.bind(clause.Vars, DefLocal)
			b.expr(clause.X)
		}
	}
	if entry, ok := c.Body.(*syntax.DictEntry); ok {
		b.expr(entry.Value)
		b.expr(entry.Key)
	} else {
		b.expr(c.Body)
	}

	if !inline {
		b.leave()
	}
}

func comprehensionName(c *syntax.Comprehension) string {
	switch {
	case c.Paren:
		return "genexpr"
	case c.Curly:
		if _, ok := c.Body.(*syntax.DictEntry); ok {
			return "dictcomp"
		}
		return "setcomp"
	}
	return "listcomp"
}
