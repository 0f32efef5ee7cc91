// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax provides the abstract syntax tree of a Python-like
// scripting language, as consumed by the symtable package.
//
// The tree is produced by a front end such as package pyparse.
// It records enough structure to identify blocks, binding targets,
// name loads and global/nonlocal declarations, and every node
// carries the position of its first token.
package syntax // import "go.pyscope.net/syntax"

import "fmt"

// A Mode selects the kind of program a tree represents.
type Mode uint8

const (
	ModeExec   Mode = iota // a sequence of statements (module body)
	ModeEval               // a single expression
	ModeSingle             // one interactive statement
)

var modeNames = [...]string{
	ModeExec:   "exec",
	ModeEval:   "eval",
	ModeSingle: "single",
}

func (m Mode) String() string { return modeNames[m] }

// ParseMode returns the mode named s ("exec", "eval" or "single").
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q (want exec, eval or single)", s)
}

// A Node is a node in a syntax tree.
type Node interface {
	// Span returns the start and end position of the expression.
	Span() (start, end Position)
}

// Start returns the start position of the expression.
func Start(n Node) Position {
	start, _ := n.Span()
	return start
}

// End returns the end position of the expression.
func End(n Node) Position {
	_, end := n.Span()
	return end
}

// A File represents a source file, or one interactive statement.
type File struct {
	Path  string
	Stmts []Stmt
}

func (x *File) Span() (start, end Position) {
	if len(x.Stmts) == 0 {
		return
	}
	start, _ = x.Stmts[0].Span()
	_, end = x.Stmts[len(x.Stmts)-1].Span()
	return start, end
}

// A Stmt is a statement.
type Stmt interface {
	Node
	stmt()
}

func (*AssertStmt) stmt()   {}
func (*AssignStmt) stmt()   {}
func (*BranchStmt) stmt()   {}
func (*ClassStmt) stmt()    {}
func (*DefStmt) stmt()      {}
func (*DelStmt) stmt()      {}
func (*ExprStmt) stmt()     {}
func (*ForStmt) stmt()      {}
func (*GlobalStmt) stmt()   {}
func (*IfStmt) stmt()       {}
func (*ImportStmt) stmt()   {}
func (*NonlocalStmt) stmt() {}
func (*RaiseStmt) stmt()    {}
func (*ReturnStmt) stmt()   {}
func (*TryStmt) stmt()      {}
func (*WhileStmt) stmt()    {}
func (*WithStmt) stmt()     {}

func endOf(body []Stmt) Position {
	if len(body) == 0 {
		return Position{}
	}
	return End(body[len(body)-1])
}

// An AssignStmt represents an assignment:
//
//	x = 0
//	x, y = y, x
//	x = y = 0
//	x += 1
//	x: int = 0
type AssignStmt struct {
	OpPos      Position
	Op         Token  // = EQ | {PLUS,MINUS,STAR,...}_EQ | COLON (bare annotation)
	LHS        []Expr // more than one only for chained EQ
	Annotation Expr   // optional
	RHS        Expr   // nil for a bare annotation
}

func (x *AssignStmt) Span() (start, end Position) {
	start, _ = x.LHS[0].Span()
	switch {
	case x.RHS != nil:
		_, end = x.RHS.Span()
	case x.Annotation != nil:
		_, end = x.Annotation.Span()
	default:
		_, end = x.LHS[len(x.LHS)-1].Span()
	}
	return
}

// An AssertStmt represents an assertion: assert Cond, Msg.
type AssertStmt struct {
	Assert Position
	Cond   Expr
	Msg    Expr // optional
}

func (x *AssertStmt) Span() (start, end Position) {
	if x.Msg != nil {
		return x.Assert, End(x.Msg)
	}
	return x.Assert, End(x.Cond)
}

// A BranchStmt changes the flow of control: break, continue, pass.
type BranchStmt struct {
	Token    Token // = BREAK | CONTINUE | PASS
	TokenPos Position
}

func (x *BranchStmt) Span() (start, end Position) {
	return x.TokenPos, x.TokenPos.add(x.Token.String())
}

// A Function represents the common parts of LambdaExpr and DefStmt.
type Function struct {
	StartPos Position // position of DEF or LAMBDA token
	Params   []*Param // in declaration order: positional, *args, keyword-only, **kwargs
	Returns  Expr     // return annotation (optional)
	Body     []Stmt
}

func (x *Function) Span() (start, end Position) {
	return x.StartPos, endOf(x.Body)
}

// HasVarargs reports whether the parameters include *args.
func (x *Function) HasVarargs() bool { return x.hasParam(VarargsParam) }

// HasKwargs reports whether the parameters include **kwargs.
func (x *Function) HasKwargs() bool { return x.hasParam(KwargsParam) }

func (x *Function) hasParam(kind ParamKind) bool {
	for _, p := range x.Params {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

// A ParamKind distinguishes the forms of formal parameter.
type ParamKind uint8

const (
	PositionalParam  ParamKind = iota // a, a=1, a: T
	VarargsParam                      // *args
	KeywordOnlyParam                  // parameters after *args or a bare *
	KwargsParam                       // **kwargs
)

var paramKindNames = [...]string{
	PositionalParam:  "positional",
	VarargsParam:     "varargs",
	KeywordOnlyParam: "keyword-only",
	KwargsParam:      "kwargs",
}

func (k ParamKind) String() string { return paramKindNames[k] }

// A Param is one formal parameter of a function or lambda.
// Bare "*" and "/" markers are not represented; they only
// affect the Kind of the surrounding parameters.
type Param struct {
	Kind       ParamKind
	Name       *Ident
	Annotation Expr // optional
	Default    Expr // optional
}

func (x *Param) Span() (start, end Position) {
	start, end = x.Name.Span()
	if x.Annotation != nil {
		end = End(x.Annotation)
	}
	if x.Default != nil {
		end = End(x.Default)
	}
	return start, end
}

// A DefStmt represents a function definition.
type DefStmt struct {
	Def        Position
	Async      bool
	Decorators []Expr
	Name       *Ident
	Function
}

func (x *DefStmt) Span() (start, end Position) {
	return x.Def, endOf(x.Body)
}

// A ClassStmt represents a class definition.
type ClassStmt struct {
	Class      Position
	Decorators []Expr
	Name       *Ident
	Bases      []Expr // base classes and keywords: b | k=v (BinaryExpr EQ) | *b | **k
	Body       []Stmt
}

func (x *ClassStmt) Span() (start, end Position) {
	return x.Class, endOf(x.Body)
}

// A DelStmt deletes its targets: del x, y[i].
type DelStmt struct {
	Del     Position
	Targets []Expr
}

func (x *DelStmt) Span() (start, end Position) {
	return x.Del, End(x.Targets[len(x.Targets)-1])
}

// An ExprStmt is an expression evaluated for side effects.
type ExprStmt struct {
	X Expr
}

func (x *ExprStmt) Span() (start, end Position) {
	return x.X.Span()
}

// An IfStmt is a conditional: If Cond: True; else: False.
// 'elif' is desugared into a chain of IfStmts.
type IfStmt struct {
	If      Position // IF or ELIF
	Cond    Expr
	True    []Stmt
	ElsePos Position // ELSE or ELIF
	False   []Stmt   // optional
}

func (x *IfStmt) Span() (start, end Position) {
	body := x.False
	if body == nil {
		body = x.True
	}
	return x.If, endOf(body)
}

// A GlobalStmt declares names global: global x, y.
type GlobalStmt struct {
	Global Position
	Names  []*Ident
}

func (x *GlobalStmt) Span() (start, end Position) {
	return x.Global, End(x.Names[len(x.Names)-1])
}

// A NonlocalStmt declares names nonlocal: nonlocal x, y.
type NonlocalStmt struct {
	Nonlocal Position
	Names    []*Ident
}

func (x *NonlocalStmt) Span() (start, end Position) {
	return x.Nonlocal, End(x.Names[len(x.Names)-1])
}

// An ImportStmt binds names from another module:
//
//	import a.b.c
//	import a.b as c
//	from .m import x, y as z
//	from m import *
type ImportStmt struct {
	Import Position // IMPORT or FROM
	From   bool     // from-import
	Module string   // for from-imports, the (possibly relative) module path
	Names  []*ImportName
}

func (x *ImportStmt) Span() (start, end Position) {
	return x.Import, End(x.Names[len(x.Names)-1])
}

// An ImportName is one imported name of an ImportStmt.
type ImportName struct {
	NamePos Position
	Name    string // dotted module path, imported name, or "*"
	As      *Ident // optional
}

func (x *ImportName) Span() (start, end Position) {
	if x.As != nil {
		return x.NamePos, End(x.As)
	}
	return x.NamePos, x.NamePos.add(x.Name)
}

// BoundName returns the name the import binds in the importing block:
// the alias if present, otherwise the first component of Name.
// It returns "*" for a wildcard import.
func (x *ImportName) BoundName() string {
	if x.As != nil {
		return x.As.Name
	}
	for i := 0; i < len(x.Name); i++ {
		if x.Name[i] == '.' {
			return x.Name[:i]
		}
	}
	return x.Name
}

// A ForStmt represents a loop: for Vars in X: Body; else: Else.
type ForStmt struct {
	For   Position
	Async bool
	Vars  Expr // name, or tuple of names
	X     Expr
	Body  []Stmt
	Else  []Stmt // optional
}

func (x *ForStmt) Span() (start, end Position) {
	if x.Else != nil {
		return x.For, endOf(x.Else)
	}
	return x.For, endOf(x.Body)
}

// A WhileStmt represents a loop: while Cond: Body; else: Else.
type WhileStmt struct {
	While Position
	Cond  Expr
	Body  []Stmt
	Else  []Stmt // optional
}

func (x *WhileStmt) Span() (start, end Position) {
	if x.Else != nil {
		return x.While, endOf(x.Else)
	}
	return x.While, endOf(x.Body)
}

// A WithStmt represents a context manager statement:
// with X as Vars, ...: Body.
type WithStmt struct {
	With  Position
	Async bool
	Items []*WithItem
	Body  []Stmt
}

func (x *WithStmt) Span() (start, end Position) {
	return x.With, endOf(x.Body)
}

// A WithItem is one context manager of a WithStmt.
type WithItem struct {
	X    Expr
	Vars Expr // optional target of "as"
}

func (x *WithItem) Span() (start, end Position) {
	start, end = x.X.Span()
	if x.Vars != nil {
		end = End(x.Vars)
	}
	return start, end
}

// A TryStmt represents try/except/else/finally.
type TryStmt struct {
	Try      Position
	Body     []Stmt
	Handlers []*ExceptClause
	Else     []Stmt // optional
	Finally  []Stmt // optional
}

func (x *TryStmt) Span() (start, end Position) {
	switch {
	case x.Finally != nil:
		end = endOf(x.Finally)
	case x.Else != nil:
		end = endOf(x.Else)
	case len(x.Handlers) > 0:
		end = End(x.Handlers[len(x.Handlers)-1])
	default:
		end = endOf(x.Body)
	}
	return x.Try, end
}

// An ExceptClause is one handler of a TryStmt: except Type as Name: Body.
type ExceptClause struct {
	Except Position
	Type   Expr   // optional
	Name   *Ident // optional
	Body   []Stmt
}

func (x *ExceptClause) Span() (start, end Position) {
	return x.Except, endOf(x.Body)
}

// A RaiseStmt raises an exception: raise X from Cause.
type RaiseStmt struct {
	Raise Position
	X     Expr // optional
	Cause Expr // optional
}

func (x *RaiseStmt) Span() (start, end Position) {
	switch {
	case x.Cause != nil:
		return x.Raise, End(x.Cause)
	case x.X != nil:
		return x.Raise, End(x.X)
	}
	return x.Raise, x.Raise.add("raise")
}

// A ReturnStmt returns from a function.
type ReturnStmt struct {
	Return Position
	Result Expr // may be nil
}

func (x *ReturnStmt) Span() (start, end Position) {
	if x.Result == nil {
		return x.Return, x.Return.add("return")
	}
	_, end = x.Result.Span()
	return x.Return, end
}

// An Expr is an expression.
type Expr interface {
	Node
	expr()
}

func (*BinaryExpr) expr()    {}
func (*CallExpr) expr()      {}
func (*Comprehension) expr() {}
func (*CondExpr) expr()      {}
func (*DictEntry) expr()     {}
func (*DictExpr) expr()      {}
func (*DotExpr) expr()       {}
func (*FStringExpr) expr()   {}
func (*Ident) expr()         {}
func (*IndexExpr) expr()     {}
func (*LambdaExpr) expr()    {}
func (*ListExpr) expr()      {}
func (*Literal) expr()       {}
func (*ParenExpr) expr()     {}
func (*SetExpr) expr()       {}
func (*SliceExpr) expr()     {}
func (*TupleExpr) expr()     {}
func (*UnaryExpr) expr()     {}
func (*YieldExpr) expr()     {}

// An Ident represents an identifier.
type Ident struct {
	NamePos Position
	Name    string
}

func (x *Ident) Span() (start, end Position) {
	return x.NamePos, x.NamePos.add(x.Name)
}

// A Literal represents a literal string, number or constant.
type Literal struct {
	Token    Token // = STRING | BYTES | INT | FLOAT | NONE | TRUE | FALSE | ELLIPSIS
	TokenPos Position
	Raw      string // uninterpreted text
}

func (x *Literal) Span() (start, end Position) {
	return x.TokenPos, x.TokenPos.add(x.Raw)
}

// An FStringExpr represents a formatted string literal with
// interpolated expressions: f"{x} and {y!r}".
type FStringExpr struct {
	StartPos Position
	Raw      string // uninterpreted text
	Values   []Expr // interpolated expressions
}

func (x *FStringExpr) Span() (start, end Position) {
	return x.StartPos, x.StartPos.add(x.Raw)
}

// A ParenExpr represents a parenthesized expression: (X).
type ParenExpr struct {
	Lparen Position
	X      Expr
	Rparen Position
}

func (x *ParenExpr) Span() (start, end Position) {
	return x.Lparen, x.Rparen.add(")")
}

// A CallExpr represents a function call expression: Fn(Args).
// Keyword arguments are BinaryExprs with Op EQ; *a and **k
// arguments are UnaryExprs.
type CallExpr struct {
	Fn     Expr
	Lparen Position
	Args   []Expr
	Rparen Position
}

func (x *CallExpr) Span() (start, end Position) {
	start, _ = x.Fn.Span()
	return start, x.Rparen.add(")")
}

// A DotExpr represents a field or method selector: X.Name.
type DotExpr struct {
	X       Expr
	Dot     Position
	NamePos Position
	Name    *Ident
}

func (x *DotExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Name.Span()
	return
}

// A Comprehension represents a list, set or dict comprehension
// or a generator expression:
//
//	[Body for ... if ...]
//	{Body for ... if ...}
//	{Key: Value for ... if ...}
//	(Body for ... if ...)
type Comprehension struct {
	Curly   bool // {x:y for ...} or {x for ...}, not [x for ...]
	Paren   bool // generator expression (x for ...)
	Lbrack  Position
	Body    Expr   // *DictEntry for a dict comprehension
	Clauses []Node // = *ForClause | *IfClause; the first is a *ForClause
	Rbrack  Position
}

func (x *Comprehension) Span() (start, end Position) {
	return x.Lbrack, x.Rbrack.add("]")
}

// A ForClause represents a for clause in a comprehension: for Vars in X.
type ForClause struct {
	For   Position
	Async bool
	Vars  Expr // name, or tuple of names
	In    Position
	X     Expr
}

func (x *ForClause) Span() (start, end Position) {
	_, end = x.X.Span()
	return x.For, end
}

// An IfClause represents an if clause in a comprehension: if Cond.
type IfClause struct {
	If   Position
	Cond Expr
}

func (x *IfClause) Span() (start, end Position) {
	_, end = x.Cond.Span()
	return x.If, end
}

// A DictExpr represents a dictionary literal: { List }.
type DictExpr struct {
	Lbrace Position
	List   []Expr // *DictEntry, or **x as a UnaryExpr
	Rbrace Position
}

func (x *DictExpr) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// A DictEntry represents a dictionary entry: Key: Value.
// Used only within a DictExpr or a dict Comprehension.
type DictEntry struct {
	Key   Expr
	Colon Position
	Value Expr
}

func (x *DictEntry) Span() (start, end Position) {
	start, _ = x.Key.Span()
	_, end = x.Value.Span()
	return start, end
}

// A LambdaExpr represents an inline function abstraction.
// Its Body is a single ReturnStmt of the lambda's expression.
type LambdaExpr struct {
	Lambda Position
	Function
}

func (x *LambdaExpr) Span() (start, end Position) {
	return x.Lambda, endOf(x.Body)
}

// A ListExpr represents a list literal: [ List ].
type ListExpr struct {
	Lbrack Position
	List   []Expr
	Rbrack Position
}

func (x *ListExpr) Span() (start, end Position) {
	return x.Lbrack, x.Rbrack.add("]")
}

// A SetExpr represents a set literal: { List }.
type SetExpr struct {
	Lbrace Position
	List   []Expr
	Rbrace Position
}

func (x *SetExpr) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// CondExpr represents the conditional: X if COND else ELSE.
type CondExpr struct {
	If      Position
	Cond    Expr
	True    Expr
	ElsePos Position
	False   Expr
}

func (x *CondExpr) Span() (start, end Position) {
	start, _ = x.True.Span()
	_, end = x.False.Span()
	return start, end
}

// A TupleExpr represents a tuple literal: (List).
type TupleExpr struct {
	Lparen Position // optional (e.g. in x, y = 0, 1), but required if List is empty
	List   []Expr
	Rparen Position
}

func (x *TupleExpr) Span() (start, end Position) {
	if x.Lparen.IsValid() {
		return x.Lparen, x.Rparen
	} else {
		return Start(x.List[0]), End(x.List[len(x.List)-1])
	}
}

// A UnaryExpr represents a unary expression: Op X.
// Op STAR and STARSTAR denote unpacking (*x, **x).
type UnaryExpr struct {
	OpPos Position
	Op    Token // = MINUS | PLUS | TILDE | NOT | STAR | STARSTAR | AWAIT
	X     Expr
}

func (x *UnaryExpr) Span() (start, end Position) {
	_, end = x.X.Span()
	return x.OpPos, end
}

// A BinaryExpr represents a binary expression: X Op Y.
// Chained comparisons (a < b < c) nest to the left.
type BinaryExpr struct {
	X     Expr
	OpPos Position
	Op    Token
	Y     Expr
}

func (x *BinaryExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Y.Span()
	return start, end
}

// A SliceExpr represents a slice or substring expression: X[Lo:Hi:Step].
// Within the tuple subscript of an IndexExpr (a[i:j, k]), X is nil.
type SliceExpr struct {
	X            Expr
	Lbrack       Position
	Lo, Hi, Step Expr // all optional
	Rbrack       Position
}

func (x *SliceExpr) Span() (start, end Position) {
	if x.X != nil {
		start, _ = x.X.Span()
	} else {
		start = x.Lbrack
	}
	return start, x.Rbrack
}

// An IndexExpr represents an index expression: X[Y].
type IndexExpr struct {
	X      Expr
	Lbrack Position
	Y      Expr
	Rbrack Position
}

func (x *IndexExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	return start, x.Rbrack
}

// A YieldExpr represents yield X or yield from X.
type YieldExpr struct {
	Yield Position
	From  bool
	X     Expr // may be nil
}

func (x *YieldExpr) Span() (start, end Position) {
	if x.X == nil {
		return x.Yield, x.Yield.add("yield")
	}
	return x.Yield, End(x.X)
}
