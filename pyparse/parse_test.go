// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pyparse_test

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"go.pyscope.net/pyparse"
	"go.pyscope.net/syntax"
)

func TestExprParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`f(1)`,
			`(CallExpr Fn=f Args=(1))`},
		{"f(1)\n",
			`(CallExpr Fn=f Args=(1))`},
		{`x + 1`,
			`(BinaryExpr X=x Op=+ Y=1)`},
		{`x+y*z`,
			`(BinaryExpr X=x Op=+ Y=(BinaryExpr X=y Op=* Y=z))`},
		{`a and not b`,
			`(BinaryExpr X=a Op=and Y=(UnaryExpr Op=not X=b))`},
		{`a < b < c`,
			`(BinaryExpr X=(BinaryExpr X=a Op=< Y=b) Op=< Y=c)`},
		{`a not in b`,
			`(BinaryExpr X=a Op=not in Y=b)`},
		{`-x[i]`,
			`(UnaryExpr Op=- X=(IndexExpr X=x Y=i))`},
		{`a if b else c`,
			`(CondExpr Cond=b True=a False=c)`},
		{`x.f(*a, **k, z=1)`,
			`(CallExpr Fn=(DotExpr X=x Name=f) Args=((UnaryExpr Op=* X=a) (UnaryExpr Op=** X=k) (BinaryExpr X=z Op== Y=1)))`},
		{`[x for x in y]`,
			`(Comprehension Body=x Clauses=((ForClause Vars=x X=y)))`},
		{`{x for x in y if x}`,
			`(Comprehension Curly Body=x Clauses=((ForClause Vars=x X=y) (IfClause Cond=x)))`},
		{`{x: y for a in b if c}`,
			`(Comprehension Curly Body=(DictEntry Key=x Value=y) Clauses=((ForClause Vars=a X=b) (IfClause Cond=c)))`},
		{`(x for x, y in z for w in x)`,
			`(Comprehension Paren Body=x Clauses=((ForClause Vars=(TupleExpr List=(x y)) X=z) (ForClause Vars=w X=x)))`},
		{`f(x for x in y)`,
			`(CallExpr Fn=f Args=((Comprehension Paren Body=x Clauses=((ForClause Vars=x X=y)))))`},
		{`lambda: 0`,
			`(LambdaExpr Function=(Function Body=((ReturnStmt Result=0))))`},
		{`lambda x, *args, y=1, **kw: x`,
			`(LambdaExpr Function=(Function Params=((Param Name=x) (Param Kind=varargs Name=args) (Param Kind=keyword-only Name=y Default=1) (Param Kind=kwargs Name=kw)) Body=((ReturnStmt Result=x))))`},
		{`a[i]`,
			`(IndexExpr X=a Y=i)`},
		{`a[i:j]`,
			`(SliceExpr X=a Lo=i Hi=j)`},
		{`a[::k]`,
			`(SliceExpr X=a Step=k)`},
		{`a[i, j:k]`,
			`(IndexExpr X=a Y=(TupleExpr List=(i (SliceExpr Lo=j Hi=k))))`},
		{`[]`,
			`(ListExpr)`},
		{`[1, *x]`,
			`(ListExpr List=(1 (UnaryExpr Op=* X=x)))`},
		{`(4, 5)`,
			`(TupleExpr List=(4 5))`},
		{`(4)`,
			`(ParenExpr X=4)`},
		{`{"a": 1, **b}`,
			`(DictExpr List=((DictEntry Key="a" Value=1) (UnaryExpr Op=** X=b)))`},
		{`{1, 2}`,
			`(SetExpr List=(1 2))`},
		{`f"{a} and {b!r:{c}}"`,
			`(FStringExpr Values=(a b c))`},
		{`f"{x:{w}.{p}}"`,
			`(FStringExpr Values=(x w p))`},
		{`await x`,
			`(UnaryExpr Op=await X=x)`},
		{`None`,
			`None`},
	} {
		e, err := pyparse.ParseExpr("foo.py", []byte(test.input))
		var got string
		if err != nil {
			got = stripPos(err)
		} else {
			got = treeString(e)
		}
		if test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

func TestStmtParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`f(1)`,
			`(ExprStmt X=(CallExpr Fn=f Args=(1)))`},
		{`x = y = 1`,
			`(AssignStmt Op== LHS=(x y) RHS=1)`},
		{`x += 1`,
			`(AssignStmt Op=+= LHS=(x) RHS=1)`},
		{`x: int = 1`,
			`(AssignStmt Op== LHS=(x) Annotation=int RHS=1)`},
		{`x: int`,
			`(AssignStmt Op=: LHS=(x) Annotation=int)`},
		{`a, *b = c`,
			`(AssignStmt Op== LHS=((TupleExpr List=(a (UnaryExpr Op=* X=b)))) RHS=c)`},
		{`x.y = 1`,
			`(AssignStmt Op== LHS=((DotExpr X=x Name=y)) RHS=1)`},
		{`import a.b as c, d`,
			`(ImportStmt Names=((ImportName Name=a.b As=c) (ImportName Name=d)))`},
		{`from .m import x as y`,
			`(ImportStmt From Module=.m Names=((ImportName Name=x As=y)))`},
		{`from m import *`,
			`(ImportStmt From Module=m Names=((ImportName Name=*)))`},
		{`global a, b`,
			`(GlobalStmt Names=(a b))`},
		{`nonlocal x`,
			`(NonlocalStmt Names=(x))`},
		{`del a, b[0]`,
			`(DelStmt Targets=(a (IndexExpr X=b Y=0)))`},
		{`raise E from e`,
			`(RaiseStmt X=E Cause=e)`},
		{`return`,
			`(ReturnStmt)`},
		{`assert x, "msg"`,
			`(AssertStmt Cond=x Msg="msg")`},
		{`def f(a, b=1, *c, d, **e) -> r: pass`,
			`(DefStmt Name=f Function=(Function Params=((Param Name=a) (Param Name=b Default=1) (Param Kind=varargs Name=c) (Param Kind=keyword-only Name=d) (Param Kind=kwargs Name=e)) Returns=r Body=((BranchStmt Token=pass))))`},
		{`def f(a: int, *, b: str = ""): pass`,
			`(DefStmt Name=f Function=(Function Params=((Param Name=a Annotation=int) (Param Kind=keyword-only Name=b Annotation=str Default="")) Body=((BranchStmt Token=pass))))`},
		{"@dec\nclass C(B, metaclass=M): pass",
			`(ClassStmt Decorators=(dec) Name=C Bases=(B (BinaryExpr X=metaclass Op== Y=M)) Body=((BranchStmt Token=pass)))`},
		{"async def f():\n  async for x in y:\n    await x",
			`(DefStmt Async Name=f Function=(Function Body=((ForStmt Async Vars=x X=y Body=((ExprStmt X=(UnaryExpr Op=await X=x)))))))`},
		{"for x in y:\n  pass\nelse:\n  break",
			`(ForStmt Vars=x X=y Body=((BranchStmt Token=pass)) Else=((BranchStmt Token=break)))`},
		{"while x:\n  continue",
			`(WhileStmt Cond=x Body=((BranchStmt Token=continue)))`},
		{"if a:\n  pass\nelif b:\n  pass\nelse:\n  pass",
			`(IfStmt Cond=a True=((BranchStmt Token=pass)) False=((IfStmt Cond=b True=((BranchStmt Token=pass)) False=((BranchStmt Token=pass)))))`},
		{"try:\n  pass\nexcept E as e:\n  pass\nfinally:\n  pass",
			`(TryStmt Body=((BranchStmt Token=pass)) Handlers=((ExceptClause Type=E Name=e Body=((BranchStmt Token=pass)))) Finally=((BranchStmt Token=pass)))`},
		{"try:\n  pass\nexcept:\n  pass\nelse:\n  pass",
			`(TryStmt Body=((BranchStmt Token=pass)) Handlers=((ExceptClause Body=((BranchStmt Token=pass)))) Else=((BranchStmt Token=pass)))`},
		{"with a as b, c:\n  pass",
			`(WithStmt Items=((WithItem X=a Vars=b) (WithItem X=c)) Body=((BranchStmt Token=pass)))`},
		{"x = 1 # comment",
			`(AssignStmt Op== LHS=(x) RHS=1)`},
	} {
		f, err := pyparse.ParseFile("foo.py", []byte(test.input))
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, stripPos(err))
			continue
		}
		var buf bytes.Buffer
		for i, stmt := range f.Stmts {
			if i > 0 {
				buf.WriteString("\n")
			}
			writeTree(&buf, reflect.ValueOf(stmt))
		}
		got := buf.String()
		if test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, test := range []struct {
		input string
		mode  syntax.Mode
		want  string // prefix of the error message
	}{
		{"def f(:\n  pass", syntax.ModeExec, "invalid syntax"},
		{"(y := f(x))", syntax.ModeExec, "unsupported syntax: named expression"},
		{"x = 1", syntax.ModeEval, "expected a single expression"},
		{"", syntax.ModeEval, "expected a single expression"},
	} {
		_, err := pyparse.Parse("foo.py", []byte(test.input), test.mode)
		if err == nil {
			t.Errorf("parse `%s` (%s) succeeded, want error %q", test.input, test.mode, test.want)
			continue
		}
		if _, ok := err.(syntax.Error); !ok {
			t.Errorf("parse `%s`: got %T, want syntax.Error", test.input, err)
		}
		if got := stripPos(err); !strings.HasPrefix(got, test.want) {
			t.Errorf("parse `%s` (%s) = %q, want %q", test.input, test.mode, got, test.want)
		}
	}
}

func TestPositions(t *testing.T) {
	f, err := pyparse.ParseFile("foo.py", []byte("x = 1\ndef f():\n    return y\n"))
	if err != nil {
		t.Fatal(err)
	}
	def := f.Stmts[1].(*syntax.DefStmt)
	ret := def.Body[0].(*syntax.ReturnStmt)
	for _, test := range []struct {
		node syntax.Node
		want string
	}{
		{f.Stmts[0], "foo.py:1:1"},
		{def, "foo.py:2:1"},
		{def.Name, "foo.py:2:5"},
		{ret.Result, "foo.py:3:12"},
	} {
		if got := syntax.Start(test.node).String(); got != test.want {
			t.Errorf("position of %T = %s, want %s", test.node, got, test.want)
		}
	}
}

func TestConcurrentParse(t *testing.T) {
	done := make(chan error)
	for i := 0; i < 8; i++ {
		go func(i int) {
			_, err := pyparse.ParseFile("foo.py", []byte(fmt.Sprintf("def f%d(x):\n    return [x for x in range(%d)]\n", i, i)))
			done <- err
		}(i)
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Error(err)
		}
	}
}

func stripPos(err error) string {
	s := err.Error()
	if i := strings.Index(s, ": "); i >= 0 {
		s = s[i+len(": "):] // strip file:line:col
	}
	return s
}

// treeString prints a syntax node as a parenthesized tree.
// Idents are printed as foo and Literals by their source text.
// Structs are printed as (type name=value ...).
// Only non-empty fields are shown.
func treeString(n syntax.Node) string {
	var buf bytes.Buffer
	writeTree(&buf, reflect.ValueOf(n))
	return buf.String()
}

func writeTree(out *bytes.Buffer, x reflect.Value) {
	switch x.Kind() {
	case reflect.String, reflect.Int, reflect.Bool:
		fmt.Fprintf(out, "%v", x.Interface())
	case reflect.Ptr, reflect.Interface:
		if elem := x.Elem(); elem.Kind() == 0 {
			out.WriteString("nil")
		} else {
			writeTree(out, elem)
		}
	case reflect.Struct:
		switch v := x.Interface().(type) {
		case syntax.Literal:
			out.WriteString(v.Raw)
			return
		case syntax.Ident:
			out.WriteString(v.Name)
			return
		}
		fmt.Fprintf(out, "(%s", strings.TrimPrefix(x.Type().String(), "syntax."))
		for i, n := 0, x.NumField(); i < n; i++ {
			f := x.Field(i)
			if f.Type() == reflect.TypeOf(syntax.Position{}) {
				continue // skip positions
			}
			name := x.Type().Field(i).Name
			if name == "Raw" || name == "Path" {
				continue // source text is checked elsewhere
			}
			switch f.Type() {
			case reflect.TypeOf(syntax.Token(0)):
				fmt.Fprintf(out, " %s=%s", name, f.Interface())
				continue
			case reflect.TypeOf(syntax.ParamKind(0)):
				if kind := f.Interface().(syntax.ParamKind); kind != syntax.PositionalParam {
					fmt.Fprintf(out, " %s=%s", name, kind)
				}
				continue
			}

			switch f.Kind() {
			case reflect.Slice:
				if n := f.Len(); n > 0 {
					fmt.Fprintf(out, " %s=(", name)
					for i := 0; i < n; i++ {
						if i > 0 {
							out.WriteByte(' ')
						}
						writeTree(out, f.Index(i))
					}
					out.WriteByte(')')
				}
				continue
			case reflect.Ptr, reflect.Interface:
				if f.IsNil() {
					continue
				}
			case reflect.String:
				if f.String() == "" {
					continue
				}
			case reflect.Bool:
				if f.Bool() {
					fmt.Fprintf(out, " %s", name)
				}
				continue
			}
			fmt.Fprintf(out, " %s=", name)
			writeTree(out, f)
		}
		fmt.Fprintf(out, ")")
	default:
		fmt.Fprintf(out, "%T", x.Interface())
	}
}
