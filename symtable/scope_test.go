// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.pyscope.net/syntax"
)

func wantSymbol(t *testing.T, table *SymbolTable, name string, want Symbol) {
	t.Helper()
	got, ok := table.Lookup(name)
	if !ok {
		t.Errorf("%s: no symbol %q", table.Name, name)
		return
	}
	if got != want {
		t.Errorf("%s: %s = {%s %s}, want {%s %s}", table.Name, name, got.Flags, got.Scope, want.Flags, want.Scope)
	}
}

func TestComprehensionBlock(t *testing.T) {
	table := mustAnalyze(t, "[x for x in y]", nil)
	wantSymbol(t, table, "y", Symbol{DefUse, ScopeGlobalImplicit})
	if _, ok := table.Lookup("x"); ok {
		t.Error("comprehension variable leaked into module")
	}
	if len(table.Children) != 0 {
		t.Errorf("got children %v, want none", table.Children)
	}
	if len(table.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(table.Blocks))
	}
	comp := table.Blocks[0]
	if comp.Name != "listcomp" || comp.Type != FunctionBlock {
		t.Errorf("got %s block %q, want function block listcomp", comp.Type, comp.Name)
	}
	if want := []string{".0", "x"}; !cmp.Equal(comp.Varnames, want) {
		t.Errorf("Varnames = %v, want %v", comp.Varnames, want)
	}
	wantSymbol(t, comp, ".0", Symbol{DefParam, ScopeLocal})
	wantSymbol(t, comp, "x", Symbol{DefLocal | DefUse, ScopeLocal})
}

func TestComprehensionNames(t *testing.T) {
	table := mustAnalyze(t, "[a for a in s]\n{b for b in s}\n{c: c for c in s}\n(d for d in s)", nil)
	var got []string
	for _, b := range table.Blocks {
		got = append(got, b.Name)
	}
	want := []string{"listcomp", "setcomp", "dictcomp", "genexpr"}
	if !cmp.Equal(got, want) {
		t.Errorf("got blocks %v, want %v", got, want)
	}
}

func TestInlineComprehension(t *testing.T) {
	table := mustAnalyze(t, "[x for x in y]", &Options{InlineComprehensions: true})
	wantSymbol(t, table, "x", Symbol{DefLocal | DefUse, ScopeLocal})
	wantSymbol(t, table, "y", Symbol{DefUse, ScopeGlobalImplicit})
	if len(table.Blocks) != 0 {
		t.Errorf("got %d blocks, want none", len(table.Blocks))
	}
}

func TestComprehensionInFunction(t *testing.T) {
	table := mustAnalyze(t, "def f(y):\n    return [y for x in range(3)]", nil)
	f := table.Child("f")
	wantSymbol(t, f, "y", Symbol{DefParam, ScopeCell})
	wantSymbol(t, f, "range", Symbol{DefUse, ScopeGlobalImplicit})
	comp := f.Blocks[0]
	if !comp.Nested {
		t.Error("comprehension in a function is not nested")
	}
	wantSymbol(t, comp, "y", Symbol{DefUse, ScopeFree})
}

func TestClassBodySkipped(t *testing.T) {
	const src = `
def f():
    x = 1
    class C:
        x = 2
        def g(self):
            return x
`
	table := mustAnalyze(t, src, nil)
	f := table.Child("f")
	wantSymbol(t, f, "x", Symbol{DefLocal, ScopeCell})
	wantSymbol(t, f, "C", Symbol{DefLocal, ScopeLocal})

	c := f.Child("C")
	if c.Type != ClassBlock {
		t.Fatalf("C is a %s block", c.Type)
	}
	wantSymbol(t, c, "x", Symbol{DefLocal | DefFreeClass, ScopeLocal})
	wantSymbol(t, c, "g", Symbol{DefLocal, ScopeLocal})
	if len(c.Varnames) != 0 {
		t.Errorf("class Varnames = %v, want none", c.Varnames)
	}
	wantSymbol(t, c.Child("g"), "x", Symbol{DefUse, ScopeFree})

	// At module level, the method's x is global.
	table = mustAnalyze(t, "class C:\n    x = 2\n    def g(self):\n        return x", nil)
	wantSymbol(t, table.Child("C").Child("g"), "x", Symbol{DefUse, ScopeGlobalImplicit})
}

func TestSuper(t *testing.T) {
	table := mustAnalyze(t, "class C:\n    def f(self):\n        return super().f()", nil)
	c := table.Child("C")
	if !c.NeedsClassClosure {
		t.Error("NeedsClassClosure = false")
	}
	if _, ok := c.Lookup("__class__"); ok {
		t.Error("__class__ recorded in the class block")
	}
	f := c.Child("f")
	wantSymbol(t, f, "self", Symbol{DefParam, ScopeLocal})
	wantSymbol(t, f, "super", Symbol{DefUse, ScopeGlobalImplicit})
	wantSymbol(t, f, "__class__", Symbol{DefUse, ScopeFree})

	table = mustAnalyze(t, "class C:\n    def f(self):\n        return 1", nil)
	if table.Child("C").NeedsClassClosure {
		t.Error("NeedsClassClosure = true for a class without super")
	}
}

func TestMangling(t *testing.T) {
	table := mustAnalyze(t, "class C:\n    __x = 1\n    __init__ = 2\n    def f(self):\n        return __y", nil)
	c := table.Child("C")
	wantSymbol(t, c, "_C__x", Symbol{DefLocal, ScopeLocal})
	wantSymbol(t, c, "__init__", Symbol{DefLocal, ScopeLocal})
	if _, ok := c.Lookup("__x"); ok {
		t.Error("unmangled __x recorded")
	}
	wantSymbol(t, c.Child("f"), "_C__y", Symbol{DefUse, ScopeGlobalImplicit})

	for _, test := range []struct{ private, name, want string }{
		{"", "__x", "__x"},
		{"C", "x", "x"},
		{"C", "__x", "_C__x"},
		{"_C", "__x", "_C__x"},
		{"__", "__x", "__x"},
		{"C", "__x__", "__x__"},
		{"C", "__a.b", "__a.b"},
	} {
		if got := mangle(test.private, test.name); got != test.want {
			t.Errorf("mangle(%q, %q) = %q, want %q", test.private, test.name, got, test.want)
		}
	}
}

func TestFreePassthrough(t *testing.T) {
	const src = `
def f():
    x = 1
    def g():
        def h():
            return x
        return h
`
	table := mustAnalyze(t, src, nil)
	f := table.Child("f")
	wantSymbol(t, f, "x", Symbol{DefLocal, ScopeCell})
	g := f.Child("g")
	wantSymbol(t, g, "x", Symbol{DefFree, ScopeFree})
	if want := []string{"h"}; !cmp.Equal(g.Varnames, want) {
		t.Errorf("g.Varnames = %v, want %v", g.Varnames, want)
	}
	wantSymbol(t, g.Child("h"), "x", Symbol{DefUse, ScopeFree})
}

func TestExplicitGlobalWins(t *testing.T) {
	const src = `
def f():
    global x
    x = 1
    def g():
        return x
`
	table := mustAnalyze(t, src, nil)
	f := table.Child("f")
	wantSymbol(t, f, "x", Symbol{DefGlobal | DefLocal, ScopeGlobalExplicit})
	wantSymbol(t, f.Child("g"), "x", Symbol{DefUse, ScopeGlobalImplicit})
	wantSymbol(t, table, "x", Symbol{DefGlobal, ScopeGlobalExplicit})
}

func TestStarImport(t *testing.T) {
	table := mustAnalyze(t, "def f():\n    from m import *\n    return x", nil)
	if !table.Child("f").Unoptimized {
		t.Error("function with star import is optimized")
	}
	table = mustAnalyze(t, "def f():\n    import os.path as p\n    import sys", nil)
	f := table.Child("f")
	if f.Unoptimized {
		t.Error("function without star import is unoptimized")
	}
	wantSymbol(t, f, "p", Symbol{DefImport, ScopeLocal})
	wantSymbol(t, f, "sys", Symbol{DefImport, ScopeLocal})
	if want := []string{"p", "sys"}; !cmp.Equal(f.Varnames, want) {
		t.Errorf("Varnames = %v, want %v", f.Varnames, want)
	}
}

func TestLambda(t *testing.T) {
	table := mustAnalyze(t, "f = lambda a, b=c: a + d", nil)
	wantSymbol(t, table, "c", Symbol{DefUse, ScopeGlobalImplicit})
	if len(table.Blocks) != 1 || len(table.Children) != 0 {
		t.Fatalf("got %d blocks and %d children, want 1 and 0", len(table.Blocks), len(table.Children))
	}
	lambda := table.Blocks[0]
	if lambda.Name != "lambda" || lambda.Lineno != 1 {
		t.Errorf("got block %q at line %d", lambda.Name, lambda.Lineno)
	}
	if want := []string{"a", "b"}; !cmp.Equal(lambda.Varnames, want) {
		t.Errorf("Varnames = %v, want %v", lambda.Varnames, want)
	}
	wantSymbol(t, lambda, "d", Symbol{DefUse, ScopeGlobalImplicit})
}

func TestParamOrder(t *testing.T) {
	table := mustAnalyze(t, "def f(a, b=1, *args, c, d=2, **kw):\n    e = 1\n    a = 2", nil)
	want := []string{"a", "b", "args", "c", "d", "kw", "e"}
	if got := table.Child("f").Varnames; !cmp.Equal(got, want) {
		t.Errorf("Varnames = %v, want %v", got, want)
	}
}

func TestRedefinition(t *testing.T) {
	table := mustAnalyze(t, "def f():\n    pass\ndef f(x):\n    pass", nil)
	if got := table.Child("f").Lineno; got != 3 {
		t.Errorf("Child(f).Lineno = %d, want 3", got)
	}
	if len(table.Blocks) != 2 {
		t.Errorf("got %d blocks, want 2", len(table.Blocks))
	}
}

func TestDepthLimit(t *testing.T) {
	src := strings.Repeat("(", 20) + "x" + strings.Repeat(")", 20)
	_, err := analyze(t, src, syntax.ModeEval, &Options{MaxDepth: 10})
	var serr Error
	if !errors.As(err, &serr) || serr.Kind != TooDeeplyNested {
		t.Fatalf("got %v, want TooDeeplyNested", err)
	}
	if serr.Msg != "maximum recursion depth exceeded during compilation" {
		t.Errorf("got message %q", serr.Msg)
	}
	if _, err := analyze(t, src, syntax.ModeEval, nil); err != nil {
		t.Errorf("default depth: %v", err)
	}

	// Long flat chains are not nesting.
	chain := strings.Repeat("a+", 1000) + "a"
	if _, err := analyze(t, chain, syntax.ModeEval, nil); err != nil {
		t.Errorf("flat chain: %v", err)
	}
	if _, err := analyze(t, chain, syntax.ModeEval, &Options{MaxDepth: 10}); err != nil {
		t.Errorf("flat chain, MaxDepth 10: %v", err)
	}
	nested := strings.Repeat("a+(", 20) + "a" + strings.Repeat(")", 20)
	if _, err := analyze(t, nested, syntax.ModeEval, &Options{MaxDepth: 10}); !errors.As(err, &serr) || serr.Kind != TooDeeplyNested {
		t.Errorf("nested chain: got %v, want TooDeeplyNested", err)
	}
}

func TestTryBindingOrder(t *testing.T) {
	const src = `
def f():
    try:
        pass
    except E as e:
        pass
    else:
        x = 1
    finally:
        y = 2
`
	f := mustAnalyze(t, src, nil).Child("f")
	if want := []string{"e", "x", "y"}; !cmp.Equal(f.Varnames, want) {
		t.Errorf("Varnames = %v, want %v", f.Varnames, want)
	}
}

func TestFormatSpecClosure(t *testing.T) {
	table := mustAnalyze(t, "def f(c):\n    return lambda: f\"{1:{c}}\"", nil)
	f := table.Child("f")
	wantSymbol(t, f, "c", Symbol{DefParam, ScopeCell})
	if len(f.Blocks) != 1 {
		t.Fatalf("got %d blocks in f, want 1", len(f.Blocks))
	}
	wantSymbol(t, f.Blocks[0], "c", Symbol{DefUse, ScopeFree})
}

func TestFreeFromClass(t *testing.T) {
	table := mustAnalyze(t, "def f():\n    x = 1\n    class C:\n        y = x", nil)
	f := table.Child("f")
	wantSymbol(t, f, "x", Symbol{DefLocal, ScopeCell})
	c := f.Child("C")
	wantSymbol(t, c, "x", Symbol{DefUse | DefFreeClass, ScopeFree})
	wantSymbol(t, c, "y", Symbol{DefLocal, ScopeLocal})

	// A name the class reads only as a global carries no class flag.
	table = mustAnalyze(t, "class C:\n    y = x", nil)
	wantSymbol(t, table.Child("C"), "x", Symbol{DefUse, ScopeGlobalImplicit})
}

func TestWarnings(t *testing.T) {
	type warning struct {
		line, col int32
		msg       string
	}
	var got []warning
	opts := &Options{Warn: func(pos syntax.Position, msg string) {
		got = append(got, warning{pos.Line, pos.Col, msg})
	}}
	mustAnalyze(t, "def fn(a):\n    b = 6\n    global b\n    b = a", opts)
	want := []warning{{3, 12, "name 'b' is assigned to before global declaration"}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(warning{})); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestDeterminism(t *testing.T) {
	const src = `
import a, b as c
def f(p, *q, r, **s):
    global g
    t = [u for u in q if u]
    def h():
        nonlocal t
        return p, r, s, v
    class K(p):
        w = t
        def m(self):
            return super().m(w)
    return h, K
`
	first := mustAnalyze(t, src, nil)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, mustAnalyze(t, src, nil)); diff != "" {
			t.Fatalf("run %d differs (-first +got):\n%s", i, diff)
		}
	}
}

// TestFreeCellPairing checks that every free name of a block is a cell
// or a free name of the nearest enclosing function that has it.
func TestFreeCellPairing(t *testing.T) {
	const src = `
def a():
    x = y = 1
    def b():
        def c():
            return x + y
        class D:
            y = 2
            def e(self):
                return y
        return c, D
`
	var check func(table *SymbolTable, enclosing []*SymbolTable)
	check = func(table *SymbolTable, enclosing []*SymbolTable) {
		for name, sym := range table.Symbols {
			if sym.Scope != ScopeFree {
				continue
			}
			found := false
			for i := len(enclosing) - 1; i >= 0; i-- {
				outer := enclosing[i]
				if outer.Type != FunctionBlock {
					continue
				}
				if s, ok := outer.Lookup(name); ok && (s.Scope == ScopeCell || s.Scope == ScopeFree) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("%s: free %s has no enclosing cell", table.Name, name)
			}
		}
		for _, child := range table.Blocks {
			check(child, append(enclosing, table))
		}
	}
	check(mustAnalyze(t, src, nil), nil)
}

func TestFlagsString(t *testing.T) {
	for _, test := range []struct {
		flags Flags
		want  string
	}{
		{0, "0"},
		{DefLocal, "local"},
		{DefLocal | DefUse, "local|use"},
		{DefGlobal | DefFreeClass | DefImport, "global|free_class|import"},
	} {
		if got := test.flags.String(); got != test.want {
			t.Errorf("%d.String() = %q, want %q", test.flags, got, test.want)
		}
		if got, ok := ParseFlags(test.want); !ok || got != test.flags {
			t.Errorf("ParseFlags(%q) = %d, %t", test.want, got, ok)
		}
	}
	if _, ok := ParseFlags("local|bogus"); ok {
		t.Error("ParseFlags accepted an unknown flag")
	}
	if !(DefParam | DefUse).Has(DefUse) || DefUse.Has(DefParam|DefUse) {
		t.Error("Has")
	}
	for s := ScopeUnknown; s <= ScopeCell; s++ {
		if got, ok := ParseScope(s.String()); !ok || got != s {
			t.Errorf("ParseScope(%q) = %v, %t", s, got, ok)
		}
	}
}
