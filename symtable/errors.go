// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable

import (
	"fmt"

	"go.pyscope.net/syntax"
)

// An ErrorKind identifies the rule an erroneous program violates.
type ErrorKind uint8

const (
	DuplicateParam         ErrorKind = iota + 1 // def f(x, x)
	GlobalParamConflict                         // def f(x): global x
	NonlocalParamConflict                       // def f(x): nonlocal x
	NonlocalGlobalConflict                      // global x; nonlocal x
	NoBindingForNonlocal                        // nonlocal x, but no enclosing function binds x
	NonlocalAtModuleLevel                       // nonlocal at module scope
	TooDeeplyNested                             // nesting exceeds Options.MaxDepth
)

var errorKindNames = [...]string{
	DuplicateParam:         "DuplicateParam",
	GlobalParamConflict:    "GlobalParamConflict",
	NonlocalParamConflict:  "NonlocalParamConflict",
	NonlocalGlobalConflict: "NonlocalGlobalConflict",
	NoBindingForNonlocal:   "NoBindingForNonlocal",
	NonlocalAtModuleLevel:  "NonlocalAtModuleLevel",
	TooDeeplyNested:        "TooDeeplyNested",
}

func (k ErrorKind) String() string {
	if k == 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
	return errorKindNames[k]
}

// An Error describes the nature and position of a scoping error.
// Scoping errors are fatal: the pass stops at the first one.
type Error struct {
	Kind ErrorKind
	Pos  syntax.Position
	Msg  string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

func errorf(kind ErrorKind, pos syntax.Position, format string, args ...interface{}) Error {
	return Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func duplicateParam(pos syntax.Position, name string) Error {
	return errorf(DuplicateParam, pos, "duplicate argument '%s' in function definition", name)
}

func globalParamConflict(pos syntax.Position, name string) Error {
	return errorf(GlobalParamConflict, pos, "name '%s' is parameter and global", name)
}

func nonlocalParamConflict(pos syntax.Position, name string) Error {
	return errorf(NonlocalParamConflict, pos, "name '%s' is parameter and nonlocal", name)
}

func nonlocalGlobalConflict(pos syntax.Position, name string) Error {
	return errorf(NonlocalGlobalConflict, pos, "name '%s' is nonlocal and global", name)
}

func noBindingForNonlocal(pos syntax.Position, name string) Error {
	return errorf(NoBindingForNonlocal, pos, "no binding for nonlocal '%s' found", name)
}

func nonlocalAtModuleLevel(pos syntax.Position) Error {
	return errorf(NonlocalAtModuleLevel, pos, "nonlocal declaration not allowed at module level")
}

func tooDeeplyNested(pos syntax.Position) Error {
	return errorf(TooDeeplyNested, pos, "maximum recursion depth exceeded during compilation")
}
