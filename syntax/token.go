// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import "fmt"

// A Token represents a lexical token: an operator, a keyword,
// or the kind of a literal.
type Token int8

const (
	ILLEGAL Token = iota

	// Literal kinds
	IDENT  // x
	INT    // 123
	FLOAT  // 1.23e45
	STRING // "foo" or 'foo' or '''foo''' or r'foo' or r"foo"
	BYTES  // b"foo", etc

	// Punctuation
	PLUS          // +
	MINUS         // -
	STAR          // *
	SLASH         // /
	SLASHSLASH    // //
	PERCENT       // %
	STARSTAR      // **
	AT            // @
	AMP           // &
	PIPE          // |
	CIRCUMFLEX    // ^
	TILDE         // ~
	LTLT          // <<
	GTGT          // >>
	LT            // <
	GT            // >
	LE            // <=
	GE            // >=
	EQL           // ==
	NEQ           // !=
	EQ            // =
	COLON         // :
	PLUS_EQ       // +=
	MINUS_EQ      // -=
	STAR_EQ       // *=
	SLASH_EQ      // /=
	SLASHSLASH_EQ // //=
	PERCENT_EQ    // %=
	STARSTAR_EQ   // **=
	AT_EQ         // @=
	AMP_EQ        // &=
	PIPE_EQ       // |=
	CIRCUMFLEX_EQ // ^=
	LTLT_EQ       // <<=
	GTGT_EQ       // >>=

	// Keywords
	AND
	AWAIT
	BREAK
	CONTINUE
	ELLIPSIS
	FALSE
	IN
	IS
	IS_NOT
	NONE
	NOT
	NOT_IN
	OR
	PASS
	TRUE
)

var tokenNames = [...]string{
	ILLEGAL:       "illegal token",
	IDENT:         "identifier",
	INT:           "int literal",
	FLOAT:         "float literal",
	STRING:        "string literal",
	BYTES:         "bytes literal",
	PLUS:          "+",
	MINUS:         "-",
	STAR:          "*",
	SLASH:         "/",
	SLASHSLASH:    "//",
	PERCENT:       "%",
	STARSTAR:      "**",
	AT:            "@",
	AMP:           "&",
	PIPE:          "|",
	CIRCUMFLEX:    "^",
	TILDE:         "~",
	LTLT:          "<<",
	GTGT:          ">>",
	LT:            "<",
	GT:            ">",
	LE:            "<=",
	GE:            ">=",
	EQL:           "==",
	NEQ:           "!=",
	EQ:            "=",
	COLON:         ":",
	PLUS_EQ:       "+=",
	MINUS_EQ:      "-=",
	STAR_EQ:       "*=",
	SLASH_EQ:      "/=",
	SLASHSLASH_EQ: "//=",
	PERCENT_EQ:    "%=",
	STARSTAR_EQ:   "**=",
	AT_EQ:         "@=",
	AMP_EQ:        "&=",
	PIPE_EQ:       "|=",
	CIRCUMFLEX_EQ: "^=",
	LTLT_EQ:       "<<=",
	GTGT_EQ:       ">>=",
	AND:           "and",
	AWAIT:         "await",
	BREAK:         "break",
	CONTINUE:      "continue",
	ELLIPSIS:      "...",
	FALSE:         "False",
	IN:            "in",
	IS:            "is",
	IS_NOT:        "is not",
	NONE:          "None",
	NOT:           "not",
	NOT_IN:        "not in",
	OR:            "or",
	PASS:          "pass",
	TRUE:          "True",
}

func (tok Token) String() string {
	if tok < 0 || int(tok) >= len(tokenNames) {
		return fmt.Sprintf("token(%d)", int(tok))
	}
	return tokenNames[tok]
}

// GoString is like String but quotes punctuation tokens.
// Use Sprintf("%#v", tok) when constructing error messages.
func (tok Token) GoString() string {
	if tok >= PLUS && tok <= GTGT_EQ {
		return "'" + tokenNames[tok] + "'"
	}
	return tokenNames[tok]
}

var operators = make(map[string]Token)

func init() {
	for tok := PLUS; tok <= TRUE; tok++ {
		operators[tokenNames[tok]] = tok
	}
}

// LookupOperator returns the token spelled s,
// or ILLEGAL if s is not an operator or keyword.
func LookupOperator(s string) Token {
	return operators[s]
}
