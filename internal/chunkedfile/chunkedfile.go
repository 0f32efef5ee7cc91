// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chunkedfile provides utilities for testing that scoping
// errors and warnings are reported in the appropriate places.
//
// A chunked file consists of several chunks of Python source separated
// by "---" lines. Each chunk is an input to the program under test.
// Lines containing "###" are interpreted as expectations: the following
// text is a Go string literal denoting a regular expression that should
// match the error reported for that line. An expectation of the form
// ### warning "regexp" matches a warning instead.
//
// Example:
//
//	def f():
//	    nonlocal x ### "no binding for nonlocal 'x' found"
//	---
//	def g():
//	    x = 1
//	    global x ### warning "assigned to before global declaration"
//
// A chunk may also contain option directives such as "option:inline",
// which the client queries with Chunk.Option.
//
// A client test feeds each chunk of text into the program under test,
// then calls chunk.GotError or chunk.GotWarning for each diagnostic
// that actually occurred. Any discrepancy between the actual and
// expected diagnostics is reported using the client's reporter, which
// is typically a testing.T.
package chunkedfile // import "go.pyscope.net/internal/chunkedfile"

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

const debug = false

// A Chunk is a portion of a source file.
// It contains a set of expected errors and warnings.
type Chunk struct {
	Source       string
	filename     string
	report       Reporter
	wantErrs     map[int]*regexp.Regexp
	wantWarnings map[int]*regexp.Regexp
}

// Reporter is implemented by *testing.T.
type Reporter interface {
	Errorf(format string, args ...interface{})
}

// Read parses a chunked file and returns its chunks.
// It reports failures using the reporter.
//
// Error messages of the form "file.py:line:col: ..." are prefixed
// by a newline so that the Go source position added by (*testing.T).Errorf
// appears on a separate line so as not to confused editors.
func Read(filename string, report Reporter) (chunks []Chunk) {
	data, err := os.ReadFile(filename)
	if err != nil {
		report.Errorf("%s", err)
		return
	}
	eol := "\n"
	if runtime.GOOS == "windows" {
		eol = "\r\n"
	}
	return readBytes(filename, data, report, eol)
}

func readBytes(filename string, data []byte, report Reporter, eol string) (chunks []Chunk) {
	linenum := 1
	for i, chunk := range strings.Split(string(data), eol+"---"+eol) {
		if debug {
			fmt.Printf("chunk %d at line %d: %s\n", i, linenum, chunk)
		}
		// Pad with newlines so the line numbers match the original file.
		src := strings.Repeat("\n", linenum-1) + chunk

		wantErrs := make(map[int]*regexp.Regexp)
		wantWarnings := make(map[int]*regexp.Regexp)

		// Parse comments of the form:
		// ### "expected error".
		// ### warning "expected warning".
		lines := strings.Split(chunk, "\n")
		for j := 0; j < len(lines); j, linenum = j+1, linenum+1 {
			line := lines[j]
			hashes := strings.Index(line, "###")
			if hashes < 0 {
				continue
			}
			rest := strings.TrimSpace(line[hashes+len("###"):])
			want := wantErrs
			if r := strings.TrimPrefix(rest, "warning "); r != rest {
				rest, want = strings.TrimSpace(r), wantWarnings
			}
			pattern, err := strconv.Unquote(rest)
			if err != nil {
				report.Errorf("\n%s:%d: not a quoted regexp: %s", filename, linenum, rest)
				continue
			}
			rx, err := regexp.Compile(pattern)
			if err != nil {
				report.Errorf("\n%s:%d: %v", filename, linenum, err)
				continue
			}
			want[linenum] = rx
			if debug {
				fmt.Printf("\t%d\t%s\n", linenum, rx)
			}
		}
		linenum++

		chunks = append(chunks, Chunk{src, filename, report, wantErrs, wantWarnings})
	}
	return chunks
}

// Option reports whether the chunk contains the directive "option:name".
func (chunk *Chunk) Option(name string) bool {
	return strings.Contains(chunk.Source, "option:"+name)
}

// GotError should be called by the client to report an error at a particular line.
// GotError reports unexpected errors to the chunk's reporter.
func (chunk *Chunk) GotError(linenum int, msg string) {
	chunk.got("error", chunk.wantErrs, linenum, msg)
}

// GotWarning is like GotError, for warnings.
func (chunk *Chunk) GotWarning(linenum int, msg string) {
	chunk.got("warning", chunk.wantWarnings, linenum, msg)
}

func (chunk *Chunk) got(what string, want map[int]*regexp.Regexp, linenum int, msg string) {
	if rx, ok := want[linenum]; ok {
		delete(want, linenum)
		if !rx.MatchString(msg) {
			chunk.report.Errorf("\n%s:%d: %s %q does not match pattern %q", chunk.filename, linenum, what, msg, rx)
		}
	} else {
		chunk.report.Errorf("\n%s:%d: unexpected %s: %v", chunk.filename, linenum, what, msg)
	}
}

// Done should be called by the client to indicate that the chunk has no more errors.
// Done reports expected errors and warnings that did not occur to the chunk's reporter.
func (chunk *Chunk) Done() {
	for linenum, rx := range chunk.wantErrs {
		chunk.report.Errorf("\n%s:%d: expected error matching %q", chunk.filename, linenum, rx)
	}
	for linenum, rx := range chunk.wantWarnings {
		chunk.report.Errorf("\n%s:%d: expected warning matching %q", chunk.filename, linenum, rx)
	}
}
