// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.pyscope.net/internal/metrics"
	"go.pyscope.net/pyparse"
	"go.pyscope.net/symtable"
	"go.pyscope.net/syntax"
)

func (a *app) checkCmd() *cobra.Command {
	var jobs int
	var metricsFile string
	cmd := &cobra.Command{
		Use:   "check path...",
		Short: "Report scoping errors in Python files",
		Long: `Check analyzes every file named on the command line, and every file
beneath a named directory that matches the configured include patterns
and no exclude pattern. It prints one line per error or warning and
fails if any file has an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("jobs") {
				a.cfg.Jobs = jobs
			}
			if cmd.Flags().Changed("metrics-file") {
				a.cfg.MetricsFile = metricsFile
			}
			return a.check(cmd.Context(), args)
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "number of files to analyze in parallel")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to `file`")
	return cmd
}

// A diagnostic is one error or warning.
type diagnostic struct {
	pos     string
	warning bool
	msg     string
}

// A result is the outcome of checking one file.
type result struct {
	diags  []diagnostic
	failed bool
}

func (a *app) check(ctx context.Context, args []string) error {
	files, err := a.collect(args)
	if err != nil {
		return err
	}
	a.logger.Debug("checking files", "count", len(files), "jobs", a.cfg.Jobs)

	var m *metrics.Metrics
	if a.cfg.MetricsFile != "" {
		m = metrics.New()
	}

	results := make([]result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.cfg.Jobs))
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.checkFile(file, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	errColor, warnColor := a.colors()
	failed := 0
	for _, r := range results {
		for _, d := range r.diags {
			label := errColor.Sprint("error")
			if d.warning {
				label = warnColor.Sprint("warning")
			}
			fmt.Fprintf(a.stdout, "%s: %s: %s\n", d.pos, label, d.msg)
		}
		if r.failed {
			failed++
		}
	}
	a.logger.Debug("check finished", "files", len(files), "failed", failed)

	if m != nil {
		if err := m.WriteFile(a.cfg.MetricsFile); err != nil {
			return err
		}
		a.logger.Debug("metrics written", "file", a.cfg.MetricsFile)
	}
	if failed > 0 {
		return errFailed
	}
	return nil
}

// collect expands directories among args into the files they contain
// that the configuration selects. Files named explicitly are always
// checked.
func (a *app) collect(args []string) ([]string, error) {
	matcher, err := a.cfg.Matcher()
	if err != nil {
		return nil, err
	}
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(arg, path)
			if err != nil {
				return err
			}
			if matcher.Match(filepath.ToSlash(rel)) {
				files = append(files, path)
			} else {
				a.logger.Debug("skipping file", "path", path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// checkFile parses and analyzes one file.
func (a *app) checkFile(filename string, m *metrics.Metrics) result {
	start := time.Now()
	var r result
	outcome := metrics.ResultOK
	defer func() {
		if m != nil {
			m.ObserveFile(outcome, time.Since(start))
		}
	}()

	src, err := os.ReadFile(filename)
	if err != nil {
		outcome = metrics.ResultReadError
		r.diags = append(r.diags, diagnostic{pos: filename, msg: err.Error()})
		r.failed = true
		return r
	}

	f, err := pyparse.ParseFile(filename, src)
	if err != nil {
		outcome = metrics.ResultSyntaxError
		r.diags = append(r.diags, errorDiagnostic(filename, err))
		r.failed = true
		return r
	}
	if m != nil {
		m.ObserveSyntax(f)
	}

	opts := a.options()
	opts.Warn = func(pos syntax.Position, msg string) {
		r.diags = append(r.diags, diagnostic{pos: pos.String(), warning: true, msg: msg})
	}
	table, err := symtable.File(f, opts)
	if err != nil {
		outcome = metrics.ResultScopeError
		r.diags = append(r.diags, errorDiagnostic(filename, err))
		r.failed = true
		return r
	}
	if m != nil {
		m.ObserveTable(table)
	}
	return r
}

func errorDiagnostic(filename string, err error) diagnostic {
	var serr symtable.Error
	if errors.As(err, &serr) {
		return diagnostic{pos: serr.Pos.String(), msg: serr.Msg}
	}
	var perr syntax.Error
	if errors.As(err, &perr) {
		return diagnostic{pos: perr.Pos.String(), msg: perr.Msg}
	}
	return diagnostic{pos: filename, msg: err.Error()}
}
