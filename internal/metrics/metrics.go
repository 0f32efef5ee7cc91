// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics collects Prometheus metrics for a batch analysis run
// and writes them in the node exporter's textfile format.
package metrics // import "go.pyscope.net/internal/metrics"

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"go.pyscope.net/symtable"
	"go.pyscope.net/syntax"
)

// File outcomes, used as the "result" label.
const (
	ResultOK          = "ok"
	ResultSyntaxError = "syntax_error"
	ResultScopeError  = "scope_error"
	ResultReadError   = "read_error"
)

// Metrics holds the collectors of one run. Methods are safe for
// concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	Files       *prometheus.CounterVec
	Identifiers prometheus.Counter
	Blocks      *prometheus.CounterVec
	Symbols     *prometheus.CounterVec
	Duration    prometheus.Histogram
}

// New returns metrics registered in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Files: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pyscope_files_total",
			Help: "Total number of files analyzed, by outcome.",
		}, []string{"result"}),
		Identifiers: factory.NewCounter(prometheus.CounterOpts{
			Name: "pyscope_identifiers_total",
			Help: "Total number of identifier occurrences in successfully parsed files.",
		}),
		Blocks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pyscope_blocks_total",
			Help: "Total number of blocks in the symbol tables produced, by block type.",
		}, []string{"type"}),
		Symbols: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pyscope_symbols_total",
			Help: "Total number of symbols in the symbol tables produced, by scope.",
		}, []string{"scope"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pyscope_analysis_seconds",
			Help:    "Time spent parsing and analyzing a source file.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveFile records the outcome of one file.
func (m *Metrics) ObserveFile(result string, elapsed time.Duration) {
	m.Files.WithLabelValues(result).Inc()
	m.Duration.Observe(elapsed.Seconds())
}

// ObserveSyntax counts the identifiers of a parsed file.
func (m *Metrics) ObserveSyntax(f *syntax.File) {
	n := 0
	syntax.Walk(f, func(node syntax.Node) bool {
		if _, ok := node.(*syntax.Ident); ok {
			n++
		}
		return true
	})
	m.Identifiers.Add(float64(n))
}

// ObserveTable counts the blocks and symbols of a symbol table tree.
func (m *Metrics) ObserveTable(t *symtable.SymbolTable) {
	m.Blocks.WithLabelValues(t.Type.String()).Inc()
	for _, sym := range t.Symbols {
		m.Symbols.WithLabelValues(sym.Scope.String()).Inc()
	}
	for _, child := range t.Blocks {
		m.ObserveTable(child)
	}
}

// WriteFile writes the metrics to filename atomically.
func (m *Metrics) WriteFile(filename string) error {
	return prometheus.WriteToTextfile(filename, m.registry)
}
