// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package docgen wires the pipeline: parallel parse, symbol table barrier,
// parallel render, cache-gated writes. Parsing is stateless per file and
// runs concurrently; the symbol table build is a strict barrier and the
// table is frozen before any rendering starts; rendering then fans out
// again, with each render writing only its own cache entry.
package docgen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/petar-djukic/protodoc/internal/cache"
	"github.com/petar-djukic/protodoc/internal/render"
	"github.com/petar-djukic/protodoc/internal/schema"
	"github.com/petar-djukic/protodoc/internal/symbols"
	"github.com/petar-djukic/protodoc/pkg/types"
)

// NavFileName is the navigation description written beside the docs.
const NavFileName = "nav.yml"

// Config configures a pipeline run.
type Config struct {
	OutputDir   string
	CachePath   string // "" disables persistence; every run renders everything
	Concurrency int    // <= 0 means runtime.NumCPU()
	Log         logrus.FieldLogger
}

// Result is what a run hands back to the host.
type Result struct {
	Report   types.Report
	Rendered []string // Output document paths written this run
	Skipped  []string // Source paths skipped as unchanged
	NavPath  string
}

// Pipeline runs the parse/resolve/render/cache cycle over a file set.
type Pipeline struct {
	cfg Config
	log logrus.FieldLogger
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	log := cfg.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Pipeline{cfg: cfg, log: log}
}

// Run executes one full cycle over the given inputs and returns the run
// report. Warnings accumulate in the report and never abort the run; only
// host-level I/O failure (unwritable output) returns an error.
func (p *Pipeline) Run(ctx context.Context, inputs []types.Input) (*Result, error) {
	result := &Result{Report: types.Report{RunID: uuid.NewString()}}

	current := make(map[string]string, len(inputs))
	for _, in := range inputs {
		current[in.Path] = cache.Fingerprint(in.Content)
	}

	// Stage 1: parse every file, concurrently and independently.
	parsed := make([]*schema.Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parsed[i] = schema.Parse(in.Path, in.Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	files := make([]*types.SourceFile, len(inputs))
	for i, pr := range parsed {
		pr.File.Fingerprint = current[pr.File.Path]
		files[i] = pr.File
		for _, w := range pr.Warnings {
			result.Report.Add(w)
		}
	}

	// Stage 2: the resolution barrier. The table covers every file and is
	// read-only from here on.
	table, dupWarnings := symbols.Build(files)
	for _, w := range dupWarnings {
		result.Report.Add(w)
	}
	resolver := symbols.NewResolver(table)
	p.log.WithFields(logrus.Fields{"files": len(files), "symbols": table.Len()}).Debug("symbol table built")

	// Stage 3: decide what needs re-rendering.
	store, warn := cache.Load(p.cfg.CachePath)
	if warn != nil {
		result.Report.Add(*warn)
		p.log.Warn(warn.Message)
	}
	defines := make(map[string][]string, len(files))
	for _, f := range files {
		defines[f.Path] = table.Defined(f.Path)
	}
	stale := store.Stale(current, defines)
	store.Prune(current)

	// Stage 4: render and write the stale set, concurrently. Each file
	// touches only its own output and cache entry.
	docWarnings := make([][]types.Warning, len(files))
	renderedIdx := make([]string, len(files))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, f := range files {
		if !stale[f.Path] {
			result.Skipped = append(result.Skipped, f.Path)
			// Replay the skipped file's render-time warnings so a
			// persisting condition stays visible on incremental runs.
			if entry, ok := store.Entry(f.Path); ok {
				docWarnings[i] = entry.Warnings
			}
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc := render.File(f, table, resolver)
			if err := p.writeDoc(doc); err != nil {
				return err
			}
			store.Update(cache.Entry{
				Path:        f.Path,
				Fingerprint: f.Fingerprint,
				Defines:     defines[f.Path],
				References:  doc.References,
				Output:      doc.Path,
				Warnings:    doc.Warnings,
			})
			docWarnings[i] = doc.Warnings
			renderedIdx[i] = doc.Path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	for i := range files {
		for _, w := range docWarnings[i] {
			result.Report.Add(w)
		}
		if renderedIdx[i] != "" {
			result.Rendered = append(result.Rendered, renderedIdx[i])
		}
	}
	sort.Strings(result.Rendered)
	sort.Strings(result.Skipped)

	// Stage 5: navigation covers the whole file set, not just the stale
	// part, and is rewritten only when its bytes change.
	navPath, err := p.writeNav(files)
	if err != nil {
		return result, err
	}
	result.NavPath = navPath

	if err := store.Save(result.Report.RunID); err != nil {
		p.log.WithError(err).Warn("cache not saved; next run rebuilds everything")
	}

	p.log.WithFields(logrus.Fields{
		"rendered": len(result.Rendered),
		"skipped":  len(result.Skipped),
		"warnings": len(result.Report.Warnings),
	}).Info("run complete")
	return result, nil
}

func (p *Pipeline) writeDoc(doc *render.Document) error {
	out := filepath.Join(p.cfg.OutputDir, filepath.FromSlash(doc.Path))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output directory for %s: %w", doc.Path, err)
	}
	if err := os.WriteFile(out, []byte(doc.Content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", doc.Path, err)
	}
	p.log.WithField("path", doc.Path).Debug("document written")
	return nil
}

// writeNav renders the navigation tree to nav.yml, skipping the write
// when the content is unchanged so an idempotent run touches nothing.
func (p *Pipeline) writeNav(files []*types.SourceFile) (string, error) {
	tree := render.Nav(files)
	data, err := yaml.Marshal(tree.Children)
	if err != nil {
		return "", fmt.Errorf("encoding navigation: %w", err)
	}

	navPath := filepath.Join(p.cfg.OutputDir, NavFileName)
	if existing, err := os.ReadFile(navPath); err == nil && bytes.Equal(existing, data) {
		return navPath, nil
	}
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(navPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing navigation: %w", err)
	}
	return navPath, nil
}
