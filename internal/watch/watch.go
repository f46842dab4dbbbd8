// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package watch re-runs the pipeline when schema files change on disk.
// A change event invalidates exactly one file's cache entry; the cache's
// staleness propagation decides the full re-render set, and the symbol
// table is rebuilt in full on every re-run regardless.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sirupsen/logrus"

	"github.com/petar-djukic/protodoc/internal/cache"
	"github.com/petar-djukic/protodoc/internal/discover"
	"github.com/petar-djukic/protodoc/internal/docgen"
	"github.com/petar-djukic/protodoc/pkg/types"
)

const defaultDebounce = 200 * time.Millisecond

// Config configures a watch session.
type Config struct {
	Paths     []string // Schema paths, directories or files
	OutputDir string
	CachePath string
	Debounce  time.Duration
	Log       logrus.FieldLogger
}

// Watcher owns the fsnotify loop and drives pipeline re-runs.
type Watcher struct {
	cfg      Config
	log      logrus.FieldLogger
	pipeline *docgen.Pipeline
}

// New creates a Watcher around an existing pipeline.
func New(cfg Config, pipeline *docgen.Pipeline) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	log := cfg.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Watcher{cfg: cfg, log: log, pipeline: pipeline}
}

// Run performs an initial full run, then blocks re-running the pipeline
// on file changes until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addWatches(fw); err != nil {
		return err
	}

	if _, err := w.rerun(ctx, nil); err != nil {
		return err
	}

	pending := make(map[string]fsnotify.Op)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					fw.Add(ev.Name)
					continue
				}
			}
			if !strings.HasSuffix(ev.Name, ".proto") || w.underOutput(ev.Name) {
				continue
			}
			pending[ev.Name] |= ev.Op
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			batch := pending
			pending = make(map[string]fsnotify.Op)
			if err := w.handleBatch(ctx, batch); err != nil {
				return err
			}
		case werr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(werr).Warn("watch error")
		}
	}
}

func (w *Watcher) addWatches(fw *fsnotify.Watcher) error {
	for _, p := range w.cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			name := d.Name()
			if name == ".git" || name == "vendor" || name == "node_modules" || w.underOutput(path) {
				return filepath.SkipDir
			}
			return fw.Add(path)
		})
		if walkErr != nil {
			return fmt.Errorf("watching %s: %w", abs, walkErr)
		}
		w.log.WithField("path", abs).Info("watching schema files")
	}
	return nil
}

// handleBatch invalidates the cache entries for the batch's files,
// removes mirrored outputs for deletions, and re-runs the pipeline once.
func (w *Watcher) handleBatch(ctx context.Context, batch map[string]fsnotify.Op) error {
	store, _ := cache.Load(w.cfg.CachePath)
	before := make(map[string]string)

	for abs, op := range batch {
		rel := discover.ProjectRel(abs, w.cfg.Paths)
		store.Invalidate(rel)
		outPath := filepath.Join(w.cfg.OutputDir, filepath.FromSlash(types.OutputPath(rel)))
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			if err := os.Remove(outPath); err == nil {
				w.log.WithField("path", rel).Info("removed document for deleted schema file")
			}
			continue
		}
		if old, err := os.ReadFile(outPath); err == nil {
			before[rel] = string(old)
		}
		w.log.WithField("path", rel).Info("schema file changed")
	}
	if err := store.Save(""); err != nil {
		w.log.WithError(err).Warn("cache invalidation not persisted")
	}

	result, err := w.rerun(ctx, before)
	if err != nil {
		return err
	}
	for _, warning := range result.Report.Warnings {
		w.log.Warn(warning.String())
	}
	return nil
}

func (w *Watcher) rerun(ctx context.Context, before map[string]string) (*docgen.Result, error) {
	inputs, err := discover.Discover(w.cfg.Paths, w.cfg.OutputDir, w.log)
	if err != nil {
		return nil, err
	}
	result, err := w.pipeline.Run(ctx, inputs)
	if err != nil {
		return nil, err
	}

	for rel, old := range before {
		outPath := filepath.Join(w.cfg.OutputDir, filepath.FromSlash(types.OutputPath(rel)))
		current, readErr := os.ReadFile(outPath)
		if readErr != nil {
			continue
		}
		w.log.WithFields(logrus.Fields{
			"path":   rel,
			"change": diffSummary(old, string(current)),
		}).Info("document regenerated")
	}
	return result, nil
}

func (w *Watcher) underOutput(path string) bool {
	absOut, err := filepath.Abs(w.cfg.OutputDir)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return abs == absOut || strings.HasPrefix(abs, absOut+string(filepath.Separator))
}

// diffSummary reports how much of a document changed, compactly.
func diffSummary(old, new string) string {
	if old == new {
		return "unchanged"
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, new, false)
	added, removed := 0, 0
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += len(d.Text)
		case diffmatchpatch.DiffDelete:
			removed += len(d.Text)
		}
	}
	return fmt.Sprintf("+%dB -%dB", added, removed)
}
