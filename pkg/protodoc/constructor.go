// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package protodoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/petar-djukic/protodoc/internal/discover"
	"github.com/petar-djukic/protodoc/internal/docgen"
	"github.com/petar-djukic/protodoc/internal/watch"
)

const defaultCacheFile = ".protodoc-cache.json"

// New validates the config and returns a ready-to-use Generator. It does
// not touch the filesystem beyond validation; discovery happens in Run.
func New(cfg Config) (Generator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)

	log := logrus.New()
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cachePath := cfg.CachePath
	if cfg.NoCache {
		cachePath = ""
	}
	pipeline := docgen.New(docgen.Config{
		OutputDir:   cfg.OutputDir,
		CachePath:   cachePath,
		Concurrency: cfg.Concurrency,
		Log:         log,
	})

	return &generatorAdapter{cfg: cfg, cachePath: cachePath, log: log, pipeline: pipeline}, nil
}

// generatorAdapter adapts internal/docgen.Pipeline to the public
// Generator interface.
type generatorAdapter struct {
	cfg       Config
	cachePath string
	log       logrus.FieldLogger
	pipeline  *docgen.Pipeline
}

func (a *generatorAdapter) Run(ctx context.Context) (*Result, error) {
	inputs, err := discover.Discover(a.cfg.SchemaPaths, a.cfg.OutputDir, a.log)
	if err != nil {
		return nil, err
	}
	ir, err := a.pipeline.Run(ctx, inputs)
	if ir == nil {
		return &Result{}, err
	}
	return &Result{
		RunID:    ir.Report.RunID,
		Rendered: ir.Rendered,
		Skipped:  ir.Skipped,
		NavPath:  ir.NavPath,
		Warnings: ir.Report.Warnings,
	}, err
}

func (a *generatorAdapter) Watch(ctx context.Context) error {
	w := watch.New(watch.Config{
		Paths:     a.cfg.SchemaPaths,
		OutputDir: a.cfg.OutputDir,
		CachePath: a.cachePath,
		Log:       a.log,
	}, a.pipeline)
	return w.Run(ctx)
}

// validateConfig checks that required fields are present.
func validateConfig(cfg Config) error {
	if len(cfg.SchemaPaths) == 0 {
		return fmt.Errorf("SchemaPaths is required")
	}
	for _, p := range cfg.SchemaPaths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("schema path %q does not exist", p)
		}
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("OutputDir is required")
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.CachePath == "" {
		cfg.CachePath = filepath.Join(cfg.OutputDir, defaultCacheFile)
	}
}
