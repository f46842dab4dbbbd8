// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package protodoc defines the public interface for protodoc, a
// protobuf-schema-to-Markdown documentation generator library.
package protodoc

import (
	"context"
	"errors"

	"github.com/petar-djukic/protodoc/pkg/types"
)

// Error types for the Generator API.
var (
	ErrInvalidConfig = errors.New("invalid config")
)

// Config configures a Generator instance.
type Config struct {
	SchemaPaths []string // Directories or files to scan for schemas (required)
	OutputDir   string   // Where documents and nav.yml are written (required)
	CachePath   string   // Cache file location (empty = OutputDir/.protodoc-cache.json)
	Concurrency int      // Parallel parse/render workers (default NumCPU)
	NoCache     bool     // Disable persistence; every run renders everything
	Verbose     bool     // Log at debug level
}

// Result holds the outcome of a Generator.Run invocation.
type Result struct {
	RunID    string          // Identifies the run in logs and the cache
	Rendered []string        // Output document paths written this run
	Skipped  []string        // Source paths skipped as unchanged
	NavPath  string          // Path to the written navigation file
	Warnings []types.Warning // Everything recoverable that went wrong
}

// Generator turns a tree of schema files into Markdown documentation.
type Generator interface {
	// Run executes one full generation cycle: discover schema files,
	// parse them, build the symbol table, render changed documents, and
	// write the navigation tree. Warnings never abort a run.
	Run(ctx context.Context) (*Result, error)

	// Watch runs once, then re-generates on file changes until the
	// context is canceled.
	Watch(ctx context.Context) error
}
