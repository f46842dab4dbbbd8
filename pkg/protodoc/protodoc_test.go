// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package protodoc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresSchemaPaths(t *testing.T) {
	_, err := New(Config{OutputDir: "docs"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_RequiresExistingSchemaPath(t *testing.T) {
	_, err := New(Config{
		SchemaPaths: []string{filepath.Join(t.TempDir(), "missing")},
		OutputDir:   "docs",
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_RequiresOutputDir(t *testing.T) {
	_, err := New(Config{SchemaPaths: []string{t.TempDir()}})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGenerator_RunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	schemaDir := filepath.Join(dir, "schemas")
	require.NoError(t, os.MkdirAll(schemaDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(schemaDir, "user.proto"),
		[]byte("package user;\n\nmessage User {\n  string name = 1;\n}\n"), 0o644))

	gen, err := New(Config{
		SchemaPaths: []string{schemaDir},
		OutputDir:   filepath.Join(dir, "docs"),
	})
	require.NoError(t, err)

	result, err := gen.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []string{"user.md"}, result.Rendered)
	assert.Empty(t, result.Warnings)

	content, err := os.ReadFile(filepath.Join(dir, "docs", "user.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "### User {#User}")

	// The default cache location sits inside the output directory.
	_, err = os.Stat(filepath.Join(dir, "docs", defaultCacheFile))
	assert.NoError(t, err)

	second, err := gen.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second.Rendered)
	assert.Equal(t, []string{"user.proto"}, second.Skipped)
}

func TestGenerator_NoCacheRendersEveryRun(t *testing.T) {
	dir := t.TempDir()
	schemaDir := filepath.Join(dir, "schemas")
	require.NoError(t, os.MkdirAll(schemaDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(schemaDir, "a.proto"),
		[]byte("package a;\n\nmessage A {\n  string id = 1;\n}\n"), 0o644))

	gen, err := New(Config{
		SchemaPaths: []string{schemaDir},
		OutputDir:   filepath.Join(dir, "docs"),
		NoCache:     true,
	})
	require.NoError(t, err)

	_, err = gen.Run(context.Background())
	require.NoError(t, err)
	second, err := gen.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, second.Rendered)
}
