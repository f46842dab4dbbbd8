// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package docgen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/petar-djukic/protodoc/pkg/types"
)

// fixture unpacks a txtar archive into pipeline inputs.
func fixture(t *testing.T, archive string) []types.Input {
	t.Helper()
	ar := txtar.Parse([]byte(archive))
	inputs := make([]types.Input, 0, len(ar.Files))
	for _, f := range ar.Files {
		inputs = append(inputs, types.Input{Path: f.Name, Content: string(f.Data)})
	}
	return inputs
}

const crossRefFixture = `
-- user.proto --
syntax = "proto3";
package user;

// A user of the system.
message User {
  string name = 1;
}
-- example/document/v1/data.proto --
syntax = "proto3";
package example.document.v1;

import "user.proto";

message Data {
  user.User owner = 1;
}
`

func newTestPipeline(t *testing.T) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	p := New(Config{
		OutputDir: filepath.Join(dir, "docs"),
		CachePath: filepath.Join(dir, "cache.json"),
	})
	return p, dir
}

func TestRun_RendersAllFilesAndNav(t *testing.T) {
	p, dir := newTestPipeline(t)

	result, err := p.Run(context.Background(), fixture(t, crossRefFixture))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Report.RunID)
	assert.Empty(t, result.Report.Warnings)
	assert.Equal(t, []string{"example/document/v1/data.md", "user.md"}, result.Rendered)
	assert.Empty(t, result.Skipped)

	data, err := os.ReadFile(filepath.Join(dir, "docs", "example", "document", "v1", "data.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[user.User](../../../user.md#User)")

	nav, err := os.ReadFile(result.NavPath)
	require.NoError(t, err)
	assert.Contains(t, string(nav), "user: user.md")
	assert.Contains(t, string(nav), "example.document.v1: example/document/v1/data.md")
}

func TestRun_SecondRunSkipsEverything(t *testing.T) {
	p, dir := newTestPipeline(t)
	inputs := fixture(t, crossRefFixture)

	_, err := p.Run(context.Background(), inputs)
	require.NoError(t, err)

	navPath := filepath.Join(dir, "docs", NavFileName)
	navBefore, err := os.Stat(navPath)
	require.NoError(t, err)

	second, err := p.Run(context.Background(), inputs)
	require.NoError(t, err)
	assert.Empty(t, second.Rendered)
	assert.Equal(t, []string{"example/document/v1/data.proto", "user.proto"}, second.Skipped)

	// nav.yml bytes were unchanged, so it was not rewritten.
	navAfter, err := os.Stat(navPath)
	require.NoError(t, err)
	assert.Equal(t, navBefore.ModTime(), navAfter.ModTime())
}

func TestRun_ChangeRerendersDependents(t *testing.T) {
	p, _ := newTestPipeline(t)
	inputs := fixture(t, crossRefFixture)

	_, err := p.Run(context.Background(), inputs)
	require.NoError(t, err)

	// Rename the User message; data.proto references it and must follow.
	changed := make([]types.Input, len(inputs))
	copy(changed, inputs)
	for i := range changed {
		if changed[i].Path == "user.proto" {
			changed[i].Content = strings.Replace(changed[i].Content, "message User", "message Account", 1)
		}
	}

	result, err := p.Run(context.Background(), changed)
	require.NoError(t, err)
	assert.Contains(t, result.Rendered, "user.md")
	assert.Contains(t, result.Rendered, "example/document/v1/data.md")

	// user.User no longer exists; data.proto now carries an unresolved
	// reference warning.
	assert.Equal(t, 1, result.Report.CountKind(types.UnresolvedReference))
}

func TestRun_ParseWarningsReachReport(t *testing.T) {
	p, _ := newTestPipeline(t)

	result, err := p.Run(context.Background(), fixture(t, `
-- broken.proto --
package broken;

message Broken {
  string = 1;
  string ok = 2;
}
`))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Report.CountKind(types.ParseWarning))
	assert.Equal(t, []string{"broken.md"}, result.Rendered)
}

// A still-unresolved type in an unchanged file must keep appearing in the
// report even when the cache skips the render.
func TestRun_WarningsReplayedOnCachedRun(t *testing.T) {
	p, _ := newTestPipeline(t)
	inputs := fixture(t, `
-- dangling.proto --
package dangling;

message D {
  missing.Type what = 1;
}
`)

	first, err := p.Run(context.Background(), inputs)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Report.CountKind(types.UnresolvedReference))

	second, err := p.Run(context.Background(), inputs)
	require.NoError(t, err)
	assert.Empty(t, second.Rendered)
	assert.Equal(t, 1, second.Report.CountKind(types.UnresolvedReference))
}

// A file that rendered a mention as plain text re-renders when a later
// run first defines that type, without its own content changing.
func TestRun_NewDefinitionRerendersUnresolvedFile(t *testing.T) {
	p, dir := newTestPipeline(t)
	data := types.Input{
		Path: "example/document/v1/data.proto",
		Content: `package example.document.v1;

message Data {
  user.User owner = 1;
}
`,
	}

	first, err := p.Run(context.Background(), []types.Input{data})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Report.CountKind(types.UnresolvedReference))

	user := types.Input{
		Path: "user.proto",
		Content: `package user;

message User {
  string name = 1;
}
`,
	}
	second, err := p.Run(context.Background(), []types.Input{data, user})
	require.NoError(t, err)
	assert.Equal(t, []string{"example/document/v1/data.md", "user.md"}, second.Rendered)
	assert.Equal(t, 0, second.Report.CountKind(types.UnresolvedReference))

	rendered, err := os.ReadFile(filepath.Join(dir, "docs", "example", "document", "v1", "data.md"))
	require.NoError(t, err)
	assert.Contains(t, string(rendered), "[user.User](../../../user.md#User)")
}

func TestRun_CorruptCacheForcesFullRebuild(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.json")
	require.NoError(t, os.WriteFile(cachePath, []byte("garbage"), 0o644))

	p := New(Config{OutputDir: filepath.Join(dir, "docs"), CachePath: cachePath})
	result, err := p.Run(context.Background(), fixture(t, crossRefFixture))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Report.CountKind(types.CacheInvalid))
	assert.Len(t, result.Rendered, 2)
}

func TestRun_NoCachePathRendersEveryRun(t *testing.T) {
	dir := t.TempDir()
	p := New(Config{OutputDir: filepath.Join(dir, "docs")})
	inputs := fixture(t, crossRefFixture)

	_, err := p.Run(context.Background(), inputs)
	require.NoError(t, err)

	second, err := p.Run(context.Background(), inputs)
	require.NoError(t, err)
	assert.Len(t, second.Rendered, 2)
	assert.Empty(t, second.Skipped)
}

func TestRun_DeletedFilePrunedFromCache(t *testing.T) {
	p, dir := newTestPipeline(t)
	inputs := fixture(t, crossRefFixture)

	_, err := p.Run(context.Background(), inputs)
	require.NoError(t, err)

	var remaining []types.Input
	for _, in := range inputs {
		if in.Path != "user.proto" {
			remaining = append(remaining, in)
		}
	}

	result, err := p.Run(context.Background(), remaining)
	require.NoError(t, err)
	// data.proto depended on user.User, which vanished with its file.
	assert.Equal(t, []string{"example/document/v1/data.md"}, result.Rendered)

	nav, err := os.ReadFile(filepath.Join(dir, "docs", NavFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(nav), "user: user.md")
}
