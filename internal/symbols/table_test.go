// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/protodoc/internal/schema"
	"github.com/petar-djukic/protodoc/pkg/types"
)

func parseFile(t *testing.T, path, src string) *types.SourceFile {
	t.Helper()
	result := schema.Parse(path, src)
	require.Empty(t, result.Warnings)
	return result.File
}

func TestBuild_QualifiedNames(t *testing.T) {
	file := parseFile(t, "test.proto", `package example;

message TestMessage {
  string id = 1;

  message TestResult {
    int32 code = 1;
  }
}

enum Color {
  RED = 0;
}

service TestService {
  rpc Run(TestMessage) returns (TestMessage);
}
`)

	table, warnings := Build([]*types.SourceFile{file})
	require.Empty(t, warnings)

	loc, ok := table.Lookup("example.TestMessage")
	require.True(t, ok)
	assert.Equal(t, "test.proto", loc.File)
	assert.Equal(t, "TestMessage", loc.Anchor)

	loc, ok = table.Lookup("example.TestMessage.TestResult")
	require.True(t, ok)
	assert.Equal(t, "TestMessage.TestResult", loc.Anchor)

	_, ok = table.Lookup("example.Color")
	assert.True(t, ok)

	loc, ok = table.Lookup("example.TestService.Run")
	require.True(t, ok)
	assert.Equal(t, "TestService.Run", loc.Anchor)
}

func TestBuild_NoPackage(t *testing.T) {
	file := parseFile(t, "bare.proto", `message Bare { string id = 1; }`)

	table, warnings := Build([]*types.SourceFile{file})
	require.Empty(t, warnings)

	_, ok := table.Lookup("Bare")
	assert.True(t, ok)
}

func TestBuild_DuplicateDefinitionWarns(t *testing.T) {
	a := parseFile(t, "a.proto", `package example;
message User { string id = 1; }`)
	b := parseFile(t, "b.proto", `package example;
message User { string id = 1; }`)

	table, warnings := Build([]*types.SourceFile{a, b})
	require.Len(t, warnings, 1)
	assert.Equal(t, types.DuplicateDefinition, warnings[0].Kind)
	assert.Contains(t, warnings[0].Message, "example.User")
	assert.Contains(t, warnings[0].Message, "a.proto")
	assert.Contains(t, warnings[0].Message, "b.proto")

	// Later definition wins.
	loc, ok := table.Lookup("example.User")
	require.True(t, ok)
	assert.Equal(t, "b.proto", loc.File)
}

func TestDefined_DeclarationOrder(t *testing.T) {
	file := parseFile(t, "order.proto", `package example;

message Zebra { string id = 1; }
message Apple { string id = 1; }
`)

	table, _ := Build([]*types.SourceFile{file})
	assert.Equal(t, []string{"example.Zebra", "example.Apple"}, table.Defined("order.proto"))
}

func TestFileByImport_SuffixMatch(t *testing.T) {
	a := parseFile(t, "schemas/user.proto", `package user;
message User { string id = 1; }`)

	table, _ := Build([]*types.SourceFile{a})

	path, ok := table.FileByImport("user.proto")
	require.True(t, ok)
	assert.Equal(t, "schemas/user.proto", path)

	path, ok = table.FileByImport("schemas/user.proto")
	require.True(t, ok)
	assert.Equal(t, "schemas/user.proto", path)

	_, ok = table.FileByImport("missing.proto")
	assert.False(t, ok)
}
