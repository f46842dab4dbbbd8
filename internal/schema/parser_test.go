// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/protodoc/pkg/types"
)

func TestParse_FileHeader(t *testing.T) {
	src := `syntax = "proto3";

package example.document.v1;

import "user.proto";
import public "common/types.proto";

option go_package = "example.com/document/v1";
`

	result := Parse("example/document/v1/data.proto", src)
	require.Empty(t, result.Warnings)
	assert.Equal(t, "example.document.v1", result.File.Package)
	assert.Equal(t, []string{"user.proto", "common/types.proto"}, result.File.Imports)
}

func TestParse_MessageFields(t *testing.T) {
	src := `syntax = "proto3";
package example;

// A user of the system.
message User {
  string name = 1; // Display name.
  int64 id = 2;
  repeated string emails = 3;
  map<string, int64> scores = 4;
  optional bool active = 5 [deprecated = true];
}
`

	result := Parse("user.proto", src)
	require.Empty(t, result.Warnings)
	require.Len(t, result.File.Messages, 1)

	msg := result.File.Messages[0]
	assert.Equal(t, "User", msg.Name)
	assert.Equal(t, "User", msg.FullName)
	assert.Equal(t, "A user of the system.", msg.Comment)
	require.Len(t, msg.Fields, 5)

	assert.Equal(t, "name", msg.Fields[0].Name)
	assert.Equal(t, "1", msg.Fields[0].Number)
	assert.Equal(t, "Display name.", msg.Fields[0].Comment)
	assert.Equal(t, types.ScalarRef, msg.Fields[0].Type.Kind)

	assert.Equal(t, "id", msg.Fields[1].Name)
	assert.Equal(t, "2", msg.Fields[1].Number)
	assert.Equal(t, "", msg.Fields[1].Comment)

	assert.Equal(t, "repeated", msg.Fields[2].Modifier)

	assert.Equal(t, "map<string, int64>", msg.Fields[3].Type.Raw)
	assert.Equal(t, types.ScalarRef, msg.Fields[3].Type.Kind)

	assert.Equal(t, "optional", msg.Fields[4].Modifier)
	assert.Equal(t, "deprecated = true", msg.Fields[4].Options)
}

func TestParse_NestedMessageAnchors(t *testing.T) {
	src := `package example;

message TestMessage {
  string id = 1;

  message TestResult {
    int32 code = 1;

    enum Status {
      UNKNOWN = 0;
      PASSED = 1;
    }
  }
}
`

	result := Parse("test.proto", src)
	require.Empty(t, result.Warnings)
	require.Len(t, result.File.Messages, 1)

	outer := result.File.Messages[0]
	require.Len(t, outer.Messages, 1)
	inner := outer.Messages[0]
	assert.Equal(t, "TestResult", inner.Name)
	assert.Equal(t, "TestMessage.TestResult", inner.FullName)

	require.Len(t, inner.Enums, 1)
	assert.Equal(t, "TestMessage.TestResult.Status", inner.Enums[0].FullName)
	require.Len(t, inner.Enums[0].Values, 2)
	assert.Equal(t, "UNKNOWN", inner.Enums[0].Values[0].Name)
	assert.Equal(t, "0", inner.Enums[0].Values[0].Number)
}

func TestParse_TrailingCommentWins(t *testing.T) {
	src := `package example;

message Thing {
  // Leading description.
  string name = 1; // Trailing description.
}
`

	result := Parse("thing.proto", src)
	require.Empty(t, result.Warnings)
	require.Len(t, result.File.Messages[0].Fields, 1)
	assert.Equal(t, "Trailing description.", result.File.Messages[0].Fields[0].Comment)
}

func TestParse_LeadingCommentParagraphs(t *testing.T) {
	src := `package example;

// First paragraph spans
// two source lines.
//
// Second paragraph.
message Thing {
  string name = 1;
}
`

	result := Parse("thing.proto", src)
	require.Len(t, result.File.Messages, 1)
	assert.Equal(t, "First paragraph spans two source lines.\n\nSecond paragraph.", result.File.Messages[0].Comment)
}

func TestParse_BlockCommentCleaned(t *testing.T) {
	src := `package example;

/*
 * Stores a document.
 *
 * Documents are immutable.
 */
message Document {
  string id = 1;
}
`

	result := Parse("doc.proto", src)
	require.Len(t, result.File.Messages, 1)
	assert.Equal(t, "Stores a document.\n\nDocuments are immutable.", result.File.Messages[0].Comment)
}

func TestParse_RecoversFromMalformedField(t *testing.T) {
	src := `package example;

message Broken {
  string = 1;
  string ok = 2;
}

message Fine {
  int32 n = 1;
}
`

	result := Parse("broken.proto", src)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, types.ParseWarning, result.Warnings[0].Kind)
	assert.Equal(t, 4, result.Warnings[0].Line)

	require.Len(t, result.File.Messages, 2)
	require.Len(t, result.File.Messages[0].Fields, 1)
	assert.Equal(t, "ok", result.File.Messages[0].Fields[0].Name)
	assert.Equal(t, "Fine", result.File.Messages[1].Name)
}

func TestParse_UnrecognizedTopLevelSkipped(t *testing.T) {
	src := `package example;

extend google.protobuf.FieldOptions {
  string tag = 50000;
}

message Kept {
  string id = 1;
}
`

	result := Parse("ext.proto", src)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "extend")
	require.Len(t, result.File.Messages, 1)
	assert.Equal(t, "Kept", result.File.Messages[0].Name)
}

func TestParse_DuplicateFieldNumbersKeptAndReported(t *testing.T) {
	src := `package example;

message Clash {
  string a = 4;
  string b = 4;
}
`

	result := Parse("clash.proto", src)

	// Both rows survive; the collision surfaces as a report entry.
	require.Len(t, result.File.Messages[0].Fields, 2)
	assert.Equal(t, "4", result.File.Messages[0].Fields[0].Number)
	assert.Equal(t, "4", result.File.Messages[0].Fields[1].Number)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, types.DuplicateFieldNumber, result.Warnings[0].Kind)
	assert.Equal(t, 5, result.Warnings[0].Line)
	assert.Contains(t, result.Warnings[0].Message, "b")
	assert.Contains(t, result.Warnings[0].Message, "4")
}

func TestParse_SameNumberInSiblingMessagesAccepted(t *testing.T) {
	src := `package example;

message A {
  string x = 1;
}

message B {
  string y = 1;
}
`

	result := Parse("siblings.proto", src)
	require.Empty(t, result.Warnings)
}

func TestParse_Service(t *testing.T) {
	src := `package example;

// Manages documents.
service DocumentService {
  // Fetches one document.
  rpc GetDocument(GetDocumentRequest) returns (Document);
  rpc WatchDocuments(WatchRequest) returns (stream Document) {
    option (google.api.http) = { get: "/v1/documents" };
  }
}
`

	result := Parse("svc.proto", src)
	require.Empty(t, result.Warnings)
	require.Len(t, result.File.Services, 1)

	svc := result.File.Services[0]
	assert.Equal(t, "DocumentService", svc.Name)
	assert.Equal(t, "Manages documents.", svc.Comment)
	require.Len(t, svc.Methods, 2)

	assert.Equal(t, "GetDocument", svc.Methods[0].Name)
	assert.Equal(t, "Fetches one document.", svc.Methods[0].Comment)
	assert.Equal(t, "GetDocumentRequest", svc.Methods[0].Request.Raw)
	assert.Equal(t, "Document", svc.Methods[0].Response.Raw)

	// Stream markers are dropped; the element type remains.
	assert.Equal(t, "Document", svc.Methods[1].Response.Raw)
}

func TestParse_OneofSkippedWithWarning(t *testing.T) {
	src := `package example;

message Choice {
  oneof kind {
    string text = 1;
    int64 number = 2;
  }
  string id = 3;
}
`

	result := Parse("choice.proto", src)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "oneof")
	require.Len(t, result.File.Messages[0].Fields, 1)
	assert.Equal(t, "id", result.File.Messages[0].Fields[0].Name)
}

func TestParse_AggregateOptionSkipped(t *testing.T) {
	src := `package example;

message Annotated {
  option (my.option) = {
    foo: "bar"
  };
  string id = 1;
}
`

	result := Parse("annotated.proto", src)
	require.Empty(t, result.Warnings)
	require.Len(t, result.File.Messages[0].Fields, 1)
	assert.Equal(t, "id", result.File.Messages[0].Fields[0].Name)
}

func TestParse_QualifiedTypeReference(t *testing.T) {
	src := `package example;

import "user.proto";

message Post {
  user.User author = 1;
  google.protobuf.Timestamp created = 2;
}
`

	result := Parse("post.proto", src)
	require.Empty(t, result.Warnings)
	fields := result.File.Messages[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, types.NamedRef, fields[0].Type.Kind)
	assert.Equal(t, "user.User", fields[0].Type.Raw)
	assert.Equal(t, types.WellKnownRef, fields[1].Type.Kind)
}

func TestParse_UnterminatedMessage(t *testing.T) {
	src := `package example;

message Truncated {
  string id = 1;
`

	result := Parse("trunc.proto", src)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "unterminated")
	require.Len(t, result.File.Messages, 1)
	assert.Len(t, result.File.Messages[0].Fields, 1)
}
