// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across protodoc packages.
package types

import "strings"

// RefKind identifies the category of a field or method type reference.
type RefKind int

const (
	ScalarRef    RefKind = iota // Built-in primitive, never linked
	NamedRef                    // User-defined type, resolved against the symbol table
	WellKnownRef                // Recognized external namespace, styled but not linked
)

// String returns the human-readable name of the reference kind.
func (k RefKind) String() string {
	switch k {
	case ScalarRef:
		return "Scalar"
	case NamedRef:
		return "Named"
	case WellKnownRef:
		return "WellKnown"
	default:
		return "Unknown"
	}
}

// scalarTypes are the built-in primitive type names of the schema language.
var scalarTypes = map[string]bool{
	"double": true, "float": true,
	"int32": true, "int64": true,
	"uint32": true, "uint64": true,
	"sint32": true, "sint64": true,
	"fixed32": true, "fixed64": true,
	"sfixed32": true, "sfixed64": true,
	"bool": true, "string": true, "bytes": true,
}

// wellKnownPrefixes are external namespaces whose types are rendered
// unlinked. The documentation for these lives outside the project.
var wellKnownPrefixes = []string{
	"google.protobuf.",
	"google.api.",
	"google.rpc.",
	"google.type.",
}

// TypeRef is a type mention as written in the source, tagged by kind.
type TypeRef struct {
	Kind RefKind
	Raw  string // Exactly as declared, e.g. "user.User" or "map<string, int64>"
}

// ClassifyType builds a TypeRef from a raw declared type name.
func ClassifyType(raw string) TypeRef {
	if scalarTypes[raw] || strings.HasPrefix(raw, "map<") {
		return TypeRef{Kind: ScalarRef, Raw: raw}
	}
	for _, prefix := range wellKnownPrefixes {
		if strings.HasPrefix(raw, prefix) {
			return TypeRef{Kind: WellKnownRef, Raw: raw}
		}
	}
	return TypeRef{Kind: NamedRef, Raw: raw}
}

// SourceFile is one schema file and everything parsed out of it.
// Paths are relative to the project root and use forward slashes.
type SourceFile struct {
	Path        string
	Fingerprint string // Content hash, hex
	Package     string // Dot-separated identifier, or "" if undeclared
	Imports     []string
	Messages    []*Message
	Enums       []*Enum
	Services    []*Service
}

// Message is a message definition, possibly nested inside another message.
type Message struct {
	Name     string
	FullName string // Dot-joined ancestor chain including this name, no package
	Comment  string
	Line     int
	Fields   []Field
	Messages []*Message // Nested messages, declaration order
	Enums    []*Enum    // Nested enums, declaration order
}

// Field is one field row of a message.
type Field struct {
	Name     string
	Type     TypeRef
	Number   string // Kept exactly as declared
	Modifier string // "", "optional", "required", or "repeated"
	Options  string // Bracketed option text, delimiters stripped
	Comment  string
	Line     int
}

// Enum is an enum definition, top-level or nested inside a message.
type Enum struct {
	Name     string
	FullName string
	Comment  string
	Line     int
	Values   []EnumValue
}

// EnumValue is one name/number pair of an enum.
type EnumValue struct {
	Name    string
	Number  string
	Options string
	Comment string
	Line    int
}

// Service is a service definition with its methods.
type Service struct {
	Name    string
	Comment string
	Line    int
	Methods []Method
}

// Method is one rpc declaration inside a service.
type Method struct {
	Name     string
	Request  TypeRef
	Response TypeRef
	Comment  string
	Line     int
}

// Input is one (source path, raw text) pair handed in by the host.
type Input struct {
	Path    string // Relative to the project root, forward slashes
	Content string
}

// OutputPath maps a source path to its mirrored output document path,
// swapping the extension for ".md".
func OutputPath(srcPath string) string {
	if idx := strings.LastIndex(srcPath, "."); idx > strings.LastIndex(srcPath, "/") {
		return srcPath[:idx] + ".md"
	}
	return srcPath + ".md"
}
