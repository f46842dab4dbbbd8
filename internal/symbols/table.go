// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package symbols builds the project-wide symbol table and resolves type
// references against it. The table is constructed once per run from the
// complete set of parsed files and is read-only afterwards; resolution
// must never start before every file has been parsed, or forward
// references across files would fail nondeterministically.
package symbols

import (
	"fmt"
	"strings"

	"github.com/petar-djukic/protodoc/pkg/types"
)

// Location is where a qualified name is defined: the owning source file
// and the anchor inside that file's output document.
type Location struct {
	File   string
	Anchor string
}

// Table maps every fully-qualified type name to its defining location.
type Table struct {
	defs      map[string]Location
	byFile    map[string][]string // file path → qualified names it defines
	pkgByFile map[string]string
}

// Build constructs the symbol table from all parsed files. Duplicate
// qualified names are recorded as warnings; the later definition wins.
func Build(files []*types.SourceFile) (*Table, []types.Warning) {
	t := &Table{
		defs:      make(map[string]Location),
		byFile:    make(map[string][]string),
		pkgByFile: make(map[string]string),
	}
	var warnings []types.Warning

	for _, f := range files {
		t.pkgByFile[f.Path] = f.Package
		for _, m := range f.Messages {
			warnings = t.addMessage(f, m, warnings)
		}
		for _, e := range f.Enums {
			warnings = t.add(f, e.FullName, e.FullName, warnings)
		}
		for _, s := range f.Services {
			warnings = t.add(f, s.Name, s.Name, warnings)
			for _, m := range s.Methods {
				anchor := s.Name + "." + m.Name
				warnings = t.add(f, anchor, anchor, warnings)
			}
		}
	}
	return t, warnings
}

func (t *Table) addMessage(f *types.SourceFile, m *types.Message, warnings []types.Warning) []types.Warning {
	warnings = t.add(f, m.FullName, m.FullName, warnings)
	for _, child := range m.Messages {
		warnings = t.addMessage(f, child, warnings)
	}
	for _, e := range m.Enums {
		warnings = t.add(f, e.FullName, e.FullName, warnings)
	}
	return warnings
}

// add registers one definition under its fully-qualified name. nestedPath
// doubles as the anchor: it is the dot-joined ancestor chain without the
// package.
func (t *Table) add(f *types.SourceFile, nestedPath, anchor string, warnings []types.Warning) []types.Warning {
	qualified := Qualify(f.Package, nestedPath)
	if prev, ok := t.defs[qualified]; ok {
		warnings = append(warnings, types.Warning{
			Kind:    types.DuplicateDefinition,
			File:    f.Path,
			Message: fmt.Sprintf("%s defined in both %s and %s; using %s", qualified, prev.File, f.Path, f.Path),
		})
	}
	t.defs[qualified] = Location{File: f.Path, Anchor: anchor}
	t.byFile[f.Path] = append(t.byFile[f.Path], qualified)
	return warnings
}

// Qualify joins a package and a nested path into a fully-qualified name.
// A file with no package contributes the nested path alone.
func Qualify(pkg, nestedPath string) string {
	if pkg == "" {
		return nestedPath
	}
	return pkg + "." + nestedPath
}

// Lookup returns the location of a fully-qualified name.
func (t *Table) Lookup(qualified string) (Location, bool) {
	loc, ok := t.defs[qualified]
	return loc, ok
}

// Defined returns the qualified names a file defines, in declaration order.
func (t *Table) Defined(file string) []string {
	return t.byFile[file]
}

// Package returns the declared package of a known file.
func (t *Table) Package(file string) (string, bool) {
	pkg, ok := t.pkgByFile[file]
	return pkg, ok
}

// FileByImport maps an import string to the known file it names. Imports
// are written relative to some schema root, so a known file matches when
// its project-relative path equals the import or ends with it.
func (t *Table) FileByImport(imp string) (string, bool) {
	if _, ok := t.pkgByFile[imp]; ok {
		return imp, true
	}
	// Deterministic choice when several files share the suffix.
	best := ""
	for path := range t.pkgByFile {
		if strings.HasSuffix(path, "/"+imp) && (best == "" || path < best) {
			best = path
		}
	}
	return best, best != ""
}

// Len returns the number of definitions in the table.
func (t *Table) Len() int {
	return len(t.defs)
}
