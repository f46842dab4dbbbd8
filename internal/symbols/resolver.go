// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package symbols

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/petar-djukic/protodoc/pkg/types"
)

// Outcome is the result category of resolving one type mention.
type Outcome int

const (
	SameFileAnchor      Outcome = iota // Link to an anchor in the same document
	CrossFileLink                      // Link to another document's anchor
	WellKnownUnlinked                  // Recognized external type, styled only
	PlainTextUnresolved                // No match; rendered as literal text
)

// Resolution is the renderer-facing answer for a type mention.
type Resolution struct {
	Outcome Outcome
	Target  string // Fully-qualified name that matched, for dependency tracking
	Href    string // "#Anchor" or "relative/path.md#Anchor"; empty when unlinked
	Display string // Text to show, as written in the source
}

const memoSize = 4096

// Resolver answers type-reference lookups against a frozen Table.
// Outcomes are memoized per (referencing file, raw name) since large
// schemas mention the same types in many fields.
type Resolver struct {
	table *Table
	memo  *lru.Cache[string, Resolution]
}

// NewResolver creates a Resolver over a built table.
func NewResolver(table *Table) *Resolver {
	memo, _ := lru.New[string, Resolution](memoSize)
	return &Resolver{table: table, memo: memo}
}

// Resolve decides how a type mention should render, given the file the
// mention appears in. Resolution order: absolute qualified name, then
// relative to the file's own package, then through the file's imports,
// then well-known namespaces, then plain text.
func (r *Resolver) Resolve(ref types.TypeRef, from *types.SourceFile) Resolution {
	switch ref.Kind {
	case types.ScalarRef:
		return Resolution{Outcome: PlainTextUnresolved, Display: ref.Raw}
	case types.WellKnownRef:
		return Resolution{Outcome: WellKnownUnlinked, Display: ref.Raw}
	}

	key := from.Path + "|" + ref.Raw
	if res, ok := r.memo.Get(key); ok {
		return res
	}
	res := r.resolveNamed(ref.Raw, from)
	r.memo.Add(key, res)
	return res
}

func (r *Resolver) resolveNamed(raw string, from *types.SourceFile) Resolution {
	// Absolute: the name is already fully package-qualified.
	if loc, ok := r.table.Lookup(raw); ok {
		return r.link(raw, loc, from)
	}

	// Relative to the referencing file's own package. This also covers
	// same-file nested names like Parent.Child.
	if candidate := Qualify(from.Package, raw); candidate != raw {
		if loc, ok := r.table.Lookup(candidate); ok {
			return r.link(raw, loc, from)
		}
	}

	// Through the file's declared imports: each import names a file whose
	// package may complete the reference, or may define a name ending in
	// the written suffix.
	for _, imp := range from.Imports {
		file, ok := r.table.FileByImport(imp)
		if !ok {
			continue
		}
		if pkg, ok := r.table.Package(file); ok && pkg != "" {
			if loc, ok := r.table.Lookup(pkg + "." + raw); ok {
				return r.link(raw, loc, from)
			}
		}
		for _, qualified := range r.table.Defined(file) {
			if strings.HasSuffix(qualified, "."+raw) {
				if loc, ok := r.table.Lookup(qualified); ok {
					return r.link(raw, loc, from)
				}
			}
		}
	}

	return Resolution{Outcome: PlainTextUnresolved, Display: raw}
}

func (r *Resolver) link(raw string, loc Location, from *types.SourceFile) Resolution {
	target := Qualify(mustPackage(r.table, loc.File), loc.Anchor)
	if loc.File == from.Path {
		return Resolution{
			Outcome: SameFileAnchor,
			Target:  target,
			Href:    "#" + loc.Anchor,
			Display: raw,
		}
	}
	rel := RelativeDocPath(types.OutputPath(from.Path), types.OutputPath(loc.File))
	return Resolution{
		Outcome: CrossFileLink,
		Target:  target,
		Href:    rel + "#" + loc.Anchor,
		Display: raw,
	}
}

func mustPackage(t *Table, file string) string {
	pkg, _ := t.Package(file)
	return pkg
}

// RelativeDocPath computes the relative path from one output document to
// another. Both paths are forward-slash paths under the output root; the
// computation counts the shared directory prefix and emits one parent
// step per remaining directory of the referencing document. Placement is
// taken purely from output paths, never source paths.
func RelativeDocPath(fromDoc, toDoc string) string {
	fromDirs := splitDirs(fromDoc)
	toDirs := splitDirs(toDoc)

	common := 0
	for common < len(fromDirs) && common < len(toDirs) && fromDirs[common] == toDirs[common] {
		common++
	}

	var segs []string
	for i := common; i < len(fromDirs); i++ {
		segs = append(segs, "..")
	}
	segs = append(segs, toDirs[common:]...)
	segs = append(segs, baseName(toDoc))
	return strings.Join(segs, "/")
}

func splitDirs(doc string) []string {
	idx := strings.LastIndex(doc, "/")
	if idx < 0 {
		return nil
	}
	return strings.Split(doc[:idx], "/")
}

func baseName(doc string) string {
	if idx := strings.LastIndex(doc, "/"); idx >= 0 {
		return doc[idx+1:]
	}
	return doc
}
