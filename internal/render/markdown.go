// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package render walks one file's structural tree and produces the final
// markdown document. Rendering is deterministic: the same tree and symbol
// table always yield byte-identical output, which the build cache relies
// on.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/petar-djukic/protodoc/internal/symbols"
	"github.com/petar-djukic/protodoc/pkg/types"
)

// Document is one rendered output file plus what rendering learned about
// it: the names it references (resolved qualified targets and unresolved
// raw mentions, for cache dependency tracking) and any warnings raised
// while resolving type mentions.
type Document struct {
	Path       string // Output path relative to the output root
	Content    string
	References []string
	Warnings   []types.Warning
}

type renderer struct {
	b        strings.Builder
	file     *types.SourceFile
	table    *symbols.Table
	resolver *symbols.Resolver
	refs     map[string]bool
	warnings []types.Warning
}

// File renders one source file's documentation.
func File(f *types.SourceFile, table *symbols.Table, resolver *symbols.Resolver) *Document {
	r := &renderer{
		file:     f,
		table:    table,
		resolver: resolver,
		refs:     make(map[string]bool),
	}
	r.render()

	refs := make([]string, 0, len(r.refs))
	for ref := range r.refs {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	return &Document{
		Path:       types.OutputPath(f.Path),
		Content:    r.b.String(),
		References: refs,
		Warnings:   r.warnings,
	}
}

func (r *renderer) render() {
	fmt.Fprintf(&r.b, "# Protocol Documentation: %s\n\n", baseName(r.file.Path))

	if r.file.Package != "" {
		fmt.Fprintf(&r.b, "## Package: `%s`\n\n", r.file.Package)
	}

	if len(r.file.Imports) > 0 {
		r.b.WriteString("## Imports\n\n")
		for _, imp := range r.file.Imports {
			if _, ok := r.table.FileByImport(imp); !ok {
				r.warnings = append(r.warnings, types.Warning{
					Kind:    types.ImportUnresolved,
					File:    r.file.Path,
					Message: fmt.Sprintf("import %q names no known file", imp),
				})
			}
			fmt.Fprintf(&r.b, "- `%s`\n", imp)
		}
		r.b.WriteString("\n")
	}

	if len(r.file.Messages) > 0 {
		r.b.WriteString("## Messages\n\n")
		for _, m := range r.file.Messages {
			r.message(m, "")
		}
	}

	if len(r.file.Enums) > 0 {
		r.b.WriteString("## Enums\n\n")
		for _, e := range r.file.Enums {
			fmt.Fprintf(&r.b, "### %s {#%s}\n\n", e.Name, e.FullName)
			if e.Comment != "" {
				r.b.WriteString(e.Comment + "\n\n")
			}
			r.enumTable(e)
		}
	}

	if len(r.file.Services) > 0 {
		r.b.WriteString("## Services\n\n")
		for _, s := range r.file.Services {
			r.service(s)
		}
	}
}

// message renders one message section. Top-level messages get a ###
// heading; nested messages render directly after their parent's table as
// "#### Name (nested in Parent)" sub-sections, recursively, in
// declaration order.
func (r *renderer) message(m *types.Message, parent string) {
	if parent == "" {
		fmt.Fprintf(&r.b, "### %s {#%s}\n\n", m.Name, m.FullName)
	} else {
		fmt.Fprintf(&r.b, "#### %s (nested in %s) {#%s}\n\n", m.Name, parent, m.FullName)
	}
	if m.Comment != "" {
		r.b.WriteString(m.Comment + "\n\n")
	}
	if len(m.Fields) > 0 {
		r.fieldTable(m)
	}
	for _, child := range m.Messages {
		r.message(child, m.Name)
	}
	for _, e := range m.Enums {
		fmt.Fprintf(&r.b, "#### %s (nested in %s) {#%s}\n\n", e.Name, m.Name, e.FullName)
		if e.Comment != "" {
			r.b.WriteString(e.Comment + "\n\n")
		}
		r.enumTable(e)
	}
}

func (r *renderer) fieldTable(m *types.Message) {
	r.b.WriteString("| Field | Type | Number | Description |\n")
	r.b.WriteString("|-------|------|--------|-------------|\n")
	for _, f := range m.Fields {
		cell := r.typeCell(f.Type, f.Modifier, f.Line)
		fmt.Fprintf(&r.b, "| %s | %s | %s | %s |\n", f.Name, cell, f.Number, tableText(f.Comment))
	}
	r.b.WriteString("\n")
}

func (r *renderer) enumTable(e *types.Enum) {
	r.b.WriteString("| Name | Number | Description |\n")
	r.b.WriteString("|------|--------|-------------|\n")
	for _, v := range e.Values {
		fmt.Fprintf(&r.b, "| %s | %s | %s |\n", v.Name, v.Number, tableText(v.Comment))
	}
	r.b.WriteString("\n")
}

func (r *renderer) service(s *types.Service) {
	fmt.Fprintf(&r.b, "### %s {#%s}\n\n", s.Name, s.Name)
	if s.Comment != "" {
		r.b.WriteString(s.Comment + "\n\n")
	}
	if len(s.Methods) == 0 {
		return
	}
	r.b.WriteString("| Method | Request | Response | Description |\n")
	r.b.WriteString("|--------|---------|----------|-------------|\n")
	for _, m := range s.Methods {
		anchor := s.Name + "." + m.Name
		fmt.Fprintf(&r.b, "| <a id=\"%s\"></a>%s | %s | %s | %s |\n",
			anchor, m.Name,
			r.typeCell(m.Request, "", m.Line),
			r.typeCell(m.Response, "", m.Line),
			tableText(m.Comment))
	}
	r.b.WriteString("\n")
}

// typeCell renders a type mention per the resolver's outcome: a markdown
// link for resolved names, back-ticked literal for scalars and well-known
// types, and plain text for unresolved names. The modifier prefix
// (repeated/optional/required) is preserved in front of the type.
func (r *renderer) typeCell(ref types.TypeRef, modifier string, line int) string {
	if ref.Kind == types.ScalarRef {
		if modifier != "" {
			return "`" + modifier + " " + ref.Raw + "`"
		}
		return "`" + ref.Raw + "`"
	}

	res := r.resolver.Resolve(ref, r.file)
	prefix := ""
	if modifier != "" {
		prefix = modifier + " "
	}

	switch res.Outcome {
	case symbols.SameFileAnchor, symbols.CrossFileLink:
		r.refs[res.Target] = true
		return fmt.Sprintf("%s[%s](%s)", prefix, res.Display, res.Href)
	case symbols.WellKnownUnlinked:
		return prefix + "`" + res.Display + "`"
	default:
		// Track the raw mention too: if a later run introduces the missing
		// definition, this file must re-render to pick up the link.
		r.refs[ref.Raw] = true
		r.warnings = append(r.warnings, types.Warning{
			Kind:    types.UnresolvedReference,
			File:    r.file.Path,
			Line:    line,
			Message: fmt.Sprintf("type %s could not be resolved", ref.Raw),
		})
		return prefix + res.Display
	}
}

// tableText makes comment text safe inside a markdown table cell:
// paragraph breaks become <br><br>, remaining newlines <br>, and pipes
// are escaped.
func tableText(comment string) string {
	comment = strings.ReplaceAll(comment, "\n\n", "<br><br>")
	comment = strings.ReplaceAll(comment, "\n", "<br>")
	return strings.ReplaceAll(comment, "|", "\\|")
}

func baseName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
