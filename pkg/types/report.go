// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "fmt"

// WarningKind classifies a report entry. No kind is ever fatal to a run.
type WarningKind int

const (
	ParseWarning         WarningKind = iota // Unrecognized fragment skipped
	UnresolvedReference                     // Type mention matched no known definition
	DuplicateDefinition                     // Two definitions share a qualified name
	DuplicateFieldNumber                    // Two fields of one message share a number
	CacheInvalid                            // Persisted cache unreadable or wrong version
	ImportUnresolved                        // Import string names no known file
)

// String returns the report-facing name of the warning kind.
func (k WarningKind) String() string {
	switch k {
	case ParseWarning:
		return "parse"
	case UnresolvedReference:
		return "unresolved-reference"
	case DuplicateDefinition:
		return "duplicate-definition"
	case DuplicateFieldNumber:
		return "duplicate-field-number"
	case CacheInvalid:
		return "cache-invalid"
	case ImportUnresolved:
		return "import-unresolved"
	default:
		return "unknown"
	}
}

// Warning is one non-fatal condition observed during a run.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	File    string      `json:"file,omitempty"`
	Line    int         `json:"line,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.File == "" {
		return fmt.Sprintf("[%s] %s", w.Kind, w.Message)
	}
	if w.Line > 0 {
		return fmt.Sprintf("[%s] %s:%d: %s", w.Kind, w.File, w.Line, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Kind, w.File, w.Message)
}

// Report accumulates everything a run wants to surface to the host.
// Warnings never vanish silently; the host decides how to display them.
type Report struct {
	RunID    string    `json:"runId"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Add appends a warning to the report.
func (r *Report) Add(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// CountKind returns the number of warnings of the given kind.
func (r *Report) CountKind(kind WarningKind) int {
	n := 0
	for _, w := range r.Warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}
