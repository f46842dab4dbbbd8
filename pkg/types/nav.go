// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// NavNode is one entry of the navigation tree recommended to the host.
// A node is either a leaf (Path set, Children nil) pointing at an output
// document, or a directory (Path empty) holding sorted children.
type NavNode struct {
	Title    string
	Path     string // Output document path relative to the output root
	Children []*NavNode
}

// IsLeaf reports whether the node points at a document.
func (n *NavNode) IsLeaf() bool {
	return n.Path != ""
}

// MarshalYAML renders the node in the single-key mapping shape site
// generators expect for navigation entries:
//
//	- Title: path/to/doc.md
//	- Dir:
//	    - Nested: dir/doc.md
func (n *NavNode) MarshalYAML() (interface{}, error) {
	if n.IsLeaf() {
		return map[string]string{n.Title: n.Path}, nil
	}
	return map[string][]*NavNode{n.Title: n.Children}, nil
}
