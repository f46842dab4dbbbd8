// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package render

import (
	"sort"
	"strings"

	"github.com/petar-djukic/protodoc/pkg/types"
)

// Nav builds the directory-shaped navigation tree for the full file set.
// The tree mirrors source directory structure; leaves are labeled with
// the file's declared package, falling back to the filename stem. The
// host merges this into its own site navigation.
func Nav(files []*types.SourceFile) *types.NavNode {
	root := &types.NavNode{Title: "API Reference"}
	for _, f := range files {
		insertNav(root, f)
	}
	sortNav(root)
	return root
}

func insertNav(root *types.NavNode, f *types.SourceFile) {
	out := types.OutputPath(f.Path)
	parts := strings.Split(out, "/")
	node := root
	for _, dir := range parts[:len(parts)-1] {
		node = childDir(node, dir)
	}

	label := f.Package
	if label == "" {
		label = strings.TrimSuffix(parts[len(parts)-1], ".md")
	}
	node.Children = append(node.Children, &types.NavNode{Title: label, Path: out})
}

func childDir(node *types.NavNode, title string) *types.NavNode {
	for _, c := range node.Children {
		if !c.IsLeaf() && c.Title == title {
			return c
		}
	}
	child := &types.NavNode{Title: title}
	node.Children = append(node.Children, child)
	return child
}

func sortNav(node *types.NavNode) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.Path < b.Path
	})
	for _, c := range node.Children {
		if !c.IsLeaf() {
			sortNav(c)
		}
	}
}
