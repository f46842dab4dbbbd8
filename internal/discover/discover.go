// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package discover finds schema files under the configured paths and
// reads them into (path, content) pairs for the pipeline. Directory
// structure below the most specific configured root becomes the output
// structure.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/sirupsen/logrus"

	"github.com/petar-djukic/protodoc/pkg/types"
)

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
}

const schemaExt = ".proto"

// Discover walks the given paths (directories or individual files) and
// returns the schema files found, sorted by relative path. Files under
// the output directory are excluded so generated docs never feed back
// into the pipeline. .gitignore patterns at each directory root are
// honored.
func Discover(paths []string, outputDir string, log logrus.FieldLogger) ([]types.Input, error) {
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		absOut = outputDir
	}

	var dirRoots []string
	var singles []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving path %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			dirRoots = append(dirRoots, abs)
		} else if strings.HasSuffix(abs, schemaExt) {
			singles = append(singles, abs)
		}
	}

	seen := make(map[string]bool)
	var found []types.Input

	for _, root := range dirRoots {
		if underneath(absOut, root) {
			log.WithField("path", root).Warn("skipping schema path inside output directory")
			continue
		}
		matcher := loadIgnoreMatcher(root)
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // inaccessible entries are skipped, not fatal
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return nil
			}
			segments := strings.Split(filepath.ToSlash(rel), "/")
			if d.IsDir() {
				if path == root {
					return nil
				}
				if skipDirs[d.Name()] || underneath(absOut, path) {
					return filepath.SkipDir
				}
				if matcher != nil && matcher.Match(segments, true) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), schemaExt) {
				return nil
			}
			if matcher != nil && matcher.Match(segments, false) {
				return nil
			}
			if underneath(absOut, path) || seen[path] {
				return nil
			}
			seen[path] = true
			in, ok := readInput(path, relPath(path, dirRoots), log)
			if ok {
				found = append(found, in)
			}
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walking %s: %w", root, walkErr)
		}
	}

	for _, abs := range singles {
		if seen[abs] || underneath(absOut, abs) {
			continue
		}
		seen[abs] = true
		in, ok := readInput(abs, relPath(abs, dirRoots), log)
		if ok {
			found = append(found, in)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, nil
}

func readInput(abs, rel string, log logrus.FieldLogger) (types.Input, bool) {
	content, err := os.ReadFile(abs)
	if err != nil {
		log.WithField("path", abs).WithError(err).Warn("skipping unreadable schema file")
		return types.Input{}, false
	}
	return types.Input{Path: rel, Content: string(content)}, true
}

// ProjectRel maps an absolute file path back to the project-relative
// form used throughout the pipeline, against the configured schema
// paths. Watch events arrive with absolute paths and need this mapping
// to address cache entries and outputs.
func ProjectRel(abs string, paths []string) string {
	var dirRoots []string
	for _, p := range paths {
		root, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			dirRoots = append(dirRoots, root)
		}
	}
	if a, err := filepath.Abs(abs); err == nil {
		abs = a
	}
	return relPath(abs, dirRoots)
}

// relPath computes a file's project-relative path against the most
// specific configured directory root containing it; files outside every
// root keep just their base name.
func relPath(abs string, dirRoots []string) string {
	best := ""
	for _, root := range dirRoots {
		if underneath(root, abs) && len(root) > len(best) {
			best = root
		}
	}
	if best == "" {
		return filepath.Base(abs)
	}
	rel, err := filepath.Rel(best, abs)
	if err != nil {
		return filepath.Base(abs)
	}
	return filepath.ToSlash(rel)
}

// underneath reports whether path is root or inside it.
func underneath(root, path string) bool {
	if root == path {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// loadIgnoreMatcher reads .gitignore at the root. No file, no matcher.
func loadIgnoreMatcher(root string) gitignore.Matcher {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if len(patterns) == 0 {
		return nil
	}
	return gitignore.NewMatcher(patterns)
}
