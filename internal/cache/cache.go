// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cache persists per-file fingerprints and dependency sets across
// runs so unchanged files can skip re-rendering. It is the only long-lived
// state in the system: parse trees and the symbol table are rebuilt fresh
// every run. A cache that cannot be read, or was written by a different
// format version, is discarded and the run falls back to a full rebuild;
// stale links are worse than wasted work.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/petar-djukic/protodoc/pkg/types"
)

// FormatVersion guards the persisted snapshot schema.
const FormatVersion = "2"

// Entry is the cached record of one source file. References holds both
// resolved qualified names and raw unresolved mentions, so a definition
// added later still reaches the files that were waiting for it. Warnings
// are the render-time report entries, replayed on runs that skip the
// file so a persisting condition never disappears from the report.
type Entry struct {
	Path        string          `json:"path"`
	Fingerprint string          `json:"fingerprint"`
	Defines     []string        `json:"defines,omitempty"`
	References  []string        `json:"references,omitempty"`
	Output      string          `json:"output"`
	Warnings    []types.Warning `json:"warnings,omitempty"`
	GeneratedAt string          `json:"generatedAt"`
}

type snapshot struct {
	FormatVersion string           `json:"formatVersion"`
	LastRunID     string           `json:"lastRunId,omitempty"`
	Entries       map[string]Entry `json:"entries"`
}

// Cache holds cache entries for the current run. Concurrent renders each
// write only their own file's entry; updates share one mutex so no write
// is lost.
type Cache struct {
	path string // "" means in-memory only

	mu      sync.Mutex
	entries map[string]Entry
}

// Fingerprint returns the content hash used to detect changes.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Load reads the persisted cache. A missing file yields an empty cache; a
// corrupt or version-mismatched file yields an empty cache plus a
// CacheInvalid warning, never an error.
func Load(path string) (*Cache, *types.Warning) {
	c := &Cache{path: path, entries: make(map[string]Entry)}
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, &types.Warning{
			Kind:    types.CacheInvalid,
			Message: fmt.Sprintf("cache %s unreadable, forcing full rebuild: %v", path, err),
		}
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return c, &types.Warning{
			Kind:    types.CacheInvalid,
			Message: fmt.Sprintf("cache %s corrupt, forcing full rebuild: %v", path, err),
		}
	}
	if snap.FormatVersion != FormatVersion {
		return c, &types.Warning{
			Kind:    types.CacheInvalid,
			Message: fmt.Sprintf("cache %s has format version %q, want %q; forcing full rebuild", path, snap.FormatVersion, FormatVersion),
		}
	}

	if snap.Entries != nil {
		c.entries = snap.Entries
	}
	return c, nil
}

// Stale computes the set of files that must be re-rendered. current maps
// each present file to its fingerprint; defines maps each present file to
// the qualified names it now defines. A file is stale when its own
// content changed, or when it references a name belonging to a file whose
// definitions changed (one-hop propagation). Files whose entries vanished
// count as changed so their dependents re-render too.
func (c *Cache) Stale(current map[string]string, defines map[string][]string) map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	stale := make(map[string]bool)
	changedDefs := make(map[string]bool)

	for path, fp := range current {
		entry, ok := c.entries[path]
		if !ok || entry.Fingerprint != fp {
			stale[path] = true
			for _, name := range defines[path] {
				changedDefs[name] = true
			}
			if ok {
				for _, name := range entry.Defines {
					changedDefs[name] = true
				}
			}
		}
	}

	// Definitions owned by files that no longer exist.
	for path, entry := range c.entries {
		if _, ok := current[path]; !ok {
			for _, name := range entry.Defines {
				changedDefs[name] = true
			}
		}
	}

	if len(changedDefs) == 0 {
		return stale
	}
	for path := range current {
		if stale[path] {
			continue
		}
		entry, ok := c.entries[path]
		if !ok {
			continue
		}
		for _, ref := range entry.References {
			if refChanged(ref, changedDefs) {
				stale[path] = true
				break
			}
		}
	}
	return stale
}

// refChanged matches a recorded reference against the changed-definition
// set. Resolved references match exactly; an unresolved raw mention like
// "user.User" or "User" also matches a qualified name ending in it, so
// the first definition of a previously missing type reaches its waiters.
func refChanged(ref string, changedDefs map[string]bool) bool {
	if changedDefs[ref] {
		return true
	}
	for def := range changedDefs {
		if strings.HasSuffix(def, "."+ref) {
			return true
		}
	}
	return false
}

// Entry returns the cached record for a file.
func (c *Cache) Entry(path string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	return e, ok
}

// Update stores one file's entry, stamping the generation time.
func (c *Cache) Update(e Entry) {
	e.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	c.mu.Lock()
	c.entries[e.Path] = e
	c.mu.Unlock()
}

// Invalidate drops one file's entry so the next run treats it as changed.
// This is the hook for host "file changed" events.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Prune removes entries for files no longer present.
func (c *Cache) Prune(current map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path := range c.entries {
		if _, ok := current[path]; !ok {
			delete(c.entries, path)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Save writes the cache to disk. An in-memory cache saves nothing.
func (c *Cache) Save(runID string) error {
	if c.path == "" {
		return nil
	}
	c.mu.Lock()
	snap := snapshot{
		FormatVersion: FormatVersion,
		LastRunID:     runID,
		Entries:       c.entries,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}
