// cache.go provides the in-memory cache (L1) of generated artifacts.
// Entries are keyed by project id, version and kind, so a save (which
// bumps the version) produces a miss without explicit invalidation.
package engine

import (
	"log/slog"
	"sync"
)

// cacheKey uniquely identifies one generated artifact set.
type cacheKey struct {
	id      string
	version int
	kind    string
}

// artifactCache is a concurrency-safe in-memory cache of generated output.
type artifactCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]any
}

func newArtifactCache() *artifactCache {
	return &artifactCache{
		entries: make(map[cacheKey]any),
	}
}

// get returns the cached value, or nil on a miss.
func (c *artifactCache) get(id string, version int, kind string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[cacheKey{id: id, version: version, kind: kind}]
}

func (c *artifactCache) put(id string, version int, kind string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{id: id, version: version, kind: kind}] = v
	slog.Debug("artifacts cached", "project", id, "version", version, "kind", kind, "size", len(c.entries))
}

// invalidate removes every cached version and kind for a project.
func (c *artifactCache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.id == id {
			delete(c.entries, k)
		}
	}
	slog.Debug("artifact cache invalidated", "project", id)
}

// invalidateAll clears the entire cache.
func (c *artifactCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]any)
	slog.Debug("artifact cache fully cleared")
}

// len reports the number of cached entries.
func (c *artifactCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
