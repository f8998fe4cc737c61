// preview.go caches rendered preview documents so share links and the
// preview pane skip template execution for an unchanged project version.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	previewKeyPrefix = "pc:preview:"

	// DefaultPreviewTTL is how long a rendered preview stays cached.
	DefaultPreviewTTL = 5 * time.Minute
)

// PreviewCache manages rendered preview HTML in Valkey.
type PreviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPreviewCache creates a preview cache. A zero ttl uses DefaultPreviewTTL.
func NewPreviewCache(client *redis.Client, ttl time.Duration) *PreviewCache {
	if ttl == 0 {
		ttl = DefaultPreviewTTL
	}
	return &PreviewCache{client: client, ttl: ttl}
}

// PreviewKey returns the cache key of one project version.
func PreviewKey(projectID string, version int) string {
	return fmt.Sprintf("%s%s:%d", previewKeyPrefix, projectID, version)
}

// Get returns the cached preview and whether it was found.
func (pc *PreviewCache) Get(ctx context.Context, projectID string, version int) ([]byte, bool) {
	key := PreviewKey(projectID, version)
	val, err := pc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("preview cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("preview cache hit", "key", key)
	return val, true
}

// Set stores a rendered preview with the configured TTL.
func (pc *PreviewCache) Set(ctx context.Context, projectID string, version int, html []byte) {
	if err := pc.client.Set(ctx, PreviewKey(projectID, version), html, pc.ttl).Err(); err != nil {
		slog.Warn("preview cache set error", "project", projectID, "error", err)
	}
}

// InvalidateProject removes every cached preview of a project.
func (pc *PreviewCache) InvalidateProject(ctx context.Context, projectID string) {
	n := deletePrefix(ctx, pc.client, previewKeyPrefix+projectID+":")
	slog.Debug("preview cache invalidated", "project", projectID, "deleted", n)
}

// InvalidateAll removes every cached preview.
func (pc *PreviewCache) InvalidateAll(ctx context.Context) {
	if n := deletePrefix(ctx, pc.client, previewKeyPrefix); n > 0 {
		slog.Info("preview cache fully cleared", "deleted", n)
	}
}
