package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
)

// SitePrefix is the key prefix every deployed site lives under.
const SitePrefix = "sites/"

// contentTypes maps artifact extensions to the Content-Type they are
// served with.
var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".tsx":  "text/plain; charset=utf-8",
	".json": "application/json",
}

// Bucket is the subset of Client used by deploys.
type Bucket interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// SiteKey returns the object key of one file of a deployed site.
func SiteKey(slug, file string) string {
	return SitePrefix + slug + "/" + file
}

// ContentType returns the Content-Type for a file name.
func ContentType(file string) string {
	if ct, ok := contentTypes[path.Ext(file)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Deploy uploads files under sites/<slug>/ in name order and returns the
// public URL of entry. Uploading stops at the first failure.
func Deploy(ctx context.Context, b Bucket, slug, entry string, files map[string]string) (string, error) {
	if slug == "" {
		return "", fmt.Errorf("deploy: empty slug")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		body := files[name]
		key := SiteKey(slug, name)
		if err := b.Upload(ctx, key, ContentType(name), strings.NewReader(body), int64(len(body))); err != nil {
			return "", fmt.Errorf("deploy %s: %w", slug, err)
		}
	}

	url := b.FileURL(SiteKey(slug, entry))
	slog.Info("site deployed", "slug", slug, "files", len(names), "url", url)
	return url, nil
}

// Undeploy removes a deployed site.
func Undeploy(ctx context.Context, b Bucket, slug string) error {
	if slug == "" {
		return nil
	}
	n, err := b.DeletePrefix(ctx, SitePrefix+slug+"/")
	if err != nil {
		return fmt.Errorf("undeploy %s: %w", slug, err)
	}
	slog.Info("site removed", "slug", slug, "objects", n)
	return nil
}
