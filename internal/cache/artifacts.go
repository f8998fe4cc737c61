// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// artifacts.go provides the Valkey-backed generated-code cache (L2).
// Entries are keyed by project id and version, so a save (which bumps the
// version) naturally misses; values are msgpack encoded.
package cache

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	codeKeyPrefix = "pc:code:"

	// DefaultCodeTTL is how long generated code stays cached.
	DefaultCodeTTL = 30 * time.Minute
)

// Kind distinguishes the artifact sets cached for one project version.
type Kind string

const (
	KindFrontend     Kind = "frontend"
	KindFrontendByID Kind = "frontend-id"
	KindBackend      Kind = "backend"
)

// Titled returns the kind under which artifacts generated with a custom
// document title are cached. An empty title keeps k.
func (k Kind) Titled(title string) Kind {
	if title == "" {
		return k
	}
	return Kind(fmt.Sprintf("%s:t%016x", k, xxhash.Sum64String(title)))
}

// ArtifactCache stores generated artifact sets in Valkey.
type ArtifactCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewArtifactCache creates an artifact cache. A zero ttl uses DefaultCodeTTL.
func NewArtifactCache(client *redis.Client, ttl time.Duration) *ArtifactCache {
	if ttl == 0 {
		ttl = DefaultCodeTTL
	}
	return &ArtifactCache{client: client, ttl: ttl}
}

// CodeKey returns the Valkey key for one project version and kind.
func CodeKey(projectID string, version int, kind Kind) string {
	return fmt.Sprintf("%s%s:%d:%s", codeKeyPrefix, projectID, version, kind)
}

// Get decodes the cached value into dst. It reports false on a miss or
// when the entry cannot be read.
func (c *ArtifactCache) Get(ctx context.Context, projectID string, version int, kind Kind, dst any) bool {
	key := CodeKey(projectID, version, kind)
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("code cache get error", "key", key, "error", err)
		return false
	}
	if err := DecodeMsgpack(val, dst); err != nil {
		slog.Warn("code cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("code cache hit", "key", key)
	return true
}

// Set stores v for one project version and kind. Failures are logged; the
// cache is an optimization and never fails a request.
func (c *ArtifactCache) Set(ctx context.Context, projectID string, version int, kind Kind, v any) {
	key := CodeKey(projectID, version, kind)
	data, err := EncodeMsgpack(v)
	if err != nil {
		slog.Warn("code cache encode error", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("code cache set error", "key", key, "error", err)
	}
}

// InvalidateProject removes every cached version of a project's code.
func (c *ArtifactCache) InvalidateProject(ctx context.Context, projectID string) {
	n := deletePrefix(ctx, c.client, codeKeyPrefix+projectID+":")
	slog.Debug("code cache invalidated", "project", projectID, "deleted", n)
}

// EncodeMsgpack encodes v as msgpack using the json struct tags, so the
// wire names match the JSON API.
func EncodeMsgpack(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("msgpack encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeMsgpack is the inverse of EncodeMsgpack.
func DecodeMsgpack(data []byte, dst any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("msgpack decode: %w", err)
	}
	return nil
}
