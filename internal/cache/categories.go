// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"treepress/internal/models"
)

const (
	// categoryKeyPrefix is the Valkey key prefix for cached category sets.
	categoryKeyPrefix = "categories:"

	// DefaultCategoryTTL is how long a category set stays cached.
	DefaultCategoryTTL = 5 * time.Minute
)

// VersionedCategorySource is a category source that can report a token
// identifying the current state of its category set.
type VersionedCategorySource interface {
	FindCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context, page, size int) (models.Page[models.Category], error)
	ListAllCategories(ctx context.Context) ([]models.Category, error)
	CategoryVersion(ctx context.Context) (string, error)
}

// CategorySnapshots caches the full category set in Valkey, keyed by the
// source's version token. A stale entry is never served: any write to the
// source changes the token and therefore the key. Cache errors fall back
// to the source.
type CategorySnapshots struct {
	VersionedCategorySource
	client *redis.Client
	ttl    time.Duration
}

// NewCategorySnapshots wraps source with a Valkey-backed cache.
func NewCategorySnapshots(source VersionedCategorySource, client *redis.Client, ttl time.Duration) *CategorySnapshots {
	if ttl == 0 {
		ttl = DefaultCategoryTTL
	}
	return &CategorySnapshots{VersionedCategorySource: source, client: client, ttl: ttl}
}

// ListAllCategories returns the cached category set for the current
// version, loading and storing it on a miss.
func (c *CategorySnapshots) ListAllCategories(ctx context.Context) ([]models.Category, error) {
	version, err := c.CategoryVersion(ctx)
	if err != nil {
		slog.Warn("category version lookup failed, bypassing cache", "error", err)
		return c.VersionedCategorySource.ListAllCategories(ctx)
	}
	key := categoryKeyPrefix + version

	if cached, ok := c.get(ctx, key); ok {
		return cached, nil
	}

	categories, err := c.VersionedCategorySource.ListAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, categories)
	return categories, nil
}

func (c *CategorySnapshots) get(ctx context.Context, key string) ([]models.Category, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("category cache get error", "key", key, "error", err)
		return nil, false
	}

	var categories []models.Category
	if err := json.Unmarshal(val, &categories); err != nil {
		slog.Warn("category cache decode error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("category cache hit", "key", key)
	return categories, true
}

func (c *CategorySnapshots) set(ctx context.Context, key string, categories []models.Category) {
	data, err := json.Marshal(categories)
	if err != nil {
		slog.Warn("category cache encode error", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("category cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached category set by scanning for the prefix.
func (c *CategorySnapshots) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := c.client.Scan(ctx, cursor, categoryKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("category cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("category cache delete error", "error", err)
				return
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	slog.Debug("category cache invalidated", "keys", deleted)
}
