package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"treepress/internal/cache"
	"treepress/internal/config"
	"treepress/internal/database"
	"treepress/internal/finder"
	"treepress/internal/kvstore"
	"treepress/internal/store"
)

// sources bundles the record readers the finders consume, plus the
// resources that back them.
type sources struct {
	categories finder.CategorySource
	posts      finder.PostSource
	snapshots  finder.SnapshotSource
	counters   finder.CounterSource

	closers []func()
}

// Close releases the backing resources in reverse order of acquisition.
func (s *sources) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openSources opens the record store selected by cfg.StoreDriver.
func openSources(ctx context.Context, cfg *config.Config) (*sources, error) {
	switch cfg.StoreDriver {
	case config.DriverBadger:
		return openBadger(ctx, cfg)
	default:
		return openPostgres(ctx, cfg)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*sources, error) {
	pool, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	src := &sources{closers: []func(){pool.Close}}

	if err := database.Migrate(pool); err != nil {
		src.Close()
		return nil, err
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(ctx, pool); err != nil {
			src.Close()
			return nil, err
		}
	}

	categories := store.NewCategoryStore(pool)
	src.categories = categories
	src.posts = store.NewPostStore(pool)
	src.snapshots = store.NewSnapshotStore(pool)
	src.counters = store.NewCounterStore(pool)

	// The category snapshot cache is optional; without Valkey every
	// request reads the full set from PostgreSQL.
	client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, category cache disabled", "error", err)
		return src, nil
	}
	src.closers = append(src.closers, func() { client.Close() })
	snapshots := cache.NewCategorySnapshots(categories, client, cfg.CategoryCacheTTL)
	src.categories = snapshots
	slog.Info("category cache enabled", "ttl", cfg.CategoryCacheTTL)

	// Development databases are recreated freely; drop category sets cached
	// by earlier runs so stale versions cannot be served.
	if cfg.IsDev() {
		snapshots.InvalidateAll(ctx)
	}

	return src, nil
}

func openBadger(ctx context.Context, cfg *config.Config) (*sources, error) {
	kv, err := kvstore.Open(cfg.BadgerPath)
	if err != nil {
		return nil, err
	}
	src := &sources{
		categories: kv,
		posts:      kv,
		snapshots:  kv,
		counters:   kv,
		closers: []func(){func() {
			if err := kv.Close(); err != nil {
				slog.Warn("close badger store", "error", err)
			}
		}},
	}

	if cfg.IsDev() {
		existing, err := kv.ListAllCategories(ctx)
		if err != nil {
			src.Close()
			return nil, err
		}
		if len(existing) == 0 {
			if err := kv.Load(ctx, database.DevDataset(time.Now())); err != nil {
				src.Close()
				return nil, fmt.Errorf("seed badger store: %w", err)
			}
			slog.Info("badger store seeded with development data")
		}
	}

	if cfg.BadgerPath == "" {
		slog.Warn("badger path not set, records are kept in memory only")
	}
	return src, nil
}
