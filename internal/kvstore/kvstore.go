// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package kvstore implements the record sources on an embedded Badger
// database. Records are stored as JSON under a per-kind key prefix; list
// queries scan the prefix and apply the same predicate and ordering as the
// PostgreSQL store.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"treepress/internal/models"
)

const (
	categoryPrefix = "category:"
	postPrefix     = "post:"
	snapshotPrefix = "snapshot:"
	counterPrefix  = "counter:"

	categoryVersionKey = "meta:category-version"
)

// Store is a Badger-backed record store.
type Store struct {
	db *badger.DB
}

// Open opens the database at path. An empty path opens an in-memory
// database that is discarded on Close.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true
		opts.CompactL0OnClose = true
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	slog.Info("badger store opened", "path", path, "in_memory", path == "")
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// get decodes the value stored at key into dest. It reports false when the
// key does not exist.
func (s *Store) get(key string, dest any) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// scan decodes every value under prefix.
func scan[T any](s *Store, prefix string) ([]T, error) {
	items := []T{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var v T
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			items = append(items, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func setJSON(txn *badger.Txn, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

// Load writes every record of ds in a single transaction, replacing
// records with the same key.
func (s *Store) Load(_ context.Context, ds models.Dataset) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, c := range ds.Categories {
			if err := setJSON(txn, categoryPrefix+c.ID, c); err != nil {
				return err
			}
		}
		for _, p := range ds.Posts {
			if err := setJSON(txn, postPrefix+p.ID, p); err != nil {
				return err
			}
		}
		for _, sn := range ds.Snapshots {
			if err := setJSON(txn, snapshotPrefix+sn.ID, sn); err != nil {
				return err
			}
		}
		for _, c := range ds.Counters {
			if err := setJSON(txn, counterPrefix+c.SubjectID, c); err != nil {
				return err
			}
		}
		if len(ds.Categories) > 0 {
			return bumpVersion(txn)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	return nil
}

func bumpVersion(txn *badger.Txn) error {
	var n uint64
	item, err := txn.Get([]byte(categoryVersionKey))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return err
	default:
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &n) }); err != nil {
			return err
		}
	}
	return setJSON(txn, categoryVersionKey, n+1)
}

// FindCategory returns the category with id, or nil if it does not exist.
func (s *Store) FindCategory(_ context.Context, id string) (*models.Category, error) {
	var c models.Category
	ok, err := s.get(categoryPrefix+id, &c)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// ListCategories returns one page of categories, highest priority and
// newest first.
func (s *Store) ListCategories(ctx context.Context, page, size int) (models.Page[models.Category], error) {
	all, err := s.ListAllCategories(ctx)
	if err != nil {
		return models.Page[models.Category]{}, err
	}
	return models.Paginate(all, page, size), nil
}

// ListAllCategories returns every category in listing order.
func (s *Store) ListAllCategories(context.Context) ([]models.Category, error) {
	items, err := scan[models.Category](s, categoryPrefix)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	slices.SortFunc(items, func(a, b models.Category) int { return models.CompareCategoriesDesc(&a, &b) })
	return items, nil
}

// CategoryVersion returns a token that changes on every category write.
func (s *Store) CategoryVersion(context.Context) (string, error) {
	var n uint64
	if _, err := s.get(categoryVersionKey, &n); err != nil {
		return "", fmt.Errorf("category version: %w", err)
	}
	return strconv.FormatUint(n, 10), nil
}

// FindPost returns the post with id regardless of visibility, or nil if it
// does not exist.
func (s *Store) FindPost(_ context.Context, id string) (*models.Post, error) {
	var p models.Post
	ok, err := s.get(postPrefix+id, &p)
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// ListPosts returns one page of posts matching q.
func (s *Store) ListPosts(ctx context.Context, q models.PostQuery) (models.Page[models.Post], error) {
	all, err := s.ListAllPosts(ctx, q)
	if err != nil {
		return models.Page[models.Post]{}, err
	}
	return models.Paginate(all, q.Page, q.Size), nil
}

// ListAllPosts returns every post matching q in listing order.
func (s *Store) ListAllPosts(_ context.Context, q models.PostQuery) ([]models.Post, error) {
	items, err := scan[models.Post](s, postPrefix)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	matched := items[:0]
	for i := range items {
		if q.Matches(&items[i]) {
			matched = append(matched, items[i])
		}
	}
	slices.SortFunc(matched, func(a, b models.Post) int { return models.ComparePosts(&a, &b) })
	return matched, nil
}

// FindSnapshot returns the snapshot with id, or nil if it does not exist.
func (s *Store) FindSnapshot(_ context.Context, id string) (*models.Snapshot, error) {
	var snap models.Snapshot
	ok, err := s.get(snapshotPrefix+id, &snap)
	if err != nil {
		return nil, fmt.Errorf("find snapshot: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

// FindCounter returns the counter for subjectID, or nil if none exists.
func (s *Store) FindCounter(_ context.Context, subjectID string) (*models.Counter, error) {
	var c models.Counter
	ok, err := s.get(counterPrefix+subjectID, &c)
	if err != nil {
		return nil, fmt.Errorf("find counter: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &c, nil
}
