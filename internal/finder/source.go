// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package finder provides the read-only query layer over categories and
// posts. It fetches records from a record store, assembles the category
// forest per call, and maps records to views.
package finder

import (
	"context"
	"errors"
	"fmt"

	"treepress/internal/models"
)

// ErrValidation marks a request that violates a precondition of the
// operation. It is never recovered locally.
var ErrValidation = errors.New("validation failed")

// ErrNotBaseSnapshot is returned when a post's base snapshot lacks the
// keep-raw marker.
var ErrNotBaseSnapshot = fmt.Errorf("%w: snapshot is not a base snapshot", ErrValidation)

// CategorySource reads category records. Find methods return nil, nil
// when the record does not exist.
type CategorySource interface {
	FindCategory(ctx context.Context, id string) (*models.Category, error)
	// ListCategories returns one page ordered by models.CompareCategoriesDesc.
	ListCategories(ctx context.Context, page, size int) (models.Page[models.Category], error)
	// ListAllCategories returns the complete category set in one call.
	ListAllCategories(ctx context.Context) ([]models.Category, error)
}

// PostSource reads post records. Lists are filtered by the query
// predicate and ordered by models.ComparePosts.
type PostSource interface {
	FindPost(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, q models.PostQuery) (models.Page[models.Post], error)
	ListAllPosts(ctx context.Context, q models.PostQuery) ([]models.Post, error)
}

// SnapshotSource reads content snapshots.
type SnapshotSource interface {
	FindSnapshot(ctx context.Context, id string) (*models.Snapshot, error)
}

// CounterSource reads engagement counters.
type CounterSource interface {
	FindCounter(ctx context.Context, subjectID string) (*models.Counter, error)
}
