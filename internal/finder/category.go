// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package finder

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"treepress/internal/models"
	"treepress/internal/tree"
)

// CategoryFinder answers category queries. Every tree query fetches the
// full category set and assembles a fresh forest; nothing is kept between
// calls.
type CategoryFinder struct {
	source    CategorySource
	assembler tree.Assembler
}

// NewCategoryFinder creates a CategoryFinder. With strictParents set, tree
// queries fail when a category is declared as a child of more than one
// parent or sits on a cycle.
func NewCategoryFinder(source CategorySource, strictParents bool) *CategoryFinder {
	return &CategoryFinder{
		source:    source,
		assembler: tree.Assembler{StrictParents: strictParents},
	}
}

// Get returns the category with the given ID, or nil if it does not exist
// or id is blank.
func (f *CategoryFinder) Get(ctx context.Context, id string) (*models.CategoryView, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	c, err := f.source.FindCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}
	if c == nil {
		return nil, nil
	}
	v := models.NewCategoryView(c)
	return &v, nil
}

// GetMany returns the categories for ids in the given order, skipping IDs
// that do not exist.
func (f *CategoryFinder) GetMany(ctx context.Context, ids []string) ([]models.CategoryView, error) {
	views := make([]models.CategoryView, 0, len(ids))
	for _, id := range ids {
		v, err := f.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if v != nil {
			views = append(views, *v)
		}
	}
	return views, nil
}

// List returns one page of categories, highest priority and newest first.
// A nil page or size defaults to 1 and 10.
func (f *CategoryFinder) List(ctx context.Context, page, size *int) (models.Page[models.CategoryView], error) {
	p, s := models.PageOrDefault(page), models.SizeOrDefault(size)

	result, err := f.source.ListCategories(ctx, p, s)
	if err != nil {
		return models.Page[models.CategoryView]{}, fmt.Errorf("list categories: %w", err)
	}
	if len(result.Items) == 0 {
		return models.NewPage[models.CategoryView](p, s, result.Total, nil), nil
	}

	views := make([]models.CategoryView, 0, len(result.Items))
	for i := range result.Items {
		views = append(views, models.NewCategoryView(&result.Items[i]))
	}
	return models.NewPage(result.Page, result.Size, result.Total, views), nil
}

// ListAll returns every category, highest priority and newest first.
func (f *CategoryFinder) ListAll(ctx context.Context) ([]models.CategoryView, error) {
	records, err := f.source.ListAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all categories: %w", err)
	}
	slices.SortFunc(records, func(a, b models.Category) int {
		return models.CompareCategoriesDesc(&a, &b)
	})

	views := make([]models.CategoryView, 0, len(records))
	for i := range records {
		views = append(views, models.NewCategoryView(&records[i]))
	}
	return views, nil
}

// Forest assembles the full category forest.
func (f *CategoryFinder) Forest(ctx context.Context) (*tree.Forest, error) {
	records, err := f.source.ListAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all categories: %w", err)
	}
	forest, err := f.assembler.Build(records)
	if err != nil {
		slog.Warn("category tree rejected", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return forest, nil
}

// ListAsTree returns the roots of the category forest with nested children.
func (f *CategoryFinder) ListAsTree(ctx context.Context) ([]*tree.Node, error) {
	forest, err := f.Forest(ctx)
	if err != nil {
		return nil, err
	}
	return forest.Roots, nil
}

// ListChildren returns the direct children of the category with the given
// ID, each with its own subtree. A blank ID returns the roots.
func (f *CategoryFinder) ListChildren(ctx context.Context, id string) ([]*tree.Node, error) {
	forest, err := f.Forest(ctx)
	if err != nil {
		return nil, err
	}
	return forest.ChildrenOf(strings.TrimSpace(id)), nil
}

// TreeOf returns the whole top-level tree that contains the given
// category, as a one-element forest, or an empty forest when the category
// is not reachable from any root.
func (f *CategoryFinder) TreeOf(ctx context.Context, id string) ([]*tree.Node, error) {
	forest, err := f.Forest(ctx)
	if err != nil {
		return nil, err
	}
	top := tree.TopLevelOf(forest.Roots, id)
	if top == nil {
		return []*tree.Node{}, nil
	}
	return []*tree.Node{top}, nil
}

// PathTo returns the categories from a root down to the given category,
// inclusive. The path is empty when the category does not exist.
func (f *CategoryFinder) PathTo(ctx context.Context, id string) ([]*tree.Node, error) {
	forest, err := f.Forest(ctx)
	if err != nil {
		return nil, err
	}
	return tree.PathTo(forest.Roots, id), nil
}

// Node returns the assembled node for the given category with its subtree,
// or nil when it is not reachable from a root.
func (f *CategoryFinder) Node(ctx context.Context, id string) (*tree.Node, error) {
	forest, err := f.Forest(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Find(forest.Roots, id), nil
}

// Descendants returns the ID of the given category followed by the IDs of
// everything beneath it. It is empty when the category does not exist.
func (f *CategoryFinder) Descendants(ctx context.Context, id string) ([]string, error) {
	n, err := f.Node(ctx, id)
	if err != nil {
		return nil, err
	}
	return tree.Flatten(n), nil
}
