// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the record sources on PostgreSQL through a pgx
// connection pool. Lookups return nil, nil when a row does not exist.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"treepress/internal/models"
)

// CategoryStore reads categories from the database.
type CategoryStore struct {
	pool *pgxpool.Pool
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(pool *pgxpool.Pool) *CategoryStore {
	return &CategoryStore{pool: pool}
}

const categoryColumns = `id, display_name, slug, description, cover, priority, children, created_at, updated_at`

// Listing order; the COLLATE keeps ID ties in byte order.
const categoryOrder = `COALESCE(priority, 0) DESC, created_at DESC, id COLLATE "C" DESC`

// scanCategory scans a row into a Category struct.
func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	err := row.Scan(
		&c.ID, &c.DisplayName, &c.Slug, &c.Description, &c.Cover,
		&c.Priority, &c.Children, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCategories(rows pgx.Rows) ([]models.Category, error) {
	defer rows.Close()
	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindCategory retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindCategory(ctx context.Context, id string) (*models.Category, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

// ListCategories returns one page of categories, highest priority and
// newest first.
func (s *CategoryStore) ListCategories(ctx context.Context, page, size int) (models.Page[models.Category], error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return models.Page[models.Category]{}, fmt.Errorf("count categories: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		ORDER BY `+categoryOrder+`
		LIMIT $1 OFFSET $2`,
		size, models.Offset(page, size),
	)
	if err != nil {
		return models.Page[models.Category]{}, fmt.Errorf("list categories: %w", err)
	}
	items, err := collectCategories(rows)
	if err != nil {
		return models.Page[models.Category]{}, err
	}
	return models.NewPage(page, size, total, items), nil
}

// ListAllCategories returns every category in listing order.
func (s *CategoryStore) ListAllCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY `+categoryOrder)
	if err != nil {
		return nil, fmt.Errorf("list all categories: %w", err)
	}
	return collectCategories(rows)
}

// CategoryVersion returns a token that changes whenever the category set
// changes. Deletes are caught by the row count.
func (s *CategoryStore) CategoryVersion(ctx context.Context) (string, error) {
	var (
		count   int64
		updated *time.Time
	)
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*), MAX(updated_at) FROM categories`).Scan(&count, &updated)
	if err != nil {
		return "", fmt.Errorf("category version: %w", err)
	}
	if updated == nil {
		return fmt.Sprintf("%d-0", count), nil
	}
	return fmt.Sprintf("%d-%d", count, updated.UnixMicro()), nil
}
