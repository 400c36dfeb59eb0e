// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"treepress/internal/models"
)

// PostStore reads posts from the database.
type PostStore struct {
	pool *pgxpool.Pool
}

// NewPostStore returns a new PostStore.
func NewPostStore(pool *pgxpool.Pool) *PostStore {
	return &PostStore{pool: pool}
}

const postColumns = `id, title, slug, excerpt, owner, categories, tags, published, deleted,
	visible, pinned, priority, publish_time, base_snapshot, release_snapshot, annotations, created_at`

const postOrder = `COALESCE(pinned, FALSE) DESC, COALESCE(priority, 0) DESC,
	publish_time DESC NULLS LAST, id COLLATE "C" DESC`

func scanPost(row pgx.Row) (*models.Post, error) {
	var (
		p       models.Post
		visible string
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Owner, &p.Categories, &p.Tags,
		&p.Published, &p.Deleted, &visible, &p.Pinned, &p.Priority, &p.PublishTime,
		&p.BaseSnapshot, &p.ReleaseSnapshot, &p.Annotations, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Visible = models.Visibility(visible)
	return &p, nil
}

// FindPost retrieves a post by ID regardless of its visibility. Returns nil
// if not found.
func (s *PostStore) FindPost(ctx context.Context, id string) (*models.Post, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

// postFilter translates a query predicate into a WHERE clause and its
// arguments. ok is false when the predicate can match no row.
func postFilter(q models.PostQuery) (where string, args []any, ok bool) {
	var conds []string
	if q.PublicOnly {
		args = append(args, string(models.VisibilityPublic))
		conds = append(conds, fmt.Sprintf("published AND NOT deleted AND visible = $%d", len(args)))
	}
	if q.AnyCategory != nil {
		ids := make([]string, 0, len(q.AnyCategory))
		for _, id := range q.AnyCategory {
			if strings.TrimSpace(id) != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return "", nil, false
		}
		args = append(args, ids)
		conds = append(conds, fmt.Sprintf("categories && $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args, true
	}
	return " WHERE " + strings.Join(conds, " AND "), args, true
}

// ListPosts returns one page of posts matching q.
func (s *PostStore) ListPosts(ctx context.Context, q models.PostQuery) (models.Page[models.Post], error) {
	where, args, ok := postFilter(q)
	if !ok {
		return models.EmptyPage[models.Post](q.Page, q.Size), nil
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return models.Page[models.Post]{}, fmt.Errorf("count posts: %w", err)
	}

	n := len(args)
	args = append(args, q.Size, models.Offset(q.Page, q.Size))
	rows, err := s.pool.Query(ctx,
		`SELECT `+postColumns+` FROM posts`+where+
			` ORDER BY `+postOrder+
			fmt.Sprintf(` LIMIT $%d OFFSET $%d`, n+1, n+2),
		args...,
	)
	if err != nil {
		return models.Page[models.Post]{}, fmt.Errorf("list posts: %w", err)
	}
	items, err := collectPosts(rows)
	if err != nil {
		return models.Page[models.Post]{}, err
	}
	return models.NewPage(q.Page, q.Size, total, items), nil
}

// ListAllPosts returns every post matching q in listing order. Page and
// Size are ignored.
func (s *PostStore) ListAllPosts(ctx context.Context, q models.PostQuery) ([]models.Post, error) {
	where, args, ok := postFilter(q)
	if !ok {
		return []models.Post{}, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT `+postColumns+` FROM posts`+where+` ORDER BY `+postOrder, args...)
	if err != nil {
		return nil, fmt.Errorf("list all posts: %w", err)
	}
	return collectPosts(rows)
}

func collectPosts(rows pgx.Rows) ([]models.Post, error) {
	defer rows.Close()
	items := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}
