// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package finder

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"treepress/internal/models"
	"treepress/internal/tree"
)

// DefaultEnrichConcurrency bounds the number of parallel stats lookups per
// page when none is configured.
const DefaultEnrichConcurrency = 4

// PostFinder answers public post queries. Only posts that are published,
// not deleted, and publicly visible are ever returned.
type PostFinder struct {
	posts       PostSource
	snapshots   SnapshotSource
	counters    CounterSource
	categories  *CategoryFinder
	concurrency int
}

// NewPostFinder creates a PostFinder. A concurrency below 1 uses
// DefaultEnrichConcurrency.
func NewPostFinder(posts PostSource, snapshots SnapshotSource, counters CounterSource, categories *CategoryFinder, concurrency int) *PostFinder {
	if concurrency < 1 {
		concurrency = DefaultEnrichConcurrency
	}
	return &PostFinder{
		posts:       posts,
		snapshots:   snapshots,
		counters:    counters,
		categories:  categories,
		concurrency: concurrency,
	}
}

// Get returns a public post with its stats and released content, or nil
// if the post does not exist or is not public.
func (f *PostFinder) Get(ctx context.Context, id string) (*models.PostDetail, error) {
	post, err := f.findPublic(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}

	content, err := f.releaseContent(ctx, post)
	if err != nil {
		return nil, err
	}

	detail := &models.PostDetail{
		ListedPost:  models.NewListedPost(post),
		Annotations: post.Annotations,
		Content:     content,
	}
	detail.Stats = f.stats(ctx, post.ID)
	return detail, nil
}

// Content returns the released content of a public post, or nil if the
// post does not exist, is not public, or has no snapshot.
func (f *PostFinder) Content(ctx context.Context, id string) (*models.ContentView, error) {
	post, err := f.findPublic(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}
	return f.releaseContent(ctx, post)
}

// Annotations returns the annotations of a public post whose keys match
// the regular expression pattern. It returns nil if the post is not found.
func (f *PostFinder) Annotations(ctx context.Context, id, pattern string) (map[string]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: annotation pattern: %v", ErrValidation, err)
	}

	post, err := f.findPublic(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}

	matched := make(map[string]string)
	for k, v := range post.Annotations {
		if re.MatchString(k) {
			matched[k] = v
		}
	}
	return matched, nil
}

// ListAll returns every public post in listing order, without stats.
func (f *PostFinder) ListAll(ctx context.Context) ([]models.ListedPost, error) {
	posts, err := f.posts.ListAllPosts(ctx, models.PostQuery{PublicOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list all posts: %w", err)
	}

	listed := make([]models.ListedPost, 0, len(posts))
	for i := range posts {
		listed = append(listed, models.NewListedPost(&posts[i]))
	}
	return listed, nil
}

// ListByCategoryAndDescendants returns one page of public posts filed
// under the given category or any category beneath it. A nil page or size
// defaults to 1 and 10. An unknown category yields an empty page.
func (f *PostFinder) ListByCategoryAndDescendants(ctx context.Context, page, size *int, categoryID string) (models.Page[models.ListedPost], error) {
	p, s := models.PageOrDefault(page), models.SizeOrDefault(size)

	node, err := f.categories.Node(ctx, categoryID)
	if err != nil {
		return models.Page[models.ListedPost]{}, err
	}
	ids := tree.Flatten(node)
	if len(ids) == 0 {
		return models.EmptyPage[models.ListedPost](p, s), nil
	}

	result, err := f.posts.ListPosts(ctx, models.PostQuery{
		PublicOnly:  true,
		AnyCategory: ids,
		Page:        p,
		Size:        s,
	})
	if err != nil {
		return models.Page[models.ListedPost]{}, fmt.Errorf("list posts by category %s: %w", categoryID, err)
	}
	if len(result.Items) == 0 {
		return models.NewPage[models.ListedPost](p, s, result.Total, nil), nil
	}

	listed, err := f.enrich(ctx, result.Items)
	if err != nil {
		return models.Page[models.ListedPost]{}, err
	}
	return models.NewPage(result.Page, result.Size, result.Total, listed), nil
}

// enrich maps posts to listing views and fills in their stats in
// parallel. Each result is written to the slot of its post, so the output
// order always matches the input order.
func (f *PostFinder) enrich(ctx context.Context, posts []models.Post) ([]models.ListedPost, error) {
	listed := make([]models.ListedPost, len(posts))
	for i := range posts {
		listed[i] = models.NewListedPost(&posts[i])
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i := range listed {
		g.Go(func() error {
			listed[i].Stats = f.stats(gctx, listed[i].ID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return listed, nil
}

// stats fetches the counters for a post. Failures and misses degrade to
// zero stats.
func (f *PostFinder) stats(ctx context.Context, postID string) models.Stats {
	if f.counters == nil {
		return models.Stats{}
	}
	counter, err := f.counters.FindCounter(ctx, models.CounterSubject(postID))
	if err != nil {
		slog.Warn("post stats unavailable", "post", postID, "error", err)
		return models.Stats{}
	}
	if counter == nil {
		return models.Stats{}
	}
	return counter.Stats()
}

func (f *PostFinder) findPublic(ctx context.Context, id string) (*models.Post, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	post, err := f.posts.FindPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find post %s: %w", id, err)
	}
	if post == nil || !post.IsPublic() {
		return nil, nil
	}
	return post, nil
}
