package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"treepress/internal/models"
	"treepress/internal/slug"
)

// DevDataset returns the development fixture: a small category forest with
// posts, snapshots, and counters. Times are relative to now.
func DevDataset(now time.Time) models.Dataset {
	at := func(minutes int) time.Time { return now.Add(time.Duration(minutes) * time.Minute).UTC() }
	pinned := true
	featured := 10

	categories := []models.Category{
		{ID: "tech", DisplayName: "Technology", Children: []string{"golang", "databases"}, CreatedAt: at(-600)},
		{ID: "golang", DisplayName: "Go", Children: []string{"concurrency"}, CreatedAt: at(-590)},
		{ID: "concurrency", DisplayName: "Concurrency", CreatedAt: at(-580)},
		{ID: "databases", DisplayName: "Databases", CreatedAt: at(-570)},
		{ID: "life", DisplayName: "Life", Children: []string{"travel"}, CreatedAt: at(-560)},
		{ID: "travel", DisplayName: "Travel", CreatedAt: at(-550)},
	}
	for i := range categories {
		categories[i].Slug = slug.Generate(categories[i].DisplayName)
	}

	type postSeed struct {
		id, title, body string
		categories      []string
		publishedAgo    int
	}
	seeds := []postSeed{
		{id: "hello-treepress", title: "Hello, treepress", body: "# Hello\n\nThe first post.", categories: []string{"tech"}, publishedAgo: 300},
		{id: "channels-in-practice", title: "Channels in practice", body: "Use `select` with a `context.Context`.", categories: []string{"concurrency"}, publishedAgo: 200},
		{id: "postgres-arrays", title: "Postgres arrays", body: "The `&&` operator tests overlap.", categories: []string{"databases"}, publishedAgo: 100},
		{id: "lisbon", title: "A week in Lisbon", body: "Trams and tiles.", categories: []string{"travel"}, publishedAgo: 50},
	}

	var ds models.Dataset
	ds.Categories = categories
	for i, s := range seeds {
		snapID := uuid.NewString()
		published := at(-s.publishedAgo)
		post := models.Post{
			ID:              s.id,
			Title:           s.title,
			Slug:            slug.Generate(s.title),
			Owner:           "admin",
			Categories:      s.categories,
			Published:       true,
			Visible:         models.VisibilityPublic,
			PublishTime:     &published,
			BaseSnapshot:    snapID,
			ReleaseSnapshot: snapID,
			Annotations:     map[string]string{"links.treepress.io/source": "seed"},
			CreatedAt:       published,
		}
		if i == 0 {
			post.Pinned = &pinned
			post.Priority = &featured
		}
		ds.Posts = append(ds.Posts, post)
		ds.Snapshots = append(ds.Snapshots, models.Snapshot{
			ID:          snapID,
			SubjectID:   s.id,
			RawType:     models.RawTypeMarkdown,
			Raw:         s.body,
			Annotations: map[string]string{models.KeepRawAnnotation: "true"},
			CreatedAt:   published,
		})
		ds.Counters = append(ds.Counters, models.Counter{
			SubjectID: models.CounterSubject(s.id),
			Visits:    int64(10 * (len(seeds) - i)),
			Upvotes:   int64(len(seeds) - i),
		})
	}
	return ds
}

// Seed populates an empty database with the development dataset. It is a
// no-op when any category already exists.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	ds := DevDataset(time.Now())
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		return Load(ctx, tx, ds)
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	slog.Info("database seeded with development data",
		"categories", len(ds.Categories),
		"posts", len(ds.Posts),
	)
	return nil
}

// Load inserts or replaces every record of ds using tx.
func Load(ctx context.Context, tx pgx.Tx, ds models.Dataset) error {
	batch := &pgx.Batch{}
	for _, c := range ds.Categories {
		children := c.Children
		if children == nil {
			children = []string{}
		}
		batch.Queue(`
			INSERT INTO categories (id, display_name, slug, description, cover, priority, children, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			ON CONFLICT (id) DO UPDATE SET
				display_name = EXCLUDED.display_name, slug = EXCLUDED.slug,
				description = EXCLUDED.description, cover = EXCLUDED.cover,
				priority = EXCLUDED.priority, children = EXCLUDED.children,
				created_at = EXCLUDED.created_at, updated_at = NOW()`,
			c.ID, c.DisplayName, c.Slug, c.Description, c.Cover, c.Priority, children, c.CreatedAt,
		)
	}
	for _, p := range ds.Posts {
		categories, tags := p.Categories, p.Tags
		if categories == nil {
			categories = []string{}
		}
		if tags == nil {
			tags = []string{}
		}
		batch.Queue(`
			INSERT INTO posts (id, title, slug, excerpt, owner, categories, tags, published, deleted,
			                   visible, pinned, priority, publish_time, base_snapshot, release_snapshot,
			                   annotations, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title, slug = EXCLUDED.slug, excerpt = EXCLUDED.excerpt,
				owner = EXCLUDED.owner, categories = EXCLUDED.categories, tags = EXCLUDED.tags,
				published = EXCLUDED.published, deleted = EXCLUDED.deleted, visible = EXCLUDED.visible,
				pinned = EXCLUDED.pinned, priority = EXCLUDED.priority, publish_time = EXCLUDED.publish_time,
				base_snapshot = EXCLUDED.base_snapshot, release_snapshot = EXCLUDED.release_snapshot,
				annotations = EXCLUDED.annotations, created_at = EXCLUDED.created_at`,
			p.ID, p.Title, p.Slug, p.Excerpt, p.Owner, categories, tags, p.Published, p.Deleted,
			string(p.Visible), p.Pinned, p.Priority, p.PublishTime, p.BaseSnapshot, p.ReleaseSnapshot,
			p.Annotations, p.CreatedAt,
		)
	}
	for _, s := range ds.Snapshots {
		batch.Queue(`
			INSERT INTO snapshots (id, subject_id, raw_type, raw, content, annotations, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				subject_id = EXCLUDED.subject_id, raw_type = EXCLUDED.raw_type, raw = EXCLUDED.raw,
				content = EXCLUDED.content, annotations = EXCLUDED.annotations`,
			s.ID, s.SubjectID, string(s.RawType), s.Raw, s.Content, s.Annotations, s.CreatedAt,
		)
	}
	for _, c := range ds.Counters {
		batch.Queue(`
			INSERT INTO counters (subject_id, visits, upvotes, approved_comments)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (subject_id) DO UPDATE SET
				visits = EXCLUDED.visits, upvotes = EXCLUDED.upvotes,
				approved_comments = EXCLUDED.approved_comments`,
			c.SubjectID, c.Visits, c.Upvotes, c.ApprovedComments,
		)
	}

	if batch.Len() == 0 {
		return nil
	}
	return tx.SendBatch(ctx, batch).Close()
}
