package finder

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"treepress/internal/models"
)

var epoch = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// fakeStore is an in-memory record store that applies the same predicate
// and ordering contracts as the real backends.
type fakeStore struct {
	mu         sync.Mutex
	categories []models.Category
	posts      []models.Post
	snapshots  map[string]models.Snapshot
	counters   map[string]models.Counter

	failCounters map[string]bool
	counterDelay map[string]time.Duration
	listErr      error
	postQueries  []models.PostQuery
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		snapshots:    map[string]models.Snapshot{},
		counters:     map[string]models.Counter{},
		failCounters: map[string]bool{},
		counterDelay: map[string]time.Duration{},
	}
}

func (s *fakeStore) FindCategory(_ context.Context, id string) (*models.Category, error) {
	for _, c := range s.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ListCategories(_ context.Context, page, size int) (models.Page[models.Category], error) {
	if s.listErr != nil {
		return models.Page[models.Category]{}, s.listErr
	}
	sorted := slices.Clone(s.categories)
	slices.SortFunc(sorted, func(a, b models.Category) int { return models.CompareCategoriesDesc(&a, &b) })
	return models.Paginate(sorted, page, size), nil
}

func (s *fakeStore) ListAllCategories(context.Context) ([]models.Category, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return slices.Clone(s.categories), nil
}

func (s *fakeStore) FindPost(_ context.Context, id string) (*models.Post, error) {
	for _, p := range s.posts {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) filterPosts(q models.PostQuery) []models.Post {
	s.mu.Lock()
	s.postQueries = append(s.postQueries, q)
	s.mu.Unlock()

	var out []models.Post
	for _, p := range s.posts {
		if q.Matches(&p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Post) int { return models.ComparePosts(&a, &b) })
	return out
}

func (s *fakeStore) ListPosts(_ context.Context, q models.PostQuery) (models.Page[models.Post], error) {
	return models.Paginate(s.filterPosts(q), q.Page, q.Size), nil
}

func (s *fakeStore) ListAllPosts(_ context.Context, q models.PostQuery) ([]models.Post, error) {
	return s.filterPosts(q), nil
}

func (s *fakeStore) FindSnapshot(_ context.Context, id string) (*models.Snapshot, error) {
	snap, ok := s.snapshots[id]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *fakeStore) FindCounter(ctx context.Context, subjectID string) (*models.Counter, error) {
	if d := s.counterDelay[subjectID]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.failCounters[subjectID] {
		return nil, errors.New("counter backend down")
	}
	c, ok := s.counters[subjectID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func category(id string, minute int, children ...string) models.Category {
	return models.Category{
		ID:          id,
		DisplayName: id,
		CreatedAt:   epoch.Add(time.Duration(minute) * time.Minute),
		Children:    children,
	}
}

func publicPost(id string, categories ...string) models.Post {
	return models.Post{
		ID:         id,
		Title:      "Post " + id,
		Categories: categories,
		Published:  true,
		Visible:    models.VisibilityPublic,
	}
}
