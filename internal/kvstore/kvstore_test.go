package kvstore

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"treepress/internal/models"
)

var epoch = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func fixture() models.Dataset {
	t1 := epoch.Add(time.Hour)
	return models.Dataset{
		Categories: []models.Category{
			{ID: "a", Children: []string{"b"}, CreatedAt: epoch},
			{ID: "b", CreatedAt: epoch.Add(time.Minute)},
			{ID: "c", Priority: ptr(2), CreatedAt: epoch},
		},
		Posts: []models.Post{
			{ID: "p1", Categories: []string{"a"}, Published: true, Visible: models.VisibilityPublic, PublishTime: &epoch},
			{ID: "p2", Categories: []string{"b"}, Published: true, Visible: models.VisibilityPublic, PublishTime: &t1},
			{ID: "p3", Categories: []string{"b"}, Published: true, Visible: models.VisibilityPublic, Pinned: ptr(true)},
			{ID: "p4", Categories: []string{"a"}, Published: false, Visible: models.VisibilityPublic},
		},
		Snapshots: []models.Snapshot{
			{ID: "s1", SubjectID: "p1", RawType: models.RawTypeMarkdown, Raw: "# hi",
				Annotations: map[string]string{models.KeepRawAnnotation: "true"}},
		},
		Counters: []models.Counter{{SubjectID: "posts/p1", Visits: 3}},
	}
}

func TestStoreCategories(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	if err := s.Load(ctx, fixture()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	c, err := s.FindCategory(ctx, "a")
	if err != nil || c == nil || !slices.Equal(c.Children, []string{"b"}) {
		t.Fatalf("FindCategory(a) = %+v, %v", c, err)
	}
	if c, err := s.FindCategory(ctx, "zz"); err != nil || c != nil {
		t.Errorf("FindCategory(zz) = %v, %v; want nil, nil", c, err)
	}

	all, err := s.ListAllCategories(ctx)
	if err != nil {
		t.Fatalf("ListAllCategories: %v", err)
	}
	var ids []string
	for _, c := range all {
		ids = append(ids, c.ID)
	}
	if !slices.Equal(ids, []string{"c", "b", "a"}) {
		t.Errorf("order: got %v", ids)
	}

	page, err := s.ListCategories(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 1 || page.Items[0].ID != "a" {
		t.Errorf("page 2: got %+v", page)
	}
}

func TestStoreCategoryVersion(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	v0, err := s.CategoryVersion(ctx)
	if err != nil {
		t.Fatalf("CategoryVersion: %v", err)
	}
	if err := s.Load(ctx, fixture()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	v1, _ := s.CategoryVersion(ctx)
	if v1 == v0 {
		t.Errorf("version unchanged after load: %s", v1)
	}

	if err := deleteCategory(s, "c"); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	v2, _ := s.CategoryVersion(ctx)
	if v2 == v1 {
		t.Errorf("version unchanged after delete: %s", v2)
	}
	if c, _ := s.FindCategory(ctx, "c"); c != nil {
		t.Errorf("deleted category still present: %+v", c)
	}

	// Post-only loads leave the category version alone.
	if err := s.Load(ctx, models.Dataset{Posts: []models.Post{{ID: "px"}}}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v3, _ := s.CategoryVersion(ctx); v3 != v2 {
		t.Errorf("version changed on post load: %s -> %s", v2, v3)
	}
}

func TestStorePosts(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	if err := s.Load(ctx, fixture()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name  string
		query models.PostQuery
		want  []string
	}{
		{"public in b", models.PostQuery{PublicOnly: true, AnyCategory: []string{"b"}}, []string{"p3", "p2"}},
		{"public anywhere", models.PostQuery{PublicOnly: true}, []string{"p3", "p2", "p1"}},
		{"everything in a", models.PostQuery{AnyCategory: []string{"a"}}, []string{"p1", "p4"}},
		{"empty set", models.PostQuery{AnyCategory: []string{}}, []string{}},
		{"blank id", models.PostQuery{AnyCategory: []string{""}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListAllPosts(ctx, tt.query)
			if err != nil {
				t.Fatalf("ListAllPosts: %v", err)
			}
			ids := []string{}
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			if !slices.Equal(ids, tt.want) {
				t.Errorf("got %v, want %v", ids, tt.want)
			}
		})
	}

	page, err := s.ListPosts(ctx, models.PostQuery{PublicOnly: true, Page: 2, Size: 2})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 1 || page.Items[0].ID != "p1" {
		t.Errorf("page 2: got %+v", page)
	}

	p, err := s.FindPost(ctx, "p4")
	if err != nil || p == nil || p.Published {
		t.Errorf("FindPost(p4) = %+v, %v", p, err)
	}
}

func TestStoreSnapshotsAndCounters(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	if err := s.Load(ctx, fixture()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	snap, err := s.FindSnapshot(ctx, "s1")
	if err != nil || snap == nil || !snap.IsBase() || snap.Raw != "# hi" {
		t.Errorf("FindSnapshot(s1) = %+v, %v", snap, err)
	}
	if snap, err := s.FindSnapshot(ctx, "s9"); err != nil || snap != nil {
		t.Errorf("FindSnapshot(s9) = %v, %v", snap, err)
	}

	c, err := s.FindCounter(ctx, models.CounterSubject("p1"))
	if err != nil || c == nil || c.Visits != 3 {
		t.Errorf("FindCounter(p1) = %+v, %v", c, err)
	}
	if c, err := s.FindCounter(ctx, models.CounterSubject("p2")); err != nil || c != nil {
		t.Errorf("FindCounter(p2) = %v, %v", c, err)
	}
}

func TestStorePersistsToDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Load(ctx, fixture()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	c, err := s.FindCategory(ctx, "b")
	if err != nil || c == nil {
		t.Errorf("FindCategory after reopen = %v, %v", c, err)
	}
}

// deleteCategory removes a record directly and bumps the version the way
// every category write does.
func deleteCategory(s *Store, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(categoryPrefix + id)); err != nil {
			return err
		}
		return bumpVersion(txn)
	})
}
