// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Requests run against an in-memory Badger store.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"treepress/internal/finder"
	"treepress/internal/kvstore"
	"treepress/internal/models"
)

var epoch = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func at(minute int) time.Time { return epoch.Add(time.Duration(minute) * time.Minute) }

func ptr[T any](v T) *T { return &v }

// dataset holds
//
//	tech ─┬─ go ── generics
//	      └─ rust
//	life
func dataset() models.Dataset {
	public := func(id string, minute int, categories ...string) models.Post {
		t := at(minute)
		return models.Post{
			ID:          id,
			Title:       "Post " + id,
			Slug:        id,
			Categories:  categories,
			Published:   true,
			Visible:     models.VisibilityPublic,
			PublishTime: &t,
		}
	}

	intro := public("intro", 10, "tech")
	intro.BaseSnapshot = "snap-intro"
	intro.ReleaseSnapshot = "snap-intro"
	intro.Annotations = map[string]string{
		"links.treepress.io/canonical": "https://example.com/intro",
		"seo.treepress.io/title":       "Intro",
	}

	broken := public("broken", 5, "life")
	broken.BaseSnapshot = "snap-broken"

	draft := public("draft", 50, "go")
	draft.Published = false

	return models.Dataset{
		Categories: []models.Category{
			{ID: "tech", DisplayName: "Tech", Children: []string{"go", "rust"}, CreatedAt: at(0)},
			{ID: "go", DisplayName: "Go", Children: []string{"generics"}, CreatedAt: at(1)},
			{ID: "rust", DisplayName: "Rust", CreatedAt: at(2)},
			{ID: "generics", DisplayName: "Generics", CreatedAt: at(3)},
			{ID: "life", DisplayName: "Life", Priority: ptr(1), CreatedAt: at(4)},
		},
		Posts: []models.Post{
			intro,
			public("loops", 20, "go"),
			public("type-params", 30, "generics"),
			public("ownership", 40, "rust"),
			broken,
			draft,
		},
		Snapshots: []models.Snapshot{
			{
				ID:          "snap-intro",
				SubjectID:   "intro",
				RawType:     models.RawTypeMarkdown,
				Raw:         "# Intro",
				Annotations: map[string]string{models.KeepRawAnnotation: "true"},
			},
			{ID: "snap-broken", SubjectID: "broken", RawType: models.RawTypeHTML, Raw: "<p>x</p>"},
		},
		Counters: []models.Counter{
			{SubjectID: models.CounterSubject("loops"), Visits: 12, Upvotes: 3},
		},
	}
}

// testServer wires the API onto a chi router backed by a fresh in-memory
// store loaded with dataset().
func testServer(t *testing.T) http.Handler {
	t.Helper()

	s, err := kvstore.Open("")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Load(context.Background(), dataset()); err != nil {
		t.Fatalf("load dataset: %v", err)
	}

	categories := finder.NewCategoryFinder(s, false)
	posts := finder.NewPostFinder(s, s, s, categories, 2)
	api := NewAPI(categories, posts)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", api.ListCategories)
			r.Get("/all", api.ListAllCategories)
			r.Get("/tree", api.CategoryTree)
			r.Get("/{id}", api.GetCategory)
			r.Get("/{id}/children", api.CategoryChildren)
			r.Get("/{id}/tree", api.CategoryTreeOf)
			r.Get("/{id}/path", api.CategoryPath)
			r.Get("/{id}/descendants", api.CategoryDescendants)
			r.Get("/{id}/posts", api.CategoryPosts)
		})
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", api.ListPosts)
			r.Get("/{id}", api.GetPost)
			r.Get("/{id}/content", api.PostContent)
			r.Get("/{id}/annotations", api.PostAnnotations)
		})
	})
	return r
}

// get performs a GET request and decodes a 2xx JSON body into dest.
func get(t *testing.T, h http.Handler, target string, dest any) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if dest != nil && rr.Code < 300 {
		if err := json.Unmarshal(rr.Body.Bytes(), dest); err != nil {
			t.Fatalf("decode %s: %v (body %q)", target, err, rr.Body.String())
		}
	}
	return rr
}

// nodeJSON mirrors the encoded tree node.
type nodeJSON struct {
	ID       string     `json:"id"`
	ParentID string     `json:"parent_id"`
	Children []nodeJSON `json:"children"`
}

func nodeIDs(nodes []nodeJSON) []string {
	out := []string{}
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}
