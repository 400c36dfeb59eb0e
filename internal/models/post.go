// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Visibility controls who may see a post.
type Visibility string

const (
	VisibilityPublic   Visibility = "PUBLIC"
	VisibilityInternal Visibility = "INTERNAL"
	VisibilityPrivate  Visibility = "PRIVATE"
)

// Post is a content record. Categories holds the IDs of every category the
// post is filed under; the post belongs to none of their descendants
// unless a query expands them.
type Post struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Slug            string            `json:"slug"`
	Excerpt         string            `json:"excerpt,omitempty"`
	Owner           string            `json:"owner,omitempty"`
	Categories      []string          `json:"categories,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	Published       bool              `json:"published"`
	Deleted         bool              `json:"deleted"`
	Visible         Visibility        `json:"visible"`
	Pinned          *bool             `json:"pinned,omitempty"`
	Priority        *int              `json:"priority,omitempty"`
	PublishTime     *time.Time        `json:"publish_time,omitempty"`
	BaseSnapshot    string            `json:"base_snapshot,omitempty"`
	ReleaseSnapshot string            `json:"release_snapshot,omitempty"`
	Annotations     map[string]string `json:"annotations,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// IsPublic reports whether the post is published, not deleted, and
// publicly visible.
func (p *Post) IsPublic() bool {
	return p.Published && !p.Deleted && p.Visible == VisibilityPublic
}

// IsPinned returns the pin flag, treating an unset value as false.
func (p *Post) IsPinned() bool {
	return p.Pinned != nil && *p.Pinned
}

// PriorityOrZero returns the post priority, treating an unset value as 0.
func (p *Post) PriorityOrZero() int {
	if p.Priority == nil {
		return 0
	}
	return *p.Priority
}

// InAnyCategory reports whether the post is filed under at least one of
// the given category IDs. Blank IDs never match.
func (p *Post) InAnyCategory(ids []string) bool {
	if len(p.Categories) == 0 {
		return false
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if slices.Contains(p.Categories, id) {
			return true
		}
	}
	return false
}

// ComparePosts orders posts for listings: pinned first, then priority
// descending, then publish time descending with unset times last, then ID
// descending.
func ComparePosts(a, b *Post) int {
	if a.IsPinned() != b.IsPinned() {
		if a.IsPinned() {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(b.PriorityOrZero(), a.PriorityOrZero()); c != 0 {
		return c
	}
	switch {
	case a.PublishTime == nil && b.PublishTime != nil:
		return 1
	case a.PublishTime != nil && b.PublishTime == nil:
		return -1
	case a.PublishTime != nil && b.PublishTime != nil:
		if c := b.PublishTime.Compare(*a.PublishTime); c != 0 {
			return c
		}
	}
	return cmp.Compare(b.ID, a.ID)
}

// PostQuery is the predicate a post source applies before sorting with
// ComparePosts and paginating.
type PostQuery struct {
	// PublicOnly restricts results to posts for which IsPublic is true.
	PublicOnly bool
	// AnyCategory, when non-nil, keeps only posts filed under at least one
	// of these IDs. An empty non-nil slice matches nothing.
	AnyCategory []string
	Page        int
	Size        int
}

// Matches evaluates the query predicate against a single post.
func (q PostQuery) Matches(p *Post) bool {
	if q.PublicOnly && !p.IsPublic() {
		return false
	}
	if q.AnyCategory != nil && !p.InAnyCategory(q.AnyCategory) {
		return false
	}
	return true
}

// Stats holds the engagement counters shown next to a listed post.
type Stats struct {
	Visits           int64 `json:"visits"`
	Upvotes          int64 `json:"upvotes"`
	ApprovedComments int64 `json:"comments"`
}

// ListedPost is the summary view of a post used in listings.
type ListedPost struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Owner       string     `json:"owner,omitempty"`
	Categories  []string   `json:"categories"`
	Tags        []string   `json:"tags"`
	Pinned      bool       `json:"pinned"`
	Priority    int        `json:"priority"`
	PublishTime *time.Time `json:"publish_time,omitempty"`
	Stats       Stats      `json:"stats"`
}

// NewListedPost maps a post record to its listing view with zero stats.
func NewListedPost(p *Post) ListedPost {
	categories := p.Categories
	if categories == nil {
		categories = []string{}
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ListedPost{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Owner:       p.Owner,
		Categories:  categories,
		Tags:        tags,
		Pinned:      p.IsPinned(),
		Priority:    p.PriorityOrZero(),
		PublishTime: p.PublishTime,
	}
}

// PostDetail is a listed post together with its released content.
type PostDetail struct {
	ListedPost
	Annotations map[string]string `json:"annotations,omitempty"`
	Content     *ContentView      `json:"content,omitempty"`
}
