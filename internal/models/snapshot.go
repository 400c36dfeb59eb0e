// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// KeepRawAnnotation marks a snapshot as the base snapshot of a post. Only a
// base snapshot is guaranteed to carry the complete raw source.
const KeepRawAnnotation = "content.treepress.io/keep-raw"

// RawType is the source format of a snapshot's raw body.
type RawType string

const (
	RawTypeMarkdown RawType = "markdown"
	RawTypeHTML     RawType = "html"
)

// Snapshot stores one version of a post body. Raw is the author's source;
// Content is the rendered HTML, which may be empty for markdown snapshots
// that have not been rendered yet.
type Snapshot struct {
	ID          string            `json:"id"`
	SubjectID   string            `json:"subject_id"`
	RawType     RawType           `json:"raw_type"`
	Raw         string            `json:"raw"`
	Content     string            `json:"content"`
	Annotations map[string]string `json:"annotations,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// IsBase reports whether the snapshot carries the keep-raw marker.
func (s *Snapshot) IsBase() bool {
	return s.Annotations[KeepRawAnnotation] == "true"
}

// ContentView is the released body of a post.
type ContentView struct {
	Raw     string `json:"raw"`
	Content string `json:"content"`
}

// Counter holds engagement counters for a subject such as a post.
type Counter struct {
	SubjectID        string `json:"subject_id"`
	Visits           int64  `json:"visits"`
	Upvotes          int64  `json:"upvotes"`
	ApprovedComments int64  `json:"approved_comments"`
}

// CounterSubject returns the counter subject ID for a post.
func CounterSubject(postID string) string {
	return "posts/" + postID
}

// Stats converts the counter to the listing stats view.
func (c *Counter) Stats() Stats {
	return Stats{
		Visits:           c.Visits,
		Upvotes:          c.Upvotes,
		ApprovedComments: c.ApprovedComments,
	}
}
