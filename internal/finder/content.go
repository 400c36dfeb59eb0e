// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package finder

import (
	"context"
	"fmt"

	"treepress/internal/markdown"
	"treepress/internal/models"
)

// releaseContent resolves the released body of a post from its base and
// release snapshots. The base snapshot must carry the keep-raw marker.
// When the release snapshot is the base, the base is used on its own.
func (f *PostFinder) releaseContent(ctx context.Context, post *models.Post) (*models.ContentView, error) {
	if f.snapshots == nil || post.BaseSnapshot == "" {
		return nil, nil
	}

	base, err := f.snapshots.FindSnapshot(ctx, post.BaseSnapshot)
	if err != nil {
		return nil, fmt.Errorf("find base snapshot %s: %w", post.BaseSnapshot, err)
	}
	if base == nil {
		return nil, nil
	}
	if err := checkBaseSnapshot(base); err != nil {
		return nil, err
	}

	release := base
	if post.ReleaseSnapshot != "" && post.ReleaseSnapshot != post.BaseSnapshot {
		release, err = f.snapshots.FindSnapshot(ctx, post.ReleaseSnapshot)
		if err != nil {
			return nil, fmt.Errorf("find release snapshot %s: %w", post.ReleaseSnapshot, err)
		}
		if release == nil {
			return nil, nil
		}
	}

	return mergeSnapshots(release, base)
}

func checkBaseSnapshot(s *models.Snapshot) error {
	if !s.IsBase() {
		return fmt.Errorf("%w: %s", ErrNotBaseSnapshot, s.ID)
	}
	return nil
}

// mergeSnapshots layers a release snapshot over the base: the release
// wins wherever it has a value. Markdown sources with no stored HTML are
// rendered on the fly.
func mergeSnapshots(release, base *models.Snapshot) (*models.ContentView, error) {
	raw, rawType := release.Raw, release.RawType
	if raw == "" {
		raw, rawType = base.Raw, base.RawType
	}

	content := release.Content
	if content == "" && release.Raw == "" {
		content = base.Content
	}
	if content == "" && rawType == models.RawTypeMarkdown && raw != "" {
		html, err := markdown.ToHTML(raw)
		if err != nil {
			return nil, fmt.Errorf("render snapshot %s: %w", release.ID, err)
		}
		content = html
	}

	return &models.ContentView{Raw: raw, Content: content}, nil
}
