package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"treepress/internal/models"
)

// SnapshotStore reads post body snapshots.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore returns a new SnapshotStore.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// FindSnapshot retrieves a snapshot by ID. Returns nil if not found.
func (s *SnapshotStore) FindSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	var (
		snap    models.Snapshot
		rawType string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, subject_id, raw_type, raw, content, annotations, created_at
		FROM snapshots WHERE id = $1`, id,
	).Scan(&snap.ID, &snap.SubjectID, &rawType, &snap.Raw, &snap.Content, &snap.Annotations, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find snapshot: %w", err)
	}
	snap.RawType = models.RawType(rawType)
	return &snap, nil
}

// CounterStore reads engagement counters.
type CounterStore struct {
	pool *pgxpool.Pool
}

// NewCounterStore returns a new CounterStore.
func NewCounterStore(pool *pgxpool.Pool) *CounterStore {
	return &CounterStore{pool: pool}
}

// FindCounter retrieves the counter for a subject. Returns nil if none has
// been recorded.
func (s *CounterStore) FindCounter(ctx context.Context, subjectID string) (*models.Counter, error) {
	var c models.Counter
	err := s.pool.QueryRow(ctx, `
		SELECT subject_id, visits, upvotes, approved_comments
		FROM counters WHERE subject_id = $1`, subjectID,
	).Scan(&c.SubjectID, &c.Visits, &c.Upvotes, &c.ApprovedComments)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find counter: %w", err)
	}
	return &c, nil
}
