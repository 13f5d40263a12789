package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/livescore"
)

type LiveRepository struct {
	mu        sync.RWMutex
	snapshots map[string]livescore.Snapshot
	updates   map[string][]livescore.Event
}

func NewLiveRepository() *LiveRepository {
	return &LiveRepository{
		snapshots: make(map[string]livescore.Snapshot),
		updates:   make(map[string][]livescore.Event),
	}
}

func (r *LiveRepository) SaveUpdate(_ context.Context, event livescore.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.updates[event.MatchKey] = append(r.updates[event.MatchKey], event)
	return nil
}

func (r *LiveRepository) UpsertSnapshot(_ context.Context, snapshot livescore.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[snapshot.MatchKey] = snapshot
	return nil
}

func (r *LiveRepository) ListSnapshots(_ context.Context, since time.Time) ([]livescore.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]livescore.Snapshot, 0, len(r.snapshots))
	for _, item := range r.snapshots {
		if !item.UpdatedAt.Before(since) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].MatchKey < out[j].MatchKey
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *LiveRepository) ListUpdates(_ context.Context, matchKey string, limit int) ([]livescore.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.updates[matchKey]
	out := make([]livescore.Event, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *LiveRepository) Ping(context.Context) error {
	return nil
}
