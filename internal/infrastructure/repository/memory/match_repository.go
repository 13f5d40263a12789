package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[match.Key]match.Record
	now   func() time.Time
}

func NewMatchRepository(seed []match.Record) *MatchRepository {
	items := make(map[match.Key]match.Record, len(seed))
	for _, item := range seed {
		items[item.Key()] = item
	}
	return &MatchRepository{items: items, now: time.Now}
}

func (r *MatchRepository) SaveMatches(_ context.Context, items []match.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.items[item.Key()] = item
	}
	return nil
}

func (r *MatchRepository) ListMatches(_ context.Context, filter match.Filter) ([]match.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]match.Record, 0, len(r.items))
	for _, item := range r.items {
		all = append(all, item)
	}
	return filter.Apply(all), nil
}

func (r *MatchRepository) Stats(_ context.Context) (match.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]match.Record, 0, len(r.items))
	for _, item := range r.items {
		all = append(all, item)
	}
	return match.ComputeStats(all), nil
}

func (r *MatchRepository) DeleteOlderThan(_ context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("retention days must be > 0")
	}
	cutoff := r.now().Add(-time.Duration(days) * 24 * time.Hour)

	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for key, item := range r.items {
		if item.ScrapedAt.Before(cutoff) {
			delete(r.items, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MatchRepository) Ping(context.Context) error {
	return nil
}
