package cache

import (
	"context"
	"strconv"
	"strings"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
	basecache "github.com/riskibarqy/gaa-fixtures/internal/platform/cache"
)

const matchKeyPrefix = "match:"

// MatchRepository caches reads of the wrapped store. Writes invalidate every
// cached match read.
type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) SaveMatches(ctx context.Context, items []match.Record) error {
	if err := r.next.SaveMatches(ctx, items); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, matchKeyPrefix)
	return nil
}

func (r *MatchRepository) ListMatches(ctx context.Context, filter match.Filter) ([]match.Record, error) {
	v, err := r.cache.GetOrLoad(ctx, matchKeyPrefix+"list:"+filterKey(filter), func(ctx context.Context) (any, error) {
		items, err := r.next.ListMatches(ctx, filter)
		if err != nil {
			return nil, err
		}
		return append([]match.Record(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]match.Record)
	return append([]match.Record(nil), items...), nil
}

func (r *MatchRepository) Stats(ctx context.Context) (match.Stats, error) {
	v, err := r.cache.GetOrLoad(ctx, matchKeyPrefix+"stats", func(ctx context.Context) (any, error) {
		return r.next.Stats(ctx)
	})
	if err != nil {
		return match.Stats{}, err
	}

	stats, _ := v.(match.Stats)
	return stats, nil
}

func (r *MatchRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	deleted, err := r.next.DeleteOlderThan(ctx, days)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		r.cache.DeletePrefix(ctx, matchKeyPrefix)
	}
	return deleted, nil
}

func (r *MatchRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

func filterKey(filter match.Filter) string {
	parts := make([]string, 0, 5)
	switch {
	case filter.IsFixture == nil:
		parts = append(parts, "all")
	case *filter.IsFixture:
		parts = append(parts, "fixtures")
	default:
		parts = append(parts, "results")
	}
	parts = append(parts, strings.ToLower(strings.TrimSpace(filter.Competition)))
	if filter.StartDate != nil {
		parts = append(parts, strconv.FormatInt(filter.StartDate.UnixMilli(), 10))
	} else {
		parts = append(parts, "")
	}
	if filter.EndDate != nil {
		parts = append(parts, strconv.FormatInt(filter.EndDate.UnixMilli(), 10))
	} else {
		parts = append(parts, "")
	}
	parts = append(parts, strconv.Itoa(filter.Limit))
	return strings.Join(parts, ":")
}
