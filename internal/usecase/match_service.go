package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/livescore"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
)

const (
	MatchSourceStore = "store"
	MatchSourceCache = "cache"

	defaultMatchLimit = 500
	maxMatchLimit     = 5000
)

type MatchQuery struct {
	IsFixture   *bool
	Competition string
	StartDate   *time.Time
	EndDate     *time.Time
	Limit       int
}

type MatchList struct {
	Records   []match.Record
	Source    string
	Stale     bool
	LastFetch time.Time
}

type FixtureWithScore struct {
	Record match.Record
	Live   *livescore.Snapshot
}

// LiveSnapshotReader looks up the current live snapshot of one match.
type LiveSnapshotReader interface {
	Latest(ctx context.Context, matchKey string) (livescore.Snapshot, bool)
}

type MatchService struct {
	store    match.Repository
	cache    crawl.CacheStore
	live     LiveSnapshotReader
	location *time.Location
	logger   *logging.Logger
	now      func() time.Time
}

func NewMatchService(
	store match.Repository,
	cache crawl.CacheStore,
	live LiveSnapshotReader,
	location *time.Location,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}
	return &MatchService{
		store:    store,
		cache:    cache,
		live:     live,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// List reads matches from the store and falls back to the crawl cache when
// the store fails or holds nothing yet.
func (s *MatchService) List(ctx context.Context, query MatchQuery) (MatchList, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.List")
	defer span.End()

	filter, err := normalizeMatchQuery(query)
	if err != nil {
		return MatchList{}, err
	}

	entry, hasCache := s.loadCache(ctx)

	var storeErr error
	if s.store != nil {
		records, err := s.store.ListMatches(ctx, filter)
		if err == nil && (len(records) > 0 || !hasCache) {
			return MatchList{
				Records:   records,
				Source:    MatchSourceStore,
				LastFetch: entry.LastFetch,
			}, nil
		}
		storeErr = err
	}

	if !hasCache {
		if storeErr != nil {
			return MatchList{}, fmt.Errorf("%w: list matches: %v", ErrDependencyUnavailable, storeErr)
		}
		return MatchList{Records: []match.Record{}, Source: MatchSourceCache, Stale: true}, nil
	}
	if storeErr != nil {
		s.logger.WarnContext(ctx, "match store unavailable, serving cached matches", "error", storeErr)
	}

	return MatchList{
		Records:   filter.Apply(entry.Records),
		Source:    MatchSourceCache,
		Stale:     true,
		LastFetch: entry.LastFetch,
	}, nil
}

func (s *MatchService) Stats(ctx context.Context) (match.Stats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Stats")
	defer span.End()

	var storeErr error
	if s.store != nil {
		stats, err := s.store.Stats(ctx)
		if err == nil && stats.Total > 0 {
			return stats, nil
		}
		storeErr = err
	}

	entry, ok := s.loadCache(ctx)
	if !ok {
		if storeErr != nil {
			return match.Stats{}, fmt.Errorf("%w: match stats: %v", ErrDependencyUnavailable, storeErr)
		}
		return match.Stats{}, nil
	}
	return match.ComputeStats(entry.Records), nil
}

// TodaysFixtures returns today's records in the service location joined with
// their live snapshot, when one exists.
func (s *MatchService) TodaysFixtures(ctx context.Context) ([]FixtureWithScore, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.TodaysFixtures")
	defer span.End()

	now := s.now().In(s.location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	end := start.Add(24*time.Hour - time.Nanosecond)

	list, err := s.List(ctx, MatchQuery{StartDate: &start, EndDate: &end, Limit: maxMatchLimit})
	if err != nil {
		return nil, err
	}

	out := make([]FixtureWithScore, 0, len(list.Records))
	for _, record := range list.Records {
		item := FixtureWithScore{Record: record}
		if s.live != nil {
			if snapshot, ok := s.live.Latest(ctx, record.LiveKey()); ok {
				item.Live = &snapshot
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *MatchService) loadCache(ctx context.Context) (crawl.CacheEntry, bool) {
	if s.cache == nil {
		return crawl.CacheEntry{}, false
	}
	entry, ok, err := s.cache.LoadEntry(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "load crawl cache failed", "error", err)
		return crawl.CacheEntry{}, false
	}
	return entry, ok && len(entry.Records) > 0
}

func normalizeMatchQuery(query MatchQuery) (match.Filter, error) {
	if query.Limit < 0 {
		return match.Filter{}, fmt.Errorf("%w: limit must be >= 0", ErrInvalidInput)
	}
	if query.StartDate != nil && query.EndDate != nil && query.EndDate.Before(*query.StartDate) {
		return match.Filter{}, fmt.Errorf("%w: endDate must not be before startDate", ErrInvalidInput)
	}

	limit := query.Limit
	if limit == 0 {
		limit = defaultMatchLimit
	}
	if limit > maxMatchLimit {
		limit = maxMatchLimit
	}

	return match.Filter{
		IsFixture:   query.IsFixture,
		Competition: strings.TrimSpace(query.Competition),
		StartDate:   query.StartDate,
		EndDate:     query.EndDate,
		Limit:       limit,
	}, nil
}
