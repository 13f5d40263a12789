package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/livescore"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
	crawlmock "github.com/riskibarqy/gaa-fixtures/internal/mocks/domain/crawl"
	matchmock "github.com/riskibarqy/gaa-fixtures/internal/mocks/domain/match"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

var matchNow = time.Date(2025, time.June, 14, 9, 0, 0, 0, time.UTC)

func sampleMatches() []match.Record {
	return []match.Record{
		{Competition: "Leinster SHC", HomeTeam: "Kilkenny", AwayTeam: "Galway", RawDate: "Saturday 14 June", CanonicalTimestamp: matchNow.Add(10 * time.Hour), IsFixture: true, ScrapedAt: matchNow},
		{Competition: "Munster SHC", HomeTeam: "Cork", AwayTeam: "Limerick", RawDate: "Sunday 18 May", HomeScore: "1-20", AwayScore: "0-22", CanonicalTimestamp: matchNow.Add(-27 * 24 * time.Hour), ScrapedAt: matchNow.Add(-time.Hour)},
		{Competition: "Munster SHC", HomeTeam: "Clare", AwayTeam: "Waterford", RawDate: "Sunday 15 June", CanonicalTimestamp: matchNow.Add(30 * time.Hour), IsFixture: true, ScrapedAt: matchNow},
	}
}

type staticLiveReader map[string]livescore.Snapshot

func (r staticLiveReader) Latest(_ context.Context, key string) (livescore.Snapshot, bool) {
	s, ok := r[key]
	return s, ok
}

func newTestMatchService(store match.Repository, cache crawl.CacheStore, live LiveSnapshotReader) *MatchService {
	svc := NewMatchService(store, cache, live, time.UTC, logging.NewNop())
	svc.now = func() time.Time { return matchNow }
	return svc
}

func TestMatchService_ListFromStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fixture := true
	store := matchmock.NewRepository(t)
	store.On("ListMatches", mock.Anything, mock.MatchedBy(func(f match.Filter) bool {
		return f.IsFixture != nil && *f.IsFixture && f.Competition == "munster" && f.Limit == defaultMatchLimit
	})).Return(sampleMatches()[2:], nil).Once()
	cache := crawlmock.NewCacheStore(t)
	cache.On("LoadEntry", mock.Anything).Return(crawl.CacheEntry{LastFetch: matchNow}, true, nil).Once()

	got, err := newTestMatchService(store, cache, nil).List(ctx, MatchQuery{IsFixture: &fixture, Competition: " munster "})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got.Source != MatchSourceStore || got.Stale || len(got.Records) != 1 {
		t.Fatalf("unexpected list %+v", got)
	}
}

func TestMatchService_ListFallsBackToCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fixture := true
	store := matchmock.NewRepository(t)
	store.On("ListMatches", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()
	cache := crawlmock.NewCacheStore(t)
	cache.On("LoadEntry", mock.Anything).Return(crawl.CacheEntry{Records: sampleMatches(), LastFetch: matchNow}, true, nil).Once()

	got, err := newTestMatchService(store, cache, nil).List(ctx, MatchQuery{IsFixture: &fixture})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got.Source != MatchSourceCache || !got.Stale || len(got.Records) != 2 {
		t.Fatalf("unexpected list %+v", got)
	}
	if got.Records[0].HomeTeam != "Kilkenny" {
		t.Fatalf("expected timestamp order, got %s first", got.Records[0].HomeTeam)
	}
}

func TestMatchService_ListColdStartFailure(t *testing.T) {
	t.Parallel()

	store := matchmock.NewRepository(t)
	store.On("ListMatches", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()
	cache := crawlmock.NewCacheStore(t)
	cache.On("LoadEntry", mock.Anything).Return(crawl.CacheEntry{}, false, nil).Once()

	_, err := newTestMatchService(store, cache, nil).List(context.Background(), MatchQuery{})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestMatchService_ListRejectsInvalidRange(t *testing.T) {
	t.Parallel()

	start := matchNow
	end := matchNow.Add(-time.Hour)
	_, err := newTestMatchService(nil, nil, nil).List(context.Background(), MatchQuery{StartDate: &start, EndDate: &end})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMatchService_StatsFromCache(t *testing.T) {
	t.Parallel()

	store := matchmock.NewRepository(t)
	store.On("Stats", mock.Anything).Return(match.Stats{}, nil).Once()
	cache := crawlmock.NewCacheStore(t)
	cache.On("LoadEntry", mock.Anything).Return(crawl.CacheEntry{Records: sampleMatches()}, true, nil).Once()

	stats, err := newTestMatchService(store, cache, nil).Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.Fixtures != 2 || stats.Results != 1 || stats.Competitions != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.LastUpdated == nil || !stats.LastUpdated.Equal(matchNow) {
		t.Fatalf("unexpected last updated %v", stats.LastUpdated)
	}
}

func TestMatchService_TodaysFixturesJoinsLiveScores(t *testing.T) {
	t.Parallel()

	store := matchmock.NewRepository(t)
	store.On("ListMatches", mock.Anything, mock.MatchedBy(func(f match.Filter) bool {
		return f.StartDate != nil && f.EndDate != nil && f.StartDate.Day() == 14 && f.EndDate.Day() == 14
	})).Return(sampleMatches()[:1], nil).Once()

	live := staticLiveReader{"Kilkenny vs Galway": {MatchKey: "Kilkenny vs Galway", HomeScore: "0-05", AwayScore: "0-04", Minute: livescore.Minute(12)}}
	got, err := newTestMatchService(store, nil, live).TodaysFixtures(context.Background())
	if err != nil {
		t.Fatalf("TodaysFixtures: %v", err)
	}
	if len(got) != 1 || got[0].Live == nil || got[0].Live.HomeScore != "0-05" {
		t.Fatalf("unexpected fixtures %+v", got)
	}
}
