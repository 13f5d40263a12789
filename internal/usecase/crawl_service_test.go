package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
	crawlmock "github.com/riskibarqy/gaa-fixtures/internal/mocks/domain/crawl"
	matchmock "github.com/riskibarqy/gaa-fixtures/internal/mocks/domain/match"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/resilience"
	"github.com/stretchr/testify/mock"
)

type fakeOpener struct {
	transport *fakeTransport
	opened    int
}

func (o *fakeOpener) Open(context.Context) (SourceTransport, error) {
	o.opened++
	return o.transport, nil
}

type fixedIDGenerator struct {
	id string
}

func (g fixedIDGenerator) NewID() (string, error) {
	return g.id, nil
}

type heldLocker struct{}

func (heldLocker) TryLock(context.Context) (func(context.Context) error, bool, error) {
	return nil, false, nil
}

var crawlServiceNow = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

func newTestCrawlService(t *testing.T, transport *fakeTransport, cache crawl.CacheStore, store match.Repository, locker CrawlLocker) (*CrawlService, *fakeOpener) {
	t.Helper()

	crawler, _ := newTestCrawler(CrawlerConfig{MaxRetries: 1})
	opener := &fakeOpener{transport: transport}
	svc := NewCrawlService(opener, crawler, cache, store, locker, fixedIDGenerator{id: "session-1"}, CrawlServiceConfig{
		Interval:       24 * time.Hour,
		CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
	}, logging.NewNop())
	svc.now = func() time.Time { return crawlServiceNow }
	return svc, opener
}

func cachedEntry() crawl.CacheEntry {
	return crawl.CacheEntry{
		Records: []match.Record{
			{Competition: "Munster Senior Hurling Championship", HomeTeam: "Cork", AwayTeam: "Limerick", RawDate: "Saturday 14 June"},
		},
		LastFetch: crawlServiceNow.Add(-2 * time.Hour),
	}
}

func TestCrawlService_RateLimitedServesCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := crawlmock.NewCacheStore(t)
	cache.On("LoadEntry", mock.Anything).Return(cachedEntry(), true, nil).Once()
	cache.On("LoadHistory", mock.Anything).Return(crawl.History{LastSuccess: crawlServiceNow.Add(-time.Hour)}, true, nil).Once()

	svc, opener := newTestCrawlService(t, &fakeTransport{}, cache, matchmock.NewRepository(t), nil)

	result, err := svc.Crawl(ctx, CrawlInput{})
	var limited *crawl.RateLimitedError
	if !errors.As(err, &limited) {
		t.Fatalf("expected *RateLimitedError, got %v", err)
	}
	if !limited.NextEligibleAt.Equal(crawlServiceNow.Add(23 * time.Hour)) {
		t.Fatalf("unexpected next eligible %s", limited.NextEligibleAt)
	}
	if len(result.Records) != 1 || result.Fresh {
		t.Fatalf("expected cached records, got %+v", result)
	}
	if opener.opened != 0 {
		t.Fatalf("transport must not be opened while rate limited")
	}
}

func TestCrawlService_ForceCrawlPersistsEverywhere(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	transport := &fakeTransport{
		snapshots: []*crawl.PageSnapshot{listingPage(listingItem("Kilkenny", "Galway"), listingItem("Clare", "Waterford"))},
		hasMore:   func(int) bool { return false },
	}

	cache := crawlmock.NewCacheStore(t)
	cache.On("LoadEntry", mock.Anything).Return(cachedEntry(), true, nil).Once()
	cache.On("LoadHistory", mock.Anything).Return(crawl.History{LastSuccess: crawlServiceNow.Add(-time.Hour)}, true, nil).Once()
	cache.On("SaveEntry", mock.Anything, mock.MatchedBy(func(entry crawl.CacheEntry) bool {
		return len(entry.Records) == 2 && entry.LastFetch.Equal(crawlServiceNow)
	})).Return(nil).Once()
	cache.On("SaveHistory", mock.Anything, crawl.History{LastSuccess: crawlServiceNow}).Return(nil).Once()

	store := matchmock.NewRepository(t)
	store.On("SaveMatches", mock.Anything, mock.MatchedBy(func(records []match.Record) bool {
		return len(records) == 2
	})).Return(nil).Once()

	svc, _ := newTestCrawlService(t, transport, cache, store, nil)

	result, err := svc.Crawl(ctx, CrawlInput{Force: true, Trigger: "api"})
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if !result.Fresh || len(result.Records) != 2 {
		t.Fatalf("expected fresh records, got %+v", result)
	}
	if result.Session == nil || result.Session.ID != "session-1" || result.Session.StopReason != crawl.StopNoAffordance {
		t.Fatalf("unexpected session summary %+v", result.Session)
	}
	if !transport.closed {
		t.Fatalf("expected transport to be closed")
	}
}

func TestCrawlService_AbortMergesPartialsWithoutTouchingHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	transport := &fakeTransport{
		snapshots:   []*crawl.PageSnapshot{listingPage(listingItem("Kilkenny", "Galway"))},
		loadMoreErr: errors.New("click failed"),
	}

	cache := crawlmock.NewCacheStore(t)
	cache.On("LoadEntry", mock.Anything).Return(cachedEntry(), true, nil).Once()
	cache.On("LoadHistory", mock.Anything).Return(crawl.History{}, false, nil).Twice()
	cache.On("SaveEntry", mock.Anything, mock.MatchedBy(func(entry crawl.CacheEntry) bool {
		return len(entry.Records) == 2
	})).Return(nil).Once()

	store := matchmock.NewRepository(t)
	store.On("SaveMatches", mock.Anything, mock.Anything).Return(nil).Once()

	svc, _ := newTestCrawlService(t, transport, cache, store, nil)

	result, err := svc.Crawl(ctx, CrawlInput{})
	if !errors.Is(err, crawl.ErrTransientStepFailure) {
		t.Fatalf("expected ErrTransientStepFailure, got %v", err)
	}
	if len(result.Records) != 2 || result.Fresh {
		t.Fatalf("expected merged partial records, got %+v", result)
	}
	if result.Session == nil || result.Session.State != crawl.StateAborted {
		t.Fatalf("expected aborted session summary, got %+v", result.Session)
	}
}

func TestCrawlService_StoreFailureIsReported(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	transport := &fakeTransport{
		snapshots: []*crawl.PageSnapshot{listingPage(listingItem("Kilkenny", "Galway"))},
		hasMore:   func(int) bool { return false },
	}

	cache := crawlmock.NewCacheStore(t)
	cache.On("LoadEntry", mock.Anything).Return(crawl.CacheEntry{}, false, nil).Once()
	cache.On("LoadHistory", mock.Anything).Return(crawl.History{}, false, nil).Twice()
	cache.On("SaveEntry", mock.Anything, mock.Anything).Return(nil).Once()
	cache.On("SaveHistory", mock.Anything, mock.Anything).Return(nil).Once()

	store := matchmock.NewRepository(t)
	store.On("SaveMatches", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

	svc, _ := newTestCrawlService(t, transport, cache, store, nil)

	result, err := svc.Crawl(ctx, CrawlInput{})
	if err != nil {
		t.Fatalf("store failure must not fail the crawl: %v", err)
	}
	if !strings.Contains(result.StoreError, crawl.ErrStoreUnavailable.Error()) {
		t.Fatalf("expected store error to be reported, got %q", result.StoreError)
	}
	if len(result.Records) != 1 || !result.Fresh {
		t.Fatalf("expected crawl output returned, got %+v", result)
	}
}

func TestCrawlService_SingleFlight(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := crawlmock.NewCacheStore(t)
	cache.On("LoadEntry", mock.Anything).Return(cachedEntry(), true, nil).Once()
	cache.On("LoadHistory", mock.Anything).Return(crawl.History{}, false, nil).Once()

	svc, opener := newTestCrawlService(t, &fakeTransport{}, cache, matchmock.NewRepository(t), heldLocker{})

	result, err := svc.Crawl(ctx, CrawlInput{Force: true})
	if !errors.Is(err, crawl.ErrCrawlInProgress) {
		t.Fatalf("expected ErrCrawlInProgress, got %v", err)
	}
	if len(result.Records) != 1 || opener.opened != 0 {
		t.Fatalf("expected cached data and no crawl, got records=%d opened=%d", len(result.Records), opener.opened)
	}
}

func TestLocalCrawlLocker(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	locker := NewLocalCrawlLocker()

	unlock, ok, err := locker.TryLock(ctx)
	if err != nil || !ok {
		t.Fatalf("expected first lock to succeed, ok=%v err=%v", ok, err)
	}
	if _, ok, _ := locker.TryLock(ctx); ok {
		t.Fatalf("expected second lock to fail while held")
	}
	if err := unlock(ctx); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, ok, _ := locker.TryLock(ctx); !ok {
		t.Fatalf("expected lock to be free after unlock")
	}
}

func TestCrawlService_RechecksRateLimitAfterLock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fresh := crawl.CacheEntry{
		Records:   append(cachedEntry().Records, match.Record{HomeTeam: "Kilkenny", AwayTeam: "Galway", RawDate: "Sunday 15 June"}),
		LastFetch: crawlServiceNow.Add(-time.Minute),
	}

	cache := crawlmock.NewCacheStore(t)
	cache.On("LoadEntry", mock.Anything).Return(cachedEntry(), true, nil).Once()
	cache.On("LoadHistory", mock.Anything).Return(crawl.History{}, false, nil).Once()
	cache.On("LoadHistory", mock.Anything).Return(crawl.History{LastSuccess: fresh.LastFetch}, true, nil).Once()
	cache.On("LoadEntry", mock.Anything).Return(fresh, true, nil).Once()

	svc, opener := newTestCrawlService(t, &fakeTransport{}, cache, matchmock.NewRepository(t), nil)

	result, err := svc.Crawl(ctx, CrawlInput{Trigger: "schedule"})
	if !errors.Is(err, crawl.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if opener.opened != 0 {
		t.Fatalf("transport must not be opened after a concurrent crawl finished")
	}
	if len(result.Records) != 2 || !result.LastFetch.Equal(fresh.LastFetch) {
		t.Fatalf("expected the newer cache entry, got %+v", result)
	}
	if !result.NextEligibleAt.Equal(fresh.LastFetch.Add(24 * time.Hour)) {
		t.Fatalf("unexpected next eligible %s", result.NextEligibleAt)
	}

	if _, ok, _ := svc.locker.TryLock(ctx); !ok {
		t.Fatalf("expected lock released after rate-limited recheck")
	}
}
