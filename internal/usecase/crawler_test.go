package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
)

type fakeTransport struct {
	snapshots []*crawl.PageSnapshot
	// hasMore is consulted per snapshot index; nil means always true.
	hasMore func(index int) bool

	navigateErrs []error
	loadMoreErrs []error
	loadMoreErr  error
	waitForErr   error
	waitIdleErr  error
	onLoadMore   func()

	snapshotCalls int
	navigateCalls int
	loadMoreCalls int
	closed        bool
}

func (f *fakeTransport) Navigate(context.Context, string) error {
	f.navigateCalls++
	if len(f.navigateErrs) > 0 {
		err := f.navigateErrs[0]
		f.navigateErrs = f.navigateErrs[1:]
		return err
	}
	return nil
}

func (f *fakeTransport) WaitFor(context.Context, string, time.Duration) error {
	return f.waitForErr
}

func (f *fakeTransport) WaitGone(context.Context, string, time.Duration) error {
	return nil
}

func (f *fakeTransport) DismissConsent(context.Context) error {
	return errors.New("no banner")
}

func (f *fakeTransport) Snapshot(context.Context) (*crawl.PageSnapshot, error) {
	idx := f.snapshotCalls
	f.snapshotCalls++
	if idx >= len(f.snapshots) {
		idx = len(f.snapshots) - 1
	}
	return f.snapshots[idx], nil
}

func (f *fakeTransport) HasMore(context.Context) (bool, error) {
	if f.hasMore == nil {
		return true, nil
	}
	return f.hasMore(f.snapshotCalls - 1), nil
}

func (f *fakeTransport) LoadMore(context.Context) error {
	f.loadMoreCalls++
	if f.onLoadMore != nil {
		f.onLoadMore()
	}
	if len(f.loadMoreErrs) > 0 {
		err := f.loadMoreErrs[0]
		f.loadMoreErrs = f.loadMoreErrs[1:]
		return err
	}
	return f.loadMoreErr
}

func (f *fakeTransport) WaitIdle(context.Context, time.Duration) error {
	return f.waitIdleErr
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func listingItem(home, away string) crawl.ItemNode {
	return crawl.ItemNode{
		Competition: "Munster Senior Hurling Championship",
		DateText:    "Saturday 14 June",
		TeamNames:   []string{home, away},
	}
}

func listingPage(items ...crawl.ItemNode) *crawl.PageSnapshot {
	return &crawl.PageSnapshot{Items: items}
}

func newTestCrawler(cfg CrawlerConfig) (*Crawler, *[]time.Duration) {
	slept := make([]time.Duration, 0)
	c := NewCrawler(cfg, logging.NewNop())
	c.now = func() time.Time { return time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC) }
	c.jitter = func(lo, _ time.Duration) time.Duration { return lo }
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return c, &slept
}

func TestCrawler_StopsAfterConsecutiveEmptyBatches(t *testing.T) {
	t.Parallel()

	b1 := []crawl.ItemNode{listingItem("Cork", "Limerick"), listingItem("Clare", "Waterford"), listingItem("Tipperary", "Kerry")}
	b2 := append(append([]crawl.ItemNode{}, b1...), listingItem("Kilkenny", "Galway"), listingItem("Dublin", "Wexford"))
	b3 := b2

	transport := &fakeTransport{snapshots: []*crawl.PageSnapshot{
		listingPage(b1...),
		listingPage(b2...),
		listingPage(b3...),
		listingPage(b3...),
		listingPage(b3...),
	}}
	crawler, _ := newTestCrawler(CrawlerConfig{MaxNoNew: 3})
	session := crawl.NewSession("e2e", time.Now())

	if err := crawler.Run(context.Background(), transport, session); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if session.State != crawl.StateStopped || session.StopReason != crawl.StopNoNewRecords {
		t.Fatalf("unexpected terminal state %s/%s", session.State, session.StopReason)
	}
	if transport.snapshotCalls != 5 {
		t.Fatalf("expected 5 snapshots, got %d", transport.snapshotCalls)
	}
	if transport.loadMoreCalls != 4 || session.Cycles != 4 {
		t.Fatalf("expected 4 load-more cycles, got calls=%d cycles=%d", transport.loadMoreCalls, session.Cycles)
	}

	records := session.Records()
	if len(records) != 5 {
		t.Fatalf("expected 5 unique records, got %d", len(records))
	}
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		key := record.HomeTeam + "|" + record.AwayTeam
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate record %s", key)
		}
		seen[key] = struct{}{}
	}
	if records[3].HomeTeam != "Kilkenny" || records[4].HomeTeam != "Dublin" {
		t.Fatalf("expected discovery order preserved, got %s then %s", records[3].HomeTeam, records[4].HomeTeam)
	}
}

func TestCrawler_StopsWhenAffordanceDisappears(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{
		snapshots: []*crawl.PageSnapshot{
			listingPage(listingItem("Cork", "Limerick")),
			listingPage(listingItem("Cork", "Limerick"), listingItem("Clare", "Waterford")),
		},
		hasMore: func(index int) bool { return index < 1 },
	}
	crawler, slept := newTestCrawler(CrawlerConfig{PreClickMin: 1500 * time.Millisecond, PreClickMax: 3500 * time.Millisecond})
	session := crawl.NewSession("s", time.Now())

	if err := crawler.Run(context.Background(), transport, session); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if session.StopReason != crawl.StopNoAffordance {
		t.Fatalf("expected no-affordance stop, got %s", session.StopReason)
	}
	if transport.loadMoreCalls != 1 || session.RecordCount() != 2 {
		t.Fatalf("unexpected calls=%d records=%d", transport.loadMoreCalls, session.RecordCount())
	}
	if len(*slept) == 0 || (*slept)[0] != 1500*time.Millisecond {
		t.Fatalf("expected pre-click delay first, got %v", *slept)
	}
}

func TestCrawler_RetriesTransientNavigateFailure(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{
		snapshots:    []*crawl.PageSnapshot{listingPage(listingItem("Cork", "Limerick"))},
		hasMore:      func(int) bool { return false },
		navigateErrs: []error{errors.New("net::ERR_TIMED_OUT"), errors.New("net::ERR_TIMED_OUT")},
	}
	crawler, _ := newTestCrawler(CrawlerConfig{MaxRetries: 3})
	session := crawl.NewSession("s", time.Now())

	if err := crawler.Run(context.Background(), transport, session); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if transport.navigateCalls != 3 {
		t.Fatalf("expected 3 navigate attempts, got %d", transport.navigateCalls)
	}
}

func TestCrawler_AbortKeepsPartialRecords(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{
		snapshots:   []*crawl.PageSnapshot{listingPage(listingItem("Cork", "Limerick"), listingItem("Clare", "Waterford"))},
		loadMoreErr: errors.New("element detached"),
	}
	crawler, _ := newTestCrawler(CrawlerConfig{MaxRetries: 2})
	session := crawl.NewSession("s", time.Now())

	err := crawler.Run(context.Background(), transport, session)
	if !errors.Is(err, crawl.ErrTransientStepFailure) {
		t.Fatalf("expected ErrTransientStepFailure, got %v", err)
	}
	if transport.loadMoreCalls != 3 {
		t.Fatalf("expected 3 load-more attempts, got %d", transport.loadMoreCalls)
	}
	if session.State != crawl.StateAborted || session.RecordCount() != 2 {
		t.Fatalf("expected aborted session with 2 records, got %s/%d", session.State, session.RecordCount())
	}
}

func TestCrawler_VanishedLoadMoreStopsCleanly(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{
		snapshots:   []*crawl.PageSnapshot{listingPage(listingItem("Cork", "Limerick"), listingItem("Clare", "Waterford"))},
		loadMoreErr: fmt.Errorf("click: %w", crawl.ErrNoAffordance),
	}
	crawler, _ := newTestCrawler(CrawlerConfig{MaxRetries: 2})
	session := crawl.NewSession("s", time.Now())

	if err := crawler.Run(context.Background(), transport, session); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if transport.loadMoreCalls != 1 {
		t.Fatalf("expected a single load-more attempt, got %d", transport.loadMoreCalls)
	}
	if session.State != crawl.StateStopped || session.StopReason != crawl.StopNoAffordance || session.RecordCount() != 2 {
		t.Fatalf("expected stopped session with 2 records, got %s/%s/%d", session.State, session.StopReason, session.RecordCount())
	}
}

func TestCrawler_InitialWaitFailureIsFatal(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{
		snapshots:  []*crawl.PageSnapshot{listingPage()},
		waitForErr: errors.New("timeout waiting for .gar-match-item"),
	}
	crawler, _ := newTestCrawler(CrawlerConfig{MaxRetries: 3})
	session := crawl.NewSession("s", time.Now())

	err := crawler.Run(context.Background(), transport, session)
	if !errors.Is(err, crawl.ErrExtractionUnavailable) {
		t.Fatalf("expected ErrExtractionUnavailable, got %v", err)
	}
	if transport.snapshotCalls != 0 || transport.navigateCalls != 1 {
		t.Fatalf("expected no retries and no extraction, navigate=%d snapshot=%d", transport.navigateCalls, transport.snapshotCalls)
	}
}

func TestCrawler_IdleTimeoutFallsBackToFixedDelay(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{
		snapshots: []*crawl.PageSnapshot{
			listingPage(listingItem("Cork", "Limerick")),
			listingPage(listingItem("Cork", "Limerick")),
		},
		hasMore:     func(index int) bool { return index < 1 },
		waitIdleErr: context.DeadlineExceeded,
	}
	crawler, slept := newTestCrawler(CrawlerConfig{IdleFallbackDelay: 3 * time.Second})
	session := crawl.NewSession("s", time.Now())

	if err := crawler.Run(context.Background(), transport, session); err != nil {
		t.Fatalf("Run: %v", err)
	}
	found := false
	for _, d := range *slept {
		if d == 3*time.Second {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected fixed fallback delay, got %v", *slept)
	}
}

func TestCrawler_CancellationAbortsWithPartialRecords(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	transport := &fakeTransport{
		snapshots:  []*crawl.PageSnapshot{listingPage(listingItem("Cork", "Limerick"))},
		onLoadMore: cancel,
	}
	crawler, _ := newTestCrawler(CrawlerConfig{})
	session := crawl.NewSession("s", time.Now())

	err := crawler.Run(ctx, transport, session)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if session.State != crawl.StateAborted || session.RecordCount() != 1 {
		t.Fatalf("unexpected session %s/%d", session.State, session.RecordCount())
	}
}

func TestCrawler_SkipsMalformedRecords(t *testing.T) {
	t.Parallel()

	broken := listingItem("", "Limerick")
	transport := &fakeTransport{
		snapshots: []*crawl.PageSnapshot{listingPage(listingItem("Cork", "Kerry"), broken)},
		hasMore:   func(int) bool { return false },
	}
	crawler, _ := newTestCrawler(CrawlerConfig{})
	session := crawl.NewSession("s", time.Now())

	if err := crawler.Run(context.Background(), transport, session); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if session.RecordCount() != 1 || session.Skipped != 1 {
		t.Fatalf("expected 1 record and 1 skipped, got %d/%d", session.RecordCount(), session.Skipped)
	}
}
