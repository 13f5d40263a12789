package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/id"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
)

// CrawlLocker grants process-wide (or cluster-wide) exclusive crawl rights.
type CrawlLocker interface {
	TryLock(ctx context.Context) (unlock func(context.Context) error, acquired bool, err error)
}

type localCrawlLocker struct {
	mu sync.Mutex
}

// NewLocalCrawlLocker returns an in-process CrawlLocker.
func NewLocalCrawlLocker() CrawlLocker {
	return &localCrawlLocker{}
}

func (l *localCrawlLocker) TryLock(_ context.Context) (func(context.Context) error, bool, error) {
	if !l.mu.TryLock() {
		return nil, false, nil
	}
	return func(context.Context) error {
		l.mu.Unlock()
		return nil
	}, true, nil
}

type CrawlServiceConfig struct {
	Interval       time.Duration
	StoreTimeout   time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

type CrawlInput struct {
	Force   bool
	Trigger string
}

// CrawlResult is what a crawl request yields. Records always holds the best
// data available, fresh or cached, even when an error is returned.
type CrawlResult struct {
	Records        []match.Record
	LastFetch      time.Time
	Fresh          bool
	NextEligibleAt time.Time
	Session        *crawl.Summary
	StoreError     string
}

type ScrapeStatus struct {
	LastFetch      time.Time
	LastSuccess    time.Time
	NextEligibleAt time.Time
	InFlight       bool
	CachedRecords  int
	LastSession    *crawl.Summary
}

type CrawlService struct {
	opener  TransportOpener
	crawler *Crawler
	cache   crawl.CacheStore
	store   match.Repository
	locker  CrawlLocker
	idGen   id.Generator
	limiter crawl.RateLimiter
	guard   *resilience.Guard
	cfg     CrawlServiceConfig
	logger  *logging.Logger
	now     func() time.Time

	inFlight    atomic.Bool
	lastSession atomic.Pointer[crawl.Summary]
}

func NewCrawlService(
	opener TransportOpener,
	crawler *Crawler,
	cache crawl.CacheStore,
	store match.Repository,
	locker CrawlLocker,
	idGen id.Generator,
	cfg CrawlServiceConfig,
	logger *logging.Logger,
) *CrawlService {
	if logger == nil {
		logger = logging.Default()
	}
	if locker == nil {
		locker = NewLocalCrawlLocker()
	}
	if idGen == nil {
		idGen = id.NewSortableGenerator("crawl")
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 30 * time.Second
	}
	if cfg.CircuitBreaker.OnStateChange == nil {
		cfg.CircuitBreaker.OnStateChange = func(from, to resilience.CircuitState) {
			logger.Warn("match store circuit state changed", "from", from, "to", to)
		}
	}

	return &CrawlService{
		opener:  opener,
		crawler: crawler,
		cache:   cache,
		store:   store,
		locker:  locker,
		idGen:   idGen,
		limiter: crawl.RateLimiter{Interval: cfg.Interval},
		guard:   resilience.NewGuard(cfg.CircuitBreaker),
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Crawl runs one crawl unless the rate limiter or another in-flight crawl
// prevents it. Force skips the rate limiter but never the lock.
func (s *CrawlService) Crawl(ctx context.Context, input CrawlInput) (CrawlResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CrawlService.Crawl",
		attribute.Bool("crawl.force", input.Force),
		attribute.String("crawl.trigger", strings.TrimSpace(input.Trigger)),
	)
	defer span.End()

	result, err := s.crawl(ctx, input)
	if !IsCrawlGate(err) {
		markSpanError(span, err)
	}
	return result, err
}

func (s *CrawlService) crawl(ctx context.Context, input CrawlInput) (CrawlResult, error) {
	if s.opener == nil || s.crawler == nil || s.cache == nil {
		return CrawlResult{}, fmt.Errorf("%w: crawler is not configured", ErrDependencyUnavailable)
	}

	cached, _, err := s.cache.LoadEntry(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "load crawl cache failed", "error", err)
	}
	history, _, err := s.cache.LoadHistory(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "load crawl history failed", "error", err)
	}

	result := CrawlResult{
		Records:        cached.Records,
		LastFetch:      cached.LastFetch,
		NextEligibleAt: s.limiter.NextEligibleAt(history.LastSuccess),
	}

	if !input.Force {
		if err := s.limiter.Check(history.LastSuccess, s.now()); err != nil {
			return result, err
		}
	}

	unlock, acquired, err := s.locker.TryLock(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: acquire crawl lock: %v", ErrDependencyUnavailable, err)
	}
	if !acquired {
		return result, crawl.ErrCrawlInProgress
	}
	s.inFlight.Store(true)
	defer func() {
		s.inFlight.Store(false)
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "release crawl lock failed", "error", err)
		}
	}()

	if !input.Force {
		// another replica may have finished a crawl between the first check and the lock
		if err := s.recheckRateLimit(ctx, &result); err != nil {
			return result, err
		}
	}

	sessionID, err := s.idGen.NewID()
	if err != nil {
		return result, fmt.Errorf("generate crawl session id: %w", err)
	}
	session := crawl.NewSession(sessionID, s.now())
	s.logger.InfoContext(ctx, "crawl started",
		"session_id", sessionID,
		"trigger", strings.TrimSpace(input.Trigger),
		"force", input.Force,
	)

	runErr := s.runSession(ctx, session)
	summary := session.Summary()
	s.lastSession.Store(&summary)
	result.Session = &summary

	records := session.Records()
	finishedAt := s.now()

	if runErr == nil {
		entry := crawl.CacheEntry{Records: records, LastFetch: finishedAt}
		if err := s.cache.SaveEntry(ctx, entry); err != nil {
			s.logger.ErrorContext(ctx, "save crawl cache failed", "session_id", sessionID, "error", err)
		}
		if err := s.cache.SaveHistory(ctx, crawl.History{LastSuccess: finishedAt}); err != nil {
			s.logger.ErrorContext(ctx, "save crawl history failed", "session_id", sessionID, "error", err)
		}
		result.Records = records
		result.LastFetch = finishedAt
		result.Fresh = true
		result.NextEligibleAt = s.limiter.NextEligibleAt(finishedAt)
	} else if len(records) > 0 {
		merged := match.Merge(cached.Records, records)
		if err := s.cache.SaveEntry(ctx, crawl.CacheEntry{Records: merged, LastFetch: finishedAt}); err != nil {
			s.logger.ErrorContext(ctx, "save partial crawl cache failed", "session_id", sessionID, "error", err)
		}
		result.Records = merged
		result.LastFetch = finishedAt
	}

	if len(records) > 0 {
		if err := s.saveToStore(ctx, records); err != nil {
			result.StoreError = err.Error()
			s.logger.ErrorContext(ctx, "persist crawl records failed",
				"session_id", sessionID,
				"records", len(records),
				"error", err,
			)
		}
	}

	s.logger.InfoContext(ctx, "crawl finished",
		"session_id", sessionID,
		"state", summary.State,
		"stop_reason", summary.StopReason,
		"cycles", summary.Cycles,
		"records", summary.Records,
		"skipped", summary.Skipped,
	)

	if runErr != nil {
		return result, runErr
	}
	return result, nil
}

func (s *CrawlService) recheckRateLimit(ctx context.Context, result *CrawlResult) error {
	history, _, err := s.cache.LoadHistory(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "reload crawl history failed", "error", err)
		return nil
	}
	if err := s.limiter.Check(history.LastSuccess, s.now()); err != nil {
		result.NextEligibleAt = s.limiter.NextEligibleAt(history.LastSuccess)
		if entry, ok, loadErr := s.cache.LoadEntry(ctx); loadErr == nil && ok {
			result.Records = entry.Records
			result.LastFetch = entry.LastFetch
		}
		return err
	}
	return nil
}

func (s *CrawlService) runSession(ctx context.Context, session *crawl.Session) error {
	transport, err := s.opener.Open(ctx)
	if err != nil {
		err = fmt.Errorf("%w: open transport: %v", crawl.ErrTransientStepFailure, err)
		session.Abort(err, s.now())
		return err
	}
	defer func() {
		if closeErr := transport.Close(); closeErr != nil {
			s.logger.WarnContext(ctx, "close transport failed", "session_id", session.ID, "error", closeErr)
		}
	}()

	return s.crawler.Run(ctx, transport, session)
}

func (s *CrawlService) saveToStore(ctx context.Context, records []match.Record) error {
	if s.store == nil {
		return nil
	}

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.StoreTimeout)
	defer cancel()

	err := s.guard.Do(func() error {
		return s.store.SaveMatches(storeCtx, records)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", crawl.ErrStoreUnavailable, err)
	}
	return nil
}

// Cached returns the session cache entry.
func (s *CrawlService) Cached(ctx context.Context) (crawl.CacheEntry, bool, error) {
	if s.cache == nil {
		return crawl.CacheEntry{}, false, nil
	}
	return s.cache.LoadEntry(ctx)
}

// Due reports whether a scheduled crawl should run now.
func (s *CrawlService) Due(ctx context.Context) bool {
	if s.cache == nil {
		return false
	}
	history, _, err := s.cache.LoadHistory(ctx)
	if err != nil {
		return true
	}
	return s.limiter.ShouldCrawl(history.LastSuccess, s.now())
}

func (s *CrawlService) Status(ctx context.Context) (ScrapeStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CrawlService.Status")
	defer span.End()

	out := ScrapeStatus{
		InFlight:    s.inFlight.Load(),
		LastSession: s.lastSession.Load(),
	}
	if s.cache == nil {
		return out, nil
	}

	entry, _, err := s.cache.LoadEntry(ctx)
	if err != nil {
		return out, fmt.Errorf("%w: load crawl cache: %v", ErrDependencyUnavailable, err)
	}
	history, _, err := s.cache.LoadHistory(ctx)
	if err != nil {
		return out, fmt.Errorf("%w: load crawl history: %v", ErrDependencyUnavailable, err)
	}

	out.LastFetch = entry.LastFetch
	out.CachedRecords = len(entry.Records)
	out.LastSuccess = history.LastSuccess
	out.NextEligibleAt = s.limiter.NextEligibleAt(history.LastSuccess)
	return out, nil
}

// IsCrawlGate reports whether err only means the crawl did not start.
func IsCrawlGate(err error) bool {
	return errors.Is(err, crawl.ErrRateLimited) || errors.Is(err, crawl.ErrCrawlInProgress)
}
