package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/livescore"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// LiveFeed lists live-blog articles and their posts.
type LiveFeed interface {
	ListArticles(ctx context.Context, sectionURL string) ([]string, error)
	ListPosts(ctx context.Context, articleURL string) ([]string, error)
}

type LiveServiceConfig struct {
	SectionURLs  []string
	MaxWorkers   int
	RecentWindow time.Duration
	UpdatesLimit int
}

type LiveIngestResult struct {
	Received   int `json:"received"`
	Accepted   int `json:"accepted"`
	Rejected   int `json:"rejected"`
	Duplicates int `json:"duplicates"`
}

type LiveRefreshResult struct {
	Sections int `json:"sections"`
	Articles int `json:"articles"`
	Failed   int `json:"failed"`
	Posts    int `json:"posts"`
	LiveIngestResult
}

type LiveService struct {
	repo   livescore.Repository
	merger *livescore.Merger
	feed   LiveFeed
	cfg    LiveServiceConfig
	logger *logging.Logger
	now    func() time.Time
}

func NewLiveService(
	repo livescore.Repository,
	merger *livescore.Merger,
	feed LiveFeed,
	cfg LiveServiceConfig,
	logger *logging.Logger,
) *LiveService {
	if logger == nil {
		logger = logging.Default()
	}
	if merger == nil {
		merger = livescore.NewMerger()
	}
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = livescore.RecentWindow
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.UpdatesLimit <= 0 {
		cfg.UpdatesLimit = 50
	}
	return &LiveService{
		repo:   repo,
		merger: merger,
		feed:   feed,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Ingest records every event not seen before in history and advances the
// snapshot of each event the merger accepts. Re-reading an unchanged post is
// counted as a duplicate and touches neither.
func (s *LiveService) Ingest(ctx context.Context, events []livescore.Event) (LiveIngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveService.Ingest")
	defer span.End()

	result := LiveIngestResult{Received: len(events)}
	var storeErrs []error
	for _, event := range events {
		event, err := s.normalizeEvent(event)
		if err != nil {
			result.Rejected++
			s.logger.DebugContext(ctx, "reject live event", "error", err)
			continue
		}
		if !s.merger.Observe(event) {
			result.Duplicates++
			continue
		}

		if s.repo != nil {
			if err := s.repo.SaveUpdate(ctx, event); err != nil {
				storeErrs = append(storeErrs, err)
			}
		}
		if !s.merger.Ingest(event) {
			result.Rejected++
			continue
		}
		result.Accepted++

		if s.repo != nil {
			if snapshot, ok := s.merger.Latest(event.MatchKey); ok {
				if err := s.repo.UpsertSnapshot(ctx, snapshot); err != nil {
					storeErrs = append(storeErrs, err)
				}
			}
		}
	}

	if len(storeErrs) > 0 {
		return result, fmt.Errorf("%w: persist live updates: %v", ErrDependencyUnavailable, errors.Join(storeErrs...))
	}
	return result, nil
}

func (s *LiveService) normalizeEvent(event livescore.Event) (livescore.Event, error) {
	event.HomeTeam = strings.TrimSpace(event.HomeTeam)
	event.AwayTeam = strings.TrimSpace(event.AwayTeam)
	event.MatchKey = strings.TrimSpace(event.MatchKey)
	if event.MatchKey == "" {
		if event.HomeTeam == "" || event.AwayTeam == "" {
			return livescore.Event{}, fmt.Errorf("%w: match key or both team names are required", ErrInvalidInput)
		}
		event.MatchKey = livescore.MatchKey(event.HomeTeam, event.AwayTeam)
	}
	if event.Minute != nil && *event.Minute < 0 {
		return livescore.Event{}, fmt.Errorf("%w: minute must be >= 0", ErrInvalidInput)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	return event, nil
}

// Recent returns snapshots updated within the recent window. The store is
// authoritative; the in-memory merger answers when it is unavailable.
func (s *LiveService) Recent(ctx context.Context) ([]livescore.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveService.Recent")
	defer span.End()

	if s.repo != nil {
		items, err := s.repo.ListSnapshots(ctx, s.now().Add(-s.cfg.RecentWindow))
		if err == nil {
			return items, nil
		}
		s.logger.WarnContext(ctx, "live store unavailable, serving in-memory snapshots", "error", err)
	}
	return s.merger.AllRecent(s.cfg.RecentWindow), nil
}

// WithUpdates returns each recent snapshot with its newest updates first.
func (s *LiveService) WithUpdates(ctx context.Context, limit int) ([]livescore.MatchWithUpdates, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveService.WithUpdates")
	defer span.End()

	if limit <= 0 || limit > s.cfg.UpdatesLimit {
		limit = s.cfg.UpdatesLimit
	}

	snapshots, err := s.Recent(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]livescore.MatchWithUpdates, 0, len(snapshots))
	for _, snapshot := range snapshots {
		item := livescore.MatchWithUpdates{Snapshot: snapshot, Updates: []livescore.Event{}}
		if s.repo != nil {
			updates, err := s.repo.ListUpdates(ctx, snapshot.MatchKey, limit)
			if err != nil {
				return nil, fmt.Errorf("%w: list live updates for %s: %v", ErrDependencyUnavailable, snapshot.MatchKey, err)
			}
			item.Updates = updates
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *LiveService) Latest(_ context.Context, matchKey string) (livescore.Snapshot, bool) {
	return s.merger.Latest(matchKey)
}

// Warm seeds the merger from stored snapshots and marks their stored updates
// as already seen.
func (s *LiveService) Warm(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveService.Warm")
	defer span.End()

	if s.repo == nil {
		return 0, nil
	}
	items, err := s.repo.ListSnapshots(ctx, s.now().Add(-s.cfg.RecentWindow))
	if err != nil {
		return 0, fmt.Errorf("%w: load live snapshots: %v", ErrDependencyUnavailable, err)
	}
	s.merger.Restore(items)
	for _, item := range items {
		updates, err := s.repo.ListUpdates(ctx, item.MatchKey, s.cfg.UpdatesLimit)
		if err != nil {
			s.logger.WarnContext(ctx, "load live update history failed", "match_key", item.MatchKey, "error", err)
			continue
		}
		for _, update := range updates {
			s.merger.Observe(update)
		}
	}
	return len(items), nil
}

// Refresh scans the configured sections for live-blog articles, parses their
// posts concurrently and ingests the resulting events.
func (s *LiveService) Refresh(ctx context.Context) (LiveRefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveService.Refresh", attribute.Int("live.sections", len(s.cfg.SectionURLs)))
	defer span.End()

	if s.feed == nil || len(s.cfg.SectionURLs) == 0 {
		return LiveRefreshResult{}, fmt.Errorf("%w: live feed is not configured", ErrDependencyUnavailable)
	}

	result := LiveRefreshResult{Sections: len(s.cfg.SectionURLs)}
	articles := make([]string, 0)
	seen := make(map[string]struct{})
	for _, section := range s.cfg.SectionURLs {
		items, err := s.feed.ListArticles(ctx, section)
		if err != nil {
			s.logger.WarnContext(ctx, "list live articles failed", "section", section, "error", err)
			continue
		}
		for _, item := range items {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			articles = append(articles, item)
		}
	}
	result.Articles = len(articles)
	if len(articles) == 0 {
		return result, nil
	}

	workerCount := s.cfg.MaxWorkers
	if workerCount > len(articles) {
		workerCount = len(articles)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return result, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		events  []livescore.Event
		posts   atomic.Int32
		failed  atomic.Int32
		workers sync.WaitGroup
	)
	for _, article := range articles {
		article := article
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			items, err := s.feed.ListPosts(ctx, article)
			if err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "list live posts failed", "article", article, "error", err)
				return
			}
			posts.Add(int32(len(items)))

			ts := s.now()
			parsed := make([]livescore.Event, 0, len(items))
			for _, text := range items {
				if event, ok := livescore.ParseUpdate(text, ts); ok {
					parsed = append(parsed, event)
				}
			}
			mu.Lock()
			events = append(events, parsed...)
			mu.Unlock()
		}); err != nil {
			workers.Done()
			return result, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	result.Posts = int(posts.Load())
	result.Failed = int(failed.Load())

	ingest, err := s.Ingest(ctx, events)
	result.LiveIngestResult = ingest
	s.logger.InfoContext(ctx, "live refresh finished",
		"articles", result.Articles,
		"failed", result.Failed,
		"posts", result.Posts,
		"accepted", ingest.Accepted,
		"duplicates", ingest.Duplicates,
	)
	return result, err
}
