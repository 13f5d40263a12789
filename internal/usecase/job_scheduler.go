package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

type JobSchedulerConfig struct {
	CrawlSpec     string
	LiveSpec      string
	RetentionSpec string
	RetentionDays int
	LiveEnabled   bool
}

type CrawlJobRunner interface {
	Due(ctx context.Context) bool
	Crawl(ctx context.Context, input CrawlInput) (CrawlResult, error)
}

type LiveJobRunner interface {
	Refresh(ctx context.Context) (LiveRefreshResult, error)
}

type RetentionStore interface {
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// JobScheduler runs the crawl, live refresh and retention jobs on cron specs.
type JobScheduler struct {
	cron      *cron.Cron
	crawl     CrawlJobRunner
	live      LiveJobRunner
	retention RetentionStore
	cfg       JobSchedulerConfig
	logger    *logging.Logger
}

func NewJobScheduler(
	crawlRunner CrawlJobRunner,
	liveRunner LiveJobRunner,
	retention RetentionStore,
	cfg JobSchedulerConfig,
	logger *logging.Logger,
) *JobScheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.CrawlSpec) == "" {
		cfg.CrawlSpec = "@every 1h"
	}
	if strings.TrimSpace(cfg.LiveSpec) == "" {
		cfg.LiveSpec = "@every 2m"
	}
	if strings.TrimSpace(cfg.RetentionSpec) == "" {
		cfg.RetentionSpec = "@daily"
	}

	cronLog := cronLogger{logger: logger}
	return &JobScheduler{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		crawl:     crawlRunner,
		live:      liveRunner,
		retention: retention,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers the jobs, starts the cron loop and runs a first crawl right
// away when one is due.
func (s *JobScheduler) Start(ctx context.Context) error {
	if s.crawl != nil {
		if _, err := s.cron.AddFunc(s.cfg.CrawlSpec, func() { s.RunCrawl(ctx) }); err != nil {
			return fmt.Errorf("schedule crawl job %q: %w", s.cfg.CrawlSpec, err)
		}
	}
	if s.live != nil && s.cfg.LiveEnabled {
		if _, err := s.cron.AddFunc(s.cfg.LiveSpec, func() { s.RunLive(ctx) }); err != nil {
			return fmt.Errorf("schedule live job %q: %w", s.cfg.LiveSpec, err)
		}
	}
	if s.retention != nil && s.cfg.RetentionDays > 0 {
		if _, err := s.cron.AddFunc(s.cfg.RetentionSpec, func() { s.RunRetention(ctx) }); err != nil {
			return fmt.Errorf("schedule retention job %q: %w", s.cfg.RetentionSpec, err)
		}
	}

	s.cron.Start()
	s.logger.Info("job scheduler started",
		"crawl_spec", s.cfg.CrawlSpec,
		"live_spec", s.cfg.LiveSpec,
		"live_enabled", s.cfg.LiveEnabled,
		"retention_spec", s.cfg.RetentionSpec,
	)

	if s.crawl != nil {
		go s.RunCrawl(ctx)
	}
	return nil
}

// Stop halts scheduling and returns a context done when running jobs finish.
func (s *JobScheduler) Stop() context.Context {
	ctx := s.cron.Stop()
	s.logger.Info("job scheduler stopped")
	return ctx
}

func (s *JobScheduler) RunCrawl(ctx context.Context) {
	if !s.crawl.Due(ctx) {
		s.logger.DebugContext(ctx, "scheduled crawl skipped: not due")
		return
	}
	result, err := s.crawl.Crawl(ctx, CrawlInput{Trigger: "schedule"})
	if err != nil {
		if IsCrawlGate(err) {
			s.logger.InfoContext(ctx, "scheduled crawl skipped", "reason", err.Error())
			return
		}
		s.logger.ErrorContext(ctx, "scheduled crawl failed", "records", len(result.Records), "error", err)
		return
	}
	s.logger.InfoContext(ctx, "scheduled crawl done", "records", len(result.Records))
}

func (s *JobScheduler) RunLive(ctx context.Context) {
	if _, err := s.live.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "scheduled live refresh failed", "error", err)
	}
}

func (s *JobScheduler) RunRetention(ctx context.Context) {
	deleted, err := s.retention.DeleteOlderThan(ctx, s.cfg.RetentionDays)
	if err != nil {
		s.logger.ErrorContext(ctx, "retention job failed", "days", s.cfg.RetentionDays, "error", err)
		return
	}
	s.logger.InfoContext(ctx, "retention job done", "days", s.cfg.RetentionDays, "deleted", deleted)
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]any{"error", err}, keysAndValues...)
	l.logger.Error("cron: "+msg, args...)
}
