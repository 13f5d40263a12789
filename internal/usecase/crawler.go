package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type CrawlerConfig struct {
	SourceURL       string
	ReadySelector   string
	LoadingSelector string
	Location        *time.Location

	InitialWait       time.Duration
	IdleTimeout       time.Duration
	IdleFallbackDelay time.Duration
	RetryDelay        time.Duration
	PreClickMin       time.Duration
	PreClickMax       time.Duration
	SettleMin         time.Duration
	SettleMax         time.Duration

	MaxRetries int
	MaxNoNew   int
	MaxCycles  int
}

func DefaultCrawlerConfig() CrawlerConfig {
	return CrawlerConfig{
		SourceURL:         "https://www.gaa.ie/fixtures-results",
		ReadySelector:     ".gar-match-item",
		Location:          time.UTC,
		InitialWait:       10 * time.Second,
		IdleTimeout:       10 * time.Second,
		IdleFallbackDelay: 3 * time.Second,
		RetryDelay:        time.Second,
		PreClickMin:       1500 * time.Millisecond,
		PreClickMax:       3500 * time.Millisecond,
		SettleMin:         2 * time.Second,
		SettleMax:         4 * time.Second,
		MaxRetries:        3,
		MaxNoNew:          3,
		MaxCycles:         200,
	}
}

func normalizeCrawlerConfig(cfg CrawlerConfig) CrawlerConfig {
	def := DefaultCrawlerConfig()
	if strings.TrimSpace(cfg.SourceURL) == "" {
		cfg.SourceURL = def.SourceURL
	}
	if strings.TrimSpace(cfg.ReadySelector) == "" {
		cfg.ReadySelector = def.ReadySelector
	}
	if cfg.Location == nil {
		cfg.Location = def.Location
	}
	if cfg.InitialWait <= 0 {
		cfg.InitialWait = def.InitialWait
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.IdleFallbackDelay < 0 {
		cfg.IdleFallbackDelay = 0
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if cfg.PreClickMax < cfg.PreClickMin {
		cfg.PreClickMax = cfg.PreClickMin
	}
	if cfg.SettleMax < cfg.SettleMin {
		cfg.SettleMax = cfg.SettleMin
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxNoNew <= 0 {
		cfg.MaxNoNew = def.MaxNoNew
	}
	return cfg
}

// Crawler walks the paginated listing one cycle at a time.
type Crawler struct {
	cfg    CrawlerConfig
	logger *logging.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(lo, hi time.Duration) time.Duration
}

func NewCrawler(cfg CrawlerConfig, logger *logging.Logger) *Crawler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Crawler{
		cfg:    normalizeCrawlerConfig(cfg),
		logger: logger,
		now:    time.Now,
		sleep:  sleepContext,
		jitter: randomDuration,
	}
}

// Run drives session from Idle to Stopped or Aborted. On abort the session
// keeps every record gathered so far and the cause is returned.
func (c *Crawler) Run(ctx context.Context, transport SourceTransport, session *crawl.Session) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Crawler.Run", attribute.String("crawl.session_id", session.ID))
	defer func() {
		span.SetAttributes(
			attribute.String("crawl.state", string(session.State)),
			attribute.String("crawl.stop_reason", string(session.StopReason)),
			attribute.Int("crawl.cycles", session.Cycles),
			attribute.Int("crawl.records", session.RecordCount()),
		)
		markSpanError(span, session.Err)
		span.End()
	}()

	abort := func(err error) error {
		session.Abort(err, c.now())
		c.logger.WarnContext(ctx, "crawl aborted",
			"session_id", session.ID,
			"cycles", session.Cycles,
			"records", session.RecordCount(),
			"error", err,
		)
		return err
	}

	if err := session.Transition(crawl.StateLoading); err != nil {
		return abort(err)
	}
	if err := c.retry(ctx, "navigate", func(ctx context.Context) error {
		return transport.Navigate(ctx, c.cfg.SourceURL)
	}); err != nil {
		return abort(err)
	}
	if err := transport.DismissConsent(ctx); err != nil {
		c.logger.DebugContext(ctx, "dismiss consent failed", "error", err)
	}
	if err := transport.WaitFor(ctx, c.cfg.ReadySelector, c.cfg.InitialWait); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return abort(ctxErr)
		}
		return abort(fmt.Errorf("%w: initial content did not appear: %v", crawl.ErrExtractionUnavailable, err))
	}

	for {
		if err := ctx.Err(); err != nil {
			return abort(err)
		}

		if err := session.Transition(crawl.StateExtracting); err != nil {
			return abort(err)
		}
		snapshot, err := transport.Snapshot(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return abort(ctxErr)
			}
			return abort(fmt.Errorf("%w: %v", crawl.ErrExtractionUnavailable, err))
		}
		batch, err := c.extract(ctx, snapshot, session)
		if err != nil {
			return abort(err)
		}
		added := session.Absorb(batch)
		c.logger.DebugContext(ctx, "crawl cycle extracted",
			"session_id", session.ID,
			"cycle", session.Cycles,
			"candidates", len(snapshot.Items),
			"new", added,
			"total", session.RecordCount(),
		)

		if err := session.Transition(crawl.StateDecidingContinue); err != nil {
			return abort(err)
		}
		if session.ConsecutiveEmpty >= c.cfg.MaxNoNew {
			session.Stop(crawl.StopNoNewRecords, c.now())
			return nil
		}
		if c.cfg.MaxCycles > 0 && session.Cycles >= c.cfg.MaxCycles {
			session.Stop(crawl.StopMaxCycles, c.now())
			return nil
		}

		var more bool
		if err := c.retry(ctx, "probe load more", func(ctx context.Context) error {
			var probeErr error
			more, probeErr = transport.HasMore(ctx)
			return probeErr
		}); err != nil {
			return abort(err)
		}
		if !more {
			session.Stop(crawl.StopNoAffordance, c.now())
			return nil
		}

		if err := session.Transition(crawl.StateLoading); err != nil {
			return abort(err)
		}
		if err := c.sleep(ctx, c.jitter(c.cfg.PreClickMin, c.cfg.PreClickMax)); err != nil {
			return abort(err)
		}
		if err := c.retry(ctx, "load more", transport.LoadMore); err != nil {
			if errors.Is(err, crawl.ErrNoAffordance) {
				session.Stop(crawl.StopNoAffordance, c.now())
				return nil
			}
			return abort(err)
		}
		session.Cycles++

		if err := transport.WaitIdle(ctx, c.cfg.IdleTimeout); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return abort(ctxErr)
			}
			c.logger.DebugContext(ctx, "network idle wait timed out, using fixed delay",
				"delay", c.cfg.IdleFallbackDelay.String(),
				"error", err,
			)
			if err := c.sleep(ctx, c.cfg.IdleFallbackDelay); err != nil {
				return abort(err)
			}
		}
		if c.cfg.LoadingSelector != "" {
			if err := transport.WaitGone(ctx, c.cfg.LoadingSelector, c.cfg.IdleTimeout); err != nil {
				c.logger.DebugContext(ctx, "loading indicator still visible", "error", err)
			}
		}
		if err := c.sleep(ctx, c.jitter(c.cfg.SettleMin, c.cfg.SettleMax)); err != nil {
			return abort(err)
		}
	}
}

func (c *Crawler) extract(ctx context.Context, snapshot *crawl.PageSnapshot, session *crawl.Session) ([]match.Record, error) {
	raws, err := crawl.Extract(snapshot)
	if err != nil {
		return nil, err
	}

	now := c.now()
	normalizer := match.NewDateNormalizer(now.In(c.cfg.Location).Year(), c.cfg.Location)
	out := make([]match.Record, 0, len(raws))
	for _, raw := range raws {
		record, err := crawl.BuildRecord(raw, normalizer, now)
		if err != nil {
			session.Skipped++
			c.logger.DebugContext(ctx, "skip malformed record",
				"competition", raw.Competition,
				"home_team", raw.HomeTeam,
				"away_team", raw.AwayTeam,
				"date", raw.Date,
				"error", err,
			)
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// retry runs step up to MaxRetries+1 times with a jittered linear backoff.
func (c *Crawler) retry(ctx context.Context, step string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, crawl.ErrNoAffordance) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		lastErr = err
		if attempt == c.cfg.MaxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * c.jitter(c.cfg.RetryDelay, 2*c.cfg.RetryDelay)
		c.logger.WarnContext(ctx, "crawl step failed, retrying",
			"step", step,
			"attempt", attempt+1,
			"backoff", backoff.String(),
			"error", err,
		)
		if err := c.sleep(ctx, backoff); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %s failed after %d attempts: %v", crawl.ErrTransientStepFailure, step, c.cfg.MaxRetries+1, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func randomDuration(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}
