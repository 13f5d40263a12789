package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/gaa-fixtures/external/gaa"
	"github.com/riskibarqy/gaa-fixtures/external/rte"
	"github.com/riskibarqy/gaa-fixtures/internal/config"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/livescore"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
	"github.com/riskibarqy/gaa-fixtures/internal/infrastructure/lock"
	cacherepo "github.com/riskibarqy/gaa-fixtures/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/gaa-fixtures/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/gaa-fixtures/internal/infrastructure/repository/sqldb"
	"github.com/riskibarqy/gaa-fixtures/internal/infrastructure/sessioncache"
	"github.com/riskibarqy/gaa-fixtures/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/gaa-fixtures/internal/platform/cache"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/resilience"
	"github.com/riskibarqy/gaa-fixtures/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// App owns the HTTP server and every background component behind it.
type App struct {
	Server    *http.Server
	live      *usecase.LiveService
	scheduler *usecase.JobScheduler
	closers   []func() error
	cfg       config.Config
	logger    *logging.Logger
}

type stores struct {
	matches match.Repository
	live    livescore.Repository
	pingers map[string]usecase.Pinger
	close   func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{cfg: cfg, logger: logger}

	st, err := openStores(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, st.close)

	matchRepo := st.matches
	if cfg.CacheEnabled {
		matchRepo = cacherepo.NewMatchRepository(matchRepo, basecache.NewStore(cfg.CacheTTL))
	}

	sessionCache, err := sessioncache.New(cfg.DataDir, logger.Component("session_cache"))
	if err != nil {
		_ = a.close()
		return nil, fmt.Errorf("open session cache: %w", err)
	}

	auxiliary := make(map[string]usecase.Pinger)
	locker, err := a.crawlLocker(ctx, auxiliary)
	if err != nil {
		_ = a.close()
		return nil, err
	}

	selectors := gaa.DefaultSelectors()
	if cfg.SelectorsFile != "" {
		selectors, err = gaa.LoadSelectors(cfg.SelectorsFile)
		if err != nil {
			_ = a.close()
			return nil, fmt.Errorf("load selectors: %w", err)
		}
	}

	opener := gaa.NewBrowserOpener(gaa.BrowserConfig{
		Headless:    cfg.ScrapeHeadless,
		StepTimeout: cfg.ScrapeStepTimeout,
		UserDataDir: cfg.ScrapeUserDataDir,
		Selectors:   selectors,
		Logger:      logger.Component("browser"),
	})

	crawlerCfg := usecase.DefaultCrawlerConfig()
	crawlerCfg.SourceURL = cfg.SourceURL
	crawlerCfg.ReadySelector = selectors.Item
	crawlerCfg.Location = cfg.SourceLocation
	crawlerCfg.InitialWait = cfg.ScrapeInitialWait
	crawlerCfg.IdleTimeout = cfg.ScrapeIdleTimeout
	crawlerCfg.MaxRetries = cfg.ScrapeMaxRetries
	crawlerCfg.MaxNoNew = cfg.ScrapeMaxNoNew
	crawlerCfg.MaxCycles = cfg.ScrapeMaxCycles
	crawler := usecase.NewCrawler(crawlerCfg, logger)

	crawlSvc := usecase.NewCrawlService(
		opener,
		crawler,
		sessionCache,
		matchRepo,
		locker,
		nil,
		usecase.CrawlServiceConfig{
			Interval: cfg.ScrapeInterval,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.StoreCircuitEnabled,
				FailureThreshold: cfg.StoreCircuitFailureCount,
				OpenTimeout:      cfg.StoreCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.StoreCircuitHalfOpenMaxReq,
			},
		},
		logger,
	)

	feed := rte.NewClient(rte.ClientConfig{
		Timeout:    cfg.LiveTimeout,
		MaxRetries: cfg.LiveMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.LiveCircuitEnabled,
			FailureThreshold: cfg.LiveCircuitFailureCount,
			OpenTimeout:      cfg.LiveCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.LiveCircuitHalfOpenMaxReq,
		},
	})
	sectionURLs := cfg.LiveSectionURLs
	if len(sectionURLs) == 0 {
		sectionURLs = rte.DefaultSectionURLs
	}
	a.live = usecase.NewLiveService(st.live, livescore.NewMerger(), feed, usecase.LiveServiceConfig{
		SectionURLs:  sectionURLs,
		MaxWorkers:   cfg.LiveMaxWorkers,
		RecentWindow: cfg.LiveRecentWindow,
	}, logger)

	matchSvc := usecase.NewMatchService(matchRepo, sessionCache, a.live, cfg.SourceLocation, logger)
	healthSvc := usecase.NewHealthService(
		st.pingers,
		auxiliary,
		gaa.NewProbe(cfg.SourceURL, cfg.SourceProbeTimeout),
		sessionCache,
		cfg.SourceProbeTimeout,
		logger,
	)

	if cfg.SchedulerEnabled {
		a.scheduler = usecase.NewJobScheduler(crawlSvc, a.live, matchRepo, usecase.JobSchedulerConfig{
			CrawlSpec:     cfg.CrawlCron,
			LiveSpec:      cfg.LiveCron,
			RetentionSpec: cfg.RetentionCron,
			RetentionDays: cfg.RetentionDays,
			LiveEnabled:   cfg.LiveEnabled,
		}, logger)
	}

	handler := httpapi.NewHandler(matchSvc, crawlSvc, a.live, healthSvc, cfg.SourceLocation, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return a, nil
}

// Start restores live snapshots and starts the job scheduler.
func (a *App) Start(ctx context.Context) error {
	restored, err := a.live.Warm(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "restore live snapshots failed", "error", err)
	} else {
		a.logger.InfoContext(ctx, "live snapshots restored", "count", restored)
	}

	if a.scheduler == nil {
		a.logger.InfoContext(ctx, "job scheduler disabled", "reason", "SCHEDULER_ENABLED=false")
		return nil
	}
	return a.scheduler.Start(ctx)
}

// Shutdown stops the scheduler, drains the HTTP server and closes stores.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.scheduler != nil {
		select {
		case <-a.scheduler.Stop().Done():
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("wait for running jobs: %w", ctx.Err()))
		}
	}
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) crawlLocker(ctx context.Context, auxiliary map[string]usecase.Pinger) (usecase.CrawlLocker, error) {
	if a.cfg.RedisURL == "" {
		return usecase.NewLocalCrawlLocker(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := lock.NewRedisClient(connectCtx, a.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, client.Close)

	locker := lock.NewRedisLocker(client, lock.DefaultCrawlLockKey, a.cfg.CrawlLockTTL)
	auxiliary["redis"] = locker
	a.logger.Info("crawl lock backed by redis", "ttl", a.cfg.CrawlLockTTL.String())
	return locker, nil
}

func openStores(cfg config.Config, logger *logging.Logger) (stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		matches := memory.NewMatchRepository(nil)
		live := memory.NewLiveRepository()
		return stores{
			matches: matches,
			live:    live,
			pingers: map[string]usecase.Pinger{"store": matches},
			close:   func() error { return nil },
		}, nil
	case config.StoreDriverPostgres:
		db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBBinaryParameters),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(sqldb.FormatQueryForTrace),
		)
		if err != nil {
			return stores{}, fmt.Errorf("open postgres: %w", err)
		}
		return sqlStores(db, sqldb.DialectPostgres, logger)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return stores{}, fmt.Errorf("create sqlite dir: %w", err)
		}
		db, err := otelsqlx.Open("sqlite", sqldb.SQLiteDSN(cfg.SQLitePath),
			otelsql.WithDBName(filepath.Base(cfg.SQLitePath)),
			otelsql.WithQueryFormatter(sqldb.FormatQueryForTrace),
		)
		if err != nil {
			return stores{}, fmt.Errorf("open sqlite: %w", err)
		}
		return sqlStores(db, sqldb.DialectSQLite, logger)
	}
}

func sqlStores(db *sqlx.DB, dialect sqldb.Dialect, logger *logging.Logger) (stores, error) {
	if err := sqldb.MigrateUp(db, dialect); err != nil {
		_ = db.Close()
		return stores{}, err
	}
	logger.Info("store ready", "driver", string(dialect))

	conn := sqldb.NewConn(db, dialect)
	return stores{
		matches: sqldb.NewMatchRepository(conn),
		live:    sqldb.NewLiveRepository(conn),
		pingers: map[string]usecase.Pinger{"store": conn},
		close:   conn.Close,
	}, nil
}
