package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
	HealthStatusDown     = "down"
)

// Pinger is anything whose connectivity can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ComponentHealth struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
	// Optional components only degrade the report when they fail.
	Optional bool `json:"optional,omitempty"`
}

type HealthReport struct {
	Status          string                     `json:"status"`
	Components      map[string]ComponentHealth `json:"components"`
	CacheAgeSeconds *int64                     `json:"cache_age_seconds,omitempty"`
	CheckedAt       time.Time                  `json:"checked_at"`
}

// StoreHealthy is false when a store dependency is down.
func (r HealthReport) StoreHealthy() bool {
	for _, component := range r.Components {
		if component.Optional {
			continue
		}
		if component.Status != HealthStatusOK {
			return false
		}
	}
	return true
}

func (r HealthReport) optionalHealthy() bool {
	for _, component := range r.Components {
		if component.Optional && component.Status != HealthStatusOK {
			return false
		}
	}
	return true
}

type HealthService struct {
	stores    map[string]Pinger
	auxiliary map[string]Pinger
	source    SourceProbe
	cache     crawl.CacheStore
	timeout   time.Duration
	logger    *logging.Logger
	now       func() time.Time
}

// NewHealthService probes stores as critical dependencies. Auxiliary
// dependencies, like the source, only degrade the report.
func NewHealthService(
	stores map[string]Pinger,
	auxiliary map[string]Pinger,
	source SourceProbe,
	cache crawl.CacheStore,
	timeout time.Duration,
	logger *logging.Logger,
) *HealthService {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HealthService{
		stores:    stores,
		auxiliary: auxiliary,
		source:    source,
		cache:     cache,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// Check probes every dependency concurrently. Store failures make the report
// "down"; an unreachable source or auxiliary dependency only degrades it.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.HealthService.Check")
	defer span.End()

	type probeResult struct {
		name   string
		health ComponentHealth
	}
	type probe struct {
		run      func(context.Context) error
		optional bool
	}

	probes := make(map[string]probe, len(s.stores)+len(s.auxiliary)+1)
	for name, store := range s.stores {
		if store != nil {
			probes[name] = probe{run: store.Ping}
		}
	}
	for name, dep := range s.auxiliary {
		if dep != nil {
			probes[name] = probe{run: dep.Ping, optional: true}
		}
	}
	if s.source != nil {
		probes["source"] = probe{run: s.source.Probe, optional: true}
	}

	results := make(chan probeResult, len(probes))
	var wg conc.WaitGroup
	for name, p := range probes {
		name, p := name, p
		wg.Go(func() {
			probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			start := time.Now()
			err := p.run(probeCtx)
			health := ComponentHealth{
				Status:    HealthStatusOK,
				LatencyMs: time.Since(start).Milliseconds(),
				Optional:  p.optional,
			}
			if err != nil {
				health.Status = HealthStatusDown
				health.Error = err.Error()
				s.logger.WarnContext(ctx, "health probe failed", "component", name, "error", err)
			}
			results <- probeResult{name: name, health: health}
		})
	}
	wg.Wait()
	close(results)

	report := HealthReport{
		Status:     HealthStatusOK,
		Components: make(map[string]ComponentHealth, len(probes)),
		CheckedAt:  s.now().UTC(),
	}
	for item := range results {
		report.Components[item.name] = item.health
	}

	if !report.StoreHealthy() {
		report.Status = HealthStatusDown
	} else if !report.optionalHealthy() {
		report.Status = HealthStatusDegraded
	}

	if s.cache != nil {
		if entry, ok, err := s.cache.LoadEntry(ctx); err == nil && ok && !entry.LastFetch.IsZero() {
			age := int64(s.now().Sub(entry.LastFetch).Seconds())
			report.CacheAgeSeconds = &age
		}
	}
	return report
}
