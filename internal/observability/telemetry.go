package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/config"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
)

// Telemetry holds the tracing exporter, the continuous profiler and the
// pprof listener so the API can start and stop them as one unit.
type Telemetry struct {
	shutdownTracing func(context.Context) error
	stopProfiler    func() error
	pprof           *http.Server
	logger          *logging.Logger
}

// Setup starts every telemetry component the config enables. A component that
// fails to start stops the ones already running.
func Setup(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger}

	var err error
	if t.shutdownTracing, err = InitUptrace(cfg, logger); err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	if t.stopProfiler, err = InitPyroscope(cfg, logger); err != nil {
		_ = t.Shutdown(context.Background())
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}
	if t.pprof, err = StartPprofServer(cfg, logger); err != nil {
		_ = t.Shutdown(context.Background())
		return nil, fmt.Errorf("start pprof: %w", err)
	}
	return t, nil
}

// Shutdown stops pprof, then the profiler, then flushes pending spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var errs []error
	if err := StopPprofServer(ctx, t.pprof, t.logger); err != nil {
		errs = append(errs, fmt.Errorf("stop pprof: %w", err))
	}
	t.pprof = nil
	if t.stopProfiler != nil {
		if err := t.stopProfiler(); err != nil {
			errs = append(errs, fmt.Errorf("stop pyroscope: %w", err))
		}
		t.stopProfiler = nil
	}
	if t.shutdownTracing != nil {
		flushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := t.shutdownTracing(flushCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown uptrace: %w", err))
		}
		t.shutdownTracing = nil
	}
	return errors.Join(errs...)
}
