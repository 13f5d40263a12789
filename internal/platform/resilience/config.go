package resilience

import "time"

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
	// OnStateChange runs outside the breaker lock after every transition.
	OnStateChange func(from, to CircuitState)
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// Guard runs calls through a circuit breaker when the config enables one.
type Guard struct {
	breaker *CircuitBreaker
}

func NewGuard(cfg CircuitBreakerConfig) *Guard {
	if !cfg.Enabled {
		return &Guard{}
	}
	cfg = NormalizeCircuitBreakerConfig(cfg)
	return &Guard{breaker: NewCircuitBreaker(cfg)}
}

// Do returns ErrCircuitOpen without calling fn while the breaker is open.
// Errors for which ignore returns true do not count as failures.
func (g *Guard) Do(fn func() error, ignore ...func(error) bool) error {
	if g == nil || g.breaker == nil {
		return fn()
	}
	if err := g.breaker.Allow(); err != nil {
		return err
	}

	err := fn()
	if err == nil {
		g.breaker.RecordSuccess()
		return nil
	}
	for _, skip := range ignore {
		if skip(err) {
			g.breaker.RecordSuccess()
			return err
		}
	}
	g.breaker.RecordFailure()
	return err
}

func (g *Guard) State() CircuitState {
	if g == nil || g.breaker == nil {
		return CircuitStateClosed
	}
	return g.breaker.State()
}
