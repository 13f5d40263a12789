package crawl

import (
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrExtractionUnavailable = crerr.New("page snapshot unavailable")
	ErrTransientStepFailure  = crerr.New("transient crawl step failure")
	ErrRateLimited           = crerr.New("crawl rate limited")
	ErrStoreUnavailable      = crerr.New("match store unavailable")
	ErrMalformedRecord       = crerr.New("malformed match record")
	ErrCrawlInProgress       = crerr.New("crawl already in progress")
	// ErrNoAffordance means the load-more control vanished before it was clicked.
	ErrNoAffordance = crerr.New("load-more affordance not found")
)

// RateLimitedError carries the time the next crawl becomes eligible.
type RateLimitedError struct {
	NextEligibleAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: next eligible at %s", ErrRateLimited.Error(), e.NextEligibleAt.UTC().Format(time.RFC3339))
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
