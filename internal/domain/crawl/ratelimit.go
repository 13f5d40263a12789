package crawl

import "time"

// RateLimiter gates full crawls to one per Interval, measured from the last
// successful crawl.
type RateLimiter struct {
	Interval time.Duration
}

// ShouldCrawl is true when no crawl has succeeded yet or the interval elapsed.
func (l RateLimiter) ShouldCrawl(lastSuccess, now time.Time) bool {
	if lastSuccess.IsZero() || l.Interval <= 0 {
		return true
	}
	return now.Sub(lastSuccess) >= l.Interval
}

func (l RateLimiter) NextEligibleAt(lastSuccess time.Time) time.Time {
	if lastSuccess.IsZero() {
		return time.Time{}
	}
	return lastSuccess.Add(l.Interval)
}

// Check returns a *RateLimitedError when a crawl is not yet due.
func (l RateLimiter) Check(lastSuccess, now time.Time) error {
	if l.ShouldCrawl(lastSuccess, now) {
		return nil
	}
	return &RateLimitedError{NextEligibleAt: l.NextEligibleAt(lastSuccess)}
}
