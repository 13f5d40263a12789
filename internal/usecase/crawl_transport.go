package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
)

// SourceTransport is one browsing session against the listing. Calls are made
// sequentially by a single crawler.
type SourceTransport interface {
	Navigate(ctx context.Context, url string) error
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	WaitGone(ctx context.Context, selector string, timeout time.Duration) error
	// DismissConsent clears cookie banners. Missing banners are not an error.
	DismissConsent(ctx context.Context) error
	Snapshot(ctx context.Context) (*crawl.PageSnapshot, error)
	// HasMore reports whether a visible "load more" affordance exists.
	HasMore(ctx context.Context) (bool, error)
	LoadMore(ctx context.Context) error
	WaitIdle(ctx context.Context, timeout time.Duration) error
	Close() error
}

type TransportOpener interface {
	Open(ctx context.Context) (SourceTransport, error)
}

// SourceProbe checks that the listing origin answers at all.
type SourceProbe interface {
	Probe(ctx context.Context) error
}
