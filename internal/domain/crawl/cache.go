package crawl

import (
	"context"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
)

// CacheEntry is the fallback copy of the last crawl output.
type CacheEntry struct {
	Records   []match.Record
	LastFetch time.Time
}

// History is the rate-limit bookkeeping that survives restarts.
type History struct {
	LastSuccess time.Time
}

// CacheStore persists CacheEntry and History. Readers never observe a
// partially written value.
type CacheStore interface {
	LoadEntry(ctx context.Context) (CacheEntry, bool, error)
	SaveEntry(ctx context.Context, entry CacheEntry) error
	LoadHistory(ctx context.Context) (History, bool, error)
	SaveHistory(ctx context.Context, history History) error
}
