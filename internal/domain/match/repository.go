package match

import "context"

// Repository persists listing records. SaveMatches upserts on Key.
type Repository interface {
	SaveMatches(ctx context.Context, items []Record) error
	ListMatches(ctx context.Context, filter Filter) ([]Record, error)
	Stats(ctx context.Context) (Stats, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
	Ping(ctx context.Context) error
}
