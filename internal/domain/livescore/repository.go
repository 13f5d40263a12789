package livescore

import (
	"context"
	"time"
)

type Repository interface {
	SaveUpdate(ctx context.Context, event Event) error
	UpsertSnapshot(ctx context.Context, snapshot Snapshot) error
	ListSnapshots(ctx context.Context, since time.Time) ([]Snapshot, error)
	// ListUpdates returns the newest limit events for matchKey, newest first.
	ListUpdates(ctx context.Context, matchKey string, limit int) ([]Event, error)
	Ping(ctx context.Context) error
}
