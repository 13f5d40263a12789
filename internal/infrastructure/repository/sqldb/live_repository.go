package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/livescore"
	qb "github.com/riskibarqy/gaa-fixtures/internal/platform/querybuilder"
)

const (
	liveSnapshotsTable = "live_snapshots"
	liveUpdatesTable   = "live_updates"
)

const liveSnapshotUpsertSuffix = `ON CONFLICT (match_key) DO UPDATE SET
	home_team = excluded.home_team,
	away_team = excluded.away_team,
	home_score = excluded.home_score,
	away_score = excluded.away_score,
	minute = excluded.minute,
	is_final = excluded.is_final,
	updated_at = excluded.updated_at`

var (
	liveSnapshotColumns = mustColumns(liveSnapshotTableModel{})
	liveUpdateColumns   = mustColumns(liveUpdateTableModel{})
)

type LiveRepository struct {
	conn *Conn
	now  func() time.Time
}

func NewLiveRepository(conn *Conn) *LiveRepository {
	return &LiveRepository{conn: conn, now: time.Now}
}

func (r *LiveRepository) SaveUpdate(ctx context.Context, event livescore.Event) error {
	query, args, err := qb.InsertModel(liveUpdatesTable, liveUpdateModelFromDomain(event, r.now()), "")
	if err != nil {
		return fmt.Errorf("build insert live update query: %w", err)
	}
	if _, err := r.conn.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert live update %s: %w", event.MatchKey, err)
	}
	return nil
}

func (r *LiveRepository) UpsertSnapshot(ctx context.Context, snapshot livescore.Snapshot) error {
	query, args, err := qb.InsertModel(liveSnapshotsTable, liveSnapshotModelFromDomain(snapshot), liveSnapshotUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert live snapshot query: %w", err)
	}
	if _, err := r.conn.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert live snapshot %s: %w", snapshot.MatchKey, err)
	}
	return nil
}

func (r *LiveRepository) ListSnapshots(ctx context.Context, since time.Time) ([]livescore.Snapshot, error) {
	query, args, err := qb.Select(liveSnapshotColumns...).From(liveSnapshotsTable).
		Where(qb.Gte("updated_at", toMillis(since))).
		OrderBy("updated_at DESC", "match_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select live snapshots query: %w", err)
	}

	var rows []liveSnapshotTableModel
	if err := r.conn.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select live snapshots: %w", err)
	}

	out := make([]livescore.Snapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// ListUpdates returns the newest updates for a match first.
func (r *LiveRepository) ListUpdates(ctx context.Context, matchKey string, limit int) ([]livescore.Event, error) {
	query, args, err := qb.Select(liveUpdateColumns...).From(liveUpdatesTable).
		Where(qb.Eq("match_key", matchKey)).
		OrderBy("ts DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select live updates query: %w", err)
	}

	var rows []liveUpdateTableModel
	if err := r.conn.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select live updates: %w", err)
	}

	out := make([]livescore.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *LiveRepository) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}
