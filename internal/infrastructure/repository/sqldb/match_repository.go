package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
	qb "github.com/riskibarqy/gaa-fixtures/internal/platform/querybuilder"
)

const (
	matchesTable   = "matches"
	upsertBatchLen = 200
)

const matchUpsertSuffix = `ON CONFLICT (home_team, away_team, raw_date, competition) DO UPDATE SET
	home_score = excluded.home_score,
	away_score = excluded.away_score,
	venue = excluded.venue,
	referee = excluded.referee,
	match_time = excluded.match_time,
	broadcasting = excluded.broadcasting,
	canonical_ts = excluded.canonical_ts,
	is_fixture = excluded.is_fixture,
	scraped_at = excluded.scraped_at,
	updated_at = excluded.updated_at`

var matchColumns = mustColumns(matchTableModel{})

type MatchRepository struct {
	conn *Conn
	now  func() time.Time
}

func NewMatchRepository(conn *Conn) *MatchRepository {
	return &MatchRepository{conn: conn, now: time.Now}
}

// SaveMatches upserts on the natural key. A key repeated within items keeps
// its last occurrence.
func (r *MatchRepository) SaveMatches(ctx context.Context, items []match.Record) error {
	if len(items) == 0 {
		return nil
	}

	now := r.now()
	rows := make([]matchTableModel, 0, len(items))
	index := make(map[match.Key]int, len(items))
	for _, item := range items {
		row := matchModelFromDomain(item, now)
		if i, ok := index[item.Key()]; ok {
			rows[i] = row
			continue
		}
		index[item.Key()] = len(rows)
		rows = append(rows, row)
	}

	return r.conn.withTx(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(rows); start += upsertBatchLen {
			end := min(start+upsertBatchLen, len(rows))
			query, args, err := qb.InsertModels(matchesTable, rows[start:end], matchUpsertSuffix)
			if err != nil {
				return fmt.Errorf("build upsert matches query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, r.conn.rebind(query), args...); err != nil {
				return fmt.Errorf("upsert matches batch %d-%d: %w", start, end, err)
			}
		}
		return nil
	})
}

func (r *MatchRepository) ListMatches(ctx context.Context, filter match.Filter) ([]match.Record, error) {
	conditions := make([]qb.Condition, 0, 4)
	if filter.IsFixture != nil {
		conditions = append(conditions, qb.Eq("is_fixture", *filter.IsFixture))
	}
	if filter.Competition != "" {
		conditions = append(conditions, qb.ContainsFold("competition", filter.Competition))
	}
	if filter.StartDate != nil {
		conditions = append(conditions, qb.Gte("canonical_ts", toMillis(*filter.StartDate)))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, qb.Lte("canonical_ts", toMillis(*filter.EndDate)))
	}

	query, args, err := qb.Select(matchColumns...).From(matchesTable).
		Where(conditions...).
		OrderBy("COALESCE(canonical_ts, 0)", "competition", "home_team").
		Limit(filter.Limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.conn.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) Stats(ctx context.Context) (match.Stats, error) {
	query, args, err := qb.Select(
		"COUNT(*) AS total",
		"COALESCE(SUM(CASE WHEN is_fixture THEN 1 ELSE 0 END), 0) AS fixtures",
		"COALESCE(SUM(CASE WHEN is_fixture THEN 0 ELSE 1 END), 0) AS results",
		"COUNT(DISTINCT competition) AS competitions",
		"MAX(scraped_at) AS last_scraped",
	).From(matchesTable).ToSQL()
	if err != nil {
		return match.Stats{}, fmt.Errorf("build match stats query: %w", err)
	}

	var row matchStatsModel
	if err := r.conn.getContext(ctx, &row, query, args...); err != nil {
		return match.Stats{}, fmt.Errorf("select match stats: %w", err)
	}
	return row.toDomain(), nil
}

// DeleteOlderThan removes records not scraped within the last days.
func (r *MatchRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("retention days must be > 0")
	}

	cutoff := r.now().Add(-time.Duration(days) * 24 * time.Hour)
	query, args, err := qb.DeleteFrom(matchesTable).Where(qb.Lt("scraped_at", toMillis(cutoff))).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete matches query: %w", err)
	}

	res, err := r.conn.execContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete old matches: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted matches count: %w", err)
	}
	return deleted, nil
}

func (r *MatchRepository) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

func mustColumns(model any) []string {
	cols, err := qb.Columns(model)
	if err != nil {
		panic(err)
	}
	return cols
}
