package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/livescore"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
)

func TestMatchRepository_UpsertAndRetention(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.June, 14, 12, 0, 0, 0, time.UTC)

	repo := NewMatchRepository(nil)
	repo.now = func() time.Time { return now }

	record := match.Record{Competition: "Munster SHC", HomeTeam: "Cork", AwayTeam: "Clare", RawDate: "Sunday 15 June", IsFixture: true, ScrapedAt: now}
	old := match.Record{Competition: "Munster SHC", HomeTeam: "Cork", AwayTeam: "Kerry", RawDate: "Sunday 1 December", ScrapedAt: now.AddDate(-1, 0, 0)}
	if err := repo.SaveMatches(ctx, []match.Record{record, old}); err != nil {
		t.Fatalf("SaveMatches: %v", err)
	}

	record.HomeScore, record.AwayScore, record.IsFixture = "1-20", "1-19", false
	if err := repo.SaveMatches(ctx, []match.Record{record}); err != nil {
		t.Fatalf("SaveMatches update: %v", err)
	}

	stats, _ := repo.Stats(ctx)
	if stats.Total != 2 || stats.Results != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	deleted, err := repo.DeleteOlderThan(ctx, 180)
	if err != nil || deleted != 1 {
		t.Fatalf("DeleteOlderThan: deleted=%d err=%v", deleted, err)
	}
	items, _ := repo.ListMatches(ctx, match.Filter{})
	if len(items) != 1 || items[0].HomeScore != "1-20" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestLiveRepository_ListUpdatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.June, 14, 16, 0, 0, 0, time.UTC)
	repo := NewLiveRepository()

	for i := 1; i <= 3; i++ {
		_ = repo.SaveUpdate(ctx, livescore.Event{MatchKey: "Cork vs Clare", Minute: livescore.Minute(i * 10), Timestamp: now.Add(time.Duration(i) * time.Minute)})
	}
	_ = repo.UpsertSnapshot(ctx, livescore.Snapshot{MatchKey: "Cork vs Clare", UpdatedAt: now})
	_ = repo.UpsertSnapshot(ctx, livescore.Snapshot{MatchKey: "Old vs Match", UpdatedAt: now.Add(-3 * time.Hour)})

	updates, _ := repo.ListUpdates(ctx, "Cork vs Clare", 2)
	if len(updates) != 2 || *updates[0].Minute != 30 || *updates[1].Minute != 20 {
		t.Fatalf("unexpected updates %+v", updates)
	}

	snapshots, _ := repo.ListSnapshots(ctx, now.Add(-livescore.RecentWindow))
	if len(snapshots) != 1 || snapshots[0].MatchKey != "Cork vs Clare" {
		t.Fatalf("unexpected snapshots %+v", snapshots)
	}
}
