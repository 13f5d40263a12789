package match

import (
	"testing"
	"time"
)

func TestFilterApply(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{Competition: "Munster SHC", HomeTeam: "Cork", AwayTeam: "Clare", CanonicalTimestamp: base.Add(48 * time.Hour), IsFixture: true},
		{Competition: "Leinster SHC", HomeTeam: "Kilkenny", AwayTeam: "Galway", CanonicalTimestamp: base.Add(24 * time.Hour), IsFixture: true},
		{Competition: "Munster SHC", HomeTeam: "Tipperary", AwayTeam: "Waterford", CanonicalTimestamp: base.Add(-24 * time.Hour), HomeScore: "2-20", AwayScore: "1-18"},
		{Competition: "Connacht SFC", HomeTeam: "Mayo", AwayTeam: "Galway", IsFixture: true},
	}

	fixture := true
	start := base
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter orders undated first", filter: Filter{}, want: []string{"Mayo", "Tipperary", "Kilkenny", "Cork"}},
		{name: "fixtures only", filter: Filter{IsFixture: &fixture}, want: []string{"Mayo", "Kilkenny", "Cork"}},
		{name: "competition is case-insensitive substring", filter: Filter{Competition: "munster"}, want: []string{"Tipperary", "Cork"}},
		{name: "start date drops undated and past", filter: Filter{StartDate: &start}, want: []string{"Kilkenny", "Cork"}},
		{name: "limit", filter: Filter{Limit: 2}, want: []string{"Mayo", "Tipperary"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := tc.filter.Apply(records)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d records, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i].HomeTeam != tc.want[i] {
					t.Fatalf("position %d: got %s, want %s", i, got[i].HomeTeam, tc.want[i])
				}
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	t.Parallel()

	scraped := time.Date(2025, time.June, 14, 9, 0, 0, 0, time.UTC)
	stats := ComputeStats([]Record{
		{Competition: "A", IsFixture: true, ScrapedAt: scraped.Add(-time.Hour)},
		{Competition: "A", ScrapedAt: scraped},
		{Competition: "B", IsFixture: true},
	})
	if stats.Total != 3 || stats.Fixtures != 2 || stats.Results != 1 || stats.Competitions != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.LastUpdated == nil || !stats.LastUpdated.Equal(scraped) {
		t.Fatalf("unexpected last updated %v", stats.LastUpdated)
	}

	if empty := ComputeStats(nil); empty.Total != 0 || empty.LastUpdated != nil {
		t.Fatalf("unexpected empty stats %+v", empty)
	}
}
