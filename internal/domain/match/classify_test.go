package match

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 14, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record Record
		want   bool
	}{
		{
			name:   "scores and past timestamp is result",
			record: Record{HomeScore: "1-10", AwayScore: "0-09", CanonicalTimestamp: now.Add(-48 * time.Hour)},
			want:   false,
		},
		{
			name:   "no scores and future timestamp is fixture",
			record: Record{CanonicalTimestamp: now.Add(48 * time.Hour)},
			want:   true,
		},
		{
			name:   "no scores no time and timestamp exactly now is fixture",
			record: Record{CanonicalTimestamp: now},
			want:   true,
		},
		{
			name:   "no scores and past timestamp is still fixture",
			record: Record{CanonicalTimestamp: now.Add(-72 * time.Hour)},
			want:   true,
		},
		{
			name:   "scores with explicit kickoff time is fixture",
			record: Record{HomeScore: "0-00", AwayScore: "0-00", Time: "19:30", CanonicalTimestamp: now.Add(-time.Hour)},
			want:   true,
		},
		{
			name:   "scores with full time marker is result",
			record: Record{HomeScore: "2-14", AwayScore: "1-11", Time: "FT", CanonicalTimestamp: now.Add(-time.Hour)},
			want:   false,
		},
		{
			name:   "scores and future timestamp is fixture",
			record: Record{HomeScore: "0-01", AwayScore: "0-00", CanonicalTimestamp: now.Add(time.Minute)},
			want:   true,
		},
		{
			name:   "scores and timestamp exactly now is result",
			record: Record{HomeScore: "0-01", AwayScore: "0-00", CanonicalTimestamp: now},
			want:   false,
		},
		{
			name:   "one score present is not the no-score rule",
			record: Record{HomeScore: "1-01", CanonicalTimestamp: now.Add(-time.Hour)},
			want:   false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Classify(tt.record, now); got != tt.want {
				t.Fatalf("Classify()=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestIsKickoffTime(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"19:30":          true,
		" 3:45 ":         true,
		"FT":             false,
		"Full Time":      false,
		"full-time 2-10": false,
		"":               false,
		"TBC":            false,
	}
	for in, want := range cases {
		if got := IsKickoffTime(in); got != want {
			t.Fatalf("IsKickoffTime(%q)=%v want=%v", in, got, want)
		}
	}
}
