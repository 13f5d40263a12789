package match

import (
	"testing"
	"time"
)

func TestDateNormalizer_Parse(t *testing.T) {
	t.Parallel()

	dublin, err := time.LoadLocation("Europe/Dublin")
	if err != nil {
		dublin = time.UTC
	}
	n := NewDateNormalizer(2025, dublin)

	tests := []struct {
		name       string
		rawDate    string
		rawTime    string
		wantMonth  time.Month
		wantDay    int
		wantHour   int
		wantMinute int
	}{
		{name: "weekday day month no time", rawDate: "Saturday 14 June", wantMonth: time.June, wantDay: 14, wantHour: 12, wantMinute: 0},
		{name: "day month with time", rawDate: "14 June", rawTime: "19:30", wantMonth: time.June, wantDay: 14, wantHour: 19, wantMinute: 30},
		{name: "abbreviated month", rawDate: "Sun 3 Aug", rawTime: "15:45", wantMonth: time.August, wantDay: 3, wantHour: 15, wantMinute: 45},
		{name: "ordinal suffix", rawDate: "Sunday 21st September", rawTime: "3:30", wantMonth: time.September, wantDay: 21, wantHour: 3, wantMinute: 30},
		{name: "unknown month falls back", rawDate: "Friday 9 Smarch", wantMonth: FallbackMonth, wantDay: 9, wantHour: 12},
		{name: "invalid clock falls back", rawDate: "Monday 1 July", rawTime: "27:99", wantMonth: time.July, wantDay: 1, wantHour: 12},
		{name: "time text with label", rawDate: "Saturday 14 June", rawTime: "Throw-in 17:00", wantMonth: time.June, wantDay: 14, wantHour: 17},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := n.Parse(tt.rawDate, tt.rawTime)
			if !ok {
				t.Fatalf("expected %q to parse", tt.rawDate)
			}
			if got.Year() != 2025 {
				t.Fatalf("unexpected year: got=%d want=2025", got.Year())
			}
			if got.Month() != tt.wantMonth || got.Day() != tt.wantDay {
				t.Fatalf("unexpected date: got=%s want=%s %d", got.Format("2006-01-02"), tt.wantMonth, tt.wantDay)
			}
			if got.Hour() != tt.wantHour || got.Minute() != tt.wantMinute {
				t.Fatalf("unexpected clock: got=%02d:%02d want=%02d:%02d", got.Hour(), got.Minute(), tt.wantHour, tt.wantMinute)
			}
			if got.Location() != dublin {
				t.Fatalf("unexpected location: %s", got.Location())
			}
		})
	}
}

func TestDateNormalizer_ParseRejectsTextWithoutDay(t *testing.T) {
	t.Parallel()

	n := NewDateNormalizer(2025, nil)
	if _, ok := n.Parse("To be confirmed", ""); ok {
		t.Fatalf("expected unparseable date")
	}
	if _, ok := n.Parse("", "19:30"); ok {
		t.Fatalf("expected empty date to be unparseable")
	}
}

func TestDateNormalizer_ParseRejectsDayOutsideMonth(t *testing.T) {
	t.Parallel()

	n := NewDateNormalizer(2025, nil)
	for _, raw := range []string{"Tuesday 31 June", "Saturday 29 February", "Thursday 31 April"} {
		if got, ok := n.Parse(raw, "15:00"); ok {
			t.Fatalf("Parse(%q) = %s, expected rejection", raw, got)
		}
	}

	leap := NewDateNormalizer(2024, nil)
	got, ok := leap.Parse("Thursday 29 February", "15:00")
	if !ok || got.Month() != time.February || got.Day() != 29 {
		t.Fatalf("expected leap day to parse, got %s ok=%v", got, ok)
	}
}

func TestDateNormalizer_IsDeterministic(t *testing.T) {
	t.Parallel()

	n := NewDateNormalizer(2024, time.UTC)
	first, _ := n.Parse("Saturday 14 June", "")
	second, _ := n.Parse("Saturday 14 June", "")
	if !first.Equal(second) {
		t.Fatalf("expected identical timestamps, got %s and %s", first, second)
	}
	if first.Month() != time.Month(5+1) {
		t.Fatalf("expected June (index 5), got %s", first.Month())
	}
}
