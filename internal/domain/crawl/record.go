package crawl

import (
	"fmt"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
)

// Validate checks the identity fields of a raw record.
func Validate(raw RawRecord) error {
	switch {
	case raw.HomeTeam == "" || raw.AwayTeam == "":
		return fmt.Errorf("%w: missing team name", ErrMalformedRecord)
	case raw.HomeTeam == raw.AwayTeam:
		return fmt.Errorf("%w: home and away team are both %q", ErrMalformedRecord, raw.HomeTeam)
	case raw.Date == "":
		return fmt.Errorf("%w: missing date for %s vs %s", ErrMalformedRecord, raw.HomeTeam, raw.AwayTeam)
	case raw.Competition == "":
		return fmt.Errorf("%w: missing competition for %s vs %s", ErrMalformedRecord, raw.HomeTeam, raw.AwayTeam)
	}
	return nil
}

// BuildRecord validates raw, attaches the canonical timestamp and classifies it
// against now. Records whose date text cannot be parsed keep a zero timestamp.
func BuildRecord(raw RawRecord, normalizer match.DateNormalizer, now time.Time) (match.Record, error) {
	if err := Validate(raw); err != nil {
		return match.Record{}, err
	}

	record := match.Record{
		Competition:  raw.Competition,
		HomeTeam:     raw.HomeTeam,
		AwayTeam:     raw.AwayTeam,
		HomeScore:    raw.HomeScore,
		AwayScore:    raw.AwayScore,
		Venue:        raw.Venue,
		Referee:      raw.Referee,
		RawDate:      raw.Date,
		Time:         raw.Time,
		Broadcasting: raw.Broadcasting,
		ScrapedAt:    now,
	}
	if ts, ok := normalizer.Parse(raw.Date, raw.Time); ok {
		record.CanonicalTimestamp = ts
	}
	record.IsFixture = match.Classify(record, now)
	return record, nil
}
