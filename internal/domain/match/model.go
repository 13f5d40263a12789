package match

import (
	"strings"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/livescore"
)

// Record is one fixture or result entry from the listing.
type Record struct {
	Competition        string
	HomeTeam           string
	AwayTeam           string
	HomeScore          string
	AwayScore          string
	Venue              string
	Referee            string
	RawDate            string
	Time               string
	Broadcasting       string
	CanonicalTimestamp time.Time
	IsFixture          bool
	ScrapedAt          time.Time
}

// Key is the natural identity of a Record.
type Key struct {
	HomeTeam    string
	AwayTeam    string
	RawDate     string
	Competition string
}

func (r Record) Key() Key {
	return Key{
		HomeTeam:    r.HomeTeam,
		AwayTeam:    r.AwayTeam,
		RawDate:     r.RawDate,
		Competition: r.Competition,
	}
}

func (r Record) HasScores() bool {
	return strings.TrimSpace(r.HomeScore) != "" && strings.TrimSpace(r.AwayScore) != ""
}

// LiveKey is the key live updates use for the same fixture.
func (r Record) LiveKey() string {
	return livescore.MatchKey(r.HomeTeam, r.AwayTeam)
}

// Filter narrows ListMatches. Zero values mean "no constraint".
type Filter struct {
	IsFixture   *bool
	Competition string
	StartDate   *time.Time
	EndDate     *time.Time
	Limit       int
}

// Matches applies the filter to one record.
func (f Filter) Matches(r Record) bool {
	if f.IsFixture != nil && r.IsFixture != *f.IsFixture {
		return false
	}
	if c := strings.ToLower(strings.TrimSpace(f.Competition)); c != "" {
		if !strings.Contains(strings.ToLower(r.Competition), c) {
			return false
		}
	}
	if f.StartDate != nil && r.CanonicalTimestamp.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && r.CanonicalTimestamp.After(*f.EndDate) {
		return false
	}
	return true
}

type Stats struct {
	Total        int
	Fixtures     int
	Results      int
	Competitions int
	LastUpdated  *time.Time
}
