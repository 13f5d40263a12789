package sqldb

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
)

type matchTableModel struct {
	HomeTeam     string        `db:"home_team"`
	AwayTeam     string        `db:"away_team"`
	RawDate      string        `db:"raw_date"`
	Competition  string        `db:"competition"`
	HomeScore    string        `db:"home_score"`
	AwayScore    string        `db:"away_score"`
	Venue        string        `db:"venue"`
	Referee      string        `db:"referee"`
	MatchTime    string        `db:"match_time"`
	Broadcasting string        `db:"broadcasting"`
	CanonicalTS  sql.NullInt64 `db:"canonical_ts"`
	IsFixture    bool          `db:"is_fixture"`
	ScrapedAt    int64         `db:"scraped_at"`
	CreatedAt    int64         `db:"created_at"`
	UpdatedAt    int64         `db:"updated_at"`
}

type matchStatsModel struct {
	Total        int64         `db:"total"`
	Fixtures     int64         `db:"fixtures"`
	Results      int64         `db:"results"`
	Competitions int64         `db:"competitions"`
	LastScraped  sql.NullInt64 `db:"last_scraped"`
}

func matchModelFromDomain(r match.Record, now time.Time) matchTableModel {
	return matchTableModel{
		HomeTeam:     r.HomeTeam,
		AwayTeam:     r.AwayTeam,
		RawDate:      r.RawDate,
		Competition:  r.Competition,
		HomeScore:    r.HomeScore,
		AwayScore:    r.AwayScore,
		Venue:        r.Venue,
		Referee:      r.Referee,
		MatchTime:    r.Time,
		Broadcasting: r.Broadcasting,
		CanonicalTS:  nullMillis(r.CanonicalTimestamp),
		IsFixture:    r.IsFixture,
		ScrapedAt:    toMillis(r.ScrapedAt),
		CreatedAt:    toMillis(now),
		UpdatedAt:    toMillis(now),
	}
}

func (m matchTableModel) toDomain() match.Record {
	return match.Record{
		Competition:        m.Competition,
		HomeTeam:           m.HomeTeam,
		AwayTeam:           m.AwayTeam,
		HomeScore:          m.HomeScore,
		AwayScore:          m.AwayScore,
		Venue:              m.Venue,
		Referee:            m.Referee,
		RawDate:            m.RawDate,
		Time:               m.MatchTime,
		Broadcasting:       m.Broadcasting,
		CanonicalTimestamp: fromNullMillis(m.CanonicalTS),
		IsFixture:          m.IsFixture,
		ScrapedAt:          fromMillis(m.ScrapedAt),
	}
}

func (m matchStatsModel) toDomain() match.Stats {
	stats := match.Stats{
		Total:        int(m.Total),
		Fixtures:     int(m.Fixtures),
		Results:      int(m.Results),
		Competitions: int(m.Competitions),
	}
	if m.LastScraped.Valid {
		last := fromMillis(m.LastScraped.Int64)
		stats.LastUpdated = &last
	}
	return stats
}
