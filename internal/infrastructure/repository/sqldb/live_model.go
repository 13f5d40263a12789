package sqldb

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/livescore"
)

type liveSnapshotTableModel struct {
	MatchKey  string        `db:"match_key"`
	HomeTeam  string        `db:"home_team"`
	AwayTeam  string        `db:"away_team"`
	HomeScore string        `db:"home_score"`
	AwayScore string        `db:"away_score"`
	Minute    sql.NullInt64 `db:"minute"`
	IsFinal   bool          `db:"is_final"`
	UpdatedAt int64         `db:"updated_at"`
}

type liveUpdateTableModel struct {
	MatchKey  string        `db:"match_key"`
	HomeTeam  string        `db:"home_team"`
	AwayTeam  string        `db:"away_team"`
	HomeScore string        `db:"home_score"`
	AwayScore string        `db:"away_score"`
	Minute    sql.NullInt64 `db:"minute"`
	IsFinal   bool          `db:"is_final"`
	TS        int64         `db:"ts"`
	CreatedAt int64         `db:"created_at"`
}

func liveSnapshotModelFromDomain(s livescore.Snapshot) liveSnapshotTableModel {
	return liveSnapshotTableModel{
		MatchKey:  s.MatchKey,
		HomeTeam:  s.HomeTeam,
		AwayTeam:  s.AwayTeam,
		HomeScore: s.HomeScore,
		AwayScore: s.AwayScore,
		Minute:    nullMinute(s.Minute),
		IsFinal:   s.IsFinal,
		UpdatedAt: toMillis(s.UpdatedAt),
	}
}

func (m liveSnapshotTableModel) toDomain() livescore.Snapshot {
	return livescore.Snapshot{
		MatchKey:  m.MatchKey,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
		Minute:    fromNullMinute(m.Minute),
		IsFinal:   m.IsFinal,
		UpdatedAt: fromMillis(m.UpdatedAt),
	}
}

func liveUpdateModelFromDomain(e livescore.Event, now time.Time) liveUpdateTableModel {
	return liveUpdateTableModel{
		MatchKey:  e.MatchKey,
		HomeTeam:  e.HomeTeam,
		AwayTeam:  e.AwayTeam,
		HomeScore: e.HomeScore,
		AwayScore: e.AwayScore,
		Minute:    nullMinute(e.Minute),
		IsFinal:   e.IsFinal,
		TS:        toMillis(e.Timestamp),
		CreatedAt: toMillis(now),
	}
}

func (m liveUpdateTableModel) toDomain() livescore.Event {
	return livescore.Event{
		MatchKey:  m.MatchKey,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
		Minute:    fromNullMinute(m.Minute),
		IsFinal:   m.IsFinal,
		Timestamp: fromMillis(m.TS),
	}
}
