package livescore

import (
	"strconv"
	"strings"
	"time"
)

// RecentWindow is how long a snapshot counts as live after its last update.
const RecentWindow = 2 * time.Hour

// Event is one timestamped in-match state change.
type Event struct {
	MatchKey  string
	Minute    *int
	HomeTeam  string
	AwayTeam  string
	HomeScore string
	AwayScore string
	IsFinal   bool
	Timestamp time.Time
}

// Fingerprint identifies what an event says, ignoring when it was read.
func (e Event) Fingerprint() string {
	minute := "-"
	if e.Minute != nil {
		minute = strconv.Itoa(*e.Minute)
	}
	return strings.Join([]string{
		strings.TrimSpace(e.MatchKey),
		minute,
		e.HomeScore,
		e.AwayScore,
		strconv.FormatBool(e.IsFinal),
	}, "|")
}

// Snapshot is the latest accepted Event for a match key.
type Snapshot struct {
	MatchKey  string
	Minute    *int
	HomeTeam  string
	AwayTeam  string
	HomeScore string
	AwayScore string
	IsFinal   bool
	UpdatedAt time.Time
}

type MatchWithUpdates struct {
	Snapshot Snapshot
	Updates  []Event
}

func SnapshotFromEvent(e Event) Snapshot {
	return Snapshot{
		MatchKey:  e.MatchKey,
		Minute:    cloneMinute(e.Minute),
		HomeTeam:  e.HomeTeam,
		AwayTeam:  e.AwayTeam,
		HomeScore: e.HomeScore,
		AwayScore: e.AwayScore,
		IsFinal:   e.IsFinal,
		UpdatedAt: e.Timestamp,
	}
}

func Minute(v int) *int {
	return &v
}

func cloneMinute(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
