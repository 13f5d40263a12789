package httpapi

import (
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/livescore"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
	"github.com/riskibarqy/gaa-fixtures/internal/usecase"
)

type matchDTO struct {
	Competition        string  `json:"competition"`
	HomeTeam           string  `json:"homeTeam"`
	AwayTeam           string  `json:"awayTeam"`
	HomeScore          *string `json:"homeScore"`
	AwayScore          *string `json:"awayScore"`
	Venue              string  `json:"venue"`
	Referee            string  `json:"referee"`
	Date               string  `json:"date"`
	Time               string  `json:"time"`
	Broadcasting       string  `json:"broadcasting"`
	IsFixture          bool    `json:"isFixture"`
	CanonicalTimestamp *string `json:"canonicalTimestamp"`
	ScrapedAt          *string `json:"scrapedAt"`
}

type matchListDTO struct {
	Matches   []matchDTO `json:"matches"`
	Count     int        `json:"count"`
	Source    string     `json:"source"`
	Stale     bool       `json:"stale"`
	LastFetch *string    `json:"lastFetch"`
}

type matchStatsDTO struct {
	Total        int     `json:"total"`
	Fixtures     int     `json:"fixtures"`
	Results      int     `json:"results"`
	Competitions int     `json:"competitions"`
	LastUpdated  *string `json:"lastUpdated"`
}

type fixtureWithScoreDTO struct {
	matchDTO
	Live *liveSnapshotDTO `json:"live"`
}

type liveSnapshotDTO struct {
	MatchKey  string `json:"match_key"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore string `json:"home_score"`
	AwayScore string `json:"away_score"`
	Minute    *int   `json:"minute"`
	IsFinal   bool   `json:"is_final"`
	UpdatedAt string `json:"updated_at"`
}

type liveUpdateDTO struct {
	MatchKey  string `json:"match_key"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore string `json:"home_score"`
	AwayScore string `json:"away_score"`
	Minute    *int   `json:"minute"`
	IsFinal   bool   `json:"is_final"`
	Timestamp string `json:"timestamp"`
}

type liveWithUpdatesDTO struct {
	liveSnapshotDTO
	Updates []liveUpdateDTO `json:"updates"`
}

type crawlSessionDTO struct {
	ID         string  `json:"id"`
	State      string  `json:"state"`
	StopReason string  `json:"stopReason,omitempty"`
	Error      string  `json:"error,omitempty"`
	Cycles     int     `json:"cycles"`
	Snapshots  int     `json:"snapshots"`
	Skipped    int     `json:"skipped"`
	Records    int     `json:"records"`
	StartedAt  string  `json:"startedAt"`
	FinishedAt *string `json:"finishedAt"`
}

type crawlResultDTO struct {
	Matches        []matchDTO       `json:"matches"`
	Count          int              `json:"count"`
	Fresh          bool             `json:"fresh"`
	Stale          bool             `json:"stale"`
	RateLimited    bool             `json:"rateLimited"`
	InProgress     bool             `json:"inProgress"`
	LastFetch      *string          `json:"lastFetch"`
	NextEligibleAt *string          `json:"nextEligibleAt"`
	Session        *crawlSessionDTO `json:"session,omitempty"`
	StoreError     string           `json:"storeError,omitempty"`
	Error          string           `json:"error,omitempty"`
}

type scrapeStatusDTO struct {
	LastFetch      *string          `json:"lastFetch"`
	LastSuccess    *string          `json:"lastSuccess"`
	NextEligibleAt *string          `json:"nextEligibleAt"`
	InFlight       bool             `json:"inFlight"`
	CachedRecords  int              `json:"cachedRecords"`
	LastSession    *crawlSessionDTO `json:"lastSession"`
}

type liveUpdateRequest struct {
	MatchKey  string `json:"match_key" validate:"max=200"`
	HomeTeam  string `json:"home_team" validate:"required_without=MatchKey,max=100"`
	AwayTeam  string `json:"away_team" validate:"required_without=MatchKey,max=100"`
	HomeScore string `json:"home_score" validate:"max=20"`
	AwayScore string `json:"away_score" validate:"max=20"`
	Minute    *int   `json:"minute" validate:"omitempty,min=0,max=200"`
	IsFinal   bool   `json:"is_final"`
	Timestamp string `json:"timestamp" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type liveUpdatesRequest struct {
	Updates []liveUpdateRequest `json:"updates" validate:"required,min=1,max=500,dive"`
}

type listMatchesRequest struct {
	IsFixture   string `validate:"omitempty,oneof=true false 1 0"`
	Competition string `validate:"max=200"`
	StartDate   string `validate:"max=40"`
	EndDate     string `validate:"max=40"`
	Limit       string `validate:"omitempty,number"`
}

func matchToDTO(r match.Record) matchDTO {
	return matchDTO{
		Competition:        r.Competition,
		HomeTeam:           r.HomeTeam,
		AwayTeam:           r.AwayTeam,
		HomeScore:          optionalString(r.HomeScore),
		AwayScore:          optionalString(r.AwayScore),
		Venue:              r.Venue,
		Referee:            r.Referee,
		Date:               r.RawDate,
		Time:               r.Time,
		Broadcasting:       r.Broadcasting,
		IsFixture:          r.IsFixture,
		CanonicalTimestamp: formatTime(r.CanonicalTimestamp),
		ScrapedAt:          formatTime(r.ScrapedAt),
	}
}

func matchesToDTO(records []match.Record) []matchDTO {
	out := make([]matchDTO, 0, len(records))
	for _, r := range records {
		out = append(out, matchToDTO(r))
	}
	return out
}

func statsToDTO(stats match.Stats) matchStatsDTO {
	out := matchStatsDTO{
		Total:        stats.Total,
		Fixtures:     stats.Fixtures,
		Results:      stats.Results,
		Competitions: stats.Competitions,
	}
	if stats.LastUpdated != nil {
		out.LastUpdated = formatTime(*stats.LastUpdated)
	}
	return out
}

func snapshotToDTO(s livescore.Snapshot) liveSnapshotDTO {
	return liveSnapshotDTO{
		MatchKey:  s.MatchKey,
		HomeTeam:  s.HomeTeam,
		AwayTeam:  s.AwayTeam,
		HomeScore: s.HomeScore,
		AwayScore: s.AwayScore,
		Minute:    s.Minute,
		IsFinal:   s.IsFinal,
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func eventToDTO(e livescore.Event) liveUpdateDTO {
	return liveUpdateDTO{
		MatchKey:  e.MatchKey,
		HomeTeam:  e.HomeTeam,
		AwayTeam:  e.AwayTeam,
		HomeScore: e.HomeScore,
		AwayScore: e.AwayScore,
		Minute:    e.Minute,
		IsFinal:   e.IsFinal,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
	}
}

func fixturesToDTO(items []usecase.FixtureWithScore) []fixtureWithScoreDTO {
	out := make([]fixtureWithScoreDTO, 0, len(items))
	for _, item := range items {
		dto := fixtureWithScoreDTO{matchDTO: matchToDTO(item.Record)}
		if item.Live != nil {
			live := snapshotToDTO(*item.Live)
			dto.Live = &live
		}
		out = append(out, dto)
	}
	return out
}

func sessionToDTO(s *crawl.Summary) *crawlSessionDTO {
	if s == nil {
		return nil
	}
	return &crawlSessionDTO{
		ID:         s.ID,
		State:      string(s.State),
		StopReason: string(s.StopReason),
		Error:      s.Error,
		Cycles:     s.Cycles,
		Snapshots:  s.Snapshots,
		Skipped:    s.Skipped,
		Records:    s.Records,
		StartedAt:  s.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: formatTime(s.FinishedAt),
	}
}

func crawlResultToDTO(result usecase.CrawlResult) crawlResultDTO {
	return crawlResultDTO{
		Matches:        matchesToDTO(result.Records),
		Count:          len(result.Records),
		Fresh:          result.Fresh,
		Stale:          !result.Fresh,
		LastFetch:      formatTime(result.LastFetch),
		NextEligibleAt: formatTime(result.NextEligibleAt),
		Session:        sessionToDTO(result.Session),
		StoreError:     result.StoreError,
	}
}

func statusToDTO(status usecase.ScrapeStatus) scrapeStatusDTO {
	return scrapeStatusDTO{
		LastFetch:      formatTime(status.LastFetch),
		LastSuccess:    formatTime(status.LastSuccess),
		NextEligibleAt: formatTime(status.NextEligibleAt),
		InFlight:       status.InFlight,
		CachedRecords:  status.CachedRecords,
		LastSession:    sessionToDTO(status.LastSession),
	}
}

func (r liveUpdateRequest) toEvent() livescore.Event {
	event := livescore.Event{
		MatchKey:  r.MatchKey,
		Minute:    r.Minute,
		HomeTeam:  r.HomeTeam,
		AwayTeam:  r.AwayTeam,
		HomeScore: r.HomeScore,
		AwayScore: r.AwayScore,
		IsFinal:   r.IsFinal,
	}
	if ts, err := time.Parse(time.RFC3339, r.Timestamp); err == nil {
		event.Timestamp = ts
	}
	return event
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	out := t.UTC().Format(time.RFC3339)
	return &out
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
