package sessioncache

import (
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
)

type recordJSON struct {
	Competition        string `json:"competition"`
	HomeTeam           string `json:"homeTeam"`
	AwayTeam           string `json:"awayTeam"`
	HomeScore          string `json:"homeScore,omitempty"`
	AwayScore          string `json:"awayScore,omitempty"`
	Venue              string `json:"venue,omitempty"`
	Referee            string `json:"referee,omitempty"`
	Date               string `json:"date"`
	Time               string `json:"time,omitempty"`
	Broadcasting       string `json:"broadcasting,omitempty"`
	IsFixture          bool   `json:"isFixture"`
	CanonicalTimestamp int64  `json:"canonicalTimestamp,omitempty"`
	ScrapedAt          string `json:"scrapedAt,omitempty"`
}

// entryFile also reads the older "matches" key written before records were
// renamed.
type entryFile struct {
	Records   []recordJSON `json:"records"`
	Matches   []recordJSON `json:"matches,omitempty"`
	LastFetch int64        `json:"lastFetch"`
}

type historyFile struct {
	LastScrapeTime int64  `json:"lastScrapeTime"`
	LastScrapeDate string `json:"lastScrapeDate"`
}

func entryFileFromDomain(entry crawl.CacheEntry) entryFile {
	records := make([]recordJSON, 0, len(entry.Records))
	for _, r := range entry.Records {
		item := recordJSON{
			Competition:        r.Competition,
			HomeTeam:           r.HomeTeam,
			AwayTeam:           r.AwayTeam,
			HomeScore:          r.HomeScore,
			AwayScore:          r.AwayScore,
			Venue:              r.Venue,
			Referee:            r.Referee,
			Date:               r.RawDate,
			Time:               r.Time,
			Broadcasting:       r.Broadcasting,
			IsFixture:          r.IsFixture,
			CanonicalTimestamp: timeToMs(r.CanonicalTimestamp),
		}
		if !r.ScrapedAt.IsZero() {
			item.ScrapedAt = r.ScrapedAt.UTC().Format(time.RFC3339Nano)
		}
		records = append(records, item)
	}
	return entryFile{Records: records, LastFetch: timeToMs(entry.LastFetch)}
}

func (f entryFile) toDomain() crawl.CacheEntry {
	items := f.Records
	if len(items) == 0 {
		items = f.Matches
	}

	records := make([]match.Record, 0, len(items))
	for _, item := range items {
		record := match.Record{
			Competition:        item.Competition,
			HomeTeam:           item.HomeTeam,
			AwayTeam:           item.AwayTeam,
			HomeScore:          item.HomeScore,
			AwayScore:          item.AwayScore,
			Venue:              item.Venue,
			Referee:            item.Referee,
			RawDate:            item.Date,
			Time:               item.Time,
			Broadcasting:       item.Broadcasting,
			IsFixture:          item.IsFixture,
			CanonicalTimestamp: msToTime(item.CanonicalTimestamp),
		}
		if ts, err := time.Parse(time.RFC3339Nano, item.ScrapedAt); err == nil {
			record.ScrapedAt = ts.UTC()
		}
		records = append(records, record)
	}
	return crawl.CacheEntry{Records: records, LastFetch: msToTime(f.LastFetch)}
}

func historyFileFromDomain(h crawl.History) historyFile {
	out := historyFile{LastScrapeTime: timeToMs(h.LastSuccess)}
	if !h.LastSuccess.IsZero() {
		out.LastScrapeDate = h.LastSuccess.UTC().Format(time.RFC3339Nano)
	}
	return out
}

func (f historyFile) toDomain() crawl.History {
	return crawl.History{LastSuccess: msToTime(f.LastScrapeTime)}
}
