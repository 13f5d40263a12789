package match

import "sort"

// Apply filters records in memory and returns them in listing order.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, record := range records {
		if f.Matches(record) {
			out = append(out, record)
		}
	}
	Sort(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// Sort orders by canonical timestamp, then competition and home team.
// Records without a timestamp come first.
func Sort(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.CanonicalTimestamp.Equal(b.CanonicalTimestamp) {
			return a.CanonicalTimestamp.Before(b.CanonicalTimestamp)
		}
		if a.Competition != b.Competition {
			return a.Competition < b.Competition
		}
		return a.HomeTeam < b.HomeTeam
	})
}

func ComputeStats(records []Record) Stats {
	stats := Stats{Total: len(records)}
	competitions := make(map[string]struct{}, len(records))
	for _, record := range records {
		if record.IsFixture {
			stats.Fixtures++
		} else {
			stats.Results++
		}
		competitions[record.Competition] = struct{}{}
		if !record.ScrapedAt.IsZero() && (stats.LastUpdated == nil || record.ScrapedAt.After(*stats.LastUpdated)) {
			scrapedAt := record.ScrapedAt
			stats.LastUpdated = &scrapedAt
		}
	}
	stats.Competitions = len(competitions)
	return stats
}
