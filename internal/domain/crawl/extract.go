package crawl

import (
	"regexp"
	"strings"
)

var (
	scoreNoiseRegex         = regexp.MustCompile(`\d+[-–]\d+`)
	parenScoreNoiseRegex    = regexp.MustCompile(`\(\s*\)|\(\d+[-–]\d+\)`)
	edgeNoiseRegex          = regexp.MustCompile(`^[^\p{L}\p{N}]+|[^\p{L}\p{N}]+$`)
	whitespaceRegex         = regexp.MustCompile(`\s+`)
	scoreRegex              = regexp.MustCompile(`(\d+[-–]\d+)`)
	venuePrefixRegex        = regexp.MustCompile(`(?i)^venue:\s*`)
	refereePrefixRegex      = regexp.MustCompile(`(?i)^referee:\s*`)
	progressionPlaceholders = []string{
		"preliminary quarter-final winner",
		"quarter-final winner",
		"semi-final winner",
		"final winner",
		"winner of",
		"loser of",
	}
)

// RawRecord is one unvalidated candidate taken from a listing item.
type RawRecord struct {
	Competition  string
	HomeTeam     string
	AwayTeam     string
	HomeScore    string
	AwayScore    string
	Venue        string
	Referee      string
	Date         string
	Time         string
	Broadcasting string
}

// Extract turns a page snapshot into raw candidates, one per item. Missing
// sub-nodes become empty strings. Only a nil snapshot is an error.
func Extract(snapshot *PageSnapshot) ([]RawRecord, error) {
	if snapshot == nil {
		return nil, ErrExtractionUnavailable
	}

	out := make([]RawRecord, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		out = append(out, extractItem(item))
	}
	return out, nil
}

func extractItem(item ItemNode) RawRecord {
	home, away := teamNames(item)
	homeScore, awayScore := scores(item)

	timeText := collapse(item.UpcomingText)
	if timeText == "" {
		timeText = collapse(item.TimeText)
	}

	return RawRecord{
		Competition:  collapse(item.Competition),
		HomeTeam:     CleanTeamName(home),
		AwayTeam:     CleanTeamName(away),
		HomeScore:    homeScore,
		AwayScore:    awayScore,
		Venue:        venuePrefixRegex.ReplaceAllString(collapse(item.VenueText), ""),
		Referee:      refereePrefixRegex.ReplaceAllString(collapse(item.RefereeText), ""),
		Date:         collapse(item.DateText),
		Time:         timeText,
		Broadcasting: collapse(item.BroadcastText),
	}
}

func teamNames(item ItemNode) (string, string) {
	if len(item.TeamNames) >= 2 {
		home, away := collapse(item.TeamNames[0]), collapse(item.TeamNames[1])
		if home != "" && away != "" {
			return home, away
		}
	}

	if item.HomeTeam.Present && item.AwayTeam.Present {
		if item.HomeTeam.HasName && item.AwayTeam.HasName {
			return item.HomeTeam.Name, item.AwayTeam.Name
		}
		return item.HomeTeam.Text, item.AwayTeam.Text
	}

	if item.GenericHome.Present && item.GenericAway.Present {
		return item.GenericHome.Text, item.GenericAway.Text
	}
	return "", ""
}

func scores(item ItemNode) (string, string) {
	home := collapse(item.HomeScoreText)
	away := collapse(item.AwayScoreText)
	if home != "" && away != "" {
		return home, away
	}

	if home == "" {
		home = firstScore(item.HomeTeam, item.GenericHome)
	}
	if away == "" {
		away = firstScore(item.AwayTeam, item.GenericAway)
	}
	return home, away
}

func firstScore(nodes ...TeamNode) string {
	for _, node := range nodes {
		if !node.Present {
			continue
		}
		if m := scoreRegex.FindStringSubmatch(node.Text); m != nil {
			return m[1]
		}
	}
	return ""
}

// CleanTeamName strips embedded scores and edge punctuation from a team name.
// Progression placeholders such as "Semi-Final Winner" are kept verbatim.
func CleanTeamName(name string) string {
	name = collapse(name)
	if IsProgressionPlaceholder(name) {
		return name
	}
	name = parenScoreNoiseRegex.ReplaceAllString(name, "")
	name = scoreNoiseRegex.ReplaceAllString(name, "")
	name = parenScoreNoiseRegex.ReplaceAllString(name, "")
	name = edgeNoiseRegex.ReplaceAllString(name, "")
	return collapse(name)
}

// IsProgressionPlaceholder reports whether name stands in for a team decided
// by an earlier round.
func IsProgressionPlaceholder(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range progressionPlaceholders {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func collapse(value string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(value, " "))
}
