package livescore

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	minuteUpdateRegex = regexp.MustCompile(`(\d+)(?:\+(\d+))?\s+mins:\s+(.+?)\s+(\d+-\d+)\s+(.+?)\s+(\d+-\d+)`)
	finalUpdateRegex  = regexp.MustCompile(`(?i)(?:\bFT\b|\bfull[- ]time\b):?\s+(.+?)\s+(\d+-\d+)\s+(.+?)\s+(\d+-\d+)`)
	finalMarkerRegex  = regexp.MustCompile(`(?i)\bFT\b|\bfull[- ]time\b`)
)

// ParseUpdate reads a live-blog post such as "67 mins: Kilkenny 2-20 Galway 1-18"
// or "70+2 mins: ..." into an Event stamped with ts. Posts announcing full time
// without a minute are accepted as final events. ok is false for other text.
func ParseUpdate(text string, ts time.Time) (Event, bool) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return Event{}, false
	}
	isFinal := finalMarkerRegex.MatchString(text)

	if m := minuteUpdateRegex.FindStringSubmatch(text); m != nil {
		base, err := strconv.Atoi(m[1])
		if err != nil {
			return Event{}, false
		}
		extra := 0
		if m[2] != "" {
			extra, _ = strconv.Atoi(m[2])
		}
		return newEvent(m[3], m[4], m[5], m[6], Minute(base+extra), isFinal, ts), true
	}

	if m := finalUpdateRegex.FindStringSubmatch(text); m != nil {
		return newEvent(m[1], m[2], m[3], m[4], nil, true, ts), true
	}
	return Event{}, false
}

func newEvent(home, homeScore, away, awayScore string, minute *int, isFinal bool, ts time.Time) Event {
	home = strings.TrimSpace(home)
	away = strings.TrimSpace(away)
	return Event{
		MatchKey:  MatchKey(home, away),
		Minute:    minute,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: homeScore,
		AwayScore: awayScore,
		IsFinal:   isFinal,
		Timestamp: ts,
	}
}

func MatchKey(homeTeam, awayTeam string) string {
	return strings.TrimSpace(homeTeam) + " vs " + strings.TrimSpace(awayTeam)
}
