package match

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FallbackMonth is used when the month token is not recognised.
const FallbackMonth = time.June

const (
	defaultHour   = 12
	defaultMinute = 0
)

var (
	dateRegex = regexp.MustCompile(`(?i)(?:([a-z]+)\s+)?(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)`)
	timeRegex = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// DateNormalizer turns listing date/time text into timestamps. The source never
// prints a year, so Year is assumed for every record.
type DateNormalizer struct {
	Year     int
	Location *time.Location
}

func NewDateNormalizer(year int, loc *time.Location) DateNormalizer {
	if loc == nil {
		loc = time.UTC
	}
	return DateNormalizer{Year: year, Location: loc}
}

// Parse returns the canonical timestamp for rawDate/rawTime. ok is false when
// rawDate carries no day-month pair at all, or names a day the month lacks.
func (n DateNormalizer) Parse(rawDate, rawTime string) (time.Time, bool) {
	loc := n.Location
	if loc == nil {
		loc = time.UTC
	}

	m := dateRegex.FindStringSubmatch(strings.TrimSpace(rawDate))
	if m == nil {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month := ParseMonth(m[3])
	hour, minute := ParseClock(rawTime)

	ts := time.Date(n.Year, month, day, hour, minute, 0, 0, loc)
	if ts.Month() != month {
		return time.Time{}, false
	}
	return ts, true
}

// ParseMonth accepts full or abbreviated English month names.
func ParseMonth(token string) time.Month {
	if month, ok := monthsByName[strings.ToLower(strings.TrimSpace(token))]; ok {
		return month
	}
	return FallbackMonth
}

// ParseClock extracts H:MM, defaulting to midday.
func ParseClock(raw string) (int, int) {
	m := timeRegex.FindStringSubmatch(raw)
	if m == nil {
		return defaultHour, defaultMinute
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return defaultHour, defaultMinute
	}
	return hour, minute
}

// HasClock reports whether raw contains an H:MM kickoff time.
func HasClock(raw string) bool {
	return timeRegex.MatchString(raw)
}
