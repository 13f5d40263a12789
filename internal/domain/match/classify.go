package match

import (
	"strings"
	"time"
)

var finalTimeMarkers = []string{"ft", "full time", "full-time", "fulltime", "aet", "final score", "result"}

// Classify reports whether r is still to be played. Rules are checked in order:
// no scores, explicit kickoff time, timestamp after now.
func Classify(r Record, now time.Time) bool {
	if strings.TrimSpace(r.HomeScore) == "" && strings.TrimSpace(r.AwayScore) == "" {
		return true
	}
	if IsKickoffTime(r.Time) {
		return true
	}
	if !r.CanonicalTimestamp.IsZero() && r.CanonicalTimestamp.After(now) {
		return true
	}
	return false
}

// IsKickoffTime is true for "19:30" style text and false for final-time
// indicators such as "FT" or "Full Time".
func IsKickoffTime(raw string) bool {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return false
	}
	for _, marker := range finalTimeMarkers {
		if value == marker || strings.HasPrefix(value, marker+" ") || strings.HasPrefix(value, marker+":") {
			return false
		}
	}
	return HasClock(value)
}
