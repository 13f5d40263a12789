package livescore

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Merger reduces live events into one Snapshot per match key. Updates to the
// same key are serialized; different keys only share the table lock briefly.
type Merger struct {
	mu      sync.RWMutex
	entries map[string]*mergeEntry
	now     func() time.Time
}

type mergeEntry struct {
	mu       sync.Mutex
	snapshot Snapshot
	present  bool
	seen     map[string]struct{}
}

func NewMerger() *Merger {
	return &Merger{
		entries: make(map[string]*mergeEntry),
		now:     time.Now,
	}
}

// SetClock overrides the clock used by AllRecent.
func (m *Merger) SetClock(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

// Ingest applies event and reports whether it became the current snapshot.
func (m *Merger) Ingest(event Event) bool {
	key := strings.TrimSpace(event.MatchKey)
	if key == "" {
		return false
	}
	event.MatchKey = key

	entry := m.entry(key)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.present && !Supersedes(entry.snapshot, event) {
		return false
	}
	entry.snapshot = SnapshotFromEvent(event)
	entry.present = true
	return true
}

// Observe records the event's content and reports whether it is new for its
// match. Polling the same post again yields false.
func (m *Merger) Observe(event Event) bool {
	key := strings.TrimSpace(event.MatchKey)
	if key == "" {
		return false
	}

	entry := m.entry(key)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	fingerprint := event.Fingerprint()
	if _, ok := entry.seen[fingerprint]; ok {
		return false
	}
	if entry.seen == nil {
		entry.seen = make(map[string]struct{})
	}
	entry.seen[fingerprint] = struct{}{}
	return true
}

// Restore seeds snapshots loaded from storage. Existing newer state is kept.
func (m *Merger) Restore(snapshots []Snapshot) {
	for _, snapshot := range snapshots {
		event := Event{
			MatchKey:  snapshot.MatchKey,
			Minute:    snapshot.Minute,
			HomeTeam:  snapshot.HomeTeam,
			AwayTeam:  snapshot.AwayTeam,
			HomeScore: snapshot.HomeScore,
			AwayScore: snapshot.AwayScore,
			IsFinal:   snapshot.IsFinal,
			Timestamp: snapshot.UpdatedAt,
		}
		m.Observe(event)
		m.Ingest(event)
	}
}

func (m *Merger) Latest(matchKey string) (Snapshot, bool) {
	m.mu.RLock()
	entry, ok := m.entries[strings.TrimSpace(matchKey)]
	m.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if !entry.present {
		return Snapshot{}, false
	}
	out := entry.snapshot
	out.Minute = cloneMinute(out.Minute)
	return out, true
}

// AllRecent returns snapshots updated within window, newest first.
func (m *Merger) AllRecent(window time.Duration) []Snapshot {
	cutoff := m.now().Add(-window)

	m.mu.RLock()
	entries := make([]*mergeEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		entries = append(entries, entry)
	}
	m.mu.RUnlock()

	out := make([]Snapshot, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		if entry.present && !entry.snapshot.UpdatedAt.Before(cutoff) {
			item := entry.snapshot
			item.Minute = cloneMinute(item.Minute)
			out = append(out, item)
		}
		entry.mu.Unlock()
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].MatchKey < out[j].MatchKey
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (m *Merger) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Merger) entry(key string) *mergeEntry {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		return entry
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok = m.entries[key]; ok {
		return entry
	}
	entry = &mergeEntry{}
	m.entries[key] = entry
	return entry
}

// Supersedes reports whether incoming should replace current. A final event
// beats a non-final snapshot; a non-final event never replaces a final one.
// Otherwise the greater (minute, timestamp) key wins, ties included.
func Supersedes(current Snapshot, incoming Event) bool {
	if current.IsFinal && !incoming.IsFinal {
		return false
	}
	if incoming.IsFinal && !current.IsFinal {
		return true
	}
	return CompareKey(incoming.Minute, incoming.Timestamp, current.Minute, current.UpdatedAt) >= 0
}

// CompareKey orders (minute, timestamp) pairs. An absent minute sorts below
// every minute.
func CompareKey(aMinute *int, aTS time.Time, bMinute *int, bTS time.Time) int {
	am, bm := minuteRank(aMinute), minuteRank(bMinute)
	switch {
	case am < bm:
		return -1
	case am > bm:
		return 1
	case aTS.Before(bTS):
		return -1
	case aTS.After(bTS):
		return 1
	}
	return 0
}

func minuteRank(v *int) int {
	if v == nil {
		return -1
	}
	return *v
}
