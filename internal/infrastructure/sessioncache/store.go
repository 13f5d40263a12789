package sessioncache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
)

const (
	MatchesFile = "matches.json"
	HistoryFile = "scrape-history.json"
)

// Store keeps the last crawl output and crawl history as JSON files in a
// data directory. Reads are served from memory after the first load and
// files are replaced atomically.
type Store struct {
	dir    string
	logger *logging.Logger

	writeMu sync.Mutex
	entry   atomic.Pointer[crawl.CacheEntry]
	history atomic.Pointer[crawl.History]
}

func New(dir string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if dir == "" {
		return nil, fmt.Errorf("session cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session cache dir %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) LoadEntry(ctx context.Context) (crawl.CacheEntry, bool, error) {
	if cached := s.entry.Load(); cached != nil {
		return cloneEntry(*cached), true, nil
	}

	var file entryFile
	ok, err := s.readJSON(MatchesFile, &file)
	if err != nil || !ok {
		return crawl.CacheEntry{}, false, err
	}

	entry := file.toDomain()
	s.entry.Store(&entry)
	s.logger.DebugContext(ctx, "session cache loaded", "records", len(entry.Records), "last_fetch", entry.LastFetch)
	return cloneEntry(entry), true, nil
}

func (s *Store) SaveEntry(ctx context.Context, entry crawl.CacheEntry) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.writeJSON(MatchesFile, entryFileFromDomain(entry)); err != nil {
		return err
	}
	stored := cloneEntry(entry)
	s.entry.Store(&stored)
	s.logger.DebugContext(ctx, "session cache saved", "records", len(entry.Records))
	return nil
}

func (s *Store) LoadHistory(_ context.Context) (crawl.History, bool, error) {
	if cached := s.history.Load(); cached != nil {
		return *cached, true, nil
	}

	var file historyFile
	ok, err := s.readJSON(HistoryFile, &file)
	if err != nil || !ok {
		return crawl.History{}, false, err
	}

	history := file.toDomain()
	s.history.Store(&history)
	return history, true, nil
}

func (s *Store) SaveHistory(_ context.Context, history crawl.History) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.writeJSON(HistoryFile, historyFileFromDomain(history)); err != nil {
		return err
	}
	s.history.Store(&history)
	return nil
}

// Reset drops the in-memory copies so the next load reads the files again.
func (s *Store) Reset() {
	s.entry.Store(nil)
	s.history.Store(nil)
}

func (s *Store) readJSON(name string, dst any) (bool, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := sonic.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) writeJSON(name string, value any) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(value); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(buf.B); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func cloneEntry(entry crawl.CacheEntry) crawl.CacheEntry {
	return crawl.CacheEntry{
		Records:   append(make([]match.Record, 0, len(entry.Records)), entry.Records...),
		LastFetch: entry.LastFetch,
	}
}

func msToTime(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func timeToMs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
