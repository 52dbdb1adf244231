// Package cache persists dataset snapshots as dated CSV files inside one
// project-local directory. One file per key per calendar day, named
// combined_<key>_<YYYYMMDD>.csv. Snapshots are immutable once written and
// superseded by the next day's file; retention keeps a bounded window of
// recent days.
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
)

const filePrefix = "combined_"

// Store reads and writes snapshot files under one directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) path(key, tag string) string {
	return filepath.Join(s.dir, filePrefix+key+"_"+tag+".csv")
}

// Write persists a snapshot atomically: the CSV is written to a temp file in
// the same directory and renamed into place, so a crash mid-write never
// leaves a file that a later read would accept. An already-present snapshot
// for the same key and tag is left untouched (snapshots are immutable).
func (s *Store) Write(snap domain.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("refusing to cache: %w", err)
	}

	final := s.path(snap.Key, snap.Tag)
	if _, err := os.Stat(final); err == nil {
		s.logger.Debug("snapshot already cached, not overwriting", "key", snap.Key, "tag", snap.Tag)
		return nil
	}

	tmp, err := os.CreateTemp(s.dir, filePrefix+snap.Key+"_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encodeSnapshot(tmp, snap); err != nil {
		tmp.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	s.logger.Info("snapshot cached", "key", snap.Key, "tag", snap.Tag, "records", len(snap.Records))
	return nil
}

// ReadExact loads the snapshot for one key and day tag. A missing file, an
// unreadable file, or a file failing the validity check all report absent.
func (s *Store) ReadExact(key, tag string) (domain.Snapshot, bool) {
	return s.readFile(s.path(key, tag), key, tag)
}

// ReadLatest loads the most recent snapshot for a key, ordering candidates
// by their date tag (YYYYMMDD sorts lexicographically), not by filesystem
// metadata. Invalid candidates are skipped in favor of older valid ones.
func (s *Store) ReadLatest(key string) (domain.Snapshot, bool) {
	tags := s.tagsOnDisk(key)
	sort.Sort(sort.Reverse(sort.StringSlice(tags)))

	for _, tag := range tags {
		if snap, ok := s.readFile(s.path(key, tag), key, tag); ok {
			return snap, true
		}
	}
	return domain.Snapshot{}, false
}

// PurgeOlderThan deletes snapshots for a key whose tag falls outside the
// retention window of keepDays calendar days ending today. Best-effort:
// deletion failures are logged and skipped, and the tag named by keepTag
// (the snapshot currently in use) is never deleted.
func (s *Store) PurgeOlderThan(key string, keepDays int, keepTag string) {
	if keepDays < 1 {
		keepDays = 1
	}
	cutoff, err := time.Parse("20060102", domain.TodayTag())
	if err != nil {
		return
	}
	oldest := cutoff.AddDate(0, 0, -(keepDays - 1)).Format("20060102")

	for _, tag := range s.tagsOnDisk(key) {
		if tag >= oldest || tag == keepTag {
			continue
		}
		path := s.path(key, tag)
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to purge old snapshot", "path", path, "error", err)
			continue
		}
		s.logger.Debug("purged old snapshot", "key", key, "tag", tag)
	}
}

func (s *Store) readFile(path, key, tag string) (domain.Snapshot, bool) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Snapshot{}, false
	}
	defer f.Close()

	snap, err := decodeSnapshot(f, key, tag)
	if err != nil {
		s.logger.Warn("cached snapshot unreadable, treating as absent", "path", path, "error", err)
		return domain.Snapshot{}, false
	}
	if err := snap.Validate(); err != nil {
		s.logger.Warn("cached snapshot invalid, treating as absent", "path", path, "error", err)
		return domain.Snapshot{}, false
	}
	return snap, true
}

// tagsOnDisk lists the date tags of all snapshot files for a key.
func (s *Store) tagsOnDisk(key string) []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	prefix := filePrefix + key + "_"
	var tags []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		tag := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".csv")
		if isDayTag(tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}

func isDayTag(tag string) bool {
	if len(tag) != 8 {
		return false
	}
	for _, r := range tag {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
