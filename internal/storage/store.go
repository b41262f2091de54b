// internal/storage/store.go
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"calorie-log/internal/logger"
	"calorie-log/internal/models"
)

const entriesFile = "entries.jsonl"

// Format check only: month 01-12 and day 01-31 by digit range, no calendar
// validity beyond that (Feb 31 passes).
var dateRE = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])$`)

var (
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
	ErrConflict    = errors.New("entry already exists for date")
	ErrNotFound    = errors.New("entry not found")
)

// Store owns the JSONL entry collection. Every mutation is a
// read-everything, modify, write-everything cycle under one mutex; the data
// volume (a few thousand entries at most) makes anything fancier pointless.
type Store struct {
	mu   sync.Mutex
	path string
	log  *logger.Logger
}

func NewStore(dataDir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	path := filepath.Join(dataDir, entriesFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return nil, fmt.Errorf("failed to create entries file: %w", err)
		}
	}
	return &Store{path: path, log: log}, nil
}

// Path is the on-disk location of the JSONL file, exposed so the HTTP layer
// can serve the raw feed directly.
func (s *Store) Path() string {
	return s.path
}

// Load reads the backing file, one JSON object per line. A line that fails
// to parse is dropped with a warning rather than aborting the whole load.
func (s *Store) Load() ([]*models.Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read entries file: %w", err)
	}

	var out []*models.Entry
	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e := &models.Entry{}
		dec := json.NewDecoder(strings.NewReader(line))
		dec.UseNumber()
		if err := dec.Decode(e); err != nil {
			if s.log != nil {
				s.log.Warn("skipping corrupt entry line", "line", i+1, "error", err)
			}
			continue
		}
		if e.MealsText == nil {
			e.MealsText = map[string]string{}
		}
		if e.Estimates == nil {
			e.Estimates = map[string]any{}
		}
		out = append(out, e)
	}
	return out, nil
}

// save canonicalizes order (newest date first, undated last) and replaces
// the file via a temp-file rename so readers never see a partial write.
func (s *Store) save(entries []*models.Entry) error {
	sortNewestFirst(entries)

	var buf bytes.Buffer
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal entry for %q: %w", e.Date, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	// Write atomically via temp file
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write entries file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace entries file: %w", err)
	}
	return nil
}

func sortNewestFirst(entries []*models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].Date, entries[j].Date
		iv, jv := dateRE.MatchString(di), dateRE.MatchString(dj)
		if iv != jv {
			return iv
		}
		if !iv {
			return false
		}
		return di > dj
	})
}

// Upsert reconciles a normalized entry against any existing entry for the
// same date, per policy, and rewrites the collection on success.
func (s *Store) Upsert(entry *models.Entry, policy models.Policy) (*models.UpsertResult, error) {
	date := strings.TrimSpace(entry.Date)
	if !dateRE.MatchString(date) {
		return nil, ErrInvalidDate
	}
	entry.Date = date

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.Load()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, e := range entries {
		if strings.TrimSpace(e.Date) == date {
			idx = i
			break
		}
	}

	if idx >= 0 && policy != models.PolicyOverwrite && policy != models.PolicyMerge {
		return &models.UpsertResult{
			Status:  models.StatusRejected,
			Date:    date,
			Message: fmt.Sprintf("Entry for %s already exists. Check overwrite to replace it.", date),
		}, ErrConflict
	}

	entry.UpdatedAt = time.Now().UTC().Format(models.TimestampFormat)

	var result *models.UpsertResult
	switch {
	case idx < 0:
		entries = append(entries, entry)
		result = &models.UpsertResult{
			Status:  models.StatusCreated,
			Date:    date,
			Message: fmt.Sprintf("Saved new entry for %s.", date),
		}
	case policy == models.PolicyOverwrite:
		entries[idx] = entry
		result = &models.UpsertResult{
			Status:  models.StatusOverwritten,
			Date:    date,
			Message: fmt.Sprintf("Overwrote existing entry for %s.", date),
		}
	default: // merge
		merged := mergeEntries(entries[idx], entry)
		merged.UpdatedAt = entry.UpdatedAt
		entries[idx] = merged
		result = &models.UpsertResult{
			Status:  models.StatusMerged,
			Date:    date,
			Message: fmt.Sprintf("Merged entry for %s.", date),
		}
	}

	if err := s.save(entries); err != nil {
		return nil, err
	}
	return result, nil
}

// Lookup finds the entry for an exact date. Reads skip the write lock; the
// atomic rename in save guarantees a consistent file.
func (s *Store) Lookup(date string) (*models.Entry, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}
	date = strings.TrimSpace(date)
	for _, e := range entries {
		if strings.TrimSpace(e.Date) == date {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

// All returns every entry, newest date first.
func (s *Store) All() ([]*models.Entry, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(entries)
	return entries, nil
}
