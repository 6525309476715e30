// Package holiday keeps a file-backed list of holidays keyed by calendar
// date and answers working-day questions against it.
package holiday

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	appLog "smarttime/internal/log"
	"smarttime/internal/model"
	"smarttime/internal/period"
	"smarttime/internal/validation"
)

// record is the on-disk value; the map key is the YYYY-MM-DD date.
type record struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	SourceID string `json:"source,omitempty"`
	UID      string `json:"uid,omitempty"`
}

// Store is a holiday list persisted as a JSON object:
//
//	{"2024-01-01": {"name": "Confraternização Universal", "type": "national"}}
//
// A Store with an empty path lives in memory only. All methods are safe for
// concurrent use.
type Store struct {
	path string

	mu       sync.RWMutex
	holidays map[string]record
}

// Open loads the store at path. A missing file is an empty store; it is
// created on the first write.
func Open(path string) (*Store, error) {
	s := &Store{path: path, holidays: make(map[string]record)}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("holiday: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.holidays); err != nil {
		return nil, fmt.Errorf("holiday: decode %s: %w", path, err)
	}
	for key := range s.holidays {
		if _, err := time.Parse(model.DateKey, key); err != nil {
			appLog.Warn("holiday: skipping malformed date key", "path", path, "key", key)
			delete(s.holidays, key)
		}
	}
	appLog.Debug("holiday store loaded", "path", path, "count", len(s.holidays))
	return s, nil
}

// Path returns the backing file, empty for in-memory stores.
func (s *Store) Path() string { return s.path }

// Len returns the number of stored holidays.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.holidays)
}

func key(t time.Time) string {
	return model.CalendarDay(t).Format(model.DateKey)
}

// IsHoliday reports whether t's calendar day is a holiday.
func (s *Store) IsHoliday(t time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.holidays[key(t)]
	return ok
}

// Get returns the holiday on t's calendar day.
func (s *Store) Get(t time.Time) (model.Holiday, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := key(t)
	rec, ok := s.holidays[k]
	if !ok {
		return model.Holiday{}, false
	}
	return toHoliday(k, rec), true
}

// List returns holidays sorted by date. A zero year or month matches all.
func (s *Store) List(year int, month time.Month) []model.Holiday {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Holiday, 0, len(s.holidays))
	for k, rec := range s.holidays {
		h := toHoliday(k, rec)
		if year != 0 && h.Date.Year() != year {
			continue
		}
		if month != 0 && h.Date.Month() != month {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Add stores a holiday on t's calendar day. It returns false without
// touching the file when the day already has one.
func (s *Store) Add(t time.Time, name string, typ model.HolidayType) (bool, error) {
	n, err := s.Import([]model.Holiday{model.NewHoliday(t, name, typ)})
	return n == 1, err
}

// Import adds every holiday whose date is not yet taken and persists once.
// Existing entries are never overwritten.
func (s *Store) Import(holidays []model.Holiday) (int, error) {
	for _, h := range holidays {
		if err := validation.Struct(h); err != nil {
			return 0, fmt.Errorf("holiday %q: %w", h.Key, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var added []string
	for _, h := range holidays {
		if _, exists := s.holidays[h.Key]; exists {
			continue
		}
		s.holidays[h.Key] = record{Name: h.Name, Type: string(h.Type), SourceID: h.SourceID, UID: h.UID}
		added = append(added, h.Key)
	}
	if len(added) == 0 {
		return 0, nil
	}
	if err := s.saveLocked(); err != nil {
		// Memory must keep matching the file.
		for _, k := range added {
			delete(s.holidays, k)
		}
		return 0, err
	}
	return len(added), nil
}

// Remove deletes the holiday on t's calendar day. It returns false when
// there was none.
func (s *Store) Remove(t time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(t)
	rec, ok := s.holidays[k]
	if !ok {
		return false, nil
	}
	delete(s.holidays, k)
	if err := s.saveLocked(); err != nil {
		s.holidays[k] = rec
		return false, err
	}
	return true, nil
}

// WorkingDays counts the days in [start, end] that are not holidays.
// Weekends count as working days; see BusinessDays for the stricter rule.
func (s *Store) WorkingDays(start, end time.Time) int {
	r := period.NewDateRange(model.CalendarDay(start), model.CalendarDay(end), true)
	return len(r.Filter(func(d time.Time) bool { return !s.IsHoliday(d) }))
}

// BusinessDays counts the weekdays in [start, end] that are not holidays.
func (s *Store) BusinessDays(start, end time.Time) int {
	r := period.NewDateRange(model.CalendarDay(start), model.CalendarDay(end), false)
	return len(r.Filter(func(d time.Time) bool { return !s.IsHoliday(d) }))
}

func toHoliday(k string, rec record) model.Holiday {
	d, _ := time.Parse(model.DateKey, k)
	typ := model.HolidayType(rec.Type)
	if typ == "" {
		typ = model.HolidayNational
	}
	return model.Holiday{Date: d, Key: k, Name: rec.Name, Type: typ, SourceID: rec.SourceID, UID: rec.UID}
}

// saveLocked writes the store atomically: temp file in the same directory,
// fsync, chmod 0600, rename. Callers hold s.mu.
func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.holidays, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".holidays-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return err
	}

	appLog.Debug("holiday store saved", "path", s.path, "count", len(s.holidays))
	return nil
}
