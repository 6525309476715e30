// Package tz looks up IANA timezones and converts times between them.
package tz

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrUnknownZone is returned for names the tz database does not know.
var ErrUnknownZone = errors.New("tz: unknown timezone")

// ZoneInfo describes a zone at a given instant.
type ZoneInfo struct {
	Name         string  `json:"name"`
	OffsetHours  float64 `json:"offset"`
	Abbreviation string  `json:"abbreviation"`
	IsDST        bool    `json:"is_dst"`
	CurrentTime  string  `json:"current_time"`
}

// Location cache shared by every lookup in the process.
var (
	cacheMu   sync.RWMutex
	cache     = make(map[string]*time.Location)
	loadGroup singleflight.Group
)

// now is swapped in tests.
var now = time.Now

// Load returns the location for name, caching successful lookups.
// Concurrent first lookups of the same name share one load.
func Load(name string) (*time.Location, error) {
	cacheMu.RLock()
	loc, ok := cache[name]
	cacheMu.RUnlock()
	if ok {
		return loc, nil
	}

	v, err, _ := loadGroup.Do(name, func() (any, error) {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownZone, name)
		}
		cacheMu.Lock()
		cache[name] = loc
		cacheMu.Unlock()
		return loc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*time.Location), nil
}

// Info describes name as of now.
func Info(name string) (ZoneInfo, error) {
	return InfoAt(name, now())
}

// InfoAt describes name as of t.
func InfoAt(name string, t time.Time) (ZoneInfo, error) {
	loc, err := Load(name)
	if err != nil {
		return ZoneInfo{}, err
	}
	local := t.In(loc)
	abbr, offset := local.Zone()
	return ZoneInfo{
		Name:         name,
		OffsetHours:  float64(offset) / 3600,
		Abbreviation: abbr,
		IsDST:        local.IsDST(),
		CurrentTime:  local.Format(time.DateTime),
	}, nil
}

// Convert moves t from one zone to another. A t in UTC is treated as a
// naive wall-clock reading and re-anchored in from first.
func Convert(t time.Time, from, to string) (time.Time, error) {
	src, err := Load(from)
	if err != nil {
		return time.Time{}, err
	}
	dst, err := Load(to)
	if err != nil {
		return time.Time{}, err
	}
	if t.Location() == time.UTC {
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), src)
	}
	return t.In(dst), nil
}

// Abbreviation returns the current short zone name, e.g. "-03" or "CET".
func Abbreviation(name string) (string, error) {
	info, err := Info(name)
	if err != nil {
		return "", err
	}
	return info.Abbreviation, nil
}

// IsDST reports whether daylight saving time is in effect now.
func IsDST(name string) (bool, error) {
	info, err := Info(name)
	if err != nil {
		return false, err
	}
	return info.IsDST, nil
}

// UTCOffset returns the current offset from UTC in hours.
func UTCOffset(name string) (float64, error) {
	info, err := Info(name)
	if err != nil {
		return 0, err
	}
	return info.OffsetHours, nil
}

// Local returns the name of the process's local zone.
func Local() string {
	return time.Local.String()
}

// ByOffset lists available zones whose current offset is within six
// minutes of hours.
func ByOffset(hours float64) []string {
	t := now()
	var out []string
	for _, name := range Available() {
		loc, err := Load(name)
		if err != nil {
			continue
		}
		_, offset := t.In(loc).Zone()
		if math.Abs(float64(offset)/3600-hours) < 0.1 {
			out = append(out, name)
		}
	}
	return out
}
