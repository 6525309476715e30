// Package convert turns strings into times and back using strftime-style
// formats (%Y-%m-%d %H:%M:%S) or free-form auto-detection.
package convert

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/itchyny/timefmt-go"

	"smarttime/internal/tz"
)

var (
	// ErrParse wraps every string-to-time failure.
	ErrParse = errors.New("convert: cannot parse time")
	// ErrEmptyFormat is returned when a format string is required but blank.
	ErrEmptyFormat = errors.New("convert: format is empty")
)

// Common strftime formats.
const (
	DateFormat     = "%Y-%m-%d"
	TimeFormat     = "%H:%M:%S"
	DateTimeFormat = "%Y-%m-%d %H:%M:%S"
)

// dayFirstLayouts are tried after auto-detection fails, covering numeric
// European dates that auto-detection reads month-first.
var dayFirstLayouts = []string{
	"02/01/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2/1/2006",
	"02.01.2006",
	"02.01.2006 15:04",
	"02.01.2006 15:04:05",
	"2.1.2006",
	"02-01-2006",
}

// StringToTime parses s with a strftime-style format. Values without an
// explicit offset are UTC.
func StringToTime(s, format string) (time.Time, error) {
	if format == "" {
		return time.Time{}, ErrEmptyFormat
	}
	t, err := timefmt.Parse(s, format)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q with %q: %v", ErrParse, s, format, err)
	}
	return t, nil
}

// StringToTimeIn is StringToTime with zone-less values placed in loc.
func StringToTimeIn(s, format string, loc *time.Location) (time.Time, error) {
	if format == "" {
		return time.Time{}, ErrEmptyFormat
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := timefmt.ParseInLocation(s, format, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q with %q: %v", ErrParse, s, format, err)
	}
	return t, nil
}

// TimeToString renders t with a strftime-style format.
func TimeToString(t time.Time, format string) string {
	return timefmt.Format(t, format)
}

// ValidateString reports whether s matches format exactly.
func ValidateString(s, format string) bool {
	_, err := StringToTime(s, format)
	return err == nil
}

// ConvertFormat re-renders a date string from one format into another.
func ConvertFormat(s, from, to string) (string, error) {
	t, err := StringToTime(s, from)
	if err != nil {
		return "", err
	}
	return TimeToString(t, to), nil
}

// ParseAny auto-detects the layout of s. Zone-less values are UTC.
func ParseAny(s string) (time.Time, error) {
	return ParseAnyIn(s, time.UTC)
}

// ParseAnyIn auto-detects the layout of s, placing zone-less values in loc.
func ParseAnyIn(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrParse)
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := dateparse.ParseIn(s, loc)
	if err == nil {
		return t, nil
	}
	for _, layout := range dayFirstLayouts {
		if dt, perr := time.ParseInLocation(layout, s, loc); perr == nil {
			return dt, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q: %v", ErrParse, s, err)
}

// ConvertWithTimezone parses s free-form and converts it into zone.
// Zone-less input is read as local system time.
func ConvertWithTimezone(s, zone string) (time.Time, error) {
	loc, err := tz.Load(zone)
	if err != nil {
		return time.Time{}, err
	}
	t, err := ParseAnyIn(s, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}
