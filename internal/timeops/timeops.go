// Package timeops does calendar-aware arithmetic on time.Time values.
package timeops

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// ErrUnsupportedUnit is returned by Difference for unknown units.
var ErrUnsupportedUnit = errors.New("timeops: unsupported unit")

// Unit names accepted by Difference.
const (
	Seconds = "seconds"
	Minutes = "minutes"
	Hours   = "hours"
	Days    = "days"
	Weeks   = "weeks"
	Months  = "months"
	Years   = "years"
)

// Delta is a calendar offset. Years and months are applied first, with the
// day clamped to the target month; the remaining fields follow as plain
// durations except Days, which steps calendar days.
type Delta struct {
	Years   int `json:"years,omitempty" yaml:"years,omitempty"`
	Months  int `json:"months,omitempty" yaml:"months,omitempty"`
	Days    int `json:"days,omitempty" yaml:"days,omitempty"`
	Hours   int `json:"hours,omitempty" yaml:"hours,omitempty"`
	Minutes int `json:"minutes,omitempty" yaml:"minutes,omitempty"`
	Seconds int `json:"seconds,omitempty" yaml:"seconds,omitempty"`
}

// Neg flips every field.
func (d Delta) Neg() Delta {
	return Delta{-d.Years, -d.Months, -d.Days, -d.Hours, -d.Minutes, -d.Seconds}
}

func (d Delta) clock() time.Duration {
	return time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second
}

// Add applies d to t. Jan 31 + 1 month is the last day of February.
func Add(t time.Time, d Delta) time.Time {
	t = addMonthsClamped(t, d.Years*12+d.Months)
	t = t.AddDate(0, 0, d.Days)
	return t.Add(d.clock())
}

// Subtract applies the negation of d to t.
func Subtract(t time.Time, d Delta) time.Time {
	return Add(t, d.Neg())
}

func addMonthsClamped(t time.Time, months int) time.Time {
	if months == 0 {
		return t
	}
	y, m, day := t.Date()
	total := int(m) - 1 + months
	y += floorDiv(total, 12)
	m = time.Month(floorMod(total, 12) + 1)
	if last := DaysInMonth(y, m); day > last {
		day = last
	}
	return time.Date(y, m, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// Difference measures b relative to a in unit. Clock units and days use
// the absolute elapsed time (days truncated); weeks are fractional;
// months and years compare calendar fields and keep their sign.
func Difference(a, b time.Time, unit string) (float64, error) {
	elapsed := b.Sub(a)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	days := int64(elapsed / (24 * time.Hour))

	switch strings.ToLower(unit) {
	case Seconds:
		return elapsed.Seconds(), nil
	case Minutes:
		return elapsed.Minutes(), nil
	case Hours:
		return elapsed.Hours(), nil
	case Days, "":
		return float64(days), nil
	case Weeks:
		return float64(days) / 7, nil
	case Months:
		return float64((b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())), nil
	case Years:
		return float64(b.Year() - a.Year()), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedUnit, unit)
	}
}

// WeekNumber returns the ISO 8601 week of t (1-53).
func WeekNumber(t time.Time) int {
	_, w := t.ISOWeek()
	return w
}

func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

func StartOfDay(t time.Time) time.Time { return now.With(t).BeginningOfDay() }
func EndOfDay(t time.Time) time.Time   { return now.With(t).EndOfDay() }

func StartOfMonth(t time.Time) time.Time { return now.With(t).BeginningOfMonth() }

// EndOfMonth is the last nanosecond of t's month.
func EndOfMonth(t time.Time) time.Time { return now.With(t).EndOfMonth() }

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
