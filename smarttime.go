// Package smarttime is the library entry point: periods, date ranges,
// parsing, formatting, calendar arithmetic, timezones and holidays.
//
// The implementations live in internal packages; this package re-exports
// what library consumers need.
package smarttime

import (
	"time"

	"smarttime/internal/convert"
	"smarttime/internal/format"
	"smarttime/internal/holiday"
	"smarttime/internal/period"
	"smarttime/internal/timeops"
	"smarttime/internal/tz"
)

type (
	Period     = period.TimePeriod
	PeriodType = period.PeriodType
	Option     = period.Option
	DateRange  = period.DateRange
	Delta      = timeops.Delta
	ZoneInfo   = tz.ZoneInfo
	Holidays   = holiday.Store
)

const (
	TypeDay     = period.TypeDay
	TypeWeek    = period.TypeWeek
	TypeMonth   = period.TypeMonth
	TypeQuarter = period.TypeQuarter
	TypeYear    = period.TypeYear
	TypeCustom  = period.TypeCustom
)

var (
	ErrInvalidPeriod   = period.ErrInvalidPeriod
	ErrInvalidInterval = period.ErrInvalidInterval
	ErrNotCalendar     = period.ErrNotCalendar
	ErrParse           = convert.ErrParse
	ErrUnknownZone     = tz.ErrUnknownZone
	ErrUnsupportedUnit = timeops.ErrUnsupportedUnit
)

// NewPeriod builds a period; end must not be before start.
func NewPeriod(start, end time.Time, opts ...Option) (Period, error) {
	return period.New(start, end, opts...)
}

func WithName(name string) Option  { return period.WithName(name) }
func WithType(t PeriodType) Option { return period.WithType(t) }

// Date is midnight UTC of the given calendar day.
func Date(y int, m time.Month, d int) time.Time { return period.Date(y, m, d) }

// PeriodOf returns the day, week, month, quarter or year holding t.
// Weeks begin on weekStart.
func PeriodOf(typ PeriodType, t time.Time, weekStart time.Weekday) (Period, error) {
	return period.Of(typ, t, weekStart)
}

func DayOf(t time.Time) Period                          { return period.DayOf(t) }
func WeekOf(t time.Time, weekStart time.Weekday) Period { return period.WeekOf(t, weekStart) }
func MonthOf(t time.Time) Period                        { return period.MonthOf(t) }
func QuarterOf(t time.Time) Period                      { return period.QuarterOf(t) }
func YearOf(t time.Time) Period                         { return period.YearOf(t) }

// NewDateRange covers whole days from start to end inclusive.
func NewDateRange(start, end time.Time, includeWeekends bool) DateRange {
	return period.NewDateRange(start, end, includeWeekends)
}

// Merge joins overlapping periods into maximal spans, ordered by start.
func Merge(periods []Period) []Period { return period.Merge(periods) }

// IntersectChain narrows each chain of overlapping periods to its common span.
func IntersectChain(periods []Period) []Period { return period.IntersectChain(periods) }

// Parse auto-detects the layout of s; zone-less values are UTC.
func Parse(s string) (time.Time, error) { return convert.ParseAny(s) }

// ParseIn auto-detects the layout of s; zone-less values are read in loc.
func ParseIn(s string, loc *time.Location) (time.Time, error) {
	return convert.ParseAnyIn(s, loc)
}

// ParseFormat parses s with a strftime-style format.
func ParseFormat(s, layout string) (time.Time, error) { return convert.StringToTime(s, layout) }

// Format renders t with a strftime-style format and localized names.
func Format(t time.Time, layout, locale string) string { return format.Custom(t, layout, locale) }

func FormatRelative(t, ref time.Time, locale string) string { return format.Relative(t, ref, locale) }
func FormatNatural(t time.Time, withTime bool, locale string) string {
	return format.Natural(t, withTime, locale)
}

func Add(t time.Time, d Delta) time.Time      { return timeops.Add(t, d) }
func Subtract(t time.Time, d Delta) time.Time { return timeops.Subtract(t, d) }

// Difference is |b - a| in unit (seconds through years).
func Difference(a, b time.Time, unit string) (float64, error) {
	return timeops.Difference(a, b, unit)
}

func LoadLocation(name string) (*time.Location, error) { return tz.Load(name) }
func ZoneDetails(name string) (ZoneInfo, error)        { return tz.Info(name) }

// ConvertZone returns t in zone to. A UTC t is first re-read as wall-clock
// time in zone from.
func ConvertZone(t time.Time, from, to string) (time.Time, error) {
	return tz.Convert(t, from, to)
}

// OpenHolidays opens the JSON holiday calendar at path, or an in-memory
// one when path is empty.
func OpenHolidays(path string) (*Holidays, error) { return holiday.Open(path) }
