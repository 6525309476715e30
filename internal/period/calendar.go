package period

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// Date returns midnight of the given calendar day in UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to midnight of its calendar day, keeping t's location.
func DateOf(t time.Time) time.Time {
	return now.With(t).BeginningOfDay()
}

// DayOf returns the period covering t's calendar day.
func DayOf(t time.Time) TimePeriod {
	n := now.With(t)
	return span(n.BeginningOfDay(), n.EndOfDay(), TypeDay)
}

// WeekOf returns the week containing t, beginning on weekStart.
func WeekOf(t time.Time, weekStart time.Weekday) TimePeriod {
	n := (&now.Config{WeekStartDay: weekStart}).With(t)
	return span(n.BeginningOfWeek(), n.EndOfWeek(), TypeWeek)
}

func MonthOf(t time.Time) TimePeriod {
	n := now.With(t)
	return span(n.BeginningOfMonth(), n.EndOfMonth(), TypeMonth)
}

// QuarterOf returns the calendar quarter (Jan-Mar, Apr-Jun, ...) holding t.
func QuarterOf(t time.Time) TimePeriod {
	n := now.With(t)
	return span(n.BeginningOfQuarter(), n.EndOfQuarter(), TypeQuarter)
}

func YearOf(t time.Time) TimePeriod {
	n := now.With(t)
	return span(n.BeginningOfYear(), n.EndOfYear(), TypeYear)
}

// Of returns the calendar period of kind typ holding t. Weeks begin on
// weekStart. TypeCustom has no calendar shape and is rejected.
func Of(typ PeriodType, t time.Time, weekStart time.Weekday) (TimePeriod, error) {
	switch typ {
	case TypeDay:
		return DayOf(t), nil
	case TypeWeek:
		return WeekOf(t, weekStart), nil
	case TypeMonth:
		return MonthOf(t), nil
	case TypeQuarter:
		return QuarterOf(t), nil
	case TypeYear:
		return YearOf(t), nil
	default:
		return TimePeriod{}, fmt.Errorf("%w: %q", ErrNotCalendar, typ)
	}
}

// span builds a closed calendar period; end is the last nanosecond.
func span(start, end time.Time, typ PeriodType) TimePeriod {
	return TimePeriod{start: start, end: end, typ: typ}
}
