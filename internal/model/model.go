package model

import "time"

// HolidayType classifies a holiday's scope.
type HolidayType string

const (
	HolidayNational HolidayType = "national"
	HolidayRegional HolidayType = "regional"
	HolidayLocal    HolidayType = "local"
)

// DateKey is the layout used to key holidays by calendar day.
const DateKey = "2006-01-02"

// Holiday is a single named calendar day.
type Holiday struct {
	// Date is midnight UTC of the holiday's calendar day.
	Date time.Time   `json:"-" yaml:"-"`
	Key  string      `json:"date" yaml:"date" validate:"required,datetime=2006-01-02"`
	Name string      `json:"name" yaml:"name" validate:"required"`
	Type HolidayType `json:"type" yaml:"type" validate:"oneof=national regional local"`

	// SourceID and UID are set for holidays imported from iCalendar feeds
	// or expanded from recurrence rules.
	SourceID string `json:"source,omitempty" yaml:"source,omitempty"`
	UID      string `json:"uid,omitempty" yaml:"uid,omitempty"`
}

// CalendarDay reduces t to midnight UTC of its own wall-clock date, so
// 23:30 in São Paulo stays on the same day.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewHoliday builds a holiday on t's calendar day. An empty type means
// national.
func NewHoliday(t time.Time, name string, typ HolidayType) Holiday {
	if typ == "" {
		typ = HolidayNational
	}
	day := CalendarDay(t)
	return Holiday{Date: day, Key: day.Format(DateKey), Name: name, Type: typ}
}
