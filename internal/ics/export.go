package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"smarttime/internal/model"
)

const prodID = "-//smarttime//holidays//EN"

// uidNamespace seeds UUIDv5 event UIDs so re-exports keep stable UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:smarttime:holiday"))

// HolidayUID is the exported UID of h: stable for the same day, name and
// origin.
func HolidayUID(h model.Holiday) string {
	return uuid.NewSHA1(uidNamespace, []byte(h.Key+"\x00"+h.Name+"\x00"+h.UID)).String() + "@smarttime"
}

// ExportICS renders holidays as an iCalendar document of all-day events.
// stamp becomes every event's DTSTAMP.
func ExportICS(holidays []model.Holiday, calName string, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)
	if calName != "" {
		cal.SetXWRCalName(calName)
	}

	for _, h := range holidays {
		day := model.CalendarDay(h.Date)
		if h.Date.IsZero() {
			if t, err := time.Parse(model.DateKey, h.Key); err == nil {
				day = t
			}
		}

		ev := cal.AddEvent(HolidayUID(h))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetSummary(h.Name)
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		if h.Type != "" {
			ev.SetProperty(ical.ComponentPropertyCategories, string(h.Type))
		}
	}

	return cal.Serialize()
}
