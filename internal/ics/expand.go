package ics

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "smarttime/internal/log"
	"smarttime/internal/model"
	"smarttime/internal/period"
)

const defaultMaxOccurrencesPerEvent = 5000

// ErrInvertedRange is returned when RangeEnd is before RangeStart.
var ErrInvertedRange = errors.New("ics: expansion range ends before it starts")

// ExpandConfig controls how events become holidays.
type ExpandConfig struct {
	// RangeStart / RangeEnd bound the calendar days produced, inclusive.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps each recurring event. If zero,
	// defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int

	// DefaultType applies when neither CATEGORIES nor the source say
	// otherwise. Empty means national.
	DefaultType model.HolidayType
}

// ExpandResult is the list of holidays sorted by date, plus UIDs that hit
// the occurrence cap.
type ExpandResult struct {
	Holidays        []model.Holiday
	TruncatedEvents []string
}

// ExpandHolidays turns parsed events into one holiday per calendar day they
// cover within the configured range. It handles:
//
//   - single and multi-day events (DTEND is exclusive)
//   - RRULE recurrence with EXDATE exclusions
//   - RECURRENCE-ID overrides that move or rename one instance
func ExpandHolidays(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, ErrInvertedRange
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}
	if cfg.DefaultType == "" {
		cfg.DefaultType = model.HolidayNational
	}

	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
		}
	}

	window, err := period.New(model.CalendarDay(cfg.RangeStart), model.CalendarDay(cfg.RangeEnd))
	if err != nil {
		return result, err
	}

	all := make([]model.Holiday, 0)
	for uid, baseEvents := range baseByUID {
		ov := overridesByUID[uid]
		truncated := false

		for _, ev := range baseEvents {
			if ev.Summary == "" {
				appLog.Warn("unnamed holiday skipped", "uid", uid, "feed", ev.Source.ID)
				continue
			}
			days, hitCap := expandEvent(ev, ov, cfg, window)
			if hitCap {
				truncated = true
			}
			all = append(all, days...)
		}

		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Warn("recurring holiday hit the occurrence cap", "uid", uid, "cap", cfg.MaxOccurrencesPerEvent)
		}
	}

	slices.SortStableFunc(all, func(a, b model.Holiday) int {
		if c := strings.Compare(a.Key, b.Key); c != 0 {
			return c
		}
		return strings.Compare(a.UID, b.UID)
	})
	slices.Sort(result.TruncatedEvents)
	result.Holidays = all
	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig, window period.TimePeriod) ([]model.Holiday, bool) {
	if ev.RawRRule == "" {
		return expandSingleEvent(ev, overrides, cfg, window), false
	}
	return expandRecurringEvent(ev, overrides, cfg, window)
}

func expandSingleEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig, window period.TimePeriod) []model.Holiday {
	if o, ok := findOverrideForStart(overrides, ev.Start); ok {
		ev = o
	}
	return holidayDays(ev, ev.Start, ev.End, cfg, window)
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig, window period.TimePeriod) ([]model.Holiday, bool) {
	out := make([]model.Holiday, 0)
	hitCap := false

	r, err := rrule.StrToRRule(strings.TrimPrefix(ev.RawRRule, "RRULE:"))
	if err != nil {
		appLog.Error("bad recurrence rule", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Reach back by the event length so instances that start before the
	// window but run into it are kept.
	dur := eventLength(ev)
	loc := ev.Start.Location()
	rangeStart := time.Date(window.Start().Year(), window.Start().Month(), window.Start().Day(), 0, 0, 0, 0, loc).Add(-dur)
	rangeEnd := time.Date(window.End().Year(), window.End().Month(), window.End().Day(), 23, 59, 59, 0, loc)

	occTimes := set.Between(rangeStart, rangeEnd, true)
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	for _, occStart := range occTimes {
		base := ev
		start, end := occStart, occStart.Add(dur)
		if o, ok := findOverrideForStart(overrides, occStart); ok {
			base = o
			start, end = o.Start, o.End
		}
		out = append(out, holidayDays(base, start, end, cfg, window)...)
	}

	return out, hitCap
}

// eventLength is the span an instance covers; events without a usable
// DTEND cover one day.
func eventLength(ev ParsedEvent) time.Duration {
	if ev.End.After(ev.Start) {
		return ev.End.Sub(ev.Start)
	}
	if ev.AllDay {
		return 24 * time.Hour
	}
	return 0
}

// holidayDays lists the calendar days of [start, end) that fall in window.
func holidayDays(ev ParsedEvent, start, end time.Time, cfg ExpandConfig, window period.TimePeriod) []model.Holiday {
	first := model.CalendarDay(start)
	last := first
	if end.After(start) {
		// DTEND is exclusive; an instant-length tail still lands on its day.
		last = model.CalendarDay(end.Add(-time.Nanosecond))
	}
	if last.Before(first) {
		last = first
	}

	typ := holidayType(ev, cfg.DefaultType)
	var out []model.Holiday
	for d := range period.NewDateRange(first, last, true).All() {
		if !window.Contains(d) {
			continue
		}
		h := model.NewHoliday(d, ev.Summary, typ)
		h.SourceID = ev.Source.ID
		h.UID = ev.UID
		out = append(out, h)
	}
	return out
}

func holidayType(ev ParsedEvent, fallback model.HolidayType) model.HolidayType {
	for _, c := range ev.Categories {
		switch t := model.HolidayType(strings.ToLower(c)); t {
		case model.HolidayNational, model.HolidayRegional, model.HolidayLocal:
			return t
		}
	}
	if ev.Source.Type != "" {
		return model.HolidayType(ev.Source.Type)
	}
	return fallback
}

// findOverrideForStart finds an override whose RECURRENCE-ID is the given
// instance start.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence == nil {
			continue
		}
		rid := *ov.Recurrence
		if rid.Equal(start) || sameDateValue(ov, rid, start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// sameDateValue matches DATE-valued RECURRENCE-IDs against instances whose
// start carries a different location.
func sameDateValue(ov ParsedEvent, rid, start time.Time) bool {
	return ov.AllDay && model.CalendarDay(rid).Equal(model.CalendarDay(start))
}
