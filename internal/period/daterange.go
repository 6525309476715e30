package period

import (
	"iter"
	"time"
)

// DateRange is an inclusive run of calendar days. Unlike TimePeriod it has
// no ordering invariant: an inverted range simply yields no days.
type DateRange struct {
	Start           time.Time
	End             time.Time
	IncludeWeekends bool
}

func NewDateRange(start, end time.Time, includeWeekends bool) DateRange {
	return DateRange{Start: start, End: end, IncludeWeekends: includeWeekends}
}

// All yields each day from Start to End, stepping one calendar day at a
// time. Every call starts a fresh enumeration.
func (r DateRange) All() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for cur := r.Start; !cur.After(r.End); cur = cur.AddDate(0, 0, 1) {
			if !r.IncludeWeekends && isWeekend(cur) {
				continue
			}
			if !yield(cur) {
				return
			}
		}
	}
}

// Len counts the days produced by a full enumeration.
func (r DateRange) Len() int {
	n := 0
	for range r.All() {
		n++
	}
	return n
}

func (r DateRange) List() []time.Time {
	var out []time.Time
	for d := range r.All() {
		out = append(out, d)
	}
	return out
}

// Filter keeps the days for which keep returns true, in order.
func (r DateRange) Filter(keep func(time.Time) bool) []time.Time {
	var out []time.Time
	for d := range r.All() {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// GroupByWeek buckets days by ISO week number. Ranges spanning a year
// boundary share keys across years, as week numbers repeat.
func (r DateRange) GroupByWeek() map[int][]time.Time {
	return r.groupBy(func(t time.Time) int {
		_, w := t.ISOWeek()
		return w
	})
}

// GroupByMonth buckets days by calendar month number (1-12).
func (r DateRange) GroupByMonth() map[int][]time.Time {
	return r.groupBy(func(t time.Time) int { return int(t.Month()) })
}

func (r DateRange) groupBy(key func(time.Time) int) map[int][]time.Time {
	groups := make(map[int][]time.Time)
	for d := range r.All() {
		k := key(d)
		groups[k] = append(groups[k], d)
	}
	return groups
}

// Period converts a non-inverted range into a TimePeriod over the same
// bounds.
func (r DateRange) Period() (TimePeriod, error) {
	return New(r.Start, r.End)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
