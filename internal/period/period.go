// Package period models closed time intervals and calendar-day ranges.
//
// A TimePeriod is an immutable [start, end] interval with set-like
// operations; a DateRange is a lazily enumerated run of calendar days.
// Merge and IntersectChain fold collections of periods with a sweep over
// sorted starts.
package period

import (
	"errors"
	"fmt"
	"time"
)

const secondsPerDay = 24 * 60 * 60

var (
	// ErrInvalidPeriod is returned when a period ends before it starts.
	ErrInvalidPeriod   = errors.New("period: end is before start")
	// ErrInvalidInterval is returned by Split for a non-positive step.
	ErrInvalidInterval = errors.New("period: split interval must be positive")
	// ErrNotCalendar is returned by Of for a type with no calendar shape.
	ErrNotCalendar     = errors.New("period: not a calendar period type")
)

// PeriodType tags what a period represents. It carries no behaviour.
type PeriodType string

const (
	TypeDay     PeriodType = "day"
	TypeWeek    PeriodType = "week"
	TypeMonth   PeriodType = "month"
	TypeQuarter PeriodType = "quarter"
	TypeYear    PeriodType = "year"
	TypeCustom  PeriodType = "custom"
)

// Valid reports whether t is one of the known period types.
func (t PeriodType) Valid() bool {
	switch t {
	case TypeDay, TypeWeek, TypeMonth, TypeQuarter, TypeYear, TypeCustom:
		return true
	}
	return false
}

// TimePeriod is a closed interval [Start, End]. The zero value is the
// degenerate period at the zero time.
type TimePeriod struct {
	start time.Time
	end   time.Time
	name  string
	typ   PeriodType
}

// Option configures optional TimePeriod attributes.
type Option func(*TimePeriod)

// WithName attaches a label to the period.
func WithName(name string) Option {
	return func(p *TimePeriod) { p.name = name }
}

// WithType sets the descriptive period type. Unknown types become custom.
func WithType(t PeriodType) Option {
	return func(p *TimePeriod) {
		if !t.Valid() {
			t = TypeCustom
		}
		p.typ = t
	}
}

// New builds a period, failing with ErrInvalidPeriod when end < start.
func New(start, end time.Time, opts ...Option) (TimePeriod, error) {
	if end.Before(start) {
		return TimePeriod{}, fmt.Errorf("%w: %s < %s", ErrInvalidPeriod,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	p := TimePeriod{start: start, end: end, typ: TypeCustom}
	for _, opt := range opts {
		opt(&p)
	}
	return p, nil
}

// MustNew is New for literals known to be valid; it panics otherwise.
func MustNew(start, end time.Time, opts ...Option) TimePeriod {
	p, err := New(start, end, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p TimePeriod) Start() time.Time { return p.start }
func (p TimePeriod) End() time.Time   { return p.end }
func (p TimePeriod) Name() string     { return p.name }

// Type returns the descriptive tag, custom when unset.
func (p TimePeriod) Type() PeriodType {
	if p.typ == "" {
		return TypeCustom
	}
	return p.typ
}

// Duration is end - start.
func (p TimePeriod) Duration() time.Duration {
	return p.end.Sub(p.start)
}

// Days is the length in whole 24-hour days, truncated. It is computed from
// Unix seconds so periods longer than a time.Duration can hold stay exact.
func (p TimePeriod) Days() int {
	secs := p.end.Unix() - p.start.Unix()
	if p.end.Nanosecond() < p.start.Nanosecond() {
		secs--
	}
	return int(secs / secondsPerDay)
}

// Contains reports start <= t <= end.
func (p TimePeriod) Contains(t time.Time) bool {
	return !t.Before(p.start) && !t.After(p.end)
}

// Overlaps uses inclusive bounds: periods sharing only an endpoint overlap.
func (p TimePeriod) Overlaps(other TimePeriod) bool {
	return !p.start.After(other.end) && !other.start.After(p.end)
}

// Intersection returns the shared span, or false when the periods do not
// overlap. Touching periods yield a zero-duration period.
func (p TimePeriod) Intersection(other TimePeriod) (TimePeriod, bool) {
	if !p.Overlaps(other) {
		return TimePeriod{}, false
	}
	return TimePeriod{
		start: latest(p.start, other.start),
		end:   earliest(p.end, other.end),
		typ:   TypeCustom,
	}, true
}

// Union returns the convex hull of both periods. It does not require an
// overlap: disjoint periods produce a span that covers the gap between them.
func (p TimePeriod) Union(other TimePeriod) TimePeriod {
	return TimePeriod{
		start: earliest(p.start, other.start),
		end:   latest(p.end, other.end),
		typ:   TypeCustom,
	}
}

// Split cuts the period into consecutive pieces of length interval, the
// last one truncated at End. A zero-duration period yields no pieces.
func (p TimePeriod) Split(interval time.Duration) ([]TimePeriod, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidInterval, interval)
	}
	var out []TimePeriod
	for cur := p.start; cur.Before(p.end); {
		next := earliest(cur.Add(interval), p.end)
		out = append(out, TimePeriod{start: cur, end: next, typ: TypeCustom})
		cur = next
	}
	return out, nil
}

// Equal compares bounds only; name and type are labels.
func (p TimePeriod) Equal(other TimePeriod) bool {
	return p.start.Equal(other.start) && p.end.Equal(other.end)
}

func (p TimePeriod) String() string {
	s := "[" + p.start.Format(time.RFC3339) + ", " + p.end.Format(time.RFC3339) + "]"
	if p.name != "" {
		s = p.name + " " + s
	}
	return s
}

func earliest(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
