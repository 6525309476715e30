package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarttime/internal/model"
)

const fixture = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:natal@test
DTSTAMP:20240101T000000Z
DTSTART;VALUE=DATE:20201225
DTEND;VALUE=DATE:20201226
RRULE:FREQ=YEARLY
SUMMARY:Natal
CATEGORIES:National
END:VEVENT
BEGIN:VEVENT
UID:carnaval-2024@test
DTSTAMP:20240101T000000Z
DTSTART;VALUE=DATE:20240212
DTEND;VALUE=DATE:20240214
SUMMARY:Carnaval
END:VEVENT
BEGIN:VEVENT
UID:weekly@test
DTSTAMP:20240101T000000Z
DTSTART;VALUE=DATE:20240101
RRULE:FREQ=WEEKLY;COUNT=4
EXDATE;VALUE=DATE:20240108
SUMMARY:Plantão
END:VEVENT
BEGIN:VEVENT
UID:weekly@test
DTSTAMP:20240101T000000Z
RECURRENCE-ID;VALUE=DATE:20240115
DTSTART;VALUE=DATE:20240116
SUMMARY:Plantão movido
END:VEVENT
BEGIN:VEVENT
DTSTAMP:20240101T000000Z
DTSTART;VALUE=DATE:20240301
SUMMARY:No UID
END:VEVENT
END:VCALENDAR
`

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func keys(hs []model.Holiday) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.Key)
	}
	return out
}

func TestParseICS(t *testing.T) {
	events, err := ParseICS(Source{ID: "br"}, crlf(fixture))
	require.NoError(t, err)
	require.Len(t, events, 4, "event without UID is skipped")

	natal := events[0]
	assert.Equal(t, "natal@test", natal.UID)
	assert.True(t, natal.AllDay)
	assert.Equal(t, day(2020, 12, 25), natal.Start)
	assert.Equal(t, day(2020, 12, 26), natal.End)
	assert.Equal(t, []string{"National"}, natal.Categories)
	assert.Equal(t, "FREQ=YEARLY", natal.RawRRule)

	weekly := events[2]
	require.Len(t, weekly.ExDates, 1)
	assert.Equal(t, day(2024, 1, 8), weekly.ExDates[0])

	override := events[3]
	assert.True(t, override.IsOverride)
	require.NotNil(t, override.Recurrence)
	assert.Equal(t, day(2024, 1, 15), *override.Recurrence)

	_, err = ParseICS(Source{ID: "br"}, nil)
	assert.ErrorIs(t, err, ErrEmptyCalendar)
}

func TestExpandHolidays(t *testing.T) {
	events, err := ParseICS(Source{ID: "br"}, crlf(fixture))
	require.NoError(t, err)

	res, err := ExpandHolidays(events, ExpandConfig{RangeStart: day(2024, 1, 1), RangeEnd: day(2024, 12, 31)})
	require.NoError(t, err)
	assert.Empty(t, res.TruncatedEvents)
	assert.Equal(t,
		[]string{"2024-01-01", "2024-01-16", "2024-01-22", "2024-02-12", "2024-02-13", "2024-12-25"},
		keys(res.Holidays))

	moved := res.Holidays[1]
	assert.Equal(t, "Plantão movido", moved.Name)
	assert.Equal(t, "weekly@test", moved.UID)
	assert.Equal(t, "br", moved.SourceID)

	natal := res.Holidays[5]
	assert.Equal(t, model.HolidayNational, natal.Type)

	_, err = ExpandHolidays(events, ExpandConfig{RangeStart: day(2024, 2, 1), RangeEnd: day(2024, 1, 1)})
	assert.ErrorIs(t, err, ErrInvertedRange)
}

func TestExpandHolidaysCapAndWindow(t *testing.T) {
	events := []ParsedEvent{{
		Source:   Source{ID: "x", Type: "local"},
		UID:      "daily",
		Summary:  "Feira",
		Start:    day(2024, 1, 1),
		AllDay:   true,
		RawRRule: "FREQ=DAILY",
	}}
	res, err := ExpandHolidays(events, ExpandConfig{
		RangeStart:             day(2024, 3, 1),
		RangeEnd:               day(2024, 3, 31),
		MaxOccurrencesPerEvent: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"daily"}, res.TruncatedEvents)
	require.NotEmpty(t, res.Holidays)
	assert.Equal(t, "2024-03-01", res.Holidays[0].Key)
	assert.Equal(t, model.HolidayLocal, res.Holidays[0].Type)
	for _, h := range res.Holidays {
		assert.False(t, h.Date.Before(day(2024, 3, 1)), h.Key)
	}
}

func TestExpandRules(t *testing.T) {
	hs, err := ExpandRules([]Rule{
		{Name: "Natal", RRule: "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25"},
		{Name: "Tiradentes", RRule: "RRULE:FREQ=YEARLY;BYMONTH=4;BYMONTHDAY=21", Type: "regional"},
	}, day(2024, 1, 1), day(2025, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-04-21", "2024-12-25", "2025-04-21", "2025-12-25"}, keys(hs))
	assert.Equal(t, model.HolidayRegional, hs[0].Type)
	assert.Equal(t, RulesSourceID, hs[0].SourceID)

	_, err = ExpandRules([]Rule{{Name: "Never", RRule: "FREQ=SOMETIMES"}}, day(2024, 1, 1), day(2024, 12, 31))
	assert.Error(t, err)
}

func TestExportRoundTrip(t *testing.T) {
	in := []model.Holiday{
		model.NewHoliday(day(2024, 1, 1), "Confraternização Universal", model.HolidayNational),
		model.NewHoliday(day(2024, 11, 20), "Consciência Negra", model.HolidayRegional),
	}
	out := ExportICS(in, "Feriados", day(2024, 1, 1))
	assert.Contains(t, out, "X-WR-CALNAME:Feriados")
	assert.Contains(t, out, HolidayUID(in[0]))
	assert.Equal(t, HolidayUID(in[0]), HolidayUID(in[0]))
	assert.NotEqual(t, HolidayUID(in[0]), HolidayUID(in[1]))

	events, err := ParseICS(Source{ID: "export"}, []byte(out))
	require.NoError(t, err)
	res, err := ExpandHolidays(events, ExpandConfig{RangeStart: day(2024, 1, 1), RangeEnd: day(2024, 12, 31)})
	require.NoError(t, err)
	require.Len(t, res.Holidays, 2)
	assert.Equal(t, "2024-01-01", res.Holidays[0].Key)
	assert.Equal(t, "Confraternização Universal", res.Holidays[0].Name)
	assert.Equal(t, model.HolidayRegional, res.Holidays[1].Type)
}

func TestFetchOneUsesETagCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write(crlf(fixture))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir()).WithClient(srv.Client())
	src := Source{ID: "br", URL: srv.URL + "/token/basic.ics"}

	first, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchOneFallsBackToSnapshot(t *testing.T) {
	var down atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(crlf(fixture))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir()).WithClient(srv.Client())
	src := Source{ID: "br", URL: srv.URL + "/basic.ics"}

	fresh, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)

	down.Store(true)
	cached, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
	assert.Equal(t, fresh.Body, cached.Body)

	_, err = NewFetcher(t.TempDir()).WithClient(srv.Client()).FetchOne(context.Background(), src)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
}

func TestFetchAllCollectsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/broken.ics") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(crlf(fixture))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir()).WithClient(srv.Client())
	results, errs := f.FetchAll(context.Background(), []Source{
		{ID: "a", URL: srv.URL + "/a.ics"},
		{ID: "broken", URL: srv.URL + "/broken.ics"},
		{ID: "c", URL: srv.URL + "/c.ics"},
	})
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Source.ID)
	assert.Equal(t, "c", results[1].Source.ID)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "broken")
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://cal.example.com/...(redacted)", redactURL("https://cal.example.com/private/abc123/basic.ics"))
	assert.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}
