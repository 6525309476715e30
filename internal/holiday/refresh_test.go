package holiday

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarttime/internal/ics"
	"smarttime/internal/model"
)

const feed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:carnaval@test\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20240212\r\n" +
	"DTEND;VALUE=DATE:20240214\r\n" +
	"SUMMARY:Carnaval\r\n" +
	"CATEGORIES:regional\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing.ics") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	s, err := Open("")
	require.NoError(t, err)
	f := ics.NewFetcher(t.TempDir()).WithClient(srv.Client())

	report, err := s.Refresh(context.Background(), f,
		[]ics.Source{
			{ID: "br", URL: srv.URL + "/br.ics"},
			{ID: "gone", URL: srv.URL + "/missing.ics"},
		},
		[]ics.Rule{{Name: "Natal", RRule: "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25"}},
		date(2024, 1, 1), date(2024, 12, 31),
	)
	require.Error(t, err, "missing feed is reported")
	assert.Equal(t, 2, report.Feeds)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 3, report.Expanded)
	assert.Equal(t, 3, report.Added)

	h, ok := s.Get(date(2024, 2, 13))
	require.True(t, ok)
	assert.Equal(t, model.HolidayRegional, h.Type)
	assert.Equal(t, "br", h.SourceID)
	assert.True(t, s.IsHoliday(date(2024, 12, 25)))

	again, err := s.Refresh(context.Background(), f,
		[]ics.Source{{ID: "br", URL: srv.URL + "/br.ics"}}, nil,
		date(2024, 1, 1), date(2024, 12, 31))
	require.NoError(t, err)
	assert.Zero(t, again.Added)
}
