package smarttime_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarttime"
)

func TestPeriodsThroughFacade(t *testing.T) {
	a, err := smarttime.NewPeriod(smarttime.Date(2024, 1, 1), smarttime.Date(2024, 1, 5), smarttime.WithName("sprint"))
	require.NoError(t, err)
	b, err := smarttime.NewPeriod(smarttime.Date(2024, 1, 4), smarttime.Date(2024, 1, 11))
	require.NoError(t, err)
	c, err := smarttime.NewPeriod(smarttime.Date(2024, 1, 20), smarttime.Date(2024, 1, 22), smarttime.WithType(smarttime.TypeCustom))
	require.NoError(t, err)

	merged := smarttime.Merge([]smarttime.Period{c, b, a})
	require.Len(t, merged, 2)
	assert.Equal(t, smarttime.Date(2024, 1, 1), merged[0].Start())
	assert.Equal(t, smarttime.Date(2024, 1, 11), merged[0].End())

	narrowed := smarttime.IntersectChain([]smarttime.Period{a, b})
	require.Len(t, narrowed, 1)
	assert.Equal(t, smarttime.Date(2024, 1, 4), narrowed[0].Start())
	assert.Equal(t, smarttime.Date(2024, 1, 5), narrowed[0].End())

	_, err = smarttime.NewPeriod(smarttime.Date(2024, 1, 2), smarttime.Date(2024, 1, 1))
	assert.ErrorIs(t, err, smarttime.ErrInvalidPeriod)
}

func TestCalendarPeriodsThroughFacade(t *testing.T) {
	ref := time.Date(2024, time.May, 19, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, smarttime.Date(2024, 5, 13), smarttime.WeekOf(ref, time.Monday).Start())
	assert.Equal(t, smarttime.Date(2024, 5, 19), smarttime.DayOf(ref).Start())
	assert.Equal(t, smarttime.Date(2024, 5, 1), smarttime.MonthOf(ref).Start())
	assert.Equal(t, smarttime.Date(2024, 4, 1), smarttime.QuarterOf(ref).Start())
	assert.Equal(t, smarttime.Date(2024, 1, 1), smarttime.YearOf(ref).Start())

	w, err := smarttime.PeriodOf(smarttime.TypeWeek, ref, time.Sunday)
	require.NoError(t, err)
	assert.Equal(t, smarttime.Date(2024, 5, 19), w.Start())

	_, err = smarttime.PeriodOf(smarttime.TypeCustom, ref, time.Monday)
	assert.ErrorIs(t, err, smarttime.ErrNotCalendar)
}

func TestDateRangeThroughFacade(t *testing.T) {
	r := smarttime.NewDateRange(smarttime.Date(2024, 2, 25), smarttime.Date(2024, 3, 1), false)
	assert.Equal(t, 5, r.Len())
}

func TestParseFormatAdd(t *testing.T) {
	ts, err := smarttime.Parse("2024-01-31 10:00")
	require.NoError(t, err)

	next := smarttime.Add(ts, smarttime.Delta{Months: 1})
	assert.Equal(t, "29 de fevereiro de 2024", smarttime.Format(next, "%d de %B de %Y", "pt_BR"))
	assert.Equal(t, "February 29, 2024", smarttime.FormatNatural(next, false, "en"))
	assert.Equal(t, ts, smarttime.Subtract(smarttime.Add(ts, smarttime.Delta{Days: 3}), smarttime.Delta{Days: 3}))

	days, err := smarttime.Difference(ts, next, "days")
	require.NoError(t, err)
	assert.Equal(t, 29.0, days)

	_, err = smarttime.Parse("")
	assert.ErrorIs(t, err, smarttime.ErrParse)

	parsed, err := smarttime.ParseFormat("25.02.2024", "%d.%m.%Y")
	require.NoError(t, err)
	assert.Equal(t, smarttime.Date(2024, 2, 25), parsed)
}

func TestZonesThroughFacade(t *testing.T) {
	out, err := smarttime.ConvertZone(time.Date(2024, 2, 25, 14, 30, 0, 0, time.UTC), "America/Sao_Paulo", "UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 25, 17, 30, 0, 0, time.UTC), out)

	_, err = smarttime.LoadLocation("Nowhere/Special")
	assert.ErrorIs(t, err, smarttime.ErrUnknownZone)
}

func TestHolidaysThroughFacade(t *testing.T) {
	store, err := smarttime.OpenHolidays("")
	require.NoError(t, err)
	added, err := store.Add(smarttime.Date(2024, 2, 12), "Carnaval", "")
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, store.IsHoliday(smarttime.Date(2024, 2, 12)))
}
