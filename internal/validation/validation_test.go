package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate("2024-02-25", "%Y-%m-%d"))
	assert.False(t, IsValidDate("2024-13-25", "%Y-%m-%d"))
}

func TestAutoValidate(t *testing.T) {
	assert.True(t, AutoValidate("2024-02-25"))
	assert.True(t, AutoValidate("25/02/2024"))
	assert.False(t, AutoValidate("data inválida"))
}

func TestValidateDateRange(t *testing.T) {
	start := time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, ValidateDateRange(start, end))
	assert.True(t, ValidateDateRange(start, start))
	assert.False(t, ValidateDateRange(end, start))
}

func TestValidateDateRangeStrings(t *testing.T) {
	ok, err := ValidateDateRangeStrings("2024-02-25", "2024-03-01", "%Y-%m-%d")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ValidateDateRangeStrings("2024-03-01", "2024-02-25", "%Y-%m-%d")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ValidateDateRangeStrings("2024-02-25", "2024-03-01", "")
	assert.ErrorIs(t, err, ErrFormatRequired)

	_, err = ValidateDateRangeStrings("nope", "2024-03-01", "%Y-%m-%d")
	assert.Error(t, err)
}

func TestValidateTimeAndDateTime(t *testing.T) {
	assert.True(t, ValidateTime("14:30:00", ""))
	assert.False(t, ValidateTime("25:30:00", ""))
	assert.True(t, ValidateTime("14:30", "%H:%M"))

	assert.True(t, ValidateDateTime("2024-02-25 14:30:00", ""))
	assert.False(t, ValidateDateTime("2024-02-25", ""))
}

type sample struct {
	Zone   string `validate:"required,timezone"`
	Format string `validate:"strftime"`
	Kind   string `validate:"period_type"`
	Day    string `validate:"omitempty,datetime=2006-01-02"`
}

func TestStruct(t *testing.T) {
	if _, err := time.LoadLocation("Europe/Lisbon"); err != nil {
		t.Skip("tzdata unavailable")
	}
	require.NoError(t, Struct(sample{Zone: "Europe/Lisbon", Format: "%Y", Kind: "month", Day: "2024-02-29"}))

	err := Struct(sample{Zone: "Atlantis/Capital", Format: "YYYY", Kind: "fortnight", Day: "2023-02-29"})
	require.Error(t, err)
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Len(t, fe, 4)
	assert.Equal(t, "failed timezone", fe["sample.Zone"])
	assert.Equal(t, "failed datetime=2006-01-02", fe["sample.Day"])
	assert.Contains(t, err.Error(), "sample.Format: failed strftime")
}
