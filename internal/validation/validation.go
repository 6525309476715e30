// Package validation checks date strings, ranges and tagged structs.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"smarttime/internal/convert"
	"smarttime/internal/period"
)

// ErrFormatRequired is returned when string dates arrive without a format.
var ErrFormatRequired = errors.New("validation: date format must be given for string dates")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the package's custom tags:
//
//	strftime     - a format string containing at least one % directive
//	period_type  - one of the period.PeriodType values
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("strftime", func(fl validator.FieldLevel) bool {
			return strings.Contains(fl.Field().String(), "%")
		})
		_ = validate.RegisterValidation("period_type", func(fl validator.FieldLevel) bool {
			return period.PeriodType(fl.Field().String()).Valid()
		})
	})
	return validate
}

// FieldErrors maps a struct field name to its failed rule.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates v's tags and flattens failures into FieldErrors.
func Struct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, fieldErr := range verrs {
		out[fieldErr.Namespace()] = ruleText(fieldErr)
	}
	return out
}

func ruleText(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
	return "failed " + fe.Tag()
}

// IsValidDate reports whether s matches a strftime-style format.
func IsValidDate(s, format string) bool {
	return convert.ValidateString(s, format)
}

// AutoValidate reports whether s looks like a date in any known layout.
func AutoValidate(s string) bool {
	_, err := convert.ParseAny(s)
	return err == nil
}

// ValidateDateRange reports end >= start.
func ValidateDateRange(start, end time.Time) bool {
	return !end.Before(start)
}

// ValidateDateRangeStrings parses both ends with format and compares them.
func ValidateDateRangeStrings(start, end, format string) (bool, error) {
	if format == "" {
		return false, ErrFormatRequired
	}
	s, err := convert.StringToTime(start, format)
	if err != nil {
		return false, err
	}
	e, err := convert.StringToTime(end, format)
	if err != nil {
		return false, err
	}
	return ValidateDateRange(s, e), nil
}

// ValidateTime checks a clock string, %H:%M:%S when format is empty.
func ValidateTime(s, format string) bool {
	if format == "" {
		format = convert.TimeFormat
	}
	return convert.ValidateString(s, format)
}

// ValidateDateTime checks a date-time string, %Y-%m-%d %H:%M:%S when
// format is empty.
func ValidateDateTime(s, format string) bool {
	if format == "" {
		format = convert.DateTimeFormat
	}
	return convert.ValidateString(s, format)
}
