// Package format renders times for people: relative phrases, localized
// strftime output and the natural, ISO and short styles.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"github.com/itchyny/timefmt-go"
	"golang.org/x/text/language"
)

// Locale is a supported output language.
type Locale int

const (
	PtBR Locale = iota
	English
)

// DefaultLocale is used when a requested locale matches nothing supported.
const DefaultLocale = PtBR

var (
	supported = []language.Tag{language.BrazilianPortuguese, language.AmericanEnglish}
	matcher   = language.NewMatcher(supported)
)

// MatchLocale maps tags like "pt_BR", "pt-BR", "pt", "en" or "en-GB" onto a
// supported locale.
func MatchLocale(s string) Locale {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
	if s == "" {
		return DefaultLocale
	}
	_, idx := language.MatchStrings(matcher, s)
	if idx < 0 || idx >= len(supported) {
		return DefaultLocale
	}
	return Locale(idx)
}

func (l Locale) String() string {
	if l == English {
		return "en"
	}
	return "pt_BR"
}

func (l Locale) monday() monday.Locale {
	if l == English {
		return monday.LocaleEnUS
	}
	return monday.LocalePtBR
}

type unitWords struct{ one, many string }

type relativeWords struct {
	now, yesterday, tomorrow string
	past, future             string // fmt patterns taking count and unit
	minute, hour, day        unitWords
	week, month, year        unitWords
}

var words = map[Locale]relativeWords{
	PtBR: {
		now: "agora mesmo", yesterday: "ontem", tomorrow: "amanhã",
		past: "há %d %s", future: "em %d %s",
		minute: unitWords{"minuto", "minutos"},
		hour:   unitWords{"hora", "horas"},
		day:    unitWords{"dia", "dias"},
		week:   unitWords{"semana", "semanas"},
		month:  unitWords{"mês", "meses"},
		year:   unitWords{"ano", "anos"},
	},
	English: {
		now: "just now", yesterday: "yesterday", tomorrow: "tomorrow",
		past: "%d %s ago", future: "in %d %s",
		minute: unitWords{"minute", "minutes"},
		hour:   unitWords{"hour", "hours"},
		day:    unitWords{"day", "days"},
		week:   unitWords{"week", "weeks"},
		month:  unitWords{"month", "months"},
		year:   unitWords{"year", "years"},
	},
}

var now = time.Now

// Relative describes t relative to ref ("há 5 minutos", "ontem", "in 3
// days"). A zero ref means now. Months are 30 days and years 365.
func Relative(t, ref time.Time, locale string) string {
	if ref.IsZero() {
		ref = now()
	}
	w := words[MatchLocale(locale)]

	delta := ref.Sub(t)
	future := delta < 0
	pattern := w.past
	if future {
		delta = -delta
		pattern = w.future
	}
	days := int(delta / (24 * time.Hour))
	rest := delta % (24 * time.Hour)

	phrase := func(n int, u unitWords) string {
		name := u.many
		if n == 1 {
			name = u.one
		}
		return fmt.Sprintf(pattern, n, name)
	}

	switch {
	case days == 0 && rest < time.Minute:
		return w.now
	case days == 0 && rest < time.Hour:
		return phrase(int(rest/time.Minute), w.minute)
	case days == 0:
		return phrase(int(rest/time.Hour), w.hour)
	case days == 1 && future:
		return w.tomorrow
	case days == 1:
		return w.yesterday
	case days < 7:
		return phrase(days, w.day)
	case days < 30:
		return phrase(days/7, w.week)
	case days < 365:
		return phrase(days/30, w.month)
	default:
		return phrase(days/365, w.year)
	}
}

// nameDirectives are strftime directives whose output is a word.
var nameDirectives = map[byte]string{
	'A': "Monday",
	'a': "Mon",
	'B': "January",
	'b': "Jan",
	'h': "Jan",
}

// Custom formats t with a strftime-style format, localizing month and
// weekday names.
func Custom(t time.Time, format, locale string) string {
	loc := MatchLocale(locale).monday()

	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b.WriteByte(c)
			continue
		}
		next := format[i+1]
		if layout, ok := nameDirectives[next]; ok {
			name := monday.Format(t, layout, loc)
			b.WriteString(strings.ReplaceAll(name, "%", "%%"))
		} else {
			b.WriteByte('%')
			b.WriteByte(next)
		}
		i++
	}
	return timefmt.Format(t, b.String())
}

// Natural is the long form: "25 de fevereiro de 2024" or
// "February 25, 2024", with the clock appended when includeTime is set.
func Natural(t time.Time, includeTime bool, locale string) string {
	l := MatchLocale(locale)
	var layout string
	switch {
	case l == English && includeTime:
		layout = "January 2, 2006 at 3:04:05 PM"
	case l == English:
		layout = "January 2, 2006"
	case includeTime:
		layout = "2 de January de 2006 às 15:04:05"
	default:
		layout = "2 de January de 2006"
	}
	return monday.Format(t, layout, l.monday())
}

// ISO renders ISO 8601: the full timestamp with offset, or the date alone.
func ISO(t time.Time, includeTime bool) string {
	if includeTime {
		return t.Format("2006-01-02T15:04:05.999999999Z07:00")
	}
	return t.Format(time.DateOnly)
}

// Short is the numeric form: "25/02/2024 14:30" or "2/25/24, 2:30 PM".
func Short(t time.Time, includeTime bool, locale string) string {
	if MatchLocale(locale) == English {
		if includeTime {
			return t.Format("1/2/06, 3:04 PM")
		}
		return t.Format("1/2/06")
	}
	if includeTime {
		return t.Format("02/01/2006 15:04")
	}
	return t.Format("02/01/2006")
}
