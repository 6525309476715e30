package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"smarttime/internal/model"
)

// RulesSourceID marks holidays expanded from configured rules.
const RulesSourceID = "rules"

// Rule declares a recurring holiday without an ICS feed, e.g.
//
//	name: Natal
//	rrule: FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25
type Rule struct {
	Name  string `yaml:"name" json:"name" toml:"name" validate:"required"`
	RRule string `yaml:"rrule" json:"rrule" toml:"rrule" validate:"required"`
	Type  string `yaml:"type,omitempty" json:"type,omitempty" toml:"type" validate:"omitempty,oneof=national regional local"`
	// Since anchors the rule (YYYY-MM-DD). COUNT and INTERVAL are counted
	// from it. Empty means January 1st of the expansion's first year.
	Since string `yaml:"since,omitempty" json:"since,omitempty" toml:"since" validate:"omitempty,datetime=2006-01-02"`
}

// ExpandRules expands configured rules into holidays between start and end.
// An unparsable rule is an error; configuration should fail loudly.
func ExpandRules(rules []Rule, start, end time.Time) ([]model.Holiday, error) {
	events := make([]ParsedEvent, 0, len(rules))
	for i, r := range rules {
		raw := strings.TrimPrefix(strings.TrimSpace(r.RRule), "RRULE:")
		if _, err := rrule.StrToRRule(raw); err != nil {
			return nil, fmt.Errorf("holiday rule %q: %w", r.Name, err)
		}

		anchor := time.Date(model.CalendarDay(start).Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		if r.Since != "" {
			t, err := time.Parse(model.DateKey, r.Since)
			if err != nil {
				return nil, fmt.Errorf("holiday rule %q: since: %w", r.Name, err)
			}
			anchor = t
		}

		events = append(events, ParsedEvent{
			Source:   Source{ID: RulesSourceID, Type: r.Type},
			UID:      fmt.Sprintf("rule-%d", i),
			Summary:  r.Name,
			Start:    anchor,
			End:      anchor.AddDate(0, 0, 1),
			AllDay:   true,
			RawRRule: raw,
		})
	}

	res, err := ExpandHolidays(events, ExpandConfig{RangeStart: start, RangeEnd: end})
	if err != nil {
		return nil, err
	}
	return res.Holidays, nil
}
