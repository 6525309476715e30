package holiday

import (
	"context"
	"errors"
	"time"

	"smarttime/internal/ics"
	appLog "smarttime/internal/log"
	"smarttime/internal/model"
)

// RefreshReport summarizes one Refresh run.
type RefreshReport struct {
	Feeds     int      `json:"feeds"`
	Failed    int      `json:"failed"`
	Expanded  int      `json:"expanded"`
	Added     int      `json:"added"`
	Truncated []string `json:"truncated,omitempty"`
}

// Refresh fetches the feeds, expands them and the rules over [start, end]
// and imports every new day. Feed failures are reported in the returned
// error but do not stop the import of the feeds that did load.
func (s *Store) Refresh(ctx context.Context, f *ics.Fetcher, feeds []ics.Source, rules []ics.Rule, start, end time.Time) (RefreshReport, error) {
	report := RefreshReport{Feeds: len(feeds)}
	var errs []error

	holidays := make([]model.Holiday, 0)

	if len(feeds) > 0 {
		results, fetchErrs := f.FetchAll(ctx, feeds)
		report.Failed = len(fetchErrs)
		errs = append(errs, fetchErrs...)

		parsed := make([]ics.ParsedEvent, 0)
		for _, res := range results {
			events, err := ics.ParseICS(res.Source, res.Body)
			if err != nil {
				report.Failed++
				errs = append(errs, err)
				continue
			}
			parsed = append(parsed, events...)
		}

		expanded, err := ics.ExpandHolidays(parsed, ics.ExpandConfig{RangeStart: start, RangeEnd: end})
		if err != nil {
			return report, err
		}
		report.Truncated = expanded.TruncatedEvents
		holidays = append(holidays, expanded.Holidays...)
	}

	if len(rules) > 0 {
		fromRules, err := ics.ExpandRules(rules, start, end)
		if err != nil {
			return report, err
		}
		holidays = append(holidays, fromRules...)
	}

	report.Expanded = len(holidays)
	added, err := s.Import(holidays)
	report.Added = added
	if err != nil {
		return report, err
	}

	appLog.Info("holiday refresh completed",
		"feeds", report.Feeds,
		"failed", report.Failed,
		"expanded", report.Expanded,
		"added", report.Added,
	)
	return report, errors.Join(errs...)
}
