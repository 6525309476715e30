package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"smarttime/internal/period"
)

func (a *app) rangeCommand() *cobra.Command {
	var (
		noWeekends bool
		group      string
	)
	cmd := &cobra.Command{
		Use:   "range <start> <end>",
		Short: "List the calendar days from start to end",
		Long: `An inverted range prints nothing.

Examples:
  smarttime range 2024-02-25 2024-03-01
  smarttime range 2024-02-01 2024-03-31 --no-weekends --group month`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := a.parseDay(args[0])
			if err != nil {
				return err
			}
			end, err := a.parseDay(args[1])
			if err != nil {
				return err
			}
			r := period.NewDateRange(start, end, !noWeekends)

			var groups map[int][]time.Time
			switch group {
			case "":
				for d := range r.All() {
					printf(cmd, "%s\n", d.Format(time.DateOnly))
				}
				return nil
			case "week":
				groups = r.GroupByWeek()
			case "month":
				groups = r.GroupByMonth()
			default:
				return fmt.Errorf("unknown group %q (week, month)", group)
			}

			keys := make([]int, 0, len(groups))
			for k := range groups {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				days := make([]string, 0, len(groups[k]))
				for _, d := range groups[k] {
					days = append(days, d.Format(time.DateOnly))
				}
				printf(cmd, "%s %d: %s\n", group, k, strings.Join(days, " "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noWeekends, "no-weekends", false, "Skip Saturdays and Sundays")
	cmd.Flags().StringVar(&group, "group", "", "Group by week (ISO) or month")
	return cmd
}

func (a *app) mergeCommand() *cobra.Command {
	var intersect bool
	cmd := &cobra.Command{
		Use:   "merge <start/end>...",
		Short: "Merge overlapping periods",
		Long: `Each argument is an interval "start/end" (or "start--end"). Overlapping periods are joined
by union; --intersect narrows each overlapping chain to its common part
instead.

Examples:
  smarttime merge 2024-01-01/2024-01-05 2024-01-04/2024-01-11 2024-01-20/2024-01-22
  smarttime merge "2024-01-01 08:00/2024-01-01 12:00" "2024-01-01 10:00/2024-01-01 18:00" --intersect`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			periods := make([]period.TimePeriod, 0, len(args))
			for _, arg := range args {
				p, err := a.parseInterval(arg)
				if err != nil {
					return err
				}
				periods = append(periods, p)
			}

			fold := period.Merge
			if intersect {
				fold = period.IntersectChain
			}
			merged := fold(periods)
			for _, p := range merged {
				printf(cmd, "%s/%s\n", p.Start().Format(time.RFC3339), p.End().Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&intersect, "intersect", false, "Intersect overlapping chains instead of joining them")
	return cmd
}

func (a *app) periodCommand() *cobra.Command {
	var weekStart string
	cmd := &cobra.Command{
		Use:   "period <day|week|month|quarter|year> [date]",
		Short: "Show the calendar period holding a date (default today)",
		Long: `Prints the first and last day of the period and its length in days.
Weeks begin on the configured week_start unless --week-start is given.

Examples:
  smarttime period week 2024-05-15
  smarttime period quarter --week-start sunday`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			first := a.cfg.FirstWeekday()
			switch weekStart {
			case "":
			case "monday":
				first = time.Monday
			case "sunday":
				first = time.Sunday
			default:
				return fmt.Errorf("unknown week start %q (monday, sunday)", weekStart)
			}

			loc, err := a.location()
			if err != nil {
				return err
			}
			day := time.Now().In(loc)
			if len(args) == 2 {
				if day, err = a.parseTime(args[1], ""); err != nil {
					return err
				}
			}

			p, err := period.Of(period.PeriodType(args[0]), day, first)
			if err != nil {
				return err
			}
			days := period.NewDateRange(p.Start(), p.End(), true).Len()
			printf(cmd, "%s %s %d\n", p.Start().Format(time.DateOnly), p.End().Format(time.DateOnly), days)
			return nil
		},
	}
	cmd.Flags().StringVar(&weekStart, "week-start", "", "monday or sunday (default config week_start)")
	return cmd
}

func (a *app) parseInterval(s string) (period.TimePeriod, error) {
	// "--" lets day-first dates with slashes through.
	startRaw, endRaw, ok := strings.Cut(s, "--")
	if !ok {
		startRaw, endRaw, ok = strings.Cut(s, "/")
	}
	if !ok {
		return period.TimePeriod{}, fmt.Errorf("interval %q: want start/end", s)
	}
	start, err := a.parseTime(startRaw, "")
	if err != nil {
		return period.TimePeriod{}, err
	}
	end, err := a.parseTime(endRaw, "")
	if err != nil {
		return period.TimePeriod{}, err
	}
	return period.New(start, end)
}
