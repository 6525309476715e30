package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"smarttime/internal/ics"
	"smarttime/internal/model"
)

func (a *app) holidaysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Manage the holiday calendar",
		Long: `The holiday calendar is a JSON file (config holidays_path) keyed by date.
It can be edited by hand, filled from iCalendar feeds and recurrence rules,
and exported as .ics.`,
	}
	cmd.AddCommand(
		a.holidaysListCommand(),
		a.holidaysAddCommand(),
		a.holidaysRemoveCommand(),
		a.holidaysImportCommand(),
		a.holidaysExportCommand(),
		a.holidaysWorkingDaysCommand(),
	)
	return cmd
}

func (a *app) holidaysListCommand() *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List holidays, optionally for one year or month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if month < 0 || month > 12 {
				return fmt.Errorf("month must be 1-12, got %d", month)
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			list := store.List(year, time.Month(month))
			if len(list) == 0 {
				printf(cmd, "no holidays\n")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tNAME\tTYPE\tSOURCE")
			for _, h := range list {
				src := h.SourceID
				if src == "" {
					src = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", h.Key, h.Name, h.Type, src)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Only this year")
	cmd.Flags().IntVar(&month, "month", 0, "Only this month (1-12)")
	return cmd
}

func (a *app) holidaysAddCommand() *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "add <date> <name>",
		Short: "Add a holiday",
		Long: `Examples:
  smarttime holidays add 2024-11-20 "Consciência Negra" --type regional`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.parseDay(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			added, err := store.Add(day, args[1], model.HolidayType(typ))
			if err != nil {
				return err
			}
			if !added {
				printf(cmd, "%s already has a holiday\n", day.Format(model.DateKey))
				return nil
			}
			printf(cmd, "added %s %s\n", day.Format(model.DateKey), args[1])
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", string(model.HolidayNational), "national, regional or local")
	return cmd
}

func (a *app) holidaysRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <date>",
		Short: "Remove the holiday on a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.parseDay(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			removed, err := store.Remove(day)
			if err != nil {
				return err
			}
			if !removed {
				printf(cmd, "no holiday on %s\n", day.Format(model.DateKey))
				return nil
			}
			printf(cmd, "removed %s\n", day.Format(model.DateKey))
			return nil
		},
	}
}

// yearWindow spans January 1st of year through December 31st of the last
// of n years.
func yearWindow(year, n int) (time.Time, time.Time) {
	if year == 0 {
		year = time.Now().Year()
	}
	if n < 1 {
		n = 1
	}
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year+n-1, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func (a *app) holidaysImportCommand() *cobra.Command {
	var (
		from, typ   string
		year, years int
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import holidays from an .ics file or the configured feeds and rules",
		Long: `Existing dates are never overwritten.

Examples:
  smarttime holidays import --from feriados.ics --year 2024
  smarttime holidays import --config smarttime.yaml --years 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			start, end := yearWindow(year, years)

			if from == "" {
				fetcher := ics.NewFetcher(a.cfg.CacheDir)
				report, err := store.Refresh(cmd.Context(), fetcher, a.cfg.HolidayFeeds, a.cfg.HolidayRules, start, end)
				printf(cmd, "feeds %d, failed %d, expanded %d, added %d\n", report.Feeds, report.Failed, report.Expanded, report.Added)
				return err
			}

			body, err := os.ReadFile(from)
			if err != nil {
				return err
			}
			events, err := ics.ParseICS(ics.Source{ID: from, Type: typ}, body)
			if err != nil {
				return err
			}
			res, err := ics.ExpandHolidays(events, ics.ExpandConfig{RangeStart: start, RangeEnd: end})
			if err != nil {
				return err
			}
			added, err := store.Import(res.Holidays)
			if err != nil {
				return err
			}
			printf(cmd, "expanded %d, added %d\n", len(res.Holidays), added)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Local .ics file (default: configured feeds and rules)")
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Type for events without CATEGORIES")
	cmd.Flags().IntVar(&year, "year", 0, "First year to expand (default current)")
	cmd.Flags().IntVar(&years, "years", 1, "Number of years to expand")
	return cmd
}

func (a *app) holidaysExportCommand() *cobra.Command {
	var (
		year int
		out  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export holidays as iCalendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			body := ics.ExportICS(store.List(year, 0), "smarttime holidays", time.Now())
			if out == "" || out == "-" {
				printf(cmd, "%s", body)
				return nil
			}
			return os.WriteFile(out, []byte(body), 0o644)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Only this year")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func (a *app) holidaysWorkingDaysCommand() *cobra.Command {
	var business bool
	cmd := &cobra.Command{
		Use:   "working-days <start> <end>",
		Short: "Count non-holiday days between two dates, inclusive",
		Long: `Weekends count as working days unless --business is set.

Examples:
  smarttime holidays working-days 2024-02-01 2024-02-29 --business`,
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
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if business {
				printf(cmd, "%d\n", store.BusinessDays(start, end))
				return nil
			}
			printf(cmd, "%d\n", store.WorkingDays(start, end))
			return nil
		},
	}
	cmd.Flags().BoolVar(&business, "business", false, "Also skip weekends")
	return cmd
}
