package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"smarttime/internal/convert"
	"smarttime/internal/format"
	"smarttime/internal/timeops"
)

func (a *app) parseCommand() *cobra.Command {
	var layout, output string
	cmd := &cobra.Command{
		Use:   "parse <value>",
		Short: "Parse a date/time string",
		Long: `Parses a date or timestamp. Without --format the layout is detected
automatically, including day-first forms like 25/02/2024.

Examples:
  smarttime parse "2024-02-25 14:30:00"
  smarttime parse "25/02/2024" --output "%A, %d %B %Y"
  smarttime parse "25.02.2024 14:30" --format "%d.%m.%Y %H:%M" --tz Europe/Berlin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.parseTime(args[0], layout)
			if err != nil {
				return err
			}
			if output != "" {
				printf(cmd, "%s\n", format.Custom(t, output, a.cfg.Locale))
				return nil
			}
			printf(cmd, "%s\n", t.Format(time.RFC3339Nano))
			return nil
		},
	}
	cmd.Flags().StringVarP(&layout, "format", "f", "", "strftime input format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "strftime output format (default RFC 3339)")
	return cmd
}

func (a *app) formatCommand() *cobra.Command {
	var (
		style, pattern, locale, ref string
		withTime                    bool
	)
	cmd := &cobra.Command{
		Use:   "format <value>",
		Short: "Render a time as relative, natural, short, ISO or custom text",
		Long: `Examples:
  smarttime format 2024-02-20 --style relative
  smarttime format "2024-02-25 14:30" --style natural --time --locale en
  smarttime format 2024-02-25 --style custom --pattern "%d de %B de %Y"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.parseTime(args[0], "")
			if err != nil {
				return err
			}
			if locale == "" {
				locale = a.cfg.Locale
			}

			switch style {
			case "relative":
				var r time.Time
				if ref != "" {
					if r, err = a.parseTime(ref, ""); err != nil {
						return err
					}
				}
				printf(cmd, "%s\n", format.Relative(t, r, locale))
			case "natural":
				printf(cmd, "%s\n", format.Natural(t, withTime, locale))
			case "short":
				printf(cmd, "%s\n", format.Short(t, withTime, locale))
			case "iso":
				printf(cmd, "%s\n", format.ISO(t, withTime))
			case "custom":
				if pattern == "" {
					pattern = a.cfg.DateFormat
				}
				printf(cmd, "%s\n", format.Custom(t, pattern, locale))
			default:
				return fmt.Errorf("unknown style %q (relative, natural, short, iso, custom)", style)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "custom", "relative, natural, short, iso or custom")
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "strftime pattern for --style custom (default config date_format)")
	cmd.Flags().StringVarP(&locale, "locale", "l", "", "Output locale (default config locale)")
	cmd.Flags().StringVar(&ref, "ref", "", "Reference time for --style relative (default now)")
	cmd.Flags().BoolVar(&withTime, "time", false, "Include the clock")
	return cmd
}

func (a *app) addCommand() *cobra.Command {
	var (
		d      timeops.Delta
		output string
	)
	cmd := &cobra.Command{
		Use:   "add <value>",
		Short: "Add (or with negative values subtract) a calendar delta",
		Long: `Months clamp to the end of the target month: 2024-01-31 plus one month
is 2024-02-29.

Examples:
  smarttime add 2024-01-31 --months 1
  smarttime add "2024-02-25 14:30" --days -3 --hours 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.parseTime(args[0], "")
			if err != nil {
				return err
			}
			res := timeops.Add(t, d)
			if output != "" {
				printf(cmd, "%s\n", convert.TimeToString(res, output))
				return nil
			}
			printf(cmd, "%s\n", res.Format(time.RFC3339Nano))
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&d.Years, "years", 0, "Years")
	f.IntVar(&d.Months, "months", 0, "Months")
	f.IntVar(&d.Days, "days", 0, "Days")
	f.IntVar(&d.Hours, "hours", 0, "Hours")
	f.IntVar(&d.Minutes, "minutes", 0, "Minutes")
	f.IntVar(&d.Seconds, "seconds", 0, "Seconds")
	f.StringVarP(&output, "output", "o", "", "strftime output format (default RFC 3339)")
	return cmd
}

func (a *app) diffCommand() *cobra.Command {
	var unit string
	cmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Difference between two times in a unit",
		Long: `Units: seconds, minutes, hours, days, weeks, months, years.

Examples:
  smarttime diff 2024-02-25 2024-03-01
  smarttime diff 2020-05-01 2024-02-25 --unit years`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := a.parseTime(args[0], "")
			if err != nil {
				return err
			}
			y, err := a.parseTime(args[1], "")
			if err != nil {
				return err
			}
			v, err := timeops.Difference(x, y, unit)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", strconv.FormatFloat(v, 'f', -1, 64))
			return nil
		},
	}
	cmd.Flags().StringVarP(&unit, "unit", "u", "days", "Result unit")
	return cmd
}
