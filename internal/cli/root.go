// Package cli wires the smarttime command tree.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"smarttime/internal/config"
	"smarttime/internal/convert"
	"smarttime/internal/holiday"
	appLog "smarttime/internal/log"
	"smarttime/internal/tz"
)

// app carries state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool
	zone       string

	cfg *config.Config
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "smarttime",
		Short: "Dates, periods, holidays and timezones",
		Long: `smarttime parses and formats dates, does calendar arithmetic, merges
time periods, keeps a holiday calendar and converts between timezones.

Examples:
  smarttime parse "25/02/2024 14:30"
  smarttime range 2024-02-25 2024-03-01 --no-weekends
  smarttime merge 2024-01-01/2024-01-05 2024-01-04/2024-01-11
  smarttime period week 2024-05-15
  smarttime holidays working-days 2024-02-01 2024-02-29
  smarttime serve --config ./smarttime.yaml`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (.yaml or .toml); defaults plus SMARTTIME_* env when empty")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging")
	root.PersistentFlags().StringVar(&a.zone, "tz", "", "Timezone for zone-less input (default: config timezone)")

	root.AddCommand(
		a.parseCommand(),
		a.formatCommand(),
		a.addCommand(),
		a.diffCommand(),
		a.rangeCommand(),
		a.mergeCommand(),
		a.periodCommand(),
		a.holidaysCommand(),
		a.tzCommand(),
		a.serveCommand(),
		versionCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.Load(a.configPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := appLog.ParseLevel(cfg.LogLevel)
	if a.verbose {
		level = appLog.LevelDebug
	}
	appLog.Configure(cmd.ErrOrStderr(), cfg.LogFormat, level)
	return nil
}

// location is the zone zone-less input is read in.
func (a *app) location() (*time.Location, error) {
	name := a.zone
	if name == "" {
		name = a.cfg.Timezone
	}
	return tz.Load(name)
}

// parseTime parses s with format, or auto-detects when format is empty.
func (a *app) parseTime(s, format string) (time.Time, error) {
	loc, err := a.location()
	if err != nil {
		return time.Time{}, err
	}
	if format != "" {
		return convert.StringToTimeIn(s, format, loc)
	}
	return convert.ParseAnyIn(s, loc)
}

func (a *app) parseDay(s string) (time.Time, error) {
	t, err := a.parseTime(s, "")
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func (a *app) openStore() (*holiday.Store, error) {
	return holiday.Open(a.cfg.HolidaysPath)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
