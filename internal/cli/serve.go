package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"smarttime/internal/holiday"
	"smarttime/internal/ics"
	appLog "smarttime/internal/log"
	"smarttime/internal/web"
)

func (a *app) serveCommand() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled holiday refresh",
		Long: `Serves the JSON API on the configured listen address. When holiday feeds
or rules are configured they are imported at startup and again on the
refresh cron schedule, covering the current and next year.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen != "" {
				a.cfg.Listen = listen
			}

			appLog.Info("effective config",
				"listen", a.cfg.Listen,
				"timezone", a.cfg.Timezone,
				"locale", a.cfg.Locale,
				"holidays_path", a.cfg.HolidaysPath,
				"refresh", a.cfg.RefreshCron,
				"feed_count", len(a.cfg.HolidayFeeds),
				"rule_count", len(a.cfg.HolidayRules),
			)

			// Root context with cancellation on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := a.openStore()
			if err != nil {
				return err
			}

			sched, err := a.startRefresh(ctx, store)
			if err != nil {
				return err
			}
			if sched != nil {
				defer func() { <-sched.Stop().Done() }()
			}

			err = web.NewServer(a.cfg, store).ListenAndServe(ctx)
			appLog.Info("smarttime exiting")
			return err
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	return cmd
}

// startRefresh imports feeds once in the background and schedules repeats.
// It returns nil when there is nothing to refresh.
func (a *app) startRefresh(ctx context.Context, store *holiday.Store) (*cron.Cron, error) {
	if len(a.cfg.HolidayFeeds) == 0 && len(a.cfg.HolidayRules) == 0 {
		return nil, nil
	}

	fetcher := ics.NewFetcher(a.cfg.CacheDir)
	refresh := func() {
		start, end := yearWindow(time.Now().Year(), 2)
		if _, err := store.Refresh(ctx, fetcher, a.cfg.HolidayFeeds, a.cfg.HolidayRules, start, end); err != nil {
			appLog.Error("scheduled holiday refresh failed", err)
		}
	}

	go refresh()
	if a.cfg.RefreshCron == "" {
		return nil, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(a.cfg.RefreshCron, refresh); err != nil {
		return nil, err
	}
	c.Start()
	appLog.Info("holiday refresh scheduled", "cron", a.cfg.RefreshCron)
	return c, nil
}
