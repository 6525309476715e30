package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"smarttime/internal/convert"
	"smarttime/internal/tz"
)

func (a *app) tzCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tz",
		Short: "Timezone lookups and conversion",
	}
	cmd.AddCommand(a.tzInfoCommand(), a.tzConvertCommand(), a.tzListCommand())
	return cmd
}

func (a *app) tzInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info [zone]",
		Short: "Offset, abbreviation and current time of a zone (default: local)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := tz.Local()
			if len(args) == 1 {
				name = args[0]
			}
			info, err := tz.Info(name)
			if err != nil {
				return err
			}
			printf(cmd, "name:         %s\n", info.Name)
			printf(cmd, "offset:       %+g\n", info.OffsetHours)
			printf(cmd, "abbreviation: %s\n", info.Abbreviation)
			printf(cmd, "dst:          %t\n", info.IsDST)
			printf(cmd, "now:          %s\n", info.CurrentTime)
			return nil
		},
	}
}

func (a *app) tzConvertCommand() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "convert <value>",
		Short: "Convert a wall-clock time between zones",
		Long: `Examples:
  smarttime tz convert "2024-02-25 14:30" --from America/Sao_Paulo --to Asia/Tokyo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				from = a.cfg.Timezone
			}
			// Parsed as a naive UTC reading; Convert re-anchors it in from.
			t, err := convert.ParseAny(args[0])
			if err != nil {
				return err
			}
			out, err := tz.Convert(t, from, to)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", out.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source zone (default config timezone)")
	cmd.Flags().StringVar(&to, "to", "UTC", "Target zone")
	return cmd
}

func (a *app) tzListCommand() *cobra.Command {
	var (
		offset    float64
		hasOffset bool
		filter    string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known zones, optionally by UTC offset or name fragment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hasOffset = cmd.Flags().Changed("offset")
			names := tz.Available()
			if hasOffset {
				names = tz.ByOffset(offset)
			}
			for _, n := range names {
				if filter != "" && !strings.Contains(strings.ToLower(n), strings.ToLower(filter)) {
					continue
				}
				printf(cmd, "%s\n", n)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&offset, "offset", 0, "Only zones currently at this UTC offset in hours, e.g. -3 or 5.5")
	cmd.Flags().StringVar(&filter, "filter", "", "Case-insensitive name fragment")
	return cmd
}
