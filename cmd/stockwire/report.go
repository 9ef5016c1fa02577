package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zappabad/stockwire/internal/config"
	"github.com/zappabad/stockwire/internal/report"
)

func newReportCmd(getConfig func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a market report",
		Long: `Seeds a desk, publishes the whole news script and prints the resulting
instruments, sector averages, feed and recommendations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			raw, _ := cmd.Flags().GetBool("raw")
			width, _ := cmd.Flags().GetInt("width")
			restore, _ := cmd.Flags().GetBool("restore")
			sortByDate, _ := cmd.Flags().GetBool("by-date")

			d, err := newSeededDesk()
			if err != nil {
				return err
			}
			defer d.Close()

			if restore {
				err = restoreSnapshot(cmd.Context(), cfg, d)
			} else {
				err = publishScript(d)
			}
			if err != nil {
				return err
			}
			if sortByDate {
				d.News.SortByDate()
			}

			md := report.Markdown(d, cfg.Currency)
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			out, err := report.Render(md, width)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().Bool("raw", false, "Print markdown without terminal rendering")
	cmd.Flags().Int("width", 100, "Wrap width of the rendered report")
	cmd.Flags().Bool("restore", false, "Report on the Redis snapshot instead of the seeded script")
	cmd.Flags().Bool("by-date", false, "List the feed by date instead of impact")
	return cmd
}

func newAdviseCmd(getConfig func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advise TICKER",
		Short: "Recommend whether to buy an instrument",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			asJSON, _ := cmd.Flags().GetBool("json")

			d, err := newSeededDesk()
			if err != nil {
				return err
			}
			defer d.Close()

			if err := publishScript(d); err != nil {
				return err
			}

			adv, err := d.Advise(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(adv)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %s\n", adv.Ticker, adv.Action)
			fmt.Fprintf(w, "  price           %s\n", report.FormatMoney(adv.Price, cfg.Currency))
			fmt.Fprintf(w, "  moving average  %s\n", report.FormatMoney(adv.MovingAverage, cfg.Currency))
			fmt.Fprintf(w, "  uptrend         %t\n", adv.Trend)
			if adv.Trend {
				fmt.Fprintf(w, "  positive news   %t\n", adv.PositiveNews)
			} else {
				fmt.Fprintf(w, "  volatility      %.2f%%\n", adv.VolatilityPct)
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print the advice as JSON")
	return cmd
}
