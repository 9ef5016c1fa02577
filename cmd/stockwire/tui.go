package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zappabad/stockwire/internal/config"
	"github.com/zappabad/stockwire/internal/engine"
	"github.com/zappabad/stockwire/internal/seed"
	"github.com/zappabad/stockwire/pkg/logger"
	"github.com/zappabad/stockwire/tui"
)

func newTUICmd(getConfig func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal dashboard",
		Long: `Runs the dashboard over the seeded desk. The news script is replayed one
item per SIM_INTERVAL; space pauses it and n publishes the next item.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			noSim, _ := cmd.Flags().GetBool("no-sim")
			restore, _ := cmd.Flags().GetBool("restore")

			d, err := newSeededDesk()
			if err != nil {
				return err
			}
			defer d.Close()

			if restore {
				if err := restoreSnapshot(cmd.Context(), cfg, d); err != nil {
					return err
				}
			}

			opts := tui.Options{Currency: cfg.Currency, SimInterval: cfg.SimInterval}
			if !noSim {
				script, err := seed.News()
				if err != nil {
					return fmt.Errorf("load seed news: %w", err)
				}
				opts.Simulation = engine.NewSimulation(d, script)
			}

			logger.Info("starting dashboard", zap.Int("instruments", d.Market.Len()), zap.Bool("simulation", !noSim))

			p := tea.NewProgram(tui.NewModel(d, opts), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run dashboard: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().Bool("no-sim", false, "Do not replay the news script")
	cmd.Flags().Bool("restore", false, "Restore the desk from the Redis snapshot first")
	return cmd
}
