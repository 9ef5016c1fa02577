package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zappabad/stockwire/internal/config"
	"github.com/zappabad/stockwire/internal/desk"
	"github.com/zappabad/stockwire/internal/seed"
	"github.com/zappabad/stockwire/pkg/logger"
)

func main() {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:   "stockwire",
		Short: "Market news desk",
		Long: `stockwire keeps a registry of listed instruments and an impact-ordered
news feed. Every published item moves the prices of its sector.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			// The dashboard owns the terminal, so it logs to a file.
			if cmd.Name() == "tui" {
				return logger.InitFile(cfg.LogLevel, cfg.LogFile)
			}
			return logger.Init(cfg.LogLevel, cfg.Development())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
	}

	getConfig := func() *config.Config { return cfg }

	rootCmd.AddCommand(
		newTUICmd(getConfig),
		newServeCmd(getConfig),
		newReportCmd(getConfig),
		newAdviseCmd(getConfig),
		newSnapshotCmd(getConfig),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newSeededDesk builds a desk over the embedded instruments.
func newSeededDesk() (*desk.Desk, error) {
	records, err := seed.Instruments()
	if err != nil {
		return nil, fmt.Errorf("load seed instruments: %w", err)
	}
	dcfg := desk.DefaultConfig()
	dcfg.Instruments = records
	return desk.NewDesk(dcfg)
}

// publishScript publishes every scripted item at once, for commands that do
// not run the simulation clock.
func publishScript(d *desk.Desk) error {
	script, err := seed.News()
	if err != nil {
		return fmt.Errorf("load seed news: %w", err)
	}
	for _, it := range script {
		if _, err := d.Publish(it); err != nil {
			return fmt.Errorf("publish %q: %w", it.Title, err)
		}
	}
	return nil
}
