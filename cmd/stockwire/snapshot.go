package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zappabad/stockwire/internal/config"
	"github.com/zappabad/stockwire/internal/desk"
	"github.com/zappabad/stockwire/internal/storage/cache"
	"github.com/zappabad/stockwire/pkg/logger"
)

var errNoRedis = errors.New("REDIS_URL is not set")

func openSnapshotStore(cfg *config.Config) (*cache.SnapshotStore, error) {
	if cfg.RedisURL == "" {
		return nil, errNoRedis
	}
	return cache.NewSnapshotStore(cfg)
}

// restoreSnapshot replaces the state of d with the stored snapshot.
func restoreSnapshot(ctx context.Context, cfg *config.Config, d *desk.Desk) error {
	store, err := openSnapshotStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if err := d.Restore(snap); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	logger.Info("desk restored",
		zap.Int("instruments", len(snap.Instruments)),
		zap.Int("news", len(snap.News)),
	)
	return nil
}

func newSnapshotCmd(getConfig func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save or inspect the desk snapshot in Redis",
	}

	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Seed a desk, publish the news script and store the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			store, err := openSnapshotStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			d, err := newSeededDesk()
			if err != nil {
				return err
			}
			defer d.Close()

			if publish, _ := cmd.Flags().GetBool("publish"); publish {
				if err := publishScript(d); err != nil {
					return err
				}
			}

			snap := d.Snapshot()
			if err := store.Save(cmd.Context(), snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d instruments and %d news items under %s\n",
				len(snap.Instruments), len(snap.News), cfg.SnapshotKey)
			return nil
		},
	}
	saveCmd.Flags().Bool("publish", true, "Publish the seeded news script before saving")

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Load the stored snapshot into a desk and summarize it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()

			d, err := newSeededDesk()
			if err != nil {
				return err
			}
			defer d.Close()

			if err := restoreSnapshot(cmd.Context(), cfg, d); err != nil {
				return err
			}

			order := "impact"
			if d.News.ByDate() {
				order = "date"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d instruments, %d news items ordered by %s, crisis alert: %t\n",
				d.Market.Len(), d.News.Len(), order, d.News.CrisisAlert())
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSnapshotStore(getConfig())
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Delete(cmd.Context())
		},
	}

	cmd.AddCommand(saveCmd, loadCmd, deleteCmd)
	return cmd
}
