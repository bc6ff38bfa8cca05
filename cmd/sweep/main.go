package main

import (
	"fmt"
	"log/slog"
	"os"

	"remote-viewing/internal/config"
	"remote-viewing/internal/db"
	"remote-viewing/internal/viewing"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "sweep",
	Short:         "Run the retention sweeps against the configured database",
	SilenceErrors: true,
	SilenceUsage:  true,
}

var expiredCmd = &cobra.Command{
	Use:   "expired",
	Short: "Delete rounds rated 1 that are older than the retention window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sweeper, err := newSweeper()
		if err != nil {
			return err
		}
		slog.Info("sweeping expired rounds", "cutoff", sweeper.Cutoff())
		deleted, err := sweeper.PurgeExpired(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired rounds\n", deleted)
		return nil
	},
}

var incompleteCmd = &cobra.Command{
	Use:   "incomplete",
	Short: "Delete rounds that never received a guess",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sweeper, err := newSweeper()
		if err != nil {
			return err
		}
		deleted, err := sweeper.PurgeIncomplete(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d incomplete rounds\n", deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(expiredCmd)
	rootCmd.AddCommand(incompleteCmd)
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Info("failed to load .env", "error", err)
	}
	if err := rootCmd.Execute(); err != nil {
		slog.Error("sweep failed", "error", err)
		os.Exit(1)
	}
}

func newSweeper() (*viewing.Sweeper, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	config.SetupLogger(cfg.LogLevel)
	conn, err := db.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return viewing.NewSweeper(&viewing.SweeperConfig{
		Store:           viewing.NewGormStore(conn, cfg.Location),
		Location:        cfg.Location,
		RetentionWindow: cfg.RetentionWindow,
	}), nil
}
