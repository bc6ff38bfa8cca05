package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"remote-viewing/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

const migrationsDir = "db/migrations"

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Manage the remote-viewing postgres schema",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.LoadDotEnv(".env"); err != nil {
			slog.Info("failed to load .env", "error", err)
		}
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newMigrate()
		if err != nil {
			return err
		}
		defer m.Close()
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("database migration failed: %w", err)
		}
		slog.Info("database migrations applied")
		return nil
	},
}

var downCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations, one step by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			value, err := strconv.Atoi(args[0])
			if err != nil || value <= 0 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = value
		}
		m, err := newMigrate()
		if err != nil {
			return err
		}
		defer m.Close()
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("rollback failed: %w", err)
		}
		slog.Info("database migrations rolled back", "steps", steps)
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Write an empty up/down migration pair",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if strings.ContainsAny(name, " /") {
			return errors.New("migration name must not contain spaces or slashes")
		}
		version := time.Now().UTC().Format("20060102150405")
		base := fmt.Sprintf("%s_%s", version, name)
		upPath := filepath.Join(migrationsDir, base+".up.sql")
		downPath := filepath.Join(migrationsDir, base+".down.sql")

		if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
			return fmt.Errorf("create migrations dir: %w", err)
		}
		if err := writeNewFile(upPath, "-- up migration\n"); err != nil {
			return fmt.Errorf("create up migration: %w", err)
		}
		if err := writeNewFile(downPath, "-- down migration\n"); err != nil {
			return fmt.Errorf("create down migration: %w", err)
		}
		slog.Info("created migration", "up", upPath, "down", downPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(createCmd)
}

func main() {
	config.SetupLogger(slog.LevelInfo)
	if err := rootCmd.Execute(); err != nil {
		slog.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func newMigrate() (*migrate.Migrate, error) {
	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	m, err := migrate.New("file://"+migrationsDir, dsn)
	if err != nil {
		return nil, fmt.Errorf("migration setup failed: %w", err)
	}
	return m, nil
}

func writeNewFile(path, contents string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = file.WriteString(contents)
	return err
}
