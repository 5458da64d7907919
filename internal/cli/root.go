// Package cli defines the cobra command tree for maintctl.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"khrental/internal/config"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "maintctl",
		Short:         "Operate the maintenance request service",
		Long:          "Apply schema migrations, inspect maintenance requests and mint access tokens for support work.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "postgres DSN (default: $DATABASE_URL)")

	root.AddCommand(
		newMigrateCmd(),
		newShowCmd(),
		newTokenCmd(),
	)

	return root
}

func loadConfig() *config.Config {
	cfg := config.Load()
	if flagDB != "" {
		cfg.DatabaseURL = flagDB
	}
	config.SetupLogging(cfg)
	return cfg
}

func openDB(cfg *config.Config) (*sqlx.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("no database configured: set DATABASE_URL or pass --db")
	}
	return config.NewPostgresDB(cfg)
}

func closeDB(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		slog.Warn("closing database", "error", err)
	}
}

func isJSON() bool {
	return flagFormat == "json"
}
