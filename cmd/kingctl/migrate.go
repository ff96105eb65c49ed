package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sitesmith/internal/adapters/postgres"
	"sitesmith/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil && !errors.Is(err, config.ErrNoDatabaseURL) {
				return err
			}
			if cfg.DatabaseURL == "" {
				return config.ErrNoDatabaseURL
			}
			db, err := postgres.Connect(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer db.Close()
			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
