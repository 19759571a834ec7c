package main

import (
	"log/slog"

	"userpost-service/configs"
	"userpost-service/internal/migrate"
	"userpost-service/internal/shared/db"

	"github.com/spf13/cobra"
)

func newMigrateCmd(cfg *configs.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the users and posts tables if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := db.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := migrate.AutoMigrateAll(store); err != nil {
				return err
			}
			slog.Info("migrated", "db", cfg.DBDriver)
			return nil
		},
	}
}
