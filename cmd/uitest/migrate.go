package main

import (
	"fmt"

	"github.com/hairizuan-noorazman/ui-bdd/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "History database migration commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			db, err := a.openHistory(false)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get database instance: %w", err)
			}

			if err := database.RunMigrations(sqlDB, a.cfg.History.Driver); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			version, _, err := database.Version(sqlDB, a.cfg.History.Driver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied successfully (version %d)\n", version)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			db, err := a.openHistory(false)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get database instance: %w", err)
			}

			if err := database.RollbackMigration(sqlDB, a.cfg.History.Driver); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Migration rolled back successfully")
			return nil
		},
	})

	return cmd
}
