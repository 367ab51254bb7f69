package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "apply the embedded database migrations",
		RunE:  runMigrate,
	}
	migrateDown bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateDown, "down", "d", false, "roll back the latest migration")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(cmd.Context(), db, migrateDown); err != nil {
		return err
	}
	slog.Info("Migrations applied", "rollback", migrateDown)
	return nil
}
