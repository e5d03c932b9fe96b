package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/database/postgres"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
)

func newMigrateCmd(opts *RootOptions) *cobra.Command {
	var migrationsDir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(opts)
			if err != nil {
				return err
			}

			dir := migrationsDir
			if dir == "" {
				dir = cfg.Database.MigrationPath
			}
			if dir == "" {
				dir = "migrations"
			}

			conn, err := postgres.NewConnection(cfg.Database, log)
			if err != nil {
				return fmt.Errorf("connecting to postgres: %w", err)
			}
			defer conn.Close()

			if err := conn.RunMigrations(dir); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}
			log.Info("Migrations applied", logging.String("dir", dir))
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&migrationsDir, "dir", "", "migrations directory (default from config)")
	return cmd
}
