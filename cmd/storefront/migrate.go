package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/repository"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply profile and outbox schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			repo, err := repository.NewSQLRepository(&cfg.DB)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.RunMigrations(&cfg.DB); err != nil {
				return err
			}
			log.Info("migrations applied",
				zap.String("driver", cfg.DB.Driver),
				zap.String("path", cfg.DB.MigrationsDirPath))
			return nil
		},
	}
}
