package main

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/seed"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var (
		file         string
		skipProfiles bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories, products, delivery options and profiles from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			data, err := seed.Load(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
			if err != nil {
				return err
			}
			defer mongoDB.Client().Disconnect(ctx) //nolint:errcheck
			if err := repository.EnsureIndexes(ctx, mongoDB); err != nil {
				return err
			}

			var profiles seed.ProfileWriter
			if !skipProfiles {
				repo, err := repository.NewSQLRepository(&cfg.DB)
				if err != nil {
					return err
				}
				defer repo.Close()
				if err := repo.RunMigrations(&cfg.DB); err != nil {
					return err
				}
				profiles = repo
			}

			counts, err := seed.Apply(ctx, data, repository.NewMongoCatalogRepository(mongoDB), profiles, time.Now().UTC())
			if err != nil {
				return err
			}

			// running servers would otherwise keep serving the old options
			redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
			defer redisClient.Close()
			if err := cache.NewRedisCache(redisClient).InvalidateOptions(ctx); err != nil {
				log.Warn("failed to invalidate delivery options cache", zap.Error(err))
			}

			log.Info("seed applied",
				zap.String("file", file),
				zap.Int("categories", counts.Categories),
				zap.Int("products", counts.Products),
				zap.Int("delivery_options", counts.DeliveryOptions),
				zap.Int("profiles", counts.Profiles))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "configs/catalog.yaml", "seed file")
	cmd.Flags().BoolVar(&skipProfiles, "skip-profiles", false, "do not touch the profile database")
	return cmd
}
