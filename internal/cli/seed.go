package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"wahlnetz-service/internal/domain"
	"wahlnetz-service/internal/infra/file"
	pgstore "wahlnetz-service/internal/infra/postgres"
	redisrepo "wahlnetz-service/internal/infra/redis"
)

// NewSeedCmd stores a dataset YAML file in Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert a dataset file into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, path)
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "dataset YAML file (default: bundled dataset)")
	return cmd
}

func runSeed(ctx context.Context, configPath, path string) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	var ds domain.Dataset
	if path == "" {
		ds, err = file.Default()
	} else {
		ds, err = file.ReadFile(path)
	}
	if err != nil {
		return err
	}

	if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
		return err
	}
	db, err := openBunDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pgstore.NewDatasetWriter(db).Save(ctx, ds); err != nil {
		return err
	}

	// Drop the cached copy so the next read sees the new version.
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := redisrepo.NewDatasetRepository(client, nil, 0).Invalidate(ctx, ds.ID); err != nil {
			logger.Warn("dataset cache not invalidated", "dataset", ds.ID, "error", err)
		}
	}

	logger.Info("dataset seeded", "dataset", ds.ID, "questions", len(ds.Questions), "parties", len(ds.Parties))
	fmt.Printf("seeded %s\n", ds.ID)
	return nil
}
