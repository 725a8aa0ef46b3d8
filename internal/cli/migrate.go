package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"periodic-quiz/internal/catalog"
	"periodic-quiz/internal/config"
	"periodic-quiz/internal/domain"
	"periodic-quiz/internal/infra/memory"
	pgstore "periodic-quiz/internal/infra/postgres"
	redisstore "periodic-quiz/internal/infra/redis"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run catalog database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runMigrations(cmd.Context(), cfg, logger)
		},
	}
}

func runMigrations(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	db := pgstore.OpenDB(cfg.Postgres.URL)
	defer db.Close()

	group, err := pgstore.Migrate(ctx, db)
	if err != nil {
		return err
	}
	if group.IsZero() {
		logger.Info("no new migrations")
		return nil
	}
	logger.Info("migrations applied", "group", group.String())
	return nil
}

// NewSeedCmd migrates and loads a catalog into Postgres, then drops the
// cached copy in Redis.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the catalog (embedded or catalog.file) into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if err := runMigrations(ctx, cfg, logger); err != nil {
				return err
			}

			c, err := seedSource(cfg)
			if err != nil {
				return err
			}
			db := pgstore.OpenDB(cfg.Postgres.URL)
			defer db.Close()
			if err := pgstore.Seed(ctx, db, c); err != nil {
				return err
			}
			logger.Info("catalog seeded", "items", len(c.Items), "compounds", len(c.Compounds))

			if client := newRedisClient(cfg); client != nil {
				defer client.Close()
				repo := redisstore.NewCatalogRepository(client, memory.NewStaticCatalogLoader(c), 0, logger)
				if err := repo.Invalidate(ctx); err != nil {
					logger.Warn("catalog cache invalidation failed", "error", err)
				}
			}
			return nil
		},
	}
}

func seedSource(cfg config.Config) (domain.Catalog, error) {
	if cfg.Catalog.File != "" {
		return catalog.LoadFile(cfg.Catalog.File)
	}
	return catalog.Default()
}
