package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"periodic-quiz/internal/app"
	"periodic-quiz/internal/config"
	"periodic-quiz/internal/infra/memory"
	pgloader "periodic-quiz/internal/infra/postgres"
	redisstore "periodic-quiz/internal/infra/redis"
	"periodic-quiz/internal/infra/sqlite"
	"periodic-quiz/internal/progress"
	"periodic-quiz/internal/questiongen"
)

// runtime bundles an engine with the connections it was built on.
type runtime struct {
	engine  *app.Engine
	closers []func()
}

func (r *runtime) Close() {
	if r.engine != nil {
		r.engine.Close()
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// buildEngine wires catalog source, cache, progress backend and engine from cfg.
func buildEngine(ctx context.Context, cfg config.Config, logger *slog.Logger) (*runtime, error) {
	rt := &runtime{}
	fail := func(err error) (*runtime, error) {
		rt.Close()
		return nil, err
	}

	redisClient := newRedisClient(cfg)
	if redisClient != nil {
		rt.closers = append(rt.closers, func() { _ = redisClient.Close() })
	}

	var loader memory.CatalogLoader = memory.EmbeddedCatalogLoader{}
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fail(fmt.Errorf("connect postgres: %w", err))
		}
		rt.closers = append(rt.closers, pool.Close)
		loader = pgloader.NewCatalogLoader(pool)
	case cfg.Catalog.File != "":
		loader = memory.FileCatalogLoader{Path: cfg.Catalog.File}
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogs app.CatalogRepository
	if redisClient != nil {
		catalogs = redisstore.NewCatalogRepository(redisClient, loader, catalogTTL, logger)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var kv progress.KV
	switch cfg.Progress.Backend {
	case config.BackendMemory:
		kv = memory.NewKVStore()
	case config.BackendRedis:
		if redisClient == nil {
			return fail(fmt.Errorf("progress backend redis needs redis.addr"))
		}
		kv = redisstore.NewKVStore(redisClient, cfg.Player.Profile)
	case config.BackendSQLite:
		path := cfg.Progress.SQLite
		if path == "" {
			p, err := sqlite.DefaultDBPath()
			if err != nil {
				return fail(err)
			}
			path = p
		}
		store, err := sqlite.Open(path, cfg.Player.Profile)
		if err != nil {
			return fail(err)
		}
		rt.closers = append(rt.closers, func() { _ = store.Close() })
		kv = store
	default:
		return fail(fmt.Errorf("unknown progress backend %q", cfg.Progress.Backend))
	}

	opts := []app.Option{
		app.WithLogger(logger),
		app.WithTickInterval(config.TTLDuration(cfg.Quiz.TickInterval, time.Second)),
	}
	if cfg.Quiz.InertPolicy == "exclude" {
		opts = append(opts, app.WithGeneratorOptions(questiongen.WithInertPolicy(questiongen.InertExclude)))
	}

	engine, err := app.NewEngine(ctx, catalogs, progress.NewStore(kv, logger), opts...)
	if err != nil {
		return fail(err)
	}
	rt.engine = engine
	if cfg.Quiz.Locks != nil {
		engine.SetLocks(ctx, *cfg.Quiz.Locks)
	}
	logger.Debug("engine ready", "profile", cfg.Player.Profile, "backend", cfg.Progress.Backend)
	return rt, nil
}

// withEngine loads config, builds the engine and runs fn against it.
func withEngine(ctx context.Context, path string, fn func(ctx context.Context, engine *app.Engine) error) error {
	cfg, logger, err := loadConfig(path)
	if err != nil {
		return err
	}
	rt, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt.engine)
}
