package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Progress backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Player struct {
		Profile string `yaml:"profile"`
	} `yaml:"player"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Progress struct {
		Backend string `yaml:"backend"`
		SQLite  string `yaml:"sqlite"` // database file, defaults to the XDG data dir
	} `yaml:"progress"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		File string `yaml:"file"` // YAML catalog overriding the embedded one
		TTL  string `yaml:"ttl"`
	} `yaml:"catalog"`
	Quiz struct {
		Locks        *bool  `yaml:"locks"`        // nil keeps the stored setting
		InertPolicy  string `yaml:"inertPolicy"`  // "note" or "exclude"
		TickInterval string `yaml:"tickInterval"` // countdown period, default 1s
	} `yaml:"quiz"`
}

// Load reads YAML config from path and applies environment overrides. A
// missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	if cfg.Progress.Backend == "" {
		cfg.Progress.Backend = BackendSQLite
	}
	if cfg.Player.Profile == "" {
		cfg.Player.Profile = "default"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Player.Profile, "QUIZ_PROFILE")
	setString(&cfg.Log.Level, "QUIZ_LOG_LEVEL")
	setString(&cfg.Progress.Backend, "QUIZ_PROGRESS_BACKEND")
	setString(&cfg.Progress.SQLite, "QUIZ_DB")
	setString(&cfg.Redis.Addr, "QUIZ_REDIS_ADDR")
	setString(&cfg.Redis.Password, "QUIZ_REDIS_PASSWORD")
	setString(&cfg.Postgres.URL, "QUIZ_POSTGRES_URL")
	setString(&cfg.Catalog.File, "QUIZ_CATALOG_FILE")
	if v := os.Getenv("QUIZ_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("QUIZ_LOCKS"); v != "" {
		if locks, err := strconv.ParseBool(v); err == nil {
			cfg.Quiz.Locks = &locks
		}
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// LogLevel maps the configured level name to a slog level, defaulting to info.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
