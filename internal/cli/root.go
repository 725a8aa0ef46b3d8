package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"periodic-quiz/internal/config"
)

var (
	configPath string
	profile    string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "periodic-quiz",
		Short:        "Adaptive periodic table quiz with levels, badges and modules",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&profile, "profile", "", "player profile (overrides config)")
	cmd.AddCommand(NewPlayCmd(&configPath))
	cmd.AddCommand(NewProgressCmd(&configPath))
	cmd.AddCommand(NewResetCmd(&configPath))
	cmd.AddCommand(NewLocksCmd(&configPath))
	cmd.AddCommand(NewJumpCmd(&configPath))
	cmd.AddCommand(NewUnlockAllCmd(&configPath))
	cmd.AddCommand(NewBadgeCmd(&configPath))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewSeedCmd(&configPath))
	return cmd
}

// loadConfig reads the config, applies the --profile flag and installs the
// default structured logger.
func loadConfig(path string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if profile != "" {
		cfg.Player.Profile = profile
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
