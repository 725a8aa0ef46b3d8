package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"periodic-quiz/internal/app"
	"periodic-quiz/internal/domain"
	"periodic-quiz/internal/levels"
)

// NewProgressCmd prints level, badges and module completion.
func NewProgressCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show level, badges and module progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), *configPath, func(_ context.Context, engine *app.Engine) error {
				printProgress(cmd.OutOrStdout(), engine)
				return nil
			})
		},
	}
}

func printProgress(out io.Writer, engine *app.Engine) {
	p := engine.Snapshot().Progress
	locks := "off"
	if p.LocksEnabled {
		locks = "on"
	}
	fmt.Fprintf(out, "Current level: %d (%s)\nLocks: %s\n\nBadges:\n", p.CurrentLevel, levels.Label(p.CurrentLevel), locks)
	for i, earned := range p.Badges {
		level := i + 1
		mark := "[ ]"
		if earned {
			mark = "[x]"
		}
		selected := ""
		if slices.Contains(p.SelectedBadges, level) {
			selected = " *"
		}
		fmt.Fprintf(out, "  %s %2d %s%s\n", mark, level, levels.BadgeName(level), selected)
	}
	fmt.Fprintln(out, "\nModules:")
	for _, m := range levels.Modules() {
		st := engine.ModuleStats(m)
		fmt.Fprintf(out, "  %s %-16s %d/%d (%d%%) next: level %d\n", m.ID, m.Title, st.Completed, st.Total, st.Percent, st.NextLevel)
	}
}

// NewResetCmd clears all progress, or one module with --module.
func NewResetCmd(configPath *string) *cobra.Command {
	var moduleID string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset all progress, or one module's badges",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), *configPath, func(ctx context.Context, engine *app.Engine) error {
				if moduleID != "" {
					if err := engine.ResetModule(ctx, moduleID); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Module %s reset.\n", moduleID)
					return nil
				}
				engine.ResetAll(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), "All progress reset.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&moduleID, "module", "", "module to reset (mod1-mod5)")
	return cmd
}

// NewLocksCmd turns level gating on or off.
func NewLocksCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "locks on|off",
		Short:     "Enable or disable level locks",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch args[0] {
			case "on":
				enabled = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			return withEngine(cmd.Context(), *configPath, func(ctx context.Context, engine *app.Engine) error {
				engine.SetLocks(ctx, enabled)
				fmt.Fprintf(cmd.OutOrStdout(), "Locks %s.\n", args[0])
				return nil
			})
		},
	}
}

// NewJumpCmd selects the current level without playing.
func NewJumpCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "jump <level>",
		Short: "Set the current level (locks must be off)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), *configPath, func(ctx context.Context, engine *app.Engine) error {
				if err := engine.JumpToLevel(ctx, level); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current level set to %d.\n", level)
				return nil
			})
		},
	}
}

// NewUnlockAllCmd marks every badge earned.
func NewUnlockAllCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock-all",
		Short: "Earn every badge (locks must be off)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), *configPath, func(ctx context.Context, engine *app.Engine) error {
				if err := engine.UnlockAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All badges unlocked.")
				return nil
			})
		},
	}
}

// NewBadgeCmd toggles whether an earned badge is selected for export.
func NewBadgeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "badge <level>",
		Short: "Toggle the selection of an earned badge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), *configPath, func(ctx context.Context, engine *app.Engine) error {
				selected, err := engine.ToggleSelectedBadge(ctx, level)
				if err != nil {
					return err
				}
				state := "deselected"
				if selected {
					state = "selected"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s.\n", levels.BadgeName(level), state)
				return nil
			})
		},
	}
}

func parseLevel(raw string) (int, error) {
	level, err := strconv.Atoi(raw)
	if err != nil || level < 1 || level > domain.LevelCount {
		return 0, fmt.Errorf("level must be 1-%d, got %q", domain.LevelCount, raw)
	}
	return level, nil
}
