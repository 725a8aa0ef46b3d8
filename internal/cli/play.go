package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"periodic-quiz/internal/app"
	"periodic-quiz/internal/domain"
	"periodic-quiz/internal/levels"
)

// NewPlayCmd runs one level attempt interactively on stdin/stdout.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		level    int
		moduleID string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a level (defaults to the current level)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), *configPath, func(ctx context.Context, engine *app.Engine) error {
				return play(ctx, engine, level, moduleID, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().IntVar(&level, "level", 0, "level to play (1-10)")
	cmd.Flags().StringVar(&moduleID, "module", "", "module to continue (mod1-mod5)")
	return cmd
}

func play(ctx context.Context, engine *app.Engine, level int, moduleID string, in io.Reader, out io.Writer) error {
	events, cancel := engine.Subscribe()
	defer cancel()

	var (
		snap app.Snapshot
		err  error
	)
	switch {
	case moduleID != "":
		snap, err = engine.StartModule(ctx, moduleID)
	case level > 0:
		snap, err = engine.StartLevel(ctx, level)
	default:
		snap, err = engine.StartLevel(ctx, engine.Snapshot().Progress.CurrentLevel)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Level %d: %s (%s, pass %d, %ds per question)\n",
		snap.Level, levels.Label(snap.Level), snap.Config.Difficulty, snap.Config.PassingScore, snap.Config.TimePerQuestion)

	scanner := bufio.NewScanner(in)
	for {
		snap = engine.Snapshot()
		if snap.Phase != app.PhaseRunning || snap.Question == nil {
			return nil
		}
		printQuestion(out, snap)

		if !scanner.Scan() {
			engine.Abandon()
			return scanner.Err()
		}
		if drainEvents(out, events) {
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "q", "quit":
			engine.Abandon()
			fmt.Fprintln(out, "Attempt abandoned.")
			return nil
		case "c", "clue":
			if !engine.RevealClue(snap.Index) {
				fmt.Fprintln(out, "No clue available yet.")
				continue
			}
			fmt.Fprintf(out, "Clue: %s\n", engine.Snapshot().Clue)
			continue
		}

		choice, ok := pickChoice(snap.Question, input)
		if !ok {
			fmt.Fprintf(out, "Enter 1-%d, c for a clue or q to quit.\n", len(snap.Question.Choices))
			continue
		}
		res, ok := engine.Answer(ctx, choice)
		if !ok {
			drainEvents(out, events)
			return nil
		}
		if res.Correct {
			fmt.Fprintln(out, "Correct!")
		} else if !snap.Question.Informational() {
			fmt.Fprintf(out, "Wrong, the answer was %s.\n", res.Answer)
		}
		if res.Outcome != nil {
			printOutcome(out, *res.Outcome)
			drainEvents(out, events)
			engine.Acknowledge()
			return nil
		}
	}
}

func printQuestion(out io.Writer, snap app.Snapshot) {
	q := snap.Question
	fmt.Fprintf(out, "\n[%d/%d] score %d, %ds left\n%s\n", snap.Index+1, snap.Total, snap.Score, snap.TimeLeft, q.Prompt)
	for i, c := range q.Choices {
		fmt.Fprintf(out, "  %d) %s\n", i+1, c)
	}
	if snap.ClueAvailable {
		fmt.Fprintln(out, "  (c for a clue)")
	}
}

func pickChoice(q *domain.Question, input string) (string, bool) {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(q.Choices) {
		return "", false
	}
	return q.Choices[n-1], true
}

func printOutcome(out io.Writer, o domain.LevelOutcome) {
	verdict := "not passed"
	if o.Passed {
		verdict = "passed"
	}
	fmt.Fprintf(out, "\nLevel %d complete: %d points, %s.\n", o.Level, o.Score, verdict)
}

// drainEvents prints pending events and reports whether the attempt timed out.
func drainEvents(out io.Writer, events <-chan domain.Event) bool {
	expired := false
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return expired
			}
			switch ev.Kind {
			case domain.EventTimeExpired:
				expired = true
				fmt.Fprintf(out, "Time's up! Level %d ended with %d points.\n", ev.Level, ev.Score)
			case domain.EventBadgeUnlocked:
				fmt.Fprintf(out, "Badge unlocked: %s\n", levels.BadgeName(ev.Level))
			case domain.EventAllLevelsComplete:
				fmt.Fprintln(out, "All ten levels complete!")
			}
		default:
			return expired
		}
	}
}
