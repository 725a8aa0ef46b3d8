package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"periodic-quiz/internal/domain"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "log:\n  level: error\nprogress:\n  backend: sqlite\n  sqlite: " + filepath.Join(dir, "progress.db") +
		"\nquiz:\n  tickInterval: 0s\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, cfgPath, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestPlayFinishesLevelAndPersists(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, strings.Repeat("1\n", 10), "play", "--level", "1")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out, "Level 1 complete") {
		t.Fatalf("expected completion message, got:\n%s", out)
	}

	out, err = run(t, cfg, "", "progress")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if !strings.Contains(out, "Current level: 2") || !strings.Contains(out, "[x]  1") {
		t.Fatalf("expected level 2 with badge 1, got:\n%s", out)
	}
}

func TestPlayQuitAbandons(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "nonsense\nq\n", "play")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out, "Enter 1-") || !strings.Contains(out, "Attempt abandoned.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestJumpRespectsLocks(t *testing.T) {
	cfg := writeConfig(t)

	if _, err := run(t, cfg, "", "jump", "5"); err != nil {
		t.Fatalf("jump: %v", err)
	}
	out, _ := run(t, cfg, "", "progress")
	if !strings.Contains(out, "Current level: 5") {
		t.Fatalf("expected level 5, got:\n%s", out)
	}

	if _, err := run(t, cfg, "", "locks", "on"); err != nil {
		t.Fatalf("locks: %v", err)
	}
	if _, err := run(t, cfg, "", "jump", "3"); !errors.Is(err, domain.ErrLocksEnabled) {
		t.Fatalf("expected ErrLocksEnabled, got %v", err)
	}
	if _, err := run(t, cfg, "", "play", "--level", "4"); !errors.Is(err, domain.ErrLevelLocked) {
		t.Fatalf("expected ErrLevelLocked, got %v", err)
	}
}

func TestUnlockAllAndBadgeSelection(t *testing.T) {
	cfg := writeConfig(t)

	if _, err := run(t, cfg, "", "badge", "3"); !errors.Is(err, domain.ErrLevelLocked) {
		t.Fatalf("expected unearned badge to be rejected, got %v", err)
	}
	if _, err := run(t, cfg, "", "unlock-all"); err != nil {
		t.Fatalf("unlock-all: %v", err)
	}
	out, err := run(t, cfg, "", "badge", "3")
	if err != nil || !strings.Contains(out, "selected") {
		t.Fatalf("expected badge selected, got %q (%v)", out, err)
	}
	out, _ = run(t, cfg, "", "progress")
	if !strings.Contains(out, "mod5 Advanced") || !strings.Contains(out, "3/3 (100%)") {
		t.Fatalf("expected full module stats, got:\n%s", out)
	}

	if _, err := run(t, cfg, "", "reset", "--module", "mod9"); !errors.Is(err, domain.ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
	if _, err := run(t, cfg, "", "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	out, _ = run(t, cfg, "", "progress")
	if strings.Contains(out, "[x]") {
		t.Fatalf("expected no badges after reset, got:\n%s", out)
	}
}

func TestParseLevel(t *testing.T) {
	if _, err := parseLevel("11"); err == nil {
		t.Fatalf("expected out of range level to fail")
	}
	if l, err := parseLevel("7"); err != nil || l != 7 {
		t.Fatalf("expected 7, got %d (%v)", l, err)
	}
}
