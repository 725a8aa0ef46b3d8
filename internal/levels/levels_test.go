package levels

import (
	"testing"

	"periodic-quiz/internal/domain"
)

func TestTableMonotonic(t *testing.T) {
	all := All()
	if len(all) != domain.LevelCount {
		t.Fatalf("expected %d levels, got %d", domain.LevelCount, len(all))
	}
	for i, cfg := range all {
		if cfg.QuestionsPerLevel != 10 {
			t.Fatalf("level %d: expected 10 questions, got %d", cfg.Level, cfg.QuestionsPerLevel)
		}
		if cfg.TimePerQuestion < 10 {
			t.Fatalf("level %d: time below floor: %d", cfg.Level, cfg.TimePerQuestion)
		}
		if i == 0 {
			continue
		}
		prev := all[i-1]
		if cfg.PoolSize < prev.PoolSize {
			t.Fatalf("pool size decreased at level %d", cfg.Level)
		}
		if cfg.PassingScore < prev.PassingScore {
			t.Fatalf("passing score decreased at level %d", cfg.Level)
		}
		if cfg.TimePerQuestion > prev.TimePerQuestion {
			t.Fatalf("time per question increased at level %d", cfg.Level)
		}
	}
}

func TestConfigValues(t *testing.T) {
	cases := []struct {
		level   int
		pool    int
		time    int
		passing int
		diff    Difficulty
	}{
		{1, 12, 26, 60, Easy},
		{2, 16, 25, 64, Easy},
		{3, 20, 24, 68, Medium},
		{6, 32, 20, 80, Medium},
		{7, 36, 19, 84, Hard},
		{10, 48, 15, 96, Hard},
	}
	for _, c := range cases {
		cfg := ConfigFor(c.level)
		if cfg.PoolSize != c.pool || cfg.TimePerQuestion != c.time || cfg.PassingScore != c.passing || cfg.Difficulty != c.diff {
			t.Fatalf("level %d: unexpected config %+v", c.level, cfg)
		}
	}
}

func TestConfigForClamps(t *testing.T) {
	if ConfigFor(0).Level != 1 {
		t.Fatalf("expected level 0 to clamp to 1")
	}
	if ConfigFor(42).Level != 10 {
		t.Fatalf("expected level 42 to clamp to 10")
	}
}

func TestModulesPartitionLevels(t *testing.T) {
	next := 1
	for _, m := range Modules() {
		if m.Start != next {
			t.Fatalf("module %s starts at %d, expected %d", m.ID, m.Start, next)
		}
		if m.End < m.Start {
			t.Fatalf("module %s has inverted range", m.ID)
		}
		next = m.End + 1
	}
	if next != domain.LevelCount+1 {
		t.Fatalf("modules end at %d, expected %d", next-1, domain.LevelCount)
	}
}

func TestBadgeNameAndLabel(t *testing.T) {
	if BadgeName(1) != "Novice Spark" || BadgeName(10) != "Elemental Master" {
		t.Fatalf("unexpected badge names")
	}
	if BadgeName(11) != "Badge 11" {
		t.Fatalf("expected generic name out of range, got %q", BadgeName(11))
	}
	if Label(2) != "Name → Symbol" || Label(9) != "Hard challenges" {
		t.Fatalf("unexpected labels %q %q", Label(2), Label(9))
	}
	if _, err := ModuleByID("nope"); err == nil {
		t.Fatalf("expected unknown module error")
	}
}
