// Package levels holds the fixed ten-level progression table.
package levels

import (
	"fmt"
	"math"

	"periodic-quiz/internal/domain"
)

// Difficulty is the coarse difficulty label of a level.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// QuestionsPerLevel is the same for every level.
const QuestionsPerLevel = 10

// Config is the per-level tuning.
type Config struct {
	Level             int        `json:"level"`
	PoolSize          int        `json:"poolSize"`
	TimePerQuestion   int        `json:"timePerQuestion"` // seconds
	PassingScore      int        `json:"passingScore"`
	QuestionsPerLevel int        `json:"questionsPerLevel"`
	Difficulty        Difficulty `json:"difficulty"`
}

var table = build()

func build() [domain.LevelCount]Config {
	var out [domain.LevelCount]Config
	for i := range out {
		level := i + 1
		out[i] = Config{
			Level:             level,
			PoolSize:          min(60, 12+4*i),
			TimePerQuestion:   max(10, 26-int(math.Floor(1.3*float64(i)))),
			PassingScore:      int(math.Ceil(60 + 4*float64(i))),
			QuestionsPerLevel: QuestionsPerLevel,
			Difficulty:        difficultyFor(level),
		}
	}
	return out
}

func difficultyFor(level int) Difficulty {
	switch {
	case level <= 2:
		return Easy
	case level <= 6:
		return Medium
	default:
		return Hard
	}
}

// Clamp bounds level to 1..LevelCount.
func Clamp(level int) int {
	if level < 1 {
		return 1
	}
	if level > domain.LevelCount {
		return domain.LevelCount
	}
	return level
}

// ConfigFor returns the configuration of level, clamped into range.
func ConfigFor(level int) Config {
	return table[Clamp(level)-1]
}

// All returns the whole table in level order.
func All() []Config {
	out := make([]Config, len(table))
	copy(out, table[:])
	return out
}

var badgeNames = [domain.LevelCount]string{
	"Novice Spark",
	"Element Seeker",
	"Ion Initiate",
	"Bond Breaker",
	"Valence Virtuoso",
	"Periodic Pro",
	"Orbital Officer",
	"Reaction Ranger",
	"Stoichiometry Star",
	"Elemental Master",
}

// BadgeName is the display name of the badge earned at level.
func BadgeName(level int) string {
	if level < 1 || level > domain.LevelCount {
		return fmt.Sprintf("Badge %d", level)
	}
	return badgeNames[level-1]
}

// Label describes what a level asks for.
func Label(level int) string {
	switch level {
	case 1:
		return "Symbol → Name"
	case 2:
		return "Name → Symbol"
	case 3:
		return "Atomic Number → Name"
	case 4:
		return "Name → Atomic Number"
	default:
		return string(ConfigFor(level).Difficulty) + " challenges"
	}
}

var modules = []domain.Module{
	{ID: "mod1", Title: "Symbols & Names", Description: "Master element symbols and names.", Start: 1, End: 2},
	{ID: "mod2", Title: "Atomic Numbers", Description: "Identify elements by atomic number.", Start: 3, End: 4},
	{ID: "mod3", Title: "Uses & Facts", Description: "Real-world uses and fun facts.", Start: 5, End: 5},
	{ID: "mod4", Title: "Compounds", Description: "Binary and multi-element compounds.", Start: 6, End: 7},
	{ID: "mod5", Title: "Advanced", Description: "Oxidation, e-config, mixed challenges.", Start: 8, End: 10},
}

// Modules returns the five modules partitioning levels 1..10.
func Modules() []domain.Module {
	out := make([]domain.Module, len(modules))
	copy(out, modules)
	return out
}

// ModuleByID looks a module up by id.
func ModuleByID(id string) (domain.Module, error) {
	for _, m := range modules {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Module{}, fmt.Errorf("%w: %q", domain.ErrUnknownModule, id)
}
