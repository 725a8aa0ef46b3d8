package questiongen

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"periodic-quiz/internal/catalog"
	"periodic-quiz/internal/domain"
)

func defaultCatalog(t *testing.T) domain.Catalog {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	return c
}

// advancedCatalog has oxidation and configuration data for every item and puts
// every item in a compound, so each advanced strategy always succeeds.
func advancedCatalog() domain.Catalog {
	var c domain.Catalog
	for i := 1; i <= 12; i++ {
		c.Items = append(c.Items, domain.KnowledgeItem{
			Key:           i,
			Code:          fmt.Sprintf("X%c", 'a'+i-1),
			Name:          fmt.Sprintf("Element %d", i),
			Category:      "metals",
			Configuration: fmt.Sprintf("[Core] %ds1", i),
			Oxidation:     []string{fmt.Sprintf("+%d", i)},
		})
	}
	for i := 0; i < 12; i += 2 {
		a, b := c.Items[i].Code, c.Items[i+1].Code
		c.Compounds = append(c.Compounds, domain.Compound{
			Formula: a + b,
			Name:    fmt.Sprintf("Compound %d", i/2+1),
			Parts:   []domain.CompoundPart{{Code: a, Count: 1}, {Code: b, Count: 1}},
		})
	}
	return c
}

func seeded(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func TestGenerateEveryLevel(t *testing.T) {
	g := NewGenerator(defaultCatalog(t), seeded(1))

	for level := 1; level <= domain.LevelCount; level++ {
		batch := g.Generate(level, History{})
		if len(batch.Questions) != 10 {
			t.Fatalf("level %d: expected 10 questions, got %d", level, len(batch.Questions))
		}
		if len(batch.SeedKeys) != 10 || len(batch.QuestionIDs) != 10 {
			t.Fatalf("level %d: expected a 10 entry history delta, got %d/%d", level, len(batch.SeedKeys), len(batch.QuestionIDs))
		}
		for _, q := range batch.Questions {
			if !contains(q.Choices, q.Answer) {
				t.Fatalf("level %d: answer %q missing from %v", level, q.Answer, q.Choices)
			}
			seen := map[string]bool{}
			for _, ch := range q.Choices {
				if seen[ch] {
					t.Fatalf("level %d: duplicate choice %q in %v", level, ch, q.Choices)
				}
				seen[ch] = true
			}
			if !q.Informational() && len(q.Choices) != 4 {
				t.Fatalf("level %d: expected 4 choices for %s, got %v", level, q.ID, q.Choices)
			}
		}
	}
}

func TestGenerateUsesStablePrefixPool(t *testing.T) {
	g := NewGenerator(defaultCatalog(t), seeded(2))

	batch := g.Generate(1, History{})
	for _, k := range batch.SeedKeys {
		if k < 1 || k > 12 {
			t.Fatalf("expected level 1 seeds inside the first 12 items, got %d", k)
		}
	}
	if batch.Reused {
		t.Fatalf("did not expect reuse with empty history")
	}
}

func TestGenerateSkipsAskedItems(t *testing.T) {
	g := NewGenerator(defaultCatalog(t), seeded(3))

	batch := g.Generate(1, History{AskedItemKeys: []int{1, 2}})
	if batch.Reused {
		t.Fatalf("ten unused items remain, reuse should not trigger")
	}
	for _, k := range batch.SeedKeys {
		if k == 1 || k == 2 {
			t.Fatalf("asked item %d was used again", k)
		}
	}
}

func TestGenerateFallsBackWhenPoolExhausted(t *testing.T) {
	g := NewGenerator(defaultCatalog(t), seeded(4))

	asked := make([]int, 0, 12)
	for k := 1; k <= 12; k++ {
		asked = append(asked, k)
	}
	batch := g.Generate(1, History{AskedItemKeys: asked})
	if !batch.Reused {
		t.Fatalf("expected the full pool to be reused")
	}
	if len(batch.Questions) != 10 {
		t.Fatalf("expected 10 questions after fallback, got %d", len(batch.Questions))
	}
	for _, k := range batch.SeedKeys {
		if k < 1 || k > 12 {
			t.Fatalf("fallback left the level pool: %d", k)
		}
	}
}

func TestLevelTenMixesAdvancedTypes(t *testing.T) {
	g := NewGenerator(advancedCatalog(), seeded(5))

	batch := g.Generate(10, History{})
	types := map[string]int{}
	for i, q := range batch.Questions {
		types[q.Type]++
		want := []string{domain.TypeOxidation, domain.TypeConfiguration, domain.TypeNameToFormula}[i%3]
		if q.Type != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, q.Type)
		}
	}
	if types[domain.TypeOxidation] == 0 || types[domain.TypeConfiguration] == 0 || types[domain.TypeNameToFormula] == 0 {
		t.Fatalf("expected all three advanced types, got %v", types)
	}
}

func TestInertItemsBecomeNotes(t *testing.T) {
	g := NewGenerator(defaultCatalog(t), seeded(6))

	// leaves exactly keys 1..10 available, which include helium and neon
	batch := g.Generate(1, History{AskedItemKeys: []int{11, 12}})
	notes := 0
	for _, q := range batch.Questions {
		if !q.Informational() {
			continue
		}
		notes++
		if q.SourceKey != 2 && q.SourceKey != 10 {
			t.Fatalf("unexpected note seed %d", q.SourceKey)
		}
		if len(q.Choices) != 1 || q.Answer != InertNoteChoice {
			t.Fatalf("unexpected note shape: %+v", q)
		}
	}
	if notes != 2 {
		t.Fatalf("expected 2 notes, got %d", notes)
	}
}

func TestInertExcludePolicy(t *testing.T) {
	c := defaultCatalog(t)
	g := NewGenerator(c, seeded(7), WithInertPolicy(InertExclude))

	for level := 1; level <= domain.LevelCount; level++ {
		batch := g.Generate(level, History{})
		for i, q := range batch.Questions {
			if q.Informational() {
				t.Fatalf("level %d: note produced with inert items excluded", level)
			}
			it, _ := c.ItemByKey(batch.SeedKeys[i])
			if it.Inert() {
				t.Fatalf("level %d: inert seed %s selected", level, it.Name)
			}
		}
	}
}

func TestQuestionIDsAreDisambiguated(t *testing.T) {
	g := NewGenerator(defaultCatalog(t), seeded(8))

	var history []string
	for k := 1; k <= 10; k++ {
		history = append(history, fmt.Sprintf("el:%d:%s", k, domain.TypeSymbolToName))
	}
	batch := g.Generate(1, History{AskedItemKeys: []int{11, 12}, AskedQuestionIDs: history})
	for _, q := range batch.Questions {
		if q.Informational() {
			if strings.Contains(q.ID, "#") {
				t.Fatalf("note id %s was not seen before and needs no suffix", q.ID)
			}
			continue
		}
		base := fmt.Sprintf("el:%d:%s", q.SourceKey, domain.TypeSymbolToName)
		if !strings.HasPrefix(q.ID, base+"#") || len(q.ID) != len(base)+1+suffixLen {
			t.Fatalf("expected %s with a suffix, got %s", base, q.ID)
		}
		if BaseID(q.ID) != base {
			t.Fatalf("BaseID(%s) = %s", q.ID, BaseID(q.ID))
		}
		if k, ok := SeedKeyFromID(q.ID); !ok || k != q.SourceKey {
			t.Fatalf("SeedKeyFromID(%s) = %d, %v", q.ID, k, ok)
		}
	}
}

func TestPlansStartWithNoteAndEndWithFallback(t *testing.T) {
	for level := 1; level <= domain.LevelCount; level++ {
		plan := PlanFor(level)
		if len(plan) == 0 {
			t.Fatalf("level %d has no plan", level)
		}
		for _, chain := range plan {
			if chain[0].Type() != domain.TypeInertNote {
				t.Fatalf("level %d: chain must start with the inert note", level)
			}
			if chain[len(chain)-1].Type() != domain.TypeSymbolToName {
				t.Fatalf("level %d: chain must end with symbol to name", level)
			}
		}
	}
	if len(PlanFor(10)) != 3 {
		t.Fatalf("expected three rotations at level 10")
	}
	if len(PlanFor(42)) != 3 || len(PlanFor(0)) != 1 {
		t.Fatalf("expected out of range levels to clamp")
	}
}

func TestBuildChoicesWithShortDistractors(t *testing.T) {
	rnd := rand.New(rand.NewSource(9))
	got := buildChoices("Gold", []string{"Silver", "Gold", "Silver", ""}, rnd)
	if len(got) != 2 || !contains(got, "Gold") || !contains(got, "Silver") {
		t.Fatalf("unexpected choices %v", got)
	}
}

func TestClue(t *testing.T) {
	c := defaultCatalog(t)

	q := domain.Question{Type: domain.TypeNameToSymbol, SourceKey: 11}
	if got := Clue(q, c); !strings.Contains(got, `"N"`) || !strings.Contains(got, `"a"`) {
		t.Fatalf("unexpected sodium clue: %s", got)
	}

	q = domain.Question{Type: domain.TypeFormulaToName, Formula: "NaCl", SourceKey: 11}
	if got := Clue(q, c); got != "Contains element: Na. Consider its common valence." {
		t.Fatalf("unexpected compound clue: %s", got)
	}

	q = domain.Question{Type: domain.TypeConfiguration, SourceKey: 10}
	if got := Clue(q, c); !strings.Contains(got, "2p6") {
		t.Fatalf("unexpected configuration clue: %s", got)
	}

	if got := Clue(domain.Question{Type: domain.TypeSymbolToName}, c); got != genericClue {
		t.Fatalf("expected generic clue, got %s", got)
	}
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
