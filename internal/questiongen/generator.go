// Package questiongen builds level-scoped multiple choice questions from the catalog.
package questiongen

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"periodic-quiz/internal/domain"
	"periodic-quiz/internal/levels"
)

// InertPolicy decides what happens to noble gas seeds.
type InertPolicy int

const (
	// InertAsNote turns an inert seed into an informational note question.
	InertAsNote InertPolicy = iota
	// InertExclude keeps inert items out of seed selection.
	InertExclude
)

// History is a read-only snapshot of what has been asked before.
type History struct {
	AskedItemKeys    []int
	AskedQuestionIDs []string
}

// Batch is one generated level plus the history delta it produces.
type Batch struct {
	Level       int
	Questions   []domain.Question
	SeedKeys    []int
	QuestionIDs []string
	// Reused is set when the level pool was exhausted and repeats were allowed.
	Reused bool
}

// Generator produces question batches. It is safe for concurrent use.
type Generator struct {
	catalog domain.Catalog
	inert   InertPolicy

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand injects the random source, mostly for deterministic tests.
func WithRand(rnd *rand.Rand) Option {
	return func(g *Generator) { g.rnd = rnd }
}

// WithInertPolicy selects how noble gas seeds are treated.
func WithInertPolicy(p InertPolicy) Option {
	return func(g *Generator) { g.inert = p }
}

func NewGenerator(catalog domain.Catalog, opts ...Option) *Generator {
	g := &Generator{
		catalog: catalog,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Catalog returns the catalog the generator draws from.
func (g *Generator) Catalog() domain.Catalog {
	return g.catalog
}

// Generate builds the questions for level, avoiding items already asked while
// the level pool still has enough unused items.
func (g *Generator) Generate(level int, history History) Batch {
	g.mu.Lock()
	defer g.mu.Unlock()

	cfg := levels.ConfigFor(level)
	pool := g.levelPool(cfg.PoolSize)

	asked := make(map[int]struct{}, len(history.AskedItemKeys))
	for _, k := range history.AskedItemKeys {
		asked[k] = struct{}{}
	}
	available := make([]domain.KnowledgeItem, 0, len(pool))
	for _, it := range pool {
		if _, ok := asked[it.Key]; !ok {
			available = append(available, it)
		}
	}

	batch := Batch{Level: cfg.Level}
	effective := available
	if len(available) < cfg.QuestionsPerLevel {
		effective = pool
		batch.Reused = true
	}

	shuffled := append([]domain.KnowledgeItem(nil), effective...)
	g.rnd.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	seeds := shuffled
	if len(seeds) > cfg.QuestionsPerLevel {
		seeds = seeds[:cfg.QuestionsPerLevel]
	}

	seen := make(map[string]struct{}, len(history.AskedQuestionIDs)+len(seeds))
	for _, id := range history.AskedQuestionIDs {
		seen[id] = struct{}{}
	}

	e := &env{pool: effective, catalog: g.catalog, rnd: g.rnd}
	plan := PlanFor(cfg.Level)
	for pos, seed := range seeds {
		q, ok := build(seed, e, plan.For(pos))
		if !ok {
			continue
		}
		q.ID = g.disambiguate(q.ID, seen)
		seen[q.ID] = struct{}{}

		batch.Questions = append(batch.Questions, q)
		batch.SeedKeys = append(batch.SeedKeys, seed.Key)
		batch.QuestionIDs = append(batch.QuestionIDs, q.ID)
	}
	return batch
}

// levelPool is the stable catalog prefix of size n, minus inert items when
// they are excluded.
func (g *Generator) levelPool(n int) []domain.KnowledgeItem {
	items := g.catalog.Items
	if g.inert == InertExclude {
		filtered := make([]domain.KnowledgeItem, 0, len(items))
		for _, it := range items {
			if !it.Inert() {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	if len(items) > n {
		items = items[:n]
	}
	return items
}

func build(seed domain.KnowledgeItem, e *env, chain []Strategy) (domain.Question, bool) {
	for _, s := range chain {
		if q, ok := s.Build(seed, e); ok {
			return q, true
		}
	}
	// the chain ends in symbol → name, but keep generation total for custom plans
	return SymbolToName.Build(seed, e)
}

const suffixLen = 4

// disambiguate appends a short random suffix when id was already produced.
func (g *Generator) disambiguate(id string, seen map[string]struct{}) string {
	if _, dup := seen[id]; !dup {
		return id
	}
	for {
		candidate := id + "#" + g.suffix()
		if _, dup := seen[candidate]; !dup {
			return candidate
		}
	}
}

func (g *Generator) suffix() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, suffixLen)
	for i := range b {
		b[i] = alphabet[g.rnd.Intn(len(alphabet))]
	}
	return string(b)
}

// BaseID strips the disambiguating suffix from a question id.
func BaseID(id string) string {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '#' {
			return id[:i]
		}
	}
	return id
}

// SeedKeyFromID extracts the item key of an element question id ("el:<key>:<type>").
func SeedKeyFromID(id string) (int, bool) {
	id = BaseID(id)
	if len(id) < 4 || id[:3] != "el:" {
		return 0, false
	}
	rest := id[3:]
	for i := 0; i < len(rest); i++ {
		if rest[i] == ':' {
			k, err := strconv.Atoi(rest[:i])
			return k, err == nil
		}
	}
	return 0, false
}
