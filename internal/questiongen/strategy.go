package questiongen

import (
	"fmt"
	"math/rand"
	"strconv"

	"periodic-quiz/internal/domain"
)

// InertNoteChoice is the single acknowledgement choice of an inert note.
const InertNoteChoice = "Got it"

// Strategy builds one kind of question from a seed item. Build reports false
// when the seed or catalog cannot support the question type.
type Strategy interface {
	Type() string
	Build(seed domain.KnowledgeItem, env *env) (domain.Question, bool)
}

// env is what a strategy may look at while building a question.
type env struct {
	pool    []domain.KnowledgeItem // effective pool of the level
	catalog domain.Catalog
	rnd     *rand.Rand
}

type strategyFunc struct {
	typ   string
	build func(seed domain.KnowledgeItem, env *env) (domain.Question, bool)
}

func (s strategyFunc) Type() string { return s.typ }

func (s strategyFunc) Build(seed domain.KnowledgeItem, env *env) (domain.Question, bool) {
	return s.build(seed, env)
}

// Plan lists, per rotation slot, the strategies tried in order for a seed.
// A seed at position i uses rotation i % len(rotations).
type Plan [][]Strategy

// For returns the strategy chain for the seed at position pos.
func (p Plan) For(pos int) []Strategy {
	if len(p) == 0 {
		return nil
	}
	return p[pos%len(p)]
}

var (
	InertNote            Strategy = strategyFunc{domain.TypeInertNote, buildInertNote}
	SymbolToName         Strategy = strategyFunc{domain.TypeSymbolToName, buildSymbolToName}
	NameToSymbol         Strategy = strategyFunc{domain.TypeNameToSymbol, buildNameToSymbol}
	NumberToName         Strategy = strategyFunc{domain.TypeNumberToName, buildNumberToName}
	NameToNumber         Strategy = strategyFunc{domain.TypeNameToNumber, buildNameToNumber}
	UseToName            Strategy = strategyFunc{domain.TypeUseToName, buildUseToName}
	BinaryFormulaToName  Strategy = strategyFunc{domain.TypeFormulaToName, buildBinaryFormulaToName}
	BinaryNameToFormula  Strategy = strategyFunc{domain.TypeNameToFormula, buildBinaryNameToFormula}
	MultiFormulaToName   Strategy = strategyFunc{domain.TypeMultiFormulaToName, buildMultiFormulaToName}
	Oxidation            Strategy = strategyFunc{domain.TypeOxidation, buildOxidation}
	Configuration        Strategy = strategyFunc{domain.TypeConfiguration, buildConfiguration}
	AnyCompoundToFormula Strategy = strategyFunc{domain.TypeNameToFormula, buildAnyCompoundToFormula}
)

// plans maps level-1 to its strategy plan. Every chain starts with the inert
// note and ends with symbol → name, which always succeeds.
var plans = [domain.LevelCount]Plan{
	{{InertNote, SymbolToName}},
	{{InertNote, NameToSymbol, SymbolToName}},
	{{InertNote, NumberToName, SymbolToName}},
	{{InertNote, NameToNumber, SymbolToName}},
	{{InertNote, UseToName, SymbolToName}},
	{{InertNote, BinaryFormulaToName, SymbolToName}},
	{{InertNote, BinaryNameToFormula, SymbolToName}},
	{{InertNote, MultiFormulaToName, Oxidation, SymbolToName}},
	{{InertNote, Configuration, SymbolToName}},
	{
		{InertNote, Oxidation, SymbolToName},
		{InertNote, Configuration, SymbolToName},
		{InertNote, AnyCompoundToFormula, SymbolToName},
	},
}

// PlanFor returns the strategy plan of level (clamped to 1..10).
func PlanFor(level int) Plan {
	if level < 1 {
		level = 1
	}
	if level > domain.LevelCount {
		level = domain.LevelCount
	}
	return plans[level-1]
}

func elementID(key int, typ string) string {
	return fmt.Sprintf("el:%d:%s", key, typ)
}

func compoundID(formula, typ string) string {
	return fmt.Sprintf("cmp:%s:%s", formula, typ)
}

// elementOthers maps the pool (minus the seed) through field. When the pool
// yields fewer than three distinct values the whole catalog is used instead.
func elementOthers(seed domain.KnowledgeItem, env *env, field func(domain.KnowledgeItem) string) []string {
	collect := func(items []domain.KnowledgeItem) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			if it.Key == seed.Key {
				continue
			}
			out = append(out, field(it))
		}
		return uniqueExcept(out, field(seed))
	}
	others := collect(env.pool)
	if len(others) < maxChoices-1 {
		others = collect(env.catalog.Items)
	}
	return others
}

func elementQuestion(seed domain.KnowledgeItem, env *env, typ, prompt, answer string, field func(domain.KnowledgeItem) string) (domain.Question, bool) {
	others := elementOthers(seed, env, field)
	if len(others) == 0 {
		return domain.Question{}, false
	}
	return domain.Question{
		ID:        elementID(seed.Key, typ),
		Type:      typ,
		Prompt:    prompt,
		Choices:   buildChoices(answer, others, env.rnd),
		Answer:    answer,
		SourceKey: seed.Key,
	}, true
}

func itemName(it domain.KnowledgeItem) string { return it.Name }
func itemCode(it domain.KnowledgeItem) string { return it.Code }
func itemNumber(it domain.KnowledgeItem) string { return strconv.Itoa(it.Key) }

func buildInertNote(seed domain.KnowledgeItem, _ *env) (domain.Question, bool) {
	if !seed.Inert() {
		return domain.Question{}, false
	}
	return domain.Question{
		ID:   elementID(seed.Key, domain.TypeInertNote),
		Type: domain.TypeInertNote,
		Prompt: fmt.Sprintf("%s (%s) is a noble gas: its full valence shell keeps it largely unreactive, "+
			"and only the heavier noble gases form a handful of compounds under special conditions.", seed.Name, seed.Code),
		Choices:   []string{InertNoteChoice},
		Answer:    InertNoteChoice,
		SourceKey: seed.Key,
	}, true
}

func buildSymbolToName(seed domain.KnowledgeItem, env *env) (domain.Question, bool) {
	return elementQuestion(seed, env, domain.TypeSymbolToName,
		fmt.Sprintf("Which element has the symbol %s?", seed.Code), seed.Name, itemName)
}

func buildNameToSymbol(seed domain.KnowledgeItem, env *env) (domain.Question, bool) {
	return elementQuestion(seed, env, domain.TypeNameToSymbol,
		fmt.Sprintf("What is the chemical symbol for %s?", seed.Name), seed.Code, itemCode)
}

func buildNumberToName(seed domain.KnowledgeItem, env *env) (domain.Question, bool) {
	return elementQuestion(seed, env, domain.TypeNumberToName,
		fmt.Sprintf("Which element has atomic number %d?", seed.Key), seed.Name, itemName)
}

func buildNameToNumber(seed domain.KnowledgeItem, env *env) (domain.Question, bool) {
	return elementQuestion(seed, env, domain.TypeNameToNumber,
		fmt.Sprintf("What is the atomic number of %s?", seed.Name), itemNumber(seed), itemNumber)
}

func buildUseToName(seed domain.KnowledgeItem, env *env) (domain.Question, bool) {
	if len(seed.Uses) == 0 {
		return domain.Question{}, false
	}
	hint := seed.Uses[env.rnd.Intn(len(seed.Uses))]
	return elementQuestion(seed, env, domain.TypeUseToName,
		fmt.Sprintf("Which element is commonly used for: %s?", hint), seed.Name, itemName)
}

func buildOxidation(seed domain.KnowledgeItem, env *env) (domain.Question, bool) {
	ox := seed.PrimaryOxidation()
	if ox == "" {
		return domain.Question{}, false
	}
	// items sharing the state would be correct too, keep them out of the choices
	field := func(it domain.KnowledgeItem) string {
		if it.PrimaryOxidation() == ox {
			return ""
		}
		return it.Name
	}
	return elementQuestion(seed, env, domain.TypeOxidation,
		fmt.Sprintf("Which element commonly has oxidation state %s?", ox), seed.Name, field)
}

func buildConfiguration(seed domain.KnowledgeItem, env *env) (domain.Question, bool) {
	if seed.Configuration == "" {
		return domain.Question{}, false
	}
	field := func(it domain.KnowledgeItem) string {
		if it.Configuration == "" {
			return ""
		}
		return it.Name
	}
	if len(elementOthers(seed, env, field)) < maxChoices-1 {
		return domain.Question{}, false
	}
	return elementQuestion(seed, env, domain.TypeConfiguration,
		fmt.Sprintf("Which element has the electron configuration %s?", seed.Configuration), seed.Name, field)
}

// compoundsWith returns the compounds containing code whose part count passes keep.
func compoundsWith(catalog domain.Catalog, code string, keep func(parts int) bool) []domain.Compound {
	var out []domain.Compound
	for _, c := range catalog.Compounds {
		if c.Contains(code) && keep(len(c.Parts)) {
			out = append(out, c)
		}
	}
	return out
}

func otherCompounds(catalog domain.Catalog, chosen domain.Compound, field func(domain.Compound) string) []string {
	out := make([]string, 0, len(catalog.Compounds))
	for _, c := range catalog.Compounds {
		if c.Formula == chosen.Formula {
			continue
		}
		out = append(out, field(c))
	}
	return uniqueExcept(out, field(chosen))
}

func compoundName(c domain.Compound) string { return c.Name }
func compoundFormula(c domain.Compound) string { return c.Formula }

func compoundQuestion(seed domain.KnowledgeItem, env *env, candidates []domain.Compound, typ, promptFormat string, toName bool) (domain.Question, bool) {
	if len(candidates) == 0 {
		return domain.Question{}, false
	}
	chosen := candidates[env.rnd.Intn(len(candidates))]

	prompt, answer, field := fmt.Sprintf(promptFormat, chosen.Name), chosen.Formula, compoundFormula
	if toName {
		prompt, answer, field = fmt.Sprintf(promptFormat, chosen.Formula), chosen.Name, compoundName
	}
	others := otherCompounds(env.catalog, chosen, field)
	if len(others) == 0 {
		return domain.Question{}, false
	}
	return domain.Question{
		ID:        compoundID(chosen.Formula, typ),
		Type:      typ,
		Prompt:    prompt,
		Choices:   buildChoices(answer, others, env.rnd),
		Answer:    answer,
		SourceKey: seed.Key,
		Formula:   chosen.Formula,
	}, true
}

func buildBinaryFormulaToName(seed domain.KnowledgeItem, env *env) (domain.Question, bool) {
	candidates := compoundsWith(env.catalog, seed.Code, func(n int) bool { return n <= 2 })
	return compoundQuestion(seed, env, candidates, domain.TypeFormulaToName,
		"What is the common name for the compound %s?", true)
}

func buildBinaryNameToFormula(seed domain.KnowledgeItem, env *env) (domain.Question, bool) {
	candidates := compoundsWith(env.catalog, seed.Code, func(n int) bool { return n == 2 })
	return compoundQuestion(seed, env, candidates, domain.TypeNameToFormula,
		"What is the chemical formula for %s?", false)
}

func buildMultiFormulaToName(seed domain.KnowledgeItem, env *env) (domain.Question, bool) {
	candidates := compoundsWith(env.catalog, seed.Code, func(n int) bool { return n >= 3 })
	return compoundQuestion(seed, env, candidates, domain.TypeMultiFormulaToName,
		"Which compound has the formula %s?", true)
}

func buildAnyCompoundToFormula(seed domain.KnowledgeItem, env *env) (domain.Question, bool) {
	candidates := compoundsWith(env.catalog, seed.Code, func(int) bool { return true })
	return compoundQuestion(seed, env, candidates, domain.TypeNameToFormula,
		"What is the chemical formula for %s?", false)
}
