package domain

import "time"

// CategoryNobleGas marks inert items that never form ordinary quiz questions.
const CategoryNobleGas = "noble-gases"

// KnowledgeItem is one catalog entry (a chemical element).
type KnowledgeItem struct {
	Key           int      `json:"key" yaml:"key"`
	Code          string   `json:"code" yaml:"code"`
	Name          string   `json:"name" yaml:"name"`
	Category      string   `json:"category" yaml:"category"`
	Mass          float64  `json:"mass" yaml:"mass"`
	Configuration string   `json:"configuration" yaml:"configuration"`
	Oxidation     []string `json:"oxidation" yaml:"oxidation"`
	Uses          []string `json:"uses" yaml:"uses"`
	Period        int      `json:"period" yaml:"period"`
	Group         int      `json:"group" yaml:"group"`
}

// Inert reports whether the item belongs to the noble gas family.
func (i KnowledgeItem) Inert() bool {
	return i.Category == CategoryNobleGas
}

// PrimaryOxidation returns the first listed oxidation state, or "" if none.
func (i KnowledgeItem) PrimaryOxidation() string {
	if len(i.Oxidation) == 0 {
		return ""
	}
	return i.Oxidation[0]
}

// CompoundPart is one (item code, count) pair of a compound formula.
type CompoundPart struct {
	Code  string `json:"code" yaml:"code"`
	Count int    `json:"count" yaml:"count"`
}

// Compound is an immutable catalog record for a chemical compound.
type Compound struct {
	Formula string         `json:"formula" yaml:"formula"`
	Name    string         `json:"name" yaml:"name"`
	Parts   []CompoundPart `json:"parts" yaml:"parts"`
}

// Contains reports whether the compound includes the given item code.
func (c Compound) Contains(code string) bool {
	for _, p := range c.Parts {
		if p.Code == code {
			return true
		}
	}
	return false
}

// Catalog is the read-only knowledge base the engine builds questions from.
// Items are ordered by Key.
type Catalog struct {
	Items     []KnowledgeItem `json:"items" yaml:"items"`
	Compounds []Compound      `json:"compounds" yaml:"compounds"`
}

// ItemByKey returns the item with the given key.
func (c Catalog) ItemByKey(key int) (KnowledgeItem, bool) {
	// keys are contiguous from 1, try the direct slot first
	if key >= 1 && key <= len(c.Items) && c.Items[key-1].Key == key {
		return c.Items[key-1], true
	}
	for _, it := range c.Items {
		if it.Key == key {
			return it, true
		}
	}
	return KnowledgeItem{}, false
}

// Question types. The tag is also the last segment of a question id.
const (
	TypeSymbolToName       = "sym-name"
	TypeNameToSymbol       = "name-sym"
	TypeNumberToName       = "num-name"
	TypeNameToNumber       = "name-num"
	TypeUseToName          = "use-name"
	TypeFormulaToName      = "formula-name"
	TypeNameToFormula      = "name-formula"
	TypeMultiFormulaToName = "multi-name"
	TypeOxidation          = "ox"
	TypeConfiguration      = "ecfg"
	TypeInertNote          = "note"
)

// Question is a generated multiple choice question.
type Question struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Prompt    string   `json:"prompt"`
	Choices   []string `json:"choices"`
	Answer    string   `json:"answer"`
	SourceKey int      `json:"sourceKey,omitempty"` // zero when no seed item
	Formula   string   `json:"formula,omitempty"`   // set for compound questions
}

// Informational reports whether the question is a note rather than a quiz question.
func (q Question) Informational() bool {
	return q.Type == TypeInertNote
}

// LevelCount is the number of levels in the ladder.
const LevelCount = 10

// Progress is the persisted cross-session state.
type Progress struct {
	CurrentLevel     int              `json:"currentLevel"`
	Badges           [LevelCount]bool `json:"badges"`
	AskedItemKeys    []int            `json:"askedItemKeys"`
	AskedQuestionIDs []string         `json:"askedQuestionIds"`
	LocksEnabled     bool             `json:"locksEnabled"`
	SelectedBadges   []int            `json:"selectedBadges"`
}

// NewProgress returns the initial state: level 1, no badges, empty history.
func NewProgress() Progress {
	return Progress{CurrentLevel: 1}
}

// Module is a named contiguous range of levels.
type Module struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
}

// ModuleStats summarizes badge completion inside a module.
type ModuleStats struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
	NextLevel int `json:"nextLevel"`
}

// EventKind identifies engine notifications.
type EventKind string

const (
	EventLevelComplete     EventKind = "levelComplete"
	EventBadgeUnlocked     EventKind = "badgeUnlocked"
	EventAllLevelsComplete EventKind = "allLevelsComplete"
	EventTimeExpired       EventKind = "timeExpired"
)

// Event is emitted by the engine to its subscribers.
type Event struct {
	Kind      EventKind `json:"kind"`
	AttemptID string    `json:"attemptId,omitempty"`
	Level     int       `json:"level"`
	Score     int       `json:"score"`
	Passed    bool      `json:"passed"`
	At        time.Time `json:"at"`
}

// LevelOutcome is the result of a finished level attempt.
type LevelOutcome struct {
	Level       int  `json:"level"`
	Score       int  `json:"score"`
	Passed      bool `json:"passed"`
	AllComplete bool `json:"allComplete"`
}
