// Package app holds the quiz use cases: the level attempt state machine and
// the badge/module aggregation built on top of it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"periodic-quiz/internal/catalog"
	"periodic-quiz/internal/domain"
	"periodic-quiz/internal/levels"
	"periodic-quiz/internal/questiongen"
)

// CatalogRepository loads the catalog (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) (domain.Catalog, error)
}

// ProgressRepository persists cross-session progress. Writes are best-effort
// and never fail the caller; progress.Store is the implementation.
type ProgressRepository interface {
	Load(ctx context.Context) domain.Progress
	SaveLevel(ctx context.Context, level int)
	SaveBadges(ctx context.Context, badges [domain.LevelCount]bool)
	SaveHistory(ctx context.Context, itemKeys []int, questionIDs []string)
	SaveLocks(ctx context.Context, enabled bool)
	SaveSelectedBadges(ctx context.Context, levels []int)
	ResetAll(ctx context.Context)
	ClearHistory(ctx context.Context)
}

// Phase is the state of the current level attempt.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseRunning       Phase = "running"
	PhaseLevelComplete Phase = "levelComplete"
)

// pointsPerAnswer is awarded for every correct answer.
const pointsPerAnswer = 10

// maxCluePenalty is the most a clue can cost.
const maxCluePenalty = 2

// Snapshot is a read-only copy of the engine state.
type Snapshot struct {
	Phase         Phase                `json:"phase"`
	AttemptID     string               `json:"attemptId,omitempty"`
	Level         int                  `json:"level"`
	Config        levels.Config        `json:"config"`
	Score         int                  `json:"score"`
	Index         int                  `json:"index"`
	Total         int                  `json:"total"`
	TimeLeft      int                  `json:"timeLeft"`
	Question      *domain.Question     `json:"question,omitempty"`
	ClueAvailable bool                 `json:"clueAvailable"`
	Clue          string               `json:"clue,omitempty"` // set once revealed for the current question
	Outcome       *domain.LevelOutcome `json:"outcome,omitempty"`
	Progress      domain.Progress      `json:"progress"`
}

// AnswerResult describes one answered question.
type AnswerResult struct {
	Correct bool                 `json:"correct"`
	Answer  string               `json:"answer"`
	Score   int                  `json:"score"`
	Outcome *domain.LevelOutcome `json:"outcome,omitempty"` // set when the answer finished the level
}

// Engine runs one level attempt at a time and owns the in-memory progress.
// All mutation goes through mu; the countdown goroutine takes it too.
type Engine struct {
	store        ProgressRepository
	gen          *questiongen.Generator
	genOpts      []questiongen.Option
	logger       *slog.Logger
	now          func() time.Time
	tickEvery    time.Duration
	newAttemptID func() string

	mu          sync.Mutex
	closed      bool
	progress    domain.Progress
	phase       Phase
	attemptID   string
	cfg         levels.Config
	questions   []domain.Question
	index       int
	score       int
	timeLeft    int
	clueIndex   int // -1 when no clue was revealed for the current question
	outcome     *domain.LevelOutcome
	timer       *countdown
	generation  uint64
	subscribers map[chan domain.Event]struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock is used for deterministic event timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTickInterval sets the countdown period. Zero or less disables the
// background countdown; callers then drive it with Tick.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) { e.tickEvery = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithGeneratorOptions forwards options to the question generator.
func WithGeneratorOptions(opts ...questiongen.Option) Option {
	return func(e *Engine) { e.genOpts = append(e.genOpts, opts...) }
}

// WithAttemptIDs replaces the attempt id source.
func WithAttemptIDs(next func() string) Option {
	return func(e *Engine) { e.newAttemptID = next }
}

// NewEngine loads the catalog and the stored progress. It fails only when the
// catalog cannot be loaded or is too small to build questions from.
func NewEngine(ctx context.Context, catalogs CatalogRepository, store ProgressRepository, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:        store,
		logger:       slog.Default(),
		now:          time.Now,
		tickEvery:    time.Second,
		newAttemptID: uuid.NewString,
		phase:        PhaseIdle,
		clueIndex:    -1,
		subscribers:  make(map[chan domain.Event]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")

	c, err := catalogs.GetCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(c.Items) < catalog.MinItems {
		return nil, fmt.Errorf("%w: %d items", domain.ErrCatalogTooSmall, len(c.Items))
	}
	e.gen = questiongen.NewGenerator(c, e.genOpts...)
	e.progress = store.Load(ctx)
	e.cfg = levels.ConfigFor(e.progress.CurrentLevel)
	return e, nil
}

// Catalog returns the catalog questions are built from.
func (e *Engine) Catalog() domain.Catalog {
	return e.gen.Catalog()
}

// StartLevel generates a fresh question set for level and enters Running.
// A running attempt is replaced. With locks enabled every earlier level must
// carry a badge.
func (e *Engine) StartLevel(ctx context.Context, level int) (Snapshot, error) {
	level = levels.Clamp(level)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Snapshot{}, domain.ErrEngineClosed
	}
	if e.progress.LocksEnabled {
		if missing := e.firstMissingBadgeLocked(level); missing > 0 {
			return Snapshot{}, fmt.Errorf("%w: level %d needs the badge of level %d", domain.ErrLevelLocked, level, missing)
		}
	}
	e.stopCountdownLocked()

	cfg := levels.ConfigFor(level)
	batch := e.gen.Generate(level, questiongen.History{
		AskedItemKeys:    e.progress.AskedItemKeys,
		AskedQuestionIDs: e.progress.AskedQuestionIDs,
	})

	e.attemptID = e.newAttemptID()
	e.cfg = cfg
	e.questions = batch.Questions
	e.index = 0
	e.score = 0
	e.timeLeft = cfg.TimePerQuestion
	e.clueIndex = -1
	e.outcome = nil
	e.phase = PhaseRunning

	e.progress.CurrentLevel = level
	e.progress.AskedItemKeys = mergeInts(e.progress.AskedItemKeys, batch.SeedKeys)
	e.progress.AskedQuestionIDs = mergeStrings(e.progress.AskedQuestionIDs, batch.QuestionIDs)
	e.store.SaveLevel(ctx, level)
	e.store.SaveHistory(ctx, e.progress.AskedItemKeys, e.progress.AskedQuestionIDs)

	e.logger.Info("level started", "attempt", e.attemptID, "level", level,
		"questions", len(e.questions), "reused_pool", batch.Reused)
	e.startCountdownLocked()
	return e.snapshotLocked(), nil
}

// Tick advances the countdown by one second. It reports false when no attempt
// is running. Reaching zero abandons the attempt.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickLocked()
}

func (e *Engine) tickFrom(generation uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if generation != e.generation {
		return
	}
	e.tickLocked()
}

func (e *Engine) tickLocked() bool {
	if e.phase != PhaseRunning {
		return false
	}
	e.timeLeft--
	if e.timeLeft > 0 {
		return true
	}
	e.timeLeft = 0
	e.stopCountdownLocked()
	e.phase = PhaseIdle
	e.logger.Info("time expired, attempt abandoned", "attempt", e.attemptID, "level", e.cfg.Level,
		"index", e.index, "score", e.score)
	e.broadcastLocked(domain.Event{Kind: domain.EventTimeExpired, Level: e.cfg.Level, Score: e.score})
	return true
}

// Answer scores choice against the current question and advances. The tenth
// answer finishes the level. ok is false when no attempt is running.
func (e *Engine) Answer(ctx context.Context, choice string) (AnswerResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseRunning || e.index >= len(e.questions) {
		return AnswerResult{}, false
	}

	q := e.questions[e.index]
	correct := choice == q.Answer
	if correct {
		e.score += pointsPerAnswer
	}
	e.index++
	e.timeLeft = e.cfg.TimePerQuestion
	e.clueIndex = -1

	res := AnswerResult{Correct: correct, Answer: q.Answer, Score: e.score}
	if e.index >= len(e.questions) {
		out := e.finishLevelLocked(ctx)
		res.Outcome = &out
		res.Score = out.Score
	}
	return res, true
}

func (e *Engine) finishLevelLocked(ctx context.Context) domain.LevelOutcome {
	e.stopCountdownLocked()
	level := e.cfg.Level
	passed := !e.progress.LocksEnabled || e.score >= e.cfg.PassingScore
	out := domain.LevelOutcome{Level: level, Score: e.score, Passed: passed}

	newBadge := false
	if passed {
		newBadge = !e.progress.Badges[level-1]
		e.progress.Badges[level-1] = true
		e.store.SaveBadges(ctx, e.progress.Badges)
		if level < domain.LevelCount {
			e.progress.CurrentLevel = level + 1
			e.store.SaveLevel(ctx, e.progress.CurrentLevel)
		} else {
			out.AllComplete = true
		}
	}
	e.phase = PhaseLevelComplete
	e.outcome = &out

	e.logger.Info("level finished", "attempt", e.attemptID, "level", level, "score", out.Score,
		"passing", e.cfg.PassingScore, "passed", passed)
	e.broadcastLocked(domain.Event{Kind: domain.EventLevelComplete, Level: level, Score: out.Score, Passed: passed})
	if newBadge {
		e.broadcastLocked(domain.Event{Kind: domain.EventBadgeUnlocked, Level: level, Score: out.Score, Passed: true})
	}
	if out.AllComplete {
		e.broadcastLocked(domain.Event{Kind: domain.EventAllLevelsComplete, Level: level, Score: out.Score, Passed: true})
	}
	return out
}

// ClueAvailable reports whether a clue can be revealed for the current question.
func (e *Engine) ClueAvailable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clueAvailableLocked()
}

// Clue is hidden on Easy levels and during the first half of each question's time.
func (e *Engine) clueAvailableLocked() bool {
	return e.phase == PhaseRunning &&
		e.index < len(e.questions) &&
		e.cfg.Difficulty != levels.Easy &&
		e.timeLeft <= e.cfg.TimePerQuestion/2 &&
		e.clueIndex != e.index
}

// RevealClue reveals the clue of question index for min(2, score) points.
// It reports false, without charging, when index is not the current question
// or the clue is not available (including when already revealed).
func (e *Engine) RevealClue(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index != e.index || !e.clueAvailableLocked() {
		return false
	}
	e.score -= min(maxCluePenalty, e.score)
	e.clueIndex = index
	return true
}

// Acknowledge leaves LevelComplete for Idle.
func (e *Engine) Acknowledge() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseLevelComplete {
		return false
	}
	e.phase = PhaseIdle
	return true
}

// Abandon stops a running attempt without scoring it.
func (e *Engine) Abandon() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseRunning {
		return false
	}
	e.stopCountdownLocked()
	e.phase = PhaseIdle
	e.logger.Info("attempt abandoned", "attempt", e.attemptID, "level", e.cfg.Level)
	return true
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:     e.phase,
		AttemptID: e.attemptID,
		Level:     e.cfg.Level,
		Config:    e.cfg,
		Score:     e.score,
		Index:     e.index,
		Total:     len(e.questions),
		TimeLeft:  e.timeLeft,
		Progress:  cloneProgress(e.progress),
	}
	if e.phase == PhaseIdle {
		s.Level = e.progress.CurrentLevel
		s.Config = levels.ConfigFor(s.Level)
	}
	if e.phase == PhaseRunning && e.index < len(e.questions) {
		q := e.questions[e.index]
		q.Choices = append([]string(nil), q.Choices...)
		s.Question = &q
		s.ClueAvailable = e.clueAvailableLocked()
		if e.clueIndex == e.index {
			s.Clue = questiongen.Clue(q, e.gen.Catalog())
		}
	}
	if e.phase == PhaseLevelComplete && e.outcome != nil {
		out := *e.outcome
		s.Outcome = &out
	}
	return s
}

// SetLocks turns level gating on or off.
func (e *Engine) SetLocks(ctx context.Context, enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress.LocksEnabled = enabled
	e.store.SaveLocks(ctx, enabled)
}

// JumpToLevel selects level as the current level. Only allowed with locks off.
func (e *Engine) JumpToLevel(ctx context.Context, level int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.progress.LocksEnabled {
		return domain.ErrLocksEnabled
	}
	if e.phase == PhaseRunning {
		return domain.ErrAttemptRunning
	}
	e.progress.CurrentLevel = levels.Clamp(level)
	e.store.SaveLevel(ctx, e.progress.CurrentLevel)
	return nil
}

// UnlockAll marks every badge earned and signals completion. Only allowed
// with locks off.
func (e *Engine) UnlockAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.progress.LocksEnabled {
		return domain.ErrLocksEnabled
	}
	for i := range e.progress.Badges {
		e.progress.Badges[i] = true
	}
	e.store.SaveBadges(ctx, e.progress.Badges)
	e.broadcastLocked(domain.Event{Kind: domain.EventAllLevelsComplete, Level: domain.LevelCount, Passed: true})
	return nil
}

// ToggleSelectedBadge flips the export selection of an earned badge and
// returns the new state.
func (e *Engine) ToggleSelectedBadge(ctx context.Context, level int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if level < 1 || level > domain.LevelCount || !e.progress.Badges[level-1] {
		return false, fmt.Errorf("%w: badge %d not earned", domain.ErrLevelLocked, level)
	}
	selected := e.progress.SelectedBadges[:0:0]
	found := false
	for _, l := range e.progress.SelectedBadges {
		if l == level {
			found = true
			continue
		}
		selected = append(selected, l)
	}
	if !found {
		selected = append(selected, level)
	}
	e.progress.SelectedBadges = selected
	e.store.SaveSelectedBadges(ctx, selected)
	return !found, nil
}

// ResetAll stops any attempt and clears every persisted slot.
func (e *Engine) ResetAll(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopCountdownLocked()
	e.phase = PhaseIdle
	e.questions = nil
	e.outcome = nil
	e.progress = domain.NewProgress()
	e.cfg = levels.ConfigFor(1)
	e.store.ResetAll(ctx)
	e.logger.Info("progress reset")
}

// Subscribe returns a channel that receives engine events.
// The caller must invoke the returned cancel function to avoid leaks.
func (e *Engine) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)

	e.mu.Lock()
	if e.closed {
		close(ch)
		e.mu.Unlock()
		return ch, func() {}
	}
	e.subscribers[ch] = struct{}{}
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		if _, ok := e.subscribers[ch]; ok {
			delete(e.subscribers, ch)
			close(ch)
		}
		e.mu.Unlock()
	}
	return ch, cancel
}

func (e *Engine) broadcastLocked(ev domain.Event) {
	ev.AttemptID = e.attemptID
	ev.At = e.now()
	for ch := range e.subscribers {
		select {
		case ch <- ev:
		default:
			// drop the oldest event so a slow reader never blocks the engine
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// Close stops the countdown and closes all subscriptions.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.stopCountdownLocked()
	if e.phase == PhaseRunning {
		e.phase = PhaseIdle
	}
	for ch := range e.subscribers {
		delete(e.subscribers, ch)
		close(ch)
	}
}

func (e *Engine) startCountdownLocked() {
	e.generation++
	if e.tickEvery <= 0 {
		return
	}
	generation := e.generation
	e.timer = startCountdown(e.tickEvery, func() { e.tickFrom(generation) })
}

func (e *Engine) stopCountdownLocked() {
	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// firstMissingBadgeLocked returns the first level below level without a
// badge, or 0 when all are earned.
func (e *Engine) firstMissingBadgeLocked(level int) int {
	for l := 1; l < level; l++ {
		if !e.progress.Badges[l-1] {
			return l
		}
	}
	return 0
}

func cloneProgress(p domain.Progress) domain.Progress {
	p.AskedItemKeys = append([]int(nil), p.AskedItemKeys...)
	p.AskedQuestionIDs = append([]string(nil), p.AskedQuestionIDs...)
	p.SelectedBadges = append([]int(nil), p.SelectedBadges...)
	return p
}

func mergeInts(base, extra []int) []int {
	seen := make(map[int]struct{}, len(base)+len(extra))
	out := make([]int, 0, len(base)+len(extra))
	for _, v := range append(append([]int(nil), base...), extra...) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func mergeStrings(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, v := range append(append([]string(nil), base...), extra...) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
