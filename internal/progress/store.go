// Package progress persists the cross-session quiz state as six JSON slots in
// a key-value store.
package progress

import (
	"context"
	"encoding/json"
	"log/slog"

	"periodic-quiz/internal/domain"
)

// Slot keys. They match the names earlier releases stored in the browser.
const (
	KeyLevel          = "quizLevel"
	KeyBadges         = "quizBadges"
	KeyAskedItems     = "quizAsked"
	KeyAskedIDs       = "quizAskedIds"
	KeyLocksEnabled   = "quizLocksEnabled"
	KeySelectedBadges = "selectedBadges"
)

// Keys lists every slot the store owns.
var Keys = []string{KeyLevel, KeyBadges, KeyAskedItems, KeyAskedIDs, KeyLocksEnabled, KeySelectedBadges}

// KV is the string key-value store the progress slots live in.
type KV interface {
	// Get reports found=false for a missing key; err is reserved for backend failures.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Store reads and writes progress slots. All writes are best-effort: failures
// are logged and swallowed so the caller's in-memory state stays authoritative.
type Store struct {
	kv     KV
	logger *slog.Logger
}

func NewStore(kv KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger.With("component", "progress")}
}

// Load reads every slot. Missing, unreadable or corrupt slots fall back to the
// defaults of domain.NewProgress.
func (s *Store) Load(ctx context.Context) domain.Progress {
	p := domain.NewProgress()

	var level int
	if s.read(ctx, KeyLevel, &level) {
		if level < 1 || level > domain.LevelCount {
			s.logger.Warn("stored level out of range, clamping", "level", level)
		}
		p.CurrentLevel = clampLevel(level)
	}

	var badges []bool
	if s.read(ctx, KeyBadges, &badges) {
		copy(p.Badges[:], badges)
	}

	s.read(ctx, KeyAskedItems, &p.AskedItemKeys)
	s.read(ctx, KeyAskedIDs, &p.AskedQuestionIDs)
	s.read(ctx, KeyLocksEnabled, &p.LocksEnabled)

	var selected []int
	if s.read(ctx, KeySelectedBadges, &selected) {
		for _, level := range selected {
			if level >= 1 && level <= domain.LevelCount {
				p.SelectedBadges = append(p.SelectedBadges, level)
			}
		}
	}
	return p
}

func (s *Store) SaveLevel(ctx context.Context, level int) {
	s.write(ctx, KeyLevel, clampLevel(level))
}

func (s *Store) SaveBadges(ctx context.Context, badges [domain.LevelCount]bool) {
	s.write(ctx, KeyBadges, badges)
}

// SaveHistory writes both asked-history slots.
func (s *Store) SaveHistory(ctx context.Context, itemKeys []int, questionIDs []string) {
	s.write(ctx, KeyAskedItems, nonNilInts(itemKeys))
	s.write(ctx, KeyAskedIDs, nonNilStrings(questionIDs))
}

func (s *Store) SaveLocks(ctx context.Context, enabled bool) {
	s.write(ctx, KeyLocksEnabled, enabled)
}

func (s *Store) SaveSelectedBadges(ctx context.Context, levels []int) {
	s.write(ctx, KeySelectedBadges, nonNilInts(levels))
}

// Save writes every slot of p.
func (s *Store) Save(ctx context.Context, p domain.Progress) {
	s.SaveLevel(ctx, p.CurrentLevel)
	s.SaveBadges(ctx, p.Badges)
	s.SaveHistory(ctx, p.AskedItemKeys, p.AskedQuestionIDs)
	s.SaveLocks(ctx, p.LocksEnabled)
	s.SaveSelectedBadges(ctx, p.SelectedBadges)
}

// ResetAll removes every slot.
func (s *Store) ResetAll(ctx context.Context) {
	s.remove(ctx, Keys...)
}

// ClearHistory removes both asked-history slots, for every level.
func (s *Store) ClearHistory(ctx context.Context) {
	s.remove(ctx, KeyAskedItems, KeyAskedIDs)
}

func (s *Store) read(ctx context.Context, key string, dst any) bool {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("progress read failed", "key", key, "error", err)
		return false
	}
	if !found || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("progress slot corrupt, using default", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) write(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("progress encode failed", "key", key, "error", err)
		return
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		s.logger.Warn("progress write failed, keeping in-memory state", "key", key, "error", err)
	}
}

func (s *Store) remove(ctx context.Context, keys ...string) {
	if err := s.kv.Delete(ctx, keys...); err != nil {
		s.logger.Warn("progress delete failed", "keys", keys, "error", err)
	}
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > domain.LevelCount {
		return domain.LevelCount
	}
	return level
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
