package app

import (
	"context"
	"math"

	"periodic-quiz/internal/domain"
	"periodic-quiz/internal/levels"
)

// ModuleStats summarizes badge completion of m. NextLevel is the first level
// of m without a badge (the last level when all are earned); with locks
// enabled it is pulled back to the first unearned level overall.
func (e *Engine) ModuleStats(m domain.Module) domain.ModuleStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return moduleStats(m, e.progress.Badges, e.progress.LocksEnabled)
}

func moduleStats(m domain.Module, badges [domain.LevelCount]bool, locks bool) domain.ModuleStats {
	total := m.End - m.Start + 1
	completed := 0
	for l := m.Start; l <= m.End; l++ {
		if badges[l-1] {
			completed++
		}
	}

	next := m.End
	for l := m.Start; l <= m.End; l++ {
		if !badges[l-1] {
			next = l
			break
		}
	}
	if locks {
		for l := 1; l < next; l++ {
			if !badges[l-1] {
				next = l
				break
			}
		}
	}

	return domain.ModuleStats{
		Completed: completed,
		Total:     total,
		Percent:   int(math.Round(float64(completed) / float64(total) * 100)),
		NextLevel: next,
	}
}

// StartModule starts the next playable level of the module with id.
func (e *Engine) StartModule(ctx context.Context, id string) (Snapshot, error) {
	m, err := levels.ModuleByID(id)
	if err != nil {
		return Snapshot{}, err
	}
	return e.StartLevel(ctx, e.ModuleStats(m).NextLevel)
}

// ResetModule clears the badges of the module with id, then resets the asked
// history of every level through ResetAllHistory.
func (e *Engine) ResetModule(ctx context.Context, id string) error {
	m, err := levels.ModuleByID(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	for l := m.Start; l <= m.End; l++ {
		e.progress.Badges[l-1] = false
	}
	selected := e.progress.SelectedBadges[:0:0]
	for _, l := range e.progress.SelectedBadges {
		if l < m.Start || l > m.End {
			selected = append(selected, l)
		}
	}
	e.progress.SelectedBadges = selected
	e.store.SaveBadges(ctx, e.progress.Badges)
	e.store.SaveSelectedBadges(ctx, selected)
	e.mu.Unlock()

	e.ResetAllHistory(ctx)
	e.logger.Info("module reset", "module", m.ID)
	return nil
}

// ResetAllHistory forgets every asked item and question id, for all levels.
func (e *Engine) ResetAllHistory(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress.AskedItemKeys = nil
	e.progress.AskedQuestionIDs = nil
	e.store.ClearHistory(ctx)
}
