package todo

import (
	"sort"

	"github.com/lsk/studytrackr/internal/store"
)

// SortMode selects the display ordering within each status group.
type SortMode int

const (
	SortPriority SortMode = iota
	SortPriorityDesc
	SortCreated
	SortCreatedDesc
	SortTimerSeconds
)

func (m SortMode) Label() string {
	switch m {
	case SortPriorityDesc:
		return "Priority ↓"
	case SortCreated:
		return "Oldest"
	case SortCreatedDesc:
		return "Newest"
	case SortTimerSeconds:
		return "Time spent"
	default:
		return "Priority"
	}
}

// SortManager orders todos for display. All modes rank by status first
// (completed, then in-progress, then pending), then by the mode's key, with
// creation time as the final tie-break. Sorting is stable and side-effect
// free: the input slice is never mutated.
type SortManager struct{}

func NewSortManager() *SortManager {
	return &SortManager{}
}

func (m *SortManager) Sort(todos []store.Todo, mode SortMode) []store.Todo {
	out := make([]store.Todo, len(todos))
	copy(out, todos)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Status.Rank() != b.Status.Rank() {
			return a.Status.Rank() < b.Status.Rank()
		}
		switch mode {
		case SortPriority:
			if a.Priority.Rank() != b.Priority.Rank() {
				return a.Priority.Rank() < b.Priority.Rank()
			}
		case SortPriorityDesc:
			if a.Priority.Rank() != b.Priority.Rank() {
				return a.Priority.Rank() > b.Priority.Rank()
			}
		case SortCreatedDesc:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		case SortTimerSeconds:
			if a.TimerSeconds != b.TimerSeconds {
				return a.TimerSeconds > b.TimerSeconds
			}
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out
}
