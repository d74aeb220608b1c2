package todo

import "github.com/lsk/studytrackr/internal/store"

// Filter selects which todos a view shows.
type Filter int

const (
	FilterAll Filter = iota
	FilterPending
	FilterInProgress
	FilterCompleted
)

func (f Filter) Label() string {
	switch f {
	case FilterPending:
		return "Pending"
	case FilterInProgress:
		return "In Progress"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// FilterManager holds the current filter and applies it to a list.
type FilterManager struct {
	current Filter
}

func NewFilterManager() *FilterManager {
	return &FilterManager{current: FilterAll}
}

func (m *FilterManager) Set(f Filter) {
	m.current = f
}

func (m *FilterManager) Current() Filter {
	return m.current
}

// Apply returns the subsequence matching the current filter, preserving
// relative order. FilterAll returns the input unchanged.
func (m *FilterManager) Apply(todos []store.Todo) []store.Todo {
	if m.current == FilterAll {
		return todos
	}

	var want store.Status
	switch m.current {
	case FilterPending:
		want = store.StatusPending
	case FilterInProgress:
		want = store.StatusInProgress
	case FilterCompleted:
		want = store.StatusCompleted
	}

	var out []store.Todo
	for _, t := range todos {
		if t.Status == want {
			out = append(out, t)
		}
	}
	return out
}
