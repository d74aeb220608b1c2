package todo

import (
	"time"

	"github.com/lsk/studytrackr/internal/store"
)

// Controller orchestrates the todo list, the timer gate and the filter/sort
// pipeline for one logged-in user. The presentation layer talks only to this.
type Controller struct {
	userID  int64
	service *Service
	gate    *TimerGate
	filters *FilterManager
	sorter  *SortManager
	mode    SortMode
}

func NewController(userID int64, service *Service, gate *TimerGate) *Controller {
	return &Controller{
		userID:  userID,
		service: service,
		gate:    gate,
		filters: NewFilterManager(),
		sorter:  NewSortManager(),
		mode:    SortPriority,
	}
}

// TodayTodos returns today's todos filtered by the current filter and sorted
// by the current mode.
func (c *Controller) TodayTodos() ([]store.Todo, error) {
	todos, err := c.service.TodayTodos(c.userID)
	if err != nil {
		return nil, err
	}
	return c.sorter.Sort(c.filters.Apply(todos), c.mode), nil
}

func (c *Controller) SetFilter(f Filter)      { c.filters.Set(f) }
func (c *Controller) CurrentFilter() Filter   { return c.filters.Current() }
func (c *Controller) SetSortMode(m SortMode)  { c.mode = m }
func (c *Controller) CurrentSortMode() SortMode { return c.mode }

func (c *Controller) CreateTodo(content string, priority store.Priority) (*store.Todo, error) {
	return c.service.CreateTodo(c.userID, content, priority)
}

func (c *Controller) UpdateContent(t *store.Todo, content string) error {
	normalized, err := store.NormalizeContent(content)
	if err != nil {
		return err
	}
	t.Content = normalized
	return c.service.UpdateTodo(t)
}

func (c *Controller) UpdatePriority(t *store.Todo, p store.Priority) error {
	t.Priority = p
	return c.service.UpdateTodo(t)
}

// StartTimer marks t's timer active. If another todo's timer is running it
// fails with AlreadyRunningError naming that todo. Starting a pending todo
// moves it to in-progress.
func (c *Controller) StartTimer(t *store.Todo) error {
	if !c.gate.CanStart(t.ID) {
		active, _ := c.gate.ActiveID()
		return &AlreadyRunningError{ActiveID: active}
	}

	c.gate.Start(t.ID)

	if t.Status == store.StatusPending {
		t.Status = store.StatusInProgress
		if err := c.service.UpdateTodo(t); err != nil {
			return err
		}
	}
	return nil
}

// PauseTimer persists the elapsed seconds, then clears the gate. The gate is
// only cleared after a successful persist, so a failed save leaves the timer
// attributable to its todo.
func (c *Controller) PauseTimer(t *store.Todo, elapsedSeconds int) error {
	if err := c.service.UpdateTimerSeconds(c.userID, t.ID, elapsedSeconds); err != nil {
		return &SaveFailedError{Err: err}
	}
	t.TimerSeconds = elapsedSeconds
	c.gate.Stop(t.ID)
	return nil
}

// ResetTimer persists zero seconds and clears the gate.
func (c *Controller) ResetTimer(t *store.Todo) error {
	if err := c.service.UpdateTimerSeconds(c.userID, t.ID, 0); err != nil {
		return &SaveFailedError{Err: err}
	}
	t.TimerSeconds = 0
	c.gate.Stop(t.ID)
	return nil
}

// CompleteTodo stops t's timer if it is running, marks it completed with the
// current timestamp and persists.
func (c *Controller) CompleteTodo(t *store.Todo) error {
	if c.gate.IsActive(t.ID) {
		c.gate.Stop(t.ID)
	}
	now := time.Now()
	t.Status = store.StatusCompleted
	t.CompletedAt = &now
	return c.service.UpdateTodo(t)
}

// DeleteTodo stops t's timer if it is running, then removes the row.
func (c *Controller) DeleteTodo(t *store.Todo) error {
	if c.gate.IsActive(t.ID) {
		c.gate.Stop(t.ID)
	}
	return c.service.DeleteTodo(t.ID)
}

func (c *Controller) CanStartTimer(t *store.Todo) bool {
	return c.gate.CanStart(t.ID)
}

func (c *Controller) IsTimerActive(t *store.Todo) bool {
	return c.gate.IsActive(t.ID)
}

func (c *Controller) ActiveTimerID() (int64, bool) {
	return c.gate.ActiveID()
}

func (c *Controller) UserID() int64 {
	return c.userID
}
