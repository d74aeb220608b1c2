package todo

import (
	"fmt"
	"time"

	"github.com/lsk/studytrackr/internal/store"
)

// Service is the consumer-facing surface for todo CRUD and timer-seconds
// persistence.
type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// CreateTodo validates content, assigns pending status and the current
// timestamp, persists, and returns the row with its assigned ID.
func (s *Service) CreateTodo(userID int64, content string, priority store.Priority) (*store.Todo, error) {
	t, err := store.NewTodo(userID, content, priority)
	if err != nil {
		return nil, err
	}
	created, err := s.store.CreateTodo(t)
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return created, nil
}

// TodayTodos returns the user's todos created today, oldest first.
func (s *Service) TodayTodos(userID int64) ([]store.Todo, error) {
	return s.store.ListTodosByDate(userID, store.DateOf(time.Now()))
}

func (s *Service) TodosByDate(userID int64, date time.Time) ([]store.Todo, error) {
	return s.store.ListTodosByDate(userID, date)
}

func (s *Service) UpdateTodo(t *store.Todo) error {
	return s.store.UpdateTodo(t)
}

func (s *Service) DeleteTodo(id int64) error {
	return s.store.DeleteTodo(id)
}

// UpdateTimerSeconds overwrites the accumulated seconds of one of today's
// todos. A timer can only be updated while its todo is on today's list;
// anything else is ErrNotFound.
func (s *Service) UpdateTimerSeconds(userID, todoID int64, seconds int) error {
	todos, err := s.TodayTodos(userID)
	if err != nil {
		return err
	}
	for i := range todos {
		if todos[i].ID == todoID {
			todos[i].TimerSeconds = seconds
			return s.store.UpdateTodo(&todos[i])
		}
	}
	return fmt.Errorf("update timer for todo %d: %w", todoID, ErrNotFound)
}
