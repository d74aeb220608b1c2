package todo

import (
	"errors"
	"testing"

	"github.com/lsk/studytrackr/internal/store"
)

func newTestController(t *testing.T) (*Controller, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	u, err := s.CreateUser("tester01", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	svc := NewService(s)
	return NewController(u.ID, svc, NewTimerGate()), s
}

func addTodo(t *testing.T, c *Controller, content string) *store.Todo {
	t.Helper()
	td, err := c.CreateTodo(content, store.PriorityMedium)
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}
	return td
}

// ============================================================
// Service
// ============================================================

func TestServiceCreateTodoValidation(t *testing.T) {
	c, _ := newTestController(t)

	if _, err := c.CreateTodo("   ", store.PriorityHigh); !errors.Is(err, store.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}

	td := addTodo(t, c, "  Read notes  ")
	if td.Content != "Read notes" {
		t.Fatalf("content not trimmed: %q", td.Content)
	}
}

func TestUpdateTimerSecondsUnknownTodo(t *testing.T) {
	c, _ := newTestController(t)
	svc := c.service

	err := svc.UpdateTimerSeconds(c.UserID(), 12345, 60)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTimerSecondsPersists(t *testing.T) {
	c, s := newTestController(t)
	td := addTodo(t, c, "Persist me")

	if err := c.service.UpdateTimerSeconds(c.UserID(), td.ID, 321); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTodo(td.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TimerSeconds != 321 {
		t.Fatalf("expected 321 seconds, got %d", got.TimerSeconds)
	}
}

// ============================================================
// Controller: timer lifecycle
// ============================================================

func TestStartTimerMovesPendingToInProgress(t *testing.T) {
	c, s := newTestController(t)
	td := addTodo(t, c, "Focus block")

	if err := c.StartTimer(td); err != nil {
		t.Fatal(err)
	}
	if td.Status != store.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", td.Status)
	}
	if !c.IsTimerActive(td) {
		t.Fatal("timer should be active")
	}

	// Persisted too.
	got, _ := s.GetTodo(td.ID)
	if got.Status != store.StatusInProgress {
		t.Fatalf("status not persisted: %s", got.Status)
	}
}

func TestStartTimerRefusesSecond(t *testing.T) {
	c, _ := newTestController(t)
	first := addTodo(t, c, "First")
	second := addTodo(t, c, "Second")

	if err := c.StartTimer(first); err != nil {
		t.Fatal(err)
	}

	err := c.StartTimer(second)
	var running *AlreadyRunningError
	if !errors.As(err, &running) {
		t.Fatalf("expected AlreadyRunningError, got %v", err)
	}
	if running.ActiveID != first.ID {
		t.Fatalf("error should name the running todo %d, got %d", first.ID, running.ActiveID)
	}
	if second.Status != store.StatusPending {
		t.Fatal("refused start must not change status")
	}
}

func TestStartTimerReentrantForOwner(t *testing.T) {
	c, _ := newTestController(t)
	td := addTodo(t, c, "Resume me")

	if err := c.StartTimer(td); err != nil {
		t.Fatal(err)
	}
	// Pause/resume cycle: starting the same todo again is allowed.
	if err := c.StartTimer(td); err != nil {
		t.Fatalf("owner restart refused: %v", err)
	}
}

func TestPauseTimerPersistsElapsed(t *testing.T) {
	c, s := newTestController(t)
	td := addTodo(t, c, "One minute five")

	if err := c.StartTimer(td); err != nil {
		t.Fatal(err)
	}
	if err := c.PauseTimer(td, 65); err != nil {
		t.Fatal(err)
	}

	if c.IsTimerActive(td) {
		t.Fatal("pause should clear the gate")
	}
	got, _ := s.GetTodo(td.ID)
	if got.TimerSeconds != 65 {
		t.Fatalf("expected 65 seconds persisted, got %d", got.TimerSeconds)
	}
	if got.Status != store.StatusInProgress {
		t.Fatalf("pause must not change status, got %s", got.Status)
	}

	// Another todo may start now.
	other := addTodo(t, c, "Next up")
	if err := c.StartTimer(other); err != nil {
		t.Fatalf("gate not released after pause: %v", err)
	}
}

func TestPauseTimerSaveFailureKeepsGate(t *testing.T) {
	c, s := newTestController(t)
	td := addTodo(t, c, "Doomed save")

	if err := c.StartTimer(td); err != nil {
		t.Fatal(err)
	}

	// Delete behind the controller's back so the persist fails.
	if err := s.DeleteTodo(td.ID); err != nil {
		t.Fatal(err)
	}

	err := c.PauseTimer(td, 30)
	var saveFailed *SaveFailedError
	if !errors.As(err, &saveFailed) {
		t.Fatalf("expected SaveFailedError, got %v", err)
	}
	// A failed persist must leave the timer attributable to its todo.
	if !c.IsTimerActive(td) {
		t.Fatal("gate cleared despite failed save")
	}
}

func TestResetTimer(t *testing.T) {
	c, s := newTestController(t)
	td := addTodo(t, c, "Reset me")

	if err := c.StartTimer(td); err != nil {
		t.Fatal(err)
	}
	if err := c.PauseTimer(td, 120); err != nil {
		t.Fatal(err)
	}
	if err := c.ResetTimer(td); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetTodo(td.ID)
	if got.TimerSeconds != 0 {
		t.Fatalf("expected 0 after reset, got %d", got.TimerSeconds)
	}
}

func TestCompleteTodoStopsOwnTimer(t *testing.T) {
	c, s := newTestController(t)
	td := addTodo(t, c, "Almost done")

	if err := c.StartTimer(td); err != nil {
		t.Fatal(err)
	}
	if err := c.CompleteTodo(td); err != nil {
		t.Fatal(err)
	}

	if c.IsTimerActive(td) {
		t.Fatal("completing should stop the todo's timer")
	}
	got, _ := s.GetTodo(td.ID)
	if got.Status != store.StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatal("completion timestamp missing")
	}
}

func TestCompleteTodoLeavesOtherTimerRunning(t *testing.T) {
	c, _ := newTestController(t)
	running := addTodo(t, c, "Running")
	other := addTodo(t, c, "Other")

	if err := c.StartTimer(running); err != nil {
		t.Fatal(err)
	}
	if err := c.CompleteTodo(other); err != nil {
		t.Fatal(err)
	}

	if !c.IsTimerActive(running) {
		t.Fatal("completing an unrelated todo must not stop the running timer")
	}
}

func TestDeleteTodoStopsOwnTimer(t *testing.T) {
	c, _ := newTestController(t)
	td := addTodo(t, c, "Delete me")

	if err := c.StartTimer(td); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteTodo(td); err != nil {
		t.Fatal(err)
	}

	if _, active := c.ActiveTimerID(); active {
		t.Fatal("deleting the running todo must free the gate")
	}

	todos, err := c.TodayTodos()
	if err != nil {
		t.Fatal(err)
	}
	if len(todos) != 0 {
		t.Fatalf("expected empty list, got %d", len(todos))
	}
}

// ============================================================
// Controller: edits and listing
// ============================================================

func TestUpdateContentValidates(t *testing.T) {
	c, s := newTestController(t)
	td := addTodo(t, c, "Old text")

	if err := c.UpdateContent(td, "  "); !errors.Is(err, store.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}

	if err := c.UpdateContent(td, " New text "); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetTodo(td.ID)
	if got.Content != "New text" {
		t.Fatalf("expected trimmed update, got %q", got.Content)
	}
}

func TestTodayTodosFilteredAndSorted(t *testing.T) {
	c, _ := newTestController(t)
	low := addTodo(t, c, "low")
	if err := c.UpdatePriority(low, store.PriorityLow); err != nil {
		t.Fatal(err)
	}
	high := addTodo(t, c, "high")
	if err := c.UpdatePriority(high, store.PriorityHigh); err != nil {
		t.Fatal(err)
	}
	done := addTodo(t, c, "done")
	if err := c.CompleteTodo(done); err != nil {
		t.Fatal(err)
	}

	todos, err := c.TodayTodos()
	if err != nil {
		t.Fatal(err)
	}
	if len(todos) != 3 {
		t.Fatalf("expected 3 todos, got %d", len(todos))
	}
	// Completed group first, then pending by priority.
	if todos[0].ID != done.ID || todos[1].ID != high.ID || todos[2].ID != low.ID {
		t.Fatalf("order wrong: %d %d %d", todos[0].ID, todos[1].ID, todos[2].ID)
	}

	c.SetFilter(FilterCompleted)
	todos, err = c.TodayTodos()
	if err != nil {
		t.Fatal(err)
	}
	if len(todos) != 1 || todos[0].ID != done.ID {
		t.Fatalf("completed filter wrong: %+v", todos)
	}
}
