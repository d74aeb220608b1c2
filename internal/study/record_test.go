package study

import (
	"testing"
	"time"

	"github.com/lsk/studytrackr/internal/store"
	"github.com/lsk/studytrackr/internal/todo"
)

func newTestServices(t *testing.T) (*RecordService, *todo.Service, *store.Store, int64) {
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

	todos := todo.NewService(s)
	return NewRecordService(s, todos), todos, s, u.ID
}

// insertTodo writes a todo for an arbitrary date directly through the store.
func insertTodo(t *testing.T, s *store.Store, userID int64, date time.Time, seconds int, status store.Status) *store.Todo {
	t.Helper()
	td := &store.Todo{
		UserID:       userID,
		Content:      "work",
		Status:       status,
		Priority:     store.PriorityMedium,
		TimerSeconds: seconds,
		CreatedDate:  store.DateOf(date),
		CreatedAt:    date,
	}
	created, err := s.CreateTodo(td)
	if err != nil {
		t.Fatalf("insert todo: %v", err)
	}
	return created
}

// ============================================================
// RecordService
// ============================================================

func TestUpdateRecordAggregates(t *testing.T) {
	records, _, s, userID := newTestServices(t)
	day := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)

	insertTodo(t, s, userID, day, 300, store.StatusCompleted)
	insertTodo(t, s, userID, day, 120, store.StatusCompleted)
	insertTodo(t, s, userID, day, 0, store.StatusPending)

	if err := records.UpdateRecord(userID, day); err != nil {
		t.Fatal(err)
	}

	got, err := records.Record(userID, day)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected persisted record")
	}
	if got.TotalStudySeconds != 420 {
		t.Fatalf("expected 420 total seconds, got %d", got.TotalStudySeconds)
	}
	if got.TotalTodoCount != 3 || got.CompletedTodoCount != 2 {
		t.Fatalf("expected 3 todos / 2 completed, got %d / %d", got.TotalTodoCount, got.CompletedTodoCount)
	}
}

func TestUpdateRecordReplacesSnapshot(t *testing.T) {
	records, _, s, userID := newTestServices(t)
	day := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)

	td := insertTodo(t, s, userID, day, 60, store.StatusInProgress)
	if err := records.UpdateRecord(userID, day); err != nil {
		t.Fatal(err)
	}

	// More time accrues; the snapshot is replaced, not summed.
	td.TimerSeconds = 90
	if err := s.UpdateTodo(td); err != nil {
		t.Fatal(err)
	}
	if err := records.UpdateRecord(userID, day); err != nil {
		t.Fatal(err)
	}

	got, _ := records.Record(userID, day)
	if got.TotalStudySeconds != 90 {
		t.Fatalf("expected replaced total 90, got %d", got.TotalStudySeconds)
	}
}

func TestRecordOrComputedEmptyDay(t *testing.T) {
	records, _, _, userID := newTestServices(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	got, err := records.RecordOrComputed(userID, day)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("day with no todos should yield nil, got %+v", got)
	}
}

func TestRecordOrComputedLive(t *testing.T) {
	records, _, s, userID := newTestServices(t)
	day := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)

	// Todos exist but no snapshot was persisted.
	insertTodo(t, s, userID, day, 200, store.StatusCompleted)
	insertTodo(t, s, userID, day, 100, store.StatusPending)

	got, err := records.RecordOrComputed(userID, day)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected live aggregate")
	}
	if got.TotalStudySeconds != 300 || got.TotalTodoCount != 2 || got.CompletedTodoCount != 1 {
		t.Fatalf("unexpected live aggregate: %+v", got)
	}

	// The live aggregate must not have been persisted.
	persisted, _ := records.Record(userID, day)
	if persisted != nil {
		t.Fatal("RecordOrComputed must not write a snapshot")
	}
}

func TestRecordOrComputedPrefersPersisted(t *testing.T) {
	records, _, s, userID := newTestServices(t)
	day := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)

	insertTodo(t, s, userID, day, 60, store.StatusPending)
	if err := records.UpdateRecord(userID, day); err != nil {
		t.Fatal(err)
	}

	// Diverge the live state from the snapshot.
	insertTodo(t, s, userID, day, 999, store.StatusPending)

	got, err := records.RecordOrComputed(userID, day)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalStudySeconds != 60 {
		t.Fatalf("persisted snapshot should win, got %d seconds", got.TotalStudySeconds)
	}
}

func TestRecordsInRange(t *testing.T) {
	records, _, s, userID := newTestServices(t)
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	insertTodo(t, s, userID, base, 100, store.StatusCompleted)
	insertTodo(t, s, userID, base.AddDate(0, 0, 2), 200, store.StatusPending)
	// Day base+1 has nothing.

	got, err := records.RecordsInRange(userID, base, base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 days with data, got %d", len(got))
	}

	key := base.Format(store.DateLayout)
	if r, ok := got[key]; !ok || r.TotalStudySeconds != 100 {
		t.Fatalf("missing or wrong record for %s: %+v", key, got)
	}
	gapKey := base.AddDate(0, 0, 1).Format(store.DateLayout)
	if _, ok := got[gapKey]; ok {
		t.Fatal("empty day must be omitted from the range map")
	}
}

func TestHasStudyOn(t *testing.T) {
	records, _, s, userID := newTestServices(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	ok, err := records.HasStudyOn(userID, day)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("no snapshot yet")
	}

	insertTodo(t, s, userID, day, 10, store.StatusPending)
	if err := records.UpdateRecord(userID, day); err != nil {
		t.Fatal(err)
	}

	ok, err = records.HasStudyOn(userID, day)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected study day after snapshot")
	}
}
