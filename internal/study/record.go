package study

import (
	"time"

	"github.com/lsk/studytrackr/internal/store"
	"github.com/lsk/studytrackr/internal/todo"
)

// RecordService maintains the per-user per-day StudyRecord aggregates
// derived from that day's todos.
type RecordService struct {
	store *store.Store
	todos *todo.Service
}

func NewRecordService(s *store.Store, todos *todo.Service) *RecordService {
	return &RecordService{store: s, todos: todos}
}

// UpdateRecord recomputes the day's aggregate from its current todos and
// upserts the snapshot. Called after any timer pause/reset, completion or
// deletion affecting the day.
func (s *RecordService) UpdateRecord(userID int64, date time.Time) error {
	todos, err := s.todos.TodosByDate(userID, date)
	if err != nil {
		return err
	}
	return s.store.SaveStudyRecord(aggregate(userID, date, todos))
}

// Record returns the persisted snapshot, or nil when none exists.
func (s *RecordService) Record(userID int64, date time.Time) (*store.StudyRecord, error) {
	return s.store.GetStudyRecord(userID, date)
}

// RecordOrComputed returns the persisted snapshot if one exists, otherwise an
// aggregate computed live from the day's todos without persisting it. A day
// with no todos at all yields nil, distinguishing "no data" from
// "zero-progress data".
func (s *RecordService) RecordOrComputed(userID int64, date time.Time) (*store.StudyRecord, error) {
	record, err := s.store.GetStudyRecord(userID, date)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	todos, err := s.todos.TodosByDate(userID, date)
	if err != nil {
		return nil, err
	}
	if len(todos) == 0 {
		return nil, nil
	}
	return aggregate(userID, date, todos), nil
}

// RecordsInRange walks every calendar day in the inclusive range, applying
// the per-day logic of RecordOrComputed and omitting days with no data. Keys
// are store.DateLayout strings.
func (s *RecordService) RecordsInRange(userID int64, start, end time.Time) (map[string]store.StudyRecord, error) {
	records := make(map[string]store.StudyRecord)
	for d := store.DateOf(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		record, err := s.RecordOrComputed(userID, d)
		if err != nil {
			return nil, err
		}
		if record != nil {
			records[d.Format(store.DateLayout)] = *record
		}
	}
	return records, nil
}

// HasStudyOn reports whether a snapshot exists for the day and counts at
// least one todo.
func (s *RecordService) HasStudyOn(userID int64, date time.Time) (bool, error) {
	record, err := s.store.GetStudyRecord(userID, date)
	if err != nil {
		return false, err
	}
	return record != nil && record.TotalTodoCount > 0, nil
}

func aggregate(userID int64, date time.Time, todos []store.Todo) *store.StudyRecord {
	record := &store.StudyRecord{
		UserID:         userID,
		StudyDate:      store.DateOf(date),
		TotalTodoCount: len(todos),
	}
	for _, t := range todos {
		record.TotalStudySeconds += t.TimerSeconds
		if t.Status == store.StatusCompleted {
			record.CompletedTodoCount++
		}
	}
	return record
}
