package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SaveStudyRecord upserts the aggregate keyed by (user, day). A later save
// replaces the prior value.
func (s *Store) SaveStudyRecord(r *StudyRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO study_records (user_id, study_date, total_study_seconds, completed_todo_count, total_todo_count)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, study_date) DO UPDATE SET
			total_study_seconds  = excluded.total_study_seconds,
			completed_todo_count = excluded.completed_todo_count,
			total_todo_count     = excluded.total_todo_count`,
		r.UserID, r.StudyDate.Format(DateLayout),
		r.TotalStudySeconds, r.CompletedTodoCount, r.TotalTodoCount,
	)
	if err != nil {
		return fmt.Errorf("save study record: %w", err)
	}
	return nil
}

// GetStudyRecord returns nil, nil when no snapshot exists for the day.
func (s *Store) GetStudyRecord(userID int64, date time.Time) (*StudyRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, study_date, total_study_seconds, completed_todo_count, total_todo_count
		 FROM study_records WHERE user_id = ? AND study_date = ?`,
		userID, date.Format(DateLayout),
	)
	r, err := scanStudyRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get study record: %w", err)
	}
	return r, nil
}

// ListStudyRecords returns snapshots in the inclusive date range, oldest first.
func (s *Store) ListStudyRecords(userID int64, start, end time.Time) ([]StudyRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, study_date, total_study_seconds, completed_todo_count, total_todo_count
		 FROM study_records
		 WHERE user_id = ? AND study_date BETWEEN ? AND ?
		 ORDER BY study_date ASC`,
		userID, start.Format(DateLayout), end.Format(DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("list study records: %w", err)
	}
	defer rows.Close()

	var records []StudyRecord
	for rows.Next() {
		r, err := scanStudyRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

func scanStudyRecord(row rowScanner) (*StudyRecord, error) {
	r := &StudyRecord{}
	var studyDate string
	err := row.Scan(&r.ID, &r.UserID, &studyDate,
		&r.TotalStudySeconds, &r.CompletedTodoCount, &r.TotalTodoCount)
	if err != nil {
		return nil, err
	}
	r.StudyDate, _ = time.ParseInLocation(DateLayout, studyDate, time.Local)
	return r, nil
}
