package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ErrNoRows re-exported so callers don't import database/sql just to check it.
var ErrNoRows = sql.ErrNoRows

func (s *Store) CreateTodo(t *Todo) (*Todo, error) {
	res, err := s.db.Exec(
		`INSERT INTO todos (user_id, content, status, priority, timer_seconds, created_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Content, string(t.Status), string(t.Priority), t.TimerSeconds,
		t.CreatedDate.Format(DateLayout), t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTodo(id)
}

func (s *Store) GetTodo(id int64) (*Todo, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, content, status, priority, timer_seconds, completed_at, created_date, created_at
		 FROM todos WHERE id = ?`, id,
	)
	t, err := scanTodo(row)
	if err != nil {
		return nil, fmt.Errorf("get todo %d: %w", id, err)
	}
	return t, nil
}

// ListTodosByDate returns a user's todos created on the given calendar day,
// oldest first.
func (s *Store) ListTodosByDate(userID int64, date time.Time) ([]Todo, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, content, status, priority, timer_seconds, completed_at, created_date, created_at
		 FROM todos WHERE user_id = ? AND created_date = ?
		 ORDER BY created_at ASC, id ASC`,
		userID, date.Format(DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *t)
	}
	return todos, rows.Err()
}

// UpdateTodo persists content, status, priority, timer seconds and the
// completion timestamp for an existing row.
func (s *Store) UpdateTodo(t *Todo) error {
	var completedAt any
	if t.CompletedAt != nil {
		completedAt = t.CompletedAt.Format(time.RFC3339)
	}
	res, err := s.db.Exec(
		`UPDATE todos SET content = ?, status = ?, priority = ?, timer_seconds = ?, completed_at = ?
		 WHERE id = ?`,
		t.Content, string(t.Status), string(t.Priority), t.TimerSeconds, completedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update todo %d: %w", t.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("update todo %d: %w", t.ID, sql.ErrNoRows)
	}
	return nil
}

func (s *Store) DeleteTodo(id int64) error {
	_, err := s.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*Todo, error) {
	t := &Todo{}
	var status, priority, createdDate, createdAt string
	var completedAt sql.NullString

	err := row.Scan(&t.ID, &t.UserID, &t.Content, &status, &priority,
		&t.TimerSeconds, &completedAt, &createdDate, &createdAt)
	if err != nil {
		return nil, err
	}
	t.Status = Status(status)
	t.Priority = Priority(priority)
	if completedAt.Valid {
		ts, _ := time.Parse(time.RFC3339, completedAt.String)
		t.CompletedAt = &ts
	}
	t.CreatedDate, _ = time.ParseInLocation(DateLayout, createdDate, time.Local)
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return t, nil
}
