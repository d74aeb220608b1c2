package export

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/lsk/studytrackr/internal/store"
)

type jsonExport struct {
	ExportedAt string       `json:"exported_at"`
	TodoCount  int          `json:"todo_count"`
	Todos      []jsonTodo   `json:"todos"`
	Days       []jsonRecord `json:"days,omitempty"`
}

type jsonTodo struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Content     string `json:"content"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Seconds     int    `json:"timer_seconds"`
	Time        string `json:"time"`
	CompletedAt string `json:"completed_at,omitempty"`
}

type jsonRecord struct {
	Date           string `json:"date"`
	TotalSeconds   int    `json:"total_study_seconds"`
	CompletedTodos int    `json:"completed_todo_count"`
	TotalTodos     int    `json:"total_todo_count"`
}

func ToJSON(todos []store.Todo, records map[string]store.StudyRecord, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		TodoCount:  len(todos),
	}

	for _, t := range todos {
		completedStr := ""
		if t.CompletedAt != nil {
			completedStr = t.CompletedAt.Local().Format(time.RFC3339)
		}
		out.Todos = append(out.Todos, jsonTodo{
			ID:          t.ID,
			Date:        t.CreatedDate.Format(store.DateLayout),
			Content:     t.Content,
			Status:      t.Status.Label(),
			Priority:    t.Priority.Label(),
			Seconds:     t.TimerSeconds,
			Time:        formatDuration(t.TimerSeconds),
			CompletedAt: completedStr,
		})
	}

	dates := make([]string, 0, len(records))
	for d := range records {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		r := records[d]
		out.Days = append(out.Days, jsonRecord{
			Date:           d,
			TotalSeconds:   r.TotalStudySeconds,
			CompletedTodos: r.CompletedTodoCount,
			TotalTodos:     r.TotalTodoCount,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
