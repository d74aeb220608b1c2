package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lsk/studytrackr/internal/store"
)

func exportTodos() []store.Todo {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	done := time.Date(2026, 3, 2, 14, 30, 0, 0, time.Local)
	return []store.Todo{
		{
			ID: 1, Content: "Read chapter 3", Status: store.StatusCompleted,
			Priority: store.PriorityHigh, TimerSeconds: 3725,
			CreatedDate: day, CompletedAt: &done,
		},
		{
			ID: 2, Content: "Practice problems", Status: store.StatusPending,
			Priority: store.PriorityLow, TimerSeconds: 0,
			CreatedDate: day,
		},
	}
}

// ============================================================
// CSV export
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := ToCSV(exportTodos(), path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][7] != "Completed At" {
		t.Fatalf("unexpected header: %v", rows[0])
	}

	first := rows[1]
	if first[1] != "2026-03-02" {
		t.Fatalf("expected ISO date, got %q", first[1])
	}
	if first[2] != "Read chapter 3" || first[3] != "Completed" || first[4] != "High" {
		t.Fatalf("unexpected row: %v", first)
	}
	if first[6] != "01:02:05" {
		t.Fatalf("expected formatted duration 01:02:05, got %q", first[6])
	}
	if first[7] == "" {
		t.Fatal("completed todo should carry a timestamp")
	}

	second := rows[2]
	if second[7] != "" {
		t.Fatal("pending todo should have empty completed column")
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}

// ============================================================
// JSON export
// ============================================================

func TestToJSON(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	records := map[string]store.StudyRecord{
		"2026-03-02": {
			UserID: 1, StudyDate: day,
			TotalStudySeconds: 3725, CompletedTodoCount: 1, TotalTodoCount: 2,
		},
	}

	path := filepath.Join(t.TempDir(), "export.json")
	if err := ToJSON(exportTodos(), records, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var got jsonExport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("export is not valid json: %v", err)
	}

	if got.TodoCount != 2 || len(got.Todos) != 2 {
		t.Fatalf("expected 2 todos, got count=%d len=%d", got.TodoCount, len(got.Todos))
	}
	if got.Todos[0].Date != "2026-03-02" || got.Todos[0].Time != "01:02:05" {
		t.Fatalf("unexpected first todo: %+v", got.Todos[0])
	}
	if got.Todos[1].CompletedAt != "" {
		t.Fatal("pending todo should omit completed_at")
	}

	if len(got.Days) != 1 {
		t.Fatalf("expected 1 day record, got %d", len(got.Days))
	}
	if got.Days[0].TotalSeconds != 3725 || got.Days[0].TotalTodos != 2 {
		t.Fatalf("unexpected day record: %+v", got.Days[0])
	}
}

func TestToJSONDaysSorted(t *testing.T) {
	records := map[string]store.StudyRecord{
		"2026-03-05": {TotalStudySeconds: 3},
		"2026-03-01": {TotalStudySeconds: 1},
		"2026-03-03": {TotalStudySeconds: 2},
	}

	path := filepath.Join(t.TempDir(), "sorted.json")
	if err := ToJSON(nil, records, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var got jsonExport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}

	want := []string{"2026-03-01", "2026-03-03", "2026-03-05"}
	for i, d := range want {
		if got.Days[i].Date != d {
			t.Fatalf("position %d: expected %s, got %s", i, d, got.Days[i].Date)
		}
	}
}

// ============================================================
// Duration formatting
// ============================================================

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		secs int
		want string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{3725, "01:02:05"},
		{86399, "23:59:59"},
	}
	for _, c := range cases {
		if got := formatDuration(c.secs); got != c.want {
			t.Errorf("%d: expected %q, got %q", c.secs, c.want, got)
		}
	}
}
