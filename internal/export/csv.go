package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/lsk/studytrackr/internal/store"
)

func ToCSV(todos []store.Todo, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Date", "Content", "Status", "Priority", "Seconds", "Time", "Completed At"}); err != nil {
		return err
	}

	for _, t := range todos {
		completedStr := ""
		if t.CompletedAt != nil {
			completedStr = t.CompletedAt.Local().Format(time.RFC3339)
		}

		row := []string{
			fmt.Sprintf("%d", t.ID),
			t.CreatedDate.Format(store.DateLayout),
			t.Content,
			t.Status.Label(),
			t.Priority.Label(),
			fmt.Sprintf("%d", t.TimerSeconds),
			formatDuration(t.TimerSeconds),
			completedStr,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
