package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lsk/studytrackr/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewStats
	viewCalendar
	viewSettings
)

var viewNames = []string{"Today", "Stats", "Calendar", "Settings"}

// --- Messages ---

type loggedInMsg struct {
	user *store.User
}

type loggedOutMsg struct{}

type todosMsg struct {
	todos []store.Todo
}

type timerStartedMsg struct{}

type timerPausedMsg struct {
	seconds int
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type faceEventMsg struct {
	kind string // "detected", "lost", "error"
	text string
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func status(text string) func() tea.Msg {
	return func() tea.Msg { return statusMsg{text: text} }
}

func statusError(text string) func() tea.Msg {
	return func() tea.Msg { return statusMsg{text: text, isError: true} }
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}
