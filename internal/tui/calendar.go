package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lsk/studytrackr/internal/store"
	"github.com/lsk/studytrackr/internal/study"
	"github.com/lsk/studytrackr/internal/todo"
)

// calendarModel renders a month as a heatmap: each day cell is shaded by how
// much of the daily goal was studied.
type calendarModel struct {
	userID  int64
	records *study.RecordService
	todos   *todo.Service
	store   *store.Store
	width   int
	height  int

	selected    time.Time // cursor day
	data        map[string]store.StudyRecord
	dayTodos    []store.Todo
	dailyGoal   int
	sundayStart bool
}

func newCalendarModel(userID int64, records *study.RecordService, todos *todo.Service, s *store.Store) calendarModel {
	return calendarModel{
		userID:    userID,
		records:   records,
		todos:     todos,
		store:     s,
		selected:  store.DateOf(time.Now()),
		dailyGoal: 14400,
	}
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type calendarDataMsg struct {
	data        map[string]store.StudyRecord
	dayTodos    []store.Todo
	goal        int
	sundayStart bool
}

func (c calendarModel) refresh() tea.Cmd {
	return func() tea.Msg {
		first := time.Date(c.selected.Year(), c.selected.Month(), 1, 0, 0, 0, 0, c.selected.Location())
		last := first.AddDate(0, 1, -1)

		data, err := c.records.RecordsInRange(c.userID, first, last)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Calendar error: %v", err), isError: true}
		}
		dayTodos, _ := c.todos.TodosByDate(c.userID, c.selected)

		goal := 14400
		if v, err := c.store.GetSetting("daily_goal"); err == nil {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				goal = n
			}
		}
		weekStart, _ := c.store.GetSetting("week_start")
		return calendarDataMsg{
			data:        data,
			dayTodos:    dayTodos,
			goal:        goal,
			sundayStart: weekStart == "sunday",
		}
	}
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case calendarDataMsg:
		c.data = msg.data
		c.dayTodos = msg.dayTodos
		c.dailyGoal = msg.goal
		c.sundayStart = msg.sundayStart
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			c.selected = c.selected.AddDate(0, 0, -1)
			return c, c.refresh()
		case key.Matches(msg, keys.Right):
			c.selected = c.selected.AddDate(0, 0, 1)
			return c, c.refresh()
		case key.Matches(msg, keys.Up):
			c.selected = c.selected.AddDate(0, 0, -7)
			return c, c.refresh()
		case key.Matches(msg, keys.Down):
			c.selected = c.selected.AddDate(0, 0, 7)
			return c, c.refresh()
		}
	}
	return c, nil
}

func (c calendarModel) view() string {
	w := c.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Calendar"), "  ",
		highlightStyle.Render(c.selected.Format("January 2006")),
	)

	grid := c.renderGrid()
	detail := c.renderDayDetail()
	nav := mutedStyle.Render("  ←/→: day  ↑/↓: week")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", grid, "", detail, "", nav),
	)
}

func (c calendarModel) renderGrid() string {
	var rows []string

	var head []string
	for _, d := range weekdayHeader(c.sundayStart) {
		head = append(head, mutedStyle.Render(fmt.Sprintf(" %s ", d)))
	}
	rows = append(rows, strings.Join(head, " "))

	first := time.Date(c.selected.Year(), c.selected.Month(), 1, 0, 0, 0, 0, c.selected.Location())
	last := first.AddDate(0, 1, -1)

	// Leading blanks up to the first day's column.
	offset := gridOffset(first, c.sundayStart)
	cells := make([]string, 0, 42)
	for i := 0; i < offset; i++ {
		cells = append(cells, "    ")
	}

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		cells = append(cells, c.renderCell(d))
	}

	for i := 0; i < len(cells); i += 7 {
		end := i + 7
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, strings.Join(cells[i:end], " "))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (c calendarModel) renderCell(d time.Time) string {
	label := fmt.Sprintf(" %2d ", d.Day())

	style := lipgloss.NewStyle().Foreground(colorMuted)
	if r, ok := c.data[d.Format(store.DateLayout)]; ok {
		style = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1B26")).
			Background(c.heatColor(r.TotalStudySeconds)).
			Bold(true)
	}
	if d.Equal(c.selected) {
		style = style.Underline(true).Bold(true)
		if _, ok := c.data[d.Format(store.DateLayout)]; !ok {
			style = style.Foreground(colorPrimary)
		}
	}
	return style.Render(label)
}

// weekdayHeader returns the column labels in week_start order. Weekly
// statistics always roll up Monday through Sunday; the setting only changes
// how the grid is drawn.
func weekdayHeader(sundayStart bool) []string {
	if sundayStart {
		return []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}
	}
	return []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}
}

// gridOffset is the number of blank cells before the month's first day.
func gridOffset(first time.Time, sundayStart bool) int {
	if sundayStart {
		return int(first.Weekday())
	}
	return int(first.Weekday()+6) % 7
}

// heatColor buckets seconds studied against the daily goal.
func (c calendarModel) heatColor(seconds int) lipgloss.Color {
	if seconds <= 0 {
		return heatColors[0]
	}
	ratio := float64(seconds) / float64(c.dailyGoal)
	idx := 1 + int(ratio*float64(len(heatColors)-2))
	if idx >= len(heatColors) {
		idx = len(heatColors) - 1
	}
	return heatColors[idx]
}

func (c calendarModel) renderDayDetail() string {
	title := titleStyle.Render(c.selected.Format("Mon, Jan 02"))

	r, ok := c.data[c.selected.Format(store.DateLayout)]
	if !ok {
		return lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("  No study activity"))
	}

	summary := fmt.Sprintf("  %s studied, %d/%d todos done",
		highlightStyle.Render(formatSeconds(r.TotalStudySeconds)),
		r.CompletedTodoCount, r.TotalTodoCount,
	)

	rows := []string{title, summary}
	for _, td := range c.dayTodos {
		icon := "○"
		if td.Status == store.StatusCompleted {
			icon = "✓"
		}
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %s %s (%s)", icon, td.Content, formatSeconds(td.TimerSeconds))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
