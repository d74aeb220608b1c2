package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lsk/studytrackr/internal/auth"
	"github.com/lsk/studytrackr/internal/export"
	"github.com/lsk/studytrackr/internal/store"
	"github.com/lsk/studytrackr/internal/study"
	"github.com/lsk/studytrackr/internal/todo"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	auth   *auth.Service
	width  int
	height int

	user    *store.User
	login   loginModel
	records *study.RecordService

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	today    todayModel
	stats    statsModel
	calendar calendarModel
	settings settingsModel

	help   help.Model
	status string
}

// NewApp builds the root model. A non-nil user (from auto-login) skips the
// login screen.
func NewApp(s *store.Store, a *auth.Service, user *store.User) App {
	h := help.New()
	h.ShowAll = false

	app := App{
		store:      s,
		auth:       a,
		login:      newLoginModel(a),
		activeView: viewToday,
		help:       h,
	}
	if user != nil {
		app.startSession(user)
	}
	return app
}

// startSession wires the per-user services once a user is known.
func (a *App) startSession(user *store.User) {
	a.user = user

	todoSvc := todo.NewService(a.store)
	gate := todo.NewTimerGate()
	ctrl := todo.NewController(user.ID, todoSvc, gate)
	records := study.NewRecordService(a.store, todoSvc)
	stats := study.NewStatisticsService(records)

	a.records = records
	a.today = newTodayModel(ctrl, records, a.store)
	a.stats = newStatsModel(user.ID, stats, records)
	a.calendar = newCalendarModel(user.ID, records, todoSvc, a.store)
	a.settings = newSettingsModel(a.store)
	a.resize()
}

func (a *App) resize() {
	contentHeight := a.height - 4 // header + footer
	a.today.setSize(a.width, contentHeight)
	a.stats.setSize(a.width, contentHeight)
	a.calendar.setSize(a.width, contentHeight)
	a.settings.setSize(a.width, contentHeight)
	a.login.setSize(a.width, a.height)
}

func (a App) Init() tea.Cmd {
	if a.user == nil {
		return tea.Batch(a.login.Init(), tickCmd())
	}
	return tea.Batch(a.today.Init(), a.settings.refresh(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.resize()
		return a, nil

	case tickMsg:
		// The running timer display is sampled each tick; nothing to store.
		return a, tickCmd()

	case loggedInMsg:
		a.startSession(msg.user)
		return a, tea.Batch(a.today.Init(), a.settings.refresh())

	case loggedOutMsg:
		a.user = nil
		a.login = newLoginModel(a.auth)
		a.resize()
		a.status = "Logged out"
		return a, a.login.Init()

	case statusMsg:
		a.status = msg.text
		return a, nil

	case timerStartedMsg:
		a.status = "Timer started"
		return a, nil

	case timerPausedMsg:
		a.status = "Paused at " + formatSeconds(msg.seconds)
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	if a.user == nil {
		var cmd tea.Cmd
		a.login, cmd = a.login.update(msg)
		return a, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Logout):
			if err := a.auth.Logout(a.user); err != nil {
				a.status = fmt.Sprintf("Logout failed: %v", err)
				return a, nil
			}
			return a, func() tea.Msg { return loggedOutMsg{} }
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewToday
			return a, a.today.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewStats
			return a, a.stats.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewCalendar
			return a, a.calendar.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			return a, a.refreshCurrentView()
		}
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewToday:
		a.today, cmd = a.today.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewToday:
		return a.today.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewToday:
		return a.today.refresh()
	case viewStats:
		return a.stats.refresh()
	case viewCalendar:
		return a.calendar.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	if a.user == nil {
		return a.login.view()
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewToday:
		content = a.today.view()
	case viewStats:
		content = a.stats.view()
	case viewCalendar:
		content = a.calendar.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("studytrackr")
	userTag := mutedStyle.Render(" " + a.user.Username)
	left := title + userTag

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Timer indicator in footer
	timerInfo := ""
	if a.today.timer.isRunning() {
		timerInfo = successStyle.Render(" ● " + formatSeconds(a.today.timer.seconds()))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export This Month")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	userID := a.user.ID
	records := a.records
	s := a.store
	return func() tea.Msg {
		now := time.Now()
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		last := first.AddDate(0, 1, -1)

		var todos []store.Todo
		for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
			day, err := s.ListTodosByDate(userID, d)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			todos = append(todos, day...)
		}

		home, _ := os.UserHomeDir()
		dateStr := now.Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("studytrackr-export-%s.csv", dateStr))
			if err := export.ToCSV(todos, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			recs, err := records.RecordsInRange(userID, first, last)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			path = filepath.Join(home, fmt.Sprintf("studytrackr-export-%s.json", dateStr))
			if err := export.ToJSON(todos, recs, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
