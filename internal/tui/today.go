package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/lsk/studytrackr/internal/facedetect"
	"github.com/lsk/studytrackr/internal/store"
	"github.com/lsk/studytrackr/internal/study"
	"github.com/lsk/studytrackr/internal/todo"
)

type todayModel struct {
	ctrl    *todo.Controller
	records *study.RecordService
	store   *store.Store
	width   int
	height  int

	todos  []store.Todo
	cursor int
	timer  elapsedTimer

	formActive   bool
	form         *huh.Form
	formContent  *string
	formPriority *string

	// Face detection
	watching bool
	detector *facedetect.Detector
	monitor  *facedetect.Monitor
	faceCh   chan faceEventMsg
}

func newTodayModel(ctrl *todo.Controller, records *study.RecordService, s *store.Store) todayModel {
	content, priority := "", string(store.PriorityMedium)
	return todayModel{
		ctrl:         ctrl,
		records:      records,
		store:        s,
		formContent:  &content,
		formPriority: &priority,
	}
}

func (t todayModel) Init() tea.Cmd {
	return t.refresh()
}

func (t *todayModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t todayModel) refresh() tea.Cmd {
	return func() tea.Msg {
		todos, err := t.ctrl.TodayTodos()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return todosMsg{todos: todos}
	}
}

func (t todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case todosMsg:
		t.todos = msg.todos
		if t.cursor >= len(t.todos) {
			t.cursor = len(t.todos) - 1
		}
		if t.cursor < 0 {
			t.cursor = 0
		}
		return t, nil

	case faceEventMsg:
		return t.handleFaceEvent(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if t.cursor > 0 {
				t.cursor--
			}
		case key.Matches(msg, keys.Down):
			if t.cursor < len(t.todos)-1 {
				t.cursor++
			}
		case key.Matches(msg, keys.New):
			return t.showForm()
		case key.Matches(msg, keys.Start):
			return t.startTimer()
		case key.Matches(msg, keys.Pause):
			return t.pauseTimer()
		case key.Matches(msg, keys.Reset):
			return t.resetTimer()
		case key.Matches(msg, keys.Complete):
			return t.completeTodo()
		case key.Matches(msg, keys.Delete):
			return t.deleteTodo()
		case key.Matches(msg, keys.Filter):
			t.ctrl.SetFilter(nextFilter(t.ctrl.CurrentFilter()))
			return t, t.refresh()
		case key.Matches(msg, keys.Sort):
			t.ctrl.SetSortMode(nextSortMode(t.ctrl.CurrentSortMode()))
			return t, t.refresh()
		case key.Matches(msg, keys.Watch):
			return t.toggleWatch()
		}
	}
	return t, nil
}

func nextFilter(f todo.Filter) todo.Filter {
	switch f {
	case todo.FilterAll:
		return todo.FilterPending
	case todo.FilterPending:
		return todo.FilterInProgress
	case todo.FilterInProgress:
		return todo.FilterCompleted
	default:
		return todo.FilterAll
	}
}

func nextSortMode(m todo.SortMode) todo.SortMode {
	switch m {
	case todo.SortPriority:
		return todo.SortPriorityDesc
	case todo.SortPriorityDesc:
		return todo.SortCreated
	case todo.SortCreated:
		return todo.SortCreatedDesc
	case todo.SortCreatedDesc:
		return todo.SortTimerSeconds
	default:
		return todo.SortPriority
	}
}

func (t todayModel) selected() *store.Todo {
	if t.cursor < 0 || t.cursor >= len(t.todos) {
		return nil
	}
	return &t.todos[t.cursor]
}

// --- Timer actions ---

func (t todayModel) startTimer() (todayModel, tea.Cmd) {
	sel := t.selected()
	if sel == nil {
		return t, nil
	}
	if sel.Status == store.StatusCompleted {
		return t, statusError("Completed todos cannot be timed")
	}

	if err := t.ctrl.StartTimer(sel); err != nil {
		var running *todo.AlreadyRunningError
		if errors.As(err, &running) {
			return t, statusError(fmt.Sprintf("Another timer is already running (todo %d). Pause it first.", running.ActiveID))
		}
		return t, statusError(fmt.Sprintf("Error: %v", err))
	}

	t.timer.start(sel.ID, sel.TimerSeconds)
	return t, tea.Batch(t.refresh(), func() tea.Msg { return timerStartedMsg{} })
}

func (t todayModel) pauseTimer() (todayModel, tea.Cmd) {
	if !t.timer.isRunning() {
		return t, nil
	}
	running := t.findTodo(t.timer.runningID())
	if running == nil {
		t.timer.stop()
		return t, nil
	}

	seconds := t.timer.seconds()
	if err := t.ctrl.PauseTimer(running, seconds); err != nil {
		return t, statusError(fmt.Sprintf("Save failed: %v", err))
	}
	t.timer.stop()

	return t, tea.Batch(
		t.updateRecord(),
		t.refresh(),
		func() tea.Msg { return timerPausedMsg{seconds: seconds} },
	)
}

func (t todayModel) resetTimer() (todayModel, tea.Cmd) {
	sel := t.selected()
	if sel == nil {
		return t, nil
	}
	if t.timer.isRunning() && t.timer.runningID() == sel.ID {
		t.timer.stop()
	}
	if err := t.ctrl.ResetTimer(sel); err != nil {
		return t, statusError(fmt.Sprintf("Save failed: %v", err))
	}
	return t, tea.Batch(t.updateRecord(), t.refresh(), status("Timer reset"))
}

func (t todayModel) completeTodo() (todayModel, tea.Cmd) {
	sel := t.selected()
	if sel == nil {
		return t, nil
	}

	// Commit running seconds before completing so they are not lost.
	if t.timer.isRunning() && t.timer.runningID() == sel.ID {
		if err := t.ctrl.PauseTimer(sel, t.timer.seconds()); err != nil {
			return t, statusError(fmt.Sprintf("Save failed: %v", err))
		}
		t.timer.stop()
	}

	if err := t.ctrl.CompleteTodo(sel); err != nil {
		return t, statusError(fmt.Sprintf("Error: %v", err))
	}
	return t, tea.Batch(t.updateRecord(), t.refresh(), status("Completed ✓"))
}

func (t todayModel) deleteTodo() (todayModel, tea.Cmd) {
	sel := t.selected()
	if sel == nil {
		return t, nil
	}
	if t.timer.isRunning() && t.timer.runningID() == sel.ID {
		t.timer.stop()
	}
	if err := t.ctrl.DeleteTodo(sel); err != nil {
		return t, statusError(fmt.Sprintf("Error: %v", err))
	}
	return t, tea.Batch(t.updateRecord(), t.refresh(), status("Deleted"))
}

// updateRecord refreshes today's study record snapshot after a mutation.
func (t todayModel) updateRecord() tea.Cmd {
	userID := t.ctrl.UserID()
	return func() tea.Msg {
		if err := t.records.UpdateRecord(userID, time.Now()); err != nil {
			return statusMsg{text: fmt.Sprintf("Record update failed: %v", err), isError: true}
		}
		return nil
	}
}

func (t todayModel) findTodo(id int64) *store.Todo {
	for i := range t.todos {
		if t.todos[i].ID == id {
			return &t.todos[i]
		}
	}
	return nil
}

// --- Face detection ---

func (t todayModel) toggleWatch() (todayModel, tea.Cmd) {
	if t.watching {
		t.stopWatch()
		return t, status("Face watch off")
	}
	if enabled, _ := t.store.GetSetting("face_detection"); enabled != "on" {
		return t, statusError("Face detection is off (see Settings)")
	}
	if !t.timer.isRunning() {
		return t, statusError("Start a timer first")
	}

	command, _ := t.store.GetSetting("detector_command")
	if command == "" {
		command = "python3"
	}
	cooldown := facedetect.DefaultCooldown
	if v, err := t.store.GetSetting("absence_cooldown"); err == nil {
		if secs, err := time.ParseDuration(v + "s"); err == nil && secs > 0 {
			cooldown = secs
		}
	}

	t.monitor = facedetect.NewMonitor(cooldown, nil, nil)
	// Fresh channel per session so buffered events from a stopped watch
	// cannot leak into this one.
	ch := make(chan faceEventMsg, 8)
	t.faceCh = ch
	t.detector = facedetect.NewDetector(command, []string{"face_detector.py"}, facedetect.Callbacks{
		OnFaceDetected: func() { ch <- faceEventMsg{kind: "detected"} },
		OnFaceLost:     func() { ch <- faceEventMsg{kind: "lost"} },
		OnError:        func(msg string) { ch <- faceEventMsg{kind: "error", text: msg} },
	})
	t.detector.Start()
	t.watching = true
	return t, tea.Batch(waitFaceEvent(ch), status("Face watch on"))
}

func (t *todayModel) stopWatch() {
	if t.detector != nil {
		t.detector.Stop()
	}
	t.detector = nil
	t.monitor = nil
	t.watching = false
}

func waitFaceEvent(ch chan faceEventMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func (t todayModel) handleFaceEvent(msg faceEventMsg) (todayModel, tea.Cmd) {
	if !t.watching || t.monitor == nil {
		return t, nil
	}

	switch msg.kind {
	case "detected":
		t.monitor.FaceDetected()
		return t, waitFaceEvent(t.faceCh)

	case "lost":
		wasAbsent := t.monitor.Absent()
		t.monitor.FaceLost()
		if !wasAbsent && t.monitor.Absent() && t.timer.isRunning() {
			next, cmd := t.pauseTimer()
			return next, tea.Batch(cmd, status("Stepped away — timer paused"), waitFaceEvent(next.faceCh))
		}
		return t, waitFaceEvent(t.faceCh)

	default:
		// Detector errors end the feature quietly; it is best-effort.
		t.stopWatch()
		return t, status("Face watch stopped")
	}
}

// --- New todo form ---

func (t todayModel) showForm() (todayModel, tea.Cmd) {
	*t.formContent = ""
	*t.formPriority = string(store.PriorityMedium)

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("What will you study?").Value(t.formContent),
			huh.NewSelect[string]().Title("Priority").
				Options(
					huh.NewOption("High", string(store.PriorityHigh)),
					huh.NewOption("Medium", string(store.PriorityMedium)),
					huh.NewOption("Low", string(store.PriorityLow)),
				).Value(t.formPriority),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t todayModel) updateForm(msg tea.Msg) (todayModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		t.form = nil
		if _, err := t.ctrl.CreateTodo(*t.formContent, store.Priority(*t.formPriority)); err != nil {
			return t, statusError(fmt.Sprintf("Error: %v", err))
		}
		return t, tea.Batch(t.updateRecord(), t.refresh())
	}

	return t, cmd
}

// --- View ---

func (t todayModel) view() string {
	if t.formActive && t.form != nil {
		title := titleStyle.Render("New Todo")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View())
		return panelStyle.Width(t.width - 4).Render(content)
	}

	w := t.width - 4
	timerPanel := t.renderTimerPanel(w)
	listPanel := t.renderListPanel(w)
	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, listPanel)
}

func (t todayModel) renderTimerPanel(w int) string {
	if t.timer.isRunning() {
		running := t.findTodo(t.timer.runningID())
		name := ""
		if running != nil {
			name = running.Content
		}
		timeDisplay := timerRunningStyle.Width(w - 6).Render(formatSeconds(t.timer.seconds()))
		indicator := successStyle.Render("●  RUNNING")
		if t.watching {
			indicator += mutedStyle.Render("   👁 watching")
		}
		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			highlightStyle.Render(name),
		)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay := timerStyle.Width(w - 6).Render("00:00:00")
	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		mutedStyle.Render("■  STOPPED"),
		mutedStyle.Render("Press s to start the selected todo"),
	)
	return panelStyle.Width(w).Render(content)
}

func (t todayModel) renderListPanel(w int) string {
	header := fmt.Sprintf("%s  %s  %s",
		titleStyle.Render("Today"),
		mutedStyle.Render("filter: "+t.ctrl.CurrentFilter().Label()),
		mutedStyle.Render("sort: "+t.ctrl.CurrentSortMode().Label()),
	)

	if len(t.todos) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("Nothing yet. Press n to add a todo."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	for i, td := range t.todos {
		rows = append(rows, t.renderRow(i, td))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t todayModel) renderRow(i int, td store.Todo) string {
	cursor := "  "
	style := normalItemStyle
	if i == t.cursor {
		cursor = "> "
		style = selectedItemStyle
	}

	statusIcon := "○"
	switch td.Status {
	case store.StatusInProgress:
		statusIcon = "●"
	case store.StatusCompleted:
		statusIcon = "✓"
	}

	dot := lipgloss.NewStyle().Foreground(priorityColors[string(td.Priority)]).Render("▌")

	content := td.Content
	if td.Status == store.StatusCompleted {
		content = strikeStyle.Render(content)
	}

	timeStr := formatSeconds(td.TimerSeconds)
	if t.timer.isRunning() && t.timer.runningID() == td.ID {
		timeStr = successStyle.Render(formatSeconds(t.timer.seconds()) + " ●")
	}

	return style.Render(fmt.Sprintf("%s%s %s %-40s %s", cursor, statusIcon, dot, content, timeStr))
}
