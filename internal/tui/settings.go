package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/lsk/studytrackr/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	dailyGoal       *string
	weekStart       *string
	faceDetection   *string
	absenceCooldown *string
	detectorCommand *string
}

func newSettingsModel(s *store.Store) settingsModel {
	dg, ws, fd, ac, dc := "", "", "", "", ""
	return settingsModel{
		store:           s,
		dailyGoal:       &dg,
		weekStart:       &ws,
		faceDetection:   &fd,
		absenceCooldown: &ac,
		detectorCommand: &dc,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.AllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.dailyGoal = secsToHours(s.getVal("daily_goal", "14400"))
	*s.weekStart = s.getVal("week_start", "monday")
	*s.faceDetection = s.getVal("face_detection", "off")
	*s.absenceCooldown = s.getVal("absence_cooldown", "10")
	*s.detectorCommand = s.getVal("detector_command", "python3")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (hours)").Value(s.dailyGoal),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
		).Title("General"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Face detection").
				Options(
					huh.NewOption("Off", "off"),
					huh.NewOption("On", "on"),
				).Value(s.faceDetection),
			huh.NewInput().Title("Absence cooldown (seconds)").Value(s.absenceCooldown),
			huh.NewInput().Title("Detector command").Value(s.detectorCommand),
		).Title("Face watch"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		s.save()
		return s, tea.Batch(s.refresh(), status("Settings saved"))
	}

	return s, cmd
}

func (s settingsModel) save() {
	if v, err := strconv.ParseFloat(strings.TrimSpace(*s.dailyGoal), 64); err == nil && v > 0 {
		s.store.SetSetting("daily_goal", strconv.Itoa(int(v*3600)))
	}
	s.store.SetSetting("week_start", *s.weekStart)
	s.store.SetSetting("face_detection", *s.faceDetection)
	if n, err := strconv.Atoi(strings.TrimSpace(*s.absenceCooldown)); err == nil && n > 0 {
		s.store.SetSetting("absence_cooldown", strconv.Itoa(n))
	}
	if cmd := strings.TrimSpace(*s.detectorCommand); cmd != "" {
		s.store.SetSetting("detector_command", cmd)
	}
}

func (s settingsModel) getVal(key, fallback string) string {
	for _, st := range s.settings {
		if st.Key == key {
			return st.Value
		}
	}
	return fallback
}

func secsToHours(v string) string {
	n, err := strconv.Atoi(v)
	if err != nil {
		return v
	}
	return strconv.FormatFloat(float64(n)/3600, 'f', -1, 64)
}

func (s settingsModel) view() string {
	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View())
		return panelStyle.Width(s.width - 4).Render(content)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Settings"))
	rows = append(rows, "")
	for _, st := range s.settings {
		rows = append(rows, fmt.Sprintf("  %-18s %s", mutedStyle.Render(st.Key), st.Value))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: edit"))

	return panelStyle.Width(s.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
