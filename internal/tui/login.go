package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/lsk/studytrackr/internal/auth"
)

type loginMode int

const (
	modeLogin loginMode = iota
	modeRegister
)

// loginModel gates the app behind login/registration.
type loginModel struct {
	auth   *auth.Service
	width  int
	height int

	mode    loginMode
	form    *huh.Form
	errText string

	username *string
	password *string
	confirm  *string
	remember *bool
}

func newLoginModel(a *auth.Service) loginModel {
	u, p, c := "", "", ""
	r := false
	m := loginModel{
		auth:     a,
		username: &u,
		password: &p,
		confirm:  &c,
		remember: &r,
	}
	m.form = m.buildForm()
	return m
}

func (m *loginModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m loginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m loginModel) buildForm() *huh.Form {
	if m.mode == modeRegister {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Username").Description("4-20 letters and digits").Value(m.username),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(m.password),
				huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(m.confirm),
			),
		).WithShowHelp(true).WithShowErrors(true)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(m.username),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(m.password),
			huh.NewConfirm().Title("Remember me?").Value(m.remember),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+r":
			// Toggle between login and registration.
			if m.mode == modeLogin {
				m.mode = modeRegister
			} else {
				m.mode = modeLogin
			}
			*m.password = ""
			*m.confirm = ""
			m.errText = ""
			m.form = m.buildForm()
			return m, m.form.Init()
		case "ctrl+c":
			return m, tea.Quit
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m.submit()
	}
	return m, cmd
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if m.mode == modeRegister {
		_, err := m.auth.Register(*m.username, *m.password, *m.confirm)
		if err != nil {
			return m.fail(err)
		}
		// Registered; log straight in.
		user, err := m.auth.Login(*m.username, *m.password, false)
		if err != nil {
			return m.fail(err)
		}
		return m, func() tea.Msg { return loggedInMsg{user: user} }
	}

	user, err := m.auth.Login(*m.username, *m.password, *m.remember)
	if err != nil {
		return m.fail(err)
	}
	return m, func() tea.Msg { return loggedInMsg{user: user} }
}

func (m loginModel) fail(err error) (loginModel, tea.Cmd) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		m.errText = "Invalid username or password"
	default:
		m.errText = err.Error()
	}
	*m.password = ""
	*m.confirm = ""
	m.form = m.buildForm()
	return m, m.form.Init()
}

func (m loginModel) view() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("studytrackr")

	heading := "Log in"
	hint := "ctrl+r: create an account"
	if m.mode == modeRegister {
		heading = "Create account"
		hint = "ctrl+r: back to login"
	}

	rows := []string{
		title,
		"",
		titleStyle.Render(heading),
		"",
		m.form.View(),
	}
	if m.errText != "" {
		rows = append(rows, errorStyle.Render(m.errText))
	}
	rows = append(rows, "", mutedStyle.Render(hint))

	box := activePanelStyle.Width(minInt(m.width-4, 60)).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	if m.width == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
