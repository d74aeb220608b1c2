package tui

import (
	"fmt"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lsk/studytrackr/internal/store"
	"github.com/lsk/studytrackr/internal/study"
)

type statsMode int

const (
	statsDaily statsMode = iota
	statsWeekly
	statsMonthly
)

var statsModeNames = []string{"Daily", "Weekly", "Monthly"}

type statsModel struct {
	userID  int64
	stats   *study.StatisticsService
	records *study.RecordService
	width   int
	height  int

	mode   statsMode
	anchor time.Time // the date whose day/week/month is shown
	data   study.Statistics
	week   map[string]store.StudyRecord

	chart barchart.Model
}

func newStatsModel(userID int64, stats *study.StatisticsService, records *study.RecordService) statsModel {
	return statsModel{
		userID:  userID,
		stats:   stats,
		records: records,
		anchor:  time.Now(),
		chart:   barchart.New(60, 12),
	}
}

func (m *statsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type statsDataMsg struct {
	data study.Statistics
	week map[string]store.StudyRecord
}

func (m statsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		var (
			data study.Statistics
			err  error
		)
		switch m.mode {
		case statsWeekly:
			data, err = m.stats.Weekly(m.userID, m.anchor)
		case statsMonthly:
			data, err = m.stats.Monthly(m.userID, m.anchor)
		default:
			data, err = m.stats.Daily(m.userID, m.anchor)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Stats error: %v", err), isError: true}
		}

		start := study.StartOfWeek(m.anchor)
		week, err := m.records.RecordsInRange(m.userID, start, start.AddDate(0, 0, 6))
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Stats error: %v", err), isError: true}
		}
		return statsDataMsg{data: data, week: week}
	}
}

func (m statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		m.data = msg.data
		m.week = msg.week
		m.buildChart()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.anchor = m.shift(-1)
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			m.anchor = m.shift(1)
			if m.anchor.After(time.Now()) {
				m.anchor = time.Now()
			}
			return m, m.refresh()
		case key.Matches(msg, keys.Period):
			m.mode = (m.mode + 1) % 3
			return m, m.refresh()
		}
	}
	return m, nil
}

// shift moves the anchor one period in the given direction.
func (m statsModel) shift(dir int) time.Time {
	switch m.mode {
	case statsWeekly:
		return m.anchor.AddDate(0, 0, 7*dir)
	case statsMonthly:
		return m.anchor.AddDate(0, dir, 0)
	}
	return m.anchor.AddDate(0, 0, dir)
}

func (m *statsModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 28 {
		chartHeight = 14
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	start := study.StartOfWeek(m.anchor)
	var bars []barchart.BarData
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		label := d.Format("Mon 02")

		hours := 0.0
		style := lipgloss.NewStyle().Foreground(colorSubtle)
		if r, ok := m.week[d.Format(store.DateLayout)]; ok {
			hours = float64(r.TotalStudySeconds) / 3600.0
			style = lipgloss.NewStyle().Foreground(colorPrimary)
		}

		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: label, Value: hours, Style: style}},
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m statsModel) view() string {
	w := m.width - 4

	var tabs []string
	for i, name := range statsModeNames {
		if statsMode(i) == m.mode {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ", modeTabs, "  ",
		mutedStyle.Render(m.rangeLabel()),
	)

	summary := m.renderSummary()
	chartView := m.chart.View()
	nav := mutedStyle.Render("  ←/→: navigate  p: switch period")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", summary, "", chartView, "", nav),
	)
}

func (m statsModel) rangeLabel() string {
	switch m.mode {
	case statsWeekly:
		start := study.StartOfWeek(m.anchor)
		return fmt.Sprintf("%s — %s", start.Format("Jan 02"), start.AddDate(0, 0, 6).Format("Jan 02, 2006"))
	case statsMonthly:
		return m.anchor.Format("January 2006")
	default:
		return m.anchor.Format("Mon, Jan 02 2006")
	}
}

func (m statsModel) renderSummary() string {
	d := m.data
	rate := fmt.Sprintf("%.1f%%", d.CompletionRate())

	rows := []string{
		fmt.Sprintf("  %s %s", titleStyle.Render("Study time"), highlightStyle.Render(formatSeconds(d.TotalStudySeconds))),
		fmt.Sprintf("  %s %d/%d (%s)", titleStyle.Render("Todos done"), d.CompletedTodoCount, d.TotalTodoCount, rate),
		fmt.Sprintf("  %s %s/day over %d study days", titleStyle.Render("Average"), formatSeconds(d.AverageStudySeconds), d.StudyDayCount),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
