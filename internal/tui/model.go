// Package tui provides the Bubble Tea clock interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/nclock/internal/alarm"
	"github.com/verte-zerg/nclock/internal/engine"
	"github.com/verte-zerg/nclock/internal/i18n"
	"github.com/verte-zerg/nclock/internal/model"
)

const bannerDuration = 5 * time.Second

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	clockStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	cardStyle    = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

type tickMsg time.Time

// Model implements the Bubble Tea clock UI.
type Model struct {
	engine   *engine.Engine
	tr       *i18n.Translator
	interval time.Duration
	keys     keyMap
	help     help.Model

	snap engine.Snapshot

	width  int
	height int

	laps       viewport.Model
	alarms     table.Model
	alarmInput textinput.Model
	inputMode  bool

	errMsg      string
	banner      string
	bannerUntil time.Time
}

// NewModel constructs a clock UI model over eng.
func NewModel(eng *engine.Engine, tr *i18n.Translator, interval time.Duration) *Model {
	if interval <= 0 {
		interval = engine.DefaultTickInterval
	}
	m := &Model{
		engine:   eng,
		tr:       tr,
		interval: interval,
		laps:     viewport.New(0, 0),
		help:     help.New(),
	}
	tr.SetLanguage(eng.State().Language)
	m.keys = newKeyMap(tr)
	m.initAlarmInput()
	m.initAlarmTable()
	m.snap = eng.Snapshot()
	m.syncAlarmTable()
	m.syncLaps()
	return m
}

func (m *Model) initAlarmInput() {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "HH:MM"
	input.CharLimit = 5
	m.alarmInput = input
}

func (m *Model) initAlarmTable() {
	m.alarms = table.New(
		table.WithColumns(alarmColumns()),
		table.WithFocused(true),
		table.WithHeight(6),
	)
}

func alarmColumns() []table.Column {
	return []table.Column{
		{Title: "", Width: 5},
		{Title: "", Width: 4},
		{Title: "ID", Width: 8},
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick(m.interval)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tickMsg:
		m.onTick()
		return m, tick(m.interval)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, m.quit()
		}
		if m.inputMode {
			return m.updateAlarmInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) onTick() {
	m.snap = m.engine.Tick(context.Background())
	if len(m.snap.Fired) > 0 {
		ev := m.snap.Fired[0]
		m.banner = m.tr.AlarmFired(fmt.Sprintf("%02d:%02d", ev.Hour, ev.Minute))
		m.bannerUntil = m.snap.Now.Add(bannerDuration)
	} else if !m.bannerUntil.IsZero() && !m.snap.Now.Before(m.bannerUntil) {
		m.banner = ""
		m.bannerUntil = time.Time{}
	}
	m.syncLaps()
}

func (m *Model) quit() tea.Cmd {
	if err := m.engine.Flush(context.Background()); err != nil {
		logErrf("failed to save state: %v\n", err)
	}
	return tea.Quit
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Prev):
		m.movePanel(-1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Next):
		m.movePanel(1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Jump):
		m.setPanel(model.Panels[msg.String()[0]-'1'])
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Faster):
		m.engine.AdjustDayHours(1)
	case key.Matches(msg, m.keys.Slower):
		m.engine.AdjustDayHours(-1)
	case key.Matches(msg, m.keys.Seconds):
		m.engine.SetShowSeconds(!m.engine.State().ShowSeconds)
	case key.Matches(msg, m.keys.Language):
		lang := m.engine.State().Language.Other()
		m.engine.SetLanguage(lang)
		m.tr.SetLanguage(lang)
		m.keys = newKeyMap(m.tr)
	default:
		return m.handlePanelKey(msg)
	}
	m.refresh()
	return m, nil
}

func (m *Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.engine.State().ActivePanel {
	case model.PanelStopwatch:
		switch {
		case key.Matches(msg, m.keys.StartStop):
			m.engine.ToggleStopwatch()
		case key.Matches(msg, m.keys.Lap):
			if _, err := m.engine.Lap(); err != nil {
				m.errMsg = err.Error()
			}
		case key.Matches(msg, m.keys.Reset):
			if err := m.engine.ResetStopwatch(); err != nil {
				m.errMsg = err.Error()
			}
		default:
			var cmd tea.Cmd
			m.laps, cmd = m.laps.Update(msg)
			return m, cmd
		}
	case model.PanelAlarm:
		switch {
		case key.Matches(msg, m.keys.Add):
			m.inputMode = true
			m.alarmInput.Reset()
			return m, m.alarmInput.Focus()
		case key.Matches(msg, m.keys.Toggle):
			if id, ok := m.selectedAlarm(); ok {
				if _, err := m.engine.ToggleAlarm(id); err != nil {
					m.errMsg = err.Error()
				}
			}
		case key.Matches(msg, m.keys.Delete):
			if id, ok := m.selectedAlarm(); ok {
				if err := m.engine.RemoveAlarm(id); err != nil {
					m.errMsg = err.Error()
				}
			}
		default:
			var cmd tea.Cmd
			m.alarms, cmd = m.alarms.Update(msg)
			return m, cmd
		}
	default:
		return m, nil
	}
	m.refresh()
	return m, nil
}

func (m *Model) updateAlarmInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.inputMode = false
		m.alarmInput.Blur()
		m.errMsg = ""
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		_, err := m.engine.AddAlarm(m.alarmInput.Value())
		if err != nil {
			m.errMsg = m.alarmError(err)
			return m, nil
		}
		m.inputMode = false
		m.alarmInput.Blur()
		m.errMsg = ""
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.alarmInput, cmd = m.alarmInput.Update(msg)
	return m, cmd
}

func (m *Model) alarmError(err error) string {
	switch {
	case errors.Is(err, alarm.ErrMissingTime):
		return m.tr.Msg(i18n.KeyPickTime)
	case errors.Is(err, alarm.ErrInvalidTime):
		return m.tr.Msg(i18n.KeyInvalidTime)
	default:
		return err.Error()
	}
}

func (m *Model) movePanel(delta int) {
	m.setPanel(m.engine.State().ActivePanel.Move(delta))
}

func (m *Model) setPanel(p model.Panel) {
	m.engine.SetPanel(p)
	m.refresh()
}

func (m *Model) selectedAlarm() (string, bool) {
	items := m.snap.Alarms
	idx := m.alarms.Cursor()
	if idx < 0 || idx >= len(items) {
		return "", false
	}
	return items[idx].ID, true
}

// refresh re-renders derived widgets after an action without sampling.
func (m *Model) refresh() {
	m.snap = m.engine.Snapshot()
	m.syncAlarmTable()
	m.syncLaps()
}

func (m *Model) syncAlarmTable() {
	on, off := m.tr.Msg(i18n.KeyAlarmOn), m.tr.Msg(i18n.KeyAlarmOff)
	rows := make([]table.Row, 0, len(m.snap.Alarms))
	for _, a := range m.snap.Alarms {
		state := off
		if a.Enabled {
			state = on
		}
		rows = append(rows, table.Row{a.String(), state, shortID(a.ID)})
	}
	m.alarms.SetRows(rows)
	// SetRows leaves the cursor at -1 when the table was empty.
	if cursor := m.alarms.Cursor(); len(rows) > 0 && (cursor < 0 || cursor >= len(rows)) {
		m.alarms.SetCursor(minInt(maxInt(cursor, 0), len(rows)-1))
	}
}

func (m *Model) syncLaps() {
	if len(m.snap.Laps) == 0 {
		m.laps.SetContent(mutedStyle.Render(m.tr.Msg(i18n.KeyNoLaps)))
		return
	}
	lines := make([]string, len(m.snap.Laps))
	for i, lap := range m.snap.Laps {
		lines[i] = fmt.Sprintf("#%-3d %s", len(m.snap.Laps)-i, lap)
	}
	m.laps.SetContent(strings.Join(lines, "\n"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X"))
	footerHeight = 2
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.laps.Width = maxInt(10, m.width/2)
	m.laps.Height = maxInt(1, bodyHeight-6)
	m.alarms.SetHeight(maxInt(2, bodyHeight-6))
	m.help.Width = m.width
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderTabs(), m.width, headerHeight)
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderPanel())
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) renderTabs() string {
	keys := []string{i18n.KeyTabClock, i18n.KeyTabStopwatch, i18n.KeyTabAlarm, i18n.KeyTabSettings}
	parts := make([]string, 0, len(model.Panels))
	for i, p := range model.Panels {
		label := m.tr.Msg(keys[i])
		if p == m.snap.Panel {
			parts = append(parts, activeNavStyle.Render(label))
		} else {
			parts = append(parts, inactiveNavStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderPanel() string {
	switch m.snap.Panel {
	case model.PanelStopwatch:
		return m.renderStopwatch()
	case model.PanelAlarm:
		return m.renderAlarms()
	case model.PanelSettings:
		return m.renderSettings()
	default:
		return m.renderClock()
	}
}

func (m *Model) renderClock() string {
	lines := []string{
		cardStyle.Render(clockStyle.Render(m.snap.Clock)),
		mutedStyle.Render(m.tr.Msg(i18n.KeySpeedTitle) + ": " + m.tr.SpeedLabel(m.snap.DayHours)),
	}
	if m.snap.Running {
		lines = append(lines, runningStyle.Render(m.tr.Msg(i18n.KeyStopwatchRunning)+" "+m.snap.Stopwatch))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderStopwatch() string {
	display := clockStyle.Render(m.snap.Stopwatch)
	if m.snap.Running {
		display = runningStyle.Bold(true).Render(m.snap.Stopwatch)
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		cardStyle.Render(display),
		"",
		m.laps.View(),
	)
}

func (m *Model) renderAlarms() string {
	var body string
	if len(m.snap.Alarms) == 0 {
		body = mutedStyle.Render(m.tr.Msg(i18n.KeyNoAlarms))
	} else {
		body = m.alarms.View()
	}
	lines := []string{body, ""}
	if m.inputMode {
		lines = append(lines, m.tr.Msg(i18n.KeyPickTime), m.alarmInput.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderSettings() string {
	labels := []string{m.tr.Msg(i18n.KeySpeedTitle), m.tr.Msg(i18n.KeyShowSeconds), m.tr.Msg(i18n.KeyLanguage)}
	width := 0
	for _, l := range labels {
		width = maxInt(width, lipgloss.Width(l))
	}
	seconds := m.tr.Msg(i18n.KeyAlarmOff)
	if m.snap.ShowSeconds {
		seconds = m.tr.Msg(i18n.KeyAlarmOn)
	}
	rows := []string{
		labelRow(labels[0], "- "+m.tr.SpeedLabel(m.snap.DayHours)+" +", width),
		labelRow(labels[1], "s "+seconds, width),
		labelRow(labels[2], "L "+m.tr.Msg(i18n.KeyLanguageName), width),
		"",
		mutedStyle.Render(m.tr.Msg(i18n.KeySettingsSaved)),
	}
	return cardStyle.Render(strings.Join(rows, "\n"))
}

func (m *Model) renderFooter() string {
	hints := footerStyle.Render(m.help.ShortHelpView(m.shortHelp()))
	status := ""
	switch {
	case m.errMsg != "":
		status = errorStyle.Render(truncateLine(m.errMsg, m.width))
	case m.banner != "":
		status = bannerStyle.Render(truncateLine(m.banner, m.width))
	}
	return hints + "\n" + status
}

func (m *Model) shortHelp() []key.Binding {
	var panel []key.Binding
	switch m.snap.Panel {
	case model.PanelStopwatch:
		panel = []key.Binding{m.keys.StartStop, m.keys.Lap, m.keys.Reset}
	case model.PanelAlarm:
		panel = []key.Binding{m.keys.Add, m.keys.Toggle, m.keys.Delete}
	}
	return append(panel, m.keys.global()...)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
