package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/verte-zerg/nclock/internal/engine"
	"github.com/verte-zerg/nclock/internal/i18n"
	"github.com/verte-zerg/nclock/internal/model"
	"github.com/verte-zerg/nclock/internal/state"
)

func newTestModel(t *testing.T) (*Model, *clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 7, 29, 58, 0, time.Local))
	eng := engine.New(state.New(state.DefaultSettings()), engine.WithClock(fc))
	tr, err := i18n.New(model.LangJapanese)
	if err != nil {
		t.Fatalf("new translator: %v", err)
	}
	m := NewModel(eng, tr, 100*time.Millisecond)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, fc
}

func press(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(press(string(r)))
	}
}

func TestPanelNavigationWraps(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(press("left"))
	if got := m.engine.State().ActivePanel; got != model.PanelSettings {
		t.Fatalf("expected settings panel, got %s", got)
	}
	m.Update(press("right"))
	m.Update(press("right"))
	if got := m.engine.State().ActivePanel; got != model.PanelStopwatch {
		t.Fatalf("expected stopwatch panel, got %s", got)
	}
	m.Update(press("3"))
	if got := m.engine.State().ActivePanel; got != model.PanelAlarm {
		t.Fatalf("expected alarm panel, got %s", got)
	}
}

func TestDayHoursKeysClamp(t *testing.T) {
	m, _ := newTestModel(t)
	for i := 0; i < 30; i++ {
		m.Update(press("+"))
	}
	if got := m.engine.State().DayHours; got != 48 {
		t.Fatalf("expected 48 hours, got %d", got)
	}
	m.Update(press("-"))
	if got := m.engine.State().DayHours; got != 47 {
		t.Fatalf("expected 47 hours, got %d", got)
	}
}

func TestStopwatchKeys(t *testing.T) {
	m, fc := newTestModel(t)
	m.Update(press("2"))
	m.Update(press("space"))
	if !m.engine.State().Stopwatch.Running {
		t.Fatalf("expected stopwatch to run")
	}
	fc.Advance(1500 * time.Millisecond)
	m.Update(tickMsg(fc.Now()))
	m.Update(press("l"))
	if laps := m.engine.State().Stopwatch.Laps; len(laps) != 1 || laps[0] != "00:01.50" {
		t.Fatalf("unexpected laps: %v", laps)
	}
	m.Update(press("r"))
	if m.errMsg == "" {
		t.Fatalf("expected reset to be rejected while running")
	}
	m.Update(press("space"))
	m.Update(press("r"))
	if m.engine.State().Stopwatch.ElapsedMs != 0 || len(m.engine.State().Stopwatch.Laps) != 0 {
		t.Fatalf("expected cleared stopwatch")
	}
}

func TestAddAlarmAndFireBanner(t *testing.T) {
	m, fc := newTestModel(t)
	m.Update(press("3"))
	m.Update(press("a"))
	if !m.inputMode {
		t.Fatalf("expected input mode")
	}
	typeText(m, "25:00")
	m.Update(press("enter"))
	if !m.inputMode || m.errMsg != "不正な時刻です" {
		t.Fatalf("expected invalid time error, got %q", m.errMsg)
	}

	m.alarmInput.SetValue("07:30")
	m.Update(press("enter"))
	if m.inputMode || m.engine.State().Alarms.Len() != 1 {
		t.Fatalf("expected alarm to be added")
	}

	fc.Advance(2 * time.Second)
	m.Update(tickMsg(fc.Now()))
	if m.banner != "アラーム: 07:30" {
		t.Fatalf("unexpected banner: %q", m.banner)
	}
	if !strings.Contains(m.View(), "07:30") {
		t.Fatalf("expected alarm time in view")
	}

	fc.Advance(bannerDuration)
	m.Update(tickMsg(fc.Now()))
	if m.banner != "" {
		t.Fatalf("expected banner to clear")
	}
}

func TestToggleAndDeleteSelectedAlarm(t *testing.T) {
	m, _ := newTestModel(t)
	if _, err := m.engine.AddAlarm("09:00"); err != nil {
		t.Fatalf("add alarm: %v", err)
	}
	m.Update(press("3"))
	m.Update(press("t"))
	if m.engine.State().Alarms.Items()[0].Enabled {
		t.Fatalf("expected alarm disabled")
	}
	m.Update(press("d"))
	if m.engine.State().Alarms.Len() != 0 {
		t.Fatalf("expected alarm removed")
	}
}

func TestFirstAlarmAddedInUIIsSelectable(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(press("3"))
	m.Update(press("a"))
	typeText(m, "06:15")
	m.Update(press("enter"))
	if m.engine.State().Alarms.Len() != 1 {
		t.Fatalf("expected one alarm, got %d", m.engine.State().Alarms.Len())
	}
	if _, ok := m.selectedAlarm(); !ok {
		t.Fatalf("expected new alarm selected, cursor=%d", m.alarms.Cursor())
	}

	m.Update(press("t"))
	if m.engine.State().Alarms.Items()[0].Enabled {
		t.Fatalf("expected alarm disabled")
	}
	m.Update(press("d"))
	if m.engine.State().Alarms.Len() != 0 {
		t.Fatalf("expected alarm removed")
	}

	m.Update(press("a"))
	typeText(m, "07:45")
	m.Update(press("enter"))
	if _, ok := m.selectedAlarm(); !ok {
		t.Fatalf("expected alarm selected after list emptied, cursor=%d", m.alarms.Cursor())
	}
}

func TestLanguageAndSecondsToggle(t *testing.T) {
	m, _ := newTestModel(t)
	if !strings.Contains(m.View(), "時計") {
		t.Fatalf("expected japanese tabs")
	}
	m.Update(press("L"))
	if m.engine.State().Language != model.LangEnglish {
		t.Fatalf("expected english")
	}
	if !strings.Contains(m.View(), "Clock") {
		t.Fatalf("expected english tabs")
	}
	m.Update(press("s"))
	if m.snap.Clock != "07:29" {
		t.Fatalf("expected HH:MM clock, got %q", m.snap.Clock)
	}
}

func TestFooterShowsPanelBindings(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(press("L"))
	footer := m.renderFooter()
	if strings.Contains(footer, "Lap") || !strings.Contains(footer, "quit") {
		t.Fatalf("unexpected clock footer %q", footer)
	}
	m.Update(press("2"))
	if !strings.Contains(m.renderFooter(), "Lap") {
		t.Fatalf("expected stopwatch bindings in footer")
	}
	m.Update(press("3"))
	if !strings.Contains(m.renderFooter(), "ON/OFF") {
		t.Fatalf("expected alarm bindings in footer")
	}
}
