// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Language selects the UI string table.
type Language string

const (
	// LangJapanese is the primary language.
	LangJapanese Language = "ja"
	// LangEnglish is the secondary language.
	LangEnglish Language = "en"
)

// DefaultLanguage is used when nothing has been configured.
const DefaultLanguage = LangJapanese

// ParseLanguage validates a language code.
func ParseLanguage(raw string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(raw))) {
	case LangJapanese:
		return LangJapanese, nil
	case LangEnglish:
		return LangEnglish, nil
	default:
		return "", fmt.Errorf("unknown language %q (available: ja, en)", raw)
	}
}

// Other returns the language a toggle switches to.
func (l Language) Other() Language {
	if l == LangEnglish {
		return LangJapanese
	}
	return LangEnglish
}

// Panel is one of the four UI panels.
type Panel string

const (
	PanelClock     Panel = "clock"
	PanelStopwatch Panel = "stopwatch"
	PanelAlarm     Panel = "alarm"
	PanelSettings  Panel = "settings"
)

// Panels lists the panels in tab order.
var Panels = []Panel{PanelClock, PanelStopwatch, PanelAlarm, PanelSettings}

// ParsePanel validates a panel name.
func ParsePanel(raw string) (Panel, error) {
	p := Panel(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Panels {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown panel %q", raw)
}

// Move returns the panel delta steps away in tab order, wrapping around.
func (p Panel) Move(delta int) Panel {
	idx := 0
	for i, known := range Panels {
		if known == p {
			idx = i
			break
		}
	}
	n := len(Panels)
	return Panels[((idx+delta)%n+n)%n]
}

const (
	// DefaultTickInterval is the sampling period of the UI loop.
	DefaultTickInterval = 100 * time.Millisecond
	// DefaultFlushInterval is the period of the background state flush.
	DefaultFlushInterval = 2 * time.Second
	// DefaultDayHours is the real length of a virtual day when nothing is configured.
	DefaultDayHours = 24
)

// Config defines runtime options for the sampling loop.
type Config struct {
	TickInterval  time.Duration
	FlushInterval time.Duration
	Bell          bool
}

// DefaultConfig returns the built-in loop settings.
func DefaultConfig() Config {
	return Config{
		TickInterval:  DefaultTickInterval,
		FlushInterval: DefaultFlushInterval,
		Bell:          true,
	}
}

// Defaults seed settings that have never been persisted.
type Defaults struct {
	DayHours    int
	ShowSeconds bool
	Language    Language
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Defaults {
	return Defaults{
		DayHours:    DefaultDayHours,
		ShowSeconds: true,
		Language:    DefaultLanguage,
	}
}

// FireRecord is one emitted alarm event.
type FireRecord struct {
	ID         int64
	AlarmID    string
	Hour       int
	Minute     int
	TriggerKey string
	FiredAt    time.Time
}
