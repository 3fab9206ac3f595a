// Package i18n provides the Japanese and English UI strings.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/verte-zerg/nclock/internal/model"
)

//go:embed locales/*.json
var localeFS embed.FS

// Message keys.
const (
	KeyTabClock         = "tab_clock"
	KeyTabStopwatch     = "tab_stopwatch"
	KeyTabAlarm         = "tab_alarm"
	KeyTabSettings      = "tab_settings"
	KeyStart            = "sw_start"
	KeyStop             = "sw_stop"
	KeyLap              = "sw_lap"
	KeyReset            = "sw_reset"
	KeyNoLaps           = "sw_no_laps"
	KeyAddAlarm         = "alarm_add"
	KeyPickTime         = "alarm_pick_time"
	KeyInvalidTime      = "alarm_invalid_time"
	KeyNoAlarms         = "alarm_none"
	KeyAlarmOn          = "alarm_on"
	KeyAlarmOff         = "alarm_off"
	KeyAlarmFired       = "alarm_fired"
	KeySettingsSaved    = "settings_saved"
	KeySpeedTitle       = "speed_title"
	KeySpeedHours       = "speed_hours"
	KeyShowSeconds      = "show_seconds"
	KeyLanguage         = "language"
	KeyLanguageName     = "language_name"
	KeyStopwatchRunning = "stopwatch_running"
	KeyHelpTabs         = "help_tabs"
	KeyHelpQuit         = "help_quit"
)

// Keys lists every message key.
var Keys = []string{
	KeyTabClock, KeyTabStopwatch, KeyTabAlarm, KeyTabSettings,
	KeyStart, KeyStop, KeyLap, KeyReset, KeyNoLaps,
	KeyAddAlarm, KeyPickTime, KeyInvalidTime, KeyNoAlarms, KeyAlarmOn, KeyAlarmOff, KeyAlarmFired,
	KeySettingsSaved, KeySpeedTitle, KeySpeedHours, KeyShowSeconds,
	KeyLanguage, KeyLanguageName, KeyStopwatchRunning, KeyHelpTabs, KeyHelpQuit,
}

var locales = map[model.Language]string{
	model.LangJapanese: "locales/active.ja.json",
	model.LangEnglish:  "locales/active.en.json",
}

// Translator looks up messages for the active language.
type Translator struct {
	bundle    *goi18n.Bundle
	localizer *goi18n.Localizer
	lang      model.Language
}

// New loads the embedded locales and selects lang.
func New(lang model.Language) (*Translator, error) {
	bundle := goi18n.NewBundle(language.Japanese)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	for code, path := range locales {
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			return nil, fmt.Errorf("failed to load %s locale: %w", code, err)
		}
	}
	t := &Translator{bundle: bundle}
	t.SetLanguage(lang)
	return t, nil
}

// SetLanguage switches the active language.
func (t *Translator) SetLanguage(lang model.Language) {
	if _, ok := locales[lang]; !ok {
		lang = model.DefaultLanguage
	}
	t.lang = lang
	t.localizer = goi18n.NewLocalizer(t.bundle, string(lang))
}

// Language returns the active language.
func (t *Translator) Language() model.Language {
	return t.lang
}

// Msg translates key, returning the key itself when it is missing.
func (t *Translator) Msg(key string) string {
	return t.MsgWith(key, nil)
}

// MsgWith translates key with template data.
func (t *Translator) MsgWith(key string, data map[string]any) string {
	if t == nil || t.localizer == nil {
		return key
	}
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug("missing translation", "component", "i18n", "key", key, "error", err)
		return key
	}
	return msg
}

// SpeedLabel renders the day length, e.g. "12 時間".
func (t *Translator) SpeedLabel(hours int) string {
	return t.MsgWith(KeySpeedHours, map[string]any{"Hours": hours})
}

// AlarmFired renders the alarm banner for an HH:MM time.
func (t *Translator) AlarmFired(hhmm string) string {
	return t.MsgWith(KeyAlarmFired, map[string]any{"Time": hhmm})
}
