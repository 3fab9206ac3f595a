// Package state holds the single mutable application state and its
// key-value representation.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/verte-zerg/nclock/internal/alarm"
	"github.com/verte-zerg/nclock/internal/model"
	"github.com/verte-zerg/nclock/internal/stopwatch"
	"github.com/verte-zerg/nclock/internal/vclock"
)

// Persisted keys.
const (
	KeyDayHours         = "virtual-day-hours"
	KeyShowSeconds      = "show-seconds"
	KeyLanguage         = "language"
	KeyStopwatchElapsed = "stopwatch-elapsed-ms"
	KeyStopwatchLaps    = "stopwatch-laps"
	KeyAlarms           = "alarms"
	KeyLastTriggered    = "last-triggered-key"
	KeyActivePanel      = "active-panel"
)

// Loader reads all persisted values.
type Loader interface {
	GetAll(ctx context.Context) (map[string]string, error)
}

// Saver writes persisted values.
type Saver interface {
	SetMany(ctx context.Context, values map[string]string) error
}

// State is the process-wide mutable state shared by the projector, the
// stopwatch and the alarm scheduler.
type State struct {
	DayHours    int
	ShowSeconds bool
	Language    model.Language
	ActivePanel model.Panel
	Stopwatch   stopwatch.Stopwatch
	Alarms      *alarm.List
	Guard       alarm.Guard
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() model.Defaults {
	return model.DefaultSettings()
}

// New returns a fresh state seeded from d.
func New(d model.Defaults) *State {
	d = sanitizeDefaults(d)
	return &State{
		DayHours:    d.DayHours,
		ShowSeconds: d.ShowSeconds,
		Language:    d.Language,
		ActivePanel: model.PanelClock,
		Alarms:      alarm.NewList(nil),
	}
}

func sanitizeDefaults(d model.Defaults) model.Defaults {
	if err := vclock.ValidateHours(d.DayHours); err != nil {
		d.DayHours = vclock.DefaultDayHours
	}
	if _, err := model.ParseLanguage(string(d.Language)); err != nil {
		d.Language = model.DefaultLanguage
	}
	return d
}

// Decode builds a state from persisted values. Missing keys take the value
// from d; malformed values also fall back and are reported in the returned
// slice so the caller can log them.
func Decode(values map[string]string, d model.Defaults) (*State, []error) {
	s := New(d)
	var problems []error
	bad := func(key, raw string, err error) {
		problems = append(problems, fmt.Errorf("ignoring stored %s=%q: %w", key, raw, err))
	}

	if raw, ok := values[KeyDayHours]; ok {
		if h, err := vclock.ParseHours(raw); err != nil {
			bad(KeyDayHours, raw, err)
		} else {
			s.DayHours = h
		}
	}
	if raw, ok := values[KeyShowSeconds]; ok {
		if v, err := strconv.ParseBool(raw); err != nil {
			bad(KeyShowSeconds, raw, err)
		} else {
			s.ShowSeconds = v
		}
	}
	if raw, ok := values[KeyLanguage]; ok {
		if lang, err := model.ParseLanguage(raw); err != nil {
			bad(KeyLanguage, raw, err)
		} else {
			s.Language = lang
		}
	}
	if raw, ok := values[KeyActivePanel]; ok {
		if p, err := model.ParsePanel(raw); err != nil {
			bad(KeyActivePanel, raw, err)
		} else {
			s.ActivePanel = p
		}
	}
	if raw, ok := values[KeyStopwatchElapsed]; ok {
		v, err := strconv.ParseFloat(raw, 64)
		switch {
		case err != nil:
			bad(KeyStopwatchElapsed, raw, err)
		case v < 0 || math.IsNaN(v) || math.IsInf(v, 0):
			bad(KeyStopwatchElapsed, raw, fmt.Errorf("must be a finite value >= 0"))
		default:
			s.Stopwatch.ElapsedMs = v
		}
	}
	if raw, ok := values[KeyStopwatchLaps]; ok {
		var laps []string
		if err := json.Unmarshal([]byte(raw), &laps); err != nil {
			bad(KeyStopwatchLaps, raw, err)
		} else {
			if len(laps) > stopwatch.MaxLaps {
				laps = laps[:stopwatch.MaxLaps]
			}
			s.Stopwatch.Laps = laps
		}
	}
	if raw, ok := values[KeyAlarms]; ok {
		var items []alarm.Alarm
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			bad(KeyAlarms, raw, err)
		} else {
			s.Alarms = alarm.NewList(items)
		}
	}
	if raw, ok := values[KeyLastTriggered]; ok {
		s.Guard.LastKey = raw
	}
	return s, problems
}

// Encode returns the persisted representation of s.
func (s *State) Encode() (map[string]string, error) {
	laps := s.Stopwatch.Laps
	if laps == nil {
		laps = []string{}
	}
	lapsJSON, err := json.Marshal(laps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode laps: %w", err)
	}
	alarms := s.Alarms.Items()
	if alarms == nil {
		alarms = []alarm.Alarm{}
	}
	alarmsJSON, err := json.Marshal(alarms)
	if err != nil {
		return nil, fmt.Errorf("failed to encode alarms: %w", err)
	}
	return map[string]string{
		KeyDayHours:         strconv.Itoa(s.DayHours),
		KeyShowSeconds:      strconv.FormatBool(s.ShowSeconds),
		KeyLanguage:         string(s.Language),
		KeyActivePanel:      string(s.ActivePanel),
		KeyStopwatchElapsed: strconv.FormatFloat(s.Stopwatch.ElapsedMs, 'g', -1, 64),
		KeyStopwatchLaps:    string(lapsJSON),
		KeyAlarms:           string(alarmsJSON),
		KeyLastTriggered:    s.Guard.LastKey,
	}, nil
}

// Load reads and decodes the state. Malformed values are logged and replaced
// by defaults.
func Load(ctx context.Context, src Loader, d model.Defaults, logger *slog.Logger) (*State, error) {
	values, err := src.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	s, problems := Decode(values, d)
	if logger == nil {
		logger = slog.Default()
	}
	for _, p := range problems {
		logger.WarnContext(ctx, "invalid persisted value", "component", "state", "error", p)
	}
	return s, nil
}

// Save writes the encoded state.
func Save(ctx context.Context, dst Saver, s *State) error {
	values, err := s.Encode()
	if err != nil {
		return err
	}
	if err := dst.SetMany(ctx, values); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
