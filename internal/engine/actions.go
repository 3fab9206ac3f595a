package engine

import (
	"github.com/verte-zerg/nclock/internal/alarm"
	"github.com/verte-zerg/nclock/internal/model"
	"github.com/verte-zerg/nclock/internal/vclock"
)

// SetDayHours changes the virtual day length. The stopwatch accumulates up
// to now under the old speed and the projector is rebased, so neither the
// clock nor the stopwatch jumps.
func (e *Engine) SetDayHours(hours int) error {
	if err := vclock.ValidateHours(hours); err != nil {
		return err
	}
	speed, err := vclock.SpeedFactor(hours)
	if err != nil {
		return err
	}
	now := e.clock.Now()
	e.state.Stopwatch.Tick(e.ms(now), e.proj.Speed())
	e.proj.Rebase(vclock.UnixSeconds(now), speed)
	e.state.DayHours = hours
	e.dirty = true
	return nil
}

// AdjustDayHours moves the day length by delta within the supported range
// and returns the new value.
func (e *Engine) AdjustDayHours(delta int) int {
	next := vclock.ClampHours(e.state.DayHours + delta)
	if next != e.state.DayHours {
		// next is clamped, so this cannot fail.
		_ = e.SetDayHours(next)
	}
	return e.state.DayHours
}

// ToggleStopwatch starts or stops the stopwatch and reports whether it runs.
func (e *Engine) ToggleStopwatch() bool {
	running := e.state.Stopwatch.Toggle(e.ms(e.clock.Now()), e.proj.Speed())
	e.dirty = true
	return running
}

// Lap records a lap. The stopwatch must be running.
func (e *Engine) Lap() (string, error) {
	e.state.Stopwatch.Tick(e.ms(e.clock.Now()), e.proj.Speed())
	lap, err := e.state.Stopwatch.Lap()
	if err != nil {
		return "", err
	}
	e.dirty = true
	return lap, nil
}

// ResetStopwatch clears the stopwatch. The stopwatch must be stopped.
func (e *Engine) ResetStopwatch() error {
	if err := e.state.Stopwatch.Reset(); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// AddAlarm parses raw as HH:MM and adds an enabled alarm.
func (e *Engine) AddAlarm(raw string) (alarm.Alarm, error) {
	a, err := e.state.Alarms.Add(raw)
	if err != nil {
		return alarm.Alarm{}, err
	}
	e.dirty = true
	return a, nil
}

// RemoveAlarm deletes an alarm by ID.
func (e *Engine) RemoveAlarm(id string) error {
	if err := e.state.Alarms.Remove(id); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// ToggleAlarm flips an alarm's enabled flag.
func (e *Engine) ToggleAlarm(id string) (alarm.Alarm, error) {
	a, err := e.state.Alarms.Toggle(id)
	if err != nil {
		return alarm.Alarm{}, err
	}
	e.dirty = true
	return a, nil
}

// SetShowSeconds toggles seconds in the clock and stopwatch displays.
func (e *Engine) SetShowSeconds(show bool) {
	if e.state.ShowSeconds == show {
		return
	}
	e.state.ShowSeconds = show
	e.dirty = true
}

// SetLanguage switches the UI language.
func (e *Engine) SetLanguage(lang model.Language) {
	if e.state.Language == lang {
		return
	}
	e.state.Language = lang
	e.dirty = true
}

// SetPanel records the active panel.
func (e *Engine) SetPanel(p model.Panel) {
	if e.state.ActivePanel == p {
		return
	}
	e.state.ActivePanel = p
	e.dirty = true
}
