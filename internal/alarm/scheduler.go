package alarm

import (
	"fmt"
	"time"

	"github.com/verte-zerg/nclock/internal/vclock"
)

// Event is a single alarm firing.
type Event struct {
	AlarmID string
	Hour    int
	Minute  int
	Key     string
}

// Guard remembers the last trigger key that fired. One key covers the whole
// minute for every alarm.
type Guard struct {
	LastKey string
}

// TriggerKey builds YYYYMMDDHHMM from the real calendar date and the virtual
// hour and minute.
func TriggerKey(date time.Time, hour, minute int) string {
	return fmt.Sprintf("%s%02d%02d", date.Format("20060102"), hour, minute)
}

// Check evaluates alarms against the sampled virtual time of day. It only
// considers samples whose virtual second is 0; at high speed factors a sample
// can skip that second entirely, and the minute is then missed.
//
// When at least one enabled alarm matches and the key differs from the
// guard, the guard is updated once and one event per matching alarm is
// returned. Later samples with the same key return nothing.
func Check(tod vclock.TimeOfDay, realDate time.Time, alarms []Alarm, guard *Guard) []Event {
	if tod.Second != 0 {
		return nil
	}
	key := TriggerKey(realDate, tod.Hour, tod.Minute)
	if guard.LastKey == key {
		return nil
	}
	var events []Event
	for _, a := range alarms {
		if !a.Enabled || a.Hour != tod.Hour || a.Minute != tod.Minute {
			continue
		}
		events = append(events, Event{AlarmID: a.ID, Hour: a.Hour, Minute: a.Minute, Key: key})
	}
	if len(events) > 0 {
		guard.LastKey = key
	}
	return events
}
