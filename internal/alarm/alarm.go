// Package alarm manages daily alarms and detects when they fire against the
// virtual time of day.
package alarm

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrMissingTime reports an empty alarm time.
	ErrMissingTime = errors.New("alarm time is missing")
	// ErrInvalidTime reports a non-numeric or out-of-range alarm time.
	ErrInvalidTime = errors.New("alarm time is invalid")
	// ErrNotFound reports an unknown alarm ID.
	ErrNotFound = errors.New("alarm not found")
)

// Alarm fires every virtual day at Hour:Minute while enabled.
type Alarm struct {
	ID      string `json:"id"`
	Hour    int    `json:"hour"`
	Minute  int    `json:"min"`
	Enabled bool   `json:"enabled"`
}

// String renders HH:MM.
func (a Alarm) String() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// ParseTime parses an "H:M" alarm time.
func ParseTime(raw string) (int, int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, ErrMissingTime
	}
	hh, mm, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q out of range", ErrInvalidTime, raw)
	}
	return hour, minute, nil
}

// List holds alarms in insertion order.
type List struct {
	items []Alarm
}

// NewList wraps existing alarms, dropping entries with out-of-range times
// and filling in missing IDs.
func NewList(items []Alarm) *List {
	l := &List{items: make([]Alarm, 0, len(items))}
	seen := map[string]struct{}{}
	for _, a := range items {
		if a.Hour < 0 || a.Hour > 23 || a.Minute < 0 || a.Minute > 59 {
			continue
		}
		if _, dup := seen[a.ID]; a.ID == "" || dup {
			a.ID = uuid.NewString()
		}
		seen[a.ID] = struct{}{}
		l.items = append(l.items, a)
	}
	return l
}

// Items returns a copy of the alarms in insertion order.
func (l *List) Items() []Alarm {
	return append([]Alarm(nil), l.items...)
}

// Len returns the number of alarms.
func (l *List) Len() int {
	return len(l.items)
}

// Sorted returns a copy ordered by time of day, insertion order breaking ties.
func (l *List) Sorted() []Alarm {
	out := l.Items()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].Minute < out[j].Minute
	})
	return out
}

// Add validates raw and appends an enabled alarm.
func (l *List) Add(raw string) (Alarm, error) {
	hour, minute, err := ParseTime(raw)
	if err != nil {
		return Alarm{}, err
	}
	a := Alarm{ID: uuid.NewString(), Hour: hour, Minute: minute, Enabled: true}
	l.items = append(l.items, a)
	return a, nil
}

// Remove deletes the alarm with the given ID.
func (l *List) Remove(id string) error {
	idx := l.index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	return nil
}

// Toggle flips the enabled flag in place.
func (l *List) Toggle(id string) (Alarm, error) {
	idx := l.index(id)
	if idx < 0 {
		return Alarm{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	l.items[idx].Enabled = !l.items[idx].Enabled
	return l.items[idx], nil
}

// Resolve finds an alarm by full ID or unique ID prefix.
func (l *List) Resolve(ref string) (Alarm, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Alarm{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	var match *Alarm
	for i := range l.items {
		if l.items[i].ID == ref {
			return l.items[i], nil
		}
		if strings.HasPrefix(l.items[i].ID, ref) {
			if match != nil {
				return Alarm{}, fmt.Errorf("alarm id prefix %q is ambiguous", ref)
			}
			match = &l.items[i]
		}
	}
	if match == nil {
		return Alarm{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return *match, nil
}

func (l *List) index(id string) int {
	for i, a := range l.items {
		if a.ID == id {
			return i
		}
	}
	return -1
}
