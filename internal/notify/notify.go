// Package notify delivers alarm events to the user.
package notify

import (
	"context"
	"errors"
	"time"
)

// TypeAlarm marks an alarm firing.
const TypeAlarm = "alarm"

// Event represents a notification event.
type Event struct {
	Type      string
	Message   string
	AlarmID   string
	Hour      int
	Minute    int
	Timestamp time.Time
}

// Notifier sends alerts when notable events occur.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Multi fans an event out to every notifier. All notifiers are called even
// when one fails; the errors are joined.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Event) error { return nil }
