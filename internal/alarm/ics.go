package alarm

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
)

const (
	icsProdID  = "-//nclock//alarms//EN"
	icsVersion = "2.0"
	icsDomain  = "nclock"

	emptyCalendar = "BEGIN:VCALENDAR\r\nVERSION:" + icsVersion + "\r\nPRODID:" + icsProdID + "\r\nEND:VCALENDAR\r\n"
)

// ExportICS writes enabled alarms as daily recurring iCalendar events, each
// with a DISPLAY reminder at the start time. Start times are today's
// wall-clock times in now's location, stored as UTC; they match the virtual
// clock only at a 24 hour day.
func ExportICS(w io.Writer, alarms []Alarm, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, icsVersion)
	cal.Props.SetText(ical.PropProductID, icsProdID)

	stamp := now.UTC()
	year, month, day := now.Date()
	for _, a := range alarms {
		if !a.Enabled {
			continue
		}
		summary := "Alarm " + a.String()

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("%s@%s", a.ID, icsDomain))
		event.Props.SetText(ical.PropSummary, summary)
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		start := time.Date(year, month, day, a.Hour, a.Minute, 0, 0, now.Location())
		event.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())

		rule := ical.NewProp(ical.PropRecurrenceRule)
		rule.Value = "FREQ=DAILY"
		event.Props.Set(rule)

		reminder := ical.NewComponent(ical.CompAlarm)
		reminder.Props.SetText(ical.PropAction, "DISPLAY")
		reminder.Props.SetText(ical.PropDescription, summary)
		trigger := ical.NewProp(ical.PropTrigger)
		trigger.Value = "PT0M"
		reminder.Props.Set(trigger)
		event.Children = append(event.Children, reminder)

		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		// Minimal valid calendar when nothing is enabled.
		if _, err := io.WriteString(w, emptyCalendar); err != nil {
			return fmt.Errorf("failed to write calendar: %w", err)
		}
		return nil
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
