// Package stopwatch accumulates elapsed virtual time at the clock's speed.
package stopwatch

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// MaxLaps bounds the retained lap history.
const MaxLaps = 500

var (
	// ErrRunning rejects operations that require a stopped stopwatch.
	ErrRunning = errors.New("stopwatch is running")
	// ErrNotRunning rejects operations that require a running stopwatch.
	ErrNotRunning = errors.New("stopwatch is not running")
	// ErrAlreadyRunning rejects a second start.
	ErrAlreadyRunning = errors.New("stopwatch is already running")
)

// Stopwatch holds the accumulated virtual milliseconds and lap history.
// Laps are newest first.
type Stopwatch struct {
	ElapsedMs    float64
	Running      bool
	LastSampleMs float64
	Laps         []string
}

// Start begins accumulating from nowMs.
func (s *Stopwatch) Start(nowMs float64) error {
	if s.Running {
		return ErrAlreadyRunning
	}
	s.Running = true
	s.LastSampleMs = nowMs
	return nil
}

// Stop freezes the elapsed value at its last accumulated amount.
func (s *Stopwatch) Stop() error {
	if !s.Running {
		return ErrNotRunning
	}
	s.Running = false
	return nil
}

// Toggle starts a stopped stopwatch or stops a running one and reports the
// new running state. A stop first accumulates up to nowMs.
func (s *Stopwatch) Toggle(nowMs, speed float64) bool {
	if s.Running {
		s.Tick(nowMs, speed)
		_ = s.Stop()
		return false
	}
	_ = s.Start(nowMs)
	return true
}

// Tick advances the stopwatch by the real delta since the last sample scaled
// by speed. It must run on every sampling tick; when stopped it only moves
// the sample reference.
func (s *Stopwatch) Tick(nowMs, speed float64) {
	if s.Running {
		if delta := nowMs - s.LastSampleMs; delta > 0 {
			s.ElapsedMs += delta * speed
		}
	}
	s.LastSampleMs = nowMs
}

// Reset clears elapsed time and laps. Only allowed while stopped.
func (s *Stopwatch) Reset() error {
	if s.Running {
		return ErrRunning
	}
	s.ElapsedMs = 0
	s.Laps = nil
	return nil
}

// Lap records the current elapsed time at the head of the history. Only
// allowed while running.
func (s *Stopwatch) Lap() (string, error) {
	if !s.Running {
		return "", ErrNotRunning
	}
	lap := Format(s.ElapsedMs)
	s.Laps = append([]string{lap}, s.Laps...)
	if len(s.Laps) > MaxLaps {
		s.Laps = s.Laps[:MaxLaps]
	}
	return lap, nil
}

// Format renders ms as HH:MM:SS once an hour has elapsed, MM:SS.hh before.
func Format(ms float64) string {
	if ms < 0 || math.IsNaN(ms) {
		ms = 0
	}
	totalHundredths := int64(math.Floor(ms / 10))
	hundredths := totalHundredths % 100
	totalSeconds := totalHundredths / 100
	s := totalSeconds % 60
	m := (totalSeconds / 60) % 60
	h := totalSeconds / 3600
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d.%02d", m, s, hundredths)
}

// Display applies the seconds toggle to an already formatted value by
// cutting the fractional part.
func Display(formatted string, showSeconds bool) string {
	if showSeconds {
		return formatted
	}
	whole, _, _ := strings.Cut(formatted, ".")
	return whole
}
