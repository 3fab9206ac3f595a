// Package vclock projects real time onto a variable-speed virtual day.
package vclock

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// SecondsPerDay is the length of a virtual day in virtual seconds.
	SecondsPerDay = 86400
	// BaseDayHours is the real day length that yields a speed factor of 1.
	BaseDayHours = 24
	// MinDayHours and MaxDayHours bound the configurable day length.
	MinDayHours = 1
	MaxDayHours = 48
	// DefaultDayHours is used when no day length has been configured.
	DefaultDayHours = BaseDayHours
)

// ErrInvalidSpeed reports a day length that cannot produce a speed factor.
var ErrInvalidSpeed = errors.New("invalid day length")

// SpeedFactor returns the number of virtual seconds per real second for a day
// that lasts dayHours real hours.
func SpeedFactor(dayHours int) (float64, error) {
	if dayHours <= 0 {
		return 0, fmt.Errorf("%w: %d hours", ErrInvalidSpeed, dayHours)
	}
	return float64(BaseDayHours) / float64(dayHours), nil
}

// ValidateHours checks dayHours against the supported range.
func ValidateHours(dayHours int) error {
	if dayHours < MinDayHours || dayHours > MaxDayHours {
		return fmt.Errorf("%w: %d hours (must be %d-%d)", ErrInvalidSpeed, dayHours, MinDayHours, MaxDayHours)
	}
	return nil
}

// ClampHours forces dayHours into the supported range.
func ClampHours(dayHours int) int {
	if dayHours < MinDayHours {
		return MinDayHours
	}
	if dayHours > MaxDayHours {
		return MaxDayHours
	}
	return dayHours
}

// ParseHours parses a raw day length.
func ParseHours(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	h, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSpeed, raw)
	}
	if err := ValidateHours(h); err != nil {
		return 0, err
	}
	return h, nil
}

// UnixSeconds converts t to fractional Unix seconds. Projection deltas are
// always taken on this scale so a zone offset change never moves virtual time.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// WallSeconds converts t to local wall-clock seconds: Unix seconds shifted by
// the zone offset in effect at t.
func WallSeconds(t time.Time) float64 {
	_, offset := t.Zone()
	return UnixSeconds(t) + float64(offset)
}

// Anchor pairs a real instant with the virtual time it maps to.
type Anchor struct {
	RealSeconds    float64
	VirtualSeconds float64
}

// Projector maps real seconds to virtual seconds through an anchor and a
// speed factor.
type Projector struct {
	anchor Anchor
	speed  float64
}

// NewProjector anchors virtual time at nowReal scaled by speed.
func NewProjector(nowReal, speed float64) *Projector {
	return &Projector{
		anchor: Anchor{RealSeconds: nowReal, VirtualSeconds: nowReal * speed},
		speed:  speed,
	}
}

// NewWallProjector anchors at t so that virtual time starts at the local
// wall-clock time of t scaled by speed. The zone offset is read once here;
// later samples must be passed as UnixSeconds.
func NewWallProjector(t time.Time, speed float64) *Projector {
	return &Projector{
		anchor: Anchor{RealSeconds: UnixSeconds(t), VirtualSeconds: WallSeconds(t) * speed},
		speed:  speed,
	}
}

// Speed returns the current speed factor.
func (p *Projector) Speed() float64 {
	return p.speed
}

// Anchor returns the current anchor pair.
func (p *Projector) Anchor() Anchor {
	return p.anchor
}

// CurrentVirtual returns the virtual seconds at nowReal.
func (p *Projector) CurrentVirtual(nowReal float64) float64 {
	return p.anchor.VirtualSeconds + (nowReal-p.anchor.RealSeconds)*p.speed
}

// Rebase moves the anchor to nowReal and switches to speed. The virtual time
// at nowReal is captured under the old speed before the switch, so the
// projection is continuous at the rebase instant.
func (p *Projector) Rebase(nowReal, speed float64) {
	virtual := p.CurrentVirtual(nowReal)
	p.anchor = Anchor{RealSeconds: nowReal, VirtualSeconds: virtual}
	p.speed = speed
}

// TimeOfDay returns the virtual time of day at nowReal.
func (p *Projector) TimeOfDay(nowReal float64) TimeOfDay {
	return TimeOfDayAt(p.CurrentVirtual(nowReal))
}

// TimeOfDay is a decomposed virtual time of day.
type TimeOfDay struct {
	Hour    int
	Minute  int
	Second  int
	Seconds float64
}

// TimeOfDayAt folds virtual seconds into a single day. The modulo is
// floor-style, so negative inputs still land in [0, 86400).
func TimeOfDayAt(virtual float64) TimeOfDay {
	day := math.Mod(math.Mod(virtual, SecondsPerDay)+SecondsPerDay, SecondsPerDay)
	whole := int(math.Floor(day))
	return TimeOfDay{
		Hour:    (whole / 3600) % 24,
		Minute:  (whole / 60) % 60,
		Second:  whole % 60,
		Seconds: day,
	}
}

// Format renders HH:MM:SS, or HH:MM when seconds are hidden.
func (t TimeOfDay) Format(showSeconds bool) string {
	if showSeconds {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
