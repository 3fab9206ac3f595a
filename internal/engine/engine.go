// Package engine drives the sampling loop: every tick advances the stopwatch,
// projects the virtual time of day, evaluates alarms and flushes state.
//
// An Engine is not safe for concurrent use. It is owned by a single goroutine
// (the TUI update loop or Run).
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/verte-zerg/nclock/internal/alarm"
	"github.com/verte-zerg/nclock/internal/model"
	"github.com/verte-zerg/nclock/internal/notify"
	"github.com/verte-zerg/nclock/internal/state"
	"github.com/verte-zerg/nclock/internal/stopwatch"
	"github.com/verte-zerg/nclock/internal/vclock"
)

const (
	// DefaultTickInterval is the sampling period of the UI loop.
	DefaultTickInterval = model.DefaultTickInterval
	// DefaultFlushInterval is the period of the background state flush.
	DefaultFlushInterval = model.DefaultFlushInterval
)

// Store persists state and alarm history.
type Store interface {
	SetMany(ctx context.Context, values map[string]string) error
	InsertFire(ctx context.Context, rec model.FireRecord) (int64, error)
}

// Snapshot is the rendered view of one sample.
type Snapshot struct {
	Now         time.Time
	TimeOfDay   vclock.TimeOfDay
	Clock       string
	Stopwatch   string
	Running     bool
	Laps        []string
	Alarms      []alarm.Alarm
	Fired       []alarm.Event
	DayHours    int
	Speed       float64
	ShowSeconds bool
	Language    model.Language
	Panel       model.Panel
}

// Engine owns the state and the projector.
type Engine struct {
	state    *state.State
	clock    clockwork.Clock
	notifier notify.Notifier
	store    Store
	logger   *slog.Logger
	label    func(alarm.Event) string

	flushEvery time.Duration
	epoch      time.Time
	lastFlush  time.Time
	dirty      bool
	proj       *vclock.Projector
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source. Tests pass a clockwork fake clock.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithNotifier sets the notifier used for alarm events.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithStore enables persistence.
func WithStore(s Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithFlushInterval sets the periodic flush interval.
func WithFlushInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.flushEvery = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithAlarmLabel sets the message attached to alarm notifications.
func WithAlarmLabel(fn func(alarm.Event) string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.label = fn
		}
	}
}

// New creates an engine over st. The projector is anchored at the current
// instant with the state's day length.
func New(st *state.State, opts ...Option) *Engine {
	e := &Engine{
		state:      st,
		clock:      clockwork.NewRealClock(),
		notifier:   notify.Nop{},
		logger:     slog.Default(),
		label:      defaultLabel,
		flushEvery: DefaultFlushInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := vclock.ValidateHours(st.DayHours); err != nil {
		e.logger.Warn("invalid day length, clamping", "component", "engine", "hours", st.DayHours)
		st.DayHours = vclock.ClampHours(st.DayHours)
	}
	if st.Alarms == nil {
		st.Alarms = alarm.NewList(nil)
	}

	now := e.clock.Now()
	e.epoch = now
	e.lastFlush = now
	speed, _ := vclock.SpeedFactor(st.DayHours)
	e.proj = vclock.NewWallProjector(now, speed)
	st.Stopwatch.LastSampleMs = e.ms(now)
	return e
}

func defaultLabel(ev alarm.Event) string {
	return fmt.Sprintf("Alarm %02d:%02d", ev.Hour, ev.Minute)
}

// State exposes the owned state.
func (e *Engine) State() *state.State {
	return e.state
}

// Projector exposes the owned projector.
func (e *Engine) Projector() *vclock.Projector {
	return e.proj
}

func (e *Engine) ms(now time.Time) float64 {
	return float64(now.Sub(e.epoch)) / float64(time.Millisecond)
}

// Tick samples the clock once.
func (e *Engine) Tick(ctx context.Context) Snapshot {
	now := e.clock.Now()
	e.state.Stopwatch.Tick(e.ms(now), e.proj.Speed())
	tod := e.proj.TimeOfDay(vclock.UnixSeconds(now))

	events := alarm.Check(tod, now, e.state.Alarms.Items(), &e.state.Guard)
	if len(events) > 0 {
		e.dirty = true
		e.dispatch(ctx, now, events)
	}
	e.maybeFlush(ctx, now)
	return e.snapshot(now, tod, events)
}

// Snapshot renders the current state without advancing anything.
func (e *Engine) Snapshot() Snapshot {
	now := e.clock.Now()
	return e.snapshot(now, e.proj.TimeOfDay(vclock.UnixSeconds(now)), nil)
}

func (e *Engine) snapshot(now time.Time, tod vclock.TimeOfDay, fired []alarm.Event) Snapshot {
	st := e.state
	laps := make([]string, len(st.Stopwatch.Laps))
	copy(laps, st.Stopwatch.Laps)
	return Snapshot{
		Now:         now,
		TimeOfDay:   tod,
		Clock:       tod.Format(st.ShowSeconds),
		Stopwatch:   stopwatch.Display(stopwatch.Format(st.Stopwatch.ElapsedMs), st.ShowSeconds),
		Running:     st.Stopwatch.Running,
		Laps:        laps,
		Alarms:      st.Alarms.Sorted(),
		Fired:       fired,
		DayHours:    st.DayHours,
		Speed:       e.proj.Speed(),
		ShowSeconds: st.ShowSeconds,
		Language:    st.Language,
		Panel:       st.ActivePanel,
	}
}

// dispatch runs after the guard is updated; failures are logged and never
// re-arm the alarm.
func (e *Engine) dispatch(ctx context.Context, now time.Time, events []alarm.Event) {
	for _, ev := range events {
		e.logger.InfoContext(ctx, "alarm fired",
			"component", "engine",
			"alarm_id", ev.AlarmID,
			"key", ev.Key,
		)
		if e.store != nil {
			rec := model.FireRecord{
				AlarmID:    ev.AlarmID,
				Hour:       ev.Hour,
				Minute:     ev.Minute,
				TriggerKey: ev.Key,
				FiredAt:    now,
			}
			if _, err := e.store.InsertFire(ctx, rec); err != nil {
				e.logger.ErrorContext(ctx, "failed to record alarm", "component", "engine", "error", err)
			}
		}
		err := e.notifier.Notify(ctx, notify.Event{
			Type:      notify.TypeAlarm,
			Message:   e.label(ev),
			AlarmID:   ev.AlarmID,
			Hour:      ev.Hour,
			Minute:    ev.Minute,
			Timestamp: now,
		})
		if err != nil {
			e.logger.ErrorContext(ctx, "failed to notify alarm", "component", "engine", "error", err)
		}
	}
}

func (e *Engine) maybeFlush(ctx context.Context, now time.Time) {
	if !e.dirty && now.Sub(e.lastFlush) < e.flushEvery {
		return
	}
	if err := e.flushAt(ctx, now); err != nil {
		e.logger.ErrorContext(ctx, "failed to flush state", "component", "engine", "error", err)
	}
}

// Flush writes the state to the store immediately.
func (e *Engine) Flush(ctx context.Context) error {
	return e.flushAt(ctx, e.clock.Now())
}

func (e *Engine) flushAt(ctx context.Context, now time.Time) error {
	e.dirty = false
	e.lastFlush = now
	if e.store == nil {
		return nil
	}
	return state.Save(ctx, e.store, e.state)
}

// Dirty reports whether a change is waiting for the next flush.
func (e *Engine) Dirty() bool {
	return e.dirty
}

// Run samples every interval until ctx is done, passing each snapshot to
// onTick. The state is flushed once more before returning.
func (e *Engine) Run(ctx context.Context, interval time.Duration, onTick func(Snapshot)) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := e.clock.NewTicker(interval)
	defer ticker.Stop()

	emit := func(s Snapshot) {
		if onTick != nil {
			onTick(s)
		}
	}
	emit(e.Tick(ctx))
	for {
		select {
		case <-ctx.Done():
			if err := e.Flush(context.WithoutCancel(ctx)); err != nil {
				return fmt.Errorf("failed to flush state: %w", err)
			}
			return nil
		case <-ticker.Chan():
			emit(e.Tick(ctx))
		}
	}
}
