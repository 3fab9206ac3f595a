package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/nclock/internal/model"
	"github.com/verte-zerg/nclock/internal/notify"
	"github.com/verte-zerg/nclock/internal/state"
	"github.com/verte-zerg/nclock/internal/stopwatch"
)

type fakeStore struct {
	mu     sync.Mutex
	saves  []map[string]string
	fires  []model.FireRecord
	setErr error
}

func (f *fakeStore) SetMany(_ context.Context, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, values)
	return f.setErr
}

func (f *fakeStore) InsertFire(_ context.Context, rec model.FireRecord) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fires = append(f.fires, rec)
	return int64(len(f.fires)), nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

type recordingNotifier struct {
	events []notify.Event
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, e notify.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func newEngine(t *testing.T, start time.Time, opts ...Option) (*Engine, *clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClockAt(start)
	st := state.New(state.DefaultSettings())
	return New(st, append([]Option{WithClock(fc)}, opts...)...), fc
}

func TestTickProjectsWallClockAtNormalSpeed(t *testing.T) {
	e, _ := newEngine(t, time.Date(2024, 5, 1, 13, 45, 10, 0, time.Local))
	snap := e.Tick(context.Background())
	assert.Equal(t, 13, snap.TimeOfDay.Hour)
	assert.Equal(t, 45, snap.TimeOfDay.Minute)
	assert.Equal(t, 10, snap.TimeOfDay.Second)
	assert.Equal(t, "13:45:10", snap.Clock)
	assert.Equal(t, 1.0, snap.Speed)
	assert.Equal(t, model.PanelClock, snap.Panel)
}

func TestAlarmFiresOncePerDay(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{}
	n := &recordingNotifier{}
	e, fc := newEngine(t, time.Date(2024, 1, 1, 7, 29, 59, 0, time.Local), WithStore(st), WithNotifier(n))
	a, err := e.AddAlarm("07:30")
	require.NoError(t, err)

	assert.Empty(t, e.Tick(ctx).Fired)

	fc.Advance(time.Second)
	snap := e.Tick(ctx)
	require.Len(t, snap.Fired, 1)
	assert.Equal(t, a.ID, snap.Fired[0].AlarmID)
	assert.Equal(t, "202401010730", e.State().Guard.LastKey)

	// several samples inside the same virtual second and minute
	fc.Advance(100 * time.Millisecond)
	assert.Empty(t, e.Tick(ctx).Fired)
	fc.Advance(900 * time.Millisecond)
	assert.Empty(t, e.Tick(ctx).Fired)

	fc.Advance(24*time.Hour - 2*time.Second)
	fc.Advance(time.Second)
	snap = e.Tick(ctx)
	require.Len(t, snap.Fired, 1)
	assert.Equal(t, "202401020730", snap.Fired[0].Key)

	require.Len(t, n.events, 2)
	assert.Equal(t, notify.TypeAlarm, n.events[0].Type)
	assert.Equal(t, "Alarm 07:30", n.events[0].Message)
	assert.Len(t, st.fires, 2)
}

func TestNotifierFailureStillConsumesMinute(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{err: errors.New("no terminal")}
	e, fc := newEngine(t, time.Date(2024, 1, 1, 6, 0, 0, 0, time.Local), WithNotifier(n))
	_, err := e.AddAlarm("06:00")
	require.NoError(t, err)

	assert.Len(t, e.Tick(ctx).Fired, 1)
	fc.Advance(200 * time.Millisecond)
	assert.Empty(t, e.Tick(ctx).Fired)
	assert.Len(t, n.events, 1)
}

func TestSetDayHoursIsContinuous(t *testing.T) {
	e, fc := newEngine(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local))
	before := e.Snapshot().TimeOfDay

	require.NoError(t, e.SetDayHours(12))
	after := e.Snapshot().TimeOfDay
	assert.InDelta(t, before.Seconds, after.Seconds, 1e-3)
	assert.Equal(t, 2.0, e.Projector().Speed())

	fc.Advance(10 * time.Second)
	assert.InDelta(t, before.Seconds+20, e.Snapshot().TimeOfDay.Seconds, 1e-3)

	assert.Error(t, e.SetDayHours(0))
	assert.Error(t, e.SetDayHours(49))
	assert.Equal(t, 12, e.State().DayHours)
}

func TestAdjustDayHoursClamps(t *testing.T) {
	e, _ := newEngine(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local))
	assert.Equal(t, 25, e.AdjustDayHours(1))
	assert.Equal(t, 48, e.AdjustDayHours(100))
	assert.Equal(t, 1, e.AdjustDayHours(-100))
}

func TestStopwatchScalesWithSpeed(t *testing.T) {
	ctx := context.Background()
	e, fc := newEngine(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local))

	assert.True(t, e.ToggleStopwatch())
	fc.Advance(time.Second)
	e.Tick(ctx)
	assert.InDelta(t, 1000, e.State().Stopwatch.ElapsedMs, 1e-6)

	require.NoError(t, e.SetDayHours(12))
	fc.Advance(time.Second)
	e.Tick(ctx)
	assert.InDelta(t, 3000, e.State().Stopwatch.ElapsedMs, 1e-6)

	lap, err := e.Lap()
	require.NoError(t, err)
	assert.Equal(t, "00:03.00", lap)

	assert.ErrorIs(t, e.ResetStopwatch(), stopwatch.ErrRunning)
	assert.False(t, e.ToggleStopwatch())

	fc.Advance(time.Hour)
	snap := e.Tick(ctx)
	assert.Equal(t, "00:03.00", snap.Stopwatch)
	assert.False(t, snap.Running)
	assert.Equal(t, []string{"00:03.00"}, snap.Laps)

	_, err = e.Lap()
	assert.ErrorIs(t, err, stopwatch.ErrNotRunning)
	require.NoError(t, e.ResetStopwatch())
	assert.Zero(t, e.State().Stopwatch.ElapsedMs)
}

func TestStopwatchIgnoresBackwardsClock(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	e, fc := newEngine(t, start)
	e.ToggleStopwatch()
	fc.Advance(2 * time.Second)
	e.Tick(ctx)

	fc.Advance(-time.Second)
	e.Tick(ctx)
	assert.InDelta(t, 2000, e.State().Stopwatch.ElapsedMs, 1e-6)

	fc.Advance(500 * time.Millisecond)
	e.Tick(ctx)
	assert.InDelta(t, 2500, e.State().Stopwatch.ElapsedMs, 1e-6)
}

func TestShowSecondsAffectsDisplay(t *testing.T) {
	e, _ := newEngine(t, time.Date(2024, 1, 1, 9, 5, 7, 0, time.Local))
	e.SetShowSeconds(false)
	snap := e.Tick(context.Background())
	assert.Equal(t, "09:05", snap.Clock)
	assert.Equal(t, "00:00", snap.Stopwatch)
}

func TestFlushOnChangeAndPeriodically(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{}
	e, fc := newEngine(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), WithStore(st), WithFlushInterval(2*time.Second))

	e.Tick(ctx)
	assert.Equal(t, 0, st.saveCount())

	e.SetLanguage(model.LangEnglish)
	assert.True(t, e.Dirty())
	e.Tick(ctx)
	require.Equal(t, 1, st.saveCount())
	assert.Equal(t, "en", st.saves[0][state.KeyLanguage])
	assert.False(t, e.Dirty())

	fc.Advance(time.Second)
	e.Tick(ctx)
	assert.Equal(t, 1, st.saveCount())

	fc.Advance(time.Second)
	e.Tick(ctx)
	assert.Equal(t, 2, st.saveCount())
}

func TestFlushFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{setErr: errors.New("disk full")}
	e, fc := newEngine(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), WithStore(st))

	e.SetPanel(model.PanelAlarm)
	e.Tick(ctx)
	assert.Equal(t, 1, st.saveCount())
	assert.Error(t, e.Flush(ctx))

	st.setErr = nil
	fc.Advance(DefaultFlushInterval)
	e.Tick(ctx)
	assert.Equal(t, 3, st.saveCount())
	assert.Equal(t, "alarm", st.saves[2][state.KeyActivePanel])
}

func TestRunSamplesUntilCancelled(t *testing.T) {
	st := &fakeStore{}
	e, fc := newEngine(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), WithStore(st))
	ctx, cancel := context.WithCancel(context.Background())

	snaps := make(chan Snapshot, 16)
	done := make(chan error, 1)
	go func() {
		done <- e.Run(ctx, 100*time.Millisecond, func(s Snapshot) { snaps <- s })
	}()

	first := <-snaps
	fc.Advance(100 * time.Millisecond)
	second := <-snaps
	assert.Equal(t, 100*time.Millisecond, second.Now.Sub(first.Now))

	cancel()
	require.NoError(t, <-done)
	assert.GreaterOrEqual(t, st.saveCount(), 1)
}

func TestVirtualTimeSteadyAcrossFallBack(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	ctx := context.Background()
	e, fc := newEngine(t, time.Date(2024, 11, 3, 5, 59, 58, 0, time.UTC).In(ny))

	first := e.Tick(ctx)
	assert.Equal(t, "01:59:58", first.Clock)

	fc.Advance(4 * time.Second)
	snap := e.Tick(ctx)
	assert.Equal(t, "01:00:02", snap.Now.Format("15:04:05"))
	assert.Equal(t, "02:00:02", snap.Clock)
}

func TestAlarmFiresAcrossSpringForward(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	ctx := context.Background()
	n := &recordingNotifier{}
	e, fc := newEngine(t, time.Date(2024, 3, 10, 6, 59, 58, 0, time.UTC).In(ny), WithNotifier(n))
	_, err = e.AddAlarm("02:00")
	require.NoError(t, err)

	var clocks []string
	for i := 0; i < 4; i++ {
		clocks = append(clocks, e.Tick(ctx).Clock)
		fc.Advance(time.Second)
	}
	assert.Equal(t, []string{"01:59:58", "01:59:59", "02:00:00", "02:00:01"}, clocks)
	require.Len(t, n.events, 1)
	assert.Equal(t, 2, n.events[0].Hour)
	assert.Equal(t, 0, n.events[0].Minute)
}
