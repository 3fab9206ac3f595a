package stopwatch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickAccumulatesScaledDelta(t *testing.T) {
	var sw Stopwatch
	require.NoError(t, sw.Start(1000))

	sw.Tick(1500, 2)
	assert.Equal(t, 1000.0, sw.ElapsedMs)

	sw.Tick(1600, 0.5)
	assert.Equal(t, 1050.0, sw.ElapsedMs)
	assert.Equal(t, 1600.0, sw.LastSampleMs)
}

func TestTickWhileStoppedOnlyMovesSample(t *testing.T) {
	sw := Stopwatch{ElapsedMs: 42}
	sw.Tick(5000, 3)

	assert.Equal(t, 42.0, sw.ElapsedMs)
	assert.Equal(t, 5000.0, sw.LastSampleMs)
}

func TestElapsedNonDecreasingWhileRunningFrozenWhileStopped(t *testing.T) {
	var sw Stopwatch
	require.NoError(t, sw.Start(0))

	prev := sw.ElapsedMs
	now := 0.0
	for i := 0; i < 50; i++ {
		now += 16.7
		sw.Tick(now, 24.0/float64(i%48+1))
		assert.GreaterOrEqual(t, sw.ElapsedMs, prev)
		prev = sw.ElapsedMs
	}

	require.NoError(t, sw.Stop())
	frozen := sw.ElapsedMs
	for i := 0; i < 10; i++ {
		now += 100
		sw.Tick(now, 2)
	}
	assert.Equal(t, frozen, sw.ElapsedMs)
}

func TestTickIgnoresBackwardsClock(t *testing.T) {
	var sw Stopwatch
	require.NoError(t, sw.Start(1000))
	sw.Tick(900, 1)
	assert.Equal(t, 0.0, sw.ElapsedMs)
}

func TestStartTwiceRejected(t *testing.T) {
	var sw Stopwatch
	require.NoError(t, sw.Start(0))
	assert.ErrorIs(t, sw.Start(10), ErrAlreadyRunning)
	assert.Equal(t, 0.0, sw.LastSampleMs)
}

func TestToggle(t *testing.T) {
	var sw Stopwatch
	assert.True(t, sw.Toggle(100, 1))
	assert.False(t, sw.Toggle(350, 2))
	assert.Equal(t, 500.0, sw.ElapsedMs)
	assert.False(t, sw.Running)
}

func TestResetWhileRunningRejected(t *testing.T) {
	sw := Stopwatch{ElapsedMs: 1234, Laps: []string{"00:01.23"}}
	require.NoError(t, sw.Start(0))

	assert.ErrorIs(t, sw.Reset(), ErrRunning)
	assert.Equal(t, 1234.0, sw.ElapsedMs)
	assert.Len(t, sw.Laps, 1)

	require.NoError(t, sw.Stop())
	require.NoError(t, sw.Reset())
	assert.Zero(t, sw.ElapsedMs)
	assert.Empty(t, sw.Laps)
}

func TestLapWhileStoppedRejected(t *testing.T) {
	sw := Stopwatch{ElapsedMs: 1000}
	_, err := sw.Lap()
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.Empty(t, sw.Laps)
}

func TestLapNewestFirstAndBounded(t *testing.T) {
	var sw Stopwatch
	require.NoError(t, sw.Start(0))

	for i := 0; i < MaxLaps+20; i++ {
		sw.Tick(float64(i+1)*10, 1)
		_, err := sw.Lap()
		require.NoError(t, err)
	}

	require.Len(t, sw.Laps, MaxLaps)
	assert.Equal(t, Format(float64(MaxLaps+20)*10), sw.Laps[0])
	// the oldest 20 laps were dropped from the tail
	assert.Equal(t, Format(21*10), sw.Laps[MaxLaps-1])
}

func TestFormat(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{ms: 0, want: "00:00.00"},
		{ms: 9.99, want: "00:00.00"},
		{ms: 1234, want: "00:01.23"},
		{ms: 61_005, want: "01:01.00"},
		{ms: 3_599_999, want: "59:59.99"},
		{ms: 3_600_000, want: "01:00:00"},
		{ms: 3_723_450, want: "01:02:03"},
		{ms: 100 * 3_600_000, want: "100:00:00"},
		{ms: -5, want: "00:00.00"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.ms), func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.ms))
		})
	}
}

func TestDisplayTruncatesFormattedString(t *testing.T) {
	assert.Equal(t, "01:02.34", Display("01:02.34", true))
	assert.Equal(t, "01:02", Display("01:02.34", false))
	assert.Equal(t, "01:02:03", Display("01:02:03", false))
}
