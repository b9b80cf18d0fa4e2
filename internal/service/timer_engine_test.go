package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intervals/backend/internal/model"
)

func newPreset(id string, loop bool, minutes ...int) model.TimerPreset {
	segments := make([]model.TimerSegment, len(minutes))
	for i, m := range minutes {
		segments[i] = model.TimerSegment{
			ID:              fmt.Sprintf("%s-seg-%d", id, i),
			Name:            fmt.Sprintf("Segment %d", i),
			DurationMinutes: model.Minutes(m),
			Color:           "#4A90E2",
		}
	}
	return model.TimerPreset{ID: id, Name: "Preset " + id, Segments: segments, Loop: loop}
}

func activeEngine(t *testing.T, preset model.TimerPreset) *TimerEngine {
	t.Helper()
	engine := NewTimerEngine()
	require.NoError(t, engine.SetActivePreset(&preset))
	engine.Start()
	return engine
}

func tickN(engine *TimerEngine, n int) {
	for i := 0; i < n; i++ {
		engine.Tick()
	}
}

func TestNonLoopingPresetCompletesAfterTotalDuration(t *testing.T) {
	cases := [][]int{{1}, {1, 2}, {2, 1, 3}}
	for _, minutes := range cases {
		t.Run(fmt.Sprint(minutes), func(t *testing.T) {
			engine := activeEngine(t, newPreset("p", false, minutes...))

			total := 0
			for _, m := range minutes {
				total += m * 60
			}
			tickN(engine, total-1)
			require.Equal(t, model.StatusRunning, engine.Snapshot().Status)

			engine.Tick()
			done := engine.Snapshot()
			assert.Equal(t, model.StatusCompleted, done.Status)
			assert.False(t, done.IsRunning)
			assert.Equal(t, len(minutes)-1, done.CurrentSegmentIndex)
			assert.Equal(t, 0, done.SecondsRemaining)

			assert.False(t, engine.Tick())
			assert.Equal(t, done, engine.Snapshot())
		})
	}
}

func TestLoopingPresetFollowsElapsedTimeModuloCycle(t *testing.T) {
	minutes := []int{1, 2, 1}
	engine := activeEngine(t, newPreset("loop", true, minutes...))

	cycle := 0
	for _, m := range minutes {
		cycle += m * 60
	}

	expected := func(elapsed int) (int, int) {
		offset := elapsed % cycle
		for i, m := range minutes {
			if offset < m*60 {
				return i, m*60 - offset
			}
			offset -= m * 60
		}
		t.Fatalf("offset %d outside cycle", offset)
		return 0, 0
	}

	for elapsed := 1; elapsed <= 3*cycle+17; elapsed++ {
		require.True(t, engine.Tick())
		index, remaining := expected(elapsed)
		snapshot := engine.Snapshot()
		require.Equal(t, index, snapshot.CurrentSegmentIndex, "elapsed %d", elapsed)
		require.Equal(t, remaining, snapshot.SecondsRemaining, "elapsed %d", elapsed)
		require.True(t, snapshot.IsRunning)
	}
}

func TestTickIsNoOpWhenIdleOrPaused(t *testing.T) {
	engine := NewTimerEngine()
	idle := engine.Snapshot()
	assert.False(t, engine.Tick())
	assert.Equal(t, idle, engine.Snapshot())

	preset := newPreset("p", false, 1)
	require.NoError(t, engine.SetActivePreset(&preset))
	paused := engine.Snapshot()
	assert.Equal(t, model.StatusPaused, paused.Status)
	assert.False(t, engine.Tick())
	assert.Equal(t, paused, engine.Snapshot())

	engine.Start()
	tickN(engine, 10)
	engine.Pause()
	afterPause := engine.Snapshot()
	assert.False(t, engine.Tick())
	assert.Equal(t, afterPause, engine.Snapshot())
	assert.Equal(t, 50, afterPause.SecondsRemaining)
}

func TestSetActivePresetAlwaysRewinds(t *testing.T) {
	first := newPreset("a", true, 1, 1)
	engine := activeEngine(t, first)
	tickN(engine, 75)
	require.Equal(t, 1, engine.Snapshot().CurrentSegmentIndex)

	second := newPreset("b", false, 3, 1)
	require.NoError(t, engine.SetActivePreset(&second))

	snapshot := engine.Snapshot()
	assert.Equal(t, "b", snapshot.ActivePresetID)
	assert.Equal(t, 0, snapshot.CurrentSegmentIndex)
	assert.Equal(t, 180, snapshot.SecondsRemaining)
	assert.False(t, snapshot.IsRunning)
	assert.Equal(t, model.StatusPaused, snapshot.Status)
	assert.Equal(t, "03:00", snapshot.Clock)
}

func TestSingleMinuteScenario(t *testing.T) {
	engine := activeEngine(t, newPreset("p", false, 1))

	tickN(engine, 59)
	snapshot := engine.Snapshot()
	assert.Equal(t, 1, snapshot.SecondsRemaining)
	assert.True(t, snapshot.IsRunning)

	engine.Tick()
	snapshot = engine.Snapshot()
	assert.Equal(t, 0, snapshot.SecondsRemaining)
	assert.False(t, snapshot.IsRunning)
	assert.Equal(t, model.StatusCompleted, snapshot.Status)

	engine.Tick()
	assert.Equal(t, snapshot, engine.Snapshot())
}

func TestTwoSegmentLoopScenario(t *testing.T) {
	engine := activeEngine(t, newPreset("p", true, 1, 1))

	tickN(engine, 121)
	snapshot := engine.Snapshot()
	assert.Equal(t, 0, snapshot.CurrentSegmentIndex)
	assert.Equal(t, 59, snapshot.SecondsRemaining)
	assert.True(t, snapshot.IsRunning)
}

func TestEmptyPresetIsRejected(t *testing.T) {
	engine := activeEngine(t, newPreset("p", false, 1))
	tickN(engine, 5)
	before := engine.Snapshot()

	empty := model.TimerPreset{ID: "empty", Name: "Empty"}
	assert.ErrorIs(t, engine.SetActivePreset(&empty), ErrEmptyPreset)
	assert.Equal(t, before, engine.Snapshot())
}

func TestNilPresetReturnsToIdle(t *testing.T) {
	engine := activeEngine(t, newPreset("p", false, 2))
	tickN(engine, 30)

	require.NoError(t, engine.SetActivePreset(nil))
	snapshot := engine.Snapshot()
	assert.Equal(t, model.StatusIdle, snapshot.Status)
	assert.False(t, snapshot.Active())
	assert.False(t, snapshot.IsRunning)
	assert.Equal(t, 0, snapshot.SecondsRemaining)
	assert.Equal(t, 0, snapshot.CurrentSegmentIndex)
	assert.Nil(t, snapshot.Segment)
}

func TestStartWithoutPresetIsNoOp(t *testing.T) {
	engine := NewTimerEngine()
	engine.Start()
	engine.Reset()
	assert.Equal(t, model.StatusIdle, engine.Snapshot().Status)
}

func TestStartAfterCompletionReplaysFromFirstSegment(t *testing.T) {
	engine := activeEngine(t, newPreset("p", false, 1, 1))
	tickN(engine, 120)
	require.Equal(t, model.StatusCompleted, engine.Snapshot().Status)

	engine.Pause()
	assert.Equal(t, model.StatusCompleted, engine.Snapshot().Status)

	engine.Start()
	snapshot := engine.Snapshot()
	assert.Equal(t, model.StatusRunning, snapshot.Status)
	assert.Equal(t, 0, snapshot.CurrentSegmentIndex)
	assert.Equal(t, 60, snapshot.SecondsRemaining)
}

func TestResetRewindsAndPauses(t *testing.T) {
	engine := activeEngine(t, newPreset("p", false, 1, 2))
	tickN(engine, 90)
	engine.Reset()

	snapshot := engine.Snapshot()
	assert.Equal(t, model.StatusPaused, snapshot.Status)
	assert.Equal(t, 0, snapshot.CurrentSegmentIndex)
	assert.Equal(t, 60, snapshot.SecondsRemaining)
}

func TestClearOnlyMatchesActivePreset(t *testing.T) {
	engine := activeEngine(t, newPreset("p", false, 1))

	assert.False(t, engine.Clear("other"))
	assert.Equal(t, "p", engine.ActivePresetID())

	assert.True(t, engine.Clear("p"))
	assert.Equal(t, model.StatusIdle, engine.Snapshot().Status)
}

func TestRebindKeepsPositionAndClampsRemaining(t *testing.T) {
	engine := activeEngine(t, newPreset("p", false, 5, 5))
	tickN(engine, 300+10)
	require.Equal(t, 1, engine.Snapshot().CurrentSegmentIndex)
	require.Equal(t, 290, engine.Snapshot().SecondsRemaining)

	assert.True(t, engine.Rebind(newPreset("p", false, 5, 2)))
	snapshot := engine.Snapshot()
	assert.Equal(t, 1, snapshot.CurrentSegmentIndex)
	assert.Equal(t, 120, snapshot.SecondsRemaining)
	assert.True(t, snapshot.IsRunning)

	assert.False(t, engine.Rebind(newPreset("other", false, 1)))
}

func TestRebindRewindsWhenSegmentDisappears(t *testing.T) {
	engine := activeEngine(t, newPreset("p", false, 1, 1, 1))
	tickN(engine, 125)
	require.Equal(t, 2, engine.Snapshot().CurrentSegmentIndex)

	engine.Rebind(newPreset("p", false, 4))
	snapshot := engine.Snapshot()
	assert.Equal(t, model.StatusPaused, snapshot.Status)
	assert.Equal(t, 0, snapshot.CurrentSegmentIndex)
	assert.Equal(t, 240, snapshot.SecondsRemaining)

	engine.Rebind(model.TimerPreset{ID: "p"})
	assert.Equal(t, model.StatusIdle, engine.Snapshot().Status)
}

func TestEngineNormalizesNonPositiveDurations(t *testing.T) {
	preset := newPreset("p", false, 0)
	engine := NewTimerEngine()
	require.NoError(t, engine.SetActivePreset(&preset))
	assert.Equal(t, 60, engine.Snapshot().SecondsRemaining)
}

func TestSubscribersReceiveTransitions(t *testing.T) {
	engine := NewTimerEngine()
	events := engine.Subscribe(256)

	preset := newPreset("p", false, 1, 1)
	require.NoError(t, engine.SetActivePreset(&preset))
	engine.Start()
	tickN(engine, 120)

	counts := map[model.TimerEventType]int{}
	for len(events) > 0 {
		event := <-events
		counts[event.Type]++
	}
	assert.Equal(t, 2, counts[model.EventStateChange])
	assert.Equal(t, 118, counts[model.EventTick])
	assert.Equal(t, 1, counts[model.EventSegmentChange])
	assert.Equal(t, 1, counts[model.EventCompleted])

	engine.Unsubscribe(events)
	_, open := <-events
	assert.False(t, open)
}

func TestSlowSubscriberDoesNotBlockTicks(t *testing.T) {
	engine := activeEngine(t, newPreset("p", false, 1))
	events := engine.Subscribe(1)

	tickN(engine, 30)
	assert.Len(t, events, 1)
	assert.Equal(t, 30, engine.Snapshot().SecondsRemaining)

	engine.Close()
	<-events
	_, open := <-events
	assert.False(t, open)
}

func TestEngineClampsOversizedDurations(t *testing.T) {
	preset := newPreset("p", false, 1)
	preset.Segments[0].DurationMinutes = model.Minutes(300000000000000000)

	engine := activeEngine(t, preset)
	snapshot := engine.Snapshot()
	assert.Equal(t, model.MaxSegmentMinutes*60, snapshot.SecondsRemaining)

	engine.Tick()
	snapshot = engine.Snapshot()
	assert.Equal(t, model.StatusRunning, snapshot.Status)
	assert.Equal(t, model.MaxSegmentMinutes*60-1, snapshot.SecondsRemaining)
}
