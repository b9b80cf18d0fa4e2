package service

import (
	"errors"
	"sync"
	"time"

	"intervals/backend/internal/model"
)

var ErrEmptyPreset = errors.New("preset has no segments")

// TimerEngine is the single countdown over the active preset. Every method is
// atomic with respect to the others, so the clock driver and request handlers
// can call it concurrently and always observe a consistent snapshot.
type TimerEngine struct {
	mu        sync.Mutex
	preset    *model.TimerPreset
	index     int
	remaining int
	running   bool
	completed bool
	observers map[<-chan model.TimerEvent]chan model.TimerEvent
	now       func() time.Time
}

func NewTimerEngine() *TimerEngine {
	return &TimerEngine{
		observers: make(map[<-chan model.TimerEvent]chan model.TimerEvent),
		now:       time.Now,
	}
}

// SetActivePreset binds preset and rewinds to its first segment, paused.
// A nil preset returns the engine to idle.
func (e *TimerEngine) SetActivePreset(preset *model.TimerPreset) error {
	if preset != nil && !preset.Usable() {
		return ErrEmptyPreset
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if preset == nil {
		e.clearLocked()
	} else {
		bound := preset.Clone()
		model.NormalizeSegments(bound.Segments)
		e.preset = &bound
		e.rewindLocked()
	}
	e.emitLocked(model.EventStateChange)
	return nil
}

// Start runs the countdown. Starting a completed sequence replays it from the
// first segment.
func (e *TimerEngine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.preset == nil || e.running {
		return
	}
	if e.completed {
		e.rewindLocked()
	}
	e.running = true
	e.emitLocked(model.EventStateChange)
}

func (e *TimerEngine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.running = false
	e.emitLocked(model.EventStateChange)
}

func (e *TimerEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.preset == nil {
		return
	}
	e.rewindLocked()
	e.emitLocked(model.EventStateChange)
}

// Tick advances the countdown by one logical second and reports whether the
// state changed. It is a no-op unless a preset is active and running.
func (e *TimerEngine) Tick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.preset == nil || !e.running {
		return false
	}

	if e.remaining > 0 {
		e.remaining--
		if e.remaining > 0 {
			e.emitLocked(model.EventTick)
			return true
		}
	}

	// The current segment has expired.
	next := e.index + 1
	switch {
	case next < len(e.preset.Segments):
		e.enterSegmentLocked(next)
		e.emitLocked(model.EventSegmentChange)
	case e.preset.Loop:
		e.enterSegmentLocked(0)
		e.emitLocked(model.EventSegmentChange)
	default:
		e.running = false
		e.completed = true
		e.emitLocked(model.EventCompleted)
	}
	return true
}

// Clear returns the engine to idle if presetID is the active preset.
func (e *TimerEngine) Clear(presetID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.preset == nil || e.preset.ID != presetID {
		return false
	}
	e.clearLocked()
	e.emitLocked(model.EventStateChange)
	return true
}

// Rebind swaps in edited content for the active preset. The position survives
// when the current segment still exists; remaining time is clamped to the
// segment's new duration.
func (e *TimerEngine) Rebind(preset model.TimerPreset) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.preset == nil || e.preset.ID != preset.ID {
		return false
	}

	if !preset.Usable() {
		e.clearLocked()
		e.emitLocked(model.EventStateChange)
		return true
	}

	bound := preset.Clone()
	model.NormalizeSegments(bound.Segments)
	e.preset = &bound

	last := len(bound.Segments) - 1
	switch {
	case e.index > last:
		e.rewindLocked()
	case e.completed && e.index != last:
		e.rewindLocked()
	case !e.completed:
		if limit := bound.Segments[e.index].DurationMinutes.Seconds(); e.remaining > limit {
			e.remaining = limit
		}
	}
	e.emitLocked(model.EventStateChange)
	return true
}

func (e *TimerEngine) ActivePresetID() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.preset == nil {
		return ""
	}
	return e.preset.ID
}

func (e *TimerEngine) Snapshot() model.TimerSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe registers an observer. Events are dropped for observers whose
// buffer is full.
func (e *TimerEngine) Subscribe(buffer int) <-chan model.TimerEvent {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan model.TimerEvent, buffer)

	e.mu.Lock()
	e.observers[ch] = ch
	e.mu.Unlock()
	return ch
}

func (e *TimerEngine) Unsubscribe(ch <-chan model.TimerEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if owned, ok := e.observers[ch]; ok {
		delete(e.observers, ch)
		close(owned)
	}
}

// Close detaches and closes every observer.
func (e *TimerEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for key, owned := range e.observers {
		delete(e.observers, key)
		close(owned)
	}
}

func (e *TimerEngine) rewindLocked() {
	e.completed = false
	e.running = false
	e.enterSegmentLocked(0)
}

func (e *TimerEngine) enterSegmentLocked(index int) {
	e.index = index
	e.remaining = e.preset.Segments[index].DurationMinutes.Seconds()
}

func (e *TimerEngine) clearLocked() {
	e.preset = nil
	e.index = 0
	e.remaining = 0
	e.running = false
	e.completed = false
}

func (e *TimerEngine) snapshotLocked() model.TimerSnapshot {
	snapshot := model.TimerSnapshot{
		Status:              model.StatusIdle,
		CurrentSegmentIndex: e.index,
		SecondsRemaining:    e.remaining,
		IsRunning:           e.running,
		Clock:               model.FormatClock(e.remaining),
	}
	if e.preset == nil {
		return snapshot
	}

	switch {
	case e.running:
		snapshot.Status = model.StatusRunning
	case e.completed:
		snapshot.Status = model.StatusCompleted
	default:
		snapshot.Status = model.StatusPaused
	}

	segment := e.preset.Segments[e.index]
	snapshot.ActivePresetID = e.preset.ID
	snapshot.ActivePresetName = e.preset.Name
	snapshot.Loop = e.preset.Loop
	snapshot.SegmentCount = len(e.preset.Segments)
	snapshot.Segment = &segment
	return snapshot
}

func (e *TimerEngine) emitLocked(eventType model.TimerEventType) {
	if len(e.observers) == 0 {
		return
	}
	event := model.TimerEvent{
		Type:     eventType,
		Snapshot: e.snapshotLocked(),
		At:       e.now(),
	}
	for _, ch := range e.observers {
		select {
		case ch <- event:
		default:
		}
	}
}
