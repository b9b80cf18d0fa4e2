package model

import (
	"fmt"
	"time"
)

type TimerStatus string

const (
	StatusIdle      TimerStatus = "idle"
	StatusPaused    TimerStatus = "paused"
	StatusRunning   TimerStatus = "running"
	StatusCompleted TimerStatus = "completed"
)

type TimerSnapshot struct {
	Status              TimerStatus   `json:"status"`
	ActivePresetID      string        `json:"activePresetId,omitempty"`
	ActivePresetName    string        `json:"activePresetName,omitempty"`
	CurrentSegmentIndex int           `json:"currentSegmentIndex"`
	SecondsRemaining    int           `json:"secondsRemaining"`
	IsRunning           bool          `json:"isRunning"`
	Loop                bool          `json:"loop"`
	SegmentCount        int           `json:"segmentCount"`
	Segment             *TimerSegment `json:"segment,omitempty"`
	Clock               string        `json:"clock"`
}

func (s TimerSnapshot) Active() bool {
	return s.ActivePresetID != ""
}

// FormatClock renders seconds as MM:SS; minutes are not wrapped into hours.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/SecondsPerMinute, seconds%SecondsPerMinute)
}

type TimerEventType string

const (
	EventStateChange   TimerEventType = "state_change"
	EventTick          TimerEventType = "tick"
	EventSegmentChange TimerEventType = "segment_change"
	EventCompleted     TimerEventType = "completed"
)

type TimerEvent struct {
	Type     TimerEventType `json:"type"`
	Snapshot TimerSnapshot  `json:"snapshot"`
	At       time.Time      `json:"at"`
}
