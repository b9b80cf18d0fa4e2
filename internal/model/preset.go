package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	MinSegmentMinutes = 1
	MaxSegmentMinutes = 24 * 60
	SecondsPerMinute  = 60

	CopySuffix = " (Copy)"
)

// Minutes is a whole-minute segment duration. Decoding never fails: anything
// that is not a complete integer within int32 range becomes MinSegmentMinutes.
type Minutes int

func (m *Minutes) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*m = MinSegmentMinutes
		return nil
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			*m = MinSegmentMinutes
			return nil
		}
		*m = ParseMinutes(text)
		return nil
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err != nil || !representable(number) {
		*m = MinSegmentMinutes
		return nil
	}
	*m = Minutes(int(math.Trunc(number)))
	return nil
}

func representable(number float64) bool {
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return false
	}
	return number >= math.MinInt32 && number <= math.MaxInt32
}

// ParseMinutes converts editor input to minutes, coercing invalid input to
// MinSegmentMinutes. Partial input such as "12abc" is rejected as a whole.
func ParseMinutes(text string) Minutes {
	parsed, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
	if err != nil {
		return MinSegmentMinutes
	}
	return Minutes(parsed)
}

// Clamp bounds m to [MinSegmentMinutes, MaxSegmentMinutes].
func (m Minutes) Clamp() Minutes {
	switch {
	case m < MinSegmentMinutes:
		return MinSegmentMinutes
	case m > MaxSegmentMinutes:
		return MaxSegmentMinutes
	}
	return m
}

// Seconds converts the clamped duration, so it is always positive.
func (m Minutes) Seconds() int {
	return int(m.Clamp()) * SecondsPerMinute
}

type TimerSegment struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	DurationMinutes Minutes `json:"duration"`
	Color           string  `json:"color"`
}

type TimerPreset struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Segments []TimerSegment `json:"segments"`
	Loop     bool           `json:"loop"`
}

type PresetDraft struct {
	Name     string         `json:"name"`
	Segments []TimerSegment `json:"segments"`
	Loop     bool           `json:"loop"`
}

// Clone returns a deep copy so callers never share a segment slice with the store.
func (p TimerPreset) Clone() TimerPreset {
	clone := p
	clone.Segments = CloneSegments(p.Segments)
	return clone
}

func (p TimerPreset) Usable() bool {
	return len(p.Segments) > 0
}

func CloneSegments(segments []TimerSegment) []TimerSegment {
	if segments == nil {
		return []TimerSegment{}
	}
	out := make([]TimerSegment, len(segments))
	copy(out, segments)
	return out
}

// NormalizeSegments clamps every duration into the allowed range in place.
func NormalizeSegments(segments []TimerSegment) {
	for i := range segments {
		segments[i].DurationMinutes = segments[i].DurationMinutes.Clamp()
	}
}
