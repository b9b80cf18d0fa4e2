package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"intervals/backend/internal/model"
	"intervals/backend/internal/repository"
)

const PresetsKey = "presets"

var ErrPresetNotFound = errors.New("preset not found")

// PresetStore owns the preset list. Every mutation is visible in memory as
// soon as the call returns; the durable copy follows through the returned
// SaveResult.
type PresetStore struct {
	mu        sync.Mutex
	kv        KeyValueStore
	persister *Persister
	engine    *TimerEngine
	themes    *ThemeCatalog
	presets   []model.TimerPreset
	newID     func() string
}

func NewPresetStore(kv KeyValueStore, persister *Persister, engine *TimerEngine, themes *ThemeCatalog) *PresetStore {
	return &PresetStore{
		kv:        kv,
		persister: persister,
		engine:    engine,
		themes:    themes,
		presets:   []model.TimerPreset{},
		newID:     uuid.NewString,
	}
}

func (s *PresetStore) Load(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, PresetsKey)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load presets: %w", err)
	}

	var presets []model.TimerPreset
	if err := json.Unmarshal(raw, &presets); err != nil {
		return fmt.Errorf("decode presets: %w", err)
	}
	for i := range presets {
		presets[i].Segments = s.prepareSegments(presets[i].Segments, false)
	}
	if presets == nil {
		presets = []model.TimerPreset{}
	}

	s.mu.Lock()
	s.presets = presets
	s.mu.Unlock()
	return nil
}

func (s *PresetStore) List() []model.TimerPreset {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.TimerPreset, len(s.presets))
	for i, preset := range s.presets {
		out[i] = preset.Clone()
	}
	return out
}

func (s *PresetStore) Get(id string) (model.TimerPreset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexLocked(id)
	if index < 0 {
		return model.TimerPreset{}, false
	}
	return s.presets[index].Clone(), true
}

// Add appends a preset built from draft under a fresh id.
func (s *PresetStore) Add(draft model.PresetDraft) (model.TimerPreset, *SaveResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	preset := model.TimerPreset{
		ID:       s.newID(),
		Name:     draft.Name,
		Segments: s.prepareSegments(draft.Segments, false),
		Loop:     draft.Loop,
	}
	s.presets = append(s.presets, preset)
	return preset.Clone(), s.saveLocked()
}

// Remove deletes id if present. Removing the active preset idles the engine.
func (s *PresetStore) Remove(id string) *SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.presets[:0:0]
	for _, preset := range s.presets {
		if preset.ID != id {
			kept = append(kept, preset)
		}
	}
	s.presets = kept
	s.engine.Clear(id)
	return s.saveLocked()
}

// Update replaces the preset with the same id. Unknown ids change nothing.
func (s *PresetStore) Update(preset model.TimerPreset) (model.TimerPreset, bool, *SaveResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexLocked(preset.ID)
	if index < 0 {
		return model.TimerPreset{}, false, s.saveLocked()
	}

	updated := preset.Clone()
	updated.Segments = s.prepareSegments(preset.Segments, false)
	s.presets[index] = updated
	s.engine.Rebind(updated)
	return updated.Clone(), true, s.saveLocked()
}

// Duplicate adds a copy of id named "<name> (Copy)" whose segments get new ids.
func (s *PresetStore) Duplicate(id string) (model.TimerPreset, bool, *SaveResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexLocked(id)
	if index < 0 {
		return model.TimerPreset{}, false, resolvedSave(nil)
	}

	source := s.presets[index]
	duplicate := model.TimerPreset{
		ID:       s.newID(),
		Name:     source.Name + model.CopySuffix,
		Segments: s.prepareSegments(source.Segments, true),
		Loop:     source.Loop,
	}
	s.presets = append(s.presets, duplicate)
	return duplicate.Clone(), true, s.saveLocked()
}

// MoveSegment moves one segment of preset id from position from to position to
// and recolors every segment from the current theme's ramp. Out-of-range
// positions leave the preset untouched.
func (s *PresetStore) MoveSegment(id string, from, to int) (model.TimerPreset, bool, *SaveResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexLocked(id)
	if index < 0 {
		return model.TimerPreset{}, false, resolvedSave(nil)
	}

	preset := s.presets[index].Clone()
	count := len(preset.Segments)
	if from < 0 || from >= count || to < 0 || to >= count || from == to {
		return preset, true, resolvedSave(nil)
	}

	moved := preset.Segments[from]
	segments := append(preset.Segments[:from:from], preset.Segments[from+1:]...)
	segments = append(segments[:to], append([]model.TimerSegment{moved}, segments[to:]...)...)
	for i := range segments {
		segments[i].Color = s.themes.CustomColor(i)
	}
	preset.Segments = segments

	s.presets[index] = preset
	s.engine.Rebind(preset)
	return preset.Clone(), true, s.saveLocked()
}

// SetActive binds preset id to the engine, rewinding it to the first segment.
func (s *PresetStore) SetActive(id string) (model.TimerSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexLocked(id)
	if index < 0 {
		return s.engine.Snapshot(), ErrPresetNotFound
	}
	preset := s.presets[index]
	if err := s.engine.SetActivePreset(&preset); err != nil {
		return s.engine.Snapshot(), err
	}
	return s.engine.Snapshot(), nil
}

func (s *PresetStore) ClearActive() model.TimerSnapshot {
	_ = s.engine.SetActivePreset(nil)
	return s.engine.Snapshot()
}

func (s *PresetStore) indexLocked(id string) int {
	for i, preset := range s.presets {
		if preset.ID == id {
			return i
		}
	}
	return -1
}

// prepareSegments copies segments, enforces the duration floor and mints ids
// where missing (or everywhere when fresh is set).
func (s *PresetStore) prepareSegments(segments []model.TimerSegment, fresh bool) []model.TimerSegment {
	out := model.CloneSegments(segments)
	for i := range out {
		if fresh || out[i].ID == "" {
			out[i].ID = s.newID()
		}
	}
	model.NormalizeSegments(out)
	return out
}

func (s *PresetStore) saveLocked() *SaveResult {
	raw, err := json.Marshal(s.presets)
	if err != nil {
		return resolvedSave(fmt.Errorf("encode presets: %w", err))
	}
	return s.persister.Save(PresetsKey, raw)
}
