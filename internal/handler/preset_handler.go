package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "intervals/backend/internal/errors"
	"intervals/backend/internal/model"
	"intervals/backend/internal/service"
	"intervals/backend/internal/validation"
)

type PresetHandler struct {
	store     *service.PresetStore
	engine    *service.TimerEngine
	themes    *service.ThemeCatalog
	validator *validation.Validator
}

type segmentRequest struct {
	ID       string        `json:"id"`
	Name     string        `json:"name" validate:"required,max=80"`
	Duration model.Minutes `json:"duration" validate:"max=1440"`
	Color    string        `json:"color" validate:"omitempty,hexcolor"`
}

type presetRequest struct {
	Name     string           `json:"name" validate:"required,max=80"`
	Segments []segmentRequest `json:"segments" validate:"min=1,dive"`
	Loop     bool             `json:"loop"`
}

type moveSegmentRequest struct {
	From *int `json:"from" validate:"required"`
	To   *int `json:"to" validate:"required"`
}

func NewPresetHandler(
	store *service.PresetStore,
	engine *service.TimerEngine,
	themes *service.ThemeCatalog,
	validator *validation.Validator,
) *PresetHandler {
	return &PresetHandler{store: store, engine: engine, themes: themes, validator: validator}
}

func (h *PresetHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"presets":        h.store.List(),
		"activePresetId": h.engine.ActivePresetID(),
	})
}

func (h *PresetHandler) Get(c *gin.Context) {
	preset, ok := h.store.Get(c.Param("id"))
	if !ok {
		writeError(c, presetNotFound())
		return
	}
	c.JSON(http.StatusOK, gin.H{"preset": preset})
}

func (h *PresetHandler) Create(c *gin.Context) {
	req, ok := h.bindPreset(c)
	if !ok {
		return
	}

	preset, save := h.store.Add(model.PresetDraft{
		Name:     req.Name,
		Segments: h.toSegments(req.Segments),
		Loop:     req.Loop,
	})
	writeSaved(c, http.StatusCreated, gin.H{"preset": preset}, save)
}

func (h *PresetHandler) Update(c *gin.Context) {
	req, ok := h.bindPreset(c)
	if !ok {
		return
	}

	preset, found, save := h.store.Update(model.TimerPreset{
		ID:       c.Param("id"),
		Name:     req.Name,
		Segments: h.toSegments(req.Segments),
		Loop:     req.Loop,
	})
	if !found {
		writeError(c, presetNotFound())
		return
	}
	writeSaved(c, http.StatusOK, gin.H{"preset": preset, "timer": h.engine.Snapshot()}, save)
}

// Delete is idempotent: unknown ids succeed without changes.
func (h *PresetHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	save := h.store.Remove(id)
	writeSaved(c, http.StatusOK, gin.H{"deleted": id, "timer": h.engine.Snapshot()}, save)
}

func (h *PresetHandler) Duplicate(c *gin.Context) {
	preset, found, save := h.store.Duplicate(c.Param("id"))
	if !found {
		writeError(c, presetNotFound())
		return
	}
	writeSaved(c, http.StatusCreated, gin.H{"preset": preset}, save)
}

func (h *PresetHandler) MoveSegment(c *gin.Context) {
	var req moveSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}
	if apiErr := h.validator.Validate(req); apiErr != nil {
		writeError(c, apiErr)
		return
	}

	preset, found, save := h.store.MoveSegment(c.Param("id"), *req.From, *req.To)
	if !found {
		writeError(c, presetNotFound())
		return
	}
	writeSaved(c, http.StatusOK, gin.H{"preset": preset}, save)
}

func (h *PresetHandler) Activate(c *gin.Context) {
	snapshot, err := h.store.SetActive(c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"timer": snapshot})
	case errors.Is(err, service.ErrPresetNotFound):
		writeError(c, presetNotFound())
	case errors.Is(err, service.ErrEmptyPreset):
		writeError(c, apperrors.Conflict("empty_preset", "preset has no segments", gin.H{"timer": snapshot}))
	default:
		writeError(c, apperrors.Internal("failed to activate preset"))
	}
}

func (h *PresetHandler) bindPreset(c *gin.Context) (presetRequest, bool) {
	var req presetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return req, false
	}

	// Whitespace-only names count as missing.
	if strings.TrimSpace(req.Name) == "" {
		req.Name = ""
	}
	if apiErr := h.validator.Validate(req); apiErr != nil {
		writeError(c, apiErr)
		return req, false
	}
	return req, true
}

// toSegments keeps caller ids (the store mints missing ones) and fills unset
// colors from the current theme's ramp.
func (h *PresetHandler) toSegments(requests []segmentRequest) []model.TimerSegment {
	segments := make([]model.TimerSegment, len(requests))
	for i, req := range requests {
		color := req.Color
		if color == "" {
			color = h.themes.CustomColor(i)
		}
		segments[i] = model.TimerSegment{
			ID:              req.ID,
			Name:            req.Name,
			DurationMinutes: req.Duration,
			Color:           color,
		}
	}
	return segments
}

func presetNotFound() *apperrors.APIError {
	return apperrors.NotFound("preset_not_found", "preset not found")
}
