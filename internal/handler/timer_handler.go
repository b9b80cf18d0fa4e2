package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"intervals/backend/internal/service"
)

type TimerHandler struct {
	engine *service.TimerEngine
	store  *service.PresetStore
}

func NewTimerHandler(engine *service.TimerEngine, store *service.PresetStore) *TimerHandler {
	return &TimerHandler{engine: engine, store: store}
}

func (h *TimerHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"timer": h.engine.Snapshot()})
}

func (h *TimerHandler) Start(c *gin.Context) {
	h.engine.Start()
	c.JSON(http.StatusOK, gin.H{"timer": h.engine.Snapshot()})
}

func (h *TimerHandler) Pause(c *gin.Context) {
	h.engine.Pause()
	c.JSON(http.StatusOK, gin.H{"timer": h.engine.Snapshot()})
}

func (h *TimerHandler) Reset(c *gin.Context) {
	h.engine.Reset()
	c.JSON(http.StatusOK, gin.H{"timer": h.engine.Snapshot()})
}

func (h *TimerHandler) ClearActive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"timer": h.store.ClearActive()})
}

// Events streams engine events as server-sent events, starting with the
// current snapshot.
func (h *TimerHandler) Events(c *gin.Context) {
	events := h.engine.Subscribe(32)
	defer h.engine.Unsubscribe(events)

	sentSnapshot := false
	c.Stream(func(w io.Writer) bool {
		if !sentSnapshot {
			sentSnapshot = true
			c.SSEvent("snapshot", h.engine.Snapshot())
			return true
		}

		select {
		case <-c.Request.Context().Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Type), event)
			return true
		}
	})
}
