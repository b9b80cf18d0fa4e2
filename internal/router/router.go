package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"intervals/backend/internal/handler"
	"intervals/backend/internal/middleware"
	"intervals/backend/internal/service"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Preset *handler.PresetHandler
	Timer  *handler.TimerHandler
	Theme  *handler.ThemeHandler
}

func New(authService *service.AuthService, handlers Handlers, corsOrigins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	api.Use(middleware.Auth(authService))
	api.GET("/auth/status", handlers.Auth.Status)

	presets := api.Group("/presets")
	presets.GET("", handlers.Preset.List)
	presets.POST("", handlers.Preset.Create)
	presets.GET("/:id", handlers.Preset.Get)
	presets.PUT("/:id", handlers.Preset.Update)
	presets.DELETE("/:id", handlers.Preset.Delete)
	presets.POST("/:id/duplicate", handlers.Preset.Duplicate)
	presets.POST("/:id/segments/move", handlers.Preset.MoveSegment)
	presets.POST("/:id/activate", handlers.Preset.Activate)

	timer := api.Group("/timer")
	timer.GET("", handlers.Timer.GetState)
	timer.DELETE("/active", handlers.Timer.ClearActive)
	timer.POST("/start", handlers.Timer.Start)
	timer.POST("/pause", handlers.Timer.Pause)
	timer.POST("/reset", handlers.Timer.Reset)
	timer.GET("/events", handlers.Timer.Events)

	themes := api.Group("/themes")
	themes.GET("", handlers.Theme.List)
	themes.GET("/current", handlers.Theme.Current)
	themes.PUT("/current", handlers.Theme.SetCurrent)

	return engine
}
