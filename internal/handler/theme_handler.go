package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"intervals/backend/internal/service"
	"intervals/backend/internal/validation"
)

type ThemeHandler struct {
	themes    *service.ThemeCatalog
	validator *validation.Validator
}

type setThemeRequest struct {
	ThemeID string `json:"themeId" validate:"required"`
}

func NewThemeHandler(themes *service.ThemeCatalog, validator *validation.Validator) *ThemeHandler {
	return &ThemeHandler{themes: themes, validator: validator}
}

func (h *ThemeHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"themes":         h.themes.Themes(),
		"currentThemeId": h.themes.Current().ID,
	})
}

func (h *ThemeHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": h.themes.Current()})
}

// SetCurrent never fails on unknown ids; they select the default theme.
func (h *ThemeHandler) SetCurrent(c *gin.Context) {
	var req setThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}
	if apiErr := h.validator.Validate(req); apiErr != nil {
		writeError(c, apiErr)
		return
	}

	theme, save := h.themes.SetTheme(req.ThemeID)
	writeSaved(c, http.StatusOK, gin.H{"theme": theme}, save)
}
