package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"intervals/backend/internal/middleware"
	"intervals/backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Status reports whether tokens are required and who the caller is.
func (h *AuthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authRequired": h.authService.Enabled(),
		"subject":      middleware.Subject(c),
	})
}
