package handlers

import (
	"errors"
	"net/http"

	"bot_admin_backend/internal/services"
	"bot_admin_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// Login handles admin login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error(), err.Error())
		return
	}

	authResp, err := h.authService.Login(req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			utils.LogWarn("Login rejected", map[string]interface{}{"username": req.Username, "client_ip": c.ClientIP()})
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid username or password.", ""))
		case errors.Is(err, services.ErrAuthDisabled):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Authentication is not enabled.", ""))
		default:
			utils.LogError(err, "Login: Error from authService.Login")
			utils.RespondInternalError(c, "Failed to login.")
		}
		return
	}
	c.JSON(http.StatusOK, authResp)
}

// GetCurrentUser returns the identity carried by the access token.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	username, exists := c.Get("username")
	if !exists {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing username in context"))
		return
	}
	role, _ := c.Get("userRole")
	c.JSON(http.StatusOK, gin.H{"username": username, "role": role})
}
