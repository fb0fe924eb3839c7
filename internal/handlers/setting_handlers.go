package handlers

import (
	"errors"
	"net/http"

	"bot_admin_backend/internal/services"
	"bot_admin_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SettingHandler holds the settings service.
type SettingHandler struct {
	settingsService services.SettingsService
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(ss services.SettingsService) *SettingHandler {
	return &SettingHandler{settingsService: ss}
}

// UpsertSettingRequest is the body of POST /settings.
type UpsertSettingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

func respondSettingError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrSettingNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Setting not found.", err.Error()))
	case errors.Is(err, services.ErrReservedKey):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Preference keys are managed under /preferences.", err.Error()))
	case errors.Is(err, services.ErrSettingValidation):
		utils.RespondValidationFailed(c, "Validation failed: "+err.Error(), err.Error())
	default:
		utils.LogError(err, action)
		utils.RespondInternalError(c, "Failed to process settings.")
	}
}

// GetSettings retrieves all configuration settings
func (h *SettingHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.ListSettings(c.Request.Context())
	if err != nil {
		respondSettingError(c, err, "GetSettings: Error from settingsService.ListSettings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetSettingByKey retrieves a specific setting by its key
func (h *SettingHandler) GetSettingByKey(c *gin.Context) {
	setting, err := h.settingsService.GetSetting(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondSettingError(c, err, "GetSettingByKey: Error from settingsService.GetSetting")
		return
	}
	c.JSON(http.StatusOK, setting)
}

// UpsertSetting creates a new setting or updates an existing one by key
func (h *SettingHandler) UpsertSetting(c *gin.Context) {
	var req UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error(), err.Error())
		return
	}

	setting, err := h.settingsService.SetSetting(c.Request.Context(), req.Key, req.Value)
	if err != nil {
		respondSettingError(c, err, "UpsertSetting: Error from settingsService.SetSetting")
		return
	}
	c.JSON(http.StatusOK, setting)
}

// DeleteSettingByKey deletes a setting by its key
func (h *SettingHandler) DeleteSettingByKey(c *gin.Context) {
	key := c.Param("key")
	if err := h.settingsService.DeleteSetting(c.Request.Context(), key); err != nil {
		respondSettingError(c, err, "DeleteSettingByKey: Error from settingsService.DeleteSetting")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Setting '" + key + "' deleted successfully"})
}
