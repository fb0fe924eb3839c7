package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"bot_admin_backend/internal/services"
	"bot_admin_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PreferenceHandler holds the preferences service.
type PreferenceHandler struct {
	prefService services.UserPreferencesService
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(ps services.UserPreferencesService) *PreferenceHandler {
	return &PreferenceHandler{prefService: ps}
}

// SetPreferenceRequest is the body of PUT /preferences/:key.
type SetPreferenceRequest struct {
	Value interface{} `json:"value"`
}

// respondPreferenceError maps service errors to API errors.
func respondPreferenceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrUnknownPreference):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Unknown preference.", err.Error()))
	case errors.Is(err, services.ErrInvalidPreferenceValue):
		utils.RespondValidationFailed(c, "Invalid preference value.", err.Error())
	default:
		utils.LogError(err, action)
		utils.RespondInternalError(c, "Failed to process preferences.")
	}
}

// GetPreferences handles fetching the full preferences snapshot.
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	snap, err := h.prefService.GetAllPreferences(c.Request.Context())
	if err != nil {
		respondPreferenceError(c, err, "GetPreferences: Error from prefService.GetAllPreferences")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetPreference handles fetching a single preference.
func (h *PreferenceHandler) GetPreference(c *gin.Context) {
	key := c.Param("key")
	value, err := h.prefService.GetPreference(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, services.ErrUnknownPreference) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Preference not found: "+key, err.Error()))
			return
		}
		respondPreferenceError(c, err, "GetPreference: Error from prefService.GetPreference")
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// SetPreference handles updating a single preference.
func (h *PreferenceHandler) SetPreference(c *gin.Context) {
	key := c.Param("key")
	var req SetPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error(), err.Error())
		return
	}

	if err := h.prefService.SetPreference(c.Request.Context(), key, req.Value); err != nil {
		respondPreferenceError(c, err, "SetPreference: Error from prefService.SetPreference")
		return
	}

	value, err := h.prefService.GetPreference(c.Request.Context(), key)
	if err != nil {
		respondPreferenceError(c, err, "SetPreference: Error reading back preference")
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// SetPreferences handles updating several preferences at once.
func (h *PreferenceHandler) SetPreferences(c *gin.Context) {
	var values map[string]interface{}
	if err := c.ShouldBindJSON(&values); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error(), err.Error())
		return
	}

	if err := h.prefService.SetMultiplePreferences(c.Request.Context(), values); err != nil {
		respondPreferenceError(c, err, "SetPreferences: Error from prefService.SetMultiplePreferences")
		return
	}
	h.GetPreferences(c)
}

// ResetPreferences handles restoring every default.
func (h *PreferenceHandler) ResetPreferences(c *gin.Context) {
	if err := h.prefService.ResetToDefaults(c.Request.Context()); err != nil {
		respondPreferenceError(c, err, "ResetPreferences: Error from prefService.ResetToDefaults")
		return
	}
	h.GetPreferences(c)
}

// GetPreferenceMetadata handles the configuration UI introspection view.
func (h *PreferenceHandler) GetPreferenceMetadata(c *gin.Context) {
	metadata, err := h.prefService.GetPreferenceMetadata(c.Request.Context())
	if err != nil {
		respondPreferenceError(c, err, "GetPreferenceMetadata: Error from prefService.GetPreferenceMetadata")
		return
	}
	c.JSON(http.StatusOK, metadata)
}

// ExportPreferences handles downloading a preferences backup.
func (h *PreferenceHandler) ExportPreferences(c *gin.Context) {
	snap, err := h.prefService.ExportPreferences(c.Request.Context())
	if err != nil {
		respondPreferenceError(c, err, "ExportPreferences: Error from prefService.ExportPreferences")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="preferences.json"`)
	c.JSON(http.StatusOK, snap)
}

// ImportPreferences handles restoring a preferences backup.
func (h *PreferenceHandler) ImportPreferences(c *gin.Context) {
	var values map[string]interface{}
	if err := c.ShouldBindJSON(&values); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error(), err.Error())
		return
	}

	if err := h.prefService.ImportPreferences(c.Request.Context(), values); err != nil {
		respondPreferenceError(c, err, "ImportPreferences: Error from prefService.ImportPreferences")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Preferences imported successfully", "imported": len(values)})
}

// GetTimezones handles listing the timezone catalog.
func (h *PreferenceHandler) GetTimezones(c *gin.Context) {
	c.JSON(http.StatusOK, h.prefService.Timezones())
}

// FormatTimestamp renders an epoch-millisecond timestamp with the user's formats.
func (h *PreferenceHandler) FormatTimestamp(c *gin.Context) {
	ts, err := strconv.ParseInt(c.Query("ts"), 10, 64)
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid ts, expected epoch milliseconds.", err.Error())
		return
	}
	includeTime := true
	if raw := c.Query("include_time"); raw != "" {
		includeTime, err = strconv.ParseBool(raw)
		if err != nil {
			utils.RespondValidationFailed(c, "Invalid include_time, expected a boolean.", err.Error())
			return
		}
	}

	formatted := h.prefService.FormatTimestamp(c.Request.Context(), ts, c.Query("tz"), includeTime)
	c.JSON(http.StatusOK, gin.H{"timestamp": ts, "formatted": formatted})
}

// GetToday handles the current-day bounds in the user's timezone.
func (h *PreferenceHandler) GetToday(c *gin.Context) {
	today, err := h.prefService.TodayInUserTimezone(c.Request.Context())
	if err != nil {
		respondPreferenceError(c, err, "GetToday: Error from prefService.TodayInUserTimezone")
		return
	}
	c.JSON(http.StatusOK, today)
}
