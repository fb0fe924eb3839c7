package router

import (
	"bot_admin_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupPreferenceRoutes sets up the preference routes.
func SetupPreferenceRoutes(group *gin.RouterGroup, prefHandler *handlers.PreferenceHandler) {
	prefRoutes := group.Group("/preferences")
	{
		prefRoutes.GET("", prefHandler.GetPreferences)
		prefRoutes.POST("", prefHandler.SetPreferences)
		prefRoutes.DELETE("", prefHandler.ResetPreferences)

		prefRoutes.GET("/metadata", prefHandler.GetPreferenceMetadata)
		prefRoutes.GET("/export", prefHandler.ExportPreferences)
		prefRoutes.POST("/import", prefHandler.ImportPreferences)
		prefRoutes.GET("/timezones", prefHandler.GetTimezones)
		prefRoutes.GET("/format", prefHandler.FormatTimestamp)
		prefRoutes.GET("/today", prefHandler.GetToday)

		prefRoutes.GET("/:key", prefHandler.GetPreference)
		prefRoutes.PUT("/:key", prefHandler.SetPreference)
	}
}

// SetupSettingsRoutes sets up the generic configuration routes.
func SetupSettingsRoutes(group *gin.RouterGroup, settingHandler *handlers.SettingHandler) {
	settingsRoutes := group.Group("/settings")
	{
		settingsRoutes.GET("", settingHandler.GetSettings)
		settingsRoutes.POST("", settingHandler.UpsertSetting)
		settingsRoutes.GET("/:key", settingHandler.GetSettingByKey)
		settingsRoutes.DELETE("/:key", settingHandler.DeleteSettingByKey)
	}
}
